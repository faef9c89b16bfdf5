package storage

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// FileInfo represents metadata about a filesystem entry, as seen without
// following symbolic links
type FileInfo struct {
	Name         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	Mode         fs.FileMode
	IsDir        bool
	IsSymlink    bool
	Sys          interface{}
}

// Backend defines the filesystem primitives the replicator relies on.
// Paths are relative to the backend root and use forward slashes; the empty
// string denotes the root itself.
type Backend interface {
	// Root returns the absolute location the backend is rooted at
	Root() string

	// AbsolutePath resolves a relative path against the root
	AbsolutePath(path string) string

	// ReadDir lists the immediate children of a directory, sorted by name
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)

	// Stat returns entry metadata without following a final symlink
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Open opens a file for reading
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Write atomically creates or replaces a file with the given content.
	// If metadata is provided, attempts to preserve the modification time
	Write(ctx context.Context, path string, reader io.Reader, metadata *FileInfo) error

	// Rename moves a file or directory, creating the target parent if needed
	Rename(ctx context.Context, from, to string) error

	// Delete removes a file, or a directory and everything below it
	Delete(ctx context.Context, path string) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}
