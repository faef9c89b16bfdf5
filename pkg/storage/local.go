package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const tempPrefix = ".replicator-tmp-"

// Filesystem is a Backend on top of a billy filesystem
type Filesystem struct {
	fs    billy.Filesystem
	root  string
	local bool
}

// NewLocal creates a backend rooted at an existing local directory
func NewLocal(rootPath string) (*Filesystem, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Filesystem{fs: osfs.New(absPath), root: absPath, local: true}, nil
}

// NewMemory creates an empty in-memory backend
func NewMemory() *Filesystem {
	return NewFromBilly(memfs.New(), string(filepath.Separator))
}

// NewFromBilly wraps an arbitrary billy filesystem. root is only used to
// report absolute paths.
func NewFromBilly(bfs billy.Filesystem, root string) *Filesystem {
	return &Filesystem{fs: bfs, root: root}
}

// Billy exposes the underlying billy filesystem
func (f *Filesystem) Billy() billy.Filesystem {
	return f.fs
}

// Root returns the absolute root of the backend
func (f *Filesystem) Root() string {
	return f.root
}

// AbsolutePath resolves a relative path against the root
func (f *Filesystem) AbsolutePath(p string) string {
	if p == "" {
		return f.root
	}
	return filepath.Join(f.root, filepath.FromSlash(p))
}

// ReadDir lists the immediate children of a directory
func (f *Filesystem) ReadDir(ctx context.Context, p string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := f.fs.ReadDir(billyPath(p))
	if err != nil {
		return nil, wrap("readdir", p, err)
	}

	entries := make([]FileInfo, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, toFileInfo(path.Join(p, info.Name()), info))
	}
	return entries, nil
}

// Stat returns entry metadata without following a final symlink
func (f *Filesystem) Stat(ctx context.Context, p string) (*FileInfo, error) {
	info, err := f.fs.Lstat(billyPath(p))
	if err != nil {
		return nil, wrap("stat", p, err)
	}
	fi := toFileInfo(p, info)
	return &fi, nil
}

// Open opens a file for reading
func (f *Filesystem) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	file, err := f.fs.Open(billyPath(p))
	if err != nil {
		return nil, wrap("open", p, err)
	}
	return file, nil
}

// Write streams reader into a temporary file next to the target and renames
// it into place, so readers never observe a partially written file
func (f *Filesystem) Write(ctx context.Context, p string, reader io.Reader, metadata *FileInfo) error {
	dir := path.Dir(p)
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return wrap("mkdir", dir, err)
	}

	tmp, err := f.fs.TempFile(dir, tempPrefix)
	if err != nil {
		return wrap("tempfile", p, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = f.fs.Remove(tmpName)
	}

	if _, err := io.Copy(tmp, &contextReader{ctx: ctx, r: reader}); err != nil {
		tmp.Close()
		cleanup()
		return wrap("write", p, err)
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return wrap("close", p, err)
	}

	if err := f.fs.Rename(tmpName, billyPath(p)); err != nil {
		cleanup()
		return wrap("rename", p, err)
	}

	if metadata != nil && f.local && !metadata.ModTime.IsZero() {
		// billy has no Chtimes on osfs; the entry is a plain local file here
		if err := os.Chtimes(f.AbsolutePath(p), metadata.ModTime, metadata.ModTime); err != nil {
			return wrap("chtimes", p, err)
		}
	}

	return nil
}

// Rename moves a file or directory
func (f *Filesystem) Rename(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.fs.MkdirAll(path.Dir(to), 0755); err != nil {
		return wrap("mkdir", path.Dir(to), err)
	}
	if err := f.fs.Rename(billyPath(from), billyPath(to)); err != nil {
		return fmt.Errorf("storage: op %q: %s -> %s: %w", "rename", from, to, err)
	}
	return nil
}

// Delete removes a file or a whole directory tree
func (f *Filesystem) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == "" {
		return wrap("delete", p, errors.New("refusing to delete the root"))
	}
	if _, err := f.fs.Lstat(billyPath(p)); err != nil {
		return wrap("delete", p, err)
	}
	if err := util.RemoveAll(f.fs, billyPath(p)); err != nil {
		return wrap("delete", p, err)
	}
	return nil
}

// Exists checks if a file or directory exists
func (f *Filesystem) Exists(ctx context.Context, p string) (bool, error) {
	_, err := f.fs.Lstat(billyPath(p))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, wrap("exists", p, err)
}

// MkdirAll creates a directory and all necessary parents
func (f *Filesystem) MkdirAll(ctx context.Context, p string) error {
	if err := f.fs.MkdirAll(billyPath(p), 0755); err != nil {
		return wrap("mkdir", p, err)
	}
	return nil
}

// Close releases resources (no-op for billy filesystems)
func (f *Filesystem) Close() error {
	return nil
}

func billyPath(p string) string {
	if p == "" {
		return "."
	}
	return p
}

func toFileInfo(rel string, info fs.FileInfo) FileInfo {
	mode := info.Mode()
	return FileInfo{
		Name:         info.Name(),
		RelativePath: rel,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		Mode:         mode,
		IsDir:        info.IsDir(),
		IsSymlink:    mode&fs.ModeSymlink != 0,
		Sys:          info.Sys(),
	}
}

func wrap(op, p string, err error) error {
	return fmt.Errorf("storage: op %q: %s: %w", op, p, err)
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
