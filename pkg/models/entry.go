package models

import (
	"time"
)

// Entry represents one filesystem object under a scanned root
type Entry struct {
	// RelativePath is the root-relative key, "/" separated; "" is the root
	RelativePath string

	// Name is the base name
	Name string

	// IsDir indicates if this is a directory
	IsDir bool

	// Size in bytes, 0 for directories
	Size int64

	// ModTime is the last modification time (zero for directories)
	ModTime time.Time

	// Created is the creation time where the platform exposes one (zero for directories)
	Created time.Time

	// Fingerprint is the content hash, see package fingerprint
	Fingerprint string

	// AbsolutePath is where the entry currently lives on disk. It is
	// bookkeeping only and is rewritten as operations are applied.
	AbsolutePath string
}

// Kind returns "Directory" or "File"
func (e *Entry) Kind() string {
	if e.IsDir {
		return "Directory"
	}
	return "File"
}

// Clone returns a copy of the entry
func (e *Entry) Clone() *Entry {
	c := *e
	return &c
}
