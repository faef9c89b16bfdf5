package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sdejongh/replicator/pkg/models"
)

// ErrRootNotFound is returned when the scanned root does not exist or is not a directory
var ErrRootNotFound = errors.New("root directory not found")

// ScanError reports a failure that prevented a whole scan
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Snapshot is the point-in-time mapping produced by one scan
type Snapshot struct {
	root    string
	entries map[string]*models.Entry
	skipped int
}

// New builds a snapshot from entries keyed by their RelativePath. It takes
// ownership of the entries.
func New(root string, entries []*models.Entry) *Snapshot {
	m := make(map[string]*models.Entry, len(entries))
	for _, e := range entries {
		m[e.RelativePath] = e
	}
	return &Snapshot{root: root, entries: m}
}

// Empty returns a snapshot with no entries, standing in for a missing root
func Empty(root string) *Snapshot {
	return New(root, nil)
}

// Root returns the absolute path the snapshot was taken from
func (s *Snapshot) Root() string {
	return s.root
}

// Get returns a copy of the entry at rel
func (s *Snapshot) Get(rel string) (*models.Entry, bool) {
	e, ok := s.entries[rel]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Has reports whether rel is part of the snapshot
func (s *Snapshot) Has(rel string) bool {
	_, ok := s.entries[rel]
	return ok
}

// Len returns the number of entries, the root included
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Skipped returns how many entries the scan had to leave out
func (s *Snapshot) Skipped() int {
	return s.skipped
}

// Paths returns every key in lexical order
func (s *Snapshot) Paths() []string {
	return sortedKeys(s.entries)
}

// Index returns an owned, mutable copy of the snapshot
func (s *Snapshot) Index() *Index {
	entries := make(map[string]*models.Entry, len(s.entries))
	for k, e := range s.entries {
		entries[k] = e.Clone()
	}
	return newIndex(s.root, entries)
}

func sortedKeys(m map[string]*models.Entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func absolutePath(root, rel string) string {
	if rel == "" {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}
