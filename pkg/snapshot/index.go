package snapshot

import (
	"path"
	"sort"

	"github.com/sdejongh/replicator/pkg/models"
)

type printKey struct {
	fingerprint string
	isDir       bool
}

// Index is a mutable path -> entry mapping tracking the destination while a
// plan is simulated or applied. It is not safe for concurrent use.
type Index struct {
	root    string
	entries map[string]*models.Entry
	prints  map[printKey]map[string]struct{}
}

func newIndex(root string, entries map[string]*models.Entry) *Index {
	x := &Index{
		root:    root,
		entries: make(map[string]*models.Entry, len(entries)),
		prints:  make(map[printKey]map[string]struct{}),
	}
	for k, e := range entries {
		x.insert(k, e)
	}
	return x
}

// Root returns the absolute path the index is rooted at
func (x *Index) Root() string {
	return x.root
}

// Get returns the entry at rel
func (x *Index) Get(rel string) (*models.Entry, bool) {
	e, ok := x.entries[rel]
	return e, ok
}

// Has reports whether rel is present
func (x *Index) Has(rel string) bool {
	_, ok := x.entries[rel]
	return ok
}

// Len returns the number of entries
func (x *Index) Len() int {
	return len(x.entries)
}

// Paths returns every key in lexical order
func (x *Index) Paths() []string {
	return sortedKeys(x.entries)
}

// Put stores a copy of e under rel, rewriting its path fields for this index.
// An existing entry at rel is replaced.
func (x *Index) Put(rel string, e *models.Entry) {
	c := e.Clone()
	c.RelativePath = rel
	c.AbsolutePath = absolutePath(x.root, rel)
	x.Remove(rel)
	x.insert(rel, c)
}

// Remove drops the single entry at rel
func (x *Index) Remove(rel string) {
	e, ok := x.entries[rel]
	if !ok {
		return
	}
	delete(x.entries, rel)

	key := printKey{e.Fingerprint, e.IsDir}
	delete(x.prints[key], rel)
	if len(x.prints[key]) == 0 {
		delete(x.prints, key)
	}
}

// RemoveTree drops rel and every entry below it
func (x *Index) RemoveTree(rel string) {
	for _, k := range x.subtree(rel) {
		x.Remove(k)
	}
}

// Rekey moves the entry at from, and every descendant, under to. Relative
// and absolute paths are rewritten and anything previously at or below to
// is dropped. It reports whether from existed.
func (x *Index) Rekey(from, to string) bool {
	if !x.Has(from) {
		return false
	}

	var moved []*models.Entry
	for _, k := range x.subtree(from) {
		moved = append(moved, x.entries[k])
		x.Remove(k)
	}
	x.RemoveTree(to)

	for _, m := range moved {
		rel := Rebase(m.RelativePath, from, to)
		m.RelativePath = rel
		m.AbsolutePath = absolutePath(x.root, rel)
		if rel == to {
			m.Name = path.Base(to)
		}
		x.insert(rel, m)
	}
	return true
}

// FindByFingerprint returns the paths of entries with the given fingerprint
// and kind, in lexical order
func (x *Index) FindByFingerprint(fingerprint string, isDir bool) []string {
	set := x.prints[printKey{fingerprint, isDir}]
	matches := make([]string, 0, len(set))
	for k := range set {
		matches = append(matches, k)
	}
	sort.Strings(matches)
	return matches
}

// Snapshot freezes the current state into a new immutable snapshot
func (x *Index) Snapshot() *Snapshot {
	entries := make(map[string]*models.Entry, len(x.entries))
	for k, e := range x.entries {
		entries[k] = e.Clone()
	}
	return &Snapshot{root: x.root, entries: entries}
}

func (x *Index) insert(rel string, e *models.Entry) {
	x.entries[rel] = e
	key := printKey{e.Fingerprint, e.IsDir}
	set, ok := x.prints[key]
	if !ok {
		set = make(map[string]struct{})
		x.prints[key] = set
	}
	set[rel] = struct{}{}
}

// subtree returns rel (when present) and its descendants
func (x *Index) subtree(rel string) []string {
	var keys []string
	for k := range x.entries {
		if k == rel || IsDescendant(k, rel) {
			keys = append(keys, k)
		}
	}
	return keys
}
