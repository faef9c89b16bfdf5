// Package snapshot turns a directory tree into a flat, content-addressed
// mapping from root-relative path to entry.
//
// A Snapshot is the immutable result of one scan. An Index is an owned,
// mutable copy of it that planners and executors update as they rearrange
// the tree. Keys are "/" separated, never start with a separator, and the
// root itself is the empty string.
package snapshot
