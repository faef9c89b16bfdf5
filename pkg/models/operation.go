package models

import (
	"fmt"
	"time"
)

// OperationKind tags a planned reconciliation step
type OperationKind string

const (
	// OpMove renames or moves an existing destination entry
	OpMove OperationKind = "move"
	// OpAdd creates a directory or copies a new file
	OpAdd OperationKind = "add"
	// OpDelete removes a destination entry, recursively for directories
	OpDelete OperationKind = "delete"
	// OpUpdate overwrites a destination file whose content changed
	OpUpdate OperationKind = "update"
)

// Operation is one step of a reconciliation plan. Moves use From and To,
// every other kind uses Path.
type Operation struct {
	Kind  OperationKind
	From  string
	To    string
	Path  string
	IsDir bool
}

// Move builds a move operation
func Move(from, to string, isDir bool) Operation {
	return Operation{Kind: OpMove, From: from, To: to, IsDir: isDir}
}

// Add builds an add operation
func Add(path string, isDir bool) Operation {
	return Operation{Kind: OpAdd, Path: path, IsDir: isDir}
}

// Delete builds a delete operation
func Delete(path string, isDir bool) Operation {
	return Operation{Kind: OpDelete, Path: path, IsDir: isDir}
}

// Update builds an update operation
func Update(path string) Operation {
	return Operation{Kind: OpUpdate, Path: path}
}

// Target returns the destination path the operation produces or removes
func (o Operation) Target() string {
	if o.Kind == OpMove {
		return o.To
	}
	return o.Path
}

func (o Operation) String() string {
	if o.Kind == OpMove {
		return fmt.Sprintf("%s %s -> %s", o.Kind, o.From, o.To)
	}
	return fmt.Sprintf("%s %s", o.Kind, o.Path)
}

// OperationResult records the outcome of applying one operation
type OperationResult struct {
	Operation Operation
	Err       error
	Bytes     int64
	Duration  time.Duration
	Skipped   bool
}

// Failed reports whether the operation was attempted and failed
func (r OperationResult) Failed() bool {
	return r.Err != nil && !r.Skipped
}

// SyncOperation holds the resolved settings of a replication run
type SyncOperation struct {
	ID              string
	SourcePath      string
	DestPath        string
	Interval        time.Duration
	Once            bool
	DryRun          bool
	ExcludePatterns []string
	BandwidthLimit  int64 // bytes per second, 0 = unlimited
	BufferSize      int
	CreatedAt       time.Time
}

// Validate checks if the operation configuration is valid
func (op *SyncOperation) Validate() error {
	if op.SourcePath == "" {
		return &ValidationError{Field: "SourcePath", Message: "source path is required"}
	}
	if op.DestPath == "" {
		return &ValidationError{Field: "DestPath", Message: "destination path is required"}
	}
	if !op.Once && op.Interval <= 0 {
		return &ValidationError{Field: "Interval", Message: "interval must be positive unless running once"}
	}
	if op.BandwidthLimit < 0 {
		return &ValidationError{Field: "BandwidthLimit", Message: "bandwidth limit cannot be negative"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
