package models

import (
	"fmt"
	"time"
)

// CycleReport represents the results of one scan-plan-apply cycle
type CycleReport struct {
	CycleID    string
	SourcePath string
	DestPath   string
	DryRun     bool

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Stats Statistics

	// Plan is the operation sequence, in application order
	Plan []Operation

	Errors []SyncError

	Status CycleStatus
}

// Counter tallies outcomes for one operation category
type Counter struct {
	Succeeded int
	Failed    int
}

// Statistics holds cycle metrics
type Statistics struct {
	SourceEntries int
	DestEntries   int

	Moved   Counter
	Added   Counter
	Deleted Counter
	Updated Counter

	// Skipped counts planned operations not attempted after cancellation
	Skipped int

	BytesTransferred int64
}

// Counter returns the counter for an operation kind
func (s *Statistics) Counter(kind OperationKind) *Counter {
	switch kind {
	case OpMove:
		return &s.Moved
	case OpAdd:
		return &s.Added
	case OpDelete:
		return &s.Deleted
	default:
		return &s.Updated
	}
}

// Record folds one operation result into the statistics
func (s *Statistics) Record(r OperationResult) {
	if r.Skipped {
		s.Skipped++
		return
	}
	c := s.Counter(r.Operation.Kind)
	if r.Err != nil {
		c.Failed++
		return
	}
	c.Succeeded++
	s.BytesTransferred += r.Bytes
}

// Errors returns the number of failed operations across all categories
func (s *Statistics) Errors() int {
	return s.Moved.Failed + s.Added.Failed + s.Deleted.Failed + s.Updated.Failed
}

// Changes returns the number of successful operations across all categories
func (s *Statistics) Changes() int {
	return s.Moved.Succeeded + s.Added.Succeeded + s.Deleted.Succeeded + s.Updated.Succeeded
}

// Summary renders the end-of-cycle line written to the log
func (s *Statistics) Summary() string {
	return fmt.Sprintf("Sync completed with %d renamed/moved files, %d added files, %d deleted files, %d updated files, and %d errors.",
		s.Moved.Succeeded, s.Added.Succeeded, s.Deleted.Succeeded, s.Updated.Succeeded, s.Errors())
}

// CycleStatus represents the overall result
type CycleStatus string

const (
	// StatusSuccess indicates all operations completed successfully
	StatusSuccess CycleStatus = "success"
	// StatusPartial indicates some operations failed
	StatusPartial CycleStatus = "partial"
	// StatusFailed indicates the cycle could not run
	StatusFailed CycleStatus = "failed"
	// StatusCancelled indicates the cycle was cancelled
	StatusCancelled CycleStatus = "cancelled"
)

// SyncError represents an error during a cycle
type SyncError struct {
	FilePath  string
	Operation OperationKind
	Error     string
	Timestamp time.Time
}

// Finish stamps the end time and derives the status from the statistics
func (r *CycleReport) Finish(cancelled bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	switch {
	case cancelled:
		r.Status = StatusCancelled
	case r.Stats.Errors() > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusSuccess
	}
}

// ExitCode returns the appropriate exit code for the cycle status
func (s CycleStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
