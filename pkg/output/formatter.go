package output

import (
	"io"
	"os"

	"github.com/sdejongh/replicator/pkg/models"
	"golang.org/x/term"
)

// Progress update types
const (
	UpdateOperationDone    = "operation_done"
	UpdateOperationError   = "operation_error"
	UpdateOperationSkipped = "operation_skipped"
)

// ProgressUpdate represents a progress notification while a plan is applied
type ProgressUpdate struct {
	Type      string
	Operation models.Operation
	Current   int
	Total     int
	Bytes     int64
	Error     error
}

// Formatter defines the interface for cycle output.
// Implementations include human-readable, progress bar and JSON formatters.
type Formatter interface {
	// Start begins the output of one cycle that will apply totalOps operations
	Start(writer io.Writer, cycleID string, totalOps int) error

	// Progress reports the outcome of one operation
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays the cycle summary
	Complete(report *models.CycleReport) error

	// Error reports an error that stopped the cycle
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// NewUpdate converts an operation result into a progress update
func NewUpdate(current, total int, result models.OperationResult) ProgressUpdate {
	update := ProgressUpdate{
		Type:      UpdateOperationDone,
		Operation: result.Operation,
		Current:   current,
		Total:     total,
		Bytes:     result.Bytes,
		Error:     result.Err,
	}
	switch {
	case result.Skipped:
		update.Type = UpdateOperationSkipped
	case result.Err != nil:
		update.Type = UpdateOperationError
	}
	return update
}

// New returns the formatter for a format name. A progress bar replaces the
// plain human output when requested and w is a terminal.
func New(format string, progress bool, w io.Writer) Formatter {
	switch {
	case format == "json":
		return NewJSONFormatter()
	case progress && IsTerminal(w):
		return NewProgressFormatter()
	default:
		return NewHumanFormatter()
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
