package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/sdejongh/replicator/pkg/models"
	"golang.org/x/term"
)

// progressTemplate renders "[ 3/10] [=====>    ] 30% add docs/readme.md"
const progressTemplate = `{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{string . "op"}}`

// ProgressFormatter draws a progress bar while a plan is applied, then the
// same summary as the human formatter
type ProgressFormatter struct {
	mu        sync.Mutex
	writer    io.Writer
	bar       *pb.ProgressBar
	termWidth int
	failures  []ProgressUpdate
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{}
}

// Start initializes the formatter
func (f *ProgressFormatter) Start(writer io.Writer, cycleID string, totalOps int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.failures = nil

	// Detect terminal width to prevent line wrapping issues
	if file, ok := writer.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			f.termWidth = width
		}
	}
	if f.termWidth == 0 {
		f.termWidth = 120
	}

	if totalOps == 0 {
		return nil
	}

	f.bar = pb.ProgressBarTemplate(progressTemplate).New(totalOps)
	f.bar.SetWriter(writer)
	f.bar.SetMaxWidth(f.termWidth)
	f.bar.Set("op", "")
	f.bar.Start()
	return nil
}

// Progress advances the bar by one operation
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if update.Type != UpdateOperationDone {
		f.failures = append(f.failures, update)
	}
	if f.bar == nil {
		return nil
	}
	f.bar.Set("op", update.Operation.String())
	f.bar.SetCurrent(int64(update.Current))
	return nil
}

// Complete stops the bar and displays the summary
func (f *ProgressFormatter) Complete(report *models.CycleReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Set("op", "")
		f.bar.Finish()
		f.bar = nil
	}
	if f.writer == nil {
		f.writer = io.Discard
	}

	for _, u := range f.failures {
		if u.Error != nil {
			fmt.Fprintf(f.writer, "✗ %s: %v\n", u.Operation, u.Error)
		}
	}
	writeSummary(f.writer, report)
	return nil
}

// Error reports an error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer != nil {
		fmt.Fprintf(f.writer, "\nError: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
