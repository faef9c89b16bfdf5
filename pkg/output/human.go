package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/replicator/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer   io.Writer
	cycleID  string
	totalOps int
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, cycleID string, totalOps int) error {
	f.writer = writer
	f.cycleID = cycleID
	f.totalOps = totalOps
	return nil
}

// Progress prints failed and skipped operations; successes are already
// echoed by the console log
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case UpdateOperationError:
		fmt.Fprintf(f.writer, "[%d/%d] ✗ %s: %v\n",
			update.Current, update.Total, update.Operation, update.Error)
	case UpdateOperationSkipped:
		fmt.Fprintf(f.writer, "[%d/%d] - %s (skipped)\n",
			update.Current, update.Total, update.Operation)
	}

	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(report *models.CycleReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, report)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// writeSummary prints the end-of-cycle block shared by the human and
// progress formatters
func writeSummary(w io.Writer, report *models.CycleReport) {
	stats := report.Stats

	fmt.Fprintf(w, "\n")
	if report.DryRun {
		fmt.Fprintf(w, "Dry run %s planned in %s\n", report.CycleID, report.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintf(w, "Cycle %s completed in %s\n", report.CycleID, report.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Scanned:\n")
	fmt.Fprintf(w, "    Source:         %d entries\n", stats.SourceEntries)
	fmt.Fprintf(w, "    Destination:    %d entries\n", stats.DestEntries)
	fmt.Fprintf(w, "\n")

	if report.DryRun {
		fmt.Fprintf(w, "  Planned operations: %d\n", len(report.Plan))
		for _, op := range report.Plan {
			fmt.Fprintf(w, "    %s\n", op)
		}
	} else {
		fmt.Fprintf(w, "  Operations:         done  failed\n")
		fmt.Fprintf(w, "    Renamed/moved:    %4d  %6d\n", stats.Moved.Succeeded, stats.Moved.Failed)
		fmt.Fprintf(w, "    Added:            %4d  %6d\n", stats.Added.Succeeded, stats.Added.Failed)
		fmt.Fprintf(w, "    Deleted:          %4d  %6d\n", stats.Deleted.Succeeded, stats.Deleted.Failed)
		fmt.Fprintf(w, "    Updated:          %4d  %6d\n", stats.Updated.Succeeded, stats.Updated.Failed)
		if stats.Skipped > 0 {
			fmt.Fprintf(w, "    Skipped:          %4d\n", stats.Skipped)
		}
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "  Transfer:\n")
		fmt.Fprintf(w, "    Data:           %s\n", formatBytes(stats.BytesTransferred))
		if report.Duration.Seconds() > 0 && stats.BytesTransferred > 0 {
			avgSpeed := float64(stats.BytesTransferred) / report.Duration.Seconds()
			fmt.Fprintf(w, "    Average speed:  %s/s\n", formatBytes(int64(avgSpeed)))
		}
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, err := range report.Errors {
			fmt.Fprintf(w, "  %s %s: %s\n", err.Operation, err.FilePath, err.Error)
		}
	}
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
