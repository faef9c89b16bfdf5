package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/replicator/pkg/models"
)

// JSONFormatter writes one JSON event per line for automation and scripting
type JSONFormatter struct {
	writer  io.Writer
	encoder *json.Encoder
	cycleID string
}

// JSONEvent represents a single event in the JSON output stream
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	CycleID   string    `json:"cycle_id,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// JSONStartData represents the data for a start event
type JSONStartData struct {
	TotalOperations int `json:"total_operations"`
}

// JSONOperationData represents one applied operation
type JSONOperationData struct {
	Kind    string `json:"kind"`
	Path    string `json:"path,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	IsDir   bool   `json:"is_dir,omitempty"`
	Current int    `json:"current,omitempty"`
	Total   int    `json:"total,omitempty"`
	Bytes   int64  `json:"bytes,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSONReportData represents the final report data
type JSONReportData struct {
	Status     string              `json:"status"`
	DryRun     bool                `json:"dry_run"`
	Source     string              `json:"source"`
	Dest       string              `json:"destination"`
	Duration   string              `json:"duration"`
	DurationMs int64               `json:"duration_ms"`
	Stats      JSONStatsData       `json:"stats"`
	Plan       []JSONOperationData `json:"plan,omitempty"`
	Errors     []JSONErrorData     `json:"errors,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	SourceEntries    int         `json:"source_entries"`
	DestEntries      int         `json:"dest_entries"`
	Moved            JSONCounter `json:"moved"`
	Added            JSONCounter `json:"added"`
	Deleted          JSONCounter `json:"deleted"`
	Updated          JSONCounter `json:"updated"`
	Skipped          int         `json:"skipped"`
	BytesTransferred int64       `json:"bytes_transferred"`
}

// JSONCounter represents one operation category
type JSONCounter struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Operation string `json:"operation"`
	Path      string `json:"path"`
	Error     string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, cycleID string, totalOps int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.encoder = json.NewEncoder(writer)
	f.cycleID = cycleID

	return f.emit("start", JSONStartData{TotalOperations: totalOps})
}

// Progress emits one event per operation
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	data := operationData(update.Operation)
	data.Current = update.Current
	data.Total = update.Total
	data.Bytes = update.Bytes
	if update.Error != nil {
		data.Error = update.Error.Error()
	}
	return f.emit(update.Type, data)
}

// Complete emits the final report
func (f *JSONFormatter) Complete(report *models.CycleReport) error {
	if f.encoder == nil {
		f.encoder = json.NewEncoder(io.Discard)
	}
	f.cycleID = report.CycleID

	var errors []JSONErrorData
	for _, err := range report.Errors {
		errors = append(errors, JSONErrorData{
			Operation: string(err.Operation),
			Path:      err.FilePath,
			Error:     err.Error,
		})
	}

	var plan []JSONOperationData
	if report.DryRun {
		for _, op := range report.Plan {
			plan = append(plan, operationData(op))
		}
	}

	stats := report.Stats
	return f.emit("complete", JSONReportData{
		Status:     string(report.Status),
		DryRun:     report.DryRun,
		Source:     report.SourcePath,
		Dest:       report.DestPath,
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			SourceEntries:    stats.SourceEntries,
			DestEntries:      stats.DestEntries,
			Moved:            JSONCounter(stats.Moved),
			Added:            JSONCounter(stats.Added),
			Deleted:          JSONCounter(stats.Deleted),
			Updated:          JSONCounter(stats.Updated),
			Skipped:          stats.Skipped,
			BytesTransferred: stats.BytesTransferred,
		},
		Plan:   plan,
		Errors: errors,
	})
}

// Error reports an error
func (f *JSONFormatter) Error(err error) error {
	if f.encoder == nil {
		f.encoder = json.NewEncoder(os.Stdout)
	}
	return f.emit("error", map[string]string{"error": err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) emit(eventType string, data any) error {
	if f.encoder == nil {
		return nil
	}
	return f.encoder.Encode(JSONEvent{
		Timestamp: time.Now(),
		Type:      eventType,
		CycleID:   f.cycleID,
		Data:      data,
	})
}

func operationData(op models.Operation) JSONOperationData {
	return JSONOperationData{
		Kind:  string(op.Kind),
		Path:  op.Path,
		From:  op.From,
		To:    op.To,
		IsDir: op.IsDir,
	}
}
