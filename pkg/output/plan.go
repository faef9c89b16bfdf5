package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sdejongh/replicator/pkg/models"
)

// WritePlanReport writes the planned operations of a cycle to a file.
// Format can be "human" or "json".
func WritePlanReport(report *models.CycleReport, filepath string, format string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create plan file: %w", err)
	}
	defer file.Close()

	return WritePlan(file, report, format)
}

// WritePlan writes the planned operations of a cycle to w
func WritePlan(w io.Writer, report *models.CycleReport, format string) error {
	switch format {
	case "json":
		return writePlanJSON(report, w)
	default:
		return writePlanHuman(report, w)
	}
}

// writePlanHuman groups the plan by operation kind, in application order
func writePlanHuman(report *models.CycleReport, w io.Writer) error {
	fmt.Fprintf(w, "Reconciliation Plan\n")
	fmt.Fprintf(w, "===================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Source: %s\n", report.SourcePath)
	fmt.Fprintf(w, "Destination: %s\n\n", report.DestPath)

	fmt.Fprintf(w, "Total Operations: %d\n\n", len(report.Plan))
	if len(report.Plan) == 0 {
		fmt.Fprintf(w, "Destination is up to date.\n")
		return nil
	}

	byKind := make(map[models.OperationKind][]models.Operation)
	for _, op := range report.Plan {
		byKind[op.Kind] = append(byKind[op.Kind], op)
	}

	kindOrder := []models.OperationKind{
		models.OpMove,
		models.OpAdd,
		models.OpDelete,
		models.OpUpdate,
	}

	kindLabels := map[models.OperationKind]string{
		models.OpMove:   "Renamed/Moved",
		models.OpAdd:    "Added",
		models.OpDelete: "Deleted",
		models.OpUpdate: "Modified",
	}

	for _, kind := range kindOrder {
		ops := byKind[kind]
		if len(ops) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%d)", kindLabels[kind], len(ops))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, op := range ops {
			suffix := ""
			if op.IsDir {
				suffix = "/"
			}
			if kind == models.OpMove {
				fmt.Fprintf(w, "  %s%s -> %s%s\n", op.From, suffix, op.To, suffix)
			} else {
				fmt.Fprintf(w, "  %s%s\n", op.Path, suffix)
			}
		}

		fmt.Fprintf(w, "\n")
	}

	return nil
}

func writePlanJSON(report *models.CycleReport, w io.Writer) error {
	operations := make([]JSONOperationData, 0, len(report.Plan))
	for _, op := range report.Plan {
		operations = append(operations, operationData(op))
	}

	output := struct {
		Generated  string              `json:"generated"`
		CycleID    string              `json:"cycle_id"`
		SourcePath string              `json:"source_path"`
		DestPath   string              `json:"dest_path"`
		TotalCount int                 `json:"total_count"`
		Operations []JSONOperationData `json:"operations"`
	}{
		Generated:  time.Now().Format(time.RFC3339),
		CycleID:    report.CycleID,
		SourcePath: report.SourcePath,
		DestPath:   report.DestPath,
		TotalCount: len(report.Plan),
		Operations: operations,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
