package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sdejongh/replicator/pkg/models"
	"github.com/sdejongh/replicator/pkg/output"
	"github.com/spf13/cobra"
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the operations a sync cycle would apply",
		Long: `Scan source and destination once and print the reconciliation plan
without changing anything. This is equivalent to sync --once --dry-run.`,
		RunE: runPlan,
	}

	addTreeFlags(cmd)
	cmd.Flags().StringVar(&syncFlags.PlanReport, "plan-report", "", "write the plan to file instead of stdout")

	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: fmt.Errorf("failed to load config: %w", err)}
	}
	applyFlagsToConfig(cmd, cfg)

	// planning never writes: no log file, no destination creation
	cfg.Sync.Once = true
	cfg.Sync.DryRun = true
	cfg.Logging.File = ""

	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
	}
	if err := validateTrees(cfg); err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
	}

	operation, err := cfg.SyncOperation()
	if err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
	}

	logger, err := createLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer logger.Close()

	engine, cleanup, err := newEngine(cfg, operation, logger)
	if err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
	}
	defer cleanup()
	engine.SetOutput(io.Discard)

	report, err := engine.RunCycle(ctx)
	if err != nil {
		return &ExitError{Code: report.Status.ExitCode(), Err: err}
	}

	if syncFlags.PlanReport != "" {
		return output.WritePlanReport(report, syncFlags.PlanReport, cfg.Output.Format)
	}
	return output.WritePlan(cmd.OutOrStdout(), report, cfg.Output.Format)
}
