// Package sync runs replication cycles: scan both trees, plan the
// reconciliation and apply it to the destination.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/replicator/pkg/fingerprint"
	"github.com/sdejongh/replicator/pkg/logging"
	"github.com/sdejongh/replicator/pkg/models"
	"github.com/sdejongh/replicator/pkg/output"
	"github.com/sdejongh/replicator/pkg/ratelimit"
	"github.com/sdejongh/replicator/pkg/snapshot"
	"github.com/sdejongh/replicator/pkg/storage"
)

// Engine orchestrates replication cycles between two backends
type Engine struct {
	source    storage.Backend
	dest      storage.Backend
	formatter output.Formatter
	logger    logging.Logger
	operation *models.SyncOperation
	out       io.Writer

	sourceScanner *snapshot.Scanner
	destScanner   *snapshot.Scanner
	planner       *Planner
	executor      *Executor
}

// NewEngine creates a new replication engine
func NewEngine(
	source, dest storage.Backend,
	formatter output.Formatter,
	logger logging.Logger,
	operation *models.SyncOperation,
) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if formatter == nil {
		formatter = output.NewHumanFormatter()
	}

	hasher := fingerprint.NewHasher(operation.BufferSize)
	excluder := snapshot.NewExcluder(operation.ExcludePatterns)

	return &Engine{
		source:        source,
		dest:          dest,
		formatter:     formatter,
		logger:        logger,
		operation:     operation,
		out:           os.Stdout,
		sourceScanner: snapshot.NewScanner(source, hasher, excluder, logger),
		destScanner:   snapshot.NewScanner(dest, hasher, excluder, logger),
		planner:       NewPlanner(logger),
		executor:      NewExecutor(source, dest, ratelimit.NewLimiter(operation.BandwidthLimit), logger),
	}
}

// SetOutput redirects formatter output, stdout by default
func (e *Engine) SetOutput(w io.Writer) {
	e.out = w
}

// Run executes cycles until ctx is cancelled, sleeping the configured
// interval between them. In once mode it returns after the first cycle
// with that cycle's report and error. Cancellation ends the loop with the
// last report and a nil error.
func (e *Engine) Run(ctx context.Context) (*models.CycleReport, error) {
	e.logger.Info(ctx, "Starting replicator", logging.Fields{
		"source":      e.operation.SourcePath,
		"destination": e.operation.DestPath,
	})
	if e.operation.Once {
		e.logger.Info(ctx, "Once option is enabled. Syncing once...", nil)
	}

	var last *models.CycleReport
	for {
		e.logger.Info(ctx, fmt.Sprintf("Syncing from %s to %s", e.operation.SourcePath, e.operation.DestPath), nil)

		report, err := e.RunCycle(ctx)
		if report != nil {
			last = report
		}
		if e.operation.Once {
			e.logger.Info(ctx, "Exiting", nil)
			return last, err
		}
		if err != nil && ctx.Err() == nil {
			e.logger.Error(ctx, "Sync cycle failed", err, nil)
		}

		if ctx.Err() == nil {
			e.logger.Info(ctx, fmt.Sprintf("Waiting for %s minutes before the next sync", minutes(e.operation.Interval)), nil)
		}
		timer := time.NewTimer(e.operation.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			e.logger.Info(ctx, "Exiting", nil)
			return last, nil
		case <-timer.C:
		}
	}
}

// RunCycle performs one scan-plan-apply cycle. A missing source or a
// cancelled scan fails the cycle; failed operations only make it partial.
func (e *Engine) RunCycle(ctx context.Context) (*models.CycleReport, error) {
	report := &models.CycleReport{
		CycleID:    uuid.New().String(),
		SourcePath: e.operation.SourcePath,
		DestPath:   e.operation.DestPath,
		DryRun:     e.operation.DryRun,
		StartTime:  time.Now(),
	}
	logger := e.logger.WithFields(logging.Fields{"cycle_id": report.CycleID})

	src, err := e.sourceScanner.Scan(ctx)
	if err != nil {
		return e.fail(ctx, report, fmt.Errorf("failed to scan source: %w", err))
	}

	dst, err := e.scanDest(ctx, logger)
	if err != nil {
		return e.fail(ctx, report, fmt.Errorf("failed to scan destination: %w", err))
	}

	report.Stats.SourceEntries = src.Len()
	report.Stats.DestEntries = dst.Len()
	report.Plan = e.planner.Plan(ctx, src, dst)

	logger.Debug(ctx, "Cycle planned", logging.Fields{
		"operations": len(report.Plan),
		"skipped":    src.Skipped() + dst.Skipped(),
	})

	if e.operation.DryRun {
		for _, op := range report.Plan {
			logger.Info(ctx, "Would "+op.String(), nil)
		}
		report.Finish(false)
		if err := e.formatter.Start(e.out, report.CycleID, 0); err != nil {
			return report, err
		}
		return report, e.formatter.Complete(report)
	}

	if err := e.formatter.Start(e.out, report.CycleID, len(report.Plan)); err != nil {
		return report, fmt.Errorf("failed to start output: %w", err)
	}
	e.executor.OnResult(func(done, total int, result models.OperationResult) {
		e.formatter.Progress(output.NewUpdate(done, total, result))
	})

	stats, results := e.executor.Apply(ctx, report.Plan, src, dst.Index())
	stats.SourceEntries = report.Stats.SourceEntries
	stats.DestEntries = report.Stats.DestEntries
	report.Stats = stats

	for _, r := range results {
		if r.Failed() {
			report.Errors = append(report.Errors, models.SyncError{
				FilePath:  r.Operation.Target(),
				Operation: r.Operation.Kind,
				Error:     r.Err.Error(),
				Timestamp: time.Now(),
			})
		}
	}

	report.Finish(ctx.Err() != nil)
	logger.Info(ctx, report.Stats.Summary(), logging.Fields{
		"status":   string(report.Status),
		"duration": report.Duration.String(),
	})

	if err := e.formatter.Complete(report); err != nil {
		return report, err
	}
	if report.Status == models.StatusCancelled {
		return report, ctx.Err()
	}
	return report, nil
}

// scanDest scans the destination; a missing destination root is created
// and treated as empty
func (e *Engine) scanDest(ctx context.Context, logger logging.Logger) (*snapshot.Snapshot, error) {
	dst, err := e.destScanner.Scan(ctx)
	if err == nil {
		return dst, nil
	}
	if !errors.Is(err, snapshot.ErrRootNotFound) {
		return nil, err
	}

	logger.Warn(ctx, "Destination directory is missing, starting from an empty tree: "+e.dest.Root(), nil)
	if !e.operation.DryRun {
		if err := e.dest.MkdirAll(ctx, ""); err != nil {
			return nil, fmt.Errorf("failed to create destination: %w", err)
		}
	}
	return snapshot.Empty(e.dest.Root()), nil
}

func (e *Engine) fail(ctx context.Context, report *models.CycleReport, err error) (*models.CycleReport, error) {
	report.Finish(ctx.Err() != nil)
	if report.Status != models.StatusCancelled {
		report.Status = models.StatusFailed
	}
	e.logger.Error(ctx, "Sync cycle aborted", err, logging.Fields{"cycle_id": report.CycleID})
	if ferr := e.formatter.Error(err); ferr != nil {
		e.logger.Warn(ctx, "Failed to report cycle error", logging.Fields{"error": ferr.Error()})
	}
	return report, err
}

// minutes renders an interval the way it is configured, e.g. "0.5"
func minutes(d time.Duration) string {
	return fmt.Sprintf("%g", d.Minutes())
}
