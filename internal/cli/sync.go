package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sdejongh/replicator/pkg/config"
	"github.com/sdejongh/replicator/pkg/logging"
	"github.com/sdejongh/replicator/pkg/models"
	"github.com/sdejongh/replicator/pkg/output"
	"github.com/sdejongh/replicator/pkg/storage"
	"github.com/sdejongh/replicator/pkg/sync"
	"github.com/spf13/cobra"
)

// SyncFlags holds sync command flags
type SyncFlags struct {
	Source    string
	Dest      string
	Interval  float64
	Once      bool
	DryRun    bool
	Exclude   []string
	Bandwidth string
	Output    string
	Progress  bool
	// Plan report flags
	PlanReport string
	PlanFormat string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var syncFlags SyncFlags

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replicate a source folder into a destination folder",
		Long: `Periodically make the destination folder an exact copy of the source folder.
Renamed or moved content is detected by fingerprint and moved in place instead
of being copied again.`,
		RunE: runSync,
	}

	addTreeFlags(cmd)
	cmd.Flags().Float64VarP(&syncFlags.Interval, "interval", "i", 0.5, "minutes between sync cycles")
	cmd.Flags().BoolVarP(&syncFlags.Once, "once", "o", false, "run a single sync cycle and exit")
	cmd.Flags().BoolVar(&syncFlags.DryRun, "dry-run", false, "plan only, don't change the destination")
	cmd.Flags().StringVar(&syncFlags.Bandwidth, "bandwidth", "", "bandwidth limit for copies (e.g., \"10M\", \"1G\")")
	cmd.Flags().BoolVar(&syncFlags.Progress, "progress", true, "show a progress bar when stdout is a terminal")
	cmd.Flags().StringVar(&syncFlags.PlanReport, "plan-report", "", "write the last cycle's plan to file")
	cmd.Flags().StringVar(&syncFlags.PlanFormat, "plan-format", "human", "plan report format: human, json")

	// Logging flags
	cmd.Flags().StringVarP(&syncFlags.LogFile, "log", "l", "replicator.log", "log file path")
	cmd.Flags().StringVar(&syncFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&syncFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

// addTreeFlags registers the flags shared by sync and plan
func addTreeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&syncFlags.Source, "source", "s", "", "source directory path (required)")
	cmd.Flags().StringVarP(&syncFlags.Dest, "destination", "d", "", "destination directory path (required)")
	cmd.Flags().StringSliceVarP(&syncFlags.Exclude, "exclude", "e", []string{}, "glob patterns to exclude")
	cmd.Flags().StringVarP(&syncFlags.Output, "format", "f", "human", "output format: human, json")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler(cmd.Context())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: fmt.Errorf("failed to load config: %w", err)}
	}
	applyFlagsToConfig(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
	}
	if err := validatePreconditions(cfg); err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
	}

	operation, err := cfg.SyncOperation()
	if err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
	}

	logger, err := createLogger(cfg, os.Stdout)
	if err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: fmt.Errorf("failed to create logger: %w", err)}
	}
	defer logger.Close()

	engine, cleanup, err := newEngine(cfg, operation, logger)
	if err != nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
	}
	defer cleanup()

	report, err := engine.Run(ctx)

	if report != nil && syncFlags.PlanReport != "" {
		if werr := output.WritePlanReport(report, syncFlags.PlanReport, syncFlags.PlanFormat); werr != nil {
			logger.Error(ctx, "Failed to write plan report", werr, nil)
		}
	}

	if !operation.Once {
		// continuous mode only stops on a signal
		return nil
	}
	if report == nil {
		return &ExitError{Code: models.StatusFailed.ExitCode(), Err: err}
	}
	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code, Err: err}
	}
	return nil
}

// newEngine opens both trees and wires the engine with its formatter
func newEngine(cfg *config.Config, operation *models.SyncOperation, logger logging.Logger) (*sync.Engine, func(), error) {
	source, err := storage.NewLocal(operation.SourcePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create source backend: %w", err)
	}

	var dest *storage.Filesystem
	if _, statErr := os.Stat(operation.DestPath); os.IsNotExist(statErr) && operation.DryRun {
		// nothing to scan yet; plan against an empty tree
		dest = storage.NewMemory()
	} else {
		dest, err = storage.NewLocal(operation.DestPath)
		if err != nil {
			source.Close()
			return nil, nil, fmt.Errorf("failed to create destination backend: %w", err)
		}
	}

	// the bar and the console echo would fight over the same lines
	progress := cfg.Output.Progress && !cfg.Output.Quiet && !cfg.Output.Verbose
	formatter := output.New(cfg.Output.Format, progress, os.Stdout)

	engine := sync.NewEngine(source, dest, formatter, logger, operation)
	if cfg.Output.Quiet && cfg.Output.Format != "json" {
		engine.SetOutput(io.Discard)
	}

	cleanup := func() {
		source.Close()
		dest.Close()
	}
	return engine, cleanup, nil
}

// createLogger builds the file logger, teed to the console when verbose
func createLogger(cfg *config.Config, console io.Writer) (logging.Logger, error) {
	level := logging.ParseLevel(cfg.Logging.Level)

	var loggers []logging.Logger
	if cfg.Logging.File != "" {
		format := logging.FormatText
		if cfg.Logging.Format == "json" {
			format = logging.FormatJSON
		}

		fileLogger, err := logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     format,
			Level:      level,
			MaxSize:    cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, fileLogger)
	}

	if cfg.Output.Verbose && !cfg.Output.Quiet {
		loggers = append(loggers, logging.NewConsoleLogger(console, level))
	}

	if len(loggers) == 0 {
		return logging.NewNullLogger(), nil
	}
	return logging.NewTeeLogger(loggers...), nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with the flags set on the
// command line; unset flags keep the config file values
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("source") {
		cfg.Sync.Source = syncFlags.Source
	}
	if changed("destination") {
		cfg.Sync.Destination = syncFlags.Dest
	}
	if changed("interval") {
		cfg.Sync.Interval = syncFlags.Interval
	}
	if changed("once") {
		cfg.Sync.Once = syncFlags.Once
	}
	if changed("dry-run") {
		cfg.Sync.DryRun = syncFlags.DryRun
	}
	if changed("exclude") {
		cfg.Exclude = syncFlags.Exclude
	}
	if changed("bandwidth") {
		cfg.Performance.BandwidthLimit = syncFlags.Bandwidth
	}
	if changed("format") {
		cfg.Output.Format = syncFlags.Output
	}
	if changed("progress") {
		cfg.Output.Progress = syncFlags.Progress
	}
	if changed("log") {
		cfg.Logging.File = syncFlags.LogFile
	}
	if changed("log-format") {
		cfg.Logging.Format = syncFlags.LogFormat
	}
	if changed("log-level") {
		cfg.Logging.Level = syncFlags.LogLevel
	}
	if changed("verbose") {
		cfg.Output.Verbose = globalFlags.Verbose
	}
	if changed("quiet") {
		cfg.Output.Quiet = globalFlags.Quiet
	}
}

// setupSignalHandler cancels the returned context on SIGINT or SIGTERM
func setupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
