package cli

import (
	"fmt"
	"os"

	"github.com/sdejongh/replicator/internal/platform"
	"github.com/sdejongh/replicator/pkg/config"
	"github.com/sdejongh/replicator/pkg/models"
)

// validatePreconditions runs every check that must pass before the first
// cycle. Paths in cfg are replaced by their normalized form and a missing
// destination is created.
func validatePreconditions(cfg *config.Config) error {
	if err := validateTrees(cfg); err != nil {
		return err
	}
	if err := validateLogFile(cfg); err != nil {
		return err
	}
	return ensureDestination(cfg.Sync.Destination)
}

// validateTrees checks that both paths are given, the source is a directory
// and neither tree contains the other
func validateTrees(cfg *config.Config) error {
	if err := checkPath("source", cfg.Sync.Source); err != nil {
		return err
	}
	if err := checkPath("destination", cfg.Sync.Destination); err != nil {
		return err
	}

	source, err := platform.NormalizePath(cfg.Sync.Source)
	if err != nil {
		return &models.ValidationError{Field: "source", Message: err.Error()}
	}
	dest, err := platform.NormalizePath(cfg.Sync.Destination)
	if err != nil {
		return &models.ValidationError{Field: "destination", Message: err.Error()}
	}

	info, err := os.Stat(source)
	if os.IsNotExist(err) {
		return &models.ValidationError{Field: "source", Message: fmt.Sprintf("source path does not exist: %s", source)}
	} else if err != nil {
		return &models.ValidationError{Field: "source", Message: fmt.Sprintf("failed to access source path: %v", err)}
	} else if !info.IsDir() {
		return &models.ValidationError{Field: "source", Message: fmt.Sprintf("source path is not a directory: %s", source)}
	}

	if same, err := platform.IsSubPath(dest, source); err == nil && same {
		if inside, _ := platform.IsSubPath(source, dest); inside {
			return &models.ValidationError{Field: "destination", Message: fmt.Sprintf("source and destination cannot be the same: %s", source)}
		}
		return &models.ValidationError{Field: "source", Message: "source cannot be inside destination directory"}
	}
	if inside, err := platform.IsSubPath(source, dest); err == nil && inside {
		return &models.ValidationError{Field: "destination", Message: "destination cannot be inside source directory"}
	}

	cfg.Sync.Source = source
	cfg.Sync.Destination = dest
	return nil
}

// validateLogFile keeps the log file out of both trees, otherwise every
// cycle would replicate or delete it
func validateLogFile(cfg *config.Config) error {
	if cfg.Logging.File == "" {
		return nil
	}

	if err := checkPath("log", cfg.Logging.File); err != nil {
		return err
	}

	logFile, err := platform.NormalizePath(cfg.Logging.File)
	if err != nil {
		return &models.ValidationError{Field: "log", Message: err.Error()}
	}

	if info, err := os.Stat(logFile); err == nil && info.IsDir() {
		return &models.ValidationError{Field: "log", Message: fmt.Sprintf("log file path is a directory: %s", logFile)}
	}

	for _, tree := range []struct{ name, path string }{
		{"source", cfg.Sync.Source},
		{"destination", cfg.Sync.Destination},
	} {
		if inside, err := platform.IsSubPath(tree.path, logFile); err == nil && inside {
			return &models.ValidationError{Field: "log", Message: fmt.Sprintf("log file cannot be inside the %s directory", tree.name)}
		}
	}

	cfg.Logging.File = logFile
	return nil
}

// checkPath rejects empty paths and names the current platform cannot hold
func checkPath(field, p string) error {
	if err := platform.ValidatePath(p); err != nil {
		if p == "" {
			return &models.ValidationError{Field: field, Message: field + " path is required"}
		}
		return &models.ValidationError{Field: field, Message: err.Error()}
	}
	return nil
}

// ensureDestination creates the destination directory when it is missing
func ensureDestination(dest string) error {
	info, err := os.Stat(dest)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dest, 0755); err != nil {
			return &models.ValidationError{Field: "destination", Message: fmt.Sprintf("failed to create destination directory: %v", err)}
		}
		return nil
	case err != nil:
		return &models.ValidationError{Field: "destination", Message: fmt.Sprintf("failed to access destination path: %v", err)}
	case !info.IsDir():
		return &models.ValidationError{Field: "destination", Message: fmt.Sprintf("destination path exists but is not a directory: %s", dest)}
	}
	return nil
}
