package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/replicator/pkg/config"
	"github.com/sdejongh/replicator/pkg/models"
)

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()
	source := filepath.Join(root, "source")
	if err := os.Mkdir(source, 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Sync.Source = source
	cfg.Sync.Destination = filepath.Join(root, "dest")
	cfg.Logging.File = filepath.Join(root, "replicator.log")
	return cfg, root
}

func expectField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError on %q, got %v", field, err)
	}
	if verr.Field != field {
		t.Errorf("field = %q (%s), want %q", verr.Field, verr.Message, field)
	}
}

func TestValidatePreconditions(t *testing.T) {
	t.Run("CreatesDestination", func(t *testing.T) {
		cfg, root := testConfig(t)

		if err := validatePreconditions(cfg); err != nil {
			t.Fatalf("validatePreconditions() error = %v", err)
		}
		info, err := os.Stat(filepath.Join(root, "dest"))
		if err != nil || !info.IsDir() {
			t.Fatalf("destination was not created: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(cfg *config.Config, root string)
		field  string
	}{
		{"MissingSourceFlag", func(c *config.Config, _ string) { c.Sync.Source = "" }, "source"},
		{"MissingDestinationFlag", func(c *config.Config, _ string) { c.Sync.Destination = "" }, "destination"},
		{"SourceDoesNotExist", func(c *config.Config, root string) { c.Sync.Source = filepath.Join(root, "nope") }, "source"},
		{"SourceIsFile", func(c *config.Config, root string) {
			file := filepath.Join(root, "file")
			os.WriteFile(file, []byte("x"), 0644)
			c.Sync.Source = file
		}, "source"},
		{"SamePath", func(c *config.Config, _ string) { c.Sync.Destination = c.Sync.Source }, "destination"},
		{"DestinationInsideSource", func(c *config.Config, _ string) {
			c.Sync.Destination = filepath.Join(c.Sync.Source, "backup")
		}, "destination"},
		{"SourceInsideDestination", func(c *config.Config, root string) { c.Sync.Destination = root }, "source"},
		{"LogInsideSource", func(c *config.Config, _ string) {
			c.Logging.File = filepath.Join(c.Sync.Source, "replicator.log")
		}, "log"},
		{"LogInsideDestination", func(c *config.Config, _ string) {
			c.Logging.File = filepath.Join(c.Sync.Destination, "logs", "replicator.log")
		}, "log"},
		{"LogIsDirectory", func(c *config.Config, root string) {
			dir := filepath.Join(root, "logs")
			os.Mkdir(dir, 0755)
			c.Logging.File = dir
		}, "log"},
		{"DestinationIsFile", func(c *config.Config, root string) {
			file := filepath.Join(root, "destfile")
			os.WriteFile(file, []byte("x"), 0644)
			c.Sync.Destination = file
		}, "destination"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, root := testConfig(t)
			tt.mutate(cfg, root)

			expectField(t, validatePreconditions(cfg), tt.field)
		})
	}

	t.Run("NoDestinationCreatedOnFailure", func(t *testing.T) {
		cfg, root := testConfig(t)
		cfg.Logging.File = filepath.Join(cfg.Sync.Source, "replicator.log")

		if err := validatePreconditions(cfg); err == nil {
			t.Fatal("expected an error")
		}
		if _, err := os.Stat(filepath.Join(root, "dest")); !os.IsNotExist(err) {
			t.Error("destination must not be created when an earlier check fails")
		}
	})

	t.Run("NormalizesPaths", func(t *testing.T) {
		cfg, root := testConfig(t)
		cfg.Sync.Destination = filepath.Join(root, "x", "..", "dest")

		if err := validatePreconditions(cfg); err != nil {
			t.Fatalf("validatePreconditions() error = %v", err)
		}
		if cfg.Sync.Destination != filepath.Join(root, "dest") {
			t.Errorf("destination = %q", cfg.Sync.Destination)
		}
	})
}

func TestCreateLogger(t *testing.T) {
	cfg, root := testConfig(t)
	var console bytes.Buffer

	logger, err := createLogger(cfg, &console)
	if err != nil {
		t.Fatalf("createLogger() error = %v", err)
	}
	logger.Info(context.Background(), "File was added: a.txt", nil)
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(console.String(), "File was added: a.txt") {
		t.Errorf("console output = %q", console.String())
	}
	data, err := os.ReadFile(filepath.Join(root, "replicator.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[INFO] File was added: a.txt") {
		t.Errorf("log file = %q", data)
	}

	t.Run("Quiet", func(t *testing.T) {
		cfg.Output.Quiet = true
		var quiet bytes.Buffer
		logger, err := createLogger(cfg, &quiet)
		if err != nil {
			t.Fatal(err)
		}
		logger.Info(context.Background(), "hidden", nil)
		logger.Close()
		if quiet.Len() != 0 {
			t.Errorf("quiet mode printed %q", quiet.String())
		}
	})
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	writeVersion(&buf, true)
	if buf.String() != Version+"\n" {
		t.Errorf("short version = %q", buf.String())
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "sync:\n  interval: 0\n  source: /from/file\noutput:\n  format: xml\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	globalFlags.ConfigFile = path
	t.Cleanup(func() { globalFlags.ConfigFile = "" })

	load := func(t *testing.T, args ...string) *config.Config {
		t.Helper()
		cmd := NewSyncCommand()
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatal(err)
		}
		cfg, err := loadConfig()
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		applyFlagsToConfig(cmd, cfg)
		return cfg
	}

	t.Run("FlagsFixInvalidFileValues", func(t *testing.T) {
		cfg := load(t, "--once", "-f", "json")

		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if !cfg.Sync.Once || cfg.Output.Format != "json" {
			t.Errorf("flags not applied: %+v %+v", cfg.Sync, cfg.Output)
		}
		if cfg.Sync.Source != "/from/file" {
			t.Errorf("source = %q, want the file value", cfg.Sync.Source)
		}
	})

	t.Run("FileValuesStillChecked", func(t *testing.T) {
		cfg := load(t, "--once")

		expectField(t, cfg.Validate(), "output.format")
	})

	t.Run("SourceFlagWins", func(t *testing.T) {
		cfg := load(t, "--once", "-f", "human", "-s", "/from/flag")

		if cfg.Sync.Source != "/from/flag" {
			t.Errorf("source = %q, want the flag value", cfg.Sync.Source)
		}
	})
}

func TestCheckPath(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Sync.Source = ""

	err := validateTrees(cfg)
	expectField(t, err, "source")
	if !strings.Contains(err.Error(), "source path is required") {
		t.Errorf("error = %v", err)
	}

	if err := checkPath("log", t.TempDir()); err != nil {
		t.Errorf("checkPath() error = %v", err)
	}
}
