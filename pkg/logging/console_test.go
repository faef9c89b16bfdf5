package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, InfoLevel)
	ctx := context.Background()

	logger.Debug(ctx, "hidden", nil)
	logger.Info(ctx, "File was added: a.txt", Fields{"path": "a.txt"})
	logger.Error(ctx, "Error deleting File at b.txt", errors.New("busy"), nil)

	want := "File was added: a.txt\nError deleting File at b.txt: busy\n"
	if buf.String() != want {
		t.Errorf("console output = %q, want %q", buf.String(), want)
	}
}

func TestTeeLogger(t *testing.T) {
	var buf bytes.Buffer
	file, logPath := newTestLogger(t, FormatText, DebugLevel)
	tee := NewTeeLogger(NewConsoleLogger(&buf, InfoLevel), file, nil)
	ctx := context.Background()

	tee.Debug(ctx, "debug only in file", nil)
	tee.WithFields(Fields{"cycle": "c1"}).Info(ctx, "both sinks", nil)
	tee.Warn(ctx, "warned", nil)

	if err := tee.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if strings.Contains(buf.String(), "debug only in file") {
		t.Error("console should filter debug lines")
	}
	if buf.String() != "both sinks\nwarned\n" {
		t.Errorf("console output = %q", buf.String())
	}

	content := readLog(t, logPath)
	for _, want := range []string{"[DEBUG] debug only in file", "[INFO] both sinks cycle=c1", "[WARN] warned"} {
		if !strings.Contains(content, want) {
			t.Errorf("file log missing %q:\n%s", want, content)
		}
	}
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", nil)
	logger.Warn(ctx, "warn", nil)
	logger.Error(ctx, "error", errors.New("x"), nil)

	if logger.WithFields(Fields{"key": "value"}) == nil {
		t.Error("WithFields should return a logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
