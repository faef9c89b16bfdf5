package logging

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// ConsoleLogger echoes bare messages to a writer, without timestamps or
// fields. It backs the verbose console output.
type ConsoleLogger struct {
	mu    *sync.Mutex
	w     io.Writer
	level Level
}

// NewConsoleLogger creates a console logger printing messages at or above level
func NewConsoleLogger(w io.Writer, level Level) *ConsoleLogger {
	return &ConsoleLogger{mu: &sync.Mutex{}, w: w, level: level}
}

// Debug prints a debug message
func (l *ConsoleLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.print(DebugLevel, msg, nil)
}

// Info prints an info message
func (l *ConsoleLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.print(InfoLevel, msg, nil)
}

// Warn prints a warning message
func (l *ConsoleLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.print(WarnLevel, msg, nil)
}

// Error prints an error message followed by the error
func (l *ConsoleLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.print(ErrorLevel, msg, err)
}

// WithFields returns the logger itself; the console does not show fields
func (l *ConsoleLogger) WithFields(fields Fields) Logger {
	return l
}

// Close does nothing, the writer is owned by the caller
func (l *ConsoleLogger) Close() error {
	return nil
}

func (l *ConsoleLogger) print(level Level, msg string, err error) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		fmt.Fprintf(l.w, "%s: %v\n", msg, err)
		return
	}
	fmt.Fprintln(l.w, msg)
}
