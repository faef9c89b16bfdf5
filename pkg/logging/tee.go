package logging

import (
	"context"
	"errors"
)

// TeeLogger fans every call out to several loggers
type TeeLogger struct {
	loggers []Logger
}

// NewTeeLogger combines loggers. Nil entries are ignored.
func NewTeeLogger(loggers ...Logger) *TeeLogger {
	t := &TeeLogger{}
	for _, l := range loggers {
		if l != nil {
			t.loggers = append(t.loggers, l)
		}
	}
	return t
}

// Debug forwards a debug message to every logger
func (t *TeeLogger) Debug(ctx context.Context, msg string, fields Fields) {
	for _, l := range t.loggers {
		l.Debug(ctx, msg, fields)
	}
}

// Info forwards an info message to every logger
func (t *TeeLogger) Info(ctx context.Context, msg string, fields Fields) {
	for _, l := range t.loggers {
		l.Info(ctx, msg, fields)
	}
}

// Warn forwards a warning to every logger
func (t *TeeLogger) Warn(ctx context.Context, msg string, fields Fields) {
	for _, l := range t.loggers {
		l.Warn(ctx, msg, fields)
	}
}

// Error forwards an error to every logger
func (t *TeeLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	for _, l := range t.loggers {
		l.Error(ctx, msg, err, fields)
	}
}

// WithFields returns a tee over each logger's child
func (t *TeeLogger) WithFields(fields Fields) Logger {
	children := make([]Logger, len(t.loggers))
	for i, l := range t.loggers {
		children[i] = l.WithFields(fields)
	}
	return &TeeLogger{loggers: children}
}

// Close closes every logger and joins their errors
func (t *TeeLogger) Close() error {
	var errs []error
	for _, l := range t.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
