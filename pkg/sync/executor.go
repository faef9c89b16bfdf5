package sync

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sdejongh/replicator/pkg/logging"
	"github.com/sdejongh/replicator/pkg/models"
	"github.com/sdejongh/replicator/pkg/ratelimit"
	"github.com/sdejongh/replicator/pkg/snapshot"
	"github.com/sdejongh/replicator/pkg/storage"
)

// countingReader wraps an io.Reader to count the bytes copied
type countingReader struct {
	reader io.Reader
	read   int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.read += int64(n)
	return n, err
}

// ResultFunc is called after each operation with its position in the plan
type ResultFunc func(done, total int, result models.OperationResult)

// Executor applies a plan to the destination backend, one operation at a time
type Executor struct {
	source   storage.Backend
	dest     storage.Backend
	limiter  *ratelimit.Limiter
	logger   logging.Logger
	onResult ResultFunc
}

// NewExecutor creates an executor. A nil limiter copies at full speed.
func NewExecutor(source, dest storage.Backend, limiter *ratelimit.Limiter, logger logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Executor{
		source:  source,
		dest:    dest,
		limiter: limiter,
		logger:  logger,
	}
}

// OnResult registers a callback fired after every operation
func (e *Executor) OnResult(fn ResultFunc) {
	e.onResult = fn
}

// Apply runs ops in order against the destination and keeps index in step
// with it. A failed operation is logged and counted; the next one still
// runs. Once ctx is cancelled the remaining operations are marked skipped.
func (e *Executor) Apply(ctx context.Context, ops []models.Operation, source *snapshot.Snapshot, index *snapshot.Index) (models.Statistics, []models.OperationResult) {
	var stats models.Statistics
	results := make([]models.OperationResult, 0, len(ops))

	for i, op := range ops {
		var result models.OperationResult
		if err := ctx.Err(); err != nil {
			result = models.OperationResult{Operation: op, Err: err, Skipped: true}
		} else {
			start := time.Now()
			bytes, err := e.apply(ctx, op, source, index)
			result = models.OperationResult{
				Operation: op,
				Err:       err,
				Bytes:     bytes,
				Duration:  time.Since(start),
			}
		}

		stats.Record(result)
		results = append(results, result)
		if e.onResult != nil {
			e.onResult(i+1, len(ops), result)
		}
	}

	return stats, results
}

func (e *Executor) apply(ctx context.Context, op models.Operation, source *snapshot.Snapshot, index *snapshot.Index) (int64, error) {
	switch op.Kind {
	case models.OpMove:
		return 0, e.move(ctx, op, index)
	case models.OpAdd:
		return e.add(ctx, op, source, index)
	case models.OpDelete:
		return 0, e.delete(ctx, op, index)
	case models.OpUpdate:
		return e.update(ctx, op, source, index)
	default:
		return 0, fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

func (e *Executor) move(ctx context.Context, op models.Operation, index *snapshot.Index) error {
	kind := kindName(op.IsDir)
	fields := logging.Fields{"from": op.From, "to": op.To}
	e.logger.Info(ctx, fmt.Sprintf("%s was renamed/moved: %s to %s", kind, op.From, op.To), fields)

	err := e.dest.MkdirAll(ctx, snapshot.Parent(op.To))
	if err == nil {
		err = e.dest.Rename(ctx, op.From, op.To)
	}
	if err != nil {
		e.logger.Error(ctx, fmt.Sprintf("Error while renaming or moving %s to %s", op.From, op.To), err, fields)
		return err
	}

	index.Rekey(op.From, op.To)
	e.logger.Debug(ctx, fmt.Sprintf("%s was moved successfully in destination: %s to %s", kind, op.From, op.To), fields)
	return nil
}

func (e *Executor) add(ctx context.Context, op models.Operation, source *snapshot.Snapshot, index *snapshot.Index) (int64, error) {
	kind := kindName(op.IsDir)
	fields := logging.Fields{"path": op.Path}
	e.logger.Info(ctx, fmt.Sprintf("%s was added: %s", kind, op.Path), fields)

	entry, err := e.sourceEntry(source, op.Path)
	if err != nil {
		e.logger.Error(ctx, fmt.Sprintf("Error copying %s at %s", strings.ToLower(kind), op.Path), err, fields)
		return 0, err
	}

	var n int64
	if op.IsDir {
		err = e.makeDir(ctx, op.Path, index)
	} else {
		err = e.dest.MkdirAll(ctx, snapshot.Parent(op.Path))
		if err == nil {
			n, err = e.copyFile(ctx, op.Path, entry)
		}
	}
	if err != nil {
		e.logger.Error(ctx, fmt.Sprintf("Error copying %s at %s", strings.ToLower(kind), op.Path), err, fields)
		return n, err
	}

	index.Put(op.Path, entry)
	e.logger.Debug(ctx, fmt.Sprintf("%s was copied successfully: %s", kind, op.Path), fields)
	return n, nil
}

// makeDir creates the directory alone; a file standing at that path is
// removed first
func (e *Executor) makeDir(ctx context.Context, rel string, index *snapshot.Index) error {
	info, err := e.dest.Stat(ctx, rel)
	if err == nil && !info.IsDir {
		if err := e.dest.Delete(ctx, rel); err != nil {
			return err
		}
		index.RemoveTree(rel)
	}
	return e.dest.MkdirAll(ctx, rel)
}

func (e *Executor) delete(ctx context.Context, op models.Operation, index *snapshot.Index) error {
	kind := kindName(op.IsDir)
	fields := logging.Fields{"path": op.Path}
	e.logger.Info(ctx, fmt.Sprintf("%s was deleted: %s", kind, op.Path), fields)

	if err := e.dest.Delete(ctx, op.Path); err != nil {
		e.logger.Error(ctx, fmt.Sprintf("Error deleting %s at %s", strings.ToLower(kind), op.Path), err, fields)
		return err
	}

	index.RemoveTree(op.Path)
	e.logger.Debug(ctx, fmt.Sprintf("%s has been deleted successfully from destination: %s", kind, op.Path), fields)
	return nil
}

func (e *Executor) update(ctx context.Context, op models.Operation, source *snapshot.Snapshot, index *snapshot.Index) (int64, error) {
	fields := logging.Fields{"path": op.Path}
	e.logger.Info(ctx, "File was modified: "+op.Path, fields)

	n, err := e.replaceFile(ctx, op.Path, source, index)
	if err != nil {
		e.logger.Error(ctx, "Error updating file in destination: "+op.Path, err, fields)
		return n, err
	}

	e.logger.Debug(ctx, "File was modified successfully in destination: "+op.Path, fields)
	return n, nil
}

func (e *Executor) replaceFile(ctx context.Context, rel string, source *snapshot.Snapshot, index *snapshot.Index) (int64, error) {
	entry, err := e.sourceEntry(source, rel)
	if err != nil {
		return 0, err
	}

	info, err := e.dest.Stat(ctx, rel)
	if err == nil && info.IsDir {
		if err := e.dest.Delete(ctx, rel); err != nil {
			return 0, err
		}
		index.RemoveTree(rel)
	}

	n, err := e.copyFile(ctx, rel, entry)
	if err != nil {
		return n, err
	}
	index.Put(rel, entry)
	return n, nil
}

// copyFile streams a source file into the destination. The backend writes
// through a temporary file so the target is never left half written.
func (e *Executor) copyFile(ctx context.Context, rel string, entry *models.Entry) (int64, error) {
	src, err := e.source.Open(ctx, rel)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	reader := &countingReader{reader: ratelimit.NewReader(ctx, src, e.limiter)}
	metadata := &storage.FileInfo{
		RelativePath: rel,
		Size:         entry.Size,
		ModTime:      entry.ModTime,
	}
	if err := e.dest.Write(ctx, rel, reader, metadata); err != nil {
		return reader.read, fmt.Errorf("failed to write destination file: %w", err)
	}
	return reader.read, nil
}

func (e *Executor) sourceEntry(source *snapshot.Snapshot, rel string) (*models.Entry, error) {
	entry, ok := source.Get(rel)
	if !ok {
		return nil, fmt.Errorf("%s is not part of the source snapshot", rel)
	}
	return entry, nil
}

func kindName(isDir bool) string {
	if isDir {
		return "Directory"
	}
	return "File"
}
