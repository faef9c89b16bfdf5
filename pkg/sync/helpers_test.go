package sync

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/sdejongh/replicator/pkg/models"
	"github.com/sdejongh/replicator/pkg/snapshot"
	"github.com/sdejongh/replicator/pkg/storage"
	"github.com/stretchr/testify/require"
)

// tree describes backend content: a path ending in "/" is a directory,
// anything else a file with the given content
type tree map[string]string

func newTree(t *testing.T, content tree) *storage.Filesystem {
	t.Helper()
	backend := storage.NewMemory()
	populate(t, backend, content)
	return backend
}

func populate(t *testing.T, backend *storage.Filesystem, content tree) {
	t.Helper()
	for p, data := range content {
		if p[len(p)-1] == '/' {
			require.NoError(t, backend.Billy().MkdirAll(p[:len(p)-1], 0o755))
			continue
		}
		require.NoError(t, backend.Billy().MkdirAll(snapshot.Parent(p), 0o755))
		require.NoError(t, util.WriteFile(backend.Billy(), p, []byte(data), 0o644))
	}
}

func scan(t *testing.T, backend storage.Backend) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.NewScanner(backend, nil, nil, nil).Scan(context.Background())
	require.NoError(t, err)
	return snap
}

func plan(t *testing.T, source, dest storage.Backend) []models.Operation {
	t.Helper()
	return NewPlanner(nil).Plan(context.Background(), scan(t, source), scan(t, dest))
}

// requireMirror checks that dest holds exactly the source paths with the
// same kinds and fingerprints
func requireMirror(t *testing.T, source, dest storage.Backend) {
	t.Helper()
	src, dst := scan(t, source), scan(t, dest)
	require.Equal(t, src.Paths(), dst.Paths())
	for _, p := range src.Paths() {
		s, _ := src.Get(p)
		d, _ := dst.Get(p)
		require.Equal(t, s.IsDir, d.IsDir, p)
		require.Equal(t, s.Fingerprint, d.Fingerprint, p)
	}
}

func kinds(ops []models.Operation) []models.OperationKind {
	out := make([]models.OperationKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}
