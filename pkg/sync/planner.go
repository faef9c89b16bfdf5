package sync

import (
	"context"
	"sort"

	"github.com/sdejongh/replicator/pkg/logging"
	"github.com/sdejongh/replicator/pkg/models"
	"github.com/sdejongh/replicator/pkg/snapshot"
)

// Planner derives the operations that turn a destination tree into a copy
// of the source tree
type Planner struct {
	logger logging.Logger
}

// NewPlanner creates a planner
func NewPlanner(logger logging.Logger) *Planner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Planner{logger: logger}
}

// Plan compares two snapshots and returns moves, then adds, then deletes,
// then updates. Neither snapshot is modified; moves are simulated on a
// private index so the later phases see the re-keyed destination.
func (p *Planner) Plan(ctx context.Context, source, dest *snapshot.Snapshot) []models.Operation {
	sim := dest.Index()
	sourcePaths := byDepth(source.Paths(), false)

	var ops []models.Operation
	ops = append(ops, p.planMoves(ctx, source, sim, sourcePaths)...)
	ops = append(ops, p.planAdds(source, sim, sourcePaths)...)
	ops = append(ops, p.planDeletes(source, sim)...)
	ops = append(ops, p.planUpdates(source, sim, sourcePaths)...)

	p.logger.Debug(ctx, "Plan computed", logging.Fields{
		"operations":   len(ops),
		"source_paths": source.Len(),
		"dest_paths":   dest.Len(),
	})
	return ops
}

// planMoves pairs a missing source path with the only destination entry of
// the same kind carrying the same fingerprint. Shallow paths go first so a
// moved directory carries its children along and they stop being missing.
func (p *Planner) planMoves(ctx context.Context, source *snapshot.Snapshot, sim *snapshot.Index, paths []string) []models.Operation {
	var ops []models.Operation
	for _, rel := range paths {
		if rel == "" || sim.Has(rel) {
			continue
		}
		src, _ := source.Get(rel)

		candidates := sim.FindByFingerprint(src.Fingerprint, src.IsDir)
		if len(candidates) != 1 {
			if len(candidates) > 1 {
				p.logger.Debug(ctx, "Ambiguous move candidates, falling back to add: "+rel, logging.Fields{
					"path":       rel,
					"candidates": len(candidates),
				})
			}
			continue
		}

		from := candidates[0]
		if from == "" || from == rel || snapshot.IsDescendant(rel, from) || underFile(sim, rel) {
			continue
		}

		ops = append(ops, models.Move(from, rel, src.IsDir))
		sim.Rekey(from, rel)
	}
	return ops
}

// planAdds emits the source paths still absent after the moves, parents
// before children. A source directory standing where the destination has a
// file is added too; the executor replaces the file.
func (p *Planner) planAdds(source *snapshot.Snapshot, sim *snapshot.Index, paths []string) []models.Operation {
	var ops []models.Operation
	for _, rel := range paths {
		if rel == "" {
			continue
		}
		src, _ := source.Get(rel)
		existing, ok := sim.Get(rel)
		if ok && (existing.IsDir || !src.IsDir) {
			continue
		}

		ops = append(ops, models.Add(rel, src.IsDir))
		sim.Put(rel, src)
	}
	return ops
}

// planDeletes emits destination paths unknown to the source, children
// before parents
func (p *Planner) planDeletes(source *snapshot.Snapshot, sim *snapshot.Index) []models.Operation {
	var ops []models.Operation
	for _, rel := range byDepth(sim.Paths(), true) {
		if rel == "" || source.Has(rel) {
			continue
		}
		existing, _ := sim.Get(rel)
		ops = append(ops, models.Delete(rel, existing.IsDir))
		sim.Remove(rel)
	}
	return ops
}

// planUpdates emits files present on both sides with different content.
// Directories never get an update of their own.
func (p *Planner) planUpdates(source *snapshot.Snapshot, sim *snapshot.Index, paths []string) []models.Operation {
	var ops []models.Operation
	for _, rel := range paths {
		src, _ := source.Get(rel)
		if src == nil || src.IsDir {
			continue
		}
		existing, ok := sim.Get(rel)
		if !ok || (!existing.IsDir && existing.Fingerprint == src.Fingerprint) {
			continue
		}
		ops = append(ops, models.Update(rel))
	}
	return ops
}

// underFile reports whether an ancestor of rel is a file in the index, in
// which case rel only becomes reachable after the add phase replaces it
func underFile(sim *snapshot.Index, rel string) bool {
	for p := snapshot.Parent(rel); p != ""; p = snapshot.Parent(p) {
		if e, ok := sim.Get(p); ok && !e.IsDir {
			return true
		}
	}
	return false
}

// byDepth sorts paths by separator count, shallowest first unless
// deepest is set; equal depths keep lexical order
func byDepth(paths []string, deepest bool) []string {
	sort.SliceStable(paths, func(i, j int) bool {
		di, dj := snapshot.Depth(paths[i]), snapshot.Depth(paths[j])
		if di != dj {
			if deepest {
				return di > dj
			}
			return di < dj
		}
		return paths[i] < paths[j]
	})
	return paths
}
