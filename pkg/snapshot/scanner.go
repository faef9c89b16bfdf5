package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sdejongh/replicator/internal/platform"
	"github.com/sdejongh/replicator/pkg/fingerprint"
	"github.com/sdejongh/replicator/pkg/logging"
	"github.com/sdejongh/replicator/pkg/models"
	"github.com/sdejongh/replicator/pkg/storage"
)

// Scanner builds snapshots of a storage backend
type Scanner struct {
	backend  storage.Backend
	hasher   *fingerprint.Hasher
	logger   logging.Logger
	excluder *Excluder
}

// NewScanner creates a scanner. A nil excluder keeps every entry.
func NewScanner(backend storage.Backend, hasher *fingerprint.Hasher, excluder *Excluder, logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if hasher == nil {
		hasher = fingerprint.NewHasher(fingerprint.DefaultBufferSize)
	}
	return &Scanner{
		backend:  backend,
		hasher:   hasher,
		logger:   logger,
		excluder: excluder,
	}
}

// Scan walks the whole backend in post-order and returns its snapshot.
// Entries that cannot be read are logged and left out; only a missing root
// or cancellation fails the scan.
func (s *Scanner) Scan(ctx context.Context) (*Snapshot, error) {
	root := s.backend.Root()

	info, err := s.backend.Stat(ctx, "")
	if err != nil || !info.IsDir {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", root)
		}
		return nil, &ScanError{Path: root, Err: fmt.Errorf("%w: %v", ErrRootNotFound, err)}
	}

	snap := &Snapshot{root: root, entries: make(map[string]*models.Entry)}
	rootEntry := &models.Entry{
		RelativePath: "",
		Name:         filepath.Base(root),
		IsDir:        true,
		AbsolutePath: root,
	}

	fp, err := s.scanDir(ctx, snap, "")
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}
	rootEntry.Fingerprint = fp
	snap.entries[""] = rootEntry

	s.logger.Debug(ctx, "Scan completed", logging.Fields{
		"root":    root,
		"entries": len(snap.entries),
		"skipped": snap.skipped,
	})
	return snap, nil
}

// scanDir records every child of dir and returns dir's fingerprint. An error
// is only returned for cancellation or when the root itself cannot be listed.
func (s *Scanner) scanDir(ctx context.Context, snap *Snapshot, dir string) (string, error) {
	children, err := s.backend.ReadDir(ctx, dir)
	if err != nil {
		return "", err
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })

	prints := make([]string, 0, len(children))
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		rel := Join(dir, child.Name)
		fields := logging.Fields{"path": rel}

		if child.IsSymlink {
			s.skip(ctx, snap, "Skipping symbolic link: "+rel, nil, fields)
			continue
		}
		if s.excluder.Match(rel, child.IsDir) {
			s.logger.Debug(ctx, "Excluded: "+rel, fields)
			continue
		}

		var entry *models.Entry
		if child.IsDir {
			fp, err := s.scanDir(ctx, snap, rel)
			if err != nil {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				s.skip(ctx, snap, "Skipping unreadable directory: "+rel, err, fields)
				continue
			}
			entry = &models.Entry{
				Name:        child.Name,
				IsDir:       true,
				Fingerprint: fp,
			}
		} else {
			if !child.Mode.IsRegular() {
				s.skip(ctx, snap, "Skipping special file: "+rel, nil, fields)
				continue
			}
			fp, err := s.hasher.HashFile(ctx, s.backend, rel)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return "", err
				}
				s.skip(ctx, snap, "Skipping unreadable file: "+rel, err, fields)
				continue
			}
			entry = &models.Entry{
				Name:        child.Name,
				Size:        child.Size,
				ModTime:     child.ModTime,
				Created:     platform.CreationTime(child.Sys, child.ModTime),
				Fingerprint: fp,
			}
		}

		entry.RelativePath = rel
		entry.AbsolutePath = s.backend.AbsolutePath(rel)
		snap.entries[rel] = entry
		prints = append(prints, entry.Fingerprint)
	}

	return fingerprint.HashDirectory(prints), nil
}

func (s *Scanner) skip(ctx context.Context, snap *Snapshot, msg string, err error, fields logging.Fields) {
	snap.skipped++
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	s.logger.Warn(ctx, msg, fields)
}
