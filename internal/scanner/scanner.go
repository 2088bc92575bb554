// Package scanner discovers music files under source roots and feeds them
// into a catalog. Each root runs one producer goroutine streaming paths to
// a consumer that parses tags, computes the content identity, and upserts
// the row; multiple roots scan concurrently.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"tracksync/internal/catalog"
)

// Stats summarizes one scan run.
type Stats struct {
	Added      int64
	Duplicates int64
	Pruned     int64
}

// Scanner imports directory trees into one catalog.
type Scanner struct {
	store      *catalog.Store
	reader     TagReader
	log        *slog.Logger
	extensions []string
}

// New builds a Scanner over the given catalog.
func New(store *catalog.Store, reader TagReader, logger *slog.Logger, extensions []string) *Scanner {
	return &Scanner{store: store, reader: reader, log: logger, extensions: extensions}
}

// Scan imports the given roots, skipping paths the catalog already holds,
// and records each root for later update runs. Roots scan concurrently;
// the first error cancels the remaining producers.
func (s *Scanner) Scan(ctx context.Context, roots []string) (Stats, error) {
	return s.scan(ctx, roots, func(ctx context.Context, path string) (bool, error) {
		return s.store.Exists(ctx, path)
	})
}

// Update re-scans the previously recorded roots, skipping every path
// already present beneath them, then prunes rows whose files no longer
// exist on disk.
func (s *Scanner) Update(ctx context.Context) (Stats, error) {
	roots, err := s.store.ListDirectories(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list recorded directories: %w", err)
	}

	known := make(map[string]struct{})
	for _, root := range roots {
		paths, err := s.store.TrackPathsUnder(ctx, root)
		if err != nil {
			return Stats{}, err
		}
		for _, p := range paths {
			known[p] = struct{}{}
		}
	}

	stats, err := s.scan(ctx, roots, func(_ context.Context, path string) (bool, error) {
		_, ok := known[path]
		return ok, nil
	})
	if err != nil {
		return stats, err
	}

	pruned, err := s.Prune(ctx)
	stats.Pruned = pruned
	return stats, err
}

// Prune deletes rows whose underlying file has disappeared.
func (s *Scanner) Prune(ctx context.Context) (int64, error) {
	tracks, err := s.store.ListTracks(ctx)
	if err != nil {
		return 0, err
	}
	var pruned int64
	for _, track := range tracks {
		if _, err := os.Stat(track.FilePath); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return pruned, fmt.Errorf("stat %s: %w", track.FilePath, err)
		}
		s.log.Info("pruning track missing from disk", "path", track.FilePath)
		if err := s.store.DeleteTrack(ctx, track.LocalID); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

type knownFunc func(ctx context.Context, path string) (bool, error)

func (s *Scanner) scan(ctx context.Context, roots []string, known knownFunc) (Stats, error) {
	var added, duplicates atomic.Int64

	group, ctx := errgroup.WithContext(ctx)
	for _, root := range roots {
		root := root
		group.Go(func() error {
			s.log.Info("scanning directory", "root", root)
			for result := range Traverse(ctx, root, s.extensions) {
				if result.Err != nil {
					return fmt.Errorf("traverse %s: %w", root, result.Err)
				}

				dupe, err := known(ctx, result.Path)
				if err != nil {
					return err
				}
				if dupe {
					duplicates.Add(1)
					continue
				}

				track, err := s.reader.ReadTrack(result.Path)
				if err != nil {
					return err
				}
				track.FileState = catalog.StateCopied
				if err := s.store.UpsertTrack(ctx, track); err != nil {
					return err
				}
				s.log.Debug("imported track", "track", track.String(), "path", result.Path)
				added.Add(1)
			}
			return s.store.RecordDirectory(ctx, root)
		})
	}

	err := group.Wait()
	return Stats{Added: added.Load(), Duplicates: duplicates.Load()}, err
}
