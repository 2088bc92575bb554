// Package pipeline executes single-track transfers and deletions as
// crash-recoverable two-state transitions against a destination catalog.
//
// A transfer upserts the destination row in state Copying before any file
// content moves, and flips it to Copied only after the copy succeeded.
// Because the storage path is a pure function of track metadata, a row
// found in Copying after a crash is enough to locate and remove the
// partial file; no catalog-level transaction is needed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"tracksync/internal/catalog"
)

// Pipeline moves tracks in and out of a destination tree one at a time.
type Pipeline struct {
	log      *slog.Logger
	progress Progress
}

// New builds a pipeline. A nil progress falls back to NopProgress.
func New(logger *slog.Logger, progress Progress) *Pipeline {
	if progress == nil {
		progress = NopProgress{}
	}
	return &Pipeline{log: logger, progress: progress}
}

// ExecuteCopy transfers one track into the destination tree.
//
// The Copying upsert is the durability checkpoint: after it, a crash or a
// failed copy is detectable by Recover. The Copied upsert is the commit
// point and is never written unless the content copy succeeded.
func (p *Pipeline) ExecuteCopy(ctx context.Context, dest *catalog.Store, track catalog.Track, baseDir string, hardlink bool) error {
	storagePath := track.StoragePath(baseDir)

	row := track
	row.FilePath = storagePath
	row.FileState = catalog.StateCopying
	if err := dest.UpsertTrack(ctx, row); err != nil {
		return fmt.Errorf("record in-flight copy for %s: %w", track.TrackID, err)
	}

	if err := os.MkdirAll(filepath.Dir(storagePath), 0o755); err != nil {
		return fmt.Errorf("create destination tree for %s: %w", storagePath, err)
	}

	if hardlink {
		if err := linkFile(track.FilePath, storagePath); err != nil {
			return fmt.Errorf("link %s to %s: %w", track.FilePath, storagePath, err)
		}
	} else {
		if err := p.copyFile(track, storagePath); err != nil {
			return fmt.Errorf("copy %s to %s: %w", track.FilePath, storagePath, err)
		}
	}

	row.FileState = catalog.StateCopied
	if err := dest.UpsertTrack(ctx, row); err != nil {
		return fmt.Errorf("record finished copy for %s: %w", track.TrackID, err)
	}

	p.log.Debug("track copied", "track_id", track.TrackID, "path", storagePath)
	return nil
}

// ExecuteDelete retracts one track from the destination: row first, then
// the file at its derived storage path. A file-removal failure after the
// row delete surfaces the orphaned path; there is no rollback.
func (p *Pipeline) ExecuteDelete(ctx context.Context, dest *catalog.Store, track catalog.Track, baseDir string) error {
	storagePath := track.StoragePath(baseDir)

	if err := dest.DeleteTrack(ctx, track.LocalID); err != nil {
		return fmt.Errorf("delete row for %s: %w", track.TrackID, err)
	}
	if err := os.Remove(storagePath); err != nil {
		return fmt.Errorf("remove file %s (row already deleted, file orphaned): %w", storagePath, err)
	}

	p.log.Debug("track deleted", "track_id", track.TrackID, "path", storagePath)
	return nil
}

// Recover scans the destination for rows stranded in state Copying and
// removes each row together with any partially written file. A file that
// is already absent is not an error. The pass is independent of any
// reconciliation run and safe to repeat.
func (p *Pipeline) Recover(ctx context.Context, dest *catalog.Store, baseDir string) (int, error) {
	stranded, err := dest.TracksByState(ctx, catalog.StateCopying)
	if err != nil {
		return 0, fmt.Errorf("scan for partial copies: %w", err)
	}

	removed := 0
	for _, track := range stranded {
		storagePath := track.StoragePath(baseDir)
		p.log.Info("removing partially copied track", "track", track.String(), "path", storagePath)

		if err := dest.DeleteTrack(ctx, track.LocalID); err != nil {
			return removed, fmt.Errorf("delete partial row for %s: %w", track.TrackID, err)
		}
		if err := os.Remove(storagePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove partial file %s: %w", storagePath, err)
		}
		removed++
	}
	return removed, nil
}

func (p *Pipeline) copyFile(track catalog.Track, dst string) error {
	in, err := os.Open(track.FilePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	reporter := p.progress.Start(track, info.Size())
	defer p.progress.Done(track)

	if _, err := io.Copy(io.MultiWriter(out, reporter), in); err != nil {
		return err
	}
	return out.Close()
}

func linkFile(src, dst string) error {
	// A leftover file from an earlier interrupted run blocks os.Link.
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}
	return os.Link(src, dst)
}
