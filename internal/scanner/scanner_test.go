package scanner_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"tracksync/internal/catalog"
	"tracksync/internal/scanner"
	"tracksync/internal/testsupport"
)

// stubTagReader derives metadata from the file name so scans run without
// real audio fixtures.
type stubTagReader struct{}

func (stubTagReader) ReadTrack(path string) (catalog.Track, error) {
	name := filepath.Base(path)
	title := name[:len(name)-len(filepath.Ext(name))]
	track := catalog.Track{
		Title:      title,
		Artist:     "Stub Artist",
		Album:      "Stub Album",
		FilePath:   path,
		DiscNumber: 1,
		FileState:  catalog.StateUnknown,
		Extension:  filepath.Ext(name)[1:],
	}
	track.TrackID = catalog.ComputeTrackID(track)
	return track, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScanner(t *testing.T) (*scanner.Scanner, *catalog.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, false)
	return scanner.New(store, stubTagReader{}, testLogger(), []string{"flac", "mp3"}), store
}

func TestScanImportsMusicFiles(t *testing.T) {
	sc, store := newTestScanner(t)
	ctx := context.Background()

	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "album", "one.flac"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "album", "two.mp3"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "album", "cover.jpg"), 10)

	stats, err := sc.Scan(ctx, []string{root})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if stats.Added != 2 {
		t.Fatalf("Added = %d, want 2", stats.Added)
	}

	tracks, err := store.ListTracks(ctx)
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 cataloged tracks, got %d", len(tracks))
	}
	for _, track := range tracks {
		if track.FileState != catalog.StateCopied {
			t.Fatalf("imported track state = %s, want copied", track.FileState)
		}
	}
}

func TestScanIsIdempotent(t *testing.T) {
	sc, store := newTestScanner(t)
	ctx := context.Background()

	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "one.flac"), 10)

	if _, err := sc.Scan(ctx, []string{root}); err != nil {
		t.Fatalf("first Scan failed: %v", err)
	}
	stats, err := sc.Scan(ctx, []string{root})
	if err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}
	if stats.Added != 0 || stats.Duplicates != 1 {
		t.Fatalf("second scan stats = %+v, want 0 added / 1 duplicate", stats)
	}

	tracks, err := store.ListTracks(ctx)
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track after rescan, got %d", len(tracks))
	}
}

func TestScanRecordsDirectories(t *testing.T) {
	sc, store := newTestScanner(t)
	ctx := context.Background()

	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "one.flac"), 10)

	if _, err := sc.Scan(ctx, []string{root}); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	dirs, err := store.ListDirectories(ctx)
	if err != nil {
		t.Fatalf("ListDirectories failed: %v", err)
	}
	if len(dirs) != 1 || dirs[0] != root {
		t.Fatalf("unexpected recorded directories: %v", dirs)
	}
}

func TestUpdatePicksUpNewAndPrunesMissing(t *testing.T) {
	sc, store := newTestScanner(t)
	ctx := context.Background()

	root := t.TempDir()
	keep := filepath.Join(root, "keep.flac")
	gone := filepath.Join(root, "gone.flac")
	testsupport.WriteFile(t, keep, 10)
	testsupport.WriteFile(t, gone, 10)

	if _, err := sc.Scan(ctx, []string{root}); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	testsupport.WriteFile(t, filepath.Join(root, "new.flac"), 10)
	if err := os.Remove(gone); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}

	stats, err := sc.Update(ctx)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if stats.Added != 1 {
		t.Fatalf("Added = %d, want 1", stats.Added)
	}
	if stats.Pruned != 1 {
		t.Fatalf("Pruned = %d, want 1", stats.Pruned)
	}

	tracks, err := store.ListTracks(ctx)
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks after update, got %d", len(tracks))
	}
	for _, track := range tracks {
		if track.FilePath == gone {
			t.Fatalf("pruned track still present: %s", track.FilePath)
		}
	}
}

func TestScanFailsOnMissingRoot(t *testing.T) {
	sc, _ := newTestScanner(t)
	ctx := context.Background()

	if _, err := sc.Scan(ctx, []string{filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing root")
	}
}
