package testsupport

import (
	"context"
	"os"
	"testing"

	"tracksync/internal/catalog"
)

// MustOpenStore opens a catalog in a fresh temp directory and registers
// cleanup. destination selects the catalog role.
func MustOpenStore(t testing.TB, destination bool) *catalog.Store {
	t.Helper()

	dir := t.TempDir()
	return MustOpenStoreAt(t, dir, destination)
}

// MustOpenStoreAt opens a catalog rooted at dir and registers cleanup.
func MustOpenStoreAt(t testing.TB, dir string, destination bool) *catalog.Store {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	store, err := catalog.Open(context.Background(), dir, destination)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewTrack builds a track with its content identity derived from the
// provided metadata.
func NewTrack(artist, album, title, extension, filePath string) catalog.Track {
	track := catalog.Track{
		Title:     title,
		Artist:    artist,
		Album:     album,
		FilePath:  filePath,
		Extension: extension,
		FileState: catalog.StateCopied,
	}
	track.TrackID = catalog.ComputeTrackID(track)
	return track
}

// SeedTrack upserts the track into the store, failing the test on error.
func SeedTrack(t testing.TB, store *catalog.Store, track catalog.Track) {
	t.Helper()

	if err := store.UpsertTrack(context.Background(), track); err != nil {
		t.Fatalf("store.UpsertTrack: %v", err)
	}
}
