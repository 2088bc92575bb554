package scanner_test

import (
	"path/filepath"
	"testing"

	"tracksync/internal/scanner"
	"tracksync/internal/testsupport"
)

func TestReadTrackRejectsUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-audio.flac")
	testsupport.WriteFile(t, path, 128)

	if _, err := scanner.NewTagReader().ReadTrack(path); err == nil {
		t.Fatal("expected tag parsing to fail on junk bytes")
	}
}

func TestReadTrackMissingFile(t *testing.T) {
	if _, err := scanner.NewTagReader().ReadTrack(filepath.Join(t.TempDir(), "missing.flac")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
