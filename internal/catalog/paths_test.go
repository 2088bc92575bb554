package catalog_test

import (
	"path/filepath"
	"testing"

	"tracksync/internal/catalog"
)

func TestStoragePathLayout(t *testing.T) {
	track := catalog.Track{
		Artist:     "Miles Davis",
		Album:      "Kind of Blue",
		Title:      "So What",
		Extension:  "flac",
		DiscNumber: 1,
	}
	want := filepath.Join("/music", "Miles Davis", "Kind of Blue", "1", "So What.flac")
	if got := track.StoragePath("/music"); got != want {
		t.Fatalf("StoragePath = %s, want %s", got, want)
	}
}

func TestStoragePathCleansSegments(t *testing.T) {
	track := catalog.Track{
		Artist:     "AC/DC",
		Album:      "Back in Black [Remaster, 2003]",
		Title:      "What Do You Do for Money? Honey",
		Extension:  "mp3",
		DiscNumber: 1,
	}
	got := track.StoragePath("/music")
	want := filepath.Join(
		"/music",
		"AC_DC",
		"Back in Black _Remaster_ 2003_",
		"1",
		"What Do You Do for Money_ Honey.mp3",
	)
	if got != want {
		t.Fatalf("StoragePath = %s, want %s", got, want)
	}
}

func TestStoragePathKeepsPeriodOnlyInFilename(t *testing.T) {
	track := catalog.Track{
		Artist:     "R.E.M.",
		Album:      "Vol. 2",
		Title:      "Mr. Blue",
		Extension:  "ogg",
		DiscNumber: 1,
	}
	want := filepath.Join("/music", "R_E_M_", "Vol_ 2", "1", "Mr. Blue.ogg")
	if got := track.StoragePath("/music"); got != want {
		t.Fatalf("StoragePath = %s, want %s", got, want)
	}
}

func TestStoragePathIsDeterministic(t *testing.T) {
	track := catalog.Track{
		Artist:     "Nirvana",
		Album:      "In Utero",
		Title:      "All Apologies",
		Extension:  "flac",
		DiscNumber: 1,
	}
	first := track.StoragePath("/music")
	track.FilePath = "/somewhere/else.flac"
	track.LocalID = 7
	if second := track.StoragePath("/music"); second != first {
		t.Fatalf("path changed between derivations: %s vs %s", first, second)
	}
}
