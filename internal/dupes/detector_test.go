package dupes_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"tracksync/internal/dupes"
	"tracksync/internal/testsupport"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFindReportsSimilarAlbumsOnce(t *testing.T) {
	store := testsupport.MustOpenStore(t, false)
	ctx := context.Background()

	testsupport.SeedTrack(t, store,
		testsupport.NewTrack("Pink Floyd", "Dark Side of the Moon", "Time", "flac", "/m/flac/time.flac"))
	testsupport.SeedTrack(t, store,
		testsupport.NewTrack("Pink Floyd", "The Dark Side of the Moon Live", "Time", "mp3", "/m/mp3/time.mp3"))

	report, err := dupes.New(store, testLogger(), dupes.DefaultThreshold).Find(ctx)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	// Both directions of the pair collapse onto one report entry.
	if len(report.Fuzzy) != 1 {
		t.Fatalf("expected exactly one fuzzy pair, got %d: %#v", len(report.Fuzzy), report.Fuzzy)
	}
	pair := report.Fuzzy[0]
	if pair.Score < dupes.DefaultThreshold {
		t.Fatalf("reported pair below threshold: %v", pair.Score)
	}
	if pair.AlbumA == pair.AlbumB {
		t.Fatalf("pair compares an album with itself: %#v", pair)
	}
	if pair.DirectoryA == "" || pair.DirectoryB == "" {
		t.Fatalf("pair is missing locations: %#v", pair)
	}
}

func TestFindRespectsThreshold(t *testing.T) {
	store := testsupport.MustOpenStore(t, false)
	ctx := context.Background()

	testsupport.SeedTrack(t, store,
		testsupport.NewTrack("Pink Floyd", "Dark Side of the Moon", "Time", "flac", "/m/flac/time.flac"))
	testsupport.SeedTrack(t, store,
		testsupport.NewTrack("Pink Floyd", "The Dark Side of the Moon Live", "Time", "mp3", "/m/mp3/time.mp3"))

	report, err := dupes.New(store, testLogger(), 0.99).Find(ctx)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(report.Fuzzy) != 0 {
		t.Fatalf("expected no fuzzy pairs above 0.99, got %#v", report.Fuzzy)
	}
}

func TestFindThresholdBoundary(t *testing.T) {
	store := testsupport.MustOpenStore(t, false)
	ctx := context.Background()

	// Token counts are chosen so the cosine score is exactly 15/25 = 0.6:
	// (3, 4) against (5, 0) on a shared first token gives dot 15 over
	// norms 5 and 5, with no floating-point residue.
	testsupport.SeedTrack(t, store,
		testsupport.NewTrack("Artist", "Blue Blue Blue Moon Moon Moon Moon", "One", "flac", "/m/a/one.flac"))
	testsupport.SeedTrack(t, store,
		testsupport.NewTrack("Artist", "Blue Blue Blue Blue Blue", "Two", "mp3", "/m/b/two.mp3"))

	report, err := dupes.New(store, testLogger(), 0.6).Find(ctx)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(report.Fuzzy) != 1 {
		t.Fatalf("pair scoring exactly the threshold must be reported, got %#v", report.Fuzzy)
	}
	if report.Fuzzy[0].Score != 0.6 {
		t.Fatalf("unexpected score %v, want 0.6", report.Fuzzy[0].Score)
	}

	report, err = dupes.New(store, testLogger(), 0.61).Find(ctx)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(report.Fuzzy) != 0 {
		t.Fatalf("pair below the threshold must not be reported, got %#v", report.Fuzzy)
	}
}

func TestFindCollapsesReleaseVariants(t *testing.T) {
	store := testsupport.MustOpenStore(t, false)
	ctx := context.Background()

	// A parenthetical variant of the same base name is one album for the
	// fuzzy pass, not a pair.
	testsupport.SeedTrack(t, store,
		testsupport.NewTrack("Nirvana", "Nevermind", "Lithium", "flac", "/m/flac/lithium.flac"))
	testsupport.SeedTrack(t, store,
		testsupport.NewTrack("Nirvana", "Nevermind (Deluxe Edition)", "Lithium", "flac", "/m/flac/deluxe/lithium.flac"))

	report, err := dupes.New(store, testLogger(), dupes.DefaultThreshold).Find(ctx)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(report.Fuzzy) != 0 {
		t.Fatalf("release variants should collapse, got %#v", report.Fuzzy)
	}
}

func TestFindReportsExactFormatDuplicates(t *testing.T) {
	store := testsupport.MustOpenStore(t, false)
	ctx := context.Background()

	testsupport.SeedTrack(t, store,
		testsupport.NewTrack("Portishead", "Dummy", "Roads", "flac", "/m/flac/roads.flac"))
	testsupport.SeedTrack(t, store,
		testsupport.NewTrack("Portishead", "Dummy", "Roads", "mp3", "/m/mp3/roads.mp3"))

	report, err := dupes.New(store, testLogger(), dupes.DefaultThreshold).Find(ctx)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(report.Exact) != 1 {
		t.Fatalf("expected one exact group, got %d", len(report.Exact))
	}
	group := report.Exact[0]
	if group.Artist != "Portishead" || group.Title != "Dummy" || group.Count != 2 {
		t.Fatalf("unexpected exact group: %#v", group)
	}
	if len(group.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(group.Locations))
	}
}

func TestFindEmptyCatalog(t *testing.T) {
	store := testsupport.MustOpenStore(t, false)

	report, err := dupes.New(store, testLogger(), dupes.DefaultThreshold).Find(context.Background())
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(report.Fuzzy) != 0 || len(report.Exact) != 0 {
		t.Fatalf("expected empty report, got %#v", report)
	}
}
