// Package dupes finds albums likely stored more than once in a catalog,
// combining a fuzzy text-similarity pass over the full-text album index
// with an exact (artist, title) grouping pass. It reads one catalog and
// produces a report; it never participates in the sync path.
package dupes

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"golang.org/x/text/cases"

	"tracksync/internal/catalog"
	"tracksync/internal/textutil"
)

// DefaultThreshold is the minimum similarity score a fuzzy pair must reach
// to be reported.
const DefaultThreshold = 0.6

// FuzzyPair is one suspected duplicate: two distinct album names that the
// full-text index and the similarity score both tie together.
type FuzzyPair struct {
	AlbumA     string
	AlbumB     string
	Score      float64
	DirectoryA string
	FormatA    string
	DirectoryB string
	FormatB    string
}

// ExactGroup is a guaranteed duplicate: one (artist, title) key stored in
// two or more formats.
type ExactGroup struct {
	Artist    string
	Title     string
	Count     int64
	Locations []catalog.FormatPath
}

// Report carries both detection passes over one catalog.
type Report struct {
	Fuzzy []FuzzyPair
	Exact []ExactGroup
}

// Detector runs duplicate detection over one catalog.
type Detector struct {
	store     *catalog.Store
	log       *slog.Logger
	threshold float64
	fold      cases.Caser
}

// New builds a Detector. A non-positive threshold falls back to
// DefaultThreshold.
func New(store *catalog.Store, logger *slog.Logger, threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{
		store:     store,
		log:       logger,
		threshold: threshold,
		fold:      cases.Fold(),
	}
}

// Find runs both passes and assembles the report.
func (d *Detector) Find(ctx context.Context) (*Report, error) {
	report := &Report{}
	if err := d.findFuzzy(ctx, report); err != nil {
		return nil, err
	}
	if err := d.findExact(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (d *Detector) findFuzzy(ctx context.Context, report *Report) error {
	albums, err := d.store.Albums(ctx)
	if err != nil {
		return err
	}

	seen := make(map[[2]string]struct{})
	for _, album := range albums {
		keywords := Keywords(album.Title)
		if len(keywords) == 0 {
			continue
		}

		matches, err := d.store.FuzzyMatchAlbums(ctx, keywords)
		if err != nil {
			return err
		}

		// One representative match per trimmed album name.
		groups := make(map[string]catalog.AlbumMatch, len(matches))
		for _, m := range matches {
			groups[TrimParenthetical(m.Album)] = m
		}
		if len(groups) < 2 {
			continue
		}

		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			best, bestScore := d.bestCandidate(name, names)
			if best == "" {
				continue
			}

			key := pairKey(name, best)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			if bestScore < d.threshold {
				continue
			}

			dirA, err := d.trackDirectory(ctx, groups[name].TrackID)
			if err != nil {
				return err
			}
			dirB, err := d.trackDirectory(ctx, groups[best].TrackID)
			if err != nil {
				return err
			}
			report.Fuzzy = append(report.Fuzzy, FuzzyPair{
				AlbumA:     name,
				AlbumB:     best,
				Score:      bestScore,
				DirectoryA: dirA,
				FormatA:    groups[name].Extension,
				DirectoryB: dirB,
				FormatB:    groups[best].Extension,
			})
		}
	}
	return nil
}

func (d *Detector) findExact(ctx context.Context, report *Report) error {
	groups, err := d.store.DuplicateAlbumGroups(ctx)
	if err != nil {
		return err
	}
	for _, group := range groups {
		locations, err := d.store.AlbumFormatPaths(ctx, group.Artist, group.Title)
		if err != nil {
			return err
		}
		report.Exact = append(report.Exact, ExactGroup{
			Artist:    group.Artist,
			Title:     group.Title,
			Count:     group.Count,
			Locations: locations,
		})
	}
	return nil
}

// bestCandidate returns the highest-scoring other name in the group.
func (d *Detector) bestCandidate(name string, names []string) (string, float64) {
	best := ""
	bestScore := -1.0
	for _, other := range names {
		if other == name {
			continue
		}
		score := d.similarity(name, other)
		if score > bestScore {
			best = other
			bestScore = score
		}
	}
	return best, bestScore
}

func (d *Detector) similarity(a, b string) float64 {
	return textutil.Similarity(d.fold.String(a), d.fold.String(b))
}

func (d *Detector) trackDirectory(ctx context.Context, trackID string) (string, error) {
	tracks, err := d.store.TracksByIDs(ctx, []string{trackID})
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", fmt.Errorf("representative track %s not found", trackID)
	}
	return filepath.Dir(tracks[0].FilePath), nil
}

// pairKey canonicalizes an unordered album-name pair.
func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}
