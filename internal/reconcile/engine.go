// Package reconcile computes the track sets needed to make a destination
// catalog match the filtered contents of a source catalog. The diff is pure
// set arithmetic over content-derived track identities, so re-running it
// after any interruption converges on the same result.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"tracksync/internal/catalog"
	"tracksync/internal/filterscript"
)

// Plan holds the outcome of one reconciliation pass: identities to copy to
// the destination and identities to retract from it.
type Plan struct {
	CopyIDs   []string
	DeleteIDs []string
}

// Compute diffs the Copied sets of the two catalogs under the optional
// filter predicate.
//
// Copies are the filtered source set minus the destination set. Deletions
// are destination rows whose source track vanished entirely, plus rows
// whose source track still exists but is now excluded by the current
// policy; both are retracted.
func Compute(ctx context.Context, source, dest *catalog.Store, script *filterscript.Script) (*Plan, error) {
	sourceCopied, err := source.TrackIDsByState(ctx, catalog.StateCopied)
	if err != nil {
		return nil, fmt.Errorf("source copied set: %w", err)
	}
	destCopied, err := dest.TrackIDsByState(ctx, catalog.StateCopied)
	if err != nil {
		return nil, fmt.Errorf("destination copied set: %w", err)
	}

	sourceSet := toSet(sourceCopied)
	destSet := toSet(destCopied)

	filteredSet := sourceSet
	if script != nil {
		tracks, err := source.TracksByState(ctx, catalog.StateCopied)
		if err != nil {
			return nil, fmt.Errorf("source copied tracks: %w", err)
		}
		kept, err := ApplyFilter(tracks, script)
		if err != nil {
			return nil, err
		}
		filteredSet = make(map[string]struct{}, len(kept))
		for _, t := range kept {
			filteredSet[t.TrackID] = struct{}{}
		}
	}

	plan := &Plan{}
	for id := range filteredSet {
		if _, ok := destSet[id]; !ok {
			plan.CopyIDs = append(plan.CopyIDs, id)
		}
	}
	for id := range destSet {
		_, inSource := sourceSet[id]
		_, inFiltered := filteredSet[id]
		if !inSource || !inFiltered {
			plan.DeleteIDs = append(plan.DeleteIDs, id)
		}
	}

	sort.Strings(plan.CopyIDs)
	sort.Strings(plan.DeleteIDs)
	return plan, nil
}

// ResolveCopies loads the source rows behind the copy set. The current
// policy is applied once more right before use, so a script change between
// planning and execution can only shrink the batch, never widen it.
func (p *Plan) ResolveCopies(ctx context.Context, source *catalog.Store, script *filterscript.Script) ([]catalog.Track, error) {
	tracks, err := source.TracksByIDs(ctx, p.CopyIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve copy set: %w", err)
	}
	if script == nil {
		return tracks, nil
	}
	return ApplyFilter(tracks, script)
}

// ResolveDeletes loads the destination rows behind the delete set. The
// filter is intentionally not applied here: rows targeted for retraction
// must never escape the batch by matching the exclusion policy.
func (p *Plan) ResolveDeletes(ctx context.Context, dest *catalog.Store) ([]catalog.Track, error) {
	tracks, err := dest.TracksByIDs(ctx, p.DeleteIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve delete set: %w", err)
	}
	return tracks, nil
}

// ApplyFilter evaluates the predicate per track and drops every track it
// excludes. Tracks are presented to the script through their public
// attributes only.
func ApplyFilter(tracks []catalog.Track, script *filterscript.Script) ([]catalog.Track, error) {
	if script == nil {
		return tracks, nil
	}
	kept := make([]catalog.Track, 0, len(tracks))
	for _, track := range tracks {
		excluded, err := script.Evaluate(filterscript.TrackAttributes{
			Title:      track.Title,
			Artist:     track.Artist,
			Album:      track.Album,
			Number:     track.Number,
			FilePath:   track.FilePath,
			DiscNumber: track.DiscNumber,
			DiscTotal:  track.DiscTotal,
			Extension:  track.Extension,
		})
		if err != nil {
			return nil, fmt.Errorf("evaluate filter for %s: %w", track.TrackID, err)
		}
		if excluded {
			continue
		}
		kept = append(kept, track)
	}
	return kept, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
