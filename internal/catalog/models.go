package catalog

import (
	"fmt"
	"time"
)

// FileState is the per-track lifecycle marker persisted in the catalog.
// It is stored as a small integer code and doubles as the crash-recovery
// checkpoint around non-transactional file copies: a row left in
// StateCopying marks a transfer that never reached its commit point.
type FileState int

const (
	StateCopied  FileState = 0
	StateCopying FileState = 1
	StateUnknown FileState = 2
)

// ParseFileState maps a persisted integer code onto a FileState.
// Unrecognized codes collapse to StateUnknown.
func ParseFileState(code int64) FileState {
	switch code {
	case 0:
		return StateCopied
	case 1:
		return StateCopying
	default:
		return StateUnknown
	}
}

func (s FileState) String() string {
	switch s {
	case StateCopied:
		return "copied"
	case StateCopying:
		return "copying"
	default:
		return "unknown"
	}
}

// Track is one media file known to a catalog.
//
// LocalID is the store-local surrogate key and is never compared across
// catalogs; TrackID is the content-derived identity (see ComputeTrackID)
// and is the cross-catalog join key.
type Track struct {
	LocalID    int64
	TrackID    string
	Title      string
	Artist     string
	Album      string
	Number     int64
	FilePath   string
	DiscNumber int64
	DiscTotal  int64
	FileState  FileState
	Extension  string
	AddedAt    time.Time
	UpdatedAt  time.Time
}

// String renders the track for log lines.
func (t Track) String() string {
	return fmt.Sprintf("%s - %s, %s", t.Title, t.Album, t.Artist)
}

// Album is a derived grouping of tracks sharing (artist, title), carrying
// one row per distinct storage format observed.
type Album struct {
	Artist string
	Title  string
	Format string
}

// AlbumMatch is one hit from the full-text album index.
type AlbumMatch struct {
	TrackID   string
	Album     string
	Extension string
}

// AlbumGroup describes a set of albums sharing an identical (artist, title)
// key across two or more format rows.
type AlbumGroup struct {
	Artist string
	Title  string
	Count  int64
}

// FormatPath locates one stored format of an album on disk.
type FormatPath struct {
	Directory string
	Extension string
}
