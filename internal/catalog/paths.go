package catalog

import (
	"path/filepath"
	"strconv"

	"tracksync/internal/textutil"
)

// StoragePath derives the deterministic location of a track inside a
// destination tree: base/artist/album/disc/title.extension, with every
// segment cleaned for filesystem safety. The derivation is a pure function
// of the track metadata, so copy, delete, and crash recovery all agree on
// the same path without persisting it anywhere else.
func (t Track) StoragePath(base string) string {
	filename := t.Title + "." + t.Extension
	return filepath.Join(
		base,
		textutil.CleanPathSegment(t.Artist, false),
		textutil.CleanPathSegment(t.Album, false),
		textutil.CleanPathSegment(strconv.FormatInt(t.DiscNumber, 10), false),
		textutil.CleanPathSegment(filename, true),
	)
}
