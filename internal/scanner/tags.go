package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"tracksync/internal/catalog"
)

// Fallbacks for files with incomplete tags. The content identity is built
// from these values, so they must be stable.
const (
	unknownTitle  = "Unknown Title"
	unknownArtist = "Unknown Artist"
	unknownAlbum  = "Unknown Album"
)

// noExtension marks files whose path carries no extension at all.
const noExtension = "NONE"

// TagReader extracts descriptive metadata from a media file. The concrete
// tag parser stays behind this boundary so scanning is testable without
// real audio fixtures.
type TagReader interface {
	ReadTrack(path string) (catalog.Track, error)
}

// NewTagReader returns the production TagReader backed by dhowden/tag.
func NewTagReader() TagReader {
	return fileTagReader{}
}

type fileTagReader struct{}

func (fileTagReader) ReadTrack(path string) (catalog.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return catalog.Track{}, fmt.Errorf("open media file: %w", err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return catalog.Track{}, fmt.Errorf("read tags from %s: %w", path, err)
	}

	// Album artist wins over track artist so compilations group correctly.
	artist := strings.TrimSpace(meta.AlbumArtist())
	if artist == "" {
		artist = strings.TrimSpace(meta.Artist())
	}
	if artist == "" {
		artist = unknownArtist
	}

	title := strings.TrimSpace(meta.Title())
	if title == "" {
		title = unknownTitle
	}
	album := strings.TrimSpace(meta.Album())
	if album == "" {
		album = unknownAlbum
	}

	number, _ := meta.Track()
	discNumber, discTotal := meta.Disc()

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		ext = noExtension
	}

	track := catalog.Track{
		Title:      title,
		Artist:     artist,
		Album:      album,
		Number:     int64(number),
		FilePath:   path,
		DiscNumber: int64(discNumber),
		DiscTotal:  int64(discTotal),
		FileState:  catalog.StateUnknown,
		Extension:  ext,
	}
	track.TrackID = catalog.ComputeTrackID(track)
	return track, nil
}
