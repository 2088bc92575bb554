package catalog

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeTrackID derives the content-addressed identity of a track:
// the hex SHA-256 of artist, album, title, and extension concatenated in
// that order with no separators. The file path deliberately does not
// participate, so a path move keeps the identity while any metadata edit
// produces a new one.
func ComputeTrackID(t Track) string {
	h := sha256.New()
	h.Write([]byte(t.Artist))
	h.Write([]byte(t.Album))
	h.Write([]byte(t.Title))
	h.Write([]byte(t.Extension))
	return hex.EncodeToString(h.Sum(nil))
}
