package pipeline

import (
	"io"

	"tracksync/internal/catalog"
)

// Progress receives per-track transfer reporting. Start returns the writer
// copied bytes are teed into; implementations render however they like.
type Progress interface {
	Start(track catalog.Track, totalBytes int64) io.Writer
	Done(track catalog.Track)
}

// NopProgress discards all reporting.
type NopProgress struct{}

func (NopProgress) Start(catalog.Track, int64) io.Writer { return io.Discard }
func (NopProgress) Done(catalog.Track)                   {}
