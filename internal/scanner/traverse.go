package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

// PathResult is one item streamed by Traverse: a discovered music-file
// path, or the traversal error that terminated the walk.
type PathResult struct {
	Path string
	Err  error
}

// Traverse walks root in a producer goroutine, streaming music-file paths
// over the returned channel. The channel decouples disk-walk latency from
// the consumer's tag parsing and store writes. A traversal error is sent as
// the final item and ends the stream without visiting the remaining files.
func Traverse(ctx context.Context, root string, extensions []string) <-chan PathResult {
	out := make(chan PathResult, 64)
	go func() {
		defer close(out)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !hasMusicExtension(path, extensions) {
				return nil
			}
			select {
			case out <- PathResult{Path: path}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			select {
			case out <- PathResult{Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return out
}

func hasMusicExtension(path string, extensions []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	for _, want := range extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
