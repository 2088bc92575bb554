package textutil

import "strings"

// pathSegmentReplacer replaces characters unsafe in a filesystem path
// segment with underscores: quote, wildcard, separators, colon, angle
// brackets, question mark, pipe, plus, comma, semicolon, equals, square
// brackets, and embedded NUL.
var pathSegmentReplacer = strings.NewReplacer(
	`"`, "_",
	"*", "_",
	"/", "_",
	":", "_",
	"<", "_",
	">", "_",
	"?", "_",
	`\`, "_",
	"|", "_",
	"+", "_",
	",", "_",
	";", "_",
	"=", "_",
	"[", "_",
	"]", "_",
	"\x00", "_",
)

// CleanPathSegment makes a string safe to use as one path segment.
// Periods survive only in the final filename component, where the
// extension separator has to stay intact.
func CleanPathSegment(s string, filename bool) string {
	s = pathSegmentReplacer.Replace(s)
	if !filename {
		s = strings.ReplaceAll(s, ".", "_")
	}
	return s
}
