package dupes

import (
	"strings"
	"unicode"
)

// minKeywordRunes is the exclusive lower bound on keyword length: only
// words longer than this survive into the full-text query.
const minKeywordRunes = 3

// TrimParenthetical drops a trailing parenthetical suffix from an album
// name: everything from the first opening parenthesis on. Release variants
// like "(Deluxe Edition)" or "(Remastered)" collapse onto the base name.
func TrimParenthetical(s string) string {
	if idx := strings.IndexRune(s, '('); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// Keywords derives the full-text search terms for an album name: the
// parenthetical suffix and all punctuation are stripped, and only words
// longer than three characters are kept. An empty result means the album
// is too generic to query for.
func Keywords(album string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, TrimParenthetical(album))

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) > minKeywordRunes {
			keywords = append(keywords, word)
		}
	}
	return keywords
}
