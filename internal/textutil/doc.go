// Package textutil provides text processing utilities for album-name
// similarity scoring and filesystem path-segment cleaning.
//
// Similarity uses term-frequency vectors: text is lowercased, split on
// non-alphanumeric runs, tokens shorter than 3 characters are dropped, and
// two fingerprints are compared by cosine similarity in [0, 1].
package textutil
