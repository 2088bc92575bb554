// Package catalog persists one role-tagged store of media tracks backed by
// SQLite: track rows with their content-derived identity and lifecycle
// state, previously scanned directories, the optional filter script, and a
// full-text index over album names.
//
// A catalog is stamped as source or destination when first created and the
// role never changes. Every store call commits independently; the
// Copying/Copied marker written by the copy pipeline provides crash safety
// in place of multi-statement transactions.
package catalog
