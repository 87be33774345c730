// Package decisionlog persists every completed placement as one CSV row and
// rebuilds session state from those rows.
//
// The log is append-only during normal operation; undo removes the single
// most recent row through an atomic rewrite. Loading tolerates malformed
// rows according to the configured policy, and an advisory file lock keeps
// two sessions from interleaving writes on the same log.
package decisionlog
