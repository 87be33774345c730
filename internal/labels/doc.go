// Package labels builds the hotkey registry that maps single-character keys
// to destination directories.
//
// Rules keep the order they were declared in, destinations are resolved
// against the sorted root, and missing display names are derived from the
// destination. Validation rejects duplicate keys and keys reserved for
// session controls so every keypress has exactly one meaning.
package labels
