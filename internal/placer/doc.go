// Package placer performs collision-safe clip placement and its reversal.
//
// Place resolves a free destination name, suffixing the base name with a
// three-digit counter when occupied, then moves or copies the clip. Moves
// fall back to a verified copy plus source removal when the destination
// lives on another filesystem. Unplace returns a previously placed file to
// its original path; it always moves, regardless of how the clip arrived.
package placer
