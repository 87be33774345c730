// Package session runs the interactive sorting loop.
//
// A Session owns the clip queue for one run: it rebuilds the queue at
// startup from the source directory scan minus the clips the decision log
// already records, then dispatches hotkeys into placements, skips, and
// undos while keeping the player pointed at the current clip. The loop is
// single threaded; terminal keys and player events arrive over channels and
// every file operation completes before the next event is read, so the
// decision log and the sorted tree never disagree about what happened.
//
// The session degrades rather than dies when playback is unavailable: a
// failed preview leaves labeling fully functional, and a player that shuts
// down mid-run is replaced by the Null player.
package session
