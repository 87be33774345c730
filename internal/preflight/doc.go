// Package preflight provides readiness checks for the filesystem paths and
// external binaries a sorting session depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll before opening the session. If any check
//     fails, the session refuses to start instead of failing mid-sort with
//     files half-placed.
//   - The CLI "clipsort doctor" command renders the same checks, plus the
//     binary availability table, for troubleshooting.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
