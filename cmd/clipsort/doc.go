// Package main hosts the clipsort CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the interactive sorting session plus
// the supporting surfaces around it: queue and label inspection, decision
// log review, command line undo, environment diagnostics, and configuration
// scaffolding. It centralizes configuration resolution and per-run logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
