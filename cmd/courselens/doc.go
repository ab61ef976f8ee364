// Package main hosts the courselens CLI entrypoint and command graph.
//
// The Cobra-based command tree fetches course data from the Canvas and
// Echo360 APIs, persists snapshots, and renders module engagement and
// assignment reports. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
