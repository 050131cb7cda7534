// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a three-view workflow for crate building:
//  1. [ConfirmView] : Review what the run will do and confirm
//  2. [RunView] : Monitor real-time progress updates with a spinner
//  3. [ResultView] : Display per-crate counts and the success rate
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the CrateEngine, providing
// non-blocking status reporting during a run.
//
// Keyboard navigation uses vim-style bindings (y/n, r, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
