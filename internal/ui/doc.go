// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist conversion:
//  1. [PlaylistListView] : Browse and select Spotify playlists
//  2. [TrackListView] : Preview tracks before converting
//  3. [ConfirmView] : Confirm the conversion
//  4. [ConvertView] : Monitor real-time progress updates
//  5. [ResultView] : Display match counts, the destination URL, and missed tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving the typed messages in message.go.
// Progress updates flow through a channel from the [Converter], providing non-blocking status reporting during conversions.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
