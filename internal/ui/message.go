package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tuneport/internal/models"
	"github.com/desertthunder/tuneport/internal/tasks"
)

// Messages delivered through the bubbletea runtime. Each command constructor
// in ui.go resolves to exactly one of these.

// playlistsFetchedMsg carries the user's Spotify playlists or the fetch error.
type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

// tracksFetchedMsg carries a full playlist export for the track preview.
type tracksFetchedMsg struct {
	playlist *models.PlaylistExport
	err      error
}

// progressUpdateMsg wraps a single engine progress update.
type progressUpdateMsg tasks.ProgressUpdate

// conversionCompleteMsg carries the final conversion outcome.
type conversionCompleteMsg struct {
	result *tasks.ConversionResult
	err    error
}

var (
	_ tea.Msg = playlistsFetchedMsg{}
	_ tea.Msg = tracksFetchedMsg{}
	_ tea.Msg = progressUpdateMsg{}
	_ tea.Msg = conversionCompleteMsg{}
)
