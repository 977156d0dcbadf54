package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tuneport/internal/models"
	"github.com/desertthunder/tuneport/internal/repositories"
	"github.com/desertthunder/tuneport/internal/shared"
	"github.com/urfave/cli/v3"
)

// historyEntry is the JSON form of a recorded conversion.
type historyEntry struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	SourceService    string `json:"source_service"`
	SourcePlaylistID string `json:"source_playlist_id"`
	TargetService    string `json:"target_service"`
	TargetPlaylistID string `json:"target_playlist_id,omitempty"`
	TracksTotal      int    `json:"tracks_total"`
	TracksMatched    int    `json:"tracks_matched"`
	TracksMissed     int    `json:"tracks_missed"`
	ErrorMessage     string `json:"error_message,omitempty"`
	StartedAt        string `json:"started_at,omitempty"`
	CompletedAt      string `json:"completed_at,omitempty"`
}

// History lists recorded conversion runs, newest first.
//
// Only runs executed with --cache are recorded, so an empty listing is
// expected on a fresh database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	status := cmd.String("status")
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	if status != "" {
		switch status {
		case models.ConversionStatusPending, models.ConversionStatusRunning,
			models.ConversionStatusCompleted, models.ConversionStatusFailed:
		default:
			return fmt.Errorf("%w: unknown status '%s' (must be pending, running, completed, or failed)", shared.ErrInvalidArgument, status)
		}
	}

	db, err := r.openDatabase(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewConversionRepository(db)
	conversions, err := repo.List(map[string]any{"status": status})
	if err != nil {
		return err
	}

	if limit > 0 && limit < len(conversions) {
		conversions = conversions[:limit]
	}

	if useJSON {
		entries := make([]historyEntry, 0, len(conversions))
		for _, job := range conversions {
			entries = append(entries, newHistoryEntry(job))
		}
		return r.writeJSON(entries, true)
	}

	if len(conversions) == 0 {
		r.writePlain("No conversions recorded. Run 'tuneport convert --cache' to record one.\n")
		return nil
	}

	r.writePlainHeader("Conversion History")
	for _, job := range conversions {
		r.renderHistoryRow(job)
	}
	r.writePlain("%d conversion(s)\n", len(conversions))

	return nil
}

// newHistoryEntry flattens a job for JSON output.
func newHistoryEntry(job *models.ConversionJob) historyEntry {
	entry := historyEntry{
		ID:               job.ID(),
		Status:           job.Status(),
		SourceService:    job.SourceService(),
		SourcePlaylistID: job.SourcePlaylistID(),
		TargetService:    job.TargetService(),
		TargetPlaylistID: job.TargetPlaylistID(),
		TracksTotal:      job.TracksTotal(),
		TracksMatched:    job.TracksMatched(),
		TracksMissed:     job.TracksMissed(),
		ErrorMessage:     job.ErrorMessage(),
	}
	if started := job.StartedAt(); started != nil {
		entry.StartedAt = started.Format(time.RFC3339)
	}
	if completed := job.CompletedAt(); completed != nil {
		entry.CompletedAt = completed.Format(time.RFC3339)
	}
	return entry
}

// renderHistoryRow prints one recorded conversion.
func (r *Runner) renderHistoryRow(job *models.ConversionJob) {
	marker := statusMarker(job.Status())

	r.writePlain("%s %s → %s", marker, job.SourceService(), job.TargetService())
	if started := job.StartedAt(); started != nil {
		r.writePlain("  (%s)", started.Local().Format("2006-01-02 15:04"))
	}
	r.writePlain("\n")

	r.writePlain("   Source: %s\n", job.SourcePlaylistID())
	if targetID := job.TargetPlaylistID(); targetID != "" {
		r.writePlain("   Target: %s\n", targetID)
	}

	switch job.Status() {
	case models.ConversionStatusCompleted:
		r.writePlain("   Matched %d/%d tracks (%d missed)\n", job.TracksMatched(), job.TracksTotal(), job.TracksMissed())
	case models.ConversionStatusFailed:
		r.writePlain("   Error: %s\n", job.ErrorMessage())
	}

	r.writePlain("\n")
}

// statusMarker maps a conversion status to a list marker.
func statusMarker(status string) string {
	switch status {
	case models.ConversionStatusCompleted:
		return "✓"
	case models.ConversionStatusFailed:
		return "✗"
	case models.ConversionStatusRunning:
		return "▸"
	default:
		return "•"
	}
}
