package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/tuneport/internal/formatter"
	"github.com/desertthunder/tuneport/internal/models"
	"github.com/desertthunder/tuneport/internal/repositories"
	"github.com/desertthunder/tuneport/internal/services"
	"github.com/desertthunder/tuneport/internal/shared"
	"github.com/desertthunder/tuneport/internal/tasks"
	"github.com/urfave/cli/v3"
)

// convertSummary is the JSON form of a finished conversion.
type convertSummary struct {
	Source      string         `json:"source_playlist"`
	Destination string         `json:"destination_playlist,omitempty"`
	URL         string         `json:"destination_url,omitempty"`
	Total       int            `json:"total_tracks"`
	Matched     int            `json:"matched_tracks"`
	Missed      int            `json:"missed_tracks"`
	MissedList  []models.Track `json:"missed,omitempty"`
}

// Convert runs a full Spotify → YouTube Music playlist conversion from a share link.
//
// Prompts for the link on stdin when no argument is given. Misses are reported
// in the summary but do not fail the run; invalid input and playlist creation
// failures do.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.StringArg("url")
	name := cmd.String("name")
	workers := cmd.Int("workers")
	rps := cmd.Float("rate")
	useCache := cmd.Bool("cache")
	reportPath := cmd.String("report")
	useJSON := cmd.Bool("json")

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if r.youtube == nil {
		return fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
	}

	if rawURL == "" {
		var err error
		if rawURL, err = r.promptPlaylistURL(); err != nil {
			return err
		}
	}

	playlistID, err := services.ExtractSpotifyID(rawURL)
	if err != nil {
		return err
	}

	opts := []tasks.EngineOption{}
	if name != "" {
		opts = append(opts, tasks.WithPlaylistName(name))
	}
	if workers > 1 {
		opts = append(opts, tasks.WithWorkers(workers))
	}
	if rps > 0 {
		opts = append(opts, tasks.WithRateLimit(rps))
	}

	var history *repositories.ConversionRepository
	if useCache {
		db, err := r.openDatabase(cmd.String("config"))
		if err != nil {
			return err
		}
		defer db.Close()

		cache := repositories.NewTrackCacheAdapter(repositories.NewTrackRepository(db))
		opts = append(opts, tasks.WithTrackCache(cache))
		history = repositories.NewConversionRepository(db)
	}

	engine := r.newEngine(opts...)

	r.logger.Info("starting conversion", "playlist_id", playlistID, "workers", workers)
	if !useJSON {
		r.writePlain("Converting playlist %s...\n\n", playlistID)
	}

	job := r.recordConversionStart(history, playlistID)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if !useJSON {
				r.renderConvertProgress(update)
			}
		}
	}()

	result, convErr := engine.ConvertPlaylist(ctx, playlistID, progressCh)
	close(progressCh)
	<-done

	r.recordConversionResult(history, job, result, convErr)

	if convErr != nil {
		return convErr
	}

	if reportPath != "" {
		report := formatter.ConversionReport{
			SourceName:      result.SourcePlaylist.Playlist.Name,
			DestinationName: result.Playlist.Name,
			DestinationURL:  result.URL(),
			MatchedTracks:   result.Matched(),
			MissedTracks:    result.Missed(),
			ConvertedAt:     time.Now().UTC(),
		}
		written, err := formatter.WriteConversionReport(report, reportPath)
		if err != nil {
			r.logger.Warn("failed to write report", "error", err)
		} else {
			r.logger.Info("report written", "file", written)
		}
	}

	if useJSON {
		return r.writeJSON(convertSummary{
			Source:      result.SourcePlaylist.Playlist.Name,
			Destination: result.Playlist.Name,
			URL:         result.URL(),
			Total:       result.TotalCount,
			Matched:     result.SuccessCount,
			Missed:      result.FailedCount,
			MissedList:  result.Missed(),
		}, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Conversion Complete!")
	r.writePlain("Source: %s (%d tracks)\n", result.SourcePlaylist.Playlist.Name, result.TotalCount)
	r.writePlain("Destination: %s (%d tracks)\n", result.Playlist.Name, result.Playlist.TrackCount)
	r.writePlain("Matched: %d/%d (%.1f%%)\n", result.SuccessCount, result.TotalCount, result.MatchPercentage())
	if url := result.URL(); url != "" {
		r.writePlain("URL: %s\n", url)
	}

	if missed := result.Missed(); len(missed) > 0 {
		r.writePlain("\nFailed to match %d tracks:\n", result.FailedCount)
		for _, track := range missed {
			r.writePlain("  - %s - %s\n", track.Artist, track.Title)
		}
	}

	return nil
}

// promptPlaylistURL asks for a playlist link on stdin when none was given as an argument.
func (r *Runner) promptPlaylistURL() (string, error) {
	r.writePlain("Spotify playlist URL: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	url := strings.TrimSpace(line)
	if url == "" {
		if err != nil {
			return "", fmt.Errorf("%w: no playlist URL provided: %v", shared.ErrMissingArgument, err)
		}
		return "", fmt.Errorf("%w: no playlist URL provided", shared.ErrMissingArgument)
	}

	return url, nil
}

// renderConvertProgress prints a single engine progress update.
func (r *Runner) renderConvertProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FetchSource:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.MatchTracks:
		if update.Step == 0 {
			r.writePlain("\n🔍 %s\n", update.Message)
		} else {
			r.writePlain("   %s\n", update.Message)
		}
	case tasks.CreatePlaylist:
		r.writePlain("\n📝 %s\n", update.Message)
	case tasks.CacheResults:
		r.writePlain("💾 %s\n", update.Message)
	}
}

// recordConversionStart inserts a running history row for the conversion.
// Returns nil when history recording is disabled or the insert fails.
func (r *Runner) recordConversionStart(history *repositories.ConversionRepository, playlistID string) *models.ConversionJob {
	if history == nil {
		return nil
	}

	job := models.NewConversionJob(0, "", r.spotify.Name(), playlistID, r.youtube.Name())
	job.SetStatus(models.ConversionStatusRunning)
	started := time.Now().UTC()
	job.SetStartedAt(&started)

	if err := history.Create(job); err != nil {
		r.logger.Warn("failed to record conversion start", "error", err)
		return nil
	}
	return job
}

// recordConversionResult finalizes the history row with the run's outcome.
func (r *Runner) recordConversionResult(history *repositories.ConversionRepository, job *models.ConversionJob, result *tasks.ConversionResult, convErr error) {
	if history == nil || job == nil {
		return
	}

	completed := time.Now().UTC()
	job.SetCompletedAt(&completed)
	job.SetUpdatedAt(completed)

	if convErr != nil {
		job.SetStatus(models.ConversionStatusFailed)
		job.SetErrorMessage(convErr.Error())
		if result != nil {
			job.SetTracksTotal(result.TotalCount)
		}
	} else {
		job.SetStatus(models.ConversionStatusCompleted)
		job.SetTracksTotal(result.TotalCount)
		job.SetTracksMatched(result.SuccessCount)
		job.SetTracksMissed(result.FailedCount)
		if result.Playlist != nil {
			job.SetTargetPlaylistID(result.Playlist.ID)
		}
	}

	if err := history.Update(job); err != nil {
		r.logger.Warn("failed to record conversion result", "error", err)
	}
}

// Diff compares two playlists and shows tracks missing from the destination.
func (r *Runner) Diff(ctx context.Context, cmd *cli.Command) error {
	sourceID := cmd.String("source-id")
	destID := cmd.String("dest-id")
	sourceService := cmd.String("source-service")
	destService := cmd.String("dest-service")

	r.logger.Info("diff requested", "source", sourceID, "dest", destID)
	r.writePlain("Comparing playlists...\n\n")

	sourceSvc, err := r.resolveService(sourceService)
	if err != nil {
		return err
	}
	destSvc, err := r.resolveService(destService)
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	result, err := r.engine.Diff(ctx, sourceSvc, destSvc, sourceID, destID, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n✓ Source: %s (%d tracks)\n", result.Comparison.SourcePlaylist.Playlist.Name, len(result.Comparison.SourcePlaylist.Tracks))
	r.writePlain("✓ Destination: %s (%d tracks)\n\n", result.Comparison.DestPlaylist.Playlist.Name, len(result.Comparison.DestPlaylist.Tracks))

	r.writePlainHeader("Comparison Results")
	r.writePlain("Matched: %d tracks\n", result.Comparison.MatchedCount)
	r.writePlain("Missing from destination: %d tracks\n", len(result.Comparison.MissingInDest))
	r.writePlain("Extra in destination: %d tracks\n\n", len(result.Comparison.ExtraInDest))

	if len(result.Comparison.MissingInDest) > 0 {
		r.writePlain("Missing from destination:\n")
		for i, track := range result.Comparison.MissingInDest {
			r.writePlain("  %d. %s - %s", i+1, track.Artist, track.Title)
			if track.Album != "" {
				r.writePlain(" (%s)", track.Album)
			}
			r.writePlain("\n")
		}
		r.writePlain("\n")
	}

	if len(result.Comparison.ExtraInDest) > 0 {
		r.writePlain("Extra in destination (not in source):\n")
		for i, track := range result.Comparison.ExtraInDest {
			r.writePlain("  %d. %s - %s", i+1, track.Artist, track.Title)
			if track.Album != "" {
				r.writePlain(" (%s)", track.Album)
			}
			r.writePlain("\n")
		}
	}

	return nil
}

// resolveService resolves a service name to its corresponding Service instance.
func (r *Runner) resolveService(serviceName string) (services.Service, error) {
	switch serviceName {
	case "spotify":
		if r.spotify == nil {
			return nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
		}
		return r.spotify, nil
	case "youtube", "ytmusic":
		if r.youtube == nil {
			return nil, fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
		}
		return r.youtube, nil
	default:
		return nil, fmt.Errorf("%w: invalid service '%s' (must be 'spotify' or 'youtube')", shared.ErrInvalidArgument, serviceName)
	}
}
