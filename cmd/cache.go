package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tuneport/internal/models"
	"github.com/desertthunder/tuneport/internal/repositories"
	"github.com/desertthunder/tuneport/internal/services"
	"github.com/desertthunder/tuneport/internal/shared"
	"github.com/urfave/cli/v3"
)

// CachePlaylistSpotify caches a Spotify playlist and its tracks to the database.
func (r *Runner) CachePlaylistSpotify(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	return r.cachePlaylist(ctx, cmd, r.spotify)
}

// CachePlaylistYouTube caches a YouTube Music playlist and its tracks to the database.
func (r *Runner) CachePlaylistYouTube(ctx context.Context, cmd *cli.Command) error {
	if r.youtube == nil {
		return fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
	}
	return r.cachePlaylist(ctx, cmd, r.youtube)
}

// cachePlaylist fetches a playlist from the service and upserts it, with its
// tracks, into the local database.
func (r *Runner) cachePlaylist(ctx context.Context, cmd *cli.Command, svc services.Service) error {
	playlistID := cmd.String("id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID is required", shared.ErrMissingArgument)
	}

	r.logger.Infof("caching %s playlist: %s", svc.Name(), playlistID)

	export, err := svc.ExportPlaylist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("failed to export playlist: %w", err)
	}

	r.logger.Infof("fetched playlist: %s (%d tracks)", export.Playlist.Name, len(export.Tracks))

	db, err := r.openDatabase(cmd.String("config"))
	if err != nil {
		return err
	}
	defer db.Close()

	playlists := repositories.NewPlaylistRepository(db)
	if existing, err := playlists.GetByServiceID(svc.Name(), playlistID); err == nil && existing != nil {
		refreshed := models.NewPersistedPlaylist(existing.Sequence(), svc.Name(), playlistID, existing.UserID(), export.Playlist)
		refreshed.SetID(existing.ID())
		if err := playlists.Update(refreshed); err != nil {
			return fmt.Errorf("failed to update cached playlist: %w", err)
		}
	} else {
		record := models.NewPersistedPlaylist(0, svc.Name(), playlistID, "", export.Playlist)
		if err := playlists.Create(record); err != nil {
			return fmt.Errorf("failed to cache playlist: %w", err)
		}
	}

	cache := repositories.NewTrackCacheAdapter(repositories.NewTrackRepository(db))
	cached := 0
	for _, track := range export.Tracks {
		if err := cache.CacheTrack(svc.Name(), track.ID, track); err != nil {
			r.logger.Warnf("failed to cache track %s: %v", track.ID, err)
			continue
		}
		cached++
	}

	r.writePlainln("✓ Playlist cached: %s", export.Playlist.Name)
	r.writePlainln("  Tracks: %d cached, %d failed", cached, len(export.Tracks)-cached)

	return nil
}
