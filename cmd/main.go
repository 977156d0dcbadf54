package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/tuneport/internal/services"
	"github.com/desertthunder/tuneport/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	var spotifyService services.Service

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		}
	}

	spotifyCreds := config.Credentials.Spotify
	if spotifyCreds.ClientID != "" && spotifyCreds.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(spotifyCreds.Map()); err == nil {
			if token := spotifyCreds.Token(); token != nil {
				if err := svc.OAuthenticate(context.Background(), token); err != nil {
					logger.Warnf("stored spotify token rejected: %v", err)
				}
			}
			spotifyService = svc
		}
	}

	youtubeService := services.NewYouTubeService(config.Credentials.YouTube.ProxyURL)
	if headersPath := config.Credentials.YouTube.HeadersPath; headersPath != "" {
		if err := youtubeService.Authenticate(context.Background(), map[string]string{"auth_file": headersPath}); err != nil {
			logger.Warnf("youtube auth file not usable: %v", err)
		}
	}

	apiService := services.NewAPIService(config.Credentials.YouTube.ProxyURL, nil)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Spotify:    spotifyService,
		YouTube:    youtubeService,
		API:        apiService,
		Logger:     logger,
	})

	// Refreshed access tokens are written back so the next run skips reauth.
	if svc, ok := spotifyService.(*services.SpotifyService); ok {
		svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
			if err := runner.saveTokens(token); err != nil {
				logger.Warnf("failed to persist refreshed tokens: %v", err)
			}
		})
	}

	app := &cli.Command{
		Name:     "tuneport",
		Usage:    "Convert Spotify playlists to YouTube Music",
		Version:  "0.7.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
