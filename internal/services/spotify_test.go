package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/tuneport/internal/shared"
	"golang.org/x/oauth2"
)

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			credentials := map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
				"redirect_uri":  "http://localhost:9999/callback",
			}

			srv, err := NewSpotifyService(credentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv == nil {
				t.Fatal("expected service to be created")
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			credentials := map[string]string{
				"client_secret": "test_client_secret",
			}

			_, err := NewSpotifyService(credentials)
			if err == nil {
				t.Error("expected error for missing client_id")
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			credentials := map[string]string{
				"client_id": "test_client_id",
			}

			_, err := NewSpotifyService(credentials)
			if err == nil {
				t.Error("expected error for missing client_secret")
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			credentials := map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			}

			srv, err := NewSpotifyService(credentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.config.RedirectURL != defaultRedirectURI {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		if authURL == "" {
			t.Error("expected auth URL to be generated")
		}

		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("WithAccessToken", func(t *testing.T) {
			authCreds := map[string]string{
				"access_token": "test_access_token",
			}

			err := srv.Authenticate(context.Background(), authCreds)
			if err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}

			if srv.token == nil {
				t.Error("expected token to be set")
			}

			if srv.token.AccessToken != "test_access_token" {
				t.Errorf("expected access token to be 'test_access_token', got %s", srv.token.AccessToken)
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			authCreds := map[string]string{}

			err := srv.Authenticate(context.Background(), authCreds)
			if err == nil {
				t.Error("expected error for missing credentials")
			}
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected missing credentials error, got %v", err)
			}
		})

		t.Run("Nil Token", func(t *testing.T) {
			if err := srv.OAuthenticate(context.Background(), nil); err == nil {
				t.Error("expected error for nil token")
			}
		})
	})

	t.Run("Service Interface", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var _ Service = srv
		var _ OAuthService = srv
	})

	t.Run("SetTokenRefreshCallback", func(t *testing.T) {
		credentials := map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}

		srv, err := NewSpotifyService(credentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("sets callback successfully", func(t *testing.T) {
			srv.SetTokenRefreshCallback(func(token *oauth2.Token) {
				// Callback set for testing
			})

			if srv.onTokenRefresh == nil {
				t.Error("expected callback to be set")
			}
		})

		t.Run("can set nil callback", func(t *testing.T) {
			srv.SetTokenRefreshCallback(nil)
			if srv.onTokenRefresh != nil {
				t.Error("expected callback to be nil")
			}
		})

		t.Run("callback can be replaced", func(t *testing.T) {
			srv.SetTokenRefreshCallback(func(token *oauth2.Token) {
				// First callback
			})

			srv.SetTokenRefreshCallback(func(token *oauth2.Token) {
				// Second callback
			})

			if srv.onTokenRefresh == nil {
				t.Error("expected callback to be set")
			}
		})
	})

	t.Run("refreshableTokenSource", func(t *testing.T) {
		t.Run("calls callback on first token fetch", func(t *testing.T) {
			callbackCalled := false
			var capturedToken *oauth2.Token

			mockSource := &mockTokenSource{
				token: &oauth2.Token{AccessToken: "test_token"},
			}

			source := &refreshableTokenSource{
				source: mockSource,
				callback: func(token *oauth2.Token) {
					callbackCalled = true
					capturedToken = token
				},
			}

			token, err := source.Token()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !callbackCalled {
				t.Error("expected callback to be called on first fetch")
			}
			if capturedToken == nil {
				t.Error("expected token to be captured")
			}
			if capturedToken.AccessToken != "test_token" {
				t.Errorf("expected captured token to be 'test_token', got %s", capturedToken.AccessToken)
			}
			if token.AccessToken != "test_token" {
				t.Errorf("expected returned token to be 'test_token', got %s", token.AccessToken)
			}
		})

		t.Run("calls callback when token changes", func(t *testing.T) {
			callCount := 0
			var capturedTokens []*oauth2.Token

			mockSource := &mockTokenSource{
				token: &oauth2.Token{AccessToken: "token1"},
			}

			source := &refreshableTokenSource{
				source: mockSource,
				callback: func(token *oauth2.Token) {
					callCount++
					capturedTokens = append(capturedTokens, token)
				},
			}

			_, _ = source.Token()
			if callCount != 1 {
				t.Errorf("expected callback called once, got %d", callCount)
			}

			mockSource.token = &oauth2.Token{AccessToken: "token2"}
			token2, _ := source.Token()

			if callCount != 2 {
				t.Errorf("expected callback called twice, got %d", callCount)
			}
			if len(capturedTokens) != 2 {
				t.Errorf("expected 2 captured tokens, got %d", len(capturedTokens))
			}
			if token2.AccessToken != "token2" {
				t.Errorf("expected new token, got %s", token2.AccessToken)
			}
		})

		t.Run("doesn't call callback when token unchanged", func(t *testing.T) {
			callCount := 0

			mockSource := &mockTokenSource{
				token: &oauth2.Token{AccessToken: "same_token"},
			}

			source := &refreshableTokenSource{
				source: mockSource,
				callback: func(token *oauth2.Token) {
					callCount++
				},
			}

			source.Token()
			source.Token()
			source.Token()

			if callCount != 1 {
				t.Errorf("expected callback called once, got %d", callCount)
			}
		})

		t.Run("handles nil callback gracefully", func(t *testing.T) {
			mockSource := &mockTokenSource{
				token: &oauth2.Token{AccessToken: "test_token"},
			}

			source := &refreshableTokenSource{
				source:   mockSource,
				callback: nil,
			}

			token, err := source.Token()
			if err != nil {
				t.Fatalf("expected no error with nil callback, got %v", err)
			}
			if token.AccessToken != "test_token" {
				t.Error("expected token to be returned despite nil callback")
			}
		})

		t.Run("propagates source errors", func(t *testing.T) {
			mockSource := &mockTokenSource{
				err: errors.New("token source error"),
			}

			source := &refreshableTokenSource{
				source: mockSource,
				callback: func(token *oauth2.Token) {
					t.Error("callback should not be called on error")
				},
			}

			token, err := source.Token()
			if err == nil {
				t.Fatal("expected error from source")
			}
			if !strings.Contains(err.Error(), "token source error") {
				t.Errorf("expected source error, got %v", err)
			}
			if token != nil {
				t.Error("expected nil token on error")
			}
		})
	})
}

func TestExtractSpotifyID(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain share link",
			input: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			want:  "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:  "share link with query parameters",
			input: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123&pt=xyz",
			want:  "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:  "region prefixed link",
			input: "https://open.spotify.com/intl-fr/playlist/37i9dQZF1DXcBWIGoYBM5M",
			want:  "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:  "spotify URI",
			input: "spotify:playlist:37i9dQZF1DXcBWIGoYBM5M",
			want:  "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:  "scheme omitted",
			input: "open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			want:  "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:  "surrounding whitespace",
			input: "  https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M  ",
			want:  "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:    "not a url",
			input:   "not-a-url",
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "wrong host",
			input:   "https://example.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			wantErr: true,
		},
		{
			name:    "album link",
			input:   "https://open.spotify.com/album/4aawyAB9vmqN3uQ7FjRGTy",
			wantErr: true,
		},
		{
			name:    "malformed URI",
			input:   "spotify:playlist:not/base62",
			wantErr: true,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSpotifyID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got id %q", tt.input, got)
				}
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected invalid input error, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractSpotifyID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSpotifyExportPlaylist(t *testing.T) {
	page := func(items []SpotifyPlaylistTrack, next *string, offset int) SpotifyPaginatedPlaylistTracks {
		return SpotifyPaginatedPlaylistTracks{
			Items:  items,
			Total:  3,
			Limit:  2,
			Offset: offset,
			Next:   next,
		}
	}

	trackItem := func(id, title, artist string) SpotifyPlaylistTrack {
		return SpotifyPlaylistTrack{
			Track: SpotifyTrack{
				ID:          id,
				Name:        title,
				Artists:     []SpotifyArtist{{Name: artist}, {Name: "Featured Artist"}},
				Album:       SpotifyAlbum{Name: "Album " + id},
				DurationMS:  180000,
				ExternalIDs: externalIDs{ISRC: "ISRC" + id},
			},
		}
	}

	trackPageCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/pl123", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SpotifyPlaylist{
			ID:          "pl123",
			Name:        "Road Trip",
			Description: "Driving songs",
			Tracks:      playlistTrack{Total: 3},
		})
	})
	mux.HandleFunc("/playlists/pl123/tracks", func(w http.ResponseWriter, r *http.Request) {
		trackPageCalls++
		offset := r.URL.Query().Get("offset")
		if offset == "0" || offset == "" {
			next := fmt.Sprintf("%s/playlists/pl123/tracks?limit=2&offset=2", spotifyBaseURL)
			json.NewEncoder(w).Encode(page([]SpotifyPlaylistTrack{
				trackItem("t1", "Song One", "Artist One"),
				trackItem("t2", "Song Two", "Artist Two"),
			}, &next, 0))
			return
		}
		json.NewEncoder(w).Encode(page([]SpotifyPlaylistTrack{
			trackItem("t3", "Song Three", "Artist Three"),
		}, nil, 2))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	t.Run("requires authentication", func(t *testing.T) {
		_, err := srv.ExportPlaylist(context.Background(), "pl123")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected not authenticated error, got %v", err)
		}
	})

	srv.baseURL = server.URL
	srv.token = &oauth2.Token{AccessToken: "test_token"}

	t.Run("collects every page in order", func(t *testing.T) {
		export, err := srv.ExportPlaylist(context.Background(), "pl123")
		if err != nil {
			t.Fatalf("failed to export playlist: %v", err)
		}

		if export.Playlist.Name != "Road Trip" {
			t.Errorf("expected playlist name Road Trip, got %s", export.Playlist.Name)
		}

		if len(export.Tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(export.Tracks))
		}

		wantTitles := []string{"Song One", "Song Two", "Song Three"}
		for i, want := range wantTitles {
			if export.Tracks[i].Title != want {
				t.Errorf("track %d title = %s, want %s", i, export.Tracks[i].Title, want)
			}
		}

		if export.Tracks[0].Artist != "Artist One" {
			t.Errorf("expected primary artist Artist One, got %s", export.Tracks[0].Artist)
		}

		if export.Tracks[0].Duration != 180 {
			t.Errorf("expected duration in seconds 180, got %d", export.Tracks[0].Duration)
		}

		if trackPageCalls != 2 {
			t.Errorf("expected 2 track page requests, got %d", trackPageCalls)
		}
	})

	t.Run("expired token surfaces sentinel error", func(t *testing.T) {
		unauthorized := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer unauthorized.Close()

		srv.baseURL = unauthorized.URL
		defer func() { srv.baseURL = server.URL }()

		_, err := srv.ExportPlaylist(context.Background(), "pl123")
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected token expired error, got %v", err)
		}
	})
}

// mockTokenSource implements [oauth2.TokenSource] for testing
type mockTokenSource struct {
	token *oauth2.Token
	err   error
}

func (m *mockTokenSource) Token() (*oauth2.Token, error) {
	return m.token, m.err
}
