package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/desertthunder/tuneport/internal/models"
	"github.com/desertthunder/tuneport/internal/services"
	"github.com/desertthunder/tuneport/internal/shared"
)

type mockService struct {
	name            string
	playlists       []models.Playlist
	playlistExports map[string]*models.PlaylistExport
	searchResults   map[string]*models.Track
	importResult    *models.Playlist
	authenticateErr error
	getPlaylistsErr error
	getPlaylistErr  error
	exportErr       error
	exportErrOnce   bool // If true, only fail first export call
	importErr       error
	searchErr       error

	mu                sync.Mutex
	exportCallCount   int
	getPlaylistsCalls int
	searchCallCount   int
	importCallCount   int
	lastImport        *models.PlaylistExport
}

func (m *mockService) Name() string {
	return m.name
}

func (m *mockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.authenticateErr
}

func (m *mockService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	m.mu.Lock()
	m.getPlaylistsCalls++
	m.mu.Unlock()

	if m.getPlaylistsErr != nil {
		return nil, m.getPlaylistsErr
	}
	return m.playlists, nil
}

func (m *mockService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if m.getPlaylistErr != nil {
		return nil, m.getPlaylistErr
	}
	if export, ok := m.playlistExports[playlistID]; ok {
		return &export.Playlist, nil
	}
	return nil, fmt.Errorf("playlist not found")
}

func (m *mockService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	m.mu.Lock()
	m.exportCallCount++
	count := m.exportCallCount
	m.mu.Unlock()

	if m.exportErr != nil && (!m.exportErrOnce || count == 1) {
		return nil, m.exportErr
	}
	if export, ok := m.playlistExports[playlistID]; ok {
		return export, nil
	}
	return nil, fmt.Errorf("playlist not found")
}

func (m *mockService) ImportPlaylist(ctx context.Context, playlist *models.PlaylistExport) (*models.Playlist, error) {
	m.mu.Lock()
	m.importCallCount++
	m.lastImport = playlist
	m.mu.Unlock()

	if m.importErr != nil {
		return nil, m.importErr
	}
	if m.importResult != nil {
		return m.importResult, nil
	}
	return &models.Playlist{
		ID:         "yt_playlist",
		Name:       playlist.Playlist.Name,
		TrackCount: len(playlist.Tracks),
	}, nil
}

func (m *mockService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	m.mu.Lock()
	m.searchCallCount++
	m.mu.Unlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}
	key := title + "|" + artist
	if track, ok := m.searchResults[key]; ok {
		return track, nil
	}
	return nil, fmt.Errorf("track not found")
}

// Mock API client for testing
type mockAPIClient struct {
	responses map[string]*services.APIResponse
	getErr    error
}

func (m *mockAPIClient) Get(ctx context.Context, path string) (*services.APIResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if resp, ok := m.responses[path]; ok {
		return resp, nil
	}
	return &services.APIResponse{
		StatusCode: 404,
		Body:       []byte("not found"),
	}, nil
}

type fakeTrackCache struct {
	mu     sync.Mutex
	calls  int
	err    error
	tracks map[string]models.Track
}

func (f *fakeTrackCache) CacheTrack(service, serviceID string, track models.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.tracks == nil {
		f.tracks = make(map[string]models.Track)
	}
	f.tracks[service+":"+serviceID] = track
	return f.err
}

// playlistFixture builds a source playlist with trackCount numbered tracks.
func playlistFixture(id, name string, trackCount int) *models.PlaylistExport {
	tracks := make([]models.Track, trackCount)
	for i := range tracks {
		tracks[i] = models.Track{
			ID:     fmt.Sprintf("track%d", i+1),
			Title:  fmt.Sprintf("Song %d", i+1),
			Artist: fmt.Sprintf("Artist %d", i+1),
		}
	}
	return &models.PlaylistExport{
		Playlist: models.Playlist{ID: id, Name: name, TrackCount: trackCount},
		Tracks:   tracks,
	}
}

// searchResultsFor maps every track in export to a destination match named
// yt{n}, skipping the given zero-based track indexes.
func searchResultsFor(export *models.PlaylistExport, skip ...int) map[string]*models.Track {
	skipped := make(map[int]bool, len(skip))
	for _, idx := range skip {
		skipped[idx] = true
	}
	results := make(map[string]*models.Track)
	for i, track := range export.Tracks {
		if skipped[i] {
			continue
		}
		results[track.Title+"|"+track.Artist] = &models.Track{
			ID:     fmt.Sprintf("yt%d", i+1),
			Title:  track.Title,
			Artist: track.Artist,
		}
	}
	return results
}

// drainedProgress returns a progress channel consumed by a background reader.
func drainedProgress() chan ProgressUpdate {
	ch := make(chan ProgressUpdate, 100)
	go func() {
		for range ch {
			// Drain progress channel
		}
	}()
	return ch
}

func TestConversionEngine_ConvertPlaylist(t *testing.T) {
	tests := []struct {
		name           string
		sourceID       string
		spotifyService *mockService
		youtubeService *mockService
		wantErr        bool
		wantSuccess    int
		wantFailed     int
	}{
		{
			name:     "successful conversion by ID",
			sourceID: "playlist123",
			spotifyService: &mockService{
				name: "Spotify",
				playlistExports: map[string]*models.PlaylistExport{
					"playlist123": {
						Playlist: models.Playlist{
							ID:   "playlist123",
							Name: "My Spotify Playlist",
						},
						Tracks: []models.Track{
							{ID: "track1", Title: "Song 1", Artist: "Artist 1"},
							{ID: "track2", Title: "Song 2", Artist: "Artist 2"},
						},
					},
				},
			},
			youtubeService: &mockService{
				name: "YouTube Music",
				searchResults: map[string]*models.Track{
					"Song 1|Artist 1": {ID: "yt1", Title: "Song 1", Artist: "Artist 1"},
					"Song 2|Artist 2": {ID: "yt2", Title: "Song 2", Artist: "Artist 2"},
				},
			},
			wantErr:     false,
			wantSuccess: 2,
			wantFailed:  0,
		},
		{
			name:     "successful conversion by name",
			sourceID: "My Spotify Playlist",
			spotifyService: &mockService{
				name: "Spotify",
				playlists: []models.Playlist{
					{ID: "playlist123", Name: "My Spotify Playlist"},
				},
				playlistExports: map[string]*models.PlaylistExport{
					"playlist123": {
						Playlist: models.Playlist{
							ID:   "playlist123",
							Name: "My Spotify Playlist",
						},
						Tracks: []models.Track{
							{ID: "track1", Title: "Song 1", Artist: "Artist 1"},
						},
					},
				},
				exportErr:     fmt.Errorf("not found"), // First export by ID fails
				exportErrOnce: true,                     // Only fail first call
			},
			youtubeService: &mockService{
				name: "YouTube Music",
				searchResults: map[string]*models.Track{
					"Song 1|Artist 1": {ID: "yt1", Title: "Song 1", Artist: "Artist 1"},
				},
			},
			wantErr:     false,
			wantSuccess: 1,
			wantFailed:  0,
		},
		{
			name:     "partial success with some tracks not found",
			sourceID: "playlist123",
			spotifyService: &mockService{
				name: "Spotify",
				playlistExports: map[string]*models.PlaylistExport{
					"playlist123": {
						Playlist: models.Playlist{
							ID:   "playlist123",
							Name: "My Spotify Playlist",
						},
						Tracks: []models.Track{
							{ID: "track1", Title: "Song 1", Artist: "Artist 1"},
							{ID: "track2", Title: "Song 2", Artist: "Artist 2"},
							{ID: "track3", Title: "Song 3", Artist: "Artist 3"},
						},
					},
				},
			},
			youtubeService: &mockService{
				name: "YouTube Music",
				searchResults: map[string]*models.Track{
					"Song 1|Artist 1": {ID: "yt1", Title: "Song 1", Artist: "Artist 1"},
					// Song 2 not found
					"Song 3|Artist 3": {ID: "yt3", Title: "Song 3", Artist: "Artist 3"},
				},
			},
			wantErr:     false,
			wantSuccess: 2,
			wantFailed:  1,
		},
		{
			name:     "no tracks matched still creates the playlist",
			sourceID: "playlist123",
			spotifyService: &mockService{
				name: "Spotify",
				playlistExports: map[string]*models.PlaylistExport{
					"playlist123": {
						Playlist: models.Playlist{
							ID:   "playlist123",
							Name: "My Spotify Playlist",
						},
						Tracks: []models.Track{
							{ID: "track1", Title: "Song 1", Artist: "Artist 1"},
						},
					},
				},
			},
			youtubeService: &mockService{
				name:          "YouTube Music",
				searchResults: map[string]*models.Track{},
			},
			wantErr:     false,
			wantSuccess: 0,
			wantFailed:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewConversionEngine(tt.spotifyService, tt.youtubeService, nil)

			progressCh := drainedProgress()
			result, err := engine.ConvertPlaylist(context.Background(), tt.sourceID, progressCh)
			close(progressCh)

			if (err != nil) != tt.wantErr {
				t.Errorf("ConvertPlaylist() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			if result.SuccessCount != tt.wantSuccess {
				t.Errorf("ConvertPlaylist() successCount = %v, want %v", result.SuccessCount, tt.wantSuccess)
			}
			if result.FailedCount != tt.wantFailed {
				t.Errorf("ConvertPlaylist() failedCount = %v, want %v", result.FailedCount, tt.wantFailed)
			}
			if result.SuccessCount+result.FailedCount != result.TotalCount {
				t.Errorf("ConvertPlaylist() success %d + failed %d != total %d",
					result.SuccessCount, result.FailedCount, result.TotalCount)
			}
			if result.Playlist == nil {
				t.Error("ConvertPlaylist() should always create the destination playlist")
			}
			if tt.youtubeService.importCallCount != 1 {
				t.Errorf("ConvertPlaylist() called ImportPlaylist %d times, want 1", tt.youtubeService.importCallCount)
			}
		})
	}
}

func TestConversionEngine_Convert(t *testing.T) {
	newServices := func() (*mockService, *mockService) {
		export := playlistFixture("37i9dQZF1DXcBWIGoYBM5M", "Today's Top Hits", 2)
		spotify := &mockService{
			name:            "Spotify",
			playlistExports: map[string]*models.PlaylistExport{"37i9dQZF1DXcBWIGoYBM5M": export},
		}
		youtube := &mockService{
			name:          "YouTube Music",
			searchResults: searchResultsFor(export),
		}
		return spotify, youtube
	}

	t.Run("converts from a share link", func(t *testing.T) {
		spotify, youtube := newServices()
		engine := NewConversionEngine(spotify, youtube, nil)
		progressCh := drainedProgress()

		result, err := engine.Convert(context.Background(), "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123", progressCh)
		close(progressCh)

		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if result.SuccessCount != 2 {
			t.Errorf("Convert() successCount = %d, want 2", result.SuccessCount)
		}
		if result.URL() != "https://music.youtube.com/playlist?list=yt_playlist" {
			t.Errorf("Convert() URL() = %q", result.URL())
		}
	})

	t.Run("rejects malformed input before any service call", func(t *testing.T) {
		spotify, youtube := newServices()
		engine := NewConversionEngine(spotify, youtube, nil)
		progressCh := drainedProgress()

		result, err := engine.Convert(context.Background(), "not-a-url", progressCh)
		close(progressCh)

		if err == nil {
			t.Fatal("Convert() expected error for malformed input")
		}
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Convert() error = %v, want ErrInvalidInput", err)
		}
		if result != nil {
			t.Errorf("Convert() result = %+v, want nil", result)
		}
		if spotify.exportCallCount != 0 || spotify.getPlaylistsCalls != 0 {
			t.Errorf("Convert() touched the source service: %d exports, %d list calls",
				spotify.exportCallCount, spotify.getPlaylistsCalls)
		}
		if youtube.searchCallCount != 0 || youtube.importCallCount != 0 {
			t.Errorf("Convert() touched the destination service: %d searches, %d imports",
				youtube.searchCallCount, youtube.importCallCount)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		spotify, youtube := newServices()
		engine := NewConversionEngine(spotify, youtube, nil)

		if _, err := engine.Convert(context.Background(), "", nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("Convert(\"\") error = %v, want ErrInvalidInput", err)
		}
		if spotify.exportCallCount != 0 {
			t.Error("Convert(\"\") should not call the source service")
		}
	})
}

func TestConversionEngine_MatchedOrder(t *testing.T) {
	export := playlistFixture("playlist123", "Ordered", 3)
	spotify := &mockService{
		name:            "Spotify",
		playlistExports: map[string]*models.PlaylistExport{"playlist123": export},
	}
	youtube := &mockService{
		name:          "YouTube Music",
		searchResults: searchResultsFor(export, 1), // Song 2 has no match
	}

	engine := NewConversionEngine(spotify, youtube, nil)
	progressCh := drainedProgress()

	result, err := engine.ConvertPlaylist(context.Background(), "playlist123", progressCh)
	close(progressCh)

	if err != nil {
		t.Fatalf("ConvertPlaylist() error = %v", err)
	}

	wantIDs := []string{"yt1", "yt3"}
	gotIDs := result.MatchedIDs()
	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("MatchedIDs() = %v, want %v", gotIDs, wantIDs)
	}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Errorf("MatchedIDs()[%d] = %q, want %q", i, gotIDs[i], wantIDs[i])
		}
	}

	missed := result.Missed()
	if len(missed) != 1 || missed[0].ID != "track2" {
		t.Errorf("Missed() = %v, want the second source track", missed)
	}

	if youtube.lastImport == nil || len(youtube.lastImport.Tracks) != 2 {
		t.Fatalf("ImportPlaylist received %+v, want exactly the 2 matched tracks", youtube.lastImport)
	}
	if youtube.lastImport.Tracks[0].ID != "yt1" || youtube.lastImport.Tracks[1].ID != "yt3" {
		t.Errorf("ImportPlaylist track order = [%s, %s], want [yt1, yt3]",
			youtube.lastImport.Tracks[0].ID, youtube.lastImport.Tracks[1].ID)
	}

	if pct := result.MatchPercentage(); pct < 66.0 || pct > 67.0 {
		t.Errorf("MatchPercentage() = %.2f, want ~66.67", pct)
	}
}

func TestConversionEngine_DestinationMetadata(t *testing.T) {
	convert := func(t *testing.T, srcName string, opts ...EngineOption) *models.PlaylistExport {
		t.Helper()
		export := playlistFixture("pl1", srcName, 1)
		spotify := &mockService{
			name:            "Spotify",
			playlistExports: map[string]*models.PlaylistExport{"pl1": export},
		}
		youtube := &mockService{
			name:          "YouTube Music",
			searchResults: searchResultsFor(export),
		}

		engine := NewConversionEngine(spotify, youtube, nil, opts...)
		progressCh := drainedProgress()
		if _, err := engine.ConvertPlaylist(context.Background(), "pl1", progressCh); err != nil {
			t.Fatalf("ConvertPlaylist() error = %v", err)
		}
		close(progressCh)
		return youtube.lastImport
	}

	t.Run("keeps the source name", func(t *testing.T) {
		imported := convert(t, "Road Trip")
		if imported.Playlist.Name != "Road Trip" {
			t.Errorf("destination name = %q, want %q", imported.Playlist.Name, "Road Trip")
		}
		if imported.Playlist.Description != "Converted from Spotify playlist: Road Trip" {
			t.Errorf("destination description = %q", imported.Playlist.Description)
		}
		if imported.Playlist.Public {
			t.Error("destination playlist should be private")
		}
	})

	t.Run("empty name falls back to the default", func(t *testing.T) {
		imported := convert(t, "")
		if imported.Playlist.Name != defaultPlaylistName {
			t.Errorf("destination name = %q, want %q", imported.Playlist.Name, defaultPlaylistName)
		}
	})

	t.Run("boundary name length is kept", func(t *testing.T) {
		name := strings.Repeat("x", 150)
		imported := convert(t, name)
		if imported.Playlist.Name != name {
			t.Errorf("150 character name should be kept, got %q", imported.Playlist.Name)
		}
	})

	t.Run("overlong name falls back to the default", func(t *testing.T) {
		imported := convert(t, strings.Repeat("x", 151))
		if imported.Playlist.Name != defaultPlaylistName {
			t.Errorf("destination name = %q, want %q", imported.Playlist.Name, defaultPlaylistName)
		}
	})

	t.Run("description is clamped", func(t *testing.T) {
		imported := convert(t, strings.Repeat("y", 600))
		desc := imported.Playlist.Description
		if utf8.RuneCountInString(desc) != 500 {
			t.Errorf("description length = %d runes, want 500", utf8.RuneCountInString(desc))
		}
		if !strings.HasPrefix(desc, "Converted from Spotify playlist: ") {
			t.Errorf("description prefix missing, got %q", desc[:40])
		}
	})

	t.Run("name override wins", func(t *testing.T) {
		imported := convert(t, "Road Trip", WithPlaylistName("Weekend Mix"))
		if imported.Playlist.Name != "Weekend Mix" {
			t.Errorf("destination name = %q, want %q", imported.Playlist.Name, "Weekend Mix")
		}
	})
}

func TestConversionEngine_CreationFailure(t *testing.T) {
	export := playlistFixture("pl1", "Doomed", 2)
	spotify := &mockService{
		name:            "Spotify",
		playlistExports: map[string]*models.PlaylistExport{"pl1": export},
	}
	youtube := &mockService{
		name:          "YouTube Music",
		searchResults: searchResultsFor(export),
		importErr:     fmt.Errorf("quota exceeded"),
	}

	engine := NewConversionEngine(spotify, youtube, nil)
	progressCh := drainedProgress()

	result, err := engine.ConvertPlaylist(context.Background(), "pl1", progressCh)
	close(progressCh)

	if err == nil {
		t.Fatal("ConvertPlaylist() expected error when playlist creation fails")
	}
	if !errors.Is(err, shared.ErrPlaylistCreate) {
		t.Errorf("ConvertPlaylist() error = %v, want ErrPlaylistCreate", err)
	}
	if result != nil {
		t.Errorf("ConvertPlaylist() result = %+v, want nil on creation failure", result)
	}
}

func TestConversionEngine_AuthErrors(t *testing.T) {
	t.Run("search auth failure aborts the run", func(t *testing.T) {
		export := playlistFixture("pl1", "Auth Test", 3)
		spotify := &mockService{
			name:            "Spotify",
			playlistExports: map[string]*models.PlaylistExport{"pl1": export},
		}
		youtube := &mockService{
			name:      "YouTube Music",
			searchErr: fmt.Errorf("%w: session expired", shared.ErrTokenExpired),
		}

		engine := NewConversionEngine(spotify, youtube, nil)
		progressCh := drainedProgress()

		result, err := engine.ConvertPlaylist(context.Background(), "pl1", progressCh)
		close(progressCh)

		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("ConvertPlaylist() error = %v, want ErrTokenExpired", err)
		}
		if result != nil {
			t.Errorf("ConvertPlaylist() result = %+v, want nil", result)
		}
		if youtube.importCallCount != 0 {
			t.Error("ConvertPlaylist() should not create a playlist after an auth failure")
		}
	})

	t.Run("source auth failure skips the name fallback", func(t *testing.T) {
		spotify := &mockService{
			name:      "Spotify",
			exportErr: fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated),
		}
		youtube := &mockService{name: "YouTube Music"}

		engine := NewConversionEngine(spotify, youtube, nil)
		progressCh := drainedProgress()

		_, err := engine.ConvertPlaylist(context.Background(), "pl1", progressCh)
		close(progressCh)

		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("ConvertPlaylist() error = %v, want ErrNotAuthenticated", err)
		}
		if spotify.getPlaylistsCalls != 0 {
			t.Error("ConvertPlaylist() should not retry via the library after an auth failure")
		}
	})
}

func TestConversionEngine_ParallelMatching(t *testing.T) {
	export := playlistFixture("big", "Big Playlist", 30)
	misses := []int{4, 11, 23}

	run := func(t *testing.T, opts ...EngineOption) *ConversionResult {
		t.Helper()
		spotify := &mockService{
			name:            "Spotify",
			playlistExports: map[string]*models.PlaylistExport{"big": export},
		}
		youtube := &mockService{
			name:          "YouTube Music",
			searchResults: searchResultsFor(export, misses...),
		}

		engine := NewConversionEngine(spotify, youtube, nil, opts...)
		progressCh := drainedProgress()
		result, err := engine.ConvertPlaylist(context.Background(), "big", progressCh)
		close(progressCh)
		if err != nil {
			t.Fatalf("ConvertPlaylist() error = %v", err)
		}
		return result
	}

	sequential := run(t)
	parallel := run(t, WithWorkers(8))

	if parallel.SuccessCount != sequential.SuccessCount || parallel.FailedCount != sequential.FailedCount {
		t.Errorf("parallel counts (%d/%d) differ from sequential (%d/%d)",
			parallel.SuccessCount, parallel.FailedCount, sequential.SuccessCount, sequential.FailedCount)
	}

	seqIDs := sequential.MatchedIDs()
	parIDs := parallel.MatchedIDs()
	if len(seqIDs) != len(parIDs) {
		t.Fatalf("parallel MatchedIDs length %d, sequential %d", len(parIDs), len(seqIDs))
	}
	for i := range seqIDs {
		if seqIDs[i] != parIDs[i] {
			t.Errorf("MatchedIDs()[%d]: parallel %q, sequential %q", i, parIDs[i], seqIDs[i])
		}
	}

	seqMissed := sequential.Missed()
	parMissed := parallel.Missed()
	if len(seqMissed) != len(misses) || len(parMissed) != len(misses) {
		t.Fatalf("missed counts: parallel %d, sequential %d, want %d", len(parMissed), len(seqMissed), len(misses))
	}
	for i := range seqMissed {
		if seqMissed[i].ID != parMissed[i].ID {
			t.Errorf("Missed()[%d]: parallel %q, sequential %q", i, parMissed[i].ID, seqMissed[i].ID)
		}
	}
}

func TestConversionEngine_RateLimitedMatching(t *testing.T) {
	export := playlistFixture("pl1", "Throttled", 5)
	spotify := &mockService{
		name:            "Spotify",
		playlistExports: map[string]*models.PlaylistExport{"pl1": export},
	}
	youtube := &mockService{
		name:          "YouTube Music",
		searchResults: searchResultsFor(export),
	}

	engine := NewConversionEngine(spotify, youtube, nil, WithWorkers(3), WithRateLimit(200))
	progressCh := drainedProgress()

	result, err := engine.ConvertPlaylist(context.Background(), "pl1", progressCh)
	close(progressCh)

	if err != nil {
		t.Fatalf("ConvertPlaylist() error = %v", err)
	}
	if result.SuccessCount != 5 {
		t.Errorf("SuccessCount = %d, want 5", result.SuccessCount)
	}
	if youtube.searchCallCount != 5 {
		t.Errorf("SearchTrack called %d times, want 5", youtube.searchCallCount)
	}
}

func TestConversionEngine_TrackCache(t *testing.T) {
	t.Run("caches matched tracks for source and destination", func(t *testing.T) {
		export := playlistFixture("pl1", "Cached", 2)
		spotify := &mockService{
			name:            "Spotify",
			playlistExports: map[string]*models.PlaylistExport{"pl1": export},
		}
		youtube := &mockService{
			name:          "YouTube Music",
			searchResults: searchResultsFor(export),
		}
		cache := &fakeTrackCache{}

		engine := NewConversionEngine(spotify, youtube, nil, WithTrackCache(cache))
		progressCh := drainedProgress()
		if _, err := engine.ConvertPlaylist(context.Background(), "pl1", progressCh); err != nil {
			t.Fatalf("ConvertPlaylist() error = %v", err)
		}
		close(progressCh)

		if cache.calls != 4 {
			t.Errorf("CacheTrack called %d times, want 4 (source + destination per match)", cache.calls)
		}
		if _, ok := cache.tracks["Spotify:track1"]; !ok {
			t.Error("source track was not cached")
		}
		if _, ok := cache.tracks["YouTube Music:yt1"]; !ok {
			t.Error("destination track was not cached")
		}
	})

	t.Run("cache failures do not disrupt the conversion", func(t *testing.T) {
		export := playlistFixture("pl1", "Cached", 1)
		spotify := &mockService{
			name:            "Spotify",
			playlistExports: map[string]*models.PlaylistExport{"pl1": export},
		}
		youtube := &mockService{
			name:          "YouTube Music",
			searchResults: searchResultsFor(export),
		}
		cache := &fakeTrackCache{err: fmt.Errorf("disk full")}

		engine := NewConversionEngine(spotify, youtube, nil, WithTrackCache(cache))
		result, err := engine.ConvertPlaylist(context.Background(), "pl1", nil)
		if err != nil {
			t.Fatalf("ConvertPlaylist() error = %v", err)
		}
		if result.SuccessCount != 1 {
			t.Errorf("SuccessCount = %d, want 1", result.SuccessCount)
		}
	})
}

func TestConversionEngine_ServiceErrors(t *testing.T) {
	t.Run("source service not initialized", func(t *testing.T) {
		engine := NewConversionEngine(nil, &mockService{}, nil)
		progressCh := make(chan ProgressUpdate, 10)

		_, err := engine.ConvertPlaylist(context.Background(), "playlist123", progressCh)
		close(progressCh)

		if err == nil {
			t.Error("ConvertPlaylist() expected error for nil source service")
		}
		if err != nil && !errors.Is(err, shared.ErrServiceUnavailable) {
			if !strings.Contains(err.Error(), "not initialized") {
				t.Errorf("ConvertPlaylist() error should mention service not initialized, got: %v", err)
			}
		}
	})

	t.Run("destination service not initialized", func(t *testing.T) {
		engine := NewConversionEngine(&mockService{}, nil, nil)
		progressCh := make(chan ProgressUpdate, 10)

		_, err := engine.ConvertPlaylist(context.Background(), "playlist123", progressCh)
		close(progressCh)

		if err == nil {
			t.Error("ConvertPlaylist() expected error for nil destination service")
		}
	})
}

func TestConversionEngine_ProgressPhases(t *testing.T) {
	collect := func(t *testing.T, youtube *mockService) []ProgressUpdate {
		t.Helper()
		export := playlistFixture("pl1", "Progress", 2)
		spotify := &mockService{
			name:            "Spotify",
			playlistExports: map[string]*models.PlaylistExport{"pl1": export},
		}
		if youtube.searchResults == nil {
			youtube.searchResults = searchResultsFor(export)
		}

		engine := NewConversionEngine(spotify, youtube, nil)

		progressCh := make(chan ProgressUpdate, 100)
		var updates []ProgressUpdate
		done := make(chan bool)
		go func() {
			for update := range progressCh {
				updates = append(updates, update)
			}
			done <- true
		}()

		_, _ = engine.ConvertPlaylist(context.Background(), "pl1", progressCh)
		close(progressCh)
		<-done
		return updates
	}

	t.Run("successful run ends with completed", func(t *testing.T) {
		updates := collect(t, &mockService{name: "YouTube Music"})
		if len(updates) == 0 {
			t.Fatal("expected progress updates")
		}

		phases := make(map[Phase]bool)
		for _, update := range updates {
			phases[update.Phase] = true
		}
		for _, want := range []Phase{FetchSource, MatchTracks, CreatePlaylist, Completed} {
			if !phases[want] {
				t.Errorf("missing %s phase in progress updates", want)
			}
		}
		if last := updates[len(updates)-1]; last.Phase != Completed {
			t.Errorf("last phase = %s, want completed", last.Phase)
		}
	})

	t.Run("creation failure ends with failed", func(t *testing.T) {
		updates := collect(t, &mockService{
			name:      "YouTube Music",
			importErr: fmt.Errorf("boom"),
		})
		if len(updates) == 0 {
			t.Fatal("expected progress updates")
		}
		if last := updates[len(updates)-1]; last.Phase != Failed {
			t.Errorf("last phase = %s, want failed", last.Phase)
		}
	})
}

func TestConversionEngine_Diff(t *testing.T) {
	sourceExport := &models.PlaylistExport{
		Playlist: models.Playlist{ID: "src", Name: "Source"},
		Tracks: []models.Track{
			{ID: "1", Title: "Track 1", Artist: "Artist A", ISRC: "ISRC1"},
			{ID: "2", Title: "Track 2", Artist: "Artist B", ISRC: "ISRC2"},
			{ID: "3", Title: "Track 3", Artist: "Artist C", ISRC: "ISRC3"},
		},
	}

	destExport := &models.PlaylistExport{
		Playlist: models.Playlist{ID: "dest", Name: "Destination"},
		Tracks: []models.Track{
			{ID: "10", Title: "Track 1", Artist: "Artist A", ISRC: "ISRC1"}, // Match by ISRC
			{ID: "20", Title: "Track 2", Artist: "Artist B"},                // Match by title+artist
			{ID: "40", Title: "Track 4", Artist: "Artist D", ISRC: "ISRC4"}, // Extra track
		},
	}

	sourceSvc := &mockService{
		name: "Spotify",
		playlistExports: map[string]*models.PlaylistExport{
			"src": sourceExport,
		},
	}

	destSvc := &mockService{
		name: "YouTube Music",
		playlistExports: map[string]*models.PlaylistExport{
			"dest": destExport,
		},
	}

	engine := NewConversionEngine(nil, nil, nil)

	progressCh := drainedProgress()
	result, err := engine.Diff(context.Background(), sourceSvc, destSvc, "src", "dest", progressCh)
	close(progressCh)

	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}

	if result.Comparison.MatchedCount != 2 {
		t.Errorf("Diff() matchedCount = %v, want 2", result.Comparison.MatchedCount)
	}

	if len(result.Comparison.MissingInDest) != 1 {
		t.Errorf("Diff() missingInDest count = %v, want 1", len(result.Comparison.MissingInDest))
	} else if result.Comparison.MissingInDest[0].ID != "3" {
		t.Errorf("Diff() missing track ID = %v, want '3'", result.Comparison.MissingInDest[0].ID)
	}

	if len(result.Comparison.ExtraInDest) != 1 {
		t.Errorf("Diff() extraInDest count = %v, want 1", len(result.Comparison.ExtraInDest))
	} else if result.Comparison.ExtraInDest[0].ID != "40" {
		t.Errorf("Diff() extra track ID = %v, want '40'", result.Comparison.ExtraInDest[0].ID)
	}
}

func TestConversionEngine_Dump(t *testing.T) {
	apiClient := &mockAPIClient{
		responses: map[string]*services.APIResponse{
			"/health": {
				StatusCode: 200,
				IsJSON:     true,
				JSONData:   map[string]string{"status": "ok"},
			},
			"/api/library/playlists": {
				StatusCode: 200,
				IsJSON:     true,
				JSONData:   []string{"playlist1", "playlist2"},
			},
			"/api/library/songs": {
				StatusCode: 500,
				Body:       []byte("internal error"),
			},
		},
	}

	engine := NewConversionEngine(nil, nil, apiClient)

	progressCh := make(chan ProgressUpdate, 100)
	progressUpdates := []ProgressUpdate{}
	done := make(chan bool)

	go func() {
		for update := range progressCh {
			progressUpdates = append(progressUpdates, update)
		}
		done <- true
	}()

	result, err := engine.Dump(context.Background(), progressCh)
	close(progressCh)
	<-done

	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if result.Health == nil {
		t.Error("Dump() health data should not be nil")
	}

	if result.Playlists == nil {
		t.Error("Dump() playlists data should not be nil")
	}

	if len(result.Errors) == 0 {
		t.Error("Dump() should have errors for failed endpoints")
	}

	if len(progressUpdates) == 0 {
		t.Error("Dump() should send progress updates")
	}

	data := result.Data()
	if data.Health == nil {
		t.Error("Data() should carry health over")
	}
	if len(data.Errors) != len(result.Errors) {
		t.Errorf("Data() errors = %d, want %d", len(data.Errors), len(result.Errors))
	}
}

func TestConversionEngine_Dump_APIClientError(t *testing.T) {
	engine := NewConversionEngine(nil, nil, nil)
	progressCh := make(chan ProgressUpdate, 10)

	_, err := engine.Dump(context.Background(), progressCh)
	close(progressCh)

	if err == nil {
		t.Error("Dump() expected error for nil API client")
	}
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	export := playlistFixture("p1", "Test", 1)
	engine := NewConversionEngine(
		&mockService{
			name:            "Spotify",
			playlistExports: map[string]*models.PlaylistExport{"p1": export},
		},
		&mockService{
			name:          "YouTube Music",
			searchResults: searchResultsFor(export),
		},
		nil,
	)

	// Unbuffered channel with no reader simulates a blocked consumer
	progressCh := make(chan ProgressUpdate)

	done := make(chan bool)
	go func() {
		_, err := engine.ConvertPlaylist(context.Background(), "p1", progressCh)
		if err != nil {
			t.Errorf("ConvertPlaylist() error = %v", err)
		}
		done <- true
	}()

	select {
	case <-done:
		// Operation completed even with a blocked progress channel
	case <-time.After(5 * time.Second):
		t.Error("ConvertPlaylist() should not block on progress sends")
	}
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{FetchSource, "fetching_source"},
		{FetchDest, "fetching_dest"},
		{Compare, "comparing"},
		{FetchHealth, "fetching_health"},
		{MatchTracks, "matching_tracks"},
		{CreatePlaylist, "creating_playlist"},
		{CacheResults, "caching_results"},
		{ExportPlaylist, "exporting_playlist"},
		{Completed, "completed"},
		{Failed, "failed"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
