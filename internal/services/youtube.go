// YouTube Music API [Service] implementation
//
// Communicates with the FastAPI proxy server running on port 8080.
// The proxy wraps ytmusicapi Python library for YouTube Music operations.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tuneport/internal/models"
	"github.com/desertthunder/tuneport/internal/shared"
)

const defaultYTBaseURL string = "http://localhost:8080"

// YouTubeImage represents an image/thumbnail from YouTube Music.
type YouTubeImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track/video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []YouTubeArtist `json:"artists"`
	Album       *youtubeAlbum   `json:"album"`
	Duration    string          `json:"duration"`
	DurationSec int             `json:"duration_seconds"` // Duration in seconds
	Thumbnails  []YouTubeImage  `json:"thumbnails"`
	ISRC        string          `json:"isrc,omitempty"`
	SetVideoID  string          `json:"setVideoId,omitempty"` // For playlist operations
}

// YouTubePlaylist represents a playlist from YouTube Music.
type YouTubePlaylist struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Privacy     string         `json:"privacy"`
	Thumbnails  []YouTubeImage `json:"thumbnails"`
	TrackCount  int            `json:"trackCount"`
	Tracks      []YouTubeTrack `json:"tracks,omitempty"`
}

// YouTubeService implements the Service interface for YouTube Music via proxy.
type YouTubeService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	return &YouTubeService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// PlaylistURL returns the public YouTube Music link for a playlist ID.
func PlaylistURL(playlistID string) string {
	return fmt.Sprintf("https://music.youtube.com/playlist?list=%s", playlistID)
}

// searchQuery builds the proxy search string for a track. Identical inputs
// always produce the identical query, so repeated lookups hit the same result.
func searchQuery(title, artist string) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", title, artist))
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// Authenticate stores the authentication file path for subsequent requests.
//
// Expects credentials["auth_file"] to contain the path to browser.json or oauth.json.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	authFile, ok := credentials["auth_file"]
	if !ok || authFile == "" {
		return fmt.Errorf("%w: missing auth_file in credentials", shared.ErrMissingCredentials)
	}

	y.authFile = authFile
	return nil
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	apiURL := y.baseURL + endpoint

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("youtube music API error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("youtube music API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// GetPlaylists retrieves all playlists for the authenticated user.
//
// Calls GET /api/library/playlists on the proxy.
func (y *YouTubeService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var ytPlaylists []struct {
		PlaylistID  string         `json:"playlistId"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Privacy     string         `json:"privacy"`
		Count       int            `json:"count"`
		Thumbnails  []YouTubeImage `json:"thumbnails"`
	}

	if err := y.doRequest(ctx, http.MethodGet, "/api/library/playlists", nil, &ytPlaylists); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, len(ytPlaylists))
	for i, ytp := range ytPlaylists {
		playlists[i] = models.Playlist{
			ID:          ytp.PlaylistID,
			Name:        ytp.Title,
			Description: ytp.Description,
			TrackCount:  ytp.Count,
			Public:      ytp.Privacy == "PUBLIC",
		}
	}

	return playlists, nil
}

// GetPlaylist retrieves a specific playlist by ID without tracks.
//
// Calls GET /api/playlists/{id} on the proxy.
func (y *YouTubeService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var ytPlaylist struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Privacy     string `json:"privacy"`
		TrackCount  int    `json:"trackCount"`
	}

	endpoint := fmt.Sprintf("/api/playlists/%s", playlistID)
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &ytPlaylist); err != nil {
		return nil, err
	}

	return &models.Playlist{
		ID:          ytPlaylist.ID,
		Name:        ytPlaylist.Title,
		Description: ytPlaylist.Description,
		TrackCount:  ytPlaylist.TrackCount,
		Public:      ytPlaylist.Privacy == "PUBLIC",
	}, nil
}

// ExportPlaylist exports a playlist with all its tracks.
//
// Calls GET /api/playlists/{id} on the proxy.
func (y *YouTubeService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	var ytPlaylist struct {
		ID          string         `json:"id"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Privacy     string         `json:"privacy"`
		TrackCount  int            `json:"trackCount"`
		Tracks      []YouTubeTrack `json:"tracks"`
	}

	endpoint := fmt.Sprintf("/api/playlists/%s", playlistID)
	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &ytPlaylist); err != nil {
		return nil, err
	}

	playlist := models.Playlist{
		ID:          ytPlaylist.ID,
		Name:        ytPlaylist.Title,
		Description: ytPlaylist.Description,
		TrackCount:  ytPlaylist.TrackCount,
		Public:      ytPlaylist.Privacy == "PUBLIC",
	}

	tracks := make([]models.Track, len(ytPlaylist.Tracks))
	for i, ytt := range ytPlaylist.Tracks {
		track := models.Track{
			ID:       ytt.VideoID,
			Title:    ytt.Title,
			Duration: ytt.DurationSec,
			ISRC:     ytt.ISRC,
		}

		if len(ytt.Artists) > 0 {
			track.Artist = ytt.Artists[0].Name
		}

		if ytt.Album != nil {
			track.Album = ytt.Album.Name
		}

		tracks[i] = track
	}

	return &models.PlaylistExport{
		Playlist: playlist,
		Tracks:   tracks,
	}, nil
}

// ImportPlaylist imports a playlist into YouTube Music.
//
// When the library already has a playlist with the same title, tracks are
// appended to it and videos it already contains are skipped. Otherwise the
// playlist is created via POST /api/playlists, then tracks are added via
// POST /api/playlists/{id}/items.
func (y *YouTubeService) ImportPlaylist(ctx context.Context, playlist *models.PlaylistExport) (*models.Playlist, error) {
	playlistID, existing := y.findReusablePlaylist(ctx, playlist.Playlist.Name)

	if playlistID == "" {
		id, err := y.createPlaylist(ctx, playlist.Playlist)
		if err != nil {
			return nil, err
		}
		playlistID = id
	}

	videoIDs := make([]string, 0, len(playlist.Tracks))
	for _, track := range playlist.Tracks {
		if _, ok := existing[track.ID]; ok {
			continue
		}
		videoIDs = append(videoIDs, track.ID)
	}

	if len(videoIDs) > 0 {
		if err := y.addPlaylistItems(ctx, playlistID, videoIDs); err != nil {
			return nil, err
		}
	}

	return &models.Playlist{
		ID:          playlistID,
		Name:        playlist.Playlist.Name,
		Description: playlist.Playlist.Description,
		TrackCount:  len(existing) + len(videoIDs),
		Public:      playlist.Playlist.Public,
	}, nil
}

// findReusablePlaylist looks for a library playlist with the given title so
// repeat conversions append to it instead of creating duplicates. Returns the
// playlist ID (or "") and the set of video IDs it already contains.
func (y *YouTubeService) findReusablePlaylist(ctx context.Context, title string) (string, map[string]struct{}) {
	existing := map[string]struct{}{}

	playlists, err := y.GetPlaylists(ctx)
	if err != nil {
		return "", existing
	}

	for _, p := range playlists {
		if p.Name != title {
			continue
		}

		export, err := y.ExportPlaylist(ctx, p.ID)
		if err != nil {
			return p.ID, existing
		}

		for _, track := range export.Tracks {
			existing[track.ID] = struct{}{}
		}
		return p.ID, existing
	}

	return "", existing
}

// createPlaylist creates an empty playlist on the proxy and returns its ID.
func (y *YouTubeService) createPlaylist(ctx context.Context, playlist models.Playlist) (string, error) {
	createReq := struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		PrivacyStatus string `json:"privacy_status"`
	}{
		Title:         playlist.Name,
		Description:   playlist.Description,
		PrivacyStatus: "PRIVATE",
	}

	if playlist.Public {
		createReq.PrivacyStatus = "PUBLIC"
	}

	var createResp struct {
		PlaylistID string `json:"playlist_id"`
	}

	if err := y.doRequest(ctx, http.MethodPost, "/api/playlists", createReq, &createResp); err != nil {
		return "", fmt.Errorf("failed to create playlist: %w", err)
	}

	if createResp.PlaylistID == "" {
		return "", fmt.Errorf("failed to create playlist: proxy returned no playlist ID")
	}

	return createResp.PlaylistID, nil
}

// AddTracks appends video IDs to an existing playlist. An empty ID list is a no-op.
func (y *YouTubeService) AddTracks(ctx context.Context, playlistID string, videoIDs []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID is required", shared.ErrInvalidInput)
	}
	if len(videoIDs) == 0 {
		return nil
	}
	return y.addPlaylistItems(ctx, playlistID, videoIDs)
}

// addPlaylistItems appends video IDs to an existing playlist.
func (y *YouTubeService) addPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) error {
	addReq := struct {
		VideoIDs []string `json:"video_ids"`
	}{
		VideoIDs: videoIDs,
	}

	endpoint := fmt.Sprintf("/api/playlists/%s/items", playlistID)
	if err := y.doRequest(ctx, http.MethodPost, endpoint, addReq, nil); err != nil {
		return fmt.Errorf("failed to add tracks to playlist: %w", err)
	}

	return nil
}

// SearchTrack searches for a track by title and artist, returning the best match.
//
// Calls GET /api/search?q={title} {artist}&filter=songs on the proxy and
// takes the first result.
func (y *YouTubeService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	query := searchQuery(title, artist)
	endpoint := fmt.Sprintf("/api/search?q=%s&filter=songs", url.QueryEscape(query))

	var results []struct {
		VideoID string          `json:"videoId"`
		Title   string          `json:"title"`
		Artists []YouTubeArtist `json:"artists"`
		Album   *struct {
			Name string `json:"name"`
		} `json:"album"`
		Duration   string `json:"duration"`
		DurationMS int    `json:"duration_seconds"`
		ISRC       string `json:"isrc,omitempty"`
	}

	if err := y.doRequest(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results found for '%s' by '%s'", shared.ErrTrackNotFound, title, artist)
	}

	result := results[0]
	track := &models.Track{
		ID:       result.VideoID,
		Title:    result.Title,
		Duration: result.DurationMS,
		ISRC:     result.ISRC,
	}

	if len(result.Artists) > 0 {
		track.Artist = result.Artists[0].Name
	}

	if result.Album != nil {
		track.Album = result.Album.Name
	}

	return track, nil
}
