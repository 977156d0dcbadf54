// package tasks implements playlist conversion operations between music services.
//
// The core type is ConversionEngine, which orchestrates Spotify → YouTube Music
// conversions, playlist comparisons, and data dumps. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/desertthunder/tuneport/internal/models"
	"github.com/desertthunder/tuneport/internal/services"
	"github.com/desertthunder/tuneport/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// defaultPlaylistName replaces source names that are missing or too long
	// for YouTube Music.
	defaultPlaylistName = "Converted Spotify Playlist"
	maxPlaylistNameLen  = 150
	maxDescriptionLen   = 500
)

// TrackMatchResult represents the result of attempting to match a single track.
type TrackMatchResult struct {
	Original models.Track  // Original track from source
	Matched  *models.Track // Matched track (nil if not found)
	Error    error         // Error if match failed
}

// ConversionResult contains all data from a playlist conversion run.
type ConversionResult struct {
	SourcePlaylist *models.PlaylistExport // Source playlist with tracks
	Playlist       *models.Playlist       // Created destination playlist
	Matches        []TrackMatchResult     // Per-track match results in source order
	SuccessCount   int                    // Number of successfully matched tracks
	FailedCount    int                    // Number of failed matches
	TotalCount     int                    // Total tracks processed
}

// MatchedIDs returns destination track IDs in source playlist order, skipping misses.
func (r *ConversionResult) MatchedIDs() []string {
	ids := make([]string, 0, r.SuccessCount)
	for _, match := range r.Matches {
		if match.Matched != nil {
			ids = append(ids, match.Matched.ID)
		}
	}
	return ids
}

// Matched returns the destination tracks that were found, in source order.
func (r *ConversionResult) Matched() []models.Track {
	matched := make([]models.Track, 0, r.SuccessCount)
	for _, match := range r.Matches {
		if match.Matched != nil {
			matched = append(matched, *match.Matched)
		}
	}
	return matched
}

// Missed returns the source tracks that had no destination match, in source order.
func (r *ConversionResult) Missed() []models.Track {
	missed := make([]models.Track, 0, r.FailedCount)
	for _, match := range r.Matches {
		if match.Matched == nil {
			missed = append(missed, match.Original)
		}
	}
	return missed
}

// MatchPercentage returns the share of source tracks that matched, as a percentage.
func (r *ConversionResult) MatchPercentage() float64 {
	if r.TotalCount == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(r.TotalCount) * 100
}

// URL returns the destination playlist URL, or an empty string when no
// playlist was created.
func (r *ConversionResult) URL() string {
	if r.Playlist == nil {
		return ""
	}
	return services.PlaylistURL(r.Playlist.ID)
}

// ComparisonResult contains track comparison details between two playlists.
type ComparisonResult struct {
	SourcePlaylist *models.PlaylistExport // Source playlist
	DestPlaylist   *models.PlaylistExport // Destination playlist
	MatchedCount   int                    // Tracks found in both
	MissingInDest  []models.Track         // Tracks in source but not in dest
	ExtraInDest    []models.Track         // Tracks in dest but not in source
}

// DiffResult contains the results of comparing two playlists.
type DiffResult struct {
	Comparison ComparisonResult
}

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Data     any
	Error    error
}

// DumpResult contains all data fetched from the API proxy.
type DumpResult struct {
	Health         any              // Health status
	Playlists      any              // Library playlists
	Songs          any              // Library songs
	Albums         any              // Library albums
	Artists        any              // Library artists
	LikedSongs     any              // Liked songs
	History        any              // Listening history
	UploadedSongs  any              // Uploaded songs
	UploadedAlbums any              // Uploaded albums
	Errors         []EndpointResult // Failed endpoint fetches
}

// DumpData is the JSON-serializable form of a DumpResult.
type DumpData struct {
	Health         any   `json:"health"`
	Playlists      any   `json:"playlists,omitempty"`
	Songs          any   `json:"songs,omitempty"`
	Albums         any   `json:"albums,omitempty"`
	Artists        any   `json:"artists,omitempty"`
	LikedSongs     any   `json:"liked_songs,omitempty"`
	History        any   `json:"history,omitempty"`
	UploadedSongs  any   `json:"uploaded_songs,omitempty"`
	UploadedAlbums any   `json:"uploaded_albums,omitempty"`
	Errors         []any `json:"errors,omitempty"`
}

// Data converts the dump into its JSON-serializable form.
func (d *DumpResult) Data() DumpData {
	data := DumpData{
		Health:         d.Health,
		Playlists:      d.Playlists,
		Songs:          d.Songs,
		Albums:         d.Albums,
		Artists:        d.Artists,
		LikedSongs:     d.LikedSongs,
		History:        d.History,
		UploadedSongs:  d.UploadedSongs,
		UploadedAlbums: d.UploadedAlbums,
	}
	for _, endpointErr := range d.Errors {
		data.Errors = append(data.Errors, map[string]string{
			"endpoint": endpointErr.Endpoint,
			"error":    endpointErr.Error.Error(),
		})
	}
	return data
}

type endpointOperation struct {
	name    string
	path    string
	target  *any
	phase   Phase
	message string
}

// APIClient defines the interface for making API requests to the proxy.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type APIClient interface {
	Get(ctx context.Context, path string) (*services.APIResponse, error)
}

// TrackCacher persists tracks encountered during conversions.
// Implementations must tolerate duplicate tracks.
type TrackCacher interface {
	CacheTrack(service, serviceID string, track models.Track) error
}

// ConversionEngine converts playlists from a source service to a destination service.
// Contains dependencies on music services and the API proxy client.
type ConversionEngine struct {
	source   services.Service
	dest     services.Service
	api      APIClient
	cache    TrackCacher
	destName string
	workers  int
	limiter  *rate.Limiter
}

// EngineOption configures optional ConversionEngine behavior.
type EngineOption func(*ConversionEngine)

// WithWorkers runs track matching on n concurrent workers.
// Values below 2 keep matching sequential.
func WithWorkers(n int) EngineOption {
	return func(e *ConversionEngine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithRateLimit caps destination search calls at rps requests per second.
func WithRateLimit(rps float64) EngineOption {
	return func(e *ConversionEngine) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTrackCache persists matched tracks through cache during conversions.
func WithTrackCache(cache TrackCacher) EngineOption {
	return func(e *ConversionEngine) {
		e.cache = cache
	}
}

// WithPlaylistName overrides the derived destination playlist name.
func WithPlaylistName(name string) EngineOption {
	return func(e *ConversionEngine) {
		e.destName = name
	}
}

// NewConversionEngine creates a ConversionEngine with the provided services.
// Matching is sequential and unthrottled unless configured otherwise.
func NewConversionEngine(source, dest services.Service, api APIClient, opts ...EngineOption) *ConversionEngine {
	e := &ConversionEngine{
		source:  source,
		dest:    dest,
		api:     api,
		workers: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ConversionEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// fatalAuthErr reports whether err is an authentication failure that must
// surface immediately instead of degrading into a per-track miss.
func fatalAuthErr(err error) bool {
	return errors.Is(err, shared.ErrNotAuthenticated) ||
		errors.Is(err, shared.ErrTokenExpired) ||
		errors.Is(err, shared.ErrAuthFailed)
}

// Convert parses a Spotify playlist share link and converts the playlist to
// the destination service. The link is validated before any service call, so
// malformed input never costs a network round trip.
func (e *ConversionEngine) Convert(ctx context.Context, rawURL string, progress chan<- ProgressUpdate) (*ConversionResult, error) {
	playlistID, err := services.ExtractSpotifyID(rawURL)
	if err != nil {
		e.sendProgress(progress, failedUpdate(err))
		return nil, err
	}
	return e.ConvertPlaylist(ctx, playlistID, progress)
}

// ConvertPlaylist performs a full Spotify → YouTube Music playlist conversion:
// fetch the source playlist, match every track in order, create the
// destination playlist with the matched tracks.
func (e *ConversionEngine) ConvertPlaylist(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*ConversionResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source service not initialized", shared.ErrServiceUnavailable)
	}
	if e.dest == nil {
		return nil, fmt.Errorf("%w: destination service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchingSourceUpdate(1, 1))

	srcPlaylist, err := e.fetchSource(ctx, playlistID)
	if err != nil {
		e.sendProgress(progress, failedUpdate(err))
		return nil, err
	}

	total := len(srcPlaylist.Tracks)
	result := &ConversionResult{
		SourcePlaylist: srcPlaylist,
		TotalCount:     total,
	}

	e.sendProgress(progress, foundPlaylistUpdate(1, 1, srcPlaylist))

	matches, err := e.matchTracks(ctx, srcPlaylist.Tracks, progress)
	if err != nil {
		e.sendProgress(progress, failedUpdate(err))
		return nil, err
	}

	result.Matches = matches
	for _, match := range matches {
		if match.Matched != nil {
			result.SuccessCount++
		}
	}
	result.FailedCount = total - result.SuccessCount

	e.sendProgress(progress, createDestinationUpdate(1, 1))

	imported, err := e.dest.ImportPlaylist(ctx, e.destinationExport(srcPlaylist, matches))
	if err != nil {
		err = fmt.Errorf("%w: %v", shared.ErrPlaylistCreate, err)
		e.sendProgress(progress, failedUpdate(err))
		return nil, err
	}
	result.Playlist = imported
	e.sendProgress(progress, createPlaylistUpdate(1, 1, imported))

	e.cacheMatches(progress, matches)

	e.sendProgress(progress, completedUpdate(result))
	return result, nil
}

// fetchSource exports the source playlist by ID, falling back to a library
// name lookup when the ID is unknown. Authentication failures surface
// immediately without the fallback.
func (e *ConversionEngine) fetchSource(ctx context.Context, idOrName string) (*models.PlaylistExport, error) {
	export, err := e.source.ExportPlaylist(ctx, idOrName)
	if err == nil {
		return export, nil
	}
	if fatalAuthErr(err) {
		return nil, err
	}

	playlists, listErr := e.source.GetPlaylists(ctx)
	if listErr != nil {
		return nil, fmt.Errorf("%w: failed to get playlists: %v", shared.ErrAPIRequest, listErr)
	}

	var matchedID string
	for _, pl := range playlists {
		if pl.Name == idOrName {
			matchedID = pl.ID
			break
		}
	}
	if matchedID == "" {
		return nil, fmt.Errorf("%w: no playlist found with name '%s'", shared.ErrPlaylistNotFound, idOrName)
	}

	export, err = e.source.ExportPlaylist(ctx, matchedID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to export playlist: %v", shared.ErrAPIRequest, err)
	}
	return export, nil
}

// matchTracks searches the destination service for every source track.
// Results land in a slice indexed by source position, so the matched order
// mirrors the source playlist whether matching runs sequentially or on a
// worker pool.
func (e *ConversionEngine) matchTracks(ctx context.Context, tracks []models.Track, progress chan<- ProgressUpdate) ([]TrackMatchResult, error) {
	total := len(tracks)
	matches := make([]TrackMatchResult, total)

	e.sendProgress(progress, matchTracksUpdate(0, total, nil))

	if e.workers <= 1 || total <= 1 {
		for i, track := range tracks {
			e.sendProgress(progress, matchTracksUpdate(i+1, total, &track))
			match, err := e.matchTrack(ctx, track)
			if err != nil {
				return nil, err
			}
			matches[i] = match
		}
		return matches, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, total)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		fatalErr error
		done     int
	)

	for range e.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				match, err := e.matchTrack(ctx, tracks[i])
				if err != nil {
					mu.Lock()
					if fatalErr == nil {
						fatalErr = err
					}
					mu.Unlock()
					cancel()
					return
				}
				matches[i] = match

				mu.Lock()
				done++
				step := done
				mu.Unlock()
				e.sendProgress(progress, matchTracksUpdate(step, total, &tracks[i]))
			}
		}()
	}

	for i := range tracks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if fatalErr != nil {
		return nil, fatalErr
	}
	return matches, nil
}

// matchTrack looks up a single track on the destination service. Search
// failures become misses; authentication failures and cancellation abort the run.
func (e *ConversionEngine) matchTrack(ctx context.Context, track models.Track) (TrackMatchResult, error) {
	if err := ctx.Err(); err != nil {
		return TrackMatchResult{}, err
	}
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return TrackMatchResult{}, err
		}
	}

	found, err := e.dest.SearchTrack(ctx, track.Title, track.Artist)
	if err != nil && fatalAuthErr(err) {
		return TrackMatchResult{}, err
	}
	return TrackMatchResult{Original: track, Matched: found, Error: err}, nil
}

// destinationExport assembles the destination playlist payload. Missing or
// overlong source names fall back to the default, descriptions are clamped,
// and the playlist is always created private.
func (e *ConversionEngine) destinationExport(src *models.PlaylistExport, matches []TrackMatchResult) *models.PlaylistExport {
	matched := make([]models.Track, 0, len(matches))
	for _, match := range matches {
		if match.Matched != nil {
			matched = append(matched, *match.Matched)
		}
	}

	name := src.Playlist.Name
	if e.destName != "" {
		name = e.destName
	}
	if name == "" || utf8.RuneCountInString(name) > maxPlaylistNameLen {
		name = defaultPlaylistName
	}

	description := shared.TruncateString(
		fmt.Sprintf("Converted from Spotify playlist: %s", src.Playlist.Name),
		maxDescriptionLen,
	)

	return &models.PlaylistExport{
		Playlist: models.Playlist{
			Name:        name,
			Description: description,
			Public:      false,
		},
		Tracks: matched,
	}
}

// cacheMatches persists matched tracks through the configured cache. Errors
// are ignored so caching never disrupts a conversion.
func (e *ConversionEngine) cacheMatches(progress chan<- ProgressUpdate, matches []TrackMatchResult) {
	if e.cache == nil {
		return
	}
	e.sendProgress(progress, cachingResultsUpdate(1, 1))
	for _, match := range matches {
		if match.Matched == nil {
			continue
		}
		_ = e.cache.CacheTrack(e.source.Name(), match.Original.ID, match.Original)
		_ = e.cache.CacheTrack(e.dest.Name(), match.Matched.ID, *match.Matched)
	}
}

// trackMaps indexes tracks by ISRC and by normalized title/artist key.
func trackMaps(tracks []models.Track) (byKey, byISRC map[string]models.Track) {
	byKey = make(map[string]models.Track)
	byISRC = make(map[string]models.Track)
	for _, track := range tracks {
		byKey[shared.NormalizeTrackKey(track.Title, track.Artist)] = track
		if track.ISRC != "" {
			byISRC[track.ISRC] = track
		}
	}
	return byKey, byISRC
}

// unmatchedTracks returns tracks absent from both maps. ISRC matches take
// precedence over normalized title/artist matches.
func unmatchedTracks(tracks []models.Track, byKey, byISRC map[string]models.Track) []models.Track {
	var unmatched []models.Track
	for _, track := range tracks {
		if track.ISRC != "" {
			if _, found := byISRC[track.ISRC]; found {
				continue
			}
		}
		if _, found := byKey[shared.NormalizeTrackKey(track.Title, track.Artist)]; found {
			continue
		}
		unmatched = append(unmatched, track)
	}
	return unmatched
}

// Diff compares two playlists and identifies matched, missing, and extra tracks.
func (e *ConversionEngine) Diff(ctx context.Context, sourceSvc, destSvc services.Service, sourceID, destID string, progress chan<- ProgressUpdate) (*DiffResult, error) {
	if sourceSvc == nil || destSvc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	result := &DiffResult{}

	e.sendProgress(progress, fetchSourceUpdate(1, 2, sourceSvc.Name()))
	sourceExport, err := sourceSvc.ExportPlaylist(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to export source playlist: %v", shared.ErrPlaylistNotFound, err)
	}

	e.sendProgress(progress, fetchDestUpdate(2, 2, destSvc.Name()))
	destExport, err := destSvc.ExportPlaylist(ctx, destID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to export destination playlist: %v", shared.ErrPlaylistNotFound, err)
	}

	result.Comparison.SourcePlaylist = sourceExport
	result.Comparison.DestPlaylist = destExport

	e.sendProgress(progress, buildDestMapUpdate(1, 2))
	destByKey, destByISRC := trackMaps(destExport.Tracks)
	srcByKey, srcByISRC := trackMaps(sourceExport.Tracks)

	e.sendProgress(progress, missingTrackUpdate(2, 2))
	result.Comparison.MissingInDest = unmatchedTracks(sourceExport.Tracks, destByKey, destByISRC)
	result.Comparison.ExtraInDest = unmatchedTracks(destExport.Tracks, srcByKey, srcByISRC)
	result.Comparison.MatchedCount = len(sourceExport.Tracks) - len(result.Comparison.MissingInDest)

	return result, nil
}

// Dump fetches all data from the API proxy.
func (e *ConversionEngine) Dump(ctx context.Context, progress chan<- ProgressUpdate) (*DumpResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{
		Errors: []EndpointResult{},
	}

	endpoints := []endpointOperation{
		{name: "health", path: "/health", target: &result.Health, phase: FetchHealth, message: "Fetching health status..."},
		{name: "playlists", path: "/api/library/playlists", target: &result.Playlists, phase: FetchPlaylists, message: "Fetching playlists..."},
		{name: "songs", path: "/api/library/songs", target: &result.Songs, phase: FetchSongs, message: "Fetching songs..."},
		{name: "albums", path: "/api/library/albums", target: &result.Albums, phase: FetchAlbums, message: "Fetching albums..."},
		{name: "artists", path: "/api/library/artists", target: &result.Artists, phase: FetchArtists, message: "Fetching artists..."},
		{name: "liked_songs", path: "/api/library/liked-songs", target: &result.LikedSongs, phase: FetchLiked, message: "Fetching liked songs..."},
		{name: "history", path: "/api/library/history", target: &result.History, phase: FetchHistory, message: "Fetching history..."},
		{name: "uploaded_songs", path: "/api/uploads/songs", target: &result.UploadedSongs, phase: FetchUploads, message: "Fetching uploaded songs..."},
		{name: "uploaded_albums", path: "/api/uploads/albums", target: &result.UploadedAlbums, phase: FetchUploads, message: "Fetching uploaded albums..."},
	}

	totalSteps := len(endpoints)

	for i, endpoint := range endpoints {
		e.sendProgress(progress, operationUpdate(endpoint, i+1, totalSteps))

		resp, err := e.api.Get(ctx, endpoint.path)
		if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			} else {
				errMsg = fmt.Sprintf("status %d", resp.StatusCode)
			}
			result.Errors = append(result.Errors, EndpointResult{
				Endpoint: endpoint.path,
				Error:    errors.New(errMsg),
			})
		} else {
			*endpoint.target = resp.JSONData
		}
	}

	return result, nil
}
