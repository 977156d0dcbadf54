// Package tasks orchestrates playlist conversions between music services with real-time progress reporting.
//
// # Core Operations
//
// [ConversionEngine] drives four operations:
//
//  1. [ConversionEngine.Convert] : Spotify → YouTube Music conversion from a share link
//     - Validates and parses the playlist link before any network call
//     - Fetches the full source track list from Spotify (every page)
//     - Searches each track on YouTube Music; the first result wins
//     - Creates a private destination playlist containing the matched tracks
//     - Returns per-track results so misses stay visible
//
//  2. [ConversionEngine.ConvertPlaylist] : Same flow starting from a playlist ID
//
//  3. [ConversionEngine.Diff] : Compare playlists across services
//     - Matches tracks via ISRC (preferred) or normalized title/artist
//     - Reports matched count, missing tracks, and extra tracks
//
//  4. [ConversionEngine.Dump] : Fetch all YouTube Music library data
//     - Retrieves playlists, songs, albums, artists, history, uploads
//     - Returns structured data for backup or analysis
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on a caller-supplied channel.
// Sends use select with default, so a slow or absent consumer never blocks a
// run. [Phase] values stringify to stable snake_case identifiers for logs
// and UIs; a run ends with a Completed or Failed update.
//
// # Concurrency
//
// Matching runs sequentially by default. [WithWorkers] bounds a worker pool
// over the track list; results land in a slice indexed by source position, so
// matched-ID order always mirrors the source playlist. [WithRateLimit] applies
// a token bucket to destination search calls.
//
// # Track Caching
//
// The optional [TrackCacher] persists matched tracks during conversions.
// Tracks are cached silently (errors ignored) to avoid disrupting conversions.
// This supports ISRC-based matching across future operations and analytics on
// conversion outcomes.
//
// # Bulk Export
//
// [ConversionEngine.BulkExport] exports many playlists through the same
// worker-pool and rate-limit machinery, writing per-playlist files plus a
// manifest through the formatter package.
package tasks
