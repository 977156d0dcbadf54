// Package models defines domain entities and persistence interfaces for the playlist conversion service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [Playlist] : Basic playlist metadata from music services
//   - [PlaylistExport] : Playlist with complete track listing
//   - [Track] : Song metadata with ISRC for cross-service matching
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [User] : Accounts that own cached playlists and conversion history
//   - [PersistedPlaylist] : Cached playlists with service metadata
//   - [PersistedTrack] : Cached tracks with ISRC for matching optimization
//   - [ConversionJob] : Conversion runs tracking match and miss counts
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
