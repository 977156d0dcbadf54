package models

import (
	"fmt"
	"strings"
	"time"
)

// PersistedPlaylist is a cached copy of a service playlist owned by a user.
type PersistedPlaylist struct {
	id        string
	sequence  int
	service   string
	serviceID string
	userID    string
	playlist  Playlist
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedPlaylist creates a PersistedPlaylist wrapping the given service DTO.
func NewPersistedPlaylist(sequence int, service, serviceID, userID string, playlist Playlist) *PersistedPlaylist {
	now := time.Now()
	return &PersistedPlaylist{
		sequence:  sequence,
		service:   service,
		serviceID: serviceID,
		userID:    userID,
		playlist:  playlist,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedPlaylist) ID() string            { return p.id }
func (p *PersistedPlaylist) Sequence() int         { return p.sequence }
func (p *PersistedPlaylist) Service() string       { return p.service }
func (p *PersistedPlaylist) ServiceID() string     { return p.serviceID }
func (p *PersistedPlaylist) UserID() string        { return p.userID }
func (p *PersistedPlaylist) Name() string          { return p.playlist.Name }
func (p *PersistedPlaylist) Description() string   { return p.playlist.Description }
func (p *PersistedPlaylist) TrackCount() int       { return p.playlist.TrackCount }
func (p *PersistedPlaylist) Public() bool          { return p.playlist.Public }
func (p *PersistedPlaylist) Playlist() Playlist    { return p.playlist }
func (p *PersistedPlaylist) CreatedAt() time.Time  { return p.createdAt }
func (p *PersistedPlaylist) UpdatedAt() time.Time  { return p.updatedAt }
func (p *PersistedPlaylist) DeletedAt() *time.Time { return p.deletedAt }

func (p *PersistedPlaylist) SetID(id string)           { p.id = id }
func (p *PersistedPlaylist) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *PersistedPlaylist) SetDeletedAt(t *time.Time) { p.deletedAt = t }

// Validate checks that the playlist identifies a service record and has a name.
func (p *PersistedPlaylist) Validate() error {
	if strings.TrimSpace(p.service) == "" {
		return fmt.Errorf("service is required")
	}
	if strings.TrimSpace(p.serviceID) == "" {
		return fmt.Errorf("service ID is required")
	}
	if strings.TrimSpace(p.playlist.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.playlist.TrackCount < 0 {
		return fmt.Errorf("track count cannot be negative")
	}
	return nil
}
