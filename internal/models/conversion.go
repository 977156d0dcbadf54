package models

import (
	"fmt"
	"strings"
	"time"
)

// Conversion job statuses.
const (
	ConversionStatusPending   = "pending"
	ConversionStatusRunning   = "running"
	ConversionStatusCompleted = "completed"
	ConversionStatusFailed    = "failed"
)

// ConversionJob records a single playlist conversion run between two services,
// including per-track match and miss counts for the history view.
type ConversionJob struct {
	id               string
	sequence         int
	userID           string
	sourceService    string
	sourcePlaylistID string
	targetService    string
	targetPlaylistID string
	status           string
	tracksTotal      int
	tracksMatched    int
	tracksMissed     int
	errorMessage     string
	startedAt        *time.Time
	completedAt      *time.Time
	createdAt        time.Time
	updatedAt        time.Time
	deletedAt        *time.Time
}

// NewConversionJob creates a pending ConversionJob for the given source playlist and target service.
func NewConversionJob(sequence int, userID, sourceService, sourcePlaylistID, targetService string) *ConversionJob {
	now := time.Now()
	return &ConversionJob{
		sequence:         sequence,
		userID:           userID,
		sourceService:    sourceService,
		sourcePlaylistID: sourcePlaylistID,
		targetService:    targetService,
		status:           ConversionStatusPending,
		createdAt:        now,
		updatedAt:        now,
	}
}

func (c *ConversionJob) ID() string               { return c.id }
func (c *ConversionJob) Sequence() int            { return c.sequence }
func (c *ConversionJob) UserID() string           { return c.userID }
func (c *ConversionJob) SourceService() string    { return c.sourceService }
func (c *ConversionJob) SourcePlaylistID() string { return c.sourcePlaylistID }
func (c *ConversionJob) TargetService() string    { return c.targetService }
func (c *ConversionJob) TargetPlaylistID() string { return c.targetPlaylistID }
func (c *ConversionJob) Status() string           { return c.status }
func (c *ConversionJob) TracksTotal() int         { return c.tracksTotal }
func (c *ConversionJob) TracksMatched() int       { return c.tracksMatched }
func (c *ConversionJob) TracksMissed() int        { return c.tracksMissed }
func (c *ConversionJob) ErrorMessage() string     { return c.errorMessage }
func (c *ConversionJob) StartedAt() *time.Time    { return c.startedAt }
func (c *ConversionJob) CompletedAt() *time.Time  { return c.completedAt }
func (c *ConversionJob) CreatedAt() time.Time     { return c.createdAt }
func (c *ConversionJob) UpdatedAt() time.Time     { return c.updatedAt }
func (c *ConversionJob) DeletedAt() *time.Time    { return c.deletedAt }

func (c *ConversionJob) SetID(id string)               { c.id = id }
func (c *ConversionJob) SetUpdatedAt(t time.Time)      { c.updatedAt = t }
func (c *ConversionJob) SetDeletedAt(t *time.Time)     { c.deletedAt = t }
func (c *ConversionJob) SetTargetPlaylistID(id string) { c.targetPlaylistID = id }
func (c *ConversionJob) SetStatus(status string)       { c.status = status }
func (c *ConversionJob) SetTracksTotal(n int)          { c.tracksTotal = n }
func (c *ConversionJob) SetTracksMatched(n int)        { c.tracksMatched = n }
func (c *ConversionJob) SetTracksMissed(n int)         { c.tracksMissed = n }
func (c *ConversionJob) SetErrorMessage(msg string)    { c.errorMessage = msg }
func (c *ConversionJob) SetStartedAt(t *time.Time)     { c.startedAt = t }
func (c *ConversionJob) SetCompletedAt(t *time.Time)   { c.completedAt = t }

// Validate checks that the job names both services, a source playlist, and a known status.
func (c *ConversionJob) Validate() error {
	if strings.TrimSpace(c.sourceService) == "" {
		return fmt.Errorf("source service is required")
	}
	if strings.TrimSpace(c.sourcePlaylistID) == "" {
		return fmt.Errorf("source playlist ID is required")
	}
	if strings.TrimSpace(c.targetService) == "" {
		return fmt.Errorf("target service is required")
	}
	switch c.status {
	case ConversionStatusPending, ConversionStatusRunning, ConversionStatusCompleted, ConversionStatusFailed:
	default:
		return fmt.Errorf("invalid status: %s", c.status)
	}
	if c.tracksMatched+c.tracksMissed > c.tracksTotal {
		return fmt.Errorf("matched and missed counts exceed total")
	}
	return nil
}
