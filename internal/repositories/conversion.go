package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tuneport/internal/models"
	"github.com/desertthunder/tuneport/internal/shared"
)

// ConversionRepository implements models.Repository[*models.ConversionJob] for conversion history.
//
// Handles conversion job CRUD operations with soft delete support and status-based queries.
type ConversionRepository struct {
	db *sql.DB
}

// NewConversionRepository creates a new ConversionRepository with the given database connection
func NewConversionRepository(db *sql.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

// Create inserts a new conversion job into the database with generated ID and sequence
func (r *ConversionRepository) Create(conversion *models.ConversionJob) error {
	sequence, err := NextSequence(r.db, "conversions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	conversion.SetID(id)

	if err := conversion.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO conversions (
			id, sequence, user_id, source_service, source_playlist_id,
			target_service, target_playlist_id, status, tracks_total,
			tracks_matched, tracks_missed, error_message, started_at,
			completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var targetPlaylistID any = conversion.TargetPlaylistID()
	if targetPlaylistID == "" {
		targetPlaylistID = nil
	}

	var errorMessage any = conversion.ErrorMessage()
	if errorMessage == "" {
		errorMessage = nil
	}

	_, err = r.db.Exec(query,
		id,
		sequence,
		conversion.UserID(),
		conversion.SourceService(),
		conversion.SourcePlaylistID(),
		conversion.TargetService(),
		targetPlaylistID,
		conversion.Status(),
		conversion.TracksTotal(),
		conversion.TracksMatched(),
		conversion.TracksMissed(),
		errorMessage,
		conversion.StartedAt(),
		conversion.CompletedAt(),
		conversion.CreatedAt(),
		conversion.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversion: %w", err)
	}

	return nil
}

// Get retrieves a conversion job by ID, excluding soft-deleted conversions
func (r *ConversionRepository) Get(id string) (*models.ConversionJob, error) {
	query := `
		SELECT
			id, sequence, user_id, source_service, source_playlist_id,
			target_service, target_playlist_id, status, tracks_total,
			tracks_matched, tracks_missed, error_message, started_at,
			completed_at, created_at, updated_at, deleted_at
		FROM conversions
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing conversion job in the database
func (r *ConversionRepository) Update(conversion *models.ConversionJob) error {
	if err := conversion.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	conversion.SetUpdatedAt(now)

	query := `
		UPDATE conversions
		SET target_playlist_id = ?, status = ?, tracks_total = ?,
			tracks_matched = ?, tracks_missed = ?, error_message = ?,
			started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	var targetPlaylistID any = conversion.TargetPlaylistID()
	if targetPlaylistID == "" {
		targetPlaylistID = nil
	}

	var errorMessage any = conversion.ErrorMessage()
	if errorMessage == "" {
		errorMessage = nil
	}

	result, err := r.db.Exec(query,
		targetPlaylistID,
		conversion.Status(),
		conversion.TracksTotal(),
		conversion.TracksMatched(),
		conversion.TracksMissed(),
		errorMessage,
		conversion.StartedAt(),
		conversion.CompletedAt(),
		now,
		conversion.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update conversion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("conversion not found or already deleted: %s", conversion.ID())
	}

	return nil
}

// Delete soft-deletes a conversion job by ID
func (r *ConversionRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE conversions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("conversion not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all conversion jobs matching the given criteria, excluding soft-deleted conversions.
//
// Results are ordered newest first so history views show the most recent runs at the top.
func (r *ConversionRepository) List(criteria map[string]any) ([]*models.ConversionJob, error) {
	query := `
		SELECT
			id, sequence, user_id, source_service, source_playlist_id,
			target_service, target_playlist_id, status, tracks_total,
			tracks_matched, tracks_missed, error_message, started_at,
			completed_at, created_at, updated_at, deleted_at
		FROM conversions
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if sourceService, ok := criteria["source_service"].(string); ok && sourceService != "" {
		query += " AND source_service = ?"
		args = append(args, sourceService)
	}

	if targetService, ok := criteria["target_service"].(string); ok && targetService != "" {
		query += " AND target_service = ?"
		args = append(args, targetService)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	var conversions []*models.ConversionJob
	for rows.Next() {
		conversion, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		conversions = append(conversions, conversion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return conversions, nil
}

// scanOne scans a single [sql.Row] into a [models.ConversionJob]
func (r *ConversionRepository) scanOne(row *sql.Row) (*models.ConversionJob, error) {
	var (
		id               string
		sequence         int
		userID           string
		sourceService    string
		sourcePlaylistID string
		targetService    string
		targetPlaylistID sql.NullString
		status           string
		tracksTotal      int
		tracksMatched    int
		tracksMissed     int
		errorMessage     sql.NullString
		startedAt        sql.NullTime
		completedAt      sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
		deletedAt        sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &userID, &sourceService, &sourcePlaylistID,
		&targetService, &targetPlaylistID, &status, &tracksTotal,
		&tracksMatched, &tracksMissed, &errorMessage, &startedAt,
		&completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversion not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversion: %w", err)
	}

	conversion := models.NewConversionJob(sequence, userID, sourceService, sourcePlaylistID, targetService)
	conversion.SetID(id)
	conversion.SetUpdatedAt(updatedAt)

	if targetPlaylistID.Valid {
		conversion.SetTargetPlaylistID(targetPlaylistID.String)
	}
	conversion.SetStatus(status)
	conversion.SetTracksTotal(tracksTotal)
	conversion.SetTracksMatched(tracksMatched)
	conversion.SetTracksMissed(tracksMissed)
	if errorMessage.Valid {
		conversion.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		conversion.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		conversion.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		conversion.SetDeletedAt(&deletedAt.Time)
	}

	return conversion, nil
}

// scanRow scans a row from [sql.Rows] into a [models.ConversionJob]
func (r *ConversionRepository) scanRow(rows *sql.Rows) (*models.ConversionJob, error) {
	var (
		id               string
		sequence         int
		userID           string
		sourceService    string
		sourcePlaylistID string
		targetService    string
		targetPlaylistID sql.NullString
		status           string
		tracksTotal      int
		tracksMatched    int
		tracksMissed     int
		errorMessage     sql.NullString
		startedAt        sql.NullTime
		completedAt      sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
		deletedAt        sql.NullTime
	)

	err := rows.Scan(
		&id, &sequence, &userID, &sourceService, &sourcePlaylistID,
		&targetService, &targetPlaylistID, &status, &tracksTotal,
		&tracksMatched, &tracksMissed, &errorMessage, &startedAt,
		&completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversion: %w", err)
	}

	conversion := models.NewConversionJob(sequence, userID, sourceService, sourcePlaylistID, targetService)
	conversion.SetID(id)
	conversion.SetUpdatedAt(updatedAt)

	if targetPlaylistID.Valid {
		conversion.SetTargetPlaylistID(targetPlaylistID.String)
	}
	conversion.SetStatus(status)
	conversion.SetTracksTotal(tracksTotal)
	conversion.SetTracksMatched(tracksMatched)
	conversion.SetTracksMissed(tracksMissed)
	if errorMessage.Valid {
		conversion.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		conversion.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		conversion.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		conversion.SetDeletedAt(&deletedAt.Time)
	}

	return conversion, nil
}
