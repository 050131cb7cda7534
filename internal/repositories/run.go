package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cratedig/cratedig/internal/models"
	"github.com/cratedig/cratedig/internal/shared"
)

// RunRepository implements models.Repository[*models.Run] for run history.
//
// Handles run CRUD operations with soft delete support plus the per-track
// classification rows recorded alongside each run.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, provider, batch_size, total_tracks, unclassified, success_rate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.Provider(),
		run.BatchSize(),
		run.TotalTracks(),
		run.Unclassified(),
		run.SuccessRate(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT id, sequence, provider, batch_size, total_tracks, unclassified, success_rate, created_at, updated_at
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET provider = ?, batch_size = ?, total_tracks = ?, unclassified = ?, success_rate = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.Provider(),
		run.BatchSize(),
		run.TotalTracks(),
		run.Unclassified(),
		run.SuccessRate(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves runs matching the given criteria, newest first.
// Supported criteria keys: provider.
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `
		SELECT id, sequence, provider, batch_size, total_tracks, unclassified, success_rate, created_at, updated_at
		FROM runs
		WHERE deleted_at IS NULL
	`
	var args []any

	if provider, ok := criteria["provider"]; ok {
		query += " AND provider = ?"
		args = append(args, provider)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// SaveRun persists a run together with its per-track classification rows in
// one transaction.
func (r *RunRepository) SaveRun(run *models.Run, tracks []models.ClassifiedTrack) error {
	if err := r.Create(run); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO classifications (id, run_id, track_id, title, artist, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare classification insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, track := range tracks {
		var category sql.NullString
		if track.Classification != nil {
			category = sql.NullString{String: string(*track.Classification), Valid: true}
		}

		artist := ""
		if len(track.Artists) > 0 {
			artist = track.Artists[0]
		}

		if _, err := stmt.Exec(shared.GenerateID(), run.ID(), track.ID, track.Name, artist, category, now); err != nil {
			return fmt.Errorf("failed to insert classification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit classifications: %w", err)
	}

	return nil
}

// ClassificationRecord is one persisted track classification within a run.
type ClassificationRecord struct {
	ID       string
	RunID    string
	TrackID  string
	Title    string
	Artist   string
	Category *models.Category
}

// Classifications retrieves the per-track rows recorded for a run.
func (r *RunRepository) Classifications(runID string) ([]ClassificationRecord, error) {
	query := `
		SELECT id, run_id, track_id, title, artist, category
		FROM classifications
		WHERE run_id = ?
		ORDER BY rowid
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classifications: %w", err)
	}
	defer rows.Close()

	var records []ClassificationRecord
	for rows.Next() {
		var rec ClassificationRecord
		var category sql.NullString
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.TrackID, &rec.Title, &rec.Artist, &category); err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		if category.Valid {
			c := models.Category(category.String)
			rec.Category = &c
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate classifications: %w", err)
	}

	return records, nil
}

func (r *RunRepository) scanOne(row *sql.Row) (*models.Run, error) {
	var (
		id, provider                        string
		sequence, batchSize, total, unclass int
		successRate                         float64
		createdAt, updatedAt                time.Time
	)

	err := row.Scan(&id, &sequence, &provider, &batchSize, &total, &unclass, &successRate, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return models.RestoreRun(id, sequence, provider, batchSize, total, unclass, successRate, createdAt, updatedAt), nil
}

func (r *RunRepository) scanRow(rows *sql.Rows) (*models.Run, error) {
	var (
		id, provider                        string
		sequence, batchSize, total, unclass int
		successRate                         float64
		createdAt, updatedAt                time.Time
	)

	err := rows.Scan(&id, &sequence, &provider, &batchSize, &total, &unclass, &successRate, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return models.RestoreRun(id, sequence, provider, batchSize, total, unclass, successRate, createdAt, updatedAt), nil
}
