package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/shared"
)

// SyncRunRepository handles persistence for [models.SyncRun]. Runs are
// append-and-update only; finished and failed rows stay around as history.
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository creates a new SyncRunRepository with the given database connection
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

const syncRunColumns = "id, sequence, service, status, started_at, exception, created_at, updated_at"

// Create inserts a new sync run row with generated ID and sequence.
func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.SetSequence(sequence)
	run.SetID(shared.GenerateID())

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sync_runs (id, sequence, service, status, started_at, exception, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID(),
		run.Sequence(),
		run.Service(),
		run.Status(),
		run.StartedAt(),
		run.Exception(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	return nil
}

// Get retrieves a sync run by ID.
func (r *SyncRunRepository) Get(id string) (*models.SyncRun, error) {
	query := "SELECT " + syncRunColumns + " FROM sync_runs WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing sync run row.
func (r *SyncRunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE sync_runs
		SET status = ?, started_at = ?, exception = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, run.Status(), run.StartedAt(), run.Exception(), now, run.ID())
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: sync run %s", shared.ErrEntityNotFound, run.ID())
	}

	return nil
}

// List retrieves sync runs, newest first, optionally filtered by source system.
func (r *SyncRunRepository) List(service string) ([]*models.SyncRun, error) {
	query := "SELECT " + syncRunColumns + " FROM sync_runs"
	args := []any{}

	if service != "" {
		query += " WHERE service = ?"
		args = append(args, service)
	}

	query += " ORDER BY started_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func (r *SyncRunRepository) scanOne(row *sql.Row) (*models.SyncRun, error) {
	run, err := scanSyncRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: sync run", shared.ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}
	return run, nil
}

func scanSyncRun(scan func(...any) error) (*models.SyncRun, error) {
	var (
		id        string
		sequence  int
		service   string
		status    string
		startedAt time.Time
		exception string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := scan(&id, &sequence, &service, &status, &startedAt, &exception, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	run := models.NewSyncRun(sequence, service)
	run.SetID(id)
	run.SetStatus(status)
	run.SetStartedAt(startedAt)
	run.SetException(exception)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	return run, nil
}
