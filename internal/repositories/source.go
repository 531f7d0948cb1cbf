package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/shared"
)

// SourceRepository handles persistence for [models.PersistedSource].
type SourceRepository struct {
	db *sql.DB
}

// NewSourceRepository creates a new SourceRepository with the given database connection
func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

const sourceColumns = "id, sequence, song_id, kind, codec, link, created_at"

// Create inserts a new source row with generated ID and sequence.
func (r *SourceRepository) Create(source *models.PersistedSource) error {
	sequence, err := NextSequence(r.db, "sources")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	source.SetSequence(sequence)
	source.SetID(shared.GenerateID())

	if err := source.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sources (id, sequence, song_id, kind, codec, link, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		source.ID(),
		source.Sequence(),
		source.SongID(),
		source.Kind(),
		source.Codec(),
		source.Link(),
		source.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert source: %w", err)
	}

	return nil
}

// Get retrieves a source by ID.
func (r *SourceRepository) Get(id string) (*models.PersistedSource, error) {
	query := "SELECT " + sourceColumns + " FROM sources WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByIdentity retrieves the source row matching the dedup identity triple.
func (r *SourceRepository) GetByIdentity(kind, codec, link string) (*models.PersistedSource, error) {
	query := "SELECT " + sourceColumns + " FROM sources WHERE kind = ? AND codec = ? AND link = ?"
	return r.scanOne(r.db.QueryRow(query, kind, codec, link))
}

// ListBySong retrieves the sources owned by a song, ordered by sequence.
func (r *SourceRepository) ListBySong(songID string) ([]*models.PersistedSource, error) {
	query := "SELECT " + sourceColumns + " FROM sources WHERE song_id = ? ORDER BY sequence ASC"

	rows, err := r.db.Query(query, songID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.PersistedSource
	for rows.Next() {
		source, err := scanSource(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sources, nil
}

// Delete removes a source row by ID.
func (r *SourceRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: source %s", shared.ErrEntityNotFound, id)
	}
	return nil
}

func (r *SourceRepository) scanOne(row *sql.Row) (*models.PersistedSource, error) {
	source, err := scanSource(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: source", shared.ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}
	return source, nil
}

func scanSource(scan func(...any) error) (*models.PersistedSource, error) {
	var (
		id        string
		sequence  int
		songID    string
		kind      string
		codec     string
		link      string
		createdAt time.Time
	)

	if err := scan(&id, &sequence, &songID, &kind, &codec, &link, &createdAt); err != nil {
		return nil, err
	}

	source := models.NewPersistedSource(sequence, songID, models.Source{
		Kind:  kind,
		Codec: codec,
		Link:  link,
	})
	source.SetID(id)
	source.SetCreatedAt(createdAt)

	return source, nil
}
