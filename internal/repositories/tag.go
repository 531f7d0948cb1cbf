package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/shared"
)

// TagRepository handles persistence for [models.Tag]. Tag names are globally
// unique; GetByName is the dedup lookup the ingestor uses before creating.
type TagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new TagRepository with the given database connection
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create inserts a new tag row with generated ID and sequence.
func (r *TagRepository) Create(tag *models.Tag) error {
	sequence, err := NextSequence(r.db, "tags")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	tag.SetSequence(sequence)
	tag.SetID(shared.GenerateID())

	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, err = r.db.Exec(
		"INSERT INTO tags (id, sequence, name, created_at) VALUES (?, ?, ?, ?)",
		tag.ID(), tag.Sequence(), tag.Name(), tag.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}

	return nil
}

// Get retrieves a tag by ID.
func (r *TagRepository) Get(id string) (*models.Tag, error) {
	return r.scanOne(r.db.QueryRow("SELECT id, sequence, name, created_at FROM tags WHERE id = ?", id))
}

// GetByName retrieves a tag by its exact name.
func (r *TagRepository) GetByName(name string) (*models.Tag, error) {
	return r.scanOne(r.db.QueryRow("SELECT id, sequence, name, created_at FROM tags WHERE name = ?", name))
}

// GetOrCreate retrieves the tag with the given name, creating it on first use.
func (r *TagRepository) GetOrCreate(name string) (*models.Tag, error) {
	tag, err := r.GetByName(name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, shared.ErrEntityNotFound) {
		return nil, err
	}

	tag = models.NewTag(0, name)
	if err := r.Create(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Names retrieves all known tag names.
func (r *TagRepository) Names() ([]string, error) {
	rows, err := r.db.Query("SELECT name FROM tags ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query tag names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return names, nil
}

// List retrieves all tags ordered by sequence.
func (r *TagRepository) List() ([]*models.Tag, error) {
	rows, err := r.db.Query("SELECT id, sequence, name, created_at FROM tags ORDER BY sequence ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag, err := scanTag(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tags, nil
}

// Delete removes a tag row by ID.
func (r *TagRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: tag %s", shared.ErrEntityNotFound, id)
	}
	return nil
}

func (r *TagRepository) scanOne(row *sql.Row) (*models.Tag, error) {
	tag, err := scanTag(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: tag", shared.ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tag: %w", err)
	}
	return tag, nil
}

func scanTag(scan func(...any) error) (*models.Tag, error) {
	var (
		id        string
		sequence  int
		name      string
		createdAt time.Time
	)

	if err := scan(&id, &sequence, &name, &createdAt); err != nil {
		return nil, err
	}

	tag := models.NewTag(sequence, name)
	tag.SetID(id)
	tag.SetCreatedAt(createdAt)

	return tag, nil
}
