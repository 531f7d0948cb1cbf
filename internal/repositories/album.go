package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/shared"
)

// AlbumRepository handles persistence for [models.PersistedAlbum].
type AlbumRepository struct {
	db *sql.DB
}

// NewAlbumRepository creates a new AlbumRepository with the given database connection
func NewAlbumRepository(db *sql.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

const albumColumns = "id, sequence, name, artist_id, external_id, cover, share_link, release_date, created_at, updated_at"

// Create inserts a new album row with generated ID and sequence.
func (r *AlbumRepository) Create(album *models.PersistedAlbum) error {
	sequence, err := NextSequence(r.db, "albums")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	album.SetSequence(sequence)
	album.SetID(shared.GenerateID())

	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO albums (id, sequence, name, artist_id, external_id, cover, share_link, release_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		album.ID(),
		album.Sequence(),
		album.Name(),
		nullableID(album.ArtistID()),
		nullableExternalID(album.ExternalID()),
		album.Cover(),
		album.ShareLink(),
		nullableDate(album.ReleaseDate()),
		album.CreatedAt(),
		album.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert album: %w", err)
	}

	return nil
}

// Get retrieves an album by ID.
func (r *AlbumRepository) Get(id string) (*models.PersistedAlbum, error) {
	query := "SELECT " + albumColumns + " FROM albums WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByExternalID retrieves the album linked to the given remote catalog id.
func (r *AlbumRepository) GetByExternalID(externalID int64) (*models.PersistedAlbum, error) {
	query := "SELECT " + albumColumns + " FROM albums WHERE external_id = ?"
	return r.scanOne(r.db.QueryRow(query, externalID))
}

// GetUniqueByName retrieves the album with the given name and owning artist if
// exactly one row matches.
func (r *AlbumRepository) GetUniqueByName(name, artistID string) (*models.PersistedAlbum, error) {
	query := "SELECT " + albumColumns + " FROM albums WHERE name = ? AND artist_id = ? LIMIT 2"
	rows, err := r.db.Query(query, name, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var matches []*models.PersistedAlbum
	for rows.Next() {
		album, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: album %q", shared.ErrEntityNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: multiple albums named %q for artist %s", shared.ErrReconciliation, name, artistID)
	}
}

// Update modifies an existing album row.
func (r *AlbumRepository) Update(album *models.PersistedAlbum) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	album.SetUpdatedAt(now)

	query := `
		UPDATE albums
		SET name = ?, artist_id = ?, external_id = ?, cover = ?, share_link = ?, release_date = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		album.Name(),
		nullableID(album.ArtistID()),
		nullableExternalID(album.ExternalID()),
		album.Cover(),
		album.ShareLink(),
		nullableDate(album.ReleaseDate()),
		now,
		album.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update album: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: album %s", shared.ErrEntityNotFound, album.ID())
	}

	return nil
}

// Delete removes an album row by ID.
func (r *AlbumRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM albums WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: album %s", shared.ErrEntityNotFound, id)
	}
	return nil
}

// List retrieves all albums matching the given criteria.
func (r *AlbumRepository) List(criteria map[string]any) ([]*models.PersistedAlbum, error) {
	query := "SELECT " + albumColumns + " FROM albums WHERE 1=1"
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	if artistID, ok := criteria["artist_id"].(string); ok && artistID != "" {
		query += " AND artist_id = ?"
		args = append(args, artistID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Search retrieves albums whose name contains the phrase, up to limit rows.
func (r *AlbumRepository) Search(phrase string, limit int) ([]*models.PersistedAlbum, error) {
	query := "SELECT " + albumColumns + " FROM albums WHERE name LIKE ? ORDER BY sequence ASC LIMIT ?"

	rows, err := r.db.Query(query, "%"+phrase+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search albums: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *AlbumRepository) collect(rows *sql.Rows) ([]*models.PersistedAlbum, error) {
	var albums []*models.PersistedAlbum
	for rows.Next() {
		album, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return albums, nil
}

func (r *AlbumRepository) scanOne(row *sql.Row) (*models.PersistedAlbum, error) {
	album, err := scanAlbum(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: album", shared.ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}
	return album, nil
}

func (r *AlbumRepository) scanRow(rows *sql.Rows) (*models.PersistedAlbum, error) {
	album, err := scanAlbum(rows.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}
	return album, nil
}

func scanAlbum(scan func(...any) error) (*models.PersistedAlbum, error) {
	var (
		id          string
		sequence    int
		name        string
		artistID    sql.NullString
		externalID  sql.NullInt64
		cover       string
		shareLink   string
		releaseDate sql.NullTime
		createdAt   time.Time
		updatedAt   time.Time
	)

	if err := scan(&id, &sequence, &name, &artistID, &externalID, &cover, &shareLink, &releaseDate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	album := models.NewPersistedAlbum(sequence, artistID.String, models.Album{
		Name:        name,
		ExternalID:  externalID.Int64,
		Cover:       cover,
		ShareLink:   shareLink,
		ReleaseDate: releaseDate.Time,
	})
	album.SetID(id)
	album.SetCreatedAt(createdAt)
	album.SetUpdatedAt(updatedAt)

	return album, nil
}
