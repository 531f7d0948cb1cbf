package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/shared"
)

// ArtistRepository handles persistence for [models.PersistedArtist].
//
// GetByExternalID implements the natural-key lookup the reconciler relies on:
// at most one row can carry any given non-null external id.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

const artistColumns = "id, sequence, name, external_id, bio, website, city, country_code, image, share_link, created_at, updated_at"

// Create inserts a new artist row with generated ID and sequence.
func (r *ArtistRepository) Create(artist *models.PersistedArtist) error {
	sequence, err := NextSequence(r.db, "artists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	artist.SetSequence(sequence)
	artist.SetID(shared.GenerateID())

	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO artists (id, sequence, name, external_id, bio, website, city, country_code, image, share_link, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		artist.ID(),
		artist.Sequence(),
		artist.Name(),
		nullableExternalID(artist.ExternalID()),
		artist.Bio(),
		artist.Website(),
		artist.City(),
		artist.CountryCode(),
		artist.Image(),
		artist.ShareLink(),
		artist.CreatedAt(),
		artist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert artist: %w", err)
	}

	return nil
}

// Get retrieves an artist by ID.
func (r *ArtistRepository) Get(id string) (*models.PersistedArtist, error) {
	query := "SELECT " + artistColumns + " FROM artists WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByExternalID retrieves the artist linked to the given remote catalog id.
func (r *ArtistRepository) GetByExternalID(externalID int64) (*models.PersistedArtist, error) {
	query := "SELECT " + artistColumns + " FROM artists WHERE external_id = ?"
	return r.scanOne(r.db.QueryRow(query, externalID))
}

// GetUniqueByName retrieves the artist with the given name if exactly one row
// matches. More than one match is a reconciliation conflict: without an
// external id there is no defined tie-break.
func (r *ArtistRepository) GetUniqueByName(name string) (*models.PersistedArtist, error) {
	rows, err := r.db.Query("SELECT "+artistColumns+" FROM artists WHERE name = ? LIMIT 2", name)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var matches []*models.PersistedArtist
	for rows.Next() {
		artist, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: artist %q", shared.ErrEntityNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: multiple artists named %q", shared.ErrReconciliation, name)
	}
}

// Update modifies an existing artist row.
func (r *ArtistRepository) Update(artist *models.PersistedArtist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	artist.SetUpdatedAt(now)

	query := `
		UPDATE artists
		SET name = ?, external_id = ?, bio = ?, website = ?, city = ?, country_code = ?, image = ?, share_link = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		artist.Name(),
		nullableExternalID(artist.ExternalID()),
		artist.Bio(),
		artist.Website(),
		artist.City(),
		artist.CountryCode(),
		artist.Image(),
		artist.ShareLink(),
		now,
		artist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: artist %s", shared.ErrEntityNotFound, artist.ID())
	}

	return nil
}

// Delete removes an artist row by ID.
func (r *ArtistRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM artists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: artist %s", shared.ErrEntityNotFound, id)
	}
	return nil
}

// List retrieves all artists matching the given criteria.
func (r *ArtistRepository) List(criteria map[string]any) ([]*models.PersistedArtist, error) {
	query := "SELECT " + artistColumns + " FROM artists WHERE 1=1"
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	if cc, ok := criteria["country_code"].(string); ok && cc != "" {
		query += " AND country_code = ?"
		args = append(args, cc)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Search retrieves artists whose name contains the phrase, up to limit rows.
func (r *ArtistRepository) Search(phrase string, limit int) ([]*models.PersistedArtist, error) {
	query := "SELECT " + artistColumns + " FROM artists WHERE name LIKE ? ORDER BY sequence ASC LIMIT ?"

	rows, err := r.db.Query(query, "%"+phrase+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search artists: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *ArtistRepository) collect(rows *sql.Rows) ([]*models.PersistedArtist, error) {
	var artists []*models.PersistedArtist
	for rows.Next() {
		artist, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return artists, nil
}

func (r *ArtistRepository) scanOne(row *sql.Row) (*models.PersistedArtist, error) {
	artist, err := scanArtist(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: artist", shared.ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}
	return artist, nil
}

func (r *ArtistRepository) scanRow(rows *sql.Rows) (*models.PersistedArtist, error) {
	artist, err := scanArtist(rows.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}
	return artist, nil
}

func scanArtist(scan func(...any) error) (*models.PersistedArtist, error) {
	var (
		id          string
		sequence    int
		name        string
		externalID  sql.NullInt64
		bio         string
		website     string
		city        string
		countryCode string
		image       string
		shareLink   string
		createdAt   time.Time
		updatedAt   time.Time
	)

	if err := scan(&id, &sequence, &name, &externalID, &bio, &website, &city, &countryCode, &image, &shareLink, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	artist := models.NewPersistedArtist(sequence, models.Artist{
		Name:       name,
		ExternalID: externalID.Int64,
		Website:    website,
		Image:      image,
		ShareLink:  shareLink,
	})
	artist.SetID(id)
	artist.SetBio(bio)
	artist.SetCity(city)
	artist.SetCountryCode(countryCode)
	artist.SetCreatedAt(createdAt)
	artist.SetUpdatedAt(updatedAt)

	return artist, nil
}
