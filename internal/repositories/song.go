package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/shared"
)

// SongRepository handles persistence for [models.PersistedSong] and the
// song-to-tag association table.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

const songColumns = "id, sequence, name, artist_id, album_id, license_id, external_id, duration, cover, share_link, release_date, created_at, updated_at"

// Create inserts a new song row with generated ID and sequence.
func (r *SongRepository) Create(song *models.PersistedSong) error {
	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	song.SetSequence(sequence)
	song.SetID(shared.GenerateID())

	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO songs (id, sequence, name, artist_id, album_id, license_id, external_id, duration, cover, share_link, release_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		song.ID(),
		song.Sequence(),
		song.Name(),
		nullableID(song.ArtistID()),
		nullableID(song.AlbumID()),
		nullableID(song.LicenseID()),
		nullableExternalID(song.ExternalID()),
		song.Duration(),
		song.Cover(),
		song.ShareLink(),
		nullableDate(song.ReleaseDate()),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

// Get retrieves a song by ID.
func (r *SongRepository) Get(id string) (*models.PersistedSong, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE id = ?"
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByExternalID retrieves the song linked to the given remote catalog id.
func (r *SongRepository) GetByExternalID(externalID int64) (*models.PersistedSong, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE external_id = ?"
	return r.scanOne(r.db.QueryRow(query, externalID))
}

// GetUniqueByName retrieves the song with the given name and owning artist if
// exactly one row matches.
func (r *SongRepository) GetUniqueByName(name, artistID string) (*models.PersistedSong, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE name = ? AND artist_id = ? LIMIT 2"
	rows, err := r.db.Query(query, name, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var matches []*models.PersistedSong
	for rows.Next() {
		song, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: song %q", shared.ErrEntityNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: multiple songs named %q for artist %s", shared.ErrReconciliation, name, artistID)
	}
}

// Update modifies an existing song row.
func (r *SongRepository) Update(song *models.PersistedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)

	query := `
		UPDATE songs
		SET name = ?, artist_id = ?, album_id = ?, license_id = ?, external_id = ?, duration = ?, cover = ?, share_link = ?, release_date = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		song.Name(),
		nullableID(song.ArtistID()),
		nullableID(song.AlbumID()),
		nullableID(song.LicenseID()),
		nullableExternalID(song.ExternalID()),
		song.Duration(),
		song.Cover(),
		song.ShareLink(),
		nullableDate(song.ReleaseDate()),
		now,
		song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: song %s", shared.ErrEntityNotFound, song.ID())
	}

	return nil
}

// Delete removes a song row by ID. Sources and tag links cascade.
func (r *SongRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: song %s", shared.ErrEntityNotFound, id)
	}
	return nil
}

// List retrieves all songs matching the given criteria.
func (r *SongRepository) List(criteria map[string]any) ([]*models.PersistedSong, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE 1=1"
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	if artistID, ok := criteria["artist_id"].(string); ok && artistID != "" {
		query += " AND artist_id = ?"
		args = append(args, artistID)
	}
	if albumID, ok := criteria["album_id"].(string); ok && albumID != "" {
		query += " AND album_id = ?"
		args = append(args, albumID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Search retrieves songs whose name contains the phrase or that carry one of
// the given tags, up to limit rows.
func (r *SongRepository) Search(phrase string, tags []string, limit int) ([]*models.PersistedSong, error) {
	query := `
		SELECT DISTINCT s.id, s.sequence, s.name, s.artist_id, s.album_id, s.license_id, s.external_id, s.duration, s.cover, s.share_link, s.release_date, s.created_at, s.updated_at
		FROM songs s
		LEFT JOIN song_tags st ON st.song_id = s.id
		LEFT JOIN tags t ON t.id = st.tag_id
		WHERE s.name LIKE ?
	`
	args := []any{"%" + phrase + "%"}

	if len(tags) > 0 {
		query += " OR t.name IN (?" + repeatPlaceholder(len(tags)-1) + ")"
		for _, tag := range tags {
			args = append(args, tag)
		}
	}

	query += " ORDER BY s.sequence ASC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search songs: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// AddTag links a tag to a song. Re-linking an already linked tag is a no-op.
func (r *SongRepository) AddTag(songID, tagID string) error {
	_, err := r.db.Exec("INSERT OR IGNORE INTO song_tags (song_id, tag_id) VALUES (?, ?)", songID, tagID)
	if err != nil {
		return fmt.Errorf("failed to link tag: %w", err)
	}
	return nil
}

// Tags retrieves the tags linked to a song, ordered by tag sequence.
func (r *SongRepository) Tags(songID string) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.sequence, t.name, t.created_at
		FROM tags t
		JOIN song_tags st ON st.tag_id = t.id
		WHERE st.song_id = ?
		ORDER BY t.sequence ASC
	`

	rows, err := r.db.Query(query, songID)
	if err != nil {
		return nil, fmt.Errorf("failed to query song tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		var (
			id        string
			sequence  int
			name      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &sequence, &name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tag := models.NewTag(sequence, name)
		tag.SetID(id)
		tag.SetCreatedAt(createdAt)
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tags, nil
}

func (r *SongRepository) collect(rows *sql.Rows) ([]*models.PersistedSong, error) {
	var songs []*models.PersistedSong
	for rows.Next() {
		song, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

func (r *SongRepository) scanOne(row *sql.Row) (*models.PersistedSong, error) {
	song, err := scanSong(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: song", shared.ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}
	return song, nil
}

func (r *SongRepository) scanRow(rows *sql.Rows) (*models.PersistedSong, error) {
	song, err := scanSong(rows.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}
	return song, nil
}

func scanSong(scan func(...any) error) (*models.PersistedSong, error) {
	var (
		id          string
		sequence    int
		name        string
		artistID    sql.NullString
		albumID     sql.NullString
		licenseID   sql.NullString
		externalID  sql.NullInt64
		duration    int
		cover       string
		shareLink   string
		releaseDate sql.NullTime
		createdAt   time.Time
		updatedAt   time.Time
	)

	if err := scan(&id, &sequence, &name, &artistID, &albumID, &licenseID, &externalID, &duration, &cover, &shareLink, &releaseDate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	song := models.NewPersistedSong(sequence, artistID.String, albumID.String, licenseID.String, models.Song{
		Name:        name,
		ExternalID:  externalID.Int64,
		Duration:    duration,
		Cover:       cover,
		ShareLink:   shareLink,
		ReleaseDate: releaseDate.Time,
	})
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)

	return song, nil
}

// repeatPlaceholder returns n comma-prefixed SQL placeholders.
func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
