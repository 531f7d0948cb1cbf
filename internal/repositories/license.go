package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/outofbits/ccatalog/internal/models"
	"github.com/outofbits/ccatalog/internal/shared"
)

// LicenseRepository handles persistence for [models.License].
type LicenseRepository struct {
	db *sql.DB
}

// NewLicenseRepository creates a new LicenseRepository with the given database connection
func NewLicenseRepository(db *sql.DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

// Create inserts a new license row with generated ID and sequence.
func (r *LicenseRepository) Create(license *models.License) error {
	sequence, err := NextSequence(r.db, "licenses")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	license.SetSequence(sequence)
	license.SetID(shared.GenerateID())

	if err := license.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, err = r.db.Exec(
		"INSERT INTO licenses (id, sequence, type, created_at) VALUES (?, ?, ?, ?)",
		license.ID(), license.Sequence(), license.Type(), license.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert license: %w", err)
	}

	return nil
}

// Get retrieves a license by ID.
func (r *LicenseRepository) Get(id string) (*models.License, error) {
	return r.scanOne(r.db.QueryRow("SELECT id, sequence, type, created_at FROM licenses WHERE id = ?", id))
}

// GetByType retrieves the license row for a variant.
func (r *LicenseRepository) GetByType(typ string) (*models.License, error) {
	return r.scanOne(r.db.QueryRow("SELECT id, sequence, type, created_at FROM licenses WHERE type = ?", typ))
}

// GetOrCreate retrieves the license row for a variant, creating it on first use.
func (r *LicenseRepository) GetOrCreate(typ string) (*models.License, error) {
	license, err := r.GetByType(typ)
	if err == nil {
		return license, nil
	}
	if !errors.Is(err, shared.ErrEntityNotFound) {
		return nil, err
	}

	license = models.NewLicense(0, typ)
	if err := r.Create(license); err != nil {
		return nil, err
	}
	return license, nil
}

// List retrieves all license rows ordered by sequence.
func (r *LicenseRepository) List() ([]*models.License, error) {
	rows, err := r.db.Query("SELECT id, sequence, type, created_at FROM licenses ORDER BY sequence ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query licenses: %w", err)
	}
	defer rows.Close()

	var licenses []*models.License
	for rows.Next() {
		license, err := scanLicense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan license: %w", err)
		}
		licenses = append(licenses, license)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return licenses, nil
}

func (r *LicenseRepository) scanOne(row *sql.Row) (*models.License, error) {
	license, err := scanLicense(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: license", shared.ErrEntityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan license: %w", err)
	}
	return license, nil
}

func scanLicense(scan func(...any) error) (*models.License, error) {
	var (
		id        string
		sequence  int
		typ       string
		createdAt time.Time
	)

	if err := scan(&id, &sequence, &typ, &createdAt); err != nil {
		return nil, err
	}

	license := models.NewLicense(sequence, typ)
	license.SetID(id)
	license.SetCreatedAt(createdAt)

	return license, nil
}
