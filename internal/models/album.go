package models

import (
	"fmt"
	"time"
)

// PersistedAlbum is a database-backed album row. The owning artist is stored
// as a local row reference, which may be empty when the remote record
// referenced an artist that could not be resolved.
type PersistedAlbum struct {
	id          string
	sequence    int
	name        string
	artistID    string
	externalID  int64
	cover       string
	shareLink   string
	releaseDate time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewPersistedAlbum creates a PersistedAlbum from a parsed album record and
// the resolved local artist row id.
func NewPersistedAlbum(sequence int, artistID string, dto Album) *PersistedAlbum {
	now := time.Now()
	return &PersistedAlbum{
		sequence:    sequence,
		name:        dto.Name,
		artistID:    artistID,
		externalID:  dto.ExternalID,
		cover:       dto.Cover,
		shareLink:   dto.ShareLink,
		releaseDate: dto.ReleaseDate,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (a *PersistedAlbum) ID() string             { return a.id }
func (a *PersistedAlbum) Sequence() int          { return a.sequence }
func (a *PersistedAlbum) Name() string           { return a.name }
func (a *PersistedAlbum) ArtistID() string       { return a.artistID }
func (a *PersistedAlbum) ExternalID() int64      { return a.externalID }
func (a *PersistedAlbum) Cover() string          { return a.cover }
func (a *PersistedAlbum) ShareLink() string      { return a.shareLink }
func (a *PersistedAlbum) ReleaseDate() time.Time { return a.releaseDate }
func (a *PersistedAlbum) CreatedAt() time.Time   { return a.createdAt }
func (a *PersistedAlbum) UpdatedAt() time.Time   { return a.updatedAt }

func (a *PersistedAlbum) SetID(id string)             { a.id = id }
func (a *PersistedAlbum) SetSequence(seq int)         { a.sequence = seq }
func (a *PersistedAlbum) SetArtistID(id string)       { a.artistID = id }
func (a *PersistedAlbum) SetCreatedAt(t time.Time)    { a.createdAt = t }
func (a *PersistedAlbum) SetUpdatedAt(t time.Time)    { a.updatedAt = t }
func (a *PersistedAlbum) SetReleaseDate(t time.Time)  { a.releaseDate = t }

// HasExternalID reports whether the album is linked to a remote catalog record.
func (a *PersistedAlbum) HasExternalID() bool { return a.externalID != 0 }

func (a *PersistedAlbum) Validate() error {
	if a.name == "" {
		return fmt.Errorf("album name is required")
	}
	return nil
}
