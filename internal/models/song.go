package models

import (
	"fmt"
	"time"
)

// PersistedSong is a database-backed song row. Album and license references
// are optional: a single has no album, and songs ingested before license
// resolution carry none.
type PersistedSong struct {
	id          string
	sequence    int
	name        string
	artistID    string
	albumID     string
	licenseID   string
	externalID  int64
	duration    int
	cover       string
	shareLink   string
	releaseDate time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewPersistedSong creates a PersistedSong from a parsed song record and the
// resolved local row ids of its artist, album and license.
func NewPersistedSong(sequence int, artistID, albumID, licenseID string, dto Song) *PersistedSong {
	now := time.Now()
	return &PersistedSong{
		sequence:    sequence,
		name:        dto.Name,
		artistID:    artistID,
		albumID:     albumID,
		licenseID:   licenseID,
		externalID:  dto.ExternalID,
		duration:    dto.Duration,
		cover:       dto.Cover,
		shareLink:   dto.ShareLink,
		releaseDate: dto.ReleaseDate,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (s *PersistedSong) ID() string             { return s.id }
func (s *PersistedSong) Sequence() int          { return s.sequence }
func (s *PersistedSong) Name() string           { return s.name }
func (s *PersistedSong) ArtistID() string       { return s.artistID }
func (s *PersistedSong) AlbumID() string        { return s.albumID }
func (s *PersistedSong) LicenseID() string      { return s.licenseID }
func (s *PersistedSong) ExternalID() int64      { return s.externalID }
func (s *PersistedSong) Duration() int          { return s.duration }
func (s *PersistedSong) Cover() string          { return s.cover }
func (s *PersistedSong) ShareLink() string      { return s.shareLink }
func (s *PersistedSong) ReleaseDate() time.Time { return s.releaseDate }
func (s *PersistedSong) CreatedAt() time.Time   { return s.createdAt }
func (s *PersistedSong) UpdatedAt() time.Time   { return s.updatedAt }

func (s *PersistedSong) SetID(id string)            { s.id = id }
func (s *PersistedSong) SetSequence(seq int)        { s.sequence = seq }
func (s *PersistedSong) SetArtistID(id string)      { s.artistID = id }
func (s *PersistedSong) SetAlbumID(id string)       { s.albumID = id }
func (s *PersistedSong) SetLicenseID(id string)     { s.licenseID = id }
func (s *PersistedSong) SetCreatedAt(t time.Time)   { s.createdAt = t }
func (s *PersistedSong) SetUpdatedAt(t time.Time)   { s.updatedAt = t }
func (s *PersistedSong) SetReleaseDate(t time.Time) { s.releaseDate = t }

// AdoptExternal links an existing song row to a remote catalog record. Used by
// the fill-gaps merge policy when a locally known song is encountered with a
// remote natural key for the first time.
func (s *PersistedSong) AdoptExternal(externalID int64, cover, shareLink string) {
	s.externalID = externalID
	if s.cover == "" {
		s.cover = cover
	}
	if s.shareLink == "" {
		s.shareLink = shareLink
	}
}

// HasExternalID reports whether the song is linked to a remote catalog record.
func (s *PersistedSong) HasExternalID() bool { return s.externalID != 0 }

func (s *PersistedSong) Validate() error {
	if s.name == "" {
		return fmt.Errorf("song name is required")
	}
	if s.duration < 0 {
		return fmt.Errorf("song duration must not be negative")
	}
	return nil
}
