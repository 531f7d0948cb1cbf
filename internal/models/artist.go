package models

import (
	"fmt"
	"time"
)

// PersistedArtist is a database-backed artist row.
//
// Bio, city and country code are local-only fields: the remote catalog never
// supplies them, so parsing leaves them blank.
type PersistedArtist struct {
	id          string
	sequence    int
	name        string
	externalID  int64
	bio         string
	website     string
	city        string
	countryCode string
	image       string
	shareLink   string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewPersistedArtist creates a PersistedArtist from a parsed artist record.
func NewPersistedArtist(sequence int, dto Artist) *PersistedArtist {
	now := time.Now()
	return &PersistedArtist{
		sequence:   sequence,
		name:       dto.Name,
		externalID: dto.ExternalID,
		website:    dto.Website,
		image:      dto.Image,
		shareLink:  dto.ShareLink,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (a *PersistedArtist) ID() string           { return a.id }
func (a *PersistedArtist) Sequence() int        { return a.sequence }
func (a *PersistedArtist) Name() string         { return a.name }
func (a *PersistedArtist) ExternalID() int64    { return a.externalID }
func (a *PersistedArtist) Bio() string          { return a.bio }
func (a *PersistedArtist) Website() string      { return a.website }
func (a *PersistedArtist) City() string         { return a.city }
func (a *PersistedArtist) CountryCode() string  { return a.countryCode }
func (a *PersistedArtist) Image() string        { return a.image }
func (a *PersistedArtist) ShareLink() string    { return a.shareLink }
func (a *PersistedArtist) CreatedAt() time.Time { return a.createdAt }
func (a *PersistedArtist) UpdatedAt() time.Time { return a.updatedAt }

func (a *PersistedArtist) SetID(id string)             { a.id = id }
func (a *PersistedArtist) SetSequence(seq int)         { a.sequence = seq }
func (a *PersistedArtist) SetBio(bio string)           { a.bio = bio }
func (a *PersistedArtist) SetCity(city string)         { a.city = city }
func (a *PersistedArtist) SetCountryCode(cc string)    { a.countryCode = cc }
func (a *PersistedArtist) SetCreatedAt(t time.Time)    { a.createdAt = t }
func (a *PersistedArtist) SetUpdatedAt(t time.Time)    { a.updatedAt = t }
func (a *PersistedArtist) SetExternalID(id int64)      { a.externalID = id }
func (a *PersistedArtist) SetWebsite(website string)   { a.website = website }
func (a *PersistedArtist) SetImage(image string)       { a.image = image }
func (a *PersistedArtist) SetShareLink(link string)    { a.shareLink = link }

// HasExternalID reports whether the artist is linked to a remote catalog record.
func (a *PersistedArtist) HasExternalID() bool { return a.externalID != 0 }

func (a *PersistedArtist) Validate() error {
	if a.name == "" {
		return fmt.Errorf("artist name is required")
	}
	return nil
}
