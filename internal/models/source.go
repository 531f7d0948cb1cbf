package models

import (
	"fmt"
	"time"
)

// PersistedSource is a database-backed source row. A source cannot exist
// without its owning song; deleting the song cascades to its sources.
// Dedup identity is the (kind, codec, link) triple.
type PersistedSource struct {
	id        string
	sequence  int
	songID    string
	kind      string
	codec     string
	link      string
	createdAt time.Time
}

// NewPersistedSource creates a PersistedSource owned by the given song row.
func NewPersistedSource(sequence int, songID string, dto Source) *PersistedSource {
	return &PersistedSource{
		sequence:  sequence,
		songID:    songID,
		kind:      dto.Kind,
		codec:     dto.Codec,
		link:      dto.Link,
		createdAt: time.Now(),
	}
}

func (s *PersistedSource) ID() string           { return s.id }
func (s *PersistedSource) Sequence() int        { return s.sequence }
func (s *PersistedSource) SongID() string       { return s.songID }
func (s *PersistedSource) Kind() string         { return s.kind }
func (s *PersistedSource) Codec() string        { return s.codec }
func (s *PersistedSource) Link() string         { return s.link }
func (s *PersistedSource) CreatedAt() time.Time { return s.createdAt }
func (s *PersistedSource) UpdatedAt() time.Time { return s.createdAt }

func (s *PersistedSource) SetID(id string)          { s.id = id }
func (s *PersistedSource) SetSequence(seq int)      { s.sequence = seq }
func (s *PersistedSource) SetSongID(id string)      { s.songID = id }
func (s *PersistedSource) SetCreatedAt(x time.Time) { s.createdAt = x }

func (s *PersistedSource) Validate() error {
	if s.songID == "" {
		return fmt.Errorf("source requires an owning song")
	}
	if s.kind != SourceStream && s.kind != SourceDownload {
		return fmt.Errorf("source kind must be %s or %s", SourceStream, SourceDownload)
	}
	if s.link == "" {
		return fmt.Errorf("source link is required")
	}
	return nil
}
