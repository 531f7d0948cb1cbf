package models

import (
	"fmt"
	"time"
)

// Tag is a globally unique label describing music (genres, moods,
// instruments). Tags are created lazily on first reference and never deleted.
// Name matching is case-sensitive; values are stored as supplied.
type Tag struct {
	id        string
	sequence  int
	name      string
	createdAt time.Time
}

// NewTag creates a Tag with the given name.
func NewTag(sequence int, name string) *Tag {
	return &Tag{
		sequence:  sequence,
		name:      name,
		createdAt: time.Now(),
	}
}

func (t *Tag) ID() string           { return t.id }
func (t *Tag) Sequence() int        { return t.sequence }
func (t *Tag) Name() string         { return t.name }
func (t *Tag) CreatedAt() time.Time { return t.createdAt }
func (t *Tag) UpdatedAt() time.Time { return t.createdAt }

func (t *Tag) SetID(id string)          { t.id = id }
func (t *Tag) SetSequence(seq int)      { t.sequence = seq }
func (t *Tag) SetCreatedAt(x time.Time) { t.createdAt = x }

func (t *Tag) Validate() error {
	if t.name == "" {
		return fmt.Errorf("tag name is required")
	}
	return nil
}
