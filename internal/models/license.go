package models

import (
	"fmt"
	"time"
)

// License is a database-backed license row. Rows exist only for license
// variants that have been seen at least once (lookup-or-create).
type License struct {
	id        string
	sequence  int
	typ       string
	createdAt time.Time
}

// NewLicense creates a License row for the given variant.
func NewLicense(sequence int, typ string) *License {
	return &License{
		sequence:  sequence,
		typ:       typ,
		createdAt: time.Now(),
	}
}

func (l *License) ID() string           { return l.id }
func (l *License) Sequence() int        { return l.sequence }
func (l *License) Type() string         { return l.typ }
func (l *License) CreatedAt() time.Time { return l.createdAt }
func (l *License) UpdatedAt() time.Time { return l.createdAt }

func (l *License) SetID(id string)          { l.id = id }
func (l *License) SetSequence(seq int)      { l.sequence = seq }
func (l *License) SetCreatedAt(x time.Time) { l.createdAt = x }

func (l *License) Validate() error {
	switch l.typ {
	case LicenseCCBY, LicenseCCBYSA, LicenseCCBYND, LicenseCCBYNC,
		LicenseCCBYNCSA, LicenseCCBYNCND, LicenseUnknown:
		return nil
	}
	return fmt.Errorf("unknown license variant: %s", l.typ)
}
