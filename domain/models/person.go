package models

import (
	"time"

	"github.com/google/uuid"
)

type PersonType string

const (
	PersonTypeStudent PersonType = "student"
	PersonTypeTeacher PersonType = "teacher"
)

// Person is one fixed roster entry of a project. At most one guest session
// may own it as verified claimant at any time; that invariant is enforced by
// the conflict arbitration, not here.
type Person struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name     string     `gorm:"not null"`
	Type     PersonType `gorm:"type:varchar(10);not null;default:'student'"`
	Position int        `gorm:"default:0"` // Ordering on the tablo layout

	// Photo reference chain, resolved in priority order
	OverridePhotoID *uuid.UUID `gorm:"type:uuid"`
	ArchivePhotoID  *uuid.UUID `gorm:"type:uuid"`
	LegacyPhotoID   *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	Project Project `gorm:"foreignKey:ProjectID"`
}

func (Person) TableName() string {
	return "tablo_persons"
}

// EffectivePhotoID resolves the at-most-one photo of the person through the
// override -> archive -> legacy chain. Nil when no photo is linked.
func (p *Person) EffectivePhotoID() *uuid.UUID {
	if p.OverridePhotoID != nil {
		return p.OverridePhotoID
	}
	if p.ArchivePhotoID != nil {
		return p.ArchivePhotoID
	}
	return p.LegacyPhotoID
}
