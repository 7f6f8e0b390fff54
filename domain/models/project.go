package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusDone     ProjectStatus = "done"
	ProjectStatusInPrint  ProjectStatus = "in_print"
	ProjectStatusArchived ProjectStatus = "archived"
)

// Project is one class-photo job owned by a partner studio. Its access code,
// share token and preview token are independent optional credentials; a guest
// login presents exactly one of them.
type Project struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PartnerID uuid.UUID `gorm:"type:uuid;not null;index"`

	SchoolName string `gorm:"not null"`
	ClassName  string `gorm:"not null"`
	ClassYear  string

	Status ProjectStatus `gorm:"type:varchar(20);not null;default:'active';index"`

	// Access-code credential (full tier)
	AccessCode          string `gorm:"index"`
	AccessCodeEnabled   bool   `gorm:"default:true"`
	AccessCodeExpiresAt *time.Time

	// Link credentials
	ShareToken   string `gorm:"uniqueIndex"`
	PreviewToken string `gorm:"uniqueIndex"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	Partner  Partner        `gorm:"foreignKey:PartnerID"`
	Persons  []Person       `gorm:"foreignKey:ProjectID"`
	Sessions []GuestSession `gorm:"foreignKey:ProjectID"`
}

func (Project) TableName() string {
	return "tablo_projects"
}

// GuestMutationLocked reports whether the project reached a state that is
// terminal for guest-facing mutation.
func (p *Project) GuestMutationLocked() bool {
	return p.Status == ProjectStatusDone || p.Status == ProjectStatusInPrint
}

// AccessCodeUsable is the per-request validity rule for access-code based
// sessions: feature enabled, expiry absent or in the future, and the project
// not yet finalized.
func (p *Project) AccessCodeUsable(now time.Time) bool {
	if !p.AccessCodeEnabled {
		return false
	}
	if p.AccessCodeExpiresAt != nil && !p.AccessCodeExpiresAt.After(now) {
		return false
	}
	return !p.GuestMutationLocked()
}

// ValidForTokenKind is the shared validity rule of the per-request gate and
// the periodic token sweep. Access-code sessions die with the code; QR tokens
// survive code changes (deployed posters depend on them) and only die with
// finalization; link credentials only die with archiving.
func (p *Project) ValidForTokenKind(kind TokenKind, now time.Time) bool {
	switch kind {
	case TokenKindAuth:
		return p.AccessCodeUsable(now)
	case TokenKindQRRegistration:
		return !p.GuestMutationLocked()
	case TokenKindShare, TokenKindPreview:
		return p.Status != ProjectStatusArchived
	default:
		return false
	}
}
