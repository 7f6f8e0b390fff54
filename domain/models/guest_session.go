package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type ConflictDecision string

const (
	DecisionApprove ConflictDecision = "approve"
	DecisionReject  ConflictDecision = "reject"
)

// GuestSession is one anonymous participant's claim inside a project.
// Sessions are never deleted in normal flow; superseded ones remain as
// history with their status reflecting the outcome.
type GuestSession struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`

	SessionToken string `gorm:"uniqueIndex;not null"`

	GuestName  string `gorm:"not null"`
	GuestEmail string

	// Claimed roster slot, nil while unclaimed
	TabloPersonID *uuid.UUID `gorm:"type:uuid;index"`

	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Banned             bool               `gorm:"default:false"`

	LastActivityAt *time.Time

	// Session recovery, single use
	RestoreTokenHash      *string `gorm:"index"`
	RestoreTokenExpiresAt *time.Time

	// Audit only, never exposed to guest tiers
	IP        string
	UserAgent string `gorm:"size:512"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	Project Project `gorm:"foreignKey:ProjectID"`
	Person  *Person `gorm:"foreignKey:TabloPersonID"`
}

func (GuestSession) TableName() string {
	return "guest_sessions"
}

// ClaimStateKind enumerates the explicit claim states of a session with
// respect to a roster slot.
type ClaimStateKind string

const (
	ClaimUnclaimed ClaimStateKind = "unclaimed"
	ClaimPending   ClaimStateKind = "pending"
	ClaimVerified  ClaimStateKind = "verified"
	ClaimRejected  ClaimStateKind = "rejected"
)

// ClaimState is the tagged view over the two persisted columns
// (tablo_person_id, verification_status). PersonID is set only for the
// Pending and Verified kinds.
type ClaimState struct {
	Kind     ClaimStateKind
	PersonID uuid.UUID
}

// ClaimState derives the explicit claim state. The eviction logic operates on
// this single value instead of coordinating two nullable fields.
func (s *GuestSession) ClaimState() ClaimState {
	switch s.VerificationStatus {
	case VerificationRejected:
		return ClaimState{Kind: ClaimRejected}
	case VerificationVerified:
		if s.TabloPersonID != nil {
			return ClaimState{Kind: ClaimVerified, PersonID: *s.TabloPersonID}
		}
		// Displaced owner: verified flag without a slot counts as unclaimed
		return ClaimState{Kind: ClaimUnclaimed}
	default:
		if s.TabloPersonID != nil {
			return ClaimState{Kind: ClaimPending, PersonID: *s.TabloPersonID}
		}
		return ClaimState{Kind: ClaimUnclaimed}
	}
}

// EligibleOwner reports whether the session may ever become the verified
// owner of a roster slot. Banned sessions never qualify.
func (s *GuestSession) EligibleOwner() bool {
	return !s.Banned
}

// RestoreTokenUsable checks presence and expiry of the restore credential.
func (s *GuestSession) RestoreTokenUsable(now time.Time) bool {
	if s.RestoreTokenHash == nil || *s.RestoreTokenHash == "" {
		return false
	}
	return s.RestoreTokenExpiresAt == nil || s.RestoreTokenExpiresAt.After(now)
}
