package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditType string

const (
	// Arbitration events
	AuditSessionApproved  AuditType = "session_approved"
	AuditSessionRejected  AuditType = "session_rejected"
	AuditSessionDisplaced AuditType = "session_displaced"

	// Guest lifecycle events
	AuditSessionRegistered AuditType = "session_registered"
	AuditClaimChanged      AuditType = "claim_changed"
	AuditSessionRestored   AuditType = "session_restored"
	AuditSessionBanned     AuditType = "session_banned"
	AuditSessionUnbanned   AuditType = "session_unbanned"

	// Credential events
	AuditTokenIssued  AuditType = "token_issued"
	AuditTokenRevoked AuditType = "token_revoked"

	// Project lifecycle
	AuditProjectStatusChanged AuditType = "project_status_changed"
)

// AuditLog records every ownership change and credential event of a project
// so coordinators can reconstruct who displaced whom.
type AuditLog struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`
	AuditType AuditType `gorm:"type:varchar(50);not null;index"`
	Message   string    `gorm:"type:text"`  // Human-readable message
	Details   string    `gorm:"type:jsonb"` // Structured details as JSON string
	CreatedAt time.Time `gorm:"index"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditDetails is a helper struct for common audit details
type AuditDetails struct {
	SessionID        string `json:"session_id,omitempty"`
	DisplacedSession string `json:"displaced_session,omitempty"`
	PersonID         string `json:"person_id,omitempty"`
	PersonName       string `json:"person_name,omitempty"`
	GuestName        string `json:"guest_name,omitempty"`
	DisplacedGuest   string `json:"displaced_guest,omitempty"`
	TokenName        string `json:"token_name,omitempty"`
	TokenID          string `json:"token_id,omitempty"`
	Reason           string `json:"reason,omitempty"`
	PreviousStatus   string `json:"previous_status,omitempty"`
	NewStatus        string `json:"new_status,omitempty"`
}
