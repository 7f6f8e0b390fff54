package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterGuestRequest is the guest registration payload. PersonID optionally
// claims a roster slot right away.
type RegisterGuestRequest struct {
	ProjectID uuid.UUID  `json:"project_id" validate:"required"`
	Name      string     `json:"name" validate:"required,min=2,max=120"`
	Email     string     `json:"email" validate:"omitempty,email"`
	PersonID  *uuid.UUID `json:"person_id,omitempty"`
}

// UpdateClaimRequest changes the claimed slot; null releases it.
type UpdateClaimRequest struct {
	PersonID *uuid.UUID `json:"person_id"`
}

type RestoreRequest struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
}

type RestoreConsumeRequest struct {
	Token string `json:"token" validate:"required"`
}

// GuestSessionResponse is the guest's own view of their session. IP and user
// agent never appear here.
type GuestSessionResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ProjectID          uuid.UUID  `json:"project_id"`
	SessionToken       string     `json:"session_token,omitempty"`
	Name               string     `json:"name"`
	PersonID           *uuid.UUID `json:"person_id,omitempty"`
	VerificationStatus string     `json:"verification_status"`
	ClaimState         string     `json:"claim_state"`
	CreatedAt          time.Time  `json:"created_at"`
}

// AdminSessionResponse is the coordinator view, including audit fields.
type AdminSessionResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ProjectID          uuid.UUID  `json:"project_id"`
	Name               string     `json:"name"`
	Email              string     `json:"email,omitempty"`
	PersonID           *uuid.UUID `json:"person_id,omitempty"`
	VerificationStatus string     `json:"verification_status"`
	Banned             bool       `json:"banned"`
	LastActivityAt     *time.Time `json:"last_activity_at,omitempty"`
	IP                 string     `json:"ip,omitempty"`
	UserAgent          string     `json:"user_agent,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type SessionListResponse struct {
	Sessions []AdminSessionResponse `json:"sessions"`
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	Limit    int                    `json:"limit"`
}
