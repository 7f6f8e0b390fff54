package dto

import (
	"time"

	"github.com/google/uuid"
)

// ResolveConflictRequest carries the coordinator decision for one session.
type ResolveConflictRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

// PendingSessionResponse is one row of the admin conflict screen: a pending
// session plus the verified owner of the slot it claims, when one exists.
type PendingSessionResponse struct {
	SessionID   uuid.UUID  `json:"session_id"`
	GuestName   string     `json:"guest_name"`
	PersonID    *uuid.UUID `json:"person_id,omitempty"`
	PersonName  string     `json:"person_name,omitempty"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	OwnerName   string     `json:"owner_name,omitempty"`
	HasConflict bool       `json:"has_conflict"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PendingListResponse struct {
	Sessions []PendingSessionResponse `json:"sessions"`
}

// ResolveConflictResponse reports the arbitration outcome, including who was
// displaced when an approval evicted a prior owner.
type ResolveConflictResponse struct {
	Decision  string                `json:"decision"`
	Message   string                `json:"resolution_message"`
	NoChange  bool                  `json:"no_change"`
	Session   *AdminSessionResponse `json:"session,omitempty"`
	Displaced *AdminSessionResponse `json:"displaced,omitempty"`
}

type ConflictCountsResponse struct {
	Pending     int64 `json:"pending"`
	Conflicting int64 `json:"conflicting"`
}
