package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
)

// ArbitrationResult reports the outcome of a resolve call. Displaced is set
// when an approval evicted a prior owner; NoChange marks idempotent repeats.
type ArbitrationResult struct {
	Decision  models.ConflictDecision
	Message   string
	Displaced *models.GuestSession
	NoChange  bool
}

// ConflictCounts are dashboard badge numbers, always computed fresh.
type ConflictCounts struct {
	Pending     int64 `json:"pending"`
	Conflicting int64 `json:"conflicting"`
}

type ConflictService interface {
	// FindOwner returns the unique verified session for a roster slot,
	// optionally excluding one session id.
	FindOwner(ctx context.Context, projectID, personID uuid.UUID, excludeSessionID *uuid.UUID) (*models.GuestSession, error)

	// Counts computes the pending and conflicting badge numbers.
	Counts(ctx context.Context, projectID uuid.UUID) (*ConflictCounts, error)

	// ListPending returns the admin conflict screen rows.
	ListPending(ctx context.Context, projectID uuid.UUID) ([]repositories.PendingSessionRow, error)

	// ResolveConflict is the only place ownership of a roster slot changes
	// hands. Approve demotes the current owner (if any) and promotes the
	// target inside one transaction; reject frees the slot. Idempotent for a
	// repeated terminal decision, clean conflict error otherwise. The session
	// must belong to projectID; sessions of other projects are reported as
	// not found, exactly like nonexistent ones.
	ResolveConflict(ctx context.Context, projectID, sessionID uuid.UUID, decision models.ConflictDecision) (*ArbitrationResult, error)
}
