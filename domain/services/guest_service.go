package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
)

// RegisterGuestInput is the registration payload after validation. PersonID
// is the optional immediately-claimed roster slot.
type RegisterGuestInput struct {
	ProjectID uuid.UUID
	Name      string
	Email     string
	PersonID  *uuid.UUID
	IP        string
	UserAgent string
}

type GuestService interface {
	// Register creates a pending session, optionally claiming a roster slot.
	// The claimed person must belong to the same project; that invariant is
	// enforced here, before any conflict logic runs.
	Register(ctx context.Context, input RegisterGuestInput) (*models.GuestSession, error)

	// GetByToken resolves a session by its opaque session token.
	GetByToken(ctx context.Context, sessionToken string) (*models.GuestSession, error)

	// UpdateClaim changes the claimed slot of a still-pending session. A nil
	// personID releases the claim.
	UpdateClaim(ctx context.Context, sessionToken string, personID *uuid.UUID) (*models.GuestSession, error)

	// Heartbeat records liveness in the presence cache and stamps
	// last_activity_at.
	Heartbeat(ctx context.Context, sessionToken string) error

	// RequestRestoreLink issues a single-use, time-limited restore token and
	// hands it to the mail collaborator.
	RequestRestoreLink(ctx context.Context, projectID uuid.UUID, email string) error

	// Restore consumes a restore token. The token is cleared on use and the
	// session token rotated; a second attempt fails.
	Restore(ctx context.Context, restoreToken string) (*models.GuestSession, error)

	// SetBanned flips the banned flag of a session. Banned sessions are never
	// eligible to own a roster slot. The session must belong to projectID;
	// sessions of other projects are reported as not found.
	SetBanned(ctx context.Context, projectID, sessionID uuid.UUID, banned bool) (*models.GuestSession, error)

	// ListByProject is the coordinator view of all sessions of a project.
	ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]models.GuestSession, int64, error)
}
