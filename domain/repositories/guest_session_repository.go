package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
)

// PendingSessionRow is one admin conflict-screen row: a pending session plus
// the verified owner, if any, of the slot it claims.
type PendingSessionRow struct {
	Session     models.GuestSession
	PersonName  string
	OwnerID     *uuid.UUID
	OwnerName   string
	HasConflict bool
}

type GuestSessionRepository interface {
	Create(ctx context.Context, session *models.GuestSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GuestSession, error)
	GetByToken(ctx context.Context, token string) (*models.GuestSession, error)
	Update(ctx context.Context, session *models.GuestSession) error
	UpdateLastActivity(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByProject(ctx context.Context, projectID uuid.UUID, offset, limit int) ([]models.GuestSession, int64, error)

	// Restore flow lookups
	GetLatestByEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.GuestSession, error)
	GetByRestoreTokenHash(ctx context.Context, hash string) (*models.GuestSession, error)

	// Conflict detection, pure reads. Counts are computed fresh on every call
	// because ownership can change between requests.
	FindOwner(ctx context.Context, projectID, personID uuid.UUID, excludeSessionID *uuid.UUID) (*models.GuestSession, error)
	CountPending(ctx context.Context, projectID uuid.UUID) (int64, error)
	CountConflicting(ctx context.Context, projectID uuid.UUID) (int64, error)
	ListPendingWithOwners(ctx context.Context, projectID uuid.UUID) ([]PendingSessionRow, error)

	// Locked variants for use inside InTx; the row stays locked until the
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.GuestSession, error)
	FindOwnerForUpdate(ctx context.Context, projectID, personID uuid.UUID, excludeSessionID *uuid.UUID) (*models.GuestSession, error)

	// InTx runs fn against a repository bound to a single transaction. An
	// error from fn rolls back every write made through it.
	InTx(ctx context.Context, fn func(tx GuestSessionRepository) error) error

	PurgeExpiredRestoreTokens(ctx context.Context, now time.Time) (int64, error)
}
