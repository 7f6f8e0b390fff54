package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
)

type AccessTokenRepository interface {
	Create(ctx context.Context, token *models.AccessToken) error
	// GetByHash resolves a presented bearer secret (already hashed) with the
	// scoped project preloaded for the validity gate.
	GetByHash(ctx context.Context, hash string) (*models.AccessToken, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
	// RevokeForInvalidProjects sweeps project-scoped tokens whose backing
	// project is no longer usable. Complements the per-request gate.
	RevokeForInvalidProjects(ctx context.Context, now time.Time) (int64, error)
}
