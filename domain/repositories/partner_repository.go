package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
)

type PartnerRepository interface {
	Create(ctx context.Context, partner *models.Partner) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	GetByEmail(ctx context.Context, email string) (*models.Partner, error)
	GetByProviderID(ctx context.Context, provider, providerID string) (*models.Partner, error)
	Update(ctx context.Context, id uuid.UUID, partner *models.Partner) error
}
