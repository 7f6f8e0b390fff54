package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
)

type PartnerRepositoryImpl struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) repositories.PartnerRepository {
	return &PartnerRepositoryImpl{db: db}
}

func (r *PartnerRepositoryImpl) Create(ctx context.Context, partner *models.Partner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

func (r *PartnerRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	var partner models.Partner
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *PartnerRepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.Partner, error) {
	var partner models.Partner
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *PartnerRepositoryImpl) GetByProviderID(ctx context.Context, provider, providerID string) (*models.Partner, error) {
	var partner models.Partner
	err := r.db.WithContext(ctx).Where("provider = ? AND provider_id = ?", provider, providerID).First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *PartnerRepositoryImpl) Update(ctx context.Context, id uuid.UUID, partner *models.Partner) error {
	partner.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Where("id = ?", id).Updates(partner).Error
}
