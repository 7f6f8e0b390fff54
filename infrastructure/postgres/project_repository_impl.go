package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
)

type ProjectRepositoryImpl struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) repositories.ProjectRepository {
	return &ProjectRepositoryImpl{db: db}
}

func (r *ProjectRepositoryImpl) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) GetByAccessCode(ctx context.Context, code string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Where("access_code = ?", code).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) GetByShareToken(ctx context.Context, token string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Where("share_token = ?", token).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) GetByPreviewToken(ctx context.Context, token string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Where("preview_token = ?", token).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepositoryImpl) ListByPartner(ctx context.Context, partnerID uuid.UUID, offset, limit int) ([]models.Project, int64, error) {
	var projects []models.Project
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Project{}).Where("partner_id = ?", partnerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&projects).Error

	return projects, total, err
}

func (r *ProjectRepositoryImpl) Update(ctx context.Context, id uuid.UUID, project *models.Project) error {
	project.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Where("id = ?", id).Updates(project).Error
}

func (r *ProjectRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
