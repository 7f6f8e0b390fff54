package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByAccessCode(ctx context.Context, code string) (*models.Project, error)
	GetByShareToken(ctx context.Context, token string) (*models.Project, error)
	GetByPreviewToken(ctx context.Context, token string) (*models.Project, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID, offset, limit int) ([]models.Project, int64, error)
	Update(ctx context.Context, id uuid.UUID, project *models.Project) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error
}
