package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
)

type PersonRepository interface {
	Create(ctx context.Context, person *models.Person) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Person, error)
	Update(ctx context.Context, id uuid.UUID, person *models.Person) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, projectID uuid.UUID) (int64, error)
}
