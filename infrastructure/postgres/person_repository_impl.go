package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
)

type PersonRepositoryImpl struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) repositories.PersonRepository {
	return &PersonRepositoryImpl{db: db}
}

func (r *PersonRepositoryImpl) Create(ctx context.Context, person *models.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *PersonRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	var person models.Person
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&person).Error
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *PersonRepositoryImpl) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Person, error) {
	var persons []models.Person
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position ASC, name ASC").
		Find(&persons).Error
	return persons, err
}

func (r *PersonRepositoryImpl) Update(ctx context.Context, id uuid.UUID, person *models.Person) error {
	person.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Where("id = ?", id).Updates(person).Error
}

func (r *PersonRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Person{}).Error
}

func (r *PersonRepositoryImpl) Count(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Person{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}
