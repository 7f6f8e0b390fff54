package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
)

type GuestSessionRepositoryImpl struct {
	db *gorm.DB
}

func NewGuestSessionRepository(db *gorm.DB) repositories.GuestSessionRepository {
	return &GuestSessionRepositoryImpl{db: db}
}

func (r *GuestSessionRepositoryImpl) Create(ctx context.Context, session *models.GuestSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *GuestSessionRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.GuestSession, error) {
	var session models.GuestSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GuestSessionRepositoryImpl) GetByToken(ctx context.Context, token string) (*models.GuestSession, error) {
	var session models.GuestSession
	err := r.db.WithContext(ctx).Where("session_token = ?", token).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GuestSessionRepositoryImpl) Update(ctx context.Context, session *models.GuestSession) error {
	session.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *GuestSessionRepositoryImpl) UpdateLastActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.GuestSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_activity_at": at,
			"updated_at":       time.Now(),
		}).Error
}

func (r *GuestSessionRepositoryImpl) ListByProject(ctx context.Context, projectID uuid.UUID, offset, limit int) ([]models.GuestSession, int64, error) {
	var sessions []models.GuestSession
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.GuestSession{}).Where("project_id = ?", projectID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&sessions).Error

	return sessions, total, err
}

func (r *GuestSessionRepositoryImpl) GetLatestByEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.GuestSession, error) {
	var session models.GuestSession
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND guest_email = ?", projectID, email).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GuestSessionRepositoryImpl) GetByRestoreTokenHash(ctx context.Context, hash string) (*models.GuestSession, error) {
	var session models.GuestSession
	err := r.db.WithContext(ctx).Where("restore_token_hash = ?", hash).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindOwner returns the unique verified session for the (project, person)
// slot, nil when the slot is unowned.
func (r *GuestSessionRepositoryImpl) FindOwner(ctx context.Context, projectID, personID uuid.UUID, excludeSessionID *uuid.UUID) (*models.GuestSession, error) {
	return r.findOwner(ctx, projectID, personID, excludeSessionID, false)
}

func (r *GuestSessionRepositoryImpl) FindOwnerForUpdate(ctx context.Context, projectID, personID uuid.UUID, excludeSessionID *uuid.UUID) (*models.GuestSession, error) {
	return r.findOwner(ctx, projectID, personID, excludeSessionID, true)
}

func (r *GuestSessionRepositoryImpl) findOwner(ctx context.Context, projectID, personID uuid.UUID, excludeSessionID *uuid.UUID, forUpdate bool) (*models.GuestSession, error) {
	query := r.db.WithContext(ctx).
		Where("project_id = ? AND tablo_person_id = ? AND verification_status = ?",
			projectID, personID, models.VerificationVerified)

	if excludeSessionID != nil {
		query = query.Where("id <> ?", *excludeSessionID)
	}
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var owner models.GuestSession
	err := query.First(&owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *GuestSessionRepositoryImpl) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.GuestSession, error) {
	var session models.GuestSession
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GuestSessionRepositoryImpl) CountPending(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GuestSession{}).
		Where("project_id = ? AND verification_status = ?", projectID, models.VerificationPending).
		Count(&count).Error
	return count, err
}

// CountConflicting counts pending sessions whose claimed slot already has a
// different verified owner. Computed fresh on every call.
func (r *GuestSessionRepositoryImpl) CountConflicting(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT count(*) FROM guest_sessions p
		WHERE p.project_id = ?
		  AND p.verification_status = ?
		  AND p.tablo_person_id IS NOT NULL
		  AND EXISTS (
			SELECT 1 FROM guest_sessions o
			WHERE o.project_id = p.project_id
			  AND o.tablo_person_id = p.tablo_person_id
			  AND o.verification_status = ?
			  AND o.id <> p.id
		  )`,
		projectID, models.VerificationPending, models.VerificationVerified,
	).Scan(&count).Error
	return count, err
}

func (r *GuestSessionRepositoryImpl) ListPendingWithOwners(ctx context.Context, projectID uuid.UUID) ([]repositories.PendingSessionRow, error) {
	var pending []models.GuestSession
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("project_id = ? AND verification_status = ?", projectID, models.VerificationPending).
		Order("created_at ASC").
		Find(&pending).Error
	if err != nil {
		return nil, err
	}

	rows := make([]repositories.PendingSessionRow, 0, len(pending))
	for _, session := range pending {
		row := repositories.PendingSessionRow{Session: session}
		if session.Person != nil {
			row.PersonName = session.Person.Name
		}
		if session.TabloPersonID != nil {
			owner, err := r.FindOwner(ctx, projectID, *session.TabloPersonID, &session.ID)
			if err != nil {
				return nil, err
			}
			if owner != nil {
				row.OwnerID = &owner.ID
				row.OwnerName = owner.GuestName
				row.HasConflict = true
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// InTx binds a repository to one transaction; an error from fn rolls back
// every write made through it.
func (r *GuestSessionRepositoryImpl) InTx(ctx context.Context, fn func(tx repositories.GuestSessionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GuestSessionRepositoryImpl{db: tx})
	})
}

func (r *GuestSessionRepositoryImpl) PurgeExpiredRestoreTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GuestSession{}).
		Where("restore_token_hash IS NOT NULL AND restore_token_expires_at IS NOT NULL AND restore_token_expires_at < ?", now).
		Updates(map[string]interface{}{
			"restore_token_hash":       nil,
			"restore_token_expires_at": nil,
			"updated_at":               time.Now(),
		})
	return result.RowsAffected, result.Error
}
