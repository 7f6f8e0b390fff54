package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
)

type AccessTokenRepositoryImpl struct {
	db *gorm.DB
}

func NewAccessTokenRepository(db *gorm.DB) repositories.AccessTokenRepository {
	return &AccessTokenRepositoryImpl{db: db}
}

func (r *AccessTokenRepositoryImpl) Create(ctx context.Context, token *models.AccessToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *AccessTokenRepositoryImpl) GetByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	var token models.AccessToken
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("token_hash = ?", hash).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *AccessTokenRepositoryImpl) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

func (r *AccessTokenRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AccessToken{}).Error
}

func (r *AccessTokenRepositoryImpl) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("tablo_project_id = ?", projectID).
		Delete(&models.AccessToken{})
	return result.RowsAffected, result.Error
}

func (r *AccessTokenRepositoryImpl) DeleteBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("guest_session_id = ?", sessionID).
		Delete(&models.AccessToken{})
	return result.RowsAffected, result.Error
}

// RevokeForInvalidProjects deletes tokens whose project went invalid for
// their kind, mirroring Project.ValidForTokenKind: access-code sessions die
// with the code, QR tokens only with finalization. Share and preview links
// only die with archiving; the per-request gate revokes those on contact.
func (r *AccessTokenRepositoryImpl) RevokeForInvalidProjects(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM access_tokens
		USING tablo_projects p
		WHERE access_tokens.tablo_project_id = p.id
		  AND (
			(access_tokens.name = ?
			  AND (p.access_code_enabled = false
				OR (p.access_code_expires_at IS NOT NULL AND p.access_code_expires_at <= ?)
				OR p.status IN (?, ?)))
			OR (access_tokens.name = ? AND p.status IN (?, ?))
		  )`,
		string(models.TokenKindAuth),
		now,
		string(models.ProjectStatusDone), string(models.ProjectStatusInPrint),
		string(models.TokenKindQRRegistration),
		string(models.ProjectStatusDone), string(models.ProjectStatusInPrint),
	)
	return result.RowsAffected, result.Error
}
