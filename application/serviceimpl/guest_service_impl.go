package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/infrastructure/redis"
	"github.com/tablostudio/tablo-api/pkg/config"
	"github.com/tablostudio/tablo-api/pkg/logger"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

type GuestServiceImpl struct {
	sessionRepo repositories.GuestSessionRepository
	personRepo  repositories.PersonRepository
	projectRepo repositories.ProjectRepository
	tokenRepo   repositories.AccessTokenRepository
	redisClient *redis.RedisClient
	mailer      services.Mailer
	auditLog    services.AuditLogService
	cfg         *config.Config
}

func NewGuestService(
	sessionRepo repositories.GuestSessionRepository,
	personRepo repositories.PersonRepository,
	projectRepo repositories.ProjectRepository,
	tokenRepo repositories.AccessTokenRepository,
	redisClient *redis.RedisClient,
	mailer services.Mailer,
	auditLog services.AuditLogService,
	cfg *config.Config,
) services.GuestService {
	return &GuestServiceImpl{
		sessionRepo: sessionRepo,
		personRepo:  personRepo,
		projectRepo: projectRepo,
		tokenRepo:   tokenRepo,
		redisClient: redisClient,
		mailer:      mailer,
		auditLog:    auditLog,
		cfg:         cfg,
	}
}

func (s *GuestServiceImpl) Register(ctx context.Context, input services.RegisterGuestInput) (*models.GuestSession, error) {
	project, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	if project.GuestMutationLocked() {
		return nil, services.ErrProjectLocked
	}

	if input.PersonID != nil {
		if err := s.checkPersonInProject(ctx, *input.PersonID, project.ID); err != nil {
			return nil, err
		}
	}

	sessionToken, err := utils.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.GuestSession{
		ProjectID:          project.ID,
		SessionToken:       sessionToken,
		GuestName:          strings.TrimSpace(input.Name),
		GuestEmail:         strings.ToLower(strings.TrimSpace(input.Email)),
		TabloPersonID:      input.PersonID,
		VerificationStatus: models.VerificationPending,
		LastActivityAt:     &now,
		IP:                 input.IP,
		UserAgent:          input.UserAgent,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		logger.GuestError("register_failed", "Failed to create guest session", err, map[string]interface{}{
			"project_id": project.ID.String(),
		})
		return nil, err
	}

	details := &models.AuditDetails{SessionID: session.ID.String(), GuestName: session.GuestName}
	if input.PersonID != nil {
		details.PersonID = input.PersonID.String()
	}
	if err := s.auditLog.Record(ctx, project.ID, models.AuditSessionRegistered,
		fmt.Sprintf("%s registered", session.GuestName), details); err != nil {
		logger.GuestError("audit_failed", "Failed to record registration audit entry", err, nil)
	}

	logger.Guest("registered", "Guest session registered", map[string]interface{}{
		"session_id": session.ID.String(),
		"project_id": project.ID.String(),
		"claimed":    input.PersonID != nil,
	})
	return session, nil
}

func (s *GuestServiceImpl) GetByToken(ctx context.Context, sessionToken string) (*models.GuestSession, error) {
	session, err := s.sessionRepo.GetByToken(ctx, sessionToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrSessionNotFound
	}
	return session, err
}

// UpdateClaim changes the claimed slot of a pending session. Verified or
// rejected sessions are settled and go through arbitration instead.
func (s *GuestServiceImpl) UpdateClaim(ctx context.Context, sessionToken string, personID *uuid.UUID) (*models.GuestSession, error) {
	session, err := s.GetByToken(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if session.VerificationStatus != models.VerificationPending {
		return nil, services.ErrSessionNotPending
	}

	project, err := s.projectRepo.GetByID(ctx, session.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.GuestMutationLocked() {
		return nil, services.ErrProjectLocked
	}

	if personID != nil {
		if err := s.checkPersonInProject(ctx, *personID, session.ProjectID); err != nil {
			return nil, err
		}
	}

	session.TabloPersonID = personID
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	details := &models.AuditDetails{SessionID: session.ID.String(), GuestName: session.GuestName}
	if personID != nil {
		details.PersonID = personID.String()
	}
	if err := s.auditLog.Record(ctx, session.ProjectID, models.AuditClaimChanged,
		fmt.Sprintf("%s changed claim", session.GuestName), details); err != nil {
		logger.GuestError("audit_failed", "Failed to record claim audit entry", err, nil)
	}

	return session, nil
}

func (s *GuestServiceImpl) Heartbeat(ctx context.Context, sessionToken string) error {
	session, err := s.GetByToken(ctx, sessionToken)
	if err != nil {
		return err
	}

	ttl := time.Duration(s.cfg.Guest.HeartbeatTTLSeconds) * time.Second
	if err := s.redisClient.Heartbeat(ctx, session.ID, ttl); err != nil {
		// Presence cache down: fall back to a direct database stamp so the
		// session does not look abandoned.
		logger.GuestError("heartbeat_cache_failed", "Presence cache write failed, stamping database directly", err, map[string]interface{}{
			"session_id": session.ID.String(),
		})
		return s.sessionRepo.UpdateLastActivity(ctx, session.ID, time.Now())
	}
	return nil
}

// RequestRestoreLink issues a restore token for the latest session matching
// the email. Unknown emails return nil so the endpoint does not leak which
// addresses have sessions.
func (s *GuestServiceImpl) RequestRestoreLink(ctx context.Context, projectID uuid.UUID, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	session, err := s.sessionRepo.GetLatestByEmail(ctx, projectID, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Guest("restore_unknown_email", "Restore requested for unknown email", map[string]interface{}{
			"project_id": projectID.String(),
		})
		return nil
	}
	if err != nil {
		return err
	}

	secret, err := utils.GenerateOpaqueToken()
	if err != nil {
		return err
	}
	hash := utils.HashToken(secret)
	expiresAt := time.Now().Add(time.Duration(s.cfg.Guest.RestoreTokenTTLMinutes) * time.Minute)

	session.RestoreTokenHash = &hash
	session.RestoreTokenExpiresAt = &expiresAt
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return err
	}

	restoreURL := fmt.Sprintf("%s/guest/restore?token=%s", strings.TrimRight(s.cfg.App.BaseURL, "/"), secret)
	if err := s.mailer.SendRestoreLink(ctx, session.GuestEmail, session.GuestName, restoreURL); err != nil {
		logger.MailError("restore_send_failed", "Failed to send restore link", err, map[string]interface{}{
			"session_id": session.ID.String(),
		})
		return err
	}

	logger.Guest("restore_link_issued", "Restore link issued", map[string]interface{}{
		"session_id": session.ID.String(),
		"expires_at": expiresAt.Format(time.RFC3339),
	})
	return nil
}

// Restore consumes a restore token. The hash is cleared and the session token
// rotated in the same update, so the link works exactly once and any stolen
// copy of the old session token dies with it.
func (s *GuestServiceImpl) Restore(ctx context.Context, restoreToken string) (*models.GuestSession, error) {
	hash := utils.HashToken(restoreToken)
	session, err := s.sessionRepo.GetByRestoreTokenHash(ctx, hash)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrRestoreTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	if !session.RestoreTokenUsable(time.Now()) {
		return nil, services.ErrRestoreTokenInvalid
	}

	newToken, err := utils.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	session.SessionToken = newToken
	session.RestoreTokenHash = nil
	session.RestoreTokenExpiresAt = nil
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	if err := s.auditLog.Record(ctx, session.ProjectID, models.AuditSessionRestored,
		fmt.Sprintf("%s restored their session", session.GuestName),
		&models.AuditDetails{SessionID: session.ID.String(), GuestName: session.GuestName}); err != nil {
		logger.GuestError("audit_failed", "Failed to record restore audit entry", err, nil)
	}

	logger.Guest("restored", "Guest session restored", map[string]interface{}{
		"session_id": session.ID.String(),
	})
	return session, nil
}

// SetBanned flips the banned flag. Banning also revokes the session's bearer
// tokens and, when it held a slot, releases the slot. The project scope is
// checked before anything is written, so a session of another partner's
// project stays untouched and looks nonexistent.
func (s *GuestServiceImpl) SetBanned(ctx context.Context, projectID, sessionID uuid.UUID, banned bool) (*models.GuestSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.ProjectID != projectID {
		return nil, services.ErrSessionNotFound
	}

	session.Banned = banned
	if banned && session.VerificationStatus == models.VerificationVerified {
		session.TabloPersonID = nil
		session.VerificationStatus = models.VerificationPending
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	auditType := models.AuditSessionUnbanned
	message := fmt.Sprintf("%s was unbanned", session.GuestName)
	if banned {
		auditType = models.AuditSessionBanned
		message = fmt.Sprintf("%s was banned", session.GuestName)

		if revoked, err := s.tokenRepo.DeleteBySession(ctx, session.ID); err != nil {
			logger.GuestError("ban_revoke_failed", "Failed to revoke tokens of banned session", err, map[string]interface{}{
				"session_id": session.ID.String(),
			})
		} else if revoked > 0 {
			logger.Auth("tokens_revoked", "Revoked tokens of banned session", map[string]interface{}{
				"session_id": session.ID.String(),
				"count":      revoked,
			})
		}
	}

	if err := s.auditLog.Record(ctx, session.ProjectID, auditType, message,
		&models.AuditDetails{SessionID: session.ID.String(), GuestName: session.GuestName}); err != nil {
		logger.GuestError("audit_failed", "Failed to record ban audit entry", err, nil)
	}

	return session, nil
}

func (s *GuestServiceImpl) ListByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]models.GuestSession, int64, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.sessionRepo.ListByProject(ctx, projectID, offset, limit)
}

func (s *GuestServiceImpl) checkPersonInProject(ctx context.Context, personID, projectID uuid.UUID) error {
	person, err := s.personRepo.GetByID(ctx, personID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrPersonNotFound
	}
	if err != nil {
		return err
	}
	if person.ProjectID != projectID {
		return services.ErrPersonNotInProject
	}
	return nil
}
