package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/infrastructure/oauth"
	"github.com/tablostudio/tablo-api/pkg/logger"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

type AuthServiceImpl struct {
	partnerRepo repositories.PartnerRepository
	projectRepo repositories.ProjectRepository
	tokenRepo   repositories.AccessTokenRepository
	auditLog    services.AuditLogService
	googleOAuth *oauth.GoogleOAuth
	jwtSecret   string
}

func NewAuthService(
	partnerRepo repositories.PartnerRepository,
	projectRepo repositories.ProjectRepository,
	tokenRepo repositories.AccessTokenRepository,
	auditLog services.AuditLogService,
	googleOAuth *oauth.GoogleOAuth,
	jwtSecret string,
) services.AuthService {
	return &AuthServiceImpl{
		partnerRepo: partnerRepo,
		projectRepo: projectRepo,
		tokenRepo:   tokenRepo,
		auditLog:    auditLog,
		googleOAuth: googleOAuth,
		jwtSecret:   jwtSecret,
	}
}

func (s *AuthServiceImpl) RegisterPartner(ctx context.Context, name, email, password string) (*models.Partner, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.partnerRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", services.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	partner := &models.Partner{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Provider: "local",
		IsActive: true,
	}
	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		return nil, "", err
	}

	jwtToken, err := utils.GeneratePartnerToken(partner, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	logger.Auth("partner_registered", "Partner account created", map[string]interface{}{
		"partner_id": partner.ID.String(),
	})
	return partner, jwtToken, nil
}

func (s *AuthServiceImpl) LoginPartner(ctx context.Context, email, password string) (*models.Partner, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	partner, err := s.partnerRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", services.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !partner.IsActive {
		return nil, "", services.ErrAccountInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(partner.Password), []byte(password)) != nil {
		logger.Auth("partner_login_failed", "Wrong password", map[string]interface{}{
			"partner_id": partner.ID.String(),
		})
		return nil, "", services.ErrInvalidCredentials
	}

	now := time.Now()
	partner.LastLogin = &now
	if err := s.partnerRepo.Update(ctx, partner.ID, partner); err != nil {
		logger.AuthError("last_login_update_failed", "Failed to stamp last login", err, nil)
	}

	jwtToken, err := utils.GeneratePartnerToken(partner, s.jwtSecret)
	if err != nil {
		return nil, "", err
	}

	logger.Auth("partner_login", "Partner logged in", map[string]interface{}{
		"partner_id": partner.ID.String(),
	})
	return partner, jwtToken, nil
}

func (s *AuthServiceImpl) GetGoogleAuthURL(state string) string {
	return s.googleOAuth.GetAuthURL(state)
}

func (s *AuthServiceImpl) HandleGoogleCallback(ctx context.Context, code string) (string, *models.Partner, error) {
	token, err := s.googleOAuth.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	userInfo, err := s.googleOAuth.GetUserInfo(ctx, token)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user info: %w", err)
	}

	partner, err := s.findOrCreateGooglePartner(ctx, userInfo)
	if err != nil {
		return "", nil, err
	}
	if !partner.IsActive {
		return "", nil, services.ErrAccountInactive
	}

	now := time.Now()
	partner.LastLogin = &now
	if err := s.partnerRepo.Update(ctx, partner.ID, partner); err != nil {
		logger.AuthError("last_login_update_failed", "Failed to stamp last login", err, nil)
	}

	jwtToken, err := utils.GeneratePartnerToken(partner, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	logger.Auth("google_login", "Partner logged in with Google", map[string]interface{}{
		"partner_id": partner.ID.String(),
	})
	return jwtToken, partner, nil
}

func (s *AuthServiceImpl) findOrCreateGooglePartner(ctx context.Context, info *services.GoogleUserInfo) (*models.Partner, error) {
	partner, err := s.partnerRepo.GetByProviderID(ctx, "google", info.ID)
	if err == nil {
		return partner, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Link by email when the account already exists with a password login
	partner, err = s.partnerRepo.GetByEmail(ctx, strings.ToLower(info.Email))
	if err == nil {
		partner.Provider = "google"
		partner.ProviderID = info.ID
		if err := s.partnerRepo.Update(ctx, partner.ID, partner); err != nil {
			return nil, err
		}
		return partner, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	partner = &models.Partner{
		Name:       info.Name,
		Email:      strings.ToLower(info.Email),
		Provider:   "google",
		ProviderID: info.ID,
		IsActive:   true,
	}
	if err := s.partnerRepo.Create(ctx, partner); err != nil {
		return nil, err
	}
	logger.Auth("partner_registered", "Partner account created from Google profile", map[string]interface{}{
		"partner_id": partner.ID.String(),
	})
	return partner, nil
}

// GuestLogin validates exactly one presented credential and issues the bearer
// token whose stored name encodes the granted tier. Presenting zero or more
// than one credential is rejected before any lookup.
func (s *AuthServiceImpl) GuestLogin(ctx context.Context, cred services.GuestCredential) (*services.IssuedToken, error) {
	presented := 0
	if cred.AccessCode != "" {
		presented++
	}
	if cred.ShareToken != "" {
		presented++
	}
	if cred.PreviewToken != "" {
		presented++
	}
	if presented == 0 {
		return nil, services.ErrNoCredential
	}
	if presented > 1 {
		return nil, services.ErrMultipleCredentials
	}

	var (
		project *models.Project
		kind    models.TokenKind
		err     error
	)
	switch {
	case cred.AccessCode != "":
		project, err = s.projectRepo.GetByAccessCode(ctx, strings.ToUpper(strings.TrimSpace(cred.AccessCode)))
		kind = models.TokenKindAuth
	case cred.ShareToken != "":
		project, err = s.projectRepo.GetByShareToken(ctx, cred.ShareToken)
		kind = models.TokenKindShare
	default:
		project, err = s.projectRepo.GetByPreviewToken(ctx, cred.PreviewToken)
		kind = models.TokenKindPreview
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// Access-code logins additionally honor the per-project code settings.
	if kind == models.TokenKindAuth && !project.AccessCodeUsable(time.Now()) {
		return nil, services.ErrInvalidCredentials
	}

	issued, err := s.issueToken(ctx, kind, project, nil)
	if err != nil {
		return nil, err
	}

	logger.Auth("guest_login", "Guest credential accepted", map[string]interface{}{
		"project_id": project.ID.String(),
		"token_name": string(kind),
		"tier":       string(issued.Tier),
	})
	return issued, nil
}

// IssueQRToken mints a qr-registration token for on-site QR flows. The kind
// maps to the full tier on purpose; demoting it would break deployed posters.
func (s *AuthServiceImpl) IssueQRToken(ctx context.Context, projectID uuid.UUID) (*services.IssuedToken, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	issued, err := s.issueToken(ctx, models.TokenKindQRRegistration, project, nil)
	if err != nil {
		return nil, err
	}

	logger.Auth("qr_token_issued", "QR registration token issued", map[string]interface{}{
		"project_id": project.ID.String(),
	})
	return issued, nil
}

func (s *AuthServiceImpl) issueToken(ctx context.Context, kind models.TokenKind, project *models.Project, sessionID *uuid.UUID) (*services.IssuedToken, error) {
	secret, err := utils.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	token := &models.AccessToken{
		TokenHash:      utils.HashToken(secret),
		Name:           string(kind),
		TabloProjectID: &project.ID,
		GuestSessionID: sessionID,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	if err := s.auditLog.Record(ctx, project.ID, models.AuditTokenIssued,
		fmt.Sprintf("credential %s issued", kind),
		&models.AuditDetails{TokenID: token.ID.String(), TokenName: string(kind)}); err != nil {
		logger.AuthError("audit_failed", "Failed to record token issue audit entry", err, nil)
	}

	return &services.IssuedToken{
		Token:   token,
		Secret:  secret,
		Tier:    kind.Tier(),
		Project: project,
	}, nil
}

// ResolveBearer maps a presented secret onto its stored credential. Expired
// rows are deleted on sight so they cannot resolve twice.
func (s *AuthServiceImpl) ResolveBearer(ctx context.Context, secret string) (*models.AccessToken, error) {
	if secret == "" {
		return nil, utils.ErrMissingToken
	}

	token, err := s.tokenRepo.GetByHash(ctx, utils.HashToken(secret))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if token.Expired(time.Now()) {
		if err := s.tokenRepo.Delete(ctx, token.ID); err != nil {
			logger.AuthError("expired_delete_failed", "Failed to delete expired token", err, map[string]interface{}{
				"token_id": token.ID.String(),
			})
		}
		return nil, utils.ErrExpiredToken
	}

	if err := s.tokenRepo.Touch(ctx, token.ID, time.Now()); err != nil {
		logger.AuthError("touch_failed", "Failed to stamp token usage", err, nil)
	}
	return token, nil
}

func (s *AuthServiceImpl) RevokeToken(ctx context.Context, id uuid.UUID) error {
	if err := s.tokenRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Auth("token_revoked", "Credential revoked", map[string]interface{}{
		"token_id": id.String(),
	})
	return nil
}
