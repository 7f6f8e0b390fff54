package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
)

type GoogleUserInfo struct {
	ID         string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
	Picture    string
}

// GuestCredential is what a guest login presents: exactly one of the three
// project credentials.
type GuestCredential struct {
	AccessCode   string
	ShareToken   string
	PreviewToken string
}

// IssuedToken carries the plaintext bearer secret exactly once, at issue
// time. Only its hash is persisted.
type IssuedToken struct {
	Token   *models.AccessToken
	Secret  string
	Tier    models.AccessTier
	Project *models.Project
}

type AuthService interface {
	// Partner account auth (studio panel)
	RegisterPartner(ctx context.Context, name, email, password string) (*models.Partner, string, error)
	LoginPartner(ctx context.Context, email, password string) (*models.Partner, string, error)

	// GetGoogleAuthURL returns the Google OAuth authorization URL
	GetGoogleAuthURL(state string) string

	// HandleGoogleCallback processes the Google OAuth callback
	HandleGoogleCallback(ctx context.Context, code string) (token string, partner *models.Partner, err error)

	// GuestLogin validates exactly one project credential and issues the
	// matching bearer token (auth, share or preview kind).
	GuestLogin(ctx context.Context, cred GuestCredential) (*IssuedToken, error)

	// IssueQRToken issues a full-tier qr-registration token for a project.
	IssueQRToken(ctx context.Context, projectID uuid.UUID) (*IssuedToken, error)

	// ResolveBearer maps a presented bearer secret to its stored credential.
	// Fails closed: unknown or expired secrets return an error.
	ResolveBearer(ctx context.Context, secret string) (*models.AccessToken, error)

	// RevokeToken deletes a credential so subsequent requests fail fast.
	RevokeToken(ctx context.Context, id uuid.UUID) error
}
