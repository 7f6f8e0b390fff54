package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

// fakeAuthService resolves a single known bearer secret.
type fakeAuthService struct {
	secret  string
	token   *models.AccessToken
	revoked []uuid.UUID
}

func (f *fakeAuthService) RegisterPartner(ctx context.Context, name, email, password string) (*models.Partner, string, error) {
	return nil, "", nil
}

func (f *fakeAuthService) LoginPartner(ctx context.Context, email, password string) (*models.Partner, string, error) {
	return nil, "", nil
}

func (f *fakeAuthService) GetGoogleAuthURL(state string) string { return "" }

func (f *fakeAuthService) HandleGoogleCallback(ctx context.Context, code string) (string, *models.Partner, error) {
	return "", nil, nil
}

func (f *fakeAuthService) GuestLogin(ctx context.Context, cred services.GuestCredential) (*services.IssuedToken, error) {
	return nil, services.ErrInvalidCredentials
}

func (f *fakeAuthService) IssueQRToken(ctx context.Context, projectID uuid.UUID) (*services.IssuedToken, error) {
	return nil, nil
}

func (f *fakeAuthService) ResolveBearer(ctx context.Context, secret string) (*models.AccessToken, error) {
	if secret == f.secret && f.token != nil {
		return f.token, nil
	}
	return nil, utils.ErrInvalidToken
}

func (f *fakeAuthService) RevokeToken(ctx context.Context, id uuid.UUID) error {
	f.revoked = append(f.revoked, id)
	f.token = nil
	return nil
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decodeEnvelope(t *testing.T, body io.Reader) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func newGuestApp(auth services.AuthService, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	chain := []fiber.Handler{GuestAuth(auth), ProjectValidity(auth)}
	chain = append(chain, extra...)
	chain = append(chain, func(c *fiber.Ctx) error {
		return utils.SuccessResponse(c, "ok", nil)
	})
	app.Get("/probe", chain...)
	return app
}

func tokenOfKind(kind models.TokenKind, project *models.Project) *models.AccessToken {
	token := &models.AccessToken{
		ID:      uuid.New(),
		Name:    string(kind),
		Project: project,
	}
	if project != nil {
		token.TabloProjectID = &project.ID
	}
	return token
}

func activeProject() *models.Project {
	return &models.Project{
		ID:                uuid.New(),
		Status:            models.ProjectStatusActive,
		AccessCodeEnabled: true,
	}
}

func TestGuestAuth_MissingAndInvalidToken(t *testing.T) {
	auth := &fakeAuthService{}
	app := newGuestApp(auth)

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	env := decodeEnvelope(t, resp.Body)
	assert.False(t, env.Success)
	assert.Equal(t, "unauthenticated", env.Error)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGuestAuth_UnknownTokenNameFailsClosed(t *testing.T) {
	auth := &fakeAuthService{secret: "s3cret", token: &models.AccessToken{ID: uuid.New(), Name: "legacy-token"}}
	app := newGuestApp(auth)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTierGates(t *testing.T) {
	project := activeProject()

	tests := []struct {
		name       string
		kind       models.TokenKind
		gate       fiber.Handler
		wantStatus int
		wantCode   string
	}{
		{"auth token passes full gate", models.TokenKindAuth, RequireFullAccess(), fiber.StatusOK, ""},
		{"qr token passes full gate", models.TokenKindQRRegistration, RequireFullAccess(), fiber.StatusOK, ""},
		{"share token fails full gate", models.TokenKindShare, RequireFullAccess(), fiber.StatusForbidden, utils.ErrCodeInsufficientPermissions},
		{"preview token fails full gate", models.TokenKindPreview, RequireFullAccess(), fiber.StatusForbidden, utils.ErrCodeInsufficientPermissions},
		{"share token passes share gate", models.TokenKindShare, RequireShareAccess(), fiber.StatusOK, ""},
		{"preview token fails share gate", models.TokenKindPreview, RequireShareAccess(), fiber.StatusForbidden, utils.ErrCodeInsufficientPermissions},
		{"share token fails finalize gate", models.TokenKindShare, RequireFinalizeAccess(), fiber.StatusForbidden, utils.ErrCodeFinalizeRequiresFull},
		{"auth token passes finalize gate", models.TokenKindAuth, RequireFinalizeAccess(), fiber.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuthService{secret: "s3cret", token: tokenOfKind(tt.kind, project)}
			app := newGuestApp(auth, tt.gate)

			req := httptest.NewRequest("GET", "/probe", nil)
			req.Header.Set("Authorization", "Bearer s3cret")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				env := decodeEnvelope(t, resp.Body)
				assert.Equal(t, tt.wantCode, env.Error)
			}
		})
	}
}

func TestProjectValidity_RevokesOnInvalidProject(t *testing.T) {
	project := activeProject()
	project.Status = models.ProjectStatusDone

	auth := &fakeAuthService{secret: "s3cret", token: tokenOfKind(models.TokenKindAuth, project)}
	tokenID := auth.token.ID
	app := newGuestApp(auth)

	req := httptest.NewRequest("GET", "/probe", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	env := decodeEnvelope(t, resp.Body)
	assert.Equal(t, utils.ErrCodeProjectInvalid, env.Error)

	// The credential was revoked in passing, so the retry cannot even resolve
	assert.Equal(t, []uuid.UUID{tokenID}, auth.revoked)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProjectValidity_PerKindRules(t *testing.T) {
	tests := []struct {
		name   string
		kind   models.TokenKind
		mutate func(*models.Project)
		want   int
	}{
		{"auth token on active project", models.TokenKindAuth, func(p *models.Project) {}, fiber.StatusOK},
		{"auth token with disabled code", models.TokenKindAuth, func(p *models.Project) { p.AccessCodeEnabled = false }, fiber.StatusForbidden},
		{"share token on archived project", models.TokenKindShare, func(p *models.Project) { p.Status = models.ProjectStatusArchived }, fiber.StatusForbidden},
		// Share links survive finalization; only archiving kills them
		{"share token on finalized project", models.TokenKindShare, func(p *models.Project) { p.Status = models.ProjectStatusDone }, fiber.StatusOK},
		{"qr token on project in print", models.TokenKindQRRegistration, func(p *models.Project) { p.Status = models.ProjectStatusInPrint }, fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := activeProject()
			tt.mutate(project)
			auth := &fakeAuthService{secret: "s3cret", token: tokenOfKind(tt.kind, project)}
			app := newGuestApp(auth)

			req := httptest.NewRequest("GET", "/probe", nil)
			req.Header.Set("Authorization", "Bearer s3cret")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
