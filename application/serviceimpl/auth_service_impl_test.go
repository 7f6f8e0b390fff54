package serviceimpl

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

type fakePartnerRepo struct {
	partners map[uuid.UUID]*models.Partner
}

func (f *fakePartnerRepo) Create(ctx context.Context, p *models.Partner) error {
	if f.partners == nil {
		f.partners = make(map[uuid.UUID]*models.Partner)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.partners[p.ID] = p
	return nil
}

func (f *fakePartnerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakePartnerRepo) GetByEmail(ctx context.Context, email string) (*models.Partner, error) {
	for _, p := range f.partners {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePartnerRepo) GetByProviderID(ctx context.Context, provider, providerID string) (*models.Partner, error) {
	for _, p := range f.partners {
		if p.Provider == provider && p.ProviderID == providerID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePartnerRepo) Update(ctx context.Context, id uuid.UUID, p *models.Partner) error {
	if _, ok := f.partners[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.partners[id] = p
	return nil
}

// memTokenRepo stores issued tokens so ResolveBearer round-trips work.
type memTokenRepo struct {
	tokens map[uuid.UUID]*models.AccessToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[uuid.UUID]*models.AccessToken)}
}

func (m *memTokenRepo) Create(ctx context.Context, t *models.AccessToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.tokens[t.ID] = t
	return nil
}

func (m *memTokenRepo) GetByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	for _, t := range m.tokens {
		if t.TokenHash == hash {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memTokenRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	t, ok := m.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.LastUsedAt = &at
	return nil
}

func (m *memTokenRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.tokens, id)
	return nil
}

func (m *memTokenRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	for id, t := range m.tokens {
		if t.TabloProjectID != nil && *t.TabloProjectID == projectID {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

func (m *memTokenRepo) DeleteBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	for id, t := range m.tokens {
		if t.GuestSessionID != nil && *t.GuestSessionID == sessionID {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

func (m *memTokenRepo) RevokeForInvalidProjects(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type authFixture struct {
	partners *fakePartnerRepo
	projects *fakeProjectRepo
	tokens   *memTokenRepo
	svc      services.AuthService

	project *models.Project
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		partners: &fakePartnerRepo{},
		projects: &fakeProjectRepo{},
		tokens:   newMemTokenRepo(),
	}

	f.project = &models.Project{
		SchoolName:        "Petőfi Sándor Gimnázium",
		ClassName:         "12.A",
		Status:            models.ProjectStatusActive,
		AccessCode:        "KH7WXQ2M",
		AccessCodeEnabled: true,
		ShareToken:        "share-secret",
		PreviewToken:      "preview-secret",
	}
	require.NoError(t, f.projects.Create(context.Background(), f.project))

	f.svc = NewAuthService(f.partners, f.projects, f.tokens, &fakeAuditLog{}, nil, "test-secret")
	return f
}

func TestRegisterAndLoginPartner(t *testing.T) {
	f := newAuthFixture(t)

	partner, token, err := f.svc.RegisterPartner(context.Background(), "Fény Stúdió", "Studio@Example.Com", "hunter2秘密")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "studio@example.com", partner.Email)
	assert.NotEqual(t, "hunter2秘密", partner.Password, "password must be stored hashed")

	_, _, err = f.svc.RegisterPartner(context.Background(), "Másoló", "studio@example.com", "x")
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	_, token, err = f.svc.LoginPartner(context.Background(), "studio@example.com", "hunter2秘密")
	require.NoError(t, err)

	ctx, err := utils.ValidatePartnerToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, partner.ID, ctx.ID)

	_, _, err = f.svc.LoginPartner(context.Background(), "studio@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, _, err = f.svc.LoginPartner(context.Background(), "nobody@example.com", "x")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLoginPartner_InactiveAccount(t *testing.T) {
	f := newAuthFixture(t)

	partner, _, err := f.svc.RegisterPartner(context.Background(), "Alvó", "sleep@example.com", "pw")
	require.NoError(t, err)
	partner.IsActive = false

	_, _, err = f.svc.LoginPartner(context.Background(), "sleep@example.com", "pw")
	assert.ErrorIs(t, err, services.ErrAccountInactive)
}

func TestGuestLogin_CredentialCounting(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.GuestLogin(context.Background(), services.GuestCredential{})
	assert.ErrorIs(t, err, services.ErrNoCredential)

	_, err = f.svc.GuestLogin(context.Background(), services.GuestCredential{
		AccessCode: "KH7WXQ2M",
		ShareToken: "share-secret",
	})
	assert.ErrorIs(t, err, services.ErrMultipleCredentials)
}

func TestGuestLogin_TierByCredential(t *testing.T) {
	tests := []struct {
		name     string
		cred     services.GuestCredential
		wantName models.TokenKind
		wantTier models.AccessTier
	}{
		{"access code", services.GuestCredential{AccessCode: "kh7wxq2m"}, models.TokenKindAuth, models.TierFull},
		{"share link", services.GuestCredential{ShareToken: "share-secret"}, models.TokenKindShare, models.TierShare},
		{"preview link", services.GuestCredential{PreviewToken: "preview-secret"}, models.TokenKindPreview, models.TierPreview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			issued, err := f.svc.GuestLogin(context.Background(), tt.cred)
			require.NoError(t, err)
			assert.Equal(t, string(tt.wantName), issued.Token.Name)
			assert.Equal(t, tt.wantTier, issued.Tier)
			assert.NotEmpty(t, issued.Secret)
			assert.Equal(t, utils.HashToken(issued.Secret), issued.Token.TokenHash, "only the hash is stored")

			resolved, err := f.svc.ResolveBearer(context.Background(), issued.Secret)
			require.NoError(t, err)
			assert.Equal(t, issued.Token.ID, resolved.ID)
		})
	}
}

func TestGuestLogin_RejectsUnusableAccessCode(t *testing.T) {
	f := newAuthFixture(t)
	f.project.AccessCodeEnabled = false

	_, err := f.svc.GuestLogin(context.Background(), services.GuestCredential{AccessCode: "KH7WXQ2M"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestGuestLogin_UnknownCredential(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.GuestLogin(context.Background(), services.GuestCredential{ShareToken: "no-such"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestIssueQRToken_GrantsFullTier(t *testing.T) {
	f := newAuthFixture(t)

	issued, err := f.svc.IssueQRToken(context.Background(), f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.TokenKindQRRegistration), issued.Token.Name)
	assert.Equal(t, models.TierFull, issued.Tier)

	_, err = f.svc.IssueQRToken(context.Background(), uuid.New())
	assert.ErrorIs(t, err, services.ErrProjectNotFound)
}

func TestResolveBearer_ExpiredTokenIsDeleted(t *testing.T) {
	f := newAuthFixture(t)

	issued, err := f.svc.GuestLogin(context.Background(), services.GuestCredential{ShareToken: "share-secret"})
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	issued.Token.ExpiresAt = &past

	_, err = f.svc.ResolveBearer(context.Background(), issued.Secret)
	assert.ErrorIs(t, err, utils.ErrExpiredToken)

	// Deleted on sight: the secret can never resolve again
	_, err = f.svc.ResolveBearer(context.Background(), issued.Secret)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestResolveBearer_EmptySecret(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.ResolveBearer(context.Background(), "")
	assert.ErrorIs(t, err, utils.ErrMissingToken)
}
