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
	"github.com/tablostudio/tablo-api/infrastructure/redis"
	"github.com/tablostudio/tablo-api/pkg/config"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

type fakePersonRepo struct {
	persons map[uuid.UUID]*models.Person
}

func (f *fakePersonRepo) Create(ctx context.Context, p *models.Person) error {
	if f.persons == nil {
		f.persons = make(map[uuid.UUID]*models.Person)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.persons[p.ID] = p
	return nil
}

func (f *fakePersonRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	p, ok := f.persons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakePersonRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Person, error) {
	var out []models.Person
	for _, p := range f.persons {
		if p.ProjectID == projectID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePersonRepo) Update(ctx context.Context, id uuid.UUID, p *models.Person) error { return nil }
func (f *fakePersonRepo) Delete(ctx context.Context, id uuid.UUID) error                   { return nil }
func (f *fakePersonRepo) Count(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return int64(len(f.persons)), nil
}

type fakeProjectRepo struct {
	projects map[uuid.UUID]*models.Project
}

func (f *fakeProjectRepo) Create(ctx context.Context, p *models.Project) error {
	if f.projects == nil {
		f.projects = make(map[uuid.UUID]*models.Project)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeProjectRepo) GetByAccessCode(ctx context.Context, code string) (*models.Project, error) {
	for _, p := range f.projects {
		if p.AccessCode == code {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProjectRepo) GetByShareToken(ctx context.Context, token string) (*models.Project, error) {
	for _, p := range f.projects {
		if p.ShareToken == token {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProjectRepo) GetByPreviewToken(ctx context.Context, token string) (*models.Project, error) {
	for _, p := range f.projects {
		if p.PreviewToken == token {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProjectRepo) ListByPartner(ctx context.Context, partnerID uuid.UUID, offset, limit int) ([]models.Project, int64, error) {
	return nil, 0, nil
}

func (f *fakeProjectRepo) Update(ctx context.Context, id uuid.UUID, p *models.Project) error {
	return nil
}

func (f *fakeProjectRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error {
	p, ok := f.projects[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

type fakeTokenRepo struct {
	deletedSessions []uuid.UUID
}

func (f *fakeTokenRepo) Create(ctx context.Context, t *models.AccessToken) error { return nil }
func (f *fakeTokenRepo) GetByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTokenRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error { return nil }
func (f *fakeTokenRepo) Delete(ctx context.Context, id uuid.UUID) error              { return nil }
func (f *fakeTokenRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	return 0, nil
}
func (f *fakeTokenRepo) DeleteBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	f.deletedSessions = append(f.deletedSessions, sessionID)
	return 1, nil
}
func (f *fakeTokenRepo) RevokeForInvalidProjects(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakeMailer struct {
	sent []string // restore URLs, in order
	to   []string
}

func (f *fakeMailer) SendRestoreLink(ctx context.Context, to, guestName, restoreURL string) error {
	f.to = append(f.to, to)
	f.sent = append(f.sent, restoreURL)
	return nil
}

type guestFixture struct {
	sessions *fakeSessionRepo
	persons  *fakePersonRepo
	projects *fakeProjectRepo
	tokens   *fakeTokenRepo
	mailer   *fakeMailer
	svc      services.GuestService

	project *models.Project
	person  *models.Person
}

func newGuestFixture(t *testing.T) *guestFixture {
	t.Helper()

	f := &guestFixture{
		sessions: newFakeSessionRepo(),
		persons:  &fakePersonRepo{},
		projects: &fakeProjectRepo{},
		tokens:   &fakeTokenRepo{},
		mailer:   &fakeMailer{},
	}

	f.project = &models.Project{
		SchoolName: "Szent István Gimnázium",
		ClassName:  "12.B",
		Status:     models.ProjectStatusActive,
	}
	require.NoError(t, f.projects.Create(context.Background(), f.project))

	f.person = &models.Person{ProjectID: f.project.ID, Name: "Kovács Anna", Type: models.PersonTypeStudent}
	require.NoError(t, f.persons.Create(context.Background(), f.person))

	cfg := &config.Config{}
	cfg.App.BaseURL = "https://tablo.example.com"
	cfg.Guest.RestoreTokenTTLMinutes = 30
	cfg.Guest.HeartbeatTTLSeconds = 120

	// Unreachable presence cache: heartbeat falls back to direct DB stamps
	redisClient := redis.NewRedisClient(redis.RedisConfig{Host: "127.0.0.1", Port: "1"})

	f.svc = NewGuestService(f.sessions, f.persons, f.projects, f.tokens, redisClient, f.mailer, &fakeAuditLog{}, cfg)
	return f
}

func (f *guestFixture) register(t *testing.T, name, email string, personID *uuid.UUID) *models.GuestSession {
	t.Helper()
	session, err := f.svc.Register(context.Background(), services.RegisterGuestInput{
		ProjectID: f.project.ID,
		Name:      name,
		Email:     email,
		PersonID:  personID,
	})
	require.NoError(t, err)
	return session
}

func TestRegister_CreatesPendingSession(t *testing.T) {
	f := newGuestFixture(t)

	session := f.register(t, "  Kovács Anna  ", "Anna@Example.Com", &f.person.ID)

	assert.Equal(t, "Kovács Anna", session.GuestName)
	assert.Equal(t, "anna@example.com", session.GuestEmail)
	assert.Equal(t, models.VerificationPending, session.VerificationStatus)
	assert.NotEmpty(t, session.SessionToken)
	assert.Equal(t, models.ClaimPending, session.ClaimState().Kind)
}

func TestRegister_UnknownProject(t *testing.T) {
	f := newGuestFixture(t)

	_, err := f.svc.Register(context.Background(), services.RegisterGuestInput{
		ProjectID: uuid.New(),
		Name:      "Valaki",
	})
	assert.ErrorIs(t, err, services.ErrProjectNotFound)
}

func TestRegister_LockedProject(t *testing.T) {
	f := newGuestFixture(t)
	f.project.Status = models.ProjectStatusInPrint

	_, err := f.svc.Register(context.Background(), services.RegisterGuestInput{
		ProjectID: f.project.ID,
		Name:      "Késő Kata",
	})
	assert.ErrorIs(t, err, services.ErrProjectLocked)
}

func TestRegister_PersonFromOtherProject(t *testing.T) {
	f := newGuestFixture(t)

	other := &models.Person{ProjectID: uuid.New(), Name: "Idegen Imre", Type: models.PersonTypeStudent}
	require.NoError(t, f.persons.Create(context.Background(), other))

	_, err := f.svc.Register(context.Background(), services.RegisterGuestInput{
		ProjectID: f.project.ID,
		Name:      "Próbálkozó",
		PersonID:  &other.ID,
	})
	assert.ErrorIs(t, err, services.ErrPersonNotInProject)

	_, err = f.svc.Register(context.Background(), services.RegisterGuestInput{
		ProjectID: f.project.ID,
		Name:      "Próbálkozó",
		PersonID:  &[]uuid.UUID{uuid.New()}[0],
	})
	assert.ErrorIs(t, err, services.ErrPersonNotFound)
}

func TestUpdateClaim_PendingOnly(t *testing.T) {
	f := newGuestFixture(t)
	session := f.register(t, "Nagy Péter", "", nil)

	updated, err := f.svc.UpdateClaim(context.Background(), session.SessionToken, &f.person.ID)
	require.NoError(t, err)
	assert.Equal(t, f.person.ID, *updated.TabloPersonID)

	// Settled sessions go through arbitration, not self-service claims
	stored, _ := f.sessions.GetByID(context.Background(), session.ID)
	stored.VerificationStatus = models.VerificationVerified
	require.NoError(t, f.sessions.Update(context.Background(), stored))

	_, err = f.svc.UpdateClaim(context.Background(), session.SessionToken, nil)
	assert.ErrorIs(t, err, services.ErrSessionNotPending)
}

func TestHeartbeat_FallsBackToDatabase(t *testing.T) {
	f := newGuestFixture(t)
	session := f.register(t, "Élő Erzsi", "", nil)

	stored, err := f.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	stored.LastActivityAt = nil
	require.NoError(t, f.sessions.Update(context.Background(), stored))

	// Presence cache is unreachable in the fixture, so this exercises the
	// direct stamp path.
	require.NoError(t, f.svc.Heartbeat(context.Background(), session.SessionToken))

	stamped, err := f.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.NotNil(t, stamped.LastActivityAt)
}

func TestRestoreLink_UnknownEmailStaysSilent(t *testing.T) {
	f := newGuestFixture(t)

	err := f.svc.RequestRestoreLink(context.Background(), f.project.ID, "senki@example.com")
	require.NoError(t, err)
	assert.Empty(t, f.mailer.sent)
}

func TestRestore_SingleUseAndTokenRotation(t *testing.T) {
	f := newGuestFixture(t)
	session := f.register(t, "Szabó Eszter", "eszter@example.com", nil)
	oldToken := session.SessionToken

	require.NoError(t, f.svc.RequestRestoreLink(context.Background(), f.project.ID, "ESZTER@example.com"))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "eszter@example.com", f.mailer.to[0])
	assert.Contains(t, f.mailer.sent[0], "https://tablo.example.com/guest/restore?token=")

	secret := f.mailer.sent[0][len("https://tablo.example.com/guest/restore?token="):]

	restored, err := f.svc.Restore(context.Background(), secret)
	require.NoError(t, err)
	assert.Equal(t, session.ID, restored.ID)
	assert.NotEqual(t, oldToken, restored.SessionToken)
	assert.Nil(t, restored.RestoreTokenHash)

	// The old session token died with the rotation
	_, err = f.svc.GetByToken(context.Background(), oldToken)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	// Second consumption of the same link fails
	_, err = f.svc.Restore(context.Background(), secret)
	assert.ErrorIs(t, err, services.ErrRestoreTokenInvalid)
}

func TestRestore_ExpiredToken(t *testing.T) {
	f := newGuestFixture(t)
	session := f.register(t, "Tóth Gábor", "gabor@example.com", nil)

	secret, err := utils.GenerateOpaqueToken()
	require.NoError(t, err)
	hash := utils.HashToken(secret)
	past := time.Now().Add(-time.Minute)

	stored, err := f.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	stored.RestoreTokenHash = &hash
	stored.RestoreTokenExpiresAt = &past
	require.NoError(t, f.sessions.Update(context.Background(), stored))

	_, err = f.svc.Restore(context.Background(), secret)
	assert.ErrorIs(t, err, services.ErrRestoreTokenInvalid)
}

func TestSetBanned_ReleasesSlotAndRevokesTokens(t *testing.T) {
	f := newGuestFixture(t)
	session := f.register(t, "Rossz Rudi", "", &f.person.ID)

	stored, err := f.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	stored.VerificationStatus = models.VerificationVerified
	require.NoError(t, f.sessions.Update(context.Background(), stored))

	banned, err := f.svc.SetBanned(context.Background(), f.project.ID, session.ID, true)
	require.NoError(t, err)
	assert.True(t, banned.Banned)
	assert.Nil(t, banned.TabloPersonID)
	assert.Equal(t, models.VerificationPending, banned.VerificationStatus)
	assert.False(t, banned.EligibleOwner())
	assert.Equal(t, []uuid.UUID{session.ID}, f.tokens.deletedSessions)

	unbanned, err := f.svc.SetBanned(context.Background(), f.project.ID, session.ID, false)
	require.NoError(t, err)
	assert.False(t, unbanned.Banned)
	assert.True(t, unbanned.EligibleOwner())
}

func TestSetBanned_SessionFromAnotherProject(t *testing.T) {
	f := newGuestFixture(t)
	session := f.register(t, "Másik Misi", "", nil)

	// Scoped to a different project the session looks nonexistent and stays
	// untouched, tokens included.
	_, err := f.svc.SetBanned(context.Background(), uuid.New(), session.ID, true)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	stored, err := f.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.False(t, stored.Banned)
	assert.Empty(t, f.tokens.deletedSessions)
}
