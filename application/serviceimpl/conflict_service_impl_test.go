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
	"github.com/tablostudio/tablo-api/domain/repositories"
	"github.com/tablostudio/tablo-api/domain/services"
)

// fakeSessionRepo is an in-memory GuestSessionRepository. InTx runs the
// callback against the same store; rollback is not simulated because the
// service under test never continues after a failed write.
type fakeSessionRepo struct {
	sessions map[uuid.UUID]*models.GuestSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*models.GuestSession)}
}

func (f *fakeSessionRepo) add(s *models.GuestSession) *models.GuestSession {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.sessions[s.ID] = s
	return s
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *models.GuestSession) error {
	f.add(s)
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.GuestSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) GetByToken(ctx context.Context, token string) (*models.GuestSession, error) {
	for _, s := range f.sessions {
		if s.SessionToken == token {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessionRepo) Update(ctx context.Context, s *models.GuestSession) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) UpdateLastActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	s, ok := f.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.LastActivityAt = &at
	return nil
}

func (f *fakeSessionRepo) ListByProject(ctx context.Context, projectID uuid.UUID, offset, limit int) ([]models.GuestSession, int64, error) {
	var out []models.GuestSession
	for _, s := range f.sessions {
		if s.ProjectID == projectID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeSessionRepo) GetLatestByEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.GuestSession, error) {
	var latest *models.GuestSession
	for _, s := range f.sessions {
		if s.ProjectID == projectID && s.GuestEmail == email {
			if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
				latest = s
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeSessionRepo) GetByRestoreTokenHash(ctx context.Context, hash string) (*models.GuestSession, error) {
	for _, s := range f.sessions {
		if s.RestoreTokenHash != nil && *s.RestoreTokenHash == hash {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessionRepo) FindOwner(ctx context.Context, projectID, personID uuid.UUID, excludeSessionID *uuid.UUID) (*models.GuestSession, error) {
	for _, s := range f.sessions {
		if excludeSessionID != nil && s.ID == *excludeSessionID {
			continue
		}
		if s.ProjectID != projectID || s.VerificationStatus != models.VerificationVerified {
			continue
		}
		if s.TabloPersonID != nil && *s.TabloPersonID == personID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) CountPending(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	for _, s := range f.sessions {
		if s.ProjectID == projectID && s.VerificationStatus == models.VerificationPending {
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionRepo) CountConflicting(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	for _, s := range f.sessions {
		if s.ProjectID != projectID || s.VerificationStatus != models.VerificationPending || s.TabloPersonID == nil {
			continue
		}
		owner, _ := f.FindOwner(ctx, projectID, *s.TabloPersonID, &s.ID)
		if owner != nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionRepo) ListPendingWithOwners(ctx context.Context, projectID uuid.UUID) ([]repositories.PendingSessionRow, error) {
	var rows []repositories.PendingSessionRow
	for _, s := range f.sessions {
		if s.ProjectID != projectID || s.VerificationStatus != models.VerificationPending || s.TabloPersonID == nil {
			continue
		}
		row := repositories.PendingSessionRow{Session: *s}
		owner, _ := f.FindOwner(ctx, projectID, *s.TabloPersonID, &s.ID)
		if owner != nil {
			row.OwnerID = &owner.ID
			row.OwnerName = owner.GuestName
			row.HasConflict = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (f *fakeSessionRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.GuestSession, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeSessionRepo) FindOwnerForUpdate(ctx context.Context, projectID, personID uuid.UUID, excludeSessionID *uuid.UUID) (*models.GuestSession, error) {
	return f.FindOwner(ctx, projectID, personID, excludeSessionID)
}

func (f *fakeSessionRepo) InTx(ctx context.Context, fn func(tx repositories.GuestSessionRepository) error) error {
	return fn(f)
}

func (f *fakeSessionRepo) PurgeExpiredRestoreTokens(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, s := range f.sessions {
		if s.RestoreTokenHash != nil && s.RestoreTokenExpiresAt != nil && !s.RestoreTokenExpiresAt.After(now) {
			s.RestoreTokenHash = nil
			s.RestoreTokenExpiresAt = nil
			n++
		}
	}
	return n, nil
}

// fakeAuditLog collects entries in memory.
type fakeAuditLog struct {
	entries []models.AuditLog
}

func (f *fakeAuditLog) Record(ctx context.Context, projectID uuid.UUID, auditType models.AuditType, message string, details *models.AuditDetails) error {
	f.entries = append(f.entries, models.AuditLog{ProjectID: projectID, AuditType: auditType, Message: message})
	return nil
}

func (f *fakeAuditLog) GetByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]models.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func (f *fakeAuditLog) GetByProjectAndType(ctx context.Context, projectID uuid.UUID, auditType models.AuditType, page, limit int) ([]models.AuditLog, int64, error) {
	var out []models.AuditLog
	for _, e := range f.entries {
		if e.AuditType == auditType {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAuditLog) byType(t models.AuditType) []models.AuditLog {
	out, _, _ := f.GetByProjectAndType(context.Background(), uuid.Nil, t, 1, 100)
	return out
}

func newConflictFixture() (*fakeSessionRepo, *fakeAuditLog, services.ConflictService) {
	repo := newFakeSessionRepo()
	audit := &fakeAuditLog{}
	return repo, audit, NewConflictService(repo, audit)
}

func pendingSession(projectID uuid.UUID, name string, personID *uuid.UUID) *models.GuestSession {
	return &models.GuestSession{
		ID:                 uuid.New(),
		ProjectID:          projectID,
		SessionToken:       uuid.NewString(),
		GuestName:          name,
		TabloPersonID:      personID,
		VerificationStatus: models.VerificationPending,
	}
}

func TestResolveConflict_ApproveFirstClaimant(t *testing.T) {
	repo, audit, svc := newConflictFixture()
	projectID := uuid.New()
	personID := uuid.New()
	session := repo.add(pendingSession(projectID, "Nagy Péter", &personID))

	result, err := svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprove, result.Decision)
	assert.Nil(t, result.Displaced)
	assert.False(t, result.NoChange)
	assert.Contains(t, result.Message, "no prior owner")

	stored, err := repo.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimVerified, stored.ClaimState().Kind)
	assert.Len(t, audit.byType(models.AuditSessionApproved), 1)
	assert.Empty(t, audit.byType(models.AuditSessionDisplaced))
}

func TestResolveConflict_ApproveEvictsPreviousOwner(t *testing.T) {
	repo, audit, svc := newConflictFixture()
	projectID := uuid.New()
	personID := uuid.New()

	anna := repo.add(&models.GuestSession{
		ID:                 uuid.New(),
		ProjectID:          projectID,
		SessionToken:       uuid.NewString(),
		GuestName:          "Kovács Anna",
		TabloPersonID:      &personID,
		VerificationStatus: models.VerificationVerified,
	})
	annaK := repo.add(pendingSession(projectID, "Anna K.", &personID))

	result, err := svc.ResolveConflict(context.Background(), projectID, annaK.ID, models.DecisionApprove)
	require.NoError(t, err)
	require.NotNil(t, result.Displaced)
	assert.Equal(t, anna.ID, result.Displaced.ID)
	assert.Contains(t, result.Message, "Kovács Anna was displaced")

	// The approved session owns the slot now
	winner, err := repo.GetByID(context.Background(), annaK.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimVerified, winner.ClaimState().Kind)
	assert.Equal(t, personID, winner.ClaimState().PersonID)

	// The displaced owner lost both the slot link and the verified standing
	loser, err := repo.GetByID(context.Background(), anna.ID)
	require.NoError(t, err)
	assert.Nil(t, loser.TabloPersonID)
	assert.Equal(t, models.VerificationPending, loser.VerificationStatus)
	assert.Equal(t, models.ClaimUnclaimed, loser.ClaimState().Kind)

	// At most one verified owner per slot
	owner, err := repo.FindOwner(context.Background(), projectID, personID, nil)
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, annaK.ID, owner.ID)

	assert.Len(t, audit.byType(models.AuditSessionApproved), 1)
	assert.Len(t, audit.byType(models.AuditSessionDisplaced), 1)
}

func TestResolveConflict_ApproveIsIdempotent(t *testing.T) {
	repo, audit, svc := newConflictFixture()
	projectID := uuid.New()
	personID := uuid.New()
	session := repo.add(pendingSession(projectID, "Szabó Eszter", &personID))

	_, err := svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionApprove)
	require.NoError(t, err)

	repeat, err := svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionApprove)
	require.NoError(t, err)
	assert.True(t, repeat.NoChange)
	assert.Contains(t, repeat.Message, "already the verified owner")

	// Repeats leave no extra audit entries
	assert.Len(t, audit.byType(models.AuditSessionApproved), 1)
}

func TestResolveConflict_RejectIsIdempotent(t *testing.T) {
	repo, audit, svc := newConflictFixture()
	projectID := uuid.New()
	personID := uuid.New()
	session := repo.add(pendingSession(projectID, "Tóth Gábor", &personID))

	_, err := svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionReject)
	require.NoError(t, err)

	repeat, err := svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionReject)
	require.NoError(t, err)
	assert.True(t, repeat.NoChange)
	assert.Len(t, audit.byType(models.AuditSessionRejected), 1)
}

func TestResolveConflict_OppositeDecisionAfterReject(t *testing.T) {
	repo, _, svc := newConflictFixture()
	projectID := uuid.New()
	personID := uuid.New()
	session := repo.add(pendingSession(projectID, "Kiss Márta", &personID))

	_, err := svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionReject)
	require.NoError(t, err)

	_, err = svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionApprove)
	assert.ErrorIs(t, err, services.ErrAlreadyResolved)
}

func TestResolveConflict_RejectAfterApprove(t *testing.T) {
	repo, _, svc := newConflictFixture()
	projectID := uuid.New()
	personID := uuid.New()
	session := repo.add(pendingSession(projectID, "Horváth Bence", &personID))

	_, err := svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionApprove)
	require.NoError(t, err)

	_, err = svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionReject)
	assert.ErrorIs(t, err, services.ErrSessionNotPending)
}

func TestResolveConflict_UnclaimedSession(t *testing.T) {
	repo, _, svc := newConflictFixture()
	projectID := uuid.New()
	session := repo.add(pendingSession(projectID, "Varga Lilla", nil))

	_, err := svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionApprove)
	assert.ErrorIs(t, err, services.ErrSessionUnclaimed)

	_, err = svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionReject)
	assert.ErrorIs(t, err, services.ErrSessionUnclaimed)
}

func TestResolveConflict_BannedSessionCannotWin(t *testing.T) {
	repo, _, svc := newConflictFixture()
	projectID := uuid.New()
	personID := uuid.New()
	session := pendingSession(projectID, "Molnár Ádám", &personID)
	session.Banned = true
	repo.add(session)

	_, err := svc.ResolveConflict(context.Background(), projectID, session.ID, models.DecisionApprove)
	assert.ErrorIs(t, err, services.ErrSessionBanned)

	stored, err := repo.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, stored.VerificationStatus)
}

func TestResolveConflict_UnknownSession(t *testing.T) {
	_, _, svc := newConflictFixture()

	_, err := svc.ResolveConflict(context.Background(), uuid.New(), uuid.New(), models.DecisionApprove)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestResolveConflict_SessionFromAnotherProject(t *testing.T) {
	repo, audit, svc := newConflictFixture()
	callerProject := uuid.New()
	foreignProject := uuid.New()
	personID := uuid.New()

	owner := repo.add(&models.GuestSession{
		ID:                 uuid.New(),
		ProjectID:          foreignProject,
		SessionToken:       uuid.NewString(),
		GuestName:          "Balogh Réka",
		TabloPersonID:      &personID,
		VerificationStatus: models.VerificationVerified,
	})
	challenger := repo.add(pendingSession(foreignProject, "Réka B.", &personID))

	// A coordinator scoped to a different project cannot touch the session;
	// the answer is the same as for a session that does not exist.
	_, err := svc.ResolveConflict(context.Background(), callerProject, challenger.ID, models.DecisionApprove)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	_, err = svc.ResolveConflict(context.Background(), callerProject, challenger.ID, models.DecisionReject)
	assert.ErrorIs(t, err, services.ErrSessionNotFound)

	// Nothing moved in the foreign project
	stored, err := repo.GetByID(context.Background(), challenger.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, stored.VerificationStatus)

	stillOwner, err := repo.FindOwner(context.Background(), foreignProject, personID, nil)
	require.NoError(t, err)
	require.NotNil(t, stillOwner)
	assert.Equal(t, owner.ID, stillOwner.ID)

	assert.Empty(t, audit.entries)
}

func TestResolveConflict_RejectKeepsOwner(t *testing.T) {
	repo, _, svc := newConflictFixture()
	projectID := uuid.New()
	personID := uuid.New()

	owner := repo.add(&models.GuestSession{
		ID:                 uuid.New(),
		ProjectID:          projectID,
		SessionToken:       uuid.NewString(),
		GuestName:          "Fekete Júlia",
		TabloPersonID:      &personID,
		VerificationStatus: models.VerificationVerified,
	})
	challenger := repo.add(pendingSession(projectID, "Julcsi F.", &personID))

	result, err := svc.ResolveConflict(context.Background(), projectID, challenger.ID, models.DecisionReject)
	require.NoError(t, err)
	assert.Contains(t, result.Message, "stays with its current owner")

	stillOwner, err := repo.FindOwner(context.Background(), projectID, personID, nil)
	require.NoError(t, err)
	require.NotNil(t, stillOwner)
	assert.Equal(t, owner.ID, stillOwner.ID)

	rejected, err := repo.GetByID(context.Background(), challenger.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimRejected, rejected.ClaimState().Kind)
	assert.Nil(t, rejected.TabloPersonID)
}

func TestCounts(t *testing.T) {
	repo, _, svc := newConflictFixture()
	projectID := uuid.New()
	slotA := uuid.New()
	slotB := uuid.New()

	repo.add(&models.GuestSession{
		ID:                 uuid.New(),
		ProjectID:          projectID,
		SessionToken:       uuid.NewString(),
		GuestName:          "owner",
		TabloPersonID:      &slotA,
		VerificationStatus: models.VerificationVerified,
	})
	repo.add(pendingSession(projectID, "challenger", &slotA))
	repo.add(pendingSession(projectID, "uncontested", &slotB))
	// Pending counts every unsettled session, claimed or not
	repo.add(pendingSession(projectID, "undecided", nil))

	counts, err := svc.Counts(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Pending)
	assert.Equal(t, int64(1), counts.Conflicting)
}
