package serviceimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/pkg/logger"
)

type ConflictServiceImpl struct {
	sessionRepo repositories.GuestSessionRepository
	auditLog    services.AuditLogService
}

func NewConflictService(
	sessionRepo repositories.GuestSessionRepository,
	auditLog services.AuditLogService,
) services.ConflictService {
	return &ConflictServiceImpl{
		sessionRepo: sessionRepo,
		auditLog:    auditLog,
	}
}

func (s *ConflictServiceImpl) FindOwner(ctx context.Context, projectID, personID uuid.UUID, excludeSessionID *uuid.UUID) (*models.GuestSession, error) {
	return s.sessionRepo.FindOwner(ctx, projectID, personID, excludeSessionID)
}

func (s *ConflictServiceImpl) Counts(ctx context.Context, projectID uuid.UUID) (*services.ConflictCounts, error) {
	pending, err := s.sessionRepo.CountPending(ctx, projectID)
	if err != nil {
		return nil, err
	}
	conflicting, err := s.sessionRepo.CountConflicting(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &services.ConflictCounts{Pending: pending, Conflicting: conflicting}, nil
}

func (s *ConflictServiceImpl) ListPending(ctx context.Context, projectID uuid.UUID) ([]repositories.PendingSessionRow, error) {
	return s.sessionRepo.ListPendingWithOwners(ctx, projectID)
}

// ResolveConflict is the only path through which ownership of a roster slot
// changes hands. The whole decision runs in one transaction: the target
// session and the current owner row are locked, the status is re-read under
// the lock, and demote plus promote either both persist or neither does.
// A session of another project is indistinguishable from a missing one, so
// the caller's project scope never leaks across partners.
func (s *ConflictServiceImpl) ResolveConflict(ctx context.Context, projectID, sessionID uuid.UUID, decision models.ConflictDecision) (*services.ArbitrationResult, error) {
	var result *services.ArbitrationResult

	err := s.sessionRepo.InTx(ctx, func(tx repositories.GuestSessionRepository) error {
		session, err := tx.GetByIDForUpdate(ctx, sessionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		if session.ProjectID != projectID {
			return services.ErrSessionNotFound
		}

		switch decision {
		case models.DecisionApprove:
			result, err = s.approve(ctx, tx, session)
		case models.DecisionReject:
			result, err = s.reject(ctx, tx, session)
		default:
			err = fmt.Errorf("unknown decision %q", decision)
		}
		return err
	})
	if err != nil {
		logger.ConflictError("resolve_failed", "Arbitration failed", err, map[string]interface{}{
			"session_id": sessionID.String(),
			"decision":   string(decision),
		})
		return nil, err
	}

	s.recordOutcome(ctx, projectID, sessionID, result)
	return result, nil
}

// approve promotes the session to verified owner of its claimed slot,
// demoting the current owner first when one exists.
func (s *ConflictServiceImpl) approve(ctx context.Context, tx repositories.GuestSessionRepository, session *models.GuestSession) (*services.ArbitrationResult, error) {
	state := session.ClaimState()

	switch state.Kind {
	case models.ClaimVerified:
		// Repeated terminal decision: nothing to do
		return &services.ArbitrationResult{
			Decision: models.DecisionApprove,
			Message:  fmt.Sprintf("%s is already the verified owner", session.GuestName),
			NoChange: true,
		}, nil
	case models.ClaimRejected:
		return nil, services.ErrAlreadyResolved
	case models.ClaimUnclaimed:
		return nil, services.ErrSessionUnclaimed
	}

	if !session.EligibleOwner() {
		return nil, services.ErrSessionBanned
	}

	// Lock the competing owner row for the rest of the transaction so two
	// coordinators cannot both evict it.
	owner, err := tx.FindOwnerForUpdate(ctx, session.ProjectID, state.PersonID, &session.ID)
	if err != nil {
		return nil, err
	}

	result := &services.ArbitrationResult{Decision: models.DecisionApprove}

	if owner != nil {
		// Demote first. The displaced session keeps its row as history but
		// loses the slot link and its verified standing.
		owner.TabloPersonID = nil
		owner.VerificationStatus = models.VerificationPending
		if err := tx.Update(ctx, owner); err != nil {
			return nil, err
		}
		result.Displaced = owner
		result.Message = fmt.Sprintf("%s approved, previous owner %s was displaced", session.GuestName, owner.GuestName)
	} else {
		result.Message = fmt.Sprintf("%s approved, no prior owner for this slot", session.GuestName)
	}

	session.VerificationStatus = models.VerificationVerified
	if err := tx.Update(ctx, session); err != nil {
		return nil, err
	}

	return result, nil
}

// reject marks the session rejected and frees its claimed slot for other
// claimants. Ownership of the slot never changes on reject.
func (s *ConflictServiceImpl) reject(ctx context.Context, tx repositories.GuestSessionRepository, session *models.GuestSession) (*services.ArbitrationResult, error) {
	state := session.ClaimState()

	switch state.Kind {
	case models.ClaimRejected:
		return &services.ArbitrationResult{
			Decision: models.DecisionReject,
			Message:  fmt.Sprintf("%s was already rejected", session.GuestName),
			NoChange: true,
		}, nil
	case models.ClaimVerified:
		return nil, services.ErrSessionNotPending
	case models.ClaimUnclaimed:
		return nil, services.ErrSessionUnclaimed
	}

	session.VerificationStatus = models.VerificationRejected
	session.TabloPersonID = nil
	if err := tx.Update(ctx, session); err != nil {
		return nil, err
	}

	return &services.ArbitrationResult{
		Decision: models.DecisionReject,
		Message:  fmt.Sprintf("%s rejected, the slot stays with its current owner", session.GuestName),
	}, nil
}

// recordOutcome writes the audit trail after the transaction committed.
func (s *ConflictServiceImpl) recordOutcome(ctx context.Context, projectID, sessionID uuid.UUID, result *services.ArbitrationResult) {
	if result == nil || result.NoChange {
		return
	}

	details := &models.AuditDetails{SessionID: sessionID.String()}
	auditType := models.AuditSessionRejected
	if result.Decision == models.DecisionApprove {
		auditType = models.AuditSessionApproved
	}
	if result.Displaced != nil {
		details.DisplacedSession = result.Displaced.ID.String()
		details.DisplacedGuest = result.Displaced.GuestName
	}

	if err := s.auditLog.Record(ctx, projectID, auditType, result.Message, details); err != nil {
		logger.ConflictError("audit_failed", "Failed to record arbitration audit entry", err, map[string]interface{}{
			"session_id": sessionID.String(),
		})
	}

	if result.Displaced != nil {
		displacedDetails := &models.AuditDetails{
			SessionID:      result.Displaced.ID.String(),
			DisplacedGuest: result.Displaced.GuestName,
		}
		if err := s.auditLog.Record(ctx, projectID, models.AuditSessionDisplaced,
			fmt.Sprintf("%s lost the verified slot", result.Displaced.GuestName), displacedDetails); err != nil {
			logger.ConflictError("audit_failed", "Failed to record displacement audit entry", err, nil)
		}
	}

	logger.Conflict("resolved", result.Message, map[string]interface{}{
		"session_id": sessionID.String(),
		"decision":   string(result.Decision),
		"displaced":  result.Displaced != nil,
	})
}
