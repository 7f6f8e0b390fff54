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
	"github.com/tablostudio/tablo-api/pkg/utils"
)

type ProjectServiceImpl struct {
	projectRepo repositories.ProjectRepository
	personRepo  repositories.PersonRepository
	auditLog    services.AuditLogService
}

func NewProjectService(
	projectRepo repositories.ProjectRepository,
	personRepo repositories.PersonRepository,
	auditLog services.AuditLogService,
) services.ProjectService {
	return &ProjectServiceImpl{
		projectRepo: projectRepo,
		personRepo:  personRepo,
		auditLog:    auditLog,
	}
}

func (s *ProjectServiceImpl) Create(ctx context.Context, input services.CreateProjectInput) (*models.Project, error) {
	accessCode, err := utils.GenerateAccessCode()
	if err != nil {
		return nil, err
	}
	shareToken, err := utils.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}
	previewToken, err := utils.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		PartnerID:         input.PartnerID,
		SchoolName:        input.SchoolName,
		ClassName:         input.ClassName,
		ClassYear:         input.ClassYear,
		Status:            models.ProjectStatusActive,
		AccessCode:        accessCode,
		AccessCodeEnabled: true,
		ShareToken:        shareToken,
		PreviewToken:      previewToken,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	logger.API("project_created", "Project created", map[string]interface{}{
		"project_id": project.ID.String(),
		"partner_id": input.PartnerID.String(),
	})
	return project, nil
}

func (s *ProjectServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrProjectNotFound
	}
	return project, err
}

func (s *ProjectServiceImpl) ListByPartner(ctx context.Context, partnerID uuid.UUID, page, limit int) ([]models.Project, int64, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.projectRepo.ListByPartner(ctx, partnerID, offset, limit)
}

// UpdateStatus transitions the project. Reaching done or in_print locks
// guest mutation; live credentials are invalidated per request by the
// validity gate and cleaned up by the periodic token sweep.
func (s *ProjectServiceImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := project.Status
	if err := s.projectRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	project.Status = status

	logger.API("project_status_changed", "Project status changed", map[string]interface{}{
		"project_id": id.String(),
		"from":       string(previous),
		"to":         string(status),
	})
	if err := s.auditLog.Record(ctx, id, models.AuditProjectStatusChanged,
		fmt.Sprintf("project moved from %s to %s", previous, status),
		&models.AuditDetails{PreviousStatus: string(previous), NewStatus: string(status)}); err != nil {
		logger.Error(logger.CategoryAPI, "audit_failed", "Failed to record status change audit entry", err, nil)
	}
	return project, nil
}

// Finalize is the guest-facing close of the project: the class confirmed the
// tabló, so the project moves to done and stops accepting guest changes.
func (s *ProjectServiceImpl) Finalize(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch project.Status {
	case models.ProjectStatusDone:
		// Repeated finalize settles on the same state
		return project, nil
	case models.ProjectStatusInPrint, models.ProjectStatusArchived:
		return nil, services.ErrProjectLocked
	}

	return s.UpdateStatus(ctx, id, models.ProjectStatusDone)
}

func (s *ProjectServiceImpl) SetAccessCode(ctx context.Context, id uuid.UUID, settings services.AccessCodeSettings) (*models.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if settings.Code != "" {
		project.AccessCode = settings.Code
	}
	project.AccessCodeEnabled = settings.Enabled
	project.AccessCodeExpiresAt = settings.ExpiresAt

	if err := s.projectRepo.Update(ctx, id, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectServiceImpl) RotateShareToken(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.rotateLinkToken(ctx, id, func(project *models.Project, token string) {
		project.ShareToken = token
	})
}

func (s *ProjectServiceImpl) RotatePreviewToken(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.rotateLinkToken(ctx, id, func(project *models.Project, token string) {
		project.PreviewToken = token
	})
}

func (s *ProjectServiceImpl) rotateLinkToken(ctx context.Context, id uuid.UUID, set func(*models.Project, string)) (*models.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}
	set(project, token)

	if err := s.projectRepo.Update(ctx, id, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectServiceImpl) AddPerson(ctx context.Context, projectID uuid.UUID, name string, personType models.PersonType, position int) (*models.Person, error) {
	if _, err := s.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	person := &models.Person{
		ProjectID: projectID,
		Name:      name,
		Type:      personType,
		Position:  position,
	}
	if err := s.personRepo.Create(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

func (s *ProjectServiceImpl) ListPersons(ctx context.Context, projectID uuid.UUID) ([]models.Person, error) {
	return s.personRepo.ListByProject(ctx, projectID)
}

// AttachPhoto sets one link of the person photo chain. The effective photo is
// derived, override first, then archive, then legacy. The project scope is
// checked before the write, so a person of another partner's project stays
// untouched and looks nonexistent.
func (s *ProjectServiceImpl) AttachPhoto(ctx context.Context, projectID, personID uuid.UUID, slot services.PhotoSlot, photoID *uuid.UUID) (*models.Person, error) {
	person, err := s.personRepo.GetByID(ctx, personID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrPersonNotFound
	}
	if err != nil {
		return nil, err
	}
	if person.ProjectID != projectID {
		return nil, services.ErrPersonNotFound
	}

	switch slot {
	case services.PhotoSlotOverride:
		person.OverridePhotoID = photoID
	case services.PhotoSlotArchive:
		person.ArchivePhotoID = photoID
	case services.PhotoSlotLegacy:
		person.LegacyPhotoID = photoID
	default:
		return nil, fmt.Errorf("unknown photo slot %q", slot)
	}

	if err := s.personRepo.Update(ctx, personID, person); err != nil {
		return nil, err
	}
	return person, nil
}
