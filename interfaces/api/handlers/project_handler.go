package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/dto"
	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

type ProjectHandler struct {
	projectService services.ProjectService
	auditService   services.AuditLogService
	authService    services.AuthService
}

func NewProjectHandler(
	projectService services.ProjectService,
	auditService services.AuditLogService,
	authService services.AuthService,
) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		auditService:   auditService,
		authService:    authService,
	}
}

func (h *ProjectHandler) ownedProject(c *fiber.Ctx, param string) (*models.Project, error) {
	partnerCtx, err := utils.GetPartnerFromContext(c)
	if err != nil {
		return nil, utils.UnauthorizedResponse(c, "Not authenticated")
	}

	projectID, err := uuid.Parse(c.Params(param))
	if err != nil {
		return nil, utils.ValidationErrorResponse(c, map[string]string{param: "must be a valid UUID"})
	}

	project, err := h.projectService.GetByID(c.UserContext(), projectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		return nil, utils.ErrorCodeResponse(c, fiber.StatusNotFound, "Project not found", utils.ErrCodeNotFound)
	}
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load project", err)
	}
	if project.PartnerID != partnerCtx.ID {
		return nil, utils.ErrorCodeResponse(c, fiber.StatusForbidden,
			"Project belongs to another partner", utils.ErrCodeInsufficientPermissions)
	}
	return project, nil
}

// Create godoc
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body dto.CreateProjectRequest true "Project payload"
// @Success 200 {object} dto.PartnerProjectResponse
// @Router /admin/projects [post]
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	partnerCtx, err := utils.GetPartnerFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	project, err := h.projectService.Create(c.UserContext(), services.CreateProjectInput{
		PartnerID:  partnerCtx.ID,
		SchoolName: req.SchoolName,
		ClassName:  req.ClassName,
		ClassYear:  req.ClassYear,
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create project", err)
	}

	return utils.SuccessResponse(c, "Project created", dto.ProjectToPartnerResponse(project))
}

// List returns the partner's projects
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	partnerCtx, err := utils.GetPartnerFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	projects, total, err := h.projectService.ListByPartner(c.UserContext(), partnerCtx.ID, page, limit)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list projects", err)
	}

	responses := make([]dto.PartnerProjectResponse, len(projects))
	for i := range projects {
		responses[i] = *dto.ProjectToPartnerResponse(&projects[i])
	}

	return utils.SuccessResponse(c, "Projects retrieved", dto.ProjectListResponse{
		Projects: responses,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// Get returns one project with credentials
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	project, err := h.ownedProject(c, "projectId")
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, "Project retrieved", dto.ProjectToPartnerResponse(project))
}

// UpdateStatus godoc
// @Summary Transition the project status
// @Description Reaching done or in_print locks guest mutation and invalidates guest credentials
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param request body dto.UpdateProjectStatusRequest true "Status"
// @Success 200 {object} dto.PartnerProjectResponse
// @Router /admin/projects/{projectId}/status [put]
func (h *ProjectHandler) UpdateStatus(c *fiber.Ctx) error {
	project, err := h.ownedProject(c, "projectId")
	if err != nil {
		return err
	}

	var req dto.UpdateProjectStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	updated, err := h.projectService.UpdateStatus(c.UserContext(), project.ID, models.ProjectStatus(req.Status))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update status", err)
	}

	return utils.SuccessResponse(c, "Status updated", dto.ProjectToPartnerResponse(updated))
}

// SetAccessCode updates the access-code credential settings
func (h *ProjectHandler) SetAccessCode(c *fiber.Ctx) error {
	project, err := h.ownedProject(c, "projectId")
	if err != nil {
		return err
	}

	var req dto.AccessCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	updated, err := h.projectService.SetAccessCode(c.UserContext(), project.ID, services.AccessCodeSettings{
		Code:      req.Code,
		Enabled:   req.Enabled,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update access code", err)
	}

	return utils.SuccessResponse(c, "Access code updated", dto.ProjectToPartnerResponse(updated))
}

// RotateShareToken replaces the share link credential
func (h *ProjectHandler) RotateShareToken(c *fiber.Ctx) error {
	project, err := h.ownedProject(c, "projectId")
	if err != nil {
		return err
	}

	updated, err := h.projectService.RotateShareToken(c.UserContext(), project.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to rotate share token", err)
	}
	return utils.SuccessResponse(c, "Share token rotated", dto.ProjectToPartnerResponse(updated))
}

// RotatePreviewToken replaces the preview link credential
func (h *ProjectHandler) RotatePreviewToken(c *fiber.Ctx) error {
	project, err := h.ownedProject(c, "projectId")
	if err != nil {
		return err
	}

	updated, err := h.projectService.RotatePreviewToken(c.UserContext(), project.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to rotate preview token", err)
	}
	return utils.SuccessResponse(c, "Preview token rotated", dto.ProjectToPartnerResponse(updated))
}

// IssueQRToken godoc
// @Summary Issue a full-tier QR registration token for the project
// @Tags Projects
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} dto.GuestLoginResponse
// @Router /admin/projects/{projectId}/qr-token [post]
func (h *ProjectHandler) IssueQRToken(c *fiber.Ctx) error {
	project, err := h.ownedProject(c, "projectId")
	if err != nil {
		return err
	}

	issued, err := h.authService.IssueQRToken(c.UserContext(), project.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue QR token", err)
	}

	return utils.SuccessResponse(c, "QR token issued", dto.GuestLoginResponse{
		Token:     issued.Secret,
		TokenName: issued.Token.Name,
		Tier:      string(issued.Tier),
		Project:   *dto.ProjectToResponse(issued.Project),
	})
}

// AddPerson adds a roster entry
func (h *ProjectHandler) AddPerson(c *fiber.Ctx) error {
	project, err := h.ownedProject(c, "projectId")
	if err != nil {
		return err
	}

	var req dto.AddPersonRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	person, err := h.projectService.AddPerson(c.UserContext(), project.ID, req.Name, models.PersonType(req.Type), req.Position)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add person", err)
	}

	return utils.SuccessResponse(c, "Person added", dto.PersonToResponse(person))
}

// ListPersons returns the project roster
func (h *ProjectHandler) ListPersons(c *fiber.Ctx) error {
	project, err := h.ownedProject(c, "projectId")
	if err != nil {
		return err
	}

	persons, err := h.projectService.ListPersons(c.UserContext(), project.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load roster", err)
	}

	return utils.SuccessResponse(c, "Roster retrieved", dto.PersonListResponse{
		Persons: dto.PersonsToResponses(persons),
	})
}

// AttachPhoto sets one slot of the person photo chain
func (h *ProjectHandler) AttachPhoto(c *fiber.Ctx) error {
	project, err := h.ownedProject(c, "projectId")
	if err != nil {
		return err
	}

	personID, err := uuid.Parse(c.Params("personId"))
	if err != nil {
		return utils.ValidationErrorResponse(c, map[string]string{"personId": "must be a valid UUID"})
	}

	var req dto.AttachPhotoRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	person, err := h.projectService.AttachPhoto(c.UserContext(), project.ID, personID, services.PhotoSlot(req.Slot), req.PhotoID)
	if errors.Is(err, services.ErrPersonNotFound) {
		return utils.ErrorCodeResponse(c, fiber.StatusNotFound, "Person not found", utils.ErrCodeNotFound)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to attach photo", err)
	}

	return utils.SuccessResponse(c, "Photo attached", dto.PersonToResponse(person))
}

// AuditLog godoc
// @Summary Audit trail of a project
// @Tags Projects
// @Produce json
// @Param projectId path string true "Project ID"
// @Param type query string false "Filter by audit type"
// @Success 200 {object} dto.AuditLogListResponse
// @Router /admin/projects/{projectId}/audit [get]
func (h *ProjectHandler) AuditLog(c *fiber.Ctx) error {
	project, err := h.ownedProject(c, "projectId")
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	var entries []models.AuditLog
	var total int64
	if auditType := c.Query("type"); auditType != "" {
		entries, total, err = h.auditService.GetByProjectAndType(c.UserContext(), project.ID, models.AuditType(auditType), page, limit)
	} else {
		entries, total, err = h.auditService.GetByProject(c.UserContext(), project.ID, page, limit)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load audit trail", err)
	}

	return utils.SuccessResponse(c, "Audit trail retrieved", dto.AuditLogListResponse{
		Entries: dto.AuditLogsToResponses(entries),
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}
