package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/dto"
	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/infrastructure/websocket"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

type ConflictHandler struct {
	conflictService services.ConflictService
	guestService    services.GuestService
	projectService  services.ProjectService
}

func NewConflictHandler(
	conflictService services.ConflictService,
	guestService services.GuestService,
	projectService services.ProjectService,
) *ConflictHandler {
	return &ConflictHandler{
		conflictService: conflictService,
		guestService:    guestService,
		projectService:  projectService,
	}
}

// requireProjectOwnership loads the project and checks it belongs to the
// authenticated partner.
func (h *ConflictHandler) requireProjectOwnership(c *fiber.Ctx, projectID uuid.UUID) (*models.Project, error) {
	partnerCtx, err := utils.GetPartnerFromContext(c)
	if err != nil {
		return nil, utils.UnauthorizedResponse(c, "Not authenticated")
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

// Counts godoc
// @Summary Pending and conflicting session counts for the dashboard badge
// @Tags Conflicts
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} dto.ConflictCountsResponse
// @Router /admin/projects/{projectId}/conflicts/counts [get]
func (h *ConflictHandler) Counts(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		return utils.ValidationErrorResponse(c, map[string]string{"projectId": "must be a valid UUID"})
	}
	if _, err := h.requireProjectOwnership(c, projectID); err != nil {
		return err
	}

	counts, err := h.conflictService.Counts(c.UserContext(), projectID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute counts", err)
	}

	return utils.SuccessResponse(c, "Counts computed", dto.ConflictCountsResponse{
		Pending:     counts.Pending,
		Conflicting: counts.Conflicting,
	})
}

// ListPending godoc
// @Summary Pending sessions with their conflicting owners
// @Tags Conflicts
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} dto.PendingListResponse
// @Router /admin/projects/{projectId}/conflicts [get]
func (h *ConflictHandler) ListPending(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		return utils.ValidationErrorResponse(c, map[string]string{"projectId": "must be a valid UUID"})
	}
	if _, err := h.requireProjectOwnership(c, projectID); err != nil {
		return err
	}

	rows, err := h.conflictService.ListPending(c.UserContext(), projectID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list pending sessions", err)
	}

	return utils.SuccessResponse(c, "Pending sessions retrieved", dto.PendingListResponse{
		Sessions: dto.PendingRowsToResponses(rows),
	})
}

// Resolve godoc
// @Summary Approve or reject a pending session claim
// @Description Approving displaces the current verified owner of the slot
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param sessionId path string true "Session ID"
// @Param request body dto.ResolveConflictRequest true "Decision"
// @Success 200 {object} dto.ResolveConflictResponse
// @Router /admin/projects/{projectId}/conflicts/{sessionId} [post]
func (h *ConflictHandler) Resolve(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		return utils.ValidationErrorResponse(c, map[string]string{"projectId": "must be a valid UUID"})
	}
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return utils.ValidationErrorResponse(c, map[string]string{"sessionId": "must be a valid UUID"})
	}
	if _, err := h.requireProjectOwnership(c, projectID); err != nil {
		return err
	}

	var req dto.ResolveConflictRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	result, err := h.conflictService.ResolveConflict(c.UserContext(), projectID, sessionID, models.ConflictDecision(req.Decision))
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return utils.ErrorCodeResponse(c, fiber.StatusNotFound, "Session not found", utils.ErrCodeNotFound)
	case errors.Is(err, services.ErrAlreadyResolved):
		return utils.ErrorCodeResponse(c, fiber.StatusConflict,
			"The session was already resolved the other way", utils.ErrCodeAlreadyResolved)
	case errors.Is(err, services.ErrSessionNotPending):
		return utils.ErrorCodeResponse(c, fiber.StatusConflict,
			"Only pending sessions can be resolved this way", utils.ErrCodeAlreadyResolved)
	case errors.Is(err, services.ErrSessionUnclaimed):
		return utils.ValidationErrorResponse(c, map[string]string{"session": "has no claimed person"})
	case errors.Is(err, services.ErrSessionBanned):
		return utils.ErrorCodeResponse(c, fiber.StatusForbidden,
			"Banned sessions cannot be approved", utils.ErrCodeInsufficientPermissions)
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Arbitration failed", err)
	}

	response := dto.ResolveConflictResponse{
		Decision:  string(result.Decision),
		Message:   result.Message,
		NoChange:  result.NoChange,
		Displaced: dto.SessionToAdminResponse(result.Displaced),
	}

	// Push the fresh badge numbers to every admin screen of the project
	if counts, err := h.conflictService.Counts(c.UserContext(), projectID); err == nil {
		websocket.Manager.BroadcastToRoom(projectID.String(), "conflict_resolved", fiber.Map{
			"session_id": sessionID.String(),
			"decision":   string(result.Decision),
			"counts":     counts,
		})
	}

	return utils.SuccessResponse(c, "Decision applied", response)
}

// ListSessions godoc
// @Summary All guest sessions of a project, newest first
// @Tags Sessions
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} dto.SessionListResponse
// @Router /admin/projects/{projectId}/sessions [get]
func (h *ConflictHandler) ListSessions(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		return utils.ValidationErrorResponse(c, map[string]string{"projectId": "must be a valid UUID"})
	}
	if _, err := h.requireProjectOwnership(c, projectID); err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	sessions, total, err := h.guestService.ListByProject(c.UserContext(), projectID, page, limit)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list sessions", err)
	}

	return utils.SuccessResponse(c, "Sessions retrieved", dto.SessionListResponse{
		Sessions: dto.SessionsToAdminResponses(sessions),
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// SetBanned godoc
// @Summary Ban or unban a guest session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param sessionId path string true "Session ID"
// @Success 200 {object} dto.AdminSessionResponse
// @Router /admin/projects/{projectId}/sessions/{sessionId}/ban [put]
func (h *ConflictHandler) SetBanned(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("projectId"))
	if err != nil {
		return utils.ValidationErrorResponse(c, map[string]string{"projectId": "must be a valid UUID"})
	}
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return utils.ValidationErrorResponse(c, map[string]string{"sessionId": "must be a valid UUID"})
	}
	if _, err := h.requireProjectOwnership(c, projectID); err != nil {
		return err
	}

	var req struct {
		Banned bool `json:"banned"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	session, err := h.guestService.SetBanned(c.UserContext(), projectID, sessionID, req.Banned)
	if errors.Is(err, services.ErrSessionNotFound) {
		return utils.ErrorCodeResponse(c, fiber.StatusNotFound, "Session not found", utils.ErrCodeNotFound)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update session", err)
	}

	return utils.SuccessResponse(c, "Session updated", dto.SessionToAdminResponse(session))
}
