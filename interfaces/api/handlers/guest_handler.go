package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/domain/dto"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/interfaces/api/middleware"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

type GuestHandler struct {
	guestService   services.GuestService
	projectService services.ProjectService
}

func NewGuestHandler(guestService services.GuestService, projectService services.ProjectService) *GuestHandler {
	return &GuestHandler{
		guestService:   guestService,
		projectService: projectService,
	}
}

// sessionFromBearer resolves the guest session scoped by the bearer token, or
// falls back to the X-Session-Token header for link-tier requests.
func (h *GuestHandler) sessionToken(c *fiber.Ctx) string {
	return c.Get("X-Session-Token")
}

// Register godoc
// @Summary Register a guest session
// @Tags Guest
// @Accept json
// @Produce json
// @Param request body dto.RegisterGuestRequest true "Registration payload"
// @Success 200 {object} dto.GuestSessionResponse
// @Router /guest/register [post]
func (h *GuestHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterGuestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	// The credential defines the accessible project; a request for another
	// project is rejected as out of scope.
	if token, ok := middleware.GetAccessToken(c); ok && token.TabloProjectID != nil && *token.TabloProjectID != req.ProjectID {
		return utils.ErrorCodeResponse(c, fiber.StatusForbidden,
			"Credential is not valid for this project", utils.ErrCodeInsufficientPermissions)
	}

	session, err := h.guestService.Register(c.UserContext(), services.RegisterGuestInput{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Email:     req.Email,
		PersonID:  req.PersonID,
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
	})
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		return utils.ErrorCodeResponse(c, fiber.StatusNotFound, "Project not found", utils.ErrCodeNotFound)
	case errors.Is(err, services.ErrProjectLocked):
		return utils.ErrorCodeResponse(c, fiber.StatusForbidden,
			"The project no longer accepts registrations", utils.ErrCodeProjectInvalid)
	case errors.Is(err, services.ErrPersonNotFound), errors.Is(err, services.ErrPersonNotInProject):
		return utils.ValidationErrorResponse(c, map[string]string{"person_id": "must reference a person of this project"})
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Registration failed", err)
	}

	return utils.SuccessResponse(c, "Session registered", dto.SessionToGuestResponse(session, true))
}

// Me returns the guest's own session
func (h *GuestHandler) Me(c *fiber.Ctx) error {
	session, err := h.guestService.GetByToken(c.UserContext(), h.sessionToken(c))
	if errors.Is(err, services.ErrSessionNotFound) {
		return utils.UnauthorizedResponse(c, "Unknown session")
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load session", err)
	}
	return utils.SuccessResponse(c, "Session retrieved", dto.SessionToGuestResponse(session, false))
}

// UpdateClaim godoc
// @Summary Change the claimed roster slot of a pending session
// @Tags Guest
// @Accept json
// @Produce json
// @Param request body dto.UpdateClaimRequest true "Claim payload"
// @Success 200 {object} dto.GuestSessionResponse
// @Router /guest/claim [put]
func (h *GuestHandler) UpdateClaim(c *fiber.Ctx) error {
	var req dto.UpdateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	session, err := h.guestService.UpdateClaim(c.UserContext(), h.sessionToken(c), req.PersonID)
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return utils.UnauthorizedResponse(c, "Unknown session")
	case errors.Is(err, services.ErrSessionNotPending):
		return utils.ErrorCodeResponse(c, fiber.StatusConflict,
			"The session is already settled", utils.ErrCodeAlreadyResolved)
	case errors.Is(err, services.ErrProjectLocked):
		return utils.ErrorCodeResponse(c, fiber.StatusForbidden,
			"The project no longer accepts changes", utils.ErrCodeProjectInvalid)
	case errors.Is(err, services.ErrPersonNotFound), errors.Is(err, services.ErrPersonNotInProject):
		return utils.ValidationErrorResponse(c, map[string]string{"person_id": "must reference a person of this project"})
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update claim", err)
	}

	return utils.SuccessResponse(c, "Claim updated", dto.SessionToGuestResponse(session, false))
}

// Heartbeat records guest liveness
func (h *GuestHandler) Heartbeat(c *fiber.Ctx) error {
	err := h.guestService.Heartbeat(c.UserContext(), h.sessionToken(c))
	if errors.Is(err, services.ErrSessionNotFound) {
		return utils.UnauthorizedResponse(c, "Unknown session")
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Heartbeat failed", err)
	}
	return utils.SuccessResponse(c, "Heartbeat recorded", nil)
}

// RequestRestore godoc
// @Summary Request a session restore link by email
// @Description Always answers success so email existence is not leaked
// @Tags Guest
// @Accept json
// @Produce json
// @Param request body dto.RestoreRequest true "Restore request"
// @Success 200 {object} map[string]interface{}
// @Router /guest/restore/request [post]
func (h *GuestHandler) RequestRestore(c *fiber.Ctx) error {
	var req dto.RestoreRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	if err := h.guestService.RequestRestoreLink(c.UserContext(), req.ProjectID, req.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process restore request", err)
	}
	return utils.SuccessResponse(c, "If the address is registered, a restore link was sent", nil)
}

// Restore godoc
// @Summary Consume a restore token
// @Description Single use; the session token is rotated on success
// @Tags Guest
// @Accept json
// @Produce json
// @Param request body dto.RestoreConsumeRequest true "Restore token"
// @Success 200 {object} dto.GuestSessionResponse
// @Router /guest/restore [post]
func (h *GuestHandler) Restore(c *fiber.Ctx) error {
	var req dto.RestoreConsumeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	session, err := h.guestService.Restore(c.UserContext(), req.Token)
	if errors.Is(err, services.ErrRestoreTokenInvalid) {
		return utils.UnauthorizedResponse(c, "Restore link invalid or expired")
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Restore failed", err)
	}

	return utils.SuccessResponse(c, "Session restored", dto.SessionToGuestResponse(session, true))
}

// ListPersons returns the project roster for the credential's project so
// guests can pick who they are.
func (h *GuestHandler) ListPersons(c *fiber.Ctx) error {
	token, ok := middleware.GetAccessToken(c)
	if !ok || token.TabloProjectID == nil {
		return utils.UnauthorizedResponse(c, "Missing credential")
	}

	persons, err := h.projectService.ListPersons(c.UserContext(), *token.TabloProjectID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load roster", err)
	}

	return utils.SuccessResponse(c, "Roster retrieved", dto.PersonListResponse{
		Persons: dto.PersonsToResponses(persons),
	})
}

// Finalize godoc
// @Summary Finalize the project on behalf of the class
// @Description Moves the project to done; guest mutation locks afterwards
// @Tags Guest
// @Produce json
// @Success 200 {object} dto.ProjectResponse
// @Router /guest/finalize [post]
func (h *GuestHandler) Finalize(c *fiber.Ctx) error {
	token, ok := middleware.GetAccessToken(c)
	if !ok || token.TabloProjectID == nil {
		return utils.UnauthorizedResponse(c, "Missing credential")
	}

	project, err := h.projectService.Finalize(c.UserContext(), *token.TabloProjectID)
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		return utils.ErrorCodeResponse(c, fiber.StatusNotFound, "Project not found", utils.ErrCodeNotFound)
	case errors.Is(err, services.ErrProjectLocked):
		return utils.ErrorCodeResponse(c, fiber.StatusForbidden,
			"The project can no longer be finalized", utils.ErrCodeProjectInvalid)
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Finalization failed", err)
	}

	return utils.SuccessResponse(c, "Project finalized", dto.ProjectToResponse(project))
}

// Project returns the scoped project in the guest view
func (h *GuestHandler) Project(c *fiber.Ctx) error {
	token, ok := middleware.GetAccessToken(c)
	if !ok || token.TabloProjectID == nil {
		return utils.UnauthorizedResponse(c, "Missing credential")
	}

	project, err := h.projectService.GetByID(c.UserContext(), *token.TabloProjectID)
	if errors.Is(err, services.ErrProjectNotFound) {
		return utils.ErrorCodeResponse(c, fiber.StatusNotFound, "Project not found", utils.ErrCodeNotFound)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load project", err)
	}

	return utils.SuccessResponse(c, "Project retrieved", dto.ProjectToResponse(project))
}
