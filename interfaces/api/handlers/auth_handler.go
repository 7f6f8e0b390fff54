package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/domain/dto"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/pkg/logger"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register godoc
// @Summary Register a partner account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterPartnerRequest true "Registration payload"
// @Success 200 {object} dto.PartnerAuthResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterPartnerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	partner, token, err := h.authService.RegisterPartner(c.UserContext(), req.Name, req.Email, req.Password)
	if errors.Is(err, services.ErrEmailTaken) {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Email already registered", err)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Registration failed", err)
	}

	return utils.SuccessResponse(c, "Account created", dto.PartnerAuthResponse{
		Token:   token,
		Partner: *dto.PartnerToResponse(partner),
	})
}

// Login godoc
// @Summary Partner login with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginPartnerRequest true "Login payload"
// @Success 200 {object} dto.PartnerAuthResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginPartnerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if fields := utils.ValidateStruct(&req); fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	partner, token, err := h.authService.LoginPartner(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrAccountInactive) {
		return utils.UnauthorizedResponse(c, "Invalid email or password")
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", err)
	}

	return utils.SuccessResponse(c, "Logged in", dto.PartnerAuthResponse{
		Token:   token,
		Partner: *dto.PartnerToResponse(partner),
	})
}

// GoogleLogin redirects to Google OAuth
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	state, err := generateState()
	if err != nil {
		logger.AuthError("oauth_state_failed", "Failed to generate state", err, nil)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate state", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Redirect(h.authService.GetGoogleAuthURL(state))
}

// GoogleCallback handles the OAuth callback from Google
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies("oauth_state") {
		logger.Auth("oauth_state_mismatch", "Invalid state parameter", nil)
		return c.Redirect("/?error=invalid_state")
	}
	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	if errMsg := c.Query("error"); errMsg != "" {
		return c.Redirect(fmt.Sprintf("/?error=%s", errMsg))
	}

	code := c.Query("code")
	if code == "" {
		return c.Redirect("/?error=missing_code")
	}

	token, partner, err := h.authService.HandleGoogleCallback(c.UserContext(), code)
	if err != nil {
		logger.AuthError("oauth_callback_failed", "Failed to complete Google login", err, nil)
		return c.Redirect("/?error=auth_failed")
	}

	logger.Auth("oauth_callback_success", "Partner authenticated", map[string]interface{}{
		"partner_id": partner.ID.String(),
	})

	baseURL := os.Getenv("FRONTEND_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5173"
	}
	return c.Redirect(fmt.Sprintf("%s/auth/callback?token=%s", baseURL, token))
}

// Me returns the authenticated partner
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	partnerCtx, err := utils.GetPartnerFromContext(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Not authenticated")
	}
	return utils.SuccessResponse(c, "Partner retrieved", fiber.Map{
		"id":    partnerCtx.ID,
		"name":  partnerCtx.Name,
		"email": partnerCtx.Email,
	})
}

// GuestLogin godoc
// @Summary Exchange a project credential for a bearer token
// @Description Accepts exactly one of access_code, share_token or preview_token
// @Tags Guest
// @Accept json
// @Produce json
// @Param request body dto.GuestLoginRequest true "Credential"
// @Success 200 {object} dto.GuestLoginResponse
// @Router /guest/login [post]
func (h *AuthHandler) GuestLogin(c *fiber.Ctx) error {
	var req dto.GuestLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	issued, err := h.authService.GuestLogin(c.UserContext(), services.GuestCredential{
		AccessCode:   req.AccessCode,
		ShareToken:   req.ShareToken,
		PreviewToken: req.PreviewToken,
	})
	switch {
	case errors.Is(err, services.ErrNoCredential):
		return utils.ValidationErrorResponse(c, map[string]string{"credential": "one credential is required"})
	case errors.Is(err, services.ErrMultipleCredentials):
		return utils.ValidationErrorResponse(c, map[string]string{"credential": "only one credential may be presented"})
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.UnauthorizedResponse(c, "Invalid credential")
	case err != nil:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", err)
	}

	return utils.SuccessResponse(c, "Credential accepted", dto.GuestLoginResponse{
		Token:     issued.Secret,
		TokenName: issued.Token.Name,
		Tier:      string(issued.Tier),
		Project:   *dto.ProjectToResponse(issued.Project),
	})
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
