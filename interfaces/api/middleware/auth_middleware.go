package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/pkg/logger"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

const (
	// Locals keys set by the auth middlewares
	LocalsPartner     = "partner"
	LocalsAccessToken = "accessToken"
	LocalsAccessTier  = "accessTier"
)

// Protected validates the partner JWT and sets the partner context.
func Protected(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := utils.ExtractTokenFromHeader(c.Get("Authorization"))
		if token == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization header")
		}

		partnerCtx, err := utils.ValidatePartnerToken(token, jwtSecret)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrExpiredToken):
				return utils.UnauthorizedResponse(c, "Token has expired")
			default:
				return utils.UnauthorizedResponse(c, "Invalid token")
			}
		}

		c.Locals(LocalsPartner, partnerCtx)
		return c.Next()
	}
}

// GuestAuth resolves the opaque bearer secret to its stored credential and
// classifies the request by the token's stored name. The name is the only
// input to the tier decision; unknown names fail closed.
func GuestAuth(authService services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := utils.ExtractTokenFromHeader(c.Get("Authorization"))
		if secret == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization header")
		}

		token, err := authService.ResolveBearer(c.UserContext(), secret)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrExpiredToken):
				return utils.UnauthorizedResponse(c, "Token has expired")
			default:
				return utils.UnauthorizedResponse(c, "Invalid token")
			}
		}

		tier := token.Tier()
		if tier == models.TierUnknown {
			logger.Auth("unknown_token_name", "Bearer token with unknown name rejected", map[string]interface{}{
				"token_id": token.ID.String(),
				"name":     token.Name,
			})
			return utils.UnauthorizedResponse(c, "Invalid token")
		}

		c.Locals(LocalsAccessToken, token)
		c.Locals(LocalsAccessTier, tier)
		return c.Next()
	}
}

// RequireFullAccess gates mutating guest endpoints to full-tier credentials
// (tablo-auth-token and qr-registration).
func RequireFullAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tier, ok := c.Locals(LocalsAccessTier).(models.AccessTier)
		if !ok {
			return utils.UnauthorizedResponse(c, "Missing credential")
		}
		if tier != models.TierFull {
			return utils.ErrorCodeResponse(c, fiber.StatusForbidden,
				"This action requires full access", utils.ErrCodeInsufficientPermissions)
		}
		return c.Next()
	}
}

// RequireShareAccess admits share and full tiers, rejecting preview.
func RequireShareAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tier, ok := c.Locals(LocalsAccessTier).(models.AccessTier)
		if !ok {
			return utils.UnauthorizedResponse(c, "Missing credential")
		}
		if tier != models.TierFull && tier != models.TierShare {
			return utils.ErrorCodeResponse(c, fiber.StatusForbidden,
				"This action requires share access", utils.ErrCodeInsufficientPermissions)
		}
		return c.Next()
	}
}

// RequireFinalizeAccess gates the finalization sub-API with its dedicated
// reason code so clients can distinguish it from ordinary permission errors.
func RequireFinalizeAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tier, ok := c.Locals(LocalsAccessTier).(models.AccessTier)
		if !ok {
			return utils.UnauthorizedResponse(c, "Missing credential")
		}
		if !tier.CanFinalize() {
			return utils.ErrorCodeResponse(c, fiber.StatusForbidden,
				"Finalization requires full access", utils.ErrCodeFinalizeRequiresFull)
		}
		return c.Next()
	}
}

// OptionalPartner validates a partner JWT from the Authorization header or
// the token query parameter, continuing anonymously when absent or invalid.
// Used for WebSocket upgrades, where browsers cannot send headers.
func OptionalPartner(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := utils.ExtractTokenFromHeader(c.Get("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return c.Next()
		}

		partnerCtx, err := utils.ValidatePartnerToken(token, jwtSecret)
		if err != nil {
			return c.Next()
		}

		c.Locals(LocalsPartner, partnerCtx)
		return c.Next()
	}
}

// GetAccessToken reads the resolved credential from the request context.
func GetAccessToken(c *fiber.Ctx) (*models.AccessToken, bool) {
	token, ok := c.Locals(LocalsAccessToken).(*models.AccessToken)
	return token, ok
}
