package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/pkg/logger"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

// ProjectValidity re-checks the scoped project on every credentialed guest
// request. When the project is no longer usable for the token's kind, the
// credential is revoked on the spot so it cannot resolve again, and the
// request fails with the dedicated reason code.
func ProjectValidity(authService services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := GetAccessToken(c)
		if !ok {
			return utils.UnauthorizedResponse(c, "Missing credential")
		}
		if token.Project == nil {
			// Token without a project scope has nothing to gate
			return c.Next()
		}

		kind, _ := token.Kind()
		if !token.Project.ValidForTokenKind(kind, time.Now()) {
			if err := authService.RevokeToken(c.UserContext(), token.ID); err != nil {
				logger.AuthError("gate_revoke_failed", "Failed to revoke credential of invalid project", err, map[string]interface{}{
					"token_id": token.ID.String(),
				})
			}
			logger.Auth("project_invalid", "Credential revoked, project no longer valid", map[string]interface{}{
				"token_id":   token.ID.String(),
				"project_id": token.Project.ID.String(),
				"token_name": token.Name,
			})
			return utils.ErrorCodeResponse(c, fiber.StatusForbidden,
				"The project behind this credential is no longer available", utils.ErrCodeProjectInvalid)
		}

		return c.Next()
	}
}

