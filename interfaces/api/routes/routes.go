package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/interfaces/api/handlers"
	"github.com/tablostudio/tablo-api/pkg/config"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers, authService services.AuthService, cfg *config.Config) {
	// Health and root routes
	SetupHealthRoutes(app, h.Health)

	// API version group
	api := app.Group("/api/v1")

	SetupAuthRoutes(api, h, cfg)
	SetupGuestRoutes(api, h, authService, cfg)
	SetupAdminRoutes(api, h, cfg)
	SetupLogRoutes(api, h)

	// WebSocket routes (needs app, not api group)
	SetupWebSocketRoutes(app, cfg)
}
