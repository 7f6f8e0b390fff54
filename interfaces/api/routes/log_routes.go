package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/interfaces/api/handlers"
)

// SetupLogRoutes sets up log-related routes
func SetupLogRoutes(router fiber.Router, h *handlers.Handlers) {
	logs := router.Group("/logs")

	// Protected by admin token in header or query param
	logs.Get("/", h.Log.GetLogs)
	logs.Get("/files", h.Log.GetLogFiles)
	logs.Get("/stats", h.Log.GetLogStats)
}
