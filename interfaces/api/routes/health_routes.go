package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/interfaces/api/handlers"
)

func SetupHealthRoutes(app *fiber.App, healthHandler *handlers.HealthHandler) {
	app.Get("/health", healthHandler.Health)
	app.Get("/health/detailed", healthHandler.DetailedHealth)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "TabloStudio API",
			"version": "1.0.0",
			"docs":    "/swagger",
			"health":  "/health",
		})
	})
}
