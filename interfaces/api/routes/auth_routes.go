package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/interfaces/api/handlers"
	"github.com/tablostudio/tablo-api/interfaces/api/middleware"
	"github.com/tablostudio/tablo-api/pkg/config"
)

func SetupAuthRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	auth := api.Group("/auth")

	// Partner account auth, rate limited like any unauthenticated surface
	guestLimiter := middleware.GuestRateLimiter(&cfg.RateLimit)
	auth.Post("/register", guestLimiter, h.Auth.Register)
	auth.Post("/login", guestLimiter, h.Auth.Login)

	// Google OAuth
	auth.Get("/google", h.Auth.GoogleLogin)
	auth.Get("/google/callback", h.Auth.GoogleCallback)

	// Protected routes
	auth.Get("/me", middleware.Protected(cfg.JWT.Secret), h.Auth.Me)
}
