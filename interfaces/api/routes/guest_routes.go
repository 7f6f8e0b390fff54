package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/interfaces/api/handlers"
	"github.com/tablostudio/tablo-api/interfaces/api/middleware"
	"github.com/tablostudio/tablo-api/pkg/config"
)

// SetupGuestRoutes wires the guest-facing surface. Every credentialed route
// passes through the bearer resolution and the per-request project validity
// gate; mutating routes additionally require the full tier.
func SetupGuestRoutes(api fiber.Router, h *handlers.Handlers, authService services.AuthService, cfg *config.Config) {
	guest := api.Group("/guest")

	guestLimiter := middleware.GuestRateLimiter(&cfg.RateLimit)
	bearer := middleware.GuestAuth(authService)
	gate := middleware.ProjectValidity(authService)

	// Credential exchange and session recovery are reachable without a token
	guest.Post("/login", guestLimiter, h.Auth.GuestLogin)
	guest.Post("/restore/request", guestLimiter, h.Guest.RequestRestore)
	guest.Post("/restore", guestLimiter, h.Guest.Restore)

	// Read surface: share tier and up
	guest.Get("/project", bearer, gate, middleware.RequireShareAccess(), h.Guest.Project)
	guest.Get("/persons", bearer, gate, middleware.RequireShareAccess(), h.Guest.ListPersons)
	guest.Get("/me", bearer, gate, h.Guest.Me)
	guest.Post("/heartbeat", bearer, gate, h.Guest.Heartbeat)

	// Mutation surface: full tier only
	guest.Post("/register", guestLimiter, bearer, gate, middleware.RequireFullAccess(), h.Guest.Register)
	guest.Put("/claim", bearer, gate, middleware.RequireFullAccess(), h.Guest.UpdateClaim)

	// Finalization carries its own gate with a dedicated reason code
	guest.Post("/finalize", bearer, gate, middleware.RequireFinalizeAccess(), h.Guest.Finalize)
}
