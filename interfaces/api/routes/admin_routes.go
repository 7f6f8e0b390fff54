package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tablostudio/tablo-api/interfaces/api/handlers"
	"github.com/tablostudio/tablo-api/interfaces/api/middleware"
	"github.com/tablostudio/tablo-api/pkg/config"
)

// SetupAdminRoutes wires the partner panel: project management, roster,
// conflict arbitration and the audit trail. Everything requires a partner JWT.
func SetupAdminRoutes(api fiber.Router, h *handlers.Handlers, cfg *config.Config) {
	admin := api.Group("/admin", middleware.Protected(cfg.JWT.Secret))

	projects := admin.Group("/projects")
	projects.Post("/", h.Project.Create)
	projects.Get("/", h.Project.List)
	projects.Get("/:projectId", h.Project.Get)
	projects.Put("/:projectId/status", h.Project.UpdateStatus)
	projects.Put("/:projectId/access-code", h.Project.SetAccessCode)
	projects.Post("/:projectId/share-token/rotate", h.Project.RotateShareToken)
	projects.Post("/:projectId/preview-token/rotate", h.Project.RotatePreviewToken)
	projects.Post("/:projectId/qr-token", h.Project.IssueQRToken)
	projects.Get("/:projectId/audit", h.Project.AuditLog)

	// Roster
	projects.Post("/:projectId/persons", h.Project.AddPerson)
	projects.Get("/:projectId/persons", h.Project.ListPersons)
	projects.Put("/:projectId/persons/:personId/photo", h.Project.AttachPhoto)

	// Sessions and arbitration
	projects.Get("/:projectId/sessions", h.Conflict.ListSessions)
	projects.Put("/:projectId/sessions/:sessionId/ban", h.Conflict.SetBanned)
	projects.Get("/:projectId/conflicts", h.Conflict.ListPending)
	projects.Get("/:projectId/conflicts/counts", h.Conflict.Counts)
	projects.Post("/:projectId/conflicts/:sessionId", h.Conflict.Resolve)
}
