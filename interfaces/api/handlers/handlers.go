package handlers

import (
	"gorm.io/gorm"

	"github.com/tablostudio/tablo-api/domain/repositories"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/infrastructure/redis"
	"github.com/tablostudio/tablo-api/pkg/config"
)

// Services contains all the services needed for handlers
type Services struct {
	AuthService     services.AuthService
	GuestService    services.GuestService
	ConflictService services.ConflictService
	ProjectService  services.ProjectService
	AuditLogService services.AuditLogService
}

// Infrastructure carries the shared clients some handlers probe directly
type Infrastructure struct {
	DB                     *gorm.DB
	RedisClient            *redis.RedisClient
	GuestSessionRepository repositories.GuestSessionRepository
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth     *AuthHandler
	Guest    *GuestHandler
	Conflict *ConflictHandler
	Project  *ProjectHandler
	Health   *HealthHandler
	Log      *LogHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(services *Services, infra *Infrastructure, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(services.AuthService),
		Guest:    NewGuestHandler(services.GuestService, services.ProjectService),
		Conflict: NewConflictHandler(services.ConflictService, services.GuestService, services.ProjectService),
		Project:  NewProjectHandler(services.ProjectService, services.AuditLogService, services.AuthService),
		Health:   NewHealthHandler(infra.DB, infra.RedisClient, infra.GuestSessionRepository),
		Log:      NewLogHandler(cfg),
	}
}
