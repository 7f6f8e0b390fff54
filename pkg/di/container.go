package di

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tablostudio/tablo-api/application/serviceimpl"
	"github.com/tablostudio/tablo-api/domain/repositories"
	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/infrastructure/mailer"
	"github.com/tablostudio/tablo-api/infrastructure/oauth"
	"github.com/tablostudio/tablo-api/infrastructure/postgres"
	"github.com/tablostudio/tablo-api/infrastructure/redis"
	"github.com/tablostudio/tablo-api/infrastructure/worker"
	"github.com/tablostudio/tablo-api/interfaces/api/handlers"
	"github.com/tablostudio/tablo-api/pkg/config"
	"github.com/tablostudio/tablo-api/pkg/logger"
	"github.com/tablostudio/tablo-api/pkg/scheduler"
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.RedisClient
	Scheduler   scheduler.MaintenanceScheduler
	GoogleOAuth *oauth.GoogleOAuth
	Mailer      services.Mailer

	// Repositories
	PartnerRepository      repositories.PartnerRepository
	ProjectRepository      repositories.ProjectRepository
	PersonRepository       repositories.PersonRepository
	GuestSessionRepository repositories.GuestSessionRepository
	AccessTokenRepository  repositories.AccessTokenRepository
	AuditLogRepository     repositories.AuditLogRepository

	// Services
	AuthService     services.AuthService
	GuestService    services.GuestService
	ConflictService services.ConflictService
	ProjectService  services.ProjectService
	AuditLogService services.AuditLogService

	// Workers
	PresenceWorker *worker.PresenceWorker
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Initialize() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	if err := c.initServices(); err != nil {
		return err
	}

	if err := c.initWorkers(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	return nil
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg
	logger.Startup("config_loaded", "Configuration loaded", nil)
	return nil
}

func (c *Container) initInfrastructure() error {
	// Initialize Database
	dbConfig := postgres.DatabaseConfig{
		Host:     c.Config.Database.Host,
		Port:     c.Config.Database.Port,
		User:     c.Config.Database.User,
		Password: c.Config.Database.Password,
		DBName:   c.Config.Database.DBName,
		SSLMode:  c.Config.Database.SSLMode,
	}

	db, err := postgres.NewDatabase(dbConfig)
	if err != nil {
		return err
	}
	c.DB = db
	logger.Startup("db_connected", "Database connected", nil)

	// Run migrations
	if err := postgres.Migrate(db); err != nil {
		return err
	}
	logger.Startup("db_migrated", "Database migrated", nil)

	// Initialize Redis
	redisConfig := redis.RedisConfig{
		Host:     c.Config.Redis.Host,
		Port:     c.Config.Redis.Port,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
	c.RedisClient = redis.NewRedisClient(redisConfig)

	// Test Redis connection; presence degrades to direct DB stamps without it
	if err := c.RedisClient.Ping(context.Background()); err != nil {
		logger.StartupWarn("redis_connection_failed", "Redis connection failed", map[string]interface{}{"error": err.Error()})
	} else {
		logger.Startup("redis_connected", "Redis connected", nil)
	}

	// Initialize Google OAuth
	c.GoogleOAuth = oauth.NewGoogleOAuth(c.Config.Google)
	if err := c.GoogleOAuth.ValidateConfig(); err != nil {
		logger.StartupWarn("google_oauth_not_configured", "Google OAuth not configured", map[string]interface{}{"error": err.Error()})
	} else {
		logger.Startup("google_oauth_initialized", "Google OAuth initialized", nil)
	}

	// Initialize Mailer
	c.Mailer = mailer.NewMailer(c.Config.Mail)
	if c.Config.Mail.Enabled {
		logger.Startup("mailer_initialized", "SMTP mailer initialized", nil)
	} else {
		logger.StartupWarn("mailer_disabled", "Mail delivery disabled, restore links are logged only", nil)
	}

	return nil
}

func (c *Container) initRepositories() error {
	c.PartnerRepository = postgres.NewPartnerRepository(c.DB)
	c.ProjectRepository = postgres.NewProjectRepository(c.DB)
	c.PersonRepository = postgres.NewPersonRepository(c.DB)
	c.GuestSessionRepository = postgres.NewGuestSessionRepository(c.DB)
	c.AccessTokenRepository = postgres.NewAccessTokenRepository(c.DB)
	c.AuditLogRepository = postgres.NewAuditLogRepository(c.DB)
	logger.Startup("repositories_initialized", "Repositories initialized", nil)
	return nil
}

func (c *Container) initServices() error {
	c.AuditLogService = serviceimpl.NewAuditLogService(c.AuditLogRepository)
	c.AuthService = serviceimpl.NewAuthService(
		c.PartnerRepository,
		c.ProjectRepository,
		c.AccessTokenRepository,
		c.AuditLogService,
		c.GoogleOAuth,
		c.Config.JWT.Secret,
	)
	c.GuestService = serviceimpl.NewGuestService(
		c.GuestSessionRepository,
		c.PersonRepository,
		c.ProjectRepository,
		c.AccessTokenRepository,
		c.RedisClient,
		c.Mailer,
		c.AuditLogService,
		c.Config,
	)
	c.ConflictService = serviceimpl.NewConflictService(c.GuestSessionRepository, c.AuditLogService)
	c.ProjectService = serviceimpl.NewProjectService(c.ProjectRepository, c.PersonRepository, c.AuditLogService)

	logger.Startup("services_initialized", "Services initialized", nil)
	return nil
}

func (c *Container) initWorkers() error {
	c.PresenceWorker = worker.NewPresenceWorker(c.RedisClient, c.GuestSessionRepository)
	c.PresenceWorker.Start()
	return nil
}

func (c *Container) initScheduler() error {
	c.Scheduler = scheduler.NewMaintenanceScheduler()

	// Expired restore links lose their hash so a late click cannot resolve
	if err := c.Scheduler.AddJob("restore-token-purge", c.Config.Guest.RestorePurgeCron, func() {
		ctx := context.Background()
		purged, err := c.GuestSessionRepository.PurgeExpiredRestoreTokens(ctx, time.Now())
		if err != nil {
			logger.SchedulerError("restore_purge_failed", "Restore token purge failed", err, nil)
			return
		}
		if purged > 0 {
			logger.Scheduler("restore_purge_done", "Expired restore tokens purged", map[string]interface{}{"count": purged})
		}
	}); err != nil {
		logger.StartupWarn("restore_purge_schedule_failed", "Failed to schedule restore token purge", map[string]interface{}{"error": err.Error()})
	}

	// Sweep credentials whose backing project was finalized or had its code
	// disabled; complements the per-request validity gate
	if err := c.Scheduler.AddJob("token-sweep", c.Config.Guest.TokenSweepCron, func() {
		ctx := context.Background()
		revoked, err := c.AccessTokenRepository.RevokeForInvalidProjects(ctx, time.Now())
		if err != nil {
			logger.SchedulerError("token_sweep_failed", "Token sweep failed", err, nil)
			return
		}
		if revoked > 0 {
			logger.Scheduler("token_sweep_done", "Stale credentials revoked", map[string]interface{}{"count": revoked})
		}
	}); err != nil {
		logger.StartupWarn("token_sweep_schedule_failed", "Failed to schedule token sweep", map[string]interface{}{"error": err.Error()})
	}

	// Extra flush between worker poll ticks keeps last_activity_at fresh
	if err := c.Scheduler.AddJob("presence-flush", c.Config.Guest.PresenceFlushCron, func() {
		if c.PresenceWorker != nil {
			c.PresenceWorker.TriggerFlush()
		}
	}); err != nil {
		logger.StartupWarn("presence_flush_schedule_failed", "Failed to schedule presence flush", map[string]interface{}{"error": err.Error()})
	}

	c.Scheduler.Start()
	logger.Startup("scheduler_started", "Maintenance scheduler started", nil)

	return nil
}

func (c *Container) Cleanup() error {
	logger.Startup("cleanup_started", "Starting cleanup...", nil)

	// Stop presence worker (flushes once more on the way out)
	if c.PresenceWorker != nil {
		c.PresenceWorker.Stop()
	}

	// Stop scheduler
	if c.Scheduler != nil && c.Scheduler.IsRunning() {
		c.Scheduler.Stop()
		logger.Startup("scheduler_stopped", "Maintenance scheduler stopped", nil)
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.StartupWarn("redis_close_failed", "Failed to close Redis connection", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("redis_closed", "Redis connection closed", nil)
		}
	}

	// Close database connection
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.StartupWarn("db_close_failed", "Failed to close database connection", map[string]interface{}{"error": err.Error()})
			} else {
				logger.Startup("db_closed", "Database connection closed", nil)
			}
		}
	}

	logger.Startup("cleanup_completed", "Cleanup completed", nil)
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		AuthService:     c.AuthService,
		GuestService:    c.GuestService,
		ConflictService: c.ConflictService,
		ProjectService:  c.ProjectService,
		AuditLogService: c.AuditLogService,
	}
}

func (c *Container) GetHandlerInfrastructure() *handlers.Infrastructure {
	return &handlers.Infrastructure{
		DB:                     c.DB,
		RedisClient:            c.RedisClient,
		GuestSessionRepository: c.GuestSessionRepository,
	}
}
