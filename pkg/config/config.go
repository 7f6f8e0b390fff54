package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Google    GoogleOAuthConfig
	Mail      MailConfig
	Guest     GuestConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Env     string
	BaseURL string // Public base URL used in restore links
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool // When disabled, restore mails are logged instead of sent
}

type GuestConfig struct {
	RestoreTokenTTLMinutes int // Lifetime of a session restore link
	HeartbeatTTLSeconds    int // Redis presence key lifetime
	PresenceFlushCron      string
	RestorePurgeCron       string
	TokenSweepCron         string
}

type RateLimitConfig struct {
	Enabled            bool
	MaxRequests        int
	WindowSeconds      int
	GuestMaxRequests   int // Stricter limit for register/restore endpoints
	GuestWindowSeconds int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists (optional for production)
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	restoreTTL, _ := strconv.Atoi(getEnv("GUEST_RESTORE_TTL_MINUTES", "30"))
	heartbeatTTL, _ := strconv.Atoi(getEnv("GUEST_HEARTBEAT_TTL_SECONDS", "120"))
	rlMax, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "120"))
	rlWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	rlGuestMax, _ := strconv.Atoi(getEnv("RATE_LIMIT_GUEST_MAX", "10"))
	rlGuestWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_GUEST_WINDOW_SECONDS", "60"))

	config := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "TabloStudio API"),
			Port:    getEnv("APP_PORT", "3000"),
			Env:     getEnv("APP_ENV", "development"),
			BaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "tablostudio"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		Google: GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/api/v1/auth/google/callback"),
		},
		Mail: MailConfig{
			Host:     getEnv("MAIL_HOST", "localhost"),
			Port:     getEnv("MAIL_PORT", "587"),
			Username: getEnv("MAIL_USERNAME", ""),
			Password: getEnv("MAIL_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "no-reply@tablostudio.hu"),
			Enabled:  getEnv("MAIL_ENABLED", "false") == "true",
		},
		Guest: GuestConfig{
			RestoreTokenTTLMinutes: restoreTTL,
			HeartbeatTTLSeconds:    heartbeatTTL,
			PresenceFlushCron:      getEnv("GUEST_PRESENCE_FLUSH_CRON", "*/1 * * * *"),
			RestorePurgeCron:       getEnv("GUEST_RESTORE_PURGE_CRON", "*/10 * * * *"),
			TokenSweepCron:         getEnv("PROJECT_TOKEN_SWEEP_CRON", "*/5 * * * *"),
		},
		RateLimit: RateLimitConfig{
			Enabled:            getEnv("RATE_LIMIT_ENABLED", "true") == "true",
			MaxRequests:        rlMax,
			WindowSeconds:      rlWindow,
			GuestMaxRequests:   rlGuestMax,
			GuestWindowSeconds: rlGuestWindow,
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
