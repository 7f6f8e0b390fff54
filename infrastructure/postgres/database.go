package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tablostudio/tablo-api/domain/models"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewDatabase(config DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		config.Host, config.User, config.Password, config.DBName, config.Port, config.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Run auto migrations first to create tables
	if err := db.AutoMigrate(
		&models.Partner{},
		&models.Project{},
		&models.Person{},
		&models.GuestSession{},
		&models.AccessToken{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("failed to run auto migrations: %v", err)
	}

	if err := runOwnershipMigrations(db); err != nil {
		return fmt.Errorf("failed to run ownership migrations: %v", err)
	}

	return nil
}

// runOwnershipMigrations adds constraints AutoMigrate cannot express. The
// partial unique index is the database-level backstop of the single-owner
// invariant: at most one verified session per (project, person).
func runOwnershipMigrations(db *gorm.DB) error {
	migrations := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_guest_sessions_verified_owner
			ON guest_sessions(project_id, tablo_person_id)
			WHERE verification_status = 'verified' AND tablo_person_id IS NOT NULL`,

		`CREATE INDEX IF NOT EXISTS idx_guest_sessions_project_status
			ON guest_sessions(project_id, verification_status)`,

		`CREATE INDEX IF NOT EXISTS idx_access_tokens_project_name
			ON access_tokens(tablo_project_id, name)`,
	}

	for _, sql := range migrations {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("migration failed: %s, error: %v", sql[:50], err)
		}
	}

	return nil
}
