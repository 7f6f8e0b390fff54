package models

import (
	"time"

	"github.com/google/uuid"
)

// Partner is a photographer studio account operating projects.
type Partner struct {
	ID         uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name       string    `gorm:"not null"`
	Email      string    `gorm:"uniqueIndex;not null"`
	Password   string    // bcrypt hash, empty for OAuth accounts
	Provider   string    `gorm:"default:'local'"` // local, google
	ProviderID string
	IsActive   bool `gorm:"default:true"`
	LastLogin  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	Projects []Project `gorm:"foreignKey:PartnerID"`
}

func (Partner) TableName() string {
	return "partners"
}
