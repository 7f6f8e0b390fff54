package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
)

type AuditLogService interface {
	// Record writes one audit entry; details is marshaled to the jsonb column.
	Record(ctx context.Context, projectID uuid.UUID, auditType models.AuditType, message string, details *models.AuditDetails) error

	// GetByProject returns audit entries with pagination
	GetByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]models.AuditLog, int64, error)

	// GetByProjectAndType returns audit entries filtered by type
	GetByProjectAndType(ctx context.Context, projectID uuid.UUID, auditType models.AuditType, page, limit int) ([]models.AuditLog, int64, error)
}
