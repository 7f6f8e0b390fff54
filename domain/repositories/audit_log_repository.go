package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByProject(ctx context.Context, projectID uuid.UUID, offset, limit int) ([]models.AuditLog, int64, error)
	ListByProjectAndType(ctx context.Context, projectID uuid.UUID, auditType models.AuditType, offset, limit int) ([]models.AuditLog, int64, error)
}
