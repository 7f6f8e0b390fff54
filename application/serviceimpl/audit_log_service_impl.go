package serviceimpl

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/domain/models"
	"github.com/tablostudio/tablo-api/domain/repositories"
	"github.com/tablostudio/tablo-api/domain/services"
)

type AuditLogServiceImpl struct {
	auditLogRepo repositories.AuditLogRepository
}

func NewAuditLogService(auditLogRepo repositories.AuditLogRepository) services.AuditLogService {
	return &AuditLogServiceImpl{
		auditLogRepo: auditLogRepo,
	}
}

func (s *AuditLogServiceImpl) Record(ctx context.Context, projectID uuid.UUID, auditType models.AuditType, message string, details *models.AuditDetails) error {
	entry := &models.AuditLog{
		ProjectID: projectID,
		AuditType: auditType,
		Message:   message,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		entry.Details = string(raw)
	}
	return s.auditLogRepo.Create(ctx, entry)
}

func (s *AuditLogServiceImpl) GetByProject(ctx context.Context, projectID uuid.UUID, page, limit int) ([]models.AuditLog, int64, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.auditLogRepo.ListByProject(ctx, projectID, offset, limit)
}

func (s *AuditLogServiceImpl) GetByProjectAndType(ctx context.Context, projectID uuid.UUID, auditType models.AuditType, page, limit int) ([]models.AuditLog, int64, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.auditLogRepo.ListByProjectAndType(ctx, projectID, auditType, offset, limit)
}
