package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/geocell/team-service/internal/domain/entity"
	domainErrors "github.com/geocell/team-service/internal/domain/errors"
	"github.com/geocell/team-service/internal/logger"
	"github.com/geocell/team-service/internal/repository"
)

// AuditUseCase реализует журналирование действий и запросы к журналу.
// Запись выполняется синхронно: успешные мутации журналируются внутри
// транзакции мутации, неуспешные сразу после отката, до возврата
// результата вызывающей стороне.
type AuditUseCase struct {
	auditRepo repository.AuditLogRepository
	logger    *logger.Logger
}

// NewAuditUseCase создает новый usecase журнала аудита
func NewAuditUseCase(auditRepo repository.AuditLogRepository, log *logger.Logger) *AuditUseCase {
	return &AuditUseCase{
		auditRepo: auditRepo,
		logger:    log,
	}
}

// Record добавляет запись в журнал. Недоступность журнала поднимается как
// AUDIT_UNAVAILABLE и проваливает породившую запись операцию.
func (uc *AuditUseCase) Record(ctx context.Context, entry *entity.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		uc.logger.Errorw("audit append failed",
			"user_id", entry.UserID,
			"action_type", entry.ActionType,
			"resource_id", entry.ResourceID,
			"error", err,
		)
		return domainErrors.NewDomainError(
			"AUDIT_UNAVAILABLE",
			"audit log is unavailable",
			domainErrors.ErrAuditUnavailable,
		)
	}

	return nil
}

// LogSuccess журналирует успешное действие
func (uc *AuditUseCase) LogSuccess(
	ctx context.Context,
	actor entity.Actor,
	actionType entity.ActionType,
	resourceType entity.ResourceType,
	resourceID, description string,
	details map[string]string,
) error {
	return uc.Record(ctx, &entity.AuditLog{
		UserID:       actor.UserID,
		ActionType:   actionType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
		Details:      details,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		Success:      true,
	})
}

// LogFailure журналирует неуспешную попытку действия с причиной отказа
func (uc *AuditUseCase) LogFailure(
	ctx context.Context,
	actor entity.Actor,
	actionType entity.ActionType,
	resourceType entity.ResourceType,
	resourceID, description string,
	reason error,
) error {
	details := map[string]string{}
	if reason != nil {
		details["error"] = reason.Error()
	}

	return uc.Record(ctx, &entity.AuditLog{
		UserID:       actor.UserID,
		ActionType:   actionType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
		Details:      details,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		Success:      false,
	})
}

// Query возвращает записи журнала по фильтру
func (uc *AuditUseCase) Query(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLog, error) {
	entries, err := uc.auditRepo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	if entries == nil {
		entries = []*entity.AuditLog{}
	}
	return entries, nil
}

// CountByUser возвращает число записей по пользователю
func (uc *AuditUseCase) CountByUser(ctx context.Context, userID string) (int64, error) {
	return uc.auditRepo.CountByUser(ctx, userID)
}

// CountByActionType возвращает число записей по типу действия
func (uc *AuditUseCase) CountByActionType(ctx context.Context, actionType entity.ActionType) (int64, error) {
	return uc.auditRepo.CountByActionType(ctx, actionType)
}

// CountByResourceType возвращает число записей по типу ресурса
func (uc *AuditUseCase) CountByResourceType(ctx context.Context, resourceType entity.ResourceType) (int64, error) {
	return uc.auditRepo.CountByResourceType(ctx, resourceType)
}

// Purge удаляет записи старше cutoff. Единственная операция удаления,
// применяемая к журналу.
func (uc *AuditUseCase) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := uc.auditRepo.Purge(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit logs: %w", err)
	}

	uc.logger.Infow("audit logs purged", "cutoff", cutoff, "deleted", deleted)
	return deleted, nil
}
