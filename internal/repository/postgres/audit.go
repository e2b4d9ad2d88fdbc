package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocell/team-service/internal/domain/entity"
)

// AuditLogRepository реализует repository.AuditLogRepository для PostgreSQL.
// Журнал только дополняется; единственная операция удаления это Purge.
type AuditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository создает новый репозиторий журнала аудита
func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{pool: pool}
}

// Create добавляет запись в журнал
func (r *AuditLogRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	conn := getConn(ctx, r.pool)

	query := `
		INSERT INTO audit_logs (id, user_id, action_type, resource_type, resource_id,
			description, ip_address, user_agent, success, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := conn.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.ActionType,
		entry.ResourceType,
		entry.ResourceID,
		entry.Description,
		entry.IPAddress,
		entry.UserAgent,
		entry.Success,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	for key, value := range entry.Details {
		_, err := conn.Exec(ctx,
			`INSERT INTO audit_log_details (audit_log_id, detail_key, detail_value) VALUES ($1, $2, $3)`,
			entry.ID, key, value,
		)
		if err != nil {
			return fmt.Errorf("failed to insert audit log detail: %w", err)
		}
	}

	return nil
}

// Query возвращает записи журнала по составному фильтру,
// упорядоченные по времени записи
func (r *AuditLogRepository) Query(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditLog, error) {
	conn := getConn(ctx, r.pool)

	query := `
		SELECT id, user_id, action_type, resource_type, resource_id,
			description, ip_address, user_agent, success, timestamp
		FROM audit_logs
	`

	var conditions []string
	var args []any

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.UserID != "" {
		addCondition("user_id = $%d", filter.UserID)
	}
	if filter.ActionType != "" {
		addCondition("action_type = $%d", filter.ActionType)
	}
	if filter.ResourceType != "" {
		addCondition("resource_type = $%d", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		addCondition("resource_id = $%d", filter.ResourceID)
	}
	if filter.IPAddress != "" {
		addCondition("ip_address = $%d", filter.IPAddress)
	}
	if filter.Success != nil {
		addCondition("success = $%d", *filter.Success)
	}
	if filter.From != nil {
		addCondition("timestamp >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCondition("timestamp <= $%d", *filter.To)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp, id"

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*entity.AuditLog
	for rows.Next() {
		var entry entity.AuditLog
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ActionType,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.Description,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.Success,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
	}

	for _, entry := range entries {
		details, err := r.loadDetails(ctx, conn, entry.ID)
		if err != nil {
			return nil, err
		}
		entry.Details = details
	}

	return entries, nil
}

// CountByUser возвращает число записей журнала по пользователю
func (r *AuditLogRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM audit_logs WHERE user_id = $1`, userID)
}

// CountByActionType возвращает число записей журнала по типу действия
func (r *AuditLogRepository) CountByActionType(ctx context.Context, actionType entity.ActionType) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM audit_logs WHERE action_type = $1`, actionType)
}

// CountByResourceType возвращает число записей журнала по типу ресурса
func (r *AuditLogRepository) CountByResourceType(ctx context.Context, resourceType entity.ResourceType) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM audit_logs WHERE resource_type = $1`, resourceType)
}

// Purge удаляет записи старше cutoff и возвращает их количество
func (r *AuditLogRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	conn := getConn(ctx, r.pool)

	result, err := conn.Exec(ctx, `DELETE FROM audit_logs WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit logs: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *AuditLogRepository) count(ctx context.Context, query string, arg any) (int64, error) {
	conn := getConn(ctx, r.pool)

	var count int64
	if err := conn.QueryRow(ctx, query, arg).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	return count, nil
}

func (r *AuditLogRepository) loadDetails(ctx context.Context, conn querier, entryID string) (map[string]string, error) {
	rows, err := conn.Query(ctx, `SELECT detail_key, detail_value FROM audit_log_details WHERE audit_log_id = $1`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log details: %w", err)
	}
	defer rows.Close()

	details := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan audit log detail: %w", err)
		}
		details[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit log details: %w", err)
	}

	return details, nil
}
