package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/lingua_automation/internal/model"
	"github.com/Freeeeeet/lingua_automation/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AutomationLogRepository - журнал автоматизации (только добавление)
type AutomationLogRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewAutomationLogRepository создаёт новый репозиторий
func NewAutomationLogRepository(pool *pgxpool.Pool, logger *zap.Logger) *AutomationLogRepository {
	return &AutomationLogRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// Create добавляет запись в журнал
func (r *AutomationLogRepository) Create(ctx context.Context, entry *model.AutomationLog) error {
	query := `
		INSERT INTO automation_logs (type, status, message, details, related_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx,
		query,
		entry.Type,
		entry.Status,
		entry.Message,
		entry.Details,
		entry.RelatedID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("create automation log: %w", err)
	}

	return nil
}

// List получает записи журнала, новые первыми
func (r *AutomationLogRepository) List(ctx context.Context, filter model.LogFilter) ([]*model.AutomationLog, error) {
	query := `
		SELECT id, type, status, message, details, related_id, created_at
		FROM automation_logs
		WHERE ($1 = '' OR type = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3::bigint IS NULL OR related_id = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	rows, err := r.Query(ctx, query, string(filter.Type), string(filter.Status), filter.RelatedID, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list automation logs: %w", err)
	}
	defer rows.Close()

	var entries []*model.AutomationLog
	for rows.Next() {
		entry := &model.AutomationLog{}
		err := rows.Scan(
			&entry.ID,
			&entry.Type,
			&entry.Status,
			&entry.Message,
			&entry.Details,
			&entry.RelatedID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan automation log: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate automation logs: %w", err)
	}

	return entries, nil
}

// DeleteBefore удаляет записи старше t (административная очистка)
func (r *AutomationLogRepository) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM automation_logs WHERE created_at < $1`, t)
	if err != nil {
		return 0, fmt.Errorf("delete automation logs: %w", err)
	}
	return affected, nil
}
