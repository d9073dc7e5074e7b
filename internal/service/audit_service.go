package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/lingua_automation/internal/model"
	"go.uber.org/zap"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// AutomationLogRepository - хранилище журнала автоматизации
type AutomationLogRepository interface {
	Create(ctx context.Context, entry *model.AutomationLog) error
	List(ctx context.Context, filter model.LogFilter) ([]*model.AutomationLog, error)
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}

// AuditService - журнал результатов автоматизации
type AuditService struct {
	repo   AutomationLogRepository
	logger *zap.Logger
}

func NewAuditService(repo AutomationLogRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
	}
}

// Record добавляет запись в журнал. Ошибка записи не возвращается вызывающему коду и не
// повторяется: она только пишется в лог приложения, а результатом будет nil.
func (s *AuditService) Record(
	ctx context.Context,
	logType model.LogType,
	status model.LogStatus,
	message string,
	details map[string]any,
	relatedID *int64,
) *model.AutomationLog {
	entry := &model.AutomationLog{
		Type:      logType,
		Status:    status,
		Message:   message,
		Details:   details,
		RelatedID: relatedID,
	}

	// Запись в журнал не должна отменяться вместе с запросом, который её вызвал
	if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Error("Failed to write automation log",
			zap.String("type", string(logType)),
			zap.String("status", string(status)),
			zap.String("message", message),
			zap.Error(err))
		return nil
	}

	s.logger.Debug("Automation log recorded",
		zap.Int64("id", entry.ID),
		zap.String("type", string(logType)),
		zap.String("status", string(status)))

	return entry
}

// List получает записи журнала, новые первыми
func (s *AuditService) List(ctx context.Context, filter model.LogFilter) ([]*model.AutomationLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLogLimit
	}
	if filter.Limit > maxLogLimit {
		filter.Limit = maxLogLimit
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list automation logs: %w", err)
	}

	return entries, nil
}

// Prune удаляет записи старше before. Сама очистка тоже попадает в журнал.
func (s *AuditService) Prune(ctx context.Context, before time.Time) (int64, error) {
	deleted, err := s.repo.DeleteBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("prune automation logs: %w", err)
	}

	s.Record(ctx, model.LogTypeCleanup, model.LogStatusSuccess,
		fmt.Sprintf("Pruned %d automation log entries", deleted),
		map[string]any{"before": before.Format(time.RFC3339), "deleted": deleted},
		nil)

	s.logger.Info("Automation logs pruned",
		zap.Time("before", before),
		zap.Int64("deleted", deleted))

	return deleted, nil
}
