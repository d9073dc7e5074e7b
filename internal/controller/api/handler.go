// Package api - HTTP API панели управления автоматизацией.
package api

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/app"
	"github.com/Freeeeeet/lingua_automation/internal/model"
)

// SettingsStore - системные настройки
type SettingsStore interface {
	All(ctx context.Context) ([]*model.SystemSetting, error)
	Set(ctx context.Context, key, value string) (*model.SystemSetting, error)
}

// Scheduler - планировщик автоматизации
type Scheduler interface {
	RunNotifications(ctx context.Context, day *time.Weekday) (*app.RunReport, error)
	RunMeetingCreation(ctx context.Context) (*app.RunReport, error)
	Reinitialize() error
	Status() app.Status
}

// MeetingStore - встречи видео-провайдера
type MeetingStore interface {
	CompleteFinishedMeetings(ctx context.Context) (int64, error)
	List(ctx context.Context, limit int) ([]*model.Meeting, error)
}

// AuditLog - журнал автоматизации
type AuditLog interface {
	List(ctx context.Context, filter model.LogFilter) ([]*model.AutomationLog, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
	Export(ctx context.Context, filter model.LogFilter) (*bytes.Buffer, string, error)
}

// ScheduleLister - расписания курсов
type ScheduleLister interface {
	List(ctx context.Context) ([]*model.CourseSchedule, error)
}

// Handler содержит зависимости HTTP обработчиков
type Handler struct {
	settings  SettingsStore
	scheduler Scheduler
	meetings  MeetingStore
	audit     AuditLog
	schedules ScheduleLister
	logger    *zap.Logger
}

func NewHandler(
	settings SettingsStore,
	scheduler Scheduler,
	meetings MeetingStore,
	audit AuditLog,
	schedules ScheduleLister,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		settings:  settings,
		scheduler: scheduler,
		meetings:  meetings,
		audit:     audit,
		schedules: schedules,
		logger:    logger,
	}
}
