package handlers

import (
	"time"

	"github.com/Freeeeeet/lingua_automation/internal/app"
	"go.uber.org/zap"
)

// SchedulerStatus - источник состояния планировщика
type SchedulerStatus interface {
	Status() app.Status
}

// Settings - настройки, которые показывает /status
type Settings interface {
	SimulationMode() bool
	ReminderLead() time.Duration
	Location() *time.Location
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	scheduler SchedulerStatus
	settings  Settings
	logger    *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(scheduler SchedulerStatus, settings Settings, logger *zap.Logger) *Handlers {
	return &Handlers{
		scheduler: scheduler,
		settings:  settings,
		logger:    logger,
	}
}
