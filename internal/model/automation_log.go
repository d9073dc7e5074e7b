package model

import "time"

type LogType string

const (
	LogTypeMeetingCreation LogType = "meeting_creation"
	LogTypeNotification    LogType = "notification"
	LogTypeReminder        LogType = "reminder"
	LogTypeScheduledTask   LogType = "scheduled_task"
	LogTypeCleanup         LogType = "cleanup"
)

type LogStatus string

const (
	LogStatusSuccess   LogStatus = "success"
	LogStatusError     LogStatus = "error"
	LogStatusSimulated LogStatus = "simulated"
)

// AutomationLog - неизменяемая запись о результате автоматического действия
type AutomationLog struct {
	ID        int64          `json:"id"`
	Type      LogType        `json:"type"`
	Status    LogStatus      `json:"status"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RelatedID *int64         `json:"related_id,omitempty"` // ссылка на CourseSchedule
	CreatedAt time.Time      `json:"created_at"`
}

// LogFilter - фильтр выборки журнала. Пустые поля не ограничивают выборку.
type LogFilter struct {
	Type      LogType
	Status    LogStatus
	RelatedID *int64
	Limit     int
}
