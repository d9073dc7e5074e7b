package model

import "time"

const (
	SettingSimulationMode        = "simulation_mode"
	SettingReminderMinutesBefore = "reminder_minutes_before"
	SettingTimezone              = "timezone"
)

// SystemSetting - пара ключ/значение системной настройки
type SystemSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
