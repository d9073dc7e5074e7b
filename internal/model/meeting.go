package model

import "time"

type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusCompleted MeetingStatus = "completed"
)

// Meeting - внешняя видео-встреча для одного занятия CourseSchedule
type Meeting struct {
	ID              int64         `json:"id"`
	ScheduleID      int64         `json:"schedule_id"`
	ExternalID      string        `json:"external_id"`
	JoinURL         string        `json:"join_url"`
	StartTime       time.Time     `json:"start_time"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          MeetingStatus `json:"status"`
	Simulated       bool          `json:"simulated"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// EndTime возвращает время окончания встречи
func (m *Meeting) EndTime() time.Time {
	return m.StartTime.Add(time.Duration(m.DurationMinutes) * time.Minute)
}

// MeetingRequest - параметры создания встречи
type MeetingRequest struct {
	ScheduleID      int64
	Topic           string
	StartTime       time.Time
	DurationMinutes int
	HostID          string
}

// ProviderMeeting - ответ видео-провайдера о созданной встрече
type ProviderMeeting struct {
	ExternalID string
	JoinURL    string
}
