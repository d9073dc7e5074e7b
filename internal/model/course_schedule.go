package model

import (
	"fmt"
	"time"
)

// CourseSchedule представляет регулярное еженедельное занятие курса
type CourseSchedule struct {
	ID              int64     `json:"id"`
	CourseName      string    `json:"course_name" validate:"required"`
	Level           string    `json:"level"`
	Instructor      string    `json:"instructor" validate:"required"`
	Weekday         int       `json:"weekday" validate:"min=0,max=6"`       // 0 = Sunday, 6 = Saturday
	StartHour       int       `json:"start_hour" validate:"min=0,max=23"`   // 0-23
	StartMinute     int       `json:"start_minute" validate:"min=0,max=59"` // 0-59
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1"`
	ChannelID       string    `json:"channel_id" validate:"required"` // чат/канал мессенджера
	HostID          string    `json:"host_id" validate:"required"`    // владелец встречи у видео-провайдера
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NextOccurrence возвращает начало ближайшего занятия в день now или позже.
// Если день недели совпадает, возвращается занятие сегодняшнего дня, даже если оно уже началось.
func (c *CourseSchedule) NextOccurrence(now time.Time) time.Time {
	days := (c.Weekday - int(now.Weekday()) + 7) % 7
	day := now.AddDate(0, 0, days)
	return time.Date(day.Year(), day.Month(), day.Day(), c.StartHour, c.StartMinute, 0, 0, now.Location())
}

// UpcomingOccurrence возвращает ближайшее занятие, которое ещё не закончилось к моменту now
func (c *CourseSchedule) UpcomingOccurrence(now time.Time) time.Time {
	start := c.NextOccurrence(now)
	if !start.Add(time.Duration(c.DurationMinutes) * time.Minute).After(now) {
		start = start.AddDate(0, 0, 7)
	}
	return start
}

// Topic возвращает название встречи для видео-провайдера
func (c *CourseSchedule) Topic() string {
	if c.Level == "" {
		return fmt.Sprintf("%s with %s", c.CourseName, c.Instructor)
	}
	return fmt.Sprintf("%s (%s) with %s", c.CourseName, c.Level, c.Instructor)
}

// StartClock возвращает время начала в формате HH:MM
func (c *CourseSchedule) StartClock() string {
	return fmt.Sprintf("%02d:%02d", c.StartHour, c.StartMinute)
}
