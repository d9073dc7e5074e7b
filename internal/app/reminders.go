package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/clock"
	"github.com/Freeeeeet/lingua_automation/internal/formatting"
	"github.com/Freeeeeet/lingua_automation/internal/model"
)

// reminder - взведённое напоминание о занятии. Живёт только в памяти.
type reminder struct {
	scheduleID int64
	start      time.Time
	fireAt     time.Time
	meeting    *model.Meeting
	generation uint64
	timer      clock.Timer
}

// armReminder взводит напоминание на start - lead, заменяя предыдущее для того же расписания.
// Если время напоминания уже прошло, а занятие ещё не началось, напоминание уходит сразу.
func (s *Scheduler) armReminder(gen uint64, cs *model.CourseSchedule, start time.Time, meeting *model.Meeting) error {
	lead := s.deps.Settings.ReminderLead()
	fireAt := start.Add(-lead)
	now := s.now()

	if !start.After(now) {
		s.logger.Debug("Class already started, reminder skipped",
			zap.Int64("schedule_id", cs.ID),
			zap.Time("start", start))
		return nil
	}

	delay := fireAt.Sub(now)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.generation != gen {
		return model.ErrSchedulerSuperseded
	}

	if prev, ok := s.state.reminders[cs.ID]; ok {
		prev.timer.Stop()
	}

	r := &reminder{
		scheduleID: cs.ID,
		start:      start,
		fireAt:     fireAt,
		meeting:    meeting,
		generation: gen,
	}
	r.timer = s.deps.Clock.AfterFunc(delay, func() { s.fireReminder(r) })
	s.state.reminders[cs.ID] = r

	s.logger.Info("Reminder armed",
		zap.Int64("schedule_id", cs.ID),
		zap.Time("fire_at", fireAt),
		zap.Duration("lead", lead))

	return nil
}

// owns проверяет, что r всё ещё текущее напоминание своего расписания
func (s *Scheduler) owns(r *reminder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.generation == r.generation && s.state.reminders[r.scheduleID] == r
}

// fireReminder - колбэк таймера напоминания
func (s *Scheduler) fireReminder(r *reminder) {
	if !s.owns(r) {
		return
	}
	defer s.release(r)

	ctx := context.Background()

	cs, err := s.deps.Schedules.GetByID(ctx, r.scheduleID)
	if err != nil {
		s.deps.Audit.Record(ctx, model.LogTypeReminder, model.LogStatusError,
			"Failed to load schedule for reminder",
			map[string]any{"error": err.Error()}, &r.scheduleID)
		s.logger.Error("Failed to load schedule for reminder",
			zap.Int64("schedule_id", r.scheduleID),
			zap.Error(err))
		return
	}
	if cs == nil || !cs.IsActive {
		s.logger.Info("Schedule removed or deactivated, reminder dropped",
			zap.Int64("schedule_id", r.scheduleID))
		return
	}

	// реинициализация могла случиться, пока мы читали расписание
	if !s.owns(r) {
		return
	}

	lead := r.start.Sub(s.now()).Round(time.Minute)
	if lead < 0 {
		lead = 0
	}

	msg := model.OutgoingMessage{
		ChannelID:  cs.ChannelID,
		Text:       formatting.ClassReminder(cs, r.start, lead, r.meeting),
		ParseMode:  model.ParseModeHTML,
		Kind:       model.LogTypeReminder,
		ScheduleID: &cs.ID,
	}
	if err := s.deps.Messaging.Send(ctx, msg); err != nil {
		s.logger.Warn("Reminder was not delivered",
			zap.Int64("schedule_id", r.scheduleID),
			zap.Error(err))
		return
	}

	s.logger.Info("Reminder sent", zap.Int64("schedule_id", r.scheduleID))
}

// release удаляет напоминание из реестра, если его ещё не заменили
func (s *Scheduler) release(r *reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.reminders[r.scheduleID] == r {
		delete(s.state.reminders, r.scheduleID)
	}
}
