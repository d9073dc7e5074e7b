package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lingua_automation/internal/clock"
	"github.com/Freeeeeet/lingua_automation/internal/formatting"
	"github.com/Freeeeeet/lingua_automation/internal/model"
)

const (
	taskNotifications   = "notifications"
	taskMeetingCreation = "meeting_creation"
)

// ScheduleRepository - источник активных расписаний курсов
type ScheduleRepository interface {
	ListActive(ctx context.Context, weekday *int) ([]*model.CourseSchedule, error)
	GetByID(ctx context.Context, id int64) (*model.CourseSchedule, error)
}

// MeetingGateway - идемпотентное создание видео-встреч
type MeetingGateway interface {
	EnsureMeeting(ctx context.Context, req model.MeetingRequest) (*model.Meeting, error)
	CompleteFinishedMeetings(ctx context.Context) (int64, error)
}

// MessagingGateway - отправка сообщений в мессенджер
type MessagingGateway interface {
	Send(ctx context.Context, msg model.OutgoingMessage) error
}

// SettingsReader - настройки, которые планировщик читает при каждом срабатывании
type SettingsReader interface {
	ReminderLead() time.Duration
	Location() *time.Location
}

// AuditRecorder - журнал автоматизации
type AuditRecorder interface {
	Record(ctx context.Context, logType model.LogType, status model.LogStatus, message string, details map[string]any, relatedID *int64) *model.AutomationLog
}

// CronEngine - регистратор регулярных задач, реализуется *cron.Cron
type CronEngine interface {
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
	Remove(id cron.EntryID)
	Entry(id cron.EntryID) cron.Entry
	Start()
	Stop() context.Context
}

// SchedulerOptions - время срабатывания регулярных задач в часовом поясе школы
type SchedulerOptions struct {
	DailyHour    int
	DailyMinute  int
	WeeklyDay    time.Weekday
	WeeklyHour   int
	WeeklyMinute int
}

// SchedulerDeps - зависимости планировщика
type SchedulerDeps struct {
	Schedules ScheduleRepository
	Meetings  MeetingGateway
	Messaging MessagingGateway
	Settings  SettingsReader
	Audit     AuditRecorder
	Cron      CronEngine
	Clock     clock.Clock
}

// Scheduler управляет регулярными задачами автоматизации и таймерами напоминаний.
// Всё состояние хранится в schedulerState и меняется только под mu.
type Scheduler struct {
	deps     SchedulerDeps
	opts     SchedulerOptions
	validate *validator.Validate
	logger   *zap.Logger

	mu    sync.Mutex
	state schedulerState
}

// schedulerState - живые регистрации одного поколения планировщика
type schedulerState struct {
	generation uint64
	triggers   []trigger
	reminders  map[int64]*reminder
}

type trigger struct {
	label string
	spec  string
	id    cron.EntryID
}

// RunReport - итог одного прогона задачи
type RunReport struct {
	Task      string   `json:"task"`
	Weekday   string   `json:"weekday,omitempty"`
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

func (r *RunReport) add(err error) {
	if err == nil {
		r.Succeeded++
		return
	}
	r.Failed++
	r.Errors = append(r.Errors, err.Error())
}

// Status - снимок состояния планировщика для дашборда
type Status struct {
	Generation uint64           `json:"generation"`
	Triggers   []TriggerStatus  `json:"triggers"`
	Reminders  []ReminderStatus `json:"reminders"`
}

type TriggerStatus struct {
	Label string    `json:"label"`
	Spec  string    `json:"spec"`
	Next  time.Time `json:"next"`
}

type ReminderStatus struct {
	ScheduleID int64     `json:"schedule_id"`
	FireAt     time.Time `json:"fire_at"`
	ClassStart time.Time `json:"class_start"`
}

// NewScheduler создаёт новый планировщик. Регистрации появляются только после Initialize.
func NewScheduler(deps SchedulerDeps, opts SchedulerOptions, logger *zap.Logger) *Scheduler {
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	return &Scheduler{
		deps:     deps,
		opts:     opts,
		validate: validator.New(),
		logger:   logger,
		state: schedulerState{
			reminders: make(map[int64]*reminder),
		},
	}
}

// Initialize снимает все текущие регистрации и создаёт новые:
// по одной ежедневной задаче на каждый день недели и одну еженедельную задачу создания встреч.
func (s *Scheduler) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()

	if err := s.registerLocked(); err != nil {
		s.teardownLocked()
		return err
	}

	s.deps.Cron.Start()

	s.logger.Info("Scheduler initialized",
		zap.Uint64("generation", s.state.generation),
		zap.Int("triggers", len(s.state.triggers)),
		zap.String("timezone", s.deps.Settings.Location().String()))

	return nil
}

// Reinitialize отменяет все задачи и таймеры и регистрирует их заново.
// Колбэки предыдущего поколения после этого не выполняют побочных эффектов.
func (s *Scheduler) Reinitialize() error {
	s.logger.Info("Reinitializing scheduler")
	return s.Initialize()
}

// Shutdown отменяет все регистрации и останавливает cron, дожидаясь выполняющихся задач
func (s *Scheduler) Shutdown(ctx context.Context) {
	s.logger.Info("Stopping background scheduler")

	s.mu.Lock()
	s.teardownLocked()
	s.mu.Unlock()

	select {
	case <-s.deps.Cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out", zap.Error(ctx.Err()))
	}
}

// teardownLocked увеличивает поколение и снимает все регистрации
func (s *Scheduler) teardownLocked() {
	s.state.generation++

	for _, t := range s.state.triggers {
		s.deps.Cron.Remove(t.id)
	}
	s.state.triggers = nil

	for id, r := range s.state.reminders {
		r.timer.Stop()
		delete(s.state.reminders, id)
	}
}

func (s *Scheduler) registerLocked() error {
	loc := s.deps.Settings.Location()
	gen := s.state.generation

	for day := time.Sunday; day <= time.Saturday; day++ {
		spec := fmt.Sprintf("CRON_TZ=%s %d %d * * %d", loc.String(), s.opts.DailyMinute, s.opts.DailyHour, int(day))
		label := "daily:" + strings.ToLower(day.String())
		if err := s.addTriggerLocked(label, spec, s.dailyJob(gen, day)); err != nil {
			return err
		}
	}

	spec := fmt.Sprintf("CRON_TZ=%s %d %d * * %d", loc.String(), s.opts.WeeklyMinute, s.opts.WeeklyHour, int(s.opts.WeeklyDay))
	return s.addTriggerLocked("weekly:meetings", spec, s.weeklyJob(gen))
}

func (s *Scheduler) addTriggerLocked(label, spec string, job func()) error {
	id, err := s.deps.Cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("register trigger %s: %w", label, err)
	}
	s.state.triggers = append(s.state.triggers, trigger{label: label, spec: spec, id: id})
	return nil
}

// dailyJob - тело ежедневной задачи для дня day
func (s *Scheduler) dailyJob(gen uint64, day time.Weekday) func() {
	return func() {
		if !s.isCurrent(gen) {
			return
		}

		report, err := s.runDay(context.Background(), gen, day)
		s.logRun(report, err)
	}
}

// weeklyJob - тело еженедельной задачи предварительного создания встреч
func (s *Scheduler) weeklyJob(gen uint64) func() {
	return func() {
		if !s.isCurrent(gen) {
			return
		}

		report, err := s.runMeetingCreation(context.Background(), gen)
		s.logRun(report, err)
	}
}

func (s *Scheduler) logRun(report *RunReport, err error) {
	switch {
	case errors.Is(err, model.ErrSchedulerSuperseded):
		s.logger.Debug("Scheduled task superseded by reinitialize", zap.String("task", report.Task))
	case err != nil:
		s.logger.Warn("Scheduled task finished with errors",
			zap.String("task", report.Task),
			zap.String("weekday", report.Weekday),
			zap.Int("succeeded", report.Succeeded),
			zap.Int("failed", report.Failed),
			zap.Error(err))
	default:
		s.logger.Info("Scheduled task completed",
			zap.String("task", report.Task),
			zap.String("weekday", report.Weekday),
			zap.Int("succeeded", report.Succeeded))
	}
}

// RunNotifications синхронно выполняет ежедневную задачу для дня day (по умолчанию - сегодня)
func (s *Scheduler) RunNotifications(ctx context.Context, day *time.Weekday) (*RunReport, error) {
	target := s.now().Weekday()
	if day != nil {
		target = *day
	}
	return s.runDay(ctx, s.currentGeneration(), target)
}

// RunMeetingCreation синхронно выполняет еженедельную задачу создания встреч
func (s *Scheduler) RunMeetingCreation(ctx context.Context) (*RunReport, error) {
	return s.runMeetingCreation(ctx, s.currentGeneration())
}

// runDay обрабатывает все активные расписания дня: встреча, уведомление, напоминание.
// Ошибка одного расписания не прерывает обработку остальных.
func (s *Scheduler) runDay(ctx context.Context, gen uint64, day time.Weekday) (*RunReport, error) {
	report := &RunReport{Task: taskNotifications, Weekday: day.String()}

	weekday := int(day)
	schedules, err := s.deps.Schedules.ListActive(ctx, &weekday)
	if err != nil {
		return report, s.taskFailure(ctx, report, fmt.Errorf("list active schedules: %w", err))
	}
	report.Total = len(schedules)

	now := s.now()
	var errs []error
	for _, cs := range schedules {
		err := s.processSchedule(ctx, gen, cs, now)
		if errors.Is(err, model.ErrSchedulerSuperseded) {
			return report, err
		}
		report.add(err)
		if err != nil {
			errs = append(errs, err)
		}
	}

	s.recordRun(ctx, report)
	return report, errors.Join(errs...)
}

// runMeetingCreation закрывает прошедшие встречи и создаёт встречи на ближайшее занятие каждого расписания
func (s *Scheduler) runMeetingCreation(ctx context.Context, gen uint64) (*RunReport, error) {
	report := &RunReport{Task: taskMeetingCreation}

	if _, err := s.deps.Meetings.CompleteFinishedMeetings(ctx); err != nil {
		s.logger.Warn("Failed to complete finished meetings", zap.Error(err))
	}

	schedules, err := s.deps.Schedules.ListActive(ctx, nil)
	if err != nil {
		return report, s.taskFailure(ctx, report, fmt.Errorf("list active schedules: %w", err))
	}
	report.Total = len(schedules)

	now := s.now()
	var errs []error
	for _, cs := range schedules {
		_, _, err := s.prepareSchedule(ctx, gen, cs, now)
		if errors.Is(err, model.ErrSchedulerSuperseded) {
			return report, err
		}
		report.add(err)
		if err != nil {
			errs = append(errs, err)
		}
	}

	s.recordRun(ctx, report)
	return report, errors.Join(errs...)
}

// processSchedule проводит одно расписание через все шаги дня
func (s *Scheduler) processSchedule(ctx context.Context, gen uint64, cs *model.CourseSchedule, now time.Time) error {
	start, meeting, err := s.prepareSchedule(ctx, gen, cs, now)
	if err != nil {
		return err
	}

	if err := s.checkGeneration(gen); err != nil {
		return err
	}

	msg := model.OutgoingMessage{
		ChannelID:  cs.ChannelID,
		Text:       formatting.ClassNotification(cs, start, meeting),
		ParseMode:  model.ParseModeHTML,
		Kind:       model.LogTypeNotification,
		ScheduleID: &cs.ID,
	}
	if err := s.deps.Messaging.Send(ctx, msg); err != nil {
		return s.scheduleFailure(ctx, cs, "send notification", err)
	}

	return s.armReminder(gen, cs, start, meeting)
}

// prepareSchedule проверяет расписание и обеспечивает встречу на ближайшее занятие.
// Общий шаг для ежедневной и еженедельной задач.
func (s *Scheduler) prepareSchedule(ctx context.Context, gen uint64, cs *model.CourseSchedule, now time.Time) (time.Time, *model.Meeting, error) {
	if err := s.validateSchedule(cs); err != nil {
		return time.Time{}, nil, s.scheduleFailure(ctx, cs, "validate schedule", err)
	}

	start := cs.UpcomingOccurrence(now)

	if err := s.checkGeneration(gen); err != nil {
		return time.Time{}, nil, err
	}

	meeting, err := s.deps.Meetings.EnsureMeeting(ctx, model.MeetingRequest{
		ScheduleID:      cs.ID,
		Topic:           cs.Topic(),
		StartTime:       start,
		DurationMinutes: cs.DurationMinutes,
		HostID:          cs.HostID,
	})
	if err != nil {
		return time.Time{}, nil, s.scheduleFailure(ctx, cs, "ensure meeting", err)
	}

	return start, meeting, nil
}

func (s *Scheduler) validateSchedule(cs *model.CourseSchedule) error {
	err := s.validate.Struct(cs)
	if err == nil {
		return nil
	}

	var fields []string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
	}

	return &model.ConfigurationError{ScheduleID: cs.ID, Fields: fields, Err: err}
}

// scheduleFailure переводит ошибку одного расписания в запись журнала.
// Ошибки внешних шлюзов уже записаны самим шлюзом.
func (s *Scheduler) scheduleFailure(ctx context.Context, cs *model.CourseSchedule, op string, err error) error {
	wrapped := fmt.Errorf("schedule %d: %s: %w", cs.ID, op, err)

	var gwErr *model.ExternalGatewayError
	if errors.As(err, &gwErr) {
		s.logger.Warn("External gateway failed for schedule",
			zap.Int64("schedule_id", cs.ID),
			zap.String("operation", op),
			zap.Error(err))
		return wrapped
	}

	details := map[string]any{
		"operation": op,
		"error":     err.Error(),
	}
	var cfgErr *model.ConfigurationError
	if errors.As(err, &cfgErr) {
		details["fields"] = cfgErr.Fields
	}

	s.deps.Audit.Record(ctx, model.LogTypeScheduledTask, model.LogStatusError,
		fmt.Sprintf("Failed to %s for %q", op, cs.CourseName), details, &cs.ID)

	s.logger.Error("Schedule processing failed",
		zap.Int64("schedule_id", cs.ID),
		zap.String("operation", op),
		zap.Error(err))

	return wrapped
}

// taskFailure записывает ошибку, из-за которой задача не смогла начаться
func (s *Scheduler) taskFailure(ctx context.Context, report *RunReport, err error) error {
	s.deps.Audit.Record(ctx, model.LogTypeScheduledTask, model.LogStatusError,
		fmt.Sprintf("Task %s failed", report.Task),
		map[string]any{"task": report.Task, "weekday": report.Weekday, "error": err.Error()}, nil)
	return err
}

// recordRun записывает итог прогона задачи
func (s *Scheduler) recordRun(ctx context.Context, report *RunReport) {
	status := model.LogStatusSuccess
	if report.Failed > 0 {
		status = model.LogStatusError
	}

	details := map[string]any{
		"task":      report.Task,
		"total":     report.Total,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}
	if report.Weekday != "" {
		details["weekday"] = report.Weekday
	}

	s.deps.Audit.Record(ctx, model.LogTypeScheduledTask, status,
		fmt.Sprintf("Task %s processed %d schedules, %d failed", report.Task, report.Total, report.Failed),
		details, nil)
}

// now возвращает текущее время в часовом поясе школы
func (s *Scheduler) now() time.Time {
	return s.deps.Clock.Now().In(s.deps.Settings.Location())
}

func (s *Scheduler) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.generation
}

func (s *Scheduler) isCurrent(gen uint64) bool {
	return s.currentGeneration() == gen
}

func (s *Scheduler) checkGeneration(gen uint64) error {
	if !s.isCurrent(gen) {
		return model.ErrSchedulerSuperseded
	}
	return nil
}

// Status возвращает снимок задач и взведённых напоминаний
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Generation: s.state.generation,
		Triggers:   make([]TriggerStatus, 0, len(s.state.triggers)),
		Reminders:  make([]ReminderStatus, 0, len(s.state.reminders)),
	}

	for _, t := range s.state.triggers {
		status.Triggers = append(status.Triggers, TriggerStatus{
			Label: t.label,
			Spec:  t.spec,
			Next:  s.deps.Cron.Entry(t.id).Next,
		})
	}

	for _, r := range s.state.reminders {
		status.Reminders = append(status.Reminders, ReminderStatus{
			ScheduleID: r.scheduleID,
			FireAt:     r.fireAt,
			ClassStart: r.start,
		})
	}
	sort.Slice(status.Reminders, func(i, j int) bool {
		if status.Reminders[i].FireAt.Equal(status.Reminders[j].FireAt) {
			return status.Reminders[i].ScheduleID < status.Reminders[j].ScheduleID
		}
		return status.Reminders[i].FireAt.Before(status.Reminders[j].FireAt)
	})

	return status
}

// TriggerCount возвращает число зарегистрированных регулярных задач
func (s *Scheduler) TriggerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.triggers)
}

// ReminderCount возвращает число взведённых напоминаний
func (s *Scheduler) ReminderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.reminders)
}
