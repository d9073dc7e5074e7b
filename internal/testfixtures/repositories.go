package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/lingua_automation/internal/model"
)

// ScheduleRepository - расписания курсов в памяти
type ScheduleRepository struct {
	mu        sync.Mutex
	nextID    int64
	schedules []*model.CourseSchedule

	// ListErr, если задан, возвращается из ListActive
	ListErr error
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{}
}

func (r *ScheduleRepository) Create(_ context.Context, cs *model.CourseSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	cs.ID = r.nextID
	copied := *cs
	r.schedules = append(r.schedules, &copied)
	return nil
}

// Add - сокращение для Create в тестах
func (r *ScheduleRepository) Add(cs *model.CourseSchedule) *model.CourseSchedule {
	_ = r.Create(context.Background(), cs)
	return cs
}

func (r *ScheduleRepository) GetByID(_ context.Context, id int64) (*model.CourseSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cs := range r.schedules {
		if cs.ID == id {
			copied := *cs
			return &copied, nil
		}
	}
	return nil, nil
}

// SetActive меняет флаг активности расписания
func (r *ScheduleRepository) SetActive(id int64, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cs := range r.schedules {
		if cs.ID == id {
			cs.IsActive = active
		}
	}
}

// ListActive сохраняет порядок вставки
func (r *ScheduleRepository) ListActive(_ context.Context, weekday *int) ([]*model.CourseSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ListErr != nil {
		return nil, r.ListErr
	}

	var result []*model.CourseSchedule
	for _, cs := range r.schedules {
		if !cs.IsActive {
			continue
		}
		if weekday != nil && cs.Weekday != *weekday {
			continue
		}
		copied := *cs
		result = append(result, &copied)
	}
	return result, nil
}

func (r *ScheduleRepository) List(_ context.Context) ([]*model.CourseSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*model.CourseSchedule, 0, len(r.schedules))
	for _, cs := range r.schedules {
		copied := *cs
		result = append(result, &copied)
	}
	return result, nil
}

// MeetingRepository - встречи в памяти с ограничением "одна живая встреча на расписание"
type MeetingRepository struct {
	mu       sync.Mutex
	nextID   int64
	meetings []*model.Meeting
}

func NewMeetingRepository() *MeetingRepository {
	return &MeetingRepository{}
}

func (r *MeetingRepository) Create(_ context.Context, m *model.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.meetings {
		if existing.ScheduleID == m.ScheduleID && existing.Status == model.MeetingStatusScheduled {
			return model.ErrDuplicateMeeting
		}
	}

	r.nextID++
	m.ID = r.nextID
	copied := *m
	r.meetings = append(r.meetings, &copied)
	return nil
}

func (r *MeetingRepository) GetLiveBySchedule(_ context.Context, scheduleID int64) (*model.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.meetings {
		if m.ScheduleID == scheduleID && m.Status == model.MeetingStatusScheduled {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MeetingRepository) CompleteEndedBefore(_ context.Context, t time.Time, scheduleID *int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, m := range r.meetings {
		if m.Status != model.MeetingStatusScheduled {
			continue
		}
		if scheduleID != nil && m.ScheduleID != *scheduleID {
			continue
		}
		if m.EndTime().After(t) {
			continue
		}
		m.Status = model.MeetingStatusCompleted
		n++
	}
	return n, nil
}

func (r *MeetingRepository) List(_ context.Context, limit int) ([]*model.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*model.Meeting, 0, len(r.meetings))
	for i := len(r.meetings) - 1; i >= 0 && len(result) < limit; i-- {
		copied := *r.meetings[i]
		result = append(result, &copied)
	}
	return result, nil
}

// All возвращает все встречи в порядке создания
func (r *MeetingRepository) All() []*model.Meeting {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*model.Meeting, 0, len(r.meetings))
	for _, m := range r.meetings {
		copied := *m
		result = append(result, &copied)
	}
	return result
}

// LogRepository - журнал автоматизации в памяти
type LogRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []*model.AutomationLog
	now     func() time.Time

	// CreateErr, если задан, возвращается из Create
	CreateErr error
}

// NewLogRepository создаёт журнал. now задаёт CreatedAt записей, по умолчанию time.Now.
func NewLogRepository(now func() time.Time) *LogRepository {
	if now == nil {
		now = time.Now
	}
	return &LogRepository{now: now}
}

func (r *LogRepository) Create(_ context.Context, entry *model.AutomationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreateErr != nil {
		return r.CreateErr
	}

	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = r.now()
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *LogRepository) List(_ context.Context, filter model.LogFilter) ([]*model.AutomationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.AutomationLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !matches(e, filter) {
			continue
		}
		copied := *e
		result = append(result, &copied)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

func (r *LogRepository) DeleteBefore(_ context.Context, t time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	var deleted int64
	for _, e := range r.entries {
		if e.CreatedAt.Before(t) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return deleted, nil
}

// Entries возвращает записи, подходящие под фильтр, в порядке добавления
func (r *LogRepository) Entries(filter model.LogFilter) []*model.AutomationLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*model.AutomationLog
	for _, e := range r.entries {
		if matches(e, filter) {
			copied := *e
			result = append(result, &copied)
		}
	}
	return result
}

// Count считает записи по типу, статусу и расписанию
func (r *LogRepository) Count(logType model.LogType, status model.LogStatus, relatedID *int64) int {
	return len(r.Entries(model.LogFilter{Type: logType, Status: status, RelatedID: relatedID}))
}

func matches(e *model.AutomationLog, filter model.LogFilter) bool {
	if filter.Type != "" && e.Type != filter.Type {
		return false
	}
	if filter.Status != "" && e.Status != filter.Status {
		return false
	}
	if filter.RelatedID != nil && (e.RelatedID == nil || *e.RelatedID != *filter.RelatedID) {
		return false
	}
	return true
}

// SettingRepository - системные настройки в памяти
type SettingRepository struct {
	mu     sync.Mutex
	values map[string]string
}

// NewSettingRepository создаёт хранилище с начальными значениями
func NewSettingRepository(initial map[string]string) *SettingRepository {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &SettingRepository{values: values}
}

func (r *SettingRepository) GetAll(_ context.Context) ([]*model.SystemSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]*model.SystemSetting, 0, len(keys))
	for _, k := range keys {
		result = append(result, &model.SystemSetting{Key: k, Value: r.values[k]})
	}
	return result, nil
}

func (r *SettingRepository) Upsert(_ context.Context, key, value string) (*model.SystemSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return &model.SystemSetting{Key: key, Value: value, UpdatedAt: time.Now()}, nil
}

// Int64 - указатель на значение для фильтров по RelatedID
func Int64(v int64) *int64 {
	return &v
}
