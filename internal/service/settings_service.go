package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Freeeeeet/lingua_automation/internal/model"
	"go.uber.org/zap"
)

const (
	defaultSimulationMode        = true
	defaultReminderMinutesBefore = 30
)

// SettingRepository - хранилище системных настроек
type SettingRepository interface {
	GetAll(ctx context.Context) ([]*model.SystemSetting, error)
	Upsert(ctx context.Context, key, value string) (*model.SystemSetting, error)
}

// SettingsService - кэш системных настроек поверх репозитория.
// Запись идёт сначала в базу, затем в кэш, поэтому чтение всегда видит последнее значение.
// О планировщике ничего не знает: перезапуск после смены simulation_mode делает вызывающий код.
type SettingsService struct {
	repo   SettingRepository
	logger *zap.Logger

	mu     sync.RWMutex
	values map[string]string
}

func NewSettingsService(repo SettingRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		repo:   repo,
		logger: logger,
		values: make(map[string]string),
	}
}

// Load загружает все настройки из базы в кэш
func (s *SettingsService) Load(ctx context.Context) error {
	settings, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	values := make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()

	s.logger.Info("Settings loaded", zap.Int("count", len(values)))
	return nil
}

// Get возвращает сырое значение настройки
func (s *SettingsService) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok
}

// String возвращает значение или def, если ключ не задан
func (s *SettingsService) String(key, def string) string {
	if value, ok := s.Get(key); ok {
		return value
	}
	return def
}

// Bool возвращает значение как bool или def, если ключ не задан или не разбирается
func (s *SettingsService) Bool(key string, def bool) bool {
	value, ok := s.Get(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

// Int возвращает значение как int или def
func (s *SettingsService) Int(key string, def int) int {
	value, ok := s.Get(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// SimulationMode - включён ли режим симуляции внешних вызовов. По умолчанию включён.
func (s *SettingsService) SimulationMode() bool {
	return s.Bool(model.SettingSimulationMode, defaultSimulationMode)
}

// ReminderLead - за сколько до начала занятия отправлять напоминание
func (s *SettingsService) ReminderLead() time.Duration {
	minutes := s.Int(model.SettingReminderMinutesBefore, defaultReminderMinutesBefore)
	if minutes < 0 {
		minutes = defaultReminderMinutesBefore
	}
	return time.Duration(minutes) * time.Minute
}

// Location - часовой пояс школы. Некорректное значение даёт UTC.
func (s *SettingsService) Location() *time.Location {
	name := s.String(model.SettingTimezone, "UTC")
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// All возвращает снимок всех настроек
func (s *SettingsService) All(ctx context.Context) ([]*model.SystemSetting, error) {
	return s.repo.GetAll(ctx)
}

// Set проверяет и сохраняет значение настройки
func (s *SettingsService) Set(ctx context.Context, key, value string) (*model.SystemSetting, error) {
	normalized, err := normalizeSetting(key, value)
	if err != nil {
		return nil, err
	}

	setting, err := s.repo.Upsert(ctx, key, normalized)
	if err != nil {
		return nil, fmt.Errorf("save setting: %w", err)
	}

	s.mu.Lock()
	s.values[setting.Key] = setting.Value
	s.mu.Unlock()

	s.logger.Info("Setting updated",
		zap.String("key", setting.Key),
		zap.String("value", setting.Value))

	return setting, nil
}

// normalizeSetting проверяет известные ключи и приводит значение к каноничному виду
func normalizeSetting(key, value string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", model.ErrInvalidSetting)
	}

	switch key {
	case model.SettingSimulationMode:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s must be a boolean", model.ErrInvalidSetting, key)
		}
		return strconv.FormatBool(parsed), nil
	case model.SettingReminderMinutesBefore:
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 || parsed > 24*60 {
			return "", fmt.Errorf("%w: %s must be between 0 and 1440", model.ErrInvalidSetting, key)
		}
		return strconv.Itoa(parsed), nil
	case model.SettingTimezone:
		if _, err := time.LoadLocation(value); err != nil || value == "" {
			return "", fmt.Errorf("%w: unknown timezone %q", model.ErrInvalidSetting, value)
		}
		return value, nil
	}

	return value, nil
}
