package model

import (
	"errors"
	"fmt"
)

var (
	// ErrSchedulerSuperseded возвращается колбэком планировщика, который был вытеснен Reinitialize
	ErrSchedulerSuperseded = errors.New("scheduler generation superseded")

	// ErrDuplicateMeeting - для расписания уже существует незавершённая встреча
	ErrDuplicateMeeting = errors.New("live meeting already exists for schedule")

	// ErrInvalidSetting - значение настройки не прошло проверку
	ErrInvalidSetting = errors.New("invalid setting value")
)

// ConfigurationError - у расписания не заполнены или некорректны обязательные поля
type ConfigurationError struct {
	ScheduleID int64
	Fields     []string
	Err        error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("schedule %d misconfigured: %v", e.ScheduleID, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ExternalGatewayError - ошибка внешнего API. Запись в журнал уже сделана шлюзом.
type ExternalGatewayError struct {
	Gateway string
	Op      string
	Err     error
}

func (e *ExternalGatewayError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Gateway, e.Op, e.Err)
}

func (e *ExternalGatewayError) Unwrap() error {
	return e.Err
}

// UpstreamError - ответ внешнего API с неуспешным статусом
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Body)
}
