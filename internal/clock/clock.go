// Package clock абстрагирует источник времени и таймеры, чтобы планировщик
// можно было тестировать на виртуальном времени.
package clock

import "time"

// Timer - отменяемый одноразовый таймер
type Timer interface {
	Stop() bool
}

// Clock - источник времени
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// System возвращает часы на основе пакета time
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
