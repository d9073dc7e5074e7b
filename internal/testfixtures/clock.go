// Package testfixtures содержит подделки времени, хранилищ и внешних шлюзов для тестов.
package testfixtures

import (
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/lingua_automation/internal/clock"
)

// Clock - управляемые часы. Таймеры срабатывают только внутри Advance/Set,
// синхронно и в порядке времени срабатывания.
type Clock struct {
	mu      sync.Mutex
	current time.Time
	seq     int
	timers  []*fakeTimer
}

var _ clock.Clock = (*Clock)(nil)

type fakeTimer struct {
	clock  *Clock
	at     time.Time
	seq    int
	fn     func()
	active bool
}

// NewClock возвращает часы, выставленные на start
func NewClock(start time.Time) *Clock {
	return &Clock{current: start}
}

// Now возвращает текущее время часов
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc отдаёт Now как функцию для внедрения
func (c *Clock) NowFunc() func() time.Time {
	return c.Now
}

// AfterFunc регистрирует таймер. Даже при d <= 0 он сработает только при следующем Advance.
func (c *Clock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &fakeTimer{
		clock:  c,
		at:     c.current.Add(d),
		seq:    c.seq,
		fn:     f,
		active: true,
	}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	was := t.active
	t.active = false
	return was
}

// Advance сдвигает часы на d и вызывает все таймеры, чьё время наступило
func (c *Clock) Advance(d time.Duration) time.Time {
	return c.Set(c.Now().Add(d))
}

// Set переводит часы на t и вызывает все таймеры, чьё время наступило
func (c *Clock) Set(t time.Time) time.Time {
	for {
		c.mu.Lock()
		due := c.nextDueLocked(t)
		if due == nil {
			c.current = t
			c.mu.Unlock()
			return t
		}
		if due.at.After(c.current) {
			c.current = due.at
		}
		due.active = false
		c.mu.Unlock()

		due.fn()
	}
}

func (c *Clock) nextDueLocked(until time.Time) *fakeTimer {
	active := c.timers[:0]
	for _, t := range c.timers {
		if t.active {
			active = append(active, t)
		}
	}
	c.timers = active

	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at.Equal(c.timers[j].at) {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].at.Before(c.timers[j].at)
	})

	if len(c.timers) == 0 || c.timers[0].at.After(until) {
		return nil
	}
	return c.timers[0]
}

// PendingTimers возвращает число взведённых таймеров
func (c *Clock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if t.active {
			n++
		}
	}
	return n
}
