package testfixtures

import (
	"context"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
)

// Cron - ручной регистратор задач. Задачи не запускаются сами: тест вызывает Run/Job.
type Cron struct {
	mu      sync.Mutex
	nextID  cron.EntryID
	entries map[cron.EntryID]cronEntry
	started int
	stopped int
}

type cronEntry struct {
	spec string
	job  func()
}

func NewCron() *Cron {
	return &Cron{entries: make(map[cron.EntryID]cronEntry)}
}

func (c *Cron) AddFunc(spec string, cmd func()) (cron.EntryID, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	c.entries[c.nextID] = cronEntry{spec: spec, job: cmd}
	return c.nextID, nil
}

func (c *Cron) Remove(id cron.EntryID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

func (c *Cron) Entry(id cron.EntryID) cron.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[id]; !ok {
		return cron.Entry{}
	}
	return cron.Entry{ID: id}
}

func (c *Cron) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
}

func (c *Cron) Stop() context.Context {
	c.mu.Lock()
	c.stopped++
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// Len - число зарегистрированных задач
func (c *Cron) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Specs возвращает расписания зарегистрированных задач в порядке регистрации
func (c *Cron) Specs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	specs := make([]string, 0, len(ids))
	for _, id := range ids {
		specs = append(specs, c.entries[cron.EntryID(id)].spec)
	}
	return specs
}

// Job возвращает функцию задачи с заданным расписанием или nil
func (c *Cron) Job(spec string) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.spec == spec {
			return e.job
		}
	}
	return nil
}

// Jobs возвращает копии всех функций задач
func (c *Cron) Jobs() []func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobs := make([]func(), 0, len(c.entries))
	for _, e := range c.entries {
		jobs = append(jobs, e.job)
	}
	return jobs
}
