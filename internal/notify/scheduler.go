// Package notify schedules one-shot notification timers derived from task
// deadlines and offsets. Jobs for a task are replaced wholesale on every
// change, so rescheduling is idempotent.
package notify

import (
	"sync"
	"time"

	"github.com/vthunder/ainotes/internal/logging"
	"github.com/vthunder/ainotes/internal/task"
)

// Sink receives fired notifications.
type Sink interface {
	Notify(taskID string, offsetMinutes int, title string)
}

// LogSink logs fired notifications. The default delivery mechanism.
type LogSink struct{}

// Notify logs the notification.
func (LogSink) Notify(taskID string, offsetMinutes int, title string) {
	logging.Info("notify", "task %s offset %dm: %s", taskID, offsetMinutes, logging.Truncate(title, 60))
}

// Scheduler owns the pending notification timers. Create one at process
// start, stop it at shutdown, and pass it where it is needed; there is no
// package-level instance.
type Scheduler struct {
	sink Sink

	mu     sync.Mutex
	timers map[string][]*time.Timer // task ID -> pending timers
}

// NewScheduler creates a scheduler delivering to sink.
func NewScheduler(sink Sink) *Scheduler {
	if sink == nil {
		sink = LogSink{}
	}
	return &Scheduler{
		sink:   sink,
		timers: make(map[string][]*time.Timer),
	}
}

// OnTaskChanged replaces any scheduled jobs for the task with jobs derived
// from its current deadline and offsets. Without a deadline it only clears.
func (s *Scheduler) OnTaskChanged(t *task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(t.ID)

	if t.DeadlineUTC == nil {
		return
	}

	now := time.Now().UTC()
	for _, offset := range t.NotifyList() {
		when := t.DeadlineUTC.Add(-time.Duration(offset) * time.Minute)
		if !when.After(now) {
			continue
		}
		id, off, title := t.ID, offset, t.Title
		timer := time.AfterFunc(when.Sub(now), func() {
			s.sink.Notify(id, off, title)
		})
		s.timers[t.ID] = append(s.timers[t.ID], timer)
	}

	if n := len(s.timers[t.ID]); n > 0 {
		logging.Debug("notify", "scheduled %d jobs for task %s", n, t.ID)
	}
}

// RescheduleAll rebuilds jobs for every stored task, used at startup.
func (s *Scheduler) RescheduleAll(store *task.Store) error {
	tasks, err := store.ListAll()
	if err != nil {
		return err
	}
	for _, t := range tasks {
		s.OnTaskChanged(t)
	}
	logging.Info("notify", "rescheduled notifications for %d tasks", len(tasks))
	return nil
}

// PendingCount returns the number of live timers for a task.
func (s *Scheduler) PendingCount(taskID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers[taskID])
}

// Stop cancels all pending timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.timers {
		s.cancelLocked(id)
	}
}

func (s *Scheduler) cancelLocked(taskID string) {
	for _, timer := range s.timers[taskID] {
		timer.Stop()
	}
	delete(s.timers, taskID)
}
