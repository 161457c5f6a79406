package notify

import (
	"testing"
	"time"

	"github.com/vthunder/ainotes/internal/task"
)

type chanSink struct {
	fired chan string
}

func (c *chanSink) Notify(taskID string, offsetMinutes int, title string) {
	c.fired <- taskID
}

func futureTask(id string, in time.Duration, offsets []int) *task.Task {
	deadline := time.Now().UTC().Add(in)
	t := &task.Task{ID: id, Title: "t-" + id, DeadlineUTC: &deadline}
	t.SetNotifyList(offsets)
	return t
}

func TestScheduler_SchedulesFutureJobs(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Stop()

	s.OnTaskChanged(futureTask("a", 2*time.Hour, []int{30, 60}))

	if got := s.PendingCount("a"); got != 2 {
		t.Errorf("Expected 2 pending jobs, got %d", got)
	}
}

func TestScheduler_SkipsPastFireTimes(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Stop()

	// Deadline 10 minutes out: the 30-minute offset is already past, only
	// the 5-minute one schedules.
	s.OnTaskChanged(futureTask("a", 10*time.Minute, []int{5, 30}))

	if got := s.PendingCount("a"); got != 1 {
		t.Errorf("Expected 1 pending job, got %d", got)
	}
}

func TestScheduler_ReplaceOnChange(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Stop()

	s.OnTaskChanged(futureTask("a", 2*time.Hour, []int{30, 60}))
	s.OnTaskChanged(futureTask("a", 3*time.Hour, []int{15}))

	if got := s.PendingCount("a"); got != 1 {
		t.Errorf("Expected replacement down to 1 job, got %d", got)
	}
}

func TestScheduler_ClearsWithoutDeadline(t *testing.T) {
	s := NewScheduler(nil)
	defer s.Stop()

	s.OnTaskChanged(futureTask("a", 2*time.Hour, []int{30}))
	s.OnTaskChanged(&task.Task{ID: "a", Title: "t-a"})

	if got := s.PendingCount("a"); got != 0 {
		t.Errorf("Expected jobs cleared, got %d", got)
	}
}

func TestScheduler_FiresNotification(t *testing.T) {
	sink := &chanSink{fired: make(chan string, 1)}
	s := NewScheduler(sink)
	defer s.Stop()

	// Offset of 0 minutes against a deadline a few ms out fires almost
	// immediately.
	s.OnTaskChanged(futureTask("a", 50*time.Millisecond, []int{0}))

	select {
	case id := <-sink.fired:
		if id != "a" {
			t.Errorf("Expected notification for task a, got %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Notification did not fire")
	}
}

func TestScheduler_Stop(t *testing.T) {
	sink := &chanSink{fired: make(chan string, 4)}
	s := NewScheduler(sink)

	s.OnTaskChanged(futureTask("a", 2*time.Hour, []int{30}))
	s.OnTaskChanged(futureTask("b", 2*time.Hour, []int{30, 60}))
	s.Stop()

	if got := s.PendingCount("a"); got != 0 {
		t.Errorf("Expected no jobs after Stop, got %d", got)
	}
	if got := s.PendingCount("b"); got != 0 {
		t.Errorf("Expected no jobs after Stop, got %d", got)
	}
}

func TestScheduler_RescheduleAll(t *testing.T) {
	store, err := task.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	defer store.Close()

	deadline := time.Now().UTC().Add(time.Hour)
	withDeadline := &task.Task{Title: "soon", DeadlineUTC: &deadline}
	withDeadline.SetNotifyList([]int{10, 20})
	if err := store.Add(withDeadline); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(&task.Task{Title: "no deadline"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	s := NewScheduler(nil)
	defer s.Stop()
	if err := s.RescheduleAll(store); err != nil {
		t.Fatalf("RescheduleAll failed: %v", err)
	}

	if got := s.PendingCount(withDeadline.ID); got != 2 {
		t.Errorf("Expected 2 jobs restored, got %d", got)
	}
}
