package task

import (
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AddDefaults(t *testing.T) {
	store := newTestStore(t)

	task := &Task{Title: "Rise email"}
	if err := store.Add(task); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if task.ID == "" {
		t.Error("Expected ID to be assigned")
	}
	if task.Status != StatusPending {
		t.Errorf("Expected status %q, got %q", StatusPending, task.Status)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("Expected priority %q, got %q", PriorityMedium, task.Priority)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestStore_GetUpdateDelete(t *testing.T) {
	store := newTestStore(t)

	task := &Task{Title: "Write report"}
	if err := store.Add(task); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := store.Get(task.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Write report" {
		t.Errorf("Expected title 'Write report', got %q", got.Title)
	}

	deadline := time.Date(2026, 3, 5, 7, 0, 0, 0, time.UTC)
	dur := 45
	got.Priority = PriorityHigh
	got.DeadlineUTC = &deadline
	got.EstimatedDurationMinutes = &dur
	got.SetNotifyList([]int{60, 720})
	if err := store.Update(got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got2, err := store.Get(task.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got2.Priority != PriorityHigh {
		t.Errorf("Expected priority high, got %q", got2.Priority)
	}
	if got2.DeadlineUTC == nil || !got2.DeadlineUTC.Equal(deadline) {
		t.Errorf("Expected deadline %v, got %v", deadline, got2.DeadlineUTC)
	}
	if got2.EstimatedDurationMinutes == nil || *got2.EstimatedDurationMinutes != 45 {
		t.Errorf("Expected duration 45, got %v", got2.EstimatedDurationMinutes)
	}
	if offsets := got2.NotifyList(); len(offsets) != 2 || offsets[0] != 60 || offsets[1] != 720 {
		t.Errorf("Expected offsets [60 720], got %v", offsets)
	}

	if err := store.Delete(task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_NotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
	if err := store.Update(&Task{ID: "missing", Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestStore_FindByTitle(t *testing.T) {
	store := newTestStore(t)

	for _, title := range []string{"Rise email", "rise email follow-up", "Grocery run"} {
		if err := store.Add(&Task{Title: title}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	matches, err := store.FindByTitle("RISE")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	// Insertion order is stable across calls.
	if matches[0].Title != "Rise email" || matches[1].Title != "rise email follow-up" {
		t.Errorf("Unexpected match order: %q, %q", matches[0].Title, matches[1].Title)
	}

	none, err := store.FindByTitle("missing")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected 0 matches, got %d", len(none))
	}
}

func TestStore_FindByTitle_LikeEscapes(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add(&Task{Title: "100% done"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(&Task{Title: "other"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	matches, err := store.FindByTitle("100%")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("Expected 1 match, got %d", len(matches))
	}
}

func TestStore_ListAllOrder(t *testing.T) {
	store := newTestStore(t)

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if err := store.Add(&Task{Title: title}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	tasks, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(tasks))
	}
	for i, title := range titles {
		if tasks[i].Title != title {
			t.Errorf("Position %d: expected %q, got %q", i, title, tasks[i].Title)
		}
	}
}

func TestTask_CSVAccessors(t *testing.T) {
	var task Task

	task.NotifyOffsetsMinutes = "60, 720, bogus, "
	if offsets := task.NotifyList(); len(offsets) != 2 || offsets[0] != 60 || offsets[1] != 720 {
		t.Errorf("Expected [60 720], got %v", offsets)
	}

	task.SetNotifyList(nil)
	if task.NotifyOffsetsMinutes != "" {
		t.Errorf("Expected empty CSV, got %q", task.NotifyOffsetsMinutes)
	}

	task.SetTagList([]string{"ORG", "MISC"})
	if task.Tags != "ORG,MISC" {
		t.Errorf("Expected 'ORG,MISC', got %q", task.Tags)
	}
	if tags := task.TagList(); len(tags) != 2 || tags[0] != "ORG" {
		t.Errorf("Expected [ORG MISC], got %v", tags)
	}
}
