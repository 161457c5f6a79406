package task

import (
	"strconv"
	"strings"
	"time"
)

// Status values for a task.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Priority values for a task.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task is a single task record. Deadline is a UTC instant; offsets and tags
// are stored as CSV strings with list accessors, matching the wire shape the
// console renders.
type Task struct {
	ID                       string     `json:"id"`
	Title                    string     `json:"title"`
	Description              string     `json:"description,omitempty"`
	Status                   string     `json:"status"`
	Priority                 string     `json:"priority"`
	EstimatedDurationMinutes *int       `json:"estimated_duration_minutes,omitempty"`
	DeadlineUTC              *time.Time `json:"deadline_utc,omitempty"`
	NotifyOffsetsMinutes     string     `json:"notify_offsets_minutes,omitempty"` // CSV
	Tags                     string     `json:"tags,omitempty"`                   // CSV
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// NotifyList returns the notification offsets as a slice of minutes.
// Malformed entries are skipped rather than failing the whole list.
func (t *Task) NotifyList() []int {
	if t.NotifyOffsetsMinutes == "" {
		return nil
	}
	var result []int
	for _, part := range strings.Split(t.NotifyOffsetsMinutes, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		result = append(result, n)
	}
	return result
}

// SetNotifyList stores the offsets in CSV form. An empty or nil list clears.
func (t *Task) SetNotifyList(offsets []int) {
	if len(offsets) == 0 {
		t.NotifyOffsetsMinutes = ""
		return
	}
	parts := make([]string, len(offsets))
	for i, n := range offsets {
		parts[i] = strconv.Itoa(n)
	}
	t.NotifyOffsetsMinutes = strings.Join(parts, ",")
}

// TagList returns the tags as a slice.
func (t *Task) TagList() []string {
	if t.Tags == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(t.Tags, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

// SetTagList stores the tags in CSV form. An empty or nil list clears.
func (t *Task) SetTagList(tags []string) {
	if len(tags) == 0 {
		t.Tags = ""
		return
	}
	t.Tags = strings.Join(tags, ",")
}
