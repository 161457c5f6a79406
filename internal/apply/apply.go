// Package apply mutates task records according to parsed actions. Every
// operation has a defined fallback except delete with an unresolvable
// target, which is the only hard failure.
package apply

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vthunder/ainotes/internal/interpret"
	"github.com/vthunder/ainotes/internal/logging"
	"github.com/vthunder/ainotes/internal/task"
)

// ErrTargetNotFound is returned when a delete cannot resolve any task.
var ErrTargetNotFound = errors.New("target task not found")

// Scheduler is the reschedule hook invoked after every successful
// mutation. Implementations must be idempotent per task id.
type Scheduler interface {
	OnTaskChanged(t *task.Task)
}

// Applier applies parsed actions to the task store.
type Applier struct {
	store     *task.Store
	scheduler Scheduler // may be nil
}

// New creates an applier. scheduler may be nil to skip notification
// rescheduling.
func New(store *task.Store, scheduler Scheduler) *Applier {
	return &Applier{store: store, scheduler: scheduler}
}

// Matches returns the tasks a title target currently resolves to, so
// callers can detect ambiguity before invoking Apply. Id targets and nil
// targets yield no list.
func (a *Applier) Matches(target *interpret.Target) ([]*task.Task, error) {
	if target == nil || target.By != "title" || target.Value == "" {
		return nil, nil
	}
	return a.store.FindByTitle(target.Value)
}

// Apply executes the action and returns the resulting task state. For
// delete, the returned task is its last known state before removal.
func (a *Applier) Apply(action *interpret.ParsedAction) (*task.Task, error) {
	if action.Operation == interpret.OpCreate {
		return a.create(action.Target, &action.Fields)
	}

	t, created, err := a.resolveOrCreate(action)
	if err != nil {
		return nil, err
	}

	switch action.Operation {
	case interpret.OpUpdate:
		if !created {
			applyFields(t, &action.Fields)
		}
	case interpret.OpComplete:
		t.Status = task.StatusDone
	case interpret.OpReopen:
		t.Status = task.StatusPending
	case interpret.OpDelete:
		last := *t
		if err := a.store.Delete(t.ID); err != nil {
			return nil, fmt.Errorf("failed to delete task: %w", err)
		}
		// Clear the deadline on the snapshot so the hook drops any
		// pending notification jobs for the removed task.
		last.DeadlineUTC = nil
		a.notifyChanged(&last)
		return &last, nil
	case interpret.OpQuery:
		// Read-only: no mutation, no hook.
		return t, nil
	}

	if !created {
		if err := a.store.Update(t); err != nil {
			return nil, err
		}
	}
	a.notifyChanged(t)
	return t, nil
}

// create inserts a new task titled from the target (or "New Task") and
// applies the partial fields.
func (a *Applier) create(target *interpret.Target, fields *interpret.Fields) (*task.Task, error) {
	title := "New Task"
	if target != nil && target.Value != "" {
		title = target.Value
	}
	t := &task.Task{Title: title}
	applyFields(t, fields)
	if err := a.store.Add(t); err != nil {
		return nil, err
	}
	a.notifyChanged(t)
	return t, nil
}

// resolveOrCreate finds the action's target task, or falls back per
// operation: update-with-no-target becomes create (fields included); a
// delete with no target is the one hard failure; anything else proceeds
// against a freshly synthesized minimal task. The created flag tells the
// caller the fields are already applied and persisted.
func (a *Applier) resolveOrCreate(action *interpret.ParsedAction) (t *task.Task, created bool, err error) {
	target := action.Target
	if target != nil {
		switch target.By {
		case "id":
			found, err := a.store.Get(target.Value)
			if err != nil && !errors.Is(err, task.ErrNotFound) {
				return nil, false, err
			}
			t = found
		case "title":
			if target.Value != "" {
				// First substring match wins; multiplicity is the
				// caller's pre-check via Matches.
				matches, err := a.store.FindByTitle(target.Value)
				if err != nil {
					return nil, false, err
				}
				if len(matches) > 0 {
					t = matches[0]
				}
			}
		}
	}
	if t != nil {
		return t, false, nil
	}

	if action.Operation == interpret.OpDelete {
		return nil, false, fmt.Errorf("%w: %s", ErrTargetNotFound, targetLabel(target))
	}
	if action.Operation == interpret.OpUpdate {
		t, err := a.create(target, &action.Fields)
		return t, true, err
	}

	// Complete/reopen/query against nothing: synthesize a minimal task
	// and let the operation proceed against it.
	title := "Task"
	if target != nil && target.Value != "" {
		title = target.Value
	}
	t = &task.Task{Title: title}
	if err := a.store.Add(t); err != nil {
		return nil, false, err
	}
	return t, false, nil
}

// applyFields copies present fields onto the task. Presence semantics:
// priority/status/title/description only overwrite with non-empty values,
// duration clears on explicit zero, a malformed deadline clears, and
// offsets/tags replace wholesale (possibly with an empty list).
func applyFields(t *task.Task, f *interpret.Fields) {
	if f.Priority != nil && *f.Priority != "" {
		t.Priority = *f.Priority
	}
	if f.Status != nil && *f.Status != "" {
		t.Status = *f.Status
	}
	if f.EstimatedDurationMinutes != nil {
		if *f.EstimatedDurationMinutes == 0 {
			t.EstimatedDurationMinutes = nil
		} else {
			d := *f.EstimatedDurationMinutes
			t.EstimatedDurationMinutes = &d
		}
	}
	if f.DeadlineUTC != nil && *f.DeadlineUTC != "" {
		if ts, err := time.Parse(time.RFC3339, *f.DeadlineUTC); err == nil {
			ts = ts.UTC()
			t.DeadlineUTC = &ts
		} else {
			logging.Debug("apply", "unparseable deadline %q, clearing", *f.DeadlineUTC)
			t.DeadlineUTC = nil
		}
	}
	if f.NotifyOffsetsMinutes != nil {
		t.SetNotifyList(*f.NotifyOffsetsMinutes)
	}
	if f.Tags != nil {
		t.SetTagList(*f.Tags)
	}
	if f.Description != nil {
		if v := strings.TrimSpace(*f.Description); v != "" {
			t.Description = v
		}
	}
	if f.Title != nil {
		if v := strings.TrimSpace(*f.Title); v != "" {
			t.Title = v
		}
	}
}

func (a *Applier) notifyChanged(t *task.Task) {
	if a.scheduler != nil {
		a.scheduler.OnTaskChanged(t)
	}
}

func targetLabel(target *interpret.Target) string {
	if target == nil {
		return "(no target)"
	}
	return target.By + "=" + target.Value
}
