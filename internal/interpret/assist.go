package interpret

import (
	"context"
	"fmt"
)

// Assistant converts free text to a structured action sketch. Output only
// fills gaps the rule layer left empty; failures yield an empty sketch.
type Assistant interface {
	Text2JSON(ctx context.Context, prompt string) (map[string]any, error)
}

const assistantSchemaPrompt = `SYSTEM: Convert the instruction to this JSON schema (no prose):` +
	` {operation, target:{by,value}, fields:{priority,estimated_duration_minutes,deadline_utc,notify_offsets_minutes,status,tags,description,title}}` +
	` TIMEZONE=%s; All final times must be UTC ISO8601.
USER: %q
`

// fieldsFromMap shapes an untyped assistant field map into Fields. Type
// violations error out so the builder can degrade to a diagnostic action
// instead of carrying malformed values forward.
func fieldsFromMap(m map[string]any) (Fields, error) {
	var f Fields
	for key, val := range m {
		if val == nil {
			continue
		}
		switch key {
		case "title":
			s, err := asString(key, val)
			if err != nil {
				return Fields{}, err
			}
			f.Title = strptr(s)
		case "description":
			s, err := asString(key, val)
			if err != nil {
				return Fields{}, err
			}
			f.Description = strptr(s)
		case "status":
			s, err := asString(key, val)
			if err != nil {
				return Fields{}, err
			}
			f.Status = strptr(s)
		case "priority":
			s, err := asString(key, val)
			if err != nil {
				return Fields{}, err
			}
			f.Priority = strptr(s)
		case "deadline_utc":
			s, err := asString(key, val)
			if err != nil {
				return Fields{}, err
			}
			f.DeadlineUTC = strptr(s)
		case "estimated_duration_minutes":
			n, err := asInt(key, val)
			if err != nil {
				return Fields{}, err
			}
			f.EstimatedDurationMinutes = intptr(n)
		case "notify_offsets_minutes":
			list, ok := val.([]any)
			if !ok {
				return Fields{}, fmt.Errorf("field %s: expected list, got %T", key, val)
			}
			offsets := make([]int, 0, len(list))
			for _, item := range list {
				n, err := asInt(key, item)
				if err != nil {
					return Fields{}, err
				}
				offsets = append(offsets, n)
			}
			f.NotifyOffsetsMinutes = &offsets
		case "tags":
			list, ok := val.([]any)
			if !ok {
				return Fields{}, fmt.Errorf("field %s: expected list, got %T", key, val)
			}
			tags := make([]string, 0, len(list))
			for _, item := range list {
				s, err := asString(key, item)
				if err != nil {
					return Fields{}, err
				}
				tags = append(tags, s)
			}
			f.Tags = &tags
		}
		// Unknown keys are dropped silently.
	}
	return f, nil
}

func asString(key string, val any) (string, error) {
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("field %s: expected string, got %T", key, val)
	}
	return s, nil
}

func asInt(key string, val any) (int, error) {
	switch v := val.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("field %s: expected number, got %T", key, val)
	}
}

// fillFrom copies src fields into dst slots that are still unset. Rule
// results always win on conflict.
func (f *Fields) fillFrom(src Fields) {
	if f.Title == nil {
		f.Title = src.Title
	}
	if f.Description == nil {
		f.Description = src.Description
	}
	if f.Status == nil {
		f.Status = src.Status
	}
	if f.Priority == nil {
		f.Priority = src.Priority
	}
	if f.EstimatedDurationMinutes == nil {
		f.EstimatedDurationMinutes = src.EstimatedDurationMinutes
	}
	if f.DeadlineUTC == nil {
		f.DeadlineUTC = src.DeadlineUTC
	}
	if f.NotifyOffsetsMinutes == nil {
		f.NotifyOffsetsMinutes = src.NotifyOffsetsMinutes
	}
	if f.Tags == nil {
		f.Tags = src.Tags
	}
}

// targetFromMap shapes an assistant target sketch, or nil if unusable.
func targetFromMap(m map[string]any) *Target {
	by, _ := m["by"].(string)
	value, ok := m["value"].(string)
	if !ok {
		// Tolerate numeric IDs from the model.
		if n, isNum := m["value"].(float64); isNum {
			value = fmt.Sprintf("%d", int(n))
			ok = true
		}
	}
	if !ok || value == "" || (by != "id" && by != "title") {
		return nil
	}
	return &Target{By: by, Value: value}
}
