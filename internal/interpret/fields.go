package interpret

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vthunder/ainotes/internal/hf"
	"github.com/vthunder/ainotes/internal/logging"
	"github.com/vthunder/ainotes/internal/timeparse"
)

var (
	durationRegex = regexp.MustCompile(`(?i)\b(\d+)\s*(minutes|min|m|hours|hour|h)\b`)
	statusRegex   = regexp.MustCompile(`(?i)\b(in\s*progress|ongoing)\b`)

	alertKeywordRegex = regexp.MustCompile(`(?i)\b(alerts?|notif(?:y|ies|ication|ications)|remind(?:ers?)?|alarms?)\b`)
	offsetRegex       = regexp.MustCompile(`(?i)(\d+)\s*(hours|hour|h|minutes|minute|min|m)s?\b`)
	beforeOffsetRegex = regexp.MustCompile(`(?i)(\d+)\s*(hours|hour|h|minutes|minute|min|m)s?\s*(?:before|prior)\b`)

	ambiguityGuardRegex = regexp.MustCompile(`(?i)\bmaybe\b|\b(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*\s+or\s+(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*\b`)
	beforeWeekdayRegex  = regexp.MustCompile(`(?i)before\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

	// Phrases stripped when deriving a fallback description.
	descNotifyRegex   = regexp.MustCompile(`(?i)\b(alerts?|notify|remind|alarm)s?\b[\s\S]*$`)
	descDurationRegex = regexp.MustCompile(`(?i)\b(\d+)\s*(h|hour|hours|m|min|minute)s?(\s*(before|prior))?\b`)
	descDateRegex     = regexp.MustCompile(`(?i)\b(tomorrow|today|tonight|this\s+afternoon|this\s+evening|next\s+\w+|monday|tuesday|wednesday|thursday|friday|saturday|sunday|\d{1,2}:\d{2}|\d{1,2}\s*(am|pm))\b`)
)

// EntityRecognizer provides named entities for tag assist. Failures are
// swallowed; the rule layer never depends on it.
type EntityRecognizer interface {
	NER(ctx context.Context, text string) ([]hf.Entity, error)
}

// Extractor derives a partial field set from an utterance. Every rule is
// independent and best-effort: an unmatched rule leaves its field unset.
type Extractor struct {
	rules      *Rules
	recognizer EntityRecognizer // may be nil
	clock      func() time.Time
}

// NewExtractor creates a field extractor. recognizer may be nil to disable
// tag assist.
func NewExtractor(rules *Rules, recognizer EntityRecognizer) *Extractor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Extractor{
		rules:      rules,
		recognizer: recognizer,
		clock:      time.Now,
	}
}

// Extract runs all extraction rules over the utterance against loc.
func (e *Extractor) Extract(ctx context.Context, utterance string, loc *time.Location) Fields {
	var f Fields

	if d, ok := extractDuration(utterance); ok {
		f.EstimatedDurationMinutes = intptr(d)
	}
	if p, ok := e.extractPriority(utterance); ok {
		f.Priority = strptr(p)
	}
	if statusRegex.MatchString(utterance) {
		// The only status settable via free text.
		f.Status = strptr("in_progress")
	}
	if offsets := extractNotifications(utterance); offsets != nil {
		f.NotifyOffsetsMinutes = &offsets
	}
	if dl, ok := e.extractDeadline(utterance, loc); ok {
		f.DeadlineUTC = strptr(dl)
	}

	if e.recognizer != nil {
		if tags := e.extractTags(ctx, utterance); len(tags) > 0 {
			f.Tags = &tags
		}
	}

	// Leftover text becomes the description, but only as a fallback.
	if f.Description == nil {
		if desc, ok := deriveDescription(utterance); ok {
			f.Description = strptr(desc)
		}
	}

	return f
}

func extractDuration(utterance string) (int, bool) {
	m := durationRegex.FindStringSubmatch(utterance)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		return n * 60, true
	}
	return n, true
}

// extractPriority checks keywords in fixed table order, not text order:
// with multiple priority keywords in one utterance, the first table entry
// that matches anywhere wins.
func (e *Extractor) extractPriority(utterance string) (string, bool) {
	for i, rule := range e.rules.Priorities {
		if e.rules.priorityRegexes[i].MatchString(utterance) {
			return rule.Priority, true
		}
	}
	return "", false
}

// extractNotifications unions two patterns: every "<n><unit>" after the
// first alert-like keyword, and every "<n><unit> before|prior" anywhere.
// The result is deduplicated and sorted ascending, so extraction is
// idempotent and order-independent. No match leaves the field unset.
func extractNotifications(utterance string) []int {
	seen := make(map[int]bool)

	if kw := alertKeywordRegex.FindStringIndex(utterance); kw != nil {
		for _, m := range offsetRegex.FindAllStringSubmatch(utterance[kw[0]:], -1) {
			if n, ok := offsetMinutes(m); ok {
				seen[n] = true
			}
		}
	}
	for _, m := range beforeOffsetRegex.FindAllStringSubmatch(utterance, -1) {
		if n, ok := offsetMinutes(m); ok {
			seen[n] = true
		}
	}

	if len(seen) == 0 {
		return nil
	}
	result := make([]int, 0, len(seen))
	for n := range seen {
		result = append(result, n)
	}
	sort.Ints(result)
	return result
}

func offsetMinutes(m []string) (int, bool) {
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0, false
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		return n * 60, true
	}
	return n, true
}

// extractDeadline resolves a deadline unless the ambiguity guard trips
// ("maybe", or two weekday names joined by "or"), in which case no deadline
// is extracted even if a parseable date substring exists.
func (e *Extractor) extractDeadline(utterance string, loc *time.Location) (string, bool) {
	if ambiguityGuardRegex.MatchString(utterance) {
		return "", false
	}

	now := e.clock().In(loc)

	if m := beforeWeekdayRegex.FindStringSubmatch(utterance); m != nil {
		// "before Sunday" means end of day Sunday, local time.
		day, err := timeparse.ParseAt(m[1], loc, now)
		if err == nil {
			eod := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 0, 0, loc)
			return timeparse.ToUTCISO(eod), true
		}
		return "", false
	}

	dt, err := timeparse.ParseAt(utterance, loc, now)
	if err != nil {
		return "", false
	}
	return timeparse.ToUTCISO(dt), true
}

// extractTags asks the entity recognizer for organization/miscellaneous
// entity labels. Any failure is logged and swallowed.
func (e *Extractor) extractTags(ctx context.Context, utterance string) []string {
	ents, err := e.recognizer.NER(ctx, utterance)
	if err != nil {
		logging.Debug("interpret", "NER assist failed: %v", err)
		return nil
	}

	seen := make(map[string]bool)
	for _, ent := range ents {
		if ent.Group == "ORG" || ent.Group == "MISC" {
			seen[ent.Group] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	tags := make([]string, 0, len(seen))
	for g := range seen {
		tags = append(tags, g)
	}
	sort.Strings(tags)
	return tags
}

// deriveDescription strips notification phrases (and everything after
// them), duration phrases, and date/time phrases from the utterance and
// returns what remains, if anything.
func deriveDescription(utterance string) (string, bool) {
	rem := utterance
	rem = descNotifyRegex.ReplaceAllString(rem, "")
	rem = descDurationRegex.ReplaceAllString(rem, "")
	rem = descDateRegex.ReplaceAllString(rem, "")
	rem = strings.Join(strings.Fields(rem), " ")
	rem = strings.Trim(rem, " .,-")
	if rem == "" {
		return "", false
	}
	return rem, true
}
