// Package interpret converts free-text utterances into structured task
// actions. Rule-based extraction runs first; an optional zero-shot
// classifier, NER assist, and text-to-JSON assistant fill gaps. All
// external calls are best-effort: a failure downgrades to the rule-only
// result, never an error.
package interpret

// Operations a ParsedAction can carry.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpComplete = "complete"
	OpReopen   = "reopen"
	OpQuery    = "query"
)

// IntentLabels is the fixed candidate set for intent classification.
var IntentLabels = []string{OpCreate, OpUpdate, OpDelete, OpComplete, OpReopen, OpQuery}

// Target identifies which task an action refers to: either a resolved task
// ID or a free-text title fragment whose resolution is deferred to apply
// time. Never both.
type Target struct {
	By    string `json:"by"` // "id" or "title"
	Value string `json:"value"`
}

// ByID returns an id-based target.
func ByID(id string) *Target { return &Target{By: "id", Value: id} }

// ByTitle returns a title-based target.
func ByTitle(title string) *Target { return &Target{By: "title", Value: title} }

// Fields is a partial field set. A nil pointer means "do not change";
// a present value carries the change, so "explicitly cleared" and
// "untouched" stay distinguishable (offsets and tags may be present and
// empty, which clears wholesale).
type Fields struct {
	Title                    *string   `json:"title,omitempty"`
	Description              *string   `json:"description,omitempty"`
	Status                   *string   `json:"status,omitempty"`
	Priority                 *string   `json:"priority,omitempty"`
	EstimatedDurationMinutes *int      `json:"estimated_duration_minutes,omitempty"`
	DeadlineUTC              *string   `json:"deadline_utc,omitempty"`
	NotifyOffsetsMinutes     *[]int    `json:"notify_offsets_minutes,omitempty"`
	Tags                     *[]string `json:"tags,omitempty"`
}

// IsEmpty reports whether no field is present at all.
func (f *Fields) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.Status == nil &&
		f.Priority == nil && f.EstimatedDurationMinutes == nil &&
		f.DeadlineUTC == nil && f.NotifyOffsetsMinutes == nil && f.Tags == nil
}

// ParsedAction is the canonical result of interpreting one utterance.
// It is transient: built per utterance, consumed by the applier and the
// console, never persisted.
type ParsedAction struct {
	Operation string  `json:"operation"`
	Target    *Target `json:"target,omitempty"`
	Fields    Fields  `json:"fields"`
	Notes     string  `json:"notes,omitempty"`
}

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }
