package interpret

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// PriorityRule maps a whole-word keyword to a priority value. Rule order is
// significant: the first rule whose keyword appears anywhere in the
// utterance wins, regardless of where in the text it occurs.
type PriorityRule struct {
	Keyword  string `yaml:"keyword"`
	Priority string `yaml:"priority"`
}

// IntentRule maps substring keywords to a fallback operation. Checked in
// order when the classifier endpoint is unavailable.
type IntentRule struct {
	Keywords  []string `yaml:"keywords"`
	Operation string   `yaml:"operation"`
}

// Rules holds the keyword tables driving extraction and fallback intent
// classification. The compiled-in defaults match long-standing behavior;
// a YAML rules file can override either table.
type Rules struct {
	Priorities []PriorityRule `yaml:"priorities"`
	Intents    []IntentRule   `yaml:"intents"`

	priorityRegexes []*regexp.Regexp
}

// DefaultRules returns the built-in keyword tables.
func DefaultRules() *Rules {
	r := &Rules{
		Priorities: []PriorityRule{
			{Keyword: "low", Priority: "low"},
			{Keyword: "medium", Priority: "medium"},
			{Keyword: "normal", Priority: "medium"},
			{Keyword: "high", Priority: "high"},
			{Keyword: "urgent", Priority: "urgent"},
			{Keyword: "asap", Priority: "urgent"},
			{Keyword: "today", Priority: "high"},
		},
		Intents: []IntentRule{
			{Keywords: []string{"create", "new", "add"}, Operation: OpCreate},
			{Keywords: []string{"done", "complete", "finished"}, Operation: OpComplete},
			{Keywords: []string{"reopen", "undo"}, Operation: OpReopen},
			{Keywords: []string{"delete", "remove"}, Operation: OpDelete},
		},
	}
	r.compile()
	return r
}

// LoadRules reads a YAML rules file, falling back to the defaults for any
// table the file leaves empty.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	defaults := DefaultRules()
	if len(r.Priorities) == 0 {
		r.Priorities = defaults.Priorities
	}
	if len(r.Intents) == 0 {
		r.Intents = defaults.Intents
	}
	r.compile()
	return &r, nil
}

func (r *Rules) compile() {
	r.priorityRegexes = make([]*regexp.Regexp, len(r.Priorities))
	for i, p := range r.Priorities {
		r.priorityRegexes[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p.Keyword) + `\b`)
	}
}
