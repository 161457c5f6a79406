package interpret

import (
	"regexp"

	"github.com/vthunder/ainotes/internal/logging"
	"github.com/vthunder/ainotes/internal/task"
)

// Straight and curly quote characters all delimit a candidate title.
var quotedSpanRegex = regexp.MustCompile(`["'\x{201C}\x{201D}\x{2018}\x{2019}]([^"'\x{201C}\x{201D}\x{2018}\x{2019}]+)["'\x{201C}\x{201D}\x{2018}\x{2019}]`)

// TaskFinder is the slice of the store the resolver needs.
type TaskFinder interface {
	FindByTitle(substring string) ([]*task.Task, error)
}

// TargetResolver locates which existing task an utterance refers to.
type TargetResolver struct {
	store TaskFinder
}

// NewTargetResolver creates a resolver over the given store.
func NewTargetResolver(store TaskFinder) *TargetResolver {
	return &TargetResolver{store: store}
}

// Resolve extracts the first quoted span as a candidate title and matches
// it against stored task titles (case-insensitive substring). A unique hit
// yields an id target. Zero or multiple hits yield a deferred title target:
// the caller re-checks the store at apply time, and a title matching more
// than one task surfaces there as a disambiguation list instead of a
// silently-picked task. No quoted span means no target.
func (r *TargetResolver) Resolve(utterance string) *Target {
	m := quotedSpanRegex.FindStringSubmatch(utterance)
	if m == nil {
		return nil
	}
	title := m[1]

	matches, err := r.store.FindByTitle(title)
	if err != nil {
		logging.Debug("interpret", "target lookup failed: %v", err)
		return ByTitle(title)
	}
	if len(matches) == 1 {
		return ByID(matches[0].ID)
	}
	return ByTitle(title)
}
