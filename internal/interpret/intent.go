package interpret

import (
	"context"
	"strings"

	"github.com/vthunder/ainotes/internal/logging"
)

// ZeroShotClassifier scores text against candidate labels. May fail; the
// keyword fallback governs then.
type ZeroShotClassifier interface {
	ZeroShot(ctx context.Context, text string, labels []string) (string, map[string]float64, error)
}

// IntentClassifier maps an utterance to an operation via a zero-shot
// endpoint, falling back to deterministic keyword rules.
type IntentClassifier struct {
	zeroShot ZeroShotClassifier // may be nil
	rules    *Rules
}

// NewIntentClassifier creates an intent classifier. zeroShot may be nil to
// run keyword-only.
func NewIntentClassifier(zeroShot ZeroShotClassifier, rules *Rules) *IntentClassifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &IntentClassifier{zeroShot: zeroShot, rules: rules}
}

// Classify returns one of the operations in IntentLabels. It never fails:
// when the endpoint is unreachable or returns an unknown label, keyword
// rules decide, defaulting to update.
func (c *IntentClassifier) Classify(ctx context.Context, utterance string) string {
	if c.zeroShot != nil {
		label, _, err := c.zeroShot.ZeroShot(ctx, utterance, IntentLabels)
		if err == nil && validIntent(label) {
			return label
		}
		if err != nil {
			logging.Debug("interpret", "zero-shot classify failed, using keyword fallback: %v", err)
		}
	}

	u := strings.ToLower(utterance)
	for _, rule := range c.rules.Intents {
		for _, kw := range rule.Keywords {
			if strings.Contains(u, kw) {
				return rule.Operation
			}
		}
	}
	return OpUpdate
}

func validIntent(label string) bool {
	for _, l := range IntentLabels {
		if l == label {
			return true
		}
	}
	return false
}
