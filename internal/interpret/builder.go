package interpret

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vthunder/ainotes/internal/logging"
)

// ErrEmptyUtterance is returned for blank input, which is rejected before
// any processing.
var ErrEmptyUtterance = errors.New("empty utterance")

// Builder orchestrates intent classification, target resolution, field
// extraction, and the optional assistant into one canonical action.
type Builder struct {
	intent    *IntentClassifier
	resolver  *TargetResolver
	extractor *Extractor
	assistant Assistant // may be nil
}

// NewBuilder wires a builder from its parts. assistant may be nil.
func NewBuilder(intent *IntentClassifier, resolver *TargetResolver, extractor *Extractor, assistant Assistant) *Builder {
	return &Builder{
		intent:    intent,
		resolver:  resolver,
		extractor: extractor,
		assistant: assistant,
	}
}

// Build interprets one utterance against the given IANA timezone name.
// defaultTitle, when non-empty, seeds the target for create actions that
// would otherwise have none (used by the console's fragment splitting).
// Build fails only on empty input; every other path produces an action.
func (b *Builder) Build(ctx context.Context, utterance, tz, defaultTitle string) (*ParsedAction, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, ErrEmptyUtterance
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		logging.Debug("interpret", "unknown timezone %q, using UTC", tz)
		loc = time.UTC
	}

	intent := b.intent.Classify(ctx, utterance)
	target := b.resolver.Resolve(utterance)
	fields := b.extractor.Extract(ctx, utterance, loc)
	notes := "rule-first parse with model assist; times normalized to UTC"

	// Weak rule signal, or operations that benefit most from help: ask the
	// assistant, with rule and resolver results winning every collision.
	if b.assistant != nil && (fields.IsEmpty() || intent == OpCreate || intent == OpUpdate) {
		sketch, err := b.assistant.Text2JSON(ctx, fmt.Sprintf(assistantSchemaPrompt, tz, utterance))
		if err != nil {
			logging.Debug("interpret", "assistant unavailable: %v", err)
		} else {
			if raw, ok := sketch["fields"].(map[string]any); ok {
				shaped, err := fieldsFromMap(raw)
				if err != nil {
					// Malformed assistant output degrades to a diagnostic
					// action rather than a crash or a hard failure.
					return &ParsedAction{
						Operation: intent,
						Target:    target,
						Notes:     "validation_error: " + err.Error(),
					}, nil
				}
				fields.fillFrom(shaped)
			}
			if target == nil {
				if raw, ok := sketch["target"].(map[string]any); ok {
					target = targetFromMap(raw)
				}
			}
		}
	}

	// An instruction with no locatable target and a non-query, non-create
	// verb reads as "make a new task", not as a failure.
	if target == nil && intent != OpCreate && intent != OpQuery {
		intent = OpCreate
	}
	if target == nil && intent == OpCreate && defaultTitle != "" {
		target = ByTitle(defaultTitle)
	}

	return &ParsedAction{
		Operation: intent,
		Target:    target,
		Fields:    fields,
		Notes:     notes,
	}, nil
}
