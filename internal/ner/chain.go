package ner

import (
	"context"

	"github.com/vthunder/ainotes/internal/hf"
	"github.com/vthunder/ainotes/internal/logging"
)

// Recognizer is any source of named entities.
type Recognizer interface {
	NER(ctx context.Context, text string) ([]hf.Entity, error)
}

// Chain tries the primary recognizer and falls back to the secondary when
// the primary fails. Either slot may be nil.
type Chain struct {
	Primary  Recognizer
	Fallback Recognizer
}

// NER queries the primary, then the fallback.
func (c *Chain) NER(ctx context.Context, text string) ([]hf.Entity, error) {
	if c.Primary != nil {
		ents, err := c.Primary.NER(ctx, text)
		if err == nil {
			return ents, nil
		}
		logging.Debug("ner", "primary recognizer failed, falling back: %v", err)
	}
	if c.Fallback != nil {
		return c.Fallback.NER(ctx, text)
	}
	return nil, nil
}
