package ner

import (
	"context"
	"errors"
	"testing"

	"github.com/vthunder/ainotes/internal/hf"
)

type fakeRecognizer struct {
	entities []hf.Entity
	err      error
	calls    int
}

func (f *fakeRecognizer) NER(ctx context.Context, text string) ([]hf.Entity, error) {
	f.calls++
	return f.entities, f.err
}

func TestChain_PrimaryWins(t *testing.T) {
	primary := &fakeRecognizer{entities: []hf.Entity{{Word: "Rise", Group: "ORG"}}}
	fallback := &fakeRecognizer{entities: []hf.Entity{{Word: "other", Group: "MISC"}}}
	c := &Chain{Primary: primary, Fallback: fallback}

	ents, err := c.NER(context.Background(), "the Rise email")
	if err != nil {
		t.Fatalf("NER failed: %v", err)
	}
	if len(ents) != 1 || ents[0].Word != "Rise" {
		t.Errorf("Expected primary result, got %v", ents)
	}
	if fallback.calls != 0 {
		t.Errorf("Fallback should not run when primary succeeds, called %d times", fallback.calls)
	}
}

func TestChain_FallsBackOnError(t *testing.T) {
	primary := &fakeRecognizer{err: errors.New("endpoint down")}
	fallback := &fakeRecognizer{entities: []hf.Entity{{Word: "Rise", Group: "ORG"}}}
	c := &Chain{Primary: primary, Fallback: fallback}

	ents, err := c.NER(context.Background(), "the Rise email")
	if err != nil {
		t.Fatalf("NER failed: %v", err)
	}
	if len(ents) != 1 || ents[0].Word != "Rise" {
		t.Errorf("Expected fallback result, got %v", ents)
	}
}

func TestChain_BothNil(t *testing.T) {
	c := &Chain{}
	ents, err := c.NER(context.Background(), "anything")
	if err != nil || ents != nil {
		t.Errorf("Expected empty result, got %v, %v", ents, err)
	}
}

func TestChain_PrimaryErrorNoFallback(t *testing.T) {
	primary := &fakeRecognizer{err: errors.New("endpoint down")}
	c := &Chain{Primary: primary}

	ents, err := c.NER(context.Background(), "anything")
	if err != nil || ents != nil {
		t.Errorf("Expected swallowed failure, got %v, %v", ents, err)
	}
}
