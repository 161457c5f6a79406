// Package ner provides a local entity recognizer built on the prose NLP
// library, used when the hosted NER endpoint is unreachable.
package ner

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/prose/v3"

	"github.com/vthunder/ainotes/internal/hf"
)

// ProseExtractor runs prose entity recognition in-process.
type ProseExtractor struct{}

// NewProseExtractor creates a prose-based recognizer.
func NewProseExtractor() *ProseExtractor {
	return &ProseExtractor{}
}

// NER extracts entities from text, mapped onto the same entity groups the
// hosted token-classification models emit (PER/ORG/LOC/MISC).
func (e *ProseExtractor) NER(_ context.Context, text string) ([]hf.Entity, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}

	var entities []hf.Entity
	for _, ent := range doc.Entities() {
		group := groupForLabel(ent.Label)
		if group == "" {
			continue
		}
		entities = append(entities, hf.Entity{
			Word:  ent.Text,
			Group: group,
			Score: ent.Confidence,
		})
	}
	return entities, nil
}

// groupForLabel maps prose labels to token-classification groups. Labels
// with no counterpart are dropped.
func groupForLabel(label string) string {
	switch strings.ToUpper(label) {
	case "PERSON":
		return "PER"
	case "ORG":
		return "ORG"
	case "GPE", "LOC", "FAC":
		return "LOC"
	case "PRODUCT", "EVENT", "WORK_OF_ART", "NORP", "LANGUAGE":
		return "MISC"
	default:
		return ""
	}
}
