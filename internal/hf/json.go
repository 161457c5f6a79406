package hf

import (
	"encoding/json"
	"regexp"
)

var (
	jsonObjectRegex   = regexp.MustCompile(`\{[\s\S]*\}`)
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
)

// ExtractJSON pulls the first JSON-like object out of model output that may
// be wrapped in prose or code fences, repairs trailing commas, and decodes
// it. Undecodable input yields an empty map.
func ExtractJSON(text string) map[string]any {
	if text == "" {
		return map[string]any{}
	}
	m := jsonObjectRegex.FindString(text)
	if m == "" {
		return map[string]any{}
	}
	m = trailingCommaRegex.ReplaceAllString(m, "$1")

	var result map[string]any
	if err := json.Unmarshal([]byte(m), &result); err != nil {
		return map[string]any{}
	}
	return result
}
