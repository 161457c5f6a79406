package server

import (
	"regexp"
	"strings"
)

const maxFragments = 10

var (
	fragmentSplitRegex = regexp.MustCompile(`[,;]|\s\+\s`)

	titleFillerRegex   = regexp.MustCompile(`(?i)\b(idk\s+when|maybe|asap)\b`)
	titleDeadlineRegex = regexp.MustCompile(`(?i)\b(before\s+\w+)\b`)
	titleClockRegex    = regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2}|\d{1,2}\s*(am|pm))\b`)
)

// splitFragments breaks an utterance into independently-processed fragments
// on commas, semicolons, and standalone plus signs. Fragments are handled
// strictly in order because later ones may reference tasks created by
// earlier ones.
func splitFragments(utterance string) []string {
	var fragments []string
	for _, part := range fragmentSplitRegex.Split(utterance, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			fragments = append(fragments, part)
		}
	}
	if len(fragments) == 0 {
		fragments = []string{utterance}
	}
	if len(fragments) > maxFragments {
		fragments = fragments[:maxFragments]
	}
	return fragments
}

// deriveTitle strips filler, deadline phrases, and clock times from a
// fragment to produce a usable default task title.
func deriveTitle(fragment string) string {
	t := strings.TrimSpace(fragment)
	t = titleFillerRegex.ReplaceAllString(t, "")
	t = titleDeadlineRegex.ReplaceAllString(t, "")
	t = titleClockRegex.ReplaceAllString(t, "")
	t = strings.Join(strings.Fields(t), " ")
	t = strings.Trim(t, " .,-")
	if t == "" {
		return strings.TrimSpace(fragment)
	}
	return t
}
