package logging

import "regexp"

var (
	emailRegex = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRegex = regexp.MustCompile(`(?:\+|\b)\d[\d\s\-()]{5,}\d\b`)
)

// RedactPII replaces email-like and phone-like substrings with placeholder
// tokens. Every log site that receives raw user utterances must route the
// text through here first.
func RedactPII(text string) string {
	if text == "" {
		return text
	}
	text = emailRegex.ReplaceAllString(text, "[email]")
	text = phoneRegex.ReplaceAllString(text, "[phone]")
	return text
}
