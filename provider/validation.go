package provider

import (
	"regexp"
	"strings"
)

// Models occasionally emit scratch reasoning inline with the final
// answer. Delimited scratch segments must never reach persisted
// messages or the user, so every adapter strips them before storing
// visible text.
var thinkingPattern = regexp.MustCompile(`(?s)<thinking>.*?</thinking>\n?\n?`)

// StripThinking removes <thinking>...</thinking> segments from a
// model's text and trims the leftover whitespace.
func StripThinking(text string) string {
	return strings.TrimSpace(thinkingPattern.ReplaceAllString(text, ""))
}
