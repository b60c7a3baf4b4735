package gemini

import (
	"regexp"
	"strings"
)

// Models occasionally prepend disclaimers to translated text. These patterns
// remove parenthesized, bracketed and full-line "Note: ..." insertions while
// keeping the surrounding content.
var (
	reParenNote   = regexp.MustCompile(`(?i)\(\s*note:[^)]*\)`)
	reBracketNote = regexp.MustCompile(`(?i)\[\s*note:[^\]]*\]`)
	reLineNote    = regexp.MustCompile(`(?im)^\s*note:.*$`)
)

// SanitizeText strips machine-translation disclaimers and normalizes
// whitespace in model output.
func SanitizeText(s string) string {
	if s == "" {
		return ""
	}

	s = reParenNote.ReplaceAllString(s, " ")
	s = reBracketNote.ReplaceAllString(s, " ")
	s = reLineNote.ReplaceAllString(s, "")

	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
