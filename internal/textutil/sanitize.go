package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizePrompt converts the prompt to NFC, drops control characters other
// than newlines and tabs, and trims surrounding whitespace.
func NormalizePrompt(prompt string) string {
	prompt = norm.NFC.String(prompt)
	prompt = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, prompt)
	return strings.TrimSpace(prompt)
}

// RuneLength counts characters rather than bytes so non-ASCII prompts are
// measured the way users type them.
func RuneLength(s string) int {
	return utf8.RuneCountInString(s)
}

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters and digits are kept, everything else collapses to a single
// hyphen. maxLen <= 0 means no limit. Returns "untitled" for empty input.
func SanitizeToken(value string, maxLen int) string {
	value = norm.NFKD.String(strings.TrimSpace(value))
	var b strings.Builder
	lastDash := false
	for _, r := range value {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
		case unicode.Is(unicode.Mn, r):
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
		if maxLen > 0 && b.Len() >= maxLen {
			break
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "untitled"
	}
	return out
}
