package factory

import (
	"regexp"
	"strings"
	"unicode"
)

var scriptTagRe = regexp.MustCompile(`(?i)<\s*/?\s*script[^>]*>`)

// SanitizeText strips script-tag-like sequences and angle brackets from
// free-text fields (bio, description, notes) before storage.
func SanitizeText(s string) string {
	s = scriptTagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	return strings.TrimSpace(s)
}

// SanitizePhone retains only digits, the characters +()- and whitespace.
func SanitizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == '(' || r == ')' || r == '-' || unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizePlate upper-cases a license plate and strips non-alphanumeric
// characters.
func NormalizePlate(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
