package normalize

import (
	"regexp"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

	// CCAM code: 4 letters + 3 digits, e.g. HHFA001.
	ccamCode = regexp.MustCompile(`^[A-Z]{4}[0-9]{3}$`)
)

// Code trims whitespace, uppercases, and strips non-alphanumeric
// characters from a code identifier. Returns "" for empty input.
func Code(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}
	s = strings.ToUpper(s)
	return nonAlphanumeric.ReplaceAllString(s, "")
}

// ValidCode reports whether s is a well-formed 7-character CCAM code.
func ValidCode(s string) bool {
	return ccamCode.MatchString(s)
}
