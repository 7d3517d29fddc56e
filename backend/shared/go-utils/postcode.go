package utils

import (
	"regexp"
	"strings"
)

var (
	// Full UK postcode, e.g. "HA3 0AB" or "sw1a1aa".
	ukFullPostcode = regexp.MustCompile(`(?i)\b[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}\b`)

	// Outcode formats: A9, A99, AA9, AA99, A9A, AA9A.
	ukOutcode = regexp.MustCompile(`(^|\s)([A-Z]{1,2}\d{1,2}[A-Z]?)(\s|$)`)

	whitespace = regexp.MustCompile(`\s+`)
)

// LooksLikeUKFullPostcode reports whether s contains a complete UK postcode.
func LooksLikeUKFullPostcode(s string) bool {
	return ukFullPostcode.MatchString(s)
}

// ExtractUKOutcode returns the first standalone outcode in s, upper-cased and
// without spaces, or "" when there is none.
func ExtractUKOutcode(s string) string {
	m := ukOutcode.FindStringSubmatch(strings.ToUpper(s))
	if m == nil {
		return ""
	}
	return whitespace.ReplaceAllString(m[2], "")
}
