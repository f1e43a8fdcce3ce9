package slug

import (
	"regexp"
	"strings"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9]+`)
	dashRuns     = regexp.MustCompile(`-{2,}`)
)

// Make turns a title into a URL-safe slug: lower-cased, non-alphanumeric
// runs collapsed to single dashes, trimmed.
func Make(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = invalidChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s already is a well-formed slug.
func Valid(s string) bool {
	return s != "" && s == Make(s)
}
