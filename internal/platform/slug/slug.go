package slug

import (
	"regexp"
	"strings"
)

var nonFileSafe = regexp.MustCompile(`[^a-z0-9]+`)

// Make turns a display name into a lowercase, file-safe token.
func Make(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = nonFileSafe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "unnamed"
	}
	return s
}
