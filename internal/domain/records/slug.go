package records

import (
	"regexp"
	"strings"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// MakeSlug turns a record title into a URL-safe base slug.
// Example: "Untitled Work #3" -> "untitled-work-3".
// Uniqueness per owner is the persistence layer's job.
func MakeSlug(title string) string {
	base := strings.ToLower(strings.TrimSpace(title))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if base == "" {
		base = "work"
	}
	return base
}
