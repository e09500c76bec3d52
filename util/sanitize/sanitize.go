// Package sanitize normalizes user-supplied names into forms safe for
// directories, bundle identifiers and filenames.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	nonSnakeRegex = regexp.MustCompile(`[^a-z0-9_]+`)
	nonKebabRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	multiDashRegex = regexp.MustCompile(`-+`)
)

// ForProjectName sanitizes a string into a project name: lowercase,
// snake_case, starting with a letter.
func ForProjectName(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	s = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(s)
	s = nonSnakeRegex.ReplaceAllString(s, "")

	if len(s) > 0 && (s[0] < 'a' || s[0] > 'z') {
		s = "sketch_" + s
	}
	if len(s) > 63 {
		s = s[:63]
	}
	return s
}

// ForFilename sanitizes a string for use in a filename (kebab-case).
func ForFilename(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = nonKebabRegex.ReplaceAllString(s, "")
	s = multiDashRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
