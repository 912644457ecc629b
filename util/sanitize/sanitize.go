package sanitize

import (
	"regexp"
	"strings"
)

var (
	// disallowedFileChars matches anything outside the safe file name set.
	disallowedFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

	multiDashRegex = regexp.MustCompile(`-+`)
)

// ForFileName sanitizes an externally supplied identifier for use as a file
// name inside a watched directory. Separators and unsafe characters collapse
// to dashes and any leading dots are stripped so the result can never escape
// the directory or hide as a dotfile.
func ForFileName(s string) string {
	if s == "" {
		return ""
	}

	s = disallowedFileChars.ReplaceAllString(s, "-")
	s = multiDashRegex.ReplaceAllString(s, "-")
	s = strings.TrimRight(s, "-")
	s = strings.TrimLeft(s, ".-")

	return s
}
