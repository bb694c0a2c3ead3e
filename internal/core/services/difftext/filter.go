// Package difftext filters and compares configuration text blocks.
//
// NX-OS prepends volatile comment lines ("!Command: ...", "!Time: ...") to
// every show output. Both sides of a comparison must pass through the same
// filter first, otherwise a timestamp-only change reports as drift.
package difftext

import "strings"

// commentMarker starts a non-semantic line in the configuration dialect.
const commentMarker = "!"

// FilterComments removes every line whose first non-whitespace character is
// the comment marker. Pure function; empty input yields empty output.
func FilterComments(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), commentMarker) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
