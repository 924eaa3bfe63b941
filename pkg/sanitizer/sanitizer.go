// Package sanitizer normalizes free-text input before validation so the
// stored form is what the validators saw.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses any run of whitespace
// (including newlines and tabs) into a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}
	return result.String()
}

// NormalizeNote cleans a visit request note. Notes are optional; an
// all-whitespace note becomes empty.
func NormalizeNote(note string) string {
	return TrimAndNormalize(note)
}

// NormalizeTimes trims each entry of a slot time list, preserving order and
// keeping empties for the malformed-time filter to drop.
func NormalizeTimes(times []string) []string {
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = strings.TrimSpace(t)
	}
	return out
}
