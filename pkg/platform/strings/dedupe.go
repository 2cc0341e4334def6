// Package strings holds the small string helpers shared by the viewer and the
// metadata resolver.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each value and drops blanks and repeats, keeping the
// first occurrence's position. Used for user-typed field lists.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// Dedupe drops exact repeats, keeping the first occurrence's position.
// Values are compared byte for byte.
func Dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// TrimPadding removes trailing spaces and NUL bytes, the two characters
// DICOM uses to pad values to an even length.
func TrimPadding(s string) string {
	return strings.TrimRight(s, " \x00")
}

// ContainsFold reports whether substr is within s, ignoring case.
// An empty substr matches everything.
//
// Example:
//
//	ContainsFold("PatientID", "patient")
//	// Returns: true
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
