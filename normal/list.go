package normal

import (
	"strings"
)

// Separator is used to join multiple values into a single field.
const Separator = "; "

// Split splits a joined field into its trimmed, non-empty values.
func Split(s string) (result []string) {
	for _, v := range strings.Split(s, ";") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

// Join joins values with the separator, skipping blank values.
func Join(vs []string) string {
	var result []string
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return strings.Join(result, Separator)
}

// Unique returns the values in order of first appearance, without exact
// duplicates.
func Unique(vs []string) (result []string) {
	seen := make(map[string]bool)
	for _, v := range vs {
		if seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}

// DeduplicateList removes repeated entries from a joined field, keeping the
// first occurrence, and drops empty entries. Used for subjects, countries
// and affiliations.
func DeduplicateList(s string) string {
	return Join(Unique(Split(s)))
}

// DeduplicateSubjects lowercases subjects, drops a dangling separator and
// removes duplicates.
func DeduplicateSubjects(s string) string {
	return DeduplicateList(strings.ToLower(s))
}
