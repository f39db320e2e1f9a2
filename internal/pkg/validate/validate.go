package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func MaxLen(value string, max int) bool {
	return len([]rune(value)) <= max
}

// UniqueStrings reports whether the slice has no case-insensitive
// duplicates after trimming.
func UniqueStrings(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}
