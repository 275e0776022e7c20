package util

import "strings"

// ParseTags splits raw comma-separated tag text into a de-duplicated list.
// Entries are trimmed, empty ones dropped, and the first occurrence of each
// tag keeps its position.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// RuneLen returns the length of s in runes after trimming surrounding space.
func RuneLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}
