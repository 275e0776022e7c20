package state

import "strings"

// JoinTags renders a tag list the way the tags input shows it.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
