package posts

import (
	"fmt"
	"strings"

	"postedit/internal/tui/util"
	chips "postedit/internal/tui/widgets/tagchips"
)

// RenderTags is a thin adapter over the TagChips widget for dashboard rows.
func RenderTags(tags []string, noColor bool) string {
	return chips.View(util.ParseTags(strings.Join(tags, ",")), noColor)
}

// Row is the plain text of one dashboard line: the id column, then the title
// or the load state.
func Row(id, title string, loading bool, err error) string {
	switch {
	case loading:
		return fmt.Sprintf("%-8s %s", id, "loading...")
	case err != nil:
		return fmt.Sprintf("%-8s %s", id, "unavailable")
	}
	return fmt.Sprintf("%-8s %s", id, title)
}
