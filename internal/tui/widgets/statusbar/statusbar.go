package statusbar

import (
	"fmt"
	"strings"

	"postedit/internal/tui/state"
	"postedit/internal/tui/util"
)

type StatusBar struct{}

func NewStatusBar() StatusBar { return StatusBar{} }

// View composes a concise status line for the edit form.
func (StatusBar) View(s state.FormState, minContent int) string {
	parts := []string{"[" + strings.ToUpper(s.Phase.String()) + "]"}
	if s.PostID != "" {
		parts = append(parts, "post:"+s.PostID)
	}
	if f := s.FocusedField; f != state.NoField {
		parts = append(parts, "field:"+f.String())
	}
	if s.Phase == state.Ready || s.Phase == state.Submitting {
		n := util.RuneLen(s.Content)
		mark := "ok"
		if n < minContent {
			mark = fmt.Sprintf("need %d", minContent-n)
		}
		parts = append(parts, fmt.Sprintf("content:%d (%s)", n, mark))
		parts = append(parts, fmt.Sprintf("tags:%d", len(util.ParseTags(s.Tags))))
	}
	return strings.Join(parts, "  ")
}
