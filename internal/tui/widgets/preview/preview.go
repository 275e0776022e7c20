package preview

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	mu        sync.Mutex
	renderers = map[int]*glamour.TermRenderer{}
)

// Markdown renders content for a terminal of the given width. If glamour
// fails the raw text is returned so the preview never goes blank.
func Markdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return "(empty)\n"
	}
	if width < 20 {
		width = 20
	}
	r, err := renderer(width)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

func renderer(width int) (*glamour.TermRenderer, error) {
	mu.Lock()
	defer mu.Unlock()
	if r, ok := renderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	renderers[width] = r
	return r, nil
}
