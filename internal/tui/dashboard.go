package tui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"postedit/internal/api"
	"postedit/internal/tui/editpost"
	"postedit/internal/tui/views/posts"
)

type postRow struct {
	ID      string
	Post    api.Post
	Err     error
	Loading bool
}

type postLoadedMsg struct {
	id   string
	post api.Post
	err  error
}

// editRequestMsg asks the app to open the edit modal.
type editRequestMsg struct{ postID string }

type signOutMsg struct{}

type dashboardModel struct {
	posts   editpost.PostService
	log     zerolog.Logger
	baseURL string
	noColor bool
	copy    func(string) error

	rows   []postRow
	sel    int
	status string

	// "/" prompt for opening a post that is not listed
	prompting bool
	promptBuf string
}

func newDashboard(svc editpost.PostService, log zerolog.Logger, baseURL string, ids []string, noColor bool) dashboardModel {
	d := dashboardModel{
		posts:   svc,
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		noColor: noColor,
		copy:    clipboard.WriteAll,
	}
	for _, id := range ids {
		d.addRow(id)
	}
	return d
}

func (d *dashboardModel) addRow(id string) int {
	for i, r := range d.rows {
		if r.ID == id {
			return i
		}
	}
	d.rows = append(d.rows, postRow{ID: id})
	return len(d.rows) - 1
}

// load fetches the given rows; with no ids it fetches every row.
func (d *dashboardModel) load(ids ...string) tea.Cmd {
	if len(ids) == 0 {
		for _, r := range d.rows {
			ids = append(ids, r.ID)
		}
	}
	cmds := make([]tea.Cmd, 0, len(ids))
	for _, id := range ids {
		i := d.addRow(id)
		d.rows[i].Loading = true
		cmds = append(cmds, loadPost(d.posts, id))
	}
	return tea.Batch(cmds...)
}

func loadPost(svc editpost.PostService, id string) tea.Cmd {
	return func() tea.Msg {
		p, err := svc.GetPost(context.Background(), id)
		return postLoadedMsg{id: id, post: p, err: err}
	}
}

func (d dashboardModel) selected() (postRow, bool) {
	if d.sel < 0 || d.sel >= len(d.rows) {
		return postRow{}, false
	}
	return d.rows[d.sel], true
}

func (d dashboardModel) postURL(id string) string {
	return d.baseURL + "/posts/" + id
}

func (d dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch v := msg.(type) {
	case postLoadedMsg:
		for i := range d.rows {
			if d.rows[i].ID != v.id {
				continue
			}
			d.rows[i].Loading = false
			d.rows[i].Err = v.err
			if v.err == nil {
				d.rows[i].Post = v.post
			} else {
				d.log.Warn().Err(v.err).Str("post_id", v.id).Msg("load post for dashboard failed")
			}
		}
		return d, nil

	case tea.KeyMsg:
		if d.prompting {
			return d.updatePrompt(v)
		}
		switch v.String() {
		case "q":
			return d, tea.Quit
		case "j", "down":
			if d.sel < len(d.rows)-1 {
				d.sel++
			}
		case "k", "up":
			if d.sel > 0 {
				d.sel--
			}
		case "e", "enter":
			if r, ok := d.selected(); ok {
				return d, func() tea.Msg { return editRequestMsg{postID: r.ID} }
			}
		case "r":
			if r, ok := d.selected(); ok {
				d.status = "Reloading " + r.ID
				cmd := d.load(r.ID)
				return d, cmd
			}
		case "R":
			d.status = "Reloading all posts"
			cmd := d.load()
			return d, cmd
		case "y":
			r, ok := d.selected()
			if !ok {
				return d, nil
			}
			u := d.postURL(r.ID)
			if err := d.copy(u); err != nil {
				d.status = "Copy failed: " + err.Error()
			} else {
				d.status = "Copied " + u
			}
		case "/":
			d.prompting = true
			d.promptBuf = ""
		case "o":
			return d, func() tea.Msg { return signOutMsg{} }
		}
	}
	return d, nil
}

func (d dashboardModel) updatePrompt(k tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch k.Type {
	case tea.KeyEnter:
		d.prompting = false
		id := strings.TrimSpace(d.promptBuf)
		d.promptBuf = ""
		if id == "" {
			return d, nil
		}
		d.sel = d.addRow(id)
		load := d.load(id)
		return d, tea.Batch(load, func() tea.Msg { return editRequestMsg{postID: id} })
	case tea.KeyEsc:
		d.prompting = false
		d.promptBuf = ""
	case tea.KeyBackspace, tea.KeyCtrlH:
		if r := []rune(d.promptBuf); len(r) > 0 {
			d.promptBuf = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		d.promptBuf += string(k.Runes)
	}
	return d, nil
}

func (d dashboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Posts") + "\n")
	if len(d.rows) == 0 {
		b.WriteString("No posts listed. Press / to open one by id.\n")
	}
	for i, r := range d.rows {
		line := posts.Row(r.ID, r.Post.Title, r.Loading, r.Err)
		switch {
		case r.Loading:
			line = faintStyle.Render(line)
		case r.Err != nil:
			line = errStyle.Render(line)
		}
		if i == d.sel {
			line = selStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
		if chips := posts.RenderTags(r.Post.Tags, d.noColor); chips != "" {
			b.WriteString("           " + chips + "\n")
		}
	}
	b.WriteString("\n")
	if d.prompting {
		b.WriteString("Open post id: " + d.promptBuf + "\n")
	}
	b.WriteString("(j/k select) (e) edit (r) reload (R) all (y) copy url (/) open id (o) sign out (q) quit\n")
	if strings.TrimSpace(d.status) != "" {
		b.WriteString(faintStyle.Render(d.status) + "\n")
	}
	return b.String()
}
