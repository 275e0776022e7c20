// Package editpost is the edit-post modal: it loads a post, lets the user edit
// title, image URL, content and tags, and sends a single update per submit.
package editpost

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"postedit/internal/api"
	"postedit/internal/auth"
	"postedit/internal/tui/keybus"
	"postedit/internal/tui/router"
	"postedit/internal/tui/state"
	"postedit/internal/tui/util"
)

// Messages shown to the user.
const (
	MsgFetchFailed     = "Failed to load post data. Please try again."
	MsgNotSignedIn     = "You must be logged in to edit a post."
	MsgShortContentFmt = "Please add at least %d characters of content."
	MsgAuthFailed      = "Authentication failed. Redirecting..."
	MsgNotFound        = "Post not found."
	MsgUpdateFailed    = "Update failed. Try again."
)

var validate = validator.New()

// PostService is the slice of the REST client the modal needs.
type PostService interface {
	GetPost(ctx context.Context, id string) (api.Post, error)
	UpdatePost(ctx context.Context, id string, u api.PostUpdate) error
}

// Config wires the modal to its collaborators.
type Config struct {
	Posts PostService
	Auth  auth.Checker
	Keys  *keybus.Bus
	Log   zerolog.Logger

	MinContentLength int
	FocusDelay       time.Duration
	RedirectDelay    time.Duration
	LoginPath        string

	// OnClose and OnPostUpdated produce the messages the host receives. When
	// nil, ClosedMsg and PostUpdatedMsg are sent.
	OnClose       func() tea.Msg
	OnPostUpdated func() tea.Msg

	NoColor bool
}

// ClosedMsg is sent every time the modal closes.
type ClosedMsg struct{}

// PostUpdatedMsg is sent after a successful update, before ClosedMsg.
type PostUpdatedMsg struct{ PostID string }

type fetchedMsg struct {
	session uint64
	post    api.Post
	err     error
}

type updatedMsg struct {
	session uint64
	err     error
}

type focusTitleMsg struct{ session uint64 }

type closeRequestMsg struct{ session uint64 }

// Model is the modal. The zero value is unusable; call New.
type Model struct {
	cfg  Config
	form state.FormState

	title    textinput.Model
	imageURL textinput.Model
	tags     textinput.Model
	content  textarea.Model
	spin     spinner.Model

	cancel     context.CancelFunc
	releaseEsc keybus.Release

	width, height int
	showDiff      bool
	showPreview   bool
	showHelp      bool
}

func New(cfg Config) Model {
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = 20
	}
	if cfg.FocusDelay <= 0 {
		cfg.FocusDelay = 100 * time.Millisecond
	}
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = 2 * time.Second
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.Auth == nil {
		cfg.Auth = auth.Static(false)
	}

	m := Model{
		cfg:      cfg,
		title:    newInput("Enter an engaging title...", 200),
		imageURL: newInput("https://example.com/image.jpg", 2048),
		tags:     newInput("technology, design, programming", 500),
		content:  textarea.New(),
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.content.Placeholder = "Write your story here..."
	m.content.ShowLineNumbers = false
	m.content.CharLimit = 0
	m.content.SetHeight(8)
	m.content.Cursor.SetMode(cursor.CursorStatic)
	m = m.SetSize(0, 0)
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// State exposes the current form state.
func (m Model) State() state.FormState { return m.form }

func (m Model) IsOpen() bool { return m.form.IsOpen() }

// SetSize records the screen size used for layout and backdrop hit-testing.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	inner := m.boxWidth() - 4
	m.title.Width = inner
	m.imageURL.Width = inner
	m.tags.Width = inner
	m.content.SetWidth(inner)
	return m
}

// Open starts a new editing session for postID, dropping anything left from
// a previous one, and fetches the post.
func (m Model) Open(postID string) (Model, tea.Cmd) {
	m.releaseRequest()
	m.releaseEscape()
	m.form = state.Open(m.form, postID)
	m.resetInputs()

	if m.cfg.Keys != nil {
		m.releaseEsc = m.cfg.Keys.Subscribe(escapeKey, closeRequestMsg{session: m.form.Session})
	}
	m.cfg.Log.Debug().Str("post_id", postID).Uint64("session", m.form.Session).Msg("edit modal opened")
	auth.DebugStatus(m.cfg.Log, m.cfg.Auth)

	if m.form.Phase != state.FetchingPost {
		return m, nil
	}
	ctx := m.newRequestContext()
	return m, tea.Batch(m.spin.Tick, fetchCmd(ctx, m.cfg.Posts, m.form.Session, postID))
}

// Close wipes the form and notifies the host. Closing a closed modal does nothing.
func (m Model) Close() (Model, tea.Cmd) {
	if !m.form.IsOpen() {
		return m, nil
	}
	m.cfg.Log.Debug().Str("post_id", m.form.PostID).Uint64("session", m.form.Session).Msg("edit modal closed")
	m.releaseRequest()
	m.releaseEscape()
	m.form = state.Close(m.form)
	m.resetInputs()

	onClose := m.cfg.OnClose
	if onClose == nil {
		onClose = func() tea.Msg { return ClosedMsg{} }
	}
	return m, func() tea.Msg { return onClose() }
}

func (m *Model) newRequestContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return ctx
}

func (m *Model) releaseRequest() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) releaseEscape() {
	if m.releaseEsc != nil {
		m.releaseEsc()
		m.releaseEsc = nil
	}
}

func (m *Model) resetInputs() {
	for _, ti := range []*textinput.Model{&m.title, &m.imageURL, &m.tags} {
		ti.SetValue("")
		ti.Blur()
	}
	m.content.SetValue("")
	m.content.Blur()
	m.showDiff, m.showPreview, m.showHelp = false, false, false
}

// current reports whether a result for session still belongs to this cycle.
func (m Model) current(session uint64) bool {
	return m.form.IsOpen() && session == m.form.Session
}

func (m Model) busy() bool { return m.form.FetchingPost || m.form.Loading }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil

	case fetchedMsg:
		return m.applyFetched(msg)

	case updatedMsg:
		return m.applyUpdated(msg)

	case focusTitleMsg:
		if !m.current(msg.session) || m.form.Phase != state.Ready {
			return m, nil
		}
		m.form = state.Focus(m.form, state.TitleField)
		cmd := m.syncFocus()
		return m, cmd

	case closeRequestMsg:
		if !m.current(msg.session) {
			return m, nil
		}
		return m.Close()

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if !m.form.IsOpen() || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if m.insideBox(msg.X, msg.Y) {
			return m, nil
		}
		return m.Close()

	case tea.KeyMsg:
		if !m.form.IsOpen() {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case m.form.Phase != state.Ready && m.form.Phase != state.Submitting:
		return m, nil
	case key.Matches(msg, keys.Submit):
		return m.submit()
	case key.Matches(msg, keys.Next):
		m.form = state.NextField(m.form, false)
		cmd := m.syncFocus()
		return m, cmd
	case key.Matches(msg, keys.Prev):
		m.form = state.NextField(m.form, true)
		cmd := m.syncFocus()
		return m, cmd
	case key.Matches(msg, keys.Diff):
		m.showDiff = !m.showDiff
		m.showPreview = false
		return m, nil
	case key.Matches(msg, keys.Preview):
		m.showPreview = !m.showPreview
		m.showDiff = false
		return m, nil
	}
	if m.form.Phase != state.Ready {
		return m, nil
	}

	var cmd tea.Cmd
	f := m.form.FocusedField
	switch f {
	case state.TitleField:
		m.title, cmd = m.title.Update(msg)
		m.form = state.SetField(m.form, f, m.title.Value())
	case state.ImageURLField:
		m.imageURL, cmd = m.imageURL.Update(msg)
		m.form = state.SetField(m.form, f, m.imageURL.Value())
	case state.ContentField:
		m.content, cmd = m.content.Update(msg)
		m.form = state.SetField(m.form, f, m.content.Value())
	case state.TagsField:
		m.tags, cmd = m.tags.Update(msg)
		m.form = state.SetField(m.form, f, m.tags.Value())
	}
	return m, cmd
}

// syncFocus points the input widgets at form.FocusedField.
func (m *Model) syncFocus() tea.Cmd {
	m.title.Blur()
	m.imageURL.Blur()
	m.tags.Blur()
	m.content.Blur()
	switch m.form.FocusedField {
	case state.TitleField:
		return m.title.Focus()
	case state.ImageURLField:
		return m.imageURL.Focus()
	case state.ContentField:
		return m.content.Focus()
	case state.TagsField:
		return m.tags.Focus()
	}
	return nil
}

// setValue writes v into both the widget and the form, as typing would.
func (m Model) setValue(f state.Field, v string) Model {
	switch f {
	case state.TitleField:
		m.title.SetValue(v)
	case state.ImageURLField:
		m.imageURL.SetValue(v)
	case state.ContentField:
		m.content.SetValue(v)
	case state.TagsField:
		m.tags.SetValue(v)
	}
	m.form = state.SetField(m.form, f, v)
	return m
}

func (m Model) applyFetched(msg fetchedMsg) (Model, tea.Cmd) {
	if !m.current(msg.session) || m.form.Phase != state.FetchingPost {
		m.cfg.Log.Debug().Uint64("session", msg.session).Msg("dropping stale fetch result")
		return m, nil
	}
	m.releaseRequest()
	if msg.err != nil {
		m.cfg.Log.Warn().Err(msg.err).Str("post_id", m.form.PostID).Msg("load post failed")
		m.form = state.FailFetch(m.form, MsgFetchFailed)
		return m, nil
	}

	p := msg.post
	m.form = state.ApplyFetched(m.form, p.Title, p.Content, p.Tags, p.ImageURL)
	m.title.SetValue(m.form.Title)
	m.imageURL.SetValue(m.form.ImageURL)
	m.content.SetValue(m.form.Content)
	m.tags.SetValue(m.form.Tags)

	session := m.form.Session
	return m, tea.Tick(m.cfg.FocusDelay, func(time.Time) tea.Msg { return focusTitleMsg{session: session} })
}

func (m Model) submit() (Model, tea.Cmd) {
	if !m.form.CanSubmit() {
		return m, nil
	}
	if !m.cfg.Auth.IsAuthenticated() {
		m.form = state.Reject(m.form, MsgNotSignedIn)
		return m, nil
	}
	if err := validateContent(m.form.Content, m.cfg.MinContentLength); err != nil {
		m.cfg.Log.Debug().Err(err).Int("runes", util.RuneLen(m.form.Content)).Msg("content rejected")
		m.form = state.Reject(m.form, fmt.Sprintf(MsgShortContentFmt, m.cfg.MinContentLength))
		return m, nil
	}

	u := api.PostUpdate{
		Title:    m.form.Title,
		Content:  m.form.Content,
		Tags:     util.ParseTags(m.form.Tags),
		ImageURL: m.form.ImageURL,
	}
	m.form = state.BeginSubmit(m.form)
	ctx := m.newRequestContext()
	return m, tea.Batch(m.spin.Tick, updateCmd(ctx, m.cfg.Posts, m.form.Session, m.form.PostID, u))
}

// validateContent requires at least min runes once surrounding space is trimmed.
func validateContent(content string, min int) error {
	return validate.Var(strings.TrimSpace(content), "min="+strconv.Itoa(min))
}

func (m Model) applyUpdated(msg updatedMsg) (Model, tea.Cmd) {
	if !m.current(msg.session) || m.form.Phase != state.Submitting {
		m.cfg.Log.Debug().Uint64("session", msg.session).Msg("dropping stale update result")
		return m, nil
	}
	m.releaseRequest()
	id := m.form.PostID

	if msg.err == nil {
		m.cfg.Log.Info().Str("post_id", id).Msg("post updated")
		var cmds []tea.Cmd
		m, cmds = m.succeed()
		return m, tea.Sequence(cmds...)
	}

	m.cfg.Log.Warn().Err(msg.err).Str("post_id", id).Int("status", api.Status(msg.err)).Msg("update post failed")
	switch {
	case errors.Is(msg.err, api.ErrUnauthorized):
		m.form = state.SubmitFailed(m.form, MsgAuthFailed)
		return m, router.NavigateAfter(m.cfg.RedirectDelay, router.At(m.cfg.LoginPath), true)
	case errors.Is(msg.err, api.ErrNotFound):
		m.form = state.SubmitFailed(m.form, MsgNotFound)
	default:
		text := api.ServerMessage(msg.err)
		if text == "" {
			text = MsgUpdateFailed
		}
		m.form = state.SubmitFailed(m.form, text)
	}
	return m, nil
}

// succeed notifies the host of the update and then closes, in that order.
func (m Model) succeed() (Model, []tea.Cmd) {
	id := m.form.PostID
	updated := m.cfg.OnPostUpdated
	if updated == nil {
		updated = func() tea.Msg { return PostUpdatedMsg{PostID: id} }
	}
	m, closeCmd := m.Close()
	return m, []tea.Cmd{func() tea.Msg { return updated() }, closeCmd}
}

func fetchCmd(ctx context.Context, svc PostService, session uint64, id string) tea.Cmd {
	return func() tea.Msg {
		p, err := svc.GetPost(ctx, id)
		return fetchedMsg{session: session, post: p, err: err}
	}
}

func updateCmd(ctx context.Context, svc PostService, session uint64, id string, u api.PostUpdate) tea.Cmd {
	return func() tea.Msg {
		return updatedMsg{session: session, err: svc.UpdatePost(ctx, id, u)}
	}
}
