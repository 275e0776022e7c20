package editpost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"postedit/internal/api"
	"postedit/internal/auth"
	"postedit/internal/httpx"
	"postedit/internal/tui/keybus"
	"postedit/internal/tui/router"
	"postedit/internal/tui/state"
	"postedit/internal/tui/util"
)

const longContent = "A body that is comfortably over the minimum length."

type putCall struct {
	id string
	u  api.PostUpdate
}

type fakePosts struct {
	mu     sync.Mutex
	posts  map[string]api.Post
	getErr error
	putErr error
	block  bool // GetPost waits for its context to end

	gets []string
	puts []putCall
}

func (f *fakePosts) GetPost(ctx context.Context, id string) (api.Post, error) {
	f.mu.Lock()
	f.gets = append(f.gets, id)
	block, err, p := f.block, f.getErr, f.posts[id]
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return api.Post{}, ctx.Err()
	}
	if err != nil {
		return api.Post{}, err
	}
	return p, nil
}

func (f *fakePosts) UpdatePost(_ context.Context, id string, u api.PostUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, putCall{id: id, u: u})
	return f.putErr
}

func (f *fakePosts) counts() (gets, puts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.gets), len(f.puts)
}

func samplePosts() *fakePosts {
	return &fakePosts{posts: map[string]api.Post{
		"42": {ID: "42", Title: "Hello", Content: longContent, Tags: []string{"go", "tui"}, ImageURL: "https://img.example/a.png"},
		"7":  {ID: "7", Title: "Other", Content: longContent},
	}}
}

func newTestModel(posts PostService, authed bool) (Model, *keybus.Bus) {
	bus := keybus.New()
	m := New(Config{
		Posts:         posts,
		Auth:          auth.Static(authed),
		Keys:          bus,
		Log:           zerolog.Nop(),
		FocusDelay:    time.Millisecond,
		RedirectDelay: 30 * time.Millisecond,
		NoColor:       true,
	})
	return m, bus
}

// collect runs cmd and every batched or sequenced command under it, in order.
func collect(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	v := reflect.ValueOf(msg)
	if v.Kind() == reflect.Slice && v.Type().Elem() == reflect.TypeOf(tea.Cmd(nil)) {
		var out []tea.Msg
		for i := 0; i < v.Len(); i++ {
			out = append(out, collect(t, v.Index(i).Interface().(tea.Cmd))...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func find[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// openReady opens id and delivers the fetch and the delayed title focus.
func openReady(t *testing.T, m Model, id string) Model {
	t.Helper()
	m, cmd := m.Open(id)
	fetched, ok := find[fetchedMsg](collect(t, cmd))
	require.True(t, ok, "open should fetch")
	m, cmd = m.Update(fetched)
	focus, ok := find[focusTitleMsg](collect(t, cmd))
	require.True(t, ok, "fetch should schedule title focus")
	m, _ = m.Update(focus)
	require.Equal(t, state.Ready, m.State().Phase)
	return m
}

func ctrlS() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyCtrlS} }

func TestOpenFetchesOncePopulatesAndFocusesTitle(t *testing.T) {
	posts := samplePosts()
	m, _ := newTestModel(posts, true)

	m, cmd := m.Open("42")
	require.True(t, m.State().FetchingPost)
	require.Equal(t, state.FetchingPost, m.State().Phase)

	fetched, ok := find[fetchedMsg](collect(t, cmd))
	require.True(t, ok)
	m, cmd = m.Update(fetched)

	s := m.State()
	require.Equal(t, "Hello", s.Title)
	require.Equal(t, longContent, s.Content)
	require.Equal(t, "go, tui", s.Tags)
	require.Equal(t, "https://img.example/a.png", s.ImageURL)
	require.False(t, s.FetchingPost)
	require.Equal(t, state.NoField, s.FocusedField, "title focus is delayed")

	focus, ok := find[focusTitleMsg](collect(t, cmd))
	require.True(t, ok)
	m, _ = m.Update(focus)
	require.Equal(t, state.TitleField, m.State().FocusedField)

	gets, puts := posts.counts()
	require.Equal(t, 1, gets)
	require.Equal(t, 0, puts)
}

func TestOpenWithoutIDShowsErrorAndSkipsFetch(t *testing.T) {
	posts := samplePosts()
	m, _ := newTestModel(posts, true)

	m, cmd := m.Open("")
	require.Nil(t, cmd)
	require.Equal(t, state.FetchFailed, m.State().Phase)
	require.Equal(t, "No post selected.", m.State().Error)
	gets, _ := posts.counts()
	require.Zero(t, gets)
}

func TestFetchFailureHidesForm(t *testing.T) {
	posts := samplePosts()
	posts.getErr = errors.New("connection refused")
	m, _ := newTestModel(posts, true)

	m, cmd := m.Open("42")
	fetched, _ := find[fetchedMsg](collect(t, cmd))
	m, cmd = m.Update(fetched)
	require.Nil(t, cmd)

	require.Equal(t, state.FetchFailed, m.State().Phase)
	require.Equal(t, MsgFetchFailed, m.State().Error)
	require.False(t, m.State().FetchingPost)

	view := ansi.Strip(m.View())
	require.Contains(t, view, MsgFetchFailed)
	require.NotContains(t, view, "Post Title")

	// no submit from the error view
	_, cmd = m.Update(ctrlS())
	require.Nil(t, cmd)
}

func TestReopenOtherPostNeverShowsStaleData(t *testing.T) {
	posts := samplePosts()
	m, _ := newTestModel(posts, true)

	m, first := m.Open("42")
	oldFetch, ok := find[fetchedMsg](collect(t, first))
	require.True(t, ok)

	m, _ = m.Close()
	m, _ = m.Open("7")
	require.Equal(t, "7", m.State().PostID)
	require.Empty(t, m.State().Title)

	// the first cycle's response arrives late and is dropped
	m, cmd := m.Update(oldFetch)
	require.Nil(t, cmd)
	require.Equal(t, state.FetchingPost, m.State().Phase)
	require.Empty(t, m.State().Title)
}

func TestCloseCancelsInFlightFetch(t *testing.T) {
	posts := samplePosts()
	posts.block = true
	m, _ := newTestModel(posts, true)

	m, cmd := m.Open("42")
	done := make(chan []tea.Msg, 1)
	go func() { done <- collect(t, cmd) }()

	require.Eventually(t, func() bool { g, _ := posts.counts(); return g == 1 }, time.Second, 5*time.Millisecond)
	m, _ = m.Close()

	var msgs []tea.Msg
	select {
	case msgs = <-done:
	case <-time.After(time.Second):
		t.Fatal("fetch was not cancelled by close")
	}
	fetched, ok := find[fetchedMsg](msgs)
	require.True(t, ok)
	require.ErrorIs(t, fetched.err, context.Canceled)

	m, _ = m.Update(fetched)
	require.False(t, m.IsOpen())
	require.Empty(t, m.State().Error)
}

func TestTypingEditsFocusedField(t *testing.T) {
	m, _ := newTestModel(samplePosts(), true)
	m = openReady(t, m, "42")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("!")})
	require.Equal(t, "Hello!", m.State().Title)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, state.ImageURLField, m.State().FocusedField)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, state.TagsField, m.State().FocusedField)
}

func TestSubmitRejectsShortContent(t *testing.T) {
	posts := samplePosts()
	m, _ := newTestModel(posts, true)
	m = openReady(t, m, "42")
	m = m.setValue(state.ContentField, "short")

	m, cmd := m.Update(ctrlS())
	require.Nil(t, cmd)
	require.Equal(t, "Please add at least 20 characters of content.", m.State().Error)
	require.Equal(t, state.Ready, m.State().Phase)
	_, puts := posts.counts()
	require.Zero(t, puts)
}

func TestSubmitCountsTrimmedRunes(t *testing.T) {
	posts := samplePosts()
	m, _ := newTestModel(posts, true)
	m = openReady(t, m, "42")
	// 19 runes once trimmed
	m = m.setValue(state.ContentField, "   ééééééééééééééééééé   ")

	m, cmd := m.Update(ctrlS())
	require.Nil(t, cmd)
	require.NotEmpty(t, m.State().Error)
}

func TestSubmitRequiresSignedInUser(t *testing.T) {
	posts := samplePosts()
	m, _ := newTestModel(posts, false)
	m = openReady(t, m, "42")

	m, cmd := m.Update(ctrlS())
	require.Nil(t, cmd)
	require.Equal(t, MsgNotSignedIn, m.State().Error)
	_, puts := posts.counts()
	require.Zero(t, puts)
}

func TestSubmitSendsParsedTagsOnce(t *testing.T) {
	posts := samplePosts()
	m, _ := newTestModel(posts, true)
	m = openReady(t, m, "42")
	m = m.setValue(state.TagsField, "a, b, a, ,c")

	m, cmd := m.Update(ctrlS())
	require.True(t, m.State().Loading)
	require.Equal(t, state.Submitting, m.State().Phase)

	// a second submit while the first is in flight does nothing
	m, again := m.Update(ctrlS())
	require.Nil(t, again)

	updated, ok := find[updatedMsg](collect(t, cmd))
	require.True(t, ok)

	require.Len(t, posts.puts, 1)
	require.Equal(t, "42", posts.puts[0].id)
	require.Equal(t, api.PostUpdate{
		Title:    "Hello",
		Content:  longContent,
		Tags:     []string{"a", "b", "c"},
		ImageURL: "https://img.example/a.png",
	}, posts.puts[0].u)

	m, _ = m.Update(updated)
	require.False(t, m.IsOpen())
}

func TestSuccessNotifiesThenCloses(t *testing.T) {
	m, bus := newTestModel(samplePosts(), true)
	m = openReady(t, m, "42")

	m, cmd := m.Update(ctrlS())
	updated, _ := find[updatedMsg](collect(t, cmd))
	m, cmd = m.Update(updated)

	msgs := collect(t, cmd)
	require.Equal(t, []tea.Msg{PostUpdatedMsg{PostID: "42"}, ClosedMsg{}}, msgs)

	require.False(t, m.IsOpen())
	require.Equal(t, state.FormState{Session: m.State().Session}, m.State())
	require.Zero(t, bus.Len("esc"))
}

func TestCustomCallbacksKeepOrder(t *testing.T) {
	type updated struct{}
	type closed struct{}
	m := New(Config{
		Posts:         samplePosts(),
		Auth:          auth.Static(true),
		Log:           zerolog.Nop(),
		FocusDelay:    time.Millisecond,
		OnPostUpdated: func() tea.Msg { return updated{} },
		OnClose:       func() tea.Msg { return closed{} },
	})
	m = openReady(t, m, "42")

	m, cmd := m.Update(ctrlS())
	done, _ := find[updatedMsg](collect(t, cmd))
	_, cmd = m.Update(done)
	require.Equal(t, []tea.Msg{updated{}, closed{}}, collect(t, cmd))
}

func TestUpdateFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"not found", &httpx.StatusError{Status: http.StatusNotFound}, MsgNotFound},
		{"server message", fmt.Errorf("update post 42: %w", &httpx.StatusError{Status: http.StatusBadRequest, Msg: "Title too long"}), "Title too long"},
		{"no message", &httpx.StatusError{Status: http.StatusInternalServerError}, MsgUpdateFailed},
		{"transport", errors.New("connection reset"), MsgUpdateFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			posts := samplePosts()
			posts.putErr = tc.err
			m, _ := newTestModel(posts, true)
			m = openReady(t, m, "42")
			m = m.setValue(state.TitleField, "Edited")

			m, cmd := m.Update(ctrlS())
			updated, _ := find[updatedMsg](collect(t, cmd))
			m, cmd = m.Update(updated)
			require.Nil(t, cmd)

			s := m.State()
			require.True(t, m.IsOpen())
			require.Equal(t, tc.want, s.Error)
			require.Equal(t, state.Ready, s.Phase)
			require.False(t, s.Loading)
			require.Equal(t, "Edited", s.Title, "edits survive a failed update")
		})
	}
}

func TestUnauthorizedRedirectsAfterDelay(t *testing.T) {
	posts := samplePosts()
	posts.putErr = &httpx.StatusError{Status: http.StatusUnauthorized, Msg: "Token expired"}
	m, _ := newTestModel(posts, true)
	m = openReady(t, m, "42")

	m, cmd := m.Update(ctrlS())
	updated, _ := find[updatedMsg](collect(t, cmd))

	start := time.Now()
	m, cmd = m.Update(updated)
	require.Equal(t, MsgAuthFailed, m.State().Error, "error shows before the redirect")
	require.True(t, m.IsOpen())
	require.NotNil(t, cmd)

	msgs := collect(t, cmd)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.Equal(t, []tea.Msg{router.NavigateMsg{To: router.At("/login"), Hard: true}}, msgs)
}

func TestEscapeSubscriptionFollowsOpenCycle(t *testing.T) {
	m, bus := newTestModel(samplePosts(), true)
	esc := tea.KeyMsg{Type: tea.KeyEsc}

	_, ok := bus.Dispatch(esc)
	require.False(t, ok, "closed modal holds no subscription")

	m = openReady(t, m, "42")
	require.Equal(t, 1, bus.Len("esc"))

	cmd, ok := bus.Dispatch(esc)
	require.True(t, ok)
	m, cmd = m.Update(cmd())
	require.False(t, m.IsOpen())
	require.Equal(t, []tea.Msg{ClosedMsg{}}, collect(t, cmd))
	require.Zero(t, bus.Len("esc"))

	// reopening subscribes once, not twice
	m, _ = m.Open("7")
	m, _ = m.Open("42")
	require.Equal(t, 1, bus.Len("esc"))
	m, _ = m.Close()
	require.Zero(t, bus.Len("esc"))
}

func TestEscapeFromEarlierCycleIsIgnored(t *testing.T) {
	m, bus := newTestModel(samplePosts(), true)
	m, _ = m.Open("42")
	cmd, _ := bus.Dispatch(tea.KeyMsg{Type: tea.KeyEsc})
	stale := cmd()

	m, _ = m.Close()
	m, _ = m.Open("7")
	m, _ = m.Update(stale)
	require.True(t, m.IsOpen())
}

func TestBackdropClickCloses(t *testing.T) {
	m, _ := newTestModel(samplePosts(), true)
	m = m.SetSize(120, 60)
	m = openReady(t, m, "42")

	x, y, w, h := m.Bounds()
	require.Positive(t, w)
	require.Positive(t, h)

	inside := tea.MouseMsg{X: x + 1, Y: y + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, cmd := m.Update(inside)
	require.Nil(t, cmd)
	require.True(t, m.IsOpen())

	release := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
	m, _ = m.Update(release)
	require.True(t, m.IsOpen())

	outside := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, cmd = m.Update(outside)
	require.False(t, m.IsOpen())
	require.Equal(t, []tea.Msg{ClosedMsg{}}, collect(t, cmd))
}

func TestCloseIsIdempotent(t *testing.T) {
	m, _ := newTestModel(samplePosts(), true)
	m, cmd := m.Close()
	require.Nil(t, cmd)
	require.Empty(t, m.View())
}

func TestViewShowsFormWhenReady(t *testing.T) {
	m, _ := newTestModel(samplePosts(), true)
	m = m.SetSize(100, 50)

	m, _ = m.Open("42")
	require.Contains(t, ansi.Strip(m.View()), "Loading post data...")

	m = openReady(t, m, "42")
	view := ansi.Strip(m.View())
	for _, want := range []string{"Edit Story", "Post Title *", "Cover Image URL", "Tags (Optional)", "[#go]", "[ esc Cancel ]", "Update Post", "post:42"} {
		require.Contains(t, view, want)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	require.Contains(t, ansi.Strip(m.View()), "Help (ready)")
}

func TestDiffToggle(t *testing.T) {
	m, _ := newTestModel(samplePosts(), true)
	m = openReady(t, m, "42")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	require.Contains(t, ansi.Strip(m.View()), "No changes")

	m = m.setValue(state.ContentField, longContent+" More.")
	require.NotContains(t, ansi.Strip(m.View()), "No changes")
}

func TestBusyStateDimsCancelAndFrame(t *testing.T) {
	m, _ := newTestModel(samplePosts(), true)
	m.cfg.NoColor = false
	p := util.DefaultPalette()

	m = openReady(t, m, "42")
	require.False(t, m.cancelStyle(p).GetFaint())
	require.Equal(t, p.Primary, m.frameColor(p))

	m = m.setValue(state.ContentField, longContent)
	m, _ = m.Update(ctrlS())
	require.True(t, m.State().Loading)
	require.True(t, m.cancelStyle(p).GetFaint())
	require.Equal(t, p.Border, m.frameColor(p))
	require.Contains(t, ansi.Strip(m.View()), "[ esc Cancel ]")

	// the hint stays live: Escape still closes and cancels the update
	m, cmd := m.Update(closeRequestMsg{session: m.State().Session})
	require.False(t, m.IsOpen())
	require.Equal(t, []tea.Msg{ClosedMsg{}}, collect(t, cmd))
}

func TestContentCounterTurnsGreenAtMinimum(t *testing.T) {
	m, _ := newTestModel(samplePosts(), true)
	m.cfg.NoColor = false
	p := util.DefaultPalette()
	m = openReady(t, m, "42")

	m = m.setValue(state.ContentField, "  too short  ")
	require.Equal(t, p.Muted, m.counterStyle(p).GetForeground())

	m = m.setValue(state.ContentField, longContent)
	require.Equal(t, p.Success, m.counterStyle(p).GetForeground())
}
