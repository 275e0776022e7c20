package keybus

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type pingMsg struct{ n int }

func TestDispatchWithoutSubscribers(t *testing.T) {
	b := New()
	cmd, ok := b.Dispatch(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, ok)
	require.Nil(t, cmd)
}

func TestNewestSubscriberWins(t *testing.T) {
	b := New()
	r1 := b.Subscribe("esc", pingMsg{1})
	r2 := b.Subscribe("esc", pingMsg{2})
	require.Equal(t, 2, b.Len("esc"))

	cmd, ok := b.Dispatch(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, ok)
	require.Equal(t, pingMsg{2}, cmd())

	r2()
	cmd, _ = b.Dispatch(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, pingMsg{1}, cmd())

	r1()
	r1()
	require.Zero(t, b.Len("esc"))
}

func TestKeysAreIndependent(t *testing.T) {
	b := New()
	release := b.Subscribe("ctrl+s", pingMsg{3})
	defer release()
	_, ok := b.Dispatch(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, ok)
	cmd, ok := b.Dispatch(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, ok)
	require.Equal(t, pingMsg{3}, cmd())
}
