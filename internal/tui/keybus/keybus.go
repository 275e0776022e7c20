// Package keybus lets components hold app-wide key subscriptions for as long
// as they need them. The app dispatches every key press here before routing it
// to the focused screen.
package keybus

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Release drops a subscription. Calling it more than once is a no-op.
type Release func()

type entry struct {
	id  uint64
	msg tea.Msg
}

// Bus maps key names (as produced by tea.KeyMsg.String) to subscribers.
// The newest subscriber for a key wins.
type Bus struct {
	mu   sync.Mutex
	next uint64
	subs map[string][]entry
}

func New() *Bus {
	return &Bus{subs: map[string][]entry{}}
}

// Subscribe arranges for msg to be delivered whenever key is pressed.
func (b *Bus) Subscribe(key string, msg tea.Msg) Release {
	b.mu.Lock()
	b.next++
	id := b.next
	b.subs[key] = append(b.subs[key], entry{id: id, msg: msg})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(key, id) })
	}
}

func (b *Bus) remove(key string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[key]
	for i, e := range list {
		if e.id == id {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(b.subs, key)
		return
	}
	b.subs[key] = list
}

// Dispatch returns a command delivering the subscribed message for k.
// ok is false when nobody listens for that key.
func (b *Bus) Dispatch(k tea.KeyMsg) (cmd tea.Cmd, ok bool) {
	b.mu.Lock()
	list := b.subs[k.String()]
	if len(list) == 0 {
		b.mu.Unlock()
		return nil, false
	}
	msg := list[len(list)-1].msg
	b.mu.Unlock()
	return func() tea.Msg { return msg }, true
}

// Len reports how many subscribers key has.
func (b *Bus) Len(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[key])
}
