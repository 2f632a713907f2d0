package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"rfp-assistant/internal/chat"
)

// Bridge forwards controller snapshots into the bubbletea event loop.
// Register Observe with chat.WithObserver and pass the Bridge to New.
type Bridge struct {
	ch   chan chat.State
	done chan struct{}
	once sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		ch:   make(chan chat.State, 64),
		done: make(chan struct{}),
	}
}

// Observe blocks until the snapshot is queued or the bridge is closed.
func (b *Bridge) Observe(s chat.State) {
	select {
	case b.ch <- s:
	case <-b.done:
	}
}

func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// next waits for the following snapshot.
func (b *Bridge) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-b.ch:
			return bridgeMsg(s)
		case <-b.done:
			return nil
		}
	}
}
