package component

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ColorSchemeNotifier reports system dark/light preference changes. The
// component subscribes once and flips its theme property on every change.
type ColorSchemeNotifier interface {
	// Subscribe registers fn and returns a cancel func. fn is called with
	// true for dark, false for light.
	Subscribe(fn func(dark bool)) (cancel func())
}

// ManualNotifier is a ColorSchemeNotifier driven by explicit Notify calls.
// The demo seeds it from the terminal background; tests drive it directly.
type ManualNotifier struct {
	mu   sync.Mutex
	subs map[int]func(bool)
	next int
}

func NewManualNotifier() *ManualNotifier {
	return &ManualNotifier{subs: map[int]func(bool){}}
}

func (n *ManualNotifier) Subscribe(fn func(dark bool)) (cancel func()) {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = fn
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Notify fans the preference out to all subscribers.
func (n *ManualNotifier) Notify(dark bool) {
	n.mu.Lock()
	subs := make([]func(bool), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()
	for _, fn := range subs {
		fn(dark)
	}
}

// DetectDark probes the terminal background.
func DetectDark() bool {
	return lipgloss.HasDarkBackground()
}
