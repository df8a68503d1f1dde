package display

import (
	"sync"
)

// Document identifies the document currently shown by the display surface.
type Document struct {
	ID    string
	Title string
	Type  string
}

// Signal is the explicit channel between the display surface and the core:
// the surface publishes a "document shown" event whenever the visible
// document changes, and interested services subscribe. The core never reads
// display state directly.
type Signal struct {
	mu   sync.Mutex
	subs []func(Document)
}

// NewSignal creates an empty signal.
func NewSignal() *Signal {
	return &Signal{}
}

// Subscribe registers a callback invoked on every publish. Callbacks run
// synchronously on the publisher's goroutine, in registration order.
func (s *Signal) Subscribe(fn func(Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Publish notifies every subscriber that doc is now displayed.
func (s *Signal) Publish(doc Document) {
	s.mu.Lock()
	subs := make([]func(Document), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(doc)
	}
}
