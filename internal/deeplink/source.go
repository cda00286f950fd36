package deeplink

import (
	"context"
	"sync"
)

// Source is a deep-link transport. Initial returns the launch URI once;
// later URIs arrive through Subscribe.
type Source interface {
	Initial(ctx context.Context) (string, bool)
	Subscribe(fn func(uri string)) (unsubscribe func())
}

// ChannelSource is an in-process transport. Deliver pushes a URI to every
// subscriber.
type ChannelSource struct {
	mu      sync.Mutex
	initial string
	taken   bool
	subs    map[int]func(string)
	next    int
}

// NewChannelSource creates a source whose launch URI is initial ("" for none).
func NewChannelSource(initial string) *ChannelSource {
	return &ChannelSource{initial: initial, subs: make(map[int]func(string))}
}

// Initial returns the launch URI the first time it is called.
func (s *ChannelSource) Initial(context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken || s.initial == "" {
		return "", false
	}
	s.taken = true
	return s.initial, true
}

func (s *ChannelSource) Subscribe(fn func(uri string)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Deliver hands uri to the current subscribers and reports how many got it.
func (s *ChannelSource) Deliver(uri string) int {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.subs))
	for i := 0; i < s.next; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(uri)
	}
	return len(fns)
}

// Subscribers returns the number of active subscriptions.
func (s *ChannelSource) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
