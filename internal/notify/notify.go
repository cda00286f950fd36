// Package notify carries user-facing events from the core to whatever
// presentation layer is attached.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the severity of an event.
type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Warning Kind = "warning"
	Error   Kind = "error"
)

// Event is one classified, user-facing message.
type Event struct {
	ID       uuid.UUID `json:"id"`
	Kind     Kind      `json:"kind"`
	Key      string    `json:"key"`
	Headline string    `json:"headline"`
	Detail   string    `json:"detail,omitempty"`
	// Modal asks the presenter for a blocking dialog instead of a toast.
	Modal bool `json:"modal,omitempty"`
	// Focus names the input the presenter should highlight.
	Focus     string    `json:"focus,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier receives events. Implementations must not block for long.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event)

func (f NotifierFunc) Notify(ctx context.Context, ev Event) { f(ctx, ev) }

// Discard drops every event.
var Discard Notifier = NotifierFunc(func(context.Context, Event) {})

// Log writes events to a slog logger.
func Log(logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return NotifierFunc(func(ctx context.Context, ev Event) {
		level := slog.LevelInfo
		switch ev.Kind {
		case Warning:
			level = slog.LevelWarn
		case Error:
			level = slog.LevelError
		}
		logger.Log(ctx, level, ev.Headline, "key", ev.Key, "detail", ev.Detail, "event_id", ev.ID)
	})
}

// Fanout delivers each event to every notifier in order.
func Fanout(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, ev Event) {
		for _, n := range notifiers {
			if n != nil {
				n.Notify(ctx, ev)
			}
		}
	})
}

// Recorder keeps every event it receives. Used by tests and by the serve
// host's state endpoint.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Keys returns the message keys of the recorded events in order.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.events))
	for i, ev := range r.events {
		keys[i] = ev.Key
	}
	return keys
}

// Reset forgets all events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
