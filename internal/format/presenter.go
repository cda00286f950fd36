package format

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/dev-catena/lacos-sub000/internal/notify"
)

// Presenter renders notification events on a terminal. Modal events are
// framed so they stand out from toasts.
type Presenter struct {
	mu        sync.Mutex
	out       io.Writer
	useColors bool
}

// NewPresenter creates a console presenter writing to w.
func NewPresenter(w io.Writer, useColors bool) *Presenter {
	return &Presenter{out: w, useColors: useColors}
}

// Notify implements notify.Notifier.
func (p *Presenter) Notify(_ context.Context, ev notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := color.New(kindColor(ev.Kind))
	if p.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}

	if ev.Modal {
		fmt.Fprintln(p.out, "----------------------------------------")
	}
	c.Fprintf(p.out, "%s %s\n", kindLabel(ev.Kind), ev.Headline)
	if ev.Detail != "" {
		fmt.Fprintf(p.out, "  %s\n", ev.Detail)
	}
	if ev.Focus != "" {
		fmt.Fprintf(p.out, "  (campo: %s)\n", ev.Focus)
	}
	if ev.Modal {
		fmt.Fprintln(p.out, "----------------------------------------")
	}
}

func kindColor(k notify.Kind) color.Attribute {
	switch k {
	case notify.Success:
		return color.FgGreen
	case notify.Warning:
		return color.FgYellow
	case notify.Error:
		return color.FgRed
	default:
		return color.FgBlue
	}
}

func kindLabel(k notify.Kind) string {
	switch k {
	case notify.Success:
		return "[ok]"
	case notify.Warning:
		return "[!]"
	case notify.Error:
		return "[x]"
	default:
		return "[i]"
	}
}
