// Package windowtest provides an in-memory window backend for tests of code
// built on package window.
package windowtest

import (
	"errors"

	"github.com/tinyrange/swindow/internal/window"
)

// Backend opens fake native windows and counts the live resources it has
// handed out. The zero value is ready to use.
type Backend struct {
	// OpenErr, when set, is returned by Open instead of a window.
	OpenErr error
	// ContextErr, when set, is returned by CreateContext.
	ContextErr error
	// Symbols answers ProcAddress. Missing names resolve to 0.
	Symbols map[string]uintptr

	windows  int
	contexts int
	opened   []*Native
}

// Open satisfies window.Opener.
func (b *Backend) Open(cfg window.Config, h window.Handler) (window.Native, error) {
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	n := &Native{Config: cfg, backend: b, handler: h}
	b.windows++
	b.opened = append(b.opened, n)
	return n, nil
}

// LiveWindows reports windows opened and not yet destroyed.
func (b *Backend) LiveWindows() int { return b.windows }

// LiveContexts reports contexts created and not yet destroyed.
func (b *Backend) LiveContexts() int { return b.contexts }

// Last returns the most recently opened window, or nil.
func (b *Backend) Last() *Native {
	if len(b.opened) == 0 {
		return nil
	}
	return b.opened[len(b.opened)-1]
}

var _ window.Native = (*Native)(nil)

// Native is a fake open window with a simulated message queue.
type Native struct {
	Config window.Config

	// Swaps counts successful Swap calls.
	Swaps int
	// Fullscreen is the last state passed to SetFullscreen.
	Fullscreen bool

	backend   *Backend
	handler   window.Handler
	queue     []window.Event
	ctx       *window.ContextConfig
	destroyed bool
}

// Post queues events for delivery by the next Poll.
func (n *Native) Post(evs ...window.Event) {
	n.queue = append(n.queue, evs...)
}

// Pending reports how many events are queued.
func (n *Native) Pending() int { return len(n.queue) }

// Context returns the configuration of the live context, if any.
func (n *Native) Context() (window.ContextConfig, bool) {
	if n.ctx == nil {
		return window.ContextConfig{}, false
	}
	return *n.ctx, true
}

// Destroyed reports whether Destroy has been called.
func (n *Native) Destroyed() bool { return n.destroyed }

func (n *Native) CreateContext(cfg window.ContextConfig) error {
	if n.ctx != nil {
		return window.ErrContextExists
	}
	if n.backend.ContextErr != nil {
		return n.backend.ContextErr
	}
	n.ctx = &cfg
	n.backend.contexts++
	return nil
}

func (n *Native) ProcAddress(name string) uintptr {
	return n.backend.Symbols[name]
}

// Poll delivers queued events in order, including events posted by the
// handler while Poll runs.
func (n *Native) Poll() {
	for len(n.queue) > 0 {
		ev := n.queue[0]
		n.queue = n.queue[1:]
		if n.handler != nil {
			n.handler.HandleEvent(ev)
		}
	}
}

func (n *Native) Swap() error {
	if n.destroyed {
		return errors.New("swap buffers: window is destroyed")
	}
	n.Swaps++
	return nil
}

func (n *Native) SetFullscreen(enabled bool) error {
	n.Fullscreen = enabled
	return nil
}

func (n *Native) Destroy() {
	if n.destroyed {
		return
	}
	n.destroyed = true
	if n.ctx != nil {
		n.ctx = nil
		n.backend.contexts--
	}
	n.queue = nil
	n.backend.windows--
}
