// Package swindow opens a native window, creates an OpenGL context on it and
// forwards its input, resize and close events to user callbacks.
//
// A Window is single-threaded. New locks the calling goroutine to its OS
// thread; PollEvents, SwapBuffers and Destroy must be called from that same
// goroutine, and callbacks only ever run inside PollEvents.
package swindow

import (
	"fmt"
	"log/slog"

	"github.com/tinyrange/swindow/input"
	"github.com/tinyrange/swindow/internal/window"
)

var (
	ErrUnsupportedPlatform    = window.ErrUnsupportedPlatform
	ErrNoPixelFormat          = window.ErrNoPixelFormat
	ErrNoCreateContextAttribs = window.ErrNoCreateContextAttribs
	ErrContextExists          = window.ErrContextExists
)

// openNative is replaced in tests.
var openNative window.Opener = window.Open

// Default context version used by CreateDefaultContext.
const (
	DefaultMajor = 4
	DefaultMinor = 6
)

// Descriptor is the logical description of a window.
type Descriptor struct {
	Title  string
	Width  int
	Height int
}

type (
	ResizeFunc      func(width, height int)
	CloseFunc       func() bool
	KeyFunc         func(key input.Key, pressed bool)
	MouseButtonFunc func(button input.Button, pressed bool)
	MouseMoveFunc   func(x, y int)
	MouseWheelFunc  func(delta float32)
)

// Callbacks holds one optional handler per event kind. A nil entry ignores
// the event.
type Callbacks struct {
	Resize ResizeFunc

	// Close is asked whether a close request from the window system should
	// stop the window. Returning false keeps it running. Without a Close
	// callback every close request is honoured.
	Close CloseFunc

	Key         KeyFunc
	MouseButton MouseButtonFunc
	MouseMove   MouseMoveFunc

	// MouseWheel receives the vertical scroll in notches.
	MouseWheel MouseWheelFunc
}

// Window is an open native window.
type Window struct {
	native     window.Native
	desc       Descriptor
	callbacks  Callbacks
	running    bool
	fullscreen bool
	log        *slog.Logger
}

// New opens a visible window whose client area is width by height pixels.
// The window has no OpenGL context until CreateContext is called.
func New(title string, width, height int, opts ...Option) (*Window, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	w := &Window{
		desc:    Descriptor{Title: title, Width: width, Height: height},
		running: true,
		log:     o.logger,
	}

	native, err := openNative(window.Config{
		Title:  title,
		Width:  width,
		Height: height,
		Logger: o.logger,
	}, (*handler)(w))
	if err != nil {
		w.log.Error("create window", "title", title, "err", err)
		return nil, fmt.Errorf("create window %q: %w", title, err)
	}
	w.native = native

	w.log.Debug("window created", "title", title, "width", width, "height", height)
	return w, nil
}

// Destroy releases the context and the native window. The Window must not be
// used afterwards.
func (w *Window) Destroy() {
	if w.native == nil {
		return
	}
	w.native.Destroy()
	w.native = nil
	w.running = false
	w.log.Debug("window destroyed", "title", w.desc.Title)
}

// PollEvents dispatches every pending platform event without blocking.
func (w *Window) PollEvents() {
	w.native.Poll()
}

func (w *Window) SwapBuffers() error {
	return w.native.Swap()
}

// CreateContext creates an OpenGL context and makes it current. With legacy
// set a plain compatibility context is created and major/minor are ignored;
// otherwise a forward-compatible core profile context of exactly that
// version is requested.
func (w *Window) CreateContext(major, minor int, legacy bool) error {
	err := w.native.CreateContext(window.ContextConfig{Major: major, Minor: minor, Legacy: legacy})
	if err != nil {
		w.log.Error("create OpenGL context", "major", major, "minor", minor, "legacy", legacy, "err", err)
		return fmt.Errorf("create OpenGL context: %w", err)
	}
	w.log.Info("context created", "major", major, "minor", minor, "legacy", legacy)
	return nil
}

// CreateDefaultContext requests an OpenGL 4.6 core profile context.
func (w *Window) CreateDefaultContext() error {
	return w.CreateContext(DefaultMajor, DefaultMinor, false)
}

// ProcAddress returns the address of an OpenGL function, or 0 if it cannot
// be resolved.
func (w *Window) ProcAddress(name string) uintptr {
	return w.native.ProcAddress(name)
}

func (w *Window) IsRunning() bool { return w.running }

func (w *Window) SetRunning(running bool) { w.running = running }

// Descriptor returns a copy of the window's descriptor.
func (w *Window) Descriptor() Descriptor { return w.desc }

// SetSize records a new logical size in the descriptor. It does not resize
// the native window.
func (w *Window) SetSize(width, height int) {
	w.desc.Width = width
	w.desc.Height = height
}

// SetFullscreen switches between a borderless window covering the monitor
// and the previous windowed placement.
func (w *Window) SetFullscreen(enabled bool) error {
	if enabled == w.fullscreen {
		return nil
	}
	if err := w.native.SetFullscreen(enabled); err != nil {
		return err
	}
	w.fullscreen = enabled
	return nil
}

func (w *Window) Fullscreen() bool { return w.fullscreen }

// SetCallbacks replaces every callback at once.
func (w *Window) SetCallbacks(cb Callbacks) { w.callbacks = cb }

// Callbacks returns the registered callbacks.
func (w *Window) Callbacks() Callbacks { return w.callbacks }

func (w *Window) SetResizeCallback(fn ResizeFunc)           { w.callbacks.Resize = fn }
func (w *Window) SetCloseCallback(fn CloseFunc)             { w.callbacks.Close = fn }
func (w *Window) SetKeyCallback(fn KeyFunc)                 { w.callbacks.Key = fn }
func (w *Window) SetMouseButtonCallback(fn MouseButtonFunc) { w.callbacks.MouseButton = fn }
func (w *Window) SetMouseMoveCallback(fn MouseMoveFunc)     { w.callbacks.MouseMove = fn }
func (w *Window) SetMouseWheelCallback(fn MouseWheelFunc)   { w.callbacks.MouseWheel = fn }

// handler receives events from the native layer without exposing
// HandleEvent on Window.
type handler Window

func (h *handler) HandleEvent(ev window.Event) {
	w := (*Window)(h)
	cb := &w.callbacks

	switch ev := ev.(type) {
	case window.Resize:
		w.desc.Width, w.desc.Height = ev.Width, ev.Height
		if cb.Resize != nil {
			cb.Resize(ev.Width, ev.Height)
		}
	case window.Key:
		if cb.Key != nil {
			cb.Key(ev.Key, ev.Pressed)
		}
	case window.MouseButton:
		if cb.MouseButton != nil {
			cb.MouseButton(ev.Button, ev.Pressed)
		}
	case window.MouseMove:
		if cb.MouseMove != nil {
			cb.MouseMove(ev.X, ev.Y)
		}
	case window.MouseWheel:
		if cb.MouseWheel != nil {
			cb.MouseWheel(ev.Delta)
		}
	case window.CloseRequest:
		if cb.Close == nil || cb.Close() {
			w.running = false
		}
	case window.Destroyed:
		w.running = false
	}
}
