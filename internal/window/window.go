// Package window implements the native side of a window: creating the OS
// window, negotiating an OpenGL context on it, and translating platform
// messages into neutral events.
//
// Each platform provides Open. Everything in this package must be used from
// the goroutine that called Open; Open locks it to its OS thread and Destroy
// releases it.
package window

import (
	"errors"
	"log/slog"
)

var (
	// ErrUnsupportedPlatform is returned by Open on platforms without a backend.
	ErrUnsupportedPlatform = errors.New("no native window backend for this platform")

	// ErrNoPixelFormat means no pixel format satisfied the minimum buffer layout.
	ErrNoPixelFormat = errors.New("no suitable OpenGL pixel format")

	// ErrNoCreateContextAttribs means the extended context creation entry point
	// could not be resolved from the bootstrap context.
	ErrNoCreateContextAttribs = errors.New("extended context creation is unavailable")

	// ErrContextExists is returned when CreateContext is called a second time.
	ErrContextExists = errors.New("window already has an OpenGL context")
)

// Config describes the window to open.
type Config struct {
	Title  string
	Width  int
	Height int

	// Logger receives diagnostics about optional platform features. nil means
	// slog.Default().
	Logger *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ContextConfig selects the OpenGL context created by CreateContext.
type ContextConfig struct {
	Major int
	Minor int

	// Legacy requests a plain fixed-function context and ignores Major/Minor.
	Legacy bool
}

// Handler receives events decoded from the platform queue. HandleEvent is
// only ever called from within Native.Poll or from Open/Destroy on the owning
// thread.
type Handler interface {
	HandleEvent(ev Event)
}

// Native is an open platform window.
type Native interface {
	// CreateContext chooses a pixel format and creates the OpenGL context,
	// leaving it current on the calling thread.
	CreateContext(cfg ContextConfig) error

	// ProcAddress resolves an OpenGL entry point for the current context and
	// returns 0 when it cannot be found. The window system's resolver is asked
	// first, then the GL library's exports.
	//
	// On GLX, Mesa and NVIDIA hand out a dispatch stub for any name starting
	// with "gl", so a non-zero result there does not prove the driver
	// implements the function. Check the version or extension string before
	// calling through such a pointer.
	ProcAddress(name string) uintptr

	// Poll dispatches every queued platform message without blocking.
	Poll()

	// Swap presents the back buffer.
	Swap() error

	SetFullscreen(enabled bool) error

	// Destroy releases the context and the native window.
	Destroy()
}

// Opener matches the signature of Open.
type Opener func(cfg Config, h Handler) (Native, error)

// resolveProc returns the first non-zero address any resolver reports for
// name, or 0.
func resolveProc(name string, resolvers ...func(name string) uintptr) uintptr {
	for _, resolve := range resolvers {
		if p := resolve(name); p != 0 {
			return p
		}
	}
	return 0
}
