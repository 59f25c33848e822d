// Package gl binds the handful of OpenGL entry points used to clear and
// inspect a window's framebuffer. Entry points are resolved through the
// window's context, so Load must run after a context has been made current.
package gl

import (
	"fmt"
	"strings"
	"unsafe"
)

const (
	// ColorBufferBit is a mask used with Clear to clear the color buffer.
	ColorBufferBit = 0x00004000
	// DepthBufferBit is a mask used with Clear to clear the depth buffer.
	DepthBufferBit = 0x00000100

	// GetString parameters.
	//
	// Vendor returns the company responsible for the GL implementation.
	Vendor = 0x1F00
	// Renderer names the renderer, usually the GPU.
	Renderer = 0x1F01
	// Version returns the GL version string of the current context.
	Version = 0x1F02
)

// OpenGL describes the subset of OpenGL entry points used by this package.
//
// All methods operate on the GL context current on the calling thread.
type OpenGL interface {
	// ClearColor sets the clear color used by Clear when clearing the color buffer.
	ClearColor(r, g, b, a float32)

	// Clear clears buffers to preset values (e.g., ColorBufferBit).
	Clear(mask uint32)

	// Viewport sets the affine transformation of x and y from normalized device
	// coordinates to window coordinates.
	Viewport(x, y, width, height int32)

	// GetString returns a string describing a GL property for the current context.
	//
	// Common names are Vendor and Version. An unrecognized name yields "".
	GetString(name uint32) string
}

// procs holds resolved entry point addresses.
type procs struct {
	clearColor uintptr
	clear      uintptr
	viewport   uintptr
	getString  uintptr
}

// Load resolves the entry points with resolve, which returns 0 for unknown
// names (a window's ProcAddress method fits).
func Load(resolve func(name string) uintptr) (OpenGL, error) {
	p, err := resolveProcs(resolve)
	if err != nil {
		return nil, err
	}
	return bind(p), nil
}

func resolveProcs(resolve func(name string) uintptr) (procs, error) {
	var p procs
	entries := []struct {
		name string
		dst  *uintptr
	}{
		{"glClearColor", &p.clearColor},
		{"glClear", &p.clear},
		{"glViewport", &p.viewport},
		{"glGetString", &p.getString},
	}

	var missing []string
	for _, e := range entries {
		*e.dst = resolve(e.name)
		if *e.dst == 0 {
			missing = append(missing, e.name)
		}
	}
	if len(missing) > 0 {
		return procs{}, fmt.Errorf("unresolved OpenGL entry points: %s", strings.Join(missing, ", "))
	}
	return p, nil
}

func gostring(ptr *byte) string {
	if ptr == nil {
		return ""
	}
	var bytes []byte
	for p := ptr; *p != 0; p = (*byte)(unsafe.Add(unsafe.Pointer(p), 1)) {
		bytes = append(bytes, *p)
	}
	return string(bytes)
}

// bytePtr reinterprets a C-owned string address returned through a raw
// call. Reading through a **byte avoids a uintptr to unsafe.Pointer
// conversion.
func bytePtr(p uintptr) *byte {
	return *(**byte)(unsafe.Pointer(&p))
}
