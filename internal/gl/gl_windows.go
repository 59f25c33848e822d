//go:build windows

package gl

import (
	"math"
	"syscall"

	"golang.org/x/sys/windows"
)

// openGL calls straight through the resolved addresses. Float arguments are
// passed as their bit patterns; the runtime mirrors the first four arguments
// into the XMM registers.
type openGL struct {
	p procs
}

func bind(p procs) OpenGL {
	return &openGL{p: p}
}

func (gl *openGL) ClearColor(r, g, b, a float32) {
	syscall.SyscallN(gl.p.clearColor, f32(r), f32(g), f32(b), f32(a))
}

func (gl *openGL) Clear(mask uint32) {
	syscall.SyscallN(gl.p.clear, uintptr(mask))
}

func (gl *openGL) Viewport(x, y, width, height int32) {
	syscall.SyscallN(gl.p.viewport, uintptr(x), uintptr(y), uintptr(width), uintptr(height))
}

func (gl *openGL) GetString(name uint32) string {
	ptr, _, _ := syscall.SyscallN(gl.p.getString, uintptr(name))
	return windows.BytePtrToString(bytePtr(ptr))
}

func f32(v float32) uintptr {
	return uintptr(math.Float32bits(v))
}
