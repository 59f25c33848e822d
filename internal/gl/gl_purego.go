//go:build !windows

package gl

import "github.com/ebitengine/purego"

type openGL struct {
	clearColor func(float32, float32, float32, float32)
	clear      func(uint32)
	viewport   func(int32, int32, int32, int32)
	getString  func(uint32) *byte
}

func bind(p procs) OpenGL {
	gl := &openGL{}
	purego.RegisterFunc(&gl.clearColor, p.clearColor)
	purego.RegisterFunc(&gl.clear, p.clear)
	purego.RegisterFunc(&gl.viewport, p.viewport)
	purego.RegisterFunc(&gl.getString, p.getString)
	return gl
}

func (gl *openGL) ClearColor(r, g, b, a float32) {
	gl.clearColor(r, g, b, a)
}

func (gl *openGL) Clear(mask uint32) {
	gl.clear(mask)
}

func (gl *openGL) Viewport(x, y, width, height int32) {
	gl.viewport(x, y, width, height)
}

func (gl *openGL) GetString(name uint32) string {
	return gostring(gl.getString(name))
}
