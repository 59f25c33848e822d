package window

import "github.com/tinyrange/swindow/input"

// Win32 message identifiers. They live outside window_windows.go so the
// decoding rules can be exercised on every platform.
const (
	wmDestroy     = 0x0002
	wmSize        = 0x0005
	wmClose       = 0x0010
	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMouseWheel  = 0x020A

	wheelDelta = 120
)

// Virtual key codes that are not plain ASCII.
const (
	vkBack    = 0x08
	vkTab     = 0x09
	vkReturn  = 0x0D
	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12 // Alt key
	vkEscape  = 0x1B
	vkSpace   = 0x20
	vkLeft    = 0x25
	vkUp      = 0x26
	vkRight   = 0x27
	vkDown    = 0x28
	vkF1      = 0x70
	vkLShift  = 0xA0
	vkRShift  = 0xA1
	vkLCtrl   = 0xA2
	vkRCtrl   = 0xA3
	vkLMenu   = 0xA4
	vkRMenu   = 0xA5
)

var vkKeys = func() map[uint32]input.Key {
	m := map[uint32]input.Key{
		vkEscape:  input.KeyEscape,
		vkReturn:  input.KeyEnter,
		vkSpace:   input.KeySpace,
		vkBack:    input.KeyBackspace,
		vkTab:     input.KeyTab,
		vkShift:   input.KeyShift,
		vkLShift:  input.KeyShift,
		vkRShift:  input.KeyShift,
		vkControl: input.KeyCtrl,
		vkLCtrl:   input.KeyCtrl,
		vkRCtrl:   input.KeyCtrl,
		vkMenu:    input.KeyAlt,
		vkLMenu:   input.KeyAlt,
		vkRMenu:   input.KeyAlt,
		vkLeft:    input.KeyLeft,
		vkRight:   input.KeyRight,
		vkUp:      input.KeyUp,
		vkDown:    input.KeyDown,
	}
	// VK_A..VK_Z and VK_0..VK_9 equal their ASCII codes.
	for i := uint32(0); i < 26; i++ {
		m['A'+i] = input.KeyA + input.Key(i)
	}
	for i := uint32(0); i < 10; i++ {
		m['0'+i] = input.Key0 + input.Key(i)
	}
	for i := uint32(0); i < 12; i++ {
		m[vkF1+i] = input.KeyF1 + input.Key(i)
	}
	return m
}()

func vkToKey(vk uint32) input.Key {
	if k, ok := vkKeys[vk]; ok {
		return k
	}
	return input.KeyUnknown
}

func loword(v uintptr) uint16 { return uint16(v & 0xFFFF) }
func hiword(v uintptr) uint16 { return uint16((v >> 16) & 0xFFFF) }

// translateWin32 decodes a window message. It reports false for messages
// that carry no event.
func translateWin32(msg uint32, wParam, lParam uintptr) (Event, bool) {
	switch msg {
	case wmSize:
		return Resize{Width: int(loword(lParam)), Height: int(hiword(lParam))}, true
	case wmKeyDown, wmSysKeyDown:
		return Key{Key: vkToKey(uint32(wParam)), Pressed: true}, true
	case wmKeyUp, wmSysKeyUp:
		return Key{Key: vkToKey(uint32(wParam)), Pressed: false}, true
	case wmLButtonDown, wmLButtonUp:
		return MouseButton{Button: input.ButtonLeft, Pressed: msg == wmLButtonDown}, true
	case wmRButtonDown, wmRButtonUp:
		return MouseButton{Button: input.ButtonRight, Pressed: msg == wmRButtonDown}, true
	case wmMouseMove:
		// GET_X_LPARAM / GET_Y_LPARAM: coordinates are signed while the mouse
		// is captured outside the client area.
		return MouseMove{X: int(int16(loword(lParam))), Y: int(int16(hiword(lParam)))}, true
	case wmMouseWheel:
		return MouseWheel{Delta: float32(int16(hiword(wParam))) / wheelDelta}, true
	case wmClose:
		return CloseRequest{}, true
	case wmDestroy:
		return Destroyed{}, true
	}
	return nil, false
}
