package window

import (
	"unsafe"

	"github.com/tinyrange/swindow/input"
)

// Xlib event types.
const (
	xKeyPress        = 2
	xKeyRelease      = 3
	xButtonPress     = 4
	xButtonRelease   = 5
	xMotionNotify    = 6
	xDestroyNotify   = 17
	xConfigureNotify = 22
	xClientMessage   = 33
)

// Core pointer buttons. 4 and 5 are the vertical wheel.
const (
	xButton1 = 1
	xButton3 = 3
	xButton4 = 4
	xButton5 = 5
)

// xEvent mirrors the XEvent union: 24 longs, 192 bytes on LP64.
type xEvent [24]uint64

// The layouts below mirror the LP64 Xlib structs that share the XEvent
// storage; field order and widths must not change.

type xAnyEvent struct {
	Type      int32
	Serial    uint64
	SendEvent int32
	Display   uintptr
	Window    uintptr
}

// xInputEvent covers XKeyEvent, XButtonEvent and XMotionEvent, which only
// differ in how they use Detail.
type xInputEvent struct {
	Type       int32
	Serial     uint64
	SendEvent  int32
	Display    uintptr
	Window     uintptr
	Root       uintptr
	Subwindow  uintptr
	Time       uint64
	X          int32
	Y          int32
	XRoot      int32
	YRoot      int32
	State      uint32
	Detail     uint32 // keycode, button or is_hint
	SameScreen int32
}

type xConfigureEvent struct {
	Type             int32
	Serial           uint64
	SendEvent        int32
	Display          uintptr
	Event            uintptr
	Window           uintptr
	X                int32
	Y                int32
	Width            int32
	Height           int32
	BorderWidth      int32
	Above            uintptr
	OverrideRedirect int32
}

type xClientMessageEvent struct {
	Type        int32
	Serial      uint64
	SendEvent   int32
	Display     uintptr
	Window      uintptr
	MessageType uintptr
	Format      int32
	Data        [5]uint64
}

func (e *xEvent) kind() int32 {
	return (*xAnyEvent)(unsafe.Pointer(e)).Type
}

// window returns the window the event was reported on.
func (e *xEvent) window() uintptr {
	return (*xAnyEvent)(unsafe.Pointer(e)).Window
}

// X keysyms (X11/keysymdef.h).
const (
	xkSpace     = 0x0020
	xk0         = 0x0030
	xkUpperA    = 0x0041
	xkLowerA    = 0x0061
	xkBackSpace = 0xFF08
	xkTab       = 0xFF09
	xkReturn    = 0xFF0D
	xkEscape    = 0xFF1B
	xkLeft      = 0xFF51
	xkUp        = 0xFF52
	xkRight     = 0xFF53
	xkDown      = 0xFF54
	xkKPEnter   = 0xFF8D
	xkF1        = 0xFFBE
	xkShiftL    = 0xFFE1
	xkShiftR    = 0xFFE2
	xkControlL  = 0xFFE3
	xkControlR  = 0xFFE4
	xkAltL      = 0xFFE9
	xkAltR      = 0xFFEA
)

var keysymKeys = func() map[uint64]input.Key {
	m := map[uint64]input.Key{
		xkEscape:    input.KeyEscape,
		xkReturn:    input.KeyEnter,
		xkKPEnter:   input.KeyEnter,
		xkSpace:     input.KeySpace,
		xkBackSpace: input.KeyBackspace,
		xkTab:       input.KeyTab,
		xkShiftL:    input.KeyShift,
		xkShiftR:    input.KeyShift,
		xkControlL:  input.KeyCtrl,
		xkControlR:  input.KeyCtrl,
		xkAltL:      input.KeyAlt,
		xkAltR:      input.KeyAlt,
		xkLeft:      input.KeyLeft,
		xkRight:     input.KeyRight,
		xkUp:        input.KeyUp,
		xkDown:      input.KeyDown,
	}
	for i := uint64(0); i < 26; i++ {
		m[xkUpperA+i] = input.KeyA + input.Key(i)
		m[xkLowerA+i] = input.KeyA + input.Key(i)
	}
	for i := uint64(0); i < 10; i++ {
		m[xk0+i] = input.Key0 + input.Key(i)
	}
	for i := uint64(0); i < 12; i++ {
		m[xkF1+i] = input.KeyF1 + input.Key(i)
	}
	return m
}()

func keysymToKey(sym uint64) input.Key {
	if k, ok := keysymKeys[sym]; ok {
		return k
	}
	return input.KeyUnknown
}

// translateX11 decodes an Xlib event. keysym maps a hardware keycode to the
// unshifted keysym; wmDelete is the WM_DELETE_WINDOW atom.
func translateX11(ev *xEvent, keysym func(keycode uint32) uint64, wmDelete uintptr) (Event, bool) {
	switch ev.kind() {
	case xConfigureNotify:
		ce := (*xConfigureEvent)(unsafe.Pointer(ev))
		return Resize{Width: int(ce.Width), Height: int(ce.Height)}, true
	case xKeyPress, xKeyRelease:
		ke := (*xInputEvent)(unsafe.Pointer(ev))
		return Key{Key: keysymToKey(keysym(ke.Detail)), Pressed: ke.Type == xKeyPress}, true
	case xButtonPress, xButtonRelease:
		be := (*xInputEvent)(unsafe.Pointer(ev))
		pressed := be.Type == xButtonPress
		switch be.Detail {
		case xButton1:
			return MouseButton{Button: input.ButtonLeft, Pressed: pressed}, true
		case xButton3:
			return MouseButton{Button: input.ButtonRight, Pressed: pressed}, true
		case xButton4:
			if pressed {
				return MouseWheel{Delta: 1}, true
			}
		case xButton5:
			if pressed {
				return MouseWheel{Delta: -1}, true
			}
		}
		return nil, false
	case xMotionNotify:
		me := (*xInputEvent)(unsafe.Pointer(ev))
		return MouseMove{X: int(me.X), Y: int(me.Y)}, true
	case xClientMessage:
		cm := (*xClientMessageEvent)(unsafe.Pointer(ev))
		if cm.Format == 32 && uintptr(cm.Data[0]) == wmDelete {
			return CloseRequest{}, true
		}
		return nil, false
	case xDestroyNotify:
		return Destroyed{}, true
	}
	return nil, false
}

// lastSize filters ConfigureNotify, which also reports moves and
// restacking, down to actual size changes.
type lastSize struct {
	width, height int
}

// changed records r and reports whether it differs from the previous size.
func (s *lastSize) changed(r Resize) bool {
	if r.Width == s.width && r.Height == s.height {
		return false
	}
	s.width, s.height = r.Width, r.Height
	return true
}
