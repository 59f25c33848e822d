package window

import (
	"testing"
	"unsafe"

	"github.com/tinyrange/swindow/input"
)

func encodeX11[T any](v T) *xEvent {
	var ev xEvent
	*(*T)(unsafe.Pointer(&ev)) = v
	return &ev
}

// identityKeysym treats the keycode as the keysym.
func identityKeysym(code uint32) uint64 { return uint64(code) }

const testWMDelete = 0x1234

func TestTranslateX11(t *testing.T) {
	tests := []struct {
		name string
		ev   *xEvent
		want Event
	}{
		{
			"configure",
			encodeX11(xConfigureEvent{Type: xConfigureNotify, Window: 7, Width: 800, Height: 600}),
			Resize{Width: 800, Height: 600},
		},
		{
			"key press lowercase",
			encodeX11(xInputEvent{Type: xKeyPress, Detail: 'q'}),
			Key{Key: input.KeyQ, Pressed: true},
		},
		{
			"key release uppercase",
			encodeX11(xInputEvent{Type: xKeyRelease, Detail: 'Q'}),
			Key{Key: input.KeyQ, Pressed: false},
		},
		{
			"escape",
			encodeX11(xInputEvent{Type: xKeyPress, Detail: xkEscape}),
			Key{Key: input.KeyEscape, Pressed: true},
		},
		{
			"f12",
			encodeX11(xInputEvent{Type: xKeyPress, Detail: xkF1 + 11}),
			Key{Key: input.KeyF12, Pressed: true},
		},
		{
			"unmapped key",
			encodeX11(xInputEvent{Type: xKeyPress, Detail: 0xFE50}),
			Key{Key: input.KeyUnknown, Pressed: true},
		},
		{
			"left press",
			encodeX11(xInputEvent{Type: xButtonPress, Detail: xButton1}),
			MouseButton{Button: input.ButtonLeft, Pressed: true},
		},
		{
			"right release",
			encodeX11(xInputEvent{Type: xButtonRelease, Detail: xButton3}),
			MouseButton{Button: input.ButtonRight, Pressed: false},
		},
		{
			"wheel up",
			encodeX11(xInputEvent{Type: xButtonPress, Detail: xButton4}),
			MouseWheel{Delta: 1},
		},
		{
			"wheel down",
			encodeX11(xInputEvent{Type: xButtonPress, Detail: xButton5}),
			MouseWheel{Delta: -1},
		},
		{
			"motion",
			encodeX11(xInputEvent{Type: xMotionNotify, X: 40, Y: 25}),
			MouseMove{X: 40, Y: 25},
		},
		{
			"delete window",
			encodeX11(xClientMessageEvent{Type: xClientMessage, Format: 32, Data: [5]uint64{testWMDelete}}),
			CloseRequest{},
		},
		{
			"destroy",
			encodeX11(xAnyEvent{Type: xDestroyNotify}),
			Destroyed{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translateX11(tt.ev, identityKeysym, testWMDelete)
			if !ok {
				t.Fatalf("event type %d not translated", tt.ev.kind())
			}
			if got != tt.want {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTranslateX11Ignored(t *testing.T) {
	tests := map[string]*xEvent{
		"wheel release":  encodeX11(xInputEvent{Type: xButtonRelease, Detail: xButton4}),
		"middle button":  encodeX11(xInputEvent{Type: xButtonPress, Detail: 2}),
		"other protocol": encodeX11(xClientMessageEvent{Type: xClientMessage, Format: 32, Data: [5]uint64{99}}),
		"wrong format":   encodeX11(xClientMessageEvent{Type: xClientMessage, Format: 8, Data: [5]uint64{testWMDelete}}),
		"expose":         encodeX11(xAnyEvent{Type: 12}),
		"zeroed":         new(xEvent),
	}
	for name, ev := range tests {
		if got, ok := translateX11(ev, identityKeysym, testWMDelete); ok {
			t.Errorf("%s: translated to %#v", name, got)
		}
	}
}

func TestXEventWindow(t *testing.T) {
	ev := encodeX11(xInputEvent{Type: xMotionNotify, Window: 0xABCDEF})
	if got := ev.window(); got != 0xABCDEF {
		t.Fatalf("window() = %#x, want 0xabcdef", got)
	}
}

func TestXEventLayout(t *testing.T) {
	if got := unsafe.Sizeof(xEvent{}); got != 192 {
		t.Fatalf("XEvent size = %d, want 192", got)
	}
	if got := unsafe.Offsetof(xInputEvent{}.Detail); got != 84 {
		t.Fatalf("keycode offset = %d, want 84", got)
	}
	if got := unsafe.Offsetof(xConfigureEvent{}.Width); got != 56 {
		t.Fatalf("configure width offset = %d, want 56", got)
	}
	if got := unsafe.Offsetof(xClientMessageEvent{}.Data); got != 56 {
		t.Fatalf("client message data offset = %d, want 56", got)
	}
}

func TestKeysymTableCoversKeyEnumeration(t *testing.T) {
	seen := make(map[input.Key]bool)
	for _, k := range keysymKeys {
		seen[k] = true
	}
	for k := input.KeyA; k <= input.KeyF12; k++ {
		if !seen[k] {
			t.Errorf("no keysym maps to %v", k)
		}
	}
}

func TestLastSizeChanged(t *testing.T) {
	size := lastSize{width: 640, height: 480}
	steps := []struct {
		in   Resize
		want bool
	}{
		{Resize{Width: 640, Height: 480}, false},
		{Resize{Width: 800, Height: 480}, true},
		{Resize{Width: 800, Height: 480}, false},
		{Resize{Width: 800, Height: 600}, true},
		{Resize{Width: 640, Height: 480}, true},
	}
	for i, s := range steps {
		if got := size.changed(s.in); got != s.want {
			t.Fatalf("step %d: changed(%v) = %v, want %v", i, s.in, got, s.want)
		}
	}
	if size != (lastSize{width: 640, height: 480}) {
		t.Fatalf("final size = %+v", size)
	}
}
