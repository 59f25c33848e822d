package window

import (
	"testing"

	"github.com/tinyrange/swindow/input"
)

func makeLParam(lo, hi uint16) uintptr {
	return uintptr(lo) | uintptr(hi)<<16
}

func TestTranslateWin32(t *testing.T) {
	tests := []struct {
		name   string
		msg    uint32
		wParam uintptr
		lParam uintptr
		want   Event
	}{
		{"size", wmSize, 0, makeLParam(800, 600), Resize{Width: 800, Height: 600}},
		{"key down", wmKeyDown, 'A', 0, Key{Key: input.KeyA, Pressed: true}},
		{"key up", wmKeyUp, 'Z', 0, Key{Key: input.KeyZ, Pressed: false}},
		{"sys key down", wmSysKeyDown, vkMenu, 0, Key{Key: input.KeyAlt, Pressed: true}},
		{"sys key up", wmSysKeyUp, vkF1 + 3, 0, Key{Key: input.KeyF4, Pressed: false}},
		{"digit", wmKeyDown, '7', 0, Key{Key: input.Key7, Pressed: true}},
		{"unmapped key", wmKeyDown, 0xE9, 0, Key{Key: input.KeyUnknown, Pressed: true}},
		{"left down", wmLButtonDown, 0, 0, MouseButton{Button: input.ButtonLeft, Pressed: true}},
		{"left up", wmLButtonUp, 0, 0, MouseButton{Button: input.ButtonLeft, Pressed: false}},
		{"right down", wmRButtonDown, 0, 0, MouseButton{Button: input.ButtonRight, Pressed: true}},
		{"right up", wmRButtonUp, 0, 0, MouseButton{Button: input.ButtonRight, Pressed: false}},
		{"move", wmMouseMove, 0, makeLParam(12, 34), MouseMove{X: 12, Y: 34}},
		{"move negative", wmMouseMove, 0, makeLParam(0xFFFE, 5), MouseMove{X: -2, Y: 5}},
		{"wheel up", wmMouseWheel, makeLParam(0, 120), 0, MouseWheel{Delta: 1}},
		{"wheel down", wmMouseWheel, makeLParam(0, uint16(0x10000-240)), 0, MouseWheel{Delta: -2}},
		{"close", wmClose, 0, 0, CloseRequest{}},
		{"destroy", wmDestroy, 0, 0, Destroyed{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translateWin32(tt.msg, tt.wParam, tt.lParam)
			if !ok {
				t.Fatalf("message %#x not translated", tt.msg)
			}
			if got != tt.want {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTranslateWin32IgnoresOtherMessages(t *testing.T) {
	for _, msg := range []uint32{0x000F /* WM_PAINT */, wmQuit, 0x0102 /* WM_CHAR */} {
		if ev, ok := translateWin32(msg, 0, 0); ok {
			t.Errorf("message %#x translated to %#v", msg, ev)
		}
	}
}

func TestVKTableCoversKeyEnumeration(t *testing.T) {
	seen := make(map[input.Key]bool)
	for _, k := range vkKeys {
		seen[k] = true
	}
	for k := input.KeyA; k <= input.KeyF12; k++ {
		if !seen[k] {
			t.Errorf("no virtual key maps to %v", k)
		}
	}
}

func TestVKToKeyUnknown(t *testing.T) {
	for _, vk := range []uint32{0, 0x07, 0xFF, 0xFFFFFFFF} {
		if got := vkToKey(vk); got != input.KeyUnknown {
			t.Errorf("vkToKey(%#x) = %v, want Unknown", vk, got)
		}
	}
}
