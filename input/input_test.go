package input

import "testing"

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyUnknown, "Unknown"},
		{KeyA, "A"},
		{KeyZ, "Z"},
		{Key0, "0"},
		{Key9, "9"},
		{KeyEscape, "Escape"},
		{KeyCtrl, "Ctrl"},
		{KeyDown, "Down"},
		{KeyF1, "F1"},
		{KeyF12, "F12"},
		{Key(200), "Key(200)"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key(%d).String() = %q, want %q", uint8(tt.key), got, tt.want)
		}
	}
}

func TestKeyNamesComplete(t *testing.T) {
	for k := KeyUnknown; k < keyCount; k++ {
		if keyNames[k] == "" {
			t.Errorf("key %d has no name", uint8(k))
		}
	}
}

func TestKeyRangesContiguous(t *testing.T) {
	if KeyZ-KeyA != 25 {
		t.Fatalf("letters not contiguous: KeyZ-KeyA = %d", KeyZ-KeyA)
	}
	if Key9-Key0 != 9 {
		t.Fatalf("digits not contiguous: Key9-Key0 = %d", Key9-Key0)
	}
	if KeyF12-KeyF1 != 11 {
		t.Fatalf("function keys not contiguous: KeyF12-KeyF1 = %d", KeyF12-KeyF1)
	}
}

func TestButtonString(t *testing.T) {
	tests := map[Button]string{
		ButtonUnknown: "Unknown",
		ButtonLeft:    "Left",
		ButtonRight:   "Right",
		Button(9):     "Button(9)",
	}
	for b, want := range tests {
		if got := b.String(); got != want {
			t.Errorf("Button(%d).String() = %q, want %q", uint8(b), got, want)
		}
	}
}
