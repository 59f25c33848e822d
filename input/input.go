// Package input defines the platform-neutral keyboard and mouse identifiers
// delivered to window callbacks.
package input

import "fmt"

// Key represents a keyboard key.
type Key uint8

const (
	KeyUnknown Key = iota

	// Letters
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	// Numbers
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	// Special keys
	KeyEscape
	KeyEnter
	KeySpace
	KeyBackspace
	KeyTab

	// Modifier keys. Left and right variants are not distinguished.
	KeyShift
	KeyCtrl
	KeyAlt

	// Arrow keys
	KeyLeft
	KeyRight
	KeyUp
	KeyDown

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	keyCount
)

var keyNames = [keyCount]string{
	KeyUnknown:   "Unknown",
	KeyEscape:    "Escape",
	KeyEnter:     "Enter",
	KeySpace:     "Space",
	KeyBackspace: "Backspace",
	KeyTab:       "Tab",
	KeyShift:     "Shift",
	KeyCtrl:      "Ctrl",
	KeyAlt:       "Alt",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyUp:        "Up",
	KeyDown:      "Down",
}

func init() {
	for k := KeyA; k <= KeyZ; k++ {
		keyNames[k] = string(rune('A' + (k - KeyA)))
	}
	for k := Key0; k <= Key9; k++ {
		keyNames[k] = string(rune('0' + (k - Key0)))
	}
	for k := KeyF1; k <= KeyF12; k++ {
		keyNames[k] = fmt.Sprintf("F%d", k-KeyF1+1)
	}
}

// Valid reports whether k is one of the declared keys.
func (k Key) Valid() bool {
	return k < keyCount
}

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", uint8(k))
	}
	return keyNames[k]
}

// Button represents a mouse button.
type Button uint8

const (
	ButtonUnknown Button = iota
	ButtonLeft
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonUnknown:
		return "Unknown"
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	default:
		return fmt.Sprintf("Button(%d)", uint8(b))
	}
}
