package window

import "github.com/tinyrange/swindow/input"

// Event is a platform message decoded into a neutral shape.
type Event interface {
	isEvent()
}

// Resize reports the new client area size in pixels.
type Resize struct {
	Width, Height int
}

type Key struct {
	Key     input.Key
	Pressed bool
}

type MouseButton struct {
	Button  input.Button
	Pressed bool
}

// MouseMove carries raw client-area pixel coordinates.
type MouseMove struct {
	X, Y int
}

// MouseWheel carries the vertical scroll amount in notches. Positive values
// scroll away from the user.
type MouseWheel struct {
	Delta float32
}

// CloseRequest is sent when the user asks to close the window. The window
// still exists.
type CloseRequest struct{}

// Destroyed is sent once the platform has torn the window down.
type Destroyed struct{}

func (Resize) isEvent()       {}
func (Key) isEvent()          {}
func (MouseButton) isEvent()  {}
func (MouseMove) isEvent()    {}
func (MouseWheel) isEvent()   {}
func (CloseRequest) isEvent() {}
func (Destroyed) isEvent()    {}
