package samplebase

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const mouseButtons = 8

// Input keeps the mouse and keyboard state samples care about. Deltas and
// the wheel accumulate between calls to EndFrame.
type Input struct {
	X, Y float64

	DeltaX, DeltaY float64

	// Wheel is the vertical scroll since the last frame.
	Wheel float64

	buttons [mouseButtons]bool
	moved   bool
	quit    bool
}

// Attach installs the window callbacks which feed in.
func (in *Input) Attach(window *glfw.Window) {
	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		in.MoveTo(x, y)
	})
	window.SetMouseButtonCallback(func(
		_ *glfw.Window,
		button glfw.MouseButton,
		action glfw.Action,
		_ glfw.ModifierKey,
	) {
		in.SetButton(button, action != glfw.Release)
	})
	window.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		in.Scroll(yoff)
	})
	window.SetKeyCallback(func(
		_ *glfw.Window,
		key glfw.Key,
		_ int,
		action glfw.Action,
		_ glfw.ModifierKey,
	) {
		in.Key(key, action)
	})
}

// MoveTo records a new cursor position. The first position only sets the
// origin so that the initial delta is not a jump from (0, 0).
func (in *Input) MoveTo(x, y float64) {
	if in.moved {
		in.DeltaX += x - in.X
		in.DeltaY += y - in.Y
	}
	in.X, in.Y = x, y
	in.moved = true
}

// Scroll adds a vertical wheel offset.
func (in *Input) Scroll(offset float64) {
	in.Wheel += offset
}

// SetButton records the state of a mouse button.
func (in *Input) SetButton(button glfw.MouseButton, pressed bool) {
	if button < 0 || int(button) >= mouseButtons {
		return
	}
	in.buttons[button] = pressed
}

// Pressed reports whether button is held down.
func (in *Input) Pressed(button glfw.MouseButton) bool {
	if button < 0 || int(button) >= mouseButtons {
		return false
	}
	return in.buttons[button]
}

// Key handles a keyboard event. Escape asks the application to quit.
func (in *Input) Key(key glfw.Key, action glfw.Action) {
	if key == glfw.KeyEscape && action == glfw.Press {
		in.quit = true
	}
}

// Quit reports whether the user asked to close the sample.
func (in *Input) Quit() bool {
	return in.quit
}

// EndFrame clears the per frame deltas.
func (in *Input) EndFrame() {
	in.DeltaX, in.DeltaY = 0, 0
	in.Wheel = 0
}
