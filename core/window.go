// Package core hosts the desktop window and its OpenGL context.
//
// GLFW must be driven from the main OS thread: NewWindow, PollEvents and
// Destroy belong there. The GL context is made current on the render
// goroutine with MakeCurrent.
package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string
	vsync  bool
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
}

// Events receives window notifications on the main thread. Nil fields are
// ignored.
type Events struct {
	// FramebufferSize reports the drawable size in pixels.
	FramebufferSize func(width, height int)
	// Visible is false while the window is iconified or unfocused.
	Visible func(visible bool)
	// KeyPressed fires on key press, not on repeat or release.
	KeyPressed func(key int)
}

// NewWindow opens a window with an OpenGL 4.1 core profile context. The
// context is not current on any thread when NewWindow returns.
func NewWindow(config WindowConfig, events Events) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
		vsync:  config.VSync,
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})
	if events.FramebufferSize != nil {
		handle.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
			events.FramebufferSize(width, height)
		})
	}
	if events.Visible != nil {
		focused, iconified := true, false
		report := func() { events.Visible(focused && !iconified) }
		handle.SetFocusCallback(func(w *glfw.Window, f bool) {
			focused = f
			report()
		})
		handle.SetIconifyCallback(func(w *glfw.Window, i bool) {
			iconified = i
			report()
		})
	}
	if events.KeyPressed != nil {
		handle.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
			if action == glfw.Press {
				events.KeyPressed(int(key))
			}
		})
	}

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

// Close asks the event loop to stop. Safe from any goroutine.
func (w *Window) Close() {
	w.Handle.SetShouldClose(true)
	glfw.PostEmptyEvent()
}

// Wake interrupts WaitEvents. Safe from any goroutine.
func (w *Window) Wake() {
	glfw.PostEmptyEvent()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// WaitEvents blocks until an event arrives or timeout seconds pass.
func (w *Window) WaitEvents(timeout float64) {
	glfw.WaitEventsTimeout(timeout)
}

// MakeCurrent binds the GL context to the calling thread and applies the
// swap interval.
func (w *Window) MakeCurrent() error {
	w.Handle.MakeContextCurrent()
	if w.vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return nil
}

// ReleaseCurrent detaches the GL context from the calling thread.
func (w *Window) ReleaseCurrent() {
	glfw.DetachCurrentContext()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	KeyEscape = int(glfw.KeyEscape)
	KeyLeft   = int(glfw.KeyLeft)
	KeyRight  = int(glfw.KeyRight)
	KeyR      = int(glfw.KeyR)
	KeyP      = int(glfw.KeyP)
	Key0      = int(glfw.Key0)
)
