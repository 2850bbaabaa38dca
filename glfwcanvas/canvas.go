// Package glfwcanvas provides a CanvasHost backed by a GLFW window
// with an OpenGL 3.3 core context.
//
// GLFW is thread-affine: New and Run must be called from the main OS
// thread (lock it with runtime.LockOSThread in the program's init).
// ScheduleUpdate is safe from any goroutine; it posts an empty event
// to wake the pump.
package glfwcanvas

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/glfw/v3.3/glfw"

	pointoverlay "github.com/kforeman/point-overlay"
)

// frameFlag coalesces frame requests from any goroutine into a single
// pending frame for the pump thread.
type frameFlag struct {
	armed atomic.Bool
}

func (f *frameFlag) arm() { f.armed.Store(true) }

// consume atomically claims the pending frame, reporting whether one
// was armed.
func (f *frameFlag) consume() bool { return f.armed.CompareAndSwap(true, false) }

// Canvas is a GLFW window acting as the overlay's drawing surface and
// frame scheduler.
type Canvas struct {
	win     *glfw.Window
	update  func()
	resize  func()
	pending frameFlag
}

var _ pointoverlay.CanvasHost = (*Canvas)(nil)

// New initializes GLFW and opens a window with a current GL context.
// The size is in screen coordinates; the framebuffer may be larger on
// high-DPI displays.
func New(width, height int, title string) (*Canvas, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfwcanvas: init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfwcanvas: create window: %w", err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	c := &Canvas{win: win}
	win.SetFramebufferSizeCallback(func(*glfw.Window, int, int) {
		if c.resize != nil {
			c.resize()
		}
	})
	return c, nil
}

// Size returns the framebuffer size in physical pixels.
func (c *Canvas) Size() (int, int) {
	return c.win.GetFramebufferSize()
}

// ResolutionScale returns the window's content scale (device pixel
// ratio).
func (c *Canvas) ResolutionScale() float64 {
	xscale, _ := c.win.GetContentScale()
	if xscale <= 0 {
		return 1
	}
	return float64(xscale)
}

// SetUpdateHandler implements pointoverlay.CanvasHost.
func (c *Canvas) SetUpdateHandler(fn func()) { c.update = fn }

// SetResizeHandler implements pointoverlay.CanvasHost.
func (c *Canvas) SetResizeHandler(fn func()) { c.resize = fn }

// ScheduleUpdate arms one frame and wakes the event pump.
func (c *Canvas) ScheduleUpdate() {
	c.pending.arm()
	glfw.PostEmptyEvent()
}

// Run pumps events until the window closes, delivering at most one
// update callback per armed ScheduleUpdate and swapping buffers after
// each draw. Must run on the main thread.
func (c *Canvas) Run() {
	for !c.win.ShouldClose() {
		if c.pending.consume() && c.update != nil {
			c.update()
			c.win.SwapBuffers()
		}
		glfw.WaitEvents()
	}
}

// Window exposes the underlying GLFW window for input handling.
func (c *Canvas) Window() *glfw.Window { return c.win }

// Close destroys the window and terminates GLFW.
func (c *Canvas) Close() {
	c.win.Destroy()
	glfw.Terminate()
}
