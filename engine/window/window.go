// Package window opens the GLFW window the playground renders into and turns its input
// events into plain callbacks.
package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a native window that also serves as the renderer's surface.
type Window interface {
	renderer.Surface

	// SetUpdateCallback sets the function called once per message loop iteration, after
	// pending events were dispatched.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer size changes.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta (positive = away from the user)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key presses and key repeats.
	//
	// Parameters:
	//   - callback: function receiving the key code and the modifier bits (common.Mod*)
	SetKeyDownCallback(callback func(keyCode, mods uint32))

	// SetKeyUpCallback sets the callback for key releases.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetDragCallback sets the callback for pointer movement while the left or middle mouse
	// button is held.
	//
	// Parameters:
	//   - callback: function receiving the pointer delta in pixels since the last event
	SetDragCallback(callback func(dx, dy float32))

	// SetTitle replaces the title bar text.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// Title returns the current title bar text.
	Title() string

	// IsRunning returns true until the window is closed.
	IsRunning() bool

	// Close destroys the window and terminates GLFW.
	//
	// Returns:
	//   - error: error if the window was never opened
	Close() error

	// ProcessMessages runs the event loop on the calling goroutine until the window closes,
	// invoking the update callback once per iteration.
	ProcessMessages()
}

// engineWindow holds window configuration, the current size and the event callbacks.
type engineWindow struct {
	title     string
	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int
	width     int
	height    int

	native *glfwWindow

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode, mods uint32)
	onKeyUp   func(keyCode uint32)
	onDrag    func(dx, dy float32)

	dragging     bool
	lastX, lastY float64
}

var _ Window = &engineWindow{}

// NewWindow creates and opens a window. GLFW requires the calling goroutine to stay on the
// main OS thread, so NewWindow locks it.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := openGLFWWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create window: %v", err))
	}
	return w
}

// newEngineWindow applies defaults and options without touching GLFW.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "gpulab",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = clampInt(w.width, w.minWidth, w.maxWidth)
	w.height = clampInt(w.height, w.minHeight, w.maxHeight)
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode, mods uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetDragCallback(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	if w.native != nil {
		w.native.window.SetTitle(title)
	}
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.native == nil {
		return nil
	}
	return w.native.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.native != nil && w.native.running()
}

func (w *engineWindow) Close() error {
	if w.native == nil {
		return fmt.Errorf("window is not initialized")
	}
	w.native.close()
	w.native = nil
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		w.native.poll()
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// resized records a new framebuffer size and forwards it. Minimized windows report 0x0,
// which is dropped so the surface is never configured empty.
func (w *engineWindow) resized(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *engineWindow) pointerMoved(x, y float64) {
	if w.dragging && w.onDrag != nil {
		w.onDrag(float32(x-w.lastX), float32(y-w.lastY))
	}
	w.lastX, w.lastY = x, y
}

func (w *engineWindow) setDragging(dragging bool, x, y float64) {
	w.dragging = dragging
	w.lastX, w.lastY = x, y
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
