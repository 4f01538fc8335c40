// Package engine drives the frame loop: fixed-rate ticks, scene animation, one render pass per
// frame and presentation.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/engine/camera"
	"github.com/Carmen-Shannon/gpulab-go/engine/profiler"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/scene"
	"github.com/Carmen-Shannon/gpulab-go/engine/window"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"go.uber.org/zap"
)

// maxTicksPerFrame bounds how many fixed ticks one slow frame may run before the backlog is
// dropped.
const maxTicksPerFrame = 5

// engine implements the Engine interface.
type engine struct {
	renderer renderer.Renderer
	camera   camera.Camera
	scene    scene.Scene
	window   window.Window

	quitChannel chan struct{}
	quitOnce    sync.Once

	profiler         *profiler.Profiler
	profilingEnabled bool
	onStats          func(profiler.Stats)

	engineTickRate  time.Duration
	tickAccumulator time.Duration
	tickCallback    func(deltaTime float32)
	renderCallback  func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame        time.Time
	now              func() time.Time
}

// Engine owns the renderer, the camera and the scene and runs them once per frame.
// Everything except Quit and Done must be called from the thread that created the window.
type Engine interface {
	Renderer() renderer.Renderer

	Camera() camera.Camera

	Scene() scene.Scene

	// Window returns the window the engine presents to, or nil when running headless.
	Window() window.Window

	// EnableProfiler turns on once-a-second frame statistics.
	EnableProfiler()

	// DisableProfiler turns frame statistics off.
	DisableProfiler()

	// SetStatsCallback registers the function receiving each profiler sample.
	//
	// Parameters:
	//   - callback: function receiving the sample (or nil to disable)
	SetStatsCallback(callback func(profiler.Stats))

	// SetTickRate sets the fixed rate of the tick callback.
	//
	// Parameters:
	//   - fps: ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the fixed-rate logic callback. Ticks run at the start of a
	// frame, before the scene advances its tweens.
	//
	// Parameters:
	//   - callback: function receiving the fixed tick length in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each presented frame.
	//
	// Parameters:
	//   - callback: function receiving the frame's delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the frame rate.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Render records one frame: begin the pass (color, depth and MSAA resolve attachments),
	// draw every ready scene member, submit and present.
	//
	// Returns:
	//   - error: error if the surface could not provide a frame
	Render() error

	// Resize reconfigures the surface, depth and MSAA attachments. Updating the camera aspect
	// is left to the caller.
	//
	// Parameters:
	//   - width, height: new framebuffer size in pixels
	Resize(width, height int)

	// Frame runs one full frame: ticks, scene Run, Render, render callback, profiler.
	// A panic inside the frame is logged and stops the engine.
	//
	// Parameters:
	//   - dt: time since the previous frame
	//
	// Returns:
	//   - bool: false if the engine has stopped
	Frame(dt time.Duration) bool

	// Run drives frames until the window closes or Quit is called. With a window it blocks
	// in the window's event loop; headless it loops on the calling goroutine.
	Run()

	// Quit stops the loop. Safe to call multiple times and from any goroutine.
	Quit()

	// Done is closed once Quit has been called.
	Done() <-chan struct{}
}

var _ Engine = &engine{}

// NewEngine creates an engine around r. Without WithCamera a camera matching the renderer's
// aspect ratio is created; without WithScene an empty scene is created.
//
// Parameters:
//   - r: the renderer frames are recorded with
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(r renderer.Renderer, options ...EngineBuilderOption) Engine {
	if r == nil {
		panic("engine: nil renderer")
	}
	e := &engine{
		renderer:       r,
		quitChannel:    make(chan struct{}),
		engineTickRate: time.Second / 60,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(e)
	}

	if e.camera == nil {
		var opts []camera.CameraBuilderOption
		if w, h := r.Size(); w > 0 && h > 0 {
			opts = append(opts, camera.WithAspect(float32(w)/float32(h)))
		}
		e.camera = camera.NewCamera(opts...)
	}
	if e.scene == nil {
		e.scene = scene.NewScene("main", e.camera, r)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}
	if e.window != nil {
		e.window.SetResizeCallback(e.onWindowResize)
	}
	return e
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetStatsCallback(callback func(profiler.Stats)) {
	e.onStats = callback
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	e.engineTickRate = time.Duration(float64(time.Second) / fps)
	e.tickAccumulator = 0
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Render() error {
	pass, err := e.renderer.BeginFrame()
	if err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	e.scene.Render(pass)
	e.renderer.EndFrame()
	e.renderer.Present()
	return nil
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.renderer.Resize(width, height)
}

// onWindowResize follows a surface resize with the camera aspect update and a transform
// refresh so the next frame is not drawn with the old projection.
func (e *engine) onWindowResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.Resize(width, height)
	e.camera.SetAspect(float32(width) / float32(height))
	e.scene.UpdateCameraTransform()
	logger.Debug("surface resized", zap.Int("width", width), zap.Int("height", height))
}

func (e *engine) Frame(dt time.Duration) (alive bool) {
	if e.stopped() {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("frame panicked", zap.Any("panic", r), zap.Stack("stack"))
			e.Quit()
			alive = false
		}
	}()

	e.tick(dt)
	e.scene.Run(dt)
	if err := e.Render(); err != nil {
		logger.Warn("frame skipped", zap.Error(err))
	}
	if e.renderCallback != nil {
		e.renderCallback(float32(dt.Seconds()))
	}
	if e.profilingEnabled {
		if s, ok := e.profiler.Tick(); ok && e.onStats != nil {
			e.onStats(s)
		}
	}
	return !e.stopped()
}

// tick runs the fixed-rate callback as many times as the accumulated time allows.
func (e *engine) tick(dt time.Duration) {
	if e.tickCallback == nil {
		return
	}
	e.tickAccumulator += dt
	seconds := float32(e.engineTickRate.Seconds())
	for n := 0; e.tickAccumulator >= e.engineTickRate; n++ {
		if n == maxTicksPerFrame {
			e.tickAccumulator = 0
			return
		}
		e.tickCallback(seconds)
		e.tickAccumulator -= e.engineTickRate
	}
}

func (e *engine) Run() {
	e.lastFrame = e.now()
	logger.Info("engine started", zap.Bool("headless", e.window == nil))

	if e.window == nil {
		for e.step() {
		}
		e.Quit()
		return
	}

	e.window.SetUpdateCallback(func() {
		if !e.step() {
			_ = e.window.Close()
		}
	})
	e.window.ProcessMessages()
	e.Quit()
}

// step measures the frame time, runs the frame and applies the frame limit.
func (e *engine) step() bool {
	start := e.now()
	dt := start.Sub(e.lastFrame)
	e.lastFrame = start

	if !e.Frame(dt) {
		return false
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return true
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		logger.Info("engine stopping")
	})
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}

func (e *engine) stopped() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}
