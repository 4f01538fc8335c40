package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/Carmen-Shannon/gpulab-go/assets"
	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine"
	"github.com/Carmen-Shannon/gpulab-go/engine/camera"
	"github.com/Carmen-Shannon/gpulab-go/engine/gui"
	"github.com/Carmen-Shannon/gpulab-go/engine/loader"
	"github.com/Carmen-Shannon/gpulab-go/engine/object"
	"github.com/Carmen-Shannon/gpulab-go/engine/profiler"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/scene"
	"github.com/Carmen-Shannon/gpulab-go/engine/window"
	"github.com/Carmen-Shannon/gpulab-go/internal/config"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"go.uber.org/zap"
)

// app wires the window, engine, control panel and demos together.
type app struct {
	ctx context.Context
	cfg *config.Config

	win      window.Window
	renderer renderer.Renderer
	eng      engine.Engine
	shaders  shader.Library
	panel    gui.Panel
	orbit    camera.CameraController
	demo     *demoContext

	current string
	pending string
	reload  atomic.Bool
	fps     float64
}

func newApp(ctx context.Context, cfg *config.Config) *app {
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)

	present := renderer.PresentModeUncapped
	if cfg.Window.VSync {
		present = renderer.PresentModeVSync
	}
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Window.MSAA)),
		renderer.WithPresentMode(present),
		renderer.WithForceSoftwareRenderer(cfg.Window.ForceFallbackAdapter),
	)

	cam := camera.NewCamera(
		camera.WithPosition(common.Vec3(cfg.Camera.Position)),
		camera.WithTarget(common.Vec3(cfg.Camera.Target)),
		camera.WithFovDegrees(cfg.Camera.FOVDegrees),
		camera.WithClipPlanes(cfg.Camera.Near, cfg.Camera.Far),
		camera.WithAspect(float32(win.Width())/float32(win.Height())),
	)

	var libOpts []shader.LibraryBuilderOption
	if cfg.Assets.ShaderDir != "" {
		libOpts = append(libOpts, shader.WithOverrideDir(cfg.Assets.ShaderDir))
	}
	lib := shader.NewLibrary(assets.Shaders(), libOpts...)
	object.ExpectLayouts(lib)

	sc := scene.NewScene("gpulab", cam, r)
	a := &app{
		ctx:      ctx,
		cfg:      cfg,
		win:      win,
		renderer: r,
		shaders:  lib,
		panel:    gui.NewPanel(),
		orbit: camera.NewOrbitController(cam,
			camera.WithRadiusBounds(1, cfg.Camera.Far*0.9),
			camera.WithPoleMargin(0.05),
		),
		eng: engine.NewEngine(r,
			engine.WithWindow(win),
			engine.WithCamera(cam),
			engine.WithScene(sc),
			engine.WithRenderFrameLimit(float64(cfg.Window.FPSLimit)),
			engine.WithProfiling(cfg.Window.ShowFPS),
		),
		demo: &demoContext{
			scene:   sc,
			shaders: lib,
			loader:  loader.NewLoader(loader.BackendTypeGLTF),
			rng:     rand.New(rand.NewSource(cfg.Scene.Seed)),
			count:   cfg.Scene.Count,
			spread:  cfg.Scene.Spread,
			model:   cfg.Assets.Model,
		},
	}

	if cfg.Assets.Texture != "" {
		a.demo.texture = loadSharedTexture(r, cfg.Assets.Texture, cfg.Assets.MaxTexture)
	}

	if cfg.Assets.WatchShaders {
		lib.OnReload(func(s shader.Shader) {
			// Watcher goroutine: the rebuild happens at the end of the next frame.
			a.reload.Store(true)
		})
		if err := lib.Watch(); err != nil {
			logger.Warn("shader hot reload disabled", zap.Error(err))
		}
	}

	a.buildPanel()
	a.bindInput()
	a.eng.SetRenderCallback(func(float32) { a.endOfFrame() })
	a.eng.SetStatsCallback(func(s profiler.Stats) {
		a.fps = s.FPS
		a.updateTitle()
	})
	return a
}

// loadSharedTexture decodes path and uploads it once for every textured plane. Failures leave
// the planes untextured.
func loadSharedTexture(r renderer.Renderer, path string, maxSize int) *renderer.Texture {
	data, err := loader.LoadTexture(path, maxSize)
	if err != nil {
		logger.Warn("plane texture unavailable", zap.String("path", path), zap.Error(err))
		return nil
	}
	tex, err := r.CreateTexture("plane-texture", data)
	if err != nil {
		logger.Warn("plane texture upload failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	logger.Info("plane texture loaded", zap.String("path", path), zap.Uint32("width", data.Width), zap.Uint32("height", data.Height))
	return tex
}

func (a *app) buildPanel() {
	pos := a.eng.Camera().Position()
	step := common.Coalesce(a.cfg.Camera.Step, 0.1)
	for axis, label := range []string{"camera X", "camera Y", "camera Z"} {
		a.panel.AddSlider(label, pos[axis], -40, 40, step, func(v float32) {
			a.updateCameraAxis(camera.Axis(axis), v)
		})
	}
	for _, name := range config.Demos {
		a.panel.AddButton(demoLabels[name], func() { a.pending = name })
	}
}

// updateCameraAxis moves the camera along one axis and refreshes every drawable.
func (a *app) updateCameraAxis(axis camera.Axis, v float32) {
	a.eng.Camera().SetPositionAxis(axis, v)
	a.orbit.Sync()
	a.eng.Scene().UpdateCameraTransform()
	a.updateTitle()
}

func (a *app) bindInput() {
	a.win.SetKeyDownCallback(func(key, mods uint32) {
		if a.panel.HandleKey(key, mods) {
			a.updateTitle()
			return
		}
		moved := true
		switch key {
		case common.KeyA:
			a.orbit.OrbitLeft()
		case common.KeyD:
			a.orbit.OrbitRight()
		case common.KeyW:
			a.orbit.OrbitUp()
		case common.KeyS:
			a.orbit.OrbitDown()
		case common.KeyQ:
			a.orbit.PanUp(-1)
		case common.KeyE:
			a.orbit.PanUp(1)
		default:
			moved = false
			a.command(key)
		}
		if moved {
			a.eng.Scene().UpdateCameraTransform()
		}
	})
	a.win.SetScrollCallback(func(delta float32) {
		a.orbit.Zoom(delta)
		a.eng.Scene().UpdateCameraTransform()
	})
	a.win.SetDragCallback(func(dx, dy float32) {
		a.orbit.Drag(dx, dy)
		a.eng.Scene().UpdateCameraTransform()
	})
}

// command handles the keys that are not camera or panel controls.
func (a *app) command(key uint32) {
	switch key {
	case common.KeyF:
		for _, obj := range a.eng.Scene().Objects() {
			obj.UpdateProps(func(p *object.Props) {
				if p.Mode == pipeline.RenderModeWireframe {
					p.Mode = pipeline.RenderModeSolid
				} else {
					p.Mode = pipeline.RenderModeWireframe
				}
			})
		}
	case common.KeyR:
		a.pending = a.current
	case common.KeyP:
		pos := a.eng.Camera().Position()
		a.cfg.Camera.Position = [3]float32(pos)
		a.cfg.Scene.Demo = a.current
		if err := a.cfg.Save(); err != nil {
			logger.Warn("failed to save config", zap.Error(err))
			return
		}
		logger.Info("config saved", zap.String("dir", config.ConfigDir()))
	}
}

// endOfFrame applies demo swaps and shader reloads requested during the frame.
func (a *app) endOfFrame() {
	reload := a.reload.Swap(false)
	if reload && a.pending == "" {
		a.pending = a.current
	}
	if a.pending == "" {
		return
	}
	name := a.pending
	a.pending = ""
	a.runDemo(name, reload)
}

// runDemo clears the scene and builds the named demo. With releasePipelines the renderer's
// pipeline cache is dropped first so reloaded shaders take effect.
func (a *app) runDemo(name string, releasePipelines bool) {
	build, ok := demos[name]
	if !ok {
		logger.Warn("unknown demo", zap.String("demo", name))
		return
	}
	sc := a.eng.Scene()
	sc.Clear()
	if releasePipelines {
		a.renderer.ReleasePipelines()
	}

	err := build(a.ctx, a.demo)
	switch {
	case errors.Is(err, object.ErrAssetLoad):
		logger.Warn("demo incomplete", zap.String("demo", name), zap.Error(err))
	case err != nil:
		logger.Error("demo failed", zap.String("demo", name), zap.Error(err))
		sc.Clear()
		return
	}
	a.current = name
	logger.Info("demo started", zap.String("demo", name), zap.Int("objects", sc.Len()), zap.Int("loading", sc.Pending()))
	a.updateTitle()
}

func (a *app) updateTitle() {
	title := fmt.Sprintf("%s | %s | %s", a.cfg.Window.Title, a.current, a.panel.Status())
	if a.fps > 0 {
		title += fmt.Sprintf(" | %.0f fps", a.fps)
	}
	a.win.SetTitle(title)
}

// run starts the configured demo and blocks until the window closes or ctx is canceled.
func (a *app) run() {
	go func() {
		select {
		case <-a.ctx.Done():
			a.eng.Quit()
		case <-a.eng.Done():
		}
	}()

	a.runDemo(a.cfg.Scene.Demo, false)
	logger.Info("controls",
		zap.String("buttons", a.panel.Help()),
		zap.String("panel", "Tab/Shift+Tab select slider, Left/Right adjust (Shift x10)"),
		zap.String("camera", "WASD orbit, Q/E pan, scroll zoom, drag orbit"),
		zap.String("keys", "F wireframe, R rebuild, P save config, Esc quit"),
	)
	a.eng.Run()
}

// close releases everything in reverse order of creation.
func (a *app) close() {
	sc := a.eng.Scene()
	sc.Clear()
	sc.Wait()
	if a.demo.texture != nil {
		a.demo.texture.Release()
	}
	if err := a.shaders.Close(); err != nil {
		logger.Warn("failed to stop shader watcher", zap.Error(err))
	}
	a.renderer.ReleasePipelines()
	a.renderer.Release()
	_ = a.win.Close()
}
