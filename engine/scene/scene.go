// Package scene holds the ordered set of drawables a frame renders. It owns them: Clear and
// Destroy release every member exactly once.
package scene

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/gpulab-go/engine/camera"
	"github.com/Carmen-Shannon/gpulab-go/engine/object"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/tween"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"go.uber.org/zap"
)

// parallelRefreshThreshold is the member count from which UpdateCameraTransform fans out
// over the worker pool.
const parallelRefreshThreshold = 64

// loaded is an asynchronously loaded drawable waiting for Init on the render thread.
type loaded struct {
	obj        object.Loadable
	generation uint64
	onDone     func(error)
}

type scene struct {
	mu *sync.Mutex

	name    string
	cam     camera.Camera
	r       renderer.Renderer
	objects []object.Object3D
	ticker  tween.Ticker

	// frame is reused by Run and Render to iterate members without holding mu.
	frame []object.Object3D

	// generation increases on every Clear so loads started before it are discarded.
	generation uint64
	pending    []loaded
	inFlight   sync.WaitGroup

	pool    worker.DynamicWorkerPool
	workers int
	taskID  int
}

// Scene is an ordered collection of drawables sharing one camera and renderer.
// Add, Run, Render, UpdateCameraTransform and Clear belong to the render thread;
// AddAsync may be called from anywhere.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the camera every member reads its view and projection from.
	Camera() camera.Camera

	// SetCamera replaces the camera on the scene and every member, then refreshes them.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Renderer returns the renderer members are initialized with.
	Renderer() renderer.Renderer

	// Add initializes obj and appends it. A drawable whose Init fails is not added.
	//
	// Parameters:
	//   - obj: the drawable, not yet initialized
	//
	// Returns:
	//   - error: the Init error
	Add(obj object.Object3D) error

	// AddAsync loads obj on the worker pool. A successful load is initialized and appended on
	// the next Run. A failed load is logged and never touches the scene. onDone, if set,
	// receives the load or Init error, or nil once obj is in the scene. Loads still running
	// when Clear is called are destroyed when they finish.
	//
	// Parameters:
	//   - ctx: cancels the load
	//   - obj: the drawable to load
	//   - onDone: optional completion callback, run on the render thread after a successful
	//     load and on a worker after a failed one
	AddAsync(ctx context.Context, obj object.Loadable, onDone func(error))

	// Tween schedules t on the scene's ticker and ties its lifetime to obj.
	//
	// Parameters:
	//   - obj: the drawable whose props t drives
	//   - t: the tween
	Tween(obj object.Object3D, t tween.Tween)

	// Objects returns the members in insertion order.
	//
	// Returns:
	//   - []object.Object3D: a copy of the member list
	Objects() []object.Object3D

	// Len returns the number of members.
	Len() int

	// Pending returns the number of loaded drawables waiting for the next Run.
	Pending() int

	// Run initializes finished async loads, advances tweens, then calls every member's Run.
	//
	// Parameters:
	//   - dt: time since the previous frame
	Run(dt time.Duration)

	// UpdateCameraTransform refreshes every member's uniform block after a camera move.
	UpdateCameraTransform()

	// Render draws every ready member into pass in insertion order.
	//
	// Parameters:
	//   - pass: the frame's render pass
	Render(pass renderer.RenderPass)

	// Clear kills every tween, destroys every member and empties the scene.
	Clear()

	// Wait blocks until every async load started so far has finished loading.
	Wait()
}

var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - name: the scene's identifier
//   - cam: the camera shared by every member; may be nil for identity view and projection
//   - r: the renderer members are initialized with
//   - options: a variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	s := &scene{
		mu:      &sync.Mutex{},
		name:    name,
		cam:     cam,
		r:       r,
		workers: max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(s)
	}
	if s.ticker == nil {
		s.ticker = tween.NewTicker()
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	s.cam = cam
	objects := append([]object.Object3D(nil), s.objects...)
	s.mu.Unlock()

	for _, obj := range objects {
		obj.SetCamera(cam)
	}
	s.refresh(objects)
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Add(obj object.Object3D) error {
	s.mu.Lock()
	cam := s.cam
	s.mu.Unlock()

	obj.SetCamera(cam)
	if err := obj.Init(s.r); err != nil {
		return fmt.Errorf("scene %s: add %s: %w", s.name, obj.Label(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, obj)
	return nil
}

func (s *scene) AddAsync(ctx context.Context, obj object.Loadable, onDone func(error)) {
	s.mu.Lock()
	generation := s.generation
	id := s.taskID
	s.taskID++
	s.inFlight.Add(1)
	s.mu.Unlock()

	s.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer s.inFlight.Done()

			if err := obj.Load(ctx); err != nil {
				logger.Warn("async load failed",
					zap.String("scene", s.name),
					zap.String("object", obj.Label()),
					zap.Error(err),
				)
				obj.Destroy()
				if onDone != nil {
					onDone(err)
				}
				return nil, err
			}

			s.mu.Lock()
			defer s.mu.Unlock()
			if generation != s.generation {
				obj.Destroy()
				return nil, nil
			}
			s.pending = append(s.pending, loaded{obj: obj, generation: generation, onDone: onDone})
			return nil, nil
		},
	})
}

func (s *scene) Tween(obj object.Object3D, t tween.Tween) {
	obj.AddTween(t)
	s.ticker.Add(t)
}

func (s *scene) Objects() []object.Object3D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]object.Object3D(nil), s.objects...)
}

func (s *scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *scene) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *scene) Run(dt time.Duration) {
	s.initPending()
	s.ticker.Tick(dt)
	for _, obj := range s.snapshot() {
		obj.Run(dt)
	}
}

// snapshot copies the members into the reused frame slice. Only the render thread calls it.
func (s *scene) snapshot() []object.Object3D {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = append(s.frame[:0], s.objects...)
	return s.frame
}

// initPending runs Init for every finished async load on the calling thread.
func (s *scene) initPending() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	generation := s.generation
	s.mu.Unlock()

	for _, p := range pending {
		if p.generation != generation {
			p.obj.Destroy()
			continue
		}
		err := s.Add(p.obj)
		if err != nil {
			logger.Warn("async init failed",
				zap.String("scene", s.name),
				zap.String("object", p.obj.Label()),
				zap.Error(err),
			)
			p.obj.Destroy()
		}
		if p.onDone != nil {
			p.onDone(err)
		}
	}
}

func (s *scene) UpdateCameraTransform() {
	s.refresh(s.Objects())
}

// refresh re-uploads every object's uniform block, fanning out over the worker pool for
// large scenes. Each drawable locks itself, so members upload independently.
func (s *scene) refresh(objects []object.Object3D) {
	if len(objects) < parallelRefreshThreshold {
		for _, obj := range objects {
			obj.UpdateCameraTransform()
		}
		return
	}

	chunk := (len(objects) + s.workers - 1) / s.workers
	var wg sync.WaitGroup
	for start := 0; start < len(objects); start += chunk {
		part := objects[start:min(start+chunk, len(objects))]
		wg.Add(1)
		s.mu.Lock()
		id := s.taskID
		s.taskID++
		s.mu.Unlock()
		s.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for _, obj := range part {
					obj.UpdateCameraTransform()
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Render(pass renderer.RenderPass) {
	for _, obj := range s.snapshot() {
		if obj.Ready() {
			obj.Render(pass)
		}
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	objects := s.objects
	pending := s.pending
	s.objects = nil
	s.pending = nil
	s.generation++
	s.mu.Unlock()

	s.ticker.KillAll()
	for _, obj := range objects {
		obj.Destroy()
	}
	for _, p := range pending {
		p.obj.Destroy()
	}
	logger.Debug("scene cleared", zap.String("scene", s.name), zap.Int("objects", len(objects)))
}

func (s *scene) Wait() {
	s.inFlight.Wait()
}
