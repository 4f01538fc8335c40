package scene

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/assets"
	"github.com/Carmen-Shannon/gpulab-go/engine/camera"
	"github.com/Carmen-Shannon/gpulab-go/engine/object"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/tween"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeObject counts the calls the scene makes on it.
type fakeObject struct {
	mu sync.Mutex

	label   string
	props   object.Props
	initErr error
	loadErr error
	gate    chan struct{}

	cam       camera.Camera
	ready     bool
	destroyed bool
	tweens    []tween.Tween

	inits, destroys, refreshes, renders, runs, loads int
}

var _ object.Loadable = &fakeObject{}

func newFake(label string) *fakeObject {
	return &fakeObject{label: label, props: object.DefaultProps()}
}

func (f *fakeObject) Label() string { return f.label }

func (f *fakeObject) Init(renderer.Renderer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits++
	if f.initErr != nil {
		return f.initErr
	}
	f.ready = true
	return nil
}

func (f *fakeObject) Load(ctx context.Context) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.loadErr
}

func (f *fakeObject) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready && !f.destroyed
}

func (f *fakeObject) SetCamera(c camera.Camera) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cam = c
}

func (f *fakeObject) UpdateCameraTransform() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
}

func (f *fakeObject) Run(time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
}

func (f *fakeObject) Render(renderer.RenderPass) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders++
}

func (f *fakeObject) Props() *object.Props { return &f.props }

func (f *fakeObject) UpdateProps(fn func(p *object.Props)) { fn(&f.props) }

func (f *fakeObject) AddTween(t tween.Tween) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tweens = append(f.tweens, t)
}

func (f *fakeObject) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroys++
	f.destroyed = true
	for _, t := range f.tweens {
		t.Kill()
	}
}

func (f *fakeObject) count(n *int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *n
}

func newTestScene(t *testing.T, options ...SceneBuilderOption) Scene {
	t.Helper()
	r, _ := rendertest.NewRenderer()
	return NewScene("test", camera.NewCamera(), r, options...)
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	s := newTestScene(t)
	a, b, c := newFake("a"), newFake("b"), newFake("c")
	for _, obj := range []*fakeObject{a, b, c} {
		require.NoError(t, s.Add(obj))
	}
	assert.Equal(t, []object.Object3D{a, b, c}, s.Objects())
	assert.Same(t, s.Camera(), a.cam)
}

func TestAddRejectsFailedInit(t *testing.T) {
	s := newTestScene(t)
	bad := newFake("bad")
	bad.initErr = object.ErrGPUInit
	err := s.Add(bad)
	assert.ErrorIs(t, err, object.ErrGPUInit)
	assert.Zero(t, s.Len())
}

func TestClearThenAdd(t *testing.T) {
	s := newTestScene(t)
	old := []*fakeObject{newFake("a"), newFake("b")}
	for _, obj := range old {
		require.NoError(t, s.Add(obj))
	}

	s.Clear()
	assert.Zero(t, s.Len())

	c, d := newFake("c"), newFake("d")
	require.NoError(t, s.Add(c))
	require.NoError(t, s.Add(d))
	assert.Equal(t, []object.Object3D{c, d}, s.Objects())
	for _, obj := range old {
		assert.Equal(t, 1, obj.count(&obj.destroys), obj.label)
	}
	assert.Zero(t, c.count(&c.destroys))
}

func TestClearDestroysRealDrawablesOnce(t *testing.T) {
	r, b := rendertest.NewRenderer()
	lib := shader.NewLibrary(assets.Shaders())
	object.ExpectLayouts(lib)
	sh, err := lib.Load(object.MeshShader)
	require.NoError(t, err)

	s := NewScene("cubes", camera.NewCamera(), r)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Add(object.NewCube(sh, object.CubeProps{Props: object.DefaultProps(), Subdivisions: 1})))
	}
	s.Clear()
	s.Clear()
	for _, h := range b.Buffers {
		assert.Equal(t, 1, h.Released(), h.String())
	}
}

func TestRenderSkipsNotReady(t *testing.T) {
	s := newTestScene(t)
	ready, gone := newFake("ready"), newFake("gone")
	require.NoError(t, s.Add(ready))
	require.NoError(t, s.Add(gone))
	gone.Destroy()

	s.Render(rendertest.NewPass())
	assert.Equal(t, 1, ready.count(&ready.renders))
	assert.Zero(t, gone.count(&gone.renders))
}

func TestRenderDoesNotAllocate(t *testing.T) {
	s := newTestScene(t)
	for range 1000 {
		require.NoError(t, s.Add(newFake("cube")))
	}
	var pass renderer.RenderPass = rendertest.NewPass()
	s.Render(pass)

	allocs := testing.AllocsPerRun(20, func() {
		s.Render(pass)
	})
	assert.Zero(t, allocs)
}

func TestRunAdvancesTweensBeforeObjects(t *testing.T) {
	s := newTestScene(t)
	obj := newFake("obj")
	require.NoError(t, s.Add(obj))

	var order []string
	tw := tween.To([]tween.Target{tween.Field(&obj.props.Position[0], 10)}, time.Second,
		tween.WithOnUpdate(func() {
			order = append(order, "tween")
			obj.UpdateCameraTransform()
		}))
	s.Tween(obj, tw)

	s.Run(500 * time.Millisecond)
	assert.Equal(t, []string{"tween"}, order)
	assert.Equal(t, 1, obj.count(&obj.runs))
	assert.Equal(t, 1, obj.count(&obj.refreshes))
	assert.Greater(t, obj.props.Position[0], float32(0))

	s.Clear()
	assert.True(t, tw.Killed())
}

func TestUpdateCameraTransformRefreshesEveryMember(t *testing.T) {
	s := newTestScene(t, WithWorkers(4))
	var fakes []*fakeObject
	for i := 0; i < 2*parallelRefreshThreshold+3; i++ {
		f := newFake("f")
		fakes = append(fakes, f)
		require.NoError(t, s.Add(f))
	}
	s.UpdateCameraTransform()
	for _, f := range fakes {
		assert.Equal(t, 1, f.count(&f.refreshes))
	}
}

func TestSetCameraPropagates(t *testing.T) {
	s := newTestScene(t)
	obj := newFake("obj")
	require.NoError(t, s.Add(obj))

	cam := camera.NewCamera()
	s.SetCamera(cam)
	assert.Same(t, cam, s.Camera())
	assert.Same(t, cam, obj.cam)
	assert.Equal(t, 1, obj.count(&obj.refreshes))
}

func TestAddAsyncInitializesOnRun(t *testing.T) {
	s := newTestScene(t)
	obj := newFake("model")

	done := make(chan error, 1)
	s.AddAsync(context.Background(), obj, func(err error) { done <- err })
	s.Wait()
	assert.Equal(t, 1, s.Pending())
	assert.Zero(t, s.Len())
	assert.Zero(t, obj.count(&obj.inits))

	s.Run(time.Millisecond)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, obj.count(&obj.inits))
	assert.NoError(t, <-done)
}

func TestAddAsyncLoadFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	restore := logger.Set(zap.New(core))
	defer restore()

	s := newTestScene(t)
	obj := newFake("broken")
	obj.loadErr = object.ErrAssetLoad

	done := make(chan error, 1)
	s.AddAsync(context.Background(), obj, func(err error) { done <- err })
	s.Wait()

	assert.ErrorIs(t, <-done, object.ErrAssetLoad)
	s.Run(time.Millisecond)
	assert.Zero(t, s.Len())
	assert.Zero(t, obj.count(&obj.inits))
	assert.Equal(t, 1, logs.FilterMessage("async load failed").Len())
}

func TestAddAsyncInitFailure(t *testing.T) {
	s := newTestScene(t)
	obj := newFake("gpu")
	obj.initErr = errors.New("device lost")

	done := make(chan error, 1)
	s.AddAsync(context.Background(), obj, func(err error) { done <- err })
	s.Wait()
	s.Run(time.Millisecond)

	assert.Error(t, <-done)
	assert.Zero(t, s.Len())
	assert.Equal(t, 1, obj.count(&obj.destroys))
}

func TestClearDiscardsInFlightLoads(t *testing.T) {
	s := newTestScene(t)
	obj := newFake("slow")
	obj.gate = make(chan struct{})

	s.AddAsync(context.Background(), obj, nil)
	s.Clear()
	close(obj.gate)
	s.Wait()

	s.Run(time.Millisecond)
	assert.Zero(t, s.Len())
	assert.Zero(t, s.Pending())
	assert.Equal(t, 1, obj.count(&obj.destroys))
	assert.Zero(t, obj.count(&obj.inits))
}
