package object

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/assets"
	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/camera"
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/loader"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/tween"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func loadShader(t *testing.T, key string) shader.Shader {
	t.Helper()
	lib := shader.NewLibrary(assets.Shaders())
	ExpectLayouts(lib)
	s, err := lib.Load(key)
	require.NoError(t, err)
	return s
}

func decodeFloats(t *testing.T, data []byte) []float32 {
	t.Helper()
	out := make([]float32, len(data)/4)
	require.NoError(t, binary.Read(bytes.NewReader(data), binary.LittleEndian, out))
	return out
}

// lastUniform returns the most recent upload to the drawable's uniform buffer.
func lastUniform(t *testing.T, b *rendertest.Backend, m *mesh) []float32 {
	t.Helper()
	writes := b.WritesTo(m.provider.Buffer(pipeline.UniformBinding))
	require.NotEmpty(t, writes)
	return decodeFloats(t, writes[len(writes)-1].Data)
}

func TestBuiltinShadersMatchLayouts(t *testing.T) {
	for _, key := range []string{MeshShader, TorusShader, PlaneShader, GridShader, ModelShader, InstancedShader} {
		t.Run(key, func(t *testing.T) {
			loadShader(t, key)
		})
	}
}

func TestCubeInitAndRender(t *testing.T) {
	r, b := rendertest.NewRenderer()
	props := DefaultProps()
	props.Position = common.Vec3{1, 2, 3}
	props.Rotation = common.Vec3{}
	props.Scale = common.Vec3{1, 1, 1}
	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: props})
	require.NoError(t, c.Init(r))
	assert.True(t, c.Ready())

	pass := rendertest.NewPass()
	c.Render(pass)
	require.Len(t, pass.Draws, 1)
	d := pass.Draws[0]
	assert.Equal(t, uint32(2304), d.IndexCount)
	assert.Equal(t, uint32(1), d.InstanceCount)
	assert.Equal(t, "mesh/solid", d.Pipeline.Key())
	assert.NotNil(t, d.BindGroup)
	assert.NotNil(t, d.VertexBuffer)

	uniform := b.WritesTo(c.provider.Buffer(pipeline.UniformBinding))
	require.Len(t, uniform, 1)
	assert.Len(t, uniform[0].Data, int(MeshUniforms.Size()))

	// A pure translation lands in the last column of the model matrix.
	model := decodeFloats(t, uniform[0].Data)[0:16]
	translation := common.Translation(1, 2, 3)
	assert.InDeltaSlice(t, translation[:], model, 1e-6)
}

func TestWireframeModeSwitchesPipelineAndIndices(t *testing.T) {
	r, _ := rendertest.NewRenderer()
	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: DefaultProps()})
	require.NoError(t, c.Init(r))

	c.UpdateProps(func(p *Props) { p.Mode = pipeline.RenderModeWireframe })
	pass := rendertest.NewPass()
	c.Render(pass)
	require.Len(t, pass.Draws, 1)
	assert.Equal(t, uint32(4608), pass.Draws[0].IndexCount)
	assert.Equal(t, "mesh/wireframe", pass.Draws[0].Pipeline.Key())
	assert.Same(t, c.provider.WireframeIndexBuffer(), pass.Draws[0].IndexBuffer)
}

func TestCubesSharePipelines(t *testing.T) {
	r, b := rendertest.NewRenderer()
	s := loadShader(t, MeshShader)
	for i := 0; i < 3; i++ {
		require.NoError(t, NewCube(s, CubeProps{Props: DefaultProps()}).Init(r))
	}
	assert.Len(t, b.Pipelines, 2)
}

func TestPlaneAlwaysDrawsSixIndices(t *testing.T) {
	r, b := rendertest.NewRenderer()
	p := NewPlane(loadShader(t, PlaneShader), PlaneProps{Props: DefaultProps()})
	require.NoError(t, p.Init(r))
	assert.Len(t, b.Samplers, 1)
	assert.Len(t, b.Textures, 2)

	p.UpdateProps(func(pr *Props) { pr.Mode = pipeline.RenderModeWireframe })
	pass := rendertest.NewPass()
	p.Render(pass)
	require.Len(t, pass.Draws, 1)
	assert.Equal(t, uint32(6), pass.Draws[0].IndexCount)
	assert.Equal(t, "plane/solid", pass.Draws[0].Pipeline.Key())
}

func TestPlaneTextureFlag(t *testing.T) {
	r, b := rendertest.NewRenderer()
	p := NewPlane(loadShader(t, PlaneShader), PlaneProps{Props: DefaultProps(), UseTexture: true})
	p.SetTexture(common.SolidTexture(255, 0, 0, 255))
	require.NoError(t, p.Init(r))

	flags, ok := PlaneUniforms.Offset("flags")
	require.True(t, ok)
	assert.Equal(t, float32(1), lastUniform(t, b, p.mesh)[flags/4])
}

func TestSharedTextureIsNotReleasedByPlane(t *testing.T) {
	r, _ := rendertest.NewRenderer()
	tex, err := r.CreateTexture("shared", common.SolidTexture(0, 255, 0, 255))
	require.NoError(t, err)

	p := NewPlane(loadShader(t, PlaneShader), PlaneProps{Props: DefaultProps(), UseTexture: true})
	p.ShareTexture(tex)
	require.NoError(t, p.Init(r))
	p.Destroy()

	view, ok := tex.View().(*rendertest.Handle)
	require.True(t, ok)
	assert.Zero(t, view.Released())
}

func TestDestroyReleasesOnce(t *testing.T) {
	r, b := rendertest.NewRenderer()
	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: DefaultProps()})
	require.NoError(t, c.Init(r))
	require.NotEmpty(t, b.Buffers)

	c.Destroy()
	c.Destroy()
	assert.False(t, c.Ready())
	for _, h := range append(append([]*rendertest.Handle{}, b.Buffers...), b.BindGroups...) {
		assert.Equal(t, 1, h.Released(), h.String())
	}

	pass := rendertest.NewPass()
	c.Render(pass)
	c.UpdateCameraTransform()
	assert.Empty(t, pass.Draws)

	assert.ErrorIs(t, c.Init(r), ErrDestroyed)
}

func TestInitTwice(t *testing.T) {
	r, _ := rendertest.NewRenderer()
	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: DefaultProps()})
	require.NoError(t, c.Init(r))
	assert.ErrorIs(t, c.Init(r), ErrInitialized)
}

func TestRenderBeforeInitDrawsNothing(t *testing.T) {
	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: DefaultProps()})
	pass := rendertest.NewPass()
	c.Render(pass)
	c.UpdateCameraTransform()
	assert.Empty(t, pass.Draws)
	assert.False(t, c.Ready())
}

func TestInitFailureWrapsGPUInit(t *testing.T) {
	r, b := rendertest.NewRenderer()
	oom := errors.New("out of memory")
	b.BufferErr = oom

	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: DefaultProps()})
	err := c.Init(r)
	assert.ErrorIs(t, err, ErrGPUInit)
	assert.ErrorIs(t, err, oom)
	assert.False(t, c.Ready())
}

func TestTransformRoundTrip(t *testing.T) {
	r, b := rendertest.NewRenderer()
	props := DefaultProps()
	props.Position = common.Vec3{1, -2, 3}
	props.Rotation = common.Vec3{0.3, 1.1, -0.7}
	props.Scale = common.Vec3{2, 0.5, 1.5}
	props.Color = [4]float32{0.1, 0.2, 0.3, 1}

	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: props})
	require.NoError(t, c.Init(r))

	got := lastUniform(t, b, c.mesh)
	want := common.ModelMatrix(props.Position, props.Rotation, props.Scale)
	identity := common.Identity()
	assert.InDeltaSlice(t, want[:], got[0:16], 1e-6)
	assert.InDeltaSlice(t, identity[:], got[16:32], 1e-6)
	assert.InDeltaSlice(t, identity[:], got[32:48], 1e-6)
	assert.InDeltaSlice(t, props.Color[:], got[48:52], 1e-6)
}

func TestCameraMatricesUploaded(t *testing.T) {
	r, b := rendertest.NewRenderer()
	cam := camera.NewCamera()
	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: DefaultProps()})
	c.SetCamera(cam)
	require.NoError(t, c.Init(r))

	got := lastUniform(t, b, c.mesh)
	view, proj := cam.ViewMatrix(), cam.ProjectionMatrix()
	assert.InDeltaSlice(t, view[:], got[16:32], 1e-6)
	assert.InDeltaSlice(t, proj[:], got[32:48], 1e-6)
}

func TestParamsPackedAndTruncated(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	restore := logger.Set(zap.New(core))
	defer restore()

	r, b := rendertest.NewRenderer()
	props := DefaultProps()
	for i := 0; i < MaxParams+2; i++ {
		props.Params = append(props.Params, [4]float32{float32(i), 0, 0, 0})
	}
	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: props})
	assert.Equal(t, 1, logs.FilterMessage("drawable params truncated").Len())
	require.NoError(t, c.Init(r))

	off, ok := MeshUniforms.Offset("params")
	require.True(t, ok)
	base := int(off / 4)
	got := lastUniform(t, b, c.mesh)
	assert.Len(t, got, base+MaxParams*4)
	assert.Equal(t, float32(MaxParams-1), got[base+(MaxParams-1)*4])
}

func TestRunAppliesSpin(t *testing.T) {
	r, _ := rendertest.NewRenderer()
	props := DefaultProps()
	props.Spin = common.Vec3{0, 2, 0}
	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: props})
	require.NoError(t, c.Init(r))

	c.Run(500 * time.Millisecond)
	assert.InDelta(t, 1, c.Props().Rotation.Y(), 1e-6)
}

func TestDestroyKillsTweens(t *testing.T) {
	r, _ := rendertest.NewRenderer()
	c := NewCube(loadShader(t, MeshShader), CubeProps{Props: DefaultProps()})
	require.NoError(t, c.Init(r))

	tw := tween.To([]tween.Target{tween.Field(&c.Props().Position[0], 5)}, time.Second,
		tween.WithOnUpdate(c.UpdateCameraTransform))
	c.AddTween(tw)
	require.True(t, tw.Step(100*time.Millisecond))

	c.Destroy()
	assert.True(t, tw.Killed())
	x := c.Props().Position[0]
	assert.False(t, tw.Step(100*time.Millisecond))
	assert.Equal(t, x, c.Props().Position[0])

	late := tween.To([]tween.Target{tween.Field(&c.Props().Position[1], 5)}, time.Second)
	c.AddTween(late)
	assert.True(t, late.Killed())
}

func TestTorusDepthBias(t *testing.T) {
	r, _ := rendertest.NewRenderer()
	tor := NewTorus(loadShader(t, TorusShader), TorusProps{Props: DefaultProps()})
	require.NoError(t, tor.Init(r))

	assert.Equal(t, int32(10000), TorusDepthBias(DefaultTorusDepthOffset))
	assert.Equal(t, "torus/bias10000/solid", tor.solid.Key())
	assert.Equal(t, int32(10000), tor.solid.DepthBias())
	assert.Equal(t, float32(TorusDepthBiasSlope), tor.solid.DepthBiasSlopeScale())
	assert.Zero(t, tor.wireframe.DepthBias())
	assert.Equal(t, geometry.DefaultTorusParams(), tor.TorusProps().Shape)

	flat := NewTorus(loadShader(t, TorusShader), TorusProps{Props: DefaultProps(), DepthOffset: -1})
	require.NoError(t, flat.Init(r))
	assert.Equal(t, "torus/solid", flat.solid.Key())
	assert.Zero(t, flat.solid.DepthBias())
}

func TestSphereDefaults(t *testing.T) {
	r, _ := rendertest.NewRenderer()
	sp := NewSphere(loadShader(t, MeshShader), SphereProps{Props: DefaultProps()})
	require.NoError(t, sp.Init(r))

	g := geometry.Sphere(geometry.DefaultSphereRadius, geometry.DefaultSphereWidthSegments, geometry.DefaultSphereHeightSegments)
	pass := rendertest.NewPass()
	sp.Render(pass)
	require.Len(t, pass.Draws, 1)
	assert.Equal(t, uint32(len(g.Indices)), pass.Draws[0].IndexCount)
}

func TestGridLayoutCopiesProps(t *testing.T) {
	r, _ := rendertest.NewRenderer()
	template := GridProps{Props: DefaultProps(), GridSpace: 0.1}
	template.Params = [][4]float32{{1, 2, 3, 4}}
	props := []GridProps{template, template}

	layout, err := NewGridLayout(loadShader(t, GridShader), props)
	require.NoError(t, err)
	require.Equal(t, 2, layout.Len())

	props[0].Params[0][0] = 99
	props[0].GridSpace = 0.5
	assert.Equal(t, float32(1), layout.Grid(0).GridProps().Params[0][0])
	assert.Equal(t, float32(0.1), layout.Grid(0).GridProps().GridSpace)
	assert.NotSame(t, layout.Grid(0).Props(), layout.Grid(1).Props())
	assert.Nil(t, layout.Grid(2))

	require.NoError(t, layout.Init(r))
	assert.True(t, layout.Ready())

	layout.UpdateGridProps(func(p *GridProps) { p.GridSize = 8 })
	assert.Equal(t, float32(8), layout.Grid(1).GridProps().GridSize)

	pass := rendertest.NewPass()
	layout.Render(pass)
	require.Len(t, pass.Draws, 2)
	for _, d := range pass.Draws {
		assert.Equal(t, uint32(6), d.IndexCount)
	}

	layout.Destroy()
	layout.Destroy()
	assert.False(t, layout.Ready())
}

func cubeMesh() *loader.Mesh {
	return &loader.Mesh{
		Name:      "cube",
		Geometry:  geometry.Cube(1),
		BaseColor: [4]float32{0.5, 0.25, 1, 1},
		BoundsMin: [3]float32{1, 1, 1},
		BoundsMax: [3]float32{3, 3, 3},
	}
}

func TestModelLoadThenInit(t *testing.T) {
	r, _ := rendertest.NewRenderer()
	l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithMesh("cube.glb", cubeMesh()))
	m := NewModel(loadShader(t, ModelShader), l, ModelProps{
		Props:            DefaultProps(),
		Path:             "cube.glb",
		UseMaterialColor: true,
	})

	assert.ErrorIs(t, m.Init(r), ErrAssetLoad)
	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, [4]float32{0.5, 0.25, 1, 1}, m.Props().Color)
	require.NoError(t, m.Init(r))

	pass := rendertest.NewPass()
	m.Render(pass)
	require.Len(t, pass.Draws, 1)
	assert.Equal(t, uint32(36), pass.Draws[0].IndexCount)
}

func TestModelLoadFailure(t *testing.T) {
	m := NewModel(loadShader(t, ModelShader), nil, ModelProps{Props: DefaultProps(), Path: "missing.glb"})
	err := m.Load(context.Background())
	assert.ErrorIs(t, err, ErrAssetLoad)
	assert.Nil(t, m.Mesh())

	m.Destroy()
	assert.ErrorIs(t, m.Load(context.Background()), ErrDestroyed)
}

func TestModelNormalize(t *testing.T) {
	src := cubeMesh()
	m := NewModelFromMesh(loadShader(t, ModelShader), src, ModelProps{Props: DefaultProps(), Normalize: true})
	g, err := m.buildGeometry()
	require.NoError(t, err)

	center, radius := src.Center(), src.Radius()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, (src.Geometry.Vertices[i]-center[i])/radius, g.Vertices[i], 1e-6)
	}
	assert.Equal(t, geometry.Cube(1).Vertices, src.Geometry.Vertices)
}

func TestInstancedCubes(t *testing.T) {
	r, b := rendertest.NewRenderer()
	instances := []Instance{
		{Scale: common.Vec3{1, 1, 1}, Color: [4]float32{1, 0, 0, 1}},
		{Position: common.Vec3{2, 0, 0}, Scale: common.Vec3{1, 1, 1}, Color: [4]float32{0, 1, 0, 1}},
		{Position: common.Vec3{4, 0, 0}, Scale: common.Vec3{1, 1, 1}, Color: [4]float32{0, 0, 1, 1}},
	}
	c := NewInstancedCubes(loadShader(t, InstancedShader), CubeProps{Props: DefaultProps(), Subdivisions: 1}, instances)
	require.NoError(t, c.Init(r))

	pass := rendertest.NewPass()
	c.Render(pass)
	require.Len(t, pass.Draws, 1)
	assert.Equal(t, uint32(36), pass.Draws[0].IndexCount)
	assert.Equal(t, uint32(3), pass.Draws[0].InstanceCount)
	assert.True(t, pass.Draws[0].Pipeline.Instanced())

	storage := c.provider.Buffer(pipeline.InstanceBinding)
	require.NotNil(t, storage)
	writes := b.WritesTo(storage)
	require.Len(t, writes, 1)
	assert.Zero(t, writes[0].Offset)
	assert.Len(t, writes[0].Data, 3*InstanceStride)

	c.UpdateInstance(2, func(inst *Instance) { inst.Position = common.Vec3{9, 9, 9} })
	writes = b.WritesTo(storage)
	require.Len(t, writes, 2)
	assert.Equal(t, uint64(2*InstanceStride), writes[1].Offset)
	got := decodeFloats(t, writes[1].Data)
	assert.InDeltaSlice(t, []float32{9, 9, 9}, got[12:15], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 0, 1, 1}, got[16:20], 1e-6)

	c.UpdateCameraTransform()
	assert.Len(t, b.WritesTo(storage), 2)
}

func TestInstancedCubesRequireInstances(t *testing.T) {
	r, _ := rendertest.NewRenderer()
	c := NewInstancedCubes(loadShader(t, InstancedShader), CubeProps{Props: DefaultProps()}, nil)
	assert.ErrorIs(t, c.Init(r), ErrGPUInit)
}
