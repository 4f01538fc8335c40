package object

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/camera"
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/uniform"
	"github.com/Carmen-Shannon/gpulab-go/engine/tween"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"go.uber.org/zap"
)

var nextID atomic.Uint64

// mesh is the shared core of every single-draw drawable. Concrete types embed it and supply
// the geometry, the uniform layout and the extra fields of their block.
type mesh struct {
	mu *sync.Mutex

	id    uint64
	label string

	shader      shader.Shader
	layout      *uniform.Layout
	block       *uniform.Block
	props       *Props
	paramCount  int
	hasParams   bool
	hasModel    bool
	solidOnly   bool
	solidOpts   []pipeline.PipelineBuilderOption
	sharedOpts  []pipeline.PipelineBuilderOption
	pipelineKey string
	sizes       map[int]uint64

	geometry  func() (geometry.Geometry, error)
	fill      func(b *uniform.Block)
	attach    func(r renderer.Renderer, p bind_group_provider.BindGroupProvider) error
	stage     func() []renderer.BufferWrite
	instances func() uint32

	renderer  renderer.Renderer
	provider  bind_group_provider.BindGroupProvider
	solid     pipeline.Pipeline
	wireframe pipeline.Pipeline
	camera    camera.Camera
	tweens    []tween.Tween
	writes    []renderer.BufferWrite

	ready     bool
	destroyed bool
}

var _ Object3D = &mesh{}

func newMesh(kind string, s shader.Shader, layout *uniform.Layout, props *Props, options ...ObjectBuilderOption) *mesh {
	id := nextID.Add(1)
	m := &mesh{
		mu:     &sync.Mutex{},
		id:     id,
		label:  fmt.Sprintf("%s-%d", kind, id),
		shader: s,
		layout: layout,
		block:  layout.NewBlock(),
		props:  props,
	}
	if s != nil {
		m.pipelineKey = s.Key()
	}
	_, m.hasParams = layout.Offset("params")
	_, m.hasModel = layout.Offset("model")
	m.paramCount = len(props.Params)
	if m.hasParams && m.paramCount > MaxParams {
		logger.Warn("drawable params truncated",
			zap.String("label", m.label),
			zap.Int("params", m.paramCount),
			zap.Int("max", MaxParams),
		)
		m.paramCount = MaxParams
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *mesh) Label() string {
	return m.label
}

// ID returns the drawable's process-unique identifier.
func (m *mesh) ID() uint64 {
	return m.id
}

func (m *mesh) Init(r renderer.Renderer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destroyed {
		return fmt.Errorf("%w: %s", ErrDestroyed, m.label)
	}
	if m.ready {
		return fmt.Errorf("%w: %s", ErrInitialized, m.label)
	}
	if m.shader == nil {
		return fmt.Errorf("%w: %s has no shader", ErrGPUInit, m.label)
	}

	g, err := m.geometry()
	if err != nil {
		return err
	}

	solid, wireframe, err := m.registerPipelines(r)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrGPUInit, m.label, err)
	}

	provider := bind_group_provider.NewBindGroupProvider(m.label)
	if err := m.initResources(r, provider, solid, g); err != nil {
		provider.Release()
		return err
	}

	m.renderer = r
	m.provider = provider
	m.solid = solid
	m.wireframe = wireframe
	m.writes = []renderer.BufferWrite{{Provider: provider, Binding: pipeline.UniformBinding}}
	m.ready = true
	m.upload()
	return nil
}

func (m *mesh) registerPipelines(r renderer.Renderer) (pipeline.Pipeline, pipeline.Pipeline, error) {
	solidOpts := append(append([]pipeline.PipelineBuilderOption{}, m.sharedOpts...), m.solidOpts...)
	pipelines := []pipeline.Pipeline{pipeline.NewMeshPipeline(m.pipelineKey, m.shader, pipeline.RenderModeSolid, solidOpts...)}
	if !m.solidOnly {
		pipelines = append(pipelines, pipeline.NewMeshPipeline(m.pipelineKey, m.shader, pipeline.RenderModeWireframe, m.sharedOpts...))
	}
	if err := r.RegisterPipelines(pipelines...); err != nil {
		return nil, nil, err
	}

	solid := r.Pipeline(pipelines[0].Key())
	var wireframe pipeline.Pipeline
	if !m.solidOnly {
		wireframe = r.Pipeline(pipelines[1].Key())
	}
	return solid, wireframe, nil
}

func (m *mesh) initResources(r renderer.Renderer, provider bind_group_provider.BindGroupProvider, solid pipeline.Pipeline, g geometry.Geometry) error {
	if err := r.InitMeshBuffers(provider, g); err != nil {
		return fmt.Errorf("%w: %s mesh buffers: %w", ErrGPUInit, m.label, err)
	}
	if m.attach != nil {
		if err := m.attach(r, provider); err != nil {
			return err
		}
	}
	sizes := map[int]uint64{pipeline.UniformBinding: m.layout.Size()}
	for binding, size := range m.sizes {
		sizes[binding] = size
	}
	if err := r.InitBindGroup(provider, solid.BindGroupLayoutDescriptor(), sizes); err != nil {
		return fmt.Errorf("%w: %s bind group: %w", ErrGPUInit, m.label, err)
	}
	return nil
}

func (m *mesh) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready && !m.destroyed
}

func (m *mesh) SetCamera(c camera.Camera) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.camera = c
}

func (m *mesh) UpdateCameraTransform() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upload()
}

// upload packs the block and writes it to the uniform buffer. The caller holds mu.
func (m *mesh) upload() {
	if !m.ready || m.destroyed {
		return
	}
	m.pack()
	m.writes[0].Data = m.block.Bytes()
	writes := m.writes[:1]
	if m.stage != nil {
		writes = append(writes, m.stage()...)
	}
	m.writes = writes
	m.renderer.WriteBuffers(writes)
}

func (m *mesh) pack() {
	p := m.props
	view, proj := common.Identity(), common.Identity()
	if m.camera != nil {
		view = m.camera.ViewMatrix()
		proj = m.camera.ProjectionMatrix()
	}

	if m.hasModel {
		m.block.SetMat4("model", common.ModelMatrix(p.Position, p.Rotation, p.Scale))
		m.block.SetVec4("color", p.Color)
	}
	m.block.SetMat4("view", view)
	m.block.SetMat4("proj", proj)
	if m.hasParams {
		m.block.SetVec4Array("params", p.Params[:min(len(p.Params), m.paramCount)])
	}
	if m.fill != nil {
		m.fill(m.block)
	}
}

func (m *mesh) Run(dt time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.props.Spin == (common.Vec3{}) || !m.ready || m.destroyed {
		return
	}
	m.props.Rotation = m.props.Rotation.Add(m.props.Spin.Mul(float32(dt.Seconds())))
	m.upload()
}

func (m *mesh) Render(pass renderer.RenderPass) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready || m.destroyed {
		return
	}

	instances := uint32(1)
	if m.instances != nil {
		instances = m.instances()
	}
	if instances == 0 {
		return
	}

	pl, indices, count := m.solid, m.provider.IndexBuffer(), m.provider.IndexCount()
	if m.props.Mode == pipeline.RenderModeWireframe && m.wireframe != nil && m.provider.WireframeIndexBuffer() != nil {
		pl, indices, count = m.wireframe, m.provider.WireframeIndexBuffer(), m.provider.WireframeIndexCount()
	}

	pass.SetPipeline(pl)
	pass.SetBindGroup(0, m.provider.BindGroup())
	pass.SetVertexBuffer(0, m.provider.VertexBuffer())
	pass.SetIndexBuffer(indices, m.provider.IndexFormat())
	pass.DrawIndexed(uint32(count), instances)
}

func (m *mesh) Props() *Props {
	return m.props
}

func (m *mesh) UpdateProps(fn func(p *Props)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	fn(m.props)
	m.upload()
}

func (m *mesh) AddTween(t tween.Tween) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		t.Kill()
		return
	}
	m.tweens = append(m.tweens, t)
	m.mu.Unlock()
}

func (m *mesh) Destroy() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.destroyed = true
	m.ready = false
	tweens := m.tweens
	provider := m.provider
	m.tweens = nil
	m.provider = nil
	m.solid = nil
	m.wireframe = nil
	m.camera = nil
	m.renderer = nil
	m.writes = nil
	m.mu.Unlock()

	for _, t := range tweens {
		t.Kill()
	}
	if provider != nil {
		provider.Release()
	}
}
