// Package rendertest provides a recording fake of the renderer backend so drawables, scenes
// and the engine can be exercised without a GPU.
package rendertest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Handle is a fake GPU object. It counts its releases.
type Handle struct {
	Kind  string
	Label string
	Size  uint64
	Usage wgpu.BufferUsage

	mu       sync.Mutex
	released int
}

func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released++
}

// Released returns how many times Release was called.
func (h *Handle) Released() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

func (h *Handle) String() string {
	return fmt.Sprintf("%s(%s)", h.Kind, h.Label)
}

// Write is one recorded buffer write.
type Write struct {
	Buffer *Handle
	Offset uint64
	Data   []byte
}

// Draw is one recorded DrawIndexed call with the state bound at the time.
type Draw struct {
	Pipeline      pipeline.Pipeline
	BindGroup     common.Releaser
	VertexBuffer  common.Releaser
	IndexBuffer   common.Releaser
	IndexFormat   wgpu.IndexFormat
	IndexCount    uint32
	InstanceCount uint32
}

// Pass records the commands of one frame.
type Pass struct {
	Draws []Draw

	pipeline     pipeline.Pipeline
	bindGroup    common.Releaser
	vertexBuffer common.Releaser
	indexBuffer  common.Releaser
	indexFormat  wgpu.IndexFormat
}

var _ renderer.RenderPass = &Pass{}

// NewPass returns an empty pass for driving Render directly.
func NewPass() *Pass {
	return &Pass{}
}

func (p *Pass) SetPipeline(pl pipeline.Pipeline) {
	p.pipeline = pl
}

func (p *Pass) SetBindGroup(group uint32, bg common.Releaser) {
	if group == 0 {
		p.bindGroup = bg
	}
}

func (p *Pass) SetVertexBuffer(slot uint32, buf common.Releaser) {
	if slot == 0 {
		p.vertexBuffer = buf
	}
}

func (p *Pass) SetIndexBuffer(buf common.Releaser, format wgpu.IndexFormat) {
	p.indexBuffer = buf
	p.indexFormat = format
}

func (p *Pass) DrawIndexed(indexCount, instanceCount uint32) {
	p.Draws = append(p.Draws, Draw{
		Pipeline:      p.pipeline,
		BindGroup:     p.bindGroup,
		VertexBuffer:  p.vertexBuffer,
		IndexBuffer:   p.indexBuffer,
		IndexFormat:   p.indexFormat,
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
	})
}

// Backend is a recording renderer.RendererBackend. Set the *Err fields to make the
// matching creation call fail.
type Backend struct {
	mu *sync.Mutex

	PipelineErr  error
	BufferErr    error
	TextureErr   error
	BindGroupErr error

	Samples     renderer.MSAASampleCount
	Width       int
	Height      int
	PresentMode renderer.PresentMode

	Pipelines  []*Handle
	Buffers    []*Handle
	Textures   []*Handle
	Samplers   []*Handle
	BindGroups []*Handle
	Writes     []Write
	Frames     []*Pass

	Presented int
	Closed    bool

	current *Pass
}

var _ renderer.RendererBackend = &Backend{}

// NewBackend returns a fake backend reporting 4x MSAA.
func NewBackend() *Backend {
	return &Backend{mu: &sync.Mutex{}, Samples: renderer.MSAA4x}
}

// NewRenderer returns a Renderer driving a fresh fake backend, sized 800x600.
func NewRenderer(options ...renderer.RendererBuilderOption) (renderer.Renderer, *Backend) {
	b := NewBackend()
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, nil, append([]renderer.RendererBuilderOption{renderer.WithBackend(b)}, options...)...)
	r.Resize(800, 600)
	return r, b
}

func (b *Backend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Width, b.Height = width, height
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PresentMode = mode
}

func (b *Backend) SampleCount() renderer.MSAASampleCount {
	return b.Samples
}

func (b *Backend) CreateRenderPipeline(p pipeline.Pipeline) (common.Releaser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PipelineErr != nil {
		return nil, b.PipelineErr
	}
	h := &Handle{Kind: "pipeline", Label: p.Key()}
	b.Pipelines = append(b.Pipelines, h)
	return h, nil
}

func (b *Backend) CreateBuffer(label string, usage wgpu.BufferUsage, size uint64, data []byte) (common.Releaser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.BufferErr != nil {
		return nil, b.BufferErr
	}
	h := &Handle{Kind: "buffer", Label: label, Size: size, Usage: usage}
	b.Buffers = append(b.Buffers, h)
	if len(data) > 0 {
		b.Writes = append(b.Writes, Write{Buffer: h, Data: append([]byte(nil), data...)})
	}
	return h, nil
}

func (b *Backend) CreateTexture(label string, data common.TextureStagingData) (common.Releaser, common.Releaser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.TextureErr != nil {
		return nil, nil, b.TextureErr
	}
	tex := &Handle{Kind: "texture", Label: label, Size: uint64(len(data.Pixels))}
	view := &Handle{Kind: "texture-view", Label: label}
	b.Textures = append(b.Textures, tex, view)
	return tex, view, nil
}

func (b *Backend) CreateSampler(label string, _ common.SamplerStagingData) (common.Releaser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.TextureErr != nil {
		return nil, b.TextureErr
	}
	h := &Handle{Kind: "sampler", Label: label}
	b.Samplers = append(b.Samplers, h)
	return h, nil
}

func (b *Backend) CreateBindGroup(label string, _ wgpu.BindGroupLayoutDescriptor, _ map[int]common.Releaser) (common.Releaser, common.Releaser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.BindGroupErr != nil {
		return nil, nil, b.BindGroupErr
	}
	group := &Handle{Kind: "bind-group", Label: label}
	layout := &Handle{Kind: "bind-group-layout", Label: label}
	b.BindGroups = append(b.BindGroups, group, layout)
	return group, layout, nil
}

func (b *Backend) WriteBuffer(buf common.Releaser, offset uint64, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, _ := buf.(*Handle)
	b.Writes = append(b.Writes, Write{Buffer: h, Offset: offset, Data: append([]byte(nil), data...)})
}

func (b *Backend) BeginFrame() (renderer.RenderPass, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil {
		return nil, fmt.Errorf("previous frame not ended")
	}
	b.current = NewPass()
	return b.current, nil
}

func (b *Backend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current != nil {
		b.Frames = append(b.Frames, b.current)
		b.current = nil
	}
}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Presented++
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closed = true
}

// LastFrame returns the most recently ended frame, or nil.
func (b *Backend) LastFrame() *Pass {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Frames) == 0 {
		return nil
	}
	return b.Frames[len(b.Frames)-1]
}

// WritesTo returns the recorded writes targeting buf.
func (b *Backend) WritesTo(buf common.Releaser) []Write {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Write
	for _, w := range b.Writes {
		if common.Releaser(w.Buffer) == buf {
			out = append(out, w)
		}
	}
	return out
}

// Live counts created handles of every kind that have not been released.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, group := range [][]*Handle{b.Pipelines, b.Buffers, b.Textures, b.Samplers, b.BindGroups} {
		for _, h := range group {
			if h.Released() == 0 {
				n++
			}
		}
	}
	return n
}
