package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// ErrMissingResource is returned by InitBindGroup when a texture or sampler binding has nothing attached.
var ErrMissingResource = errors.New("renderer: binding has no resource")

type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	forceFallbackAdapter bool
	clearColor           wgpu.Color
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingPipelines     []pipeline.Pipeline

	width, height int
}

// Renderer owns the GPU backend, caches render pipelines by key, allocates per-drawable
// resources into BindGroupProviders and frames the single render pass of each frame.
type Renderer interface {
	// SampleCount returns the MSAA sample count pipelines must be created with.
	//
	// Returns:
	//   - MSAASampleCount: the active sample count
	SampleCount() MSAASampleCount

	// Size returns the current surface size in pixels.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)

	// Pipeline returns the cached pipeline with the given key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the cached pipeline or nil
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines validates and creates each pipeline on the GPU and caches it by key.
	// A key already in the cache is left alone; callers then share the cached pipeline.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: the first validation or creation failure
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// ReleasePipelines releases every cached pipeline and empties the cache.
	ReleasePipelines()

	// InitMeshBuffers uploads a geometry's vertices, triangle indices and line indices
	// into the provider.
	//
	// Parameters:
	//   - provider: the drawable's provider
	//   - g: the geometry to upload
	//
	// Returns:
	//   - error: an error if the geometry is invalid or a buffer cannot be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, g geometry.Geometry) error

	// InitBindGroup creates the buffers of every buffer binding in the descriptor that the
	// provider does not already hold, then creates the bind group. Texture and sampler
	// bindings must already be attached.
	//
	// Parameters:
	//   - provider: the drawable's provider
	//   - descriptor: the group layout, usually Pipeline.BindGroupLayoutDescriptor
	//   - bufferSizeOverrides: byte sizes by binding, replacing the layout's minimum binding size
	//
	// Returns:
	//   - error: an error if a resource is missing or creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// InitTextureView uploads pixels into a texture owned by the provider.
	//
	// Parameters:
	//   - provider: the drawable's provider
	//   - binding: the texture binding
	//   - data: RGBA8 pixels
	//
	// Returns:
	//   - error: an error if the texture cannot be created
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, data common.TextureStagingData) error

	// InitSampler creates a sampler owned by the provider.
	//
	// Parameters:
	//   - provider: the drawable's provider
	//   - binding: the sampler binding
	//   - data: the sampler configuration
	//
	// Returns:
	//   - error: an error if the sampler cannot be created
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error

	// CreateTexture uploads pixels into a texture that several providers may share.
	//
	// Parameters:
	//   - label: a debug label
	//   - data: RGBA8 pixels
	//
	// Returns:
	//   - *Texture: the texture, released by the caller
	//   - error: an error if creation fails
	CreateTexture(label string, data common.TextureStagingData) (*Texture, error)

	// WriteBuffers queues buffer writes. Writes to bindings without a buffer are skipped.
	//
	// Parameters:
	//   - writes: the writes to perform
	WriteBuffers(writes []BufferWrite)

	// BeginFrame acquires the next surface image and opens the frame's render pass,
	// clearing color and depth.
	//
	// Returns:
	//   - RenderPass: the pass drawables record into
	//   - error: an error if the surface image cannot be acquired
	BeginFrame() (RenderPass, error)

	// EndFrame closes the pass and submits it.
	EndFrame()

	// Present presents the frame's surface image.
	Present()

	// Resize reconfigures the surface and the depth and MSAA attachments.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode; it applies on the next Resize.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// Release releases every cached pipeline and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer presenting to the given surface. Adapter or device
// failures panic.
//
// Parameters:
//   - backendType: the GPU backend to create
//   - surface: the window surface; may be nil when WithBackend supplies the backend
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		clearColor:    wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
	}

	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			r.backend = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.clearColor)
		}
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	if surface != nil {
		r.Resize(surface.Width(), surface.Height())
	}

	if err := r.RegisterPipelines(r.pendingPipelines...); err != nil {
		panic(err)
	}
	r.pendingPipelines = nil
	return r
}

func (r *renderer) SampleCount() MSAASampleCount {
	return r.backend.SampleCount()
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.Key()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := p.Validate(); err != nil {
			return err
		}
		handle, err := r.backend.CreateRenderPipeline(p)
		if err != nil {
			return fmt.Errorf("failed to create render pipeline %q: %w", key, err)
		}
		p.SetHandle(handle)
		r.pipelineCache[key] = p
		logger.Debug("registered pipeline", zap.String("key", key), zap.Stringer("mode", p.Mode()))
	}
	return nil
}

func (r *renderer) ReleasePipelines() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, g geometry.Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	label := provider.Label()

	vertexData := g.VertexBytes()
	vb, err := r.backend.CreateBuffer(label+" Vertex Buffer", wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, uint64(len(vertexData)), vertexData)
	if err != nil {
		return err
	}

	indexData := g.IndexBytes()
	ib, err := r.backend.CreateBuffer(label+" Index Buffer", wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, uint64(len(indexData)), indexData)
	if err != nil {
		vb.Release()
		return err
	}

	var wb common.Releaser
	if len(g.WireframeIndices) > 0 {
		wireData := g.WireframeIndexBytes()
		wb, err = r.backend.CreateBuffer(label+" Wireframe Index Buffer", wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, uint64(len(wireData)), wireData)
		if err != nil {
			vb.Release()
			ib.Release()
			return err
		}
	}

	provider.SetMeshBuffers(vb, ib, wb, len(g.Indices), len(g.WireframeIndices), g.IndexFormat())
	return nil
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	if len(descriptor.Entries) == 0 {
		return nil
	}

	resources := make(map[int]common.Releaser, len(descriptor.Entries))
	for _, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("%w: texture binding %d of %s, call InitTextureView first", ErrMissingResource, binding, provider.Label())
			}
			resources[binding] = tv
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			s := provider.Sampler(binding)
			if s == nil {
				return fmt.Errorf("%w: sampler binding %d of %s, call InitSampler first", ErrMissingResource, binding, provider.Label())
			}
			resources[binding] = s
		default:
			buf := provider.Buffer(binding)
			if buf == nil {
				var usage wgpu.BufferUsage
				switch entry.Buffer.Type {
				case wgpu.BufferBindingTypeUniform:
					usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
				case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
					usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
				}
				size := entry.Buffer.MinBindingSize
				if override, ok := bufferSizeOverrides[binding]; ok {
					size = override
				}
				if size == 0 {
					return fmt.Errorf("buffer binding %d of %s has no size", binding, provider.Label())
				}
				var err error
				buf, err = r.backend.CreateBuffer(fmt.Sprintf("%s Buffer %d", provider.Label(), binding), usage, size, nil)
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			resources[binding] = buf
		}
	}

	group, layout, err := r.backend.CreateBindGroup(provider.Label()+" Bind Group", descriptor, resources)
	if err != nil {
		return err
	}
	provider.SetBindGroupLayout(layout)
	provider.SetBindGroup(group)
	return nil
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, data common.TextureStagingData) error {
	tex, view, err := r.backend.CreateTexture(provider.Label()+" Texture", data)
	if err != nil {
		return err
	}
	provider.SetTexture(binding, tex, view)
	return nil
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, data common.SamplerStagingData) error {
	s, err := r.backend.CreateSampler(provider.Label()+" Sampler", data)
	if err != nil {
		return err
	}
	provider.SetSampler(binding, s)
	return nil
}

func (r *renderer) CreateTexture(label string, data common.TextureStagingData) (*Texture, error) {
	tex, view, err := r.backend.CreateTexture(label, data)
	if err != nil {
		return nil, err
	}
	return &Texture{Width: data.Width, Height: data.Height, texture: tex, view: view}, nil
}

func (r *renderer) WriteBuffers(writes []BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		r.backend.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (r *renderer) BeginFrame() (RenderPass, error) {
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.ReleasePipelines()
	r.backend.Release()
}
