package bind_group_provider

import (
	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources populated by the Renderer during initialization.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized with the Renderer.
	bindGroup common.Releaser
	// bindGroupLayout is the GPU bind group layout created for this provider.
	bindGroupLayout common.Releaser
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	buffers map[int]common.Releaser
	// textureViews holds the GPU texture views bound by this provider, keyed by binding index.
	textureViews map[int]common.Releaser
	// samplers holds the GPU samplers bound by this provider, keyed by binding index.
	samplers map[int]common.Releaser
	// shared marks texture views and samplers owned by someone else, keyed by the handle itself.
	shared map[common.Releaser]bool
	// textures holds the backing textures of owned texture views, released after their views.
	textures []common.Releaser

	// Mesh buffers. A provider drawing in both render modes carries two index buffers over one vertex buffer.

	vertexBuffer         common.Releaser
	indexBuffer          common.Releaser
	wireframeIndexBuffer common.Releaser
	indexCount           int
	wireframeIndexCount  int
	indexFormat          wgpu.IndexFormat

	released bool
}

// BindGroupProvider holds the GPU resources of a single drawable: its mesh buffers, its
// uniform (and storage) buffers, texture views, samplers and the bind group wiring them.
//
// Usage pattern:
//  1. Drawable creates a BindGroupProvider with a label
//  2. Renderer.InitMeshBuffers uploads geometry into it
//  3. Renderer.InitTextureView / InitSampler attach sampled resources when the layout needs them
//  4. Renderer.InitBindGroup creates the buffers and bind group for the pipeline's group 0 layout
//  5. Renderer.WriteBuffers updates uniform data; the drawable binds BindGroup() in its draw call
//  6. Release frees everything the provider owns
type BindGroupProvider interface {
	// Release releases every GPU resource owned by this provider. Shared texture views and
	// samplers are dropped without being released. Safe to call more than once.
	Release()

	// Released reports whether Release has been called.
	//
	// Returns:
	//   - bool: true once released
	Released() bool

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding, or nil before InitBindGroup.
	//
	// Returns:
	//   - common.Releaser: the bind group or nil
	BindGroup() common.Releaser

	// BindGroupLayout returns the created bind group layout for this provider, or nil.
	//
	// Returns:
	//   - common.Releaser: the bind group layout or nil
	BindGroupLayout() common.Releaser

	// Buffer returns the buffer bound at the given binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - common.Releaser: the buffer or nil
	Buffer(binding int) common.Releaser

	// TextureView returns the texture view bound at the given binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - common.Releaser: the texture view or nil
	TextureView(binding int) common.Releaser

	// Sampler returns the sampler bound at the given binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - common.Releaser: the sampler or nil
	Sampler(binding int) common.Releaser

	// VertexBuffer returns the GPU vertex buffer, or nil if not initialized.
	//
	// Returns:
	//   - common.Releaser: the vertex buffer or nil
	VertexBuffer() common.Releaser

	// IndexBuffer returns the triangle-list index buffer, or nil if not initialized.
	//
	// Returns:
	//   - common.Releaser: the index buffer or nil
	IndexBuffer() common.Releaser

	// WireframeIndexBuffer returns the line-list index buffer, or nil if not initialized.
	//
	// Returns:
	//   - common.Releaser: the wireframe index buffer or nil
	WireframeIndexBuffer() common.Releaser

	// IndexCount returns the number of triangle-list indices.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// WireframeIndexCount returns the number of line-list indices.
	//
	// Returns:
	//   - int: the wireframe index count
	WireframeIndexCount() int

	// IndexFormat returns the format of both index buffers.
	//
	// Returns:
	//   - wgpu.IndexFormat: Uint16 or Uint32
	IndexFormat() wgpu.IndexFormat

	// SetBindGroup sets the bind group after GPU initialization.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg common.Releaser)

	// SetBindGroupLayout sets the bind group layout after GPU initialization.
	//
	// Parameters:
	//   - bgl: the created bind group layout
	SetBindGroupLayout(bgl common.Releaser)

	// SetBuffer stores a buffer for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf common.Releaser)

	// SetTexture stores an owned texture view for a binding together with its backing texture.
	//
	// Parameters:
	//   - binding: the binding index
	//   - texture: the backing texture, may be nil
	//   - view: the texture view
	SetTexture(binding int, texture, view common.Releaser)

	// SetSharedTextureView stores a texture view owned elsewhere; Release will not free it.
	//
	// Parameters:
	//   - binding: the binding index
	//   - view: the shared texture view
	SetSharedTextureView(binding int, view common.Releaser)

	// SetSampler stores an owned sampler for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding int, s common.Releaser)

	// SetSharedSampler stores a sampler owned elsewhere; Release will not free it.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the shared sampler
	SetSharedSampler(binding int, s common.Releaser)

	// SetMeshBuffers stores the buffers created by InitMeshBuffers.
	//
	// Parameters:
	//   - vertex: the vertex buffer
	//   - index: the triangle-list index buffer
	//   - wireframe: the line-list index buffer, may be nil
	//   - indexCount: the triangle-list index count
	//   - wireframeCount: the line-list index count
	//   - format: the index format of both index buffers
	SetMeshBuffers(vertex, index, wireframe common.Releaser, indexCount, wireframeCount int, format wgpu.IndexFormat)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: a debug label used for GPU object labels
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]common.Releaser),
		textureViews: make(map[int]common.Releaser),
		samplers:     make(map[int]common.Releaser),
		shared:       make(map[common.Releaser]bool),
		indexFormat:  wgpu.IndexFormatUint16,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Released() bool {
	return p.released
}

func (p *bindGroupProvider) BindGroup() common.Releaser {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() common.Releaser {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) common.Releaser {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) common.Releaser {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) common.Releaser {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() common.Releaser {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() common.Releaser {
	return p.indexBuffer
}

func (p *bindGroupProvider) WireframeIndexBuffer() common.Releaser {
	return p.wireframeIndexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) WireframeIndexCount() int {
	return p.wireframeIndexCount
}

func (p *bindGroupProvider) IndexFormat() wgpu.IndexFormat {
	return p.indexFormat
}

func (p *bindGroupProvider) SetBindGroup(bg common.Releaser) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl common.Releaser) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf common.Releaser) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTexture(binding int, texture, view common.Releaser) {
	p.textureViews[binding] = view
	if texture != nil {
		p.textures = append(p.textures, texture)
	}
}

func (p *bindGroupProvider) SetSharedTextureView(binding int, view common.Releaser) {
	p.textureViews[binding] = view
	p.shared[view] = true
}

func (p *bindGroupProvider) SetSampler(binding int, s common.Releaser) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetSharedSampler(binding int, s common.Releaser) {
	p.samplers[binding] = s
	p.shared[s] = true
}

func (p *bindGroupProvider) SetMeshBuffers(vertex, index, wireframe common.Releaser, indexCount, wireframeCount int, format wgpu.IndexFormat) {
	p.vertexBuffer = vertex
	p.indexBuffer = index
	p.wireframeIndexBuffer = wireframe
	p.indexCount = indexCount
	p.wireframeIndexCount = wireframeCount
	p.indexFormat = format
}

func (p *bindGroupProvider) Release() {
	if p.released {
		return
	}
	p.released = true

	// The bind group references everything below it, so it goes first.
	release(&p.bindGroup)
	release(&p.bindGroupLayout)

	for i, tv := range p.textureViews {
		if tv != nil && !p.shared[tv] {
			tv.Release()
		}
		delete(p.textureViews, i)
	}
	for _, tex := range p.textures {
		tex.Release()
	}
	p.textures = nil
	for i, s := range p.samplers {
		if s != nil && !p.shared[s] {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	clear(p.shared)

	release(&p.vertexBuffer)
	release(&p.indexBuffer)
	release(&p.wireframeIndexBuffer)
	p.indexCount, p.wireframeIndexCount = 0, 0
}

func release(r *common.Releaser) {
	if *r != nil {
		(*r).Release()
		*r = nil
	}
}
