package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Binding slots shared by every drawable shader in group 0.
const (
	UniformBinding  = 0
	InstanceBinding = 1
	SamplerBinding  = 1
	TextureBinding  = 2
)

// ErrInvalidPipeline is returned by Validate when a pipeline cannot be built from its shader.
var ErrInvalidPipeline = errors.New("pipeline: invalid configuration")

// pipeline is the implementation of the Pipeline interface.
// It holds the render state used to create the GPU pipeline and the GPU handle once created.
type pipeline struct {
	key    string
	shader shader.Shader
	mode   RenderMode

	fragmentEntry string
	instanced     bool

	// handle is the GPU render pipeline, set by the renderer on registration.
	handle common.Releaser

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	depthBiasClamp      float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline describes a render pipeline built from one WGSL module: its entry points,
// fixed vertex layout, depth, cull, blend and topology state, and the GPU handle once
// the renderer has created it.
type Pipeline interface {
	// Key returns the unique key of this pipeline, used for labels and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	Key() string

	// Shader returns the WGSL module the pipeline is built from.
	//
	// Returns:
	//   - shader.Shader: the shader module
	Shader() shader.Shader

	// Mode returns the render mode this pipeline draws.
	//
	// Returns:
	//   - RenderMode: solid or wireframe
	Mode() RenderMode

	// VertexEntryPoint returns the vertex function name.
	//
	// Returns:
	//   - string: the vertex entry point
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment function name.
	//
	// Returns:
	//   - string: the fragment entry point
	FragmentEntryPoint() string

	// VertexLayout returns the vertex buffer layout: stride 24, position at location 0
	// offset 0 and normal at location 1 offset 12.
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: the vertex layout
	VertexLayout() wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptor returns the layout of bind group 0.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the group 0 layout
	BindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor

	// Instanced reports whether the pipeline reads a per-instance storage buffer at InstanceBinding.
	//
	// Returns:
	//   - bool: true for the instanced variant
	Instanced() bool

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthBias returns the constant depth bias configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// DepthBiasClamp returns the maximum depth bias configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias clamp for this pipeline
	DepthBiasClamp() float32

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil if blending is not enabled
	BlendState() *wgpu.BlendState

	// Validate checks that the shader provides the entry points, vertex inputs and bindings
	// this pipeline needs.
	//
	// Returns:
	//   - error: nil if valid, otherwise an error wrapping ErrInvalidPipeline
	Validate() error

	// Handle returns the GPU pipeline, or nil before registration.
	//
	// Returns:
	//   - common.Releaser: the GPU pipeline handle
	Handle() common.Releaser

	// SetHandle stores the GPU pipeline created by the renderer.
	//
	// Parameters:
	//   - h: the GPU pipeline handle
	SetHandle(h common.Releaser)

	// Release frees the GPU pipeline. Safe to call more than once.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a triangle-list pipeline with depth test and write enabled, no culling
// and counter-clockwise front faces, then applies the options.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - s: the WGSL module providing both stages
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(key string, s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:               key,
		shader:            s,
		mode:              RenderModeSolid,
		fragmentEntry:     SolidFragmentEntryPoint,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewMeshPipeline creates the solid or wireframe variant of a drawable pipeline.
// Solid draws a back-face culled triangle list through fs_main. Wireframe draws a line
// list with culling disabled through fs_wireframe and never carries a depth bias.
//
// Parameters:
//   - key: the unique key for this pipeline; the mode is appended
//   - s: the WGSL module providing vs_main, fs_main and fs_wireframe
//   - mode: the variant to build
//   - opts: further options, applied after the mode defaults
//
// Returns:
//   - Pipeline: the configured pipeline
func NewMeshPipeline(key string, s shader.Shader, mode RenderMode, opts ...PipelineBuilderOption) Pipeline {
	base := []PipelineBuilderOption{withMode(mode)}
	if mode == RenderModeWireframe {
		base = append(base, WithTopology(wgpu.PrimitiveTopologyLineList), WithCullMode(wgpu.CullModeNone))
	} else {
		base = append(base, WithTopology(wgpu.PrimitiveTopologyTriangleList), WithCullMode(wgpu.CullModeBack))
	}

	p := NewPipeline(key+"/"+mode.String(), s, append(base, opts...)...).(*pipeline)
	if mode == RenderModeWireframe {
		p.depthBias, p.depthBiasSlopeScale, p.depthBiasClamp = 0, 0, 0
	}
	return p
}

// MeshVertexLayout returns the vertex layout of geometry.Geometry vertices.
func MeshVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: geometry.VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: geometry.NormalOffset, ShaderLocation: 1},
		},
	}
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Mode() RenderMode {
	return p.mode
}

func (p *pipeline) VertexEntryPoint() string {
	return p.shader.VertexEntryPoint()
}

func (p *pipeline) FragmentEntryPoint() string {
	return p.fragmentEntry
}

func (p *pipeline) VertexLayout() wgpu.VertexBufferLayout {
	return MeshVertexLayout()
}

func (p *pipeline) BindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	desc := p.shader.BindGroupLayoutDescriptor(0)
	desc.Label = p.key
	return desc
}

func (p *pipeline) Instanced() bool {
	return p.instanced
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) DepthBiasClamp() float32 {
	return p.depthBiasClamp
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	if !p.blendEnabled {
		return nil
	}
	return p.blendState
}

func (p *pipeline) Validate() error {
	if p.shader == nil {
		return fmt.Errorf("%w: %s has no shader", ErrInvalidPipeline, p.key)
	}
	if p.shader.VertexEntryPoint() == "" {
		return fmt.Errorf("%w: %s has no vertex entry point", ErrInvalidPipeline, p.key)
	}
	if !p.shader.HasFragmentEntryPoint(p.fragmentEntry) {
		return fmt.Errorf("%w: %s needs fragment entry point %q, shader %s has %v",
			ErrInvalidPipeline, p.key, p.fragmentEntry, p.shader.Key(), p.shader.FragmentEntryPoints())
	}

	if layout, ok := p.shader.VertexLayout(); ok {
		want := MeshVertexLayout()
		if layout.ArrayStride != want.ArrayStride || len(layout.Attributes) != len(want.Attributes) {
			return fmt.Errorf("%w: %s vertex input has stride %d with %d attributes, geometry provides stride %d with %d",
				ErrInvalidPipeline, p.key, layout.ArrayStride, len(layout.Attributes), want.ArrayStride, len(want.Attributes))
		}
	}

	entries := p.shader.BindGroupLayoutDescriptor(0).Entries
	hasStorage := false
	for _, e := range entries {
		if e.Binding == InstanceBinding && e.Buffer.Type == wgpu.BufferBindingTypeReadOnlyStorage {
			hasStorage = true
		}
	}
	if p.instanced && !hasStorage {
		return fmt.Errorf("%w: instanced %s needs a read-only storage buffer at @binding(%d)",
			ErrInvalidPipeline, p.key, InstanceBinding)
	}
	return nil
}

func (p *pipeline) Handle() common.Releaser {
	return p.handle
}

func (p *pipeline) SetHandle(h common.Releaser) {
	p.handle = h
}

func (p *pipeline) Release() {
	if p.handle != nil {
		p.handle.Release()
		p.handle = nil
	}
}
