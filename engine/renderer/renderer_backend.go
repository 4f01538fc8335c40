package renderer

import (
	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4; higher values are adapter-dependent.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8x multisample anti-aliasing. Adapter-dependent.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16x multisample anti-aliasing. Adapter-dependent.
	MSAA16x MSAASampleCount = 16
)

// Surface is the window-side source of a presentable surface.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// RenderPass is the draw-time seam drawables record into. One pass exists per frame.
type RenderPass interface {
	// SetPipeline binds a registered pipeline.
	//
	// Parameters:
	//   - p: a pipeline previously passed to Renderer.RegisterPipelines
	SetPipeline(p pipeline.Pipeline)

	// SetBindGroup binds a bind group at the given group index.
	//
	// Parameters:
	//   - group: the group index
	//   - bg: the bind group handle from a BindGroupProvider
	SetBindGroup(group uint32, bg common.Releaser)

	// SetVertexBuffer binds a vertex buffer to the given slot.
	//
	// Parameters:
	//   - slot: the vertex buffer slot
	//   - buf: the vertex buffer handle
	SetVertexBuffer(slot uint32, buf common.Releaser)

	// SetIndexBuffer binds an index buffer.
	//
	// Parameters:
	//   - buf: the index buffer handle
	//   - format: Uint16 or Uint32
	SetIndexBuffer(buf common.Releaser, format wgpu.IndexFormat)

	// DrawIndexed issues an indexed draw of the bound buffers.
	//
	// Parameters:
	//   - indexCount: the number of indices to draw
	//   - instanceCount: the number of instances to draw
	DrawIndexed(indexCount, instanceCount uint32)
}

// RendererBackend is the GPU API the Renderer drives. Every handle it returns is opaque to
// callers and is handed back to the same backend for binding and writes.
type RendererBackend interface {
	ConfigureSurface(width, height int)
	SetPresentMode(mode PresentMode)
	SampleCount() MSAASampleCount

	CreateRenderPipeline(p pipeline.Pipeline) (common.Releaser, error)
	CreateBuffer(label string, usage wgpu.BufferUsage, size uint64, data []byte) (common.Releaser, error)
	CreateTexture(label string, data common.TextureStagingData) (texture, view common.Releaser, err error)
	CreateSampler(label string, data common.SamplerStagingData) (common.Releaser, error)
	CreateBindGroup(label string, descriptor wgpu.BindGroupLayoutDescriptor, resources map[int]common.Releaser) (group, layout common.Releaser, err error)
	WriteBuffer(buf common.Releaser, offset uint64, data []byte)

	BeginFrame() (RenderPass, error)
	EndFrame()
	Present()
	Release()
}
