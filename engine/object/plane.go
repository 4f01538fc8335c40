package object

import (
	"fmt"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/uniform"
)

// PlaneProps are the props of a Plane. UseTexture multiplies the color by the bound texture.
type PlaneProps struct {
	Props
	UseTexture bool
}

// Plane is a textured quad. It has a single solid pipeline and always draws six indices.
type Plane struct {
	*mesh
	props PlaneProps

	pixels  *common.TextureStagingData
	shared  *renderer.Texture
	sampler common.SamplerStagingData
}

// NewPlane creates a plane. Without a texture it binds a 1x1 white one.
//
// Parameters:
//   - s: a shader binding PlaneUniforms, a sampler and a 2D texture at group 0
//   - props: the initial props
//   - options: a variadic list of ObjectBuilderOption functions
//
// Returns:
//   - *Plane: the new plane
func NewPlane(s shader.Shader, props PlaneProps, options ...ObjectBuilderOption) *Plane {
	p := &Plane{props: props}
	p.mesh = newMesh("plane", s, PlaneUniforms, &p.props.Props, options...)
	p.solidOnly = true
	p.geometry = func() (geometry.Geometry, error) {
		return geometry.Plane(), nil
	}
	p.fill = func(b *uniform.Block) {
		var flag float32
		if p.props.UseTexture {
			flag = 1
		}
		b.SetVec4("flags", [4]float32{flag, 0, 0, 0})
	}
	p.attach = p.attachTexture
	return p
}

// SetTexture gives the plane its own texture, uploaded on Init and released on Destroy.
// It has no effect after Init.
func (p *Plane) SetTexture(data common.TextureStagingData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pixels = &data
	p.shared = nil
}

// ShareTexture binds a texture owned by the caller. The caller must keep it alive until
// the plane is destroyed. It has no effect after Init.
func (p *Plane) ShareTexture(t *renderer.Texture) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shared = t
	p.pixels = nil
}

// SetSampler configures the sampler created on Init.
func (p *Plane) SetSampler(data common.SamplerStagingData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sampler = data
}

func (p *Plane) attachTexture(r renderer.Renderer, provider bind_group_provider.BindGroupProvider) error {
	switch {
	case p.shared != nil && p.shared.View() != nil:
		provider.SetSharedTextureView(pipeline.TextureBinding, p.shared.View())
	case p.pixels != nil:
		if err := r.InitTextureView(provider, pipeline.TextureBinding, *p.pixels); err != nil {
			return fmt.Errorf("%w: %s texture: %w", ErrGPUInit, p.label, err)
		}
	default:
		if err := r.InitTextureView(provider, pipeline.TextureBinding, common.SolidTexture(255, 255, 255, 255)); err != nil {
			return fmt.Errorf("%w: %s texture: %w", ErrGPUInit, p.label, err)
		}
	}
	if err := r.InitSampler(provider, pipeline.SamplerBinding, p.sampler); err != nil {
		return fmt.Errorf("%w: %s sampler: %w", ErrGPUInit, p.label, err)
	}
	return nil
}

// PlaneProps returns the live plane props.
func (p *Plane) PlaneProps() *PlaneProps {
	return &p.props
}
