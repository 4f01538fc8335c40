package object

import (
	"fmt"

	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/uniform"
	"github.com/chewxy/math32"
)

const (
	// DefaultTorusDepthOffset pushes the solid pass back so a wireframe overlay wins the depth test.
	DefaultTorusDepthOffset = 10

	// TorusDepthBiasSlope is the slope-scaled depth bias of the solid pass.
	TorusDepthBiasSlope = 1.0
)

// TorusProps are the props of a Torus. A zero Shape selects geometry.DefaultTorusParams.
// DepthOffset sets the solid pass depth bias to floor(DepthOffset*1000); zero selects
// DefaultTorusDepthOffset and a negative value disables the bias.
type TorusProps struct {
	Props
	Shape       geometry.TorusParams
	DepthOffset float32
}

// Torus is a ring drawn with the torus shader. The shape actually used, after the
// self-intersection clamp, is written back to its props on Init.
type Torus struct {
	*mesh
	props TorusProps
}

// NewTorus creates a torus. It owns no GPU resources until Init.
//
// Parameters:
//   - s: a shader binding TorusUniforms at group 0, binding 0
//   - props: the initial props
//   - options: a variadic list of ObjectBuilderOption functions
//
// Returns:
//   - *Torus: the new torus
func NewTorus(s shader.Shader, props TorusProps, options ...ObjectBuilderOption) *Torus {
	if props.Shape == (geometry.TorusParams{}) {
		props.Shape = geometry.DefaultTorusParams()
	}
	if props.DepthOffset == 0 {
		props.DepthOffset = DefaultTorusDepthOffset
	}

	t := &Torus{props: props}
	var biasOpts []ObjectBuilderOption
	if bias := TorusDepthBias(props.DepthOffset); bias != 0 && s != nil {
		biasOpts = append(biasOpts,
			WithPipelineKey(fmt.Sprintf("%s/bias%d", s.Key(), bias)),
			WithSolidPipelineOptions(pipeline.WithDepthBias(bias, TorusDepthBiasSlope, 0)),
		)
	}
	t.mesh = newMesh("torus", s, TorusUniforms, &t.props.Props, append(biasOpts, options...)...)
	t.geometry = func() (geometry.Geometry, error) {
		g, used := geometry.Torus(t.props.Shape)
		t.props.Shape = used
		return g, nil
	}
	t.fill = func(b *uniform.Block) {
		sh := t.props.Shape
		b.SetVec4("torus", [4]float32{sh.MajorRadius, sh.MinorRadius, float32(sh.MajorSegments), float32(sh.MinorSegments)})
	}
	return t
}

// TorusDepthBias converts a depth offset into the integer depth bias of the solid pass.
func TorusDepthBias(offset float32) int32 {
	if offset <= 0 {
		return 0
	}
	return int32(math32.Floor(offset * 1000))
}

// TorusProps returns the live torus props.
func (t *Torus) TorusProps() *TorusProps {
	return &t.props
}
