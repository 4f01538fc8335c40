package object

import (
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
)

// SphereProps are the props of a Sphere. Zero values select the geometry defaults.
type SphereProps struct {
	Props
	Radius         float32
	WidthSegments  int
	HeightSegments int
}

// Sphere is a UV sphere drawn with the mesh shader.
type Sphere struct {
	*mesh
	props SphereProps
}

// NewSphere creates a sphere. It owns no GPU resources until Init.
//
// Parameters:
//   - s: a shader binding MeshUniforms at group 0, binding 0
//   - props: the initial props
//   - options: a variadic list of ObjectBuilderOption functions
//
// Returns:
//   - *Sphere: the new sphere
func NewSphere(s shader.Shader, props SphereProps, options ...ObjectBuilderOption) *Sphere {
	if props.Radius <= 0 {
		props.Radius = geometry.DefaultSphereRadius
	}
	if props.WidthSegments <= 0 {
		props.WidthSegments = geometry.DefaultSphereWidthSegments
	}
	if props.HeightSegments <= 0 {
		props.HeightSegments = geometry.DefaultSphereHeightSegments
	}
	sp := &Sphere{props: props}
	sp.mesh = newMesh("sphere", s, MeshUniforms, &sp.props.Props, options...)
	sp.geometry = func() (geometry.Geometry, error) {
		return geometry.Sphere(sp.props.Radius, sp.props.WidthSegments, sp.props.HeightSegments), nil
	}
	return sp
}

// SphereProps returns the live sphere props.
func (sp *Sphere) SphereProps() *SphereProps {
	return &sp.props
}
