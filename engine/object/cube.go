package object

import (
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
)

// CubeProps are the props of a Cube. Subdivisions splits every face into an n*n grid of
// quads; zero selects geometry.DefaultCubeSubdivisions.
type CubeProps struct {
	Props
	Subdivisions int
}

// Cube is a subdivided unit cube drawn with the mesh shader.
type Cube struct {
	*mesh
	props CubeProps
}

// NewCube creates a cube. It owns no GPU resources until Init.
//
// Parameters:
//   - s: a shader binding MeshUniforms at group 0, binding 0
//   - props: the initial props
//   - options: a variadic list of ObjectBuilderOption functions
//
// Returns:
//   - *Cube: the new cube
func NewCube(s shader.Shader, props CubeProps, options ...ObjectBuilderOption) *Cube {
	if props.Subdivisions <= 0 {
		props.Subdivisions = geometry.DefaultCubeSubdivisions
	}
	c := &Cube{props: props}
	c.mesh = newMesh("cube", s, MeshUniforms, &c.props.Props, options...)
	c.geometry = func() (geometry.Geometry, error) {
		return geometry.Cube(c.props.Subdivisions), nil
	}
	return c
}

// CubeProps returns the live cube props.
func (c *Cube) CubeProps() *CubeProps {
	return &c.props
}
