package object

import (
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/uniform"
)

// DefaultGridSize is the cell count used when GridProps.GridSize is not positive.
const DefaultGridSize = 32

// GridProps are the props of a Grid. The grid shader splits the quad into GridSize*GridSize
// cells separated by GridSpace (a fraction of a cell), painting about half of them with
// ActiveColor and the rest with Color.
type GridProps struct {
	Props
	GridSize    float32
	GridSpace   float32
	ActiveColor [4]float32
}

// Grid is a quad shaded as a procedural pixel grid. Like Plane it has a single solid pipeline.
type Grid struct {
	*mesh
	props GridProps
}

// NewGrid creates a grid.
//
// Parameters:
//   - s: a shader binding GridUniforms at group 0, binding 0
//   - props: the initial props
//   - options: a variadic list of ObjectBuilderOption functions
//
// Returns:
//   - *Grid: the new grid
func NewGrid(s shader.Shader, props GridProps, options ...ObjectBuilderOption) *Grid {
	if props.GridSize <= 0 {
		props.GridSize = DefaultGridSize
	}
	g := &Grid{props: props}
	g.mesh = newMesh("grid", s, GridUniforms, &g.props.Props, options...)
	g.solidOnly = true
	g.geometry = func() (geometry.Geometry, error) {
		return geometry.Plane(), nil
	}
	g.fill = func(b *uniform.Block) {
		b.SetVec4("activeColor", g.props.ActiveColor)
		b.SetVec4("grid", [4]float32{g.props.GridSize, g.props.GridSpace, 0, 0})
	}
	return g
}

// GridProps returns the live grid props.
func (g *Grid) GridProps() *GridProps {
	return &g.props
}

// UpdateGridProps applies fn to the grid props and re-uploads the block.
func (g *Grid) UpdateGridProps(fn func(p *GridProps)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return
	}
	fn(&g.props)
	g.upload()
}

// UpdateGridSpace sets the gap between cells.
func (g *Grid) UpdateGridSpace(space float32) {
	g.UpdateGridProps(func(p *GridProps) { p.GridSpace = space })
}

// UpdateGridColor sets the active cell color.
func (g *Grid) UpdateGridColor(c [4]float32) {
	g.UpdateGridProps(func(p *GridProps) { p.ActiveColor = c })
}
