package object

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/loader"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
)

// ModelProps are the props of a Model.
type ModelProps struct {
	Props

	// Path is the .gltf or .glb file Load reads.
	Path string

	// UseMaterialColor replaces Color with the base color of the first material on Load.
	UseMaterialColor bool

	// Normalize recenters the geometry on the origin and scales it to a unit bounding sphere.
	Normalize bool
}

// Model draws a mesh parsed from a glTF or GLB file. Load must succeed before Init.
type Model struct {
	*mesh
	props ModelProps

	loader loader.Loader
	parsed *loader.Mesh
}

var _ Loadable = &Model{}

// NewModel creates a model that reads props.Path on Load.
//
// Parameters:
//   - s: a shader binding ModelUniforms at group 0, binding 0
//   - l: the loader parsing and caching the file; nil creates a private glTF loader
//   - props: the initial props
//   - options: a variadic list of ObjectBuilderOption functions
//
// Returns:
//   - *Model: the new model
func NewModel(s shader.Shader, l loader.Loader, props ModelProps, options ...ObjectBuilderOption) *Model {
	if l == nil {
		l = loader.NewLoader(loader.BackendTypeGLTF)
	}
	m := &Model{props: props, loader: l}
	m.mesh = newMesh("model", s, ModelUniforms, &m.props.Props, options...)
	m.geometry = m.buildGeometry
	return m
}

// NewModelFromMesh creates a model around an already parsed mesh. Load is a no-op.
//
// Parameters:
//   - s: a shader binding ModelUniforms at group 0, binding 0
//   - parsed: the mesh, shared and never mutated
//   - props: the initial props
//   - options: a variadic list of ObjectBuilderOption functions
//
// Returns:
//   - *Model: the new model
func NewModelFromMesh(s shader.Shader, parsed *loader.Mesh, props ModelProps, options ...ObjectBuilderOption) *Model {
	m := NewModel(s, loader.NewLoader(loader.BackendTypeGLTF), props, options...)
	m.adopt(parsed)
	return m
}

// Load parses props.Path. Calling it again after a successful load does nothing.
func (m *Model) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDestroyed, m.label)
	}
	if m.parsed != nil {
		m.mu.Unlock()
		return nil
	}
	path := m.props.Path
	m.mu.Unlock()

	if path == "" {
		return fmt.Errorf("%w: %s has no path", ErrAssetLoad, m.label)
	}
	parsed, err := m.loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAssetLoad, m.label, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return fmt.Errorf("%w: %s", ErrDestroyed, m.label)
	}
	m.adoptLocked(parsed)
	return nil
}

// Mesh returns the parsed mesh, or nil before Load.
func (m *Model) Mesh() *loader.Mesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parsed
}

// ModelProps returns the live model props.
func (m *Model) ModelProps() *ModelProps {
	return &m.props
}

func (m *Model) adopt(parsed *loader.Mesh) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adoptLocked(parsed)
}

func (m *Model) adoptLocked(parsed *loader.Mesh) {
	if parsed == nil {
		return
	}
	m.parsed = parsed
	if m.props.UseMaterialColor {
		m.props.Color = parsed.BaseColor
	}
}

// buildGeometry runs under mu from Init.
func (m *Model) buildGeometry() (geometry.Geometry, error) {
	if m.parsed == nil {
		return geometry.Geometry{}, fmt.Errorf("%w: %s initialized before load", ErrAssetLoad, m.label)
	}
	g := m.parsed.Geometry
	if !m.props.Normalize {
		return g, nil
	}

	center, radius := m.parsed.Center(), m.parsed.Radius()
	if radius <= 0 {
		radius = 1
	}
	vertices := make([]float32, len(g.Vertices))
	copy(vertices, g.Vertices)
	for i := 0; i+geometry.FloatsPerVertex <= len(vertices); i += geometry.FloatsPerVertex {
		for j := 0; j < 3; j++ {
			vertices[i+j] = (vertices[i+j] - center[j]) / radius
		}
	}
	g.Vertices = vertices
	return g, nil
}
