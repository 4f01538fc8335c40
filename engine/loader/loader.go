// Package loader reads model and image files into CPU-side data ready for upload: glTF and
// GLB models become a single merged geometry.Geometry, images become RGBA staging data.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"go.uber.org/zap"
)

var (
	// ErrInvalidGLB is returned for a GLB file with a bad header or chunk layout.
	ErrInvalidGLB = errors.New("loader: invalid GLB")

	// ErrUnsupportedFormat is returned for unknown file extensions, glTF versions other than
	// 2.x and accessor layouts the loader does not read.
	ErrUnsupportedFormat = errors.New("loader: unsupported format")

	// ErrNoMeshes is returned when a document has no reachable triangle primitive.
	ErrNoMeshes = errors.New("loader: no meshes")
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// Mesh is a parsed model: every triangle primitive merged into one geometry with node
// transforms applied, plus the base color of the first material.
type Mesh struct {
	Name      string
	Geometry  geometry.Geometry
	BaseColor [4]float32
	BoundsMin [3]float32
	BoundsMax [3]float32
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() common.Vec3 {
	return common.Vec3{
		(m.BoundsMin[0] + m.BoundsMax[0]) / 2,
		(m.BoundsMin[1] + m.BoundsMax[1]) / 2,
		(m.BoundsMin[2] + m.BoundsMax[2]) / 2,
	}
}

// Radius returns half the bounding box diagonal.
func (m *Mesh) Radius() float32 {
	d := common.Vec3{
		m.BoundsMax[0] - m.BoundsMin[0],
		m.BoundsMax[1] - m.BoundsMin[1],
		m.BoundsMax[2] - m.BoundsMin[2],
	}
	return d.Len() / 2
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu *sync.RWMutex

	cache   map[string]*Mesh
	backend loaderBackend
}

// Loader parses model files and caches the result by path. Cached meshes are shared and
// must not be mutated.
type Loader interface {
	// Load parses the model at path, or returns the cached mesh. Safe to call from any goroutine.
	//
	// Parameters:
	//   - ctx: cancels the parse
	//   - path: a .gltf or .glb file
	//
	// Returns:
	//   - *Mesh: the parsed mesh
	//   - error: ErrUnsupportedFormat, ErrInvalidGLB, ErrNoMeshes or a read error
	Load(ctx context.Context, path string) (*Mesh, error)

	// LoadReader parses a model from r and caches it under name.
	//
	// Parameters:
	//   - ctx: cancels the parse
	//   - name: the cache key
	//   - r: the model data
	//   - isGLB: true for GLB data, false for glTF JSON
	//
	// Returns:
	//   - *Mesh: the parsed mesh
	//   - error: error if parsing fails
	LoadReader(ctx context.Context, name string, r io.Reader, isGLB bool) (*Mesh, error)

	// Get returns a cached mesh, or nil.
	//
	// Parameters:
	//   - name: the path or name the mesh was loaded under
	//
	// Returns:
	//   - *Mesh: the cached mesh or nil
	Get(name string) *Mesh

	// Forget drops a cached mesh so the next Load parses the file again.
	//
	// Parameters:
	//   - name: the path or name the mesh was loaded under
	Forget(name string)
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the given backend and options applied.
//
// Parameters:
//   - backendType: the model format backend
//   - options: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the new loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:    &sync.RWMutex{},
		cache: make(map[string]*Mesh),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(ctx context.Context, path string) (*Mesh, error) {
	if m := l.Get(path); m != nil {
		return m, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	m, err := backend.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	logger.Debug("model loaded",
		zap.String("path", path),
		zap.Int("vertices", m.Geometry.VertexCount()),
		zap.Int("triangles", m.Geometry.TriangleCount()),
	)

	l.store(path, m)
	return m, nil
}

func (l *loader) LoadReader(ctx context.Context, name string, r io.Reader, isGLB bool) (*Mesh, error) {
	if m := l.Get(name); m != nil {
		return m, nil
	}
	if l.backend == nil {
		return nil, fmt.Errorf("%w: no backend", ErrUnsupportedFormat)
	}

	m, err := l.backend.LoadReader(ctx, r, isGLB, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	m.Name = name

	l.store(name, m)
	return m, nil
}

func (l *loader) Get(name string) *Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[name]
}

func (l *loader) Forget(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, name)
}

func (l *loader) store(name string, m *Mesh) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[name] = m
}

// resolveBackend selects the backend for a file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		if l.backend != nil {
			return l.backend, nil
		}
	}
	return nil, fmt.Errorf("%w: model extension %q", ErrUnsupportedFormat, ext)
}
