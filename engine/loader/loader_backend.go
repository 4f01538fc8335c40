package loader

import (
	"context"
	"io"
)

// loaderBackend loads one model file format into a Mesh.
type loaderBackend interface {
	// Load parses the file at path.
	//
	// Parameters:
	//   - ctx: cancels the load between primitives
	//   - path: the file path to load
	//
	// Returns:
	//   - *Mesh: the merged mesh
	//   - error: error if loading fails
	Load(ctx context.Context, path string) (*Mesh, error)

	// LoadReader parses a model from a stream.
	//
	// Parameters:
	//   - ctx: cancels the load between primitives
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//   - baseDir: directory used to resolve external buffers
	//
	// Returns:
	//   - *Mesh: the merged mesh
	//   - error: error if loading fails
	LoadReader(ctx context.Context, r io.Reader, isGLB bool, baseDir string) (*Mesh, error)
}
