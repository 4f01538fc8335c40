package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithMesh pre-populates the cache, so Load returns m for key without touching the disk.
//
// Parameters:
//   - key: the path or name to cache under
//   - m: the mesh
//
// Returns:
//   - LoaderBuilderOption: a function that applies the mesh option to a loader
func WithMesh(key string, m *Mesh) LoaderBuilderOption {
	return func(l *loader) {
		if m != nil {
			l.cache[key] = m
		}
	}
}
