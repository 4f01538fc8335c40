package shader

// LibraryBuilderOption is a functional option for configuring a Library.
type LibraryBuilderOption func(*library)

// WithOverrideDir makes the library read shaders from dir before the embedded copies.
//
// Parameters:
//   - dir: the directory holding .wgsl files
//
// Returns:
//   - LibraryBuilderOption: a function that applies the option
func WithOverrideDir(dir string) LibraryBuilderOption {
	return func(l *library) {
		l.overrideDir = dir
	}
}
