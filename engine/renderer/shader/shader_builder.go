package shader

// shaderConfig collects NewShader options.
type shaderConfig struct {
	resolve IncludeResolver
}

// ShaderBuilderOption is a functional option for NewShader.
type ShaderBuilderOption func(*shaderConfig)

// WithIncludeResolver sets the lookup used to expand include directives.
//
// Parameters:
//   - resolve: the include lookup
//
// Returns:
//   - ShaderBuilderOption: a function that applies the option
func WithIncludeResolver(resolve IncludeResolver) ShaderBuilderOption {
	return func(c *shaderConfig) {
		c.resolve = resolve
	}
}

// WithIncludes registers a fixed set of include sources by name.
//
// Parameters:
//   - includes: include source keyed by name
//
// Returns:
//   - ShaderBuilderOption: a function that applies the option
func WithIncludes(includes map[string]string) ShaderBuilderOption {
	return func(c *shaderConfig) {
		c.resolve = func(name string) (string, error) {
			src, ok := includes[name]
			if !ok {
				return "", ErrUnknownInclude
			}
			return src, nil
		}
	}
}
