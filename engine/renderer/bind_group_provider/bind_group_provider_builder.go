package bind_group_provider

import "github.com/Carmen-Shannon/gpulab-go/common"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer sets a buffer for a specific binding index. InitBindGroup reuses it instead of allocating one.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified binding
func WithBuffer(binding int, buf common.Releaser) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithSharedTextureView binds a texture view owned elsewhere, such as one texture shared by many planes.
//
// Parameters:
//   - binding: the binding index for this texture view
//   - view: the shared texture view
//
// Returns:
//   - BindGroupProviderOption: a function that binds the shared texture view
func WithSharedTextureView(binding int, view common.Releaser) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textureViews[binding] = view
		p.shared[view] = true
	}
}

// WithSharedSampler binds a sampler owned elsewhere.
//
// Parameters:
//   - binding: the binding index for this sampler
//   - s: the shared sampler
//
// Returns:
//   - BindGroupProviderOption: a function that binds the shared sampler
func WithSharedSampler(binding int, s common.Releaser) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = s
		p.shared[s] = true
	}
}
