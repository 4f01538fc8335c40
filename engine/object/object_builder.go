package object

import "github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"

// ObjectBuilderOption is a functional option for configuring a drawable during construction.
type ObjectBuilderOption func(*mesh)

// WithLabel overrides the generated label used for GPU resources and logs.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - ObjectBuilderOption: functional option to set the label
func WithLabel(label string) ObjectBuilderOption {
	return func(m *mesh) {
		if label != "" {
			m.label = label
		}
	}
}

// WithPipelineKey overrides the key the drawable's pipelines are cached under. Drawables
// sharing a key share pipelines, so a key must map to one shader and one set of options.
//
// Parameters:
//   - key: the pipeline cache key
//
// Returns:
//   - ObjectBuilderOption: functional option to set the pipeline key
func WithPipelineKey(key string) ObjectBuilderOption {
	return func(m *mesh) {
		if key != "" {
			m.pipelineKey = key
		}
	}
}

// WithSolidPipelineOptions appends options to the solid pipeline only.
//
// Parameters:
//   - opts: the pipeline options
//
// Returns:
//   - ObjectBuilderOption: functional option to extend the solid pipeline
func WithSolidPipelineOptions(opts ...pipeline.PipelineBuilderOption) ObjectBuilderOption {
	return func(m *mesh) {
		m.solidOpts = append(m.solidOpts, opts...)
	}
}
