package scene

import "github.com/Carmen-Shannon/gpulab-go/engine/tween"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithWorkers sets the number of worker goroutines used for async loads and for refreshing
// large scenes. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.workers = max(n, 1)
	}
}

// WithTicker shares a tween ticker with the scene instead of creating a private one.
//
// Parameters:
//   - t: the ticker advanced by Run
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTicker(t tween.Ticker) SceneBuilderOption {
	return func(s *scene) {
		if t != nil {
			s.ticker = t
		}
	}
}
