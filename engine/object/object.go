// Package object implements the drawables a scene renders. Every drawable owns its mesh
// buffers, a uniform block packed from its props, and shares its pipelines with every other
// drawable using the same shader through the renderer's pipeline cache.
package object

import (
	"context"
	"errors"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/camera"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/gpulab-go/engine/tween"
)

var (
	// ErrAssetLoad wraps every failure to read or parse a model or texture.
	ErrAssetLoad = errors.New("object: asset load failed")

	// ErrGPUInit wraps every failure to create a buffer, pipeline or bind group.
	ErrGPUInit = errors.New("object: gpu init failed")

	// ErrDestroyed is returned when Init is called on a destroyed drawable.
	ErrDestroyed = errors.New("object: drawable destroyed")

	// ErrInitialized is returned when Init is called a second time.
	ErrInitialized = errors.New("object: drawable already initialized")
)

// MaxParams is the number of auxiliary vectors the mesh shaders declare.
const MaxParams = 4

// Props is the mutable property bag of a drawable. Tweens and callers write its fields in
// place and then call UpdateCameraTransform; UpdateProps does both.
// Rotation is in radians and applied X, then Y, then Z. Scale components must be non-zero.
// The length of Params is fixed when the drawable is constructed; entries appended later
// are never uploaded.
type Props struct {
	Position common.Vec3
	Rotation common.Vec3
	Scale    common.Vec3
	Color    [4]float32
	Mode     pipeline.RenderMode
	Params   [][4]float32

	// Spin is a rotation rate in radians per second applied by Run.
	Spin common.Vec3
}

// DefaultProps returns props at the origin with unit scale and an opaque white color.
func DefaultProps() Props {
	return Props{
		Scale: common.Vec3{1, 1, 1},
		Color: [4]float32{1, 1, 1, 1},
	}
}

// Object3D is the contract the scene drives every drawable through.
type Object3D interface {
	// Label returns a human-readable name used in GPU labels and logs.
	Label() string

	// Init allocates the drawable's GPU resources and uploads its first transform.
	// It must be called exactly once, before the first Render.
	//
	// Parameters:
	//   - r: the renderer owning the device
	//
	// Returns:
	//   - error: an error wrapping ErrGPUInit or ErrAssetLoad, ErrInitialized on a second call,
	//     or ErrDestroyed after Destroy
	Init(r renderer.Renderer) error

	// Ready reports whether Init succeeded and Destroy has not been called.
	//
	// Returns:
	//   - bool: true if the drawable can render
	Ready() bool

	// SetCamera stores the camera the view and projection matrices are read from.
	//
	// Parameters:
	//   - c: the shared camera
	SetCamera(c camera.Camera)

	// UpdateCameraTransform packs the props and camera matrices into the uniform block and
	// uploads it. It does nothing before Init or after Destroy.
	UpdateCameraTransform()

	// Run is the per-frame hook, called once per frame before rendering.
	//
	// Parameters:
	//   - dt: time since the previous frame
	Run(dt time.Duration)

	// Render binds the pipeline for the current mode and issues one indexed draw.
	// It does nothing before Init or after Destroy.
	//
	// Parameters:
	//   - pass: the frame's render pass
	Render(pass renderer.RenderPass)

	// Props returns the live property bag.
	//
	// Returns:
	//   - *Props: the props, owned by the drawable
	Props() *Props

	// UpdateProps applies fn to the props and re-uploads the transform.
	//
	// Parameters:
	//   - fn: the mutation
	UpdateProps(fn func(p *Props))

	// AddTween ties a tween's lifetime to the drawable. Destroy kills it.
	//
	// Parameters:
	//   - t: the tween
	AddTween(t tween.Tween)

	// Destroy kills owned tweens, releases every GPU resource and drops the camera and
	// renderer references. Later calls do nothing.
	Destroy()
}

// Loadable is a drawable whose data must be read from disk before Init.
type Loadable interface {
	Object3D

	// Load reads and parses the drawable's asset. It does not touch the GPU and may run
	// off the render thread.
	//
	// Parameters:
	//   - ctx: cancels the load
	//
	// Returns:
	//   - error: an error wrapping ErrAssetLoad
	Load(ctx context.Context) error
}
