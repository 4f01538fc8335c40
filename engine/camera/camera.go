package camera

import (
	"sync"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/chewxy/math32"
)

// Axis names one component of a position vector.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

type cameraImpl struct {
	mu *sync.Mutex

	position common.Vec3
	target   common.Vec3
	up       common.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32
}

// Camera is a perspective camera looking from a position at a target.
// View and projection matrices are derived on every call, so a mutation is visible to
// the next drawable that reads them.
type Camera interface {
	// Position returns the camera position.
	//
	// Returns:
	//   - common.Vec3: the eye position
	Position() common.Vec3

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - common.Vec3: the look-at target
	Target() common.Vec3

	// Up returns the camera up vector.
	//
	// Returns:
	//   - common.Vec3: the up vector
	Up() common.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: the field of view
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clip distance.
	//
	// Returns:
	//   - float32: the near plane
	Near() float32

	// Far returns the far clip distance.
	//
	// Returns:
	//   - float32: the far plane
	Far() float32

	// ViewMatrix returns the look-at matrix from position, target and up.
	//
	// Returns:
	//   - common.Mat4: the view matrix
	ViewMatrix() common.Mat4

	// ProjectionMatrix returns the perspective matrix from fov, aspect, near and far.
	//
	// Returns:
	//   - common.Mat4: the projection matrix
	ProjectionMatrix() common.Mat4

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - p: the new eye position
	SetPosition(p common.Vec3)

	// SetPositionAxis moves the camera along one axis, keeping the other two components.
	//
	// Parameters:
	//   - axis: the component to set
	//   - v: the new value
	SetPositionAxis(axis Axis, v float32)

	// SetTarget changes the look-at target.
	//
	// Parameters:
	//   - t: the new target
	SetTarget(t common.Vec3)

	// SetAspect changes the aspect ratio, typically after a surface resize.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetFov changes the vertical field of view.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at (5, 5, 20) looking at the origin with +Y up,
// a 45 degree field of view, aspect 1 and clip planes 0.1 and 100.
//
// Parameters:
//   - options: a variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: common.Vec3{5, 5, 20},
		target:   common.Vec3{0, 0, 0},
		up:       common.Vec3{0, 1, 0},
		fov:      math32.Pi / 4,
		aspect:   1.0,
		near:     0.1,
		far:      100.0,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.LookAt(c.position, c.target, c.up)
}

func (c *cameraImpl) ProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.Perspective(c.fov, c.aspect, c.near, c.far)
}

func (c *cameraImpl) SetPosition(p common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) SetPositionAxis(axis Axis, v float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if axis < AxisX || axis > AxisZ {
		return
	}
	c.position[axis] = v
}

func (c *cameraImpl) SetTarget(t common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect > 0 {
		c.aspect = aspect
	}
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
}
