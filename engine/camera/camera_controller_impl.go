package camera

import (
	"sync"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/chewxy/math32"
)

type cameraControllerImpl struct {
	mu     *sync.Mutex
	camera Camera

	radius    float32
	azimuth   float32 // Horizontal angle around Y axis
	elevation float32 // Vertical angle from horizontal plane

	minRadius    float32
	maxRadius    float32
	maxElevation float32 // symmetric about the horizon

	speeds OrbitSpeeds
}

var _ CameraController = &cameraControllerImpl{}

// NewOrbitController creates a controller orbiting the camera's current target, starting
// from the camera's current position.
//
// Parameters:
//   - cam: the camera to drive
//   - options: a variadic list of CameraControllerOption functions
//
// Returns:
//   - CameraController: the controller
func NewOrbitController(cam Camera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:     &sync.Mutex{},
		camera: cam,

		minRadius:    1.0,
		maxRadius:    90.0,
		maxElevation: math32.Pi/2 - 0.05,
		speeds:       DefaultOrbitSpeeds(),
	}
	cc.sync()

	for _, option := range options {
		option(cc)
	}
	cc.clamp()
	cc.apply()
	return cc
}

func (cc *cameraControllerImpl) sync() {
	offset := cc.camera.Position().Sub(cc.camera.Target())
	cc.radius = offset.Len()
	if cc.radius < 1e-6 {
		cc.radius, cc.azimuth, cc.elevation = cc.minRadius, 0, 0
		return
	}
	cc.azimuth = math32.Atan2(offset.X(), offset.Z())
	cc.elevation = math32.Asin(offset.Y() / cc.radius)
}

func (cc *cameraControllerImpl) clamp() {
	cc.radius = mathClamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = mathClamp(cc.elevation, -cc.maxElevation, cc.maxElevation)
}

// apply writes the spherical coordinates back into the camera position.
func (cc *cameraControllerImpl) apply() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)

	t := cc.camera.Target()
	cc.camera.SetPosition(common.Vec3{
		t.X() + cc.radius*cosElev*sinAzim,
		t.Y() + cc.radius*sinElev,
		t.Z() + cc.radius*cosElev*cosAzim,
	})
}

// axes returns the camera's horizontal right axis and its up axis.
func (cc *cameraControllerImpl) axes() (right, up common.Vec3) {
	back := cc.camera.Position().Sub(cc.camera.Target())
	if back.Len() < 1e-8 {
		return common.Vec3{1, 0, 0}, common.Vec3{0, 1, 0}
	}
	back = back.Normalize()
	right = common.Vec3{back.Z(), 0, -back.X()}
	if right.Len() < 1e-8 {
		return common.Vec3{1, 0, 0}, common.Vec3{0, 1, 0}
	}
	right = right.Normalize()
	return right, back.Cross(right)
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

func (cc *cameraControllerImpl) Sync() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.sync()
	cc.clamp()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius -= delta * cc.speeds.Zoom
	cc.clamp()
	cc.apply()
}

func (cc *cameraControllerImpl) Drag(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth -= dx * cc.speeds.Drag
	cc.elevation += dy * cc.speeds.Drag
	cc.clamp()
	cc.apply()
}

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth -= cc.speeds.Orbit
	cc.apply()
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += cc.speeds.Orbit
	cc.apply()
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation += cc.speeds.Orbit
	cc.clamp()
	cc.apply()
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation -= cc.speeds.Orbit
	cc.clamp()
	cc.apply()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = radius
	cc.clamp()
	cc.apply()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = elevation
	cc.clamp()
	cc.apply()
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, _ := cc.axes()
	cc.pan(right.Mul(delta * cc.speeds.Pan))
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, up := cc.axes()
	cc.pan(up.Mul(delta * cc.speeds.Pan))
}

func (cc *cameraControllerImpl) pan(offset common.Vec3) {
	cc.camera.SetTarget(cc.camera.Target().Add(offset))
	cc.camera.SetPosition(cc.camera.Position().Add(offset))
}

func mathClamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
