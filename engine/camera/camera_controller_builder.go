package camera

import (
	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/chewxy/math32"
)

// OrbitSpeeds scales each kind of controller input.
type OrbitSpeeds struct {
	Orbit float32 // radians per key press
	Drag  float32 // radians per dragged pixel
	Zoom  float32 // distance per scroll step
	Pan   float32 // distance per pan unit
}

// DefaultOrbitSpeeds returns the speeds used when no option overrides them.
func DefaultOrbitSpeeds() OrbitSpeeds {
	return OrbitSpeeds{Orbit: 0.03, Drag: 0.005, Zoom: 1, Pan: 0.1}
}

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithSpeeds replaces the input speeds. Zero fields keep their defaults.
//
// Parameters:
//   - speeds: the new speeds
//
// Returns:
//   - CameraControllerOption: functional option to set the speeds
func WithSpeeds(speeds OrbitSpeeds) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.speeds = OrbitSpeeds{
			Orbit: common.Coalesce(speeds.Orbit, cc.speeds.Orbit),
			Drag:  common.Coalesce(speeds.Drag, cc.speeds.Drag),
			Zoom:  common.Coalesce(speeds.Zoom, cc.speeds.Zoom),
			Pan:   common.Coalesce(speeds.Pan, cc.speeds.Pan),
		}
	}
}

// WithZoomSpeed sets the distance moved per scroll step.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return WithSpeeds(OrbitSpeeds{Zoom: speed})
}

// WithPanSpeed sets the distance moved per pan unit.
func WithPanSpeed(speed float32) CameraControllerOption {
	return WithSpeeds(OrbitSpeeds{Pan: speed})
}

// WithRadiusBounds limits how close to and how far from the target zooming can go. The
// camera is pulled inside the bounds when the controller is created.
//
// Parameters:
//   - min: the closest distance to the target
//   - max: the farthest distance from the target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius bounds
func WithRadiusBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if min > 0 && max >= min {
			cc.minRadius, cc.maxRadius = min, max
		}
	}
}

// WithPoleMargin keeps the camera this many radians away from looking straight up or down,
// where the look-at basis degenerates.
//
// Parameters:
//   - margin: the angle kept clear of each pole, in (0, π/2)
//
// Returns:
//   - CameraControllerOption: functional option to set the pole margin
func WithPoleMargin(margin float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if margin > 0 && margin < math32.Pi/2 {
			cc.maxElevation = math32.Pi/2 - margin
		}
	}
}
