package camera

// CameraController moves a Camera by orbiting around, zooming toward and panning its target.
// Every call writes the new position (and target for pans) straight into the camera.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Camera returns the camera this controller drives.
	//
	// Returns:
	//   - Camera: the driven camera
	Camera() Camera

	// Sync re-derives radius, azimuth and elevation from the camera's current position, for
	// when the camera was moved by something other than this controller.
	Sync()

	// Zoom moves the camera toward (positive) or away from (negative) the target.
	//
	// Parameters:
	//   - delta: zoom steps, scaled by the zoom speed
	Zoom(delta float32)

	// Drag orbits by a pointer delta in pixels, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx: horizontal pointer movement
	//   - dy: vertical pointer movement
	Drag(dx, dy float32)
}

type orbitCameraController interface {
	OrbitLeft()

	OrbitRight()

	OrbitUp()

	OrbitDown()

	Radius() float32

	SetRadius(radius float32)

	Azimuth() float32

	Elevation() float32

	SetElevation(elevation float32)
}

type planarCameraController interface {
	// PanRight moves camera and target along the camera's right axis.
	//
	// Parameters:
	//   - delta: distance, scaled by the pan speed
	PanRight(delta float32)

	// PanUp moves camera and target along the camera's up axis.
	//
	// Parameters:
	//   - delta: distance, scaled by the pan speed
	PanUp(delta float32)
}
