package camera

import (
	"testing"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, common.Vec3{5, 5, 20}, c.Position())
	assert.Equal(t, common.Vec3{0, 0, 0}, c.Target())
	assert.Equal(t, common.Vec3{0, 1, 0}, c.Up())
	assert.InDelta(t, math32.Pi/4, c.Fov(), 1e-6)
	assert.Equal(t, float32(1), c.Aspect())
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(100), c.Far())
}

func TestViewMatrixFollowsPosition(t *testing.T) {
	c := NewCamera(WithPosition(common.Vec3{0, 0, 10}))
	eye := c.ViewMatrix().Mul4x1(common.Vec3{0, 0, 10}.Vec4(1))
	assert.InDelta(t, 0, eye.Z(), 1e-5)

	c.SetPositionAxis(AxisZ, 20)
	assert.Equal(t, common.Vec3{0, 0, 20}, c.Position())
	origin := c.ViewMatrix().Mul4x1(common.Vec3{}.Vec4(1))
	assert.InDelta(t, -20, origin.Z(), 1e-5)

	c.SetPositionAxis(Axis(7), 3)
	assert.Equal(t, common.Vec3{0, 0, 20}, c.Position())
}

func TestSetAspectChangesProjection(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionMatrix()
	c.SetAspect(2)
	after := c.ProjectionMatrix()
	assert.InDelta(t, before.At(0, 0)/2, after.At(0, 0), 1e-6)
	assert.Equal(t, before.At(1, 1), after.At(1, 1))

	c.SetAspect(0)
	assert.Equal(t, float32(2), c.Aspect())
}

func TestBuilderOptions(t *testing.T) {
	c := NewCamera(WithFovDegrees(90), WithAspect(1.5), WithClipPlanes(1, 50), WithTarget(common.Vec3{1, 2, 3}), WithUp(0, 0, 1))
	assert.InDelta(t, math32.Pi/2, c.Fov(), 1e-6)
	assert.Equal(t, float32(1.5), c.Aspect())
	assert.Equal(t, float32(50), c.Far())
	assert.Equal(t, common.Vec3{1, 2, 3}, c.Target())
	assert.Equal(t, common.Vec3{0, 0, 1}, c.Up())
}

func TestOrbitControllerKeepsRadius(t *testing.T) {
	c := NewCamera(WithPosition(common.Vec3{0, 0, 10}))
	cc := NewOrbitController(c)
	require.InDelta(t, 10, cc.Radius(), 1e-5)

	cc.OrbitRight()
	cc.OrbitUp()
	assert.InDelta(t, 10, c.Position().Sub(c.Target()).Len(), 1e-4)
	assert.Greater(t, c.Position().Y(), float32(0))
	assert.Greater(t, c.Position().X(), float32(0))
}

func TestOrbitControllerZoomClamps(t *testing.T) {
	c := NewCamera(WithPosition(common.Vec3{0, 0, 10}))
	cc := NewOrbitController(c, WithRadiusBounds(5, 15), WithZoomSpeed(1))

	cc.Zoom(100)
	assert.InDelta(t, 5, cc.Radius(), 1e-6)
	assert.InDelta(t, 5, c.Position().Len(), 1e-4)

	cc.Zoom(-100)
	assert.InDelta(t, 15, cc.Radius(), 1e-6)
}

func TestOrbitControllerPanMovesTarget(t *testing.T) {
	c := NewCamera(WithPosition(common.Vec3{0, 0, 10}))
	cc := NewOrbitController(c, WithPanSpeed(1))

	cc.PanRight(2)
	assert.InDelta(t, 2, c.Target().X(), 1e-5)
	assert.InDelta(t, 2, c.Position().X(), 1e-5)

	cc.PanUp(1)
	assert.InDelta(t, 1, c.Target().Y(), 1e-5)
	assert.InDelta(t, 10, cc.Radius(), 1e-5)
}

func TestOrbitControllerSync(t *testing.T) {
	c := NewCamera(WithPosition(common.Vec3{0, 0, 10}))
	cc := NewOrbitController(c)

	c.SetPosition(common.Vec3{0, 0, 20})
	cc.Sync()
	assert.InDelta(t, 20, cc.Radius(), 1e-5)
	assert.InDelta(t, 0, cc.Azimuth(), 1e-5)
}

func TestOrbitControllerOptions(t *testing.T) {
	c := NewCamera(WithPosition(common.Vec3{0, 0, 10}))
	cc := NewOrbitController(c,
		WithSpeeds(OrbitSpeeds{Orbit: 0.5}),
		WithPoleMargin(0.25),
		WithRadiusBounds(-1, 5),
	)

	cc.OrbitRight()
	assert.InDelta(t, 0.5, cc.Azimuth(), 1e-5)
	assert.InDelta(t, 10, cc.Radius(), 1e-5, "invalid bounds are ignored")

	cc.SetElevation(math32.Pi)
	assert.InDelta(t, math32.Pi/2-0.25, cc.Elevation(), 1e-5)
	cc.SetElevation(-math32.Pi)
	assert.InDelta(t, -(math32.Pi/2 - 0.25), cc.Elevation(), 1e-5)

	cc.Drag(100, 0)
	assert.InDelta(t, 0.5-100*DefaultOrbitSpeeds().Drag, cc.Azimuth(), 1e-5)
}
