package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-5

func TestRotationAppliesXThenYThenZ(t *testing.T) {
	rx, ry, rz := float32(0.3), float32(-1.1), float32(0.7)
	got := Rotation(rx, ry, rz)

	v := [4]float32{0.2, 0.5, -1.3, 0}
	stepwise := RotationZ(rz).Mul4x1(RotationY(ry).Mul4x1(RotationX(rx).Mul4x1(v)))
	composed := got.Mul4x1(v)

	for i := range 4 {
		assert.InDelta(t, stepwise[i], composed[i], eps)
	}
}

func TestModelMatrixIsTranslateRotateScale(t *testing.T) {
	pos := Vec3{1, 2, 3}
	rot := Vec3{0.4, 0.9, -0.2}
	scale := Vec3{2, 0.5, 3}

	m := ModelMatrix(pos, rot, scale)
	want := Mul4(Translation(1, 2, 3), Mul4(Rotation(0.4, 0.9, -0.2), Scaling(2, 0.5, 3)))
	for i := range m {
		assert.InDelta(t, want[i], m[i], eps, "element %d", i)
	}

	// The translation lands in the last column.
	assert.Equal(t, float32(1), m[12])
	assert.Equal(t, float32(2), m[13])
	assert.Equal(t, float32(3), m[14])
	assert.Equal(t, float32(1), m[15])
}

func TestModelMatrixIdentityInputs(t *testing.T) {
	m := ModelMatrix(Vec3{}, Vec3{}, Vec3{1, 1, 1})
	assert.Equal(t, Identity(), m)
}

func TestPerspectiveMapsNearAndFarToUnitDepth(t *testing.T) {
	near, far := float32(0.1), float32(100)
	p := Perspective(math.Pi/4, 1.5, near, far)

	ndcDepth := func(z float32) float32 {
		clip := p.Mul4x1([4]float32{0, 0, -z, 1})
		return clip[2] / clip[3]
	}
	assert.InDelta(t, 0, ndcDepth(near), 1e-4)
	assert.InDelta(t, 1, ndcDepth(far), 1e-4)
	assert.InDelta(t, p[5]/1.5, p[0], eps)
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{5, 5, 20}
	v := LookAt(eye, Vec3{}, Vec3{0, 1, 0})
	got := v.Mul4x1(eye.Vec4(1))
	for i := range 3 {
		assert.InDelta(t, 0, got[i], 1e-4)
	}
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
	assert.Len(t, SliceToBytes([]uint16{1, 2, 3}), 6)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
}
