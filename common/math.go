package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is a position or direction in world space.
type Vec3 = mgl32.Vec3

// Mat4 is a 4x4 matrix stored in column-major order (WebGPU/WGSL convention).
type Mat4 = mgl32.Mat4

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return mgl32.Ident4()
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Translation returns a matrix translating by (x, y, z).
func Translation(x, y, z float32) Mat4 {
	return mgl32.Translate3D(x, y, z)
}

// RotationX returns a matrix rotating by rad radians around the X axis.
func RotationX(rad float32) Mat4 {
	return mgl32.HomogRotate3DX(rad)
}

// RotationY returns a matrix rotating by rad radians around the Y axis.
func RotationY(rad float32) Mat4 {
	return mgl32.HomogRotate3DY(rad)
}

// RotationZ returns a matrix rotating by rad radians around the Z axis.
func RotationZ(rad float32) Mat4 {
	return mgl32.HomogRotate3DZ(rad)
}

// Rotation builds an Euler rotation that rotates around X first, then Y, then Z.
// With column vectors this is Rz * Ry * Rx.
//
// Parameters:
//   - x, y, z: rotation angles in radians around each axis
//
// Returns:
//   - Mat4: the combined rotation matrix
func Rotation(x, y, z float32) Mat4 {
	return RotationZ(z).Mul4(RotationY(y)).Mul4(RotationX(x))
}

// Scaling returns a matrix scaling by (x, y, z).
func Scaling(x, y, z float32) Mat4 {
	return mgl32.Scale3D(x, y, z)
}

// Mul4 multiplies two 4x4 matrices. Result: a * b.
func Mul4(a, b Mat4) Mat4 {
	return a.Mul4(b)
}

// ModelMatrix composes a model matrix as translation * (rotation * scale).
// Zero scale components produce a degenerate matrix and are not checked.
//
// Parameters:
//   - pos: translation in world space
//   - rot: Euler rotation in radians, applied X then Y then Z
//   - scale: scale factors along each axis
//
// Returns:
//   - Mat4: the model matrix
func ModelMatrix(pos, rot, scale Vec3) Mat4 {
	rs := Rotation(rot[0], rot[1], rot[2]).Mul4(Scaling(scale[0], scale[1], scale[2]))
	return Translation(pos[0], pos[1], pos[2]).Mul4(rs)
}

// Perspective creates a perspective projection matrix for WebGPU clip space,
// where depth maps to [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1.0 / math32.Tan(fovY / 2.0)

	var out Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// LookAt creates a right-handed view matrix looking from eye towards target.
//
// Parameters:
//   - eye: camera position
//   - target: point the camera looks at
//   - up: world up direction
//
// Returns:
//   - Mat4: the view matrix
func LookAt(eye, target, up Vec3) Mat4 {
	return mgl32.LookAtV(eye, target, up)
}
