package geometry

// Plane generates a unit quad spanning [-1, 1] in X and Y, facing +Z.
// Grid drawables reuse it; cell count and spacing live in their shader uniforms.
func Plane() Geometry {
	b := newBuilder(4, 6)
	b.vertex(-1, -1, 0, 0, 0, 1)
	b.vertex(1, -1, 0, 0, 0, 1)
	b.vertex(1, 1, 0, 0, 0, 1)
	b.vertex(-1, 1, 0, 0, 0, 1)
	b.triangle(0, 1, 2)
	b.triangle(2, 3, 0)
	return b.build()
}
