package geometry

import "github.com/chewxy/math32"

// Sphere defaults.
const (
	DefaultSphereRadius         = 1.0
	DefaultSphereWidthSegments  = 32
	DefaultSphereHeightSegments = 16
)

// Sphere generates a UV sphere with (heightSegments+1)*(widthSegments+1) vertices.
// The pole rows share a position around the ring, so the first triangle of every
// top-row quad and the second triangle of every bottom-row quad are skipped.
// Segment counts below the minimum (3 wide, 2 high) are raised to it.
func Sphere(radius float32, widthSegments, heightSegments int) Geometry {
	w := max(widthSegments, 3)
	h := max(heightSegments, 2)
	b := newBuilder((h+1)*(w+1), (2*h*w-2*w)*3)

	for y := 0; y <= h; y++ {
		phi := float32(y) / float32(h) * math32.Pi
		sinPhi, cosPhi := math32.Sincos(phi)
		for x := 0; x <= w; x++ {
			theta := float32(x) / float32(w) * 2 * math32.Pi
			sinTheta, cosTheta := math32.Sincos(theta)

			nx := -cosTheta * sinPhi
			ny := cosPhi
			nz := sinTheta * sinPhi
			b.vertex(radius*nx, radius*ny, radius*nz, nx, ny, nz)
		}
	}

	row := uint32(w + 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint32(y)*row + uint32(x)
			bb := a + row
			c := a + 1
			d := bb + 1
			if y != 0 {
				b.triangle(a, bb, c)
			}
			if y != h-1 {
				b.triangle(bb, d, c)
			}
		}
	}
	return b.build()
}
