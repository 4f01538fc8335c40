package geometry

// DefaultCubeSubdivisions is the per-face grid resolution used when none is given.
const DefaultCubeSubdivisions = 8

type cubeFace struct {
	normal, u, v, offset [3]float32
}

// Faces are listed front, back, top, bottom, right, left. The u/v axes fix the winding
// so every face is counter-clockwise when seen from outside.
var cubeFaces = [6]cubeFace{
	{normal: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}, offset: [3]float32{0, 0, 1}},
	{normal: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}, offset: [3]float32{0, 0, -1}},
	{normal: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}, offset: [3]float32{0, 1, 0}},
	{normal: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}, offset: [3]float32{0, -1, 0}},
	{normal: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}, offset: [3]float32{1, 0, 0}},
	{normal: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}, offset: [3]float32{-1, 0, 0}},
}

// Cube generates a cube spanning [-1, 1] on every axis. Each face is an independent
// (n+1)x(n+1) vertex grid with a constant face normal, giving 6*n*n*2 triangles.
// Non-positive subdivisions fall back to DefaultCubeSubdivisions.
func Cube(subdivisions int) Geometry {
	n := subdivisions
	if n <= 0 {
		n = DefaultCubeSubdivisions
	}
	b := newBuilder(6*(n+1)*(n+1), 6*n*n*6)

	for _, f := range cubeFaces {
		start := uint32(len(b.vertices) / FloatsPerVertex)
		for i := 0; i <= n; i++ {
			for j := 0; j <= n; j++ {
				u := float32(i)/float32(n)*2 - 1
				v := float32(j)/float32(n)*2 - 1
				b.vertex(
					f.offset[0]+f.u[0]*u+f.v[0]*v,
					f.offset[1]+f.u[1]*u+f.v[1]*v,
					f.offset[2]+f.u[2]*u+f.v[2]*v,
					f.normal[0], f.normal[1], f.normal[2],
				)
			}
		}

		row := uint32(n + 1)
		for i := uint32(0); i < uint32(n); i++ {
			for j := uint32(0); j < uint32(n); j++ {
				a := start + i*row + j
				bb := start + (i+1)*row + j
				c := bb + 1
				d := a + 1
				b.triangle(a, bb, c)
				b.triangle(c, d, a)
			}
		}
	}
	return b.build()
}
