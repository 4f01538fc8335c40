package geometry

import (
	"encoding/binary"
	"testing"

	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGeneratorsProduceValidMeshes(t *testing.T) {
	torus, _ := Torus(DefaultTorusParams())
	cases := map[string]Geometry{
		"cube-1":   Cube(1),
		"cube-8":   Cube(8),
		"cube-20":  Cube(20),
		"sphere":   Sphere(1, 32, 16),
		"sphere-s": Sphere(2.5, 3, 2),
		"torus":    torus,
		"plane":    Plane(),
	}
	for name, g := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, g.Validate())
			assert.Zero(t, len(g.Indices)%3)
			assert.Len(t, g.WireframeIndices, 2*len(g.Indices))
		})
	}
}

func TestCubeCounts(t *testing.T) {
	for _, n := range []int{1, 2, 8} {
		g := Cube(n)
		assert.Equal(t, 6*(n+1)*(n+1), g.VertexCount())
		assert.Len(t, g.Indices, n*n*6*6)
	}
	assert.Len(t, Cube(8).Indices, 2304)
	assert.Len(t, Cube(8).WireframeIndices, 4608)
	assert.Equal(t, Cube(DefaultCubeSubdivisions), Cube(0))
}

func TestCubeFaceNormalsPointOutward(t *testing.T) {
	g := Cube(2)
	for i := 0; i < g.VertexCount(); i++ {
		v := g.Vertices[i*FloatsPerVertex : (i+1)*FloatsPerVertex]
		dot := v[0]*v[3] + v[1]*v[4] + v[2]*v[5]
		assert.InDelta(t, 1, dot, 1e-6, "vertex %d must lie on its face plane", i)
	}
}

// clockwiseFromOutside counts the triangles whose winding disagrees with the summed normals
// of their vertices.
func clockwiseFromOutside(g Geometry) int {
	n := 0
	for tri := 0; tri < g.TriangleCount(); tri++ {
		var pos, normal [3][3]float32
		for k := range 3 {
			v := g.Vertices[g.Indices[tri*3+k]*FloatsPerVertex:]
			pos[k] = [3]float32{v[0], v[1], v[2]}
			normal[k] = [3]float32{v[3], v[4], v[5]}
		}
		e1 := [3]float32{pos[1][0] - pos[0][0], pos[1][1] - pos[0][1], pos[1][2] - pos[0][2]}
		e2 := [3]float32{pos[2][0] - pos[0][0], pos[2][1] - pos[0][1], pos[2][2] - pos[0][2]}
		cross := [3]float32{e1[1]*e2[2] - e1[2]*e2[1], e1[2]*e2[0] - e1[0]*e2[2], e1[0]*e2[1] - e1[1]*e2[0]}
		var dot float32
		for axis := range 3 {
			dot += cross[axis] * (normal[0][axis] + normal[1][axis] + normal[2][axis])
		}
		if dot <= 0 {
			n++
		}
	}
	return n
}

func TestWindingIsCounterClockwiseFromOutside(t *testing.T) {
	torus, _ := Torus(DefaultTorusParams())
	thin, _ := Torus(TorusParams{MajorRadius: 3, MinorRadius: 0.2, MajorSegments: 12, MinorSegments: 6})
	cases := map[string]Geometry{
		"cube":   Cube(1),
		"cube-8": Cube(8),
		"sphere": Sphere(1, 16, 8),
		"torus":  torus,
		"thin":   thin,
		"plane":  Plane(),
	}
	for name, g := range cases {
		t.Run(name, func(t *testing.T) {
			require.NotZero(t, g.TriangleCount())
			assert.Zero(t, clockwiseFromOutside(g), "%d triangles", g.TriangleCount())
		})
	}
}

func TestSphereCounts(t *testing.T) {
	for _, tc := range []struct{ w, h int }{{32, 16}, {8, 4}, {3, 2}, {64, 48}} {
		g := Sphere(1, tc.w, tc.h)
		assert.Equal(t, (tc.h+1)*(tc.w+1), g.VertexCount(), "w=%d h=%d", tc.w, tc.h)
		assert.Equal(t, 2*tc.h*tc.w-2*tc.w, g.TriangleCount(), "w=%d h=%d", tc.w, tc.h)
	}
}

func TestSphereVerticesOnSurface(t *testing.T) {
	g := Sphere(2, 16, 8)
	for i := 0; i < g.VertexCount(); i++ {
		v := g.Vertices[i*FloatsPerVertex:]
		r := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		assert.InDelta(t, 2, r, 1e-5)
		n := math32.Sqrt(v[3]*v[3] + v[4]*v[4] + v[5]*v[5])
		assert.InDelta(t, 1, n, 1e-5)
	}
}

func TestTorusTriangleCountIndependentOfRadii(t *testing.T) {
	for _, p := range []TorusParams{
		{MajorRadius: 1, MinorRadius: 0.3, MajorSegments: 64, MinorSegments: 32},
		{MajorRadius: 5, MinorRadius: 0.1, MajorSegments: 64, MinorSegments: 32},
		{MajorRadius: 2, MinorRadius: 1.5, MajorSegments: 12, MinorSegments: 7},
	} {
		g, used := Torus(p)
		assert.Equal(t, 2*p.MajorSegments*p.MinorSegments, g.TriangleCount())
		assert.Equal(t, p, used)
	}
}

func TestTorusClampsSelfIntersectingTube(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer logger.Set(zap.New(core))()

	g, used := Torus(TorusParams{MajorRadius: 2, MinorRadius: 3, MajorSegments: 16, MinorSegments: 8})

	assert.InDelta(t, 0.8, used.MinorRadius, 1e-6)
	assert.Equal(t, 1, logs.FilterMessage("torus minor radius clamped to avoid self-intersection").Len())
	require.NotZero(t, g.VertexCount())
	require.NoError(t, g.Validate())

	// Every vertex must stay within the clamped tube.
	for i := 0; i < g.VertexCount(); i++ {
		v := g.Vertices[i*FloatsPerVertex:]
		ring := math32.Sqrt(v[0]*v[0]+v[2]*v[2]) - 2
		assert.InDelta(t, 0.8, math32.Sqrt(ring*ring+v[1]*v[1]), 1e-4)
	}
}

func TestTorusEqualRadiiClamped(t *testing.T) {
	p, clamped := TorusParams{MajorRadius: 1, MinorRadius: 1, MajorSegments: 8, MinorSegments: 8}.Normalize()
	assert.True(t, clamped)
	assert.InDelta(t, 0.4, p.MinorRadius, 1e-6)
}

func TestTorusRejectsNonPositiveRadii(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer logger.Set(zap.New(core))()

	for _, p := range []TorusParams{
		{MajorRadius: -2, MinorRadius: 0.5, MajorSegments: 8, MinorSegments: 8},
		{MajorRadius: 0, MinorRadius: 0, MajorSegments: 8, MinorSegments: 8},
		{MajorRadius: 2, MinorRadius: -1, MajorSegments: 8, MinorSegments: 8},
	} {
		used, clamped := p.Normalize()
		assert.True(t, clamped, "%+v", p)
		assert.Greater(t, used.MajorRadius, float32(0), "%+v", p)
		assert.Greater(t, used.MinorRadius, float32(0), "%+v", p)
		assert.Less(t, used.MinorRadius, used.MajorRadius, "%+v", p)

		g, _ := Torus(p)
		require.NoError(t, g.Validate())
		assert.Zero(t, clockwiseFromOutside(g))
	}
	assert.Equal(t, 2, logs.FilterMessage("torus major radius must be positive").Len())
}

func TestPlane(t *testing.T) {
	g := Plane()
	assert.Equal(t, 4, g.VertexCount())
	assert.Len(t, g.Indices, 6)
	assert.Len(t, g.WireframeIndices, 12)
}

func TestWireframeFromTriangles(t *testing.T) {
	got := WireframeFromTriangles([]uint32{0, 1, 2, 2, 3, 0})
	assert.Equal(t, []uint32{0, 1, 1, 2, 2, 0, 2, 3, 3, 0, 0, 2}, got)
}

func TestIndexFormatUpgrade(t *testing.T) {
	assert.Equal(t, wgpu.IndexFormatUint16, Cube(8).IndexFormat())

	// 6*(n+1)^2 > 65536 for n = 104.
	big := Cube(104)
	require.Greater(t, big.VertexCount(), MaxUint16Vertices)
	assert.Equal(t, wgpu.IndexFormatUint32, big.IndexFormat())
	assert.Len(t, big.IndexBytes(), len(big.Indices)*4)
}

func TestIndexBytesUint16Padding(t *testing.T) {
	g := Geometry{Vertices: make([]float32, 3*FloatsPerVertex), Indices: []uint32{0, 1, 2}}
	b := g.IndexBytes()
	require.Len(t, b, 8)
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(b[4:6]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(b[6:8]))
	assert.Len(t, g.VertexBytes(), 3*VertexStride)
}

func TestValidateRejectsOutOfRangeIndex(t *testing.T) {
	g := Geometry{Vertices: make([]float32, 2*FloatsPerVertex), Indices: []uint32{0, 1, 2}}
	assert.Error(t, g.Validate())
}
