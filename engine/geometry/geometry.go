// Package geometry generates procedural meshes as interleaved position+normal vertex arrays
// with triangle-list and line-list index arrays.
package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// FloatsPerVertex is the number of float32 values per vertex: position (3) + normal (3).
	FloatsPerVertex = 6
	// VertexStride is the byte stride of one vertex.
	VertexStride = FloatsPerVertex * 4
	// NormalOffset is the byte offset of the normal attribute within a vertex.
	NormalOffset = 3 * 4
	// MaxUint16Vertices is the largest vertex count addressable with 16-bit indices.
	MaxUint16Vertices = 1 << 16
)

// Geometry is a CPU-side mesh ready for upload.
// Vertices is interleaved position+normal, Indices is a triangle list and WireframeIndices
// is a line list holding every triangle edge as its own segment.
type Geometry struct {
	Vertices         []float32
	Indices          []uint32
	WireframeIndices []uint32
}

// VertexCount returns the number of vertices in the mesh.
func (g Geometry) VertexCount() int {
	return len(g.Vertices) / FloatsPerVertex
}

// TriangleCount returns the number of triangles in the solid index list.
func (g Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// IndexFormat returns the narrowest index format able to address every vertex.
func (g Geometry) IndexFormat() wgpu.IndexFormat {
	if g.VertexCount() > MaxUint16Vertices {
		return wgpu.IndexFormatUint32
	}
	return wgpu.IndexFormatUint16
}

// VertexBytes returns the vertex array as raw bytes.
func (g Geometry) VertexBytes() []byte {
	return common.SliceToBytes(g.Vertices)
}

// IndexBytes returns the solid index list encoded in IndexFormat.
func (g Geometry) IndexBytes() []byte {
	return encodeIndices(g.Indices, g.IndexFormat())
}

// WireframeIndexBytes returns the wireframe index list encoded in IndexFormat.
func (g Geometry) WireframeIndexBytes() []byte {
	return encodeIndices(g.WireframeIndices, g.IndexFormat())
}

// Validate checks that both index lists are well formed and stay within the vertex array.
func (g Geometry) Validate() error {
	if len(g.Vertices)%FloatsPerVertex != 0 {
		return fmt.Errorf("vertex array length %d is not a multiple of %d", len(g.Vertices), FloatsPerVertex)
	}
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(g.Indices))
	}
	if len(g.WireframeIndices)%2 != 0 {
		return fmt.Errorf("wireframe index count %d is not a multiple of 2", len(g.WireframeIndices))
	}
	n := uint32(g.VertexCount())
	for _, list := range [][]uint32{g.Indices, g.WireframeIndices} {
		for i, idx := range list {
			if idx >= n {
				return fmt.Errorf("index %d at position %d exceeds vertex count %d", idx, i, n)
			}
		}
	}
	return nil
}

// WireframeFromTriangles expands a triangle list into a line list with three
// independent segments per triangle. Shared edges are not deduplicated.
func WireframeFromTriangles(indices []uint32) []uint32 {
	out := make([]uint32, 0, len(indices)*2)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		out = append(out, a, b, b, c, c, a)
	}
	return out
}

// encodeIndices packs indices in the requested format. Uint16 output is padded
// to a 4-byte multiple since queue writes must be 4-byte aligned.
func encodeIndices(indices []uint32, format wgpu.IndexFormat) []byte {
	if format == wgpu.IndexFormatUint32 {
		return common.SliceToBytes(indices)
	}
	narrow := make([]uint16, len(indices), len(indices)+1)
	for i, idx := range indices {
		narrow[i] = uint16(idx)
	}
	if len(narrow)%2 != 0 {
		narrow = append(narrow, 0)
	}
	return common.SliceToBytes(narrow)
}

// builder accumulates vertices and triangles for the generators.
type builder struct {
	vertices []float32
	indices  []uint32
}

func newBuilder(vertexCount, indexCount int) *builder {
	return &builder{
		vertices: make([]float32, 0, vertexCount*FloatsPerVertex),
		indices:  make([]uint32, 0, indexCount),
	}
}

func (b *builder) vertex(px, py, pz, nx, ny, nz float32) uint32 {
	b.vertices = append(b.vertices, px, py, pz, nx, ny, nz)
	return uint32(len(b.vertices)/FloatsPerVertex - 1)
}

func (b *builder) triangle(a, c, d uint32) {
	b.indices = append(b.indices, a, c, d)
}

func (b *builder) build() Geometry {
	return Geometry{
		Vertices:         b.vertices,
		Indices:          b.indices,
		WireframeIndices: WireframeFromTriangles(b.indices),
	}
}
