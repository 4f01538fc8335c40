package loader

import (
	"context"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor flattens the triangle primitives of a parsed document into one mesh,
// baking node transforms into positions and normals.
type gltfMeshExtractor interface {
	// Extract walks the default scene, or every root node when the document has no scene,
	// and merges every triangle primitive it reaches. A document without nodes has its
	// meshes merged untransformed.
	//
	// Parameters:
	//   - ctx: checked between primitives
	//
	// Returns:
	//   - *Mesh: the merged mesh with its base color taken from the first material
	//   - error: ErrNoMeshes when nothing is reachable, or a read error
	Extract(ctx context.Context) (*Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

// meshBuilder accumulates interleaved vertices and indices across primitives.
type meshBuilder struct {
	vertices  []float32
	indices   []uint32
	material  *int
	primCount int
}

func (e *gltfMeshExtractorImpl) Extract(ctx context.Context) (*Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	b := &meshBuilder{}
	if len(doc.Nodes) == 0 {
		for i := range doc.Meshes {
			if err := e.appendMesh(ctx, b, i, mgl32.Ident4()); err != nil {
				return nil, err
			}
		}
	} else {
		for _, root := range gltfRootNodes(doc) {
			if err := e.walk(ctx, b, root, mgl32.Ident4(), 0); err != nil {
				return nil, err
			}
		}
	}

	if b.primCount == 0 || len(b.indices) == 0 {
		return nil, ErrNoMeshes
	}

	g := geometry.Geometry{
		Vertices:         b.vertices,
		Indices:          b.indices,
		WireframeIndices: geometry.WireframeFromTriangles(b.indices),
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	m := &Mesh{
		Geometry:  g,
		BaseColor: gltfBaseColor(doc, b.material),
	}
	m.BoundsMin, m.BoundsMax = boundingBox(b.vertices)
	return m, nil
}

// gltfRootNodes returns the nodes of the default scene, the first scene, or every node
// that is nobody's child.
func gltfRootNodes(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			scene = *doc.Scene
		}
		return doc.Scenes[scene].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// maxNodeDepth bounds recursion through malformed, cyclic hierarchies.
const maxNodeDepth = 64

func (e *gltfMeshExtractorImpl) walk(ctx context.Context, b *meshBuilder, nodeIndex int, parent mgl32.Mat4, depth int) error {
	doc := e.parser.Document()
	if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", nodeIndex)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("%w: node hierarchy deeper than %d", ErrUnsupportedFormat, maxNodeDepth)
	}

	node := &doc.Nodes[nodeIndex]
	world := parent.Mul4(gltfNodeMatrix(node))
	if node.Mesh != nil {
		if err := e.appendMesh(ctx, b, *node.Mesh, world); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := e.walk(ctx, b, child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// gltfNodeMatrix returns the node's local transform, T * R * S unless a matrix is given.
func gltfNodeMatrix(node *gltfNode) mgl32.Mat4 {
	if node.Matrix != nil {
		return mgl32.Mat4(*node.Matrix)
	}
	m := mgl32.Ident4()
	if t := node.Translation; t != nil {
		m = m.Mul4(mgl32.Translate3D(t[0], t[1], t[2]))
	}
	if r := node.Rotation; r != nil {
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		m = m.Mul4(q.Normalize().Mat4())
	}
	if s := node.Scale; s != nil {
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}

func (e *gltfMeshExtractorImpl) appendMesh(ctx context.Context, b *meshBuilder, meshIndex int, world mgl32.Mat4) error {
	doc := e.parser.Document()
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	normalMatrix := world.Mat3().Inv().Transpose()
	for i := range doc.Meshes[meshIndex].Primitives {
		if err := ctx.Err(); err != nil {
			return err
		}
		prim := &doc.Meshes[meshIndex].Primitives[i]
		if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
			continue
		}
		if err := e.appendPrimitive(b, prim, world, normalMatrix); err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", meshIndex, i, err)
		}
	}
	return nil
}

func (e *gltfMeshExtractorImpl) appendPrimitive(b *meshBuilder, prim *gltfPrimitive, world mgl32.Mat4, normalMatrix mgl32.Mat3) error {
	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return fmt.Errorf("failed to read positions: %w", err)
	}

	var normals [][3]float32
	if normalAccessor, ok := prim.Attributes["NORMAL"]; ok {
		normals, err = e.parser.ReadVec3Accessor(normalAccessor)
		if err != nil {
			return fmt.Errorf("failed to read normals: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	indices = indices[:len(indices)-len(indices)%3]

	if len(normals) != len(positions) {
		normals = generateNormals(positions, indices)
	}

	base := uint32(len(b.vertices) / geometry.FloatsPerVertex)
	for i, p := range positions {
		wp := world.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
		n := normalMatrix.Mul3x1(mgl32.Vec3(normals[i]))
		if n.Len() > 1e-6 {
			n = n.Normalize()
		}
		b.vertices = append(b.vertices, wp[0], wp[1], wp[2], n[0], n[1], n[2])
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
		}
		b.indices = append(b.indices, base+idx)
	}

	if b.material == nil {
		b.material = prim.Material
	}
	b.primCount++
	return nil
}

// generateNormals computes smooth normals by accumulating area-weighted face normals onto
// each vertex of every triangle. Vertices touching no triangle get +Y.
func generateNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	n := len(positions)
	accum := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		p0, p1, p2 := mgl32.Vec3(positions[i0]), mgl32.Vec3(positions[i1]), mgl32.Vec3(positions[i2])
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	normals := make([][3]float32, n)
	for i, a := range accum {
		if a.Len() < 1e-6 {
			normals[i] = [3]float32{0, 1, 0}
			continue
		}
		normals[i] = a.Normalize()
	}
	return normals
}

// gltfBaseColor returns the base color factor of the material, or opaque white.
func gltfBaseColor(doc *gltfDocument, material *int) [4]float32 {
	white := [4]float32{1, 1, 1, 1}
	if material == nil || *material < 0 || *material >= len(doc.Materials) {
		return white
	}
	pbr := doc.Materials[*material].PbrMetallicRoughness
	if pbr == nil || pbr.BaseColorFactor == nil {
		return white
	}
	return *pbr.BaseColorFactor
}

func boundingBox(vertices []float32) ([3]float32, [3]float32) {
	if len(vertices) < geometry.FloatsPerVertex {
		return [3]float32{}, [3]float32{}
	}
	bmin := [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	bmax := [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for i := 0; i+geometry.FloatsPerVertex <= len(vertices); i += geometry.FloatsPerVertex {
		for j := 0; j < 3; j++ {
			bmin[j] = math32.Min(bmin[j], vertices[i+j])
			bmax[j] = math32.Max(bmax[j], vertices[i+j])
		}
	}
	return bmin, bmax
}
