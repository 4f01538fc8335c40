package uniform

import (
	"testing"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meshLayout() *Layout {
	return NewLayout("MeshUniforms",
		Mat4("model"),
		Mat4("view"),
		Mat4("proj"),
		Vec4("color"),
		Vec4Array("params", 4),
	)
}

func TestLayoutOffsets(t *testing.T) {
	l := meshLayout()

	for name, want := range map[string]uint64{"model": 0, "view": 64, "proj": 128, "color": 192, "params": 208} {
		off, ok := l.Offset(name)
		require.True(t, ok, name)
		assert.Equal(t, want, off, name)
	}
	_, ok := l.Offset("gridModel")
	assert.False(t, ok)
	assert.Equal(t, uint64(272), l.Size())
}

func TestLayoutWGSL(t *testing.T) {
	want := "struct MeshUniforms {\n" +
		"    model: mat4x4<f32>,\n" +
		"    view: mat4x4<f32>,\n" +
		"    proj: mat4x4<f32>,\n" +
		"    color: vec4<f32>,\n" +
		"    params: array<vec4<f32>, 4>,\n" +
		"};\n"
	assert.Equal(t, want, meshLayout().WGSL())
}

func TestNewLayoutPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() { NewLayout("Dup", Vec4("a"), Vec4("a")) })
}

func TestBlockPacking(t *testing.T) {
	b := meshLayout().NewBlock()
	model := common.Translation(1, 2, 3)
	b.SetMat4("model", model)
	b.SetVec4("color", [4]float32{0.1, 0.2, 0.3, 1})
	b.SetVec4Array("params", [][4]float32{{1, 2, 3, 4}})

	assert.Equal(t, model, b.Mat4("model"))
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, b.Vec4("color"))

	f := b.Floats()
	assert.Equal(t, float32(1), f[12])
	assert.Equal(t, float32(0.1), f[48])
	assert.Equal(t, []float32{1, 2, 3, 4, 0, 0, 0, 0}, f[52:60])
	assert.Len(t, b.Bytes(), 272)
}

func TestBlockArrayTruncatesAndClears(t *testing.T) {
	b := NewLayout("P", Vec4Array("params", 2)).NewBlock()
	b.SetVec4Array("params", [][4]float32{{1, 1, 1, 1}, {2, 2, 2, 2}, {3, 3, 3, 3}})
	assert.Equal(t, []float32{1, 1, 1, 1, 2, 2, 2, 2}, b.Floats())

	b.SetVec4Array("params", nil)
	assert.Equal(t, make([]float32, 8), b.Floats())
}

func TestBlockPanicsOnUnknownOrMismatchedField(t *testing.T) {
	b := meshLayout().NewBlock()
	assert.Panics(t, func() { b.SetVec4("nope", [4]float32{}) })
	assert.Panics(t, func() { b.SetVec4("model", [4]float32{}) })
}
