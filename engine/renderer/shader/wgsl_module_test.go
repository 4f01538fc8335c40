package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutOf(t *testing.T) {
	structs := map[string]hostLayout{"Instance": {size: 80, align: 16}}
	tests := []struct {
		typeName string
		want     hostLayout
	}{
		{"f32", hostLayout{4, 4}},
		{"vec2f", hostLayout{8, 8}},
		{"vec3f", hostLayout{12, 16}},
		{"vec3<f32>", hostLayout{12, 16}},
		{"vec4f", hostLayout{16, 16}},
		{"vec4h", hostLayout{8, 8}},
		{"mat4x4f", hostLayout{64, 16}},
		{"mat4x4<f32>", hostLayout{64, 16}},
		{"mat3x3f", hostLayout{48, 16}},
		{"mat2x2f", hostLayout{16, 8}},
		{"array<vec4f, 4>", hostLayout{64, 16}},
		{"array<vec3f, 2>", hostLayout{32, 16}},
		{"array<Instance>", hostLayout{80, 16}},
		{"array<array<vec4f, 2>, 3>", hostLayout{96, 16}},
		{"atomic<u32>", hostLayout{4, 4}},
	}
	for _, tc := range tests {
		t.Run(tc.typeName, func(t *testing.T) {
			got, ok := layoutOf(tc.typeName, structs)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"Unknown", "vec9f", "array<vec4f, 0>", "mat4x4q"} {
		_, ok := layoutOf(bad, structs)
		assert.False(t, ok, bad)
	}
}

func TestStripComments(t *testing.T) {
	src := "a // line\nb /* block /* nested */ still */ c\n/* one\ntwo */d"
	assert.Equal(t, "a \nb  c\n\nd", stripComments(src))
}

func TestParseModuleResolvesForwardReferences(t *testing.T) {
	m := parseModule(`
struct Frame {
    lights: array<Light, 2>,
    count: u32,
};
struct Light {
    position: vec3f,
    color: vec4f,
};
@group(1) @binding(3) var<storage, read_write> frames: array<Frame>;
`)
	require.Contains(t, m.layouts, "Light")
	assert.Equal(t, hostLayout{32, 16}, m.layouts["Light"])
	require.Contains(t, m.members, "Frame")
	assert.Equal(t, uint64(64), m.members["Frame"][1].Offset)
	assert.Equal(t, hostLayout{80, 16}, m.layouts["Frame"])

	entry := m.bindGroupLayouts(wgpu.ShaderStageFragment)[1].Entries[0]
	assert.Equal(t, uint32(3), entry.Binding)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, entry.Buffer.Type)
	assert.Equal(t, uint64(80), entry.Buffer.MinBindingSize)
}

func TestParseModuleTextures(t *testing.T) {
	m := parseModule(`
@group(0) @binding(0) var shadow: texture_depth_2d;
@group(0) @binding(1) var msaa: texture_multisampled_2d<f32>;
@group(0) @binding(2) var sky: texture_cube<f32>;
@group(0) @binding(3) var cmp: sampler_comparison;
`)
	entries := m.bindGroupLayouts(wgpu.ShaderStageFragment)[0].Entries
	require.Len(t, entries, 4)

	assert.Equal(t, wgpu.TextureSampleTypeDepth, entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, entries[0].Texture.ViewDimension)
	assert.True(t, entries[1].Texture.Multisampled)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, entries[1].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimensionCube, entries[2].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, entries[3].Sampler.Type)
}

func TestVertexLayoutSkipsStageOutputs(t *testing.T) {
	m := parseModule(`
struct Out {
    @builtin(position) clip: vec4f,
    @location(0) uv: vec2f,
};
struct In {
    @location(0) position: vec3f,
    @location(2) uv: vec2<f32>,
    @location(3) id: u32,
};
`)
	layout, ok := m.vertexLayout()
	require.True(t, ok)
	assert.Equal(t, uint64(24), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[1].Format)
	assert.Equal(t, uint32(2), layout.Attributes[1].ShaderLocation)
	assert.Equal(t, wgpu.VertexFormatUint32, layout.Attributes[2].Format)
	assert.Equal(t, uint64(20), layout.Attributes[2].Offset)
}
