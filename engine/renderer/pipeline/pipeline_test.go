package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const meshSource = `struct VertexInput {
    @location(0) position: vec3f,
    @location(1) normal: vec3f,
};

struct VertexOutput {
    @builtin(position) clip: vec4f,
};

struct MeshUniforms {
    model: mat4x4f,
    view: mat4x4f,
    proj: mat4x4f,
    color: vec4f,
};

@group(0) @binding(0) var<uniform> u: MeshUniforms;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = u.proj * u.view * u.model * vec4f(in.position, 1.0);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
    return u.color;
}

@fragment
fn fs_wireframe(in: VertexOutput) -> @location(0) vec4f {
    return vec4f(1.0);
}
`

const instancedSource = `struct VertexInput {
    @location(0) position: vec3f,
    @location(1) normal: vec3f,
};

struct Frame {
    view: mat4x4f,
    proj: mat4x4f,
};

struct Instance {
    model: mat4x4f,
    color: vec4f,
};

@group(0) @binding(0) var<uniform> frame: Frame;
@group(0) @binding(1) var<storage, read> instances: array<Instance>;

@vertex
fn vs_main(in: VertexInput, @builtin(instance_index) i: u32) -> @builtin(position) vec4f {
    return frame.proj * frame.view * instances[i].model * vec4f(in.position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4f {
    return vec4f(1.0);
}
`

type fakeHandle struct{ released int }

func (h *fakeHandle) Release() { h.released++ }

func newShader(t *testing.T, key, src string) shader.Shader {
	t.Helper()
	s, err := shader.NewShader(key, src)
	require.NoError(t, err)
	return s
}

func TestNewMeshPipelineSolid(t *testing.T) {
	p := NewMeshPipeline("cube", newShader(t, "mesh", meshSource), RenderModeSolid, WithDepthBias(10000, 1, 0))

	assert.Equal(t, "cube/solid", p.Key())
	assert.Equal(t, RenderModeSolid, p.Mode())
	assert.Equal(t, "vs_main", p.VertexEntryPoint())
	assert.Equal(t, "fs_main", p.FragmentEntryPoint())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, int32(10000), p.DepthBias())
	assert.Equal(t, float32(1), p.DepthBiasSlopeScale())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Nil(t, p.BlendState())
	assert.NoError(t, p.Validate())
}

func TestNewMeshPipelineWireframeDropsDepthBias(t *testing.T) {
	p := NewMeshPipeline("torus", newShader(t, "mesh", meshSource), RenderModeWireframe, WithDepthBias(10000, 1, 0))

	assert.Equal(t, "torus/wireframe", p.Key())
	assert.Equal(t, "fs_wireframe", p.FragmentEntryPoint())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Zero(t, p.DepthBias())
	assert.Zero(t, p.DepthBiasSlopeScale())
	assert.NoError(t, p.Validate())
}

func TestMeshVertexLayout(t *testing.T) {
	layout := MeshVertexLayout()
	assert.Equal(t, uint64(24), layout.ArrayStride)
	require.Len(t, layout.Attributes, 2)
	assert.Equal(t, uint32(0), layout.Attributes[0].ShaderLocation)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[1].Format)
}

func TestValidateMissingFragmentEntry(t *testing.T) {
	p := NewMeshPipeline("sphere", newShader(t, "instanced", instancedSource), RenderModeWireframe)
	assert.ErrorIs(t, p.Validate(), ErrInvalidPipeline)
}

func TestValidateInstancedNeedsStorage(t *testing.T) {
	p := NewMeshPipeline("cubes", newShader(t, "mesh", meshSource), RenderModeSolid, WithInstanced())
	assert.ErrorIs(t, p.Validate(), ErrInvalidPipeline)

	p = NewMeshPipeline("cubes", newShader(t, "instanced", instancedSource), RenderModeSolid, WithInstanced())
	assert.True(t, p.Instanced())
	assert.NoError(t, p.Validate())
	assert.Equal(t, "cubes/solid", p.BindGroupLayoutDescriptor().Label)
}

func TestBlendStateOption(t *testing.T) {
	p := NewPipeline("overlay", newShader(t, "mesh", meshSource), WithBlendEnabled(true))
	require.NotNil(t, p.BlendState())
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, p.BlendState().Color.SrcFactor)

	p = NewPipeline("overlay", newShader(t, "mesh", meshSource), WithBlendState(nil))
	assert.False(t, p.BlendEnabled())
}

func TestReleaseIsIdempotent(t *testing.T) {
	p := NewPipeline("cube", newShader(t, "mesh", meshSource))
	h := &fakeHandle{}
	p.SetHandle(h)
	assert.Same(t, h, p.Handle())

	p.Release()
	p.Release()
	assert.Equal(t, 1, h.released)
	assert.Nil(t, p.Handle())
}

func TestRenderModeString(t *testing.T) {
	assert.Equal(t, "solid", RenderModeSolid.String())
	assert.Equal(t, "wireframe", RenderModeWireframe.String())
	assert.Equal(t, "unknown", RenderMode(9).String())
}
