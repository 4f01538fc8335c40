package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

type handle struct {
	name     string
	released int
}

func (h *handle) Release() { h.released++ }

func TestReleaseFreesOwnedResourcesOnce(t *testing.T) {
	vb, ib, wb := &handle{name: "vb"}, &handle{name: "ib"}, &handle{name: "wb"}
	ub, bg, bgl := &handle{name: "ub"}, &handle{name: "bg"}, &handle{name: "bgl"}
	tex, view, samp := &handle{name: "tex"}, &handle{name: "view"}, &handle{name: "samp"}

	p := NewBindGroupProvider("plane")
	p.SetMeshBuffers(vb, ib, wb, 6, 12, wgpu.IndexFormatUint16)
	p.SetBuffer(0, ub)
	p.SetBindGroup(bg)
	p.SetBindGroupLayout(bgl)
	p.SetTexture(2, tex, view)
	p.SetSampler(1, samp)

	assert.Equal(t, 6, p.IndexCount())
	assert.Equal(t, 12, p.WireframeIndexCount())
	assert.Same(t, view, p.TextureView(2))

	p.Release()
	p.Release()

	for _, h := range []*handle{vb, ib, wb, ub, bg, bgl, tex, view, samp} {
		assert.Equal(t, 1, h.released, h.name)
	}
	assert.True(t, p.Released())
	assert.Nil(t, p.VertexBuffer())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Zero(t, p.IndexCount())
}

func TestReleaseKeepsSharedResources(t *testing.T) {
	view, samp := &handle{}, &handle{}
	p := NewBindGroupProvider("plane", WithSharedTextureView(2, view), WithSharedSampler(1, samp))
	assert.Same(t, samp, p.Sampler(1))

	p.Release()
	assert.Zero(t, view.released)
	assert.Zero(t, samp.released)
	assert.Nil(t, p.TextureView(2))
}

func TestDefaultIndexFormat(t *testing.T) {
	p := NewBindGroupProvider("cube")
	assert.Equal(t, wgpu.IndexFormatUint16, p.IndexFormat())
	assert.Equal(t, "cube", p.Label())
	assert.False(t, p.Released())
}
