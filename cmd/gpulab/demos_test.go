package main

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/assets"
	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/camera"
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/loader"
	"github.com/Carmen-Shannon/gpulab-go/engine/object"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/rendertest"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/scene"
	"github.com/Carmen-Shannon/gpulab-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDemo(t *testing.T, count int, options ...loader.LoaderBuilderOption) (*demoContext, renderer.Renderer, *rendertest.Backend) {
	t.Helper()
	r, b := rendertest.NewRenderer()
	lib := shader.NewLibrary(assets.Shaders())
	object.ExpectLayouts(lib)
	return &demoContext{
		scene:   scene.NewScene("demo-test", camera.NewCamera(), r),
		shaders: lib,
		loader:  loader.NewLoader(loader.BackendTypeGLTF, options...),
		rng:     rand.New(rand.NewSource(7)),
		count:   count,
		spread:  10,
	}, r, b
}

func TestEveryConfiguredDemoHasABuilder(t *testing.T) {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
		assert.NotEmpty(t, demoLabels[name], name)
	}
	sort.Strings(names)
	want := append([]string(nil), config.Demos...)
	sort.Strings(want)
	assert.Equal(t, want, names)
}

func TestBuildPopulatesScene(t *testing.T) {
	cases := []struct {
		demo string
		want int
	}{
		{"cubes", 5},
		{"spheres", 5},
		{"tori", 5},
		{"grids", 1},
		{"planes", 5},
		{"instanced", 1},
	}
	for _, tc := range cases {
		t.Run(tc.demo, func(t *testing.T) {
			d, _, b := newTestDemo(t, 5)
			require.NoError(t, demos[tc.demo](context.Background(), d))
			assert.Equal(t, tc.want, d.scene.Len())

			d.scene.Clear()
			assert.Zero(t, d.scene.Len())
			for _, h := range b.Buffers {
				assert.Equal(t, 1, h.Released(), h.String())
			}
		})
	}
}

func TestCubesAreAnimatedByTheScene(t *testing.T) {
	d, _, _ := newTestDemo(t, 3)
	require.NoError(t, buildCubes(context.Background(), d))

	first := d.scene.Objects()[0].Props()
	before := first.Position
	d.scene.Run(500 * time.Millisecond)
	assert.NotEqual(t, before, first.Position)
}

func TestGridsLayoutHoldsEveryGrid(t *testing.T) {
	d, _, b := newTestDemo(t, 4)
	require.NoError(t, buildGrids(context.Background(), d))

	layout, ok := d.scene.Objects()[0].(*object.GridLayout)
	require.True(t, ok)
	assert.Equal(t, 4, layout.Len())

	pass := rendertest.NewPass()
	d.scene.Render(pass)
	assert.Len(t, pass.Draws, 4)
	for _, draw := range pass.Draws {
		assert.Equal(t, uint32(6), draw.IndexCount)
	}
	assert.NotEmpty(t, b.Writes)
}

func TestPlanesShareTheTexture(t *testing.T) {
	d, r, b := newTestDemo(t, 6)
	tex, err := r.CreateTexture("shared", common.SolidTexture(10, 20, 30, 255))
	require.NoError(t, err)
	d.texture = tex

	require.NoError(t, buildPlanes(context.Background(), d))
	assert.Equal(t, 6, d.scene.Len())
	require.Len(t, b.Textures, 2, "planes bind the shared texture instead of creating their own")

	d.scene.Clear()
	assert.Zero(t, b.Textures[0].Released(), "the shared texture outlives the planes")
}

func TestModelDemo(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		d, _, _ := newTestDemo(t, 1)
		err := buildModel(context.Background(), d)
		assert.ErrorIs(t, err, object.ErrAssetLoad)
		assert.ErrorIs(t, err, errNoModel)
		assert.Zero(t, d.scene.Len())
	})

	t.Run("loaded asynchronously", func(t *testing.T) {
		mesh := &loader.Mesh{
			Name:      "cube",
			Geometry:  geometry.Cube(1),
			BaseColor: [4]float32{1, 0, 0, 1},
			BoundsMin: [3]float32{-1, -1, -1},
			BoundsMax: [3]float32{1, 1, 1},
		}
		d, _, _ := newTestDemo(t, 1, loader.WithMesh("cube.glb", mesh))
		d.model = "cube.glb"

		require.NoError(t, buildModel(context.Background(), d))
		d.scene.Wait()
		assert.Zero(t, d.scene.Len(), "loads join the scene on the next Run")

		d.scene.Run(0)
		require.Equal(t, 1, d.scene.Len())
		m := d.scene.Objects()[0].(*object.Model)
		assert.True(t, m.Ready())
		assert.Equal(t, [4]float32{1, 0, 0, 1}, m.Props().Color)
	})
}

func TestInstancedWithNoCount(t *testing.T) {
	d, _, _ := newTestDemo(t, 0)
	require.NoError(t, buildInstanced(context.Background(), d))
	assert.Zero(t, d.scene.Len())
}
