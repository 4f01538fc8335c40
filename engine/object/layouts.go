package object

import (
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/uniform"
)

// Shader keys of the built-in drawables.
const (
	MeshShader      = "mesh"
	TorusShader     = "torus"
	PlaneShader     = "plane"
	GridShader      = "grid"
	ModelShader     = "model"
	InstancedShader = "instanced"
)

var (
	// MeshUniforms is the uniform block of cubes and spheres.
	MeshUniforms = uniform.NewLayout("MeshUniforms",
		uniform.Mat4("model"),
		uniform.Mat4("view"),
		uniform.Mat4("proj"),
		uniform.Vec4("color"),
		uniform.Vec4Array("params", MaxParams),
	)

	// TorusUniforms adds the ring shape to MeshUniforms.
	TorusUniforms = uniform.NewLayout("TorusUniforms",
		uniform.Mat4("model"),
		uniform.Mat4("view"),
		uniform.Mat4("proj"),
		uniform.Vec4("color"),
		uniform.Vec4("torus"),
		uniform.Vec4Array("params", MaxParams),
	)

	// PlaneUniforms carries the texture flag in flags.x.
	PlaneUniforms = uniform.NewLayout("PlaneUniforms",
		uniform.Mat4("model"),
		uniform.Mat4("view"),
		uniform.Mat4("proj"),
		uniform.Vec4("color"),
		uniform.Vec4("flags"),
	)

	// GridUniforms carries the cell count and spacing in grid.xy.
	GridUniforms = uniform.NewLayout("GridUniforms",
		uniform.Mat4("model"),
		uniform.Mat4("view"),
		uniform.Mat4("proj"),
		uniform.Vec4("color"),
		uniform.Vec4("activeColor"),
		uniform.Vec4("grid"),
	)

	// ModelUniforms is the uniform block of loaded models.
	ModelUniforms = uniform.NewLayout("ModelUniforms",
		uniform.Mat4("model"),
		uniform.Mat4("view"),
		uniform.Mat4("proj"),
		uniform.Vec4("color"),
	)

	// FrameUniforms is the per-draw block of instanced cubes; transforms live in the
	// instance storage buffer.
	FrameUniforms = uniform.NewLayout("FrameUniforms",
		uniform.Mat4("view"),
		uniform.Mat4("proj"),
	)
)

// ExpectLayouts registers the uniform layout of every built-in shader with lib so a shader
// drifting from its drawable fails to load.
//
// Parameters:
//   - lib: the shader library
func ExpectLayouts(lib shader.Library) {
	lib.Expect(MeshShader, 0, 0, MeshUniforms)
	lib.Expect(TorusShader, 0, 0, TorusUniforms)
	lib.Expect(PlaneShader, 0, 0, PlaneUniforms)
	lib.Expect(GridShader, 0, 0, GridUniforms)
	lib.Expect(ModelShader, 0, 0, ModelUniforms)
	lib.Expect(InstancedShader, 0, 0, FrameUniforms)
}
