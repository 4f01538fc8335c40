package object

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
)

// InstanceStride is the byte size of one Instance in the storage buffer: a model matrix
// followed by a color.
const InstanceStride = (16 + 4) * 4

// Instance is the per-instance state of an InstancedCubes.
type Instance struct {
	Position common.Vec3
	Rotation common.Vec3
	Scale    common.Vec3
	Color    [4]float32

	// Spin is a rotation rate in radians per second applied by Run.
	Spin common.Vec3
}

// InstancedCubes draws many cubes with one indexed draw. Transforms and colors live in a
// storage buffer; only instances changed since the last upload are written.
type InstancedCubes struct {
	*mesh
	props CubeProps

	items   []Instance
	staging []float32

	dirtyIndices []uint32
	dirtyBitset  []uint64
}

// NewInstancedCubes creates an instanced cube batch. The number of instances is fixed.
//
// Parameters:
//   - s: a shader binding FrameUniforms at binding 0 and an Instance storage array at binding 1
//   - props: the shared props; Subdivisions and Mode apply to every instance
//   - instances: the initial instance state, copied
//   - options: a variadic list of ObjectBuilderOption functions
//
// Returns:
//   - *InstancedCubes: the new batch
func NewInstancedCubes(s shader.Shader, props CubeProps, instances []Instance, options ...ObjectBuilderOption) *InstancedCubes {
	if props.Subdivisions <= 0 {
		props.Subdivisions = geometry.DefaultCubeSubdivisions
	}
	c := &InstancedCubes{
		props:       props,
		items:       append([]Instance(nil), instances...),
		staging:     make([]float32, len(instances)*InstanceStride/4),
		dirtyBitset: make([]uint64, (len(instances)+63)/64),
	}
	c.mesh = newMesh("instanced-cubes", s, FrameUniforms, &c.props.Props, options...)
	c.sharedOpts = append(c.sharedOpts, pipeline.WithInstanced())
	c.sizes = map[int]uint64{pipeline.InstanceBinding: uint64(max(len(instances), 1) * InstanceStride)}
	c.geometry = func() (geometry.Geometry, error) {
		if len(c.items) == 0 {
			return geometry.Geometry{}, fmt.Errorf("%w: %s has no instances", ErrGPUInit, c.label)
		}
		return geometry.Cube(c.props.Subdivisions), nil
	}
	c.stage = c.stageDirty
	c.mesh.instances = func() uint32 {
		return uint32(len(c.items))
	}
	for i := range c.items {
		c.markDirty(uint32(i))
	}
	return c
}

// Len returns the number of instances.
func (c *InstancedCubes) Len() int {
	return len(c.items)
}

// Instance returns a copy of instance i.
func (c *InstancedCubes) Instance(i int) Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[i]
}

// UpdateInstance applies fn to instance i and uploads it. Out of range indices are ignored.
func (c *InstancedCubes) UpdateInstance(i int, fn func(inst *Instance)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || i < 0 || i >= len(c.items) {
		return
	}
	fn(&c.items[i])
	c.markDirty(uint32(i))
	c.upload()
}

// CubeProps returns the live shared props.
func (c *InstancedCubes) CubeProps() *CubeProps {
	return &c.props
}

// Run advances every spinning instance, then uploads the changed ones.
func (c *InstancedCubes) Run(dt time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready || c.destroyed {
		return
	}
	secs := float32(dt.Seconds())
	changed := false
	for i := range c.items {
		inst := &c.items[i]
		spin := inst.Spin.Add(c.props.Spin)
		if spin == (common.Vec3{}) {
			continue
		}
		inst.Rotation = inst.Rotation.Add(spin.Mul(secs))
		c.markDirty(uint32(i))
		changed = true
	}
	if changed {
		c.upload()
	}
}

func (c *InstancedCubes) markDirty(i uint32) {
	word, bit := i/64, uint64(1)<<(i%64)
	if c.dirtyBitset[word]&bit != 0 {
		return
	}
	c.dirtyBitset[word] |= bit
	c.dirtyIndices = append(c.dirtyIndices, i)
}

// stageDirty packs the dirty instances and returns one write spanning the lowest to the
// highest dirty index. It runs under mu.
func (c *InstancedCubes) stageDirty() []renderer.BufferWrite {
	if len(c.dirtyIndices) == 0 {
		return nil
	}

	const floats = InstanceStride / 4
	for _, i := range c.dirtyIndices {
		inst := &c.items[i]
		dst := c.staging[int(i)*floats : int(i+1)*floats]
		model := common.ModelMatrix(inst.Position, inst.Rotation, inst.Scale)
		copy(dst, model[:])
		copy(dst[16:], inst.Color[:])
	}

	first, last := c.dirtyIndices[0], c.dirtyIndices[0]
	for _, i := range c.dirtyIndices {
		first, last = min(first, i), max(last, i)
		c.dirtyBitset[i/64] = 0
	}
	c.dirtyIndices = c.dirtyIndices[:0]

	data := common.SliceToBytes(c.staging[int(first)*floats : int(last+1)*floats])
	return []renderer.BufferWrite{{
		Provider: c.provider,
		Binding:  pipeline.InstanceBinding,
		Offset:   uint64(first) * InstanceStride,
		Data:     data,
	}}
}
