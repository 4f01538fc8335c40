package uniform

import (
	"fmt"

	"github.com/Carmen-Shannon/gpulab-go/common"
)

// Block is the CPU-side copy of a uniform buffer. It is reused for every upload
// so packing does not allocate.
type Block struct {
	layout *Layout
	data   []float32
}

// Layout returns the layout the block was created from.
func (b *Block) Layout() *Layout { return b.layout }

// Floats returns the packed values. The slice aliases the block.
func (b *Block) Floats() []float32 { return b.data }

// Bytes returns the packed values as bytes. The slice aliases the block.
func (b *Block) Bytes() []byte { return common.SliceToBytes(b.data) }

// SetMat4 writes a matrix field.
func (b *Block) SetMat4(name string, m common.Mat4) {
	dst := b.slot(name, KindMat4)
	copy(dst, m[:])
}

// SetVec4 writes a vector field.
func (b *Block) SetVec4(name string, v [4]float32) {
	dst := b.slot(name, KindVec4)
	copy(dst, v[:])
}

// SetVec4Array writes an array field. Missing trailing entries are zeroed and entries
// beyond the declared length are dropped.
func (b *Block) SetVec4Array(name string, vs [][4]float32) {
	dst := b.slot(name, KindVec4)
	clear(dst)
	for i := 0; i < len(vs) && (i+1)*4 <= len(dst); i++ {
		copy(dst[i*4:], vs[i][:])
	}
}

// Mat4 reads back a matrix field.
func (b *Block) Mat4(name string) common.Mat4 {
	var m common.Mat4
	copy(m[:], b.slot(name, KindMat4))
	return m
}

// Vec4 reads back a vector field, or the first element of an array field.
func (b *Block) Vec4(name string) [4]float32 {
	var v [4]float32
	copy(v[:], b.slot(name, KindVec4))
	return v
}

func (b *Block) slot(name string, kind Kind) []float32 {
	off, ok := b.layout.offsets[name]
	if !ok {
		panic(fmt.Sprintf("uniform: %s has no field %q", b.layout.name, name))
	}
	for _, f := range b.layout.fields {
		if f.Name == name {
			if f.Kind != kind {
				panic(fmt.Sprintf("uniform: field %q in %s has a different kind", name, b.layout.name))
			}
			return b.data[off : off+f.Floats()]
		}
	}
	return nil
}
