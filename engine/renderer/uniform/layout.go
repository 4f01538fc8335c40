// Package uniform describes fixed-layout uniform blocks as an ordered list of named fields.
// The same Layout drives CPU-side packing and the load-time check against the WGSL struct
// that reads the block.
package uniform

import (
	"fmt"
	"strings"
)

// Kind is the WGSL type of a uniform field.
type Kind int

const (
	// KindMat4 is a mat4x4<f32>, 16 floats.
	KindMat4 Kind = iota
	// KindVec4 is a vec4<f32>, 4 floats. With Count > 0 the field is array<vec4<f32>, Count>.
	KindVec4
)

// Field is a single named member of a uniform block.
type Field struct {
	Name  string
	Kind  Kind
	Count int
}

// Mat4 declares a 4x4 matrix field.
func Mat4(name string) Field { return Field{Name: name, Kind: KindMat4} }

// Vec4 declares a 4-component vector field.
func Vec4(name string) Field { return Field{Name: name, Kind: KindVec4} }

// Vec4Array declares a fixed-length array of 4-component vectors.
func Vec4Array(name string, count int) Field {
	return Field{Name: name, Kind: KindVec4, Count: count}
}

// Floats returns the number of float32 values the field occupies.
func (f Field) Floats() int {
	n := 4
	if f.Kind == KindMat4 {
		n = 16
	}
	if f.Count > 0 {
		n *= f.Count
	}
	return n
}

// Size returns the field size in bytes.
func (f Field) Size() uint64 {
	return uint64(f.Floats()) * 4
}

// WGSLType returns the WGSL spelling of the field type.
func (f Field) WGSLType() string {
	base := "vec4<f32>"
	if f.Kind == KindMat4 {
		base = "mat4x4<f32>"
	}
	if f.Count > 0 {
		return fmt.Sprintf("array<%s, %d>", base, f.Count)
	}
	return base
}

// Layout is an ordered list of fields with precomputed offsets. Every field kind is
// 16-byte aligned and a multiple of 16 bytes, so fields pack without padding.
type Layout struct {
	name    string
	fields  []Field
	offsets map[string]int
	floats  int
}

// NewLayout creates a Layout for the named WGSL struct. It panics on duplicate field
// names or zero-length arrays, which are programming errors.
//
// Parameters:
//   - name: the WGSL struct name the layout mirrors
//   - fields: the fields in declaration order
//
// Returns:
//   - *Layout: the immutable layout
func NewLayout(name string, fields ...Field) *Layout {
	l := &Layout{
		name:    name,
		fields:  make([]Field, 0, len(fields)),
		offsets: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := l.offsets[f.Name]; dup {
			panic(fmt.Sprintf("uniform: duplicate field %q in %s", f.Name, name))
		}
		if f.Count < 0 {
			panic(fmt.Sprintf("uniform: negative array length for %q in %s", f.Name, name))
		}
		l.offsets[f.Name] = l.floats
		l.floats += f.Floats()
		l.fields = append(l.fields, f)
	}
	return l
}

// Name returns the WGSL struct name.
func (l *Layout) Name() string { return l.name }

// Fields returns the fields in declaration order.
func (l *Layout) Fields() []Field { return l.fields }

// Size returns the block size in bytes.
func (l *Layout) Size() uint64 { return uint64(l.floats) * 4 }

// Offset returns the byte offset of the named field.
func (l *Layout) Offset(name string) (uint64, bool) {
	off, ok := l.offsets[name]
	return uint64(off) * 4, ok
}

// WGSL renders the layout as a WGSL struct declaration.
func (l *Layout) WGSL() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "struct %s {\n", l.name)
	for _, f := range l.fields {
		fmt.Fprintf(&sb, "    %s: %s,\n", f.Name, f.WGSLType())
	}
	sb.WriteString("};\n")
	return sb.String()
}

// NewBlock allocates a zeroed block for this layout.
func (l *Layout) NewBlock() *Block {
	return &Block{layout: l, data: make([]float32, l.floats)}
}
