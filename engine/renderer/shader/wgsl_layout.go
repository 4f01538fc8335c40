package shader

import (
	"strconv"
	"strings"
)

// hostLayout is the size and alignment of a type placed in a uniform or storage buffer.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
type hostLayout struct {
	size  uint64
	align uint64
}

// stride is the distance between consecutive array elements of this type.
func (h hostLayout) stride() uint64 {
	return alignTo(h.align, h.size)
}

// FieldLayout is the resolved placement of one struct member inside a host-shareable buffer.
type FieldLayout struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
}

// alignTo rounds v up to a multiple of align, which must be a power of two.
func alignTo(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// scalarSize returns the byte size of a WGSL scalar, accepting the one-letter suffixes used
// by vector and matrix shorthands (vec4f, mat4x4h).
func scalarSize(name string) (uint64, bool) {
	switch name {
	case "f32", "i32", "u32", "bool", "f", "i", "u":
		return 4, true
	case "f16", "h":
		return 2, true
	}
	return 0, false
}

// vectorLayout places an N-component vector of a scalar with the given size. Three-component
// vectors align like four-component ones.
func vectorLayout(n, scalar uint64) hostLayout {
	align := n * scalar
	if n == 3 {
		align = 4 * scalar
	}
	return hostLayout{size: n * scalar, align: align}
}

// splitTemplate splits "array<vec4f, 4>" into ("array", "vec4f, 4"). Types without a
// template list come back unchanged with an empty argument string.
func splitTemplate(t string) (base, args string) {
	before, after, ok := strings.Cut(t, "<")
	if !ok {
		return t, ""
	}
	return before, strings.TrimSuffix(after, ">")
}

// layoutOf resolves a WGSL type to its host-shareable layout. Struct names are looked up in
// structs. A runtime-sized array resolves to the layout of a single element, which is the
// smallest useful binding size.
//
// Parameters:
//   - typeName: the type as written in source, e.g. "mat4x4f" or "array<Instance>"
//   - structs: layouts of the structs resolved so far
//
// Returns:
//   - hostLayout: the size and alignment of the type
//   - bool: false if the type or one of its components is unknown
func layoutOf(typeName string, structs map[string]hostLayout) (hostLayout, bool) {
	t := strings.Join(strings.Fields(typeName), "")
	if size, ok := scalarSize(t); ok {
		return hostLayout{size, size}, true
	}
	if l, ok := structs[t]; ok {
		return l, true
	}

	base, args := splitTemplate(t)
	switch {
	case base == "atomic":
		return hostLayout{4, 4}, true

	case base == "array":
		elemName, count, sized := args, "", false
		if i := strings.LastIndex(args, ","); i >= 0 && !strings.Contains(args[i:], ">") {
			elemName, count, sized = args[:i], args[i+1:], true
		}
		elem, ok := layoutOf(elemName, structs)
		if !ok {
			return hostLayout{}, false
		}
		if !sized {
			return hostLayout{elem.stride(), elem.align}, true
		}
		n, err := strconv.ParseUint(count, 10, 64)
		if err != nil || n == 0 {
			return hostLayout{}, false
		}
		return hostLayout{n * elem.stride(), elem.align}, true

	case strings.HasPrefix(base, "vec") && len(base) >= 4:
		n := uint64(base[3] - '0')
		scalar := base[4:]
		if scalar == "" {
			scalar = args
		}
		size, ok := scalarSize(scalar)
		if !ok || n < 2 || n > 4 {
			return hostLayout{}, false
		}
		return vectorLayout(n, size), true

	case strings.HasPrefix(base, "mat") && len(base) >= 6 && base[4] == 'x':
		cols, rows := uint64(base[3]-'0'), uint64(base[5]-'0')
		scalar := base[6:]
		if scalar == "" {
			scalar = args
		}
		size, ok := scalarSize(scalar)
		if !ok || cols < 2 || cols > 4 || rows < 2 || rows > 4 {
			return hostLayout{}, false
		}
		column := vectorLayout(rows, size)
		return hostLayout{cols * column.stride(), column.align}, true
	}
	return hostLayout{}, false
}

// placeFields lays out the non-builtin members of ps in declaration order.
//
// Parameters:
//   - ps: the struct to lay out
//   - structs: layouts of the structs resolved so far
//
// Returns:
//   - []FieldLayout: the placed members
//   - hostLayout: the layout of the whole struct
//   - bool: false if any member type is unknown
func placeFields(ps wgslStruct, structs map[string]hostLayout) ([]FieldLayout, hostLayout, bool) {
	out := make([]FieldLayout, 0, len(ps.fields))
	var offset uint64
	align := uint64(1)
	for _, f := range ps.fields {
		if f.builtin {
			continue
		}
		l, ok := layoutOf(f.typeName, structs)
		if !ok {
			return nil, hostLayout{}, false
		}
		offset = alignTo(l.align, offset)
		out = append(out, FieldLayout{Name: f.name, Type: f.typeName, Offset: offset, Size: l.size})
		offset += l.size
		align = max(align, l.align)
	}
	return out, hostLayout{size: alignTo(align, offset), align: align}, true
}

// resolveStructs lays out every struct in the module. Structs may reference structs declared
// after them, so resolution repeats until a pass makes no progress. Structs that never
// resolve are left out of both maps.
//
// Parameters:
//   - structs: the parsed structs of a module
//
// Returns:
//   - map[string]hostLayout: struct name to whole-struct layout
//   - map[string][]FieldLayout: struct name to member placements
func resolveStructs(structs []wgslStruct) (map[string]hostLayout, map[string][]FieldLayout) {
	layouts := make(map[string]hostLayout, len(structs))
	members := make(map[string][]FieldLayout, len(structs))
	pending := structs
	for len(pending) > 0 {
		var next []wgslStruct
		for _, ps := range pending {
			fields, l, ok := placeFields(ps, layouts)
			if !ok {
				next = append(next, ps)
				continue
			}
			layouts[ps.name] = l
			members[ps.name] = fields
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return layouts, members
}
