package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/uniform"
)

var (
	// ErrLayoutMismatch is returned when a uniform layout disagrees with the WGSL struct it feeds.
	ErrLayoutMismatch = errors.New("shader: uniform layout mismatch")

	// ErrUnknownInclude is returned when an include directive names no registered source.
	ErrUnknownInclude = errors.New("shader: unknown include")
)

// CheckUniformLayout verifies that the struct bound at group/binding has exactly the
// fields of layout, in the same order, at the same offsets and with the same sizes.
//
// Parameters:
//   - s: the parsed shader
//   - group: the bind group index of the uniform
//   - binding: the binding index of the uniform
//   - layout: the CPU-side layout used to pack the buffer
//
// Returns:
//   - error: nil if the layouts agree, otherwise an error wrapping ErrLayoutMismatch
func CheckUniformLayout(s Shader, group, binding int, layout *uniform.Layout) error {
	typeName := s.BindGroupTypeName(group, binding)
	if typeName == "" {
		return fmt.Errorf("%w: %s declares nothing at @group(%d) @binding(%d)", ErrLayoutMismatch, s.Key(), group, binding)
	}
	if typeName != layout.Name() {
		return fmt.Errorf("%w: %s binds %s at @group(%d) @binding(%d), layout describes %s",
			ErrLayoutMismatch, s.Key(), typeName, group, binding, layout.Name())
	}

	members, ok := s.StructLayout(typeName)
	if !ok {
		return fmt.Errorf("%w: %s has no resolvable struct %s", ErrLayoutMismatch, s.Key(), typeName)
	}

	fields := layout.Fields()
	if len(members) != len(fields) {
		return fmt.Errorf("%w: %s.%s has %d members, layout has %d fields",
			ErrLayoutMismatch, s.Key(), typeName, len(members), len(fields))
	}
	for i, f := range fields {
		m := members[i]
		off, _ := layout.Offset(f.Name)
		switch {
		case m.Name != f.Name:
			return fmt.Errorf("%w: %s.%s member %d is %q, layout expects %q",
				ErrLayoutMismatch, s.Key(), typeName, i, m.Name, f.Name)
		case m.Offset != off:
			return fmt.Errorf("%w: %s.%s.%s at offset %d, layout expects %d",
				ErrLayoutMismatch, s.Key(), typeName, f.Name, m.Offset, off)
		case m.Size != f.Size():
			return fmt.Errorf("%w: %s.%s.%s is %d bytes (%s), layout expects %d (%s)",
				ErrLayoutMismatch, s.Key(), typeName, f.Name, m.Size, m.Type, f.Size(), f.WGSLType())
		}
	}
	return nil
}
