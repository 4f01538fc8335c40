package renderer

import "github.com/Carmen-Shannon/gpulab-go/engine/renderer/bind_group_provider"

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider bind_group_provider.BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
