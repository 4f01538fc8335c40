package pipeline

// RenderMode selects which pipeline variant a drawable draws with.
type RenderMode int

const (
	// RenderModeSolid draws filled, back-face culled triangles.
	RenderModeSolid RenderMode = iota

	// RenderModeWireframe draws every triangle edge as a line with culling disabled.
	RenderModeWireframe
)

// Entry points every mesh shader provides.
const (
	VertexEntryPoint            = "vs_main"
	SolidFragmentEntryPoint     = "fs_main"
	WireframeFragmentEntryPoint = "fs_wireframe"
)

func (m RenderMode) String() string {
	switch m {
	case RenderModeSolid:
		return "solid"
	case RenderModeWireframe:
		return "wireframe"
	default:
		return "unknown"
	}
}

// FragmentEntryPoint returns the fragment function a mesh shader uses for this mode.
func (m RenderMode) FragmentEntryPoint() string {
	if m == RenderModeWireframe {
		return WireframeFragmentEntryPoint
	}
	return SolidFragmentEntryPoint
}
