package shader

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoVertexEntry is returned when a shader declares no @vertex function.
var ErrNoVertexEntry = errors.New("shader: no @vertex entry point")

// shader is the implementation of the Shader interface.
// It holds the parsed metadata needed to build pipelines and bind groups from one WGSL module.
type shader struct {
	key                        string
	source                     string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindings                   map[int]map[int]bindingDecl
	structs                    map[string][]FieldLayout
	vertexLayout               wgpu.VertexBufferLayout
	hasVertexLayout            bool
	vertexEntry                string
	fragmentEntries            []string
	module                     *wgpu.ShaderModuleDescriptor
	includes                   []string
}

// Shader is a parsed WGSL module holding a vertex entry point and one or more fragment
// entry points. It exposes the metadata needed to build render pipelines and bind groups.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL source code after include expansion.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// VertexEntryPoint returns the name of the first @vertex function.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	VertexEntryPoint() string

	// FragmentEntryPoints returns the names of every @fragment function in declaration order.
	//
	// Returns:
	//   - []string: the fragment entry point names
	FragmentEntryPoints() []string

	// HasFragmentEntryPoint reports whether a @fragment function with the given name exists.
	//
	// Parameters:
	//   - name: the function name to look for
	//
	// Returns:
	//   - bool: true if the entry point exists
	HasFragmentEntryPoint(name string) bool

	// VertexLayout returns the vertex buffer layout parsed from the vertex input struct.
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: the parsed layout
	//   - bool: false if the shader has no vertex input struct
	VertexLayout() (wgpu.VertexBufferLayout, bool)

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not declared
	BindGroupVarName(group, binding int) string

	// BindGroupTypeName retrieves the WGSL type bound at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the type name, or an empty string if not declared
	BindGroupTypeName(group, binding int) string

	// StructLayout returns the resolved member placement of a WGSL struct declared in the module.
	//
	// Parameters:
	//   - name: the struct name
	//
	// Returns:
	//   - []FieldLayout: the placed members in declaration order
	//   - bool: false if the struct is unknown or contains unresolvable types
	StructLayout(name string) ([]FieldLayout, bool)

	// Includes returns the include names expanded into the source.
	//
	// Returns:
	//   - []string: the include names
	Includes() []string
}

var _ Shader = &shader{}

// NewShader parses WGSL source into a Shader. Include directives are expanded before parsing.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - source: the WGSL source code
//   - options: functional options to further configure parsing
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if includes fail to resolve or no vertex entry point exists
func NewShader(key, source string, options ...ShaderBuilderOption) (Shader, error) {
	cfg := &shaderConfig{}
	for _, option := range options {
		option(cfg)
	}

	pp := NewPreProcessor(cfg.resolve)
	expanded, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:      key,
		source:   expanded,
		includes: slices.Clone(pp.Included()),
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: expanded,
			},
		},
	}
	s.parse()

	if s.vertexEntry == "" {
		return nil, fmt.Errorf("shader %s: %w", key, ErrNoVertexEntry)
	}
	return s, nil
}

// LoadShader reads WGSL source from a file and parses it with NewShader.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - path: the WGSL file path
//   - options: functional options passed to NewShader
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the file cannot be read or parsing fails
func LoadShader(key, path string, options ...ShaderBuilderOption) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to read %q: %w", key, path, err)
	}
	return NewShader(key, string(data), options...)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntry
}

func (s *shader) FragmentEntryPoints() []string {
	return s.fragmentEntries
}

func (s *shader) HasFragmentEntryPoint(name string) bool {
	return slices.Contains(s.fragmentEntries, name)
}

func (s *shader) VertexLayout() (wgpu.VertexBufferLayout, bool) {
	return s.vertexLayout, s.hasVertexLayout
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindings[group][binding].varName
}

func (s *shader) BindGroupTypeName(group, binding int) string {
	return s.bindings[group][binding].typeName
}

func (s *shader) StructLayout(name string) ([]FieldLayout, bool) {
	fl, ok := s.structs[name]
	return fl, ok
}

func (s *shader) Includes() []string {
	return s.includes
}

// parse extracts entry points, the vertex layout, bind group layouts and struct placements.
// Every binding is made visible to both stages since one module serves both.
func (s *shader) parse() {
	m := parseModule(s.source)
	if len(m.vertexEntries) > 0 {
		s.vertexEntry = m.vertexEntries[0]
	}
	s.fragmentEntries = m.fragmentEntries
	s.vertexLayout, s.hasVertexLayout = m.vertexLayout()
	s.bindGroupLayoutDescriptors = m.bindGroupLayouts(wgpu.ShaderStageVertex | wgpu.ShaderStageFragment)
	s.bindings = m.bindings
	s.structs = m.members
}
