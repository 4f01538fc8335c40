package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	memberRegex   = regexp.MustCompile(`^((?:@\w+(?:\([^)]*\))?\s*)*)(\w+)\s*:\s*(.+)$`)
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	entryRegex    = regexp.MustCompile(`@(vertex|fragment)\s+fn\s+(\w+)`)

	// @group(0) @binding(0) var<uniform> u: MeshUniforms;
	// @group(0) @binding(2) var plane_texture: texture_2d<f32>;
	bindingRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// vertexFormats maps a scalar kind to the vertex formats for 1 to 4 components.
// Reference: cogentcore gpu TypeToVertexFormat.
var vertexFormats = map[string][4]wgpu.VertexFormat{
	"f": {wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4},
	"i": {wgpu.VertexFormatSint32, wgpu.VertexFormatSint32x2, wgpu.VertexFormatSint32x3, wgpu.VertexFormatSint32x4},
	"u": {wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4},
	"h": {wgpu.VertexFormatUndefined, wgpu.VertexFormatFloat16x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatFloat16x4},
}

var textureDimensions = map[string]wgpu.TextureViewDimension{
	"1d":         wgpu.TextureViewDimension1D,
	"2d":         wgpu.TextureViewDimension2D,
	"2d_array":   wgpu.TextureViewDimension2DArray,
	"3d":         wgpu.TextureViewDimension3D,
	"cube":       wgpu.TextureViewDimensionCube,
	"cube_array": wgpu.TextureViewDimensionCubeArray,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

type wgslField struct {
	name     string
	typeName string
	location int // -1 without @location
	builtin  bool
}

type wgslStruct struct {
	name   string
	fields []wgslField
}

// vertexInput reports whether every member is a @location attribute, which is how a vertex
// input struct differs from the stage output struct carrying @builtin(position).
func (s wgslStruct) vertexInput() bool {
	if len(s.fields) == 0 {
		return false
	}
	for _, f := range s.fields {
		if f.builtin || f.location < 0 {
			return false
		}
	}
	return true
}

// bindingDecl records the variable and type name of one @group/@binding declaration.
type bindingDecl struct {
	varName      string
	typeName     string
	addressSpace string
}

// wgslModule is the metadata extracted from one preprocessed WGSL source.
type wgslModule struct {
	vertexEntries   []string
	fragmentEntries []string
	structs         []wgslStruct
	layouts         map[string]hostLayout
	members         map[string][]FieldLayout
	bindings        map[int]map[int]bindingDecl
}

// parseModule strips comments from source and extracts its entry points, structs and
// resource bindings. Declarations the parser does not understand are skipped.
//
// Parameters:
//   - source: the preprocessed WGSL source
//
// Returns:
//   - *wgslModule: the extracted metadata
func parseModule(source string) *wgslModule {
	code := stripComments(source)
	m := &wgslModule{bindings: make(map[int]map[int]bindingDecl)}

	for _, match := range entryRegex.FindAllStringSubmatch(code, -1) {
		if match[1] == "vertex" {
			m.vertexEntries = append(m.vertexEntries, match[2])
		} else {
			m.fragmentEntries = append(m.fragmentEntries, match[2])
		}
	}

	for _, match := range structRegex.FindAllStringSubmatch(code, -1) {
		m.structs = append(m.structs, wgslStruct{name: match[1], fields: parseMembers(match[2])})
	}
	m.layouts, m.members = resolveStructs(m.structs)

	for _, match := range bindingRegex.FindAllStringSubmatch(code, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		if m.bindings[group] == nil {
			m.bindings[group] = make(map[int]bindingDecl)
		}
		m.bindings[group][binding] = bindingDecl{
			varName:      match[4],
			typeName:     strings.TrimSpace(match[5]),
			addressSpace: strings.Join(strings.Fields(match[3]), ""),
		}
	}
	return m
}

// parseMembers splits a struct body into members. Commas inside template lists such as
// array<vec4f, 4> do not separate members.
func parseMembers(body string) []wgslField {
	var fields []wgslField
	depth, start := 0, 0
	emit := func(end int) {
		match := memberRegex.FindStringSubmatch(strings.TrimSpace(body[start:end]))
		if match == nil {
			return
		}
		f := wgslField{name: match[2], typeName: strings.TrimSpace(match[3]), location: -1}
		attrs := match[1]
		f.builtin = strings.Contains(attrs, "@builtin")
		if loc := locationRegex.FindStringSubmatch(attrs); loc != nil {
			f.location, _ = strconv.Atoi(loc[1])
		}
		fields = append(fields, f)
	}
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 {
				emit(i)
				start = i + 1
			}
		}
	}
	emit(len(body))
	return fields
}

// stripComments removes // line comments and nested /* */ block comments in a single pass.
// Newlines are kept so that the remaining source has the same line structure.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		var next byte
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case depth > 0 && c == '*' && next == '/':
			depth--
			i++
		case depth > 0:
			if c == '\n' {
				sb.WriteByte(c)
			}
		case c == '/' && next == '/':
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// vertexFormat maps a vertex attribute type to its format and byte size.
func vertexFormat(typeName string) (wgpu.VertexFormat, uint64, bool) {
	t := strings.Join(strings.Fields(typeName), "")
	n, kind := 1, ""
	if base, args := splitTemplate(t); strings.HasPrefix(base, "vec") && len(base) >= 4 {
		n = int(base[3] - '0')
		kind = base[4:]
		if kind == "" {
			kind = args
		}
	} else {
		kind = t
	}
	if len(kind) > 1 {
		kind = map[string]string{"f32": "f", "i32": "i", "u32": "u", "f16": "h"}[kind]
	}
	formats, ok := vertexFormats[kind]
	if !ok || n < 1 || n > 4 || formats[n-1] == wgpu.VertexFormatUndefined {
		return wgpu.VertexFormatUndefined, 0, false
	}
	size, _ := scalarSize(kind)
	return formats[n-1], uint64(n) * size, true
}

// vertexLayout builds a tightly packed vertex buffer layout from the first struct made only
// of @location members.
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout
//   - bool: false if the module has no usable vertex input struct
func (m *wgslModule) vertexLayout() (wgpu.VertexBufferLayout, bool) {
	for _, s := range m.structs {
		if !s.vertexInput() {
			continue
		}
		layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
		ok := true
		for _, f := range s.fields {
			format, size, known := vertexFormat(f.typeName)
			if !known {
				ok = false
				break
			}
			layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
				Format:         format,
				Offset:         layout.ArrayStride,
				ShaderLocation: uint32(f.location),
			})
			layout.ArrayStride += size
		}
		if ok {
			return layout, true
		}
	}
	return wgpu.VertexBufferLayout{}, false
}

// bindGroupLayouts converts the resource bindings into layout descriptors keyed by group,
// with entries sorted by binding index. Buffer entries carry the size of their bound type as
// MinBindingSize when it resolves.
//
// Parameters:
//   - visibility: the stages every entry is visible to
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the descriptors keyed by group index
func (m *wgslModule) bindGroupLayouts(visibility wgpu.ShaderStage) map[int]wgpu.BindGroupLayoutDescriptor {
	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(m.bindings))
	for group, decls := range m.bindings {
		bindings := make([]int, 0, len(decls))
		for b := range decls {
			bindings = append(bindings, b)
		}
		slices.Sort(bindings)

		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(bindings))
		for _, b := range bindings {
			entries = append(entries, m.layoutEntry(uint32(b), visibility, decls[b]))
		}
		out[group] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return out
}

// layoutEntry classifies one declaration as a buffer, sampler or texture binding.
func (m *wgslModule) layoutEntry(binding uint32, visibility wgpu.ShaderStage, d bindingDecl) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}

	switch {
	case d.addressSpace == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case d.addressSpace == "storage,read_write":
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
	case strings.HasPrefix(d.addressSpace, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case d.typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case d.typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(d.typeName, "texture_"):
		base, args := splitTemplate(strings.Join(strings.Fields(d.typeName), ""))
		kind := strings.TrimPrefix(base, "texture_")
		if depth, ok := strings.CutPrefix(kind, "depth_"); ok {
			entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
			kind = depth
		} else {
			entry.Texture.SampleType = sampleTypes[args]
		}
		if ms, ok := strings.CutPrefix(kind, "multisampled_"); ok {
			entry.Texture.Multisampled = true
			kind = ms
		}
		entry.Texture.ViewDimension = textureDimensions[kind]
	}

	if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
		if l, ok := layoutOf(d.typeName, m.layouts); ok {
			entry.Buffer.MinBindingSize = l.size
		}
	}
	return entry
}
