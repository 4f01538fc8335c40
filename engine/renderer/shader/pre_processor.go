// pre_processor.go implements the WGSL include pre-processor. A line of the form
//
//	//@gpulab:include <name>
//
// is replaced with the source registered under <name>, so the mesh, plane, grid and
// model shaders can share the vertex input struct and lighting helpers.
package shader

import (
	"fmt"
	"strings"
)

// includePrefix marks an include directive inside a WGSL line comment.
const includePrefix = "//@gpulab:include"

// maxIncludeDepth bounds nested includes.
const maxIncludeDepth = 8

// IncludeResolver returns the WGSL source registered under name.
type IncludeResolver func(name string) (string, error)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	resolve  IncludeResolver
	included []string
}

// PreProcessor expands include directives in WGSL source.
type PreProcessor interface {
	// Process replaces every include directive with the resolved source. Includes may nest.
	// A name is only expanded once per Process call.
	//
	// Parameters:
	//   - source: the raw WGSL source code
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error if a directive is malformed, unknown, or nested too deeply
	Process(source string) (string, error)

	// Included returns the include names expanded by the most recent Process call, in order.
	//
	// Returns:
	//   - []string: the expanded include names
	Included() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor that resolves includes with resolve.
// A nil resolver rejects every include.
//
// Parameters:
//   - resolve: the include lookup
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(resolve IncludeResolver) PreProcessor {
	if resolve == nil {
		resolve = func(name string) (string, error) {
			return "", fmt.Errorf("no include resolver for %q", name)
		}
	}
	return &preProcessor{resolve: resolve}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.included = p.included[:0]
	seen := make(map[string]bool)
	return p.expand(source, seen, 0)
}

func (p *preProcessor) Included() []string {
	return p.included
}

func (p *preProcessor) expand(source string, seen map[string]bool, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("includes nested deeper than %d", maxIncludeDepth)
	}

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), includePrefix)
		if !ok {
			out = append(out, line)
			continue
		}

		args := strings.Fields(rest)
		if len(args) != 1 {
			return "", fmt.Errorf("line %d: include expects exactly one name, got %d", i+1, len(args))
		}
		name := args[0]
		if seen[name] {
			continue
		}
		seen[name] = true

		src, err := p.resolve(name)
		if err != nil {
			return "", fmt.Errorf("line %d: include %q: %w", i+1, name, err)
		}
		expanded, err := p.expand(src, seen, depth+1)
		if err != nil {
			return "", err
		}
		p.included = append(p.included, name)
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}
