package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/uniform"
	"github.com/fsnotify/fsnotify"
)

// includeDir is the sub-directory holding include sources, both embedded and on disk.
const includeDir = "include"

// expectation records a uniform layout a shader must satisfy.
type expectation struct {
	group, binding int
	layout         *uniform.Layout
}

// library is the implementation of the Library interface.
type library struct {
	mu           *sync.Mutex
	embedded     fs.FS
	overrideDir  string
	cache        map[string]Shader
	expectations map[string][]expectation
	listeners    []func(Shader)

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    *sync.Once
}

// Library loads named shaders from an embedded file system, optionally overridden by
// files in a directory on disk. Shader "mesh" lives in "mesh.wgsl" and include "lighting"
// lives in "include/lighting.wgsl". Registered uniform layouts are checked on every load.
type Library interface {
	// Expect registers the uniform layout a shader must bind at group/binding.
	// Shaders already loaded are not re-checked.
	//
	// Parameters:
	//   - key: the shader key
	//   - group: the bind group index
	//   - binding: the binding index
	//   - layout: the expected layout
	Expect(key string, group, binding int, layout *uniform.Layout)

	// Load parses the shader with the given key, checks its registered layouts and caches it.
	// A cached shader is returned as-is.
	//
	// Parameters:
	//   - key: the shader key
	//
	// Returns:
	//   - Shader: the parsed shader
	//   - error: an error if the source is missing, fails to parse, or fails a layout check
	Load(key string) (Shader, error)

	// Reload re-reads and re-checks a shader, replacing the cached copy only on success.
	//
	// Parameters:
	//   - key: the shader key
	//
	// Returns:
	//   - Shader: the freshly parsed shader
	//   - error: an error if loading fails; the previous copy stays cached
	Reload(key string) (Shader, error)

	// OnReload registers a callback invoked after a watched shader is successfully reloaded.
	// Callbacks run on the watcher goroutine.
	//
	// Parameters:
	//   - fn: the callback
	OnReload(fn func(Shader))

	// Watch starts watching the override directory for changes. It is a no-op without one.
	//
	// Returns:
	//   - error: an error if the watcher cannot be created
	Watch() error

	// Close stops the watcher, if any.
	//
	// Returns:
	//   - error: an error from closing the watcher
	Close() error
}

var _ Library = &library{}

// NewLibrary creates a Library reading from embedded, with options applied.
//
// Parameters:
//   - embedded: the file system holding the built-in shaders
//   - options: functional options to further configure the library
//
// Returns:
//   - Library: the new library
func NewLibrary(embedded fs.FS, options ...LibraryBuilderOption) Library {
	l := &library{
		mu:           &sync.Mutex{},
		embedded:     embedded,
		cache:        make(map[string]Shader),
		expectations: make(map[string][]expectation),
		once:         &sync.Once{},
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *library) Expect(key string, group, binding int, layout *uniform.Layout) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expectations[key] = append(l.expectations[key], expectation{group: group, binding: binding, layout: layout})
}

func (l *library) Load(key string) (Shader, error) {
	l.mu.Lock()
	if s, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return s, nil
	}
	l.mu.Unlock()
	return l.Reload(key)
}

func (l *library) Reload(key string) (Shader, error) {
	data, err := l.readFile(key + ".wgsl")
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s, err := NewShader(key, string(data), WithIncludeResolver(l.resolveInclude))
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.expectations[key] {
		if err := CheckUniformLayout(s, e.group, e.binding, e.layout); err != nil {
			return nil, err
		}
	}
	l.cache[key] = s
	return s, nil
}

func (l *library) OnReload(fn func(Shader)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

func (l *library) resolveInclude(name string) (string, error) {
	data, err := l.readFile(path.Join(includeDir, name+".wgsl"))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrUnknownInclude, name)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readFile prefers the override directory and falls back to the embedded file system.
func (l *library) readFile(name string) ([]byte, error) {
	if l.overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(l.overrideDir, filepath.FromSlash(name)))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if l.embedded == nil {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(l.embedded, name)
}
