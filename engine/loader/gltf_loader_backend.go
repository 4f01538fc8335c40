package loader

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// gltfLoaderBackendImpl is the loaderBackend for glTF and GLB files.
type gltfLoaderBackendImpl struct{}

var _ loaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(ctx context.Context, path string) (*Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, err
	}
	m, err := newGLTFMeshExtractor(parser).Extract(ctx)
	if err != nil {
		return nil, err
	}
	m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m, nil
}

func (b *gltfLoaderBackendImpl) LoadReader(ctx context.Context, r io.Reader, isGLB bool, baseDir string) (*Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB, baseDir); err != nil {
		return nil, err
	}
	return newGLTFMeshExtractor(parser).Extract(ctx)
}
