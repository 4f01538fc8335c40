// Package assets embeds the built-in WGSL shaders.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed shaders
var shaders embed.FS

// Shaders returns the built-in shader tree, rooted so that "mesh.wgsl" and
// "include/vertex.wgsl" resolve directly.
func Shaders() fs.FS {
	sub, err := fs.Sub(shaders, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}
