package renderer

import "github.com/Carmen-Shannon/gpulab-go/common"

// Texture is a sampled 2D texture and its default view, shareable between providers.
type Texture struct {
	Width, Height uint32

	texture common.Releaser
	view    common.Releaser
}

// View returns the texture view to bind.
func (t *Texture) View() common.Releaser {
	return t.view
}

// Release frees the view and the texture. Safe to call more than once.
func (t *Texture) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
