package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxTextureSize is the longest texture edge LoadTexture keeps when given no limit.
const DefaultMaxTextureSize = 2048

var textureExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".webp": true, ".tif": true, ".tiff": true,
}

// LoadTexture decodes a PNG, JPEG, BMP, WebP or TIFF image into RGBA staging data. Images
// whose longest edge exceeds maxSize are scaled down preserving the aspect ratio.
//
// Parameters:
//   - path: the image file
//   - maxSize: the longest edge to keep; zero or less selects DefaultMaxTextureSize
//
// Returns:
//   - common.TextureStagingData: the pixels, 4 bytes per pixel
//   - error: ErrUnsupportedFormat for unknown extensions, or a decode error
func LoadTexture(path string, maxSize int) (common.TextureStagingData, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !textureExtensions[ext] {
		return common.TextureStagingData{}, fmt.Errorf("%w: image extension %q", ErrUnsupportedFormat, ext)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxTextureSize
	}

	img, err := imgio.Open(path)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return common.TextureStagingData{}, fmt.Errorf("%w: %s is empty", ErrUnsupportedFormat, path)
	}
	if longest := max(w, h); longest > maxSize {
		w = max(1, w*maxSize/longest)
		h = max(1, h*maxSize/longest)
		img = transform.Resize(img, w, h, transform.Linear)
	}

	rgba := clone.AsRGBA(img)
	return common.TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(rgba.Rect.Dx()),
		Height: uint32(rgba.Rect.Dy()),
	}, nil
}
