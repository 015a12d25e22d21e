package source

import (
	"fmt"
	"image"
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration
	"io"
	"os"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"  // decoder registration
	_ "golang.org/x/image/webp" // decoder registration

	"github.com/gogpu/compositor/render"
)

// Image is a static picture. Its texture is created on the first request
// and reused for every frame after that.
type Image struct {
	rc  *render.Context
	img image.Image

	mu  sync.Mutex
	tex *render.Texture
}

// NewImage returns a source that shows img.
func NewImage(rc *render.Context, img image.Image) *Image {
	return &Image{rc: rc, img: img}
}

// DecodeImage decodes a PNG, JPEG, BMP or WebP stream into an Image.
func DecodeImage(rc *render.Context, r io.Reader) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("source: decode image: %w", err)
	}
	return NewImage(rc, img), nil
}

// LoadImage decodes the image file at path.
func LoadImage(rc *render.Context, path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	defer f.Close()
	return DecodeImage(rc, f)
}

// Texture returns the image texture, creating it on first use. A failed
// creation is retried on the next call.
func (s *Image) Texture(time.Duration) *render.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tex == nil && s.img != nil {
		s.tex = s.rc.TextureFromImage(s.img)
	}
	return s.tex
}

// Bounds returns the image bounds.
func (s *Image) Bounds() image.Rectangle {
	if s.img == nil {
		return image.Rectangle{}
	}
	return s.img.Bounds()
}
