package compositor

import (
	"time"

	"github.com/gogpu/compositor/render"
)

// TextureSource produces a layer's current visual content.
//
// Texture is called at most once at a time per layer, with the host time
// of the frame being prepared. It returns nil when nothing is ready yet;
// the Worker then keeps drawing the previous texture. Returned textures
// must not be modified afterwards: the Worker may draw a texture while the
// source already produces the next one.
//
// Concrete sources (images, text, live video frames) live in package
// source.
type TextureSource interface {
	Texture(hostTime time.Duration) *render.Texture
}

// SourceFunc adapts an ordinary function to TextureSource.
type SourceFunc func(hostTime time.Duration) *render.Texture

// Texture calls f(hostTime).
func (f SourceFunc) Texture(hostTime time.Duration) *render.Texture {
	return f(hostTime)
}
