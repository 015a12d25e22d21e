package source

import (
	"image/color"
	"sync"
	"time"

	"github.com/gogpu/compositor/render"
)

// Solid is a single color of a fixed size.
type Solid struct {
	rc            *render.Context
	width, height int
	color         color.Color

	once sync.Once
	tex  *render.Texture
}

// NewSolid returns a source of the given size filled with c.
func NewSolid(rc *render.Context, width, height int, c color.Color) *Solid {
	return &Solid{rc: rc, width: width, height: height, color: c}
}

// Texture returns the filled texture, or nil if the size is invalid.
func (s *Solid) Texture(time.Duration) *render.Texture {
	s.once.Do(func() {
		s.tex = s.rc.NewTexture(s.width, s.height, s.color, render.DefaultTextureUsage)
	})
	return s.tex
}
