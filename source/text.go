package source

import (
	"image/color"
	"sync"
	"time"

	"github.com/gogpu/compositor/internal/cache"
	"github.com/gogpu/compositor/render"
)

// DefaultTextCacheSize is the number of rendered strings a Text keeps.
const DefaultTextCacheSize = 8

// textKey identifies one rendering of a Text.
type textKey struct {
	text       string
	face       *render.Face
	color      color.RGBA
	hasColor   bool
	background color.RGBA
	hasBack    bool
	width      int
	height     int
	padding    int
}

// Text renders a string. Renderings are kept in a small LRU keyed by
// content, so switching between captions does not re-rasterize them.
// Evicted renderings are only dropped from the cache: a Worker entry
// may still be drawing one, so it stays valid until unreferenced.
type Text struct {
	rc *render.Context

	mu   sync.Mutex
	text string
	face *render.Face
	opts render.TextOptions

	cache *cache.Cache[textKey, *render.Texture]
}

// NewText returns a text source. A nil face uses the default face.
func NewText(rc *render.Context, text string, face *render.Face) *Text {
	return NewTextWithOptions(rc, text, face, render.TextOptions{}, DefaultTextCacheSize)
}

// NewTextWithOptions returns a text source with explicit rendering
// options and cache capacity.
func NewTextWithOptions(rc *render.Context, text string, face *render.Face, opts render.TextOptions, cacheSize int) *Text {
	if cacheSize <= 0 {
		cacheSize = DefaultTextCacheSize
	}
	return &Text{
		rc:    rc,
		text:  text,
		face:  face,
		opts:  opts,
		cache: cache.New[textKey, *render.Texture](cacheSize),
	}
}

// SetText changes the string.
func (s *Text) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

// Text returns the current string.
func (s *Text) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// SetColor changes the glyph color. Nil means opaque white.
func (s *Text) SetColor(c color.Color) {
	s.mu.Lock()
	s.opts.Color = c
	s.mu.Unlock()
}

// SetBackground changes the canvas fill. Nil means transparent.
func (s *Text) SetBackground(c color.Color) {
	s.mu.Lock()
	s.opts.Background = c
	s.mu.Unlock()
}

// SetFace changes the font face.
func (s *Text) SetFace(face *render.Face) {
	s.mu.Lock()
	s.face = face
	s.mu.Unlock()
}

// Texture returns the rendering of the current content. Empty text is
// not ready and yields nil.
func (s *Text) Texture(time.Duration) *render.Texture {
	s.mu.Lock()
	text, face, opts := s.text, s.face, s.opts
	s.mu.Unlock()

	if text == "" {
		return nil
	}
	key := makeTextKey(text, face, opts)
	tex := s.cache.GetOrCreate(key, func() *render.Texture {
		return s.rc.TextureFromText(text, face, opts)
	})
	if tex == nil {
		// Unrenderable content is retried next frame.
		s.cache.Delete(key)
	}
	return tex
}

// CacheStats reports the rendering cache counters.
func (s *Text) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Close drops every cached rendering.
func (s *Text) Close() {
	s.cache.Clear()
}

func makeTextKey(text string, face *render.Face, opts render.TextOptions) textKey {
	k := textKey{
		text:    text,
		face:    face,
		width:   opts.Width,
		height:  opts.Height,
		padding: opts.Padding,
	}
	if opts.Color != nil {
		k.color, k.hasColor = color.RGBAModel.Convert(opts.Color).(color.RGBA), true
	}
	if opts.Background != nil {
		k.background, k.hasBack = color.RGBAModel.Convert(opts.Background).(color.RGBA), true
	}
	return k
}
