// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/gogpu/gputypes"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"golang.org/x/text/unicode/norm"
)

// Face is a font at a pixel size.
//
// The parsed font is shared between faces derived with WithSize, and both
// parsers it holds are read-only, so a Face is safe for concurrent use.
type Face struct {
	name string
	size float64
	font *parsedFont
}

// parsedFont holds one font file parsed for shaping and for outlines.
type parsedFont struct {
	shaping *font.Font // go-text: HarfBuzz shaping
	outline *sfnt.Font // x/image: glyph outlines and metrics
}

// NewFace parses TrueType or OpenType data into a face of size pixels
// per em.
func NewFace(name string, data []byte, size float64) (*Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: font size %g", ErrInvalidDimensions, size)
	}
	pf, err := parseFont(data)
	if err != nil {
		return nil, fmt.Errorf("render: parse font %q: %w", name, err)
	}
	return &Face{name: name, size: size, font: pf}, nil
}

func parseFont(data []byte) (*parsedFont, error) {
	// ParseTTF returns a *Face which embeds the thread-safe *Font.
	gt, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	return &parsedFont{shaping: gt.Font, outline: sf}, nil
}

var (
	defaultFontOnce sync.Once
	defaultFont     *parsedFont
	defaultFontErr  error
)

// DefaultFace returns the Go Regular font at size pixels per em.
func DefaultFace(size float64) *Face {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = parseFont(goregular.TTF)
	})
	if defaultFontErr != nil || size <= 0 {
		return nil
	}
	return &Face{name: "Go Regular", size: size, font: defaultFont}
}

// Name returns the face name.
func (f *Face) Name() string { return f.name }

// Size returns the size in pixels per em.
func (f *Face) Size() float64 { return f.size }

// WithSize returns the same font at another size.
func (f *Face) WithSize(size float64) *Face {
	return &Face{name: f.name, size: size, font: f.font}
}

// String returns a string representation of the face.
func (f *Face) String() string {
	return fmt.Sprintf("Face[%s %gpx]", f.name, f.size)
}

// TextOptions controls TextureFromText.
type TextOptions struct {
	// Color is the glyph color. Nil means opaque white.
	Color color.Color

	// Background fills the canvas behind the glyphs. Nil means transparent.
	Background color.Color

	// Width and Height fix the canvas size. Zero sizes the canvas to the
	// text plus padding. Text is centered in a larger canvas and clipped
	// by a smaller one.
	Width, Height int

	// Padding is added around the text when the canvas is sized to it.
	Padding int
}

var shaperPool = sync.Pool{
	New: func() any {
		return &shaping.HarfbuzzShaper{}
	},
}

// shapedGlyph is a glyph positioned relative to the start of its line's
// baseline, y pointing down.
type shapedGlyph struct {
	id   sfnt.GlyphIndex
	x, y float64
}

type shapedLine struct {
	glyphs  []shapedGlyph
	advance float64
}

// TextureFromText renders s into a new RGBA8 texture.
//
// The text is NFC-normalized and shaped line by line with HarfBuzz; glyph
// outlines are filled with an anti-aliasing rasterizer. A nil face uses
// DefaultFace(24). Returns nil for empty text or an empty canvas.
func (c *Context) TextureFromText(s string, face *Face, opts TextOptions) *Texture {
	if s == "" {
		return nil
	}
	if face == nil {
		face = DefaultFace(24)
		if face == nil {
			return nil
		}
	}
	s = norm.NFC.String(s)

	ppem := fixed.Int26_6(math.Round(face.size * 64))
	var buf sfnt.Buffer
	metrics, err := face.font.outline.Metrics(&buf, ppem, xfont.HintingFull)
	if err != nil {
		slogger().Warn("render: font metrics failed", "face", face.name, "err", err)
		return nil
	}
	ascent := fixedToFloat(metrics.Ascent)
	lineHeight := fixedToFloat(metrics.Height)

	lines := strings.Split(s, "\n")
	shaped := make([]shapedLine, len(lines))
	var textW float64
	for i, line := range lines {
		shaped[i] = shapeLine(line, face)
		textW = max(textW, shaped[i].advance)
	}
	textH := lineHeight * float64(len(lines))

	w, h := opts.Width, opts.Height
	if w == 0 {
		w = int(math.Ceil(textW)) + 2*opts.Padding
	}
	if h == 0 {
		h = int(math.Ceil(textH)) + 2*opts.Padding
	}
	if !c.fits(w, h) {
		slogger().Debug("render: text canvas rejected", "width", w, "height", h)
		return nil
	}

	originX := (float64(w) - textW) / 2
	originY := (float64(h) - textH) / 2

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z := vector.NewRasterizer(w, h)
	for i, line := range shaped {
		baseline := originY + float64(i)*lineHeight + ascent
		lineX := originX + (textW-line.advance)/2
		for _, g := range line.glyphs {
			addGlyph(z, &buf, face.font.outline, g.id, ppem, lineX+g.x, baseline+g.y)
		}
	}
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	fg := opts.Color
	if fg == nil {
		fg = color.White
	}
	dst := image.NewRGBA(mask.Bounds())
	if opts.Background != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(fg), image.Point{}, mask, image.Point{}, draw.Over)

	t := c.newFilledTexture("text", w, h, gputypes.TextureFormatRGBA8Unorm, nil, DefaultTextureUsage)
	if t == nil {
		return nil
	}
	if err := t.Upload(dst.Pix, dst.Stride, t.Bounds()); err != nil {
		slogger().Warn("render: text upload failed", "err", err)
		return nil
	}
	return t
}

// shapeLine shapes one line left to right.
func shapeLine(line string, face *Face) shapedLine {
	runes := []rune(line)
	if len(runes) == 0 {
		return shapedLine{}
	}

	// font.Face is not safe for concurrent use; each call gets its own.
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(face.font.shaping),
		Size:      fixed.Int26_6(math.Round(face.size * 64)),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	hb := shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	shaperPool.Put(hb)

	out := shapedLine{glyphs: make([]shapedGlyph, 0, len(output.Glyphs))}
	var pen float64
	for _, g := range output.Glyphs {
		out.glyphs = append(out.glyphs, shapedGlyph{
			id: sfnt.GlyphIndex(uint16(g.GlyphID)), //nolint:gosec // glyph ids fit in 16 bits
			x:  pen + fixedToFloat(g.XOffset),
			// go-text offsets point up; the canvas y axis points down.
			y: -fixedToFloat(g.YOffset),
		})
		pen += fixedToFloat(g.Advance)
	}
	out.advance = pen
	return out
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// addGlyph appends the outline of glyph id, placed with its origin at
// (ox, oy), to the rasterizer path. Glyphs without an outline (spaces,
// color glyphs) add nothing.
func addGlyph(z *vector.Rasterizer, buf *sfnt.Buffer, f *sfnt.Font, id sfnt.GlyphIndex, ppem fixed.Int26_6, ox, oy float64) {
	segments, err := f.LoadGlyph(buf, id, ppem, nil)
	if err != nil {
		return
	}
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(ox + fixedToFloat(p.X)), float32(oy + fixedToFloat(p.Y))
	}
	open := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				z.ClosePath()
			}
			x, y := pt(seg.Args[0])
			z.MoveTo(x, y)
			open = true
		case sfnt.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			z.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if open {
		z.ClosePath()
	}
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
