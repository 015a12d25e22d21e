package source

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/render"
)

func newTestContext(t *testing.T) *render.Context {
	t.Helper()
	rc, err := render.NewContext(render.NewSoftwareDevice())
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	t.Cleanup(rc.Close)
	return rc
}

// texel reads one premultiplied pixel as R, G, B, A.
func texel(t *testing.T, rc *render.Context, tex *render.Texture, x, y int) [4]byte {
	t.Helper()
	var px [4]byte
	if err := rc.ReadTexture(tex, px[:], 4, image.Rect(x, y, x+1, y+1)); err != nil {
		t.Fatalf("ReadTexture() error = %v", err)
	}
	if tex.Format() == gputypes.TextureFormatBGRA8Unorm {
		px[0], px[2] = px[2], px[0]
	}
	return px
}

// frame returns a RGBA8 buffer filled with one color.
func frame(t *testing.T, w, h int, r, g, b byte) *render.PixelBuffer {
	t.Helper()
	buf, err := render.NewPixelBuffer(render.PixelFormatRGBA8, w, h)
	if err != nil {
		t.Fatalf("NewPixelBuffer() error = %v", err)
	}
	pix := buf.Plane(0)
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, 255
	}
	return buf
}

var (
	_ compositor.TextureSource = (*Image)(nil)
	_ compositor.TextureSource = (*Solid)(nil)
	_ compositor.TextureSource = (*Text)(nil)
	_ compositor.TextureSource = (*Frames)(nil)
)
