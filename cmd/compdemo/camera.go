package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/internal/framepool"
	"github.com/gogpu/compositor/render"
	"github.com/gogpu/compositor/source"
)

// camera is a synthetic capture device: a bright bar sweeping across a
// gradient, pushed into a Frames source at a fixed rate. Frame memory is
// recycled once the source releases it.
type camera struct {
	out    *source.Frames
	pool   *framepool.Pool
	clock  compositor.Clock
	width  int
	height int
	format render.PixelFormat
	seq    int
}

func pixelFormat(name string) (render.PixelFormat, error) {
	switch strings.ToLower(name) {
	case "", "bgra":
		return render.PixelFormatBGRA8, nil
	case "rgba":
		return render.PixelFormatRGBA8, nil
	case "nv12":
		return render.PixelFormatNV12, nil
	default:
		return 0, fmt.Errorf("unknown pixel format %q", name)
	}
}

func newCamera(out *source.Frames, clock compositor.Clock, spec CameraSpec) (*camera, error) {
	format, err := pixelFormat(spec.Format)
	if err != nil {
		return nil, err
	}
	c := &camera{
		out:    out,
		pool:   framepool.New(4),
		clock:  clock,
		width:  spec.Width,
		height: spec.Height,
		format: format,
	}
	if c.width <= 0 {
		c.width = 320
	}
	if c.height <= 0 {
		c.height = 180
	}
	return c, nil
}

// run pushes frames until ctx is done.
func (c *camera) run(ctx context.Context, fps int) {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if buf := c.capture(); buf != nil {
				c.out.Push(buf)
			}
		}
	}
}

// capture renders the next frame.
func (c *camera) capture() *render.PixelBuffer {
	buf := c.pool.Get(c.format, c.width, c.height)
	if buf == nil {
		return nil
	}
	bar := (c.seq * 4) % c.width
	c.seq++

	switch c.format {
	case render.PixelFormatNV12:
		luma, ls := buf.Plane(0), buf.Stride(0)
		for y := range c.height {
			for x := range c.width {
				v := 16 + 219*y/c.height
				if x >= bar && x < bar+8 {
					v = 235
				}
				luma[y*ls+x] = byte(v)
			}
		}
		chroma, cs := buf.Plane(1), buf.Stride(1)
		for y := range (c.height + 1) / 2 {
			for x := 0; x < c.width; x += 2 {
				chroma[y*cs+x] = byte(96 + 64*x/c.width) // Cb
				chroma[y*cs+x+1] = 128                   // Cr
			}
		}
	default:
		pix, stride := buf.Plane(0), buf.Stride(0)
		r, b := 0, 2
		if c.format == render.PixelFormatBGRA8 {
			r, b = 2, 0
		}
		for y := range c.height {
			row := pix[y*stride:]
			for x := range c.width {
				px := row[x*4 : x*4+4]
				px[r] = byte(255 * x / c.width)
				px[1] = byte(255 * y / c.height)
				px[b] = 160
				px[3] = 255
				if x >= bar && x < bar+8 {
					px[0], px[1], px[2] = 255, 255, 255
				}
			}
		}
	}
	buf.SetPTS(c.clock.Now())
	return buf
}
