package preview

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// ErrEmptyFrame is returned when the frame source has no pixels.
var ErrEmptyFrame = errors.New("preview: empty frame")

// FrameSource is the read-back side of a compositor Worker.
type FrameSource interface {
	Size() (width, height int)
	Format() gputypes.TextureFormat
	WriteTexture(dst []byte, bytesPerRow int) error
}

// ReadFrame copies the current frame into an RGBA image. The byte order is
// normalized to R, G, B, A whatever the target format. dst is reused when
// it has the right size; otherwise a new image is allocated.
func ReadFrame(src FrameSource, dst *image.RGBA) (*image.RGBA, error) {
	w, h := src.Size()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyFrame
	}
	if dst == nil || dst.Rect.Dx() != w || dst.Rect.Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	if err := src.WriteTexture(dst.Pix, dst.Stride); err != nil {
		return nil, fmt.Errorf("preview: read frame: %w", err)
	}
	if src.Format() == gputypes.TextureFormatBGRA8Unorm {
		swapRB(dst)
	}
	return dst, nil
}

func swapRB(img *image.RGBA) {
	for y := range img.Rect.Dy() {
		row := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+2] = row[i+2], row[i]
		}
	}
}
