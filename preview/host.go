package preview

import (
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
)

// HostTexture mirrors composited frames into a host application's
// texture.
type HostTexture struct {
	tex   gpucontext.TextureUpdater
	frame *image.RGBA
	count uint64
}

// NewHostTexture returns a sink that updates tex. The host texture must
// match the Worker size and take tightly packed RGBA8 data.
func NewHostTexture(tex gpucontext.TextureUpdater) *HostTexture {
	return &HostTexture{tex: tex}
}

// Update reads the current frame from src and uploads it.
func (h *HostTexture) Update(src FrameSource) error {
	frame, err := ReadFrame(src, h.frame)
	if err != nil {
		return err
	}
	h.frame = frame
	if err := h.tex.UpdateData(frame.Pix); err != nil {
		return fmt.Errorf("preview: texture update failed: %w", err)
	}
	h.count++
	return nil
}

// Updates returns the number of successful uploads.
func (h *HostTexture) Updates() uint64 { return h.count }
