package preview

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/gdamore/tcell/v2"
)

// upperHalf covers the top half of a cell. Its foreground paints the upper
// pixel and the cell background the lower one.
const upperHalf = '▀'

// Terminal draws frames into a tcell screen, two pixel rows per cell.
type Terminal struct {
	screen tcell.Screen
	frame  *image.RGBA
}

// NewTerminal returns a sink drawing into screen. The screen must already
// be initialized.
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Draw reads the current frame from src, scales it to the screen and
// shows it.
func (t *Terminal) Draw(src FrameSource) error {
	frame, err := ReadFrame(src, t.frame)
	if err != nil {
		return err
	}
	t.frame = frame

	cols, rows := t.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	img := frame
	if frame.Rect.Dx() != cols || frame.Rect.Dy() != rows*2 {
		img = transform.Resize(frame, cols, rows*2, transform.Linear)
	}

	for y := range rows {
		for x := range cols {
			top := cellColor(img, x, 2*y)
			bottom := cellColor(img, x, 2*y+1)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			t.screen.SetContent(x, y, upperHalf, nil, style)
		}
	}
	t.screen.Show()
	return nil
}

func cellColor(img *image.RGBA, x, y int) tcell.Color {
	i := img.PixOffset(x, y)
	return tcell.NewRGBColor(int32(img.Pix[i]), int32(img.Pix[i+1]), int32(img.Pix[i+2]))
}
