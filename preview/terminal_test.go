package preview

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/gputypes"
)

func newScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(cols, rows)
	return s
}

func near(a, b int32) bool {
	d := a - b
	return d >= -1 && d <= 1
}

func cellColors(t *testing.T, s tcell.Screen, x, y int) (fg, bg tcell.Color) {
	t.Helper()
	r, _, style, _ := s.GetContent(x, y)
	if r != upperHalf {
		t.Fatalf("cell(%d,%d) = %q, want half block", x, y, r)
	}
	fg, bg, _ = style.Decompose()
	return fg, bg
}

func TestTerminalHalfBlocks(t *testing.T) {
	s := newScreen(t, 2, 1)

	// 2×2 frame: top row red, bottom row blue. No scaling needed.
	src := &fakeFrame{
		width: 2, height: 2,
		format: gputypes.TextureFormatRGBA8Unorm,
		pix: []byte{
			255, 0, 0, 255, 255, 0, 0, 255,
			0, 0, 255, 255, 0, 0, 255, 255,
		},
	}
	if err := NewTerminal(s).Draw(src); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	for x := range 2 {
		fg, bg := cellColors(t, s, x, 0)
		if fg != tcell.NewRGBColor(255, 0, 0) {
			t.Errorf("cell %d fg = %v, want red", x, fg)
		}
		if bg != tcell.NewRGBColor(0, 0, 255) {
			t.Errorf("cell %d bg = %v, want blue", x, bg)
		}
	}
}

func TestTerminalScales(t *testing.T) {
	s := newScreen(t, 2, 2)

	// 4×8 frame: top half green, bottom half white, drawn into 2×4
	// pixels.
	src := &fakeFrame{width: 4, height: 8, format: gputypes.TextureFormatBGRA8Unorm}
	for y := range 8 {
		for range 4 {
			px := []byte{0, 255, 0, 255}
			if y >= 4 {
				px = []byte{255, 255, 255, 255}
			}
			src.pix = append(src.pix, px...)
		}
	}

	term := NewTerminal(s)
	if err := term.Draw(src); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	fg, _ := cellColors(t, s, 0, 0)
	if r, g, b := fg.RGB(); !near(r, 0) || !near(g, 255) || !near(b, 0) {
		t.Errorf("top fg = (%d,%d,%d), want green", r, g, b)
	}
	_, bg := cellColors(t, s, 1, 1)
	if r, g, b := bg.RGB(); !near(r, 255) || !near(g, 255) || !near(b, 255) {
		t.Errorf("bottom bg = (%d,%d,%d), want white", r, g, b)
	}

	// The read-back image is kept for the next frame.
	kept := term.frame
	if err := term.Draw(src); err != nil {
		t.Fatal(err)
	}
	if term.frame != kept {
		t.Error("frame buffer should be reused")
	}
}

func TestTerminalEmptyFrame(t *testing.T) {
	s := newScreen(t, 2, 2)
	if err := NewTerminal(s).Draw(&fakeFrame{}); err == nil {
		t.Error("Draw(empty) should fail")
	}
}
