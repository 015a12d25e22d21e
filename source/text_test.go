package source

import (
	"image/color"
	"testing"

	"github.com/gogpu/compositor/render"
)

func TestTextRendersAndCaches(t *testing.T) {
	rc := newTestContext(t)
	src := NewText(rc, "Hi", render.DefaultFace(24))

	first := src.Texture(0)
	if first == nil {
		t.Fatal("Texture() returned nil")
	}
	if again := src.Texture(1); again != first {
		t.Error("unchanged text should reuse the cached texture")
	}

	src.SetText("Bye")
	bye := src.Texture(2)
	if bye == nil || bye == first {
		t.Fatal("SetText() should produce a new texture")
	}

	src.SetText("Hi")
	if back := src.Texture(3); back != first {
		t.Error("returning to earlier text should hit the cache")
	}

	st := src.CacheStats()
	if st.Len != 2 || st.Hits != 2 || st.Misses != 2 {
		t.Errorf("CacheStats() = %+v, want 2 entries, 2 hits, 2 misses", st)
	}
}

func TestTextColor(t *testing.T) {
	rc := newTestContext(t)
	src := NewTextWithOptions(rc, "X", render.DefaultFace(32), render.TextOptions{
		Width:  40,
		Height: 40,
	}, 4)

	white := src.Texture(0)
	src.SetColor(color.NRGBA{R: 255, A: 255})
	red := src.Texture(0)
	if white == nil || red == nil || white == red {
		t.Fatal("SetColor() should produce a new texture")
	}

	// Equal colors from different models share one rendering.
	src.SetColor(color.RGBA{R: 255, A: 255})
	if src.Texture(0) != red {
		t.Error("equivalent color should hit the cache")
	}

	src.SetBackground(color.NRGBA{B: 255, A: 255})
	boxed := src.Texture(0)
	if got := texel(t, rc, boxed, 0, 0); got != [4]byte{0, 0, 255, 255} {
		t.Errorf("background corner = %v, want opaque blue", got)
	}

	src.SetFace(render.DefaultFace(16))
	if src.Texture(0) == boxed {
		t.Error("SetFace() should produce a new texture")
	}
}

func TestTextEvictionKeepsTexturesValid(t *testing.T) {
	rc := newTestContext(t)
	src := NewTextWithOptions(rc, "a", nil, render.TextOptions{}, 2)

	a := src.Texture(0)
	src.SetText("b")
	src.Texture(0)
	src.SetText("c")
	src.Texture(0)

	if st := src.CacheStats(); st.Evictions != 1 || st.Len != 2 {
		t.Fatalf("CacheStats() = %+v, want 1 eviction, 2 entries", st)
	}
	// A Worker entry may still hold the evicted rendering.
	if a.IsReleased() {
		t.Fatal("evicted texture was destroyed")
	}
	out := make([]byte, a.Width()*a.Height()*4)
	if err := rc.ReadTexture(a, out, a.Width()*4, a.Bounds()); err != nil {
		t.Errorf("ReadTexture(evicted) error = %v", err)
	}

	src.SetText("a")
	if src.Texture(0) == a {
		t.Error("evicted rendering should be rebuilt")
	}

	src.Close()
	if src.CacheStats().Len != 0 {
		t.Error("Close() should empty the cache")
	}
	if a.IsReleased() {
		t.Error("Close() should not destroy textures")
	}
}

func TestTextNotReady(t *testing.T) {
	rc := newTestContext(t)
	src := NewText(rc, "", nil)
	if src.Texture(0) != nil {
		t.Error("empty text should not be ready")
	}
	src.SetText("ok")
	if src.Text() != "ok" || src.Texture(0) == nil {
		t.Error("text should be ready after SetText")
	}

	huge := NewTextWithOptions(rc, "x", nil, render.TextOptions{Width: rc.Limits().MaxTextureSize + 1}, 0)
	if huge.Texture(0) != nil {
		t.Error("oversized canvas should not be ready")
	}
	if huge.CacheStats().Len != 0 {
		t.Error("failed renderings must not stay cached")
	}
}
