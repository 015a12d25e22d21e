package framepool

import (
	"sync"
	"testing"

	"github.com/gogpu/compositor/render"
)

func TestPool_GetRelease_Reuses(t *testing.T) {
	pool := New(4)

	buf1 := pool.Get(render.PixelFormatBGRA8, 8, 4)
	if buf1 == nil {
		t.Fatal("Get returned nil")
	}
	if buf1.Width() != 8 || buf1.Height() != 4 || buf1.Format() != render.PixelFormatBGRA8 {
		t.Errorf("got %v %dx%d", buf1.Format(), buf1.Width(), buf1.Height())
	}
	buf1.Plane(0)[0] = 42
	buf1.Release()

	buf2 := pool.Get(render.PixelFormatBGRA8, 8, 4)
	if buf2 == nil {
		t.Fatal("Get returned nil after Release")
	}
	if buf2 == buf1 {
		t.Error("a released buffer must not be handed out again")
	}
	if &buf2.Plane(0)[0] != &buf1.Plane(0)[0] {
		t.Error("memory was not recycled")
	}

	buf2.Lock()
	if !buf2.IsLocked() {
		t.Error("recycled buffer should be usable")
	}
	buf2.Unlock()

	st := pool.Stats()
	if st.Gets != 2 || st.Reuses != 1 || st.Returns != 1 {
		t.Errorf("Stats() = %+v, want 2 gets, 1 reuse, 1 return", st)
	}
}

func TestPool_BucketsBySpec(t *testing.T) {
	pool := New(0)

	tests := []struct {
		name   string
		format render.PixelFormat
		w, h   int
	}{
		{"other format", render.PixelFormatNV12, 8, 4},
		{"other width", render.PixelFormatBGRA8, 9, 4},
		{"other height", render.PixelFormatBGRA8, 8, 5},
	}

	pool.Get(render.PixelFormatBGRA8, 8, 4).Release()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := pool.Stats().Reuses
			if pool.Get(tt.format, tt.w, tt.h) == nil {
				t.Fatal("Get returned nil")
			}
			if pool.Stats().Reuses != before {
				t.Error("buffer reused across specifications")
			}
		})
	}
}

func TestPool_BucketCapacity(t *testing.T) {
	pool := New(2)
	bufs := make([]*render.PixelBuffer, 5)
	for i := range bufs {
		bufs[i] = pool.Get(render.PixelFormatRGBA8, 2, 2)
	}
	for _, b := range bufs {
		b.Release()
	}
	if got := pool.Stats().Returns; got != 2 {
		t.Errorf("Returns = %d, want 2 (bucket capacity)", got)
	}
}

func TestPool_InvalidParams(t *testing.T) {
	pool := New(1)
	if pool.Get(render.PixelFormatBGRA8, 0, 4) != nil {
		t.Error("Get(0x4) should be nil")
	}
	if pool.Get(render.PixelFormat(99), 4, 4) != nil {
		t.Error("Get(unknown format) should be nil")
	}
}

func TestPool_Concurrent(t *testing.T) {
	pool := New(8)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				buf := pool.Get(render.PixelFormatNV12, 16, 16)
				if buf == nil {
					t.Error("Get returned nil")
					return
				}
				buf.Plane(0)[0]++
				buf.Release()
			}
		}()
	}
	wg.Wait()

	st := pool.Stats()
	if st.Gets != 800 {
		t.Errorf("Gets = %d, want 800", st.Gets)
	}
	if st.Reuses == 0 {
		t.Error("expected some reuse")
	}
}
