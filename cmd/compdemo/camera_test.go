package main

import (
	"context"
	"testing"
	"time"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/render"
	"github.com/gogpu/compositor/source"
)

func TestCameraCapture(t *testing.T) {
	rc, err := render.NewContext(render.NewSoftwareDevice())
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	clock := compositor.ClockFunc(func() time.Duration { return 7 * time.Millisecond })
	for _, format := range []string{"bgra", "rgba", "nv12"} {
		t.Run(format, func(t *testing.T) {
			cam, err := newCamera(source.NewFrames(rc), clock, CameraSpec{Width: 16, Height: 10, Format: format})
			if err != nil {
				t.Fatal(err)
			}
			buf := cam.capture()
			if buf == nil {
				t.Fatal("capture() returned nil")
			}
			if buf.Width() != 16 || buf.Height() != 10 || buf.PTS() != 7*time.Millisecond {
				t.Errorf("frame = %dx%d @%v", buf.Width(), buf.Height(), buf.PTS())
			}
			if tex := rc.TextureFromBuffer(buf); tex == nil {
				t.Error("captured frame should bridge")
			}
		})
	}

	if _, err := newCamera(nil, clock, CameraSpec{Format: "yuy2"}); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestCameraRun(t *testing.T) {
	rc, err := render.NewContext(render.NewSoftwareDevice())
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	frames := source.NewFrames(rc)
	cam, err := newCamera(frames, compositor.HostClock(), CameraSpec{})
	if err != nil {
		t.Fatal(err)
	}
	if cam.width != 320 || cam.height != 180 {
		t.Errorf("default size = %dx%d, want 320x180", cam.width, cam.height)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cam.run(ctx, 200)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for frames.Stats().Pushed < 3 {
		if time.Now().After(deadline) {
			t.Fatal("camera did not push frames")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	// Overwritten frames went back to the camera's pool.
	if cam.pool.Stats().Returns == 0 {
		t.Error("released frames were not recycled")
	}
}
