package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/render"
	"github.com/gogpu/compositor/source"
)

// stage keeps a Worker in sync with a Scene across reloads. Layers are
// matched by name; a Worker never forgets a layer, so layers dropped from
// the scene are hidden rather than removed.
type stage struct {
	ctx    context.Context
	w      *compositor.Worker
	rc     *render.Context
	clock  compositor.Clock
	fps    int
	log    *slog.Logger
	layers map[string]*stagedLayer
}

type stagedLayer struct {
	layer  *compositor.Layer
	kind   string
	path   string
	camera CameraSpec
	text   *source.Text
	cancel context.CancelFunc
}

func newStage(ctx context.Context, w *compositor.Worker, clock compositor.Clock, fps int, log *slog.Logger) *stage {
	return &stage{
		ctx:    ctx,
		w:      w,
		rc:     w.Context(),
		clock:  clock,
		fps:    fps,
		log:    log,
		layers: make(map[string]*stagedLayer),
	}
}

// apply brings the Worker in line with s. It is safe to call between
// frames or while a frame is being prepared.
func (st *stage) apply(s *Scene) error {
	present := make(map[string]bool, len(s.Layers))
	var prev *compositor.Layer
	for i := range s.Layers {
		spec := &s.Layers[i]
		present[spec.Name] = true

		sl, ok := st.layers[spec.Name]
		if !ok {
			if st.w.Len() == compositor.MaxLayers {
				return fmt.Errorf("stage: no room for layer %q", spec.Name)
			}
			sl = &stagedLayer{layer: compositor.NewLayer(nil, spec.frame())}
			sl.layer.SetName(spec.Name)
			st.w.Add(sl.layer)
			st.layers[spec.Name] = sl
		}
		if err := st.update(sl, spec); err != nil {
			return err
		}

		// Scene order is bottom to top.
		if prev != nil {
			st.w.Move(sl.layer, prev, true)
		}
		prev = sl.layer
	}

	for name, sl := range st.layers {
		if !present[name] && !sl.layer.Hidden() {
			sl.layer.SetHidden(true)
			st.stopCamera(sl)
			st.log.Info("compdemo: layer removed from scene, hiding", "layer", name)
		}
	}
	return nil
}

func (st *stage) update(sl *stagedLayer, spec *LayerSpec) error {
	layout, err := spec.layout()
	if err != nil {
		return err
	}
	sl.layer.SetFrame(spec.frame())
	sl.layer.SetLayout(layout)
	sl.layer.SetTransform(spec.transform())
	sl.layer.SetOpaque(spec.Opaque)
	sl.layer.SetHidden(spec.Hidden)

	fill, _ := parseColor(spec.Color, spec.Alpha)
	back, _ := parseColor(spec.Background, nil)

	switch spec.Kind {
	case "camera":
		if sl.kind == "camera" && sl.camera == spec.Camera && sl.cancel != nil {
			break
		}
		st.stopCamera(sl)
		frames := source.NewFrames(st.rc)
		cam, err := newCamera(frames, st.clock, spec.Camera)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(st.ctx)
		go cam.run(ctx, st.fps)
		sl.cancel = cancel
		sl.camera = spec.Camera
		sl.layer.SetSource(frames)

	case "image":
		if sl.kind == "image" && sl.path == spec.Path {
			break
		}
		st.stopCamera(sl)
		img, err := source.LoadImage(st.rc, spec.Path)
		if err != nil {
			return err
		}
		sl.path = spec.Path
		sl.layer.SetSource(img)

	case "text":
		st.stopCamera(sl)
		face := render.DefaultFace(spec.Size)
		if face == nil {
			face = render.DefaultFace(24)
		}
		if sl.text == nil {
			sl.text = source.NewText(st.rc, spec.Text, face)
		}
		sl.text.SetText(spec.Text)
		sl.text.SetFace(face)
		sl.text.SetColor(fill)
		sl.text.SetBackground(back)
		sl.layer.SetSource(sl.text)

	case "solid":
		st.stopCamera(sl)
		w, h := int(spec.Frame[2]), int(spec.Frame[3])
		sl.layer.SetSource(source.NewSolid(st.rc, w, h, fill))
	}
	sl.kind = spec.Kind
	return nil
}

func (st *stage) stopCamera(sl *stagedLayer) {
	if sl.cancel != nil {
		sl.cancel()
		sl.cancel = nil
	}
}

// close stops every capture goroutine.
func (st *stage) close() {
	for _, sl := range st.layers {
		st.stopCamera(sl)
		if sl.text != nil {
			sl.text.Close()
		}
	}
}
