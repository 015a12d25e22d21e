// Package source provides texture sources for compositor layers.
//
// Every source implements compositor.TextureSource: the Worker asks for a
// texture at the host time of the frame being prepared and draws whatever
// comes back, or a placeholder when the source returns nil.
//
//	rc, _ := render.NewContext(render.NewSoftwareDevice())
//	w, _ := compositor.NewWorker(rc, 1280, 720)
//
//	cam := source.NewFrames(rc)
//	w.Add(compositor.NewLayer(cam, compositor.R(0, 0, 1280, 720)))
//
//	caption := source.NewText(rc, "LIVE", render.DefaultFace(48))
//	w.Add(compositor.NewLayer(caption, compositor.R(40, 40, 200, 80)))
//
// Sources are safe for concurrent use: Texture may run on a Worker's
// pool while the owner mutates the source from another goroutine.
package source
