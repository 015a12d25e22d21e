// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the GPU resource layer shared by compositor
// workers.
//
// A Context owns one Device, a single submission Queue, the fixed textured
// quad Pipeline, and a bridge that turns decoded video frames
// (PixelBuffer) into owned textures. It is stateless with respect to any
// particular composition, so many workers can share one Context.
//
// # Key Principle
//
// The Context is created once at startup and passed explicitly to every
// worker that draws with it. There is no process-wide instance.
//
//	rc, err := render.NewContext(render.NewSoftwareDevice())
//	if err != nil {
//	    // no GPU: the compositor is unavailable
//	}
//	defer rc.Close()
//
// # Resource Factory
//
// Every factory method returns nil on failure instead of an error or a
// panic. Callers treat a nil texture as "no visual content yet" and keep
// drawing whatever they had before:
//
//   - TextureFromImage: any image.Image, down-scaled to the device limit
//   - TextureFromText: shaped and rasterized text
//   - TextureFromBuffer: a decoded video frame, copied out of the
//     producer's buffer with a blit
//   - NewTexture: blank or solid-filled textures
//   - MakeQuad: vertex buffers for textured quads in NDC
//
// # Devices
//
// Device is a small HAL: it reports limits and executes recorded command
// buffers. SoftwareDevice is the built-in CPU implementation; it is exact
// for axis-aligned integer geometry and shares edges between triangles
// without double blending, which makes composited output reproducible in
// tests.
//
// # Architecture
//
//	 compositor.Worker
//	        │ records
//	        ▼
//	 CommandEncoder ──Finish──▶ CommandBuffer ──Submit──▶ Queue
//	                                                       │ in order
//	                                                       ▼
//	                                                    Device.Execute
package render
