// Package preview shows composited frames outside the compositor.
//
// A sink reads the Worker's output back after a composition completes and
// presents it somewhere else: HostTexture pushes the pixels into a texture
// owned by a host application through gpucontext.TextureUpdater, and
// Terminal draws them into a tcell screen with half-block cells.
//
// Sinks must only read after the composition they want to show has
// finished, typically from the Prepare callback chain once
// NotifyIntentToWrite succeeds again.
package preview
