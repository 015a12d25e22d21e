package compositor

import (
	"fmt"
	"sync"
)

// Layer describes one visual element of the output frame: where it goes,
// how its texture is fitted, whether it is visible, and which source
// produces its pixels.
//
// A Layer is owned by the caller and may be mutated at any time, including
// while a Worker is refreshing or drawing it. All methods are safe for
// concurrent use. A Worker holds only a pointer to the Layer and never
// mutates it.
type Layer struct {
	mu sync.RWMutex

	name      string
	frame     Rect
	layout    Layout
	transform Affine
	hidden    bool
	opaque    bool
	source    TextureSource
}

// layerState is a consistent read of a Layer's placement properties.
type layerState struct {
	frame     Rect
	layout    Layout
	transform Affine
	hidden    bool
	opaque    bool
}

// NewLayer creates a visible, non-opaque layer drawing source into frame
// with the centered Cover layout and no transform. source may be nil; the
// layer then shows its placeholder until a source is set.
func NewLayer(source TextureSource, frame Rect) *Layer {
	return &Layer{
		frame:     frame,
		layout:    Centered(),
		transform: Identity(),
		source:    source,
	}
}

// Name returns the layer's diagnostic name.
func (l *Layer) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.name
}

// SetName sets the name used in logs and String.
func (l *Layer) SetName(name string) {
	l.mu.Lock()
	l.name = name
	l.mu.Unlock()
}

// Frame returns the destination rectangle in output space.
func (l *Layer) Frame() Rect {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.frame
}

// SetFrame moves or resizes the layer.
func (l *Layer) SetFrame(frame Rect) {
	l.mu.Lock()
	l.frame = frame
	l.mu.Unlock()
}

// Layout returns the fit policy.
func (l *Layer) Layout() Layout {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.layout
}

// SetLayout changes the fit policy.
func (l *Layer) SetLayout(layout Layout) {
	layout.Anchor = clampAnchor(layout.Anchor)
	l.mu.Lock()
	l.layout = layout
	l.mu.Unlock()
}

// Transform returns the affine transform applied about the frame's center.
func (l *Layer) Transform() Affine {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.transform
}

// SetTransform changes the transform.
func (l *Layer) SetTransform(m Affine) {
	l.mu.Lock()
	l.transform = m
	l.mu.Unlock()
}

// Hidden reports whether the layer is skipped when refreshing and drawing.
func (l *Layer) Hidden() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hidden
}

// SetHidden shows or hides the layer.
func (l *Layer) SetHidden(hidden bool) {
	l.mu.Lock()
	l.hidden = hidden
	l.mu.Unlock()
}

// Opaque reports whether the layer's placeholder is opaque black rather
// than transparent.
func (l *Layer) Opaque() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.opaque
}

// SetOpaque sets the placeholder hint.
func (l *Layer) SetOpaque(opaque bool) {
	l.mu.Lock()
	l.opaque = opaque
	l.mu.Unlock()
}

// Source returns the texture source, or nil.
func (l *Layer) Source() TextureSource {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.source
}

// SetSource replaces the texture source.
func (l *Layer) SetSource(source TextureSource) {
	l.mu.Lock()
	l.source = source
	l.mu.Unlock()
}

// state reads every placement property under one lock.
func (l *Layer) state() layerState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return layerState{
		frame:     l.frame,
		layout:    l.layout,
		transform: l.transform,
		hidden:    l.hidden,
		opaque:    l.opaque,
	}
}

// String returns a description of the layer.
func (l *Layer) String() string {
	st := l.state()
	name := l.Name()
	if name == "" {
		name = "layer"
	}
	return fmt.Sprintf("%s{frame=%v layout=%v hidden=%t opaque=%t}", name, st.frame, st.layout, st.hidden, st.opaque)
}
