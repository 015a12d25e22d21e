package main

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/compositor"
)

// Scene is the TOML description of a composition.
type Scene struct {
	Width  int         `toml:"width"`
	Height int         `toml:"height"`
	Layers []LayerSpec `toml:"layer"`
}

// LayerSpec describes one layer. Kind selects the source: camera, image,
// text or solid.
type LayerSpec struct {
	Name   string      `toml:"name"`
	Kind   string      `toml:"kind"`
	Frame  [4]float64  `toml:"frame"`
	Layout string      `toml:"layout"`
	Anchor *[2]float64 `toml:"anchor"`
	Hidden bool        `toml:"hidden"`
	Opaque bool        `toml:"opaque"`

	// Transform about the frame center.
	Rotate float64  `toml:"rotate"`
	Scale  *float64 `toml:"scale"`

	// Source parameters.
	Path       string     `toml:"path"`
	Text       string     `toml:"text"`
	Size       float64    `toml:"size"`
	Color      string     `toml:"color"`
	Alpha      *float64   `toml:"alpha"`
	Background string     `toml:"background"`
	Camera     CameraSpec `toml:"camera"`
}

// CameraSpec configures the synthetic capture feeding a camera layer.
type CameraSpec struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Format string `toml:"format"`
}

const defaultScene = `
width = 640
height = 360

[[layer]]
name = "camera"
kind = "camera"
frame = [0, 0, 640, 360]
opaque = true
camera = { width = 320, height = 180, format = "nv12" }

[[layer]]
name = "badge"
kind = "solid"
frame = [16, 16, 120, 40]
color = "#c0392b"
alpha = 0.8

[[layer]]
name = "caption"
kind = "text"
text = "LIVE"
size = 28
frame = [16, 16, 120, 40]
layout = "fit"
`

// ParseScene decodes and validates a scene.
func ParseScene(data []byte) (*Scene, error) {
	var s Scene
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScene reads a scene file. An empty path yields the built-in scene.
func LoadScene(path string) (*Scene, error) {
	if path == "" {
		return ParseScene([]byte(defaultScene))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return ParseScene(data)
}

func (s *Scene) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("scene: invalid size %dx%d", s.Width, s.Height)
	}
	if len(s.Layers) > compositor.MaxLayers {
		return fmt.Errorf("scene: %d layers, at most %d", len(s.Layers), compositor.MaxLayers)
	}
	seen := make(map[string]bool, len(s.Layers))
	for i, l := range s.Layers {
		if l.Name == "" {
			return fmt.Errorf("scene: layer %d has no name", i)
		}
		if seen[l.Name] {
			return fmt.Errorf("scene: duplicate layer %q", l.Name)
		}
		seen[l.Name] = true

		switch l.Kind {
		case "camera":
			if _, err := pixelFormat(l.Camera.Format); err != nil {
				return fmt.Errorf("scene: layer %q: %w", l.Name, err)
			}
		case "text", "solid":
		case "image":
			if l.Path == "" {
				return fmt.Errorf("scene: image layer %q has no path", l.Name)
			}
		default:
			return fmt.Errorf("scene: layer %q has unknown kind %q", l.Name, l.Kind)
		}
		if _, err := l.layout(); err != nil {
			return err
		}
		if _, err := parseColor(l.Color, l.Alpha); err != nil {
			return fmt.Errorf("scene: layer %q: %w", l.Name, err)
		}
		if _, err := parseColor(l.Background, nil); err != nil {
			return fmt.Errorf("scene: layer %q: %w", l.Name, err)
		}
	}
	return nil
}

func (l *LayerSpec) frame() compositor.Rect {
	return compositor.R(l.Frame[0], l.Frame[1], l.Frame[2], l.Frame[3])
}

func (l *LayerSpec) layout() (compositor.Layout, error) {
	anchor := compositor.Pt(0.5, 0.5)
	if l.Anchor != nil {
		anchor = compositor.Pt(l.Anchor[0], l.Anchor[1])
	}
	switch strings.ToLower(l.Layout) {
	case "", "cover":
		return compositor.Cover(anchor), nil
	case "fit":
		return compositor.Fit(anchor), nil
	default:
		return compositor.Layout{}, fmt.Errorf("scene: layer %q has unknown layout %q", l.Name, l.Layout)
	}
}

func (l *LayerSpec) transform() compositor.Affine {
	m := compositor.Identity()
	if l.Scale != nil {
		m = compositor.Scale(*l.Scale, *l.Scale)
	}
	if l.Rotate != 0 {
		m = compositor.Rotate(l.Rotate).Multiply(m)
	}
	return m
}

// parseColor reads "#rrggbb" with an optional alpha in [0, 1]. An empty
// string is nil.
func parseColor(s string, alpha *float64) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, err
	}
	r, g, b := c.RGB255()
	a := 1.0
	if alpha != nil {
		a = min(max(*alpha, 0), 1)
	}
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a*255 + 0.5)}, nil
}
