// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
)

// quadShaderWGSL draws one textured quad per draw call. Texture colors are
// premultiplied; blending is configured on the pipeline, not in the shader.
const quadShaderWGSL = `
struct VertexInput {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@group(0) @binding(0) var layer_texture: texture_2d<f32>;
@group(0) @binding(1) var layer_sampler: sampler;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(layer_texture, layer_sampler, in.uv);
}
`

// QuadShaderSource returns the WGSL source of the quad pipeline.
func QuadShaderSource() string { return quadShaderWGSL }

// Filter selects texture sampling.
type Filter uint8

const (
	// FilterNearest picks the texel under the sample point.
	FilterNearest Filter = iota

	// FilterLinear interpolates the four nearest texels.
	FilterLinear
)

// String returns the filter name.
func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	default:
		return fmt.Sprintf("Filter(%d)", f)
	}
}

// PipelineDescriptor describes a render pipeline.
type PipelineDescriptor struct {
	Label string

	// Source is the WGSL shader source.
	Source string

	// VertexEntry and FragmentEntry name the shader entry points.
	VertexEntry   string
	FragmentEntry string

	// Format is the color target format.
	Format gputypes.TextureFormat

	// Topology is the primitive topology. Only triangle lists are drawn.
	Topology gputypes.PrimitiveTopology

	// Blend is the color blend state; nil replaces the destination.
	Blend *gputypes.BlendState

	// Filter is the sampler filter for the bound texture. Addressing is
	// always clamp-to-edge.
	Filter Filter
}

// Pipeline is a compiled render pipeline. Pipelines are immutable.
type Pipeline struct {
	desc PipelineDescriptor

	spirvOnce sync.Once
	spirv     []uint32
	spirvErr  error
}

// NewPipeline creates a pipeline from desc.
func NewPipeline(desc PipelineDescriptor) (*Pipeline, error) {
	if desc.Source == "" {
		return nil, fmt.Errorf("render: pipeline %q has empty shader source", desc.Label)
	}
	if desc.VertexEntry == "" || desc.FragmentEntry == "" {
		return nil, fmt.Errorf("render: pipeline %q has no entry points", desc.Label)
	}
	if !formatSupported(desc.Format) {
		return nil, fmt.Errorf("%w: pipeline target %v", ErrUnsupportedFormat, desc.Format)
	}
	return &Pipeline{desc: desc}, nil
}

// newQuadPipeline creates the fixed textured, alpha-blended quad pipeline.
func newQuadPipeline(format gputypes.TextureFormat, filter Filter) (*Pipeline, error) {
	premulBlend := gputypes.BlendStatePremultiplied()
	return NewPipeline(PipelineDescriptor{
		Label:         "compositor_quad_pipeline",
		Source:        quadShaderWGSL,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		Format:        format,
		Topology:      gputypes.PrimitiveTopologyTriangleList,
		Blend:         &premulBlend,
		Filter:        filter,
	})
}

// Label returns the pipeline label.
func (p *Pipeline) Label() string { return p.desc.Label }

// Descriptor returns the descriptor the pipeline was created from.
func (p *Pipeline) Descriptor() PipelineDescriptor { return p.desc }

// Blends reports whether draws are alpha blended.
func (p *Pipeline) Blends() bool { return p.desc.Blend != nil }

// SPIRV compiles the shader to SPIR-V words on first use. Devices that
// consume SPIR-V call this when they first see the pipeline.
func (p *Pipeline) SPIRV() ([]uint32, error) {
	p.spirvOnce.Do(func() {
		p.spirv, p.spirvErr = compileShaderToSPIRV(p.desc.Source)
	})
	return p.spirv, p.spirvErr
}

// compileShaderToSPIRV compiles WGSL source to a SPIR-V uint32 slice.
func compileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("render: failed to compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}
