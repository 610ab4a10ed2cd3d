package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// BufferTarget is the binding point of a buffer.
type BufferTarget uint8

const (
	// ArrayBuffer holds vertex data.
	ArrayBuffer BufferTarget = iota
	// ElementBuffer holds index data.
	ElementBuffer
)

// String returns the target name.
func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "array"
	case ElementBuffer:
		return "element"
	default:
		return fmt.Sprintf("BufferTarget(%d)", t)
	}
}

// Usage returns the WebGPU buffer usage for the target.
func (t BufferTarget) Usage() gputypes.BufferUsage {
	if t == ElementBuffer {
		return gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	}
	return gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
}

// DrawMode selects primitive assembly.
type DrawMode uint8

const (
	Triangles DrawMode = iota
	TriangleStrip
	TriangleFan
	Lines
	LineStrip
	Points
)

// String returns the mode name.
func (m DrawMode) String() string {
	switch m {
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "triangle-strip"
	case TriangleFan:
		return "triangle-fan"
	case Lines:
		return "lines"
	case LineStrip:
		return "line-strip"
	case Points:
		return "points"
	default:
		return fmt.Sprintf("DrawMode(%d)", m)
	}
}

// Topology maps the mode to a WebGPU topology. TriangleFan has none; it
// reports TriangleList and false so the caller can expand the fan.
func (m DrawMode) Topology() (gputypes.PrimitiveTopology, bool) {
	switch m {
	case Triangles:
		return gputypes.PrimitiveTopologyTriangleList, true
	case TriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, true
	case Lines:
		return gputypes.PrimitiveTopologyLineList, true
	case LineStrip:
		return gputypes.PrimitiveTopologyLineStrip, true
	case Points:
		return gputypes.PrimitiveTopologyPointList, true
	default:
		return gputypes.PrimitiveTopologyTriangleList, false
	}
}

// FanIndices returns triangle-list indices covering a fan of count
// vertices starting at first.
func FanIndices(first, count int) []uint32 {
	if count < 3 {
		return nil
	}
	out := make([]uint32, 0, (count-2)*3)
	for i := 1; i < count-1; i++ {
		out = append(out, uint32(first), uint32(first+i), uint32(first+i+1))
	}
	return out
}

// StencilState configures the stencil test and stencil writes.
// The zero value disables stencil testing.
type StencilState struct {
	Enabled bool
	Compare gputypes.CompareFunction
	Ref     uint32
	PassOp  gputypes.StencilOperation
}

// StencilWrite returns the state that writes ref wherever geometry lands.
func StencilWrite(ref uint32) StencilState {
	return StencilState{
		Enabled: true,
		Compare: gputypes.CompareFunctionAlways,
		Ref:     ref,
		PassOp:  gputypes.StencilOperationReplace,
	}
}

// StencilTest returns the state that keeps the buffer and passes where
// compare(ref, stencil) holds.
func StencilTest(compare gputypes.CompareFunction, ref uint32) StencilState {
	return StencilState{
		Enabled: true,
		Compare: compare,
		Ref:     ref,
		PassOp:  gputypes.StencilOperationKeep,
	}
}

// ClearOptions selects what Clear resets.
type ClearOptions struct {
	// Color, when non-nil, is the clear color.
	Color   *gputypes.Color
	Stencil bool
}

// TextureDesc describes a texture to create.
type TextureDesc struct {
	Label  string
	Width  int
	Height int
	// Filter defaults to linear when zero.
	Filter gputypes.FilterMode
}

// Limits are the device limits the batchers depend on.
type Limits struct {
	// MaxTextureUnits bounds the texture table of one batch.
	MaxTextureUnits int
	MaxTextureSize  int
}

// LimitsFrom derives Limits from WebGPU device limits.
func LimitsFrom(l gputypes.Limits) Limits {
	return Limits{
		MaxTextureUnits: int(l.MaxSampledTexturesPerShaderStage),
		MaxTextureSize:  int(l.MaxTextureDimension2D),
	}
}

// DefaultLimits returns the limits of gputypes.DefaultLimits.
func DefaultLimits() Limits {
	return LimitsFrom(gputypes.DefaultLimits())
}

// ProgramSource is everything a device needs to build a program.
type ProgramSource struct {
	Label string

	// WGSL is the complete shader module.
	WGSL string
	// SPIRV is the compiled module, when the shader package produced one.
	SPIRV []uint32
	// GLSLVertex and GLSLFragment are filled for GL-style hosts.
	GLSLVertex   string
	GLSLFragment string

	VertexEntry   string
	FragmentEntry string

	// TextureSlots is the number of texture bindings in the batch table.
	TextureSlots int

	// Uniforms describes the uniform blocks and sampler bindings.
	Uniforms []UniformField
}

// UniformField locates one named uniform.
type UniformField struct {
	Name string
	Kind UniformKind
	// Group and Binding identify the buffer (or texture binding for
	// samplers) in the module.
	Group   uint32
	Binding uint32
	// Offset is the byte offset inside the uniform block.
	Offset int
}

// BlockSize returns the byte size of the uniform block in group, rounded
// up to 16 bytes, or 0 when the group has no buffer fields.
func (s ProgramSource) BlockSize(group uint32) int {
	size := 0
	for _, f := range s.Uniforms {
		if f.Group != group || f.Kind == UniformSampler {
			continue
		}
		if end := f.Offset + f.Kind.Size(); end > size {
			size = end
		}
	}
	return (size + 15) &^ 15
}

// Field returns the uniform named name.
func (s ProgramSource) Field(name string) (UniformField, bool) {
	for _, f := range s.Uniforms {
		if f.Name == name {
			return f, true
		}
	}
	return UniformField{}, false
}
