package recording

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/batch2d/render"
)

// CommandType identifies the type of a command.
type CommandType uint8

const (
	// Resource commands
	CmdCreateBuffer CommandType = iota
	CmdDeleteBuffer
	CmdCreateProgram
	CmdDeleteProgram
	CmdCreateTexture
	CmdUpdateTexture
	CmdDeleteTexture
	CmdCreateRenderTarget
	CmdDeleteRenderTarget

	// State commands
	CmdBindBuffer
	CmdBufferData
	CmdBufferSubData
	CmdUseProgram
	CmdSetVertexLayout
	CmdSetUniform
	CmdBindTexture
	CmdBindRenderTarget
	CmdViewport
	CmdSetStencil
	CmdSetColorWrite

	// Drawing commands
	CmdClear
	CmdDrawElements
	CmdDrawArrays
	CmdFinish
)

var commandTypeNames = [...]string{
	CmdCreateBuffer:       "CreateBuffer",
	CmdDeleteBuffer:       "DeleteBuffer",
	CmdCreateProgram:      "CreateProgram",
	CmdDeleteProgram:      "DeleteProgram",
	CmdCreateTexture:      "CreateTexture",
	CmdUpdateTexture:      "UpdateTexture",
	CmdDeleteTexture:      "DeleteTexture",
	CmdCreateRenderTarget: "CreateRenderTarget",
	CmdDeleteRenderTarget: "DeleteRenderTarget",
	CmdBindBuffer:         "BindBuffer",
	CmdBufferData:         "BufferData",
	CmdBufferSubData:      "BufferSubData",
	CmdUseProgram:         "UseProgram",
	CmdSetVertexLayout:    "SetVertexLayout",
	CmdSetUniform:         "SetUniform",
	CmdBindTexture:        "BindTexture",
	CmdBindRenderTarget:   "BindRenderTarget",
	CmdViewport:           "Viewport",
	CmdSetStencil:         "SetStencil",
	CmdSetColorWrite:      "SetColorWrite",
	CmdClear:              "Clear",
	CmdDrawElements:       "DrawElements",
	CmdDrawArrays:         "DrawArrays",
	CmdFinish:             "Finish",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	Type() CommandType
}

// ResourceCommand records creation or deletion of a device resource.
type ResourceCommand struct {
	Op    CommandType
	Label string
}

func (c ResourceCommand) Type() CommandType { return c.Op }

// BindBufferCommand binds a buffer to its target.
type BindBufferCommand struct {
	Target render.BufferTarget
	Label  string
}

func (BindBufferCommand) Type() CommandType { return CmdBindBuffer }

// UploadCommand records BufferData (Full) or BufferSubData.
type UploadCommand struct {
	Target render.BufferTarget
	Full   bool
	Offset int
	Bytes  int
	// Size is the allocation size for full uploads.
	Size int
}

func (c UploadCommand) Type() CommandType {
	if c.Full {
		return CmdBufferData
	}
	return CmdBufferSubData
}

// UseProgramCommand selects a program.
type UseProgramCommand struct {
	Label string
}

func (UseProgramCommand) Type() CommandType { return CmdUseProgram }

// SetVertexLayoutCommand describes the vertex buffer layout.
type SetVertexLayoutCommand struct {
	Layout gputypes.VertexBufferLayout
}

func (SetVertexLayoutCommand) Type() CommandType { return CmdSetVertexLayout }

// SetUniformCommand sets a named uniform on the current program.
type SetUniformCommand struct {
	Name  string
	Value render.Uniform
}

func (SetUniformCommand) Type() CommandType { return CmdSetUniform }

// BindTextureCommand binds a texture to a unit.
type BindTextureCommand struct {
	Unit  int
	Label string
}

func (BindTextureCommand) Type() CommandType { return CmdBindTexture }

// BindRenderTargetCommand redirects output; Label is empty for the default
// framebuffer.
type BindRenderTargetCommand struct {
	Label string
}

func (BindRenderTargetCommand) Type() CommandType { return CmdBindRenderTarget }

// ViewportCommand sets the viewport rectangle.
type ViewportCommand struct {
	X, Y, Width, Height int
}

func (ViewportCommand) Type() CommandType { return CmdViewport }

// SetStencilCommand sets the stencil state.
type SetStencilCommand struct {
	State render.StencilState
}

func (SetStencilCommand) Type() CommandType { return CmdSetStencil }

// SetColorWriteCommand enables or disables color writes.
type SetColorWriteCommand struct {
	Enabled bool
}

func (SetColorWriteCommand) Type() CommandType { return CmdSetColorWrite }

// ClearCommand clears the current framebuffer.
type ClearCommand struct {
	Color   *gputypes.Color
	Stencil bool
}

func (ClearCommand) Type() CommandType { return CmdClear }

// DrawCommand records a draw together with the state it used.
type DrawCommand struct {
	Indexed bool
	Mode    render.DrawMode
	// Count is the number of indices (indexed) or vertices.
	Count int
	// First is the first vertex for array draws, the byte offset for
	// indexed draws.
	First int

	Program  string
	Textures []string
	Stencil  render.StencilState
	// ColorWrite is false while drawing stencil masks.
	ColorWrite bool
	Target     string
	Uniforms   map[string]render.Uniform
	// Vertices holds the vertex buffer bytes when capture is enabled.
	Vertices []byte
}

func (c DrawCommand) Type() CommandType {
	if c.Indexed {
		return CmdDrawElements
	}
	return CmdDrawArrays
}

// FinishCommand ends the frame.
type FinishCommand struct{}

func (FinishCommand) Type() CommandType { return CmdFinish }
