// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Sentinel errors shared by device implementations.
var (
	// ErrNoDevice is returned when no usable GPU device is available.
	ErrNoDevice = errors.New("render: no device")

	// ErrInvalidHandle is returned when a handle from another device, or a
	// destroyed handle, is passed to a device.
	ErrInvalidHandle = errors.New("render: invalid handle")

	// ErrNoProgram is returned by draw calls issued before UseProgram.
	ErrNoProgram = errors.New("render: no program in use")

	// ErrNoBuffer is returned by draw calls with no vertex buffer bound.
	ErrNoBuffer = errors.New("render: no buffer bound")

	// ErrOutOfRange is returned when an upload or draw exceeds a buffer.
	ErrOutOfRange = errors.New("render: range exceeds buffer size")
)

// DeviceHandle provides GPU device access from a host application.
// backend/wgpu accepts it to share the host's device instead of opening
// its own.
type DeviceHandle = gpucontext.DeviceProvider

// Buffer is a device-side vertex or index buffer.
type Buffer interface {
	// Target returns the binding target the buffer was created for.
	Target() BufferTarget

	// Size returns the allocated size in bytes.
	Size() int
}

// Texture is a device-side RGBA texture.
type Texture interface {
	Width() int
	Height() int
}

// Program is a compiled shader program.
type Program interface {
	Label() string
}

// RenderTarget is an offscreen framebuffer with a color texture and a
// stencil attachment.
type RenderTarget interface {
	Width() int
	Height() int

	// Texture returns the color attachment so the target can be drawn as a
	// sprite once rendering into it has finished.
	Texture() Texture
}

// Device is the stateful command interface the batching layers draw with.
//
// Binding calls (BindBuffer, UseProgram, BindTexture, BindRenderTarget,
// SetStencil, SetColorWrite, Viewport) change state consumed by the next
// draw. Upload calls act on the buffer currently bound to the given target.
// Devices are not safe for concurrent use.
type Device interface {
	// Limits reports the device limits the batchers size themselves by.
	Limits() Limits

	CreateBuffer(target BufferTarget, label string) (Buffer, error)
	BindBuffer(b Buffer)
	// BufferData reallocates the buffer bound to target with size bytes
	// and writes data at offset 0.
	BufferData(target BufferTarget, data []byte, size int) error
	// BufferSubData writes data into the bound buffer at offset.
	BufferSubData(target BufferTarget, offset int, data []byte) error
	DeleteBuffer(b Buffer)

	CreateProgram(src ProgramSource) (Program, error)
	UseProgram(p Program)
	SetVertexLayout(layout gputypes.VertexBufferLayout)
	SetUniform(name string, u Uniform)
	DeleteProgram(p Program)

	// CreateTexture creates a texture from tightly packed non-premultiplied
	// RGBA8 pixels. pix may be nil for an uninitialized texture.
	CreateTexture(desc TextureDesc, pix []byte) (Texture, error)
	UpdateTexture(t Texture, pix []byte) error
	BindTexture(unit int, t Texture)
	DeleteTexture(t Texture)

	CreateRenderTarget(width, height int) (RenderTarget, error)
	// BindRenderTarget redirects drawing; nil restores the default
	// framebuffer.
	BindRenderTarget(rt RenderTarget)
	DeleteRenderTarget(rt RenderTarget)

	Viewport(x, y, width, height int)
	Clear(opts ClearOptions)
	SetStencil(s StencilState)
	SetColorWrite(enabled bool)

	// DrawElements draws count indices from the bound index buffer starting
	// at byte offset.
	DrawElements(mode DrawMode, count int, format gputypes.IndexFormat, offset int) error
	// DrawArrays draws count vertices from the bound vertex buffer.
	DrawArrays(mode DrawMode, first, count int) error

	// Finish ends the frame.
	Finish() error
}
