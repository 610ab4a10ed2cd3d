package buffer

import (
	"errors"
	"fmt"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/render"
)

// ErrDestroyed is returned when using a destroyed GPU buffer.
var ErrDestroyed = errors.New("buffer: destroyed")

// GPU is a Dynamic buffer mirrored into a device buffer.
//
// Pushing only touches CPU memory and marks the buffer dirty. Upload sends
// the used range to the device: BufferData when the capacity grew past the
// last uploaded capacity, BufferSubData otherwise.
type GPU[T Scalar] struct {
	Dynamic[T]

	dev    render.Device
	target render.BufferTarget
	buf    render.Buffer

	dirty       bool
	uploadedCap int

	fullUploads int
	subUploads  int
}

// NewGPU creates the device buffer and a CPU buffer of the given capacity.
func NewGPU[T Scalar](dev render.Device, target render.BufferTarget, capacity int, label string) (*GPU[T], error) {
	buf, err := dev.CreateBuffer(target, label)
	if err != nil {
		return nil, fmt.Errorf("create %s buffer %q: %w", target, label, err)
	}
	return &GPU[T]{
		Dynamic: Dynamic[T]{data: make([]T, max(capacity, 0))},
		dev:     dev,
		target:  target,
		buf:     buf,
	}, nil
}

// Push appends one scalar and marks the buffer dirty.
func (g *GPU[T]) Push(v T) {
	g.Dynamic.Push(v)
	g.dirty = true
}

// PushN appends several scalars and marks the buffer dirty.
func (g *GPU[T]) PushN(vs ...T) {
	g.Dynamic.PushN(vs...)
	g.dirty = true
}

// Pop removes the last n scalars and marks the buffer dirty.
func (g *GPU[T]) Pop(n int) {
	g.Dynamic.Pop(n)
	g.dirty = true
}

// Dirty reports whether the CPU contents changed since the last upload.
func (g *GPU[T]) Dirty() bool { return g.dirty }

// Target returns the binding target.
func (g *GPU[T]) Target() render.BufferTarget { return g.target }

// Handle returns the device buffer.
func (g *GPU[T]) Handle() render.Buffer { return g.buf }

// Bind binds the device buffer to its target.
func (g *GPU[T]) Bind() {
	if g.buf == nil {
		return
	}
	g.dev.BindBuffer(g.buf)
}

// Upload sends the used range to the device. It is a no-op when the buffer
// is clean. On failure the buffer stays dirty.
func (g *GPU[T]) Upload() error {
	if !g.dirty {
		return nil
	}
	if g.buf == nil {
		return ErrDestroyed
	}
	g.Bind()
	data := g.Bytes()
	if g.Cap() > g.uploadedCap {
		if err := g.dev.BufferData(g.target, data, g.Cap()*g.Kind().Size()); err != nil {
			return fmt.Errorf("upload %s buffer: %w", g.target, err)
		}
		g.uploadedCap = g.Cap()
		g.fullUploads++
	} else if len(data) > 0 {
		if err := g.dev.BufferSubData(g.target, 0, data); err != nil {
			return fmt.Errorf("update %s buffer: %w", g.target, err)
		}
		g.subUploads++
	}
	g.dirty = false
	return nil
}

// UploadCounts returns the number of full and partial uploads performed.
func (g *GPU[T]) UploadCounts() (full, partial int) {
	return g.fullUploads, g.subUploads
}

// Destroy releases the device buffer. The CPU contents stay readable.
func (g *GPU[T]) Destroy() {
	if g.buf == nil {
		return
	}
	g.dev.DeleteBuffer(g.buf)
	g.buf = nil
	batch2d.Logger().Debug("buffer: destroyed", "target", g.target.String())
}
