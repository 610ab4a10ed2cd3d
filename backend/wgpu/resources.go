package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/render"
)

const (
	colorFormat   = gputypes.TextureFormatRGBA8Unorm
	stencilFormat = gputypes.TextureFormatDepth24PlusStencil8
)

func align4(n int) int { return (n + 3) &^ 3 }

// buffer keeps a CPU shadow of its contents. Sub-uploads are widened to
// 4-byte boundaries, which queue writes require.
type buffer struct {
	target   render.BufferTarget
	label    string
	data     []byte
	gpu      hal.Buffer
	capacity int
	deleted  bool
}

func (b *buffer) Target() render.BufferTarget { return b.target }
func (b *buffer) Size() int                   { return len(b.data) }

// span returns bytes [lo, hi) of the shadow, zero padded past its end.
func (b *buffer) span(lo, hi int) []byte {
	if hi <= len(b.data) {
		return b.data[lo:hi]
	}
	out := make([]byte, hi-lo)
	copy(out, b.data[lo:])
	return out
}

type texture struct {
	label  string
	w, h   int
	filter gputypes.FilterMode
	tex    hal.Texture
	view   hal.TextureView
}

func (t *texture) Width() int  { return t.w }
func (t *texture) Height() int { return t.h }

func (t *texture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

type renderTarget struct {
	color       *texture
	stencil     hal.Texture
	stencilView hal.TextureView
}

func (r *renderTarget) Width() int              { return r.color.w }
func (r *renderTarget) Height() int             { return r.color.h }
func (r *renderTarget) Texture() render.Texture { return r.color }

func (r *renderTarget) destroy(device hal.Device) {
	if r.stencilView != nil {
		device.DestroyTextureView(r.stencilView)
		r.stencilView = nil
	}
	if r.stencil != nil {
		device.DestroyTexture(r.stencil)
		r.stencil = nil
	}
	r.color.destroy(device)
}

func (d *Device) CreateBuffer(target render.BufferTarget, label string) (render.Buffer, error) {
	if target != render.ArrayBuffer && target != render.ElementBuffer {
		return nil, fmt.Errorf("wgpu: unknown buffer target %s", target)
	}
	return &buffer{target: target, label: label}, nil
}

func (d *Device) BindBuffer(rb render.Buffer) {
	b, ok := rb.(*buffer)
	if !ok || b.deleted {
		batch2d.Logger().Debug("wgpu: bind of foreign or deleted buffer ignored")
		return
	}
	d.bound[b.target] = b
}

func (d *Device) BufferData(target render.BufferTarget, data []byte, size int) error {
	b := d.bound[target]
	if b == nil {
		return render.ErrNoBuffer
	}
	if len(data) > size {
		return fmt.Errorf("%w: %d bytes into a %d byte buffer", render.ErrOutOfRange, len(data), size)
	}
	if need := align4(size); need > b.capacity {
		gpu, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: b.label,
			Size:  uint64(need),
			Usage: target.Usage(),
		})
		if err != nil {
			return fmt.Errorf("wgpu: create %s buffer: %w", target, err)
		}
		if old := b.gpu; old != nil {
			d.deferRelease(func() { d.device.DestroyBuffer(old) })
		}
		b.gpu, b.capacity = gpu, need
	}
	if cap(b.data) >= size {
		b.data = b.data[:size]
		clear(b.data[len(data):])
	} else {
		b.data = make([]byte, size)
	}
	copy(b.data, data)
	if size == 0 {
		return nil
	}
	if err := d.queue.WriteBuffer(b.gpu, 0, b.span(0, align4(size))); err != nil {
		return fmt.Errorf("wgpu: write %s buffer: %w", target, err)
	}
	return nil
}

func (d *Device) BufferSubData(target render.BufferTarget, offset int, data []byte) error {
	b := d.bound[target]
	if b == nil {
		return render.ErrNoBuffer
	}
	end := offset + len(data)
	if offset < 0 || end > len(b.data) {
		return fmt.Errorf("%w: [%d,%d) of %d bytes", render.ErrOutOfRange, offset, end, len(b.data))
	}
	if len(data) == 0 {
		return nil
	}
	copy(b.data[offset:], data)
	lo, hi := offset&^3, align4(end)
	if err := d.queue.WriteBuffer(b.gpu, uint64(lo), b.span(lo, hi)); err != nil {
		return fmt.Errorf("wgpu: write %s buffer: %w", target, err)
	}
	return nil
}

func (d *Device) DeleteBuffer(rb render.Buffer) {
	b, ok := rb.(*buffer)
	if !ok || b.deleted {
		return
	}
	b.deleted = true
	if d.bound[b.target] == b {
		d.bound[b.target] = nil
	}
	if gpu := b.gpu; gpu != nil {
		d.deferRelease(func() { d.device.DestroyBuffer(gpu) })
	}
	b.gpu, b.data, b.capacity = nil, nil, 0
}

// transient uploads data into a buffer destroyed at the end of the frame.
func (d *Device) transient(label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(align4(len(data))),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s: %w", label, err)
	}
	d.deferRelease(func() { d.device.DestroyBuffer(buf) })
	if len(data)%4 != 0 {
		padded := make([]byte, align4(len(data)))
		copy(padded, data)
		data = padded
	}
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		return nil, fmt.Errorf("wgpu: write %s: %w", label, err)
	}
	return buf, nil
}

func (d *Device) CreateTexture(desc render.TextureDesc, pix []byte) (render.Texture, error) {
	t, err := d.newTexture(desc, pix, 0)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (d *Device) newTexture(desc render.TextureDesc, pix []byte, extra gputypes.TextureUsage) (*texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > d.limits.MaxTextureSize || desc.Height > d.limits.MaxTextureSize {
		return nil, fmt.Errorf("%w: texture %dx%d", render.ErrOutOfRange, desc.Width, desc.Height)
	}
	if pix != nil && len(pix) != desc.Width*desc.Height*4 {
		return nil, fmt.Errorf("%w: %d pixel bytes for %dx%d", render.ErrOutOfRange, len(pix), desc.Width, desc.Height)
	}
	filter := desc.Filter
	if filter == gputypes.FilterModeUndefined {
		filter = gputypes.FilterModeLinear
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        colorFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | extra,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: desc.Label + "_view",
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view %q: %w", desc.Label, err)
	}
	t := &texture{label: desc.Label, w: desc.Width, h: desc.Height, filter: filter, tex: tex, view: view}
	if pix != nil {
		if err := d.writeTexture(t, pix); err != nil {
			t.destroy(d.device)
			return nil, err
		}
	}
	return t, nil
}

func (d *Device) writeTexture(t *texture, pix []byte) error {
	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(t.w * 4), RowsPerImage: uint32(t.h)},
		&hal.Extent3D{Width: uint32(t.w), Height: uint32(t.h), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture %q: %w", t.label, err)
	}
	return nil
}

func (d *Device) UpdateTexture(rt render.Texture, pix []byte) error {
	t, ok := rt.(*texture)
	if !ok || t.tex == nil {
		return render.ErrInvalidHandle
	}
	if len(pix) != t.w*t.h*4 {
		return fmt.Errorf("%w: %d pixel bytes for %dx%d", render.ErrOutOfRange, len(pix), t.w, t.h)
	}
	return d.writeTexture(t, pix)
}

func (d *Device) BindTexture(unit int, rt render.Texture) {
	if unit < 0 || unit >= d.limits.MaxTextureUnits {
		batch2d.Logger().Debug("wgpu: texture unit out of range", "unit", unit)
		return
	}
	if rt == nil {
		delete(d.units, unit)
		return
	}
	t, ok := rt.(*texture)
	if !ok || t.tex == nil {
		batch2d.Logger().Debug("wgpu: bind of foreign or deleted texture ignored", "unit", unit)
		return
	}
	d.units[unit] = t
}

func (d *Device) DeleteTexture(rt render.Texture) {
	t, ok := rt.(*texture)
	if !ok || t.tex == nil || t == d.white {
		return
	}
	for unit, bound := range d.units {
		if bound == t {
			delete(d.units, unit)
		}
	}
	tex, view := t.tex, t.view
	t.tex, t.view = nil, nil
	d.deferRelease(func() {
		d.device.DestroyTextureView(view)
		d.device.DestroyTexture(tex)
	})
}

func (d *Device) CreateRenderTarget(width, height int) (render.RenderTarget, error) {
	rt, err := d.newRenderTarget("render_target", width, height)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (d *Device) newRenderTarget(label string, width, height int) (*renderTarget, error) {
	color, err := d.newTexture(render.TextureDesc{Label: label + "_color", Width: width, Height: height}, nil,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return nil, err
	}
	stencil, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label + "_depth_stencil",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        stencilFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		color.destroy(d.device)
		return nil, fmt.Errorf("wgpu: create depth/stencil texture: %w", err)
	}
	stencilView, err := d.device.CreateTextureView(stencil, &hal.TextureViewDescriptor{
		Label: label + "_depth_stencil_view",
	})
	if err != nil {
		d.device.DestroyTexture(stencil)
		color.destroy(d.device)
		return nil, fmt.Errorf("wgpu: create depth/stencil view: %w", err)
	}
	return &renderTarget{color: color, stencil: stencil, stencilView: stencilView}, nil
}

func (d *Device) BindRenderTarget(rt render.RenderTarget) {
	if rt == nil {
		d.target = nil
		return
	}
	r, ok := rt.(*renderTarget)
	if !ok || r.stencil == nil {
		batch2d.Logger().Debug("wgpu: bind of foreign or deleted render target ignored")
		return
	}
	d.target = r
}

func (d *Device) DeleteRenderTarget(rt render.RenderTarget) {
	r, ok := rt.(*renderTarget)
	if !ok || r.stencil == nil || r == d.screen {
		return
	}
	if d.target == r {
		d.target = nil
	}
	for unit, bound := range d.units {
		if bound == r.color {
			delete(d.units, unit)
		}
	}
	dead := &renderTarget{
		color:       &texture{tex: r.color.tex, view: r.color.view},
		stencil:     r.stencil,
		stencilView: r.stencilView,
	}
	r.color.tex, r.color.view, r.stencil, r.stencilView = nil, nil, nil, nil
	d.deferRelease(func() { dead.destroy(d.device) })
}

// current returns the render target draws land in.
func (d *Device) current() *renderTarget {
	if d.target != nil {
		return d.target
	}
	return d.screen
}
