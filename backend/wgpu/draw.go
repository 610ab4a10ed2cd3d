package wgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch2d/render"
)

func (d *Device) DrawElements(mode render.DrawMode, count int, format gputypes.IndexFormat, offset int) error {
	if err := d.drawable(); err != nil {
		return err
	}
	idx := d.bound[render.ElementBuffer]
	if idx == nil || idx.gpu == nil {
		return render.ErrNoBuffer
	}
	size := 2
	if format == gputypes.IndexFormatUint32 {
		size = 4
	}
	if offset < 0 || offset%size != 0 || offset+count*size > len(idx.data) {
		return fmt.Errorf("%w: %d indices at byte %d of %d", render.ErrOutOfRange, count, offset, len(idx.data))
	}
	if count <= 0 {
		return nil
	}

	topology, ok := mode.Topology()
	buf, first, n := idx.gpu, offset/size, count
	if !ok {
		fan := fanElements(idx.data[offset:], format, count)
		if len(fan) == 0 {
			return nil
		}
		var err error
		if buf, err = d.transient("fan_indices", gputypes.BufferUsageIndex, u32Bytes(fan)); err != nil {
			return err
		}
		format, first, n = gputypes.IndexFormatUint32, 0, len(fan)
	}
	return d.draw("draw_elements", topology, format, func(rp hal.RenderPassEncoder) {
		rp.SetIndexBuffer(buf, format, 0)
		rp.DrawIndexed(uint32(n), 1, uint32(first), 0, 0)
	})
}

func (d *Device) DrawArrays(mode render.DrawMode, first, count int) error {
	if err := d.drawable(); err != nil {
		return err
	}
	if count <= 0 {
		return nil
	}
	topology, ok := mode.Topology()
	if ok {
		return d.draw("draw_arrays", topology, gputypes.IndexFormatUndefined, func(rp hal.RenderPassEncoder) {
			rp.Draw(uint32(count), 1, uint32(first), 0)
		})
	}
	fan := render.FanIndices(first, count)
	if len(fan) == 0 {
		return nil
	}
	buf, err := d.transient("fan_indices", gputypes.BufferUsageIndex, u32Bytes(fan))
	if err != nil {
		return err
	}
	return d.draw("draw_arrays", topology, gputypes.IndexFormatUint32, func(rp hal.RenderPassEncoder) {
		rp.SetIndexBuffer(buf, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(uint32(len(fan)), 1, 0, 0, 0)
	})
}

// drawable checks the state every draw needs.
func (d *Device) drawable() error {
	if d.device == nil {
		return render.ErrNoDevice
	}
	if d.prog == nil {
		return render.ErrNoProgram
	}
	if vb := d.bound[render.ArrayBuffer]; vb == nil || vb.gpu == nil {
		return render.ErrNoBuffer
	}
	return nil
}

func (d *Device) draw(label string, topology gputypes.PrimitiveTopology, strip gputypes.IndexFormat, record func(hal.RenderPassEncoder)) error {
	pipeline, err := d.pipeline(topology, strip)
	if err != nil {
		return err
	}
	groups, err := d.bindGroups()
	if err != nil {
		return err
	}
	vb := d.bound[render.ArrayBuffer].gpu
	x, y, w, h := d.clampedViewport()
	return d.encodePass(label, nil, false, func(rp hal.RenderPassEncoder) {
		rp.SetPipeline(pipeline)
		for i, g := range groups {
			rp.SetBindGroup(uint32(i), g, nil)
		}
		rp.SetVertexBuffer(0, vb, 0)
		rp.SetViewport(float32(x), float32(y), float32(w), float32(h), 0, 1)
		if d.stencil.Enabled {
			rp.SetStencilReference(d.stencil.Ref)
		}
		record(rp)
	})
}

// clampedViewport limits the viewport to the current attachments.
func (d *Device) clampedViewport() (x, y, w, h int) {
	rt := d.current()
	x, y = max(d.viewport[0], 0), max(d.viewport[1], 0)
	w = min(d.viewport[0]+d.viewport[2], rt.Width()) - x
	h = min(d.viewport[1]+d.viewport[3], rt.Height()) - y
	return x, y, max(w, 1), max(h, 1)
}

// encodePass records one render pass on the current target and submits
// it. A nil color loads the existing contents.
func (d *Device) encodePass(label string, color *gputypes.Color, clearStencil bool, record func(hal.RenderPassEncoder)) error {
	rt := d.current()
	colorLoad, clearValue := gputypes.LoadOpLoad, gputypes.Color{}
	if color != nil {
		colorLoad, clearValue = gputypes.LoadOpClear, *color
	}
	stencilLoad := gputypes.LoadOpLoad
	if clearStencil {
		stencilLoad = gputypes.LoadOpClear
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       rt.color.view,
			LoadOp:     colorLoad,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clearValue,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              rt.stencilView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     stencilLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	})
	record(rp)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	d.frame.cmdBufs = append(d.frame.cmdBufs, cmdBuf)
	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	return nil
}

// fanElements expands count fan indices read from data into a triangle
// list.
func fanElements(data []byte, format gputypes.IndexFormat, count int) []uint32 {
	read := func(i int) uint32 {
		if format == gputypes.IndexFormatUint32 {
			return binary.LittleEndian.Uint32(data[i*4:])
		}
		return uint32(binary.LittleEndian.Uint16(data[i*2:]))
	}
	fan := render.FanIndices(0, count)
	for i, pos := range fan {
		fan[i] = read(int(pos))
	}
	return fan
}

func u32Bytes(v []uint32) []byte {
	out := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:], x)
	}
	return out
}
