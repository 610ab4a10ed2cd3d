package recording

import (
	"fmt"
	"maps"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/render"
)

func init() {
	render.Register("recording", func(width, height int) (render.Device, error) {
		return NewDevice(WithSize(width, height)), nil
	})
}

type buffer struct {
	target  render.BufferTarget
	label   string
	data    []byte
	deleted bool
}

func (b *buffer) Target() render.BufferTarget { return b.target }
func (b *buffer) Size() int                   { return len(b.data) }

type texture struct {
	label   string
	w, h    int
	pix     []byte
	deleted bool
}

func (t *texture) Width() int  { return t.w }
func (t *texture) Height() int { return t.h }

type program struct {
	src     render.ProgramSource
	deleted bool
}

func (p *program) Label() string { return p.src.Label }

type renderTarget struct {
	label string
	tex   *texture
}

func (r *renderTarget) Width() int              { return r.tex.w }
func (r *renderTarget) Height() int             { return r.tex.h }
func (r *renderTarget) Texture() render.Texture { return r.tex }

// Stats summarizes the recorded commands.
type Stats struct {
	DrawCalls    int
	Indices      int
	Vertices     int
	FullUploads  int
	SubUploads   int
	UploadBytes  int
	TextureBinds int
	Clears       int
	Frames       int
}

// Option configures a Device.
type Option func(*Device)

// WithTextureUnits sets the reported texture-unit limit.
func WithTextureUnits(n int) Option {
	return func(d *Device) { d.limits.MaxTextureUnits = n }
}

// WithSize sets the default framebuffer size.
func WithSize(width, height int) Option {
	return func(d *Device) { d.width, d.height = width, height }
}

// WithVertexCapture copies the bound vertex bytes into every DrawCommand.
func WithVertexCapture() Option {
	return func(d *Device) { d.capture = true }
}

// Device is a render.Device that records every call.
type Device struct {
	limits        render.Limits
	width, height int
	capture       bool

	commands []Command
	stats    Stats

	bound      [2]*buffer
	prog       *program
	layout     gputypes.VertexBufferLayout
	uniforms   map[*program]map[string]render.Uniform
	units      map[int]*texture
	target     *renderTarget
	stencil    render.StencilState
	colorWrite bool
	viewport   ViewportCommand

	seq     int
	failErr error
}

var _ render.Device = (*Device)(nil)

// NewDevice returns a recording device with gputypes default limits.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		limits:     render.DefaultLimits(),
		width:      800,
		height:     600,
		uniforms:   make(map[*program]map[string]render.Uniform),
		units:      make(map[int]*texture),
		colorWrite: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.viewport = ViewportCommand{Width: d.width, Height: d.height}
	return d
}

// FailDraws makes every following draw return err. Pass nil to stop.
func (d *Device) FailDraws(err error) { d.failErr = err }

// Commands returns the recorded commands.
func (d *Device) Commands() []Command { return d.commands }

// Stats returns counters accumulated since the last Reset.
func (d *Device) Stats() Stats { return d.stats }

// Reset drops recorded commands and counters. Resources and bindings stay.
func (d *Device) Reset() {
	d.commands = d.commands[:0]
	d.stats = Stats{}
}

// Draws returns the recorded draw commands in order.
func (d *Device) Draws() []DrawCommand {
	var out []DrawCommand
	for _, c := range d.commands {
		if dc, ok := c.(DrawCommand); ok {
			out = append(out, dc)
		}
	}
	return out
}

// Count returns how many commands of type t were recorded.
func (d *Device) Count(t CommandType) int {
	n := 0
	for _, c := range d.commands {
		if c.Type() == t {
			n++
		}
	}
	return n
}

// BoundData returns the bytes of the buffer bound to target.
func (d *Device) BoundData(target render.BufferTarget) []byte {
	if b := d.bound[target]; b != nil {
		return b.data
	}
	return nil
}

// TexturePixels returns the pixels of a texture created by this device.
func (d *Device) TexturePixels(t render.Texture) []byte {
	if tex, ok := t.(*texture); ok {
		return tex.pix
	}
	return nil
}

func (d *Device) record(c Command) { d.commands = append(d.commands, c) }

func (d *Device) nextLabel(kind, label string) string {
	d.seq++
	if label != "" {
		return label
	}
	return fmt.Sprintf("%s#%d", kind, d.seq)
}

func (d *Device) Limits() render.Limits { return d.limits }

func (d *Device) CreateBuffer(target render.BufferTarget, label string) (render.Buffer, error) {
	b := &buffer{target: target, label: d.nextLabel("buffer", label)}
	d.record(ResourceCommand{Op: CmdCreateBuffer, Label: b.label})
	return b, nil
}

func (d *Device) BindBuffer(rb render.Buffer) {
	b, ok := rb.(*buffer)
	if !ok || b.deleted {
		batch2d.Logger().Debug("recording: bind of foreign or deleted buffer ignored")
		return
	}
	d.bound[b.target] = b
	d.record(BindBufferCommand{Target: b.target, Label: b.label})
}

func (d *Device) BufferData(target render.BufferTarget, data []byte, size int) error {
	b := d.bound[target]
	if b == nil {
		return render.ErrNoBuffer
	}
	if size < len(data) {
		return fmt.Errorf("buffer data %d bytes into %d: %w", len(data), size, render.ErrOutOfRange)
	}
	b.data = make([]byte, size)
	copy(b.data, data)
	d.stats.FullUploads++
	d.stats.UploadBytes += len(data)
	d.record(UploadCommand{Target: target, Full: true, Bytes: len(data), Size: size})
	return nil
}

func (d *Device) BufferSubData(target render.BufferTarget, offset int, data []byte) error {
	b := d.bound[target]
	if b == nil {
		return render.ErrNoBuffer
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("sub data [%d,%d) of %d: %w", offset, offset+len(data), len(b.data), render.ErrOutOfRange)
	}
	copy(b.data[offset:], data)
	d.stats.SubUploads++
	d.stats.UploadBytes += len(data)
	d.record(UploadCommand{Target: target, Offset: offset, Bytes: len(data)})
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
	d.record(ResourceCommand{Op: CmdDeleteBuffer, Label: b.label})
}

func (d *Device) CreateProgram(src render.ProgramSource) (render.Program, error) {
	if src.WGSL == "" && src.GLSLVertex == "" {
		return nil, fmt.Errorf("program %q: empty source", src.Label)
	}
	src.Label = d.nextLabel("program", src.Label)
	p := &program{src: src}
	d.uniforms[p] = make(map[string]render.Uniform)
	d.record(ResourceCommand{Op: CmdCreateProgram, Label: src.Label})
	return p, nil
}

func (d *Device) UseProgram(rp render.Program) {
	p, ok := rp.(*program)
	if !ok || p.deleted {
		batch2d.Logger().Debug("recording: use of foreign or deleted program ignored")
		return
	}
	d.prog = p
	d.record(UseProgramCommand{Label: p.src.Label})
}

func (d *Device) SetVertexLayout(layout gputypes.VertexBufferLayout) {
	d.layout = layout
	d.record(SetVertexLayoutCommand{Layout: layout})
}

func (d *Device) SetUniform(name string, u render.Uniform) {
	if d.prog == nil {
		batch2d.Logger().Debug("recording: uniform without program ignored", "name", name)
		return
	}
	d.uniforms[d.prog][name] = u
	d.record(SetUniformCommand{Name: name, Value: u})
}

func (d *Device) DeleteProgram(rp render.Program) {
	p, ok := rp.(*program)
	if !ok || p.deleted {
		return
	}
	p.deleted = true
	delete(d.uniforms, p)
	if d.prog == p {
		d.prog = nil
	}
	d.record(ResourceCommand{Op: CmdDeleteProgram, Label: p.src.Label})
}

func (d *Device) CreateTexture(desc render.TextureDesc, pix []byte) (render.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("texture %dx%d: invalid size", desc.Width, desc.Height)
	}
	if pix != nil && len(pix) != desc.Width*desc.Height*4 {
		return nil, fmt.Errorf("texture %dx%d: got %d bytes of pixels", desc.Width, desc.Height, len(pix))
	}
	t := &texture{label: d.nextLabel("texture", desc.Label), w: desc.Width, h: desc.Height}
	if pix != nil {
		t.pix = append([]byte(nil), pix...)
	}
	d.record(ResourceCommand{Op: CmdCreateTexture, Label: t.label})
	return t, nil
}

func (d *Device) UpdateTexture(rt render.Texture, pix []byte) error {
	t, ok := rt.(*texture)
	if !ok || t.deleted {
		return render.ErrInvalidHandle
	}
	if len(pix) != t.w*t.h*4 {
		return fmt.Errorf("update texture %q: got %d bytes: %w", t.label, len(pix), render.ErrOutOfRange)
	}
	t.pix = append(t.pix[:0], pix...)
	d.record(ResourceCommand{Op: CmdUpdateTexture, Label: t.label})
	return nil
}

func (d *Device) BindTexture(unit int, rt render.Texture) {
	if unit < 0 || unit >= d.limits.MaxTextureUnits {
		batch2d.Logger().Debug("recording: texture unit out of range", "unit", unit)
		return
	}
	t, ok := rt.(*texture)
	if !ok || t.deleted {
		delete(d.units, unit)
		return
	}
	d.units[unit] = t
	d.stats.TextureBinds++
	d.record(BindTextureCommand{Unit: unit, Label: t.label})
}

func (d *Device) DeleteTexture(rt render.Texture) {
	t, ok := rt.(*texture)
	if !ok || t.deleted {
		return
	}
	t.deleted = true
	for unit, bound := range d.units {
		if bound == t {
			delete(d.units, unit)
		}
	}
	d.record(ResourceCommand{Op: CmdDeleteTexture, Label: t.label})
}

func (d *Device) CreateRenderTarget(width, height int) (render.RenderTarget, error) {
	tex, err := d.CreateTexture(render.TextureDesc{Label: d.nextLabel("target", ""), Width: width, Height: height}, nil)
	if err != nil {
		return nil, fmt.Errorf("create render target: %w", err)
	}
	t := tex.(*texture)
	rt := &renderTarget{label: t.label, tex: t}
	d.record(ResourceCommand{Op: CmdCreateRenderTarget, Label: rt.label})
	return rt, nil
}

func (d *Device) BindRenderTarget(rt render.RenderTarget) {
	t, _ := rt.(*renderTarget)
	d.target = t
	label := ""
	if t != nil {
		label = t.label
	}
	d.record(BindRenderTargetCommand{Label: label})
}

func (d *Device) DeleteRenderTarget(rt render.RenderTarget) {
	t, ok := rt.(*renderTarget)
	if !ok {
		return
	}
	if d.target == t {
		d.target = nil
	}
	d.DeleteTexture(t.tex)
	d.record(ResourceCommand{Op: CmdDeleteRenderTarget, Label: t.label})
}

func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = ViewportCommand{X: x, Y: y, Width: width, Height: height}
	d.record(d.viewport)
}

// CurrentViewport returns the last viewport set.
func (d *Device) CurrentViewport() ViewportCommand { return d.viewport }

func (d *Device) Clear(opts render.ClearOptions) {
	d.stats.Clears++
	d.record(ClearCommand{Color: opts.Color, Stencil: opts.Stencil})
}

func (d *Device) SetStencil(s render.StencilState) {
	d.stencil = s
	d.record(SetStencilCommand{State: s})
}

func (d *Device) SetColorWrite(enabled bool) {
	d.colorWrite = enabled
	d.record(SetColorWriteCommand{Enabled: enabled})
}

func (d *Device) DrawElements(mode render.DrawMode, count int, format gputypes.IndexFormat, offset int) error {
	if err := d.checkDraw(); err != nil {
		return err
	}
	ib := d.bound[render.ElementBuffer]
	if ib == nil {
		return render.ErrNoBuffer
	}
	size := int(format.Size())
	if size == 0 || offset < 0 || offset+count*size > len(ib.data) {
		return fmt.Errorf("draw %d indices at %d from %d bytes: %w", count, offset, len(ib.data), render.ErrOutOfRange)
	}
	if err := d.checkIndices(ib.data[offset:offset+count*size], format); err != nil {
		return err
	}
	d.stats.DrawCalls++
	d.stats.Indices += count
	d.record(d.draw(true, mode, count, offset))
	return nil
}

func (d *Device) DrawArrays(mode render.DrawMode, first, count int) error {
	if err := d.checkDraw(); err != nil {
		return err
	}
	if stride := int(d.layout.ArrayStride); stride > 0 {
		if first < 0 || (first+count)*stride > len(d.bound[render.ArrayBuffer].data) {
			return fmt.Errorf("draw vertices [%d,%d): %w", first, first+count, render.ErrOutOfRange)
		}
	}
	d.stats.DrawCalls++
	d.stats.Vertices += count
	d.record(d.draw(false, mode, count, first))
	return nil
}

func (d *Device) checkDraw() error {
	if d.failErr != nil {
		return d.failErr
	}
	if d.prog == nil {
		return render.ErrNoProgram
	}
	if d.bound[render.ArrayBuffer] == nil {
		return render.ErrNoBuffer
	}
	return nil
}

func (d *Device) checkIndices(idx []byte, format gputypes.IndexFormat) error {
	stride := int(d.layout.ArrayStride)
	if stride == 0 {
		return nil
	}
	vertices := len(d.bound[render.ArrayBuffer].data) / stride
	size := int(format.Size())
	for i := 0; i+size <= len(idx); i += size {
		var v int
		if size == 2 {
			v = int(idx[i]) | int(idx[i+1])<<8
		} else {
			v = int(idx[i]) | int(idx[i+1])<<8 | int(idx[i+2])<<16 | int(idx[i+3])<<24
		}
		if v >= vertices {
			return fmt.Errorf("index %d >= %d vertices: %w", v, vertices, render.ErrOutOfRange)
		}
	}
	return nil
}

func (d *Device) draw(indexed bool, mode render.DrawMode, count, first int) DrawCommand {
	dc := DrawCommand{
		Indexed:    indexed,
		Mode:       mode,
		Count:      count,
		First:      first,
		Program:    d.prog.src.Label,
		Stencil:    d.stencil,
		ColorWrite: d.colorWrite,
		Uniforms:   maps.Clone(d.uniforms[d.prog]),
	}
	if d.target != nil {
		dc.Target = d.target.label
	}
	for unit := 0; unit < d.limits.MaxTextureUnits; unit++ {
		t, ok := d.units[unit]
		if !ok {
			break
		}
		dc.Textures = append(dc.Textures, t.label)
	}
	if d.capture {
		dc.Vertices = append([]byte(nil), d.bound[render.ArrayBuffer].data...)
	}
	return dc
}

func (d *Device) Finish() error {
	d.stats.Frames++
	d.record(FinishCommand{})
	return nil
}
