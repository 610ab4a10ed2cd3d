package region

import (
	"fmt"
	"math"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/buffer"
	"github.com/gogpu/batch2d/render"
	"github.com/gogpu/batch2d/shader"
)

// Region is a batching target selected by the Surface.
type Region interface {
	// EnterRegion makes the region current: binds its buffers, uses prog
	// (the region default when nil), binds the vertex layout and uploads
	// the projection.
	EnterRegion(prog *shader.Program)
	// Render flushes the pending batch with one draw call.
	Render()
	// UseTexture returns the unit of t in the current batch, appending it
	// when new. It never flushes; unit is -1 when t is nil or the table is
	// full.
	UseTexture(t render.Texture) (unit int, isNew bool)
	HasPendingContent() bool
	TextureCount() int
	FreeTextureUnits() int
	// SetUniforms sets the custom uniforms used at the next flush. A
	// different set flushes the pending batch first.
	SetUniforms(u shader.Uniforms)
	Program() *shader.Program
	Stats() Stats
	Destroy()
}

// Stats counts region activity.
type Stats struct {
	Draws      int
	Primitives int
	Uploads    int
	Dropped    int
}

// Projection is the projection shared by every region of a Surface. Set
// only records the new value; regions upload it lazily before their next
// primitive, flushing first if they hold geometry drawn with the old one.
type Projection struct {
	proj    batch2d.Projection
	version uint64
}

// NewProjection returns a projection for a width x height viewport.
func NewProjection(width, height float64) *Projection {
	return &Projection{proj: batch2d.Ortho(width, height), version: 1}
}

// Set replaces the projection.
func (p *Projection) Set(proj batch2d.Projection) {
	if p.proj == proj {
		return
	}
	p.proj = proj
	p.version++
}

// Get returns the current projection.
func (p *Projection) Get() batch2d.Projection { return p.proj }

// Version increments on every change.
func (p *Projection) Version() uint64 { return p.version }

// base holds the state shared by both batchers.
type base struct {
	name string
	dev  render.Device
	kind shader.Kind

	transform *batch2d.TransformStack
	proj      *Projection
	projSeen  uint64

	defaultProg *shader.Program
	prog        *shader.Program

	vertices *buffer.GPU[uint32]
	textures []render.Texture

	uniforms []shader.Binding

	active bool
	stats  Stats
}

func newBase(name string, dev render.Device, kind shader.Kind, ts *batch2d.TransformStack, proj *Projection, vertexCap int) (base, error) {
	if dev == nil {
		return base{}, render.ErrNoDevice
	}
	prog, err := shader.NewProgram(dev, shader.Spec{Kind: kind})
	if err != nil {
		return base{}, fmt.Errorf("%s region: %w", name, err)
	}
	vb, err := buffer.NewGPU[uint32](dev, render.ArrayBuffer, vertexCap, name+" vertices")
	if err != nil {
		prog.Destroy()
		return base{}, fmt.Errorf("%s region: %w", name, err)
	}
	if ts == nil {
		ts = batch2d.NewTransformStack()
	}
	if proj == nil {
		proj = NewProjection(800, 600)
	}
	return base{
		name:        name,
		dev:         dev,
		kind:        kind,
		transform:   ts,
		proj:        proj,
		defaultProg: prog,
		prog:        prog,
		vertices:    vb,
	}, nil
}

func (b *base) enter(prog *shader.Program) {
	if prog == nil {
		prog = b.defaultProg
	}
	if prog.Kind() != b.kind {
		batch2d.Logger().Debug("region: program kind mismatch, using default",
			"region", b.name, "program", prog.Label())
		prog = b.defaultProg
	}
	b.prog = prog
	b.active = true
	b.vertices.Bind()
	b.dev.UseProgram(prog.Handle())
	b.dev.SetVertexLayout(b.kind.Layout())
	b.uploadProjection()
	b.textures = b.textures[:0]
	b.uniforms = nil
}

func (b *base) uploadProjection() {
	b.dev.SetUniform(shader.ProjectionUniform, render.Mat4(b.proj.Get().Mat4()))
	b.projSeen = b.proj.Version()
}

// projectionStale reports whether the shared projection changed since the
// region uploaded it.
func (b *base) projectionStale() bool {
	return b.projSeen != b.proj.Version()
}

func (b *base) Program() *shader.Program { return b.prog }

func (b *base) Stats() Stats { return b.stats }

func (b *base) TextureCount() int { return len(b.textures) }

func (b *base) tableSize() int { return b.prog.TextureSlots() }

func (b *base) FreeTextureUnits() int { return b.tableSize() - len(b.textures) }

func (b *base) UseTexture(t render.Texture) (int, bool) {
	if t == nil {
		return -1, false
	}
	for i, bound := range b.textures {
		if bound == t {
			return i, false
		}
	}
	if len(b.textures) >= b.tableSize() {
		return -1, false
	}
	b.textures = append(b.textures, t)
	return len(b.textures) - 1, true
}

// flush uploads pending geometry, binds textures and uniforms and runs
// draw. pending reports whether there is anything to draw.
func (b *base) flush(pending bool, draw func() error) {
	if !pending {
		b.reset()
		return
	}
	defer b.reset()

	if err := b.vertices.Upload(); err != nil {
		b.stats.Dropped++
		batch2d.Logger().Warn("region: vertex upload failed, batch dropped", "region", b.name, "err", err)
		return
	}
	b.stats.Uploads++
	for unit, t := range b.textures {
		b.dev.BindTexture(unit, t)
	}
	shader.Bind(b.dev, b.prog, b.uniforms, b.tableSize())
	if err := draw(); err != nil {
		b.stats.Dropped++
		batch2d.Logger().Warn("region: draw failed, batch dropped", "region", b.name, "err", err)
		return
	}
	b.stats.Draws++
	batch2d.Logger().Debug("region: flush",
		"region", b.name, "textures", len(b.textures), "words", b.vertices.Len())
}

func (b *base) reset() {
	b.textures = b.textures[:0]
	b.vertices.Clear()
}

func (b *base) setUniforms(u shader.Uniforms, pending bool, flush func()) {
	resolved := u.Resolve()
	if shader.EqualBindings(resolved, b.uniforms) {
		return
	}
	if pending {
		flush()
	}
	b.uniforms = resolved
}

func (b *base) destroy() {
	b.vertices.Destroy()
	b.defaultProg.Destroy()
	b.active = false
}

// pushVertex appends a vertex transformed by m. The sprite format has a
// texture index, the polygon format does not (texIndex < 0).
func (b *base) pushVertex(m *batch2d.Matrix, x, y, u, v float64, texIndex int, color uint32) {
	gx := m.A*x + m.C*y + m.TX
	gy := m.B*x + m.D*y + m.TY
	vb := b.vertices
	if texIndex >= 0 {
		vb.PushN(
			math.Float32bits(float32(gx)),
			math.Float32bits(float32(gy)),
			math.Float32bits(float32(u)),
			math.Float32bits(float32(v)),
			math.Float32bits(float32(texIndex)),
			color,
		)
		return
	}
	vb.PushN(
		math.Float32bits(float32(gx)),
		math.Float32bits(float32(gy)),
		math.Float32bits(float32(u)),
		math.Float32bits(float32(v)),
		color,
	)
}
