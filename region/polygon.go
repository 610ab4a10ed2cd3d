package region

import (
	"fmt"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/render"
	"github.com/gogpu/batch2d/shader"
)

// MaxPolygonVertices bounds the vertex count of one polygon batch.
const MaxPolygonVertices = 1 << 16

// Vertex is a polygon vertex in local coordinates.
type Vertex struct {
	X, Y  float64
	U, V  float64
	Color uint32
}

// PolygonBatcher batches triangles, strips, fans and lines drawn with a
// single texture and a single draw mode per batch.
type PolygonBatcher struct {
	base

	white render.Texture
	mode  render.DrawMode
	tex   render.Texture
	count int
	prims int
}

// NewPolygonBatcher creates a polygon batcher and its 1x1 white texture.
func NewPolygonBatcher(dev render.Device, ts *batch2d.TransformStack, proj *Projection) (*PolygonBatcher, error) {
	b, err := newBase("polygon", dev, shader.Polygon, ts, proj, 1024*shader.Polygon.Words())
	if err != nil {
		return nil, err
	}
	white, err := dev.CreateTexture(render.TextureDesc{Label: "white", Width: 1, Height: 1}, []byte{0xff, 0xff, 0xff, 0xff})
	if err != nil {
		b.destroy()
		return nil, fmt.Errorf("polygon region: %w", err)
	}
	return &PolygonBatcher{base: b, white: white}, nil
}

// White returns the texture used for untextured geometry.
func (p *PolygonBatcher) White() render.Texture { return p.white }

// Mode returns the draw mode of the current batch.
func (p *PolygonBatcher) Mode() render.DrawMode { return p.mode }

// Pending returns the number of vertices in the current batch.
func (p *PolygonBatcher) Pending() int { return p.count }

func (p *PolygonBatcher) EnterRegion(prog *shader.Program) {
	p.enter(prog)
	p.count = 0
	p.prims = 0
	p.tex = nil
}

func (p *PolygonBatcher) HasPendingContent() bool { return p.count > 0 }

func (p *PolygonBatcher) Render() {
	p.flush(p.count > 0, func() error {
		return p.dev.DrawArrays(p.mode, 0, p.count)
	})
	if p.count > 0 {
		p.stats.Primitives += p.prims
	}
	p.count = 0
	p.prims = 0
	p.tex = nil
}

func (p *PolygonBatcher) SetUniforms(u shader.Uniforms) {
	p.setUniforms(u, p.HasPendingContent(), p.Render)
}

// joinable reports whether consecutive primitives of mode can share a draw.
func joinable(mode render.DrawMode) bool {
	return listStride(mode) > 0
}

// listStride returns the vertices per primitive of a list mode, or 0 for
// strips and fans.
func listStride(mode render.DrawMode) int {
	switch mode {
	case render.Triangles:
		return 3
	case render.Lines:
		return 2
	case render.Points:
		return 1
	}
	return 0
}

// Begin starts a primitive of vertexCount vertices. The pending batch is
// flushed when mode or tex differ from it, when mode cannot be joined
// (strips and fans), when the vertex limit would be exceeded or when the
// projection changed. A nil tex selects the white texture. Begin returns
// false when the primitive cannot be drawn.
func (p *PolygonBatcher) Begin(mode render.DrawMode, tex render.Texture, vertexCount int) bool {
	if !p.active {
		batch2d.Logger().Debug("region: polygon outside region ignored")
		return false
	}
	if vertexCount <= 0 {
		return false
	}
	if vertexCount > MaxPolygonVertices {
		batch2d.Logger().Warn("region: polygon exceeds batch vertex limit, dropped",
			"mode", mode, "count", vertexCount, "limit", MaxPolygonVertices)
		return false
	}
	if tex == nil {
		tex = p.white
	}
	if p.projectionStale() {
		p.Render()
		p.uploadProjection()
	}
	if p.tex != nil && (mode != p.mode || tex != p.tex || !joinable(mode) ||
		p.count+vertexCount > MaxPolygonVertices) {
		p.Render()
	}
	if p.tex == nil {
		if unit, _ := p.UseTexture(tex); unit < 0 {
			batch2d.Logger().Debug("region: no texture unit for polygon", "slots", p.tableSize())
			return false
		}
		p.tex = tex
	}
	p.mode = mode
	p.prims++
	p.vertices.Resize(vertexCount * shader.Polygon.Words())
	return true
}

// AddVertex appends one vertex transformed by the top of the transform
// stack. It must follow Begin.
func (p *PolygonBatcher) AddVertex(x, y, u, v float64, color uint32) {
	if !p.active {
		return
	}
	m := p.transform.Top()
	p.pushVertex(&m, x, y, u, v, -1, color)
	p.count++
}

// RenderPolygon draws vs in the order mode expects. List modes longer
// than MaxPolygonVertices are split on primitive boundaries over several
// batches; strips and fans that long are dropped.
func (p *PolygonBatcher) RenderPolygon(mode render.DrawMode, tex render.Texture, vs []Vertex) {
	chunk := len(vs)
	if stride := listStride(mode); stride > 0 {
		chunk = MaxPolygonVertices - MaxPolygonVertices%stride
	}
	for len(vs) > 0 {
		n := min(chunk, len(vs))
		if !p.Begin(mode, tex, n) {
			return
		}
		m := p.transform.Top()
		for _, v := range vs[:n] {
			p.pushVertex(&m, v.X, v.Y, v.U, v.V, -1, v.Color)
		}
		p.count += n
		vs = vs[n:]
	}
}

func (p *PolygonBatcher) Destroy() {
	p.dev.DeleteTexture(p.white)
	p.destroy()
}

var _ Region = (*PolygonBatcher)(nil)
