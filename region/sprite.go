package region

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/buffer"
	"github.com/gogpu/batch2d/render"
	"github.com/gogpu/batch2d/shader"
)

// MaxSprites is the largest sprite batch whose indices fit in 16 bits.
const MaxSprites = 65536 / 4

var quadIndices = [6]uint16{0, 1, 2, 0, 3, 2}

// SpriteQuad is one textured quad in local coordinates. (X, Y) is the
// top-left corner before the current transform.
type SpriteQuad struct {
	Texture render.Texture

	X, Y          float64
	Width, Height float64

	// UV rectangle; FlipX and FlipY swap its corners.
	U0, V0, U1, V1 float64
	FlipX, FlipY   bool

	// Color is a packed RGBA tint, see batch2d.Color.Pack.
	Color uint32
}

// SpriteBatcher batches textured quads. Quads of up to TextureSlots
// distinct textures share one indexed draw call.
type SpriteBatcher struct {
	base

	indices    *buffer.GPU[uint16]
	maxSprites int
	sprites    int
}

// NewSpriteBatcher creates a sprite batcher drawing with transforms from ts
// and projection proj. maxSprites is clamped to [1, MaxSprites]; 0 selects
// MaxSprites.
func NewSpriteBatcher(dev render.Device, ts *batch2d.TransformStack, proj *Projection, maxSprites int) (*SpriteBatcher, error) {
	if maxSprites <= 0 || maxSprites > MaxSprites {
		maxSprites = MaxSprites
	}
	b, err := newBase("sprite", dev, shader.Sprite, ts, proj, maxSprites*4*shader.Sprite.Words())
	if err != nil {
		return nil, err
	}
	ib, err := buffer.NewGPU[uint16](dev, render.ElementBuffer, maxSprites*6, "sprite indices")
	if err != nil {
		b.destroy()
		return nil, fmt.Errorf("sprite region: %w", err)
	}
	for i := 0; i < maxSprites; i++ {
		first := uint16(i * 4)
		for _, idx := range quadIndices {
			ib.Push(first + idx)
		}
	}
	if err := ib.Upload(); err != nil {
		ib.Destroy()
		b.destroy()
		return nil, fmt.Errorf("sprite region: upload indices: %w", err)
	}
	return &SpriteBatcher{base: b, indices: ib, maxSprites: maxSprites}, nil
}

// MaxBatch returns the sprite limit of one batch.
func (s *SpriteBatcher) MaxBatch() int { return s.maxSprites }

// Pending returns the number of sprites in the current batch.
func (s *SpriteBatcher) Pending() int { return s.sprites }

func (s *SpriteBatcher) EnterRegion(prog *shader.Program) {
	s.enter(prog)
	s.indices.Bind()
	s.sprites = 0
}

func (s *SpriteBatcher) HasPendingContent() bool { return s.sprites > 0 }

func (s *SpriteBatcher) Render() {
	s.flush(s.sprites > 0, func() error {
		return s.dev.DrawElements(render.Triangles, s.sprites*6, gputypes.IndexFormatUint16, 0)
	})
	s.stats.Primitives += s.sprites
	s.sprites = 0
}

func (s *SpriteBatcher) SetUniforms(u shader.Uniforms) {
	s.setUniforms(u, s.HasPendingContent(), s.Render)
}

// RenderSprite appends one quad transformed by the top of the transform
// stack, flushing first when the batch is full, the texture table has no
// room for q.Texture or the projection changed.
func (s *SpriteBatcher) RenderSprite(q SpriteQuad) {
	if !s.active {
		batch2d.Logger().Debug("region: sprite outside region ignored")
		return
	}
	if q.Texture == nil {
		batch2d.Logger().Debug("region: sprite without texture ignored")
		return
	}
	if s.projectionStale() {
		s.Render()
		s.uploadProjection()
	}
	if s.sprites >= s.maxSprites {
		s.Render()
	}
	unit, _ := s.UseTexture(q.Texture)
	if unit < 0 {
		s.Render()
		if unit, _ = s.UseTexture(q.Texture); unit < 0 {
			batch2d.Logger().Debug("region: no texture unit for sprite", "slots", s.tableSize())
			return
		}
	}

	u0, v0, u1, v1 := q.U0, q.V0, q.U1, q.V1
	if q.FlipX {
		u0, u1 = u1, u0
	}
	if q.FlipY {
		v0, v1 = v1, v0
	}
	x0, y0 := q.X, q.Y
	x1, y1 := q.X+q.Width, q.Y+q.Height

	m := s.transform.Top()
	s.vertices.Resize(4 * shader.Sprite.Words())
	s.pushVertex(&m, x0, y0, u0, v0, unit, q.Color)
	s.pushVertex(&m, x1, y0, u1, v0, unit, q.Color)
	s.pushVertex(&m, x1, y1, u1, v1, unit, q.Color)
	s.pushVertex(&m, x0, y1, u0, v1, unit, q.Color)
	s.sprites++
}

func (s *SpriteBatcher) Destroy() {
	s.indices.Destroy()
	s.destroy()
}

var _ Region = (*SpriteBatcher)(nil)
