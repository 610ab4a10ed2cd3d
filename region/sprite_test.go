package region

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/recording"
	"github.com/gogpu/batch2d/render"
	"github.com/gogpu/batch2d/shader"
)

func newTextures(t *testing.T, dev render.Device, n int) []render.Texture {
	t.Helper()
	texs := make([]render.Texture, n)
	for i := range texs {
		tex, err := dev.CreateTexture(render.TextureDesc{Label: fmt.Sprintf("t%d", i), Width: 2, Height: 2}, nil)
		if err != nil {
			t.Fatalf("CreateTexture: %v", err)
		}
		texs[i] = tex
	}
	return texs
}

func newSprites(t *testing.T, dev *recording.Device, maxSprites int) (*SpriteBatcher, *batch2d.TransformStack) {
	t.Helper()
	ts := batch2d.NewTransformStack()
	s, err := NewSpriteBatcher(dev, ts, NewProjection(800, 600), maxSprites)
	if err != nil {
		t.Fatalf("NewSpriteBatcher: %v", err)
	}
	t.Cleanup(s.Destroy)
	s.EnterRegion(nil)
	return s, ts
}

func quad(tex render.Texture) SpriteQuad {
	return SpriteQuad{Texture: tex, Width: 16, Height: 16, U1: 1, V1: 1, Color: batch2d.White.Pack()}
}

func TestSpriteSharedBatch(t *testing.T) {
	dev := recording.NewDevice(recording.WithTextureUnits(10))
	s, _ := newSprites(t, dev, 0)
	texs := newTextures(t, dev, 3)

	for i := 0; i < 25; i++ {
		s.RenderSprite(quad(texs[i%3]))
	}
	if s.TextureCount() != 3 {
		t.Errorf("TextureCount() = %d, want 3", s.TextureCount())
	}
	s.Render()

	draws := dev.Draws()
	if len(draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(draws))
	}
	if !draws[0].Indexed || draws[0].Count != 150 {
		t.Errorf("draw = indexed %v count %d, want indexed 150", draws[0].Indexed, draws[0].Count)
	}
	if len(draws[0].Textures) != 3 {
		t.Errorf("bound textures = %v, want 3", draws[0].Textures)
	}
	if s.HasPendingContent() || s.TextureCount() != 0 {
		t.Error("batch state not reset after Render")
	}
}

func TestSpriteTextureOverflow(t *testing.T) {
	tests := []struct {
		distinct, limit int
	}{
		{1, 10},
		{10, 10},
		{11, 10},
		{25, 10},
		{7, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.distinct, tt.limit), func(t *testing.T) {
			dev := recording.NewDevice(recording.WithTextureUnits(tt.limit))
			s, _ := newSprites(t, dev, 0)
			texs := newTextures(t, dev, tt.distinct)
			for _, tex := range texs {
				s.RenderSprite(quad(tex))
			}
			s.Render()
			want := (tt.distinct + tt.limit - 1) / tt.limit
			if got := len(dev.Draws()); got != want {
				t.Errorf("draws = %d, want %d", got, want)
			}
		})
	}
}

func TestSpriteMaxBatch(t *testing.T) {
	dev := recording.NewDevice()
	s, _ := newSprites(t, dev, 4)
	tex := newTextures(t, dev, 1)[0]
	for i := 0; i < 10; i++ {
		s.RenderSprite(quad(tex))
	}
	s.Render()

	var counts []int
	for _, d := range dev.Draws() {
		counts = append(counts, d.Count)
	}
	if fmt.Sprint(counts) != "[24 24 12]" {
		t.Errorf("index counts = %v, want [24 24 12]", counts)
	}
	if s.Stats().Primitives != 10 || s.Stats().Draws != 3 {
		t.Errorf("Stats() = %+v", s.Stats())
	}
}

func TestSpriteMaxSpritesClamped(t *testing.T) {
	dev := recording.NewDevice()
	s, _ := newSprites(t, dev, 1<<20)
	if s.MaxBatch() != MaxSprites {
		t.Errorf("MaxBatch() = %d, want %d", s.MaxBatch(), MaxSprites)
	}
}

func vertexWord(data []byte, vertex, word int) uint32 {
	return binary.LittleEndian.Uint32(data[(vertex*shader.Sprite.Words()+word)*4:])
}

func vertexFloat(data []byte, vertex, word int) float32 {
	return math.Float32frombits(vertexWord(data, vertex, word))
}

func TestSpriteVertices(t *testing.T) {
	dev := recording.NewDevice(recording.WithVertexCapture())
	s, ts := newSprites(t, dev, 0)
	texs := newTextures(t, dev, 2)

	ts.Translate(100, 50)
	s.RenderSprite(quad(texs[0]))
	q := quad(texs[1])
	q.FlipX = true
	q.Color = 0xff0000ff
	s.RenderSprite(q)
	s.Render()

	data := dev.Draws()[0].Vertices
	corners := []struct{ x, y, u, v float32 }{
		{100, 50, 0, 0},
		{116, 50, 1, 0},
		{116, 66, 1, 1},
		{100, 66, 0, 1},
	}
	for i, c := range corners {
		got := [4]float32{vertexFloat(data, i, 0), vertexFloat(data, i, 1), vertexFloat(data, i, 2), vertexFloat(data, i, 3)}
		if got != [4]float32{c.x, c.y, c.u, c.v} {
			t.Errorf("vertex %d = %v, want %v", i, got, c)
		}
	}
	if vertexFloat(data, 4, 4) != 1 {
		t.Errorf("second sprite texture index = %v, want 1", vertexFloat(data, 4, 4))
	}
	if vertexFloat(data, 4, 2) != 1 || vertexFloat(data, 5, 2) != 0 {
		t.Error("FlipX did not swap U")
	}
	if vertexWord(data, 4, 5) != 0xff0000ff {
		t.Errorf("color = %#x", vertexWord(data, 4, 5))
	}
}

func TestSpriteProjectionChangeFlushes(t *testing.T) {
	dev := recording.NewDevice()
	ts := batch2d.NewTransformStack()
	proj := NewProjection(800, 600)
	s, err := NewSpriteBatcher(dev, ts, proj, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()
	s.EnterRegion(nil)
	tex := newTextures(t, dev, 1)[0]

	s.RenderSprite(quad(tex))
	proj.Set(batch2d.Ortho(400, 300))
	s.RenderSprite(quad(tex))
	s.Render()

	draws := dev.Draws()
	if len(draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(draws))
	}
	p0 := draws[0].Uniforms[shader.ProjectionUniform]
	p1 := draws[1].Uniforms[shader.ProjectionUniform]
	if p0 == p1 {
		t.Error("second batch drawn with the stale projection")
	}
	if p1 != render.Mat4(batch2d.Ortho(400, 300).Mat4()) {
		t.Errorf("projection = %v", p1.F)
	}
}

func TestSpriteUniformChangeFlushes(t *testing.T) {
	dev := recording.NewDevice()
	s, _ := newSprites(t, dev, 0)
	tex := newTextures(t, dev, 1)[0]

	s.SetUniforms(shader.Uniforms{"time": 1.0})
	s.RenderSprite(quad(tex))
	s.SetUniforms(shader.Uniforms{"time": 1.0})
	s.RenderSprite(quad(tex))
	if len(dev.Draws()) != 0 {
		t.Fatal("identical uniforms flushed the batch")
	}
	s.SetUniforms(shader.Uniforms{"time": 2.0})
	s.RenderSprite(quad(tex))
	s.Render()
	if len(dev.Draws()) != 2 {
		t.Errorf("draws = %d, want 2", len(dev.Draws()))
	}
}

func TestSpriteDrawFailureDropsBatch(t *testing.T) {
	dev := recording.NewDevice()
	s, _ := newSprites(t, dev, 0)
	tex := newTextures(t, dev, 1)[0]

	dev.FailDraws(errors.New("lost device"))
	s.RenderSprite(quad(tex))
	s.Render()
	if s.Stats().Dropped != 1 || s.HasPendingContent() {
		t.Errorf("Stats() = %+v, pending %v", s.Stats(), s.HasPendingContent())
	}

	dev.FailDraws(nil)
	s.RenderSprite(quad(tex))
	s.Render()
	if len(dev.Draws()) != 1 || dev.Draws()[0].Count != 6 {
		t.Errorf("draws after recovery = %+v", dev.Draws())
	}
}

func TestSpriteIgnoredOutsideRegion(t *testing.T) {
	dev := recording.NewDevice()
	s, err := NewSpriteBatcher(dev, nil, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()
	s.RenderSprite(quad(newTextures(t, dev, 1)[0]))
	if s.HasPendingContent() {
		t.Error("sprite accepted before EnterRegion")
	}

	s.EnterRegion(nil)
	s.RenderSprite(SpriteQuad{Width: 1, Height: 1})
	if s.HasPendingContent() {
		t.Error("sprite without texture accepted")
	}
}

func TestUseTexture(t *testing.T) {
	dev := recording.NewDevice(recording.WithTextureUnits(2))
	s, _ := newSprites(t, dev, 0)
	texs := newTextures(t, dev, 3)

	steps := []struct {
		tex   render.Texture
		unit  int
		isNew bool
	}{
		{texs[0], 0, true},
		{texs[1], 1, true},
		{texs[0], 0, false},
		{texs[2], -1, false},
		{nil, -1, false},
	}
	for i, st := range steps {
		unit, isNew := s.UseTexture(st.tex)
		if unit != st.unit || isNew != st.isNew {
			t.Errorf("step %d: UseTexture = (%d, %v), want (%d, %v)", i, unit, isNew, st.unit, st.isNew)
		}
	}
	if s.FreeTextureUnits() != 0 {
		t.Errorf("FreeTextureUnits() = %d, want 0", s.FreeTextureUnits())
	}
	if len(dev.Draws()) != 0 {
		t.Error("UseTexture flushed")
	}
}

func TestNewSpriteBatcherNilDevice(t *testing.T) {
	if _, err := NewSpriteBatcher(nil, nil, nil, 0); !errors.Is(err, render.ErrNoDevice) {
		t.Errorf("err = %v, want ErrNoDevice", err)
	}
}
