// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/region"
	"github.com/gogpu/batch2d/render"
	"github.com/gogpu/batch2d/shader"
)

// SpriteDescriptor describes a textured quad.
type SpriteDescriptor struct {
	Texture render.Texture

	// X and Y position the origin point of the sprite.
	X, Y float64
	// Width and Height default to the frame size.
	Width, Height float64
	// Frame is the source rectangle in texels; empty selects the whole
	// texture.
	Frame image.Rectangle
	// OriginX and OriginY place the origin as a fraction of the size:
	// (0, 0) is the top-left corner, (0.5, 0.5) the center.
	OriginX, OriginY float64
	FlipX, FlipY     bool

	// Tint multiplies the texture. The zero value draws it unchanged.
	Tint batch2d.Color

	Shader   *shader.Program
	Uniforms shader.Uniforms
}

// GraphicDescriptor describes a filled convex polygon.
type GraphicDescriptor struct {
	// Points is the outline in fan order, see Rect and Circle.
	Points []batch2d.Point
	// UVs are per point texture coordinates. When nil, textured graphics
	// map the bounding box of Points onto the whole texture.
	UVs     []batch2d.Point
	Texture render.Texture
	Color   batch2d.Color

	// Fan draws Points as a triangle fan in a batch of its own instead of
	// triangulating it into the shared triangle batch.
	Fan bool

	Shader   *shader.Program
	Uniforms shader.Uniforms
}

// LineDescriptor describes a polyline.
type LineDescriptor struct {
	Points []batch2d.Point
	// Width of zero or less draws one pixel wide line primitives.
	Width  float64
	Color  batch2d.Color
	Closed bool
	// Round adds round caps and joins.
	Round   bool
	Texture render.Texture

	Shader   *shader.Program
	Uniforms shader.Uniforms
}

// Rect returns the outline of a rectangle in fan order.
func Rect(x, y, w, h float64) []batch2d.Point {
	return []batch2d.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
}

// Circle returns a circle in fan order, with the center first.
func Circle(cx, cy, r float64) []batch2d.Point {
	return region.CircleFan(cx, cy, r, region.CircleSegments(r))
}

func tint(c batch2d.Color) uint32 {
	if c == (batch2d.Color{}) {
		return batch2d.White.Pack()
	}
	return c.Pack()
}

// RenderSprite draws a sprite in the sprite region.
func (s *Surface) RenderSprite(d SpriteDescriptor) {
	if d.Texture == nil {
		batch2d.Logger().Debug("surface: sprite without texture ignored")
		return
	}
	if s.SetRegion(RegionSprite, d.Shader) == nil {
		return
	}
	s.sprites.SetUniforms(d.Uniforms)
	s.sprites.RenderSprite(spriteQuad(d))
}

func spriteQuad(d SpriteDescriptor) region.SpriteQuad {
	tw, th := float64(d.Texture.Width()), float64(d.Texture.Height())
	frame := d.Frame
	if frame.Empty() {
		frame = image.Rect(0, 0, d.Texture.Width(), d.Texture.Height())
	}
	w, h := d.Width, d.Height
	if w == 0 {
		w = float64(frame.Dx())
	}
	if h == 0 {
		h = float64(frame.Dy())
	}
	return region.SpriteQuad{
		Texture: d.Texture,
		X:       d.X - d.OriginX*w,
		Y:       d.Y - d.OriginY*h,
		Width:   w,
		Height:  h,
		U0:      float64(frame.Min.X) / tw,
		V0:      float64(frame.Min.Y) / th,
		U1:      float64(frame.Max.X) / tw,
		V1:      float64(frame.Max.Y) / th,
		FlipX:   d.FlipX,
		FlipY:   d.FlipY,
		Color:   tint(d.Tint),
	}
}

// RenderGraphic draws a filled polygon in the polygon region.
func (s *Surface) RenderGraphic(d GraphicDescriptor) {
	if len(d.Points) < 3 {
		batch2d.Logger().Debug("surface: graphic with fewer than 3 points ignored")
		return
	}
	if d.UVs != nil && len(d.UVs) != len(d.Points) {
		batch2d.Logger().Debug("surface: graphic UV count mismatch ignored")
		return
	}
	if s.SetRegion(RegionPolygon, d.Shader) == nil {
		return
	}
	s.polygons.SetUniforms(d.Uniforms)

	uvs := d.UVs
	if uvs == nil && d.Texture != nil {
		uvs = boundsUV(d.Points)
	}
	vs := vertices(d.Points, uvs, tint(d.Color))
	if d.Fan {
		s.polygons.RenderPolygon(render.TriangleFan, d.Texture, vs)
		return
	}
	tris := make([]region.Vertex, 0, (len(vs)-2)*3)
	for i := 1; i+1 < len(vs); i++ {
		tris = append(tris, vs[0], vs[i], vs[i+1])
	}
	s.polygons.RenderPolygon(render.Triangles, d.Texture, tris)
}

// RenderLine draws a polyline in the polygon region.
func (s *Surface) RenderLine(d LineDescriptor) {
	if len(d.Points) < 2 {
		batch2d.Logger().Debug("surface: line with fewer than 2 points ignored")
		return
	}
	if s.SetRegion(RegionPolygon, d.Shader) == nil {
		return
	}
	s.polygons.SetUniforms(d.Uniforms)

	color := tint(d.Color)
	if d.Width <= 0 {
		pts := make([]batch2d.Point, 0, len(d.Points)*2)
		n := len(d.Points) - 1
		if d.Closed && len(d.Points) > 2 {
			n = len(d.Points)
		}
		for i := 0; i < n; i++ {
			pts = append(pts, d.Points[i], d.Points[(i+1)%len(d.Points)])
		}
		s.polygons.RenderPolygon(render.Lines, d.Texture, vertices(pts, nil, color))
		return
	}
	tris := region.LineTriangles(d.Points, d.Width, d.Closed, d.Round)
	if len(tris) == 0 {
		return
	}
	var uvs []batch2d.Point
	if d.Texture != nil {
		uvs = boundsUV(tris)
	}
	s.polygons.RenderPolygon(render.Triangles, d.Texture, vertices(tris, uvs, color))
}

func vertices(pts, uvs []batch2d.Point, color uint32) []region.Vertex {
	vs := make([]region.Vertex, len(pts))
	for i, p := range pts {
		vs[i] = region.Vertex{X: p.X, Y: p.Y, Color: color}
		if uvs != nil {
			vs[i].U, vs[i].V = uvs[i].X, uvs[i].Y
		}
	}
	return vs
}

// boundsUV maps the bounding box of pts onto [0,1]x[0,1].
func boundsUV(pts []batch2d.Point) []batch2d.Point {
	minP, maxP := pts[0], pts[0]
	for _, p := range pts[1:] {
		minP.X, minP.Y = min(minP.X, p.X), min(minP.Y, p.Y)
		maxP.X, maxP.Y = max(maxP.X, p.X), max(maxP.Y, p.Y)
	}
	w, h := maxP.X-minP.X, maxP.Y-minP.Y
	uvs := make([]batch2d.Point, len(pts))
	for i, p := range pts {
		if w > 0 {
			uvs[i].X = (p.X - minP.X) / w
		}
		if h > 0 {
			uvs[i].Y = (p.Y - minP.Y) / h
		}
	}
	return uvs
}
