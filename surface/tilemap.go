// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"math"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/region"
	"github.com/gogpu/batch2d/render"
	"github.com/gogpu/batch2d/shader"
)

// TileLayerDescriptor describes an orthogonal tile layer.
type TileLayerDescriptor struct {
	Tileset render.Texture
	// TileWidth and TileHeight are the tile size in texels and in local
	// units.
	TileWidth, TileHeight int
	// Margin and Spacing describe the tileset layout in texels.
	Margin, Spacing int

	// Columns x Rows global tile ids, row major. 0 is an empty cell.
	Columns, Rows int
	Data          []int
	// FirstGID is the id of the first tile of Tileset; 0 means 1.
	FirstGID int

	// X and Y offset the layer in local units.
	X, Y float64
	Tint batch2d.Color

	Shader   *shader.Program
	Uniforms shader.Uniforms
}

// RenderTileMapLayer draws the tiles of d that intersect the current
// target as sprites and returns how many were drawn.
func (s *Surface) RenderTileMapLayer(d TileLayerDescriptor) int {
	if d.Tileset == nil || d.TileWidth <= 0 || d.TileHeight <= 0 ||
		d.Columns <= 0 || d.Rows <= 0 || len(d.Data) < d.Columns*d.Rows {
		batch2d.Logger().Debug("surface: malformed tile layer ignored")
		return 0
	}
	firstGID := d.FirstGID
	if firstGID <= 0 {
		firstGID = 1
	}
	tsCols := (d.Tileset.Width() - 2*d.Margin + d.Spacing) / (d.TileWidth + d.Spacing)
	tsRows := (d.Tileset.Height() - 2*d.Margin + d.Spacing) / (d.TileHeight + d.Spacing)
	if tsCols <= 0 || tsRows <= 0 {
		batch2d.Logger().Debug("surface: tileset smaller than one tile")
		return 0
	}

	c0, r0, c1, r1, ok := s.visibleTiles(d)
	if !ok {
		return 0
	}
	if s.SetRegion(RegionSprite, d.Shader) == nil {
		return 0
	}
	s.sprites.SetUniforms(d.Uniforms)

	tw, th := float64(d.Tileset.Width()), float64(d.Tileset.Height())
	color := tint(d.Tint)
	drawn := 0
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			gid := d.Data[row*d.Columns+col]
			idx := gid - firstGID
			if gid == 0 || idx < 0 || idx >= tsCols*tsRows {
				continue
			}
			sx := d.Margin + (idx%tsCols)*(d.TileWidth+d.Spacing)
			sy := d.Margin + (idx/tsCols)*(d.TileHeight+d.Spacing)
			s.sprites.RenderSprite(region.SpriteQuad{
				Texture: d.Tileset,
				X:       d.X + float64(col*d.TileWidth),
				Y:       d.Y + float64(row*d.TileHeight),
				Width:   float64(d.TileWidth),
				Height:  float64(d.TileHeight),
				U0:      float64(sx) / tw,
				V0:      float64(sy) / th,
				U1:      float64(sx+d.TileWidth) / tw,
				V1:      float64(sy+d.TileHeight) / th,
				Color:   color,
			})
			drawn++
		}
	}
	return drawn
}

// visibleTiles returns the cell range [c0,c1)x[r0,r1) of d that the
// current target shows through the current transform.
func (s *Surface) visibleTiles(d TileLayerDescriptor) (c0, r0, c1, r1 int, ok bool) {
	inv := s.transform.Inverse()
	if !inv.IsFinite() {
		return 0, 0, 0, 0, false
	}
	w, h := s.visibleSize()
	corners := [4]batch2d.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := inv.TransformPoint(c)
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X), max(maxY, p.Y)
	}
	tw, th := float64(d.TileWidth), float64(d.TileHeight)
	c0 = clampCell(math.Floor((minX-d.X)/tw), d.Columns)
	c1 = clampCell(math.Ceil((maxX-d.X)/tw), d.Columns)
	r0 = clampCell(math.Floor((minY-d.Y)/th), d.Rows)
	r1 = clampCell(math.Ceil((maxY-d.Y)/th), d.Rows)
	return c0, r0, c1, r1, c0 < c1 && r0 < r1
}

func clampCell(v float64, n int) int {
	return int(min(max(v, 0), float64(n)))
}
