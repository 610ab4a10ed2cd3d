package region

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/batch2d"
)

// CircleSegments returns the number of segments that approximate a circle
// of radius r closely enough at 1:1 scale.
func CircleSegments(r float64) int {
	n := int(math32.Ceil(math32.Sqrt(float32(r)) * 4))
	return min(max(n, 8), 128)
}

// CircleFan returns the center followed by segments+1 rim points of a
// circle, in triangle fan order.
func CircleFan(cx, cy, r float64, segments int) []batch2d.Point {
	if segments < 3 {
		segments = CircleSegments(r)
	}
	pts := make([]batch2d.Point, 0, segments+2)
	pts = append(pts, batch2d.Pt(cx, cy))
	step := 2 * math32.Pi / float32(segments)
	for i := 0; i <= segments; i++ {
		s, c := math32.Sincos(step * float32(i%segments))
		pts = append(pts, batch2d.Pt(cx+r*float64(c), cy+r*float64(s)))
	}
	return pts
}

// FanToTriangles converts a convex polygon in fan order to a triangle
// list.
func FanToTriangles(fan []batch2d.Point) []batch2d.Point {
	if len(fan) < 3 {
		return nil
	}
	tris := make([]batch2d.Point, 0, (len(fan)-2)*3)
	for i := 1; i+1 < len(fan); i++ {
		tris = append(tris, fan[0], fan[i], fan[i+1])
	}
	return tris
}

// LineTriangles triangulates a polyline of the given width into a
// triangle list: one quad per segment, plus discs at every point when
// round is set. closed joins the last point to the first.
func LineTriangles(pts []batch2d.Point, width float64, closed, round bool) []batch2d.Point {
	if len(pts) < 2 || width <= 0 {
		return nil
	}
	half := float32(width / 2)
	n := len(pts) - 1
	if closed && len(pts) > 2 {
		n = len(pts)
	}
	tris := make([]batch2d.Point, 0, n*6)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%len(pts)]
		dx, dy := float32(b.X-a.X), float32(b.Y-a.Y)
		l := math32.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		off := batch2d.Pt(float64(-dy/l*half), float64(dx/l*half))
		a0, a1 := a.Add(off), a.Sub(off)
		b0, b1 := b.Add(off), b.Sub(off)
		tris = append(tris, a0, b0, b1, a0, b1, a1)
	}
	if round {
		segs := CircleSegments(float64(half))
		for _, p := range pts {
			tris = append(tris, FanToTriangles(CircleFan(p.X, p.Y, float64(half), segs))...)
		}
	}
	return tris
}
