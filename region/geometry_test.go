package region

import (
	"math"
	"testing"

	"github.com/gogpu/batch2d"
)

func TestCircleSegments(t *testing.T) {
	tests := []struct {
		r    float64
		want int
	}{
		{0, 8},
		{1, 8},
		{25, 20},
		{1e6, 128},
	}
	for _, tt := range tests {
		if got := CircleSegments(tt.r); got != tt.want {
			t.Errorf("CircleSegments(%v) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestCircleFan(t *testing.T) {
	pts := CircleFan(10, 20, 5, 16)
	if len(pts) != 18 {
		t.Fatalf("len = %d, want 18", len(pts))
	}
	if pts[0] != batch2d.Pt(10, 20) {
		t.Errorf("center = %v", pts[0])
	}
	for i, p := range pts[1:] {
		if d := p.Distance(pts[0]); math.Abs(d-5) > 1e-4 {
			t.Errorf("rim point %d at distance %v", i, d)
		}
	}
	if pts[1] != pts[17] {
		t.Error("fan is not closed")
	}
}

func TestFanToTriangles(t *testing.T) {
	fan := []batch2d.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	tris := FanToTriangles(fan)
	if len(tris) != 6 || tris[3] != fan[0] || tris[5] != fan[3] {
		t.Errorf("FanToTriangles = %v", tris)
	}
	if FanToTriangles(fan[:2]) != nil {
		t.Error("degenerate fan produced triangles")
	}
}

func TestLineTriangles(t *testing.T) {
	pts := []batch2d.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	tests := []struct {
		name          string
		closed, round bool
		want          int
	}{
		{"open", false, false, 12},
		{"closed", true, false, 18},
		{"round", false, true, 12 + 3*8*3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(LineTriangles(pts, 4, tt.closed, tt.round)); got != tt.want {
				t.Errorf("len = %d, want %d", got, tt.want)
			}
		})
	}

	quad := LineTriangles(pts[:2], 4, false, false)
	if quad[0] != batch2d.Pt(0, 2) || quad[2] != batch2d.Pt(10, -2) {
		t.Errorf("segment quad = %v", quad)
	}
	if LineTriangles(pts[:1], 4, false, false) != nil || LineTriangles(pts, 0, false, false) != nil {
		t.Error("degenerate line produced triangles")
	}
}
