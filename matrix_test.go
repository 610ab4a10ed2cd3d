package batch2d

import (
	"math"
	"testing"
)

const eps = 1e-9

func matrixNear(a, b Matrix, tol float64) bool {
	return math.Abs(a.A-b.A) < tol && math.Abs(a.B-b.B) < tol &&
		math.Abs(a.C-b.C) < tol && math.Abs(a.D-b.D) < tol &&
		math.Abs(a.TX-b.TX) < tol && math.Abs(a.TY-b.TY) < tol
}

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translation", Translation(10, -5), Pt(1, 1), Pt(11, -4)},
		{"scaling", Scaling(2, 3), Pt(1, 1), Pt(2, 3)},
		{"rotation 90deg", Rotation(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"translate then scale locally", Translation(10, 0).Scale(2, 2), Pt(1, 1), Pt(12, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if math.Abs(got.X-tt.want.X) > eps || math.Abs(got.Y-tt.want.Y) > eps {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixInPlaceOpsMatchMultiply(t *testing.T) {
	base := Compose(5, 7, 0.3, 2, 0.5)
	tests := []struct {
		name string
		got  Matrix
		want Matrix
	}{
		{"translate", base.Translate(3, -2), base.Multiply(Translation(3, -2))},
		{"rotate", base.Rotate(1.1), base.Multiply(Rotation(1.1))},
		{"scale", base.Scale(4, 0.25), base.Multiply(Scaling(4, 0.25))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !matrixNear(tt.got, tt.want, eps) {
				t.Errorf("got %+v, want %+v", tt.got, tt.want)
			}
		})
	}
}

func TestMatrixInverseRoundTrip(t *testing.T) {
	matrices := []Matrix{
		Identity(),
		Translation(100, -40),
		Compose(12, 34, 0.7, 3, 1.5),
		Compose(-8, 2, -2.1, 0.5, -2),
		{A: 1, B: 0.2, C: 0.4, D: 1, TX: 3, TY: 9},
	}
	points := []Point{Pt(0, 0), Pt(1, 2), Pt(-300, 450.5)}
	for _, m := range matrices {
		inv := m.Inverse()
		for _, p := range points {
			back := inv.TransformPoint(m.TransformPoint(p))
			if math.Abs(back.X-p.X) > 1e-6 || math.Abs(back.Y-p.Y) > 1e-6 {
				t.Errorf("round trip of %v through %+v = %v", p, m, back)
			}
		}
		if !matrixNear(m.Multiply(inv), Identity(), 1e-9) {
			t.Errorf("m * m^-1 = %+v, want identity", m.Multiply(inv))
		}
	}
}

func TestMatrixInverseSingular(t *testing.T) {
	inv := Scaling(0, 1).Inverse()
	if inv.IsFinite() {
		t.Errorf("inverse of singular matrix = %+v, want non-finite values", inv)
	}
}

func TestMatrixDecompose(t *testing.T) {
	m := Compose(10, 20, 0.5, 2, 3)
	if got := m.Rotation(); math.Abs(got-0.5) > eps {
		t.Errorf("Rotation() = %v, want 0.5", got)
	}
	sx, sy := m.ScaleFactors()
	if math.Abs(sx-2) > eps || math.Abs(sy-3) > eps {
		t.Errorf("ScaleFactors() = (%v, %v), want (2, 3)", sx, sy)
	}
}

func TestMatrixIsIdentity(t *testing.T) {
	if !Identity().IsIdentity() {
		t.Error("Identity().IsIdentity() = false")
	}
	if Translation(1, 0).IsIdentity() {
		t.Error("Translation(1, 0).IsIdentity() = true")
	}
	if !Translation(1, 0).IsTranslation() {
		t.Error("Translation(1, 0).IsTranslation() = false")
	}
}
