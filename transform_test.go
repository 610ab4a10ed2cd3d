package batch2d

import (
	"math"
	"testing"
)

func TestTransformStackBalance(t *testing.T) {
	s := NewTransformStack()
	s.Translate(10, 20)
	before := s.Top()

	for i := 0; i < 5; i++ {
		s.PushMat()
		s.Rotate(float64(i))
		s.Scale(2, 3)
	}
	s.PushIdentity()
	if !s.Top().IsIdentity() {
		t.Errorf("after PushIdentity top = %+v", s.Top())
	}
	for i := 0; i < 6; i++ {
		s.PopMat()
	}

	if s.Top() != before {
		t.Errorf("top after balanced push/pop = %+v, want %+v", s.Top(), before)
	}
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", s.Depth())
	}
}

func TestTransformStackPopLastIgnored(t *testing.T) {
	s := NewTransformStack()
	s.Translate(5, 5)
	if s.PopMat() {
		t.Error("PopMat on single entry returned true")
	}
	if s.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", s.Depth())
	}
	if x, y := s.TransformPoint(0, 0); x != 5 || y != 5 {
		t.Errorf("TransformPoint(0,0) = (%v, %v), want (5, 5)", x, y)
	}
}

func TestTransformStackLocalComposition(t *testing.T) {
	s := NewTransformStack()
	s.Translate(100, 0)
	s.Rotate(math.Pi / 2)
	s.Scale(2, 2)

	x, y := s.TransformPoint(1, 0)
	if math.Abs(x-100) > eps || math.Abs(y-2) > eps {
		t.Errorf("TransformPoint(1,0) = (%v, %v), want (100, 2)", x, y)
	}
}

func TestTransformStackGlobalLocalRoundTrip(t *testing.T) {
	s := NewTransformStack()
	s.Translate(30, 40)
	s.Rotate(0.8)
	s.Scale(1.5, 0.75)

	p := Pt(12, -7)
	back := s.GlobalToLocal(s.LocalToGlobal(p))
	if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
		t.Errorf("GlobalToLocal(LocalToGlobal(%v)) = %v", p, back)
	}
}

func TestTransformStackGlobalSetters(t *testing.T) {
	s := NewTransformStack()
	s.Translate(5, 6)
	s.Rotate(0.4)
	s.Scale(2, 3)

	s.SetGlobalRotation(1.2)
	if got := s.GlobalRotation(); math.Abs(got-1.2) > eps {
		t.Errorf("GlobalRotation() = %v, want 1.2", got)
	}
	if sc := s.GlobalScale(); math.Abs(sc.X-2) > eps || math.Abs(sc.Y-3) > eps {
		t.Errorf("GlobalScale() = %v, want (2, 3)", sc)
	}

	s.SetGlobalScale(Pt(0.5, 4))
	if sc := s.GlobalScale(); math.Abs(sc.X-0.5) > eps || math.Abs(sc.Y-4) > eps {
		t.Errorf("GlobalScale() = %v, want (0.5, 4)", sc)
	}
	if got := s.GlobalRotation(); math.Abs(got-1.2) > eps {
		t.Errorf("GlobalRotation() after SetGlobalScale = %v, want 1.2", got)
	}

	s.SetGlobalPosition(Pt(-1, -2))
	if p := s.GlobalPosition(); p != Pt(-1, -2) {
		t.Errorf("GlobalPosition() = %v, want (-1, -2)", p)
	}
}

func TestTransformStackReset(t *testing.T) {
	s := NewTransformStack()
	s.PushMat()
	s.Translate(1, 1)
	s.Reset()
	if s.Depth() != 1 || !s.Top().IsIdentity() {
		t.Errorf("after Reset depth=%d top=%+v", s.Depth(), s.Top())
	}

	var zero TransformStack
	zero.Translate(2, 0)
	if x, _ := zero.TransformPoint(0, 0); x != 2 {
		t.Errorf("zero-value stack TransformPoint x = %v, want 2", x)
	}
}
