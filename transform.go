package batch2d

// TransformStack is the stack of affine matrices every draw-time
// coordinate passes through. The top entry is the current transform.
//
// The stack always holds at least one matrix. Operations mutate the top in
// place with the new operation applied in local space, before the existing
// transform.
type TransformStack struct {
	stack []Matrix
}

// NewTransformStack returns a stack holding a single identity matrix.
func NewTransformStack() *TransformStack {
	s := &TransformStack{stack: make([]Matrix, 1, 16)}
	s.stack[0] = Identity()
	return s
}

// Reset drops every entry and leaves a single identity matrix.
func (s *TransformStack) Reset() {
	if cap(s.stack) == 0 {
		s.stack = make([]Matrix, 1, 16)
	}
	s.stack = s.stack[:1]
	s.stack[0] = Identity()
}

// Depth returns the number of matrices on the stack.
func (s *TransformStack) Depth() int {
	return len(s.stack)
}

func (s *TransformStack) top() *Matrix {
	if len(s.stack) == 0 {
		s.stack = append(s.stack, Identity())
	}
	return &s.stack[len(s.stack)-1]
}

// PushMat duplicates the top matrix.
func (s *TransformStack) PushMat() {
	s.stack = append(s.stack, *s.top())
}

// PushIdentity pushes an identity matrix.
func (s *TransformStack) PushIdentity() {
	s.stack = append(s.stack, Identity())
}

// PopMat discards the top matrix. Popping the last entry is ignored so the
// stack is never empty; it returns false in that case.
func (s *TransformStack) PopMat() bool {
	if len(s.stack) <= 1 {
		Logger().Debug("batch2d: PopMat on single-entry transform stack ignored")
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	return true
}

// Top returns the current transform.
func (s *TransformStack) Top() Matrix {
	return *s.top()
}

// SetTransform replaces the top matrix.
func (s *TransformStack) SetTransform(m Matrix) {
	*s.top() = m
}

// Transform multiplies the top by m, applying m first.
func (s *TransformStack) Transform(m Matrix) {
	t := s.top()
	*t = t.Multiply(m)
}

// Translate applies a local translation.
func (s *TransformStack) Translate(x, y float64) {
	t := s.top()
	*t = t.Translate(x, y)
}

// Rotate applies a local rotation (radians).
func (s *TransformStack) Rotate(angle float64) {
	t := s.top()
	*t = t.Rotate(angle)
}

// Scale applies a local non-uniform scale.
func (s *TransformStack) Scale(x, y float64) {
	t := s.top()
	*t = t.Scale(x, y)
}

// ScaleUniform applies a local uniform scale.
func (s *TransformStack) ScaleUniform(k float64) {
	s.Scale(k, k)
}

// TransformPoint maps a local point to global space.
func (s *TransformStack) TransformPoint(x, y float64) (float64, float64) {
	t := s.top()
	return t.A*x + t.C*y + t.TX, t.B*x + t.D*y + t.TY
}

// Inverse returns the inverse of the top matrix. See Matrix.Inverse for
// the singular case.
func (s *TransformStack) Inverse() Matrix {
	return s.top().Inverse()
}

// LocalToGlobal maps a local point through the top matrix.
func (s *TransformStack) LocalToGlobal(p Point) Point {
	return s.top().TransformPoint(p)
}

// GlobalToLocal maps a global point through the inverse of the top matrix.
func (s *TransformStack) GlobalToLocal(p Point) Point {
	return s.top().Inverse().TransformPoint(p)
}

// GlobalPosition returns the translation of the top matrix.
func (s *TransformStack) GlobalPosition() Point {
	t := s.top()
	return Point{X: t.TX, Y: t.TY}
}

// GlobalRotation returns the rotation of the top matrix in radians.
func (s *TransformStack) GlobalRotation() float64 {
	return s.top().Rotation()
}

// GlobalScale returns the per-axis scale of the top matrix.
func (s *TransformStack) GlobalScale() Point {
	sx, sy := s.top().ScaleFactors()
	return Point{X: sx, Y: sy}
}

// SetGlobalPosition replaces the translation of the top matrix.
func (s *TransformStack) SetGlobalPosition(p Point) {
	t := s.top()
	t.TX, t.TY = p.X, p.Y
}

// SetGlobalRotation recomposes the top matrix with a new rotation, keeping
// translation and scale. Any shear is lost.
func (s *TransformStack) SetGlobalRotation(angle float64) {
	t := s.top()
	sx, sy := t.ScaleFactors()
	*t = Compose(t.TX, t.TY, angle, sx, sy)
}

// SetGlobalScale recomposes the top matrix with a new scale, keeping
// translation and rotation. Any shear is lost.
func (s *TransformStack) SetGlobalScale(sc Point) {
	t := s.top()
	*t = Compose(t.TX, t.TY, t.Rotation(), sc.X, sc.Y)
}
