package batch2d

import "math"

// Matrix represents a 2D affine transformation in column-vector form:
//
//	| A  C  TX |
//	| B  D  TY |
//	| 0  0  1  |
//
// This represents the transformation:
//
//	x' = A*x + C*y + TX
//	y' = B*x + D*y + TY
type Matrix struct {
	A, B, C, D float64
	TX, TY     float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Translation creates a translation matrix.
func Translation(x, y float64) Matrix {
	return Matrix{A: 1, D: 1, TX: x, TY: y}
}

// Scaling creates a scaling matrix.
func Scaling(x, y float64) Matrix {
	return Matrix{A: x, D: y}
}

// Rotation creates a rotation matrix (angle in radians).
func Rotation(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Multiply returns m * n: n is applied first, then m.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A:  m.A*n.A + m.C*n.B,
		B:  m.B*n.A + m.D*n.B,
		C:  m.A*n.C + m.C*n.D,
		D:  m.B*n.C + m.D*n.D,
		TX: m.A*n.TX + m.C*n.TY + m.TX,
		TY: m.B*n.TX + m.D*n.TY + m.TY,
	}
}

// Translate returns m with a local translation applied before it.
func (m Matrix) Translate(x, y float64) Matrix {
	m.TX += m.A*x + m.C*y
	m.TY += m.B*x + m.D*y
	return m
}

// Rotate returns m with a local rotation applied before it.
func (m Matrix) Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	a, b, c, d := m.A, m.B, m.C, m.D
	m.A = a*cos + c*sin
	m.B = b*cos + d*sin
	m.C = -a*sin + c*cos
	m.D = -b*sin + d*cos
	return m
}

// Scale returns m with a local scale applied before it.
func (m Matrix) Scale(x, y float64) Matrix {
	m.A *= x
	m.B *= x
	m.C *= y
	m.D *= y
	return m
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.TX,
		Y: m.B*p.X + m.D*p.Y + m.TY,
	}
}

// TransformVector applies the transformation to a vector (no translation).
func (m Matrix) TransformVector(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y,
		Y: m.B*p.X + m.D*p.Y,
	}
}

// Determinant returns A*D - B*C.
func (m Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Inverse returns the inverse matrix.
//
// A singular matrix is not guarded against: the result then holds
// infinities or NaNs.
func (m Matrix) Inverse() Matrix {
	det := m.Determinant()
	return Matrix{
		A:  m.D / det,
		B:  -m.B / det,
		C:  -m.C / det,
		D:  m.A / det,
		TX: (m.C*m.TY - m.D*m.TX) / det,
		TY: (m.B*m.TX - m.A*m.TY) / det,
	}
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// IsTranslation returns true if the matrix is only a translation.
func (m Matrix) IsTranslation() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 && m.D == 1
}

// IsFinite reports whether every component is a finite number.
func (m Matrix) IsFinite() bool {
	for _, v := range [...]float64{m.A, m.B, m.C, m.D, m.TX, m.TY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Rotation returns the rotation angle of the matrix in radians.
// Shear is not represented; a sheared matrix decomposes lossily.
func (m Matrix) Rotation() float64 {
	return math.Atan2(m.B, m.A)
}

// ScaleFactors returns the per-axis scale of the matrix, assuming no shear.
// A reflection shows up as a negative Y scale.
func (m Matrix) ScaleFactors() (sx, sy float64) {
	sx = math.Hypot(m.A, m.B)
	if sx == 0 {
		return 0, math.Hypot(m.C, m.D)
	}
	return sx, m.Determinant() / sx
}

// Compose builds a matrix from translation, rotation and scale.
// It is the inverse of Rotation/ScaleFactors for shear-free matrices.
func Compose(tx, ty, angle, sx, sy float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{
		A:  cos * sx,
		B:  sin * sx,
		C:  -sin * sy,
		D:  cos * sy,
		TX: tx,
		TY: ty,
	}
}

// Mat3 returns the matrix as a column-major 3x3 float32 array, the layout
// of a WGSL mat3x3<f32> uniform (without row padding).
func (m Matrix) Mat3() [9]float32 {
	return [9]float32{
		float32(m.A), float32(m.B), 0,
		float32(m.C), float32(m.D), 0,
		float32(m.TX), float32(m.TY), 1,
	}
}
