package batch2d

// Projection is an orthographic mapping from pixel space to clip space.
type Projection struct {
	Left, Right, Bottom, Top float64
}

// Ortho returns the projection for a viewport of the given size with the
// origin at the top-left corner and Y growing downward.
func Ortho(width, height float64) Projection {
	return Projection{Left: 0, Right: width, Bottom: height, Top: 0}
}

// Matrix returns the projection as an affine matrix.
func (p Projection) Matrix() Matrix {
	w := p.Right - p.Left
	h := p.Top - p.Bottom
	return Matrix{
		A:  2 / w,
		D:  2 / h,
		TX: -(p.Right + p.Left) / w,
		TY: -(p.Top + p.Bottom) / h,
	}
}

// Apply maps a pixel-space point to clip space.
func (p Projection) Apply(pt Point) Point {
	return p.Matrix().TransformPoint(pt)
}

// Mat4 returns the column-major 4x4 matrix uploaded as the projection
// uniform (WGSL mat4x4<f32>).
func (p Projection) Mat4() [16]float32 {
	m := p.Matrix()
	return [16]float32{
		float32(m.A), float32(m.B), 0, 0,
		float32(m.C), float32(m.D), 0, 0,
		0, 0, 1, 0,
		float32(m.TX), float32(m.TY), 0, 1,
	}
}
