package render

import (
	"encoding/binary"
	"fmt"
	"math"
)

// UniformKind tags the shape of a Uniform.
type UniformKind uint8

const (
	UniformFloat UniformKind = iota + 1
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat3
	UniformMat4
	// UniformInt is a 32-bit integer; booleans are stored as 0 or 1.
	UniformInt
	// UniformSampler is a texture unit index.
	UniformSampler
)

// String returns the WGSL type name of the kind.
func (k UniformKind) String() string {
	switch k {
	case UniformFloat:
		return "f32"
	case UniformVec2:
		return "vec2<f32>"
	case UniformVec3:
		return "vec3<f32>"
	case UniformVec4:
		return "vec4<f32>"
	case UniformMat3:
		return "mat3x3<f32>"
	case UniformMat4:
		return "mat4x4<f32>"
	case UniformInt:
		return "i32"
	case UniformSampler:
		return "texture_2d<f32>"
	default:
		return fmt.Sprintf("UniformKind(%d)", k)
	}
}

// Align returns the WGSL uniform address-space alignment of the kind.
func (k UniformKind) Align() int {
	switch k {
	case UniformVec2:
		return 8
	case UniformVec3, UniformVec4, UniformMat3, UniformMat4:
		return 16
	default:
		return 4
	}
}

// Size returns the WGSL byte size of the kind. mat3x3 columns are padded
// to vec4.
func (k UniformKind) Size() int {
	switch k {
	case UniformVec2:
		return 8
	case UniformVec3:
		return 12
	case UniformVec4:
		return 16
	case UniformMat3:
		return 48
	case UniformMat4:
		return 64
	case UniformSampler:
		return 0
	default:
		return 4
	}
}

// components returns how many float32 values the kind carries.
func (k UniformKind) components() int {
	switch k {
	case UniformFloat:
		return 1
	case UniformVec2:
		return 2
	case UniformVec3:
		return 3
	case UniformVec4:
		return 4
	case UniformMat3:
		return 9
	case UniformMat4:
		return 16
	default:
		return 0
	}
}

// Uniform is a tagged uniform value.
type Uniform struct {
	Kind UniformKind
	// F holds float components; matrices are column-major.
	F [16]float32
	// I holds the integer value or the sampler's texture unit.
	I int32
}

// Float returns a scalar uniform.
func Float(v float32) Uniform {
	u := Uniform{Kind: UniformFloat}
	u.F[0] = v
	return u
}

// Vec2 returns a two-component vector uniform.
func Vec2(x, y float32) Uniform {
	u := Uniform{Kind: UniformVec2}
	u.F[0], u.F[1] = x, y
	return u
}

// Vec3 returns a three-component vector uniform.
func Vec3(x, y, z float32) Uniform {
	u := Uniform{Kind: UniformVec3}
	u.F[0], u.F[1], u.F[2] = x, y, z
	return u
}

// Vec4 returns a four-component vector uniform.
func Vec4(x, y, z, w float32) Uniform {
	u := Uniform{Kind: UniformVec4}
	u.F[0], u.F[1], u.F[2], u.F[3] = x, y, z, w
	return u
}

// Mat3 returns a column-major 3x3 matrix uniform.
func Mat3(m [9]float32) Uniform {
	u := Uniform{Kind: UniformMat3}
	copy(u.F[:], m[:])
	return u
}

// Mat4 returns a column-major 4x4 matrix uniform.
func Mat4(m [16]float32) Uniform {
	return Uniform{Kind: UniformMat4, F: m}
}

// Int returns an integer uniform.
func Int(v int32) Uniform {
	return Uniform{Kind: UniformInt, I: v}
}

// Bool returns an integer uniform holding 1 or 0.
func Bool(v bool) Uniform {
	if v {
		return Int(1)
	}
	return Int(0)
}

// Sampler returns a uniform selecting texture unit.
func Sampler(unit int) Uniform {
	return Uniform{Kind: UniformSampler, I: int32(unit)}
}

// Floats returns the meaningful float components.
func (u Uniform) Floats() []float32 {
	return u.F[:u.Kind.components()]
}

// Encode writes the value into dst using the WGSL uniform layout of its
// kind. dst must hold at least Kind.Size() bytes.
func (u Uniform) Encode(dst []byte) {
	le := binary.LittleEndian
	switch u.Kind {
	case UniformInt:
		le.PutUint32(dst, uint32(u.I))
	case UniformMat3:
		for col := 0; col < 3; col++ {
			for row := 0; row < 3; row++ {
				le.PutUint32(dst[col*16+row*4:], math.Float32bits(u.F[col*3+row]))
			}
		}
	case UniformSampler:
	default:
		for i, f := range u.Floats() {
			le.PutUint32(dst[i*4:], math.Float32bits(f))
		}
	}
}
