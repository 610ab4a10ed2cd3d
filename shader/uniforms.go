package shader

import (
	"fmt"
	"slices"
	"sort"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/render"
)

// Uniforms is a bag of custom uniform values keyed by name.
//
// Accepted values: numbers (f32), bool (i32 0/1), float slices and arrays
// of length 1, 2, 3, 4, 9 or 16 (scalar, vec2, vec3, vec4, mat3x3,
// mat4x4), batch2d.Point (vec2), batch2d.Color (vec4), batch2d.Matrix
// (mat3x3), render.Uniform as is, and render.Texture for texture
// uniforms. Anything else is logged at Warn and skipped.
type Uniforms map[string]any

// Binding is one resolved uniform.
type Binding struct {
	Name  string
	Value render.Uniform
	// Texture is set for texture uniforms; Value then holds the sampler.
	Texture render.Texture
}

// Resolve converts the bag to bindings sorted by name.
func (u Uniforms) Resolve() []Binding {
	if len(u) == 0 {
		return nil
	}
	names := make([]string, 0, len(u))
	for name := range u {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Binding, 0, len(names))
	for _, name := range names {
		val, tex, err := Convert(u[name])
		if err != nil {
			batch2d.Logger().Warn("shader: uniform skipped", "name", name, "err", err)
			continue
		}
		out = append(out, Binding{Name: name, Value: val, Texture: tex})
	}
	return out
}

// TextureCount returns how many bindings are textures.
func TextureCount(bs []Binding) int {
	n := 0
	for _, b := range bs {
		if b.Texture != nil {
			n++
		}
	}
	return n
}

// EqualBindings reports whether two resolved sets are identical.
func EqualBindings(a, b []Binding) bool {
	return slices.EqualFunc(a, b, func(x, y Binding) bool {
		return x.Name == y.Name && x.Value == y.Value && x.Texture == y.Texture
	})
}

// Convert maps a bag value to a tagged uniform.
func Convert(v any) (render.Uniform, render.Texture, error) {
	switch x := v.(type) {
	case render.Uniform:
		return x, nil, nil
	case render.Texture:
		if x == nil {
			return render.Uniform{}, nil, fmt.Errorf("nil texture")
		}
		return render.Sampler(0), x, nil
	case float32:
		return render.Float(x), nil, nil
	case float64:
		return render.Float(float32(x)), nil, nil
	case int:
		return render.Float(float32(x)), nil, nil
	case int32:
		return render.Int(x), nil, nil
	case bool:
		return render.Bool(x), nil, nil
	case batch2d.Point:
		return render.Vec2(float32(x.X), float32(x.Y)), nil, nil
	case batch2d.Color:
		return render.Vec4(float32(x.R), float32(x.G), float32(x.B), float32(x.A)), nil, nil
	case batch2d.Matrix:
		return render.Mat3(x.Mat3()), nil, nil
	case []float32:
		return fromFloats(x)
	case []float64:
		f := make([]float32, len(x))
		for i, e := range x {
			f[i] = float32(e)
		}
		return fromFloats(f)
	case [2]float32:
		return fromFloats(x[:])
	case [3]float32:
		return fromFloats(x[:])
	case [4]float32:
		return fromFloats(x[:])
	case [9]float32:
		return fromFloats(x[:])
	case [16]float32:
		return fromFloats(x[:])
	default:
		return render.Uniform{}, nil, fmt.Errorf("unsupported type %T", v)
	}
}

func fromFloats(f []float32) (render.Uniform, render.Texture, error) {
	switch len(f) {
	case 1:
		return render.Float(f[0]), nil, nil
	case 2:
		return render.Vec2(f[0], f[1]), nil, nil
	case 3:
		return render.Vec3(f[0], f[1], f[2]), nil, nil
	case 4:
		return render.Vec4(f[0], f[1], f[2], f[3]), nil, nil
	case 9:
		return render.Mat3([9]float32(f)), nil, nil
	case 16:
		return render.Mat4([16]float32(f)), nil, nil
	default:
		return render.Uniform{}, nil, fmt.Errorf("unsupported length %d", len(f))
	}
}

// Bind sets bs on the device for prog, which must be in use. Texture
// uniforms are bound to consecutive units starting at firstUnit. It returns
// the number of texture units consumed.
func Bind(dev render.Device, prog *Program, bs []Binding, firstUnit int) int {
	unit := firstUnit
	limit := dev.Limits().MaxTextureUnits
	for _, b := range bs {
		kind, ok := prog.Declared(b.Name)
		if !ok {
			batch2d.Logger().Debug("shader: uniform not declared by program",
				"name", b.Name, "program", prog.Label())
			continue
		}
		if kind != b.Value.Kind {
			batch2d.Logger().Warn("shader: uniform kind mismatch",
				"name", b.Name, "declared", kind.String(), "got", b.Value.Kind.String())
			continue
		}
		if b.Texture != nil {
			if unit >= limit {
				batch2d.Logger().Warn("shader: no texture unit left for uniform", "name", b.Name)
				continue
			}
			dev.BindTexture(unit, b.Texture)
			dev.SetUniform(b.Name, render.Sampler(unit))
			unit++
			continue
		}
		dev.SetUniform(b.Name, b.Value)
	}
	return unit - firstUnit
}
