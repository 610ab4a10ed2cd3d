package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/batch2d/render"
)

func TestKindLayout(t *testing.T) {
	tests := []struct {
		kind   Kind
		stride uint64
		attrs  int
	}{
		{Sprite, 24, 4},
		{Polygon, 20, 3},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			l := tt.kind.Layout()
			if l.ArrayStride != tt.stride || len(l.Attributes) != tt.attrs {
				t.Errorf("Layout() stride=%d attrs=%d, want %d, %d", l.ArrayStride, len(l.Attributes), tt.stride, tt.attrs)
			}
			if int(l.ArrayStride) != tt.kind.Words()*4 {
				t.Errorf("stride %d != %d words", l.ArrayStride, tt.kind.Words())
			}
		})
	}
}

func TestGenerateDefault(t *testing.T) {
	src, err := Generate(Spec{Kind: Sprite}, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"var tex0: texture_2d<f32>",
		"@group(0) @binding(4) var tex2: texture_2d<f32>",
		"@location(2) texture_id: f32",
		"if slot == 2 {",
		"globals.projection * vec4<f32>(vin.position, 0.0, 1.0)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated module missing %q", want)
		}
	}
	if strings.Contains(src, "var<uniform> u:") {
		t.Error("default module declares a custom uniform block")
	}
}

func TestGenerateCustom(t *testing.T) {
	src, err := Generate(Spec{
		Kind:     Polygon,
		Vertex:   "vout.uv = vout.uv * u.scale;",
		Fragment: "color = color * textureSampleLevel(noise, samp, vin.uv, 0.0);",
		Decls: []Decl{
			{Name: "scale", Kind: render.UniformVec2},
			{Name: "noise", Kind: render.UniformSampler},
		},
	}, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"scale: vec2<f32>,",
		"@group(1) @binding(0) var<uniform> u: Uniforms;",
		"@group(1) @binding(1) var noise: texture_2d<f32>;",
		"vout.uv = vout.uv * u.scale;",
		"vout.texture_id = 0.0;",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated module missing %q", want)
		}
	}
}

func TestGenerateRejectsBadDecls(t *testing.T) {
	tests := []struct {
		name  string
		decls []Decl
	}{
		{"reserved", []Decl{{Name: "color", Kind: render.UniformFloat}}},
		{"projection", []Decl{{Name: "projection", Kind: render.UniformMat4}}},
		{"duplicate", []Decl{{Name: "a", Kind: render.UniformFloat}, {Name: "a", Kind: render.UniformVec2}}},
		{"bad name", []Decl{{Name: "1x", Kind: render.UniformFloat}}},
		{"no kind", []Decl{{Name: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(Spec{Decls: tt.decls}, 1)
			if !errors.Is(err, ErrInvalidDecl) {
				t.Errorf("err = %v, want ErrInvalidDecl", err)
			}
		})
	}
}

func TestGenerateNeedsSlot(t *testing.T) {
	if _, err := Generate(Spec{}, 0); !errors.Is(err, ErrShaderCompile) {
		t.Errorf("err = %v, want ErrShaderCompile", err)
	}
}

func TestLayoutOffsets(t *testing.T) {
	fields := Layout([]Decl{
		{Name: "time", Kind: render.UniformFloat},
		{Name: "tint", Kind: render.UniformVec3},
		{Name: "flag", Kind: render.UniformInt},
		{Name: "mask", Kind: render.UniformSampler},
		{Name: "xf", Kind: render.UniformMat3},
	})
	want := map[string]int{"time": 0, "tint": 16, "flag": 28, "xf": 32}
	for _, f := range fields {
		if f.Name == "mask" {
			if f.Binding != 1 || f.Group != CustomGroup {
				t.Errorf("mask binding = %d/%d", f.Group, f.Binding)
			}
			continue
		}
		if f.Name == ProjectionUniform {
			continue
		}
		if f.Offset != want[f.Name] {
			t.Errorf("%s offset = %d, want %d", f.Name, f.Offset, want[f.Name])
		}
	}
	src := render.ProgramSource{Uniforms: fields}
	if got := src.BlockSize(CustomGroup); got != 80 {
		t.Errorf("BlockSize = %d, want 80", got)
	}
}
