package shader

import (
	"errors"
	"testing"

	"github.com/gogpu/batch2d/recording"
	"github.com/gogpu/batch2d/render"
)

func TestBuildDefaultPrograms(t *testing.T) {
	for _, kind := range []Kind{Sprite, Polygon} {
		t.Run(kind.String(), func(t *testing.T) {
			src, err := Build(Spec{Kind: kind}, 4)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if len(src.SPIRV) == 0 || src.SPIRV[0] != 0x07230203 {
				t.Errorf("SPIR-V missing or bad magic")
			}
			if src.TextureSlots != 4 || src.VertexEntry != VertexEntry {
				t.Errorf("source = %+v", src)
			}
		})
	}
}

func TestBuildRejectsBrokenBody(t *testing.T) {
	_, err := Build(Spec{Kind: Sprite, Fragment: "color = ;"}, 1)
	if !errors.Is(err, ErrShaderCompile) {
		t.Errorf("err = %v, want ErrShaderCompile", err)
	}
}

func TestNewProgramSlots(t *testing.T) {
	dev := recording.NewDevice(recording.WithTextureUnits(8))
	p, err := NewProgram(dev, Spec{
		Kind:     Sprite,
		Fragment: "color = color * u.alpha;",
		Decls: []Decl{
			{Name: "alpha", Kind: render.UniformFloat},
			{Name: "mask", Kind: render.UniformSampler},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Destroy()

	if p.TextureSlots() != 7 {
		t.Errorf("TextureSlots() = %d, want 7", p.TextureSlots())
	}
	if k, ok := p.Declared("alpha"); !ok || k != render.UniformFloat {
		t.Errorf("Declared(alpha) = %v, %v", k, ok)
	}
	if dev.Count(recording.CmdCreateProgram) != 1 {
		t.Error("program not created on device")
	}
}

func TestNewProgramNilDevice(t *testing.T) {
	if _, err := NewProgram(nil, Spec{}); !errors.Is(err, render.ErrNoDevice) {
		t.Errorf("err = %v, want ErrNoDevice", err)
	}
}
