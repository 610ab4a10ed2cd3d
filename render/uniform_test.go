package render

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestUniformLayout(t *testing.T) {
	tests := []struct {
		kind        UniformKind
		size, align int
	}{
		{UniformFloat, 4, 4},
		{UniformVec2, 8, 8},
		{UniformVec3, 12, 16},
		{UniformVec4, 16, 16},
		{UniformMat3, 48, 16},
		{UniformMat4, 64, 16},
		{UniformInt, 4, 4},
		{UniformSampler, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Size(); got != tt.size {
				t.Errorf("Size() = %d, want %d", got, tt.size)
			}
			if got := tt.kind.Align(); got != tt.align {
				t.Errorf("Align() = %d, want %d", got, tt.align)
			}
		})
	}
}

func TestUniformEncodeMat3Padding(t *testing.T) {
	u := Mat3([9]float32{1, 2, 3, 4, 5, 6, 7, 8, 9})
	buf := make([]byte, u.Kind.Size())
	u.Encode(buf)

	want := []float32{1, 2, 3, 0, 4, 5, 6, 0, 7, 8, 9, 0}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != w {
			t.Errorf("word %d = %v, want %v", i, got, w)
		}
	}
}

func TestUniformEncodeScalars(t *testing.T) {
	buf := make([]byte, 16)
	Vec3(1.5, -2, 3).Encode(buf)
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])); got != -2 {
		t.Errorf("vec3.y = %v, want -2", got)
	}

	Bool(true).Encode(buf)
	if got := binary.LittleEndian.Uint32(buf); got != 1 {
		t.Errorf("bool = %d, want 1", got)
	}
}

func TestUniformFloats(t *testing.T) {
	if got := len(Vec2(1, 2).Floats()); got != 2 {
		t.Errorf("len(Vec2.Floats()) = %d, want 2", got)
	}
	if got := len(Sampler(3).Floats()); got != 0 {
		t.Errorf("len(Sampler.Floats()) = %d, want 0", got)
	}
	if Sampler(3).I != 3 {
		t.Error("Sampler unit not stored")
	}
}
