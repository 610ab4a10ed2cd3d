package batch2d

import (
	"image/color"
	"testing"
)

func TestColorPack(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		want uint32
	}{
		{"white", White, 0xffffffff},
		{"red", Red, 0xff0000ff},
		{"blue", Blue, 0xffff0000},
		{"transparent", Transparent, 0},
		{"clamped", Color{R: 2, G: -1, B: 0, A: 1}, 0xff0000ff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Pack(); got != tt.want {
				t.Errorf("Pack() = %#08x, want %#08x", got, tt.want)
			}
		})
	}
}

func TestColorUnpack(t *testing.T) {
	c := Unpack(Hex("#336699cc").Pack())
	if c.NRGBA() != (color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xcc}) {
		t.Errorf("Unpack(Pack()) = %v", c.NRGBA())
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"f008", color.NRGBA{255, 0, 0, 136}},
		{"#102030", color.NRGBA{0x10, 0x20, 0x30, 255}},
		{"10203040", color.NRGBA{0x10, 0x20, 0x30, 0x40}},
		{"zz", color.NRGBA{0, 0, 0, 255}},
		{"#12345g", color.NRGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		if got := Hex(tt.in).NRGBA(); got != tt.want {
			t.Errorf("Hex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromColor(t *testing.T) {
	c := FromColor(color.RGBA{R: 128, G: 0, B: 0, A: 128})
	if got := c.NRGBA(); got.R != 255 || got.A != 128 {
		t.Errorf("FromColor premultiplied input = %v, want R=255 A=128", got)
	}
}
