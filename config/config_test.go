package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gogpu/batch2d"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.toml", TOML, true},
		{"dir/b.YAML", YAML, true},
		{"c.yml", YAML, true},
		{"d.json", 0, false},
		{"noext", 0, false},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("FormatOf(%q) = %v, %v", tt.path, got, err)
		}
		if !tt.ok && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("FormatOf(%q) err = %v, want ErrUnknownFormat", tt.path, err)
		}
	}
}

func TestDecodeKeepsDefaults(t *testing.T) {
	tomlDoc := `
[surface]
width = 1024
texture_units = 8

[demo]
frames = 3
`
	yamlDoc := `
surface:
  width: 1024
  texture_units: 8
demo:
  frames: 3
`
	for _, tt := range []struct {
		format Format
		doc    string
	}{{TOML, tomlDoc}, {YAML, yamlDoc}} {
		t.Run(tt.format.String(), func(t *testing.T) {
			c, err := Decode([]byte(tt.doc), tt.format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if c.Surface.Width != 1024 || c.Surface.Height != 600 {
				t.Errorf("size = %dx%d, want 1024x600", c.Surface.Width, c.Surface.Height)
			}
			if c.Surface.TextureUnits != 8 || c.Surface.PixelRatio != 1 {
				t.Errorf("surface = %+v", c.Surface)
			}
			if c.Demo.Frames != 3 || c.Demo.Backend != "recording" {
				t.Errorf("demo = %+v", c.Demo)
			}
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"negative width", "[surface]\nwidth = -1\n", ErrInvalid},
		{"zero ratio", "[surface]\npixel_ratio = 0.0\n", ErrInvalid},
		{"negative units", "[surface]\ntexture_units = -2\n", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.doc), TOML); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := Decode([]byte("surface: ["), YAML); err == nil {
		t.Error("malformed YAML decoded")
	}
}

func TestSaveLoad(t *testing.T) {
	c := Default()
	c.Surface.Background = "#ff8000"
	c.Demo.Sprites = 42
	for _, name := range []string{"cfg.toml", "cfg.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := Save(path, c); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if got != c {
			t.Errorf("Load(%s) = %+v, want %+v", name, got, c)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestBackgroundColor(t *testing.T) {
	if got := (Surface{}).BackgroundColor(); got != batch2d.Black {
		t.Errorf("empty background = %v", got)
	}
	if got := (Surface{Background: "#ffffff"}).BackgroundColor(); got != batch2d.White {
		t.Errorf("white background = %v", got)
	}
}
