// Package config loads surface and demo settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/batch2d"
)

// Sentinel errors.
var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid value")
)

// Format is a configuration file encoding.
type Format uint8

const (
	TOML Format = iota + 1
	YAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case TOML:
		return "toml"
	case YAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// FormatOf returns the format selected by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Config is the root configuration document.
type Config struct {
	Surface Surface `toml:"surface" yaml:"surface"`
	Demo    Demo    `toml:"demo" yaml:"demo"`
}

// Surface configures a surface.Surface.
type Surface struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
	// Background is a hex color, "#rgb", "#rrggbb" or "#rrggbbaa".
	Background   string  `toml:"background" yaml:"background"`
	MaxSprites   int     `toml:"max_sprites" yaml:"max_sprites"`
	TextureUnits int     `toml:"texture_units" yaml:"texture_units"`
	PixelRatio   float64 `toml:"pixel_ratio" yaml:"pixel_ratio"`
}

// BackgroundColor parses Background. An empty value is opaque black.
func (s Surface) BackgroundColor() batch2d.Color {
	if s.Background == "" {
		return batch2d.Black
	}
	return batch2d.Hex(s.Background)
}

// Demo configures cmd/batchdemo.
type Demo struct {
	Backend  string `toml:"backend" yaml:"backend"`
	Frames   int    `toml:"frames" yaml:"frames"`
	Sprites  int    `toml:"sprites" yaml:"sprites"`
	Textures string `toml:"textures" yaml:"textures"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	return Config{
		Surface: Surface{
			Width:      800,
			Height:     600,
			Background: "#000000",
			PixelRatio: 1,
		},
		Demo: Demo{
			Backend: "recording",
			Frames:  60,
			Sprites: 1000,
		},
	}
}

// Validate checks value ranges. Zero MaxSprites and TextureUnits select
// the device limits.
func (c Config) Validate() error {
	s := c.Surface
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: surface size %dx%d", ErrInvalid, s.Width, s.Height)
	case s.MaxSprites < 0:
		return fmt.Errorf("%w: max_sprites %d", ErrInvalid, s.MaxSprites)
	case s.TextureUnits < 0:
		return fmt.Errorf("%w: texture_units %d", ErrInvalid, s.TextureUnits)
	case s.PixelRatio <= 0:
		return fmt.Errorf("%w: pixel_ratio %v", ErrInvalid, s.PixelRatio)
	case c.Demo.Frames < 0 || c.Demo.Sprites < 0:
		return fmt.Errorf("%w: demo frames %d sprites %d", ErrInvalid, c.Demo.Frames, c.Demo.Sprites)
	}
	return nil
}

// Decode parses data over the defaults and validates the result.
func Decode(data []byte, format Format) (Config, error) {
	c := Default()
	var err error
	switch format {
	case TOML:
		err = toml.Unmarshal(data, &c)
	case YAML:
		err = yaml.Unmarshal(data, &c)
	default:
		return Config{}, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: decode %v: %w", format, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode serializes c.
func Encode(c Config, format Format) ([]byte, error) {
	switch format {
	case TOML:
		return toml.Marshal(c)
	case YAML:
		return yaml.Marshal(c)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// Load reads the file at path, choosing the format by extension.
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Decode(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	batch2d.Logger().Debug("config: loaded", "path", path, "format", format.String())
	return c, nil
}

// Save writes c to path in the format selected by its extension.
func Save(path string, c Config) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(c, format)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
