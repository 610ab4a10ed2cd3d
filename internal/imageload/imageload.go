// Package imageload decodes texture files into tightly packed
// non-premultiplied RGBA pixels.
package imageload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp" // register BMP
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP
)

// Errors.
var (
	// ErrUnsupportedFormat is returned for files whose extension is not a
	// known image format.
	ErrUnsupportedFormat = errors.New("imageload: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("imageload: empty data")
)

// Extensions lists the file extensions Load accepts.
var Extensions = []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".webp"}

// Supported reports whether path has an image extension.
func Supported(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// Load decodes the image file at path.
func Load(path string) (*image.NRGBA, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imageload: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadBytes decodes an image held in memory.
func LoadBytes(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes an image from r, detecting the format from its content.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imageload: decode: %w", err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA returns img as an NRGBA image with origin (0, 0) and stride
// 4*width. A conforming *image.NRGBA is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

// Pixels returns the size and tightly packed RGBA bytes of img.
func Pixels(img image.Image) (width, height int, pix []byte) {
	n := ToNRGBA(img)
	return n.Rect.Dx(), n.Rect.Dy(), n.Pix
}

// Glob returns the supported image files in dir, sorted by name.
func Glob(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("imageload: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && Supported(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
