package imageload

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(2, 1, color.NRGBA{B: 255, A: 128})
	return img
}

func writeFile(t *testing.T, dir, name string, encode func(*bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPNG(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.png", func(b *bytes.Buffer) error { return png.Encode(b, testImage()) })

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Rect.Dx() != 3 || img.Rect.Dy() != 2 {
		t.Fatalf("size = %v", img.Rect)
	}
	if got := img.NRGBAAt(2, 1); got != (color.NRGBA{B: 255, A: 128}) {
		t.Errorf("pixel (2,1) = %v", got)
	}
}

func TestLoadGIF(t *testing.T) {
	dir := t.TempDir()
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	pal.SetColorIndex(1, 1, 1)
	path := writeFile(t, dir, "b.gif", func(b *bytes.Buffer) error { return gif.Encode(b, pal, nil) })

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := img.NRGBAAt(1, 1); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("pixel (1,1) = %v", got)
	}
}

func TestLoadUnsupported(t *testing.T) {
	if _, err := Load("notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := LoadBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("err = %v, want ErrEmptyData", err)
	}
	if _, err := LoadBytes([]byte("not an image")); err == nil {
		t.Error("garbage decoded")
	}
}

func TestToNRGBA(t *testing.T) {
	src := testImage()
	if ToNRGBA(src) != src {
		t.Error("conforming NRGBA was copied")
	}

	sub := src.SubImage(image.Rect(1, 1, 3, 2))
	n := ToNRGBA(sub)
	if n.Rect != image.Rect(0, 0, 2, 1) || n.Stride != 8 {
		t.Fatalf("rect %v stride %d", n.Rect, n.Stride)
	}
	if got := n.NRGBAAt(1, 0); got != (color.NRGBA{B: 255, A: 128}) {
		t.Errorf("pixel = %v", got)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 1, 1))
	rgba.SetRGBA(0, 0, color.RGBA{R: 100, A: 200})
	w, h, pix := Pixels(rgba)
	if w != 1 || h != 1 || len(pix) != 4 || pix[3] != 200 {
		t.Errorf("Pixels = %d %d %v", w, h, pix)
	}
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.webp", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "d.png"), 0o700); err != nil {
		t.Fatal(err)
	}
	paths, err := Glob(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "a.webp" || filepath.Base(paths[1]) != "b.png" {
		t.Errorf("Glob = %v", paths)
	}
}
