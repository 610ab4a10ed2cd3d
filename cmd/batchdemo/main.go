// Command batchdemo renders a batched 2D scene for a number of frames and
// prints the batching statistics.
//
// Usage:
//
//	batchdemo -backend recording -frames 120 -sprites 5000
//	batchdemo -config demo.toml -textures ./sprites -v
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/batch2d"
	_ "github.com/gogpu/batch2d/backend/wgpu"
	"github.com/gogpu/batch2d/config"
	"github.com/gogpu/batch2d/internal/imageload"
	_ "github.com/gogpu/batch2d/recording"
	"github.com/gogpu/batch2d/render"
	"github.com/gogpu/batch2d/surface"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML or YAML config file")
		frames     = flag.Int("frames", 0, "frames to render (overrides config)")
		backend    = flag.String("backend", "", "device: recording or wgpu (overrides config)")
		textures   = flag.String("textures", "", "directory of sprite images (overrides config)")
		sprites    = flag.Int("sprites", 0, "sprites per frame (overrides config)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		batch2d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("batchdemo: %v", err)
		}
	}
	if *frames > 0 {
		cfg.Demo.Frames = *frames
	}
	if *backend != "" {
		cfg.Demo.Backend = *backend
	}
	if *textures != "" {
		cfg.Demo.Textures = *textures
	}
	if *sprites > 0 {
		cfg.Demo.Sprites = *sprites
	}

	if err := run(cfg); err != nil {
		log.Fatalf("batchdemo: %v", err)
	}
}

func run(cfg config.Config) error {
	dev, err := render.Open(cfg.Demo.Backend, cfg.Surface.Width, cfg.Surface.Height)
	if err != nil {
		return err
	}
	s, err := surface.New(dev, cfg.Surface.Width, cfg.Surface.Height, surface.WithConfig(cfg.Surface))
	if err != nil {
		return err
	}
	defer s.Destroy()

	texs, err := loadTextures(s, cfg.Demo.Textures)
	if err != nil {
		return err
	}
	fbo, err := s.CreateRenderTarget(128, 128)
	if err != nil {
		return fmt.Errorf("create render target: %w", err)
	}
	defer s.DeleteRenderTarget(fbo)

	scene := newScene(cfg, texs)

	start := time.Now()
	var total surface.Stats
	pb := progressbar.Default(int64(cfg.Demo.Frames), "rendering")
	defer pb.Close()
	for frame := range cfg.Demo.Frames {
		s.StartRender()
		scene.draw(s, fbo, frame)
		if err := s.EndRender(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		total = add(total, s.Stats())
		_ = pb.Add(1)
	}
	elapsed := time.Since(start)

	n := max(cfg.Demo.Frames, 1)
	fmt.Printf("\n%s: %d frames in %v (%.2f ms/frame)\n",
		cfg.Demo.Backend, cfg.Demo.Frames, elapsed.Round(time.Millisecond),
		float64(elapsed.Microseconds())/1000/float64(n))
	fmt.Printf("  draw calls/frame:      %.1f\n", float64(total.DrawCalls)/float64(n))
	fmt.Printf("  primitives/frame:      %.1f\n", float64(total.Primitives)/float64(n))
	fmt.Printf("  uploads/frame:         %.1f\n", float64(total.Uploads)/float64(n))
	fmt.Printf("  region switches/frame: %.1f\n", float64(total.RegionSwitches)/float64(n))
	fmt.Printf("  mask changes/frame:    %.1f\n", float64(total.MaskChanges)/float64(n))
	fmt.Printf("  dropped batches:       %d\n", total.Dropped)
	return nil
}

func add(a, b surface.Stats) surface.Stats {
	a.DrawCalls += b.DrawCalls
	a.Primitives += b.Primitives
	a.Uploads += b.Uploads
	a.Dropped += b.Dropped
	a.RegionSwitches += b.RegionSwitches
	a.MaskChanges += b.MaskChanges
	a.TargetSwitches += b.TargetSwitches
	return a
}

// loadTextures loads every supported image in dir, or generates a few
// checkerboards when dir is empty.
func loadTextures(s *surface.Surface, dir string) ([]render.Texture, error) {
	if dir == "" {
		palette := []color.NRGBA{
			{0xE0, 0x40, 0x40, 0xFF},
			{0x40, 0xC0, 0x60, 0xFF},
			{0x40, 0x70, 0xE0, 0xFF},
			{0xE0, 0xC0, 0x30, 0xFF},
		}
		var out []render.Texture
		for i, c := range palette {
			t, err := s.NewTexture(fmt.Sprintf("checker%d", i), checker(16, c))
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return out, nil
	}

	paths, err := imageload.Glob(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images in %s", dir)
	}
	out := make([]render.Texture, 0, len(paths))
	for _, p := range paths {
		t, err := s.LoadTexture(p)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func checker(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			if (x/4+y/4)%2 == 0 {
				img.SetNRGBA(x, y, c)
			} else {
				img.SetNRGBA(x, y, color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF})
			}
		}
	}
	return img
}

type sprite struct {
	tex    render.Texture
	x, y   float64
	vx, vy float64
	tint   batch2d.Color
}

type scene struct {
	width, height float64
	sprites       []sprite
}

func newScene(cfg config.Config, texs []render.Texture) *scene {
	sc := &scene{width: float64(cfg.Surface.Width), height: float64(cfg.Surface.Height)}
	for i := range cfg.Demo.Sprites {
		// Deterministic scatter so runs are comparable.
		a := float64(i) * 2.399963
		r := math.Sqrt(float64(i)/float64(cfg.Demo.Sprites)) * math.Min(sc.width, sc.height) / 2
		sc.sprites = append(sc.sprites, sprite{
			tex:  texs[i%len(texs)],
			x:    sc.width/2 + r*math.Cos(a),
			y:    sc.height/2 + r*math.Sin(a),
			vx:   math.Cos(a*3) * 2,
			vy:   math.Sin(a*5) * 2,
			tint: batch2d.RGBA(1, 1, 1, 0.5+0.5*math.Abs(math.Sin(a))),
		})
	}
	return sc
}

func (sc *scene) step() {
	for i := range sc.sprites {
		sp := &sc.sprites[i]
		sp.x += sp.vx
		sp.y += sp.vy
		if sp.x < 0 || sp.x > sc.width {
			sp.vx = -sp.vx
		}
		if sp.y < 0 || sp.y > sc.height {
			sp.vy = -sp.vy
		}
	}
}

func (sc *scene) draw(s *surface.Surface, fbo render.RenderTarget, frame int) {
	sc.step()
	t := float64(frame) / 60

	// Offscreen: a spinning polygon rendered into the render target.
	s.StartFBO(fbo)
	s.Clear(batch2d.Transparent)
	s.Save()
	s.Transform().Translate(64, 64)
	s.Transform().Rotate(t)
	s.RenderGraphic(surface.GraphicDescriptor{Points: surface.Rect(-40, -40, 80, 80), Color: batch2d.RGB(0.9, 0.5, 0.1)})
	s.Restore()
	s.EndFBO()

	for _, sp := range sc.sprites {
		s.RenderSprite(surface.SpriteDescriptor{
			Texture: sp.tex,
			X:       sp.x,
			Y:       sp.y,
			OriginX: 0.5,
			OriginY: 0.5,
			Tint:    sp.tint,
		})
	}

	s.RenderGraphic(surface.GraphicDescriptor{
		Points: surface.Circle(sc.width/4, sc.height/4, 40+10*math.Sin(t*2)),
		Color:  batch2d.RGBA(0.2, 0.6, 1, 0.8),
	})
	s.RenderLine(surface.LineDescriptor{
		Points: []batch2d.Point{{X: 20, Y: 20}, {X: sc.width - 20, Y: 20}, {X: sc.width - 20, Y: sc.height - 20}, {X: 20, Y: sc.height - 20}},
		Width:  4,
		Color:  batch2d.White,
		Closed: true,
		Round:  true,
	})

	// Only the part of the composite inside the circle shows.
	s.StartDrawMask(surface.MaskInclude)
	s.RenderGraphic(surface.GraphicDescriptor{Points: surface.Circle(sc.width*0.75, sc.height*0.75, 56)})
	s.EndDrawMask()
	s.RenderSprite(surface.SpriteDescriptor{
		Texture: fbo.Texture(),
		X:       sc.width*0.75 - 64,
		Y:       sc.height*0.75 - 64,
	})
	s.PopMask()
}
