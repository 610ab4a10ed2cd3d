// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/region"
	"github.com/gogpu/batch2d/render"
	"github.com/gogpu/batch2d/shader"
)

// Names of the built-in regions.
const (
	RegionSprite  = "sprite"
	RegionPolygon = "polygon"
)

// Errors.
var (
	// ErrInvalidSize is returned for non-positive surface sizes.
	ErrInvalidSize = errors.New("surface: invalid size")

	// ErrRegionExists is returned when registering a taken region name.
	ErrRegionExists = errors.New("surface: region already registered")

	// ErrInvalidRegion is returned when registering a nil or unnamed region.
	ErrInvalidRegion = errors.New("surface: invalid region")
)

// Stats counts the work of the current frame.
type Stats struct {
	DrawCalls      int
	Primitives     int
	Uploads        int
	Dropped        int
	RegionSwitches int
	MaskChanges    int
	TargetSwitches int
}

// Surface turns draw calls into batched device draws for one canvas.
// It is not safe for concurrent use.
type Surface struct {
	dev  render.Device
	opts options

	transform *batch2d.TransformStack
	proj      *region.Projection

	sprites  *region.SpriteBatcher
	polygons *region.PolygonBatcher
	regions  map[string]region.Region
	names    []string

	drawing    bool
	active     region.Region
	activeName string
	activeProg *shader.Program

	masks   []MaskType
	writing bool

	targets []render.RenderTarget

	width, height int
	ratio         float64

	programs []*shader.Program

	stats Stats
	base  region.Stats
}

// New creates a surface of width x height logical units drawing on dev.
func New(dev render.Device, width, height int, opts ...Option) (*Surface, error) {
	if dev == nil {
		return nil, render.ErrNoDevice
	}
	o := defaultOptions()
	o.width, o.height = width, height
	for _, opt := range opts {
		opt(&o)
	}
	if o.width <= 0 || o.height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, o.width, o.height)
	}
	dev = limitDevice(dev, o.textureUnits)

	s := &Surface{
		dev:       dev,
		opts:      o,
		transform: batch2d.NewTransformStack(),
		proj:      region.NewProjection(float64(o.width), float64(o.height)),
		regions:   make(map[string]region.Region),
		width:     o.width,
		height:    o.height,
		ratio:     o.pixelRatio,
	}
	var err error
	if s.sprites, err = region.NewSpriteBatcher(dev, s.transform, s.proj, o.maxSprites); err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	if s.polygons, err = region.NewPolygonBatcher(dev, s.transform, s.proj); err != nil {
		s.sprites.Destroy()
		return nil, fmt.Errorf("surface: %w", err)
	}
	s.addRegion(RegionSprite, s.sprites)
	s.addRegion(RegionPolygon, s.polygons)

	batch2d.Logger().Info("surface: created",
		"width", o.width, "height", o.height, "ratio", o.pixelRatio,
		"textureUnits", dev.Limits().MaxTextureUnits, "maxSprites", s.sprites.MaxBatch())
	return s, nil
}

func (s *Surface) addRegion(name string, r region.Region) {
	s.regions[name] = r
	s.names = append(s.names, name)
}

// Device returns the device the surface draws on.
func (s *Surface) Device() render.Device { return s.dev }

// Transform returns the transform stack applied to every draw.
func (s *Surface) Transform() *batch2d.TransformStack { return s.transform }

// Projection returns the projection shared by the regions.
func (s *Surface) Projection() *region.Projection { return s.proj }

// Drawing reports whether a frame is in progress.
func (s *Surface) Drawing() bool { return s.drawing }

// Save pushes a copy of the current transform.
func (s *Surface) Save() { s.transform.PushMat() }

// Restore pops the transform pushed by the matching Save.
func (s *Surface) Restore() { s.transform.PopMat() }

// RegisterRegion adds a custom region selectable with SetRegion. The
// caller keeps ownership of r.
func (s *Surface) RegisterRegion(name string, r region.Region) error {
	if name == "" || r == nil {
		return ErrInvalidRegion
	}
	if _, ok := s.regions[name]; ok {
		return fmt.Errorf("%w: %q", ErrRegionExists, name)
	}
	s.addRegion(name, r)
	return nil
}

// ActiveRegion returns the name of the active region, or "" when none is.
func (s *Surface) ActiveRegion() string { return s.activeName }

// StartRender begins a frame: it resets the transform stack, the masks
// and the render target stack, then clears color and stencil.
func (s *Surface) StartRender() {
	if s.drawing {
		batch2d.Logger().Debug("surface: StartRender during a frame ignored")
		return
	}
	s.transform.Reset()
	s.masks = s.masks[:0]
	s.writing = false
	s.targets = s.targets[:0]

	s.dev.BindRenderTarget(nil)
	s.applyViewport()
	s.dev.SetColorWrite(true)
	s.dev.SetStencil(render.StencilState{})
	bg := s.opts.background.GPU()
	s.dev.Clear(render.ClearOptions{Color: &bg, Stencil: true})

	s.stats = Stats{}
	s.base = s.regionStats()
	s.drawing = true
}

// EndRender flushes the active region and finishes the device frame.
func (s *Surface) EndRender() error {
	if !s.drawing {
		batch2d.Logger().Debug("surface: EndRender without StartRender ignored")
		return nil
	}
	s.quitRegion()
	for len(s.targets) > 0 {
		batch2d.Logger().Debug("surface: unbalanced StartFBO closed at EndRender")
		s.EndFBO()
	}
	if len(s.masks) > 0 || s.writing {
		s.masks = s.masks[:0]
		s.writing = false
		s.dev.SetColorWrite(true)
		s.dev.SetStencil(render.StencilState{})
	}
	s.drawing = false
	if err := s.dev.Finish(); err != nil {
		return fmt.Errorf("surface: end render: %w", err)
	}
	return nil
}

// SetRegion makes the named region active with prog, or its default
// program when prog is nil. The previous region is flushed when the name
// or program differ. It returns nil for unknown names or outside a frame.
func (s *Surface) SetRegion(name string, prog *shader.Program) region.Region {
	if !s.drawing {
		batch2d.Logger().Debug("surface: SetRegion outside a frame ignored", "region", name)
		return nil
	}
	r, ok := s.regions[name]
	if !ok {
		batch2d.Logger().Debug("surface: unknown region", "region", name)
		return nil
	}
	if r == s.active && prog == s.activeProg {
		return r
	}
	s.quitRegion()
	r.EnterRegion(prog)
	s.active, s.activeName, s.activeProg = r, name, prog
	s.stats.RegionSwitches++
	batch2d.Logger().Debug("surface: region switch", "region", name)
	return r
}

// Flush draws the pending batch of the active region.
func (s *Surface) Flush() {
	if s.active != nil {
		s.active.Render()
	}
}

func (s *Surface) quitRegion() {
	s.Flush()
	s.active, s.activeName, s.activeProg = nil, "", nil
}

func (s *Surface) regionStats() region.Stats {
	var sum region.Stats
	for _, name := range s.names {
		st := s.regions[name].Stats()
		sum.Draws += st.Draws
		sum.Primitives += st.Primitives
		sum.Uploads += st.Uploads
		sum.Dropped += st.Dropped
	}
	return sum
}

// Stats returns the counters of the current or last frame.
func (s *Surface) Stats() Stats {
	st := s.stats
	sum := s.regionStats()
	st.DrawCalls = sum.Draws - s.base.Draws
	st.Primitives = sum.Primitives - s.base.Primitives
	st.Uploads = sum.Uploads - s.base.Uploads
	st.Dropped = sum.Dropped - s.base.Dropped
	return st
}

// Destroy releases the built-in regions and the programs created with
// CreateCustomShader.
func (s *Surface) Destroy() {
	s.active, s.activeName, s.activeProg = nil, "", nil
	for _, p := range s.programs {
		p.Destroy()
	}
	s.programs = nil
	s.sprites.Destroy()
	s.polygons.Destroy()
}
