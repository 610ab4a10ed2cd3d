// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"math"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/render"
)

// CreateRenderTarget creates an offscreen target of width x height pixels.
func (s *Surface) CreateRenderTarget(width, height int) (render.RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: render target %dx%d", ErrInvalidSize, width, height)
	}
	rt, err := s.dev.CreateRenderTarget(width, height)
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	return rt, nil
}

// DeleteRenderTarget releases rt. It must not be on the target stack.
func (s *Surface) DeleteRenderTarget(rt render.RenderTarget) {
	for _, t := range s.targets {
		if t == rt {
			batch2d.Logger().Debug("surface: delete of bound render target ignored")
			return
		}
	}
	s.dev.DeleteRenderTarget(rt)
}

// StartFBO flushes the active region and redirects drawing into rt. The
// viewport and projection take the size of rt.
func (s *Surface) StartFBO(rt render.RenderTarget) {
	if !s.drawing || rt == nil {
		batch2d.Logger().Debug("surface: StartFBO ignored", "drawing", s.drawing)
		return
	}
	s.Flush()
	s.targets = append(s.targets, rt)
	s.dev.BindRenderTarget(rt)
	s.applyViewport()
	s.stats.TargetSwitches++
}

// EndFBO flushes the active region and restores the previous target.
func (s *Surface) EndFBO() {
	if len(s.targets) == 0 {
		batch2d.Logger().Debug("surface: EndFBO without StartFBO ignored")
		return
	}
	s.Flush()
	s.targets[len(s.targets)-1] = nil
	s.targets = s.targets[:len(s.targets)-1]
	s.dev.BindRenderTarget(s.Target())
	s.applyViewport()
	s.stats.TargetSwitches++
}

// Target returns the innermost render target, or nil for the screen.
func (s *Surface) Target() render.RenderTarget {
	if len(s.targets) == 0 {
		return nil
	}
	return s.targets[len(s.targets)-1]
}

// Clear flushes the active region and clears the current target to c.
func (s *Surface) Clear(c batch2d.Color) {
	s.Flush()
	gc := c.GPU()
	s.dev.Clear(render.ClearOptions{Color: &gc})
}

// Size returns the logical size of the screen.
func (s *Surface) Size() (width, height int) { return s.width, s.height }

// PixelRatio returns the ratio of viewport pixels to logical units.
func (s *Surface) PixelRatio() float64 { return s.ratio }

// ViewportSize returns the viewport of the screen in pixels.
func (s *Surface) ViewportSize() (width, height int) {
	return int(math.Round(float64(s.width) * s.ratio)), int(math.Round(float64(s.height) * s.ratio))
}

// Resize changes the logical size of the screen. Pending geometry is
// drawn first; the regions pick up the new projection before their next
// primitive.
func (s *Surface) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		batch2d.Logger().Debug("surface: invalid resize ignored", "width", width, "height", height)
		return
	}
	if width == s.width && height == s.height {
		return
	}
	s.Flush()
	s.width, s.height = width, height
	if s.drawing {
		s.applyViewport()
	}
}

// SetPixelRatio changes the ratio of viewport pixels to logical units.
func (s *Surface) SetPixelRatio(r float64) {
	if r <= 0 || r == s.ratio {
		return
	}
	s.Flush()
	s.ratio = r
	if s.drawing {
		s.applyViewport()
	}
}

// SyncWindow matches the surface to the logical size and scale factor of
// a host window.
func (s *Surface) SyncWindow(w gpucontext.WindowProvider) {
	width, height := w.Size()
	s.SetPixelRatio(w.ScaleFactor())
	s.Resize(width, height)
}

// applyViewport sets the viewport and projection of the current target.
// Offscreen targets are addressed in pixels, the screen in logical units.
func (s *Surface) applyViewport() {
	if rt := s.Target(); rt != nil {
		s.dev.Viewport(0, 0, rt.Width(), rt.Height())
		s.proj.Set(batch2d.Ortho(float64(rt.Width()), float64(rt.Height())))
		return
	}
	vw, vh := s.ViewportSize()
	s.dev.Viewport(0, 0, vw, vh)
	s.proj.Set(batch2d.Ortho(float64(s.width), float64(s.height)))
}

// visibleSize returns the size of the current target in projection units.
func (s *Surface) visibleSize() (float64, float64) {
	if rt := s.Target(); rt != nil {
		return float64(rt.Width()), float64(rt.Height())
	}
	return float64(s.width), float64(s.height)
}
