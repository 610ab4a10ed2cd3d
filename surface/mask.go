// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/render"
)

// MaskType selects how a mask limits later draws.
type MaskType uint8

const (
	// MaskInclude draws only where the mask was drawn.
	MaskInclude MaskType = iota
	// MaskExclude draws only where the mask was not drawn.
	MaskExclude
)

// String returns the mask type name.
func (m MaskType) String() string {
	if m == MaskExclude {
		return "exclude"
	}
	return "include"
}

const maskRef = 1

// StartDrawMask flushes the active region and redirects the following
// draws into the stencil buffer.
func (s *Surface) StartDrawMask(t MaskType) {
	if !s.drawing {
		batch2d.Logger().Debug("surface: StartDrawMask outside a frame ignored")
		return
	}
	s.Flush()
	s.masks = append(s.masks, t)
	s.writing = true
	s.dev.SetColorWrite(false)
	s.dev.SetStencil(render.StencilWrite(maskRef))
	s.stats.MaskChanges++
}

// EndDrawMask flushes the mask geometry and starts testing later draws
// against it.
func (s *Surface) EndDrawMask() {
	if !s.writing {
		batch2d.Logger().Debug("surface: EndDrawMask without StartDrawMask ignored")
		return
	}
	s.Flush()
	s.writing = false
	s.dev.SetColorWrite(true)
	s.applyMask()
	s.stats.MaskChanges++
}

// PopMask removes the innermost mask and restores the one below it. The
// stencil content is kept; use ClearMask to erase it.
func (s *Surface) PopMask() {
	if len(s.masks) == 0 {
		batch2d.Logger().Debug("surface: PopMask without mask ignored")
		return
	}
	s.Flush()
	if s.writing {
		s.writing = false
		s.dev.SetColorWrite(true)
	}
	s.masks = s.masks[:len(s.masks)-1]
	s.applyMask()
	s.stats.MaskChanges++
}

// ClearMask drops every mask and clears the stencil buffer.
func (s *Surface) ClearMask() {
	if !s.drawing {
		batch2d.Logger().Debug("surface: ClearMask outside a frame ignored")
		return
	}
	s.Flush()
	s.masks = s.masks[:0]
	s.writing = false
	s.dev.SetColorWrite(true)
	s.dev.Clear(render.ClearOptions{Stencil: true})
	s.dev.SetStencil(render.StencilState{})
	s.stats.MaskChanges++
}

// MaskDepth returns the number of active masks.
func (s *Surface) MaskDepth() int { return len(s.masks) }

func (s *Surface) applyMask() {
	if len(s.masks) == 0 {
		s.dev.SetStencil(render.StencilState{})
		return
	}
	compare := gputypes.CompareFunctionEqual
	if s.masks[len(s.masks)-1] == MaskExclude {
		compare = gputypes.CompareFunctionNotEqual
	}
	s.dev.SetStencil(render.StencilTest(compare, maskRef))
}
