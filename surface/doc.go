// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface orchestrates a frame of batched 2D drawing.
//
// A [Surface] owns the transform stack, the shared projection and the
// sprite and polygon regions of one canvas. Draw calls select a region;
// switching region is the only thing that flushes a batch outside of the
// capacity limits, so callers should group draws by region and shader.
//
// # Frame
//
//	s.StartRender()
//	s.Save()
//	s.Transform().Translate(100, 100)
//	s.RenderSprite(surface.SpriteDescriptor{Texture: tex})
//	s.Restore()
//	s.RenderLine(surface.LineDescriptor{Points: pts, Width: 2, Color: batch2d.Red})
//	err := s.EndRender()
//
// # Masks
//
// Draws between StartDrawMask and EndDrawMask write the stencil buffer
// instead of color. Later draws are then limited to the mask (MaskInclude)
// or to everything outside it (MaskExclude) until PopMask or ClearMask.
//
// # Render targets
//
// StartFBO redirects drawing into an offscreen target and EndFBO restores
// the previous one. The viewport and projection follow the target size.
package surface
