// Package batch2d is the core of a batched 2D rendering engine.
//
// # Overview
//
// batch2d turns a stream of draw calls (sprites, polygons, lines, tilemap
// layers) into a small number of GPU draw commands. The root package holds
// the math shared by every layer: the 2x3 affine [Matrix], the
// [TransformStack] that every draw-time coordinate passes through, [Point],
// [Color] and the orthographic projection used by the batchers.
//
// # Architecture
//
// The library is organized into:
//   - batch2d: Matrix, TransformStack, Point, Color, projection, logging
//   - buffer: growable typed buffers and their GPU-side upload bookkeeping
//   - render: the device contract (buffers, programs, textures, stencil)
//   - shader: WGSL templates, custom shader splicing, uniform binding
//   - region: the batching engine (sprite and polygon batchers)
//   - surface: the orchestrating renderer (regions, masks, render targets)
//   - recording, backend/wgpu: render.Device implementations
//
// # Quick Start
//
//	dev := recording.NewDevice(recording.WithTextureUnits(16))
//	s, err := surface.New(dev, 800, 600)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s.StartRender()
//	s.Save()
//	s.Transform().Translate(100, 100)
//	s.RenderSprite(surface.SpriteDescriptor{Texture: tex, Width: 32, Height: 32})
//	s.Restore()
//	s.EndRender()
//
// # Coordinate System
//
// Origin (0,0) at top-left, X increases right, Y increases down, angles in
// radians.
//
// # Threading
//
// Nothing in this module is safe for concurrent use except [SetLogger] and
// [Logger]. One goroutine drives one Surface per frame.
package batch2d
