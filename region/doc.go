// Package region implements the batching engine.
//
// A [Region] accumulates transformed vertices into a GPU buffer and issues
// exactly one draw call per flush. Two batchers are provided:
//
//   - [SpriteBatcher]: textured quads, up to one texture per texture unit
//     per batch, drawn with a precomputed 16-bit index buffer
//   - [PolygonBatcher]: arbitrary triangles, strips, fans and lines, one
//     texture per batch
//
// A batch is flushed only when it cannot grow: the texture table would
// overflow, the primitive limit is reached, the custom uniforms changed,
// the projection changed, or the caller switches region.
package region
