// Package wgpu implements render.Device on top of the gogpu/wgpu HAL.
//
// The device renders headless into an RGBA8 color texture paired with a
// Depth24PlusStencil8 attachment, so stencil masks and offscreen render
// targets work the same on every HAL backend (Vulkan, Metal, DX12, GLES
// and the CPU software rasterizer).
//
// # Opening a device
//
// Open selects the most capable backend registered with the HAL:
//
//	dev, err := wgpu.Open(800, 600)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Destroy()
//
// Importing the package also registers the "wgpu" name with
// render.Register, so hosts that only know device names can call
// render.Open("wgpu", w, h).
//
// A host that already owns a HAL device (for example a gogpu window)
// passes it through NewFromProvider instead.
//
// # Command model
//
// Binding calls only change CPU-side state. Each draw call records its
// own render pass that loads the current attachments and submits it
// immediately, which keeps queue writes of vertex, index and uniform data
// ordered with the draws that read them. Resources released during a
// frame are destroyed by Finish once the queue is idle.
//
// Render pipelines are cached per program, vertex layout, topology,
// stencil state and color write mask.
//
// WebGPU has no triangle fans; fan draws are expanded to triangle lists
// through transient index buffers.
package wgpu
