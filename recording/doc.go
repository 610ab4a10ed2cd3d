// Package recording provides a render.Device that records commands instead
// of executing them.
//
// The recording device follows a Command Pattern: every call on the device
// appends a typed command struct, which tests and tools can inspect. It
// also keeps the bytes uploaded to each buffer and validates draws against
// them, so a recorded frame is checked the way a real device would check
// it.
//
// # Basic Usage
//
//	dev := recording.NewDevice(recording.WithTextureUnits(8))
//	// ... drive a surface.Surface with dev ...
//	for _, d := range dev.Draws() {
//	    fmt.Println(d.Mode, d.Count, d.Textures)
//	}
//	fmt.Printf("%+v\n", dev.Stats())
//
// The device registers itself as "recording" with render.Register.
package recording
