// Package buffer provides growable typed scalar buffers and their
// GPU-backed counterparts.
//
// [Dynamic] is a CPU-side array of float32, uint16 or uint32 that doubles
// its capacity on demand and never shrinks. [GPU] wraps a Dynamic with a
// device buffer and uploads it lazily: a full reallocation when the CPU
// capacity outgrew the last upload, a sub-range write otherwise.
package buffer
