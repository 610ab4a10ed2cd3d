// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the device contract the batching layers draw
// through.
//
// # Key Principle
//
// The batchers never talk to a graphics API directly. They issue a small,
// stateful command set (bind a buffer, upload bytes, use a program, bind
// textures to units, set stencil state, draw) against a [Device]. Concrete
// devices live elsewhere:
//
//   - recording.Device: records every command for tests and headless runs
//   - backend/wgpu.Device: executes commands on a gogpu/wgpu HAL device
//
// # Core Types
//
//   - Device: the command interface
//   - Buffer, Texture, Program, RenderTarget: opaque device handles
//   - Uniform: tagged uniform value (scalar, vector, matrix, sampler)
//   - StencilState: stencil test and write configuration for masking
//   - DrawMode: primitive assembly, including triangle fans
//
// Enumerations that already exist in WebGPU (index formats, compare
// functions, stencil operations, vertex formats, device limits) are taken
// from github.com/gogpu/gputypes rather than redeclared.
package render
