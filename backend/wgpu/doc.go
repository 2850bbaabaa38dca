// Package wgpu implements the point-overlay device on the gogpu/wgpu
// hardware abstraction layer.
//
// WebGPU's point-list topology rasterizes fixed single-pixel points,
// so the device draws each sprite as an instanced quad: a shared
// unit-quad corner buffer occupies vertex slot 0, and the overlay's
// position and color buffers bind at slots 1 and 2 with instance step
// mode. WGSL point programs therefore place the quad corner at shader
// location 0 and per-point attributes at locations 1 and up.
//
// The device renders either to a caller-provided surface texture view
// (SetSurfaceTarget) or to an internal offscreen texture that is read
// back into a RenderTarget's RGBA pixels after every pass
// (SetRenderTarget). The offscreen path suits headless use and tests.
//
// Importing the package registers the "wgpu" backend:
//
//	import _ "github.com/kforeman/point-overlay/backend/wgpu"
package wgpu
