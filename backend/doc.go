// Package backend provides a pluggable GPU device abstraction for the
// point overlay.
//
// A Device compiles the point shader program, owns vertex buffers, and
// executes point render passes. Implementations are registered via
// init() functions and selected at runtime:
//
//	import (
//	    "github.com/kforeman/point-overlay/backend"
//	    _ "github.com/kforeman/point-overlay/backend/gl"
//	)
//
//	dev := backend.Default()
//	if err := dev.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
// Use Default() to get the best available device, or Get() to request
// a specific one by name.
//
// # Available backends
//
// - "gl": OpenGL 3.3 core via go-gl (needs a current GL context)
// - "wgpu": WebGPU via gogpu/wgpu (surface or offscreen readback)
package backend
