// Package pointoverlay renders large sets of geolocated points as
// GPU-rasterized sprites over a pannable, zoomable map viewport.
//
// # Overview
//
// Point data is projected once into a zoom-independent world plane and
// uploaded to GPU vertex buffers. Pan and zoom never touch the point
// data: every frame only rebuilds a single 4x4 transform uniform that
// maps the world plane to clip space for the current viewport. This
// keeps per-frame cost independent of point count on the CPU side.
//
// # Quick Start
//
//	canvas, _ := glfwcanvas.New(1280, 800, "points")
//	dev := backend.MustDefault()
//	_ = dev.Init()
//
//	overlay, _ := pointoverlay.New(dev, viewport, canvas)
//	_ = overlay.SetData([]pointoverlay.PointRecord{
//	    {Color: pointoverlay.ColorRGB{R: 1}, Coords: []pointoverlay.GeoPoint{{Lat: 51.5, Lng: -0.12}}},
//	})
//	canvas.Run()
//
// # Architecture
//
// The library is organized into:
//   - Public API: Overlay, PointRecord, GeoPoint, Matrix4, projection functions
//   - gpucore: opaque GPU resource IDs and pass/program descriptors
//   - backend: the Device interface plus a registry of implementations
//   - backend/gl, backend/wgpu: OpenGL and WebGPU devices
//   - glfwcanvas: a CanvasHost built on GLFW
//
// The host map viewport, the canvas/frame-scheduling host, and the GPU
// device are collaborators expressed as interfaces (Viewport,
// CanvasHost, backend.Device). The overlay holds no thread of control:
// rendering happens only inside the host's frame-ready callback.
//
// # Coordinate System
//
// Geographic coordinates project into a world plane spanning [0,256)
// per axis at zoom level 0, with Y growing southward. Each zoom level
// doubles world density; clip space is the usual [-1,1] with Y up.
package pointoverlay

// Version is the current version of the library.
const Version = "0.2.0"
