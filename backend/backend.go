package backend

import (
	"errors"

	"github.com/kforeman/point-overlay/gpucore"
)

// Backend names for registration and lookup.
const (
	BackendGL   = "gl"
	BackendWGPU = "wgpu"
)

// Common backend errors.
var (
	ErrBackendNotAvailable = errors.New("backend: no backend available")
	ErrNotInitialized      = errors.New("backend: device not initialized")
)

// Device is the GPU interface the overlay renders through. A Device
// owns native GPU resources and exposes them as opaque gpucore IDs.
//
// Devices are not safe for concurrent use. The overlay drives a Device
// from a single host thread (the frame callback thread), matching the
// threading rules of the underlying graphics APIs.
type Device interface {
	// Name returns the registry name of the backend.
	Name() string

	// Init acquires the native device. For context-bound APIs this
	// must run on the thread that owns the context.
	Init() error

	// Close releases all resources created through this device.
	Close()

	// CreateProgram compiles and links a shader program. All
	// attribute and uniform names in the descriptor must resolve, so
	// a renamed shader input fails here instead of drawing nothing.
	CreateProgram(desc *gpucore.ProgramDescriptor) (gpucore.ProgramID, error)

	// DestroyProgram releases a program. Unknown IDs are ignored.
	DestroyProgram(id gpucore.ProgramID)

	// CreateVertexBuffer uploads float32 vertex data as an immutable
	// buffer and returns its handle.
	CreateVertexBuffer(data []float32, label string) (gpucore.BufferID, error)

	// DestroyBuffer releases a buffer. Unknown IDs are ignored.
	DestroyBuffer(id gpucore.BufferID)

	// DrawPoints clears the target and draws one point pass. A pass
	// with VertexCount zero still clears.
	DrawPoints(pass *gpucore.PointPass) error
}
