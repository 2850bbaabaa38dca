package gpucore

// BufferID is an opaque handle to a device vertex buffer.
type BufferID uint64

// ProgramID is an opaque handle to a compiled and linked shader program.
type ProgramID uint64

// InvalidID is the zero value for all resource IDs. Backends never
// mint it, so a zero handle always means "no resource".
const InvalidID = 0

// Color is an RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float32
}

// ShaderSource carries shader source text in the language(s) a device
// understands. A backend picks the field it can consume and rejects
// the program if that field is empty.
type ShaderSource struct {
	// GLSL source for OpenGL devices, complete with #version directive.
	GLSL string
	// WGSL source for WebGPU devices. Vertex and fragment stages share
	// one module with vs_main/fs_main entry points, so program
	// descriptors for WGSL carry the module in Vertex and leave
	// Fragment's WGSL empty.
	WGSL string
}

// VertexAttribute names a per-vertex input of a program and its width
// in float32 components.
type VertexAttribute struct {
	Name       string
	Components int
}

// ProgramDescriptor describes a shader program to compile.
type ProgramDescriptor struct {
	// Label is attached to backend resources for debugging.
	Label string

	Vertex   ShaderSource
	Fragment ShaderSource

	// Attributes lists the vertex inputs in binding order. Backends
	// resolve each name against the compiled program and fail fast on
	// a mismatch rather than rendering garbage.
	Attributes []VertexAttribute

	// Uniforms lists the uniform names the caller will set per pass.
	Uniforms []string
}

// PointPass describes one frame of the point overlay: clear the
// target, then draw VertexCount point sprites from the bound buffers.
type PointPass struct {
	Label   string
	Program ProgramID

	// Target size in physical pixels.
	Width  int
	Height int

	ClearColor Color

	// Positions holds 2 float32 world-plane components per point,
	// Colors holds 4 (RGB + alpha). Both may be InvalidID when
	// VertexCount is zero.
	Positions BufferID
	Colors    BufferID

	// Matrix is the world-plane to clip-space transform, column-major.
	Matrix [16]float32

	// PointSize is the sprite diameter in physical pixels.
	PointSize float32
	// Alpha is the global opacity multiplier.
	Alpha float32

	VertexCount int
}
