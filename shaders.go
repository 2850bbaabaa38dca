package pointoverlay

import (
	_ "embed"

	"github.com/kforeman/point-overlay/gpucore"
)

// Shader input names resolved by devices at program link time.
const (
	AttrWorldCoord  = "worldCoord"
	AttrVertexColor = "aVertexColor"

	UniformMapMatrix  = "mapMatrix"
	UniformPointSize  = "pointSize"
	UniformPointAlpha = "pointAlpha"
)

//go:embed shaders/point.vert
var pointVertexGLSL string

//go:embed shaders/point.frag
var pointFragmentGLSL string

//go:embed shaders/point.wgsl
var pointWGSL string

// pointProgramDescriptor builds the descriptor for the point sprite
// program. GL devices consume the GLSL pair; WGSL devices consume the
// single module attached to the vertex stage.
func pointProgramDescriptor() *gpucore.ProgramDescriptor {
	return &gpucore.ProgramDescriptor{
		Label: "point_overlay",
		Vertex: gpucore.ShaderSource{
			GLSL: pointVertexGLSL,
			WGSL: pointWGSL,
		},
		Fragment: gpucore.ShaderSource{
			GLSL: pointFragmentGLSL,
		},
		Attributes: []gpucore.VertexAttribute{
			{Name: AttrWorldCoord, Components: 2},
			{Name: AttrVertexColor, Components: 4},
		},
		Uniforms: []string{UniformMapMatrix, UniformPointSize, UniformPointAlpha},
	}
}
