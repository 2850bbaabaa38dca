// Package gl implements the point-overlay device on OpenGL 3.3 core
// via go-gl.
//
// The device assumes a current GL context on the calling thread for
// Init and for every subsequent call; glfwcanvas provides one. Point
// sprites use native GL_POINTS with gl_PointSize, so the GLSL sources
// from the program descriptor run unmodified.
//
// Importing the package registers the "gl" backend:
//
//	import _ "github.com/kforeman/point-overlay/backend/gl"
package gl
