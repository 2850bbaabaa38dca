package gl

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	pointoverlay "github.com/kforeman/point-overlay"
	"github.com/kforeman/point-overlay/backend"
	"github.com/kforeman/point-overlay/gpucore"
)

func init() {
	backend.Register(backend.BackendGL, func() backend.Device { return New() })
}

// GL device errors.
var (
	ErrNoGLSL            = errors.New("gl: program descriptor has no GLSL source")
	ErrUnknownProgram    = errors.New("gl: unknown program")
	ErrUnknownBuffer     = errors.New("gl: unknown buffer")
	ErrAttributeNotFound = errors.New("gl: attribute not found in linked program")
	ErrUniformNotFound   = errors.New("gl: uniform not found in linked program")
	ErrEmptyBuffer       = errors.New("gl: empty vertex data")
)

// attribBinding is a resolved vertex input of a linked program.
type attribBinding struct {
	location   uint32
	components int32
}

type program struct {
	handle   uint32
	attribs  []attribBinding
	uniforms map[string]int32
}

// Device renders point passes through OpenGL 3.3 core. Not safe for
// concurrent use; all calls must come from the context thread.
type Device struct {
	initialized bool
	nextID      uint64
	vao         uint32
	programs    map[gpucore.ProgramID]*program
	buffers     map[gpucore.BufferID]uint32
}

// New creates an uninitialized GL device.
func New() *Device {
	return &Device{
		programs: make(map[gpucore.ProgramID]*program),
		buffers:  make(map[gpucore.BufferID]uint32),
	}
}

// Name implements backend.Device.
func (d *Device) Name() string { return backend.BackendGL }

// Init loads GL function pointers from the current context and sets up
// the shared vertex array object.
func (d *Device) Init() error {
	if d.initialized {
		return nil
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl: init: %w", err)
	}

	gl.GenVertexArrays(1, &d.vao)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	d.initialized = true
	pointoverlay.Logger().Info("gl device ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)
	return nil
}

// Close releases every program and buffer created through the device.
func (d *Device) Close() {
	if !d.initialized {
		return
	}
	for id := range d.programs {
		d.DestroyProgram(id)
	}
	for id := range d.buffers {
		d.DestroyBuffer(id)
	}
	gl.DeleteVertexArrays(1, &d.vao)
	d.vao = 0
	d.initialized = false
}

// CreateProgram compiles and links the descriptor's GLSL pair and
// resolves all declared attribute and uniform names.
func (d *Device) CreateProgram(desc *gpucore.ProgramDescriptor) (gpucore.ProgramID, error) {
	if !d.initialized {
		return gpucore.InvalidID, backend.ErrNotInitialized
	}
	if desc.Vertex.GLSL == "" || desc.Fragment.GLSL == "" {
		return gpucore.InvalidID, fmt.Errorf("%w: %q", ErrNoGLSL, desc.Label)
	}

	handle, err := linkProgram(desc.Vertex.GLSL, desc.Fragment.GLSL)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gl: program %q: %w", desc.Label, err)
	}

	p := &program{
		handle:   handle,
		uniforms: make(map[string]int32, len(desc.Uniforms)),
	}
	for _, attr := range desc.Attributes {
		loc := gl.GetAttribLocation(handle, gl.Str(attr.Name+"\x00"))
		if loc < 0 {
			gl.DeleteProgram(handle)
			return gpucore.InvalidID, fmt.Errorf("%w: %q", ErrAttributeNotFound, attr.Name)
		}
		p.attribs = append(p.attribs, attribBinding{
			location:   uint32(loc),
			components: int32(attr.Components),
		})
	}
	for _, name := range desc.Uniforms {
		loc := gl.GetUniformLocation(handle, gl.Str(name+"\x00"))
		if loc < 0 {
			gl.DeleteProgram(handle)
			return gpucore.InvalidID, fmt.Errorf("%w: %q", ErrUniformNotFound, name)
		}
		p.uniforms[name] = loc
	}

	d.nextID++
	id := gpucore.ProgramID(d.nextID)
	d.programs[id] = p
	pointoverlay.Logger().Debug("gl program linked", "label", desc.Label, "id", uint64(id))
	return id, nil
}

// DestroyProgram implements backend.Device.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	gl.DeleteProgram(p.handle)
	delete(d.programs, id)
}

// CreateVertexBuffer uploads the data as a STATIC_DRAW array buffer.
func (d *Device) CreateVertexBuffer(data []float32, label string) (gpucore.BufferID, error) {
	if !d.initialized {
		return gpucore.InvalidID, backend.ErrNotInitialized
	}
	if len(data) == 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: %q", ErrEmptyBuffer, label)
	}

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	d.nextID++
	id := gpucore.BufferID(d.nextID)
	d.buffers[id] = vbo
	return id, nil
}

// DestroyBuffer implements backend.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	vbo, ok := d.buffers[id]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &vbo)
	delete(d.buffers, id)
}

// DrawPoints clears the viewport and draws the pass as GL_POINTS with
// premultiplied-alpha blending.
func (d *Device) DrawPoints(pass *gpucore.PointPass) error {
	if !d.initialized {
		return backend.ErrNotInitialized
	}

	gl.Viewport(0, 0, int32(pass.Width), int32(pass.Height))
	cc := pass.ClearColor
	gl.ClearColor(cc.R, cc.G, cc.B, cc.A)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	if pass.VertexCount == 0 {
		return nil
	}

	p, ok := d.programs[pass.Program]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProgram, pass.Program)
	}
	if len(p.attribs) != 2 {
		return fmt.Errorf("gl: point program wants 2 attributes, has %d", len(p.attribs))
	}
	posVBO, ok := d.buffers[pass.Positions]
	if !ok {
		return fmt.Errorf("%w: positions %d", ErrUnknownBuffer, pass.Positions)
	}
	colVBO, ok := d.buffers[pass.Colors]
	if !ok {
		return fmt.Errorf("%w: colors %d", ErrUnknownBuffer, pass.Colors)
	}

	gl.UseProgram(p.handle)
	gl.BindVertexArray(d.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, posVBO)
	gl.EnableVertexAttribArray(p.attribs[0].location)
	gl.VertexAttribPointer(p.attribs[0].location, p.attribs[0].components, gl.FLOAT, false, 0, nil)

	gl.BindBuffer(gl.ARRAY_BUFFER, colVBO)
	gl.EnableVertexAttribArray(p.attribs[1].location)
	gl.VertexAttribPointer(p.attribs[1].location, p.attribs[1].components, gl.FLOAT, false, 0, nil)

	matrix := pass.Matrix
	gl.UniformMatrix4fv(p.uniforms[pointoverlay.UniformMapMatrix], 1, false, &matrix[0])
	gl.Uniform1f(p.uniforms[pointoverlay.UniformPointSize], pass.PointSize)
	gl.Uniform1f(p.uniforms[pointoverlay.UniformPointAlpha], pass.Alpha)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)

	gl.DrawArrays(gl.POINTS, 0, int32(pass.VertexCount))

	gl.DisableVertexAttribArray(p.attribs[0].location)
	gl.DisableVertexAttribArray(p.attribs[1].location)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}
