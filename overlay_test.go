package pointoverlay

import (
	"errors"
	"math"
	"testing"

	"github.com/kforeman/point-overlay/gpucore"
)

// mockDevice records every call the overlay makes.
type mockDevice struct {
	nextID     uint64
	programs   map[gpucore.ProgramID]*gpucore.ProgramDescriptor
	buffers    map[gpucore.BufferID][]float32
	destroyed  []gpucore.BufferID
	passes     []gpucore.PointPass
	failUpload bool
}

var errMockUpload = errors.New("mock: upload refused")

func newMockDevice() *mockDevice {
	return &mockDevice{
		programs: make(map[gpucore.ProgramID]*gpucore.ProgramDescriptor),
		buffers:  make(map[gpucore.BufferID][]float32),
	}
}

func (d *mockDevice) Name() string { return "mock" }
func (d *mockDevice) Init() error  { return nil }
func (d *mockDevice) Close()       {}

func (d *mockDevice) CreateProgram(desc *gpucore.ProgramDescriptor) (gpucore.ProgramID, error) {
	d.nextID++
	id := gpucore.ProgramID(d.nextID)
	d.programs[id] = desc
	return id, nil
}

func (d *mockDevice) DestroyProgram(id gpucore.ProgramID) {
	delete(d.programs, id)
}

func (d *mockDevice) CreateVertexBuffer(data []float32, label string) (gpucore.BufferID, error) {
	if d.failUpload {
		return gpucore.InvalidID, errMockUpload
	}
	d.nextID++
	id := gpucore.BufferID(d.nextID)
	d.buffers[id] = append([]float32(nil), data...)
	return id, nil
}

func (d *mockDevice) DestroyBuffer(id gpucore.BufferID) {
	delete(d.buffers, id)
	d.destroyed = append(d.destroyed, id)
}

func (d *mockDevice) DrawPoints(pass *gpucore.PointPass) error {
	d.passes = append(d.passes, *pass)
	return nil
}

func (d *mockDevice) lastPass(t *testing.T) gpucore.PointPass {
	t.Helper()
	if len(d.passes) == 0 {
		t.Fatal("no passes recorded")
	}
	return d.passes[len(d.passes)-1]
}

// mockCanvas delivers frames synchronously when the test fires them.
type mockCanvas struct {
	width, height int
	scale         float64
	update        func()
	resize        func()
	scheduled     int
}

func (c *mockCanvas) Size() (int, int)           { return c.width, c.height }
func (c *mockCanvas) ResolutionScale() float64   { return c.scale }
func (c *mockCanvas) SetUpdateHandler(fn func()) { c.update = fn }
func (c *mockCanvas) SetResizeHandler(fn func()) { c.resize = fn }
func (c *mockCanvas) ScheduleUpdate()            { c.scheduled++ }

func (c *mockCanvas) fireFrame() {
	if c.update != nil {
		c.update()
	}
}

func (c *mockCanvas) fireResize() {
	if c.resize != nil {
		c.resize()
	}
}

type mockViewport struct {
	zoom    float64
	topLeft WorldCoord
}

func (v *mockViewport) Zoom() float64       { return v.zoom }
func (v *mockViewport) TopLeft() WorldCoord { return v.topLeft }

func newTestOverlay(t *testing.T, opts ...Option) (*Overlay, *mockDevice, *mockCanvas, *mockViewport) {
	t.Helper()
	dev := newMockDevice()
	canvas := &mockCanvas{width: 512, height: 512, scale: 1}
	viewport := &mockViewport{zoom: 2, topLeft: WorldCoord{X: 100, Y: 120}}

	o, err := New(dev, viewport, canvas, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o, dev, canvas, viewport
}

func TestNewValidatesCollaborators(t *testing.T) {
	dev := newMockDevice()
	canvas := &mockCanvas{width: 100, height: 100, scale: 1}
	viewport := &mockViewport{}

	if _, err := New(nil, viewport, canvas); !errors.Is(err, ErrNilDevice) {
		t.Errorf("New(nil device) error = %v, want ErrNilDevice", err)
	}
	if _, err := New(dev, nil, canvas); !errors.Is(err, ErrNilViewport) {
		t.Errorf("New(nil viewport) error = %v, want ErrNilViewport", err)
	}
	if _, err := New(dev, viewport, nil); !errors.Is(err, ErrNilCanvas) {
		t.Errorf("New(nil canvas) error = %v, want ErrNilCanvas", err)
	}
}

func TestNewCompilesPointProgram(t *testing.T) {
	_, dev, _, _ := newTestOverlay(t)

	if len(dev.programs) != 1 {
		t.Fatalf("programs compiled = %d, want 1", len(dev.programs))
	}
	for _, desc := range dev.programs {
		if len(desc.Attributes) != 2 {
			t.Fatalf("attributes = %d, want 2", len(desc.Attributes))
		}
		if desc.Attributes[0].Name != AttrWorldCoord || desc.Attributes[0].Components != 2 {
			t.Errorf("attribute 0 = %+v", desc.Attributes[0])
		}
		if desc.Attributes[1].Name != AttrVertexColor || desc.Attributes[1].Components != 4 {
			t.Errorf("attribute 1 = %+v", desc.Attributes[1])
		}
		if desc.Vertex.GLSL == "" || desc.Vertex.WGSL == "" || desc.Fragment.GLSL == "" {
			t.Error("program descriptor missing shader sources")
		}
	}
}

func TestSetDataSchedulesAndDraws(t *testing.T) {
	o, dev, canvas, _ := newTestOverlay(t)

	records := []PointRecord{
		{Color: ColorRGB{R: 1}, Coords: []GeoPoint{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 20}}},
		{Color: ColorRGB{G: 1}, Coords: []GeoPoint{{Lat: -5, Lng: 100}}},
	}
	if err := o.SetData(records); err != nil {
		t.Fatalf("SetData() error = %v", err)
	}
	if canvas.scheduled != 1 {
		t.Errorf("scheduled = %d, want 1", canvas.scheduled)
	}
	if o.PointCount() != 3 {
		t.Errorf("PointCount() = %d, want 3", o.PointCount())
	}

	canvas.fireFrame()
	pass := dev.lastPass(t)
	if pass.VertexCount != 3 {
		t.Errorf("VertexCount = %d, want 3", pass.VertexCount)
	}
	if pass.Positions == gpucore.InvalidID || pass.Colors == gpucore.InvalidID {
		t.Error("pass has invalid buffer handles")
	}
	if got := len(dev.buffers[pass.Positions]); got != 6 {
		t.Errorf("position floats = %d, want 6", got)
	}
	if got := len(dev.buffers[pass.Colors]); got != 12 {
		t.Errorf("color floats = %d, want 12", got)
	}
}

func TestScheduleUpdateCoalesces(t *testing.T) {
	o, _, canvas, _ := newTestOverlay(t)

	o.ScheduleUpdate()
	o.ScheduleUpdate()
	o.ScheduleUpdate()
	if canvas.scheduled != 1 {
		t.Fatalf("scheduled = %d, want 1 while pending", canvas.scheduled)
	}

	canvas.fireFrame()
	o.ScheduleUpdate()
	if canvas.scheduled != 2 {
		t.Errorf("scheduled = %d, want 2 after frame delivery", canvas.scheduled)
	}
}

func TestSetDataReplacesPreviousBuffers(t *testing.T) {
	o, dev, canvas, _ := newTestOverlay(t)

	first := []PointRecord{{Color: ColorRGB{R: 1}, Coords: []GeoPoint{{Lat: 0, Lng: 0}}}}
	if err := o.SetData(first); err != nil {
		t.Fatalf("SetData(first) error = %v", err)
	}
	canvas.fireFrame()
	firstPass := dev.lastPass(t)

	second := []PointRecord{{Color: ColorRGB{B: 1}, Coords: []GeoPoint{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}}}
	if err := o.SetData(second); err != nil {
		t.Fatalf("SetData(second) error = %v", err)
	}
	canvas.fireFrame()
	secondPass := dev.lastPass(t)

	if secondPass.Positions == firstPass.Positions || secondPass.Colors == firstPass.Colors {
		t.Error("second data set reused first data set's buffers")
	}
	if secondPass.VertexCount != 2 {
		t.Errorf("VertexCount = %d, want 2", secondPass.VertexCount)
	}

	destroyed := map[gpucore.BufferID]bool{}
	for _, id := range dev.destroyed {
		destroyed[id] = true
	}
	if !destroyed[firstPass.Positions] || !destroyed[firstPass.Colors] {
		t.Error("first data set's buffers were not destroyed")
	}
}

func TestSetDataEmptyClearsOverlay(t *testing.T) {
	o, dev, canvas, _ := newTestOverlay(t)

	records := []PointRecord{{Color: ColorRGB{R: 1}, Coords: []GeoPoint{{Lat: 0, Lng: 0}}}}
	if err := o.SetData(records); err != nil {
		t.Fatalf("SetData() error = %v", err)
	}
	canvas.fireFrame()

	if err := o.SetData(nil); err != nil {
		t.Fatalf("SetData(nil) error = %v", err)
	}
	if o.PointCount() != 0 {
		t.Errorf("PointCount() = %d, want 0", o.PointCount())
	}

	canvas.fireFrame()
	pass := dev.lastPass(t)
	if pass.VertexCount != 0 {
		t.Errorf("VertexCount = %d, want 0", pass.VertexCount)
	}
	if pass.Positions != gpucore.InvalidID || pass.Colors != gpucore.InvalidID {
		t.Error("cleared overlay still binds buffers")
	}
}

func TestSetDataErrorKeepsCurrentData(t *testing.T) {
	o, dev, canvas, _ := newTestOverlay(t)

	good := []PointRecord{{Color: ColorRGB{R: 1}, Coords: []GeoPoint{{Lat: 0, Lng: 0}}}}
	if err := o.SetData(good); err != nil {
		t.Fatalf("SetData(good) error = %v", err)
	}
	canvas.fireFrame()
	before := dev.lastPass(t)

	// Validation failure.
	bad := []PointRecord{{Color: ColorRGB{R: 1}}}
	if err := o.SetData(bad); !errors.Is(err, ErrNoCoords) {
		t.Fatalf("SetData(bad) error = %v, want ErrNoCoords", err)
	}

	// Upload failure.
	dev.failUpload = true
	if err := o.SetData(good); !errors.Is(err, errMockUpload) {
		t.Fatalf("SetData with failing upload error = %v, want errMockUpload", err)
	}
	dev.failUpload = false

	o.ScheduleUpdate()
	canvas.fireFrame()
	after := dev.lastPass(t)
	if after.Positions != before.Positions || after.Colors != before.Colors {
		t.Error("failed SetData replaced the live buffers")
	}
	if o.PointCount() != 1 {
		t.Errorf("PointCount() = %d, want 1", o.PointCount())
	}
}

func TestFrameTransformTracksViewport(t *testing.T) {
	o, dev, canvas, viewport := newTestOverlay(t)
	_ = o

	canvas.fireFrame()
	pass := dev.lastPass(t)

	m := Matrix4(pass.Matrix)
	x, y := m.TransformPoint(viewport.topLeft)
	if math.Abs(float64(x)+1) > matrixEpsilon || math.Abs(float64(y)-1) > matrixEpsilon {
		t.Errorf("topLeft maps to (%v,%v), want (-1,1)", x, y)
	}

	// The viewport is read fresh: moving it changes the next frame.
	viewport.zoom = 4
	viewport.topLeft = WorldCoord{X: 30, Y: 40}
	canvas.fireFrame()
	pass = dev.lastPass(t)

	m = Matrix4(pass.Matrix)
	x, y = m.TransformPoint(viewport.topLeft)
	if math.Abs(float64(x)+1) > matrixEpsilon || math.Abs(float64(y)-1) > matrixEpsilon {
		t.Errorf("after pan/zoom topLeft maps to (%v,%v), want (-1,1)", x, y)
	}
}

func TestFramePointSize(t *testing.T) {
	o, dev, canvas, viewport := newTestOverlay(t, WithPointScale(3))
	_ = o
	canvas.scale = 2
	viewport.zoom = 2.5

	canvas.fireFrame()
	pass := dev.lastPass(t)

	want := 3 * basePointPixels * 2 * math.Pow(math.Pow(2, 2.5), defaultSizeExponent)
	if math.Abs(float64(pass.PointSize)-want) > 1e-3 {
		t.Errorf("PointSize = %v, want %v", pass.PointSize, want)
	}
}

func TestFrameAlphaAndClearColor(t *testing.T) {
	clear := gpucore.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	o, dev, canvas, _ := newTestOverlay(t, WithPointAlpha(0.6), WithClearColor(clear))
	_ = o

	canvas.fireFrame()
	pass := dev.lastPass(t)
	if math.Abs(float64(pass.Alpha)-0.6) > 1e-6 {
		t.Errorf("Alpha = %v, want 0.6", pass.Alpha)
	}
	if pass.ClearColor != clear {
		t.Errorf("ClearColor = %+v, want %+v", pass.ClearColor, clear)
	}
}

func TestResizeRebuildsOnlyBaseMatrix(t *testing.T) {
	o, dev, canvas, viewport := newTestOverlay(t)

	records := []PointRecord{{Color: ColorRGB{R: 1}, Coords: []GeoPoint{{Lat: 0, Lng: 0}}}}
	if err := o.SetData(records); err != nil {
		t.Fatalf("SetData() error = %v", err)
	}
	canvas.fireFrame()
	before := dev.lastPass(t)

	canvas.width, canvas.height = 1024, 768
	canvas.fireResize()
	canvas.fireFrame()
	after := dev.lastPass(t)

	// Buffers survive the resize untouched.
	if after.Positions != before.Positions || after.Colors != before.Colors {
		t.Error("resize replaced vertex buffers")
	}

	// The new base is in effect: topLeft still pins to the corner and
	// the pixel footprint matches the new size.
	m := Matrix4(after.Matrix)
	x, y := m.TransformPoint(viewport.topLeft)
	if math.Abs(float64(x)+1) > matrixEpsilon || math.Abs(float64(y)-1) > matrixEpsilon {
		t.Errorf("topLeft maps to (%v,%v) after resize, want (-1,1)", x, y)
	}
	if after.Width != 1024 || after.Height != 768 {
		t.Errorf("pass size = %dx%d, want 1024x768", after.Width, after.Height)
	}
}

func TestResizeSchedulesFrame(t *testing.T) {
	_, _, canvas, _ := newTestOverlay(t)

	canvas.fireResize()
	if canvas.scheduled != 1 {
		t.Errorf("scheduled = %d, want 1 after resize", canvas.scheduled)
	}
}

func TestCloseReleasesResources(t *testing.T) {
	o, dev, canvas, _ := newTestOverlay(t)

	records := []PointRecord{{Color: ColorRGB{R: 1}, Coords: []GeoPoint{{Lat: 0, Lng: 0}}}}
	if err := o.SetData(records); err != nil {
		t.Fatalf("SetData() error = %v", err)
	}
	o.Close()

	if len(dev.programs) != 0 {
		t.Error("program not destroyed on Close")
	}
	if len(dev.buffers) != 0 {
		t.Error("buffers not destroyed on Close")
	}

	// Closed overlays refuse new data and render nothing.
	if err := o.SetData(records); err == nil {
		t.Error("SetData after Close should fail")
	}
	passes := len(dev.passes)
	canvas.fireFrame()
	if len(dev.passes) != passes {
		t.Error("closed overlay still draws")
	}
}
