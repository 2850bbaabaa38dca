package pointoverlay

import (
	"fmt"
	"math"
	"sync"

	"github.com/kforeman/point-overlay/backend"
	"github.com/kforeman/point-overlay/gpucore"
)

// overlayState tracks the frame-scheduling state machine.
type overlayState int

const (
	stateReady overlayState = iota
	statePendingFrame
	stateClosed
)

// Overlay renders geolocated point sprites over a map viewport. It
// owns the shader program and vertex buffers on its Device, reacts to
// the canvas host's resize and frame-ready callbacks, and rebuilds the
// world-to-clip transform each frame from fresh viewport state.
//
// An Overlay is driven from the host's rendering thread; its methods
// are also safe to call from other goroutines (SetData from a loader
// goroutine is the common case).
type Overlay struct {
	device   backend.Device
	viewport Viewport
	canvas   CanvasHost
	cfg      config

	mu      sync.Mutex
	program gpucore.ProgramID
	buffers pointBuffers
	base    Matrix4
	state   overlayState
}

// New creates an overlay on an initialized device, compiles the point
// program, and hooks the canvas host's update and resize callbacks.
// The overlay renders nothing until SetData is called.
func New(device backend.Device, viewport Viewport, canvas CanvasHost, opts ...Option) (*Overlay, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if viewport == nil {
		return nil, ErrNilViewport
	}
	if canvas == nil {
		return nil, ErrNilCanvas
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	program, err := device.CreateProgram(pointProgramDescriptor())
	if err != nil {
		return nil, fmt.Errorf("pointoverlay: compile point program: %w", err)
	}

	o := &Overlay{
		device:   device,
		viewport: viewport,
		canvas:   canvas,
		cfg:      cfg,
		program:  program,
		buffers:  pointBuffers{device: device},
		state:    stateReady,
	}
	o.rebuildBase()

	canvas.SetUpdateHandler(o.renderFrame)
	canvas.SetResizeHandler(o.onResize)

	Logger().Info("overlay ready", "device", device.Name())
	return o, nil
}

// SetData replaces the overlay's entire data set and schedules a
// redraw. Passing an empty slice clears the overlay. On a validation
// or upload error the previous data set stays intact and visible.
func (o *Overlay) SetData(records []PointRecord) error {
	o.mu.Lock()
	if o.state == stateClosed {
		o.mu.Unlock()
		return backend.ErrNotInitialized
	}
	err := o.buffers.setData(records)
	o.mu.Unlock()
	if err != nil {
		return err
	}
	o.ScheduleUpdate()
	return nil
}

// PointCount returns the number of points in the current data set.
func (o *Overlay) PointCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buffers.count
}

// Canvas returns the canvas host the overlay renders into, for hosts
// that need to reach the underlying surface.
func (o *Overlay) Canvas() CanvasHost {
	return o.canvas
}

// ScheduleUpdate arms a single future frame. Calls made while a frame
// is already pending coalesce into that frame.
func (o *Overlay) ScheduleUpdate() {
	o.mu.Lock()
	if o.state != stateReady {
		o.mu.Unlock()
		return
	}
	o.state = statePendingFrame
	o.mu.Unlock()

	o.canvas.ScheduleUpdate()
}

// Close releases the overlay's GPU resources. The device itself stays
// open; the caller owns it.
func (o *Overlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == stateClosed {
		return
	}
	o.buffers.destroy()
	o.device.DestroyProgram(o.program)
	o.program = gpucore.InvalidID
	o.state = stateClosed
}

// onResize rebuilds only the device-pixel base matrix. Point data and
// the viewport transform are untouched; the next frame picks the new
// base up.
func (o *Overlay) onResize() {
	o.mu.Lock()
	if o.state != stateClosed {
		o.rebuildBase()
	}
	o.mu.Unlock()
	o.ScheduleUpdate()
}

func (o *Overlay) rebuildBase() {
	w, h := o.canvas.Size()
	if w <= 0 || h <= 0 {
		// Minimized window; keep the previous base until a real size
		// arrives.
		return
	}
	o.base = BaseMatrix(w, h)
}

// renderFrame is the host's frame-ready callback: snapshot viewport
// state, rebuild the transform, issue one point pass.
func (o *Overlay) renderFrame() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == stateClosed {
		return
	}
	o.state = stateReady

	w, h := o.canvas.Size()
	vs := ViewportState{
		ZoomLevel:       o.viewport.Zoom(),
		TopLeftWorld:    o.viewport.TopLeft(),
		WidthPx:         w,
		HeightPx:        h,
		ResolutionScale: o.canvas.ResolutionScale(),
	}

	zoomFactor := math.Pow(2, vs.ZoomLevel)
	matrix := ViewMatrix(o.base, zoomFactor, vs.TopLeftWorld)
	pointSize := o.cfg.pointScale * basePointPixels * vs.ResolutionScale *
		math.Pow(zoomFactor, o.cfg.sizeExponent)

	pass := gpucore.PointPass{
		Label:       "point_overlay",
		Program:     o.program,
		Width:       vs.WidthPx,
		Height:      vs.HeightPx,
		ClearColor:  o.cfg.clearColor,
		Positions:   o.buffers.positions,
		Colors:      o.buffers.colors,
		Matrix:      [16]float32(matrix),
		PointSize:   float32(pointSize),
		Alpha:       float32(o.cfg.pointAlpha),
		VertexCount: o.buffers.count,
	}

	if err := o.device.DrawPoints(&pass); err != nil {
		Logger().Warn("point pass failed", "err", err)
		return
	}
	Logger().Debug("frame drawn",
		"points", pass.VertexCount,
		"zoom", vs.ZoomLevel,
		"point_size", pass.PointSize,
	)
}
