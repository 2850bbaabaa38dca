package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	pointoverlay "github.com/kforeman/point-overlay"
	"github.com/kforeman/point-overlay/backend"
	"github.com/kforeman/point-overlay/gpucore"
)

func init() {
	backend.Register(backend.BackendWGPU, func() backend.Device { return New() })
}

// wgpu device errors.
var (
	ErrNoWGSL         = errors.New("wgpu: program descriptor has no WGSL source")
	ErrUnknownProgram = errors.New("wgpu: unknown program")
	ErrUnknownBuffer  = errors.New("wgpu: unknown buffer")
	ErrNoTarget       = errors.New("wgpu: no surface or render target configured")
	ErrBadProvider    = errors.New("wgpu: device provider does not expose HAL types")
	ErrEmptyBuffer    = errors.New("wgpu: empty vertex data")
	ErrGPUTimeout     = errors.New("wgpu: GPU fence wait timed out")
	ErrTargetSize     = errors.New("wgpu: render target too small")
)

// quadVertices is the shared unit quad every sprite instance expands,
// two triangles in [-1,1].
var quadVertices = []float32{
	-1, -1, 1, -1, 1, 1,
	-1, -1, 1, 1, -1, 1,
}

// Device renders point passes through wgpu/hal. Not safe for
// concurrent use.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	nextID    uint64
	pipelines map[gpucore.ProgramID]*pointPipeline
	buffers   map[gpucore.BufferID]hal.Buffer
	quadBuf   hal.Buffer

	// Offscreen color target, recreated on size changes.
	colorTex    hal.Texture
	colorView   hal.TextureView
	colorWidth  uint32
	colorHeight uint32

	// Surface mode: caller-owned view, no readback.
	surfaceView hal.TextureView

	readback *RenderTarget

	initialized    bool
	externalDevice bool
}

// New creates an uninitialized wgpu device.
func New() *Device {
	return &Device{
		pipelines: make(map[gpucore.ProgramID]*pointPipeline),
		buffers:   make(map[gpucore.BufferID]hal.Buffer),
	}
}

// Name implements backend.Device.
func (d *Device) Name() string { return backend.BackendWGPU }

// Init creates an instance, picks an adapter (discrete GPU preferred)
// and opens the device.
func (d *Device) Init() error {
	if d.initialized {
		return nil
	}

	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("wgpu: create instance: %w", err)
	}
	d.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		d.instance = nil
		return fmt.Errorf("wgpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		d.instance = nil
		return fmt.Errorf("wgpu: open device: %w", err)
	}
	d.device = openDev.Device
	d.queue = openDev.Queue

	if err := d.createQuadBuffer(); err != nil {
		d.device.Destroy()
		instance.Destroy()
		d.device, d.queue, d.instance = nil, nil, nil
		return err
	}

	d.initialized = true
	pointoverlay.Logger().Info("wgpu device ready", "adapter", selected.Info.Name)
	return nil
}

// SetDeviceProvider switches to a shared GPU device owned by the host
// application. The provider must expose HalDevice() and HalQueue()
// returning hal types; the device then never destroys them on Close.
func (d *Device) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return ErrBadProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("%w: HalDevice is not hal.Device", ErrBadProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("%w: HalQueue is not hal.Queue", ErrBadProvider)
	}

	d.releaseAll()
	if !d.externalDevice && d.device != nil {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}

	d.device = device
	d.queue = queue
	d.externalDevice = true

	if err := d.createQuadBuffer(); err != nil {
		d.initialized = false
		return err
	}
	d.initialized = true
	pointoverlay.Logger().Info("wgpu device switched to shared device")
	return nil
}

// SetSurfaceTarget renders subsequent passes directly into the given
// texture view (caller-owned, not destroyed). Pass nil to go back to
// offscreen mode.
func (d *Device) SetSurfaceTarget(view hal.TextureView) {
	d.surfaceView = view
}

// SetRenderTarget configures offscreen readback: after every pass the
// color texture is copied into target.Data as RGBA. Pass nil to stop
// reading back.
func (d *Device) SetRenderTarget(target *RenderTarget) {
	d.readback = target
}

// Close releases everything created through the device. A shared
// device from SetDeviceProvider is left open.
func (d *Device) Close() {
	if !d.initialized {
		return
	}
	d.releaseAll()
	if !d.externalDevice {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
	d.surfaceView = nil
	d.readback = nil
	d.initialized = false
	d.externalDevice = false
}

// releaseAll destroys pipelines, buffers and offscreen textures but
// keeps the device open.
func (d *Device) releaseAll() {
	if d.device == nil {
		return
	}
	for id, p := range d.pipelines {
		p.destroy(d.device)
		delete(d.pipelines, id)
	}
	for id, buf := range d.buffers {
		d.device.DestroyBuffer(buf)
		delete(d.buffers, id)
	}
	if d.quadBuf != nil {
		d.device.DestroyBuffer(d.quadBuf)
		d.quadBuf = nil
	}
	d.destroyColorTarget()
}

// CreateProgram compiles the descriptor's WGSL module and builds the
// instanced-quad point pipeline around it.
func (d *Device) CreateProgram(desc *gpucore.ProgramDescriptor) (gpucore.ProgramID, error) {
	if !d.initialized {
		return gpucore.InvalidID, backend.ErrNotInitialized
	}
	if desc.Vertex.WGSL == "" {
		return gpucore.InvalidID, fmt.Errorf("%w: %q", ErrNoWGSL, desc.Label)
	}

	p, err := newPointPipeline(d.device, desc)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: program %q: %w", desc.Label, err)
	}

	d.nextID++
	id := gpucore.ProgramID(d.nextID)
	d.pipelines[id] = p
	pointoverlay.Logger().Debug("wgpu pipeline built", "label", desc.Label, "id", uint64(id))
	return id, nil
}

// DestroyProgram implements backend.Device.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	p, ok := d.pipelines[id]
	if !ok {
		return
	}
	p.destroy(d.device)
	delete(d.pipelines, id)
}

// CreateVertexBuffer uploads the data as an immutable vertex buffer.
func (d *Device) CreateVertexBuffer(data []float32, label string) (gpucore.BufferID, error) {
	if !d.initialized {
		return gpucore.InvalidID, backend.ErrNotInitialized
	}
	if len(data) == 0 {
		return gpucore.InvalidID, fmt.Errorf("%w: %q", ErrEmptyBuffer, label)
	}

	buf, err := d.createAndUploadBuffer(label, floatsToBytes(data),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return gpucore.InvalidID, err
	}

	d.nextID++
	id := gpucore.BufferID(d.nextID)
	d.buffers[id] = buf
	return id, nil
}

// DestroyBuffer implements backend.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	buf, ok := d.buffers[id]
	if !ok {
		return
	}
	d.device.DestroyBuffer(buf)
	delete(d.buffers, id)
}

func (d *Device) createQuadBuffer() error {
	buf, err := d.createAndUploadBuffer("point_quad", floatsToBytes(quadVertices),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	d.quadBuf = buf
	return nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (d *Device) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s: %w", label, err)
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func floatsToBytes(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
