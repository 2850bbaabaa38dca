package pointoverlay

// Viewport supplies the map state for one frame. The overlay reads it
// fresh inside every frame callback and never caches values across
// frames, so a host that pans or zooms between frames is always
// rendered from current state.
type Viewport interface {
	// Zoom returns the fractional zoom level. World density doubles
	// per whole level.
	Zoom() float64

	// TopLeft returns the world-plane coordinate currently under the
	// canvas's top-left pixel.
	TopLeft() WorldCoord
}

// CanvasHost is the drawing surface and frame scheduler the overlay
// renders into. Implementations deliver the update callback on their
// rendering thread; the overlay does no cross-thread work of its own.
type CanvasHost interface {
	// Size returns the drawing buffer size in physical pixels.
	Size() (widthPx, heightPx int)

	// ResolutionScale returns the device pixel ratio.
	ResolutionScale() float64

	// SetUpdateHandler registers the frame-ready callback. The host
	// invokes it at most once per ScheduleUpdate.
	SetUpdateHandler(fn func())

	// SetResizeHandler registers the callback fired when the drawing
	// buffer size changes.
	SetResizeHandler(fn func())

	// ScheduleUpdate requests one future invocation of the update
	// handler. Multiple calls before delivery coalesce.
	ScheduleUpdate()
}

// ViewportState is the snapshot of viewport and canvas state taken at
// the start of a frame. It exists for one frame only.
type ViewportState struct {
	ZoomLevel       float64
	TopLeftWorld    WorldCoord
	WidthPx         int
	HeightPx        int
	ResolutionScale float64
}
