package pointoverlay

import (
	"fmt"

	"github.com/kforeman/point-overlay/backend"
	"github.com/kforeman/point-overlay/gpucore"
)

// pointBuffers owns the GPU-resident position and color buffers for
// the current data set. setData swaps in a complete new pair before
// destroying the old one, so a frame scheduled against the prior data
// never observes half-replaced buffers.
type pointBuffers struct {
	device    backend.Device
	positions gpucore.BufferID
	colors    gpucore.BufferID
	count     int
}

func (b *pointBuffers) setData(records []PointRecord) error {
	positions, colors, count, err := flattenRecords(records)
	if err != nil {
		return err
	}

	var posID, colID gpucore.BufferID
	if count > 0 {
		posID, err = b.device.CreateVertexBuffer(positions, "point_positions")
		if err != nil {
			return fmt.Errorf("upload positions: %w", err)
		}
		colID, err = b.device.CreateVertexBuffer(colors, "point_colors")
		if err != nil {
			b.device.DestroyBuffer(posID)
			return fmt.Errorf("upload colors: %w", err)
		}
	}

	oldPos, oldCol := b.positions, b.colors
	b.positions, b.colors, b.count = posID, colID, count

	if oldPos != gpucore.InvalidID {
		b.device.DestroyBuffer(oldPos)
	}
	if oldCol != gpucore.InvalidID {
		b.device.DestroyBuffer(oldCol)
	}

	Logger().Debug("point buffers replaced", "points", count)
	return nil
}

func (b *pointBuffers) destroy() {
	if b.positions != gpucore.InvalidID {
		b.device.DestroyBuffer(b.positions)
		b.positions = gpucore.InvalidID
	}
	if b.colors != gpucore.InvalidID {
		b.device.DestroyBuffer(b.colors)
		b.colors = gpucore.InvalidID
	}
	b.count = 0
}
