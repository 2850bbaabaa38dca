package pointoverlay

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

// Record validation errors.
var (
	ErrNoCoords    = errors.New("pointoverlay: record has no coordinates")
	ErrBadCoord    = errors.New("pointoverlay: coordinate out of range")
	ErrBadColor    = errors.New("pointoverlay: color component outside [0,1]")
	ErrNotFinite   = errors.New("pointoverlay: coordinate is not finite")
	ErrNilDevice   = errors.New("pointoverlay: nil device")
	ErrNilViewport = errors.New("pointoverlay: nil viewport")
	ErrNilCanvas   = errors.New("pointoverlay: nil canvas host")
)

// ColorRGB is an opaque point color with components in [0,1].
// Alpha is applied globally at draw time, not per record.
type ColorRGB struct {
	R float32
	G float32
	B float32
}

// ColorFrom converts a standard library color to a ColorRGB,
// discarding alpha.
func ColorFrom(c color.Color) ColorRGB {
	r, g, b, _ := c.RGBA()
	return ColorRGB{
		R: float32(r) / 0xffff,
		G: float32(g) / 0xffff,
		B: float32(b) / 0xffff,
	}
}

// PointRecord groups geographic coordinates that share one color.
// A record must carry at least one coordinate.
type PointRecord struct {
	Color  ColorRGB
	Coords []GeoPoint
}

func validColor(c ColorRGB) bool {
	for _, v := range [3]float32{c.R, c.G, c.B} {
		if v < 0 || v > 1 || v != v {
			return false
		}
	}
	return true
}

// flattenRecords projects every record coordinate into the world plane
// and builds the interleaved-by-array vertex data: 2 floats per point
// in positions, 4 floats per point (RGB + alpha 1) in colors.
//
// All records are validated before any output is produced, so a
// malformed record never yields a partial result. Longitude must lie
// in (-180, 360]; latitude is clamped to ±MaxLatitude rather than
// rejected.
func flattenRecords(records []PointRecord) (positions, colors []float32, count int, err error) {
	total := 0
	for i, rec := range records {
		if len(rec.Coords) == 0 {
			return nil, nil, 0, fmt.Errorf("%w: record %d", ErrNoCoords, i)
		}
		if !validColor(rec.Color) {
			return nil, nil, 0, fmt.Errorf("%w: record %d", ErrBadColor, i)
		}
		for j, c := range rec.Coords {
			if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
				return nil, nil, 0, fmt.Errorf("%w: record %d coord %d", ErrNotFinite, i, j)
			}
			if c.Lng <= -180 || c.Lng > 360 {
				return nil, nil, 0, fmt.Errorf("%w: record %d coord %d lng %v", ErrBadCoord, i, j, c.Lng)
			}
		}
		total += len(rec.Coords)
	}

	positions = make([]float32, 0, total*2)
	colors = make([]float32, 0, total*4)
	for _, rec := range records {
		for _, c := range rec.Coords {
			w := Project(c)
			positions = append(positions, w.X, w.Y)
			colors = append(colors, rec.Color.R, rec.Color.G, rec.Color.B, 1)
		}
	}
	return positions, colors, total, nil
}
