package pointoverlay

import "math"

// WorldSize is the extent of the world plane per axis at zoom level 0.
// Zooming scales the plane by powers of two; the plane itself is fixed.
const WorldSize = 256

// MaxLatitude bounds the Web-Mercator projection. Latitudes beyond it
// project toward infinity, so Project clamps to this value.
const MaxLatitude = 85.05112878

// GeoPoint is a geographic coordinate in degrees.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// WorldCoord is a position on the world plane, in world units
// ([0,WorldSize) per axis at zoom 0, Y growing southward).
type WorldCoord struct {
	X float32
	Y float32
}

// LngToX projects longitude onto the world plane X axis.
//
// The standard domain is (-180, 180], mapping linearly onto [0, 256]
// with LngToX(0) == 128. Longitudes in (180, 360] are treated as a
// continuation past the antimeridian and wrap onto (0, 128], so that
// LngToX(360) == LngToX(0). Callers crossing the antimeridian get
// sprites placed east of the date line instead of snapping a full
// world-width west.
func LngToX(lng float64) float32 {
	if lng > 180 {
		return float32(WorldSize * (lng/360 - 0.5))
	}
	return float32(WorldSize * (lng/360 + 0.5))
}

// LatToY projects latitude onto the world plane Y axis. The equator
// maps to 128; Y decreases toward the north pole. Inputs beyond
// ±MaxLatitude produce values outside [0, 256] (or infinities at the
// poles); use ClampLat or Project when the input is unconstrained.
func LatToY(lat float64) float32 {
	merc := -math.Log(math.Tan((0.25 + lat/360) * math.Pi))
	return float32(WorldSize / 2 * (1 + merc/math.Pi))
}

// ClampLat restricts latitude to the projectable range ±MaxLatitude.
func ClampLat(lat float64) float64 {
	if lat > MaxLatitude {
		return MaxLatitude
	}
	if lat < -MaxLatitude {
		return -MaxLatitude
	}
	return lat
}

// Project converts a geographic coordinate to world-plane coordinates,
// clamping latitude to ±MaxLatitude.
func Project(p GeoPoint) WorldCoord {
	return WorldCoord{
		X: LngToX(p.Lng),
		Y: LatToY(ClampLat(p.Lat)),
	}
}
