package pointoverlay

import "github.com/kforeman/point-overlay/gpucore"

// Defaults for overlay configuration. The size exponent and the base
// sprite diameter are hand-tuned: 0.4 grows sprites noticeably but
// sublinearly with zoom, which reads well from continental to street
// level.
const (
	defaultPointScale   = 1.0
	defaultPointAlpha   = 1.0
	defaultSizeExponent = 0.4

	// basePointPixels is the sprite diameter at zoom 0 on a 1:1
	// pixel-ratio display, before the caller's scale multiplier.
	basePointPixels = 2.0
)

type config struct {
	pointScale   float64
	pointAlpha   float64
	sizeExponent float64
	clearColor   gpucore.Color
}

func defaultConfig() config {
	return config{
		pointScale:   defaultPointScale,
		pointAlpha:   defaultPointAlpha,
		sizeExponent: defaultSizeExponent,
		clearColor:   gpucore.Color{},
	}
}

// Option configures an Overlay at construction time.
type Option func(*config)

// WithPointScale multiplies the computed sprite diameter. Values
// below 1 shrink sprites, above 1 enlarge them.
func WithPointScale(scale float64) Option {
	return func(c *config) {
		if scale > 0 {
			c.pointScale = scale
		}
	}
}

// WithPointAlpha sets the global sprite opacity in [0,1].
func WithPointAlpha(alpha float64) Option {
	return func(c *config) {
		if alpha >= 0 && alpha <= 1 {
			c.pointAlpha = alpha
		}
	}
}

// WithSizeExponent sets the exponent applied to the zoom scale factor
// when computing sprite diameter. Zero makes sprites zoom-invariant,
// one makes them scale like map features.
func WithSizeExponent(exp float64) Option {
	return func(c *config) {
		if exp >= 0 && exp <= 1 {
			c.sizeExponent = exp
		}
	}
}

// WithClearColor sets the color the target is cleared to before each
// point pass. The default is transparent black, which composites over
// an underlying basemap.
func WithClearColor(clear gpucore.Color) Option {
	return func(c *config) {
		c.clearColor = clear
	}
}
