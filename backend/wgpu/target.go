package wgpu

import "fmt"

// RenderTarget receives the pixels of each offscreen pass. Data is
// tightly packed RGBA, len = Width*Height*4, allocated by the caller.
type RenderTarget struct {
	Width  int
	Height int
	Data   []byte
}

// checkSize verifies Data can hold a w by h RGBA image. A target sized
// for a stale pass (window resized after allocation) fails here
// instead of corrupting memory during conversion.
func (t *RenderTarget) checkSize(w, h uint32) error {
	need := int(w) * int(h) * 4
	if len(t.Data) < need {
		return fmt.Errorf("%w: %d bytes for %dx%d, need %d", ErrTargetSize, len(t.Data), w, h, need)
	}
	return nil
}

// convertBGRAToRGBA swaps the channel order of tightly packed pixels.
// The offscreen color texture is BGRA8; callers want RGBA.
func convertBGRAToRGBA(src, dst []byte, pixelCount int) {
	for i := 0; i < pixelCount; i++ {
		o := i * 4
		dst[o+0] = src[o+2]
		dst[o+1] = src[o+1]
		dst[o+2] = src[o+0]
		dst[o+3] = src[o+3]
	}
}
