package wgpu

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/kforeman/point-overlay/gpucore"
)

func TestPackPointUniform(t *testing.T) {
	pass := &gpucore.PointPass{
		PointSize: 7.5,
		Alpha:     0.25,
	}
	for i := range pass.Matrix {
		pass.Matrix[i] = float32(i)
	}

	out := packPointUniform(pass, 800, 600)
	if len(out) != pointUniformSize {
		t.Fatalf("uniform size = %d, want %d", len(out), pointUniformSize)
	}

	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(out[off:]))
	}
	for i := 0; i < 16; i++ {
		if got := readF32(i * 4); got != float32(i) {
			t.Errorf("matrix[%d] = %v, want %v", i, got, float32(i))
		}
	}
	if got := readF32(64); got != 7.5 {
		t.Errorf("point size = %v, want 7.5", got)
	}
	if got := readF32(68); got != 0.25 {
		t.Errorf("alpha = %v, want 0.25", got)
	}
	if got := readF32(72); got != 800 {
		t.Errorf("viewport width = %v, want 800", got)
	}
	if got := readF32(76); got != 600 {
		t.Errorf("viewport height = %v, want 600", got)
	}
}

func TestConvertBGRAToRGBA(t *testing.T) {
	src := []byte{
		0x01, 0x02, 0x03, 0x04,
		0x11, 0x12, 0x13, 0x14,
	}
	dst := make([]byte, len(src))
	convertBGRAToRGBA(src, dst, 2)

	want := []byte{
		0x03, 0x02, 0x01, 0x04,
		0x13, 0x12, 0x11, 0x14,
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %#x, want %#x", i, dst[i], want[i])
		}
	}
}

func TestPointVertexLayout(t *testing.T) {
	layouts := pointVertexLayout()
	if len(layouts) != 3 {
		t.Fatalf("vertex buffer slots = %d, want 3", len(layouts))
	}

	if layouts[0].StepMode != gputypes.VertexStepModeVertex {
		t.Error("slot 0 should step per vertex")
	}
	if layouts[1].StepMode != gputypes.VertexStepModeInstance ||
		layouts[2].StepMode != gputypes.VertexStepModeInstance {
		t.Error("slots 1 and 2 should step per instance")
	}

	if layouts[0].ArrayStride != 8 || layouts[1].ArrayStride != 8 || layouts[2].ArrayStride != 16 {
		t.Errorf("strides = %d/%d/%d, want 8/8/16",
			layouts[0].ArrayStride, layouts[1].ArrayStride, layouts[2].ArrayStride)
	}
	for i, layout := range layouts {
		if len(layout.Attributes) != 1 {
			t.Fatalf("slot %d attributes = %d, want 1", i, len(layout.Attributes))
		}
		if got := int(layout.Attributes[0].ShaderLocation); got != i {
			t.Errorf("slot %d shader location = %d, want %d", i, got, i)
		}
	}
}

func TestQuadVertices(t *testing.T) {
	if len(quadVertices) != 12 {
		t.Fatalf("quad floats = %d, want 12 (two triangles)", len(quadVertices))
	}
	for i, v := range quadVertices {
		if v != 1 && v != -1 {
			t.Errorf("quadVertices[%d] = %v, want ±1", i, v)
		}
	}
}

func TestFenceWaitResult(t *testing.T) {
	if err := fenceWaitResult(true, nil); err != nil {
		t.Errorf("signaled fence returned error %v", err)
	}

	err := fenceWaitResult(false, nil)
	if !errors.Is(err, ErrGPUTimeout) {
		t.Errorf("expired wait error = %v, want ErrGPUTimeout", err)
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Errorf("expired wait error renders a nil wrap: %q", err.Error())
	}

	devErr := errors.New("device lost")
	if err := fenceWaitResult(false, devErr); !errors.Is(err, devErr) {
		t.Errorf("device error = %v, want wrapped %v", err, devErr)
	}
}

func TestRenderTargetCheckSize(t *testing.T) {
	target := &RenderTarget{Width: 4, Height: 2, Data: make([]byte, 4*2*4)}
	if err := target.checkSize(4, 2); err != nil {
		t.Errorf("exact-size target error = %v", err)
	}
	if err := target.checkSize(2, 2); err != nil {
		t.Errorf("oversized target error = %v", err)
	}

	// Target allocated before a resize is too small for the new pass.
	if err := target.checkSize(8, 8); !errors.Is(err, ErrTargetSize) {
		t.Errorf("undersized target error = %v, want ErrTargetSize", err)
	}
}

func TestFloatsToBytes(t *testing.T) {
	data := []float32{1.5, -2.25}
	out := floatsToBytes(data)
	if len(out) != 8 {
		t.Fatalf("len = %d, want 8", len(out))
	}
	for i, want := range data {
		got := math.Float32frombits(binary.LittleEndian.Uint32(out[i*4:]))
		if got != want {
			t.Errorf("float %d = %v, want %v", i, got, want)
		}
	}
}
