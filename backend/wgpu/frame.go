package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/kforeman/point-overlay/backend"
	"github.com/kforeman/point-overlay/gpucore"
)

// DrawPoints encodes one point pass and submits it. In surface mode
// the pass renders into the configured surface view; otherwise it
// renders into the offscreen color texture and, when a RenderTarget is
// set, reads the pixels back.
func (d *Device) DrawPoints(pass *gpucore.PointPass) error {
	if !d.initialized {
		return backend.ErrNotInitialized
	}

	w, h := uint32(pass.Width), uint32(pass.Height) //nolint:gosec // dimensions always fit uint32
	view := d.surfaceView
	if view == nil {
		if err := d.ensureColorTarget(w, h); err != nil {
			return err
		}
		view = d.colorView
	}
	if view == nil {
		return ErrNoTarget
	}

	uniformBuf, err := d.createAndUploadBuffer("point_uniform",
		packPointUniform(pass, w, h),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	defer d.device.DestroyBuffer(uniformBuf)

	var p *pointPipeline
	var bindGroup hal.BindGroup
	if pass.VertexCount > 0 {
		var ok bool
		p, ok = d.pipelines[pass.Program]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownProgram, pass.Program)
		}
		if _, ok = d.buffers[pass.Positions]; !ok {
			return fmt.Errorf("%w: positions %d", ErrUnknownBuffer, pass.Positions)
		}
		if _, ok = d.buffers[pass.Colors]; !ok {
			return fmt.Errorf("%w: colors %d", ErrUnknownBuffer, pass.Colors)
		}

		bindGroup, err = d.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "point_bind",
			Layout: p.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: pointUniformSize,
				}},
			},
		})
		if err != nil {
			return fmt.Errorf("wgpu: create bind group: %w", err)
		}
		defer d.device.DestroyBindGroup(bindGroup)
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "point_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("point_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	cc := pass.ClearColor
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "point_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(cc.R), G: float64(cc.G), B: float64(cc.B), A: float64(cc.A)},
		}},
	})

	if pass.VertexCount > 0 {
		rp.SetPipeline(p.pipeline)
		rp.SetBindGroup(0, bindGroup, nil)
		rp.SetVertexBuffer(0, d.quadBuf, 0)
		rp.SetVertexBuffer(1, d.buffers[pass.Positions], 0)
		rp.SetVertexBuffer(2, d.buffers[pass.Colors], 0)
		rp.Draw(6, uint32(pass.VertexCount), 0, 0) //nolint:gosec // point count fits uint32
	}
	rp.End()

	// Offscreen readback shares the encoder so clear, draw, and copy
	// land in one submit.
	var stagingBuf hal.Buffer
	var alignedBytesPerRow, stagingBufSize uint64
	doReadback := d.surfaceView == nil && d.readback != nil
	if doReadback {
		// Copy pitch must align to 256 bytes.
		bytesPerRow := uint64(w) * 4
		const copyPitchAlignment = 256
		alignedBytesPerRow = (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
		stagingBufSize = alignedBytesPerRow * uint64(h)

		stagingBuf, err = d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "point_staging",
			Size:  stagingBufSize,
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("wgpu: create staging buffer: %w", err)
		}
		defer d.device.DestroyBuffer(stagingBuf)

		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: d.colorTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		encoder.CopyTextureToBuffer(d.colorTex, stagingBuf, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(alignedBytesPerRow), RowsPerImage: h}, //nolint:gosec // pitch fits uint32
			TextureBase:  hal.ImageCopyTexture{Texture: d.colorTex, MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: d.colorTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, 5*time.Second)
	if err := fenceWaitResult(fenceOK, err); err != nil {
		return err
	}

	if doReadback {
		return d.readbackPixels(stagingBuf, stagingBufSize, alignedBytesPerRow, w, h)
	}
	return nil
}

// fenceWaitResult folds Wait's two failure modes into one error: a
// device error wraps, an expired timeout is ErrGPUTimeout.
func fenceWaitResult(ok bool, err error) error {
	if err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	if !ok {
		return ErrGPUTimeout
	}
	return nil
}

// readbackPixels copies the staging buffer into the render target,
// stripping row padding and converting BGRA to RGBA.
func (d *Device) readbackPixels(stagingBuf hal.Buffer, stagingBufSize, alignedBytesPerRow uint64, w, h uint32) error {
	if err := d.readback.checkSize(w, h); err != nil {
		return err
	}
	raw := make([]byte, stagingBufSize)
	if err := d.queue.ReadBuffer(stagingBuf, 0, raw); err != nil {
		return fmt.Errorf("wgpu: readback: %w", err)
	}

	target := d.readback
	pixelCount := int(w) * int(h)
	bytesPerRow := uint64(w) * 4
	if alignedBytesPerRow == bytesPerRow {
		convertBGRAToRGBA(raw, target.Data, pixelCount)
		return nil
	}

	tight := make([]byte, bytesPerRow*uint64(h))
	for row := uint64(0); row < uint64(h); row++ {
		srcOff := row * alignedBytesPerRow
		dstOff := row * bytesPerRow
		copy(tight[dstOff:dstOff+bytesPerRow], raw[srcOff:srcOff+bytesPerRow])
	}
	convertBGRAToRGBA(tight, target.Data, pixelCount)
	return nil
}

// ensureColorTarget creates or recreates the offscreen color texture
// when the pass size changes.
func (d *Device) ensureColorTarget(w, h uint32) error {
	if d.colorTex != nil && d.colorWidth == w && d.colorHeight == h {
		return nil
	}
	d.destroyColorTarget()

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "point_color",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create color texture: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "point_color_view",
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return fmt.Errorf("wgpu: create color view: %w", err)
	}

	d.colorTex = tex
	d.colorView = view
	d.colorWidth = w
	d.colorHeight = h
	return nil
}

func (d *Device) destroyColorTarget() {
	if d.colorView != nil {
		d.device.DestroyTextureView(d.colorView)
		d.colorView = nil
	}
	if d.colorTex != nil {
		d.device.DestroyTexture(d.colorTex)
		d.colorTex = nil
	}
	d.colorWidth, d.colorHeight = 0, 0
}

// packPointUniform serializes the pass uniform block: column-major
// mat4, point size, alpha, viewport size in pixels.
func packPointUniform(pass *gpucore.PointPass, w, h uint32) []byte {
	out := make([]byte, pointUniformSize)
	for i, v := range pass.Matrix {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(out[64:], math.Float32bits(pass.PointSize))
	binary.LittleEndian.PutUint32(out[68:], math.Float32bits(pass.Alpha))
	binary.LittleEndian.PutUint32(out[72:], math.Float32bits(float32(w)))
	binary.LittleEndian.PutUint32(out[76:], math.Float32bits(float32(h)))
	return out
}
