package gpu

import (
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// alignedBytesPerRow rounds an RGBA8 row up to the 256-byte copy alignment.
func alignedBytesPerRow(width uint32) uint32 {
	return (width*4 + 255) & ^uint32(255)
}

// SetupReadback sizes the map-readable buffer for a width x height RGBA8 texture.
func (m *GpuBufferManager) SetupReadback(width, height uint32) error {
	if m.ReadbackBuffer != nil && m.ReadbackWidth == width && m.ReadbackHeight == height {
		return nil
	}
	if m.ReadbackBuffer != nil {
		m.ReadbackBuffer.Release()
	}

	var err error
	m.ReadbackBuffer, err = m.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Capture Readback",
		Size:  uint64(alignedBytesPerRow(width) * height),
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return errors.Wrap(err, "creating readback buffer")
	}
	m.ReadbackWidth = width
	m.ReadbackHeight = height
	return nil
}

// EncodeReadback copies tex into the readback buffer.
func (m *GpuBufferManager) EncodeReadback(encoder *wgpu.CommandEncoder, tex *wgpu.Texture) {
	w, h := m.ReadbackWidth, m.ReadbackHeight
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{0, 0, 0},
		},
		&wgpu.ImageCopyBuffer{
			Buffer: m.ReadbackBuffer,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  alignedBytesPerRow(w),
				RowsPerImage: h,
			},
		},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
}

// ReadPixels maps the readback buffer, blocking until the copy has landed,
// and unpacks the padded rows.
func (m *GpuBufferManager) ReadPixels() (*image.RGBA, error) {
	if m.ReadbackBuffer == nil {
		return nil, errors.New("readback buffer not set up")
	}

	var status wgpu.BufferMapAsyncStatus
	done := false
	size := m.ReadbackBuffer.GetSize()
	m.ReadbackBuffer.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		done = true
	})
	for !done {
		m.Device.Poll(true, nil)
	}
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, errors.Errorf("mapping readback buffer: status %d", status)
	}
	defer m.ReadbackBuffer.Unmap()

	return unpackRows(m.ReadbackBuffer.GetMappedRange(0, uint(size)), m.ReadbackWidth, m.ReadbackHeight), nil
}

func unpackRows(data []byte, w, h uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	bytesPerRow := alignedBytesPerRow(w)
	for y := uint32(0); y < h; y++ {
		src := data[y*bytesPerRow : y*bytesPerRow+w*4]
		copy(img.Pix[int(y)*img.Stride:], src)
	}
	return img
}
