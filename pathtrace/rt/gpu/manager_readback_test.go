package gpu

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignedBytesPerRow(t *testing.T) {
	assert.Equal(t, uint32(256), alignedBytesPerRow(1))
	assert.Equal(t, uint32(256), alignedBytesPerRow(64))
	assert.Equal(t, uint32(512), alignedBytesPerRow(65))
	assert.Equal(t, uint32(2560), alignedBytesPerRow(640))
}

func TestUnpackRowsDropsPadding(t *testing.T) {
	const w, h = 3, 2
	data := make([]byte, alignedBytesPerRow(w)*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*256 + x*4
			copy(data[off:], []byte{byte(x), byte(y), 7, 255})
		}
		// padding must not leak into the image
		data[y*256+w*4] = 99
	}

	img := unpackRows(data, w, h)
	require.Equal(t, w, img.Bounds().Dx())
	require.Equal(t, h, img.Bounds().Dy())
	assert.Equal(t, color.RGBA{2, 1, 7, 255}, img.RGBAAt(2, 1))
	assert.Equal(t, color.RGBA{0, 0, 7, 255}, img.RGBAAt(0, 0))
	assert.Len(t, img.Pix, w*h*4)
}
