package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoFrame_ScaleI420Halves(t *testing.T) {
	src := NewI420Frame(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.YBuffer[y*4+x] = byte(y*4 + x)
		}
	}
	for i := range src.UBuffer {
		src.UBuffer[i] = 100
		src.VBuffer[i] = 200
	}
	src.RenderTimeMs = 42

	dst := src.ScaleI420(2, 2)
	require.NotNil(t, dst)

	assert.Equal(t, 2, dst.Width)
	assert.Equal(t, 2, dst.Height)
	// Each output pixel is the rounded mean of a 2x2 block.
	assert.Equal(t, []byte{3, 5, 11, 13}, []byte(dst.YBuffer))
	assert.Equal(t, []byte{100}, []byte(dst.UBuffer))
	assert.Equal(t, []byte{200}, []byte(dst.VBuffer))
	assert.Equal(t, int64(42), dst.RenderTimeMs)
}

func TestVideoFrame_ScaleI420Rejects(t *testing.T) {
	f := NewI420Frame(4, 4)

	assert.Nil(t, f.ScaleI420(8, 8), "upscale")
	assert.Nil(t, f.ScaleI420(0, 2))

	f.Type = VideoPixelNV12
	assert.Nil(t, f.ScaleI420(2, 2))
}

func TestVideoFrame_ScaleI420SameSizeClones(t *testing.T) {
	f := NewI420Frame(2, 2)
	f.YBuffer[0] = 9

	out := f.ScaleI420(2, 2)
	require.NotNil(t, out)
	out.YBuffer[0] = 1
	assert.Equal(t, byte(9), f.YBuffer[0])
}

func TestVideoFrame_ScaleI420ShortPlane(t *testing.T) {
	f := NewI420Frame(4, 4)
	f.YBuffer = f.YBuffer[:6]

	assert.NotPanics(t, func() { f.ScaleI420(2, 2) })
}

func TestVideoFrame_ScaleI420HonorsStride(t *testing.T) {
	src := NewI420Frame(4, 2)
	// Pad every luma row with bytes that must never be sampled.
	src.YStride = 6
	src.YBuffer = []byte{
		10, 10, 30, 30, 255, 255,
		10, 10, 30, 30, 255, 255,
	}

	dst := src.ScaleI420(2, 1)
	require.NotNil(t, dst)
	assert.Equal(t, []byte{10, 30}, []byte(dst.YBuffer))
}
