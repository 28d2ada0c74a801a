// Package frame provides the frame and media-data types exchanged with the
// native engine. Binary fields use bufcodec.Bytes so they travel in the
// bridge's buffer list rather than inside JSON.
package frame

import (
	"time"

	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
)

// VideoPixelFormat is the pixel layout of a raw video frame.
type VideoPixelFormat int

const (
	VideoPixelDefault  VideoPixelFormat = 0
	VideoPixelI420     VideoPixelFormat = 1
	VideoPixelBGRA     VideoPixelFormat = 2
	VideoPixelNV21     VideoPixelFormat = 3
	VideoPixelRGBA     VideoPixelFormat = 4
	VideoPixelNV12     VideoPixelFormat = 8
	VideoTexture2D     VideoPixelFormat = 10
	VideoTextureOES    VideoPixelFormat = 11
	VideoPixelI422     VideoPixelFormat = 16
	VideoTextureID3D11 VideoPixelFormat = 17
)

// String returns the string representation of the pixel format.
func (f VideoPixelFormat) String() string {
	switch f {
	case VideoPixelDefault:
		return "Default"
	case VideoPixelI420:
		return "I420"
	case VideoPixelBGRA:
		return "BGRA"
	case VideoPixelNV21:
		return "NV21"
	case VideoPixelRGBA:
		return "RGBA"
	case VideoPixelNV12:
		return "NV12"
	case VideoTexture2D:
		return "Texture2D"
	case VideoTextureOES:
		return "TextureOES"
	case VideoPixelI422:
		return "I422"
	case VideoTextureID3D11:
		return "TextureID3D11"
	default:
		return "Unknown"
	}
}

// VideoFrame is a raw video frame delivered by the engine's video frame
// observers. The five binary planes arrive in this order: Y, U, V, metadata,
// alpha.
type VideoFrame struct {
	// Type is the pixel format.
	Type VideoPixelFormat `json:"type"`

	Width  int `json:"width"`
	Height int `json:"height"`

	// Row strides of the Y, U and V planes in bytes.
	YStride int `json:"yStride"`
	UStride int `json:"uStride"`
	VStride int `json:"vStride"`

	YBuffer bufcodec.Bytes `json:"yBuffer"`
	UBuffer bufcodec.Bytes `json:"uBuffer"`
	VBuffer bufcodec.Bytes `json:"vBuffer"`

	// Rotation in degrees: 0, 90, 180 or 270.
	Rotation int `json:"rotation"`

	// RenderTimeMs is the Unix time in milliseconds at which the frame
	// should be rendered.
	RenderTimeMs int64 `json:"renderTimeMs"`
	AvsyncType   int   `json:"avsync_type"`

	MetadataBuffer bufcodec.Bytes `json:"metadata_buffer"`
	MetadataSize   int            `json:"metadata_size"`

	TextureID int       `json:"textureId"`
	Matrix    []float64 `json:"matrix,omitempty"`

	AlphaBuffer bufcodec.Bytes `json:"alphaBuffer"`
}

// Planes returns the Y, U and V planes.
func (f *VideoFrame) Planes() [][]byte {
	return [][]byte{f.YBuffer, f.UBuffer, f.VBuffer}
}

// RenderTime returns RenderTimeMs as a time.Time.
func (f *VideoFrame) RenderTime() time.Time {
	return time.UnixMilli(f.RenderTimeMs)
}

// Clone creates a deep copy of the frame.
func (f *VideoFrame) Clone() *VideoFrame {
	clone := *f
	clone.YBuffer = cloneBytes(f.YBuffer)
	clone.UBuffer = cloneBytes(f.UBuffer)
	clone.VBuffer = cloneBytes(f.VBuffer)
	clone.MetadataBuffer = cloneBytes(f.MetadataBuffer)
	clone.AlphaBuffer = cloneBytes(f.AlphaBuffer)
	if f.Matrix != nil {
		clone.Matrix = append([]float64(nil), f.Matrix...)
	}
	return &clone
}

// NewI420Frame creates an I420 frame with allocated, tightly packed planes.
func NewI420Frame(width, height int) *VideoFrame {
	uvWidth := (width + 1) / 2
	uvHeight := (height + 1) / 2
	uvSize := uvWidth * uvHeight

	return &VideoFrame{
		Type:    VideoPixelI420,
		Width:   width,
		Height:  height,
		YStride: width,
		UStride: uvWidth,
		VStride: uvWidth,
		YBuffer: make(bufcodec.Bytes, width*height),
		UBuffer: make(bufcodec.Bytes, uvSize),
		VBuffer: make(bufcodec.Bytes, uvSize),
	}
}

// VideoBufferType identifies how an ExternalVideoFrame carries its pixels.
type VideoBufferType int

const (
	VideoBufferRawData VideoBufferType = 1
	VideoBufferArray   VideoBufferType = 2
	VideoBufferTexture VideoBufferType = 3
)

// ExternalVideoFrame is a frame pushed into the engine from an external
// video source. Its binary fields occupy three buffer positions: Buffer,
// then EGL context and metadata, which are always sent empty.
type ExternalVideoFrame struct {
	Type   VideoBufferType  `json:"type"`
	Format VideoPixelFormat `json:"format"`
	Buffer bufcodec.Bytes   `json:"buffer"`

	// Stride is the line spacing of the incoming frame, in pixels.
	Stride int `json:"stride"`
	Height int `json:"height"`

	CropLeft   int `json:"cropLeft"`
	CropTop    int `json:"cropTop"`
	CropRight  int `json:"cropRight"`
	CropBottom int `json:"cropBottom"`
	Rotation   int `json:"rotation"`

	// Timestamp of the incoming frame in milliseconds.
	Timestamp int64     `json:"timestamp"`
	EglType   int       `json:"eglType"`
	TextureID int       `json:"textureId"`
	Matrix    []float64 `json:"matrix,omitempty"`
}

func cloneBytes(b bufcodec.Bytes) bufcodec.Bytes {
	if b == nil {
		return nil
	}
	out := make(bufcodec.Bytes, len(b))
	copy(out, b)
	return out
}
