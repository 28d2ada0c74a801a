package frame

import (
	"encoding/binary"
	"time"

	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
)

// AudioFrameType is the sample layout of an AudioFrame.
type AudioFrameType int

const (
	// FrameTypePCM16 is interleaved signed 16-bit little-endian PCM.
	FrameTypePCM16 AudioFrameType = 0
)

// String returns the string representation of the frame type.
func (t AudioFrameType) String() string {
	switch t {
	case FrameTypePCM16:
		return "PCM16"
	default:
		return "Unknown"
	}
}

// AudioFrame is a block of raw audio exchanged with the engine, both when
// pushed from an external source and when delivered to audio frame observers.
type AudioFrame struct {
	Type AudioFrameType `json:"type"`

	// SamplesPerChannel is the number of samples per channel in Buffer.
	SamplesPerChannel int `json:"samplesPerChannel"`

	// BytesPerSample is 2 for PCM16.
	BytesPerSample int `json:"bytesPerSample"`
	Channels       int `json:"channels"`
	SamplesPerSec  int `json:"samplesPerSec"`

	// Buffer holds the interleaved samples.
	Buffer bufcodec.Bytes `json:"buffer"`

	RenderTimeMs int64 `json:"renderTimeMs"`
	AvsyncType   int   `json:"avsync_type"`
}

// Clone creates a deep copy of the frame.
func (f *AudioFrame) Clone() *AudioFrame {
	clone := *f
	clone.Buffer = cloneBytes(f.Buffer)
	return &clone
}

// SamplesS16 returns Buffer as int16 samples.
// Returns nil unless the frame is PCM16.
func (f *AudioFrame) SamplesS16() []int16 {
	if f.Type != FrameTypePCM16 || len(f.Buffer) < 2 {
		return nil
	}
	out := make([]int16, len(f.Buffer)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(f.Buffer[i*2:]))
	}
	return out
}

// Duration returns the duration of the audio in this frame.
func (f *AudioFrame) Duration() time.Duration {
	if f.SamplesPerSec == 0 {
		return 0
	}
	return time.Duration(f.SamplesPerChannel) * time.Second / time.Duration(f.SamplesPerSec)
}

// NewAudioFrameS16 creates a PCM16 frame from interleaved samples.
func NewAudioFrameS16(sampleRate, channels int, samples []int16) *AudioFrame {
	buf := make(bufcodec.Bytes, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	perChannel := 0
	if channels > 0 {
		perChannel = len(samples) / channels
	}
	return &AudioFrame{
		Type:              FrameTypePCM16,
		SamplesPerChannel: perChannel,
		BytesPerSample:    2,
		Channels:          channels,
		SamplesPerSec:     sampleRate,
		Buffer:            buf,
	}
}

// AudioPcmFrame is the decoded audio a media player hands to its audio frame
// observers. Samples travel inline in the JSON payload.
type AudioPcmFrame struct {
	CaptureTimestamp  int64   `json:"capture_timestamp"`
	SamplesPerChannel int     `json:"samples_per_channel_"`
	SampleRateHz      int     `json:"sample_rate_hz_"`
	NumChannels       int     `json:"num_channels_"`
	BytesPerSample    int     `json:"bytes_per_sample"`
	Data              []int16 `json:"data_"`
}
