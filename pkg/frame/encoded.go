package frame

import "github.com/thesyncim/rtcbridge/pkg/bufcodec"

// VideoFrameType is the picture type of an encoded video frame.
type VideoFrameType int

const (
	VideoFrameTypeBlank     VideoFrameType = 0
	VideoFrameTypeKey       VideoFrameType = 3
	VideoFrameTypeDelta     VideoFrameType = 4
	VideoFrameTypeB         VideoFrameType = 5
	VideoFrameTypeDroppable VideoFrameType = 6
	VideoFrameTypeUnknown   VideoFrameType = 0xff
)

// EncodedVideoFrameInfo describes an encoded video image. The image bytes
// travel separately.
type EncodedVideoFrameInfo struct {
	CodecType       int            `json:"codecType"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	FramesPerSecond int            `json:"framesPerSecond"`
	FrameType       VideoFrameType `json:"frameType"`
	Rotation        int            `json:"rotation"`
	TrackID         int            `json:"trackId"`
	CaptureTimeMs   int64          `json:"captureTimeMs"`
	DecodeTimeMs    int64          `json:"decodeTimeMs"`
	UID             uint32         `json:"uid"`
	StreamType      int            `json:"streamType"`
}

// IsKeyframe reports whether the frame can be decoded on its own.
func (i EncodedVideoFrameInfo) IsKeyframe() bool {
	return i.FrameType == VideoFrameTypeKey
}

// EncodedAudioFrameInfo describes an encoded audio frame.
type EncodedAudioFrameInfo struct {
	Codec             int   `json:"codec"`
	SampleRateHz      int   `json:"sampleRateHz"`
	SamplesPerChannel int   `json:"samplesPerChannel"`
	NumberOfChannels  int   `json:"numberOfChannels"`
	CaptureTimeMs     int64 `json:"captureTimeMs"`
}

// Metadata is a media metadata block attached to the video stream.
type Metadata struct {
	UID         uint32         `json:"uid"`
	Size        int            `json:"size"`
	Buffer      bufcodec.Bytes `json:"buffer"`
	TimeStampMs int64          `json:"timeStampMs"`
}

// AudioSpectrumData is one spectrum sample of an audio stream.
type AudioSpectrumData struct {
	AudioSpectrumData []float64 `json:"audioSpectrumData"`
	DataLength        int       `json:"dataLength"`
}

// UserAudioSpectrumInfo is the spectrum of one remote user.
type UserAudioSpectrumInfo struct {
	UID          uint32            `json:"uid"`
	SpectrumData AudioSpectrumData `json:"spectrumData"`
}
