// Package codec maps the engine's codec enumerations onto RTP codec
// descriptions usable with pion.
package codec

import (
	"strings"

	"github.com/pion/webrtc/v4"
)

// VideoCodecType is the engine's video codec identifier as carried in
// EncodedVideoFrameInfo.CodecType.
type VideoCodecType int

const (
	VideoCodecNone        VideoCodecType = 0
	VideoCodecVP8         VideoCodecType = 1
	VideoCodecH264        VideoCodecType = 2
	VideoCodecH265        VideoCodecType = 3
	VideoCodecGeneric     VideoCodecType = 6
	VideoCodecGenericH264 VideoCodecType = 7
	VideoCodecAV1         VideoCodecType = 12
	VideoCodecVP9         VideoCodecType = 13
	VideoCodecGenericJPEG VideoCodecType = 20
)

// String returns the string representation of the codec type.
func (t VideoCodecType) String() string {
	switch t {
	case VideoCodecNone:
		return "None"
	case VideoCodecVP8:
		return "VP8"
	case VideoCodecH264:
		return "H264"
	case VideoCodecH265:
		return "H265"
	case VideoCodecGeneric:
		return "Generic"
	case VideoCodecGenericH264:
		return "GenericH264"
	case VideoCodecAV1:
		return "AV1"
	case VideoCodecVP9:
		return "VP9"
	case VideoCodecGenericJPEG:
		return "GenericJPEG"
	default:
		return "Unknown"
	}
}

// MimeType returns the RTP MIME type, or "" when the codec has no RTP
// payload format.
func (t VideoCodecType) MimeType() string {
	switch t {
	case VideoCodecVP8:
		return webrtc.MimeTypeVP8
	case VideoCodecH264, VideoCodecGenericH264:
		return webrtc.MimeTypeH264
	case VideoCodecH265:
		return webrtc.MimeTypeH265
	case VideoCodecAV1:
		return webrtc.MimeTypeAV1
	case VideoCodecVP9:
		return webrtc.MimeTypeVP9
	default:
		return ""
	}
}

// ClockRate returns the RTP clock rate for the codec.
func (t VideoCodecType) ClockRate() uint32 {
	if t.MimeType() == "" {
		return 0
	}
	return 90000
}

// SDPFmtpLine returns the default format parameters offered for the codec.
func (t VideoCodecType) SDPFmtpLine() string {
	switch t {
	case VideoCodecH264, VideoCodecGenericH264:
		return H264ProfileConstrainedBaseline.FmtpLine()
	case VideoCodecVP9:
		return "profile-id=0"
	default:
		return ""
	}
}

// Capability returns the pion codec capability for the codec. ok is false
// when the codec cannot be carried over RTP.
func (t VideoCodecType) Capability() (webrtc.RTPCodecCapability, bool) {
	mime := t.MimeType()
	if mime == "" {
		return webrtc.RTPCodecCapability{}, false
	}
	return webrtc.RTPCodecCapability{
		MimeType:    mime,
		ClockRate:   t.ClockRate(),
		SDPFmtpLine: t.SDPFmtpLine(),
		RTCPFeedback: []webrtc.RTCPFeedback{
			{Type: webrtc.TypeRTCPFBNACK},
			{Type: webrtc.TypeRTCPFBNACK, Parameter: "pli"},
			{Type: webrtc.TypeRTCPFBCCM, Parameter: "fir"},
		},
	}, true
}

// VideoCodecFromMimeType returns the engine codec for an RTP MIME type.
// The comparison is case-insensitive.
func VideoCodecFromMimeType(mime string) (VideoCodecType, bool) {
	switch {
	case strings.EqualFold(mime, webrtc.MimeTypeVP8):
		return VideoCodecVP8, true
	case strings.EqualFold(mime, webrtc.MimeTypeH264):
		return VideoCodecH264, true
	case strings.EqualFold(mime, webrtc.MimeTypeH265):
		return VideoCodecH265, true
	case strings.EqualFold(mime, webrtc.MimeTypeAV1):
		return VideoCodecAV1, true
	case strings.EqualFold(mime, webrtc.MimeTypeVP9):
		return VideoCodecVP9, true
	default:
		return VideoCodecNone, false
	}
}

// AudioCodecType is the engine's audio codec identifier as carried in
// EncodedAudioFrameInfo.Codec.
type AudioCodecType int

const (
	AudioCodecOpus   AudioCodecType = 1
	AudioCodecPCMA   AudioCodecType = 3
	AudioCodecPCMU   AudioCodecType = 4
	AudioCodecG722   AudioCodecType = 5
	AudioCodecAACLC  AudioCodecType = 8
	AudioCodecHEAAC  AudioCodecType = 9
	AudioCodecJC1    AudioCodecType = 10
	AudioCodecHEAAC2 AudioCodecType = 11
	AudioCodecLPCNet AudioCodecType = 12
)

// String returns the string representation of the codec type.
func (t AudioCodecType) String() string {
	switch t {
	case AudioCodecOpus:
		return "Opus"
	case AudioCodecPCMA:
		return "PCMA"
	case AudioCodecPCMU:
		return "PCMU"
	case AudioCodecG722:
		return "G722"
	case AudioCodecAACLC:
		return "AACLC"
	case AudioCodecHEAAC:
		return "HEAAC"
	case AudioCodecJC1:
		return "JC1"
	case AudioCodecHEAAC2:
		return "HEAAC2"
	case AudioCodecLPCNet:
		return "LPCNet"
	default:
		return "Unknown"
	}
}

// MimeType returns the RTP MIME type, or "" for engine-private codecs.
func (t AudioCodecType) MimeType() string {
	switch t {
	case AudioCodecOpus:
		return webrtc.MimeTypeOpus
	case AudioCodecPCMA:
		return webrtc.MimeTypePCMA
	case AudioCodecPCMU:
		return webrtc.MimeTypePCMU
	case AudioCodecG722:
		return webrtc.MimeTypeG722
	default:
		return ""
	}
}

// ClockRate returns the RTP clock rate for the codec.
// G.722 keeps the 8 kHz RTP clock for historical reasons.
func (t AudioCodecType) ClockRate() uint32 {
	switch t {
	case AudioCodecOpus:
		return 48000
	case AudioCodecPCMA, AudioCodecPCMU, AudioCodecG722:
		return 8000
	default:
		return 0
	}
}

// Capability returns the pion codec capability for the codec.
func (t AudioCodecType) Capability() (webrtc.RTPCodecCapability, bool) {
	mime := t.MimeType()
	if mime == "" {
		return webrtc.RTPCodecCapability{}, false
	}
	c := webrtc.RTPCodecCapability{
		MimeType:  mime,
		ClockRate: t.ClockRate(),
		Channels:  1,
	}
	if t == AudioCodecOpus {
		c.Channels = 2
		c.SDPFmtpLine = "minptime=10;useinbandfec=1"
	}
	return c, true
}

// H264Profile is an H.264 profile-level-id.
type H264Profile string

const (
	H264ProfileConstrainedBaseline H264Profile = "42e01f"
	H264ProfileBaseline            H264Profile = "42001f"
	H264ProfileMain                H264Profile = "4d001f"
	H264ProfileHigh                H264Profile = "64001f"
)

// FmtpLine returns the SDP fmtp parameters for the profile in
// non-interleaved packetization mode.
func (p H264Profile) FmtpLine() string {
	return "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=" + string(p)
}
