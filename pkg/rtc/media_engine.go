package rtc

import (
	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
	"github.com/thesyncim/rtcbridge/pkg/frame"
)

// MediaEngine pushes external media into the engine and observes raw and
// encoded media. It is engine-wide: its observers receive every frame.
type MediaEngine struct {
	engine *RtcEngine
}

func (m *MediaEngine) do(funcName string, params any) error {
	if m.engine.Released() {
		return ErrEngineReleased
	}
	return m.engine.do(funcName, params)
}

// PushAudioFrame pushes external audio to track trackID.
func (m *MediaEngine) PushAudioFrame(f *frame.AudioFrame, trackID int) error {
	return m.do("MediaEngine_pushAudioFrame", map[string]any{"frame": f, "trackId": trackID})
}

// PushCaptureAudioFrame pushes audio as if it came from the capture device.
func (m *MediaEngine) PushCaptureAudioFrame(f *frame.AudioFrame) error {
	return m.do("MediaEngine_pushCaptureAudioFrame", map[string]any{"frame": f})
}

// PushReverseAudioFrame pushes the far-end reference for echo cancellation.
func (m *MediaEngine) PushReverseAudioFrame(f *frame.AudioFrame) error {
	return m.do("MediaEngine_pushReverseAudioFrame", map[string]any{"frame": f})
}

// PushDirectAudioFrame pushes audio that bypasses the capture pipeline.
func (m *MediaEngine) PushDirectAudioFrame(f *frame.AudioFrame) error {
	return m.do("MediaEngine_pushDirectAudioFrame", map[string]any{"frame": f})
}

// PushVideoFrame pushes a raw external video frame to track videoTrackID.
func (m *MediaEngine) PushVideoFrame(f *frame.ExternalVideoFrame, videoTrackID uint32) error {
	return m.do("MediaEngine_pushVideoFrame", map[string]any{"frame": f, "videoTrackId": videoTrackID})
}

// PushEncodedVideoImage pushes one encoded video image to track videoTrackID.
func (m *MediaEngine) PushEncodedVideoImage(image []byte, info frame.EncodedVideoFrameInfo, videoTrackID uint32) error {
	return m.do("MediaEngine_pushEncodedVideoImage", map[string]any{
		"imageBuffer":           bufcodec.Bytes(image),
		"length":                len(image),
		"videoEncodedFrameInfo": info,
		"videoTrackId":          videoTrackID,
	})
}

// SetExternalVideoSource switches the video source to pushed frames.
func (m *MediaEngine) SetExternalVideoSource(enabled, useTexture bool, sourceType ExternalVideoSourceType, options SenderOptions) error {
	return m.do("MediaEngine_setExternalVideoSource", map[string]any{
		"enabled":            enabled,
		"useTexture":         useTexture,
		"sourceType":         sourceType,
		"encodedVideoOption": options,
	})
}

// SetExternalAudioSource switches the audio source to pushed frames.
func (m *MediaEngine) SetExternalAudioSource(enabled bool, sampleRate, channels int, localPlayback, publish bool) error {
	return m.do("MediaEngine_setExternalAudioSource", map[string]any{
		"enabled":       enabled,
		"sampleRate":    sampleRate,
		"channels":      channels,
		"localPlayback": localPlayback,
		"publish":       publish,
	})
}

// RegisterAudioFrameObserver adds o to the raw audio observers.
func (m *MediaEngine) RegisterAudioFrameObserver(o AudioFrameObserver) error {
	return register(m.engine.observers.audioFrame, engineWide, o,
		m.engine.forwardCall("MediaEngine_registerAudioFrameObserver", nil))
}

// UnregisterAudioFrameObserver removes o from the raw audio observers.
func (m *MediaEngine) UnregisterAudioFrameObserver(o AudioFrameObserver) error {
	return unregister(m.engine.observers.audioFrame, engineWide, o,
		m.engine.forwardCall("MediaEngine_unregisterAudioFrameObserver", nil))
}

// RegisterVideoFrameObserver adds o to the raw video observers.
func (m *MediaEngine) RegisterVideoFrameObserver(o VideoFrameObserver) error {
	return register(m.engine.observers.videoFrame, engineWide, o,
		m.engine.forwardCall("MediaEngine_registerVideoFrameObserver", nil))
}

// UnregisterVideoFrameObserver removes o from the raw video observers.
func (m *MediaEngine) UnregisterVideoFrameObserver(o VideoFrameObserver) error {
	return unregister(m.engine.observers.videoFrame, engineWide, o,
		m.engine.forwardCall("MediaEngine_unregisterVideoFrameObserver", nil))
}

// RegisterVideoEncodedFrameObserver adds o to the encoded video observers.
func (m *MediaEngine) RegisterVideoEncodedFrameObserver(o VideoEncodedFrameObserver) error {
	return register(m.engine.observers.videoEncoded, engineWide, o,
		m.engine.forwardCall("MediaEngine_registerVideoEncodedFrameObserver", nil))
}

// UnregisterVideoEncodedFrameObserver removes o from the encoded video observers.
func (m *MediaEngine) UnregisterVideoEncodedFrameObserver(o VideoEncodedFrameObserver) error {
	return unregister(m.engine.observers.videoEncoded, engineWide, o,
		m.engine.forwardCall("MediaEngine_unregisterVideoEncodedFrameObserver", nil))
}
