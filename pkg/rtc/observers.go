package rtc

import "github.com/thesyncim/rtcbridge/pkg/frame"

// Observer interfaces mirror the engine's callback families. Every family has
// a Base implementation with no-op methods; embed it and override only the
// callbacks of interest. Observers are registered and compared by identity,
// so register pointers.

// RtcEngineEventHandler receives engine and channel events. The Ex variant of
// an event arrives at the same method.
type RtcEngineEventHandler interface {
	OnJoinChannelSuccess(conn RtcConnection, elapsed int)
	OnRejoinChannelSuccess(conn RtcConnection, elapsed int)
	OnLeaveChannel(conn RtcConnection, stats RtcStats)
	OnRtcStats(conn RtcConnection, stats RtcStats)
	OnUserJoined(conn RtcConnection, remoteUID uint32, elapsed int)
	OnUserOffline(conn RtcConnection, remoteUID uint32, reason UserOfflineReasonType)
	OnError(code ErrorCode, msg string)
	OnConnectionStateChanged(conn RtcConnection, state ConnectionStateType, reason int)
	OnLocalVideoStateChanged(source int, state int, reason int)
	OnStreamMessage(conn RtcConnection, remoteUID uint32, streamID int, data []byte, sentTs int64)
	OnStreamMessageError(conn RtcConnection, remoteUID uint32, streamID int, code ErrorCode, missed int, cached int)
	OnRtmpStreamingStateChanged(url string, state RtmpStreamPublishState, errCode int)
	OnRtmpStreamingEvent(url string, eventCode int)
	OnTranscodingUpdated()
	OnAudioMixingStateChanged(state int, reason int)
	OnAudioMixingFinished()
}

// BaseRtcEngineEventHandler implements RtcEngineEventHandler with no-ops.
type BaseRtcEngineEventHandler struct{}

func (BaseRtcEngineEventHandler) OnJoinChannelSuccess(RtcConnection, int)                          {}
func (BaseRtcEngineEventHandler) OnRejoinChannelSuccess(RtcConnection, int)                        {}
func (BaseRtcEngineEventHandler) OnLeaveChannel(RtcConnection, RtcStats)                           {}
func (BaseRtcEngineEventHandler) OnRtcStats(RtcConnection, RtcStats)                               {}
func (BaseRtcEngineEventHandler) OnUserJoined(RtcConnection, uint32, int)                          {}
func (BaseRtcEngineEventHandler) OnUserOffline(RtcConnection, uint32, UserOfflineReasonType)       {}
func (BaseRtcEngineEventHandler) OnError(ErrorCode, string)                                        {}
func (BaseRtcEngineEventHandler) OnConnectionStateChanged(RtcConnection, ConnectionStateType, int) {}
func (BaseRtcEngineEventHandler) OnLocalVideoStateChanged(int, int, int)                           {}
func (BaseRtcEngineEventHandler) OnStreamMessage(RtcConnection, uint32, int, []byte, int64)        {}
func (BaseRtcEngineEventHandler) OnStreamMessageError(RtcConnection, uint32, int, ErrorCode, int, int) {
}
func (BaseRtcEngineEventHandler) OnRtmpStreamingStateChanged(string, RtmpStreamPublishState, int) {}
func (BaseRtcEngineEventHandler) OnRtmpStreamingEvent(string, int)                                {}
func (BaseRtcEngineEventHandler) OnTranscodingUpdated()                                           {}
func (BaseRtcEngineEventHandler) OnAudioMixingStateChanged(int, int)                              {}
func (BaseRtcEngineEventHandler) OnAudioMixingFinished()                                          {}

// MetadataObserver receives media metadata sent by remote users.
type MetadataObserver interface {
	OnMetadataReceived(metadata frame.Metadata)
}

// BaseMetadataObserver implements MetadataObserver with no-ops.
type BaseMetadataObserver struct{}

func (BaseMetadataObserver) OnMetadataReceived(frame.Metadata) {}

// DirectCdnStreamingEventHandler receives direct CDN streaming events.
type DirectCdnStreamingEventHandler interface {
	OnDirectCdnStreamingStateChanged(state DirectCdnStreamingState, code int, message string)
	OnDirectCdnStreamingStats(stats DirectCdnStreamingStats)
}

// BaseDirectCdnStreamingEventHandler implements DirectCdnStreamingEventHandler
// with no-ops.
type BaseDirectCdnStreamingEventHandler struct{}

func (BaseDirectCdnStreamingEventHandler) OnDirectCdnStreamingStateChanged(DirectCdnStreamingState, int, string) {
}
func (BaseDirectCdnStreamingEventHandler) OnDirectCdnStreamingStats(DirectCdnStreamingStats) {}

// AudioFrameObserver receives raw audio at the engine's observation points.
type AudioFrameObserver interface {
	OnRecordAudioFrame(channelID string, f *frame.AudioFrame)
	OnPlaybackAudioFrame(channelID string, f *frame.AudioFrame)
	OnMixedAudioFrame(channelID string, f *frame.AudioFrame)
	OnEarMonitoringAudioFrame(f *frame.AudioFrame)
	OnPlaybackAudioFrameBeforeMixing(channelID string, uid uint32, f *frame.AudioFrame)
}

// BaseAudioFrameObserver implements AudioFrameObserver with no-ops.
type BaseAudioFrameObserver struct{}

func (BaseAudioFrameObserver) OnRecordAudioFrame(string, *frame.AudioFrame)                       {}
func (BaseAudioFrameObserver) OnPlaybackAudioFrame(string, *frame.AudioFrame)                     {}
func (BaseAudioFrameObserver) OnMixedAudioFrame(string, *frame.AudioFrame)                        {}
func (BaseAudioFrameObserver) OnEarMonitoringAudioFrame(*frame.AudioFrame)                        {}
func (BaseAudioFrameObserver) OnPlaybackAudioFrameBeforeMixing(string, uint32, *frame.AudioFrame) {}

// VideoFrameObserver receives raw video at the engine's observation points.
type VideoFrameObserver interface {
	OnCaptureVideoFrame(sourceType int, f *frame.VideoFrame)
	OnPreEncodeVideoFrame(sourceType int, f *frame.VideoFrame)
	OnMediaPlayerVideoFrame(f *frame.VideoFrame, playerID int)
	OnRenderVideoFrame(channelID string, remoteUID uint32, f *frame.VideoFrame)
	OnTranscodedVideoFrame(f *frame.VideoFrame)
}

// BaseVideoFrameObserver implements VideoFrameObserver with no-ops.
type BaseVideoFrameObserver struct{}

func (BaseVideoFrameObserver) OnCaptureVideoFrame(int, *frame.VideoFrame)           {}
func (BaseVideoFrameObserver) OnPreEncodeVideoFrame(int, *frame.VideoFrame)         {}
func (BaseVideoFrameObserver) OnMediaPlayerVideoFrame(*frame.VideoFrame, int)       {}
func (BaseVideoFrameObserver) OnRenderVideoFrame(string, uint32, *frame.VideoFrame) {}
func (BaseVideoFrameObserver) OnTranscodedVideoFrame(*frame.VideoFrame)             {}

// AudioSpectrumObserver receives spectrum analysis results, either from the
// engine or from one media player.
type AudioSpectrumObserver interface {
	OnLocalAudioSpectrum(data frame.AudioSpectrumData)
	OnRemoteAudioSpectrum(spectrums []frame.UserAudioSpectrumInfo)
}

// BaseAudioSpectrumObserver implements AudioSpectrumObserver with no-ops.
type BaseAudioSpectrumObserver struct{}

func (BaseAudioSpectrumObserver) OnLocalAudioSpectrum(frame.AudioSpectrumData)        {}
func (BaseAudioSpectrumObserver) OnRemoteAudioSpectrum([]frame.UserAudioSpectrumInfo) {}

// AudioEncodedFrameObserver receives encoded audio.
type AudioEncodedFrameObserver interface {
	OnRecordAudioEncodedFrame(buf []byte, info frame.EncodedAudioFrameInfo)
	OnPlaybackAudioEncodedFrame(buf []byte, info frame.EncodedAudioFrameInfo)
	OnMixedAudioEncodedFrame(buf []byte, info frame.EncodedAudioFrameInfo)
}

// BaseAudioEncodedFrameObserver implements AudioEncodedFrameObserver with no-ops.
type BaseAudioEncodedFrameObserver struct{}

func (BaseAudioEncodedFrameObserver) OnRecordAudioEncodedFrame([]byte, frame.EncodedAudioFrameInfo)   {}
func (BaseAudioEncodedFrameObserver) OnPlaybackAudioEncodedFrame([]byte, frame.EncodedAudioFrameInfo) {}
func (BaseAudioEncodedFrameObserver) OnMixedAudioEncodedFrame([]byte, frame.EncodedAudioFrameInfo)    {}

// VideoEncodedFrameObserver receives encoded video of remote users.
type VideoEncodedFrameObserver interface {
	OnEncodedVideoFrameReceived(uid uint32, image []byte, info frame.EncodedVideoFrameInfo)
}

// BaseVideoEncodedFrameObserver implements VideoEncodedFrameObserver with no-ops.
type BaseVideoEncodedFrameObserver struct{}

func (BaseVideoEncodedFrameObserver) OnEncodedVideoFrameReceived(uint32, []byte, frame.EncodedVideoFrameInfo) {
}

// MediaPlayerSourceObserver receives playback events of one media player.
type MediaPlayerSourceObserver interface {
	OnPlayerSourceStateChanged(state MediaPlayerState, ec MediaPlayerError)
	OnPositionChanged(positionMs int64)
	OnPlayerEvent(event MediaPlayerEvent, elapsedTime int64, message string)
	OnCompleted()
	OnAudioVolumeIndication(volume int)
}

// BaseMediaPlayerSourceObserver implements MediaPlayerSourceObserver with no-ops.
type BaseMediaPlayerSourceObserver struct{}

func (BaseMediaPlayerSourceObserver) OnPlayerSourceStateChanged(MediaPlayerState, MediaPlayerError) {}
func (BaseMediaPlayerSourceObserver) OnPositionChanged(int64)                                       {}
func (BaseMediaPlayerSourceObserver) OnPlayerEvent(MediaPlayerEvent, int64, string)                 {}
func (BaseMediaPlayerSourceObserver) OnCompleted()                                                  {}
func (BaseMediaPlayerSourceObserver) OnAudioVolumeIndication(int)                                   {}

// MediaPlayerAudioFrameObserver receives decoded audio of one media player.
type MediaPlayerAudioFrameObserver interface {
	OnFrame(f *frame.AudioPcmFrame)
}

// MediaPlayerVideoFrameObserver receives decoded video of one media player.
type MediaPlayerVideoFrameObserver interface {
	OnFrame(f *frame.VideoFrame)
}

// MediaRecorderObserver receives the state of one media recorder.
type MediaRecorderObserver interface {
	OnRecorderStateChanged(channelID string, uid uint32, state RecorderState, code RecorderErrorCode)
	OnRecorderInfoUpdated(channelID string, uid uint32, info RecorderInfo)
}

// BaseMediaRecorderObserver implements MediaRecorderObserver with no-ops.
type BaseMediaRecorderObserver struct{}

func (BaseMediaRecorderObserver) OnRecorderStateChanged(string, uint32, RecorderState, RecorderErrorCode) {
}
func (BaseMediaRecorderObserver) OnRecorderInfoUpdated(string, uint32, RecorderInfo) {}
