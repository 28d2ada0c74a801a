package rtc

import (
	"encoding/json"
	"errors"

	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
	"github.com/thesyncim/rtcbridge/pkg/frame"
)

// decoder parses one callback's payload and returns the invocation to apply
// to every observer of the bucket. Parsing happens once per event.
type decoder[O any] func(data []byte) (func(O), error)

// decodeAs builds a decoder that unmarshals the payload into P before
// binding it to the observer method. A field of the wrong JSON type is left
// zero and reported alongside a usable invocation.
func decodeAs[P any, O any](bind func(p *P) func(O)) decoder[O] {
	return func(data []byte) (func(O), error) {
		p := new(P)
		err := json.Unmarshal(data, p)
		var typeErr *json.UnmarshalTypeError
		if err != nil && !errors.As(err, &typeErr) {
			return nil, err
		}
		return bind(p), err
	}
}

type connectionPayload struct {
	Connection RtcConnection `json:"connection"`
}

type elapsedPayload struct {
	connectionPayload
	Elapsed int `json:"elapsed"`
}

type statsPayload struct {
	connectionPayload
	Stats RtcStats `json:"stats"`
}

type userJoinedPayload struct {
	connectionPayload
	RemoteUID uint32 `json:"remoteUid"`
	Elapsed   int    `json:"elapsed"`
}

type userOfflinePayload struct {
	connectionPayload
	RemoteUID uint32                `json:"remoteUid"`
	Reason    UserOfflineReasonType `json:"reason"`
}

type errorPayload struct {
	Err ErrorCode `json:"err"`
	Msg string    `json:"msg"`
}

type connectionStatePayload struct {
	connectionPayload
	State  ConnectionStateType `json:"state"`
	Reason int                 `json:"reason"`
}

type localVideoStatePayload struct {
	Source int `json:"source"`
	State  int `json:"state"`
	Error  int `json:"error"`
}

type streamMessagePayload struct {
	connectionPayload
	RemoteUID uint32         `json:"remoteUid"`
	StreamID  int            `json:"streamId"`
	Data      bufcodec.Bytes `json:"data"`
	Length    int            `json:"length"`
	SentTs    int64          `json:"sentTs"`
}

type streamMessageErrorPayload struct {
	connectionPayload
	RemoteUID uint32    `json:"remoteUid"`
	StreamID  int       `json:"streamId"`
	Code      ErrorCode `json:"code"`
	Missed    int       `json:"missed"`
	Cached    int       `json:"cached"`
}

type rtmpStatePayload struct {
	URL     string                 `json:"url"`
	State   RtmpStreamPublishState `json:"state"`
	ErrCode int                    `json:"errCode"`
}

type rtmpEventPayload struct {
	URL       string `json:"url"`
	EventCode int    `json:"eventCode"`
}

type audioMixingStatePayload struct {
	State  int `json:"state"`
	Reason int `json:"reason"`
}

type emptyPayload struct{}

var engineEventDecoders = map[string]decoder[RtcEngineEventHandler]{
	"onJoinChannelSuccess": decodeAs(func(p *elapsedPayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnJoinChannelSuccess(p.Connection, p.Elapsed) }
	}),
	"onRejoinChannelSuccess": decodeAs(func(p *elapsedPayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnRejoinChannelSuccess(p.Connection, p.Elapsed) }
	}),
	"onLeaveChannel": decodeAs(func(p *statsPayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnLeaveChannel(p.Connection, p.Stats) }
	}),
	"onRtcStats": decodeAs(func(p *statsPayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnRtcStats(p.Connection, p.Stats) }
	}),
	"onUserJoined": decodeAs(func(p *userJoinedPayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnUserJoined(p.Connection, p.RemoteUID, p.Elapsed) }
	}),
	"onUserOffline": decodeAs(func(p *userOfflinePayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnUserOffline(p.Connection, p.RemoteUID, p.Reason) }
	}),
	"onError": decodeAs(func(p *errorPayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnError(p.Err, p.Msg) }
	}),
	"onConnectionStateChanged": decodeAs(func(p *connectionStatePayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnConnectionStateChanged(p.Connection, p.State, p.Reason) }
	}),
	"onLocalVideoStateChanged": decodeAs(func(p *localVideoStatePayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnLocalVideoStateChanged(p.Source, p.State, p.Error) }
	}),
	"onStreamMessage": decodeAs(func(p *streamMessagePayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) {
			h.OnStreamMessage(p.Connection, p.RemoteUID, p.StreamID, p.Data, p.SentTs)
		}
	}),
	"onStreamMessageError": decodeAs(func(p *streamMessageErrorPayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) {
			h.OnStreamMessageError(p.Connection, p.RemoteUID, p.StreamID, p.Code, p.Missed, p.Cached)
		}
	}),
	"onRtmpStreamingStateChanged": decodeAs(func(p *rtmpStatePayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnRtmpStreamingStateChanged(p.URL, p.State, p.ErrCode) }
	}),
	"onRtmpStreamingEvent": decodeAs(func(p *rtmpEventPayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnRtmpStreamingEvent(p.URL, p.EventCode) }
	}),
	"onTranscodingUpdated": decodeAs(func(*emptyPayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnTranscodingUpdated() }
	}),
	"onAudioMixingStateChanged": decodeAs(func(p *audioMixingStatePayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnAudioMixingStateChanged(p.State, p.Reason) }
	}),
	"onAudioMixingFinished": decodeAs(func(*emptyPayload) func(RtcEngineEventHandler) {
		return func(h RtcEngineEventHandler) { h.OnAudioMixingFinished() }
	}),
}

type metadataPayload struct {
	Metadata frame.Metadata `json:"metadata"`
}

var metadataDecoders = map[string]decoder[MetadataObserver]{
	"onMetadataReceived": decodeAs(func(p *metadataPayload) func(MetadataObserver) {
		return func(o MetadataObserver) { o.OnMetadataReceived(p.Metadata) }
	}),
}

type cdnStatePayload struct {
	State   DirectCdnStreamingState `json:"state"`
	Error   int                     `json:"error"`
	Message string                  `json:"message"`
}

type cdnStatsPayload struct {
	Stats DirectCdnStreamingStats `json:"stats"`
}

var cdnDecoders = map[string]decoder[DirectCdnStreamingEventHandler]{
	"onDirectCdnStreamingStateChanged": decodeAs(func(p *cdnStatePayload) func(DirectCdnStreamingEventHandler) {
		return func(h DirectCdnStreamingEventHandler) {
			h.OnDirectCdnStreamingStateChanged(p.State, p.Error, p.Message)
		}
	}),
	"onDirectCdnStreamingStats": decodeAs(func(p *cdnStatsPayload) func(DirectCdnStreamingEventHandler) {
		return func(h DirectCdnStreamingEventHandler) { h.OnDirectCdnStreamingStats(p.Stats) }
	}),
}

type audioFramePayload struct {
	ChannelID  string           `json:"channelId"`
	UID        uint32           `json:"uid"`
	AudioFrame frame.AudioFrame `json:"audioFrame"`
}

// Every observer of a fan-out gets its own copy of a mutable frame.

var audioFrameDecoders = map[string]decoder[AudioFrameObserver]{
	"onRecordAudioFrame": decodeAs(func(p *audioFramePayload) func(AudioFrameObserver) {
		return func(o AudioFrameObserver) { o.OnRecordAudioFrame(p.ChannelID, p.AudioFrame.Clone()) }
	}),
	"onPlaybackAudioFrame": decodeAs(func(p *audioFramePayload) func(AudioFrameObserver) {
		return func(o AudioFrameObserver) { o.OnPlaybackAudioFrame(p.ChannelID, p.AudioFrame.Clone()) }
	}),
	"onMixedAudioFrame": decodeAs(func(p *audioFramePayload) func(AudioFrameObserver) {
		return func(o AudioFrameObserver) { o.OnMixedAudioFrame(p.ChannelID, p.AudioFrame.Clone()) }
	}),
	"onEarMonitoringAudioFrame": decodeAs(func(p *audioFramePayload) func(AudioFrameObserver) {
		return func(o AudioFrameObserver) { o.OnEarMonitoringAudioFrame(p.AudioFrame.Clone()) }
	}),
	"onPlaybackAudioFrameBeforeMixing": decodeAs(func(p *audioFramePayload) func(AudioFrameObserver) {
		return func(o AudioFrameObserver) {
			o.OnPlaybackAudioFrameBeforeMixing(p.ChannelID, p.UID, p.AudioFrame.Clone())
		}
	}),
}

type videoFramePayload struct {
	SourceType    int              `json:"sourceType"`
	ChannelID     string           `json:"channelId"`
	RemoteUID     uint32           `json:"remoteUid"`
	MediaPlayerID int              `json:"mediaPlayerId"`
	VideoFrame    frame.VideoFrame `json:"videoFrame"`
}

var videoFrameDecoders = map[string]decoder[VideoFrameObserver]{
	"onCaptureVideoFrame": decodeAs(func(p *videoFramePayload) func(VideoFrameObserver) {
		return func(o VideoFrameObserver) { o.OnCaptureVideoFrame(p.SourceType, p.VideoFrame.Clone()) }
	}),
	"onPreEncodeVideoFrame": decodeAs(func(p *videoFramePayload) func(VideoFrameObserver) {
		return func(o VideoFrameObserver) { o.OnPreEncodeVideoFrame(p.SourceType, p.VideoFrame.Clone()) }
	}),
	"onMediaPlayerVideoFrame": decodeAs(func(p *videoFramePayload) func(VideoFrameObserver) {
		return func(o VideoFrameObserver) { o.OnMediaPlayerVideoFrame(p.VideoFrame.Clone(), p.MediaPlayerID) }
	}),
	"onRenderVideoFrame": decodeAs(func(p *videoFramePayload) func(VideoFrameObserver) {
		return func(o VideoFrameObserver) {
			o.OnRenderVideoFrame(p.ChannelID, p.RemoteUID, p.VideoFrame.Clone())
		}
	}),
	"onTranscodedVideoFrame": decodeAs(func(p *videoFramePayload) func(VideoFrameObserver) {
		return func(o VideoFrameObserver) { o.OnTranscodedVideoFrame(p.VideoFrame.Clone()) }
	}),
}

type localSpectrumPayload struct {
	Data frame.AudioSpectrumData `json:"data"`
}

type remoteSpectrumPayload struct {
	Spectrums []frame.UserAudioSpectrumInfo `json:"spectrums"`
}

// spectrumDecoders serve both the engine and the media player spectrum
// categories.
var spectrumDecoders = map[string]decoder[AudioSpectrumObserver]{
	"onLocalAudioSpectrum": decodeAs(func(p *localSpectrumPayload) func(AudioSpectrumObserver) {
		return func(o AudioSpectrumObserver) { o.OnLocalAudioSpectrum(p.Data) }
	}),
	"onRemoteAudioSpectrum": decodeAs(func(p *remoteSpectrumPayload) func(AudioSpectrumObserver) {
		return func(o AudioSpectrumObserver) { o.OnRemoteAudioSpectrum(p.Spectrums) }
	}),
}

type audioEncodedFramePayload struct {
	FrameBuffer bufcodec.Bytes              `json:"frameBuffer"`
	Length      int                         `json:"length"`
	Info        frame.EncodedAudioFrameInfo `json:"audioEncodedFrameInfo"`
}

var audioEncodedFrameDecoders = map[string]decoder[AudioEncodedFrameObserver]{
	"OnRecordAudioEncodedFrame": decodeAs(func(p *audioEncodedFramePayload) func(AudioEncodedFrameObserver) {
		return func(o AudioEncodedFrameObserver) { o.OnRecordAudioEncodedFrame(p.FrameBuffer, p.Info) }
	}),
	"OnPlaybackAudioEncodedFrame": decodeAs(func(p *audioEncodedFramePayload) func(AudioEncodedFrameObserver) {
		return func(o AudioEncodedFrameObserver) { o.OnPlaybackAudioEncodedFrame(p.FrameBuffer, p.Info) }
	}),
	"OnMixedAudioEncodedFrame": decodeAs(func(p *audioEncodedFramePayload) func(AudioEncodedFrameObserver) {
		return func(o AudioEncodedFrameObserver) { o.OnMixedAudioEncodedFrame(p.FrameBuffer, p.Info) }
	}),
}

type videoEncodedFramePayload struct {
	UID         uint32                      `json:"uid"`
	ImageBuffer bufcodec.Bytes              `json:"imageBuffer"`
	Length      int                         `json:"length"`
	Info        frame.EncodedVideoFrameInfo `json:"videoEncodedFrameInfo"`
}

var videoEncodedFrameDecoders = map[string]decoder[VideoEncodedFrameObserver]{
	"OnEncodedVideoFrameReceived": decodeAs(func(p *videoEncodedFramePayload) func(VideoEncodedFrameObserver) {
		return func(o VideoEncodedFrameObserver) { o.OnEncodedVideoFrameReceived(p.UID, p.ImageBuffer, p.Info) }
	}),
}

type playerStatePayload struct {
	State MediaPlayerState `json:"state"`
	Ec    MediaPlayerError `json:"ec"`
}

type playerPositionPayload struct {
	PositionMs int64 `json:"position_ms"`
}

type playerEventPayload struct {
	EventCode   MediaPlayerEvent `json:"eventCode"`
	ElapsedTime int64            `json:"elapsedTime"`
	Message     string           `json:"message"`
}

type playerVolumePayload struct {
	Volume int `json:"volume"`
}

var playerSourceDecoders = map[string]decoder[MediaPlayerSourceObserver]{
	"onPlayerSourceStateChanged": decodeAs(func(p *playerStatePayload) func(MediaPlayerSourceObserver) {
		return func(o MediaPlayerSourceObserver) { o.OnPlayerSourceStateChanged(p.State, p.Ec) }
	}),
	"onPositionChanged": decodeAs(func(p *playerPositionPayload) func(MediaPlayerSourceObserver) {
		return func(o MediaPlayerSourceObserver) { o.OnPositionChanged(p.PositionMs) }
	}),
	"onPlayerEvent": decodeAs(func(p *playerEventPayload) func(MediaPlayerSourceObserver) {
		return func(o MediaPlayerSourceObserver) { o.OnPlayerEvent(p.EventCode, p.ElapsedTime, p.Message) }
	}),
	"onCompleted": decodeAs(func(*emptyPayload) func(MediaPlayerSourceObserver) {
		return func(o MediaPlayerSourceObserver) { o.OnCompleted() }
	}),
	"onAudioVolumeIndication": decodeAs(func(p *playerVolumePayload) func(MediaPlayerSourceObserver) {
		return func(o MediaPlayerSourceObserver) { o.OnAudioVolumeIndication(p.Volume) }
	}),
}

type playerAudioFramePayload struct {
	Frame frame.AudioPcmFrame `json:"frame"`
}

var playerAudioFrameDecoders = map[string]decoder[MediaPlayerAudioFrameObserver]{
	"onFrame": decodeAs(func(p *playerAudioFramePayload) func(MediaPlayerAudioFrameObserver) {
		return func(o MediaPlayerAudioFrameObserver) {
			f := p.Frame
			f.Data = append([]int16(nil), p.Frame.Data...)
			o.OnFrame(&f)
		}
	}),
}

type playerVideoFramePayload struct {
	Frame frame.VideoFrame `json:"frame"`
}

var playerVideoFrameDecoders = map[string]decoder[MediaPlayerVideoFrameObserver]{
	"onFrame": decodeAs(func(p *playerVideoFramePayload) func(MediaPlayerVideoFrameObserver) {
		return func(o MediaPlayerVideoFrameObserver) { o.OnFrame(p.Frame.Clone()) }
	}),
}

type recorderStatePayload struct {
	ChannelID string            `json:"channelId"`
	UID       uint32            `json:"uid"`
	State     RecorderState     `json:"state"`
	Error     RecorderErrorCode `json:"error"`
}

type recorderInfoPayload struct {
	ChannelID string       `json:"channelId"`
	UID       uint32       `json:"uid"`
	Info      RecorderInfo `json:"info"`
}

var recorderDecoders = map[string]decoder[MediaRecorderObserver]{
	"onRecorderStateChanged": decodeAs(func(p *recorderStatePayload) func(MediaRecorderObserver) {
		return func(o MediaRecorderObserver) { o.OnRecorderStateChanged(p.ChannelID, p.UID, p.State, p.Error) }
	}),
	"onRecorderInfoUpdated": decodeAs(func(p *recorderInfoPayload) func(MediaRecorderObserver) {
		return func(o MediaRecorderObserver) { o.OnRecorderInfoUpdated(p.ChannelID, p.UID, p.Info) }
	}),
}
