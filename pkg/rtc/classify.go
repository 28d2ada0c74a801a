package rtc

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Category is the observer family an inbound event belongs to.
type Category int

const (
	// CategoryUnknown marks events that name an observer family but cannot
	// be routed, such as spectrum events without an owner sub-prefix.
	CategoryUnknown Category = iota
	CategoryAudioFrame
	CategoryVideoFrame
	CategoryEngineAudioSpectrum
	CategoryPlayerAudioSpectrum
	CategoryAudioEncodedFrame
	CategoryVideoEncodedFrame
	CategoryPlayerSource
	CategoryPlayerAudioFrame
	CategoryPlayerVideoFrame
	CategoryMediaRecorder
	CategoryMetadata
	CategoryDirectCdnStreaming
	// CategoryEngineEvent is the fallback for every event without a
	// recognised observer prefix.
	CategoryEngineEvent
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryAudioFrame:
		return "AudioFrameObserver"
	case CategoryVideoFrame:
		return "VideoFrameObserver"
	case CategoryEngineAudioSpectrum:
		return "AudioSpectrumObserver(RtcEngine)"
	case CategoryPlayerAudioSpectrum:
		return "AudioSpectrumObserver(MediaPlayer)"
	case CategoryAudioEncodedFrame:
		return "AudioEncodedFrameObserver"
	case CategoryVideoEncodedFrame:
		return "VideoEncodedFrameObserver"
	case CategoryPlayerSource:
		return "MediaPlayerSourceObserver"
	case CategoryPlayerAudioFrame:
		return "MediaPlayerAudioFrameObserver"
	case CategoryPlayerVideoFrame:
		return "MediaPlayerVideoFrameObserver"
	case CategoryMediaRecorder:
		return "MediaRecorderObserver"
	case CategoryMetadata:
		return "MetadataObserver"
	case CategoryDirectCdnStreaming:
		return "DirectCdnStreamingEventHandler"
	case CategoryEngineEvent:
		return "RtcEngineEventHandler"
	default:
		return "Unknown"
	}
}

// Scope is how a category selects its registry bucket.
type Scope int

const (
	// ScopeGlobal categories fan out to every observer of the engine.
	ScopeGlobal Scope = iota
	// ScopePlayer categories are keyed by the payload's playerId.
	ScopePlayer
	// ScopeRecorder categories are keyed by the payload's connection.
	ScopeRecorder
)

// Scope returns how events of this category are scoped.
func (c Category) Scope() Scope {
	switch c {
	case CategoryPlayerAudioSpectrum, CategoryPlayerSource, CategoryPlayerAudioFrame, CategoryPlayerVideoFrame:
		return ScopePlayer
	case CategoryMediaRecorder:
		return ScopeRecorder
	default:
		return ScopeGlobal
	}
}

// Route is the classification of one event name.
type Route struct {
	Category Category
	// Callback is the observer method name, with every prefix and, for
	// engine events, the Ex suffix removed.
	Callback string
}

const (
	audioFrameObserverPrefix        = "AudioFrameObserver_"
	videoFrameObserverPrefix        = "VideoFrameObserver_"
	audioSpectrumObserverMarker     = "AudioSpectrumObserver_"
	audioEncodedFrameObserverPrefix = "AudioEncodedFrameObserver_"
	videoEncodedFrameObserverPrefix = "VideoEncodedFrameObserver_"
	playerSourceObserverPrefix      = "MediaPlayerSourceObserver_"
	playerAudioFrameObserverPrefix  = "MediaPlayerAudioFrameObserver_"
	playerVideoFrameObserverPrefix  = "MediaPlayerVideoFrameObserver_"
	mediaRecorderObserverMarker     = "MediaRecorderObserver_"
	metadataObserverPrefix          = "MetadataObserver_"
	cdnStreamingHandlerPrefix       = "DirectCdnStreamingEventHandler_"

	spectrumEngineSubPrefix = "RtcEngine_"
	spectrumPlayerSubPrefix = "MediaPlayer_"
)

// Classify maps an event name to its category and callback name. Prefixes
// are checked in a fixed priority order; spectrum and recorder markers may
// appear anywhere in the name.
func Classify(event string) Route {
	switch {
	case strings.HasPrefix(event, audioFrameObserverPrefix):
		return Route{CategoryAudioFrame, strings.TrimPrefix(event, audioFrameObserverPrefix)}
	case strings.HasPrefix(event, videoFrameObserverPrefix):
		return Route{CategoryVideoFrame, strings.TrimPrefix(event, videoFrameObserverPrefix)}
	case strings.Contains(event, audioSpectrumObserverMarker):
		rest := strings.Replace(event, audioSpectrumObserverMarker, "", 1)
		switch {
		case strings.HasPrefix(rest, spectrumEngineSubPrefix):
			return Route{CategoryEngineAudioSpectrum, strings.TrimPrefix(rest, spectrumEngineSubPrefix)}
		case strings.HasPrefix(rest, spectrumPlayerSubPrefix):
			return Route{CategoryPlayerAudioSpectrum, strings.TrimPrefix(rest, spectrumPlayerSubPrefix)}
		default:
			return Route{CategoryUnknown, rest}
		}
	case strings.HasPrefix(event, audioEncodedFrameObserverPrefix):
		return Route{CategoryAudioEncodedFrame, strings.TrimPrefix(event, audioEncodedFrameObserverPrefix)}
	case strings.HasPrefix(event, videoEncodedFrameObserverPrefix):
		return Route{CategoryVideoEncodedFrame, strings.TrimPrefix(event, videoEncodedFrameObserverPrefix)}
	case strings.HasPrefix(event, playerSourceObserverPrefix):
		return Route{CategoryPlayerSource, strings.TrimPrefix(event, playerSourceObserverPrefix)}
	case strings.HasPrefix(event, playerAudioFrameObserverPrefix):
		return Route{CategoryPlayerAudioFrame, strings.TrimPrefix(event, playerAudioFrameObserverPrefix)}
	case strings.HasPrefix(event, playerVideoFrameObserverPrefix):
		return Route{CategoryPlayerVideoFrame, strings.TrimPrefix(event, playerVideoFrameObserverPrefix)}
	case strings.Contains(event, mediaRecorderObserverMarker):
		return Route{CategoryMediaRecorder, strings.Replace(event, mediaRecorderObserverMarker, "", 1)}
	case strings.HasPrefix(event, metadataObserverPrefix):
		return Route{CategoryMetadata, strings.TrimPrefix(event, metadataObserverPrefix)}
	case strings.HasPrefix(event, cdnStreamingHandlerPrefix):
		return Route{CategoryDirectCdnStreaming, strings.TrimPrefix(event, cdnStreamingHandlerPrefix)}
	default:
		return Route{CategoryEngineEvent, strings.TrimSuffix(event, "Ex")}
	}
}

// playerKey extracts the media player id an event is addressed to.
func playerKey(data []byte) (int, bool) {
	v := gjson.GetBytes(data, "playerId")
	if v.Type != gjson.Number {
		return 0, false
	}
	return int(v.Int()), true
}

// recorderKey extracts the recorder key (channel id followed by local uid)
// an event is addressed to.
func recorderKey(data []byte) (string, bool) {
	conn := gjson.GetBytes(data, "connection")
	if !conn.IsObject() {
		return "", false
	}
	uid := conn.Get("localUid")
	if uid.Type != gjson.Number {
		return "", false
	}
	return conn.Get("channelId").String() + strconv.FormatUint(uid.Uint(), 10), true
}

// RecorderKey returns the registry key of the recorder bound to conn.
func RecorderKey(conn RtcConnection) string {
	return conn.ChannelID + strconv.FormatUint(uint64(conn.LocalUID), 10)
}
