package bufcodec

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Contract is the ordered list of JSON paths whose binary values travel as
// separate buffers. Position i of the buffer list always belongs to path i.
type Contract []string

// Slots returns the number of buffer positions the contract occupies.
func (c Contract) Slots() int {
	return len(c)
}

var (
	audioFrameSlots     = Contract{"frame.buffer"}
	pushVideoFrameSlots = Contract{"frame.buffer", "frame.eglContext", "frame.metadata_buffer"}
	encodedImageSlots   = Contract{"imageBuffer"}
	sendMetadataSlots   = Contract{"metadata.buffer"}
	streamMessageSlots  = Contract{"data"}

	observedAudioFrameSlots = Contract{"audioFrame.buffer"}
	observedVideoFrameSlots = Contract{
		"videoFrame.yBuffer",
		"videoFrame.uBuffer",
		"videoFrame.vBuffer",
		"videoFrame.metadata_buffer",
		"videoFrame.alphaBuffer",
	}
	playerVideoFrameSlots = Contract{
		"frame.yBuffer",
		"frame.uBuffer",
		"frame.vBuffer",
		"frame.metadata_buffer",
		"frame.alphaBuffer",
	}
	encodedAudioFrameSlots = Contract{"frameBuffer"}
	receivedMetadataSlots  = Contract{"metadata.buffer"}
)

// callContracts lists every outgoing call that carries binary fields.
var callContracts = map[string]Contract{
	"MediaEngine_pushAudioFrame":        audioFrameSlots,
	"MediaEngine_pushCaptureAudioFrame": audioFrameSlots,
	"MediaEngine_pushReverseAudioFrame": audioFrameSlots,
	"MediaEngine_pushDirectAudioFrame":  audioFrameSlots,
	"MediaEngine_pushVideoFrame":        pushVideoFrameSlots,
	"MediaEngine_pushEncodedVideoImage": encodedImageSlots,
	"RtcEngine_sendMetaData":            sendMetadataSlots,
	"RtcEngine_sendStreamMessage":       streamMessageSlots,
	"RtcEngine_sendStreamMessageEx":     streamMessageSlots,
}

// eventContracts lists every incoming event, by its full wire name, whose
// payload is missing binary fields until the buffer list is spliced back in.
var eventContracts = map[string]Contract{
	"AudioFrameObserver_onRecordAudioFrame":               observedAudioFrameSlots,
	"AudioFrameObserver_onPlaybackAudioFrame":             observedAudioFrameSlots,
	"AudioFrameObserver_onMixedAudioFrame":                observedAudioFrameSlots,
	"AudioFrameObserver_onEarMonitoringAudioFrame":        observedAudioFrameSlots,
	"AudioFrameObserver_onPlaybackAudioFrameBeforeMixing": observedAudioFrameSlots,

	"VideoFrameObserver_onCaptureVideoFrame":     observedVideoFrameSlots,
	"VideoFrameObserver_onPreEncodeVideoFrame":   observedVideoFrameSlots,
	"VideoFrameObserver_onMediaPlayerVideoFrame": observedVideoFrameSlots,
	"VideoFrameObserver_onRenderVideoFrame":      observedVideoFrameSlots,
	"VideoFrameObserver_onTranscodedVideoFrame":  observedVideoFrameSlots,

	"MediaPlayerVideoFrameObserver_onFrame": playerVideoFrameSlots,

	"AudioEncodedFrameObserver_OnRecordAudioEncodedFrame":   encodedAudioFrameSlots,
	"AudioEncodedFrameObserver_OnPlaybackAudioEncodedFrame": encodedAudioFrameSlots,
	"AudioEncodedFrameObserver_OnMixedAudioEncodedFrame":    encodedAudioFrameSlots,

	"VideoEncodedFrameObserver_OnEncodedVideoFrameReceived": encodedImageSlots,

	"MetadataObserver_onMetadataReceived": receivedMetadataSlots,

	"onStreamMessage":   streamMessageSlots,
	"onStreamMessageEx": streamMessageSlots,
}

// CallContract returns the buffer contract of an outgoing call, or nil when the
// call carries no binary fields.
func CallContract(funcName string) Contract {
	return callContracts[funcName]
}

// EventContract returns the buffer contract of an incoming event, or nil when
// the event carries no binary fields.
func EventContract(event string) Contract {
	return eventContracts[event]
}

// Extract removes every contract path from params and returns the stripped
// JSON together with the buffer list in contract order. A path that is absent
// or null still occupies its position with an empty buffer.
func Extract(c Contract, params []byte) ([]byte, []string, error) {
	buffers := make([]string, 0, len(c))
	for _, path := range c {
		r := gjson.GetBytes(params, path)
		switch {
		case !r.Exists() || r.Type == gjson.Null:
			buffers = append(buffers, Encode(nil))
		case r.Type == gjson.String:
			if _, err := Decode(r.Str); err != nil {
				return nil, nil, fmt.Errorf("%s: %w", path, err)
			}
			buffers = append(buffers, r.Str)
		default:
			return nil, nil, fmt.Errorf("%s: %w: got %s", path, ErrInvalidBuffer, r.Type)
		}
		if r.Exists() {
			stripped, err := sjson.DeleteBytes(params, path)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", path, err)
			}
			params = stripped
		}
	}
	return params, buffers, nil
}

// Splice writes buffers back into data at the contract paths. A nested path is
// only written when its parent object is present, and positions beyond the
// supplied buffers are left alone.
func Splice(c Contract, data []byte, buffers []string) ([]byte, error) {
	for i, path := range c {
		if i >= len(buffers) {
			break
		}
		if parent, ok := parentPath(path); ok && !gjson.GetBytes(data, parent).IsObject() {
			continue
		}
		if _, err := Decode(buffers[i]); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		spliced, err := sjson.SetBytes(data, path, buffers[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		data = spliced
	}
	return data, nil
}

func parentPath(path string) (string, bool) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", false
	}
	return path[:i], true
}
