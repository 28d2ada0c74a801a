package bufcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCallContract_Slots(t *testing.T) {
	tests := []struct {
		funcName string
		want     Contract
	}{
		{"MediaEngine_pushAudioFrame", Contract{"frame.buffer"}},
		{"MediaEngine_pushCaptureAudioFrame", Contract{"frame.buffer"}},
		{"MediaEngine_pushReverseAudioFrame", Contract{"frame.buffer"}},
		{"MediaEngine_pushDirectAudioFrame", Contract{"frame.buffer"}},
		{"MediaEngine_pushVideoFrame", Contract{"frame.buffer", "frame.eglContext", "frame.metadata_buffer"}},
		{"MediaEngine_pushEncodedVideoImage", Contract{"imageBuffer"}},
		{"RtcEngine_sendMetaData", Contract{"metadata.buffer"}},
		{"RtcEngine_sendStreamMessage", Contract{"data"}},
		{"RtcEngine_sendStreamMessageEx", Contract{"data"}},
		{"RtcEngine_joinChannel", nil},
		{"MediaPlayer_open", nil},
	}

	for _, tt := range tests {
		t.Run(tt.funcName, func(t *testing.T) {
			assert.Equal(t, tt.want, CallContract(tt.funcName))
		})
	}
}

func TestEventContract_Slots(t *testing.T) {
	tests := []struct {
		event string
		slots int
		first string
	}{
		{"AudioFrameObserver_onRecordAudioFrame", 1, "audioFrame.buffer"},
		{"AudioFrameObserver_onPlaybackAudioFrame", 1, "audioFrame.buffer"},
		{"AudioFrameObserver_onMixedAudioFrame", 1, "audioFrame.buffer"},
		{"AudioFrameObserver_onEarMonitoringAudioFrame", 1, "audioFrame.buffer"},
		{"AudioFrameObserver_onPlaybackAudioFrameBeforeMixing", 1, "audioFrame.buffer"},
		{"VideoFrameObserver_onCaptureVideoFrame", 5, "videoFrame.yBuffer"},
		{"VideoFrameObserver_onPreEncodeVideoFrame", 5, "videoFrame.yBuffer"},
		{"VideoFrameObserver_onMediaPlayerVideoFrame", 5, "videoFrame.yBuffer"},
		{"VideoFrameObserver_onRenderVideoFrame", 5, "videoFrame.yBuffer"},
		{"VideoFrameObserver_onTranscodedVideoFrame", 5, "videoFrame.yBuffer"},
		{"MediaPlayerVideoFrameObserver_onFrame", 5, "frame.yBuffer"},
		{"AudioEncodedFrameObserver_OnRecordAudioEncodedFrame", 1, "frameBuffer"},
		{"AudioEncodedFrameObserver_OnPlaybackAudioEncodedFrame", 1, "frameBuffer"},
		{"AudioEncodedFrameObserver_OnMixedAudioEncodedFrame", 1, "frameBuffer"},
		{"VideoEncodedFrameObserver_OnEncodedVideoFrameReceived", 1, "imageBuffer"},
		{"MetadataObserver_onMetadataReceived", 1, "metadata.buffer"},
		{"onStreamMessage", 1, "data"},
		{"onStreamMessageEx", 1, "data"},
		{"onJoinChannelSuccess", 0, ""},
		{"MediaPlayerAudioFrameObserver_onFrame", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			c := EventContract(tt.event)
			require.Equal(t, tt.slots, c.Slots())
			if tt.slots > 0 {
				assert.Equal(t, tt.first, c[0])
			}
		})
	}
}

func TestEventContract_VideoPlaneOrder(t *testing.T) {
	assert.Equal(t, Contract{
		"frame.yBuffer", "frame.uBuffer", "frame.vBuffer", "frame.metadata_buffer", "frame.alphaBuffer",
	}, EventContract("MediaPlayerVideoFrameObserver_onFrame"))
}

func TestExtract_PushVideoFramePlaceholders(t *testing.T) {
	params := []byte(`{"frame":{"type":1,"stride":4,"buffer":"AQID"},"videoTrackId":0}`)

	out, bufs, err := Extract(CallContract("MediaEngine_pushVideoFrame"), params)
	require.NoError(t, err)
	assert.Equal(t, []string{"AQID", "", ""}, bufs)
	assert.False(t, gjson.GetBytes(out, "frame.buffer").Exists())
	assert.Equal(t, int64(4), gjson.GetBytes(out, "frame.stride").Int())
}

func TestExtract_MissingFieldKeepsPosition(t *testing.T) {
	tests := []struct {
		name   string
		params string
	}{
		{"absent", `{"frame":{"samplesPerChannel":480}}`},
		{"null", `{"frame":{"buffer":null}}`},
		{"no parent", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bufs, err := Extract(CallContract("MediaEngine_pushAudioFrame"), []byte(tt.params))
			require.NoError(t, err)
			assert.Equal(t, []string{""}, bufs)
		})
	}
}

func TestExtract_RejectsNonString(t *testing.T) {
	_, _, err := Extract(Contract{"data"}, []byte(`{"data":[1,2,3]}`))
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}

func TestExtract_NilContract(t *testing.T) {
	params := []byte(`{"a":1}`)
	out, bufs, err := Extract(nil, params)
	require.NoError(t, err)
	assert.Empty(t, bufs)
	assert.JSONEq(t, `{"a":1}`, string(out))
}

func TestSplice_AudioFrame(t *testing.T) {
	data := []byte(`{"channelId":"c","audioFrame":{"samplesPerChannel":2}}`)
	out, err := Splice(EventContract("AudioFrameObserver_onRecordAudioFrame"), data, []string{"AAECAw=="})
	require.NoError(t, err)
	assert.Equal(t, "AAECAw==", gjson.GetBytes(out, "audioFrame.buffer").Str)
}

func TestSplice_SkipsMissingParent(t *testing.T) {
	data := []byte(`{"channelId":"c"}`)
	out, err := Splice(EventContract("AudioFrameObserver_onRecordAudioFrame"), data, []string{"AAECAw=="})
	require.NoError(t, err)
	assert.JSONEq(t, `{"channelId":"c"}`, string(out))
}

func TestSplice_TopLevelPath(t *testing.T) {
	out, err := Splice(EventContract("onStreamMessage"), []byte(`{}`), []string{"aGk="})
	require.NoError(t, err)
	assert.Equal(t, "aGk=", gjson.GetBytes(out, "data").Str)
}

func TestSplice_PartialBuffers(t *testing.T) {
	data := []byte(`{"videoFrame":{"width":2}}`)
	out, err := Splice(EventContract("VideoFrameObserver_onCaptureVideoFrame"), data, []string{"AQ==", "Ag==", "Aw=="})
	require.NoError(t, err)
	assert.Equal(t, "AQ==", gjson.GetBytes(out, "videoFrame.yBuffer").Str)
	assert.Equal(t, "Ag==", gjson.GetBytes(out, "videoFrame.uBuffer").Str)
	assert.Equal(t, "Aw==", gjson.GetBytes(out, "videoFrame.vBuffer").Str)
	assert.False(t, gjson.GetBytes(out, "videoFrame.alphaBuffer").Exists())
}

func TestSplice_InvalidBuffer(t *testing.T) {
	_, err := Splice(Contract{"data"}, []byte(`{}`), []string{"@@"})
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}

func TestExtractSplice_RoundTrip(t *testing.T) {
	params := []byte(`{"streamId":3,"data":"c3RyZWFt","length":6}`)
	c := CallContract("RtcEngine_sendStreamMessage")

	stripped, bufs, err := Extract(c, params)
	require.NoError(t, err)

	restored, err := Splice(c, stripped, bufs)
	require.NoError(t, err)
	assert.JSONEq(t, string(params), string(restored))
}
