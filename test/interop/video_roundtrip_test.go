package interop

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"

	pionwebrtc "github.com/pion/webrtc/v4"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/thesyncim/rtcbridge/internal/testutil"
	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
	"github.com/thesyncim/rtcbridge/pkg/codec"
	"github.com/thesyncim/rtcbridge/pkg/frame"
	"github.com/thesyncim/rtcbridge/pkg/rtc"
	"github.com/thesyncim/rtcbridge/pkg/track"
)

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("interop tests open real sockets")
	}
}

func vp8Keyframe(n int) []byte {
	return append([]byte{0x00, 0x9D, 0x01, 0x2A}, bytes.Repeat([]byte{byte(n)}, 2500)...)
}

// TestOfferCarriesEncodedTrack checks that an EncodedVideoTrack negotiates
// as a regular video sender.
func TestOfferCarriesEncodedTrack(t *testing.T) {
	skipShort(t)
	log, _ := logtest.NewNullLogger()

	pp := NewPeerPair(t)
	tr, err := track.NewEncodedVideoTrack(track.EncodedTrackConfig{ID: "video", Codec: codec.VideoCodecVP8, Logger: log})
	require.NoError(t, err)
	defer tr.Close()

	_, err = pp.Sender.AddTrack(tr)
	require.NoError(t, err)
	require.NoError(t, pp.ExchangeOfferAnswer())

	offer := pp.Sender.LocalDescription().SDP
	MustContain(t, offer, "video")
	assert.Contains(t, offer, "VP8/90000")
	MustContain(t, pp.Receiver.LocalDescription().SDP, "video")
}

// TestEncodedVideoRoundtrip sends images the engine reports as received
// through a Pion peer and pushes what arrives back into the engine.
func TestEncodedVideoRoundtrip(t *testing.T) {
	skipShort(t)
	log, _ := logtest.NewNullLogger()

	ft := testutil.NewFakeTransport()
	engine := rtc.NewRtcEngine(ft, rtc.WithLogger(log))
	media := engine.GetMediaEngine()

	tr, err := track.NewEncodedVideoTrack(track.EncodedTrackConfig{
		ID:     "video",
		Codec:  codec.VideoCodecVP8,
		UID:    1001,
		MTU:    600,
		Logger: log,
	})
	require.NoError(t, err)
	defer tr.Close()
	require.NoError(t, tr.Attach(media))
	defer tr.Detach(media)

	pp := NewPeerPair(t)
	_, err = pp.Sender.AddTrack(tr)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), interopConnectTimeout)
	defer cancel()

	pusherDone := make(chan error, 1)
	pp.Receiver.OnTrack(func(remote *pionwebrtc.TrackRemote, _ *pionwebrtc.RTPReceiver) {
		c, ok := codec.VideoCodecFromMimeType(remote.Codec().MimeType)
		if !ok {
			pusherDone <- track.ErrUnsupportedCodec
			return
		}
		p, err := track.NewPusher(media, track.PusherConfig{Codec: c, VideoTrackID: 3, UID: 1001, Logger: log})
		if err != nil {
			pusherDone <- err
			return
		}
		pusherDone <- p.Run(ctx, remote)
	})

	require.NoError(t, pp.ExchangeOfferAnswer())
	require.True(t, pp.WaitForConnection(interopConnectTimeout), "peers did not connect")

	// Emit keyframes as the engine would until three come back.
	var sent [][]byte
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; len(ft.CallsTo("MediaEngine_pushEncodedVideoImage")) < 3; i++ {
		select {
		case <-ctx.Done():
			t.Fatalf("only %d images pushed back", len(ft.CallsTo("MediaEngine_pushEncodedVideoImage")))
		case <-ticker.C:
		}
		image := vp8Keyframe(i)
		sent = append(sent, image)
		data := `{"uid":1001,"length":` + strconv.Itoa(len(image)) +
			`,"videoEncodedFrameInfo":{"codecType":1,"frameType":3,"captureTimeMs":` + strconv.Itoa(1000+20*i) + `}}`
		ft.Emit("VideoEncodedFrameObserver_OnEncodedVideoFrameReceived", data, bufcodec.Encode(image))
	}
	cancel()

	forwarded, _ := tr.Stats()
	assert.GreaterOrEqual(t, forwarded, uint64(3))

	calls := ft.CallsTo("MediaEngine_pushEncodedVideoImage")
	for _, call := range calls {
		require.Len(t, call.Buffers, 1)
		got, err := bufcodec.Decode(call.Buffers[0])
		require.NoError(t, err)

		// Every pushed image is one of the sent images, byte for byte.
		found := false
		for _, s := range sent {
			if bytes.Equal(s, got) {
				found = true
				break
			}
		}
		assert.True(t, found, "pushed image of %d bytes was never sent", len(got))
		assert.Equal(t, int64(3), gjson.Get(call.Params, "videoTrackId").Int())
		assert.Equal(t, int64(frame.VideoFrameTypeKey), gjson.Get(call.Params, "videoEncodedFrameInfo.frameType").Int())
	}

	// Closing the receiver unblocks the pending read.
	pp.Close()
	select {
	case <-pusherDone:
	case <-time.After(interopConnectTimeout):
		t.Fatal("pusher did not stop")
	}
}

// TestEncodedTrackIgnoresOtherUsers checks the uid filter holds on a live
// connection.
func TestEncodedTrackIgnoresOtherUsers(t *testing.T) {
	skipShort(t)
	log, _ := logtest.NewNullLogger()

	ft := testutil.NewFakeTransport()
	engine := rtc.NewRtcEngine(ft, rtc.WithLogger(log))

	tr, err := track.NewEncodedVideoTrack(track.EncodedTrackConfig{ID: "video", Codec: codec.VideoCodecVP8, UID: 1, Logger: log})
	require.NoError(t, err)
	defer tr.Close()
	require.NoError(t, tr.Attach(engine.GetMediaEngine()))

	pp := NewPeerPair(t)
	_, err = pp.Sender.AddTrack(tr)
	require.NoError(t, err)
	require.NoError(t, pp.ExchangeOfferAnswer())
	require.True(t, pp.WaitForConnection(interopConnectTimeout), "peers did not connect")

	image := vp8Keyframe(1)
	data := `{"uid":2,"length":` + strconv.Itoa(len(image)) + `,"videoEncodedFrameInfo":{"codecType":1,"frameType":3}}`
	for i := 0; i < 5; i++ {
		ft.Emit("VideoEncodedFrameObserver_OnEncodedVideoFrameReceived", data, bufcodec.Encode(image))
	}

	forwarded, _ := tr.Stats()
	assert.Zero(t, forwarded)
}
