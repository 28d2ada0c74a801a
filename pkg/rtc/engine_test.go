package rtc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
	"github.com/thesyncim/rtcbridge/pkg/frame"
	"github.com/thesyncim/rtcbridge/pkg/rtc"
)

func TestRegisterTwice_OneEntryTwoNativeCalls(t *testing.T) {
	e, ft, _ := newEngine(t)
	h := &recordingEventHandler{}

	require.NoError(t, e.RegisterEventHandler(h))
	require.NoError(t, e.RegisterEventHandler(h))

	assert.Len(t, e.Observers().EngineEventHandlers(), 1)
	assert.Len(t, ft.CallsTo("RtcEngine_registerEventHandler"), 2)

	ft.Emit("onJoinChannelSuccess", `{}`)
	assert.Len(t, h.joins, 1)
}

func TestUnregister_AbsentBucketStillForwards(t *testing.T) {
	e, ft, _ := newEngine(t)

	err := e.UnregisterEventHandler(&recordingEventHandler{})
	assert.ErrorIs(t, err, rtc.ErrObserverNotRegistered)
	assert.Len(t, ft.CallsTo("RtcEngine_unregisterEventHandler"), 1)
}

func TestUnregister_StopsDelivery(t *testing.T) {
	e, ft, _ := newEngine(t)
	h := &recordingEventHandler{}
	require.NoError(t, e.RegisterEventHandler(h))
	require.NoError(t, e.UnregisterEventHandler(h))

	ft.Emit("onJoinChannelSuccess", `{}`)
	assert.Empty(t, h.joins)
	assert.Empty(t, e.Observers().EngineEventHandlers())
}

func TestRegister_NilObserver(t *testing.T) {
	e, ft, _ := newEngine(t)

	assert.ErrorIs(t, e.RegisterEventHandler(nil), rtc.ErrNilObserver)
	assert.Empty(t, ft.Calls())
}

func TestRegister_RollsBackOnNegativeResult(t *testing.T) {
	e, ft, _ := newEngine(t)
	ft.Reply("RtcEngine_registerEventHandler", `{"result":-2}`)

	err := e.RegisterEventHandler(&recordingEventHandler{})

	var resErr *rtc.ResultError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "RtcEngine_registerEventHandler", resErr.FuncName)
	assert.Equal(t, -2, resErr.Code)
	assert.Empty(t, e.Observers().EngineEventHandlers())
}

func TestRegister_RollsBackOnTransportError(t *testing.T) {
	e, ft, _ := newEngine(t)
	boom := errors.New("boom")
	ft.Fail("RtcEngine_registerEventHandler", boom)

	err := e.RegisterEventHandler(&recordingEventHandler{})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, e.Observers().EngineEventHandlers())
}

func TestRegister_FailedReRegistrationKeepsExistingEntry(t *testing.T) {
	e, ft, _ := newEngine(t)
	h := &recordingEventHandler{}
	require.NoError(t, e.RegisterEventHandler(h))

	ft.Reply("RtcEngine_registerEventHandler", `{"result":-1}`)
	assert.Error(t, e.RegisterEventHandler(h))
	assert.Len(t, e.Observers().EngineEventHandlers(), 1)
}

func TestUnregister_RollsBackOnFailure(t *testing.T) {
	e, ft, _ := newEngine(t)
	a, b := &recordingEventHandler{}, &recordingEventHandler{}
	require.NoError(t, e.RegisterEventHandler(a))
	require.NoError(t, e.RegisterEventHandler(b))

	ft.Reply("RtcEngine_unregisterEventHandler", `{"result":-1}`)
	assert.Error(t, e.UnregisterEventHandler(a))

	handlers := e.Observers().EngineEventHandlers()
	require.Len(t, handlers, 2)
	assert.Same(t, a, handlers[0], "restored observer keeps its position")
	assert.Same(t, b, handlers[1])
}

// sliceHandler is a value observer whose type cannot be compared with ==.
type sliceHandler struct {
	rtc.BaseRtcEngineEventHandler
	tags []string
}

func TestRegister_RejectsUncomparableObserver(t *testing.T) {
	e, ft, _ := newEngine(t)
	h := sliceHandler{tags: []string{"a"}}

	assert.NotPanics(t, func() {
		assert.ErrorIs(t, e.RegisterEventHandler(h), rtc.ErrObserverNotComparable)
		assert.ErrorIs(t, e.RegisterEventHandler(h), rtc.ErrObserverNotComparable)
		assert.ErrorIs(t, e.UnregisterEventHandler(h), rtc.ErrObserverNotComparable)
	})
	assert.Empty(t, e.Observers().EngineEventHandlers())
	assert.Empty(t, ft.CallsTo("RtcEngine_registerEventHandler"))
	assert.Empty(t, ft.CallsTo("RtcEngine_unregisterEventHandler"))

	require.NoError(t, e.RegisterEventHandler(&h), "a pointer to the same value is accepted")
}

func TestInitializeAndRelease(t *testing.T) {
	e, ft, _ := newEngine(t)
	h := &recordingEventHandler{}
	require.NoError(t, e.RegisterEventHandler(h))

	require.NoError(t, e.Initialize(rtc.RtcEngineContext{AppID: "app", ChannelProfile: rtc.ChannelProfileLiveBroadcasting}))
	call := ft.CallsTo("RtcEngine_initialize")[0]
	assert.Equal(t, "app", gjson.Get(call.Params, "context.appId").String())
	assert.Equal(t, int64(1), gjson.Get(call.Params, "context.channelProfile").Int())

	require.NoError(t, e.Release(true))
	created, destroyed := ft.ContextCounts()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, destroyed)
	assert.True(t, e.Released())
	assert.Empty(t, e.Observers().EngineEventHandlers())

	ft.Emit("onJoinChannelSuccess", `{}`)
	assert.Empty(t, h.joins)
}

func TestRelease_ResetsEvenWhenCallFails(t *testing.T) {
	e, ft, _ := newEngine(t)
	require.NoError(t, e.RegisterEventHandler(&recordingEventHandler{}))
	ft.Fail("RtcEngine_release", errors.New("boom"))

	assert.Error(t, e.Release(false))
	assert.Empty(t, e.Observers().EngineEventHandlers())
	_, destroyed := ft.ContextCounts()
	assert.Equal(t, 1, destroyed)
}

func TestJoinChannel(t *testing.T) {
	e, ft, _ := newEngine(t)
	role := rtc.ClientRoleBroadcaster

	require.NoError(t, e.JoinChannel("tok", "room", 42, rtc.ChannelMediaOptions{ClientRoleType: &role}))

	call, _ := ft.LastCall()
	assert.Equal(t, "RtcEngine_joinChannel", call.FuncName)
	assert.Equal(t, "room", gjson.Get(call.Params, "channelId").String())
	assert.Equal(t, int64(42), gjson.Get(call.Params, "uid").Int())
	assert.Equal(t, int64(1), gjson.Get(call.Params, "options.clientRoleType").Int())
	assert.False(t, gjson.Get(call.Params, "options.publishCameraTrack").Exists())
}

func TestJoinChannel_NegativeResult(t *testing.T) {
	e, ft, _ := newEngine(t)
	ft.Reply("RtcEngine_joinChannel", `{"result":-17}`)

	err := e.JoinChannel("", "room", 0, rtc.ChannelMediaOptions{})
	var resErr *rtc.ResultError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, -17, resErr.Code)
}

func TestSendStreamMessage(t *testing.T) {
	e, ft, _ := newEngine(t)
	ft.Reply("RtcEngine_createDataStream", `{"result":0,"streamId":5}`)

	id, err := e.CreateDataStream(rtc.DataStreamConfig{Ordered: true})
	require.NoError(t, err)
	assert.Equal(t, 5, id)

	require.NoError(t, e.SendStreamMessage(id, []byte("hi")))
	call, _ := ft.LastCall()
	assert.Equal(t, []string{bufcodec.Encode([]byte("hi"))}, call.Buffers)
	assert.False(t, gjson.Get(call.Params, "data").Exists())
	assert.Equal(t, int64(2), gjson.Get(call.Params, "length").Int())

	conn := rtc.RtcConnection{ChannelID: "room", LocalUID: 1}
	require.NoError(t, e.SendStreamMessageEx(id, []byte("yo"), conn))
	call, _ = ft.LastCall()
	assert.Equal(t, "RtcEngine_sendStreamMessageEx", call.FuncName)
	assert.Equal(t, []string{bufcodec.Encode([]byte("yo"))}, call.Buffers)
	assert.Equal(t, "room", gjson.Get(call.Params, "connection.channelId").String())
}

func TestSendMetaData(t *testing.T) {
	e, ft, _ := newEngine(t)

	require.NoError(t, e.SendMetaData(frame.Metadata{UID: 1, Buffer: []byte("meta")}, 0))

	call, _ := ft.LastCall()
	assert.Equal(t, []string{bufcodec.Encode([]byte("meta"))}, call.Buffers)
	assert.Equal(t, int64(4), gjson.Get(call.Params, "metadata.size").Int())
	assert.False(t, gjson.Get(call.Params, "metadata.buffer").Exists())
}

func TestGetVersion(t *testing.T) {
	e, ft, _ := newEngine(t)
	ft.Reply("RtcEngine_getVersion", `{"result":"4.1.0","build":123}`)

	version, build, err := e.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, "4.1.0", version)
	assert.Equal(t, 123, build)
}

func TestGetVersion_NoReply(t *testing.T) {
	e, ft, _ := newEngine(t)
	ft.Silence("RtcEngine_getVersion")

	_, _, err := e.GetVersion()
	assert.ErrorIs(t, err, rtc.ErrInvalidReply)
}

type recordingCdnHandler struct {
	rtc.BaseDirectCdnStreamingEventHandler
	states []rtc.DirectCdnStreamingState
}

func (h *recordingCdnHandler) OnDirectCdnStreamingStateChanged(state rtc.DirectCdnStreamingState, _ int, _ string) {
	h.states = append(h.states, state)
}

func TestDirectCdnStreaming(t *testing.T) {
	e, ft, _ := newEngine(t)
	h := &recordingCdnHandler{}

	require.NoError(t, e.StartDirectCdnStreaming(h, "rtmp://cdn/live", rtc.DirectCdnStreamingMediaOptions{}))
	ft.Emit("DirectCdnStreamingEventHandler_onDirectCdnStreamingStateChanged", `{"state":1,"error":0,"message":""}`)
	require.NoError(t, e.StopDirectCdnStreaming())
	ft.Emit("DirectCdnStreamingEventHandler_onDirectCdnStreamingStateChanged", `{"state":2}`)

	assert.Equal(t, []rtc.DirectCdnStreamingState{
		rtc.DirectCdnStreamingStateRunning,
		rtc.DirectCdnStreamingStateStopped,
	}, h.states)
	assert.Equal(t, "rtmp://cdn/live", gjson.Get(ft.CallsTo("RtcEngine_startDirectCdnStreaming")[0].Params, "publishUrl").String())
}

func TestDirectCdnStreaming_RejectedStartDoesNotKeepHandler(t *testing.T) {
	e, ft, _ := newEngine(t)
	ft.Reply("RtcEngine_startDirectCdnStreaming", `{"result":-4}`)
	h := &recordingCdnHandler{}

	assert.Error(t, e.StartDirectCdnStreaming(h, "rtmp://cdn/live", rtc.DirectCdnStreamingMediaOptions{}))
	ft.Emit("DirectCdnStreamingEventHandler_onDirectCdnStreamingStateChanged", `{"state":3}`)
	assert.Empty(t, h.states)
}

type recordingEncodedAudioObserver struct {
	rtc.BaseAudioEncodedFrameObserver
	frames [][]byte
	infos  []frame.EncodedAudioFrameInfo
}

func (o *recordingEncodedAudioObserver) OnMixedAudioEncodedFrame(buf []byte, info frame.EncodedAudioFrameInfo) {
	o.frames = append(o.frames, buf)
	o.infos = append(o.infos, info)
}

func TestAudioEncodedFrameObserver(t *testing.T) {
	e, ft, _ := newEngine(t)
	o := &recordingEncodedAudioObserver{}
	cfg := rtc.AudioEncodedFrameObserverConfig{PostionType: rtc.AudioEncodedFrameObserverPositionMixed}
	require.NoError(t, e.RegisterAudioEncodedFrameObserver(cfg, o))
	assert.Equal(t, int64(3), gjson.Get(ft.CallsTo("RtcEngine_registerAudioEncodedFrameObserver")[0].Params, "config.postionType").Int())

	ft.Emit("AudioEncodedFrameObserver_OnMixedAudioEncodedFrame",
		`{"length":3,"audioEncodedFrameInfo":{"codec":1,"sampleRateHz":48000}}`, bufcodec.Encode([]byte{7, 8, 9}))

	require.Len(t, o.frames, 1)
	assert.Equal(t, []byte{7, 8, 9}, o.frames[0])
	assert.Equal(t, 48000, o.infos[0].SampleRateHz)

	require.NoError(t, e.UnregisterAudioEncodedFrameObserver(o))
}
