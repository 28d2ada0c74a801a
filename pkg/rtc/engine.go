package rtc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
	"github.com/thesyncim/rtcbridge/pkg/frame"
)

// Option configures an RtcEngine.
type Option func(*RtcEngine)

// WithLogger sets the logger used by the engine's dispatcher and router.
func WithLogger(log *logrus.Logger) Option {
	return func(e *RtcEngine) {
		e.log = log
	}
}

// RtcEngine is the entry point of the bridge. It owns the observer registries
// and the handles of the native sub-objects created through it.
type RtcEngine struct {
	transport  Transport
	log        *logrus.Logger
	dispatcher *Dispatcher
	router     *Router
	observers  *Observers

	released atomic.Bool

	mu          sync.Mutex
	mediaEngine *MediaEngine
	players     map[int]*MediaPlayer
	recorders   map[string]*MediaRecorder
}

// NewRtcEngine creates an engine on top of t. When t is also an EventSource
// its events are routed to the engine's observers. Observers may be
// registered before Initialize.
func NewRtcEngine(t Transport, opts ...Option) *RtcEngine {
	e := &RtcEngine{
		transport: t,
		observers: NewObservers(),
		players:   make(map[int]*MediaPlayer),
		recorders: make(map[string]*MediaRecorder),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	e.dispatcher = NewDispatcher(t, e.log)
	e.router = NewRouter(e.observers, e.log)

	if src, ok := t.(EventSource); ok {
		src.SetEventHandler(e.router.HandleEvent)
	}
	return e
}

// Router returns the router that delivers this engine's events.
func (e *RtcEngine) Router() *Router {
	return e.router
}

// Observers returns the engine's observer registries.
func (e *RtcEngine) Observers() *Observers {
	return e.observers
}

// Invoke performs an arbitrary call by name. See Dispatcher.Invoke.
func (e *RtcEngine) Invoke(funcName string, params any) *CallResult {
	return e.dispatcher.Invoke(funcName, params)
}

// InvokePlayer performs an arbitrary MediaPlayer_ call on player playerID.
func (e *RtcEngine) InvokePlayer(playerID int, funcName string, params any) *CallResult {
	return e.dispatcher.InvokePlayer(playerID, funcName, params)
}

func (e *RtcEngine) do(funcName string, params any) error {
	return settle(e.dispatcher.call(funcName, params, nil))
}

func (e *RtcEngine) query(funcName string, params any) (*CallResult, error) {
	res, err := e.dispatcher.call(funcName, params, nil)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%s: %w: no reply", funcName, ErrInvalidReply)
	}
	return res, nil
}

// Initialize creates the native engine context and initializes the engine.
func (e *RtcEngine) Initialize(ctx RtcEngineContext) error {
	e.released.Store(false)
	return e.do(funcInitialize, map[string]any{"context": ctx})
}

// Release releases the engine, tears down the native context and forgets
// every registered observer and handle, whether or not the release call
// succeeded.
func (e *RtcEngine) Release(synchronous bool) error {
	err := e.do(funcRelease, map[string]any{"sync": synchronous})

	e.released.Store(true)
	e.observers.Reset()
	e.mu.Lock()
	e.mediaEngine = nil
	e.players = make(map[int]*MediaPlayer)
	e.recorders = make(map[string]*MediaRecorder)
	e.mu.Unlock()
	return err
}

// Released reports whether Release has been called since the last Initialize.
func (e *RtcEngine) Released() bool {
	return e.released.Load()
}

// GetVersion returns the native SDK version and build number.
func (e *RtcEngine) GetVersion() (string, int, error) {
	res, err := e.query("RtcEngine_getVersion", nil)
	if err != nil {
		return "", 0, err
	}
	return res.Get("result").String(), int(res.Get("build").Int()), nil
}

// EnableVideo enables the video module.
func (e *RtcEngine) EnableVideo() error { return e.do("RtcEngine_enableVideo", nil) }

// DisableVideo disables the video module.
func (e *RtcEngine) DisableVideo() error { return e.do("RtcEngine_disableVideo", nil) }

// EnableAudio enables the audio module.
func (e *RtcEngine) EnableAudio() error { return e.do("RtcEngine_enableAudio", nil) }

// DisableAudio disables the audio module.
func (e *RtcEngine) DisableAudio() error { return e.do("RtcEngine_disableAudio", nil) }

// StartPreview starts the local camera preview.
func (e *RtcEngine) StartPreview() error { return e.do("RtcEngine_startPreview", nil) }

// StopPreview stops the local camera preview.
func (e *RtcEngine) StopPreview() error { return e.do("RtcEngine_stopPreview", nil) }

// JoinChannel joins channelID as uid.
func (e *RtcEngine) JoinChannel(token, channelID string, uid uint32, options ChannelMediaOptions) error {
	return e.do("RtcEngine_joinChannel", map[string]any{
		"token":     token,
		"channelId": channelID,
		"uid":       uid,
		"options":   options,
	})
}

// LeaveChannel leaves the current channel.
func (e *RtcEngine) LeaveChannel() error { return e.do("RtcEngine_leaveChannel", nil) }

// CreateDataStream creates a data stream and returns its id.
func (e *RtcEngine) CreateDataStream(config DataStreamConfig) (int, error) {
	res, err := e.query("RtcEngine_createDataStream", map[string]any{"config": config})
	if err != nil {
		return 0, err
	}
	return int(res.Get("streamId").Int()), nil
}

// SendStreamMessage sends data on a data stream of the main connection.
func (e *RtcEngine) SendStreamMessage(streamID int, data []byte) error {
	return e.do("RtcEngine_sendStreamMessage", map[string]any{
		"streamId": streamID,
		"data":     bufcodec.Bytes(data),
		"length":   len(data),
	})
}

// SendStreamMessageEx sends data on a data stream of conn.
func (e *RtcEngine) SendStreamMessageEx(streamID int, data []byte, conn RtcConnection) error {
	return e.do("RtcEngine_sendStreamMessageEx", map[string]any{
		"streamId":   streamID,
		"data":       bufcodec.Bytes(data),
		"length":     len(data),
		"connection": conn,
	})
}

// EnableAudioSpectrumMonitor starts spectrum reporting every intervalMs.
func (e *RtcEngine) EnableAudioSpectrumMonitor(intervalMs int) error {
	return e.do("RtcEngine_enableAudioSpectrumMonitor", map[string]any{"intervalInMS": intervalMs})
}

// DisableAudioSpectrumMonitor stops spectrum reporting.
func (e *RtcEngine) DisableAudioSpectrumMonitor() error {
	return e.do("RtcEngine_disableAudioSpectrumMonitor", nil)
}

// SetMaxMetadataSize sets the largest metadata block SendMetaData accepts.
func (e *RtcEngine) SetMaxMetadataSize(size int) error {
	return e.do("RtcEngine_setMaxMetadataSize", map[string]any{"size": size})
}

// SendMetaData attaches metadata to the outgoing video stream.
func (e *RtcEngine) SendMetaData(metadata frame.Metadata, sourceType int) error {
	if metadata.Size == 0 {
		metadata.Size = len(metadata.Buffer)
	}
	return e.do("RtcEngine_sendMetaData", map[string]any{
		"metadata":    metadata,
		"source_type": sourceType,
	})
}

// StartRtmpStreamWithoutTranscoding pushes the local stream to url.
func (e *RtcEngine) StartRtmpStreamWithoutTranscoding(url string) error {
	return e.do("RtcEngine_startRtmpStreamWithoutTranscoding", map[string]any{"url": url})
}

// StopRtmpStream stops pushing to url.
func (e *RtcEngine) StopRtmpStream(url string) error {
	return e.do("RtcEngine_stopRtmpStream", map[string]any{"url": url})
}

// StartDirectCdnStreaming pushes the local stream straight to publishURL.
// handler stays registered until the engine is released.
func (e *RtcEngine) StartDirectCdnStreaming(handler DirectCdnStreamingEventHandler, publishURL string, options DirectCdnStreamingMediaOptions) error {
	return register(e.observers.cdnHandlers, engineWide, handler, func() (*CallResult, error) {
		return e.dispatcher.call("RtcEngine_startDirectCdnStreaming", map[string]any{
			"publishUrl": publishURL,
			"options":    options,
		}, nil)
	})
}

// StopDirectCdnStreaming stops direct CDN streaming.
func (e *RtcEngine) StopDirectCdnStreaming() error {
	return e.do("RtcEngine_stopDirectCdnStreaming", nil)
}

// RegisterEventHandler adds h to the engine event handlers.
func (e *RtcEngine) RegisterEventHandler(h RtcEngineEventHandler) error {
	return register(e.observers.engineHandlers, engineWide, h, e.forwardCall("RtcEngine_registerEventHandler", nil))
}

// UnregisterEventHandler removes h from the engine event handlers.
func (e *RtcEngine) UnregisterEventHandler(h RtcEngineEventHandler) error {
	return unregister(e.observers.engineHandlers, engineWide, h, e.forwardCall("RtcEngine_unregisterEventHandler", nil))
}

// RegisterMediaMetadataObserver adds o to the metadata observers.
func (e *RtcEngine) RegisterMediaMetadataObserver(o MetadataObserver, typ MetadataType) error {
	return register(e.observers.metadata, engineWide, o,
		e.forwardCall("RtcEngine_registerMediaMetadataObserver", map[string]any{"type": typ}))
}

// UnregisterMediaMetadataObserver removes o from the metadata observers.
func (e *RtcEngine) UnregisterMediaMetadataObserver(o MetadataObserver, typ MetadataType) error {
	return unregister(e.observers.metadata, engineWide, o,
		e.forwardCall("RtcEngine_unregisterMediaMetadataObserver", map[string]any{"type": typ}))
}

// RegisterAudioSpectrumObserver adds o to the engine spectrum observers.
func (e *RtcEngine) RegisterAudioSpectrumObserver(o AudioSpectrumObserver) error {
	return register(e.observers.spectrum, engineWide, o, e.forwardCall("RtcEngine_registerAudioSpectrumObserver", nil))
}

// UnregisterAudioSpectrumObserver removes o from the engine spectrum observers.
func (e *RtcEngine) UnregisterAudioSpectrumObserver(o AudioSpectrumObserver) error {
	return unregister(e.observers.spectrum, engineWide, o, e.forwardCall("RtcEngine_unregisterAudioSpectrumObserver", nil))
}

// RegisterAudioEncodedFrameObserver adds o to the encoded audio observers.
func (e *RtcEngine) RegisterAudioEncodedFrameObserver(config AudioEncodedFrameObserverConfig, o AudioEncodedFrameObserver) error {
	return register(e.observers.audioEncoded, engineWide, o,
		e.forwardCall("RtcEngine_registerAudioEncodedFrameObserver", map[string]any{"config": config}))
}

// UnregisterAudioEncodedFrameObserver removes o from the encoded audio observers.
func (e *RtcEngine) UnregisterAudioEncodedFrameObserver(o AudioEncodedFrameObserver) error {
	return unregister(e.observers.audioEncoded, engineWide, o,
		e.forwardCall("RtcEngine_unregisterAudioEncodedFrameObserver", nil))
}

func (e *RtcEngine) forwardCall(funcName string, params any) forward {
	return func() (*CallResult, error) {
		return e.dispatcher.call(funcName, params, nil)
	}
}

// CreateMediaPlayer creates a native media player.
func (e *RtcEngine) CreateMediaPlayer() (*MediaPlayer, error) {
	res, err := e.query("RtcEngine_createMediaPlayer", nil)
	if err != nil {
		return nil, err
	}
	id, ok := res.Code()
	if !ok {
		return nil, fmt.Errorf("RtcEngine_createMediaPlayer: %w: %s", ErrInvalidReply, res.Raw)
	}

	p := &MediaPlayer{engine: e, id: id}
	e.mu.Lock()
	e.players[id] = p
	e.mu.Unlock()
	return p, nil
}

// DestroyMediaPlayer destroys p and forgets its observers.
func (e *RtcEngine) DestroyMediaPlayer(p *MediaPlayer) error {
	if p == nil {
		return nil
	}
	err := e.do(funcDestroyMediaPlayer, p)

	e.observers.dropPlayer(p.id)
	e.mu.Lock()
	delete(e.players, p.id)
	e.mu.Unlock()
	return err
}

// MediaPlayer returns the live player with the given id.
func (e *RtcEngine) MediaPlayer(id int) (*MediaPlayer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.players[id]
	return p, ok
}

// GetMediaEngine returns the engine's media engine.
func (e *RtcEngine) GetMediaEngine() *MediaEngine {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mediaEngine == nil {
		e.mediaEngine = &MediaEngine{engine: e}
	}
	return e.mediaEngine
}

// GetMediaRecorder returns the recorder of conn, creating the handle on first
// use.
func (e *RtcEngine) GetMediaRecorder(conn RtcConnection) *MediaRecorder {
	key := RecorderKey(conn)
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.recorders[key]
	if !ok {
		r = &MediaRecorder{engine: e, conn: conn, key: key}
		e.recorders[key] = r
	}
	return r
}

func (e *RtcEngine) forgetRecorder(key string) {
	e.observers.dropRecorder(key)
	e.mu.Lock()
	delete(e.recorders, key)
	e.mu.Unlock()
}
