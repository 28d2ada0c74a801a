package rtc

import "github.com/thesyncim/rtcbridge/pkg/registry"

// engineKey is the single bucket key of engine-wide registries.
type engineKey struct{}

var engineWide engineKey

// Observers holds every observer registry of one engine. Engine-wide families
// use a single bucket; player families are keyed by player id and the
// recorder family by RecorderKey.
type Observers struct {
	engineHandlers *registry.Registry[engineKey, RtcEngineEventHandler]
	metadata       *registry.Registry[engineKey, MetadataObserver]
	cdnHandlers    *registry.Registry[engineKey, DirectCdnStreamingEventHandler]
	spectrum       *registry.Registry[engineKey, AudioSpectrumObserver]
	audioEncoded   *registry.Registry[engineKey, AudioEncodedFrameObserver]
	audioFrame     *registry.Registry[engineKey, AudioFrameObserver]
	videoFrame     *registry.Registry[engineKey, VideoFrameObserver]
	videoEncoded   *registry.Registry[engineKey, VideoEncodedFrameObserver]

	playerSource   *registry.Registry[int, MediaPlayerSourceObserver]
	playerAudio    *registry.Registry[int, MediaPlayerAudioFrameObserver]
	playerVideo    *registry.Registry[int, MediaPlayerVideoFrameObserver]
	playerSpectrum *registry.Registry[int, AudioSpectrumObserver]

	recorders *registry.Registry[string, MediaRecorderObserver]
}

// NewObservers creates an empty observer set.
func NewObservers() *Observers {
	return &Observers{
		engineHandlers: registry.New[engineKey, RtcEngineEventHandler](),
		metadata:       registry.New[engineKey, MetadataObserver](),
		cdnHandlers:    registry.New[engineKey, DirectCdnStreamingEventHandler](),
		spectrum:       registry.New[engineKey, AudioSpectrumObserver](),
		audioEncoded:   registry.New[engineKey, AudioEncodedFrameObserver](),
		audioFrame:     registry.New[engineKey, AudioFrameObserver](),
		videoFrame:     registry.New[engineKey, VideoFrameObserver](),
		videoEncoded:   registry.New[engineKey, VideoEncodedFrameObserver](),
		playerSource:   registry.New[int, MediaPlayerSourceObserver](),
		playerAudio:    registry.New[int, MediaPlayerAudioFrameObserver](),
		playerVideo:    registry.New[int, MediaPlayerVideoFrameObserver](),
		playerSpectrum: registry.New[int, AudioSpectrumObserver](),
		recorders:      registry.New[string, MediaRecorderObserver](),
	}
}

// Reset empties every registry.
func (o *Observers) Reset() {
	o.engineHandlers.Reset()
	o.metadata.Reset()
	o.cdnHandlers.Reset()
	o.spectrum.Reset()
	o.audioEncoded.Reset()
	o.audioFrame.Reset()
	o.videoFrame.Reset()
	o.videoEncoded.Reset()
	o.playerSource.Reset()
	o.playerAudio.Reset()
	o.playerVideo.Reset()
	o.playerSpectrum.Reset()
	o.recorders.Reset()
}

// dropPlayer forgets every observer of a destroyed player.
func (o *Observers) dropPlayer(id int) {
	o.playerSource.Delete(id)
	o.playerAudio.Delete(id)
	o.playerVideo.Delete(id)
	o.playerSpectrum.Delete(id)
}

// dropRecorder forgets every observer of a released recorder.
func (o *Observers) dropRecorder(key string) {
	o.recorders.Delete(key)
}

// EngineEventHandlers returns the registered engine event handlers in
// registration order.
func (o *Observers) EngineEventHandlers() []RtcEngineEventHandler {
	s, _ := o.engineHandlers.Snapshot(engineWide)
	return s
}

// PlayerObserverCount returns how many observers of any family are
// registered for player id.
func (o *Observers) PlayerObserverCount(id int) int {
	return o.playerSource.Len(id) + o.playerAudio.Len(id) + o.playerVideo.Len(id) + o.playerSpectrum.Len(id)
}

// RecorderObserverCount returns how many observers are registered for the
// recorder with the given key.
func (o *Observers) RecorderObserverCount(key string) int {
	return o.recorders.Len(key)
}
