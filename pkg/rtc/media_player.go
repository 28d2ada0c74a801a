package rtc

import "fmt"

// MediaPlayer is a handle to one native media player. Every call it makes is
// tagged with its player id, and its observers only receive events of this
// player.
type MediaPlayer struct {
	engine *RtcEngine
	id     int
}

// MediaPlayerID returns the native id of the player.
func (p *MediaPlayer) MediaPlayerID() int {
	return p.id
}

func (p *MediaPlayer) call(funcName string, params any) (*CallResult, error) {
	if p.engine.Released() {
		return nil, ErrEngineReleased
	}
	return p.engine.dispatcher.call(funcName, params, &p.id)
}

func (p *MediaPlayer) do(funcName string, params any) error {
	return settle(p.call(funcName, params))
}

func (p *MediaPlayer) forwardCall(funcName string, params any) forward {
	return func() (*CallResult, error) {
		return p.call(funcName, params)
	}
}

// Open opens url and starts buffering at startPos milliseconds.
func (p *MediaPlayer) Open(url string, startPos int64) error {
	return p.do("MediaPlayer_open", map[string]any{"url": url, "startPos": startPos})
}

// Play starts playback.
func (p *MediaPlayer) Play() error { return p.do("MediaPlayer_play", nil) }

// Pause pauses playback.
func (p *MediaPlayer) Pause() error { return p.do("MediaPlayer_pause", nil) }

// Stop stops playback.
func (p *MediaPlayer) Stop() error { return p.do("MediaPlayer_stop", nil) }

// Resume resumes paused playback.
func (p *MediaPlayer) Resume() error { return p.do("MediaPlayer_resume", nil) }

// Seek moves the playback position to newPos milliseconds.
func (p *MediaPlayer) Seek(newPos int64) error {
	return p.do("MediaPlayer_seek", map[string]any{"newPos": newPos})
}

// Mute mutes or unmutes playback.
func (p *MediaPlayer) Mute(muted bool) error {
	return p.do("MediaPlayer_mute", map[string]any{"muted": muted})
}

// AdjustPlayoutVolume sets the local playout volume, 0 to 400.
func (p *MediaPlayer) AdjustPlayoutVolume(volume int) error {
	return p.do("MediaPlayer_adjustPlayoutVolume", map[string]any{"volume": volume})
}

// SetPlayerOptionInt sets an integer player option.
func (p *MediaPlayer) SetPlayerOptionInt(key string, value int) error {
	return p.do("MediaPlayer_setPlayerOption", map[string]any{"key": key, "value": value})
}

// SetPlayerOptionString sets a string player option.
func (p *MediaPlayer) SetPlayerOptionString(key, value string) error {
	return p.do("MediaPlayer_setPlayerOption2", map[string]any{"key": key, "value": value})
}

func (p *MediaPlayer) query(funcName, field string) (int64, error) {
	res, err := p.call(funcName, nil)
	if err != nil {
		return 0, err
	}
	if err := res.Err(); err != nil {
		return 0, err
	}
	v := res.Get(field)
	if !v.Exists() {
		return 0, fmt.Errorf("%s: %w: missing %q", funcName, ErrInvalidReply, field)
	}
	return v.Int(), nil
}

// GetDuration returns the media duration in milliseconds.
func (p *MediaPlayer) GetDuration() (int64, error) {
	return p.query("MediaPlayer_getDuration", "duration")
}

// GetPlayPosition returns the playback position in milliseconds.
func (p *MediaPlayer) GetPlayPosition() (int64, error) {
	return p.query("MediaPlayer_getPlayPosition", "pos")
}

// GetState returns the playback state.
func (p *MediaPlayer) GetState() (MediaPlayerState, error) {
	state, err := p.query("MediaPlayer_getState", "result")
	return MediaPlayerState(state), err
}

// RegisterPlayerSourceObserver adds o to this player's source observers.
func (p *MediaPlayer) RegisterPlayerSourceObserver(o MediaPlayerSourceObserver) error {
	return register(p.engine.observers.playerSource, p.id, o,
		p.forwardCall("MediaPlayer_registerPlayerSourceObserver", nil))
}

// UnregisterPlayerSourceObserver removes o from this player's source observers.
func (p *MediaPlayer) UnregisterPlayerSourceObserver(o MediaPlayerSourceObserver) error {
	return unregister(p.engine.observers.playerSource, p.id, o,
		p.forwardCall("MediaPlayer_unregisterPlayerSourceObserver", nil))
}

// RegisterAudioFrameObserver adds o to this player's audio frame observers.
func (p *MediaPlayer) RegisterAudioFrameObserver(o MediaPlayerAudioFrameObserver) error {
	return register(p.engine.observers.playerAudio, p.id, o,
		p.forwardCall("MediaPlayer_registerAudioFrameObserver", nil))
}

// UnregisterAudioFrameObserver removes o from this player's audio frame observers.
func (p *MediaPlayer) UnregisterAudioFrameObserver(o MediaPlayerAudioFrameObserver) error {
	return unregister(p.engine.observers.playerAudio, p.id, o,
		p.forwardCall("MediaPlayer_unregisterAudioFrameObserver", nil))
}

// RegisterVideoFrameObserver adds o to this player's video frame observers.
func (p *MediaPlayer) RegisterVideoFrameObserver(o MediaPlayerVideoFrameObserver) error {
	return register(p.engine.observers.playerVideo, p.id, o,
		p.forwardCall("MediaPlayer_registerVideoFrameObserver", nil))
}

// UnregisterVideoFrameObserver removes o from this player's video frame observers.
func (p *MediaPlayer) UnregisterVideoFrameObserver(o MediaPlayerVideoFrameObserver) error {
	return unregister(p.engine.observers.playerVideo, p.id, o,
		p.forwardCall("MediaPlayer_unregisterVideoFrameObserver", nil))
}

// RegisterMediaPlayerAudioSpectrumObserver adds o to this player's spectrum
// observers, reporting every intervalMs.
func (p *MediaPlayer) RegisterMediaPlayerAudioSpectrumObserver(o AudioSpectrumObserver, intervalMs int) error {
	return register(p.engine.observers.playerSpectrum, p.id, o,
		p.forwardCall("MediaPlayer_registerMediaPlayerAudioSpectrumObserver", map[string]any{"intervalInMS": intervalMs}))
}

// UnregisterMediaPlayerAudioSpectrumObserver removes o from this player's
// spectrum observers.
func (p *MediaPlayer) UnregisterMediaPlayerAudioSpectrumObserver(o AudioSpectrumObserver) error {
	return unregister(p.engine.observers.playerSpectrum, p.id, o,
		p.forwardCall("MediaPlayer_unregisterMediaPlayerAudioSpectrumObserver", nil))
}
