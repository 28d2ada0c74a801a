package rtc

// MediaRecorder is a handle to the recorder of one connection. Its identity
// is the connection's channel id and local uid.
type MediaRecorder struct {
	engine *RtcEngine
	conn   RtcConnection
	key    string
}

// Connection returns the connection being recorded.
func (r *MediaRecorder) Connection() RtcConnection {
	return r.conn
}

// Key returns the recorder's registry key.
func (r *MediaRecorder) Key() string {
	return r.key
}

func (r *MediaRecorder) call(funcName string, params map[string]any) (*CallResult, error) {
	if r.engine.Released() {
		return nil, ErrEngineReleased
	}
	if params == nil {
		params = make(map[string]any, 1)
	}
	params["connection"] = r.conn
	return r.engine.dispatcher.call(funcName, params, nil)
}

func (r *MediaRecorder) forwardCall(funcName string) forward {
	return func() (*CallResult, error) {
		return r.call(funcName, nil)
	}
}

// SetMediaRecorderObserver adds o to this recorder's observers.
func (r *MediaRecorder) SetMediaRecorderObserver(o MediaRecorderObserver) error {
	return register(r.engine.observers.recorders, r.key, o, r.forwardCall("MediaRecorder_setMediaRecorderObserver"))
}

// RemoveMediaRecorderObserver removes o from this recorder's observers.
func (r *MediaRecorder) RemoveMediaRecorderObserver(o MediaRecorderObserver) error {
	return unregister(r.engine.observers.recorders, r.key, o, r.forwardCall("MediaRecorder_unsetMediaRecorderObserver"))
}

// StartRecording starts recording with config.
func (r *MediaRecorder) StartRecording(config MediaRecorderConfiguration) error {
	return settle(r.call("MediaRecorder_startRecording", map[string]any{"config": config}))
}

// StopRecording stops recording.
func (r *MediaRecorder) StopRecording() error {
	return settle(r.call("MediaRecorder_stopRecording", nil))
}

// Release releases the native recorder and forgets its observers. The handle
// must not be used afterwards; GetMediaRecorder returns a fresh one.
func (r *MediaRecorder) Release() error {
	err := settle(r.call("MediaRecorder_release", nil))
	r.engine.forgetRecorder(r.key)
	return err
}
