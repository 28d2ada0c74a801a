package rtc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
)

const (
	prefixRtcEngine   = "RtcEngine_"
	prefixMediaEngine = "MediaEngine_"
	prefixMediaPlayer = "MediaPlayer_"

	funcInitialize         = "RtcEngine_initialize"
	funcRelease            = "RtcEngine_release"
	funcDestroyMediaPlayer = "RtcEngine_destroyMediaPlayer"
)

// PlayerRef is anything that identifies a native media player instance.
type PlayerRef interface {
	MediaPlayerID() int
}

type playerIDParams struct {
	PlayerID int `json:"playerId"`
}

// Dispatcher marshals calls into the bridge's wire shape and performs them
// against a Transport.
type Dispatcher struct {
	transport Transport
	log       *logrus.Logger
}

// NewDispatcher creates a dispatcher. A nil logger uses logrus' standard logger.
func NewDispatcher(t Transport, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{transport: t, log: log}
}

// Invoke performs funcName with params and returns the parsed reply.
//
// Invoke never fails: build, serialization and transport errors are logged
// and yield nil, as does a call the engine did not reply to. A reply whose
// result is negative is logged at error level and still returned; callers
// inspect it with CallResult.Code or CallResult.Err.
func (d *Dispatcher) Invoke(funcName string, params any) *CallResult {
	return d.invoke(funcName, params, nil)
}

// InvokePlayer performs a MediaPlayer_ call on behalf of player playerID.
func (d *Dispatcher) InvokePlayer(playerID int, funcName string, params any) *CallResult {
	return d.invoke(funcName, params, &playerID)
}

func (d *Dispatcher) invoke(funcName string, params any, playerID *int) *CallResult {
	res, err := d.call(funcName, params, playerID)
	if err != nil {
		d.log.WithFields(logrus.Fields{
			"function": "Invoke",
			"api":      funcName,
			"error":    err.Error(),
		}).Error("Native call failed")
		return nil
	}
	return res
}

// call is Invoke with errors surfaced, for callers that must react to a
// failed round trip.
func (d *Dispatcher) call(funcName string, params any, playerID *int) (res *CallResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%s: %w: %v", funcName, ErrCallPanicked, r)
		}
	}()

	if funcName == funcDestroyMediaPlayer {
		if ref, ok := params.(PlayerRef); ok {
			params = playerIDParams{PlayerID: ref.MediaPlayerID()}
		}
	}

	req, err := d.buildRequest(funcName, params, playerID)
	if err != nil {
		return nil, err
	}

	switch funcName {
	case funcInitialize:
		if err := d.transport.NewEngineContext(); err != nil {
			return nil, fmt.Errorf("%s: create engine context: %w", funcName, err)
		}
	case funcRelease:
		// Teardown strictly follows the release call, whatever its outcome.
		_, _, callErr := d.transport.CallAPI(req)
		destroyErr := d.transport.DestroyEngineContext()
		if destroyErr != nil {
			destroyErr = fmt.Errorf("destroy engine context: %w", destroyErr)
		}
		if err := errors.Join(callErr, destroyErr); err != nil {
			return nil, fmt.Errorf("%s: %w", funcName, err)
		}
		return nil, nil
	}

	reply, ok, err := d.transport.CallAPI(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", funcName, err)
	}
	if !ok || reply == "" {
		return nil, nil
	}
	if !gjson.Valid(reply) {
		return nil, fmt.Errorf("%s: %w: %q", funcName, ErrInvalidReply, reply)
	}
	if reply == "null" {
		reply = "{}"
	}

	res = &CallResult{FuncName: funcName, Raw: reply}
	fields := logrus.Fields{
		"function": "Invoke",
		"api":      funcName,
		"params":   req.Params,
		"reply":    reply,
	}
	if res.Failed() {
		d.log.WithFields(fields).Error("Native call returned a failure result")
	} else {
		d.log.WithFields(fields).Debug("Native call completed")
	}
	return res, nil
}

// buildRequest serializes params, moves binary fields into the buffer list
// and tags player calls with their instance id.
func (d *Dispatcher) buildRequest(funcName string, params any, playerID *int) (*CallRequest, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal params: %w", funcName, err)
	}

	buffers := []string{}
	switch {
	case strings.HasPrefix(funcName, prefixMediaEngine), strings.HasPrefix(funcName, prefixRtcEngine):
		if contract := bufcodec.CallContract(funcName); contract != nil {
			raw, buffers, err = bufcodec.Extract(contract, raw)
			if err != nil {
				return nil, fmt.Errorf("%s: extract buffers: %w", funcName, err)
			}
		}
	case strings.HasPrefix(funcName, prefixMediaPlayer):
		if playerID == nil {
			return nil, fmt.Errorf("%s: %w", funcName, ErrMissingPlayerID)
		}
		raw, err = sjson.SetBytes(raw, "playerId", *playerID)
		if err != nil {
			return nil, fmt.Errorf("%s: inject player id: %w", funcName, err)
		}
	}

	return &CallRequest{FuncName: funcName, Params: string(raw), Buffers: buffers}, nil
}

func marshalParams(params any) ([]byte, error) {
	if params == nil {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return nil, fmt.Errorf("params must serialize to a JSON object, got %s", raw)
	}
	return raw, nil
}
