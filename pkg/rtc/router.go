package rtc

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
	"github.com/thesyncim/rtcbridge/pkg/registry"
)

// EventTap observes every routed event after its buffers are spliced back,
// before observer fan-out.
type EventTap func(route Route, event string, data []byte)

// Router demultiplexes the native event stream onto the registered observers.
// HandleEvent is meant to be driven by one delivery goroutine; observers are
// invoked synchronously on it, in registration order.
type Router struct {
	observers *Observers
	log       *logrus.Logger
	tap       atomic.Pointer[EventTap]
}

// NewRouter creates a router delivering to observers. A nil logger uses
// logrus' standard logger.
func NewRouter(observers *Observers, log *logrus.Logger) *Router {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Router{observers: observers, log: log}
}

// SetTap installs fn as the event tap; nil removes it.
func (r *Router) SetTap(fn EventTap) {
	if fn == nil {
		r.tap.Store(nil)
		return
	}
	r.tap.Store(&fn)
}

// HandleEvent routes one inbound event. It never panics: malformed payloads
// degrade or drop the event and observer panics are recovered, so later
// events are always processed.
func (r *Router) HandleEvent(ev *InboundEvent) {
	if ev == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.WithFields(logrus.Fields{
				"function": "HandleEvent",
				"event":    ev.Event,
				"panic":    fmt.Sprint(p),
			}).Error("Panic recovered while routing event")
		}
	}()

	data := []byte(ev.Data)
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		if len(data) > 0 && ev.Data != "null" {
			r.log.WithFields(logrus.Fields{
				"function": "HandleEvent",
				"event":    ev.Event,
			}).Warn("Malformed event payload, delivering empty payload")
		}
		data = []byte("{}")
	}

	route := Classify(ev.Event)

	if route.Category == CategoryEngineAudioSpectrum || route.Category == CategoryPlayerAudioSpectrum {
		if hasSparseSpectrum(data) {
			r.log.WithFields(logrus.Fields{
				"function": "HandleEvent",
				"event":    ev.Event,
			}).Warn("Spectrum data contains null entries, dropping event")
			return
		}
	}

	if contract := bufcodec.EventContract(ev.Event); contract != nil && len(ev.Buffers) > 0 {
		spliced, err := bufcodec.Splice(contract, data, ev.Buffers)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"function": "HandleEvent",
				"event":    ev.Event,
				"error":    err.Error(),
			}).Warn("Invalid event buffers, dropping event")
			return
		}
		data = spliced
	}

	if tap := r.tap.Load(); tap != nil {
		(*tap)(route, ev.Event, data)
	}

	o := r.observers
	switch route.Category {
	case CategoryAudioFrame:
		deliver(r, o.audioFrame, engineWide, audioFrameDecoders, ev.Event, route, data)
	case CategoryVideoFrame:
		deliver(r, o.videoFrame, engineWide, videoFrameDecoders, ev.Event, route, data)
	case CategoryEngineAudioSpectrum:
		deliver(r, o.spectrum, engineWide, spectrumDecoders, ev.Event, route, data)
	case CategoryAudioEncodedFrame:
		deliver(r, o.audioEncoded, engineWide, audioEncodedFrameDecoders, ev.Event, route, data)
	case CategoryVideoEncodedFrame:
		deliver(r, o.videoEncoded, engineWide, videoEncodedFrameDecoders, ev.Event, route, data)
	case CategoryMetadata:
		deliver(r, o.metadata, engineWide, metadataDecoders, ev.Event, route, data)
	case CategoryDirectCdnStreaming:
		deliver(r, o.cdnHandlers, engineWide, cdnDecoders, ev.Event, route, data)
	case CategoryEngineEvent:
		deliver(r, o.engineHandlers, engineWide, engineEventDecoders, ev.Event, route, data)
	case CategoryPlayerAudioSpectrum, CategoryPlayerSource, CategoryPlayerAudioFrame, CategoryPlayerVideoFrame:
		id, ok := playerKey(data)
		if !ok {
			r.log.WithFields(logrus.Fields{
				"function": "HandleEvent",
				"event":    ev.Event,
			}).Debug("Player event without playerId, dropping")
			return
		}
		switch route.Category {
		case CategoryPlayerAudioSpectrum:
			deliver(r, o.playerSpectrum, id, spectrumDecoders, ev.Event, route, data)
		case CategoryPlayerSource:
			deliver(r, o.playerSource, id, playerSourceDecoders, ev.Event, route, data)
		case CategoryPlayerAudioFrame:
			deliver(r, o.playerAudio, id, playerAudioFrameDecoders, ev.Event, route, data)
		case CategoryPlayerVideoFrame:
			deliver(r, o.playerVideo, id, playerVideoFrameDecoders, ev.Event, route, data)
		}
	case CategoryMediaRecorder:
		key, ok := recorderKey(data)
		if !ok {
			r.log.WithFields(logrus.Fields{
				"function": "HandleEvent",
				"event":    ev.Event,
			}).Warn("Recorder event without connection, dropping")
			return
		}
		deliver(r, o.recorders, key, recorderDecoders, ev.Event, route, data)
	default:
		r.log.WithFields(logrus.Fields{
			"function": "HandleEvent",
			"event":    ev.Event,
		}).Debug("Unroutable event, dropping")
	}
}

// deliver decodes the payload once and fans it out to the bucket for key.
// A missing bucket drops the event silently.
func deliver[K comparable, O comparable](r *Router, reg *registry.Registry[K, O], key K,
	decoders map[string]decoder[O], event string, route Route, data []byte) {
	dec, ok := decoders[route.Callback]
	if !ok {
		r.log.WithFields(logrus.Fields{
			"function": "deliver",
			"event":    event,
			"category": route.Category.String(),
			"callback": route.Callback,
		}).Debug("No observer method for callback, dropping")
		return
	}

	observers, ok := reg.Snapshot(key)
	if !ok || len(observers) == 0 {
		return
	}

	invoke, err := dec(data)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"function": "deliver",
			"event":    event,
			"error":    err.Error(),
		}).Warn("Failed to decode event payload")
	}
	if invoke == nil {
		return
	}

	for _, o := range observers {
		r.safeCallback(event, func() { invoke(o) })
	}
}

// safeCallback runs one observer callback, recovering a panic so the rest of
// the fan-out still happens.
func (r *Router) safeCallback(event string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.WithFields(logrus.Fields{
				"function": "safeCallback",
				"event":    event,
				"panic":    fmt.Sprint(p),
			}).Error("Panic recovered in observer callback")
		}
	}()
	fn()
}

// hasSparseSpectrum reports whether any spectrum array of the payload
// contains a null entry.
func hasSparseSpectrum(data []byte) bool {
	if containsNull(gjson.GetBytes(data, "data.audioSpectrumData")) {
		return true
	}
	sparse := false
	gjson.GetBytes(data, "spectrums").ForEach(func(_, user gjson.Result) bool {
		if user.Type == gjson.Null || containsNull(user.Get("spectrumData.audioSpectrumData")) {
			sparse = true
			return false
		}
		return true
	})
	return sparse
}

func containsNull(arr gjson.Result) bool {
	found := false
	arr.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.Null {
			found = true
			return false
		}
		return true
	})
	return found
}
