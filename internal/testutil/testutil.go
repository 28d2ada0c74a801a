// Package testutil provides shared test utilities for rtcbridge tests.
package testutil

import (
	"math"
	"sync"

	"github.com/thesyncim/rtcbridge/pkg/frame"
	"github.com/thesyncim/rtcbridge/pkg/rtc"
)

// DefaultReply is what FakeTransport answers to calls without a scripted reply.
const DefaultReply = `{"result":0}`

// FakeTransport is an in-memory rtc.Transport and rtc.EventSource. It records
// every call and answers from a per-function script.
type FakeTransport struct {
	mu        sync.Mutex
	calls     []rtc.CallRequest
	replies   map[string]string
	errs      map[string]error
	silent    map[string]bool
	panics    map[string]any
	handler   func(ev *rtc.InboundEvent)
	created   int
	destroyed int

	// ContextErr, when set, is returned by NewEngineContext.
	ContextErr error
}

// NewFakeTransport creates a fake transport answering DefaultReply.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		replies: make(map[string]string),
		errs:    make(map[string]error),
		silent:  make(map[string]bool),
		panics:  make(map[string]any),
	}
}

// Reply scripts the reply to funcName.
func (f *FakeTransport) Reply(funcName, reply string) {
	f.mu.Lock()
	f.replies[funcName] = reply
	f.mu.Unlock()
}

// Fail makes calls to funcName fail with err.
func (f *FakeTransport) Fail(funcName string, err error) {
	f.mu.Lock()
	f.errs[funcName] = err
	f.mu.Unlock()
}

// Silence makes calls to funcName produce no reply.
func (f *FakeTransport) Silence(funcName string) {
	f.mu.Lock()
	f.silent[funcName] = true
	f.mu.Unlock()
}

// Panic makes calls to funcName panic with v.
func (f *FakeTransport) Panic(funcName string, v any) {
	f.mu.Lock()
	f.panics[funcName] = v
	f.mu.Unlock()
}

// CallAPI implements rtc.Transport.
func (f *FakeTransport) CallAPI(req *rtc.CallRequest) (string, bool, error) {
	f.mu.Lock()
	rec := *req
	rec.Buffers = append([]string(nil), req.Buffers...)
	f.calls = append(f.calls, rec)
	p, shouldPanic := f.panics[req.FuncName]
	err := f.errs[req.FuncName]
	silent := f.silent[req.FuncName]
	reply, scripted := f.replies[req.FuncName]
	f.mu.Unlock()

	if shouldPanic {
		panic(p)
	}
	if err != nil {
		return "", false, err
	}
	if silent {
		return "", false, nil
	}
	if !scripted {
		reply = DefaultReply
	}
	return reply, true, nil
}

// NewEngineContext implements rtc.Transport.
func (f *FakeTransport) NewEngineContext() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ContextErr != nil {
		return f.ContextErr
	}
	f.created++
	return nil
}

// DestroyEngineContext implements rtc.Transport.
func (f *FakeTransport) DestroyEngineContext() error {
	f.mu.Lock()
	f.destroyed++
	f.mu.Unlock()
	return nil
}

// SetEventHandler implements rtc.EventSource.
func (f *FakeTransport) SetEventHandler(handler func(ev *rtc.InboundEvent)) {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
}

// Emit delivers an event to the installed handler, synchronously.
func (f *FakeTransport) Emit(event, data string, buffers ...string) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h == nil {
		return
	}
	if buffers == nil {
		buffers = []string{}
	}
	h(&rtc.InboundEvent{Event: event, Data: data, Buffers: buffers})
}

// Calls returns every recorded call in order.
func (f *FakeTransport) Calls() []rtc.CallRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rtc.CallRequest(nil), f.calls...)
}

// CallsTo returns the recorded calls to funcName in order.
func (f *FakeTransport) CallsTo(funcName string) []rtc.CallRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []rtc.CallRequest
	for _, c := range f.calls {
		if c.FuncName == funcName {
			out = append(out, c)
		}
	}
	return out
}

// LastCall returns the most recent call.
func (f *FakeTransport) LastCall() (rtc.CallRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return rtc.CallRequest{}, false
	}
	return f.calls[len(f.calls)-1], true
}

// ContextCounts returns how many engine contexts were created and destroyed.
func (f *FakeTransport) ContextCounts() (created, destroyed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, f.destroyed
}

// CreateTestVideoFrame creates an I420 video frame with a gradient pattern.
func CreateTestVideoFrame(width, height int) *frame.VideoFrame {
	f := frame.NewI420Frame(width, height)

	for i := range f.YBuffer {
		y := i / width
		x := i % width
		f.YBuffer[i] = byte((x + y) % 256)
	}
	for i := range f.UBuffer {
		f.UBuffer[i] = 128
		f.VBuffer[i] = 128
	}
	return f
}

// CreateTestAudioFrame creates a PCM16 audio frame holding a 440 Hz sine.
func CreateTestAudioFrame(sampleRate, channels, samplesPerChannel int) *frame.AudioFrame {
	samples := make([]int16, samplesPerChannel*channels)
	for i := 0; i < samplesPerChannel; i++ {
		v := int16(math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)) * 16000)
		for ch := 0; ch < channels; ch++ {
			samples[i*channels+ch] = v
		}
	}
	return frame.NewAudioFrameS16(sampleRate, channels, samples)
}
