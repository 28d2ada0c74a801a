package ffi

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/sirupsen/logrus"

	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
	"github.com/thesyncim/rtcbridge/pkg/rtc"
)

const (
	// DefaultResultCapacity is the reply buffer first handed to every call.
	DefaultResultCapacity = 64 * 1024
	// MaxResultCapacity bounds reply buffer growth. The library reports
	// BridgeErrBufferTooSmall before running the call, so a retry is safe.
	MaxResultCapacity = 16 * 1024 * 1024

	maxEventBuffers    = 16
	maxEventBufferSize = 256 * 1024 * 1024
)

// Event handlers by engine handle. The purego callback is process-wide and
// must be kept alive, so it is created once.
var (
	eventHandlersMu  sync.RWMutex
	eventHandlers    = make(map[uintptr]*Transport)
	eventCallbackPtr uintptr
	eventCallbackMu  sync.Mutex
)

func initEventCallback() uintptr {
	eventCallbackMu.Lock()
	defer eventCallbackMu.Unlock()
	if eventCallbackPtr != 0 {
		return eventCallbackPtr
	}
	eventCallbackPtr = purego.NewCallback(func(ctx, event, data, buffers, lengths uintptr, count uint32) {
		eventHandlersMu.RLock()
		t, ok := eventHandlers[ctx]
		eventHandlersMu.RUnlock()
		if !ok || t == nil {
			return
		}
		t.deliver(goString(event), goString(data), copyEventBuffers(buffers, lengths, count))
	})
	return eventCallbackPtr
}

// copyEventBuffers copies the native buffer list and encodes it in the
// bridge's text form. Oversized or excess buffers are replaced by empty
// placeholders so positions stay stable.
func copyEventBuffers(buffers, lengths uintptr, count uint32) []string {
	out := []string{}
	if buffers == 0 || lengths == 0 || count == 0 {
		return out
	}
	n := int(count)
	if n > maxEventBuffers {
		n = maxEventBuffers
	}
	ptrs := unsafe.Slice((*uintptr)(unsafe.Pointer(buffers)), n)
	lens := unsafe.Slice((*uint32)(unsafe.Pointer(lengths)), n)
	for i := 0; i < n; i++ {
		if ptrs[i] == 0 || lens[i] == 0 || lens[i] > maxEventBufferSize {
			out = append(out, "")
			continue
		}
		out = append(out, bufcodec.Encode(unsafe.Slice((*byte)(unsafe.Pointer(ptrs[i])), lens[i])))
	}
	return out
}

// Transport performs calls against the native library. It implements
// rtc.Transport and rtc.EventSource.
type Transport struct {
	log       *logrus.Logger
	resultCap int

	mu      sync.Mutex
	engine  uintptr
	handler func(ev *rtc.InboundEvent)
}

// NewTransport loads the library and returns a transport without an engine
// context. A nil logger uses logrus' standard logger.
func NewTransport(log *logrus.Logger) (*Transport, error) {
	if err := LoadLibrary(); err != nil {
		return nil, err
	}
	return newTransport(log), nil
}

func newTransport(log *logrus.Logger) *Transport {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Transport{log: log, resultCap: DefaultResultCapacity}
}

// SetEventHandler implements rtc.EventSource.
func (t *Transport) SetEventHandler(handler func(ev *rtc.InboundEvent)) {
	t.mu.Lock()
	t.handler = handler
	t.mu.Unlock()
}

// NewEngineContext implements rtc.Transport. Creating a context while one
// exists is a no-op.
func (t *Transport) NewEngineContext() error {
	if !libLoaded.Load() {
		return ErrLibraryNotLoaded
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.engine != 0 {
		return nil
	}

	engine := engineCreate()
	if engine == 0 {
		return ErrInitFailed
	}

	eventHandlersMu.Lock()
	eventHandlers[engine] = t
	eventHandlersMu.Unlock()
	setEventCallback(engine, initEventCallback(), engine)

	t.engine = engine
	t.log.WithFields(logrus.Fields{
		"function": "NewEngineContext",
		"engine":   fmt.Sprintf("%#x", engine),
	}).Debug("Engine context created")
	return nil
}

// DestroyEngineContext implements rtc.Transport.
func (t *Transport) DestroyEngineContext() error {
	t.mu.Lock()
	engine := t.engine
	t.engine = 0
	t.mu.Unlock()
	if engine == 0 {
		return nil
	}

	setEventCallback(engine, 0, 0)
	eventHandlersMu.Lock()
	delete(eventHandlers, engine)
	eventHandlersMu.Unlock()
	engineDestroy(engine)

	t.log.WithFields(logrus.Fields{
		"function": "DestroyEngineContext",
		"engine":   fmt.Sprintf("%#x", engine),
	}).Debug("Engine context destroyed")
	return nil
}

// CallAPI implements rtc.Transport. Without an engine context there is
// nothing to call and no reply.
func (t *Transport) CallAPI(req *rtc.CallRequest) (string, bool, error) {
	if !libLoaded.Load() {
		return "", false, ErrLibraryNotLoaded
	}
	t.mu.Lock()
	engine := t.engine
	t.mu.Unlock()
	if engine == 0 {
		return "", false, nil
	}

	bufs, err := bufcodec.DecodeAll(req.Buffers)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrInvalidParam, err)
	}

	var pinner runtime.Pinner
	defer pinner.Unpin()

	var ptrs []uintptr
	var lens []uint32
	var bufPtr, lenPtr unsafe.Pointer
	if len(bufs) > 0 {
		ptrs = make([]uintptr, len(bufs))
		lens = make([]uint32, len(bufs))
		for i, b := range bufs {
			if len(b) > 0 {
				pinner.Pin(&b[0])
				ptrs[i] = uintptr(unsafe.Pointer(&b[0]))
			}
			lens[i] = uint32(len(b))
		}
		bufPtr = unsafe.Pointer(&ptrs[0])
		lenPtr = unsafe.Pointer(&lens[0])
	}

	result, err := t.invoke(engine, req, bufPtr, lenPtr, uint32(len(bufs)))
	runtime.KeepAlive(ptrs)
	runtime.KeepAlive(lens)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", req.FuncName, err)
	}

	reply := cBytes(result)
	return reply, reply != "", nil
}

// invoke runs one native call, doubling the reply buffer while the library
// reports it too small, up to MaxResultCapacity.
func (t *Transport) invoke(engine uintptr, req *rtc.CallRequest, bufPtr, lenPtr unsafe.Pointer, count uint32) ([]byte, error) {
	capacity := t.resultCap
	for {
		result := make([]byte, capacity)
		rc := callAPI(engine, req.FuncName, req.Params, bufPtr, lenPtr, count, unsafe.Pointer(&result[0]), uint32(len(result)))
		if rc == BridgeErrBufferTooSmall && capacity < MaxResultCapacity {
			capacity = min(capacity*2, MaxResultCapacity)
			t.log.WithFields(logrus.Fields{
				"func":     req.FuncName,
				"capacity": capacity,
			}).Debug("Reply buffer too small, retrying")
			continue
		}
		if err := BridgeError(rc); err != nil {
			return nil, err
		}
		return result, nil
	}
}

// deliver hands one event to the installed handler, recovering a panic so the
// library's delivery thread never unwinds through Go.
func (t *Transport) deliver(event, data string, buffers []string) {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h == nil {
		return
	}
	ev := &rtc.InboundEvent{Event: event, Data: data, Buffers: buffers}
	safeCallback(t.log, func() { h(ev) })
}

// safeCallback wraps a callback invocation with panic recovery.
func safeCallback(log *logrus.Logger, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{
				"function": "safeCallback",
				"panic":    fmt.Sprint(r),
			}).Error("Panic recovered in event callback")
		}
	}()
	fn()
}
