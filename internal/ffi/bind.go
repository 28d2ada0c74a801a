package ffi

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// C ABI of the bridge library:
//
//	const char* rtcbridge_version(void);
//	void*       rtcbridge_engine_create(void);
//	void        rtcbridge_engine_destroy(void* engine);
//	int         rtcbridge_call_api(void* engine, const char* func_name, const char* params,
//	                               const uint8_t** buffers, const uint32_t* lengths, uint32_t buffer_count,
//	                               char* result, uint32_t result_cap);
//	void        rtcbridge_set_event_callback(void* engine, void* cb, uintptr_t ctx);
//
// The event callback has the shape
//
//	void cb(uintptr_t ctx, const char* event, const char* data,
//	        const uint8_t** buffers, const uint32_t* lengths, uint32_t buffer_count);
//
// and is invoked serially from the library's delivery thread. Every pointer
// it receives is only valid for the duration of the call.
var (
	bridgeVersion    func() string
	engineCreate     func() uintptr
	engineDestroy    func(engine uintptr)
	callAPI          func(engine uintptr, funcName, params string, buffers, lengths unsafe.Pointer, count uint32, result unsafe.Pointer, resultCap uint32) int32
	setEventCallback func(engine, cb, ctx uintptr)
)

func registerFunctions(handle uintptr) error {
	bindings := []struct {
		fptr any
		name string
	}{
		{&bridgeVersion, "rtcbridge_version"},
		{&engineCreate, "rtcbridge_engine_create"},
		{&engineDestroy, "rtcbridge_engine_destroy"},
		{&callAPI, "rtcbridge_call_api"},
		{&setEventCallback, "rtcbridge_set_event_callback"},
	}
	for _, b := range bindings {
		sym, err := dlsymLibrary(handle, b.name)
		if err != nil {
			return fmt.Errorf("%w: symbol %s: %w", ErrNotFound, b.name, err)
		}
		purego.RegisterFunc(b.fptr, sym)
	}
	return nil
}

// goString copies a NUL-terminated C string.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	ptr := unsafe.Pointer(p)
	n := 0
	for *(*byte)(unsafe.Add(ptr, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}

// cBytes copies a NUL-terminated string out of a Go-owned result buffer.
func cBytes(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
