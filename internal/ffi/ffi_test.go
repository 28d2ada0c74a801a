package ffi

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/thesyncim/rtcbridge/pkg/bufcodec"
	"github.com/thesyncim/rtcbridge/pkg/rtc"
)

// --- Error Code Tests ---

func TestBridgeErrorCodes(t *testing.T) {
	tests := []struct {
		code int32
		want error
	}{
		{BridgeOK, nil},
		{BridgeErrInvalidParam, ErrInvalidParam},
		{BridgeErrInitFailed, ErrInitFailed},
		{BridgeErrOutOfMemory, ErrOutOfMemory},
		{BridgeErrNotSupported, ErrNotSupported},
		{BridgeErrBufferTooSmall, ErrBufferTooSmall},
		{BridgeErrNotFound, ErrNotFound},
	}

	for _, tt := range tests {
		err := BridgeError(tt.code)
		if tt.want == nil {
			if err != nil {
				t.Errorf("BridgeError(%d) = %v, want nil", tt.code, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("BridgeError(%d) = %v, want %v", tt.code, err, tt.want)
		}
	}

	if err := BridgeError(-999); err == nil || err.Error() != "unknown bridge error: -999" {
		t.Errorf("BridgeError(-999) = %v", err)
	}
}

// --- Library Discovery Tests ---

func TestLibraryNames(t *testing.T) {
	tests := map[string]string{
		"darwin":  "librtcbridge_iris.dylib",
		"windows": "rtcbridge_iris.dll",
		"linux":   "librtcbridge_iris.so",
		"freebsd": "librtcbridge_iris.so",
	}
	for goos, want := range tests {
		if got := getLibraryNameFor(goos); got != want {
			t.Errorf("getLibraryNameFor(%q) = %q, want %q", goos, got, want)
		}
	}
}

func TestFindLocalLibrary_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.so")
	if err := os.WriteFile(path, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(LibraryPathEnv, path)

	got, ok := findLocalLibrary()
	if !ok || got != path {
		t.Errorf("findLocalLibrary() = %q, %v; want %q, true", got, ok, path)
	}
}

func TestFindLocalLibrary_MissingEnvPathIgnored(t *testing.T) {
	t.Setenv(LibraryPathEnv, filepath.Join(t.TempDir(), "missing.so"))

	if got, ok := findLocalLibrary(); ok && filepath.Base(got) != getLibraryName() {
		t.Errorf("findLocalLibrary() = %q, want the default library name", got)
	}
}

// --- String and Buffer Marshalling Tests ---

func TestGoString(t *testing.T) {
	if got := goString(0); got != "" {
		t.Errorf("goString(0) = %q", got)
	}
	buf := []byte("onJoinChannelSuccess\x00trailing")
	if got := goString(uintptr(unsafe.Pointer(&buf[0]))); got != "onJoinChannelSuccess" {
		t.Errorf("goString = %q", got)
	}
}

func TestCBytes(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf, `{"result":0}`)
	if got := cBytes(buf); got != `{"result":0}` {
		t.Errorf("cBytes = %q", got)
	}
	if got := cBytes(make([]byte, 4)); got != "" {
		t.Errorf("cBytes(zeroed) = %q", got)
	}
	if got := cBytes([]byte("full")); got != "full" {
		t.Errorf("cBytes(unterminated) = %q", got)
	}
}

func TestCopyEventBuffers(t *testing.T) {
	a := []byte{1, 2, 3}
	c := []byte{9}
	ptrs := []uintptr{uintptr(unsafe.Pointer(&a[0])), 0, uintptr(unsafe.Pointer(&c[0]))}
	lens := []uint32{3, 0, 1}

	got := copyEventBuffers(uintptr(unsafe.Pointer(&ptrs[0])), uintptr(unsafe.Pointer(&lens[0])), 3)
	want := []string{bufcodec.Encode(a), "", bufcodec.Encode(c)}
	if len(got) != len(want) {
		t.Fatalf("copyEventBuffers len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("buffer %d = %q, want %q", i, got[i], want[i])
		}
	}

	if got := copyEventBuffers(0, 0, 0); got == nil || len(got) != 0 {
		t.Errorf("copyEventBuffers(empty) = %#v, want empty non-nil", got)
	}
}

// --- Transport Tests ---

func TestTransport_RequiresLibrary(t *testing.T) {
	if IsLoaded() {
		t.Skip("library loaded")
	}
	tr := newTransport(nil)

	if _, _, err := tr.CallAPI(&rtc.CallRequest{FuncName: "RtcEngine_getVersion", Params: "{}"}); !errors.Is(err, ErrLibraryNotLoaded) {
		t.Errorf("CallAPI error = %v, want ErrLibraryNotLoaded", err)
	}
	if err := tr.NewEngineContext(); !errors.Is(err, ErrLibraryNotLoaded) {
		t.Errorf("NewEngineContext error = %v, want ErrLibraryNotLoaded", err)
	}
	if err := tr.DestroyEngineContext(); err != nil {
		t.Errorf("DestroyEngineContext without context = %v", err)
	}
	if err := CheckVersion(); !errors.Is(err, ErrLibraryNotLoaded) {
		t.Errorf("CheckVersion error = %v, want ErrLibraryNotLoaded", err)
	}
	if v := BridgeVersion(); v != "" {
		t.Errorf("BridgeVersion = %q, want empty", v)
	}
}

func TestTransport_DeliverRecoversPanics(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	tr := newTransport(log)

	var got []*rtc.InboundEvent
	tr.SetEventHandler(func(ev *rtc.InboundEvent) {
		if ev.Event == "boom" {
			panic("handler bug")
		}
		got = append(got, ev)
	})

	tr.deliver("boom", "{}", nil)
	tr.deliver("onUserJoined", `{"remoteUid":1}`, []string{})

	if len(got) != 1 || got[0].Event != "onUserJoined" {
		t.Fatalf("delivered = %#v", got)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Errorf("expected an error log for the recovered panic, got %#v", entry)
	}
}

func TestTransport_DeliverWithoutHandler(t *testing.T) {
	tr := newTransport(nil)
	tr.deliver("onUserJoined", "{}", nil)
}

func TestTransport_RoutesIntoEngine(t *testing.T) {
	tr := newTransport(nil)
	engine := rtc.NewRtcEngine(tr)

	var routes []rtc.Route
	engine.Router().SetTap(func(route rtc.Route, _ string, _ []byte) {
		routes = append(routes, route)
	})

	tr.deliver("onJoinChannelSuccessEx", `{"connection":{"channelId":"room","localUid":1},"elapsed":3}`, nil)
	tr.deliver("MediaPlayerSourceObserver_onCompleted", `{"playerId":2}`, nil)

	if len(routes) != 2 {
		t.Fatalf("routed %d events, want 2", len(routes))
	}
	if routes[0].Category != rtc.CategoryEngineEvent || routes[0].Callback != "onJoinChannelSuccess" {
		t.Errorf("route 0 = %+v", routes[0])
	}
	if routes[1].Category != rtc.CategoryPlayerSource {
		t.Errorf("route 1 = %+v", routes[1])
	}
}

// stubCallAPI swaps the native entry point for fn until the test ends.
func stubCallAPI(t *testing.T, fn func(engine uintptr, funcName, params string, buffers, lengths unsafe.Pointer, count uint32, result unsafe.Pointer, resultCap uint32) int32) {
	t.Helper()
	prev := callAPI
	callAPI = fn
	t.Cleanup(func() { callAPI = prev })
}

func TestTransport_InvokeGrowsReplyBuffer(t *testing.T) {
	reply := `{"result":0,"version":"4.5.0"}`
	var caps []uint32
	stubCallAPI(t, func(_ uintptr, _, _ string, _, _ unsafe.Pointer, _ uint32, result unsafe.Pointer, resultCap uint32) int32 {
		caps = append(caps, resultCap)
		if resultCap < 4*DefaultResultCapacity {
			return BridgeErrBufferTooSmall
		}
		copy(unsafe.Slice((*byte)(result), resultCap), reply)
		return BridgeOK
	})

	tr := newTransport(nil)
	got, err := tr.invoke(1, &rtc.CallRequest{FuncName: "RtcEngine_getVersion", Params: "{}"}, nil, nil, 0)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if s := cBytes(got); s != reply {
		t.Errorf("reply = %q, want %q", s, reply)
	}
	want := []uint32{DefaultResultCapacity, 2 * DefaultResultCapacity, 4 * DefaultResultCapacity}
	if len(caps) != len(want) {
		t.Fatalf("capacities = %v, want %v", caps, want)
	}
	for i := range want {
		if caps[i] != want[i] {
			t.Errorf("attempt %d capacity = %d, want %d", i, caps[i], want[i])
		}
	}
}

func TestTransport_InvokeGivesUpAtMaxCapacity(t *testing.T) {
	calls := 0
	stubCallAPI(t, func(_ uintptr, _, _ string, _, _ unsafe.Pointer, _ uint32, _ unsafe.Pointer, resultCap uint32) int32 {
		calls++
		if resultCap > MaxResultCapacity {
			t.Errorf("capacity %d exceeds MaxResultCapacity", resultCap)
		}
		return BridgeErrBufferTooSmall
	})

	tr := newTransport(nil)
	_, err := tr.invoke(1, &rtc.CallRequest{FuncName: "RtcEngine_getVersion"}, nil, nil, 0)
	if !errors.Is(err, ErrBufferTooSmall) {
		t.Fatalf("invoke error = %v, want ErrBufferTooSmall", err)
	}
	// 64 KiB doubled up to 16 MiB is nine attempts.
	if calls != 9 {
		t.Errorf("attempts = %d, want 9", calls)
	}
}
