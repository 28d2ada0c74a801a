// Package e2e provides end-to-end tests against the native bridge library.
// They are skipped when the library cannot be loaded.
package e2e

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thesyncim/rtcbridge/internal/ffi"
	"github.com/thesyncim/rtcbridge/pkg/rtc"
)

const (
	shortEventTimeout = 2 * time.Second
	joinTimeout       = 10 * time.Second
)

// AppIDEnv names the variable holding the app id for tests that join a
// channel.
const AppIDEnv = "RTCBRIDGE_APP_ID"

func testLogger() *logrus.Logger {
	log := logrus.New()
	if testing.Verbose() {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

// newEngine creates and initializes an engine over the native transport.
// The engine is released when the test ends.
func newEngine(t *testing.T) *rtc.RtcEngine {
	t.Helper()

	log := testLogger()
	transport, err := ffi.NewTransport(log)
	if err != nil {
		t.Skipf("bridge library not available: %v", err)
	}
	engine := rtc.NewRtcEngine(transport, rtc.WithLogger(log))
	if err := engine.Initialize(rtc.RtcEngineContext{
		AppID:          os.Getenv(AppIDEnv),
		ChannelProfile: rtc.ChannelProfileLiveBroadcasting,
	}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() {
		if err := engine.Release(true); err != nil {
			t.Errorf("Release failed: %v", err)
		}
	})
	return engine
}

func requireAppID(t *testing.T) {
	t.Helper()
	if os.Getenv(AppIDEnv) == "" {
		t.Skipf("%s not set", AppIDEnv)
	}
}

// EventRecorder is an engine event handler that records the callbacks it
// receives and lets tests wait for them.
type EventRecorder struct {
	rtc.BaseRtcEngineEventHandler

	mu       sync.Mutex
	joined   []rtc.RtcConnection
	left     []rtc.RtcConnection
	errors   []rtc.ErrorCode
	received chan string
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{received: make(chan string, 64)}
}

func (r *EventRecorder) note(name string) {
	select {
	case r.received <- name:
	default:
	}
}

func (r *EventRecorder) OnJoinChannelSuccess(conn rtc.RtcConnection, _ int) {
	r.mu.Lock()
	r.joined = append(r.joined, conn)
	r.mu.Unlock()
	r.note("onJoinChannelSuccess")
}

func (r *EventRecorder) OnLeaveChannel(conn rtc.RtcConnection, _ rtc.RtcStats) {
	r.mu.Lock()
	r.left = append(r.left, conn)
	r.mu.Unlock()
	r.note("onLeaveChannel")
}

func (r *EventRecorder) OnError(code rtc.ErrorCode, _ string) {
	r.mu.Lock()
	r.errors = append(r.errors, code)
	r.mu.Unlock()
	r.note("onError")
}

// WaitFor waits until the named callback has been received.
func (r *EventRecorder) WaitFor(name string, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case got := <-r.received:
			if got == name {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

func (r *EventRecorder) Joined() []rtc.RtcConnection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]rtc.RtcConnection(nil), r.joined...)
}

func (r *EventRecorder) Errors() []rtc.ErrorCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]rtc.ErrorCode(nil), r.errors...)
}

// PlayerRecorder records media player source callbacks.
type PlayerRecorder struct {
	rtc.BaseMediaPlayerSourceObserver

	mu     sync.Mutex
	states []rtc.MediaPlayerState
	state  chan rtc.MediaPlayerState
}

func NewPlayerRecorder() *PlayerRecorder {
	return &PlayerRecorder{state: make(chan rtc.MediaPlayerState, 32)}
}

func (r *PlayerRecorder) OnPlayerSourceStateChanged(state rtc.MediaPlayerState, _ rtc.MediaPlayerError) {
	r.mu.Lock()
	r.states = append(r.states, state)
	r.mu.Unlock()
	select {
	case r.state <- state:
	default:
	}
}

// WaitForState waits until the player reports want.
func (r *PlayerRecorder) WaitForState(want rtc.MediaPlayerState, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case got := <-r.state:
			if got == want {
				return true
			}
		case <-deadline:
			return false
		}
	}
}
