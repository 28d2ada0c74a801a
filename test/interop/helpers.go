// Package interop provides helpers for bridge-to-Pion interoperability tests.
package interop

import (
	"strings"
	"sync"
	"testing"
	"time"

	pionwebrtc "github.com/pion/webrtc/v4"
)

const interopConnectTimeout = 10 * time.Second

// PeerPair holds two in-process Pion PeerConnections. Sender carries the
// bridge's outbound track, Receiver feeds what it gets back to the bridge.
type PeerPair struct {
	Sender   *pionwebrtc.PeerConnection
	Receiver *pionwebrtc.PeerConnection

	connected chan struct{}
	once      sync.Once

	t *testing.T
}

// NewPeerPair creates a pair of PeerConnections without ICE servers.
func NewPeerPair(t *testing.T) *PeerPair {
	t.Helper()

	sender, err := pionwebrtc.NewPeerConnection(pionwebrtc.Configuration{})
	if err != nil {
		t.Fatalf("Failed to create sender: %v", err)
	}
	receiver, err := pionwebrtc.NewPeerConnection(pionwebrtc.Configuration{})
	if err != nil {
		sender.Close()
		t.Fatalf("Failed to create receiver: %v", err)
	}

	pp := &PeerPair{
		Sender:    sender,
		Receiver:  receiver,
		connected: make(chan struct{}),
		t:         t,
	}
	receiver.OnConnectionStateChange(func(s pionwebrtc.PeerConnectionState) {
		if s == pionwebrtc.PeerConnectionStateConnected {
			pp.once.Do(func() { close(pp.connected) })
		}
	})
	t.Cleanup(pp.Close)
	return pp
}

// ExchangeOfferAnswer negotiates with the sender as offerer. Candidates are
// gathered up front so no trickle exchange is needed.
func (pp *PeerPair) ExchangeOfferAnswer() error {
	offer, err := pp.Sender.CreateOffer(nil)
	if err != nil {
		return err
	}
	gathered := pionwebrtc.GatheringCompletePromise(pp.Sender)
	if err := pp.Sender.SetLocalDescription(offer); err != nil {
		return err
	}
	<-gathered

	if err := pp.Receiver.SetRemoteDescription(*pp.Sender.LocalDescription()); err != nil {
		return err
	}
	answer, err := pp.Receiver.CreateAnswer(nil)
	if err != nil {
		return err
	}
	gathered = pionwebrtc.GatheringCompletePromise(pp.Receiver)
	if err := pp.Receiver.SetLocalDescription(answer); err != nil {
		return err
	}
	<-gathered

	return pp.Sender.SetRemoteDescription(*pp.Receiver.LocalDescription())
}

// WaitForConnection waits for the receiver to reach the connected state.
func (pp *PeerPair) WaitForConnection(timeout time.Duration) bool {
	select {
	case <-pp.connected:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Close closes both peers.
func (pp *PeerPair) Close() {
	if pp.Sender != nil {
		pp.Sender.Close()
	}
	if pp.Receiver != nil {
		pp.Receiver.Close()
	}
}

func containsMediaLine(sdp, mediaType string) bool {
	for _, line := range strings.Split(sdp, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "m="+mediaType) {
			return true
		}
	}
	return false
}

// MustContain fails the test if the SDP lacks an m-line of mediaType.
func MustContain(t *testing.T, sdp, mediaType string) {
	t.Helper()
	if !containsMediaLine(sdp, mediaType) {
		t.Fatalf("SDP missing m=%s line", mediaType)
	}
}
