// Package rtc exposes the native real-time engine to Go through a serialized
// call/event bridge.
//
// Outgoing calls are named "Subsystem_method" (RtcEngine_joinChannel,
// MediaPlayer_open, ...), carry their parameters as JSON and their binary
// fields as an ordered buffer list, and go through a Dispatcher. Events pushed
// back by the engine go through a Router, which classifies them by name,
// splices binary fields back into the payload and fans them out to the
// observers registered for the owning instance.
package rtc

// CallRequest is one outgoing call as handed to the native transport.
type CallRequest struct {
	FuncName string   `json:"funcName"`
	Params   string   `json:"params"`
	Buffers  []string `json:"buffers"`
}

// InboundEvent is one push notification from the native transport.
// Data may be empty or malformed; Buffers are in the bridge's text encoding.
type InboundEvent struct {
	Event   string   `json:"event"`
	Data    string   `json:"data"`
	Buffers []string `json:"buffers"`
}

// Transport is the native side of the bridge.
//
// CallAPI performs one synchronous round trip. ok is false when the engine
// produced no reply, which is not an error. NewEngineContext and
// DestroyEngineContext allocate and tear down the native engine context that
// calls run against.
type Transport interface {
	CallAPI(req *CallRequest) (reply string, ok bool, err error)
	NewEngineContext() error
	DestroyEngineContext() error
}

// EventSource is implemented by transports that push events. The handler is
// invoked serially, on the transport's delivery thread.
type EventSource interface {
	SetEventHandler(handler func(ev *InboundEvent))
}
