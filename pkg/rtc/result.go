package rtc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	// ErrObserverNotRegistered is returned when unregistering from an
	// instance that never had an observer of that kind.
	ErrObserverNotRegistered = errors.New("observer not registered")

	// ErrNilObserver is returned when registering a nil observer.
	ErrNilObserver = errors.New("observer is nil")

	// ErrObserverNotComparable is returned when an observer's dynamic type
	// cannot be compared with ==, such as a struct value holding a slice.
	// Register a pointer instead.
	ErrObserverNotComparable = errors.New("observer type is not comparable")

	// ErrMissingPlayerID is returned for media player calls made without a
	// player instance.
	ErrMissingPlayerID = errors.New("media player call without player id")

	// ErrInvalidReply is returned when the native reply is not JSON.
	ErrInvalidReply = errors.New("invalid native reply")

	// ErrCallPanicked is returned when building or transporting a call panics.
	ErrCallPanicked = errors.New("native call panicked")

	// ErrEngineReleased is returned by handles whose engine has been released.
	ErrEngineReleased = errors.New("engine released")
)

// ErrorCode is the engine's error code space. Native replies carry negated
// codes in their result field.
type ErrorCode int

const (
	ErrorCodeOK                   ErrorCode = 0
	ErrorCodeFailed               ErrorCode = 1
	ErrorCodeInvalidArgument      ErrorCode = 2
	ErrorCodeNotReady             ErrorCode = 3
	ErrorCodeNotSupported         ErrorCode = 4
	ErrorCodeRefused              ErrorCode = 5
	ErrorCodeBufferTooSmall       ErrorCode = 6
	ErrorCodeNotInitialized       ErrorCode = 7
	ErrorCodeNoPermission         ErrorCode = 9
	ErrorCodeTimedout             ErrorCode = 10
	ErrorCodeJoinChannelRejected  ErrorCode = 17
	ErrorCodeLeaveChannelRejected ErrorCode = 18
	ErrorCodeInvalidAppID         ErrorCode = 101
	ErrorCodeInvalidChannelName   ErrorCode = 102
	ErrorCodeTokenExpired         ErrorCode = 109
	ErrorCodeInvalidToken         ErrorCode = 110
	ErrorCodeNotInChannel         ErrorCode = 113
	ErrorCodeSizeTooLarge         ErrorCode = 114
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeOK:
		return "OK"
	case ErrorCodeFailed:
		return "FAILED"
	case ErrorCodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case ErrorCodeNotReady:
		return "NOT_READY"
	case ErrorCodeNotSupported:
		return "NOT_SUPPORTED"
	case ErrorCodeRefused:
		return "REFUSED"
	case ErrorCodeBufferTooSmall:
		return "BUFFER_TOO_SMALL"
	case ErrorCodeNotInitialized:
		return "NOT_INITIALIZED"
	case ErrorCodeNoPermission:
		return "NO_PERMISSION"
	case ErrorCodeTimedout:
		return "TIMEDOUT"
	case ErrorCodeJoinChannelRejected:
		return "JOIN_CHANNEL_REJECTED"
	case ErrorCodeLeaveChannelRejected:
		return "LEAVE_CHANNEL_REJECTED"
	case ErrorCodeInvalidAppID:
		return "INVALID_APP_ID"
	case ErrorCodeInvalidChannelName:
		return "INVALID_CHANNEL_NAME"
	case ErrorCodeTokenExpired:
		return "TOKEN_EXPIRED"
	case ErrorCodeInvalidToken:
		return "INVALID_TOKEN"
	case ErrorCodeNotInChannel:
		return "NOT_IN_CHANNEL"
	case ErrorCodeSizeTooLarge:
		return "SIZE_TOO_LARGE"
	default:
		return fmt.Sprintf("ERROR_%d", int(c))
	}
}

// ResultError reports a call whose reply carried a negative result.
type ResultError struct {
	FuncName string
	Code     int
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s failed: result %d (%s)", e.FuncName, e.Code, ErrorCode(-e.Code))
}

// CallResult is the parsed reply of one call.
type CallResult struct {
	FuncName string
	Raw      string
}

// Code returns the numeric result field, if the reply has one.
func (r *CallResult) Code() (int, bool) {
	if r == nil {
		return 0, false
	}
	v := gjson.Get(r.Raw, "result")
	if v.Type != gjson.Number {
		return 0, false
	}
	return int(v.Int()), true
}

// Failed reports whether the reply carries a negative result.
func (r *CallResult) Failed() bool {
	code, ok := r.Code()
	return ok && code < 0
}

// Err returns a *ResultError for a failed reply and nil otherwise.
// It is safe to call on a nil result.
func (r *CallResult) Err() error {
	if code, ok := r.Code(); ok && code < 0 {
		return &ResultError{FuncName: r.FuncName, Code: code}
	}
	return nil
}

// Get returns the reply field at path (gjson syntax).
func (r *CallResult) Get(path string) gjson.Result {
	if r == nil {
		return gjson.Result{}
	}
	return gjson.Get(r.Raw, path)
}

// Decode unmarshals the whole reply into v.
func (r *CallResult) Decode(v any) error {
	if r == nil {
		return ErrInvalidReply
	}
	return json.Unmarshal([]byte(r.Raw), v)
}

// resultCode is what generated wrappers return: the reply's result, or 0 when
// the call produced no reply.
func resultCode(r *CallResult) int {
	code, _ := r.Code()
	return code
}
