// Package bufcodec converts raw binary payloads to and from the text form the
// native engine bridge carries alongside JSON parameters.
//
// Binary fields never travel inside the JSON itself. Outbound, they are pulled
// out of the serialized parameters into an ordered buffer list; inbound, the
// buffer list is spliced back into the event payload before it is decoded.
// The order of that list is fixed per call and per event (see contracts.go).
package bufcodec

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrInvalidBuffer is returned when a buffer is not valid transport text.
var ErrInvalidBuffer = errors.New("invalid buffer encoding")

// Encode returns the transport text for b. Empty and nil input encode to "".
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Decode returns the bytes carried by s. The empty string decodes to an empty,
// non-nil slice so decoded frames always carry a usable buffer.
func Decode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBuffer, err)
	}
	return b, nil
}

// EncodeAll encodes every buffer in order.
func EncodeAll(bufs [][]byte) []string {
	out := make([]string, len(bufs))
	for i, b := range bufs {
		out[i] = Encode(b)
	}
	return out
}

// DecodeAll decodes every buffer in order, failing on the first invalid one.
func DecodeAll(texts []string) ([][]byte, error) {
	out := make([][]byte, len(texts))
	for i, s := range texts {
		b, err := Decode(s)
		if err != nil {
			return nil, fmt.Errorf("buffer %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

// Bytes is a binary field of a structured frame. It serializes through Encode
// and Decode so a frame's JSON form always uses the bridge's buffer encoding.
type Bytes []byte

// MarshalJSON implements json.Marshaler.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Encode(b) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. JSON null leaves b untouched.
// The string is unescaped before decoding, so producers that escape '/' as
// "\/" are accepted.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return nil
	}
	if res.Type != gjson.String {
		return fmt.Errorf("%w: expected JSON string", ErrInvalidBuffer)
	}
	decoded, err := Decode(res.Str)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
