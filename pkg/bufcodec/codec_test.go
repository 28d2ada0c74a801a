package bufcodec

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	large := make([]byte, 1<<20+17)
	for i := range large {
		large[i] = byte(i * 31)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"nil", nil},
		{"single byte", []byte{0xff}},
		{"two bytes", []byte{0x00, 0x01}},
		{"large", large},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(Encode(tt.data))
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.data, got), "round trip mismatch")
		})
	}
}

func TestDecode_EmptyIsNonNil(t *testing.T) {
	got, err := Decode("")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode("not base64!")
	assert.ErrorIs(t, err, ErrInvalidBuffer)
}

func TestDecodeAll_ReportsIndex(t *testing.T) {
	_, err := DecodeAll([]string{Encode([]byte("ok")), "%%%"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer 1")
}

func TestBytes_JSON(t *testing.T) {
	type holder struct {
		Buf Bytes `json:"buf"`
	}

	out, err := json.Marshal(holder{Buf: Bytes("hello")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"buf":"aGVsbG8="}`, string(out))

	out, err = json.Marshal(holder{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"buf":""}`, string(out))

	var h holder
	require.NoError(t, json.Unmarshal([]byte(`{"buf":"aGVsbG8="}`), &h))
	assert.Equal(t, Bytes("hello"), h.Buf)

	h = holder{Buf: Bytes("keep")}
	require.NoError(t, json.Unmarshal([]byte(`{"buf":null}`), &h))
	assert.Equal(t, Bytes("keep"), h.Buf)

	assert.Error(t, json.Unmarshal([]byte(`{"buf":[1,2]}`), &h))
}

func TestBytes_UnmarshalEscapedString(t *testing.T) {
	var b Bytes
	require.NoError(t, json.Unmarshal([]byte(`"\/w=="`), &b))
	assert.Equal(t, Bytes{0xFF}, b)

	require.NoError(t, json.Unmarshal([]byte(`"\u0061GVsbG8="`), &b))
	assert.Equal(t, Bytes("hello"), b)

	assert.ErrorIs(t, b.UnmarshalJSON([]byte(`42`)), ErrInvalidBuffer)
}
