package track

import (
	"bytes"
	"fmt"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"

	"github.com/thesyncim/rtcbridge/pkg/codec"
)

const (
	// DefaultMTU is the RTP packet size budget used when none is configured.
	DefaultMTU = 1200

	// videoClockRate is the RTP clock of every video payload format.
	videoClockRate = 90000

	nalTypeIDR = 5
	nalTypeSPS = 7
)

func newPayloader(c codec.VideoCodecType) (rtp.Payloader, error) {
	switch c {
	case codec.VideoCodecH264, codec.VideoCodecGenericH264:
		return &codecs.H264Payloader{}, nil
	case codec.VideoCodecVP8:
		return &codecs.VP8Payloader{}, nil
	case codec.VideoCodecVP9:
		return &codecs.VP9Payloader{}, nil
	case codec.VideoCodecAV1:
		return &codecs.AV1Payloader{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, c)
	}
}

// assembledFrame is one encoded image rebuilt from RTP packets.
type assembledFrame struct {
	data      []byte
	timestamp uint32
	keyframe  bool
}

// assembler rebuilds encoded images from the RTP packets of one stream.
// push returns a frame once the packet carrying the marker bit arrives.
type assembler interface {
	push(pkt *rtp.Packet) (*assembledFrame, error)
	reset()
}

func newAssembler(c codec.VideoCodecType) (assembler, error) {
	switch c {
	case codec.VideoCodecH264, codec.VideoCodecGenericH264:
		return &h264Assembler{}, nil
	case codec.VideoCodecVP8:
		return &vp8Assembler{}, nil
	case codec.VideoCodecVP9:
		return &vp9Assembler{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, c)
	}
}

// frameBuffer accumulates payload bytes sharing one RTP timestamp.
type frameBuffer struct {
	buf       []byte
	timestamp uint32
	started   bool
	keyframe  bool
}

// begin drops a partial frame when a packet with a new timestamp arrives.
func (b *frameBuffer) begin(ts uint32) {
	if b.started && b.timestamp != ts {
		b.buf = b.buf[:0]
		b.keyframe = false
	}
	b.started = true
	b.timestamp = ts
}

func (b *frameBuffer) finish() *assembledFrame {
	if len(b.buf) == 0 {
		return nil
	}
	f := &assembledFrame{
		data:      append([]byte(nil), b.buf...),
		timestamp: b.timestamp,
		keyframe:  b.keyframe,
	}
	b.buf = b.buf[:0]
	b.keyframe = false
	return f
}

func (b *frameBuffer) reset() {
	b.buf = b.buf[:0]
	b.started = false
	b.keyframe = false
}

// h264Assembler emits Annex-B access units.
type h264Assembler struct {
	frameBuffer
	pkt codecs.H264Packet
}

func (a *h264Assembler) push(pkt *rtp.Packet) (*assembledFrame, error) {
	a.begin(pkt.Timestamp)
	nalus, err := a.pkt.Unmarshal(pkt.Payload)
	if err != nil {
		a.reset()
		return nil, fmt.Errorf("h264 unmarshal: %w", err)
	}
	if len(nalus) > 0 {
		if annexBHasKeyframe(nalus) {
			a.keyframe = true
		}
		a.buf = append(a.buf, nalus...)
	}
	if !pkt.Marker {
		return nil, nil
	}
	return a.finish(), nil
}

func (a *h264Assembler) reset() {
	a.frameBuffer.reset()
	a.pkt = codecs.H264Packet{}
}

var annexBStartCode = []byte{0, 0, 1}

// annexBHasKeyframe reports whether an Annex-B stream carries an IDR slice
// or a sequence parameter set.
func annexBHasKeyframe(data []byte) bool {
	for {
		i := bytes.Index(data, annexBStartCode)
		if i < 0 || i+3 >= len(data) {
			return false
		}
		switch data[i+3] & 0x1F {
		case nalTypeIDR, nalTypeSPS:
			return true
		}
		data = data[i+3:]
	}
}

type vp8Assembler struct {
	frameBuffer
	pkt codecs.VP8Packet
}

func (a *vp8Assembler) push(pkt *rtp.Packet) (*assembledFrame, error) {
	a.begin(pkt.Timestamp)
	payload, err := a.pkt.Unmarshal(pkt.Payload)
	if err != nil {
		a.reset()
		return nil, fmt.Errorf("vp8 unmarshal: %w", err)
	}
	// The P bit of the first partition byte is clear on key frames.
	if a.pkt.S == 1 && a.pkt.PID == 0 && len(payload) > 0 {
		a.keyframe = payload[0]&0x01 == 0
	}
	a.buf = append(a.buf, payload...)
	if !pkt.Marker {
		return nil, nil
	}
	return a.finish(), nil
}

type vp9Assembler struct {
	frameBuffer
	pkt codecs.VP9Packet
}

func (a *vp9Assembler) push(pkt *rtp.Packet) (*assembledFrame, error) {
	a.begin(pkt.Timestamp)
	payload, err := a.pkt.Unmarshal(pkt.Payload)
	if err != nil {
		a.reset()
		return nil, fmt.Errorf("vp9 unmarshal: %w", err)
	}
	if a.pkt.B {
		a.keyframe = !a.pkt.P
	}
	a.buf = append(a.buf, payload...)
	if !pkt.Marker && !a.pkt.E {
		return nil, nil
	}
	return a.finish(), nil
}
