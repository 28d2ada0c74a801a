package track

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/pion/interceptor"
	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"

	"github.com/thesyncim/rtcbridge/pkg/codec"
	"github.com/thesyncim/rtcbridge/pkg/frame"
)

// ImagePusher accepts encoded images. *rtc.MediaEngine implements it.
type ImagePusher interface {
	PushEncodedVideoImage(image []byte, info frame.EncodedVideoFrameInfo, videoTrackID uint32) error
}

// RTPReader yields RTP packets. *webrtc.TrackRemote implements it.
type RTPReader interface {
	ReadRTP() (*rtp.Packet, interceptor.Attributes, error)
}

// PusherConfig configures a Pusher.
type PusherConfig struct {
	Codec        codec.VideoCodecType
	VideoTrackID uint32
	UID          uint32
	Logger       logrus.FieldLogger
}

// Pusher rebuilds encoded images from RTP and pushes each complete image
// into the engine's external encoded video source.
type Pusher struct {
	config PusherConfig
	target ImagePusher
	log    logrus.FieldLogger

	mu      sync.Mutex
	asm     assembler
	needKey bool
	closed  atomic.Bool

	pushed atomic.Uint64
}

// NewPusher creates a pusher feeding target.
func NewPusher(target ImagePusher, cfg PusherConfig) (*Pusher, error) {
	if target == nil {
		return nil, ErrInvalidConfig
	}
	asm, err := newAssembler(cfg.Codec)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Pusher{
		config:  cfg,
		target:  target,
		asm:     asm,
		needKey: true,
		log: cfg.Logger.WithFields(logrus.Fields{
			"codec":        cfg.Codec.String(),
			"videoTrackId": cfg.VideoTrackID,
		}),
	}, nil
}

// WriteRTP feeds one packet. Images are pushed in arrival order once
// complete; delta images before the first keyframe are discarded.
func (p *Pusher) WriteRTP(pkt *rtp.Packet) error {
	if p.closed.Load() {
		return ErrTrackClosed
	}
	if pkt == nil || len(pkt.Payload) == 0 {
		return nil
	}

	p.mu.Lock()
	f, err := p.asm.push(pkt)
	if err != nil || f == nil {
		p.mu.Unlock()
		return err
	}
	if p.needKey && !f.keyframe {
		p.mu.Unlock()
		return nil
	}
	p.needKey = false
	p.mu.Unlock()

	info := frame.EncodedVideoFrameInfo{
		CodecType: int(p.config.Codec),
		FrameType: frame.VideoFrameTypeDelta,
		TrackID:   int(p.config.VideoTrackID),
		UID:       p.config.UID,
		// RTP video clock is 90 kHz.
		CaptureTimeMs: int64(f.timestamp / 90),
	}
	if f.keyframe {
		info.FrameType = frame.VideoFrameTypeKey
	}
	if err := p.target.PushEncodedVideoImage(f.data, info, p.config.VideoTrackID); err != nil {
		return err
	}
	p.pushed.Add(1)
	return nil
}

// Write parses raw RTP bytes and feeds the packet.
func (p *Pusher) Write(b []byte) (int, error) {
	var pkt rtp.Packet
	if err := pkt.Unmarshal(b); err != nil {
		return 0, err
	}
	return len(b), p.WriteRTP(&pkt)
}

// Run reads packets from r until ctx is done, r reaches EOF, or the pusher
// is closed. Malformed packets and failed pushes are logged and skipped.
func (p *Pusher) Run(ctx context.Context, r RTPReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.closed.Load() {
			return nil
		}
		pkt, _, err := r.ReadRTP()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := p.WriteRTP(pkt); err != nil {
			if errors.Is(err, ErrTrackClosed) {
				return nil
			}
			p.log.WithFields(logrus.Fields{
				"function": "Run",
				"seq":      pkt.SequenceNumber,
			}).WithError(err).Warn("dropping packet")
			p.resync()
		}
	}
}

func (p *Pusher) resync() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asm.reset()
	p.needKey = true
}

// Pushed returns how many images reached the engine.
func (p *Pusher) Pushed() uint64 {
	return p.pushed.Load()
}

// Close stops the pusher. A running Run returns after its current read.
func (p *Pusher) Close() error {
	p.closed.Store(true)
	return nil
}
