// Package track bridges the engine's encoded video to and from pion.
//
// EncodedVideoTrack is a webrtc.TrackLocal fed by the engine's encoded
// video frame observer. Pusher goes the other way: it rebuilds encoded
// images from RTP and pushes them into the engine.
package track

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/sirupsen/logrus"

	"github.com/thesyncim/rtcbridge/pkg/codec"
	"github.com/thesyncim/rtcbridge/pkg/frame"
	"github.com/thesyncim/rtcbridge/pkg/rtc"
)

// Errors
var (
	ErrTrackClosed      = errors.New("track is closed")
	ErrNotBound         = errors.New("track not bound")
	ErrAlreadyBound     = errors.New("track already bound")
	ErrInvalidConfig    = errors.New("invalid config")
	ErrUnsupportedCodec = errors.New("codec has no rtp payload format")
)

// EncodedTrackConfig configures an EncodedVideoTrack.
type EncodedTrackConfig struct {
	ID       string
	StreamID string
	Codec    codec.VideoCodecType

	// UID selects the remote user whose images are forwarded.
	// Zero forwards every user.
	UID uint32

	MTU    uint16 // RTP MTU (default 1200)
	Logger logrus.FieldLogger
}

// EncodedVideoTrack implements webrtc.TrackLocal over images delivered by
// the engine's VideoEncodedFrameObserver. Images are packetized as they
// arrive; nothing is written until the first keyframe after Bind.
type EncodedVideoTrack struct {
	id       string
	streamID string
	codec    codec.VideoCodecType
	config   EncodedTrackConfig
	log      logrus.FieldLogger

	// Bound state
	writer      webrtc.TrackLocalWriter
	codecParams webrtc.RTPCodecParameters
	packetizer  rtp.Packetizer
	rtpTS       uint32
	lastCapture int64
	started     bool
	needKey     bool

	mu     sync.Mutex
	closed atomic.Bool
	bound  atomic.Bool

	forwarded atomic.Uint64
	dropped   atomic.Uint64
}

var (
	_ webrtc.TrackLocal             = (*EncodedVideoTrack)(nil)
	_ rtc.VideoEncodedFrameObserver = (*EncodedVideoTrack)(nil)
)

// NewEncodedVideoTrack creates an unbound track for the given codec.
func NewEncodedVideoTrack(cfg EncodedTrackConfig) (*EncodedVideoTrack, error) {
	if cfg.ID == "" {
		return nil, ErrInvalidConfig
	}
	if _, ok := cfg.Codec.Capability(); !ok {
		return nil, ErrUnsupportedCodec
	}
	if cfg.StreamID == "" {
		cfg.StreamID = cfg.ID
	}
	if cfg.MTU == 0 {
		cfg.MTU = DefaultMTU
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &EncodedVideoTrack{
		id:       cfg.ID,
		streamID: cfg.StreamID,
		codec:    cfg.Codec,
		config:   cfg,
		log:      cfg.Logger.WithFields(logrus.Fields{"track": cfg.ID, "codec": cfg.Codec.String()}),
	}, nil
}

// ID returns the track ID.
func (t *EncodedVideoTrack) ID() string {
	return t.id
}

// RID returns the RTP stream ID (empty for non-simulcast).
func (t *EncodedVideoTrack) RID() string {
	return ""
}

// StreamID returns the stream ID.
func (t *EncodedVideoTrack) StreamID() string {
	return t.streamID
}

// Kind returns webrtc.RTPCodecTypeVideo.
func (t *EncodedVideoTrack) Kind() webrtc.RTPCodecType {
	return webrtc.RTPCodecTypeVideo
}

// Codec returns the engine codec carried by the track.
func (t *EncodedVideoTrack) Codec() codec.VideoCodecType {
	return t.codec
}

// Bind is called by Pion when the track is added to a PeerConnection.
func (t *EncodedVideoTrack) Bind(ctx webrtc.TrackLocalContext) (webrtc.RTPCodecParameters, error) {
	selected, ok := t.selectCodec(ctx.CodecParameters())
	if !ok {
		return webrtc.RTPCodecParameters{}, webrtc.ErrUnsupportedCodec
	}
	if err := t.bind(selected, ctx.SSRC(), ctx.WriteStream()); err != nil {
		return webrtc.RTPCodecParameters{}, err
	}
	return selected, nil
}

func (t *EncodedVideoTrack) selectCodec(offered []webrtc.RTPCodecParameters) (webrtc.RTPCodecParameters, bool) {
	target := t.codec.MimeType()
	for _, p := range offered {
		if strings.EqualFold(p.MimeType, target) {
			return p, true
		}
	}
	return webrtc.RTPCodecParameters{}, false
}

func (t *EncodedVideoTrack) bind(params webrtc.RTPCodecParameters, ssrc webrtc.SSRC, w webrtc.TrackLocalWriter) error {
	if t.closed.Load() {
		return ErrTrackClosed
	}
	if t.bound.Load() {
		return ErrAlreadyBound
	}

	payloader, err := newPayloader(t.codec)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.packetizer = rtp.NewPacketizer(
		t.config.MTU,
		uint8(params.PayloadType),
		uint32(ssrc),
		payloader,
		rtp.NewRandomSequencer(),
		videoClockRate,
	)
	t.writer = w
	t.codecParams = params
	t.rtpTS = rand.Uint32()
	t.lastCapture = 0
	t.started = false
	t.needKey = true
	t.bound.Store(true)

	t.log.WithFields(logrus.Fields{
		"ssrc":        uint32(ssrc),
		"payloadType": uint8(params.PayloadType),
	}).Debug("track bound")
	return nil
}

// Unbind is called when the track is removed from the PeerConnection.
func (t *EncodedVideoTrack) Unbind(webrtc.TrackLocalContext) error {
	t.unbind()
	return nil
}

func (t *EncodedVideoTrack) unbind() {
	if !t.bound.CompareAndSwap(true, false) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.writer = nil
	t.packetizer = nil
}

// OnEncodedVideoFrameReceived packetizes one image from the engine and
// writes it to the bound stream. Images of other users or codecs, and
// delta frames before the first keyframe, are dropped.
func (t *EncodedVideoTrack) OnEncodedVideoFrameReceived(uid uint32, image []byte, info frame.EncodedVideoFrameInfo) {
	if t.closed.Load() || !t.bound.Load() || len(image) == 0 {
		return
	}
	if t.config.UID != 0 && uid != t.config.UID {
		return
	}
	if codec.VideoCodecType(info.CodecType) != t.codec {
		t.dropped.Add(1)
		t.log.WithFields(logrus.Fields{
			"function":  "OnEncodedVideoFrameReceived",
			"codecType": info.CodecType,
		}).Debug("image codec does not match track")
		return
	}

	if err := t.WriteEncodedImage(image, info); err != nil && !errors.Is(err, ErrNotBound) {
		t.log.WithFields(logrus.Fields{
			"function": "OnEncodedVideoFrameReceived",
			"uid":      uid,
		}).WithError(err).Warn("write failed")
	}
}

// WriteEncodedImage packetizes one encoded image and writes the packets.
func (t *EncodedVideoTrack) WriteEncodedImage(image []byte, info frame.EncodedVideoFrameInfo) error {
	if t.closed.Load() {
		return ErrTrackClosed
	}
	if !t.bound.Load() {
		return ErrNotBound
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.packetizer == nil || t.writer == nil {
		return ErrNotBound
	}
	if t.needKey {
		if !info.IsKeyframe() {
			t.dropped.Add(1)
			return nil
		}
		t.needKey = false
	}

	ts := t.timestamp(info)
	for _, p := range t.packetizer.Packetize(image, 0) {
		p.Timestamp = ts
		if _, err := t.writer.WriteRTP(&p.Header, p.Payload); err != nil {
			return err
		}
	}
	t.forwarded.Add(1)
	return nil
}

// timestamp maps the image's capture time onto the RTP clock. Images
// without a capture time advance by one frame interval.
func (t *EncodedVideoTrack) timestamp(info frame.EncodedVideoFrameInfo) uint32 {
	switch {
	case !t.started:
		t.started = true
	case info.CaptureTimeMs > 0 && t.lastCapture > 0:
		if info.CaptureTimeMs > t.lastCapture {
			t.rtpTS += uint32((info.CaptureTimeMs - t.lastCapture) * (videoClockRate / 1000))
		}
	default:
		fps := info.FramesPerSecond
		if fps <= 0 {
			fps = 30
		}
		t.rtpTS += videoClockRate / uint32(fps)
	}
	t.lastCapture = info.CaptureTimeMs
	return t.rtpTS
}

// RequestKeyFrame makes the track wait for the next keyframe before
// writing again.
func (t *EncodedVideoTrack) RequestKeyFrame() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.needKey = true
}

// Stats returns how many images were forwarded and dropped.
func (t *EncodedVideoTrack) Stats() (forwarded, dropped uint64) {
	return t.forwarded.Load(), t.dropped.Load()
}

// Attach registers the track as an encoded video observer of m.
func (t *EncodedVideoTrack) Attach(m *rtc.MediaEngine) error {
	return m.RegisterVideoEncodedFrameObserver(t)
}

// Detach removes the track from m's encoded video observers.
func (t *EncodedVideoTrack) Detach(m *rtc.MediaEngine) error {
	return m.UnregisterVideoEncodedFrameObserver(t)
}

// Close releases all resources.
func (t *EncodedVideoTrack) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.unbind()
	return nil
}
