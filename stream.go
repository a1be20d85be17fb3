package srtp

import (
	"github.com/pkg/errors"

	"github.com/ukreator/libsrtp/ekt"
	"github.com/ukreator/libsrtp/internal/crypto"
	"github.com/ukreator/libsrtp/internal/kdf"
	"github.com/ukreator/libsrtp/internal/replay"
)

// direction tracks which role a stream has settled into. It starts unknown
// and becomes monotone: once sender or receiver, any packet implying the
// other raises EventSSRCCollision rather than changing it back.
type direction int

const (
	directionUnknown direction = iota
	directionSender
	directionReceiver
)

// limitStatus is the result of a usageLimit.update() call.
type limitStatus int

const (
	limitNormal limitStatus = iota
	limitSoftCrossed
	limitHardCrossed
)

// usageLimit is a 48-bit monotonically increasing per-stream packet
// counter with two one-shot thresholds.
type usageLimit struct {
	count uint64
	soft  uint64
	hard  uint64

	softFired bool
	hardFired bool
}

func newUsageLimit(soft, hard uint64) *usageLimit {
	return &usageLimit{soft: soft, hard: hard}
}

func (u *usageLimit) update() limitStatus {
	u.count++
	if u.hard != 0 && u.count >= u.hard {
		if !u.hardFired {
			u.hardFired = true
		}
		return limitHardCrossed
	}
	if u.soft != 0 && u.count >= u.soft {
		status := limitNormal
		if !u.softFired {
			u.softFired = true
			status = limitSoftCrossed
		}
		return status
	}
	return limitNormal
}

// stream is the per-SSRC (or, for the template, per-policy) bundle of
// crypto objects, replay state, and bookkeeping the protect/unprotect
// pipeline operates on. Wildcard policies hold one template stream and
// clone it per SSRC on the first authenticated packet.
type stream struct {
	ssrc       uint32
	isTemplate bool
	isClone    bool
	direction  direction

	rtpServices  ServiceFlags
	rtcpServices ServiceFlags

	rtpCipher  crypto.Cipher
	rtpMac     crypto.Mac
	rtcpCipher crypto.Cipher
	rtcpMac    crypto.Mac

	rtpSalt  [14]byte
	rtcpSalt [14]byte

	rtpWindow *replay.RTPWindow
	rtcpIndex *replay.RTCPIndex

	limit *usageLimit

	allowRepeatTx bool
	ekt           ekt.Handle
}

func authMac(kernel *crypto.Kernel, typ AuthType, tagLen int) (crypto.Mac, error) {
	switch typ {
	case AuthNull:
		return crypto.NewNullMac(), nil
	case AuthHMACSHA1:
		return crypto.NewHMACSHA1(tagLen), nil
	default:
		return nil, errors.Errorf("srtp: unknown auth type %d", typ)
	}
}

// newStream allocates a stream's crypto/replay objects from kernel and
// installs keys per policy. It is used both for specific-SSRC streams and
// for the session's template (whose ssrc field is left zero and whose
// isTemplate flag is set by the caller).
func newStream(policy *Policy, kernel *crypto.Kernel) (*stream, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}

	rtpCipher, err := kernel.Cipher(policy.RTP.Cipher, policy.RTP.AuthTagLen)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: new stream")
	}
	rtcpCipher, err := kernel.Cipher(policy.RTCP.Cipher, policy.RTCP.AuthTagLen)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: new stream")
	}
	rtpMac, err := authMac(kernel, policy.RTP.Auth, policy.RTP.AuthTagLen)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: new stream")
	}
	rtcpMac, err := authMac(kernel, policy.RTCP.Auth, policy.RTCP.AuthTagLen)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: new stream")
	}

	windowSize := uint64(policy.WindowSize)
	rtpWindow, err := replay.NewRTPWindow(windowSize)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: new stream")
	}
	rtcpIndex, err := replay.NewRTCPIndex(windowSize)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: new stream")
	}

	s := &stream{
		rtpCipher:     rtpCipher,
		rtpMac:        rtpMac,
		rtcpCipher:    rtcpCipher,
		rtcpMac:       rtcpMac,
		rtpWindow:     rtpWindow,
		rtcpIndex:     rtcpIndex,
		rtpServices:   policy.RTP.Services,
		rtcpServices:  policy.RTCP.Services,
		allowRepeatTx: policy.AllowRepeatTx,
		ekt:           policy.EKT,
		limit:         newUsageLimit(policy.KeyLimitSoft, policy.KeyLimitHard),
	}
	if err := s.init(policy); err != nil {
		return nil, err
	}
	return s, nil
}

// init installs the derived session keys/salts into s's crypto objects.
// The master key buffer is split into a raw cipher key and a salt; AEAD
// policies carry a 12-byte wire salt that is zero-extended to the KDF's
// 14-byte salt context.
func (s *stream) init(policy *Policy) error {
	if policy.SSRC.Type == SSRCSpecific {
		s.ssrc = policy.SSRC.Value
	}

	baseLen := crypto.KeyLengthFor(policy.RTP.Cipher)
	if baseLen == 0 || baseLen > len(policy.MasterKey) {
		return errors.Wrap(ErrBadParam, "srtp: stream init: invalid cipher key length")
	}
	masterKey := policy.MasterKey[:baseLen]
	rawSalt := policy.MasterKey[baseLen:]
	if len(rawSalt) > 14 {
		return errors.Wrap(ErrBadParam, "srtp: stream init: master salt too long")
	}
	var masterSalt [14]byte
	copy(masterSalt[:], rawSalt)

	rtpSalt, rtcpSalt, err := kdf.DeriveStreamKeys(masterKey, masterSalt[:], s.rtpCipher, s.rtpMac, s.rtcpCipher, s.rtcpMac)
	if err != nil {
		return errors.Wrap(err, "srtp: stream init")
	}
	s.rtpSalt = rtpSalt
	s.rtcpSalt = rtcpSalt

	return nil
}

// clone produces a new stream bound to ssrc that shares this stream's
// crypto objects, salts, and usage limit (all derived from the same master
// key) but owns fresh replay state, per the clone-on-authenticate pattern
// wildcard (template) policies use.
func (s *stream) clone(ssrc uint32) (*stream, error) {
	rtpWindow, err := replay.NewRTPWindow(0)
	if err != nil {
		return nil, err
	}
	rtcpIndex, err := replay.NewRTCPIndex(0)
	if err != nil {
		return nil, err
	}
	c := &stream{
		ssrc:          ssrc,
		isClone:       true,
		rtpCipher:     s.rtpCipher,
		rtpMac:        s.rtpMac,
		rtcpCipher:    s.rtcpCipher,
		rtcpMac:       s.rtcpMac,
		rtpServices:   s.rtpServices,
		rtcpServices:  s.rtcpServices,
		rtpSalt:       s.rtpSalt,
		rtcpSalt:      s.rtcpSalt,
		rtpWindow:     rtpWindow,
		rtcpIndex:     rtcpIndex,
		limit:         s.limit,
		allowRepeatTx: s.allowRepeatTx,
		ekt:           s.ekt,
	}
	return c, nil
}

// destroy zeroizes this stream's non-shared key material. Cipher/MAC
// objects are only owned by the stream that created them (isClone false);
// a clone must never tear those down, since they are the same live objects
// the template (and every sibling clone) still uses.
func (s *stream) destroy() {
	zero(s.rtpSalt[:])
	zero(s.rtcpSalt[:])
	if s.isClone {
		return
	}
	s.rtpCipher = nil
	s.rtpMac = nil
	s.rtcpCipher = nil
	s.rtcpMac = nil
	s.limit = nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// noteDirection applies the direction state machine: the first call from
// either role fixes it; a later call implying the other role reports a
// collision (the caller still processes the packet).
func (s *stream) noteDirection(wantSender bool) (collision bool) {
	want := directionReceiver
	if wantSender {
		want = directionSender
	}
	if s.direction == directionUnknown {
		s.direction = want
		return false
	}
	return s.direction != want
}
