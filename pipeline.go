package srtp

import (
	"crypto/subtle"
	"encoding/binary"
	stderrors "errors"

	"github.com/ukreator/libsrtp/internal/replay"
)

// mapReplayErr translates the two sentinel errors internal/replay reports
// into this package's boundary errors.
func mapReplayErr(err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, replay.ErrOld):
		return ErrReplayOld
	case stderrors.Is(err, replay.ErrReplayed):
		return ErrReplayFail
	default:
		return err
	}
}

// resolveForProtect returns the stream an outbound packet for ssrc should
// use, cloning the session's template on first use. There is no
// "provisional" concept on the outbound path: a
// cloned stream is real (and linked into s.streams) the instant it exists.
func (s *Session) resolveForProtect(ssrc uint32) (*stream, error) {
	if st, ok := s.GetStream(ssrc); ok {
		return st, nil
	}
	if s.template == nil {
		return nil, ErrNoCtx
	}
	return s.cloneTemplate(ssrc)
}

// lookup describes the stream (or provisional template) a resolveForUnprotect
// call found: the real stream if one exists, else the template standing in
// provisionally. Shared by SRTP and SRTCP unprotect.
type lookup struct {
	st          *stream
	provisional bool
}

// resolveForUnprotect mirrors resolveForProtect for the inbound path, except
// that an absent real stream yields the template itself, unmodified, as a
// provisional stand-in. The caller must not mutate l.st's replay state
// directly when l.provisional is true; see promote.
func (s *Session) resolveForUnprotect(ssrc uint32) (lookup, error) {
	if st, ok := s.GetStream(ssrc); ok {
		return lookup{st: st}, nil
	}
	if s.template == nil {
		return lookup{}, ErrNoCtx
	}
	return lookup{st: s.template, provisional: true}, nil
}

// promote finalizes a provisional lookup into a real, linked stream the
// instant its packet has authenticated successfully. For a
// non-provisional lookup it returns l.st unchanged. Since a freshly cloned
// stream's direction starts unknown, promotion can never collide with
// itself; any collision reporting happens against an already-real stream
// before promotion is even considered.
func (s *Session) promote(l lookup, ssrc uint32) (*stream, error) {
	if !l.provisional {
		return l.st, nil
	}
	return s.cloneTemplate(ssrc)
}

// noteDirectionAndEmit applies the direction state machine to st and, on a
// collision, emits EventSSRCCollision. It must only be called with a real
// (already-linked, or just-promoted) stream, never the bare template,
// which would otherwise have its direction permanently fixed by whichever
// SSRC happens to arrive first.
func (s *Session) noteDirectionAndEmit(st *stream, ssrc uint32, wantSender bool) {
	if st.noteDirection(wantSender) {
		s.emit(Event{Kind: EventSSRCCollision, SSRC: ssrc})
	}
}

// applyLimit advances st's usage counter and emits the soft/hard limit
// events. A hard crossing is reported back as ErrKeyExpired:
// the caller must stop processing the packet without emitting it.
func (s *Session) applyLimit(st *stream, ssrc uint32) error {
	hardAlreadyFired := st.limit.hardFired
	switch st.limit.update() {
	case limitHardCrossed:
		if !hardAlreadyFired {
			s.emit(Event{Kind: EventKeyHardLimit, SSRC: ssrc, Counter: st.limit.count})
		}
		return ErrKeyExpired
	case limitSoftCrossed:
		s.emit(Event{Kind: EventKeySoftLimit, SSRC: ssrc, Counter: st.limit.count})
	}
	return nil
}

// bigEndianROC returns the top 32 bits of a 48-bit extended packet index as
// a 4-byte big-endian value, the extra bytes legacy SRTP authentication
// appends after the authenticated packet region (RFC 3711 section 4.2,
// M = Authenticated Portion || ROC).
func bigEndianROC(index uint64) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(index>>16))
	return b[:]
}

// writeKeystreamPrefix fills prefix (already sized to mac.PrefixLength())
// with pure keystream from cipher, for universal-hash MACs that fold a
// keystream prefix into their output. It is a no-op when prefixLen is 0,
// which is always true for the HMAC-SHA1 and
// NULL MACs this repository implements; the hook exists because
// crypto.Mac.PrefixLength is part of the capability contract every MAC
// (including future ones) must answer.
func writeKeystreamPrefix(cip interface {
	Output(buf []byte, n int) error
}, prefixLen int) ([]byte, error) {
	if prefixLen == 0 {
		return nil, nil
	}
	prefix := make([]byte, prefixLen)
	if err := cip.Output(prefix, prefixLen); err != nil {
		return nil, err
	}
	return prefix, nil
}

// applyPrefix XORs a universal-hash MAC's keystream prefix into its computed
// tag in place. A no-op when prefix is nil (PrefixLength() == 0).
func applyPrefix(tag, prefix []byte) {
	for i := 0; i < len(tag) && i < len(prefix); i++ {
		tag[i] ^= prefix[i]
	}
}

// constantTimeEqual reports whether a and b are identical, in time
// independent of where (or whether) they first differ. Tag comparison
// must never short-circuit on the first differing byte.
func constantTimeEqual(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}
