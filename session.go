package srtp

import (
	"github.com/pkg/errors"

	"github.com/ukreator/libsrtp/internal/crypto"
	"github.com/ukreator/libsrtp/internal/logging"
)

var sessionLog = logging.DefaultLogger.WithTag("srtp")

// Session owns an ordered collection of streams keyed by SSRC, plus at most
// one template stream for wildcard (any-inbound/any-outbound) policies.
// Key exchange and socket transport live with the caller; a session only
// does SSRC bookkeeping and the packet transforms.
type Session struct {
	streams  []*stream
	template *stream

	kernel  *crypto.Kernel
	onEvent EventHandler

	UserData any
}

// NewSession allocates an empty session and adds one stream per policy.
func NewSession(policies []Policy, opts ...SessionOption) (*Session, error) {
	s := &Session{kernel: crypto.DefaultKernel}
	for _, opt := range opts {
		opt(s)
	}
	for i := range policies {
		if err := s.AddStream(&policies[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// AddStream builds a stream from policy and links it into the session,
// dispatching on policy.SSRC.Type.
func (s *Session) AddStream(policy *Policy) error {
	switch policy.SSRC.Type {
	case SSRCSpecific:
		st, err := newStream(policy, s.kernel)
		if err != nil {
			return err
		}
		s.streams = append([]*stream{st}, s.streams...)
		return nil

	case SSRCAnyOutbound, SSRCAnyInbound:
		if s.template != nil {
			return errors.Wrap(ErrBadParam, "srtp: session already has a template stream")
		}
		st, err := newStream(policy, s.kernel)
		if err != nil {
			return err
		}
		st.isTemplate = true
		if policy.SSRC.Type == SSRCAnyOutbound {
			st.direction = directionSender
		} else {
			st.direction = directionReceiver
		}
		s.template = st
		return nil

	default:
		return errors.Wrap(ErrBadParam, "srtp: policy has no SSRC selector")
	}
}

// GetStream returns the stream bound to ssrc, if any. It never returns the
// template: callers that need provisional-stream semantics go through the
// protect/unprotect entry points, which clone the template themselves.
func (s *Session) GetStream(ssrc uint32) (*stream, bool) {
	for _, st := range s.streams {
		if st.ssrc == ssrc {
			return st, true
		}
	}
	return nil, false
}

// RemoveStream unlinks and destroys the stream bound to ssrc.
func (s *Session) RemoveStream(ssrc uint32) error {
	for i, st := range s.streams {
		if st.ssrc == ssrc {
			st.destroy()
			s.streams = append(s.streams[:i], s.streams[i+1:]...)
			return nil
		}
	}
	return ErrNoCtx
}

// Close tears down every stream and the template. Stream teardown has no
// failure path, so Close always returns nil. Clones leave the crypto
// objects they share with the template alone (see stream.destroy).
func (s *Session) Close() error {
	for _, st := range s.streams {
		st.destroy()
	}
	s.streams = nil
	if s.template != nil {
		s.template.destroy()
		s.template = nil
	}
	return nil
}

// Destroy is an alias for Close, kept for callers used to libsrtp-style
// naming.
func (s *Session) Destroy() error {
	return s.Close()
}

func (s *Session) cloneTemplate(ssrc uint32) (*stream, error) {
	if s.template == nil {
		return nil, ErrNoCtx
	}
	st, err := s.template.clone(ssrc)
	if err != nil {
		return nil, errors.Wrap(err, "srtp: clone template")
	}
	s.streams = append([]*stream{st}, s.streams...)
	sessionLog.Debug("cloned template stream for ssrc=%#x", ssrc)
	return st, nil
}

func (s *Session) emit(ev Event) {
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}
