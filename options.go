package srtp

import "github.com/ukreator/libsrtp/internal/crypto"

// SessionOption configures a Session at construction time.
type SessionOption func(*Session)

// WithKernel overrides the process-wide default crypto kernel with a
// privately owned one: a session need not share mutable process-global
// state with every other session in the program.
func WithKernel(k *crypto.Kernel) SessionOption {
	return func(s *Session) { s.kernel = k }
}

// WithEventHandler installs a per-session callback for collision and
// usage-limit notifications. A nil handler (the default) disables
// reporting; the handler must never call back into the session that
// invoked it.
func WithEventHandler(h EventHandler) SessionOption {
	return func(s *Session) { s.onEvent = h }
}
