package srtp

// EventKind identifies the class of notable, non-fatal condition Protect or
// Unprotect observed while processing a packet.
type EventKind int

const (
	// EventSSRCCollision fires when a packet's implied direction
	// (sender for protect, receiver for unprotect) disagrees with the
	// stream's already-established direction. The packet is still
	// processed; this is advisory only.
	EventSSRCCollision EventKind = iota

	// EventKeySoftLimit fires exactly once, the first time a stream's
	// usage counter crosses its soft threshold. Processing continues.
	EventKeySoftLimit

	// EventKeyHardLimit fires exactly once, the first time a stream's
	// usage counter crosses its hard threshold. The triggering packet is
	// rejected with ErrKeyExpired.
	EventKeyHardLimit

	// EventPacketIndexLimit fires when an RTCP stream's sender-side
	// index counter is exhausted (would exceed 2^31 - 1).
	EventPacketIndexLimit
)

func (k EventKind) String() string {
	switch k {
	case EventSSRCCollision:
		return "ssrc collision"
	case EventKeySoftLimit:
		return "key soft limit"
	case EventKeyHardLimit:
		return "key hard limit"
	case EventPacketIndexLimit:
		return "packet index limit"
	default:
		return "unknown event"
	}
}

// Event is delivered synchronously to a session's event handler from the
// goroutine that called Protect/Unprotect. Counter is populated for the two
// limit events and is the usage/index counter value that triggered them.
type Event struct {
	Kind    EventKind
	SSRC    uint32
	Counter uint64
}

// EventHandler receives Events. A handler must not call back into the
// session that is delivering the event: events fire synchronously
// mid-Protect/Unprotect and the session is not reentrant.
type EventHandler func(Event)
