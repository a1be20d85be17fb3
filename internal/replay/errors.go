package replay

import "github.com/pkg/errors"

// ErrOld is returned by Check when a packet's index falls below the sliding
// window's left edge: it is too old to have a bit in the bitmap at all.
var ErrOld = errors.New("replay: index too old")

// ErrReplayed is returned by Check when a packet's index falls inside the
// window but the corresponding bitmap bit is already set, meaning an
// identical index was already seen and accepted.
var ErrReplayed = errors.New("replay: index already seen")

// ErrIndexLimit is returned by RTCPIndex.Increment when the 31-bit SRTCP
// index would wrap; RFC 3711 requires the stream be abandoned (a fresh key
// exchange performed) rather than ever reusing an index.
var ErrIndexLimit = errors.New("replay: index exhausted")
