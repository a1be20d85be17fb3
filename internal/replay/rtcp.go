package replay

// RTCPIndex tracks the monotonic 31-bit SRTCP index (RFC 3711 section 3.4).
// A sending stream advances it with Increment; a receiving stream checks
// and records inbound indices against a sliding bitmap window identical in
// shape to RTPWindow's, just keyed on the bare 31-bit value instead of a
// reconstructed 48-bit one.
type RTCPIndex struct {
	w    *bitmapWindow
	send uint32
}

// maxRTCPIndex is 2^31 - 1, the largest value the 31-bit SRTCP index field
// can hold.
const maxRTCPIndex = 1<<31 - 1

// NewRTCPIndex builds a receiver-side index window of the given size (0
// selects the default of 128; otherwise [64, 2^15)).
func NewRTCPIndex(size uint64) (*RTCPIndex, error) {
	size, err := normalizeSize(size)
	if err != nil {
		return nil, err
	}
	return &RTCPIndex{w: newBitmapWindow(size)}, nil
}

// NewRTCPIndexFromState rebuilds a sender-side RTCPIndex that resumes
// counting from send (the next index Increment will hand out), for
// restoring a stream's SRTCP counter across a process restart instead of
// always starting back at zero.
func NewRTCPIndexFromState(size uint64, send uint32) (*RTCPIndex, error) {
	idx, err := NewRTCPIndex(size)
	if err != nil {
		return nil, err
	}
	idx.send = send
	return idx, nil
}

// Increment advances the sender-side counter and returns the index to place
// in the outbound packet. It fails with ErrIndexLimit once the counter would
// exceed 2^31 - 1; RFC 3711 requires the stream be abandoned at that point
// rather than ever reusing an index.
func (r *RTCPIndex) Increment() (uint32, error) {
	if r.send >= maxRTCPIndex {
		return 0, ErrIndexLimit
	}
	idx := r.send
	r.send++
	return idx, nil
}

// Check validates an inbound 31-bit index against the replay window,
// returning ErrOld or ErrReplayed as appropriate.
func (r *RTCPIndex) Check(idx uint32) error {
	delta := int64(idx) - int64(r.w.highest)
	if !r.w.seen {
		delta = int64(idx)
	}
	return r.w.check(delta)
}

// AddIndex records an inbound index into the window. Call only after
// authentication succeeds.
func (r *RTCPIndex) AddIndex(idx uint32) {
	delta := int64(idx) - int64(r.w.highest)
	if !r.w.seen {
		delta = int64(idx)
	}
	r.w.add(delta)
}
