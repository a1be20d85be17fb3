package replay

// RTPWindow reconstructs the 48-bit extended packet index (ROC<<16 | seq)
// from an inbound 16-bit RTP sequence number and checks it against a sliding
// replay window, per RFC 3711 section 3.3.1 and Appendix A.
type RTPWindow struct {
	w *bitmapWindow
}

// NewRTPWindow builds a window of the given size. A size of 0 selects the
// default of 128; sizes must otherwise fall in [64, 2^15).
func NewRTPWindow(size uint64) (*RTPWindow, error) {
	size, err := normalizeSize(size)
	if err != nil {
		return nil, err
	}
	return &RTPWindow{w: newBitmapWindow(size)}, nil
}

// EstimateIndex picks the rollover counter value that brings the candidate
// extended index closest to the highest index seen so far, per the
// algorithm of RFC 3711 Appendix A, and returns both the candidate index and
// its signed distance from the current highest index.
func (rw *RTPWindow) EstimateIndex(seq uint16) (index uint64, delta int64) {
	if !rw.w.seen {
		return uint64(seq), int64(seq)
	}
	roc := rw.w.highest >> 16
	highSeq := uint16(rw.w.highest)

	diff := int32(seq) - int32(highSeq)
	var candidateROC uint64
	switch {
	case diff < -32768 && roc < 0xFFFFFFFF:
		candidateROC = roc + 1
	case diff >= 32768 && roc > 0:
		candidateROC = roc - 1
	default:
		candidateROC = roc
	}

	idx := (candidateROC << 16) | uint64(seq)
	return idx, int64(idx) - int64(rw.w.highest)
}

// Check validates the delta produced by EstimateIndex against the window,
// returning ErrOld or ErrReplayed as appropriate, or nil if the packet
// should be accepted.
func (rw *RTPWindow) Check(delta int64) error {
	return rw.w.check(delta)
}

// AddIndex records a packet's delta into the window. Call only after
// authentication succeeds on the receive path, or unconditionally on the
// send path.
func (rw *RTPWindow) AddIndex(delta int64) {
	rw.w.add(delta)
}

// HighestIndex returns the current 48-bit high-water mark. The packet
// pipeline does not call it; it takes the index from EstimateIndex.
func (rw *RTPWindow) HighestIndex() uint64 {
	return rw.w.highest
}
