package replay

import "github.com/pkg/errors"

const (
	minWindowSize     = 64
	maxWindowSize     = 1<<15 - 1
	defaultWindowSize = 128
)

func normalizeSize(size uint64) (uint64, error) {
	if size == 0 {
		size = defaultWindowSize
	}
	if size < minWindowSize || size > maxWindowSize {
		return 0, errors.Errorf("replay: window size %d out of range [%d, %d]", size, minWindowSize, maxWindowSize)
	}
	return size, nil
}

// bitmapWindow is the sliding-window replay bitmap shared by the RTP and
// RTCP receive paths: bit 0 always corresponds to the highest index seen so
// far, bit k to (highest - k). The bitmap is stored as a slice of uint64
// words and shifted as a unit, the same idiom libsrtp-style implementations
// use to avoid a bit-at-a-time shift loop over the whole window.
type bitmapWindow struct {
	size    uint64
	highest uint64
	words   []uint64
	seen    bool
}

func newBitmapWindow(size uint64) *bitmapWindow {
	return &bitmapWindow{size: size, words: make([]uint64, (size+63)/64)}
}

func (w *bitmapWindow) testBit(pos uint64) bool {
	if pos >= w.size {
		return false
	}
	return w.words[pos/64]&(1<<(pos%64)) != 0
}

func (w *bitmapWindow) setBit(pos uint64) {
	if pos >= w.size {
		return
	}
	w.words[pos/64] |= 1 << (pos % 64)
}

func (w *bitmapWindow) shiftLeft(n uint64) {
	if n >= uint64(len(w.words))*64 {
		for i := range w.words {
			w.words[i] = 0
		}
		return
	}
	wordShift := int(n / 64)
	bitShift := n % 64
	for i := len(w.words) - 1; i >= 0; i-- {
		src := i - wordShift
		var v uint64
		if src >= 0 {
			v = w.words[src] << bitShift
			if bitShift > 0 && src-1 >= 0 {
				v |= w.words[src-1] >> (64 - bitShift)
			}
		}
		w.words[i] = v
	}
}

// check reports whether the packet at delta = index - highest should be
// accepted: too old (beyond the trailing edge of the window) or a repeat of
// an index already recorded.
func (w *bitmapWindow) check(delta int64) error {
	if !w.seen {
		return nil
	}
	if delta <= -int64(w.size) {
		return ErrOld
	}
	if delta <= 0 && w.testBit(uint64(-delta)) {
		return ErrReplayed
	}
	return nil
}

// add records the packet at delta, advancing the window if delta is
// positive (a new highest index) or simply marking the bit if it falls
// inside the existing window. Callers must call add only after
// authentication has succeeded (or for outbound packets, unconditionally).
func (w *bitmapWindow) add(delta int64) {
	if !w.seen {
		w.seen = true
		w.highest = uint64(int64(w.highest) + delta)
		w.setBit(0)
		return
	}
	if delta > 0 {
		w.shiftLeft(uint64(delta))
		w.highest += uint64(delta)
		w.setBit(0)
		return
	}
	w.setBit(uint64(-delta))
}
