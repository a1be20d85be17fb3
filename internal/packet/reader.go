// Package packet provides length-checked big-endian readers and writers for
// the RTP/RTCP wire fields the SRTP transforms parse and emit. All bounds
// validation of header-derived offsets funnels through Reader.CheckRemaining
// so no caller does raw index arithmetic against the packet buffer.
package packet

import (
	"encoding/binary"
	"fmt"
)

var networkOrder = binary.BigEndian

type Reader struct {
	buffer []byte
	offset int
}

func NewReader(buffer []byte) *Reader {
	return &Reader{buffer, 0}
}

func (r *Reader) ReadByte() byte {
	v := r.buffer[r.offset]
	r.offset++
	return v
}

func (r *Reader) ReadUint16() uint16 {
	v := networkOrder.Uint16(r.buffer[r.offset:])
	r.offset += 2
	return v
}

func (r *Reader) ReadUint32() uint32 {
	v := networkOrder.Uint32(r.buffer[r.offset:])
	r.offset += 4
	return v
}

// ReadSlice returns the next n bytes without copying. The caller must not
// hold the slice past the lifetime of the packet buffer.
func (r *Reader) ReadSlice(n int) []byte {
	v := r.buffer[r.offset : r.offset+n]
	r.offset += n
	return v
}

func (r *Reader) Skip(n int) {
	r.offset += n
}

// Return the number of bytes left in the buffer.
func (r *Reader) Remaining() int {
	return len(r.buffer) - r.offset
}

// CheckRemaining validates that at least needed bytes are left before the
// caller reads or skips them; header parsing calls this ahead of every
// variable-length region.
func (r *Reader) CheckRemaining(needed int) error {
	if r.Remaining() < needed {
		return fmt.Errorf("%d bytes remaining, %d needed", r.Remaining(), needed)
	}
	return nil
}
