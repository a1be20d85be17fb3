package packet

import (
	"fmt"
)

// Writer emits big-endian wire fields into a caller-provided buffer; the
// SRTCP trailer (E-bit|index word) is written through it so both halves of
// the wire format share one byte-order implementation.
type Writer struct {
	buffer []byte
	offset int
}

func NewWriter(buffer []byte) *Writer {
	return &Writer{buffer, 0}
}

func (w *Writer) WriteByte(v byte) {
	w.buffer[w.offset] = v
	w.offset++
}

func (w *Writer) WriteUint16(v uint16) {
	networkOrder.PutUint16(w.buffer[w.offset:], v)
	w.offset += 2
}

func (w *Writer) WriteUint32(v uint32) {
	networkOrder.PutUint32(w.buffer[w.offset:], v)
	w.offset += 4
}

// Write the given bytes, if there is enough room.
func (w *Writer) WriteSlice(p []byte) error {
	if err := w.CheckCapacity(len(p)); err != nil {
		return err
	}
	w.offset += copy(w.buffer[w.offset:], p)
	return nil
}

// Return the number of bytes written so far.
func (w *Writer) Length() int {
	return w.offset
}

// Return a slice of the bytes written so far.
func (w *Writer) Bytes() []byte {
	return w.buffer[0:w.offset]
}

func (w *Writer) CheckCapacity(needed int) error {
	if len(w.buffer)-w.offset < needed {
		return fmt.Errorf("%d bytes available, %d needed", len(w.buffer)-w.offset, needed)
	}
	return nil
}
