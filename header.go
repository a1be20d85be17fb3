package srtp

import (
	"github.com/ukreator/libsrtp/internal/packet"
)

// rtpHeaderInfo is the subset of the RTP fixed header and extension the
// protect/unprotect pipeline needs: the SSRC to dispatch on, the sequence
// number for replay-index estimation, and headerLen, the offset where the
// (possibly encrypted) payload begins.
type rtpHeaderInfo struct {
	headerLen int
	ssrc      uint32
	seq       uint16
}

// parseRTPHeader validates and measures an RTP header per RFC 3711's wire
// format, following the length-checked-reader pattern internal/packet
// provides: every variable-length region (CSRC list, extension) is bounds
// checked before being skipped.
func parseRTPHeader(buf []byte) (rtpHeaderInfo, error) {
	r := packet.NewReader(buf)
	if err := r.CheckRemaining(12); err != nil {
		return rtpHeaderInfo{}, ErrBadParam
	}

	b0 := r.ReadByte()
	if version := b0 >> 6; version != 2 {
		return rtpHeaderInfo{}, ErrParse
	}
	extension := b0&0x10 != 0
	cc := int(b0 & 0x0F)

	r.Skip(1) // marker + payload type
	seq := r.ReadUint16()
	r.Skip(4) // timestamp
	ssrc := r.ReadUint32()

	hdrLen := 12 + 4*cc
	if err := r.CheckRemaining(4 * cc); err != nil {
		return rtpHeaderInfo{}, ErrParse
	}
	r.Skip(4 * cc)

	if extension {
		if err := r.CheckRemaining(4); err != nil {
			return rtpHeaderInfo{}, ErrParse
		}
		r.Skip(2) // extension profile
		extLen := int(r.ReadUint16())
		if err := r.CheckRemaining(4 * extLen); err != nil {
			return rtpHeaderInfo{}, ErrParse
		}
		hdrLen += 4 + 4*extLen
	}

	return rtpHeaderInfo{headerLen: hdrLen, ssrc: ssrc, seq: seq}, nil
}

// rtcpHeaderInfo is the RTCP fixed-header information the pipeline needs:
// the sender SSRC (for IV/AAD construction) and headerLen, always 8 for the
// combined header+SSRC fields RFC 3711 treats as "the RTCP header" in its
// SRTCP framing.
type rtcpHeaderInfo struct {
	headerLen int
	ssrc      uint32
}

func parseRTCPHeader(buf []byte) (rtcpHeaderInfo, error) {
	r := packet.NewReader(buf)
	if err := r.CheckRemaining(8); err != nil {
		return rtcpHeaderInfo{}, ErrBadParam
	}
	r.Skip(4)
	ssrc := r.ReadUint32()
	return rtcpHeaderInfo{headerLen: 8, ssrc: ssrc}, nil
}
