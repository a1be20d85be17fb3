package srtp

import (
	"github.com/ukreator/libsrtp/internal/crypto"
	"github.com/ukreator/libsrtp/internal/packet"
	"github.com/ukreator/libsrtp/internal/replay"
)

// ProtectRTP transforms the plaintext RTP packet buf[:n] into its SRTP wire
// form in place, returning the new (grown) length. buf must have spare
// capacity for the authentication tag (and, for AEAD ciphers, the AEAD tag
// in its place) beyond n; callers size their buffers the way any in-place
// wire codec in this codebase does (cf. internal/packet.Writer), with room
// for the largest tag a configured policy can append.
func (s *Session) ProtectRTP(buf []byte, n int) (int, error) {
	hdr, err := parseRTPHeader(buf[:n])
	if err != nil {
		return n, err
	}

	st, err := s.resolveForProtect(hdr.ssrc)
	if err != nil {
		return n, err
	}
	s.noteDirectionAndEmit(st, hdr.ssrc, true)

	if st.rtpCipher.IsAEAD() {
		return s.protectRTPAEAD(st, buf, n, hdr)
	}
	return s.protectRTPLegacy(st, buf, n, hdr)
}

// checkAndAdvanceWindow applies the outbound replay bookkeeping shared by
// the legacy and AEAD RTP protect paths: estimate the extended index, check
// it against the window, and advance the window unless this is an allowed
// retransmission of an index already recorded.
func checkAndAdvanceWindow(w *replay.RTPWindow, seq uint16, allowRepeatTx bool) (uint64, error) {
	index, delta := w.EstimateIndex(seq)
	err := w.Check(delta)
	switch {
	case err == nil:
		w.AddIndex(delta)
	case err == replay.ErrReplayed && allowRepeatTx:
		// Retransmission of an already-sent packet: proceed without
		// advancing the window.
	default:
		return index, mapReplayErr(err)
	}
	return index, nil
}

func (s *Session) protectRTPLegacy(st *stream, buf []byte, n int, hdr rtpHeaderInfo) (int, error) {
	if err := s.applyLimit(st, hdr.ssrc); err != nil {
		return n, err
	}

	encrypt := st.rtpServices.confidentiality()
	authenticate := st.rtpServices.authentication()
	tagLen := st.rtpMac.TagLength()
	if cap(buf) < n+tagLen {
		return n, ErrBadParam
	}

	index, err := checkAndAdvanceWindow(st.rtpWindow, hdr.seq, st.allowRepeatTx)
	if err != nil {
		return n, err
	}

	iv := buildICMIV(st.rtpSalt, hdr.ssrc, index)
	if st.rtpCipher.Algorithm() == crypto.AlgorithmNull {
		iv = nullRTPIV(index)
	}
	if err := st.rtpCipher.SetIV(iv, crypto.DirectionEncrypt); err != nil {
		return n, ErrCipherFail
	}

	buf = buf[:n+tagLen]
	tagStart := n

	var prefix []byte
	if authenticate {
		var perr error
		prefix, perr = writeKeystreamPrefix(st.rtpCipher, st.rtpMac.PrefixLength())
		if perr != nil {
			return n, ErrCipherFail
		}
	}

	if encrypt {
		if _, err := st.rtpCipher.Encrypt(buf[hdr.headerLen:tagStart], tagStart-hdr.headerLen); err != nil {
			return n, ErrCipherFail
		}
	}

	if authenticate {
		st.rtpMac.Start()
		st.rtpMac.Update(buf[:tagStart])
		tag := st.rtpMac.Compute(bigEndianROC(index), buf[tagStart:tagStart+tagLen])
		applyPrefix(tag, prefix)
		return tagStart + tagLen, nil
	}
	return tagStart, nil
}

func (s *Session) protectRTPAEAD(st *stream, buf []byte, n int, hdr rtpHeaderInfo) (int, error) {
	if err := s.applyLimit(st, hdr.ssrc); err != nil {
		return n, err
	}

	index, err := checkAndAdvanceWindow(st.rtpWindow, hdr.seq, st.allowRepeatTx)
	if err != nil {
		return n, err
	}

	tagLen := st.rtpCipher.TagLength()
	if cap(buf) < n+tagLen {
		return n, ErrBadParam
	}

	iv := buildAEADRTPIV(st.rtpSalt, hdr.ssrc, uint32(index>>16), hdr.seq)
	if err := st.rtpCipher.SetIV(iv, crypto.DirectionEncrypt); err != nil {
		return n, ErrCipherFail
	}
	if err := st.rtpCipher.SetAAD(buf[:hdr.headerLen]); err != nil {
		return n, ErrCipherFail
	}

	encLen := n - hdr.headerLen
	if _, err := st.rtpCipher.Encrypt(buf[hdr.headerLen:n], encLen); err != nil {
		return n, ErrCipherFail
	}

	buf = buf[:n+tagLen]
	if _, err := st.rtpCipher.GetTag(buf[n : n+tagLen]); err != nil {
		return n, ErrCipherFail
	}
	return n + tagLen, nil
}

// ProtectRTCP transforms the plaintext RTCP compound packet buf[:n] into its
// SRTCP wire form in place: [payload][trailer: E|index (4)][auth tag].
// SRTCP always authenticates (RFC 3711 has no unauthenticated SRTCP mode).
func (s *Session) ProtectRTCP(buf []byte, n int) (int, error) {
	hdr, err := parseRTCPHeader(buf[:n])
	if err != nil {
		return n, err
	}

	st, err := s.resolveForProtect(hdr.ssrc)
	if err != nil {
		return n, err
	}
	s.noteDirectionAndEmit(st, hdr.ssrc, true)

	if st.rtcpCipher.IsAEAD() {
		return s.protectRTCPAEAD(st, buf, n, hdr)
	}
	return s.protectRTCPLegacy(st, buf, n, hdr)
}

func (s *Session) protectRTCPLegacy(st *stream, buf []byte, n int, hdr rtcpHeaderInfo) (int, error) {
	tagLen := st.rtcpMac.TagLength()
	if cap(buf) < n+4+tagLen {
		return n, ErrBadParam
	}

	index, err := st.rtcpIndex.Increment()
	if err != nil {
		s.emit(Event{Kind: EventPacketIndexLimit, SSRC: hdr.ssrc})
		return n, ErrKeyExpired
	}

	encrypt := st.rtcpServices.confidentiality()

	var iv [16]byte
	if st.rtcpCipher.Algorithm() == crypto.AlgorithmNull {
		iv = nullRTCPIV(index)
	} else {
		iv = buildRTCPICMIV(st.rtcpSalt, hdr.ssrc, index)
	}
	if err := st.rtcpCipher.SetIV(iv, crypto.DirectionEncrypt); err != nil {
		return n, ErrCipherFail
	}

	prefix, perr := writeKeystreamPrefix(st.rtcpCipher, st.rtcpMac.PrefixLength())
	if perr != nil {
		return n, ErrCipherFail
	}

	if encrypt {
		if _, err := st.rtcpCipher.Encrypt(buf[hdr.headerLen:n], n-hdr.headerLen); err != nil {
			return n, ErrCipherFail
		}
	}

	buf = buf[:n+4+tagLen]
	trailer := index
	if encrypt {
		trailer |= 0x80000000
	}
	packet.NewWriter(buf[n : n+4]).WriteUint32(trailer)

	if st.ekt != nil {
		if err := st.ekt.ProtectAuthTag(buf[n+4 : n+4+tagLen]); err != nil {
			return n, ErrAuthFail
		}
	}

	st.rtcpMac.Start()
	st.rtcpMac.Update(buf[:n+4])
	tag := st.rtcpMac.Compute(nil, buf[n+4:n+4+tagLen])
	applyPrefix(tag, prefix)

	return n + 4 + tagLen, nil
}

func (s *Session) protectRTCPAEAD(st *stream, buf []byte, n int, hdr rtcpHeaderInfo) (int, error) {
	tagLen := st.rtcpCipher.TagLength()
	if cap(buf) < n+4+tagLen {
		return n, ErrBadParam
	}

	index, err := st.rtcpIndex.Increment()
	if err != nil {
		s.emit(Event{Kind: EventPacketIndexLimit, SSRC: hdr.ssrc})
		return n, ErrKeyExpired
	}

	encrypt := st.rtcpServices.confidentiality()
	trailer := index
	if encrypt {
		trailer |= 0x80000000
	}

	iv := buildAEADRTCPIV(st.rtcpSalt, hdr.ssrc, index)
	if err := st.rtcpCipher.SetIV(iv, crypto.DirectionEncrypt); err != nil {
		return n, ErrCipherFail
	}

	var trailerBytes [4]byte
	packet.NewWriter(trailerBytes[:]).WriteUint32(trailer)

	if encrypt {
		aad := append(append([]byte(nil), buf[:hdr.headerLen]...), trailerBytes[:]...)
		if err := st.rtcpCipher.SetAAD(aad); err != nil {
			return n, ErrCipherFail
		}
		if _, err := st.rtcpCipher.Encrypt(buf[hdr.headerLen:n], n-hdr.headerLen); err != nil {
			return n, ErrCipherFail
		}
	} else {
		aad := append(append([]byte(nil), buf[:n]...), trailerBytes[:]...)
		if err := st.rtcpCipher.SetAAD(aad); err != nil {
			return n, ErrCipherFail
		}
		if _, err := st.rtcpCipher.Encrypt(buf[n:n], 0); err != nil {
			return n, ErrCipherFail
		}
	}

	buf = buf[:n+4+tagLen]
	copy(buf[n:n+4], trailerBytes[:])
	if _, err := st.rtcpCipher.GetTag(buf[n+4 : n+4+tagLen]); err != nil {
		return n, ErrCipherFail
	}
	return n + 4 + tagLen, nil
}
