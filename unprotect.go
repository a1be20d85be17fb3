package srtp

import (
	"github.com/ukreator/libsrtp/internal/crypto"
	"github.com/ukreator/libsrtp/internal/packet"
)

// UnprotectRTP transforms the SRTP wire packet buf[:n] back into plaintext
// RTP in place, returning the new (shrunk) length. If no stream is bound to
// the packet's SSRC but the session carries a wildcard template, the
// template is used as a read-only *provisional* stand-in and is only
// promoted into a real, linked stream once this packet authenticates.
func (s *Session) UnprotectRTP(buf []byte, n int) (int, error) {
	hdr, err := parseRTPHeader(buf[:n])
	if err != nil {
		return n, err
	}

	l, err := s.resolveForUnprotect(hdr.ssrc)
	if err != nil {
		return n, err
	}

	var index uint64
	var delta int64
	if l.provisional {
		// The template's own window must stay untouched until promotion:
		// a different future SSRC would otherwise inherit this packet's
		// index as its starting point. Estimate as if ROC were 0.
		index, delta = uint64(hdr.seq), int64(hdr.seq)
	} else {
		index, delta = l.st.rtpWindow.EstimateIndex(hdr.seq)
		if err := l.st.rtpWindow.Check(delta); err != nil {
			return n, mapReplayErr(err)
		}
	}

	if l.st.rtpCipher.IsAEAD() {
		return s.unprotectRTPAEAD(l, buf, n, hdr, index, delta)
	}
	return s.unprotectRTPLegacy(l, buf, n, hdr, index, delta)
}

func (s *Session) unprotectRTPLegacy(l lookup, buf []byte, n int, hdr rtpHeaderInfo, index uint64, delta int64) (int, error) {
	st := l.st
	tagLen := st.rtpMac.TagLength()
	if n < hdr.headerLen+tagLen {
		return n, ErrBadParam
	}
	tagStart := n - tagLen

	iv := buildICMIV(st.rtpSalt, hdr.ssrc, index)
	if st.rtpCipher.Algorithm() == crypto.AlgorithmNull {
		iv = nullRTPIV(index)
	}
	if err := st.rtpCipher.SetIV(iv, crypto.DirectionDecrypt); err != nil {
		return n, ErrCipherFail
	}

	authenticate := st.rtpServices.authentication()
	encrypt := st.rtpServices.confidentiality()

	if authenticate {
		prefix, perr := writeKeystreamPrefix(st.rtpCipher, st.rtpMac.PrefixLength())
		if perr != nil {
			return n, ErrCipherFail
		}
		st.rtpMac.Start()
		st.rtpMac.Update(buf[:tagStart])
		expected := st.rtpMac.Compute(bigEndianROC(index), make([]byte, tagLen))
		applyPrefix(expected, prefix)
		if !constantTimeEqual(expected, buf[tagStart:n]) {
			return n, ErrAuthFail
		}
	}

	if err := s.applyLimit(st, hdr.ssrc); err != nil {
		return n, err
	}

	if encrypt {
		if _, err := st.rtpCipher.Decrypt(buf[hdr.headerLen:tagStart], tagStart-hdr.headerLen); err != nil {
			return n, ErrCipherFail
		}
	}

	real, err := s.finishUnprotect(l, hdr.ssrc, false)
	if err != nil {
		return n, err
	}
	real.rtpWindow.AddIndex(delta)

	return tagStart, nil
}

func (s *Session) unprotectRTPAEAD(l lookup, buf []byte, n int, hdr rtpHeaderInfo, index uint64, delta int64) (int, error) {
	st := l.st
	tagLen := st.rtpCipher.TagLength()
	encLen := n - hdr.headerLen
	if encLen < tagLen {
		return n, ErrBadParam
	}

	if err := s.applyLimit(st, hdr.ssrc); err != nil {
		return n, err
	}

	iv := buildAEADRTPIV(st.rtpSalt, hdr.ssrc, uint32(index>>16), hdr.seq)
	if err := st.rtpCipher.SetIV(iv, crypto.DirectionDecrypt); err != nil {
		return n, ErrCipherFail
	}
	if err := st.rtpCipher.SetAAD(buf[:hdr.headerLen]); err != nil {
		return n, ErrCipherFail
	}

	plainLen, err := st.rtpCipher.Decrypt(buf[hdr.headerLen:n], encLen)
	if err != nil {
		return n, ErrCipherFail
	}

	real, err := s.finishUnprotect(l, hdr.ssrc, false)
	if err != nil {
		return n, err
	}
	real.rtpWindow.AddIndex(delta)

	return hdr.headerLen + plainLen, nil
}

// finishUnprotect applies the direction check and provisional promotion
// shared by every unprotect path. It must be called only
// after authentication (or, for AEAD, the combined decrypt+verify) has
// succeeded, and before the caller records the packet's index into the
// returned (possibly newly promoted) stream's replay state.
func (s *Session) finishUnprotect(l lookup, ssrc uint32, wantSender bool) (*stream, error) {
	if !l.provisional {
		s.noteDirectionAndEmit(l.st, ssrc, wantSender)
		return l.st, nil
	}
	real, err := s.promote(l, ssrc)
	if err != nil {
		return nil, err
	}
	// A freshly cloned stream's direction starts unknown, so this first
	// packet can never collide; fix it directly rather than routing
	// through noteDirection's compare-and-report path.
	if wantSender {
		real.direction = directionSender
	} else {
		real.direction = directionReceiver
	}
	return real, nil
}

// UnprotectRTCP transforms the SRTCP wire packet buf[:n] back into a
// plaintext RTCP compound packet in place, returning the new (shrunk)
// length. Layout: [payload][trailer: E|index (4)][auth tag]; SRTCP always
// authenticates. Unlike RTP's 48-bit extended index, the bare 31-bit SRTCP
// index needs no ROC reconstruction, so replay.RTCPIndex.Check/AddIndex take
// it directly rather than routing through an estimate+delta step.
func (s *Session) UnprotectRTCP(buf []byte, n int) (int, error) {
	hdr, err := parseRTCPHeader(buf[:n])
	if err != nil {
		return n, err
	}

	l, err := s.resolveForUnprotect(hdr.ssrc)
	if err != nil {
		return n, err
	}
	st := l.st

	tagLen := st.rtcpMac.TagLength()
	if st.rtcpCipher.IsAEAD() {
		tagLen = st.rtcpCipher.TagLength()
	}
	if n < hdr.headerLen+4+tagLen {
		return n, ErrBadParam
	}
	trailerStart := n - tagLen - 4
	trailer := packet.NewReader(buf[trailerStart : trailerStart+4]).ReadUint32()
	encrypted := trailer&0x80000000 != 0
	index := trailer &^ 0x80000000

	if encrypted != st.rtcpServices.confidentiality() {
		return n, ErrCantCheck
	}

	if !l.provisional {
		if err := st.rtcpIndex.Check(index); err != nil {
			return n, mapReplayErr(err)
		}
	}

	if st.rtcpCipher.IsAEAD() {
		return s.unprotectRTCPAEAD(l, buf, n, hdr, trailerStart, index, encrypted)
	}
	return s.unprotectRTCPLegacy(l, buf, n, hdr, trailerStart, index, encrypted)
}

func (s *Session) unprotectRTCPLegacy(l lookup, buf []byte, n int, hdr rtcpHeaderInfo, trailerStart int, index uint32, encrypted bool) (int, error) {
	st := l.st
	tagLen := st.rtcpMac.TagLength()
	tagStart := trailerStart + 4

	if st.ekt != nil {
		if err := st.ekt.UnprotectAuthTag(buf[tagStart:n]); err != nil {
			return n, ErrAuthFail
		}
	}

	st.rtcpMac.Start()
	st.rtcpMac.Update(buf[:tagStart])
	expected := st.rtcpMac.Compute(nil, make([]byte, tagLen))
	if !constantTimeEqual(expected, buf[tagStart:n]) {
		return n, ErrAuthFail
	}

	if err := s.applyLimit(st, hdr.ssrc); err != nil {
		return n, err
	}

	if encrypted {
		var iv [16]byte
		if st.rtcpCipher.Algorithm() == crypto.AlgorithmNull {
			iv = nullRTCPIV(index)
		} else {
			iv = buildRTCPICMIV(st.rtcpSalt, hdr.ssrc, index)
		}
		if err := st.rtcpCipher.SetIV(iv, crypto.DirectionDecrypt); err != nil {
			return n, ErrCipherFail
		}
		if _, err := st.rtcpCipher.Decrypt(buf[hdr.headerLen:trailerStart], trailerStart-hdr.headerLen); err != nil {
			return n, ErrCipherFail
		}
	}

	real, err := s.finishUnprotect(l, hdr.ssrc, false)
	if err != nil {
		return n, err
	}
	real.rtcpIndex.AddIndex(index)

	return trailerStart, nil
}

func (s *Session) unprotectRTCPAEAD(l lookup, buf []byte, n int, hdr rtcpHeaderInfo, trailerStart int, index uint32, encrypted bool) (int, error) {
	st := l.st
	tagLen := st.rtcpCipher.TagLength()

	if err := s.applyLimit(st, hdr.ssrc); err != nil {
		return n, err
	}

	iv := buildAEADRTCPIV(st.rtcpSalt, hdr.ssrc, index)
	if err := st.rtcpCipher.SetIV(iv, crypto.DirectionDecrypt); err != nil {
		return n, ErrCipherFail
	}

	trailerBytes := append([]byte(nil), buf[trailerStart:trailerStart+4]...)
	ciphertextLen := trailerStart - hdr.headerLen

	var plainLen int
	var err error
	if encrypted {
		aad := append(append([]byte(nil), buf[:hdr.headerLen]...), trailerBytes...)
		if err := st.rtcpCipher.SetAAD(aad); err != nil {
			return n, ErrCipherFail
		}
		// The trailer sits between ciphertext and tag on the wire; Decrypt
		// wants the tag directly after the ciphertext.
		tagStart := trailerStart + 4
		sealed := append(append([]byte(nil), buf[hdr.headerLen:trailerStart]...), buf[tagStart:tagStart+tagLen]...)
		plainLen, err = st.rtcpCipher.Decrypt(sealed, len(sealed))
		if err != nil {
			return n, ErrCipherFail
		}
		copy(buf[hdr.headerLen:trailerStart], sealed[:plainLen])
	} else {
		// Nothing was encrypted: the whole packet up to the trailer is
		// itself associated data, and the "ciphertext" fed to Decrypt is
		// just the trailing tag, verified against an empty plaintext.
		aad := append(append([]byte(nil), buf[:trailerStart]...), trailerBytes...)
		if err := st.rtcpCipher.SetAAD(aad); err != nil {
			return n, ErrCipherFail
		}
		tagStart := trailerStart + 4
		if _, err := st.rtcpCipher.Decrypt(buf[tagStart:tagStart+tagLen], tagLen); err != nil {
			return n, ErrCipherFail
		}
		plainLen = ciphertextLen
	}

	real, err := s.finishUnprotect(l, hdr.ssrc, false)
	if err != nil {
		return n, err
	}
	real.rtcpIndex.AddIndex(index)

	return hdr.headerLen + plainLen, nil
}
