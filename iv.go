package srtp

import "encoding/binary"

// buildICMIV constructs the AES-ICM IV shared by legacy (non-AEAD) RTP and
// RTCP: IV = (salt * 2^16) XOR (SSRC * 2^64) XOR (index * 2^16), per RFC
// 3711 section 4.1.1. Writing the 14-byte salt into a 16-byte buffer
// already encodes "* 2^16" (the trailing two bytes are the implicit
// padding); XORing the SSRC at byte offset 4 and the index as an 8-byte
// field at byte offset 6 encode the other two terms the same way. The
// pipeline uses it for RTP (48-bit index); legacy SRTCP builds its IV with
// buildRTCPICMIV.
func buildICMIV(salt [14]byte, ssrc uint32, index uint64) [16]byte {
	var iv [16]byte
	copy(iv[:14], salt[:])

	var ssrcBytes [4]byte
	binary.BigEndian.PutUint32(ssrcBytes[:], ssrc)
	for i := 0; i < 4; i++ {
		iv[4+i] ^= ssrcBytes[i]
	}

	var idxBytes [8]byte
	binary.BigEndian.PutUint64(idxBytes[:], index)
	for i := 0; i < 8; i++ {
		iv[6+i] ^= idxBytes[i]
	}

	return iv
}

// buildAEADRTPIV constructs the 96-bit AEAD nonce for SRTP per the AES-GCM
// profile draft: pre-salt = 00 00 || SSRC(4) || ROC(4) || SEQ(2), XORed
// with the (12-byte-truncated) session salt.
func buildAEADRTPIV(salt [14]byte, ssrc uint32, roc uint32, seq uint16) [16]byte {
	var preSalt [12]byte
	binary.BigEndian.PutUint32(preSalt[2:6], ssrc)
	binary.BigEndian.PutUint32(preSalt[6:10], roc)
	binary.BigEndian.PutUint16(preSalt[10:12], seq)

	var iv [16]byte
	for i := 0; i < 12; i++ {
		iv[i] = preSalt[i] ^ salt[i]
	}
	return iv
}

// buildAEADRTCPIV constructs the 96-bit AEAD nonce for SRTCP: pre-salt =
// 00 00 || SSRC(4) || 00 00 || (index & 0x7FFFFFFF)(4), XORed with the
// session salt.
func buildAEADRTCPIV(salt [14]byte, ssrc uint32, index uint32) [16]byte {
	var preSalt [12]byte
	binary.BigEndian.PutUint32(preSalt[2:6], ssrc)
	binary.BigEndian.PutUint32(preSalt[8:12], index&0x7FFFFFFF)

	var iv [16]byte
	for i := 0; i < 12; i++ {
		iv[i] = preSalt[i] ^ salt[i]
	}
	return iv
}

// buildRTCPICMIV constructs the AES-ICM IV for legacy (non-AEAD) SRTCP: the
// 31-bit index is XORed in as two 32-bit words, index>>16 at bytes 8-11 and
// index<<16 at bytes 12-15. Together these place the index at bytes 10-13,
// so the result equals buildICMIV(salt, ssrc, uint64(index)).
func buildRTCPICMIV(salt [14]byte, ssrc uint32, index uint32) [16]byte {
	var iv [16]byte
	copy(iv[:14], salt[:])

	var ssrcBytes [4]byte
	binary.BigEndian.PutUint32(ssrcBytes[:], ssrc)
	for i := 0; i < 4; i++ {
		iv[4+i] ^= ssrcBytes[i]
	}

	var hi, lo [4]byte
	binary.BigEndian.PutUint32(hi[:], index>>16)
	binary.BigEndian.PutUint32(lo[:], index<<16)
	for i := 0; i < 4; i++ {
		iv[8+i] ^= hi[i]
		iv[12+i] ^= lo[i]
	}
	return iv
}

// nullRTPIV is the degenerate IV the NULL cipher's (no-op) RTP transform
// still needs a well-defined value for: IV = be64(index) in the trailing 8
// bytes of an otherwise-zero 16-byte block.
func nullRTPIV(index uint64) [16]byte {
	var iv [16]byte
	binary.BigEndian.PutUint64(iv[8:16], index)
	return iv
}

// nullRTCPIV is the RTCP analog: IV = be32(index) in the trailing 4 bytes.
func nullRTCPIV(index uint32) [16]byte {
	var iv [16]byte
	binary.BigEndian.PutUint32(iv[12:16], index)
	return iv
}
