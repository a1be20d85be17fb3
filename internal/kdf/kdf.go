// Package kdf implements the RFC 3711 section 4.3 key derivation function:
// an AES-ICM keystream, indexed by a one-byte label, turns a single master
// key/salt pair into the six session subkeys (RTP/RTCP encryption, auth,
// and salt) a stream actually uses.
package kdf

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/pkg/errors"

	"github.com/ukreator/libsrtp/internal/crypto"
)

// Label identifies which of the six session subkeys a DeriveKey call
// produces, per RFC 3711 section 4.3.2.
type Label byte

const (
	LabelRTPEncrypt  Label = 0x00
	LabelRTPAuth     Label = 0x01
	LabelRTPSalt     Label = 0x02
	LabelRTCPEncrypt Label = 0x03
	LabelRTCPAuth    Label = 0x04
	LabelRTCPSalt    Label = 0x05
)

// saltLength is the KDF's salt context width. Every derivation uses a
// 14-byte (112-bit) salt even when the wire format carries a shorter one
// (AES-GCM master salts are 96 bits); callers zero-extend to this width
// before calling DeriveKey or DeriveStreamKeys.
const saltLength = 14

// DeriveKey produces n bytes of subkey from masterKey/masterSalt and label,
// following RFC 3711 section 4.3: x = masterSalt with its 8th byte (from the
// left, 0-indexed 7) XORed with label, then the output is the AES-ICM
// keystream under masterKey with IV = x (zero-padded to a full block).
func DeriveKey(masterKey, masterSalt []byte, label Label, n int) ([]byte, error) {
	if len(masterSalt) != saltLength {
		return nil, errors.Errorf("kdf: master salt must be %d bytes, got %d", saltLength, len(masterSalt))
	}

	x := append([]byte(nil), masterSalt...)
	x[len(x)-7] ^= byte(label)

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, errors.Wrap(err, "kdf: derive key")
	}
	iv := make([]byte, aes.BlockSize)
	copy(iv, x)

	out := make([]byte, n)
	cipher.NewCTR(block, iv).XORKeyStream(out, out)
	return out, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// DeriveStreamKeys installs session keys into rtpCipher/rtpMac and
// rtcpCipher/rtcpMac, deriving each from masterKey/masterSalt, and returns
// the 14-byte RTP and RTCP session salts the pipeline needs for per-packet
// IV construction. Every scratch key buffer is zeroed before return, on
// both the success and error paths.
func DeriveStreamKeys(
	masterKey, masterSalt []byte,
	rtpCipher crypto.Cipher, rtpMac crypto.Mac,
	rtcpCipher crypto.Cipher, rtcpMac crypto.Mac,
) (rtpSalt, rtcpSalt [14]byte, err error) {
	type step struct {
		label Label
		n     int
		apply func([]byte) error
	}

	steps := []step{
		{LabelRTPEncrypt, rtpCipher.KeyLength(), rtpCipher.Init},
		{LabelRTPSalt, saltLength, func(b []byte) error { copy(rtpSalt[:], b); return nil }},
		{LabelRTPAuth, rtpMac.KeyLength(), rtpMac.Init},
		{LabelRTCPEncrypt, rtcpCipher.KeyLength(), rtcpCipher.Init},
		{LabelRTCPSalt, saltLength, func(b []byte) error { copy(rtcpSalt[:], b); return nil }},
		{LabelRTCPAuth, rtcpMac.KeyLength(), rtcpMac.Init},
	}

	for _, s := range steps {
		key, derr := DeriveKey(masterKey, masterSalt, s.label, s.n)
		if derr != nil {
			err = derr
			return
		}
		if aerr := s.apply(key); aerr != nil {
			zero(key)
			err = errors.Wrapf(aerr, "kdf: install label %d", s.label)
			return
		}
		zero(key)
	}
	return
}
