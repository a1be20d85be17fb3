// Package dtlssrtp maps the SRTP protection profile identifiers negotiated
// during a DTLS-SRTP handshake (RFC 5764 section 4.1.2) onto this
// repository's canned policies. The handshake itself (key exchange,
// extended master secret export, certificate verification) is not
// implemented here; only the profile table a caller consults once it
// already has a DTLS exporter key is.
package dtlssrtp

import (
	"github.com/pkg/errors"

	srtp "github.com/ukreator/libsrtp"
)

// Profile identifies one of the SRTP protection profiles a DTLS-SRTP
// handshake can negotiate, by the names RFC 5764/7714 assign them.
type Profile int

const (
	AES128CMSHA1_80 Profile = iota
	AES128CMSHA1_32
	NullSHA1_80
	NullSHA1_32
	AES256CMSHA1_80
	AES256CMSHA1_32
	AEAD_AES128GCM
	AEAD_AES256GCM
)

func (p Profile) String() string {
	switch p {
	case AES128CMSHA1_80:
		return "SRTP_AES128_CM_HMAC_SHA1_80"
	case AES128CMSHA1_32:
		return "SRTP_AES128_CM_HMAC_SHA1_32"
	case NullSHA1_80:
		return "SRTP_NULL_HMAC_SHA1_80"
	case NullSHA1_32:
		return "SRTP_NULL_HMAC_SHA1_32"
	case AES256CMSHA1_80:
		return "SRTP_AES256_CM_HMAC_SHA1_80"
	case AES256CMSHA1_32:
		return "SRTP_AES256_CM_HMAC_SHA1_32"
	case AEAD_AES128GCM:
		return "SRTP_AEAD_AES_128_GCM"
	case AEAD_AES256GCM:
		return "SRTP_AEAD_AES_256_GCM"
	default:
		return "unknown profile"
	}
}

// ErrUnsupportedProfile is returned for profiles this table declines to
// serve. NullSHA1_32 is the one negotiable profile with no canned policy:
// no confidentiality plus a 32-bit tag is a combination RFC 3711 permits
// but that no known endpoint negotiates.
var ErrUnsupportedProfile = errors.New("dtlssrtp: unsupported profile")

// RTPPolicy returns the CryptoPolicy a negotiated profile installs for RTP.
func RTPPolicy(p Profile) (srtp.CryptoPolicy, error) {
	switch p {
	case AES128CMSHA1_80:
		return srtp.DefaultPolicy(), nil
	case AES128CMSHA1_32:
		return srtp.AESCM128HMACSHA1_32Policy(), nil
	case NullSHA1_80:
		return srtp.NullCipherHMACSHA1_80Policy(), nil
	case AES256CMSHA1_80:
		return srtp.AESCM256HMACSHA1_80Policy(), nil
	case AES256CMSHA1_32:
		return srtp.AESCM256HMACSHA1_32Policy(), nil
	case AEAD_AES128GCM:
		return srtp.AEADAES128GCM16Policy(), nil
	case AEAD_AES256GCM:
		return srtp.AEADAES256GCM16Policy(), nil
	default:
		return srtp.CryptoPolicy{}, errors.Wrapf(ErrUnsupportedProfile, "profile %s", p)
	}
}

// RTCPPolicy is RTPPolicy's RTCP-side counterpart, with the SHA1_32 → SHA1_80
// coercion RFC 3711 section 9.2 requires: SRTCP authentication tags are
// never truncated below 80 bits regardless of what the RTP side negotiated.
func RTCPPolicy(p Profile) (srtp.CryptoPolicy, error) {
	switch p {
	case AES128CMSHA1_32:
		return RTPPolicy(AES128CMSHA1_80)
	case AES256CMSHA1_32:
		return RTPPolicy(AES256CMSHA1_80)
	default:
		return RTPPolicy(p)
	}
}

// MasterKeyLength returns the raw cipher key length in bytes (16 or 32) a
// profile's master key carries, excluding salt.
func MasterKeyLength(p Profile) (int, error) {
	switch p {
	case AES128CMSHA1_80, AES128CMSHA1_32, NullSHA1_80, AEAD_AES128GCM:
		return 16, nil
	case AES256CMSHA1_80, AES256CMSHA1_32, AEAD_AES256GCM:
		return 32, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedProfile, "profile %s", p)
	}
}

// MasterSaltLength returns the master salt length in bytes a profile's key
// exporter produces: 14 bytes for the legacy CM profiles, 12 bytes for the
// AEAD ones (the KDF still widens this to its own 14-byte salt context
// internally, see internal/kdf, but the value a DTLS exporter call needs
// to size its output is the wire length, not the KDF context length).
func MasterSaltLength(p Profile) (int, error) {
	switch p {
	case AEAD_AES128GCM, AEAD_AES256GCM:
		return 12, nil
	case AES128CMSHA1_80, AES128CMSHA1_32, NullSHA1_80, AES256CMSHA1_80, AES256CMSHA1_32:
		return 14, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedProfile, "profile %s", p)
	}
}
