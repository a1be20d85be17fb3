package srtp

import (
	"github.com/pkg/errors"

	"github.com/ukreator/libsrtp/ekt"
	"github.com/ukreator/libsrtp/internal/crypto"
)

// ServiceFlags selects which cryptographic services a CryptoPolicy applies
// to RTP or RTCP independently.
type ServiceFlags int

const ServiceNone ServiceFlags = 0

const (
	ServiceConfidentiality ServiceFlags = 1 << iota
	ServiceAuthentication
)

const ServiceConfidentialityAndAuthentication = ServiceConfidentiality | ServiceAuthentication

func (s ServiceFlags) confidentiality() bool { return s&ServiceConfidentiality != 0 }
func (s ServiceFlags) authentication() bool  { return s&ServiceAuthentication != 0 }

// AuthType selects the MAC construction a CryptoPolicy installs. It is kept
// separate from crypto.AlgorithmID (which only enumerates ciphers) since
// RFC 3711 defines exactly one non-NULL MAC family.
type AuthType int

const (
	AuthNull AuthType = iota
	AuthHMACSHA1
)

// CryptoPolicy describes one direction's (RTP or RTCP) cipher and MAC
// choice. CipherKeyLen is the *combined* key+salt length shipped as a
// single master key buffer (e.g. 30 for AES-CM-128, matching RFC 3711's
// n_e=128 + n_s=112 bits); see internal/kdf and stream.go for the split.
type CryptoPolicy struct {
	Cipher       crypto.AlgorithmID
	CipherKeyLen int
	Auth         AuthType
	AuthKeyLen   int
	AuthTagLen   int
	Services     ServiceFlags
}

// SSRCType discriminates the four ways a Policy's SSRC field can be
// interpreted.
type SSRCType int

const (
	SSRCUndefined SSRCType = iota
	SSRCSpecific
	SSRCAnyInbound
	SSRCAnyOutbound
)

// SSRCSelector names which stream(s) a Policy applies to: a specific SSRC,
// or a template that matches any inbound/outbound SSRC not otherwise
// claimed.
type SSRCSelector struct {
	Type  SSRCType
	Value uint32
}

// Policy is the descriptor AddStream consumes to build (or clone) a stream.
// MasterKey is the concatenated key||salt buffer; its total length must
// equal both RTP.CipherKeyLen and RTCP.CipherKeyLen (RFC 3711 uses one
// master key for both RTP and RTCP).
type Policy struct {
	SSRC          SSRCSelector
	RTP           CryptoPolicy
	RTCP          CryptoPolicy
	MasterKey     []byte
	WindowSize    int
	AllowRepeatTx bool
	EKT           ekt.Handle
	UserData      any

	// KeyLimitSoft and KeyLimitHard set the usage-limit counter's two
	// one-shot thresholds; 0 disables the
	// corresponding threshold. KeyLimitHard, once crossed, stops the
	// stream being usable (ErrKeyExpired) until rekeyed.
	KeyLimitSoft uint64
	KeyLimitHard uint64
}

func (p *Policy) validate() error {
	if p.RTP.CipherKeyLen != len(p.MasterKey) || p.RTCP.CipherKeyLen != len(p.MasterKey) {
		return errors.Wrap(ErrBadParam, "policy: master key length does not match CipherKeyLen")
	}
	return nil
}

// DefaultPolicy returns the standard AES-CM-128 / HMAC-SHA1-80 suite
// (RFC 3711 section 8.1's default), used for both RTP and RTCP.
func DefaultPolicy() CryptoPolicy {
	return CryptoPolicy{
		Cipher:       crypto.AlgorithmAESICM128,
		CipherKeyLen: 30,
		Auth:         AuthHMACSHA1,
		AuthKeyLen:   20,
		AuthTagLen:   10,
		Services:     ServiceConfidentialityAndAuthentication,
	}
}

// AESCM128HMACSHA1_32Policy is DefaultPolicy with the authentication tag
// truncated to 32 bits, as negotiated by the SRTP_AES128_CM_SHA1_32 DTLS
// profile.
func AESCM128HMACSHA1_32Policy() CryptoPolicy {
	p := DefaultPolicy()
	p.AuthTagLen = 4
	return p
}

// NullCipherHMACSHA1_80Policy authenticates but does not encrypt.
func NullCipherHMACSHA1_80Policy() CryptoPolicy {
	return CryptoPolicy{
		Cipher:       crypto.AlgorithmNull,
		CipherKeyLen: 30,
		Auth:         AuthHMACSHA1,
		AuthKeyLen:   20,
		AuthTagLen:   10,
		Services:     ServiceAuthentication,
	}
}

// AESCM256HMACSHA1_80Policy is the AES-256 analog of DefaultPolicy.
func AESCM256HMACSHA1_80Policy() CryptoPolicy {
	return CryptoPolicy{
		Cipher:       crypto.AlgorithmAESICM256,
		CipherKeyLen: 46,
		Auth:         AuthHMACSHA1,
		AuthKeyLen:   20,
		AuthTagLen:   10,
		Services:     ServiceConfidentialityAndAuthentication,
	}
}

// AESCM256HMACSHA1_32Policy is AESCM256HMACSHA1_80Policy with a 32-bit tag.
func AESCM256HMACSHA1_32Policy() CryptoPolicy {
	p := AESCM256HMACSHA1_80Policy()
	p.AuthTagLen = 4
	return p
}

// AESCM128NullAuthPolicy encrypts but does not authenticate. Unsafe for
// general use (RFC 3711 appendix A.1 discourages disabling authentication);
// retained to let policy tables exercise the NULL MAC path.
func AESCM128NullAuthPolicy() CryptoPolicy {
	return CryptoPolicy{
		Cipher:       crypto.AlgorithmAESICM128,
		CipherKeyLen: 30,
		Auth:         AuthNull,
		Services:     ServiceConfidentiality,
	}
}

// AESCM256NullAuthPolicy is the AES-256 analog of AESCM128NullAuthPolicy.
func AESCM256NullAuthPolicy() CryptoPolicy {
	return CryptoPolicy{
		Cipher:       crypto.AlgorithmAESICM256,
		CipherKeyLen: 46,
		Auth:         AuthNull,
		Services:     ServiceConfidentiality,
	}
}

// AEADAES128GCM8Policy selects AES-128-GCM with an 8-byte (64-bit) tag. The
// auth type is NULL since the AEAD cipher itself provides authentication;
// CipherKeyLen is the GCM key+salt constant (128-bit key + 96-bit salt).
func AEADAES128GCM8Policy() CryptoPolicy {
	return CryptoPolicy{
		Cipher:       crypto.AlgorithmAESGCM128,
		CipherKeyLen: 28,
		Auth:         AuthNull,
		AuthTagLen:   8,
		Services:     ServiceConfidentialityAndAuthentication,
	}
}

// AEADAES128GCM16Policy is AEADAES128GCM8Policy with a full 16-byte tag.
func AEADAES128GCM16Policy() CryptoPolicy {
	p := AEADAES128GCM8Policy()
	p.AuthTagLen = 16
	return p
}

// AEADAES256GCM8Policy is the AES-256 analog of AEADAES128GCM8Policy.
func AEADAES256GCM8Policy() CryptoPolicy {
	return CryptoPolicy{
		Cipher:       crypto.AlgorithmAESGCM256,
		CipherKeyLen: 44,
		Auth:         AuthNull,
		AuthTagLen:   8,
		Services:     ServiceConfidentialityAndAuthentication,
	}
}

// AEADAES256GCM16Policy is AEADAES256GCM8Policy with a full 16-byte tag.
func AEADAES256GCM16Policy() CryptoPolicy {
	p := AEADAES256GCM8Policy()
	p.AuthTagLen = 16
	return p
}

// AEADAES128GCM8OnlyAuthPolicy is AEADAES128GCM8Policy restricted to
// authentication only. On the SRTCP path GCM still produces its tag, but the
// payload is fed as associated data rather than encrypted. The SRTP AEAD
// path does not consult Services and encrypts the payload under this policy
// too. Used for RTCP when policy forbids RTCP encryption.
func AEADAES128GCM8OnlyAuthPolicy() CryptoPolicy {
	p := AEADAES128GCM8Policy()
	p.Services = ServiceAuthentication
	return p
}

// AEADAES256GCM8OnlyAuthPolicy is the AES-256 analog of
// AEADAES128GCM8OnlyAuthPolicy.
func AEADAES256GCM8OnlyAuthPolicy() CryptoPolicy {
	p := AEADAES256GCM8Policy()
	p.Services = ServiceAuthentication
	return p
}

// AESCM128OnlyAuthPolicy restricts DefaultPolicy's services to
// authentication only, leaving confidentiality off while keeping an
// AES-ICM-128-sized key so the same master key works across policy swaps.
func AESCM128OnlyAuthPolicy() CryptoPolicy {
	p := DefaultPolicy()
	p.Services = ServiceAuthentication
	return p
}
