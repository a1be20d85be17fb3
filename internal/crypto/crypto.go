// Package crypto provides the cipher and MAC capability objects used by the
// SRTP/SRTCP packet-protection pipeline. The block cipher and MAC primitives
// themselves (AES-ICM, AES-GCM, HMAC-SHA1) are treated as external
// collaborators by the session/stream layers above: this package is the only
// place that knows how they are constructed.
package crypto

import "github.com/pkg/errors"

// AlgorithmID discriminates the small set of cipher/MAC constructions SRTP
// recognizes.
type AlgorithmID int

const (
	AlgorithmNull AlgorithmID = iota
	AlgorithmAESICM128
	AlgorithmAESICM192
	AlgorithmAESICM256
	AlgorithmAESGCM128
	AlgorithmAESGCM256
)

func (a AlgorithmID) String() string {
	switch a {
	case AlgorithmNull:
		return "NULL"
	case AlgorithmAESICM128:
		return "AES-ICM-128"
	case AlgorithmAESICM192:
		return "AES-ICM-192"
	case AlgorithmAESICM256:
		return "AES-ICM-256"
	case AlgorithmAESGCM128:
		return "AES-GCM-128"
	case AlgorithmAESGCM256:
		return "AES-GCM-256"
	default:
		return "unknown"
	}
}

// Direction distinguishes the encrypting side from the decrypting side of a
// cipher, since AES-ICM/AES-GCM constructions may need to know which (e.g. to
// pick an encrypt vs. decrypt AEAD operation).
type Direction int

const (
	DirectionEncrypt Direction = iota
	DirectionDecrypt
)

// Cipher is the capability object a stream keeps for RTP or RTCP
// confidentiality. NULL, AES-ICM, and AES-GCM all implement it.
type Cipher interface {
	// Init keys the cipher. key must be exactly KeyLength() bytes.
	Init(key []byte) error

	// SetIV installs the 16-byte IV/nonce prefix used for the next
	// Encrypt/Decrypt/Output call. dir is advisory; none of the ciphers in
	// this package act on it (AEAD ciphers seal in Encrypt and open in
	// Decrypt regardless of dir).
	SetIV(iv [16]byte, dir Direction) error

	// SetAAD installs associated data for the next AEAD Encrypt/Decrypt
	// call. It is a no-op for non-AEAD ciphers.
	SetAAD(aad []byte) error

	// Encrypt encrypts buf[:n] in place and returns n unchanged. AEAD
	// ciphers do not append the authentication tag; they keep it for a
	// following GetTag call.
	Encrypt(buf []byte, n int) (int, error)

	// Decrypt decrypts buf[:n] in place. AEAD ciphers verify and strip the
	// trailing tag (which must be included in n) and return the shrunk
	// length, failing with a cipher error on tag mismatch.
	Decrypt(buf []byte, n int) (int, error)

	// GetTag writes the most recently computed AEAD tag into out, which
	// must be at least TagLength() bytes. It is an error for non-AEAD
	// ciphers.
	GetTag(out []byte) (int, error)

	// Output writes n bytes of pure keystream into buf, used to generate
	// the prefix a universal-hash MAC XORs into its tag. AEAD ciphers,
	// which never pair with such a MAC, return an error and leave buf
	// untouched.
	Output(buf []byte, n int) error

	// KeyLength returns the key length in bytes this cipher was
	// constructed to accept.
	KeyLength() int

	// TagLength returns the AEAD authentication tag length in bytes, or 0
	// for non-AEAD ciphers.
	TagLength() int

	// Algorithm identifies the concrete construction.
	Algorithm() AlgorithmID

	// IsAEAD reports whether this cipher provides its own authentication.
	// The pipeline queries it for each packet to choose between the AEAD
	// and the legacy CTR+HMAC path, instead of comparing algorithm ids.
	IsAEAD() bool
}

// Mac is the capability object a stream keeps for RTP or RTCP
// authentication. HMAC-SHA1 and the NULL MAC implement it.
type Mac interface {
	// Init keys the MAC. key must be exactly KeyLength() bytes.
	Init(key []byte) error

	// Start resets any partial hash state, beginning a new tag
	// computation.
	Start()

	// Update feeds more authenticated bytes into the in-progress tag.
	Update(b []byte)

	// Compute finalizes the tag over everything fed via Update plus the
	// extra trailing bytes (SRTP/SRTCP append the ROC or index before
	// finalizing) and truncates it to TagLength(). When out is non-nil the
	// tag is written into out and the returned slice aliases it, so
	// post-processing the returned tag (keystream-prefix XOR) mutates the
	// caller's buffer.
	Compute(extra []byte, out []byte) []byte

	// TagLength returns the truncated tag length in bytes.
	TagLength() int

	// PrefixLength returns the keystream prefix length a universal-hash
	// MAC needs XORed into its output before use, or 0 for MACs (like
	// HMAC-SHA1) that need no such prefix.
	PrefixLength() int

	// KeyLength returns the key length in bytes this MAC was constructed
	// to accept.
	KeyLength() int
}

// Kernel is a registry of cipher/MAC constructors keyed by algorithm id.
// It is safe for concurrent read-only use once built; see Init/Shutdown.
type Kernel struct {
	ciphers map[AlgorithmID]func(tagLen int) Cipher
}

// NewKernel builds a kernel with the standard SRTP/SRTCP algorithm set
// registered. Every AlgorithmID above resolves to a concrete, stdlib-backed
// implementation; there is no external registration hook because RFC 3711
// and the GCM profile draft define a closed set of algorithm ids.
func NewKernel() *Kernel {
	k := &Kernel{
		ciphers: map[AlgorithmID]func(tagLen int) Cipher{
			AlgorithmNull:      func(int) Cipher { return newNullCipher() },
			AlgorithmAESICM128: func(int) Cipher { return newAESICMCipher(16) },
			AlgorithmAESICM192: func(int) Cipher { return newAESICMCipher(24) },
			AlgorithmAESICM256: func(int) Cipher { return newAESICMCipher(32) },
			AlgorithmAESGCM128: func(tagLen int) Cipher { return newAESGCMCipher(16, tagLen) },
			AlgorithmAESGCM256: func(tagLen int) Cipher { return newAESGCMCipher(32, tagLen) },
		},
	}
	return k
}

// DefaultKernel is the process-wide kernel used by sessions that don't
// supply their own via WithKernel. Between Init and Shutdown it is
// read-only.
var DefaultKernel = NewKernel()

// Init is a no-op hook retained for callers that expect a process-wide
// init/shutdown pair; NewKernel already performs all registration eagerly,
// since the algorithm set is fixed at compile time.
func Init() {}

// Shutdown releases the default kernel's registrations. Callers must not use
// DefaultKernel, nor any Session built from it, after calling Shutdown.
func Shutdown() {
	DefaultKernel = nil
}

// Cipher constructs a fresh, unkeyed cipher for the given algorithm. tagLen
// selects the AEAD authentication tag length for the GCM algorithms (0 means
// the full 16 bytes) and is ignored by NULL and AES-ICM, whose policies
// carry their tag length on the MAC instead.
func (k *Kernel) Cipher(id AlgorithmID, tagLen int) (Cipher, error) {
	ctor, ok := k.ciphers[id]
	if !ok {
		return nil, errors.Errorf("crypto: cipher algorithm %s not registered", id)
	}
	if tagLen == 0 {
		tagLen = 16
	}
	return ctor(tagLen), nil
}

// NewHMACSHA1 constructs an HMAC-SHA1 MAC truncated to tagLen bytes. It is
// exposed directly (the Kernel only registers ciphers by AlgorithmID)
// because RFC 3711 defines exactly one default MAC transform and policies
// select it by naming "HMAC-SHA1" with a tag length, not by an algorithm id
// shared with the cipher enum.
func NewHMACSHA1(tagLen int) Mac {
	return newHMACSHA1Mac(tagLen)
}

// NewNullMac constructs the no-op MAC used by *_null_auth policies.
func NewNullMac() Mac {
	return newNullMac()
}

// KeyLengthFor returns the raw cipher key length (excluding any salt) an
// algorithm id requires. Policies express their combined key+salt length
// (matching the wire convention of shipping one concatenated master key
// buffer); callers use this to find where the key ends and the salt
// begins.
func KeyLengthFor(id AlgorithmID) int {
	switch id {
	case AlgorithmNull:
		// The NULL cipher consumes no key material of its own, but policies
		// still size MasterKey as key||salt (NullCipherHMACSHA1_80Policy
		// uses the same 30-byte buffer as AES-CM-128) so the salt split
		// below must land on the same 14-byte boundary.
		return 16
	case AlgorithmAESICM128:
		return 16
	case AlgorithmAESICM192:
		return 24
	case AlgorithmAESICM256, AlgorithmAESGCM256:
		return 32
	case AlgorithmAESGCM128:
		return 16
	default:
		return 0
	}
}
