package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"

	"github.com/pkg/errors"
)

// aesGCMCipher implements the AES-GCM AEAD transform from the SRTP AES-GCM
// profile draft (now RFC 7714). Unlike AES-ICM, it authenticates as well as
// encrypts, which is why IsAEAD reports true; the packet pipeline checks
// IsAEAD to send GCM streams down its AEAD path.
//
// tagLen is the wire tag length a policy selects: 16 for the full tag, 8
// for the truncated variants. The underlying GCM always computes the full
// 16-byte tag; truncation happens at GetTag/Decrypt.
type aesGCMCipher struct {
	keyLen int
	tagLen int
	block  cipher.Block
	gcm    cipher.AEAD
	nonce  [12]byte
	aad    []byte
	tag    []byte
}

func newAESGCMCipher(keyLen, tagLen int) *aesGCMCipher {
	return &aesGCMCipher{keyLen: keyLen, tagLen: tagLen}
}

func (c *aesGCMCipher) Init(key []byte) error {
	if len(key) != c.keyLen {
		return errors.Errorf("crypto: AES-GCM key must be %d bytes, got %d", c.keyLen, len(key))
	}
	if c.tagLen < 8 || c.tagLen > 16 {
		return errors.Errorf("crypto: AES-GCM tag length %d out of range [8,16]", c.tagLen)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return errors.Wrap(err, "crypto: AES-GCM init")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return errors.Wrap(err, "crypto: AES-GCM init")
	}
	c.block = block
	c.gcm = gcm
	return nil
}

// SetIV installs the AEAD nonce. Only the first 12 bytes of iv are
// meaningful; AES-GCM nonces are 96 bits, unlike the 128-bit IV the AES-ICM
// construction uses, so the pipeline always builds a 16-byte value but GCM
// cipher implementations only consume its first 12 bytes (the AEAD IV
// construction only ever fills 12 anyway).
func (c *aesGCMCipher) SetIV(iv [16]byte, dir Direction) error {
	copy(c.nonce[:], iv[:12])
	return nil
}

func (c *aesGCMCipher) SetAAD(aad []byte) error {
	c.aad = aad
	return nil
}

// Encrypt encrypts buf[:n] in place and stashes the authentication tag for a
// subsequent GetTag call; it does not grow n itself, which lets callers
// interleave wire-format fields (such as the SRTCP trailer) between the
// ciphertext and the tag.
func (c *aesGCMCipher) Encrypt(buf []byte, n int) (int, error) {
	sealed := c.gcm.Seal(nil, c.nonce[:], buf[:n], c.aad)
	copy(buf[:n], sealed[:n])
	c.tag = append(c.tag[:0], sealed[n:]...)
	return n, nil
}

// Decrypt verifies and strips the trailing authentication tag from buf[:n]
// (ciphertext immediately followed by the tag) and decrypts the remainder in
// place, returning the plaintext length. A tag mismatch is reported as a
// cipher failure, never distinguished from a malformed-ciphertext error, to
// avoid leaking which check failed.
func (c *aesGCMCipher) Decrypt(buf []byte, n int) (int, error) {
	if n < c.tagLen {
		return 0, errors.New("crypto: AES-GCM ciphertext shorter than tag")
	}
	if c.tagLen == c.gcm.Overhead() {
		opened, err := c.gcm.Open(buf[:0], c.nonce[:], buf[:n], c.aad)
		if err != nil {
			return 0, errors.Wrap(err, "crypto: AES-GCM authentication failed")
		}
		return len(opened), nil
	}
	return c.decryptTruncated(buf, n)
}

// decryptTruncated handles the 8-byte-tag variants the standard GCM Open
// cannot: CTR-decrypt the ciphertext (the GCM ciphertext counter starts at
// nonce||2 for 96-bit nonces), re-Seal the plaintext to recompute the full
// tag, and compare its truncation against the wire tag in constant time.
func (c *aesGCMCipher) decryptTruncated(buf []byte, n int) (int, error) {
	ctLen := n - c.tagLen
	var ctr [aes.BlockSize]byte
	copy(ctr[:], c.nonce[:])
	ctr[aes.BlockSize-1] = 2

	plain := make([]byte, ctLen)
	cipher.NewCTR(c.block, ctr[:]).XORKeyStream(plain, buf[:ctLen])

	sealed := c.gcm.Seal(nil, c.nonce[:], plain, c.aad)
	ok := subtle.ConstantTimeCompare(sealed[ctLen:ctLen+c.tagLen], buf[ctLen:n]) == 1
	if !ok {
		zeroBytes(plain)
		return 0, errors.New("crypto: AES-GCM authentication failed")
	}
	copy(buf[:ctLen], plain)
	zeroBytes(plain)
	return ctLen, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GetTag writes the (possibly truncated) tag of the most recent Encrypt.
func (c *aesGCMCipher) GetTag(out []byte) (int, error) {
	if len(c.tag) == 0 {
		return 0, errors.New("crypto: no AES-GCM tag available; call Encrypt first")
	}
	n := copy(out, c.tag[:c.tagLen])
	return n, nil
}

func (c *aesGCMCipher) Output(buf []byte, n int) error {
	return errors.New("crypto: AES-GCM does not support raw keystream output")
}

func (c *aesGCMCipher) KeyLength() int { return c.keyLen }
func (c *aesGCMCipher) TagLength() int { return c.tagLen }

func (c *aesGCMCipher) Algorithm() AlgorithmID {
	if c.keyLen == 32 {
		return AlgorithmAESGCM256
	}
	return AlgorithmAESGCM128
}

func (c *aesGCMCipher) IsAEAD() bool { return true }
