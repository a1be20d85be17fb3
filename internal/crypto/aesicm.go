package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/pkg/errors"
)

// aesICMCipher implements AES in counter mode (RFC 3711 section 4.1.1), the
// default SRTP/SRTCP confidentiality transform. It is also the cipher the
// KDF itself uses to turn a master key into session subkeys.
type aesICMCipher struct {
	keyLen int
	block  cipher.Block
	iv     [aes.BlockSize]byte
	dir    Direction
}

func newAESICMCipher(keyLen int) *aesICMCipher {
	return &aesICMCipher{keyLen: keyLen}
}

func (c *aesICMCipher) Init(key []byte) error {
	if len(key) != c.keyLen {
		return errors.Errorf("crypto: AES-ICM key must be %d bytes, got %d", c.keyLen, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return errors.Wrap(err, "crypto: AES-ICM init")
	}
	c.block = block
	return nil
}

func (c *aesICMCipher) SetIV(iv [16]byte, dir Direction) error {
	c.iv = iv
	c.dir = dir
	return nil
}

func (c *aesICMCipher) SetAAD(aad []byte) error { return nil }

func (c *aesICMCipher) stream() cipher.Stream {
	return cipher.NewCTR(c.block, c.iv[:])
}

func (c *aesICMCipher) Encrypt(buf []byte, n int) (int, error) {
	c.stream().XORKeyStream(buf[:n], buf[:n])
	return n, nil
}

func (c *aesICMCipher) Decrypt(buf []byte, n int) (int, error) {
	// AES-CTR is its own inverse.
	c.stream().XORKeyStream(buf[:n], buf[:n])
	return n, nil
}

func (c *aesICMCipher) GetTag(out []byte) (int, error) {
	return 0, errors.New("crypto: AES-ICM does not produce an authentication tag")
}

func (c *aesICMCipher) Output(buf []byte, n int) error {
	zero := buf[:n]
	for i := range zero {
		zero[i] = 0
	}
	c.stream().XORKeyStream(zero, zero)
	return nil
}

func (c *aesICMCipher) KeyLength() int { return c.keyLen }
func (c *aesICMCipher) TagLength() int { return 0 }

func (c *aesICMCipher) Algorithm() AlgorithmID {
	switch c.keyLen {
	case 16:
		return AlgorithmAESICM128
	case 24:
		return AlgorithmAESICM192
	default:
		return AlgorithmAESICM256
	}
}

func (c *aesICMCipher) IsAEAD() bool { return false }
