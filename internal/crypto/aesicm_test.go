package crypto

import (
	"encoding/hex"
	"strings"
	"testing"
)

// AES-CM Test Vectors: https://tools.ietf.org/html/rfc3711#appendix-B.2
func TestAESICMKeystreamVectors(t *testing.T) {
	key, _ := hex.DecodeString("2B7E151628AED2A6ABF7158809CF4F3C")
	iv, _ := hex.DecodeString("F0F1F2F3F4F5F6F7F8F9FAFBFCFD0000")

	c := newAESICMCipher(16)
	if err := c.Init(key); err != nil {
		t.Fatal(err)
	}
	var ivArr [16]byte
	copy(ivArr[:], iv)
	if err := c.SetIV(ivArr, DirectionEncrypt); err != nil {
		t.Fatal(err)
	}

	keystream := make([]byte, 1044512)
	if err := c.Output(keystream, len(keystream)); err != nil {
		t.Fatal(err)
	}

	if !checkHex(keystream[0:48],
		"E03EAD0935C95E80E166B16DD92B4EB4"+
			"D23513162B02D0F72A43A2FE4A5F97AB"+
			"41E95B3BB0A2E8DD477901E4FCA894C0") {
		t.Errorf("incorrect keystream start: %02X", keystream[0:48])
	}
	if !checkHex(keystream[len(keystream)-48:],
		"EC8CDF7398607CB0F2D21675EA9EA1E4"+
			"362B7C3C6773516318A077D7FC5073AE"+
			"6A2CC3787889374FBEB4C81B17BA6C44") {
		t.Errorf("incorrect keystream end: %02X", keystream[len(keystream)-48:])
	}
}

func TestAESICMEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef")
	var iv [16]byte
	copy(iv[:], []byte("fedcba9876543210"))

	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	enc := newAESICMCipher(16)
	if err := enc.Init(key); err != nil {
		t.Fatal(err)
	}
	if err := enc.SetIV(iv, DirectionEncrypt); err != nil {
		t.Fatal(err)
	}
	buf := append([]byte(nil), plaintext...)
	n, err := enc.Encrypt(buf, len(buf))
	if err != nil {
		t.Fatal(err)
	}

	dec := newAESICMCipher(16)
	if err := dec.Init(key); err != nil {
		t.Fatal(err)
	}
	if err := dec.SetIV(iv, DirectionDecrypt); err != nil {
		t.Fatal(err)
	}
	n, err = dec.Decrypt(buf, n)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != string(plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", buf[:n], plaintext)
	}
}

func TestAESICMAlgorithmByKeyLength(t *testing.T) {
	cases := map[int]AlgorithmID{16: AlgorithmAESICM128, 24: AlgorithmAESICM192, 32: AlgorithmAESICM256}
	for keyLen, want := range cases {
		c := newAESICMCipher(keyLen)
		if got := c.Algorithm(); got != want {
			t.Errorf("keyLen %d: Algorithm() = %v, want %v", keyLen, got, want)
		}
	}
}

func checkHex(value []byte, expectedHex string) bool {
	return hex.EncodeToString(value) == strings.ToLower(expectedHex)
}
