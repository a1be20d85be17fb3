package crypto

import "testing"

func TestAESGCMEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef") // 16 bytes
	var iv [16]byte
	copy(iv[:], []byte("nonce-12byte"))
	aad := []byte("rtp-header-aad")
	plaintext := []byte("a gcm protected srtp payload")

	enc := newAESGCMCipher(16, 16)
	if err := enc.Init(key); err != nil {
		t.Fatal(err)
	}
	if err := enc.SetIV(iv, DirectionEncrypt); err != nil {
		t.Fatal(err)
	}
	if err := enc.SetAAD(aad); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, len(plaintext)+enc.TagLength())
	copy(buf, plaintext)
	n, err := enc.Encrypt(buf, len(plaintext))
	if err != nil {
		t.Fatal(err)
	}
	if n != len(plaintext) {
		t.Fatalf("Encrypt grew n to %d, want unchanged %d", n, len(plaintext))
	}
	tagLen, err := enc.GetTag(buf[n:])
	if err != nil {
		t.Fatal(err)
	}
	if tagLen != enc.TagLength() {
		t.Fatalf("GetTag returned %d bytes, want %d", tagLen, enc.TagLength())
	}

	dec := newAESGCMCipher(16, 16)
	if err := dec.Init(key); err != nil {
		t.Fatal(err)
	}
	if err := dec.SetIV(iv, DirectionDecrypt); err != nil {
		t.Fatal(err)
	}
	if err := dec.SetAAD(aad); err != nil {
		t.Fatal(err)
	}
	plainLen, err := dec.Decrypt(buf, n+tagLen)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:plainLen]) != string(plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", buf[:plainLen], plaintext)
	}
}

func TestAESGCMRejectsTamperedTag(t *testing.T) {
	key := make([]byte, 16)
	var iv [16]byte
	plaintext := []byte("payload")

	enc := newAESGCMCipher(16, 16)
	_ = enc.Init(key)
	_ = enc.SetIV(iv, DirectionEncrypt)

	buf := make([]byte, len(plaintext)+enc.TagLength())
	copy(buf, plaintext)
	n, err := enc.Encrypt(buf, len(plaintext))
	if err != nil {
		t.Fatal(err)
	}
	tagLen, _ := enc.GetTag(buf[n:])

	// Corrupt one byte of the tag.
	buf[n] ^= 0xFF

	dec := newAESGCMCipher(16, 16)
	_ = dec.Init(key)
	_ = dec.SetIV(iv, DirectionDecrypt)
	if _, err := dec.Decrypt(buf, n+tagLen); err == nil {
		t.Error("expected authentication failure for tampered tag")
	}
}

func TestAESGCMTruncatedTagRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef")
	var iv [16]byte
	copy(iv[:], []byte("nonce-12byte"))
	aad := []byte("header")
	plaintext := []byte("truncated tag payload")

	enc := newAESGCMCipher(16, 8)
	if err := enc.Init(key); err != nil {
		t.Fatal(err)
	}
	_ = enc.SetIV(iv, DirectionEncrypt)
	_ = enc.SetAAD(aad)

	buf := make([]byte, len(plaintext)+enc.TagLength())
	copy(buf, plaintext)
	n, err := enc.Encrypt(buf, len(plaintext))
	if err != nil {
		t.Fatal(err)
	}
	tagLen, err := enc.GetTag(buf[n:])
	if err != nil {
		t.Fatal(err)
	}
	if tagLen != 8 {
		t.Fatalf("GetTag returned %d bytes, want 8", tagLen)
	}

	dec := newAESGCMCipher(16, 8)
	if err := dec.Init(key); err != nil {
		t.Fatal(err)
	}
	_ = dec.SetIV(iv, DirectionDecrypt)
	_ = dec.SetAAD(aad)
	plainLen, err := dec.Decrypt(buf, n+tagLen)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:plainLen]) != string(plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", buf[:plainLen], plaintext)
	}

	// And the truncated verify must still reject a flipped tag bit.
	buf2 := make([]byte, len(plaintext)+8)
	copy(buf2, plaintext)
	_ = enc.SetIV(iv, DirectionEncrypt)
	_ = enc.SetAAD(aad)
	n2, _ := enc.Encrypt(buf2, len(plaintext))
	_, _ = enc.GetTag(buf2[n2:])
	buf2[n2] ^= 0x80
	_ = dec.SetIV(iv, DirectionDecrypt)
	_ = dec.SetAAD(aad)
	if _, err := dec.Decrypt(buf2, n2+8); err == nil {
		t.Error("expected authentication failure for tampered truncated tag")
	}
}

func TestAESGCMAlgorithmByKeyLength(t *testing.T) {
	if got := newAESGCMCipher(16, 16).Algorithm(); got != AlgorithmAESGCM128 {
		t.Errorf("Algorithm() = %v, want AlgorithmAESGCM128", got)
	}
	if got := newAESGCMCipher(32, 16).Algorithm(); got != AlgorithmAESGCM256 {
		t.Errorf("Algorithm() = %v, want AlgorithmAESGCM256", got)
	}
}
