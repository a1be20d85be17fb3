package kdf

import (
	"testing"

	"github.com/ukreator/libsrtp/internal/crypto"
)

func TestDeriveStreamKeysInstallsAllSixSubkeys(t *testing.T) {
	kernel := crypto.NewKernel()
	rtpCipher, err := kernel.Cipher(crypto.AlgorithmAESICM128, 0)
	if err != nil {
		t.Fatal(err)
	}
	rtcpCipher, err := kernel.Cipher(crypto.AlgorithmAESICM128, 0)
	if err != nil {
		t.Fatal(err)
	}
	rtpMac := crypto.NewHMACSHA1(10)
	rtcpMac := crypto.NewHMACSHA1(10)

	masterKey := []byte("TopSecret128bits")
	masterSalt := []byte("SodiumChlorideXX")[:14]

	rtpSalt, rtcpSalt, err := DeriveStreamKeys(masterKey, masterSalt, rtpCipher, rtpMac, rtcpCipher, rtcpMac)
	if err != nil {
		t.Fatal(err)
	}

	if rtpSalt == [14]byte{} {
		t.Error("expected non-zero RTP salt")
	}
	if rtcpSalt == [14]byte{} {
		t.Error("expected non-zero RTCP salt")
	}
	if rtpSalt == rtcpSalt {
		t.Error("RTP and RTCP salts must differ (distinct labels)")
	}

	// Ciphers and MACs must now be usable; Init should have been called.
	buf := []byte("hello, world 123")
	n, err := rtpCipher.Encrypt(append([]byte(nil), buf...), len(buf))
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Errorf("unexpected ciphertext length: %d", n)
	}
}
