package crypto

import (
	"crypto/hmac"
	"crypto/sha1"
	"hash"
)

// hmacSHA1Mac implements the default SRTP/SRTCP authentication transform,
// HMAC-SHA1 truncated to a policy-chosen tag length (80 or 32 bits per RFC
// 3711 section 4.2). It needs no keystream prefix, unlike the universal-hash
// MACs some other SRTP profiles use, so PrefixLength is always 0.
type hmacSHA1Mac struct {
	tagLen int
	key    []byte
	h      hash.Hash
}

func newHMACSHA1Mac(tagLen int) *hmacSHA1Mac {
	return &hmacSHA1Mac{tagLen: tagLen}
}

func (m *hmacSHA1Mac) Init(key []byte) error {
	m.key = append([]byte(nil), key...)
	m.h = hmac.New(sha1.New, m.key)
	return nil
}

func (m *hmacSHA1Mac) Start() {
	m.h.Reset()
}

func (m *hmacSHA1Mac) Update(b []byte) {
	m.h.Write(b)
}

// Compute finalizes the tag. When out is non-nil the returned slice aliases
// out, so callers that post-process the tag (keystream-prefix XOR) mutate
// the bytes they already placed on the wire.
func (m *hmacSHA1Mac) Compute(extra []byte, out []byte) []byte {
	if extra != nil {
		m.h.Write(extra)
	}
	full := m.h.Sum(nil)
	if out != nil {
		n := copy(out, full[:m.tagLen])
		return out[:n]
	}
	return full[:m.tagLen]
}

func (m *hmacSHA1Mac) TagLength() int    { return m.tagLen }
func (m *hmacSHA1Mac) PrefixLength() int { return 0 }
func (m *hmacSHA1Mac) KeyLength() int    { return 20 }
