package srtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukreator/libsrtp/internal/replay"
)

// buildRTPPacket assembles a minimal (no CSRC, no extension) RTP packet
// with room for a trailing auth tag/AEAD tag.
func buildRTPPacket(seq uint16, ssrc uint32, payload []byte) ([]byte, int) {
	n := 12 + len(payload)
	buf := make([]byte, n, n+32)
	buf[0] = 0x80 // version 2, no padding, no extension, CC=0
	buf[1] = 100  // payload type
	buf[2] = byte(seq >> 8)
	buf[3] = byte(seq)
	// timestamp left zero
	buf[8] = byte(ssrc >> 24)
	buf[9] = byte(ssrc >> 16)
	buf[10] = byte(ssrc >> 8)
	buf[11] = byte(ssrc)
	copy(buf[12:], payload)
	return buf, n
}

// buildRTCPPacket assembles a minimal 8-byte-header RTCP packet.
func buildRTCPPacket(ssrc uint32, payload []byte) ([]byte, int) {
	n := 8 + len(payload)
	buf := make([]byte, n, n+32)
	buf[0] = 0x80
	buf[1] = 200 // SR
	buf[4] = byte(ssrc >> 24)
	buf[5] = byte(ssrc >> 16)
	buf[6] = byte(ssrc >> 8)
	buf[7] = byte(ssrc)
	copy(buf[8:], payload)
	return buf, n
}

func zeroMasterKey(n int) []byte { return make([]byte, n) }

func specificPolicy(ssrc uint32, rtp, rtcp CryptoPolicy, masterKey []byte) *Policy {
	return &Policy{
		SSRC:      SSRCSelector{Type: SSRCSpecific, Value: ssrc},
		RTP:       rtp,
		RTCP:      rtcp,
		MasterKey: masterKey,
	}
}

// Concrete scenario 1: AES-CM-128 + HMAC-SHA1-80, zero key/salt,
// SSRC=0xCAFEBABE, seq=0: protect then unprotect restores the packet.
func TestProtectUnprotectRTPRoundTrip(t *testing.T) {
	policy := DefaultPolicy()
	key := zeroMasterKey(30)
	ssrc := uint32(0xCAFEBABE)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)
	receiver, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	payload := make([]byte, 20)
	buf, n := buildRTPPacket(0, ssrc, payload)
	original := append([]byte(nil), buf[:n]...)

	protectedLen, err := sender.ProtectRTP(buf, n)
	require.NoError(t, err)
	assert.Equal(t, n+10, protectedLen, "expected a 10-byte HMAC-SHA1-80 tag appended")

	out := append([]byte(nil), buf[:protectedLen]...)
	plainLen, err := receiver.UnprotectRTP(out, protectedLen)
	require.NoError(t, err)
	assert.Equal(t, original, out[:plainLen])
}

// Concrete scenario 2: replay. protect seq 0..3, feed 1,3,2,0 into
// unprotect (all succeed, out of order but within window), then replay 2.
func TestProtectUnprotectRTPReplay(t *testing.T) {
	policy := DefaultPolicy()
	key := zeroMasterKey(30)
	ssrc := uint32(0xCAFEBABE)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)
	receiver, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	packets := make([][]byte, 4)
	for seq := uint16(0); seq < 4; seq++ {
		buf, n := buildRTPPacket(seq, ssrc, []byte("payload-data"))
		plen, err := sender.ProtectRTP(buf, n)
		require.NoError(t, err)
		packets[seq] = append([]byte(nil), buf[:plen]...)
	}

	for _, seq := range []int{1, 3, 2, 0} {
		p := append([]byte(nil), packets[seq]...)
		_, err := receiver.UnprotectRTP(p, len(p))
		assert.NoError(t, err, "seq %d should unprotect successfully", seq)
	}

	replayed := append([]byte(nil), packets[2]...)
	_, err = receiver.UnprotectRTP(replayed, len(replayed))
	assert.ErrorIs(t, err, ErrReplayFail)
}

// Concrete scenario 3: AES-GCM-128-16 IV construction.
func TestAEADRTPIVVector(t *testing.T) {
	var salt [14]byte
	for i := range salt {
		salt[i] = byte(i)
	}
	ssrc := uint32(0x12345678)
	seq := uint16(0xABCD)
	roc := uint32(0)

	iv := buildAEADRTPIV(salt, ssrc, roc, seq)

	preSalt := [12]byte{0, 0, 0x12, 0x34, 0x56, 0x78, 0x00, 0x00, 0x00, 0x00, 0xAB, 0xCD}
	var want [16]byte
	for i := 0; i < 12; i++ {
		want[i] = preSalt[i] ^ salt[i]
	}
	assert.Equal(t, want, iv)
}

func TestProtectUnprotectRTPAEAD(t *testing.T) {
	policy := AEADAES128GCM16Policy()
	key := zeroMasterKey(28)
	ssrc := uint32(0x12345678)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)
	receiver, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	payload := []byte("some rtp payload bytes")
	buf, n := buildRTPPacket(42, ssrc, payload)
	original := append([]byte(nil), buf[:n]...)

	plen, err := sender.ProtectRTP(buf, n)
	require.NoError(t, err)
	assert.Equal(t, n+16, plen)

	out := append([]byte(nil), buf[:plen]...)
	unLen, err := receiver.UnprotectRTP(out, plen)
	require.NoError(t, err)
	assert.Equal(t, original, out[:unLen])
}

func TestProtectUnprotectRTPAEADTruncatedTag(t *testing.T) {
	policy := AEADAES128GCM8Policy()
	key := zeroMasterKey(28)
	ssrc := uint32(0x12345678)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)
	receiver, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	payload := []byte("short-tag payload")
	buf, n := buildRTPPacket(7, ssrc, payload)
	original := append([]byte(nil), buf[:n]...)

	plen, err := sender.ProtectRTP(buf, n)
	require.NoError(t, err)
	assert.Equal(t, n+8, plen, "expected an 8-byte truncated GCM tag appended")

	out := append([]byte(nil), buf[:plen]...)
	unLen, err := receiver.UnprotectRTP(out, plen)
	require.NoError(t, err)
	assert.Equal(t, original, out[:unLen])
}

// Bitflip: flipping a bit anywhere in the authenticated region of a legacy
// packet must fail closed with ErrAuthFail.
func TestBitFlipCausesAuthFail(t *testing.T) {
	policy := DefaultPolicy()
	key := zeroMasterKey(30)
	ssrc := uint32(0xCAFEBABE)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)
	receiver, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	buf, n := buildRTPPacket(0, ssrc, []byte("0123456789"))
	plen, err := sender.ProtectRTP(buf, n)
	require.NoError(t, err)

	out := append([]byte(nil), buf[:plen]...)
	out[12] ^= 0x01 // flip a bit inside the encrypted payload

	_, err = receiver.UnprotectRTP(out, plen)
	assert.ErrorIs(t, err, ErrAuthFail)
}

// Truncation: dropping a trailing byte must fail, never silently succeed.
func TestTruncationFails(t *testing.T) {
	policy := DefaultPolicy()
	key := zeroMasterKey(30)
	ssrc := uint32(0xCAFEBABE)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)
	receiver, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	buf, n := buildRTPPacket(0, ssrc, []byte("0123456789"))
	plen, err := sender.ProtectRTP(buf, n)
	require.NoError(t, err)

	out := append([]byte(nil), buf[:plen-1]...)
	_, err = receiver.UnprotectRTP(out, len(out))
	assert.Error(t, err)
}

// Concrete scenario 4: a single inbound-wildcard template promotes to a
// real stream on the first authenticated packet for a new SSRC, and
// subsequent packets for that SSRC hit the promoted stream.
func TestProvisionalPromotion(t *testing.T) {
	policy := DefaultPolicy()
	key := zeroMasterKey(30)
	ssrc := uint32(0x01)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	receiver, err := NewSession([]Policy{{
		SSRC:      SSRCSelector{Type: SSRCAnyInbound},
		RTP:       policy,
		RTCP:      policy,
		MasterKey: key,
	}})
	require.NoError(t, err)

	_, ok := receiver.GetStream(ssrc)
	assert.False(t, ok, "no real stream should exist before the first packet")

	buf1, n1 := buildRTPPacket(0, ssrc, []byte("first"))
	plen1, err := sender.ProtectRTP(buf1, n1)
	require.NoError(t, err)
	_, err = receiver.UnprotectRTP(buf1, plen1)
	require.NoError(t, err)

	promoted, ok := receiver.GetStream(ssrc)
	require.True(t, ok, "first authenticated packet should promote a real stream")

	buf2, n2 := buildRTPPacket(1, ssrc, []byte("second"))
	plen2, err := sender.ProtectRTP(buf2, n2)
	require.NoError(t, err)
	_, err = receiver.UnprotectRTP(buf2, plen2)
	require.NoError(t, err)

	again, ok := receiver.GetStream(ssrc)
	require.True(t, ok)
	assert.Same(t, promoted, again, "second packet for the same SSRC must hit the already-promoted stream")
}

// Concrete scenario 5: SRTCP E-bit disagreement with configured services is
// rejected as ErrCantCheck rather than silently misinterpreted.
func TestSRTCPEBitDisagreementCantCheck(t *testing.T) {
	confPolicy := DefaultPolicy() // confidentiality + authentication
	authOnlyPolicy := AESCM128OnlyAuthPolicy()
	key := zeroMasterKey(30)
	ssrc := uint32(0xFEEDFACE)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, confPolicy, confPolicy, key)})
	require.NoError(t, err)
	receiver, err := NewSession([]Policy{*specificPolicy(ssrc, authOnlyPolicy, authOnlyPolicy, key)})
	require.NoError(t, err)

	buf, n := buildRTCPPacket(ssrc, []byte("rtcp payload"))
	plen, err := sender.ProtectRTCP(buf, n)
	require.NoError(t, err)

	_, err = receiver.UnprotectRTCP(buf, plen)
	assert.ErrorIs(t, err, ErrCantCheck)
}

func TestProtectUnprotectRTCPRoundTrip(t *testing.T) {
	policy := DefaultPolicy()
	key := zeroMasterKey(30)
	ssrc := uint32(0xFEEDFACE)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)
	receiver, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	payload := []byte("rtcp payload bytes")
	buf, n := buildRTCPPacket(ssrc, payload)
	original := append([]byte(nil), buf[:n]...)

	plen, err := sender.ProtectRTCP(buf, n)
	require.NoError(t, err)

	out := append([]byte(nil), buf[:plen]...)
	unLen, err := receiver.UnprotectRTCP(out, plen)
	require.NoError(t, err)
	assert.Equal(t, original, out[:unLen])
}

func TestProtectUnprotectRTCPAEAD(t *testing.T) {
	policy := AEADAES128GCM16Policy()
	key := zeroMasterKey(28)
	ssrc := uint32(0xFEEDFACE)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)
	receiver, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	payload := []byte("rtcp payload bytes")
	buf, n := buildRTCPPacket(ssrc, payload)
	original := append([]byte(nil), buf[:n]...)

	plen, err := sender.ProtectRTCP(buf, n)
	require.NoError(t, err)

	out := append([]byte(nil), buf[:plen]...)
	unLen, err := receiver.UnprotectRTCP(out, plen)
	require.NoError(t, err)
	assert.Equal(t, original, out[:unLen])
}

// GCM in authenticate-only mode: the payload rides as associated data, so
// the wire carries plaintext plus a trailer with E-bit 0 and a GCM tag, and
// tampering still fails the combined decrypt+verify.
func TestProtectUnprotectRTCPAEADOnlyAuth(t *testing.T) {
	policy := AEADAES128GCM8OnlyAuthPolicy()
	key := zeroMasterKey(28)
	ssrc := uint32(0xFEEDFACE)

	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)
	receiver, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	payload := []byte("rtcp payload bytes")
	buf, n := buildRTCPPacket(ssrc, payload)
	original := append([]byte(nil), buf[:n]...)

	plen, err := sender.ProtectRTCP(buf, n)
	require.NoError(t, err)
	require.Equal(t, n+4+8, plen, "expected a 4-byte trailer and an 8-byte tag appended")
	wire := buf[:plen]
	assert.Equal(t, payload, wire[8:n], "authenticate-only must leave the payload as plaintext")
	assert.Zero(t, wire[n]&0x80, "E-bit must be clear when nothing is encrypted")

	out := append([]byte(nil), wire...)
	unLen, err := receiver.UnprotectRTCP(out, plen)
	require.NoError(t, err)
	assert.Equal(t, original, out[:unLen])

	// A fresh receiver, so the tampered copy is not rejected as a replay
	// of the index the first unprotect already recorded.
	receiver2, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)
	tampered := append([]byte(nil), buf[:plen]...)
	tampered[9] ^= 0x01
	_, err = receiver2.UnprotectRTCP(tampered, plen)
	assert.ErrorIs(t, err, ErrCipherFail)
}

// Concrete scenario 6: SRTCP index exhaustion fails the protect call and
// fires EventPacketIndexLimit exactly once.
func TestSRTCPIndexExhaustion(t *testing.T) {
	policy := DefaultPolicy()
	key := zeroMasterKey(30)
	ssrc := uint32(0xAAAAAAAA)

	var events []Event
	sender, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)},
		WithEventHandler(func(ev Event) { events = append(events, ev) }))
	require.NoError(t, err)

	st, ok := sender.GetStream(ssrc)
	require.True(t, ok)

	exhausted, err := replay.NewRTCPIndexFromState(0, (1<<31)-1)
	require.NoError(t, err)
	st.rtcpIndex = exhausted

	buf, n := buildRTCPPacket(ssrc, []byte("x"))
	_, err = sender.ProtectRTCP(buf, n)
	assert.ErrorIs(t, err, ErrKeyExpired)
	require.Len(t, events, 1)
	assert.Equal(t, EventPacketIndexLimit, events[0].Kind)
}

// Usage limit: crossing soft and hard thresholds each emit their event
// exactly once, and the hard crossing fails the packet.
func TestUsageLimitEvents(t *testing.T) {
	policy := DefaultPolicy()
	key := zeroMasterKey(30)
	ssrc := uint32(0x55555555)

	var events []Event
	sender, err := NewSession([]Policy{{
		SSRC:         SSRCSelector{Type: SSRCSpecific, Value: ssrc},
		RTP:          policy,
		RTCP:         policy,
		MasterKey:    key,
		KeyLimitSoft: 2,
		KeyLimitHard: 4,
	}}, WithEventHandler(func(ev Event) { events = append(events, ev) }))
	require.NoError(t, err)

	var lastErr error
	for seq := uint16(0); seq < 5; seq++ {
		buf, n := buildRTPPacket(seq, ssrc, []byte("x"))
		_, lastErr = sender.ProtectRTP(buf, n)
		if lastErr != nil {
			break
		}
	}
	assert.ErrorIs(t, lastErr, ErrKeyExpired)

	var soft, hard int
	for _, ev := range events {
		switch ev.Kind {
		case EventKeySoftLimit:
			soft++
		case EventKeyHardLimit:
			hard++
		}
	}
	assert.Equal(t, 1, soft)
	assert.Equal(t, 1, hard)
}

// Direction: the first protect (outbound) sets direction=sender; a
// subsequent unprotect on the same stream implies receiver and emits
// EventSSRCCollision exactly once, without failing the packet.
func TestDirectionCollisionEvent(t *testing.T) {
	policy := DefaultPolicy()
	key := zeroMasterKey(30)
	ssrc := uint32(0x77777777)

	var events []Event
	session, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)},
		WithEventHandler(func(ev Event) { events = append(events, ev) }))
	require.NoError(t, err)

	buf, n := buildRTPPacket(0, ssrc, []byte("x"))
	_, err = session.ProtectRTP(buf, n)
	require.NoError(t, err)

	peerKey := zeroMasterKey(30)
	peer, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, peerKey)})
	require.NoError(t, err)
	buf2, n2 := buildRTPPacket(0, ssrc, []byte("y"))
	plen2, err := peer.ProtectRTP(buf2, n2)
	require.NoError(t, err)

	_, err = session.UnprotectRTP(buf2, plen2)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, EventSSRCCollision, events[0].Kind)
}

func TestNullCipherAuthOnlyPolicyInitializes(t *testing.T) {
	policy := NullCipherHMACSHA1_80Policy()
	key := zeroMasterKey(30)
	ssrc := uint32(0x9)

	session, err := NewSession([]Policy{*specificPolicy(ssrc, policy, policy, key)})
	require.NoError(t, err)

	buf, n := buildRTPPacket(0, ssrc, []byte("plaintext stays plaintext"))
	plaintext := append([]byte(nil), buf[12:n]...)

	plen, err := session.ProtectRTP(buf, n)
	require.NoError(t, err)
	assert.Equal(t, plaintext, buf[12:n], "NULL cipher must not alter the payload")
	assert.Equal(t, n+10, plen)
}

func TestRTCPICMIVShape(t *testing.T) {
	var salt [14]byte
	ssrc := uint32(0x01020304)
	index := uint32(0x00112233) & 0x7FFFFFFF

	iv := buildRTCPICMIV(salt, ssrc, index)

	var want [16]byte
	want[4] = 0x01
	want[5] = 0x02
	want[6] = 0x03
	want[7] = 0x04
	hi := index >> 16
	lo := index << 16
	want[8] = byte(hi >> 24)
	want[9] = byte(hi >> 16)
	want[10] = byte(hi >> 8)
	want[11] = byte(hi)
	want[12] = byte(lo >> 24)
	want[13] = byte(lo >> 16)
	want[14] = byte(lo >> 8)
	want[15] = byte(lo)
	assert.Equal(t, want, iv)
}
