package dtlssrtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	srtp "github.com/ukreator/libsrtp"
)

func TestRTPPolicyCoversEveryNegotiableProfile(t *testing.T) {
	profiles := []Profile{
		AES128CMSHA1_80, AES128CMSHA1_32, NullSHA1_80,
		AES256CMSHA1_80, AES256CMSHA1_32, AEAD_AES128GCM, AEAD_AES256GCM,
	}
	for _, p := range profiles {
		policy, err := RTPPolicy(p)
		require.NoError(t, err, p)
		assert.NotZero(t, policy.CipherKeyLen, p)
	}
}

func TestRTPPolicyRejectsNullSHA1_32(t *testing.T) {
	_, err := RTPPolicy(NullSHA1_32)
	assert.ErrorIs(t, err, ErrUnsupportedProfile)
}

func TestRTCPPolicyCoercesTruncatedTagsToFullLength(t *testing.T) {
	rtcp, err := RTCPPolicy(AES128CMSHA1_32)
	require.NoError(t, err)
	want, err := RTPPolicy(AES128CMSHA1_80)
	require.NoError(t, err)
	assert.Equal(t, want, rtcp)

	rtcp256, err := RTCPPolicy(AES256CMSHA1_32)
	require.NoError(t, err)
	want256, err := RTPPolicy(AES256CMSHA1_80)
	require.NoError(t, err)
	assert.Equal(t, want256, rtcp256)
}

func TestRTCPPolicyPassesThroughNonTruncatedProfiles(t *testing.T) {
	rtp, err := RTPPolicy(AEAD_AES128GCM)
	require.NoError(t, err)
	rtcp, err := RTCPPolicy(AEAD_AES128GCM)
	require.NoError(t, err)
	assert.Equal(t, rtp, rtcp)
}

func TestMasterKeyLength(t *testing.T) {
	cases := []struct {
		p    Profile
		want int
	}{
		{AES128CMSHA1_80, 16},
		{AES128CMSHA1_32, 16},
		{NullSHA1_80, 16},
		{AEAD_AES128GCM, 16},
		{AES256CMSHA1_80, 32},
		{AES256CMSHA1_32, 32},
		{AEAD_AES256GCM, 32},
	}
	for _, c := range cases {
		got, err := MasterKeyLength(c.p)
		require.NoError(t, err, c.p)
		assert.Equal(t, c.want, got, c.p)
	}

	_, err := MasterKeyLength(NullSHA1_32)
	assert.ErrorIs(t, err, ErrUnsupportedProfile)
}

func TestMasterSaltLength(t *testing.T) {
	legacy, err := MasterSaltLength(AES128CMSHA1_80)
	require.NoError(t, err)
	assert.Equal(t, 14, legacy)

	aead, err := MasterSaltLength(AEAD_AES256GCM)
	require.NoError(t, err)
	assert.Equal(t, 12, aead)
}

// A profile's CryptoPolicy must size a master key buffer the same way
// MasterKeyLength+MasterSaltLength do, since a caller is expected to size
// one DTLS exporter output from the latter two and hand it to srtp.Policy
// via the former.
func TestPolicyKeyLengthMatchesExporterSizing(t *testing.T) {
	for _, p := range []Profile{AES128CMSHA1_80, AES256CMSHA1_80, AEAD_AES128GCM, AEAD_AES256GCM} {
		policy, err := RTPPolicy(p)
		require.NoError(t, err, p)

		keyLen, err := MasterKeyLength(p)
		require.NoError(t, err, p)
		saltLen, err := MasterSaltLength(p)
		require.NoError(t, err, p)

		assert.Equal(t, policy.CipherKeyLen, keyLen+saltLen, p)
	}
}

func TestProfileStringNamesMatchRFC(t *testing.T) {
	assert.Equal(t, "SRTP_AES128_CM_HMAC_SHA1_80", AES128CMSHA1_80.String())
	assert.Equal(t, "SRTP_AEAD_AES_256_GCM", AEAD_AES256GCM.String())
	assert.Equal(t, "unknown profile", Profile(999).String())
}

// A policy returned by this package must actually build a working srtp
// stream, since that's the whole point of the table.
func TestRTPPolicyWiresIntoSession(t *testing.T) {
	policy, err := RTPPolicy(AEAD_AES128GCM)
	require.NoError(t, err)

	keyLen, err := MasterKeyLength(AEAD_AES128GCM)
	require.NoError(t, err)
	saltLen, err := MasterSaltLength(AEAD_AES128GCM)
	require.NoError(t, err)

	_, err = srtp.NewSession([]srtp.Policy{{
		SSRC:      srtp.SSRCSelector{Type: srtp.SSRCSpecific, Value: 1},
		RTP:       policy,
		RTCP:      policy,
		MasterKey: make([]byte, keyLen+saltLen),
	}})
	require.NoError(t, err)
}
