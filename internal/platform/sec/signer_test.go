// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoretti/tasknest/internal/platform/sec"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newTestSigner(t *testing.T, ttl time.Duration) *sec.Signer {
	t.Helper()
	signer, err := sec.NewSigner(testSigningKey, "tasknest.test", ttl)
	require.NoError(t, err)
	return signer
}

/*
TestNewSigner_KeyPolicy verifies that weak key material is rejected at
construction, not at request time.
*/
func TestNewSigner_KeyPolicy(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		ttl     time.Duration
		wantErr bool
	}{
		{"valid_key", testSigningKey, 15 * time.Minute, false},
		{"short_key", []byte("too-short"), 15 * time.Minute, true},
		{"empty_key", nil, 15 * time.Minute, true},
		{"zero_ttl", testSigningKey, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewSigner(tt.key, "tasknest.test", tt.ttl)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestSigner_IssueAndVerify checks the sign/verify roundtrip and that the
embedded claims match the identity they were issued for.
*/
func TestSigner_IssueAndVerify(t *testing.T) {
	signer := newTestSigner(t, 15*time.Minute)

	token, err := signer.Issue("user-123", "alice", "alice@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := signer.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.NotEmpty(t, claims.ID, "jti must be set for denylisting")
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

/*
TestSigner_VerifyIgnoringExpiry_AcceptsExpired proves that an expired but
authentic token still yields its claims — the normal rotation trigger.
*/
func TestSigner_VerifyIgnoringExpiry_AcceptsExpired(t *testing.T) {
	// A 1ns lifetime guarantees the token is expired by the time we verify it.
	signer := newTestSigner(t, time.Nanosecond)

	token, err := signer.Issue("user-123", "alice", "alice@x.com")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	// Strict verification must reject it...
	_, err = signer.Verify(token)
	require.Error(t, err)

	// ...while the exchange path must not.
	claims := signer.VerifyIgnoringExpiry(token, testSigningKey)
	require.NotNil(t, claims)
	assert.Equal(t, "user-123", claims.Subject)
}

/*
TestSigner_VerifyIgnoringExpiry_Rejections enumerates the inputs that must
yield nil claims: garbage, tampered payloads, and foreign signing keys.
*/
func TestSigner_VerifyIgnoringExpiry_Rejections(t *testing.T) {
	signer := newTestSigner(t, 15*time.Minute)

	authentic, err := signer.Issue("user-123", "alice", "alice@x.com")
	require.NoError(t, err)

	tampered := authentic[:len(authentic)-4] + "AAAA"

	foreignKey := []byte("ffffffffffffffffffffffffffffffff")
	foreignSigner, err := sec.NewSigner(foreignKey, "tasknest.test", 15*time.Minute)
	require.NoError(t, err)
	foreignToken, err := foreignSigner.Issue("user-123", "alice", "alice@x.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		key   []byte
	}{
		{"empty_string", "", testSigningKey},
		{"not_a_jwt", "definitely-not-a-jwt", testSigningKey},
		{"missing_segments", strings.Split(authentic, ".")[0], testSigningKey},
		{"tampered_signature", tampered, testSigningKey},
		{"unknown_signing_key", foreignToken, testSigningKey},
		{"valid_token_wrong_verify_key", authentic, foreignKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, signer.VerifyIgnoringExpiry(tt.token, tt.key))
		})
	}
}

/*
TestSigner_RejectsAlgorithmConfusion ensures a token claiming alg=none is
never accepted, even with a valid-looking payload.
*/
func TestSigner_RejectsAlgorithmConfusion(t *testing.T) {
	signer := newTestSigner(t, 15*time.Minute)

	// header {"alg":"none","typ":"JWT"} with an empty signature segment.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ1c2VyLTEyMyJ9."

	assert.Nil(t, signer.VerifyIgnoringExpiry(unsigned, testSigningKey))
	_, err := signer.Verify(unsigned)
	assert.Error(t, err)
}
