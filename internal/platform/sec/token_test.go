// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoretti/tasknest/internal/platform/sec"
)

/*
TestGenerateSecureToken verifies length, URL-safety, and uniqueness of
generated opaque tokens.
*/
func TestGenerateSecureToken(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := sec.GenerateSecureToken(32)
		require.NoError(t, err)

		// 32 raw bytes -> 43 base64url characters (no padding).
		assert.Len(t, token, 43)
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "=")

		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

/*
TestHashPassword_Roundtrip checks bcrypt hash and constant-time verification.
*/
func TestHashPassword_Roundtrip(t *testing.T) {
	hash, err := sec.HashPassword("Secret123!")
	require.NoError(t, err)
	require.NotEqual(t, "Secret123!", hash)

	assert.True(t, sec.CheckPasswordHash("Secret123!", hash))
	assert.False(t, sec.CheckPasswordHash("wrong-password", hash))
	assert.False(t, sec.CheckPasswordHash("", hash))
}
