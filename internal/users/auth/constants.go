// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import "time"

const (
	// AccessTokenTTL is the signed access token lifetime. Short by design of
	// the rotation protocol: the refresh exchange exists so this can stay small.
	AccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenLifetime is the validity window of a refresh token
	// when the caller does not specify one.
	DefaultRefreshTokenLifetime = 5 * 24 * time.Hour

	// RefreshTokenByteLength is the entropy of the opaque refresh value in
	// bytes, before base64url encoding.
	RefreshTokenByteLength = 32

	// Field length limits enforced by the user directory.
	maxUsernameLength    = 30
	minUsernameLength    = 3
	maxEmailLength       = 254
	maxDisplayNameLength = 60
)
