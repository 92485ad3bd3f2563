// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import "time"

// RefreshToken is one row of a user's refresh-token history.
//
// The opaque random value doubles as the primary key. Revocation is physical
// deletion of the row, so there is no revoked flag: a token that exists and
// has not expired is usable, everything else is not.
type RefreshToken struct {
	// Value is the opaque base64url credential handed to the client.
	Value string `json:"-"`
	// OwnerID is the account the token was issued to.
	OwnerID string `json:"owner_id"`
	// CreatedAt is when the token was first issued.
	CreatedAt time.Time `json:"created_at"`
	// ModifiedAt tracks the last mutation of the row.
	ModifiedAt time.Time `json:"modified_at"`
	// ExpiresAt is the hard end of the token's lifetime.
	ExpiresAt time.Time `json:"expires_at"`
	// RemoteAddress records the client IP at issuance, for auditing.
	// Rotated tokens carry an empty address.
	RemoteAddress string `json:"remote_address"`
}

// Active reports whether the token is still within its lifetime.
func (token *RefreshToken) Active() bool {
	return time.Now().Before(token.ExpiresAt)
}

// CredentialPair is the unit of issuance: a short-lived signed access token
// together with the long-lived opaque refresh token that can replace it.
//
// The two are always minted together and, on refresh exchange, die together.
type CredentialPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}
