// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer at construction time — no ambient key material, no globals.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lmoretti/tasknest/pkg/uuid"
)

// MinSigningKeyLength is the minimum acceptable HMAC key size in bytes.
// Anything shorter than 256 bits is a deployment mistake, not a runtime
// condition, and is rejected at construction.
const MinSigningKeyLength = 32

// AccessClaims represents the payload embedded inside a JWT Access Token.
//
// # Why a fixed struct?
//
// Claims are modeled as named, typed fields constructed once during signing
// and parsed back the same way during verification. There is no string-keyed
// claim lookup anywhere in the codebase, so a token either parses into this
// exact shape or it is rejected.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	Username string `json:"unm"`
	Email    string `json:"eml"`
}

// Signer issues and verifies HS256-signed access tokens.
//
// It is a pure function of its inputs and the injected signing key. The key
// is fixed at startup and shared read-only across requests; rotation happens
// by restarting the process with new configuration.
type Signer struct {
	key       []byte
	issuer    string
	accessTTL time.Duration
}

// NewSigner creates a [Signer] from raw HMAC key material.
//
// A missing or short key is a fatal misconfiguration: the caller (cmd/api)
// is expected to abort startup rather than serve requests with it.
func NewSigner(key []byte, issuer string, accessTTL time.Duration) (*Signer, error) {
	if len(key) < MinSigningKeyLength {
		return nil, fmt.Errorf("sec: signing key must be at least %d bytes, got %d", MinSigningKeyLength, len(key))
	}
	if accessTTL <= 0 {
		return nil, errors.New("sec: access token lifetime must be positive")
	}

	return &Signer{
		key:       key,
		issuer:    issuer,
		accessTTL: accessTTL,
	}, nil
}

// AccessTokenTTL returns the fixed access-token lifetime configured at construction.
func (signer *Signer) AccessTokenTTL() time.Duration {
	return signer.accessTTL
}

// Key returns the signing key the Signer was constructed with.
//
// It exists so the composition root can hand the same key to the refresh
// exchange protocol, which verifies against an explicitly supplied key.
func (signer *Signer) Key() []byte {
	return signer.key
}

/*
Issue signs an access token embedding the given identity claims.

Description: Deterministic claim encoding plus an HMAC-SHA256 signature over
the claim set and expiry. The jti claim carries a UUIDv7 so individual tokens
can be denylisted on logout.

Parameters:
  - subjectID: string (stable user id, becomes the 'sub' claim)
  - username: string
  - email: string

Returns:
  - string: Compact signed JWT
  - error: Signing failures only (should not occur for well-formed claims)
*/
func (signer *Signer) Issue(subjectID, username, email string) (string, error) {
	currentTime := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   subjectID,
			Issuer:    signer.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(signer.accessTTL)),
		},
		Username: username,
		Email:    email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(signer.key)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

/*
Verify checks the signature and the full claim validity (including expiry) of
a JWT string. Used by the authentication middleware on every request.

Returns:
  - *AccessClaims: Parsed claims
  - error: Any structural, signature, or expiry failure
*/
func (signer *Signer) Verify(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, signer.keyFunc(signer.key),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	return claims, nil
}

/*
VerifyIgnoringExpiry checks structural validity and signature but deliberately
accepts expired tokens.

Description: The access token presented during a refresh exchange is expected
to have expired — that is the normal trigger for the rotation protocol. Only
the expiry check is skipped; signature, algorithm, and shape are still
enforced against the supplied key.

Parameters:
  - tokenString: string (attacker-controlled input; never panics)
  - key: []byte (the signing key to verify against)

Returns:
  - *AccessClaims: Parsed claims, or nil on malformed input, bad signature,
    or an unrecognized signing key
*/
func (signer *Signer) VerifyIgnoringExpiry(tokenString string, key []byte) *AccessClaims {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenString, &AccessClaims{}, signer.keyFunc(key))
	if err != nil {
		return nil
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil
	}

	// A token without a subject cannot drive the exchange protocol.
	if claims.Subject == "" {
		return nil
	}

	return claims
}

// keyFunc builds a jwt.Keyfunc that rejects any non-HMAC signing method
// before handing back the verification key.
func (signer *Signer) keyFunc(key []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}
}
