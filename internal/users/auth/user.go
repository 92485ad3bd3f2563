// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

/*
Package auth implements the user identity and credential lifecycle for Tasknest.

It covers registration, login, refresh-token rotation, and logout. The package
follows a strict layering:

  - Entities: User, RefreshToken, CredentialPair (this file and token.go).
  - Contracts: UserDirectory, RefreshTokenStore, AccessTokenDenylist (store.go).
  - Application: Service and Issuer orchestrate the flows (service.go,
    exchange.go, issuer.go).
  - Infrastructure: Postgres and Redis implementations of the contracts.

Authentication failures are values, not errors: every flow that can be probed
by an attacker returns an [AuthOutcome], and all rejection branches of a flow
produce the same generic outcome so that responses carry no information about
which internal check failed. Storage failures are ordinary Go errors and travel
a separate path to HTTP 500.
*/
package auth

import "time"

// User represents a registered Tasknest account.
//
// The password hash never leaves the server: it is excluded from JSON
// serialization and compared only through [UserDirectory.VerifyPassword].
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// JSON field names used in validation error details.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldDisplayName  = "display_name"
	FieldPassword     = "password"
	FieldLogin        = "login"
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
)
