// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import (
	"context"
	"time"
)

// CreateIdentityInput carries the fields required to register a new account.
type CreateIdentityInput struct {
	Username    string
	Email       string
	DisplayName string
	Password    string
}

// UserDirectory abstracts the identity backend.
//
// # Contract
//
// CreateIdentity rejects policy violations (weak password, malformed email,
// duplicate username/email) with an [apperr.AppError] of kind VALIDATION_ERROR
// whose Details name the offending fields. Any other error is a storage
// failure.
//
// VerifyPassword is an opaque capability: implementations expose a bare
// yes/no and must not reveal hash material or timing differences between
// "unknown user" and "wrong password" paths beyond what the hash itself costs.
type UserDirectory interface {
	CreateIdentity(ctx context.Context, input CreateIdentityInput) (*User, error)
	FindByLogin(ctx context.Context, login string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	VerifyPassword(identity *User, password string) bool
}

// RefreshTokenStore abstracts durable refresh-token storage.
//
// All methods honor context cancellation. FindByLogin-style lookups that find
// nothing return (nil, nil); only infrastructure problems produce errors.
type RefreshTokenStore interface {
	// Insert persists a new token row. Fails on unknown owner.
	Insert(ctx context.Context, token *RefreshToken) error

	// FindByOwner returns the owner's full token history, expired rows
	// included. Order is unspecified.
	FindByOwner(ctx context.Context, ownerID string) ([]RefreshToken, error)

	// Revoke deletes the row with the given value. Revoking a value that does
	// not exist is a no-op, so the operation is idempotent.
	Revoke(ctx context.Context, value string) error

	// Rotate atomically consumes the stale token and persists its replacement
	// in a single transaction. It returns false, without inserting anything,
	// when the stale value no longer exists — meaning another caller consumed
	// it first. Exactly one of any number of concurrent callers presenting
	// the same stale value observes true.
	Rotate(ctx context.Context, staleValue string, replacement *RefreshToken) (bool, error)
}

// AccessTokenDenylist tracks individual access tokens (by jti claim) that were
// revoked before their natural expiry, e.g. by logout.
//
// Entries only need to live as long as the token they block, so the backing
// store can expire them on its own.
type AccessTokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
