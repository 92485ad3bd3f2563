// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lmoretti/tasknest/internal/platform/sec"
)

// Issuer mints matched credential pairs: a signed access token plus a durable
// refresh token.
type Issuer struct {
	signer *sec.Signer
	tokens RefreshTokenStore
}

// NewIssuer creates a credential issuer backed by the given signer and store.
func NewIssuer(signer *sec.Signer, tokens RefreshTokenStore) *Issuer {
	return &Issuer{signer: signer, tokens: tokens}
}

/*
Issue mints and persists a fresh credential pair for the identity.

Description: The refresh row is written before the pair is returned, and a
failed write fails the whole issuance — an access token is never handed out
without its persisted refresh counterpart, so every issued pair can later be
rotated or revoked.

Parameters:
  - context: Request-scoped context for the durable write
  - identity: The authenticated account to issue for
  - remoteAddress: Client IP recorded on the refresh row (blank on rotation)
  - lifetime: Refresh validity window; <= 0 selects [DefaultRefreshTokenLifetime]

Returns:
  - *CredentialPair: The freshly issued pair
  - error: Signing or storage failure; nothing was issued
*/
func (issuer *Issuer) Issue(context context.Context, identity *User, remoteAddress string, lifetime time.Duration) (*CredentialPair, error) {
	pair, row, err := issuer.mint(identity, remoteAddress, lifetime)
	if err != nil {
		return nil, err
	}

	if err := issuer.tokens.Insert(context, row); err != nil {
		return nil, fmt.Errorf("issuer_persist_failed: %w", err)
	}

	return pair, nil
}

// mint builds the pair and its refresh row without touching storage. The
// refresh exchange uses this directly so it can persist the row through the
// atomic Rotate primitive instead of a plain insert.
func (issuer *Issuer) mint(identity *User, remoteAddress string, lifetime time.Duration) (*CredentialPair, *RefreshToken, error) {
	if lifetime <= 0 {
		lifetime = DefaultRefreshTokenLifetime
	}

	accessToken, err := issuer.signer.Issue(identity.ID, identity.Username, identity.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("issuer_sign_failed: %w", err)
	}

	refreshValue, err := sec.GenerateSecureToken(RefreshTokenByteLength)
	if err != nil {
		return nil, nil, fmt.Errorf("issuer_generate_refresh_failed: %w", err)
	}

	currentTime := time.Now()
	row := &RefreshToken{
		Value:         refreshValue,
		OwnerID:       identity.ID,
		CreatedAt:     currentTime,
		ModifiedAt:    currentTime,
		ExpiresAt:     currentTime.Add(lifetime),
		RemoteAddress: remoteAddress,
	}

	pair := &CredentialPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshValue,
		RefreshTokenExpiresAt: row.ExpiresAt,
	}

	return pair, row, nil
}
