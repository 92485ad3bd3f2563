// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
)

/*
ExchangeRefreshToken trades an expired access token plus its refresh token for
a brand-new credential pair, consuming the old refresh token in the process.

Description: The protocol runs as a fixed sequence of gates. Every gate that
rejects produces the byte-identical generic outcome — a caller cannot tell a
forged access token from an unknown user from an expired or already-spent
refresh token:

 1. Verify the access token's signature and shape with the supplied key,
    deliberately ignoring expiry (an expired access token is the normal
    trigger for this protocol).
 2. Resolve the subject claim to a live account.
 3. Match the presented refresh value against the account's active tokens.
 4. Mint a replacement pair and atomically swap it for the stale row. The
    swap is a single store transaction: losing the race to a concurrent
    exchange rejects, and a crash mid-swap leaves the old token valid so the
    client can retry.

The rotated refresh row carries a blank remote address.

Parameters:
  - context: Request-scoped context
  - accessToken: The (typically expired) signed access token
  - refreshValue: The opaque refresh token to spend
  - signingKey: HMAC key the access token must verify against

Returns:
  - *AuthOutcome: REFRESH_TOKEN_SUCCESS with the new pair, or the generic failure
  - error: Storage or signing failures only
*/
func (service *Service) ExchangeRefreshToken(context context.Context, accessToken, refreshValue string, signingKey []byte) (*AuthOutcome, error) {
	// ── 1. Access Token Gate ──────────────────────────────────────────────
	claims := service.signer.VerifyIgnoringExpiry(accessToken, signingKey)
	if claims == nil {
		return refreshFailure(), nil
	}

	// ── 2. Identity Gate ──────────────────────────────────────────────────
	identity, err := service.directory.FindByID(context, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("exchange_lookup_failed: %w", err)
	}
	if identity == nil {
		return refreshFailure(), nil
	}

	// ── 3. Refresh Token Gate ─────────────────────────────────────────────
	if refreshValue == "" {
		return refreshFailure(), nil
	}

	history, err := service.tokens.FindByOwner(context, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("exchange_history_failed: %w", err)
	}

	matched := false
	for index := range history {
		if history[index].Value == refreshValue && history[index].Active() {
			matched = true
			break
		}
	}
	if !matched {
		return refreshFailure(), nil
	}

	// ── 4. Atomic Rotation ────────────────────────────────────────────────
	pair, replacement, err := service.issuer.mint(identity, "", DefaultRefreshTokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("exchange_mint_failed: %w", err)
	}

	rotated, err := service.tokens.Rotate(context, refreshValue, replacement)
	if err != nil {
		return nil, fmt.Errorf("exchange_rotate_failed: %w", err)
	}
	if !rotated {
		// A concurrent exchange spent this token first.
		return refreshFailure(), nil
	}

	service.logger.InfoContext(context, "refresh_token_rotated",
		slog.String("user_id", identity.ID),
	)

	return &AuthOutcome{
		Success: true,
		Code:    CodeRefreshTokenSuccess,
		Pair:    pair,
		User:    identity,
	}, nil
}
