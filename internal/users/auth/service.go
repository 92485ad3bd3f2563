// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lmoretti/tasknest/internal/platform/apperr"
	"github.com/lmoretti/tasknest/internal/platform/sec"
)

// Service orchestrates the authentication flows: registration, login, refresh
// exchange (exchange.go), and logout.
//
// # Error discipline
//
// Rejections an attacker could probe return an [AuthOutcome] with a nil error.
// Infrastructure failures return a non-nil error and no outcome; the HTTP
// layer maps those to 500 so a broken database is never reported as bad
// credentials.
type Service struct {
	directory UserDirectory
	tokens    RefreshTokenStore
	denylist  AccessTokenDenylist
	issuer    *Issuer
	signer    *sec.Signer
	logger    *slog.Logger
}

// NewService wires the authentication service from its dependencies.
func NewService(
	directory UserDirectory,
	tokens RefreshTokenStore,
	denylist AccessTokenDenylist,
	issuer *Issuer,
	signer *sec.Signer,
	logger *slog.Logger,
) *Service {
	return &Service{
		directory: directory,
		tokens:    tokens,
		denylist:  denylist,
		issuer:    issuer,
		signer:    signer,
		logger:    logger,
	}
}

/*
CreateUser registers a new account through the user directory.

Description: Policy enforcement (field validation, duplicate detection) lives
in the directory; this method translates its verdict into the outcome surface.
Validation failures become a USER_CREATED_FAILURE outcome carrying the
directory's field errors verbatim. No tokens are issued on registration — the
client logs in separately.

Returns:
  - *AuthOutcome: USER_CREATED_SUCCESS with the identity, or USER_CREATED_FAILURE
  - error: Storage failures only
*/
func (service *Service) CreateUser(context context.Context, input CreateIdentityInput) (*AuthOutcome, error) {
	identity, err := service.directory.CreateIdentity(context, input)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus < 500 {
			details := appError.Details
			if len(details) == 0 {
				details = []apperr.FieldError{{Field: FieldUsername, Message: appError.Message}}
			}
			return createFailure(details), nil
		}
		return nil, fmt.Errorf("create_user_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_registered",
		slog.String("user_id", identity.ID),
		slog.String("username", identity.Username),
	)

	return &AuthOutcome{
		Success: true,
		Code:    CodeUserCreatedSuccess,
		User:    identity,
	}, nil
}

/*
Login authenticates a user by username or email and issues a credential pair.

Description: All rejection paths — unknown login, wrong password — converge on
the same generic outcome, so the response body carries no information about
which check failed and account enumeration is not possible through this
endpoint.

Parameters:
  - context: Request-scoped context
  - login: Username or email address
  - password: Plaintext candidate password
  - remoteAddress: Client IP, recorded on the refresh row for auditing

Returns:
  - *AuthOutcome: USER_LOGIN_SUCCESS with a fresh pair, or the generic failure
  - error: Storage or issuance failures only
*/
func (service *Service) Login(context context.Context, login, password, remoteAddress string) (*AuthOutcome, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return loginFailure(), nil
	}

	identity, err := service.directory.FindByLogin(context, login)
	if err != nil {
		return nil, fmt.Errorf("login_lookup_failed: %w", err)
	}
	if identity == nil {
		return loginFailure(), nil
	}

	if !service.directory.VerifyPassword(identity, password) {
		return loginFailure(), nil
	}

	pair, err := service.issuer.Issue(context, identity, remoteAddress, DefaultRefreshTokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("login_issue_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_login_succeeded",
		slog.String("user_id", identity.ID),
	)

	return &AuthOutcome{
		Success: true,
		Code:    CodeUserLoginSuccess,
		Pair:    pair,
		User:    identity,
	}, nil
}

/*
Logout ends a session by killing both halves of the credential pair.

Description: The presented refresh token is deleted (idempotently — logging
out twice is fine), and the access token's jti is denylisted for its remaining
lifetime so it stops working before its natural expiry. An already-expired
access token needs no denylist entry.

Parameters:
  - context: Request-scoped context
  - claims: Verified claims of the access token presented with the request
  - refreshValue: The refresh token to revoke; empty means none was presented

Returns:
  - error: Storage failures only; logout has no rejection outcome
*/
func (service *Service) Logout(context context.Context, claims *sec.AccessClaims, refreshValue string) error {
	if refreshValue != "" {
		if err := service.tokens.Revoke(context, refreshValue); err != nil {
			return fmt.Errorf("logout_revoke_refresh_failed: %w", err)
		}
	}

	if claims != nil && claims.ID != "" && claims.ExpiresAt != nil {
		remaining := time.Until(claims.ExpiresAt.Time)
		if err := service.denylist.Revoke(context, claims.ID, remaining); err != nil {
			return fmt.Errorf("logout_denylist_failed: %w", err)
		}
	}

	if claims != nil {
		service.logger.InfoContext(context, "user_logged_out",
			slog.String("user_id", claims.Subject),
		)
	}

	return nil
}
