// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import "github.com/lmoretti/tasknest/internal/platform/apperr"

// MessageCode is the machine-readable result code carried by every auth
// response. The mobile client switches on these values.
type MessageCode string

const (
	CodeUserCreatedSuccess  MessageCode = "USER_CREATED_SUCCESS"
	CodeUserCreatedFailure  MessageCode = "USER_CREATED_FAILURE"
	CodeUserLoginSuccess    MessageCode = "USER_LOGIN_SUCCESS"
	CodeUserLoginFailure    MessageCode = "USER_LOGIN_FAILURE"
	CodeRefreshTokenSuccess MessageCode = "REFRESH_TOKEN_SUCCESS"
	CodeRefreshTokenFailure MessageCode = "REFRESH_TOKEN_FAILURE"
)

// AuthOutcome is the structured result of an authentication flow.
//
// # Why a result value instead of an error?
//
// Being rejected at login is not an exceptional condition: it is one of the
// two expected results of the operation, and it must carry structured data
// (code, field errors) for the client. Errors are reserved for infrastructure
// failures, which must never be distinguishable from a rejection by an
// external observer — they take the error return instead and surface as 500.
type AuthOutcome struct {
	// Success reports whether the flow completed.
	Success bool `json:"success"`
	// Code identifies the flow and its result.
	Code MessageCode `json:"message_code"`
	// Pair holds freshly issued credentials on login and refresh success.
	Pair *CredentialPair `json:"credentials,omitempty"`
	// User holds the identity on registration and login success.
	User *User `json:"user,omitempty"`
	// Errors lists the rejection reasons safe to show to the client.
	Errors []apperr.FieldError `json:"errors,omitempty"`
}

// Canonical rejection payloads. Both texts come from the public API contract
// and must not vary between internal rejection reasons: an unknown username
// and a wrong password produce byte-identical responses.
const (
	loginFailureField   = "login_failure"
	loginFailureMessage = "Invalid username or password."

	refreshFailureField   = "refresh_token_failure"
	refreshFailureMessage = "Invalid or bad refresh token"
)

// loginFailure returns the single generic outcome used for every login
// rejection, regardless of which check failed.
func loginFailure() *AuthOutcome {
	return &AuthOutcome{
		Code: CodeUserLoginFailure,
		Errors: []apperr.FieldError{
			{Field: loginFailureField, Message: loginFailureMessage},
		},
	}
}

// refreshFailure returns the single generic outcome used for every refresh
// exchange rejection, regardless of which step of the protocol failed.
func refreshFailure() *AuthOutcome {
	return &AuthOutcome{
		Code: CodeRefreshTokenFailure,
		Errors: []apperr.FieldError{
			{Field: refreshFailureField, Message: refreshFailureMessage},
		},
	}
}

// createFailure returns a registration outcome carrying the directory's
// field-level rejection reasons verbatim.
func createFailure(details []apperr.FieldError) *AuthOutcome {
	return &AuthOutcome{
		Code:   CodeUserCreatedFailure,
		Errors: details,
	}
}
