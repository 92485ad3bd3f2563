// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lmoretti/tasknest/internal/platform/apperr"
	"github.com/lmoretti/tasknest/internal/platform/sec"
	"github.com/lmoretti/tasknest/internal/platform/validate"
	"github.com/lmoretti/tasknest/pkg/uuid"
)

// In-memory doubles for the store contracts. They apply the same policies as
// the PostgreSQL implementations so service-level behavior can be exercised
// without a database.

type fakeDirectory struct {
	mu         sync.Mutex
	identities map[string]*User

	createErr error
	lookupErr error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{identities: make(map[string]*User)}
}

func (directory *fakeDirectory) CreateIdentity(_ context.Context, input CreateIdentityInput) (*User, error) {
	if directory.createErr != nil {
		return nil, directory.createErr
	}

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, username).
		MinLen(FieldUsername, username, minUsernameLength).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	directory.mu.Lock()
	defer directory.mu.Unlock()

	for _, existing := range directory.identities {
		if existing.Username == username {
			return nil, apperr.ValidationError("Validation failed",
				apperr.FieldError{Field: FieldUsername, Message: "Already in use"})
		}
		if existing.Email == email {
			return nil, apperr.ValidationError("Validation failed",
				apperr.FieldError{Field: FieldEmail, Message: "Already in use"})
		}
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	currentTime := time.Now()
	identity := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: passwordHash,
		CreatedAt:    currentTime,
		UpdatedAt:    currentTime,
	}
	directory.identities[identity.ID] = identity
	return identity, nil
}

func (directory *fakeDirectory) FindByLogin(_ context.Context, login string) (*User, error) {
	if directory.lookupErr != nil {
		return nil, directory.lookupErr
	}

	directory.mu.Lock()
	defer directory.mu.Unlock()

	login = strings.TrimSpace(login)
	for _, identity := range directory.identities {
		if identity.Username == login || identity.Email == strings.ToLower(login) {
			return identity, nil
		}
	}
	return nil, nil
}

func (directory *fakeDirectory) FindByID(_ context.Context, id string) (*User, error) {
	if directory.lookupErr != nil {
		return nil, directory.lookupErr
	}

	directory.mu.Lock()
	defer directory.mu.Unlock()
	return directory.identities[id], nil
}

func (directory *fakeDirectory) VerifyPassword(identity *User, password string) bool {
	return sec.CheckPasswordHash(password, identity.PasswordHash)
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]RefreshToken

	insertErr error
	findErr   error
	rotateErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]RefreshToken)}
}

func (store *fakeTokenStore) Insert(_ context.Context, token *RefreshToken) error {
	if store.insertErr != nil {
		return store.insertErr
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.tokens[token.Value] = *token
	return nil
}

func (store *fakeTokenStore) FindByOwner(_ context.Context, ownerID string) ([]RefreshToken, error) {
	if store.findErr != nil {
		return nil, store.findErr
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	var history []RefreshToken
	for _, token := range store.tokens {
		if token.OwnerID == ownerID {
			history = append(history, token)
		}
	}
	return history, nil
}

func (store *fakeTokenStore) Revoke(_ context.Context, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.tokens, value)
	return nil
}

// Rotate mirrors the transactional semantics of the PostgreSQL store: the
// mutex plays the role of row-level locking, so exactly one concurrent caller
// presenting the same stale value wins.
func (store *fakeTokenStore) Rotate(_ context.Context, staleValue string, replacement *RefreshToken) (bool, error) {
	if store.rotateErr != nil {
		return false, store.rotateErr
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.tokens[staleValue]; !exists {
		return false, nil
	}
	delete(store.tokens, staleValue)
	store.tokens[replacement.Value] = *replacement
	return true, nil
}

// get returns a copy of the stored row, if present.
func (store *fakeTokenStore) get(value string) (RefreshToken, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	token, exists := store.tokens[value]
	return token, exists
}

// setExpiry rewrites a row's expiry, to simulate aged tokens.
func (store *fakeTokenStore) setExpiry(value string, expiresAt time.Time) {
	store.mu.Lock()
	defer store.mu.Unlock()
	token := store.tokens[value]
	token.ExpiresAt = expiresAt
	store.tokens[value] = token
}

func (store *fakeTokenStore) count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.tokens)
}

type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration

	revokeErr error
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: make(map[string]time.Duration)}
}

func (denylist *fakeDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if denylist.revokeErr != nil {
		return denylist.revokeErr
	}
	if ttl <= 0 {
		return nil
	}

	denylist.mu.Lock()
	defer denylist.mu.Unlock()
	denylist.revoked[tokenID] = ttl
	return nil
}

func (denylist *fakeDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	denylist.mu.Lock()
	defer denylist.mu.Unlock()
	_, revoked := denylist.revoked[tokenID]
	return revoked, nil
}

// testEnv bundles a fully wired service with handles on its doubles.
type testEnv struct {
	service   *Service
	directory *fakeDirectory
	tokens    *fakeTokenStore
	denylist  *fakeDenylist
	signer    *sec.Signer
}

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newTestEnv(t *testing.T, accessTTL time.Duration) *testEnv {
	t.Helper()

	signer, err := sec.NewSigner(testSigningKey, "tasknest.app", accessTTL)
	require.NoError(t, err)

	directory := newFakeDirectory()
	tokens := newFakeTokenStore()
	denylist := newFakeDenylist()
	issuer := NewIssuer(signer, tokens)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		service:   NewService(directory, tokens, denylist, issuer, signer, logger),
		directory: directory,
		tokens:    tokens,
		denylist:  denylist,
		signer:    signer,
	}
}

// registerUser seeds an account through the public registration flow.
func (env *testEnv) registerUser(t *testing.T, username, email, password string) *User {
	t.Helper()

	outcome, err := env.service.CreateUser(context.Background(), CreateIdentityInput{
		Username:    username,
		Email:       email,
		DisplayName: username,
		Password:    password,
	})
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.NotNil(t, outcome.User)
	return outcome.User
}
