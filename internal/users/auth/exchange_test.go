// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loginAlice registers and logs in a user, returning their live pair.
func loginAlice(t *testing.T, env *testEnv) (*User, *CredentialPair) {
	t.Helper()

	identity := env.registerUser(t, "alice", "alice@example.com", "s3curepassword")
	outcome, err := env.service.Login(context.Background(), "alice", "s3curepassword", "203.0.113.7")
	require.NoError(t, err)
	require.True(t, outcome.Success)
	return identity, outcome.Pair
}

func TestExchangeRefreshToken(t *testing.T) {
	t.Run("rotates the pair and consumes the old token", func(t *testing.T) {
		env := newTestEnv(t, AccessTokenTTL)
		identity, pair := loginAlice(t, env)

		outcome, err := env.service.ExchangeRefreshToken(
			context.Background(), pair.AccessToken, pair.RefreshToken, testSigningKey,
		)

		require.NoError(t, err)
		require.True(t, outcome.Success)
		assert.Equal(t, CodeRefreshTokenSuccess, outcome.Code)
		require.NotNil(t, outcome.Pair)
		assert.NotEqual(t, pair.RefreshToken, outcome.Pair.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, outcome.Pair.AccessToken)

		// New access token verifies for the same subject.
		claims, err := env.signer.Verify(outcome.Pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, identity.ID, claims.Subject)

		// Old row gone, replacement present with a blank remote address.
		_, oldExists := env.tokens.get(pair.RefreshToken)
		assert.False(t, oldExists, "stale token must be physically deleted")
		replacement, newExists := env.tokens.get(outcome.Pair.RefreshToken)
		require.True(t, newExists)
		assert.Equal(t, identity.ID, replacement.OwnerID)
		assert.Empty(t, replacement.RemoteAddress)
		assert.True(t, replacement.Active())
	})

	t.Run("accepts an expired access token", func(t *testing.T) {
		env := newTestEnv(t, time.Nanosecond)
		_, pair := loginAlice(t, env)
		time.Sleep(5 * time.Millisecond)

		// Sanity: strict verification must reject it now.
		_, err := env.signer.Verify(pair.AccessToken)
		require.Error(t, err)

		outcome, err := env.service.ExchangeRefreshToken(
			context.Background(), pair.AccessToken, pair.RefreshToken, testSigningKey,
		)
		require.NoError(t, err)
		assert.True(t, outcome.Success, "expiry is the normal trigger for the exchange")
	})

	t.Run("spent token cannot be replayed", func(t *testing.T) {
		env := newTestEnv(t, AccessTokenTTL)
		_, pair := loginAlice(t, env)

		first, err := env.service.ExchangeRefreshToken(
			context.Background(), pair.AccessToken, pair.RefreshToken, testSigningKey,
		)
		require.NoError(t, err)
		require.True(t, first.Success)

		replay, err := env.service.ExchangeRefreshToken(
			context.Background(), pair.AccessToken, pair.RefreshToken, testSigningKey,
		)
		require.NoError(t, err)
		assert.False(t, replay.Success)
		assert.Equal(t, CodeRefreshTokenFailure, replay.Code)
	})

	t.Run("all rejection branches produce the identical outcome", func(t *testing.T) {
		env := newTestEnv(t, AccessTokenTTL)
		_, pair := loginAlice(t, env)

		foreignKey := []byte("ffffffffffffffffffffffffffffffff")

		// An access token for a subject the directory does not know.
		ghost := &User{ID: "0198c6a1-0000-7000-8000-000000000000", Username: "ghost", Email: "ghost@example.com"}
		ghostToken, err := env.signer.Issue(ghost.ID, ghost.Username, ghost.Email)
		require.NoError(t, err)

		// An expired refresh row for a real user.
		expiredEnv := newTestEnv(t, AccessTokenTTL)
		_, expiredPair := loginAlice(t, expiredEnv)
		expiredEnv.tokens.setExpiry(expiredPair.RefreshToken, time.Now().Add(-time.Hour))

		rejections := []struct {
			name    string
			env     *testEnv
			access  string
			refresh string
			key     []byte
		}{
			{"garbage access token", env, "not.a.jwt", pair.RefreshToken, testSigningKey},
			{"wrong signing key", env, pair.AccessToken, pair.RefreshToken, foreignKey},
			{"unknown subject", env, ghostToken, pair.RefreshToken, testSigningKey},
			{"empty refresh value", env, pair.AccessToken, "", testSigningKey},
			{"unknown refresh value", env, pair.AccessToken, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", testSigningKey},
			{"expired refresh row", expiredEnv, expiredPair.AccessToken, expiredPair.RefreshToken, testSigningKey},
		}

		var serialized [][]byte
		for _, rejection := range rejections {
			outcome, err := rejection.env.service.ExchangeRefreshToken(
				context.Background(), rejection.access, rejection.refresh, rejection.key,
			)
			require.NoError(t, err, rejection.name)
			require.False(t, outcome.Success, rejection.name)
			assert.Equal(t, CodeRefreshTokenFailure, outcome.Code, rejection.name)
			assert.Nil(t, outcome.Pair, rejection.name)

			payload, err := json.Marshal(outcome)
			require.NoError(t, err, rejection.name)
			serialized = append(serialized, payload)
		}

		for index := 1; index < len(serialized); index++ {
			assert.Equal(t, serialized[0], serialized[index],
				"rejection %q must be byte-identical to the first", rejections[index].name)
		}

		// None of the rejections may have touched the live row.
		_, exists := env.tokens.get(pair.RefreshToken)
		assert.True(t, exists)
	})

	t.Run("exactly one concurrent exchange wins", func(t *testing.T) {
		env := newTestEnv(t, AccessTokenTTL)
		_, pair := loginAlice(t, env)

		const attempts = 16
		outcomes := make([]*AuthOutcome, attempts)
		failures := make([]error, attempts)

		var waitGroup sync.WaitGroup
		start := make(chan struct{})
		for index := 0; index < attempts; index++ {
			waitGroup.Add(1)
			go func(slot int) {
				defer waitGroup.Done()
				<-start
				outcomes[slot], failures[slot] = env.service.ExchangeRefreshToken(
					context.Background(), pair.AccessToken, pair.RefreshToken, testSigningKey,
				)
			}(index)
		}
		close(start)
		waitGroup.Wait()

		for _, failure := range failures {
			require.NoError(t, failure)
		}

		winners := 0
		for _, outcome := range outcomes {
			if outcome.Success {
				winners++
			} else {
				assert.Equal(t, CodeRefreshTokenFailure, outcome.Code)
			}
		}
		assert.Equal(t, 1, winners, "the stale token must be consumed exactly once")

		// Exactly one live row remains: the single winner's replacement.
		assert.Equal(t, 1, env.tokens.count())
	})

	t.Run("storage failure propagates as error", func(t *testing.T) {
		env := newTestEnv(t, AccessTokenTTL)
		_, pair := loginAlice(t, env)

		env.tokens.findErr = errors.New("connection refused")

		outcome, err := env.service.ExchangeRefreshToken(
			context.Background(), pair.AccessToken, pair.RefreshToken, testSigningKey,
		)
		require.Error(t, err)
		assert.Nil(t, outcome, "a broken store must never masquerade as a bad token")
	})

	t.Run("rotating an absent value reports a lost race not an error", func(t *testing.T) {
		env := newTestEnv(t, AccessTokenTTL)
		_, pair := loginAlice(t, env)

		require.NoError(t, env.tokens.Revoke(context.Background(), pair.RefreshToken))

		rotated, err := env.tokens.Rotate(context.Background(), pair.RefreshToken, &RefreshToken{Value: "replacement"})
		require.NoError(t, err)
		assert.False(t, rotated)
	})
}
