// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lmoretti/tasknest/internal/platform/apperr"
	"github.com/lmoretti/tasknest/internal/platform/sec"
	"github.com/lmoretti/tasknest/internal/platform/validate"
	"github.com/lmoretti/tasknest/pkg/uuid"
)

// uniqueViolationCode is the PostgreSQL error code for unique-constraint
// violations, used as a backstop behind the explicit duplicate pre-checks.
const uniqueViolationCode = "23505"

// # User Directory (PostgreSQL)

// PostgresUserDirectory implements [UserDirectory] on top of pgxpool.
type PostgresUserDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresUserDirectory creates the PostgreSQL-backed user directory.
func NewPostgresUserDirectory(pool *pgxpool.Pool) *PostgresUserDirectory {
	return &PostgresUserDirectory{pool: pool}
}

/*
CreateIdentity validates, hashes, and persists a new account.

Description: Field validation and duplicate detection happen here, in the
directory, so every registration path applies the same policy. Violations are
reported as a VALIDATION_ERROR whose Details name the offending fields; the
service layer surfaces those details verbatim in the registration outcome.

Returns:
  - *User: The created identity (password hash populated but JSON-hidden)
  - error: *apperr.AppError on policy violations, wrapped storage error otherwise
*/
func (directory *PostgresUserDirectory) CreateIdentity(ctx context.Context, input CreateIdentityInput) (*User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	displayName := strings.TrimSpace(input.DisplayName)

	// ── 1. Field Policy ───────────────────────────────────────────────────
	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, username).
		MinLen(FieldUsername, username, minUsernameLength).
		MaxLen(FieldUsername, username, maxUsernameLength).
		Required(FieldEmail, email).
		MaxLen(FieldEmail, email, maxEmailLength).
		Email(FieldEmail, email).
		MaxLen(FieldDisplayName, displayName, maxDisplayNameLength).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Duplicate Detection ────────────────────────────────────────────
	duplicates, err := directory.findDuplicates(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if len(duplicates) > 0 {
		return nil, apperr.ValidationError("Validation failed", duplicates...)
	}

	// ── 3. Hash & Persist ─────────────────────────────────────────────────
	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("directory_hash_password_failed: %w", err)
	}

	currentTime := time.Now()
	identity := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    currentTime,
		UpdatedAt:    currentTime,
	}

	query := `
		INSERT INTO users.account (id, username, email, display_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = directory.pool.Exec(ctx, query,
		identity.ID, identity.Username, identity.Email, identity.DisplayName,
		identity.PasswordHash, identity.CreatedAt, identity.UpdatedAt,
	)
	if err != nil {
		// A concurrent registration can slip past the pre-check; the unique
		// constraint is the authority and maps to the same validation shape.
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == uniqueViolationCode {
			return nil, apperr.ValidationError("Validation failed", apperr.FieldError{
				Field:   duplicateField(pgError.ConstraintName),
				Message: "Already in use",
			})
		}
		return nil, fmt.Errorf("directory_create_identity_failed: %w", err)
	}

	return identity, nil
}

// findDuplicates reports which of username/email are already registered.
func (directory *PostgresUserDirectory) findDuplicates(ctx context.Context, username, email string) ([]apperr.FieldError, error) {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM users.account WHERE username = $1),
			EXISTS (SELECT 1 FROM users.account WHERE email = $2)`

	var usernameTaken, emailTaken bool
	if err := directory.pool.QueryRow(ctx, query, username, email).Scan(&usernameTaken, &emailTaken); err != nil {
		return nil, fmt.Errorf("directory_duplicate_check_failed: %w", err)
	}

	var duplicates []apperr.FieldError
	if usernameTaken {
		duplicates = append(duplicates, apperr.FieldError{Field: FieldUsername, Message: "Already in use"})
	}
	if emailTaken {
		duplicates = append(duplicates, apperr.FieldError{Field: FieldEmail, Message: "Already in use"})
	}
	return duplicates, nil
}

// duplicateField maps a unique constraint name back to its JSON field.
func duplicateField(constraintName string) string {
	if strings.Contains(constraintName, "email") {
		return FieldEmail
	}
	return FieldUsername
}

// FindByLogin looks up an account by username or email (case-insensitive on
// email). It returns (nil, nil) when no account matches.
func (directory *PostgresUserDirectory) FindByLogin(ctx context.Context, login string) (*User, error) {
	query := `
		SELECT id, username, email, display_name, password_hash, created_at, updated_at
		FROM users.account
		WHERE username = $1 OR email = lower($1)`

	identity, err := scanUser(directory.pool.QueryRow(ctx, query, strings.TrimSpace(login)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("directory_find_by_login_failed: %w", err)
	}
	return identity, nil
}

// FindByID looks up an account by its primary key. It returns (nil, nil) when
// no account matches.
func (directory *PostgresUserDirectory) FindByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, username, email, display_name, password_hash, created_at, updated_at
		FROM users.account
		WHERE id = $1`

	identity, err := scanUser(directory.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("directory_find_by_id_failed: %w", err)
	}
	return identity, nil
}

// VerifyPassword checks a candidate password against the stored hash. The
// result is a bare boolean: callers get no detail about why a check failed.
func (directory *PostgresUserDirectory) VerifyPassword(identity *User, password string) bool {
	return sec.CheckPasswordHash(password, identity.PasswordHash)
}

// scanUser maps one account row into a [User].
func scanUser(row pgx.Row) (*User, error) {
	var identity User
	err := row.Scan(
		&identity.ID, &identity.Username, &identity.Email, &identity.DisplayName,
		&identity.PasswordHash, &identity.CreatedAt, &identity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// # Refresh Token Store (PostgreSQL)

// PostgresRefreshTokenStore implements [RefreshTokenStore] on top of pgxpool.
type PostgresRefreshTokenStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRefreshTokenStore creates the PostgreSQL-backed token store.
func NewPostgresRefreshTokenStore(pool *pgxpool.Pool) *PostgresRefreshTokenStore {
	return &PostgresRefreshTokenStore{pool: pool}
}

const insertRefreshTokenQuery = `
	INSERT INTO users.refreshtoken (value, owner_id, created_at, modified_at, expires_at, remote_address)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Insert persists a new refresh-token row. The owner_id foreign key makes an
// insert for an unknown owner fail as a storage error.
func (repository *PostgresRefreshTokenStore) Insert(ctx context.Context, token *RefreshToken) error {
	_, err := repository.pool.Exec(ctx, insertRefreshTokenQuery,
		token.Value, token.OwnerID, token.CreatedAt, token.ModifiedAt,
		token.ExpiresAt, token.RemoteAddress,
	)
	if err != nil {
		return fmt.Errorf("refresh_token_insert_failed: %w", err)
	}
	return nil
}

// FindByOwner returns the owner's full token history, expired rows included.
func (repository *PostgresRefreshTokenStore) FindByOwner(ctx context.Context, ownerID string) ([]RefreshToken, error) {
	query := `
		SELECT value, owner_id, created_at, modified_at, expires_at, remote_address
		FROM users.refreshtoken
		WHERE owner_id = $1`

	rows, err := repository.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("refresh_token_find_by_owner_failed: %w", err)
	}
	defer rows.Close()

	var tokens []RefreshToken
	for rows.Next() {
		var token RefreshToken
		err := rows.Scan(
			&token.Value, &token.OwnerID, &token.CreatedAt, &token.ModifiedAt,
			&token.ExpiresAt, &token.RemoteAddress,
		)
		if err != nil {
			return nil, fmt.Errorf("refresh_token_scan_failed: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("refresh_token_rows_failed: %w", err)
	}

	return tokens, nil
}

// Revoke deletes the row holding the given value. Deleting a value that does
// not exist is not an error, which makes logout idempotent.
func (repository *PostgresRefreshTokenStore) Revoke(ctx context.Context, value string) error {
	_, err := repository.pool.Exec(ctx, `DELETE FROM users.refreshtoken WHERE value = $1`, value)
	if err != nil {
		return fmt.Errorf("refresh_token_revoke_failed: %w", err)
	}
	return nil
}

/*
Rotate consumes the stale token and persists its replacement atomically.

Description: Both statements run inside one transaction. The DELETE doubles as
the consumption check: under concurrent exchanges PostgreSQL serializes the
row deletion, so every transaction after the first observes zero affected rows
and backs out without inserting. A crash or cancellation between the two
statements rolls the whole transaction back, leaving the stale token valid —
the client can simply retry and is never locked out.

Returns:
  - bool: true when this caller consumed the stale value
  - error: Storage failures only; a lost race is (false, nil)
*/
func (repository *PostgresRefreshTokenStore) Rotate(ctx context.Context, staleValue string, replacement *RefreshToken) (bool, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("refresh_token_rotate_begin_failed: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = transaction.Rollback(ctx) }()

	tag, err := transaction.Exec(ctx, `DELETE FROM users.refreshtoken WHERE value = $1`, staleValue)
	if err != nil {
		return false, fmt.Errorf("refresh_token_rotate_consume_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already consumed by a concurrent exchange.
		return false, nil
	}

	_, err = transaction.Exec(ctx, insertRefreshTokenQuery,
		replacement.Value, replacement.OwnerID, replacement.CreatedAt,
		replacement.ModifiedAt, replacement.ExpiresAt, replacement.RemoteAddress,
	)
	if err != nil {
		return false, fmt.Errorf("refresh_token_rotate_insert_failed: %w", err)
	}

	if err := transaction.Commit(ctx); err != nil {
		return false, fmt.Errorf("refresh_token_rotate_commit_failed: %w", err)
	}
	return true, nil
}
