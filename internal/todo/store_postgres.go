// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package todo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements [Repository] on top of pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the PostgreSQL-backed todo repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const todoColumns = `id, owner_id, title, notes, due_date, is_completed, created_at, updated_at`

// Create persists a new todo row.
func (repository *PostgresRepository) Create(ctx context.Context, item *Todo) error {
	query := `
		INSERT INTO core.todo (id, owner_id, title, notes, due_date, is_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := repository.pool.Exec(ctx, query,
		item.ID, item.OwnerID, item.Title, item.Notes, item.DueDate,
		item.IsCompleted, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("todo_create_failed: %w", err)
	}
	return nil
}

// FindByID returns the todo with the given ID, or (nil, nil) when absent.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM core.todo WHERE id = $1`

	item, err := scanTodo(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("todo_find_by_id_failed: %w", err)
	}
	return item, nil
}

// Update persists the mutable fields of an existing todo.
func (repository *PostgresRepository) Update(ctx context.Context, item *Todo) error {
	query := `
		UPDATE core.todo
		SET title = $2, notes = $3, due_date = $4, is_completed = $5, updated_at = $6
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query,
		item.ID, item.Title, item.Notes, item.DueDate, item.IsCompleted, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("todo_update_failed: %w", err)
	}
	return nil
}

// Delete removes the todo row. Deleting an absent row is a no-op.
func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.pool.Exec(ctx, `DELETE FROM core.todo WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("todo_delete_failed: %w", err)
	}
	return nil
}

// ListByOwner returns one page of the owner's todos ordered by due date, with
// deadline-free todos last, plus the total count for pagination metadata.
func (repository *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*Todo, int, error) {
	query := `
		SELECT ` + todoColumns + `, count(*) OVER() AS total
		FROM core.todo
		WHERE owner_id = $1
		ORDER BY due_date ASC NULLS LAST, created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("todo_list_failed: %w", err)
	}
	defer rows.Close()

	var items []*Todo
	total := 0
	for rows.Next() {
		var item Todo
		err := rows.Scan(
			&item.ID, &item.OwnerID, &item.Title, &item.Notes, &item.DueDate,
			&item.IsCompleted, &item.CreatedAt, &item.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("todo_scan_failed: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("todo_rows_failed: %w", err)
	}

	// An empty page past the end still needs the real total.
	if items == nil && offset > 0 {
		total, err = repository.CountByOwner(ctx, ownerID)
		if err != nil {
			return nil, 0, err
		}
	}

	return items, total, nil
}

// CountByOwner returns the owner's total number of todos.
func (repository *PostgresRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var total int
	err := repository.pool.QueryRow(ctx, `SELECT count(*) FROM core.todo WHERE owner_id = $1`, ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("todo_count_failed: %w", err)
	}
	return total, nil
}

// scanTodo maps one row into a [Todo].
func scanTodo(row pgx.Row) (*Todo, error) {
	var item Todo
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Notes, &item.DueDate,
		&item.IsCompleted, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
