// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package todo

import "context"

// Repository defines the data access contract for the todo domain.
//
// # Architecture
//
// The interface lives in the domain package because the service layer (the
// consumer) defines what it needs; the PostgreSQL implementation lives next
// to it in store_postgres.go.
//
// Lookups that find nothing return (nil, nil); only infrastructure problems
// produce errors.
type Repository interface {
	// Create persists a new todo. The caller sets the ID and timestamps.
	Create(ctx context.Context, item *Todo) error

	// FindByID returns the todo with the given ID, regardless of owner.
	// Ownership is enforced by the service layer, not the store.
	FindByID(ctx context.Context, id string) (*Todo, error)

	// Update persists changes to an existing todo's mutable fields.
	Update(ctx context.Context, item *Todo) error

	// Delete removes the todo row.
	Delete(ctx context.Context, id string) error

	// ListByOwner returns one page of the owner's todos ordered by due date
	// (todos without a deadline sort last), plus the total count.
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*Todo, int, error)

	// CountByOwner returns the owner's total number of todos.
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}
