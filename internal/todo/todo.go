// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

/*
Package todo implements the task management domain of Tasknest.

Every todo belongs to exactly one account, and every operation is scoped to
the authenticated owner: the service layer enforces ownership before any
mutation, so handlers never see another user's data regardless of what ID the
client supplies.
*/
package todo

import "time"

// Todo is the central aggregate of the task domain.
type Todo struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes"`
	DueDate     *time.Time `json:"due_date,omitempty"` // nil = no deadline.
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateInput carries the caller-supplied fields for a new todo.
type CreateInput struct {
	Title   string     `json:"title"`
	Notes   string     `json:"notes"`
	DueDate *time.Time `json:"due_date"`
}

// UpdateInput carries the mutable fields of an existing todo.
//
// All fields are set on every update (full replacement, matching the mobile
// client's edit screen); partial patches are not supported.
type UpdateInput struct {
	Title       string     `json:"title"`
	Notes       string     `json:"notes"`
	DueDate     *time.Time `json:"due_date"`
	IsCompleted bool       `json:"is_completed"`
}

// Field names used in validation error details.
const (
	fieldTitle = "title"
	fieldNotes = "notes"
	fieldID    = "id"
)

// Field length limits.
const (
	maxTitleLength = 120
	maxNotesLength = 2000
)
