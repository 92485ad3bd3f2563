// Copyright (c) 2026 Tasknest. All rights reserved.
// Author: luca.moretti.dev@gmail.com

package todo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lmoretti/tasknest/internal/platform/apperr"
	"github.com/lmoretti/tasknest/internal/platform/validate"
	"github.com/lmoretti/tasknest/pkg/pagination"
	"github.com/lmoretti/tasknest/pkg/uuid"
)

// Service orchestrates todo operations and enforces ownership.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService wires the todo service from its dependencies.
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// Add creates a new todo owned by ownerID.
func (service *Service) Add(context context.Context, ownerID string, input CreateInput) (*Todo, error) {
	validator := &validate.Validator{}
	validator.
		Required(fieldTitle, input.Title).
		MaxLen(fieldTitle, input.Title, maxTitleLength).
		MaxLen(fieldNotes, input.Notes, maxNotesLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	currentTime := time.Now()
	item := &Todo{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     input.Title,
		Notes:     input.Notes,
		DueDate:   input.DueDate,
		CreatedAt: currentTime,
		UpdatedAt: currentTime,
	}

	if err := service.repository.Create(context, item); err != nil {
		return nil, fmt.Errorf("todo_add_failed: %w", err)
	}

	service.logger.InfoContext(context, "todo_created",
		slog.String("todo_id", item.ID),
		slog.String("owner_id", ownerID),
	)

	return item, nil
}

// GetByID returns the todo if it exists and belongs to ownerID.
func (service *Service) GetByID(context context.Context, ownerID, id string) (*Todo, error) {
	return service.findOwned(context, ownerID, id)
}

// Update replaces the mutable fields of an owned todo.
func (service *Service) Update(context context.Context, ownerID, id string, input UpdateInput) (*Todo, error) {
	validator := &validate.Validator{}
	validator.
		Required(fieldTitle, input.Title).
		MaxLen(fieldTitle, input.Title, maxTitleLength).
		MaxLen(fieldNotes, input.Notes, maxNotesLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	item, err := service.findOwned(context, ownerID, id)
	if err != nil {
		return nil, err
	}

	item.Title = input.Title
	item.Notes = input.Notes
	item.DueDate = input.DueDate
	item.IsCompleted = input.IsCompleted
	item.UpdatedAt = time.Now()

	if err := service.repository.Update(context, item); err != nil {
		return nil, fmt.Errorf("todo_update_failed: %w", err)
	}

	return item, nil
}

// Delete removes an owned todo.
func (service *Service) Delete(context context.Context, ownerID, id string) error {
	item, err := service.findOwned(context, ownerID, id)
	if err != nil {
		return err
	}

	if err := service.repository.Delete(context, item.ID); err != nil {
		return fmt.Errorf("todo_remove_failed: %w", err)
	}

	service.logger.InfoContext(context, "todo_deleted",
		slog.String("todo_id", item.ID),
		slog.String("owner_id", ownerID),
	)

	return nil
}

// ListByOwner returns one page of the owner's todos with pagination metadata.
func (service *Service) ListByOwner(context context.Context, ownerID string, params pagination.Params) ([]*Todo, pagination.Meta, error) {
	items, total, err := service.repository.ListByOwner(context, ownerID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("todo_list_failed: %w", err)
	}

	return items, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// CountByOwner returns the owner's total number of todos.
func (service *Service) CountByOwner(context context.Context, ownerID string) (int, error) {
	total, err := service.repository.CountByOwner(context, ownerID)
	if err != nil {
		return 0, fmt.Errorf("todo_count_failed: %w", err)
	}
	return total, nil
}

// findOwned loads a todo and checks it belongs to ownerID.
func (service *Service) findOwned(context context.Context, ownerID, id string) (*Todo, error) {
	validator := &validate.Validator{}
	if err := validator.Required(fieldID, id).UUID(fieldID, id).Err(); err != nil {
		return nil, err
	}

	item, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, fmt.Errorf("todo_lookup_failed: %w", err)
	}
	if item == nil {
		return nil, apperr.NotFound("Todo")
	}
	if item.OwnerID != ownerID {
		return nil, apperr.Forbidden("You do not have access to this todo")
	}
	return item, nil
}
