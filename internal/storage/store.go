// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/nkathuria/settleup/internal/models"
)

// ErrNotFound is returned when a requested group or expense does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for group and expense persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group. The group's ID and CreatedAt fields
	// are populated by the store if unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its roster by ID.
	// Returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// CreateExpense persists a new expense and its shares atomically.
	// The expense's ID and CreatedAt fields are populated if unset.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense and its shares by ID.
	// Returns ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListActiveExpenses retrieves a group's active expenses ordered by
	// creation time descending. Soft-deleted expenses are excluded.
	ListActiveExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)

	// DeactivateExpense soft-deletes an expense so it no longer counts
	// toward balances. Returns ErrNotFound if the expense does not exist.
	DeactivateExpense(ctx context.Context, expenseID string) error

	// FindDuplicateExpense reports whether an active expense with the same
	// group, payer, total, and participant set already exists.
	FindDuplicateExpense(ctx context.Context, expense *models.Expense) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
