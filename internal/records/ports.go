// Package records defines the ports of the record store adapter. The core
// depends only on these interfaces; the SQLite repository and the in-memory
// test store are the outbound adapters behind them.
package records

import (
	"context"
	"errors"

	"masareef/internal/core"
)

// ErrNotFound is returned when a record does not exist for the given owner.
var ErrNotFound = errors.New("record not found")

type (
	ExpenseStore interface {
		InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		// ListExpenses returns all of the owner's expenses, newest date first.
		ListExpenses(ctx context.Context, ownerID string) ([]core.Expense, error)
		DeleteExpense(ctx context.Context, ownerID, id string) error
		// DeleteAllExpenses removes every expense of the owner, as part of a
		// full-data-reset.
		DeleteAllExpenses(ctx context.Context, ownerID string) error
	}

	GoalStore interface {
		InsertGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error)
		DeleteGoal(ctx context.Context, ownerID, id string) error
		DeleteAllGoals(ctx context.Context, ownerID string) error
	}

	// ProfileStore manages the per-owner singleton profile.
	ProfileStore interface {
		// GetProfile returns the owner's profile, or a default zero-income
		// profile when none has been stored yet.
		GetProfile(ctx context.Context, ownerID string) (core.Profile, error)
		UpsertProfile(ctx context.Context, p core.Profile) error
	}

	NotificationStore interface {
		InsertNotification(ctx context.Context, n core.Notification) (core.Notification, error)
		// ListNotifications returns the owner's notifications, newest first.
		ListNotifications(ctx context.Context, ownerID string) ([]core.Notification, error)
	}
)

// Store is the unified record store used by the service layer.
type Store interface {
	ExpenseStore
	GoalStore
	ProfileStore
	NotificationStore
}

// Owners lists every owner identifier present in the store. Used by the
// worker's periodic sweep; not part of the request-path surface.
type Owners interface {
	ListOwners(ctx context.Context) ([]string, error)
}
