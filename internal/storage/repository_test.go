package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masareef/internal/core"
	"masareef/internal/records"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "masareef.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestExpenseLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.InsertExpense(ctx, core.Expense{
		OwnerID:  "u1",
		Name:     "lunch",
		Category: "food",
		Amount:   core.Money{Cents: 8500},
		Date:     core.NewDate(2025, 6, 3),
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	_, err = repo.InsertExpense(ctx, core.Expense{
		OwnerID:  "u1",
		Name:     "taxi",
		Category: "transport",
		Amount:   core.Money{Cents: 3500},
		Date:     core.NewDate(2025, 6, 10),
	})
	require.NoError(t, err)

	list, err := repo.ListExpenses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest date first.
	assert.Equal(t, "taxi", list[0].Name)
	assert.Equal(t, core.NewDate(2025, 6, 3), list[1].Date)
	assert.Equal(t, int64(8500), list[1].Amount.Cents)

	require.NoError(t, repo.DeleteExpense(ctx, "u1", saved.ID))
	list, err = repo.ListExpenses(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = repo.DeleteExpense(ctx, "u1", saved.ID)
	assert.ErrorIs(t, err, records.ErrNotFound)
}

func TestExpensesScopedByOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.InsertExpense(ctx, core.Expense{
		OwnerID: "u1", Name: "a", Category: "food",
		Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 6, 1),
	})
	require.NoError(t, err)
	other, err := repo.InsertExpense(ctx, core.Expense{
		OwnerID: "u2", Name: "b", Category: "food",
		Amount: core.Money{Cents: 200}, Date: core.NewDate(2025, 6, 1),
	})
	require.NoError(t, err)

	list, err := repo.ListExpenses(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Name)

	// Deleting with the wrong owner must not touch the record.
	err = repo.DeleteExpense(ctx, "u1", other.ID)
	assert.ErrorIs(t, err, records.ErrNotFound)

	list, err = repo.ListExpenses(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGoalLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g, err := repo.InsertGoal(ctx, core.Goal{
		OwnerID:        "u1",
		Name:           "new laptop",
		Target:         core.Money{Cents: 1500000},
		Current:        core.Money{Cents: 850000},
		DurationMonths: 6,
	})
	require.NoError(t, err)

	goals, err := repo.ListGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, g.ID, goals[0].ID)
	assert.Equal(t, 6, goals[0].DurationMonths)

	require.NoError(t, repo.DeleteGoal(ctx, "u1", g.ID))
	goals, err = repo.ListGoals(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestProfileDefaultsAndUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.OwnerID)
	assert.Equal(t, int64(0), p.MonthlyIncome.Cents)

	require.NoError(t, repo.UpsertProfile(ctx, core.Profile{
		OwnerID:       "u1",
		FullName:      "Test User",
		MonthlyIncome: core.Money{Cents: 500000},
	}))

	p, err = repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Test User", p.FullName)
	assert.Equal(t, int64(500000), p.MonthlyIncome.Cents)

	// Upsert replaces the singleton, it never duplicates it.
	require.NoError(t, repo.UpsertProfile(ctx, core.Profile{
		OwnerID:       "u1",
		FullName:      "Test User",
		MonthlyIncome: core.Money{Cents: 0},
	}))
	p, err = repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.MonthlyIncome.Cents)
}

func TestNotifications(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.InsertNotification(ctx, core.Notification{
		OwnerID:  "u1",
		Severity: core.SeverityWarning,
		Title:    "over budget",
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	second := first
	second.ID = ""
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	second.Title = "goal reached"
	second.Severity = core.SeveritySuccess
	_, err = repo.InsertNotification(ctx, second)
	require.NoError(t, err)

	list, err := repo.ListNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "goal reached", list[0].Title)
}

func TestBulkDeletesAndOwners(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, owner := range []string{"u1", "u2"} {
		_, err := repo.InsertExpense(ctx, core.Expense{
			OwnerID: owner, Name: "x", Category: "food",
			Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 6, 1),
		})
		require.NoError(t, err)
		_, err = repo.InsertGoal(ctx, core.Goal{
			OwnerID: owner, Name: "g", Target: core.Money{Cents: 100}, DurationMonths: 1,
		})
		require.NoError(t, err)
	}

	owners, err := repo.ListOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, owners)

	require.NoError(t, repo.DeleteAllExpenses(ctx, "u1"))
	require.NoError(t, repo.DeleteAllGoals(ctx, "u1"))

	list, err := repo.ListExpenses(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
	goals, err := repo.ListGoals(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, goals)

	// Other owners untouched.
	list, err = repo.ListExpenses(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
