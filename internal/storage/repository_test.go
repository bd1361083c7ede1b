package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepositoryLedger(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u, err := repo.CreateUser(ctx, "alice")
	require.NoError(t, err)
	food, err := repo.CreateCategory(ctx, core.Category{UserID: u.ID, Name: "Food"})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "ALICE")
	assert.ErrorIs(t, err, core.ErrDuplicate)

	for _, e := range []core.Expense{
		{UserID: u.ID, CategoryID: &food.ID, Date: core.NewDate(2025, 3, 1), Amount: core.Money{Cents: 500}},
		{UserID: u.ID, CategoryID: &food.ID, Date: core.NewDate(2025, 3, 1), Amount: core.Money{Cents: 1500}},
		{UserID: u.ID, Date: core.NewDate(2025, 3, 15), Amount: core.Money{Cents: 1000}},
		{UserID: u.ID, Date: core.NewDate(2025, 2, 28), Amount: core.Money{Cents: 2000}},
	} {
		_, err := repo.AppendExpense(ctx, e)
		require.NoError(t, err)
	}

	total, err := repo.TotalForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), total.Cents)

	catTotal, err := repo.TotalForUserAndCategory(ctx, u.ID, food.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), catTotal.Cents)

	first, last := core.MonthBounds(2025, 3)
	march, err := repo.TotalForUserInRange(ctx, u.ID, first, last)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), march.Cents)

	marchFood, err := repo.TotalForUserAndCategoryInRange(ctx, u.ID, food.ID, first, last)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), marchFood.Cents)

	entries, err := repo.ExpensesForUserInRange(ctx, u.ID, first, last)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Food", entries[0].CategoryName)
	assert.Equal(t, int64(500), entries[0].Amount.Cents)
	assert.Equal(t, "2025-03-15", entries[2].Date.String())
	assert.Nil(t, entries[2].CategoryID)
}

func TestSQLiteRepositoryExpenseUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u, _ := repo.CreateUser(ctx, "bob")

	e, err := repo.AppendExpense(ctx, core.Expense{UserID: u.ID, Date: core.NewDate(2025, 1, 2), Description: "x", Amount: core.Money{Cents: 100}})
	require.NoError(t, err)

	e.Amount = core.Money{Cents: 250}
	updated, err := repo.UpdateExpense(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.Amount.Cents)

	_, err = repo.GetExpense(ctx, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)

	other, _ := repo.CreateUser(ctx, "carol")
	foreign, _ := repo.CreateCategory(ctx, core.Category{UserID: other.ID, Name: "Misc"})
	e.CategoryID = &foreign.ID
	_, err = repo.UpdateExpense(ctx, e)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteRepositoryThresholds(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u, _ := repo.CreateUser(ctx, "dave")
	food, _ := repo.CreateCategory(ctx, core.Category{UserID: u.ID, Name: "Food"})

	overall, err := repo.CreateThreshold(ctx, core.Threshold{
		UserID: u.ID, Limit: core.Money{Cents: 100000}, Type: core.Monthly, AlertPercentage: 80, Active: true,
	})
	require.NoError(t, err)
	assert.True(t, overall.IsOverall())

	_, err = repo.CreateThreshold(ctx, core.Threshold{
		UserID: u.ID, Limit: core.Money{Cents: 5}, Type: core.Monthly, AlertPercentage: 80, Active: true,
	})
	assert.ErrorIs(t, err, core.ErrDuplicate)

	cat, err := repo.CreateThreshold(ctx, core.Threshold{
		UserID: u.ID, CategoryID: &food.ID, Limit: core.Money{Cents: 30000}, Type: core.Weekly, AlertPercentage: 50, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Food", cat.CategoryName)

	_, err = repo.CreateThreshold(ctx, core.Threshold{
		UserID: u.ID, CategoryID: &food.ID, Limit: core.Money{Cents: 1}, Type: core.Monthly, AlertPercentage: 80, Active: true,
	})
	assert.ErrorIs(t, err, core.ErrDuplicate)

	inactive := false
	_, err = repo.UpdateThreshold(ctx, cat.ID, ledger.ThresholdPatch{Active: &inactive})
	require.NoError(t, err)

	active, err := repo.ActiveForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, overall.ID, active[0].ID)

	all, err := repo.ListThresholds(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := repo.OverallThreshold(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, overall.ID, got.ID)

	require.NoError(t, repo.DeleteThreshold(ctx, cat.ID))
	assert.ErrorIs(t, repo.DeleteThreshold(ctx, cat.ID), core.ErrNotFound)
}

func TestSQLiteRepositoryBreachCompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u, _ := repo.CreateUser(ctx, "erin")
	th, err := repo.CreateThreshold(ctx, core.Threshold{
		UserID: u.ID, Limit: core.Money{Cents: 100}, Type: core.Monthly, AlertPercentage: 80, Active: true,
	})
	require.NoError(t, err)

	at := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
	applied, err := repo.UpdateBreachState(ctx, ledger.BreachUpdate{ThresholdID: th.ID, From: false, To: true, At: &at})
	require.NoError(t, err)
	assert.True(t, applied)

	later := at.Add(time.Hour)
	applied, err = repo.UpdateBreachState(ctx, ledger.BreachUpdate{ThresholdID: th.ID, From: false, To: true, At: &later})
	require.NoError(t, err)
	assert.False(t, applied, "stale transition must not apply")

	got, err := repo.GetThreshold(ctx, th.ID)
	require.NoError(t, err)
	assert.True(t, got.Breached)
	require.NotNil(t, got.LastAlertSent)
	assert.True(t, got.LastAlertSent.Equal(at))

	n, err := repo.CountBreached(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	applied, err = repo.UpdateBreachState(ctx, ledger.BreachUpdate{ThresholdID: th.ID, From: true, To: false})
	require.NoError(t, err)
	assert.True(t, applied)
	got, _ = repo.GetThreshold(ctx, th.ID)
	assert.False(t, got.Breached)
	assert.True(t, got.LastAlertSent.Equal(at), "reset keeps the last alert timestamp")

	_, err = repo.UpdateBreachState(ctx, ledger.BreachUpdate{ThresholdID: 999, From: false, To: true})
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestMigrationVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.db")
	require.NoError(t, RunMigrations(path))
	v, dirty, err := MigrationVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)
}
