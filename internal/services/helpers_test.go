package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/ledger/memory"
)

var errLedgerDown = errors.New("ledger unavailable")

// fixture is a memory store with one user and one category.
type fixture struct {
	store *memory.Store
	user  core.User
	food  core.Category
	clock *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
	store := memory.New().WithClock(clock.Now)
	u, err := store.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	food, err := store.CreateCategory(ctx, core.Category{UserID: u.ID, Name: "Food"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return &fixture{store: store, user: u, food: food, clock: clock}
}

func (f *fixture) spend(t *testing.T, date core.Date, cents int64, categoryID *int64) {
	t.Helper()
	_, err := f.store.AppendExpense(context.Background(), core.Expense{
		UserID: f.user.ID, CategoryID: categoryID, Date: date, Description: "test", Amount: core.Money{Cents: cents},
	})
	if err != nil {
		t.Fatalf("append expense: %v", err)
	}
}

func (f *fixture) threshold(t *testing.T, categoryID *int64, limitCents int64, pct int) core.Threshold {
	t.Helper()
	th, err := f.store.CreateThreshold(context.Background(), core.Threshold{
		UserID: f.user.ID, CategoryID: categoryID, Limit: core.Money{Cents: limitCents},
		Type: core.Monthly, AlertPercentage: pct, Active: true,
	})
	if err != nil {
		t.Fatalf("create threshold: %v", err)
	}
	return th
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingStore records every breach write that reaches the store.
type countingStore struct {
	ledger.ThresholdStore
	writes atomic.Int32
}

func (c *countingStore) UpdateBreachState(ctx context.Context, u ledger.BreachUpdate) (bool, error) {
	c.writes.Add(1)
	return c.ThresholdStore.UpdateBreachState(ctx, u)
}

// failingReader fails every aggregate query.
type failingReader struct{ ledger.Reader }

func (failingReader) TotalForUser(context.Context, int64) (core.Money, error) {
	return core.Money{}, errLedgerDown
}

func (failingReader) TotalForUserAndCategory(context.Context, int64, int64) (core.Money, error) {
	return core.Money{}, errLedgerDown
}

func (failingReader) TotalForUserInRange(context.Context, int64, core.Date, core.Date) (core.Money, error) {
	return core.Money{}, errLedgerDown
}

func (failingReader) ExpensesForUserInRange(context.Context, int64, core.Date, core.Date) ([]ledger.Entry, error) {
	return nil, errLedgerDown
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []core.Alert
	err    error
}

func (n *recordingNotifier) NotifyBreach(_ context.Context, a core.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}
