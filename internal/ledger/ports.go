package ledger

import (
	"context"
	"time"

	"cashflow/internal/core"
)

// Entry is a single expense as seen by the stats engine.
type Entry struct {
	Amount       core.Money
	Date         core.Date
	CategoryID   *int64
	CategoryName string // empty when uncategorized
}

// BreachUpdate is a compare-and-set on a threshold's breach state. It is
// applied only if the stored flag still equals From.
type BreachUpdate struct {
	ThresholdID int64
	From        bool
	To          bool
	At          *time.Time // new last-alert timestamp, nil keeps the stored one
}

// ThresholdPatch carries the editable fields of a threshold. Nil fields are left unchanged.
type ThresholdPatch struct {
	Limit           *core.Money
	Type            *core.ThresholdType
	AlertPercentage *int
	Active          *bool
}

// Ports for outbound adapters.
type (
	// Reader answers aggregate queries over a user's expenses.
	Reader interface {
		TotalForUser(ctx context.Context, userID int64) (core.Money, error)
		TotalForUserAndCategory(ctx context.Context, userID, categoryID int64) (core.Money, error)
		TotalForUserInRange(ctx context.Context, userID int64, start, end core.Date) (core.Money, error)
		TotalForUserAndCategoryInRange(ctx context.Context, userID, categoryID int64, start, end core.Date) (core.Money, error)
		// ExpensesForUserInRange returns entries ordered by date then insertion.
		ExpensesForUserInRange(ctx context.Context, userID int64, start, end core.Date) ([]Entry, error)
	}

	// ThresholdStore persists thresholds and their breach state.
	ThresholdStore interface {
		ActiveForUser(ctx context.Context, userID int64) ([]core.Threshold, error)
		UpdateBreachState(ctx context.Context, u BreachUpdate) (applied bool, err error)
	}

	// ThresholdRepository adds the management operations used by the threshold service.
	ThresholdRepository interface {
		ThresholdStore
		CreateThreshold(ctx context.Context, t core.Threshold) (core.Threshold, error)
		GetThreshold(ctx context.Context, id int64) (core.Threshold, error)
		ListThresholds(ctx context.Context, userID int64) ([]core.Threshold, error)
		OverallThreshold(ctx context.Context, userID int64) (core.Threshold, error)
		UpdateThreshold(ctx context.Context, id int64, p ThresholdPatch) (core.Threshold, error)
		DeleteThreshold(ctx context.Context, id int64) error
		CountBreached(ctx context.Context, userID int64) (int, error)
	}

	UserDirectory interface {
		UserExists(ctx context.Context, userID int64) (bool, error)
		CreateUser(ctx context.Context, username string) (core.User, error)
	}

	CategoryDirectory interface {
		GetCategory(ctx context.Context, id int64) (core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	}

	ExpenseWriter interface {
		AppendExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
	}

	// Store is everything a backend provides.
	Store interface {
		Reader
		ThresholdRepository
		UserDirectory
		CategoryDirectory
		ExpenseWriter
	}
)
