package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/ledger"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}

	return repo, nil
}

// WithClock replaces the clock used for created/updated timestamps.
func (r *SQLiteRepository) WithClock(now func() time.Time) *SQLiteRepository {
	r.now = now
	return r
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) stamp() string {
	return formatTime(r.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseDate(s string) core.Date {
	t, _ := time.Parse(dateLayout, s)
	return core.Date{Time: t}
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- users & categories ---

func (r *SQLiteRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	n, err := r.queries.CountUsersByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, username string) (core.User, error) {
	u := core.User{Username: strings.TrimSpace(username)}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	row, err := r.queries.CreateUser(ctx, CreateUserParams{Username: u.Username, CreatedAt: r.stamp()})
	if isUniqueViolation(err) {
		return core.User{}, fmt.Errorf("user %q: %w", u.Username, core.ErrDuplicate)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User saved to SQLite", "id", row.ID, "username", row.Username)
	return core.User{ID: row.ID, Username: row.Username, CreatedAt: parseTime(row.CreatedAt)}, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return core.Category{ID: row.ID, UserID: row.UserID, Name: row.Name}, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := r.requireUser(ctx, c.UserID); err != nil {
		return core.Category{}, err
	}
	row, err := r.queries.CreateCategory(ctx, CreateCategoryParams{UserID: c.UserID, Name: c.Name})
	if isUniqueViolation(err) {
		return core.Category{}, fmt.Errorf("category %q: %w", c.Name, core.ErrDuplicate)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return core.Category{ID: row.ID, UserID: row.UserID, Name: row.Name}, nil
}

func (r *SQLiteRepository) requireUser(ctx context.Context, userID int64) error {
	ok, err := r.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) requireOwnedCategory(ctx context.Context, userID int64, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	c, err := r.GetCategory(ctx, *categoryID)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return fmt.Errorf("category %d: %w", *categoryID, core.ErrNotFound)
	}
	return nil
}

// --- expenses ---

func toExpense(row Expense) core.Expense {
	return core.Expense{
		ID:          row.ID,
		UserID:      row.UserID,
		CategoryID:  idPtr(row.CategoryID),
		Date:        parseDate(row.ExpenseDate),
		Description: row.Description,
		Amount:      core.Money{Cents: row.AmountCents},
	}
}

func (r *SQLiteRepository) AppendExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := r.requireUser(ctx, e.UserID); err != nil {
		return core.Expense{}, err
	}
	if err := r.requireOwnedCategory(ctx, e.UserID, e.CategoryID); err != nil {
		return core.Expense{}, err
	}
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		UserID:      e.UserID,
		CategoryID:  nullID(e.CategoryID),
		ExpenseDate: e.Date.String(),
		Description: e.Description,
		AmountCents: e.Amount.Cents,
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", row.ID,
		"user_id", row.UserID,
		"amount_cents", row.AmountCents,
		"date", row.ExpenseDate)

	return toExpense(row), nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	existing, err := r.GetExpense(ctx, e.ID)
	if err != nil {
		return core.Expense{}, err
	}
	if err := r.requireOwnedCategory(ctx, existing.UserID, e.CategoryID); err != nil {
		return core.Expense{}, err
	}
	row, err := r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		CategoryID:  nullID(e.CategoryID),
		ExpenseDate: e.Date.String(),
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		ID:          e.ID,
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return toExpense(row), nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return toExpense(row), nil
}

// --- reader ---

func (r *SQLiteRepository) TotalForUser(ctx context.Context, userID int64) (core.Money, error) {
	total, err := r.queries.SumExpensesByUser(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: total}, nil
}

func (r *SQLiteRepository) TotalForUserAndCategory(ctx context.Context, userID, categoryID int64) (core.Money, error) {
	total, err := r.queries.SumExpensesByUserAndCategory(ctx, userID, categoryID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses for category %d: %w", categoryID, err)
	}
	return core.Money{Cents: total}, nil
}

func (r *SQLiteRepository) TotalForUserInRange(ctx context.Context, userID int64, start, end core.Date) (core.Money, error) {
	total, err := r.queries.SumExpensesByUserInRange(ctx, RangeParams{
		UserID: userID, Start: start.String(), End: end.String(),
	})
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses in range: %w", err)
	}
	return core.Money{Cents: total}, nil
}

func (r *SQLiteRepository) TotalForUserAndCategoryInRange(ctx context.Context, userID, categoryID int64, start, end core.Date) (core.Money, error) {
	total, err := r.queries.SumExpensesByUserAndCategoryInRange(ctx, CategoryRangeParams{
		UserID: userID, CategoryID: categoryID, Start: start.String(), End: end.String(),
	})
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses for category %d in range: %w", categoryID, err)
	}
	return core.Money{Cents: total}, nil
}

func (r *SQLiteRepository) ExpensesForUserInRange(ctx context.Context, userID int64, start, end core.Date) ([]ledger.Entry, error) {
	rows, err := r.queries.ListExpenseEntriesInRange(ctx, RangeParams{
		UserID: userID, Start: start.String(), End: end.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("list expenses in range: %w", err)
	}
	entries := make([]ledger.Entry, len(rows))
	for i, row := range rows {
		entries[i] = ledger.Entry{
			Amount:       core.Money{Cents: row.AmountCents},
			Date:         parseDate(row.ExpenseDate),
			CategoryID:   idPtr(row.CategoryID),
			CategoryName: row.CategoryName.String,
		}
	}
	return entries, nil
}
