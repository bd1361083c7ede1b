package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// --- users ---

const createUser = `INSERT INTO users (username, created_at) VALUES (?, ?)
RETURNING id, username, created_at`

type CreateUserParams struct {
	Username  string
	CreatedAt string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Username, arg.CreatedAt)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.CreatedAt)
	return i, err
}

const countUsersByID = `SELECT COUNT(*) FROM users WHERE id = ?`

func (q *Queries) CountUsersByID(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUsersByID, id)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// --- categories ---

const createCategory = `INSERT INTO categories (user_id, name) VALUES (?, ?)
RETURNING id, user_id, name`

type CreateCategoryParams struct {
	UserID int64
	Name   string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, arg.UserID, arg.Name)
	var i Category
	err := row.Scan(&i.ID, &i.UserID, &i.Name)
	return i, err
}

const getCategory = `SELECT id, user_id, name FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.UserID, &i.Name)
	return i, err
}

// --- expenses ---

const createExpense = `INSERT INTO expenses (user_id, category_id, expense_date, description, amount_cents)
VALUES (?, ?, ?, ?, ?)
RETURNING id, user_id, category_id, expense_date, description, amount_cents`

type CreateExpenseParams struct {
	UserID      int64
	CategoryID  sql.NullInt64
	ExpenseDate string
	Description string
	AmountCents int64
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.UserID, arg.CategoryID, arg.ExpenseDate, arg.Description, arg.AmountCents)
	var i Expense
	err := row.Scan(&i.ID, &i.UserID, &i.CategoryID, &i.ExpenseDate, &i.Description, &i.AmountCents)
	return i, err
}

const updateExpense = `UPDATE expenses
SET category_id = ?, expense_date = ?, description = ?, amount_cents = ?
WHERE id = ?
RETURNING id, user_id, category_id, expense_date, description, amount_cents`

type UpdateExpenseParams struct {
	CategoryID  sql.NullInt64
	ExpenseDate string
	Description string
	AmountCents int64
	ID          int64
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, updateExpense,
		arg.CategoryID, arg.ExpenseDate, arg.Description, arg.AmountCents, arg.ID)
	var i Expense
	err := row.Scan(&i.ID, &i.UserID, &i.CategoryID, &i.ExpenseDate, &i.Description, &i.AmountCents)
	return i, err
}

const getExpense = `SELECT id, user_id, category_id, expense_date, description, amount_cents
FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i Expense
	err := row.Scan(&i.ID, &i.UserID, &i.CategoryID, &i.ExpenseDate, &i.Description, &i.AmountCents)
	return i, err
}

const sumExpensesByUser = `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE user_id = ?`

func (q *Queries) SumExpensesByUser(ctx context.Context, userID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumExpensesByUser, userID)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const sumExpensesByUserAndCategory = `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
WHERE user_id = ? AND category_id = ?`

func (q *Queries) SumExpensesByUserAndCategory(ctx context.Context, userID, categoryID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumExpensesByUserAndCategory, userID, categoryID)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const sumExpensesByUserInRange = `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
WHERE user_id = ? AND expense_date BETWEEN ? AND ?`

type RangeParams struct {
	UserID int64
	Start  string
	End    string
}

func (q *Queries) SumExpensesByUserInRange(ctx context.Context, arg RangeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumExpensesByUserInRange, arg.UserID, arg.Start, arg.End)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const sumExpensesByUserAndCategoryInRange = `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
WHERE user_id = ? AND category_id = ? AND expense_date BETWEEN ? AND ?`

type CategoryRangeParams struct {
	UserID     int64
	CategoryID int64
	Start      string
	End        string
}

func (q *Queries) SumExpensesByUserAndCategoryInRange(ctx context.Context, arg CategoryRangeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumExpensesByUserAndCategoryInRange,
		arg.UserID, arg.CategoryID, arg.Start, arg.End)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const listExpenseEntriesInRange = `SELECT e.amount_cents, e.expense_date, e.category_id, c.name
FROM expenses e
LEFT JOIN categories c ON c.id = e.category_id
WHERE e.user_id = ? AND e.expense_date BETWEEN ? AND ?
ORDER BY e.expense_date, e.id`

func (q *Queries) ListExpenseEntriesInRange(ctx context.Context, arg RangeParams) ([]ExpenseEntry, error) {
	rows, err := q.db.QueryContext(ctx, listExpenseEntriesInRange, arg.UserID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseEntry
	for rows.Next() {
		var i ExpenseEntry
		if err := rows.Scan(&i.AmountCents, &i.ExpenseDate, &i.CategoryID, &i.CategoryName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// --- thresholds ---

const thresholdColumns = `t.id, t.user_id, t.category_id, c.name, t.limit_cents, t.threshold_type,
t.alert_percentage, t.is_active, t.is_breached, t.last_alert_sent, t.created_at, t.updated_at
FROM thresholds t
LEFT JOIN categories c ON c.id = t.category_id`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanThreshold(s scanner) (Threshold, error) {
	var i Threshold
	err := s.Scan(&i.ID, &i.UserID, &i.CategoryID, &i.CategoryName, &i.LimitCents, &i.ThresholdType,
		&i.AlertPercentage, &i.IsActive, &i.IsBreached, &i.LastAlertSent, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

func (q *Queries) listThresholds(ctx context.Context, query string, args ...interface{}) ([]Threshold, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Threshold
	for rows.Next() {
		i, err := scanThreshold(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createThreshold = `INSERT INTO thresholds (user_id, category_id, limit_cents, threshold_type,
alert_percentage, is_active, is_breached, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
RETURNING id`

type CreateThresholdParams struct {
	UserID          int64
	CategoryID      sql.NullInt64
	LimitCents      int64
	ThresholdType   string
	AlertPercentage int64
	IsActive        bool
	CreatedAt       string
}

func (q *Queries) CreateThreshold(ctx context.Context, arg CreateThresholdParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createThreshold, arg.UserID, arg.CategoryID, arg.LimitCents,
		arg.ThresholdType, arg.AlertPercentage, arg.IsActive, arg.CreatedAt, arg.CreatedAt)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getThreshold = `SELECT ` + thresholdColumns + ` WHERE t.id = ?`

func (q *Queries) GetThreshold(ctx context.Context, id int64) (Threshold, error) {
	return scanThreshold(q.db.QueryRowContext(ctx, getThreshold, id))
}

const getOverallThreshold = `SELECT ` + thresholdColumns + ` WHERE t.user_id = ? AND t.category_id IS NULL`

func (q *Queries) GetOverallThreshold(ctx context.Context, userID int64) (Threshold, error) {
	return scanThreshold(q.db.QueryRowContext(ctx, getOverallThreshold, userID))
}

const listThresholdsByUser = `SELECT ` + thresholdColumns + ` WHERE t.user_id = ? ORDER BY t.id`

func (q *Queries) ListThresholdsByUser(ctx context.Context, userID int64) ([]Threshold, error) {
	return q.listThresholds(ctx, listThresholdsByUser, userID)
}

const listActiveThresholdsByUser = `SELECT ` + thresholdColumns + ` WHERE t.user_id = ? AND t.is_active = 1 ORDER BY t.id`

func (q *Queries) ListActiveThresholdsByUser(ctx context.Context, userID int64) ([]Threshold, error) {
	return q.listThresholds(ctx, listActiveThresholdsByUser, userID)
}

const updateThreshold = `UPDATE thresholds
SET limit_cents = ?, threshold_type = ?, alert_percentage = ?, is_active = ?, updated_at = ?
WHERE id = ?`

type UpdateThresholdParams struct {
	LimitCents      int64
	ThresholdType   string
	AlertPercentage int64
	IsActive        bool
	UpdatedAt       string
	ID              int64
}

func (q *Queries) UpdateThreshold(ctx context.Context, arg UpdateThresholdParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateThreshold, arg.LimitCents, arg.ThresholdType,
		arg.AlertPercentage, arg.IsActive, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setBreachState = `UPDATE thresholds
SET is_breached = ?, last_alert_sent = COALESCE(?, last_alert_sent), updated_at = ?
WHERE id = ? AND is_breached = ?`

type SetBreachStateParams struct {
	To            bool
	LastAlertSent sql.NullString
	UpdatedAt     string
	ID            int64
	From          bool
}

// SetBreachState returns the number of rows changed; zero means the stored
// flag no longer matched From or the row is gone.
func (q *Queries) SetBreachState(ctx context.Context, arg SetBreachStateParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setBreachState, arg.To, arg.LastAlertSent, arg.UpdatedAt, arg.ID, arg.From)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteThreshold = `DELETE FROM thresholds WHERE id = ?`

func (q *Queries) DeleteThreshold(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteThreshold, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countBreachedThresholds = `SELECT COUNT(*) FROM thresholds WHERE user_id = ? AND is_breached = 1`

func (q *Queries) CountBreachedThresholds(ctx context.Context, userID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countBreachedThresholds, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
