package storage

import "database/sql"

type User struct {
	ID        int64
	Username  string
	CreatedAt string
}

type Category struct {
	ID     int64
	UserID int64
	Name   string
}

type Expense struct {
	ID          int64
	UserID      int64
	CategoryID  sql.NullInt64
	ExpenseDate string
	Description string
	AmountCents int64
}

// Threshold is a thresholds row joined with its category name.
type Threshold struct {
	ID              int64
	UserID          int64
	CategoryID      sql.NullInt64
	CategoryName    sql.NullString
	LimitCents      int64
	ThresholdType   string
	AlertPercentage int64
	IsActive        bool
	IsBreached      bool
	LastAlertSent   sql.NullString
	CreatedAt       string
	UpdatedAt       string
}

type ExpenseEntry struct {
	AmountCents  int64
	ExpenseDate  string
	CategoryID   sql.NullInt64
	CategoryName sql.NullString
}
