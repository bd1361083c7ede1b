package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily   ThresholdType = "DAILY"
	Weekly  ThresholdType = "WEEKLY"
	Monthly ThresholdType = "MONTHLY"
	Yearly  ThresholdType = "YEARLY"
)

// DefaultAlertPercentage is used when a threshold is created without one.
const DefaultAlertPercentage = 80

// UncategorizedName groups expenses that carry no category.
const UncategorizedName = "Uncategorized"

type (
	// ThresholdType is stored and reported but does not change the
	// aggregation window used by breach checks.
	ThresholdType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID        int64
		Username  string
		CreatedAt time.Time
	}

	Category struct {
		ID     int64
		UserID int64
		Name   string
	}

	Expense struct {
		ID          int64
		UserID      int64
		CategoryID  *int64
		Date        Date
		Description string
		Amount      Money
	}

	Threshold struct {
		ID              int64
		UserID          int64
		CategoryID      *int64 // nil for the overall threshold
		CategoryName    string
		Limit           Money
		Type            ThresholdType
		AlertPercentage int
		Active          bool
		Breached        bool
		LastAlertSent   *time.Time
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}
)

var (
	ErrInvalidDay             = errors.New("invalid day")
	ErrInvalidMonth           = errors.New("invalid month")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidPeriod          = errors.New("invalid period")
	ErrInvalidAlertPercentage = errors.New("alert percentage must be between 0 and 100")
	ErrInvalidThresholdType   = errors.New("invalid threshold type")
	ErrInvalidConfiguration   = errors.New("invalid threshold configuration")
	ErrEmptyUsername          = errors.New("empty username")
	ErrEmptyCategoryName      = errors.New("empty category name")
	ErrNotFound               = errors.New("not found")
	ErrDuplicate              = errors.New("already exists")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// DaysInMonth returns the number of calendar days of year/month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns the first and last day of year/month.
func MonthBounds(year, month int) (Date, Date) {
	return NewDate(year, month, 1), NewDate(year, month, DaysInMonth(year, month))
}

// AddMonths shifts year/month by n calendar months, n may be negative.
func AddMonths(year, month, n int) (int, int) {
	t := time.Date(year, time.Month(month)+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), int(t.Month())
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t ThresholdType) Validate() error {
	switch t {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidThresholdType
	}
}

// ParseThresholdType accepts any casing; an empty string yields Monthly.
func ParseThresholdType(s string) (ThresholdType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Monthly, nil
	}
	t := ThresholdType(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if len(u.Username) > 100 {
		return errors.New("username too long (max 100 characters)")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 255 {
		return errors.New("description too long (max 255 characters)")
	}
	return e.Amount.Validate()
}

// Validate checks the user-supplied fields of a threshold.
func (t Threshold) Validate() error {
	if err := t.Limit.Validate(); err != nil {
		return err
	}
	if t.AlertPercentage < 0 || t.AlertPercentage > 100 {
		return ErrInvalidAlertPercentage
	}
	return t.Type.Validate()
}

// IsOverall reports whether the threshold limits spending across all categories.
func (t Threshold) IsOverall() bool {
	return t.CategoryID == nil
}

// Evaluable reports whether the engine can classify the threshold at all.
func (t Threshold) Evaluable() bool {
	return t.Limit.Cents > 0 && t.AlertPercentage >= 0 && t.AlertPercentage <= 100
}
