package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AlertWarning AlertKind = "WARNING"
	AlertBreach  AlertKind = "BREACH"
)

// AlertKind classifies an evaluation outcome that deserves attention.
type AlertKind string

// Alert describes one threshold evaluation. Alerts are recomputed on demand
// and never stored.
type Alert struct {
	UserID          int64     `json:"userId"`
	ThresholdID     int64     `json:"thresholdId"`
	CategoryID      *int64    `json:"categoryId"`
	CategoryName    string    `json:"categoryName,omitempty"`
	Kind            AlertKind `json:"alertType"`
	Message         string    `json:"message"`
	Limit           Money     `json:"limitAmount"`
	CurrentSpending Money     `json:"currentSpending"`
	UsagePercentage float64   `json:"usagePercentage"`
	CreatedAt       time.Time `json:"createdAt"`
}

// NewAlert builds the alert for threshold t at the given usage.
func NewAlert(kind AlertKind, t Threshold, spending Money, usage decimal.Decimal, at time.Time) Alert {
	return Alert{
		UserID:          t.UserID,
		ThresholdID:     t.ID,
		CategoryID:      t.CategoryID,
		CategoryName:    t.CategoryName,
		Kind:            kind,
		Message:         AlertMessage(kind, t.CategoryName, t.IsOverall(), usage),
		Limit:           t.Limit,
		CurrentSpending: spending,
		UsagePercentage: usage.InexactFloat64(),
		CreatedAt:       at,
	}
}

// AlertMessage renders the user-facing text. The percentage is shown with
// one decimal; the alert itself keeps full precision.
func AlertMessage(kind AlertKind, categoryName string, overall bool, usage decimal.Decimal) string {
	scope := "overall"
	if !overall && categoryName != "" {
		scope = categoryName
	}
	if kind == AlertBreach {
		return fmt.Sprintf("ALERT: You have exceeded your %s expense limit by %s%%",
			scope, FormatPercentOneDecimal(usage.Sub(hundred)))
	}
	return fmt.Sprintf("Warning: You have reached %s%% of your %s expense limit",
		FormatPercentOneDecimal(usage), scope)
}
