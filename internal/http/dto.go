package http

import (
	"time"

	"cashflow/internal/core"
	"cashflow/internal/services"
)

// ThresholdRequest is the body of threshold create and update calls.
// On update every field is optional and userId is ignored.
type ThresholdRequest struct {
	UserID          int64       `json:"userId"`
	CategoryID      *int64      `json:"categoryId"`
	LimitAmount     *core.Money `json:"limitAmount"`
	ThresholdType   string      `json:"thresholdType"`
	AlertPercentage *int        `json:"alertPercentage"`
	IsActive        *bool       `json:"isActive"`
}

// validate collects field errors; create additionally requires the owner and limit.
func (req ThresholdRequest) validate(create bool) (services.ThresholdRequest, map[string]string) {
	fields := make(map[string]string)
	out := services.ThresholdRequest{
		UserID:          req.UserID,
		CategoryID:      req.CategoryID,
		Limit:           req.LimitAmount,
		AlertPercentage: req.AlertPercentage,
		Active:          req.IsActive,
	}

	if create {
		if req.UserID <= 0 {
			fields["userId"] = "is required"
		}
		if req.LimitAmount == nil {
			fields["limitAmount"] = "is required"
		}
	}
	if req.CategoryID != nil && *req.CategoryID <= 0 {
		fields["categoryId"] = "must be positive"
	}
	if req.AlertPercentage != nil && (*req.AlertPercentage < 0 || *req.AlertPercentage > 100) {
		fields["alertPercentage"] = "must be between 0 and 100"
	}
	if req.ThresholdType != "" {
		tt, err := core.ParseThresholdType(req.ThresholdType)
		if err != nil {
			fields["thresholdType"] = "must be one of DAILY, WEEKLY, MONTHLY, YEARLY"
		} else {
			out.Type = &tt
		}
	}
	return out, fields
}

// ThresholdDTO is a threshold as returned by the API.
type ThresholdDTO struct {
	ID              int64              `json:"id"`
	LimitAmount     core.Money         `json:"limitAmount"`
	ThresholdType   core.ThresholdType `json:"thresholdType"`
	AlertPercentage int                `json:"alertPercentage"`
	IsActive        bool               `json:"isActive"`
	IsBreached      bool               `json:"isBreached"`
	UserID          int64              `json:"userId"`
	CategoryID      *int64             `json:"categoryId"`
	CategoryName    string             `json:"categoryName,omitempty"`
	CurrentSpending core.Money         `json:"currentSpending"`
	RemainingAmount core.Money         `json:"remainingAmount"`
	UsagePercentage float64            `json:"usagePercentage"`
	LastAlertSent   *time.Time         `json:"lastAlertSent"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

func newThresholdDTO(v services.ThresholdView) ThresholdDTO {
	return ThresholdDTO{
		ID:              v.ID,
		LimitAmount:     v.Limit,
		ThresholdType:   v.Type,
		AlertPercentage: v.AlertPercentage,
		IsActive:        v.Active,
		IsBreached:      v.Breached,
		UserID:          v.UserID,
		CategoryID:      v.CategoryID,
		CategoryName:    v.CategoryName,
		CurrentSpending: v.CurrentSpending,
		RemainingAmount: v.Remaining,
		UsagePercentage: v.UsagePercentage,
		LastAlertSent:   v.LastAlertSent,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func newThresholdDTOs(views []services.ThresholdView) []ThresholdDTO {
	out := make([]ThresholdDTO, 0, len(views))
	for _, v := range views {
		out = append(out, newThresholdDTO(v))
	}
	return out
}

type UserRequest struct {
	Username string `json:"username"`
}

type UserDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryRequest struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
}

type CategoryDTO struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
}

// ExpenseRequest is the body of expense create and update calls. An empty
// date means today.
type ExpenseRequest struct {
	UserID      int64       `json:"userId"`
	CategoryID  *int64      `json:"categoryId"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      *core.Money `json:"amount"`
}

func (req ExpenseRequest) toExpense(today core.Date) (core.Expense, map[string]string) {
	fields := make(map[string]string)
	e := core.Expense{
		UserID:      req.UserID,
		CategoryID:  req.CategoryID,
		Date:        today,
		Description: sanitizeInput(req.Description),
	}
	if req.UserID <= 0 {
		fields["userId"] = "is required"
	}
	if req.CategoryID != nil && *req.CategoryID <= 0 {
		fields["categoryId"] = "must be positive"
	}
	if req.Amount == nil {
		fields["amount"] = "is required"
	} else {
		e.Amount = *req.Amount
	}
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			fields["date"] = "must be formatted as YYYY-MM-DD"
		} else {
			e.Date = d
		}
	}
	if len(e.Description) > 255 {
		fields["description"] = "must be at most 255 characters"
	}
	return e, fields
}

type ExpenseDTO struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	CategoryID  *int64     `json:"categoryId"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
}

func newExpenseDTO(e core.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		Date:        e.Date.String(),
		Description: e.Description,
		Amount:      e.Amount,
	}
}
