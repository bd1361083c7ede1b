package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

func toThreshold(row Threshold) core.Threshold {
	t := core.Threshold{
		ID:              row.ID,
		UserID:          row.UserID,
		CategoryID:      idPtr(row.CategoryID),
		CategoryName:    row.CategoryName.String,
		Limit:           core.Money{Cents: row.LimitCents},
		Type:            core.ThresholdType(row.ThresholdType),
		AlertPercentage: int(row.AlertPercentage),
		Active:          row.IsActive,
		Breached:        row.IsBreached,
		CreatedAt:       parseTime(row.CreatedAt),
		UpdatedAt:       parseTime(row.UpdatedAt),
	}
	if row.LastAlertSent.Valid {
		at := parseTime(row.LastAlertSent.String)
		t.LastAlertSent = &at
	}
	return t
}

func toThresholds(rows []Threshold) []core.Threshold {
	out := make([]core.Threshold, len(rows))
	for i, row := range rows {
		out[i] = toThreshold(row)
	}
	return out
}

func (r *SQLiteRepository) ActiveForUser(ctx context.Context, userID int64) ([]core.Threshold, error) {
	rows, err := r.queries.ListActiveThresholdsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active thresholds: %w", err)
	}
	return toThresholds(rows), nil
}

// UpdateBreachState flips the breach flag only if it still equals u.From.
func (r *SQLiteRepository) UpdateBreachState(ctx context.Context, u ledger.BreachUpdate) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	params := SetBreachStateParams{
		To:        u.To,
		UpdatedAt: r.stamp(),
		ID:        u.ThresholdID,
		From:      u.From,
	}
	if u.At != nil {
		params.LastAlertSent = sql.NullString{String: formatTime(*u.At), Valid: true}
	}
	n, err := q.SetBreachState(ctx, params)
	if err != nil {
		return false, fmt.Errorf("set breach state: %w", err)
	}
	if n == 0 {
		if _, err := q.GetThreshold(ctx, u.ThresholdID); errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("threshold %d: %w", u.ThresholdID, core.ErrNotFound)
		} else if err != nil {
			return false, fmt.Errorf("get threshold: %w", err)
		}
		return false, nil
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit breach state: %w", err)
	}

	slog.InfoContext(ctx, "Threshold breach state updated",
		"threshold_id", u.ThresholdID,
		"breached", u.To)
	return true, nil
}

func (r *SQLiteRepository) CreateThreshold(ctx context.Context, t core.Threshold) (core.Threshold, error) {
	if err := t.Validate(); err != nil {
		return core.Threshold{}, err
	}
	if err := r.requireUser(ctx, t.UserID); err != nil {
		return core.Threshold{}, err
	}
	if err := r.requireOwnedCategory(ctx, t.UserID, t.CategoryID); err != nil {
		return core.Threshold{}, err
	}
	id, err := r.queries.CreateThreshold(ctx, CreateThresholdParams{
		UserID:          t.UserID,
		CategoryID:      nullID(t.CategoryID),
		LimitCents:      t.Limit.Cents,
		ThresholdType:   string(t.Type),
		AlertPercentage: int64(t.AlertPercentage),
		IsActive:        t.Active,
		CreatedAt:       r.stamp(),
	})
	if isUniqueViolation(err) {
		if t.IsOverall() {
			return core.Threshold{}, fmt.Errorf("overall threshold: %w", core.ErrDuplicate)
		}
		return core.Threshold{}, fmt.Errorf("threshold for category %d: %w", *t.CategoryID, core.ErrDuplicate)
	}
	if err != nil {
		return core.Threshold{}, fmt.Errorf("create threshold: %w", err)
	}
	return r.GetThreshold(ctx, id)
}

func (r *SQLiteRepository) GetThreshold(ctx context.Context, id int64) (core.Threshold, error) {
	row, err := r.queries.GetThreshold(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Threshold{}, fmt.Errorf("threshold %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Threshold{}, fmt.Errorf("get threshold: %w", err)
	}
	return toThreshold(row), nil
}

func (r *SQLiteRepository) ListThresholds(ctx context.Context, userID int64) ([]core.Threshold, error) {
	rows, err := r.queries.ListThresholdsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list thresholds: %w", err)
	}
	return toThresholds(rows), nil
}

func (r *SQLiteRepository) OverallThreshold(ctx context.Context, userID int64) (core.Threshold, error) {
	row, err := r.queries.GetOverallThreshold(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Threshold{}, fmt.Errorf("overall threshold for user %d: %w", userID, core.ErrNotFound)
	}
	if err != nil {
		return core.Threshold{}, fmt.Errorf("get overall threshold: %w", err)
	}
	return toThreshold(row), nil
}

func (r *SQLiteRepository) UpdateThreshold(ctx context.Context, id int64, p ledger.ThresholdPatch) (core.Threshold, error) {
	current, err := r.GetThreshold(ctx, id)
	if err != nil {
		return core.Threshold{}, err
	}
	if p.Limit != nil {
		current.Limit = *p.Limit
	}
	if p.Type != nil {
		current.Type = *p.Type
	}
	if p.AlertPercentage != nil {
		current.AlertPercentage = *p.AlertPercentage
	}
	if p.Active != nil {
		current.Active = *p.Active
	}
	if err := current.Validate(); err != nil {
		return core.Threshold{}, err
	}
	n, err := r.queries.UpdateThreshold(ctx, UpdateThresholdParams{
		LimitCents:      current.Limit.Cents,
		ThresholdType:   string(current.Type),
		AlertPercentage: int64(current.AlertPercentage),
		IsActive:        current.Active,
		UpdatedAt:       r.stamp(),
		ID:              id,
	})
	if err != nil {
		return core.Threshold{}, fmt.Errorf("update threshold: %w", err)
	}
	if n == 0 {
		return core.Threshold{}, fmt.Errorf("threshold %d: %w", id, core.ErrNotFound)
	}
	return r.GetThreshold(ctx, id)
}

func (r *SQLiteRepository) DeleteThreshold(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteThreshold(ctx, id)
	if err != nil {
		return fmt.Errorf("delete threshold: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("threshold %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CountBreached(ctx context.Context, userID int64) (int, error) {
	n, err := r.queries.CountBreachedThresholds(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count breached thresholds: %w", err)
	}
	return int(n), nil
}
