package services

import (
	"context"
	"fmt"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/log"
)

// ThresholdRequest carries the fields a caller may set. Nil fields take defaults on
// create and stay unchanged on update.
type ThresholdRequest struct {
	UserID          int64
	CategoryID      *int64
	Limit           *core.Money
	Type            *core.ThresholdType
	AlertPercentage *int
	Active          *bool
}

// ThresholdView is a threshold together with its current usage.
type ThresholdView struct {
	core.Threshold
	CurrentSpending core.Money
	Remaining       core.Money
	UsagePercentage float64
}

// ThresholdService manages thresholds on behalf of users.
type ThresholdService struct {
	repo       ledger.ThresholdRepository
	users      ledger.UserDirectory
	categories ledger.CategoryDirectory
	reader     ledger.Reader
	logger     *log.Logger
}

func NewThresholdService(repo ledger.ThresholdRepository, users ledger.UserDirectory, categories ledger.CategoryDirectory, reader ledger.Reader, logger *log.Logger) *ThresholdService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ThresholdService{
		repo:       repo,
		users:      users,
		categories: categories,
		reader:     reader,
		logger:     logger.WithComponent(log.ComponentThresholds),
	}
}

func (s *ThresholdService) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	return nil
}

// SetThreshold creates a threshold. A user has at most one overall threshold
// and at most one threshold per category.
func (s *ThresholdService) SetThreshold(ctx context.Context, req ThresholdRequest) (ThresholdView, error) {
	if err := s.requireUser(ctx, req.UserID); err != nil {
		return ThresholdView{}, err
	}
	if req.CategoryID != nil {
		c, err := s.categories.GetCategory(ctx, *req.CategoryID)
		if err != nil {
			return ThresholdView{}, err
		}
		if c.UserID != req.UserID {
			return ThresholdView{}, fmt.Errorf("category %d: %w", *req.CategoryID, core.ErrNotFound)
		}
	}
	if req.Limit == nil {
		return ThresholdView{}, core.ErrInvalidAmount
	}

	t := core.Threshold{
		UserID:          req.UserID,
		CategoryID:      req.CategoryID,
		Limit:           *req.Limit,
		Type:            core.Monthly,
		AlertPercentage: core.DefaultAlertPercentage,
		Active:          true,
	}
	if req.Type != nil {
		t.Type = *req.Type
	}
	if req.AlertPercentage != nil {
		t.AlertPercentage = *req.AlertPercentage
	}
	if err := t.Validate(); err != nil {
		return ThresholdView{}, err
	}

	created, err := s.repo.CreateThreshold(ctx, t)
	if err != nil {
		return ThresholdView{}, err
	}
	s.logger.InfoContext(ctx, "Threshold created",
		log.FieldUserID, created.UserID,
		log.FieldThresholdID, created.ID,
		log.FieldLimitCents, created.Limit.Cents)
	return s.view(ctx, created)
}

func (s *ThresholdService) GetThreshold(ctx context.Context, id int64) (ThresholdView, error) {
	t, err := s.repo.GetThreshold(ctx, id)
	if err != nil {
		return ThresholdView{}, err
	}
	return s.view(ctx, t)
}

// ListThresholds returns every threshold of the user, active or not.
func (s *ThresholdService) ListThresholds(ctx context.Context, userID int64) ([]ThresholdView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	ts, err := s.repo.ListThresholds(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, ts)
}

func (s *ThresholdService) ActiveThresholds(ctx context.Context, userID int64) ([]ThresholdView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	ts, err := s.repo.ActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, ts)
}

func (s *ThresholdService) OverallThreshold(ctx context.Context, userID int64) (ThresholdView, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return ThresholdView{}, err
	}
	t, err := s.repo.OverallThreshold(ctx, userID)
	if err != nil {
		return ThresholdView{}, err
	}
	return s.view(ctx, t)
}

// UpdateThreshold applies the non-nil fields of req. The owner and category never change.
func (s *ThresholdService) UpdateThreshold(ctx context.Context, id int64, req ThresholdRequest) (ThresholdView, error) {
	t, err := s.repo.UpdateThreshold(ctx, id, ledger.ThresholdPatch{
		Limit:           req.Limit,
		Type:            req.Type,
		AlertPercentage: req.AlertPercentage,
		Active:          req.Active,
	})
	if err != nil {
		return ThresholdView{}, err
	}
	s.logger.InfoContext(ctx, "Threshold updated", log.FieldThresholdID, id)
	return s.view(ctx, t)
}

func (s *ThresholdService) DeleteThreshold(ctx context.Context, id int64) error {
	if err := s.repo.DeleteThreshold(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Threshold deleted", log.FieldThresholdID, id)
	return nil
}

// ToggleThreshold flips the active flag.
func (s *ThresholdService) ToggleThreshold(ctx context.Context, id int64) (ThresholdView, error) {
	t, err := s.repo.GetThreshold(ctx, id)
	if err != nil {
		return ThresholdView{}, err
	}
	active := !t.Active
	return s.UpdateThreshold(ctx, id, ThresholdRequest{Active: &active})
}

// BreachedCount returns how many of the user's thresholds are currently breached.
func (s *ThresholdService) BreachedCount(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountBreached(ctx, userID)
}

func (s *ThresholdService) views(ctx context.Context, ts []core.Threshold) ([]ThresholdView, error) {
	out := make([]ThresholdView, 0, len(ts))
	for _, t := range ts {
		v, err := s.view(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *ThresholdService) view(ctx context.Context, t core.Threshold) (ThresholdView, error) {
	var (
		spending core.Money
		err      error
	)
	if t.CategoryID != nil {
		spending, err = s.reader.TotalForUserAndCategory(ctx, t.UserID, *t.CategoryID)
	} else {
		spending, err = s.reader.TotalForUser(ctx, t.UserID)
	}
	if err != nil {
		return ThresholdView{}, fmt.Errorf("spending for threshold %d: %w", t.ID, err)
	}
	return ThresholdView{
		Threshold:       t,
		CurrentSpending: spending,
		Remaining:       t.Limit.Sub(spending),
		UsagePercentage: core.PercentFloat(spending, t.Limit),
	}, nil
}
