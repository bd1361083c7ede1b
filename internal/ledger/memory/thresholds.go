package memory

import (
	"context"
	"fmt"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

func (s *Store) withCategoryNameLocked(t core.Threshold) core.Threshold {
	if t.CategoryID != nil {
		t.CategoryName = s.categories[*t.CategoryID].Name
	} else {
		t.CategoryName = ""
	}
	return t
}

func (s *Store) findLocked(id int64) int {
	for i := range s.thresholds {
		if s.thresholds[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) ActiveForUser(_ context.Context, userID int64) ([]core.Threshold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Threshold
	for _, t := range s.thresholds {
		if t.UserID == userID && t.Active {
			out = append(out, s.withCategoryNameLocked(t))
		}
	}
	return out, nil
}

// UpdateBreachState applies u only if the stored flag still equals u.From.
func (s *Store) UpdateBreachState(_ context.Context, u ledger.BreachUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(u.ThresholdID)
	if i < 0 {
		return false, fmt.Errorf("threshold %d: %w", u.ThresholdID, core.ErrNotFound)
	}
	t := &s.thresholds[i]
	if t.Breached != u.From {
		return false, nil
	}
	t.Breached = u.To
	if u.At != nil {
		at := *u.At
		t.LastAlertSent = &at
	}
	t.UpdatedAt = s.now()
	return true, nil
}

func (s *Store) CreateThreshold(_ context.Context, t core.Threshold) (core.Threshold, error) {
	if err := t.Validate(); err != nil {
		return core.Threshold{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[t.UserID]; !ok {
		return core.Threshold{}, fmt.Errorf("user %d: %w", t.UserID, core.ErrNotFound)
	}
	if t.CategoryID != nil {
		if c, ok := s.categories[*t.CategoryID]; !ok || c.UserID != t.UserID {
			return core.Threshold{}, fmt.Errorf("category %d: %w", *t.CategoryID, core.ErrNotFound)
		}
	}
	for _, existing := range s.thresholds {
		if existing.UserID != t.UserID {
			continue
		}
		if existing.IsOverall() && t.IsOverall() {
			return core.Threshold{}, fmt.Errorf("overall threshold: %w", core.ErrDuplicate)
		}
		if !existing.IsOverall() && !t.IsOverall() && *existing.CategoryID == *t.CategoryID {
			return core.Threshold{}, fmt.Errorf("threshold for category %d: %w", *t.CategoryID, core.ErrDuplicate)
		}
	}
	now := s.now()
	t.ID = s.id()
	t.CreatedAt, t.UpdatedAt = now, now
	s.thresholds = append(s.thresholds, t)
	return s.withCategoryNameLocked(t), nil
}

func (s *Store) GetThreshold(_ context.Context, id int64) (core.Threshold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(id)
	if i < 0 {
		return core.Threshold{}, fmt.Errorf("threshold %d: %w", id, core.ErrNotFound)
	}
	return s.withCategoryNameLocked(s.thresholds[i]), nil
}

func (s *Store) ListThresholds(_ context.Context, userID int64) ([]core.Threshold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Threshold
	for _, t := range s.thresholds {
		if t.UserID == userID {
			out = append(out, s.withCategoryNameLocked(t))
		}
	}
	return out, nil
}

func (s *Store) OverallThreshold(_ context.Context, userID int64) (core.Threshold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.thresholds {
		if t.UserID == userID && t.IsOverall() {
			return t, nil
		}
	}
	return core.Threshold{}, fmt.Errorf("overall threshold for user %d: %w", userID, core.ErrNotFound)
}

func (s *Store) UpdateThreshold(_ context.Context, id int64, p ledger.ThresholdPatch) (core.Threshold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(id)
	if i < 0 {
		return core.Threshold{}, fmt.Errorf("threshold %d: %w", id, core.ErrNotFound)
	}
	updated := applyPatch(s.thresholds[i], p)
	if err := updated.Validate(); err != nil {
		return core.Threshold{}, err
	}
	updated.UpdatedAt = s.now()
	s.thresholds[i] = updated
	return s.withCategoryNameLocked(updated), nil
}

func applyPatch(t core.Threshold, p ledger.ThresholdPatch) core.Threshold {
	if p.Limit != nil {
		t.Limit = *p.Limit
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.AlertPercentage != nil {
		t.AlertPercentage = *p.AlertPercentage
	}
	if p.Active != nil {
		t.Active = *p.Active
	}
	return t
}

func (s *Store) DeleteThreshold(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(id)
	if i < 0 {
		return fmt.Errorf("threshold %d: %w", id, core.ErrNotFound)
	}
	s.thresholds = append(s.thresholds[:i], s.thresholds[i+1:]...)
	return nil
}

func (s *Store) CountBreached(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.thresholds {
		if t.UserID == userID && t.Breached {
			n++
		}
	}
	return n, nil
}
