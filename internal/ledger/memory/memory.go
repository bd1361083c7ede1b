// Package memory is an in-process implementation of every ledger port.
// It backs the "memory" data backend and doubles as the test store.
package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
)

// DemoUsername owns the categories seeded by NewFromFiles.
const DemoUsername = "demo"

type Store struct {
	mu         sync.Mutex
	now        func() time.Time
	nextID     int64
	users      map[int64]core.User
	categories map[int64]core.Category
	expenses   []core.Expense
	thresholds []core.Threshold
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:        time.Now,
		users:      map[int64]core.User{},
		categories: map[int64]core.Category{},
	}
}

// WithClock replaces the clock used for created/updated timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// NewFromFiles seeds a demo user with the categories listed in
// base/seed_categories.txt, falling back to a small default set.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = []string{"Housing", "Food", "Transport"}
	}
	s := New()
	u, _ := s.CreateUser(context.Background(), DemoUsername)
	for _, name := range cats {
		_, _ = s.CreateCategory(context.Background(), core.Category{UserID: u.ID, Name: name})
	}
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// --- users & categories ---

func (s *Store) UserExists(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[userID]
	return ok, nil
}

func (s *Store) CreateUser(_ context.Context, username string) (core.User, error) {
	u := core.User{Username: strings.TrimSpace(username)}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return core.User{}, fmt.Errorf("user %q: %w", u.Username, core.ErrDuplicate)
		}
	}
	u.ID = s.id()
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	return u, nil
}

// Categories lists a user's categories in creation order.
func (s *Store) Categories(_ context.Context, userID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[c.UserID]; !ok {
		return core.Category{}, fmt.Errorf("user %d: %w", c.UserID, core.ErrNotFound)
	}
	for _, existing := range s.categories {
		if existing.UserID == c.UserID && strings.EqualFold(existing.Name, c.Name) {
			return core.Category{}, fmt.Errorf("category %q: %w", c.Name, core.ErrDuplicate)
		}
	}
	c.ID = s.id()
	s.categories[c.ID] = c
	return c, nil
}

// --- expenses ---

func (s *Store) AppendExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOwnerLocked(e); err != nil {
		return core.Expense{}, err
	}
	e.ID = s.id()
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID != e.ID {
			continue
		}
		e.UserID = s.expenses[i].UserID
		if err := s.checkOwnerLocked(e); err != nil {
			return core.Expense{}, err
		}
		s.expenses[i] = e
		return e, nil
	}
	return core.Expense{}, fmt.Errorf("expense %d: %w", e.ID, core.ErrNotFound)
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
}

func (s *Store) checkOwnerLocked(e core.Expense) error {
	if _, ok := s.users[e.UserID]; !ok {
		return fmt.Errorf("user %d: %w", e.UserID, core.ErrNotFound)
	}
	if e.CategoryID != nil {
		c, ok := s.categories[*e.CategoryID]
		if !ok || c.UserID != e.UserID {
			return fmt.Errorf("category %d: %w", *e.CategoryID, core.ErrNotFound)
		}
	}
	return nil
}

// --- reader ---

func (s *Store) sum(match func(core.Expense) bool) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, e := range s.expenses {
		if match(e) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func inRange(d, start, end core.Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

func sameCategory(e core.Expense, categoryID int64) bool {
	return e.CategoryID != nil && *e.CategoryID == categoryID
}

func (s *Store) TotalForUser(_ context.Context, userID int64) (core.Money, error) {
	return s.sum(func(e core.Expense) bool { return e.UserID == userID }), nil
}

func (s *Store) TotalForUserAndCategory(_ context.Context, userID, categoryID int64) (core.Money, error) {
	return s.sum(func(e core.Expense) bool {
		return e.UserID == userID && sameCategory(e, categoryID)
	}), nil
}

func (s *Store) TotalForUserInRange(_ context.Context, userID int64, start, end core.Date) (core.Money, error) {
	return s.sum(func(e core.Expense) bool {
		return e.UserID == userID && inRange(e.Date, start, end)
	}), nil
}

func (s *Store) TotalForUserAndCategoryInRange(_ context.Context, userID, categoryID int64, start, end core.Date) (core.Money, error) {
	return s.sum(func(e core.Expense) bool {
		return e.UserID == userID && sameCategory(e, categoryID) && inRange(e.Date, start, end)
	}), nil
}

func (s *Store) ExpensesForUserInRange(_ context.Context, userID int64, start, end core.Date) ([]ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.Entry
	for _, e := range s.expenses {
		if e.UserID != userID || !inRange(e.Date, start, end) {
			continue
		}
		entry := ledger.Entry{Amount: e.Amount, Date: e.Date, CategoryID: e.CategoryID}
		if e.CategoryID != nil {
			entry.CategoryName = s.categories[*e.CategoryID].Name
		}
		out = append(out, entry)
	}
	// expenses are kept in insertion order, so a stable sort gives date then id
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}
