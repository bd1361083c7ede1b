package services

import (
	"context"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/log"
)

// AccountService registers users and their categories.
type AccountService struct {
	users      ledger.UserDirectory
	categories ledger.CategoryDirectory
	logger     *log.Logger
}

func NewAccountService(users ledger.UserDirectory, categories ledger.CategoryDirectory, logger *log.Logger) *AccountService {
	if logger == nil {
		logger = log.Discard()
	}
	return &AccountService{users: users, categories: categories, logger: logger.WithComponent(log.ComponentApp)}
}

func (s *AccountService) CreateUser(ctx context.Context, username string) (core.User, error) {
	u, err := s.users.CreateUser(ctx, username)
	if err != nil {
		return core.User{}, err
	}
	s.logger.InfoContext(ctx, "User created", log.FieldUserID, u.ID)
	return u, nil
}

func (s *AccountService) CreateCategory(ctx context.Context, userID int64, name string) (core.Category, error) {
	c, err := s.categories.CreateCategory(ctx, core.Category{UserID: userID, Name: name})
	if err != nil {
		return core.Category{}, err
	}
	s.logger.InfoContext(ctx, "Category created", log.FieldUserID, userID, log.FieldCategoryID, c.ID)
	return c, nil
}
