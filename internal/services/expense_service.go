package services

import (
	"context"
	"fmt"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/log"
)

// ExpensePublisher hands a recorded expense to the alert worker.
type ExpensePublisher interface {
	PublishExpenseRecorded(ctx context.Context, expenseID, userID int64) error
}

// AlertEvaluator re-checks the user's thresholds after a write.
type AlertEvaluator interface {
	EvaluateAlerts(ctx context.Context, userID int64) ([]core.Alert, error)
}

// ExpenseService orchestrates expense writes and the alert check that follows them.
type ExpenseService struct {
	writer     ledger.ExpenseWriter
	publisher  ExpensePublisher
	evaluator  AlertEvaluator
	invalidate func(userID int64)
	logger     *log.Logger
	events     *log.StructuredLogger
}

func NewExpenseService(writer ledger.ExpenseWriter, evaluator AlertEvaluator, publisher ExpensePublisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentExpense)
	return &ExpenseService{
		writer:    writer,
		publisher: publisher,
		evaluator: evaluator,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

// OnWrite registers a hook called with the user id after every successful write.
func (s *ExpenseService) OnWrite(fn func(userID int64)) {
	s.invalidate = fn
}

// RecordExpense saves an expense, then triggers the alert check.
func (s *ExpenseService) RecordExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	saved, err := s.writer.AppendExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.events.LogExpenseRecorded(ctx, log.OpCreate, saved.ID, saved.UserID, saved.Amount.Cents)
	s.afterWrite(ctx, saved)
	return saved, nil
}

// UpdateExpense replaces an existing expense, then triggers the alert check.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	saved, err := s.writer.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.events.LogExpenseRecorded(ctx, log.OpUpdate, saved.ID, saved.UserID, saved.Amount.Cents)
	s.afterWrite(ctx, saved)
	return saved, nil
}

// afterWrite never fails the write: the expense is already persisted.
func (s *ExpenseService) afterWrite(ctx context.Context, e core.Expense) {
	if s.invalidate != nil {
		s.invalidate(e.UserID)
	}

	if s.publisher != nil {
		err := s.publisher.PublishExpenseRecorded(ctx, e.ID, e.UserID)
		if err == nil {
			return
		}
		s.logger.ErrorContext(ctx, "Failed to publish expense recorded message, evaluating inline",
			log.FieldExpenseID, e.ID,
			log.FieldError, err.Error())
	}

	if s.evaluator == nil {
		return
	}
	if _, err := s.evaluator.EvaluateAlerts(context.WithoutCancel(ctx), e.UserID); err != nil {
		s.events.LogError(ctx, "Alert evaluation after write failed", err, log.ComponentExpense, log.OpEvaluate,
			log.NewFields().WithUser(e.UserID))
	}
}
