package worker

import (
	"context"
	"fmt"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/log"
)

// AlertEvaluator re-checks every active threshold of a user.
type AlertEvaluator interface {
	EvaluateAlerts(ctx context.Context, userID int64) ([]core.Alert, error)
}

// AlertWorker evaluates thresholds for expense writes announced over AMQP
type AlertWorker struct {
	alerts AlertEvaluator
	logger *log.Logger
}

func NewAlertWorker(alerts AlertEvaluator, logger *log.Logger) *AlertWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AlertWorker{
		alerts: alerts,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleExpenseRecorded processes a single expense recorded message from AMQP.
// A returned error makes the consumer requeue the message once.
func (w *AlertWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	w.logger.InfoContext(ctx, "Processing expense recorded message",
		log.FieldMessageID, msg.MessageID,
		log.FieldExpenseID, msg.ExpenseID,
		log.FieldUserID, msg.UserID)

	if msg.UserID <= 0 {
		w.logger.WarnContext(ctx, "Dropping message without user",
			log.FieldMessageID, msg.MessageID)
		return nil
	}

	alerts, err := w.alerts.EvaluateAlerts(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("evaluate alerts for user %d: %w", msg.UserID, err)
	}

	breaches := 0
	for _, a := range alerts {
		if a.Kind == core.AlertBreach {
			breaches++
		}
	}

	w.logger.InfoContext(ctx, "Alert evaluation completed",
		log.FieldMessageID, msg.MessageID,
		log.FieldUserID, msg.UserID,
		"alerts", len(alerts),
		"breaches", breaches)

	return nil
}

// HandleThresholdBreached records a breach notification. Delivery beyond the
// log (mail, push) is left to downstream consumers of the alert queue.
func (w *AlertWorker) HandleThresholdBreached(ctx context.Context, msg *amqp.ThresholdBreachedMessage) error {
	fields := log.NewFields().
		WithUser(msg.UserID).
		WithThreshold(msg.ThresholdID, msg.CategoryID, msg.Limit.Cents).
		WithUsage(msg.CurrentSpending.Cents, msg.UsagePercentage).
		WithComponent(log.ComponentWorker)
	fields[log.FieldMessageID] = msg.MessageID

	w.logger.WarnContext(ctx, msg.Message, fields.ToSlice()...)
	return nil
}
