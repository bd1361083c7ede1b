package services

import (
	"context"
	"fmt"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/log"

	"github.com/shopspring/decimal"
)

var hundredPct = decimal.NewFromInt(100)

// BreachNotifier is told about every threshold that flips into breach.
type BreachNotifier interface {
	NotifyBreach(ctx context.Context, alert core.Alert) error
}

// AlertService classifies thresholds against current spending and keeps the
// breach flag of each threshold in sync.
type AlertService struct {
	reader     ledger.Reader
	thresholds ledger.ThresholdStore
	users      ledger.UserDirectory
	notifier   BreachNotifier
	logger     *log.Logger
	events     *log.StructuredLogger
	now        func() time.Time
}

func NewAlertService(reader ledger.Reader, thresholds ledger.ThresholdStore, users ledger.UserDirectory, logger *log.Logger) *AlertService {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentAlerts)
	return &AlertService{
		reader:     reader,
		thresholds: thresholds,
		users:      users,
		logger:     logger,
		events:     log.NewStructuredLogger(logger),
		now:        time.Now,
	}
}

// WithClock replaces the clock used for alert and breach timestamps.
func (s *AlertService) WithClock(now func() time.Time) *AlertService {
	s.now = now
	return s
}

// WithNotifier sets the optional breach notifier.
func (s *AlertService) WithNotifier(n BreachNotifier) *AlertService {
	s.notifier = n
	return s
}

// EvaluateThreshold classifies t at the given spending and, when the
// classification crosses the breach boundary, persists the new flag.
// ok is false when no alert applies.
func (s *AlertService) EvaluateThreshold(ctx context.Context, t core.Threshold, spending core.Money) (core.Alert, bool, error) {
	return s.evaluate(ctx, t, spending, true)
}

func (s *AlertService) evaluate(ctx context.Context, t core.Threshold, spending core.Money, mutate bool) (core.Alert, bool, error) {
	if !t.Evaluable() {
		s.logger.WarnContext(ctx, "Skipping threshold",
			log.FieldThresholdID, t.ID,
			log.FieldUserID, t.UserID,
			log.FieldError, core.ErrInvalidConfiguration.Error())
		return core.Alert{}, false, nil
	}

	now := s.now()
	usage := core.Percent(spending, t.Limit)

	switch {
	case usage.GreaterThanOrEqual(hundredPct):
		alert := core.NewAlert(core.AlertBreach, t, spending, usage, now)
		if mutate && !t.Breached {
			applied, err := s.setBreached(ctx, t, true, &now)
			if err != nil {
				return core.Alert{}, false, err
			}
			if applied {
				s.notify(ctx, alert)
			}
		}
		s.logAlert(ctx, alert)
		return alert, true, nil

	case usage.GreaterThanOrEqual(decimal.NewFromInt(int64(t.AlertPercentage))):
		alert := core.NewAlert(core.AlertWarning, t, spending, usage, now)
		s.logAlert(ctx, alert)
		return alert, true, nil

	default:
		if mutate && t.Breached {
			if _, err := s.setBreached(ctx, t, false, nil); err != nil {
				return core.Alert{}, false, err
			}
		}
		return core.Alert{}, false, nil
	}
}

func (s *AlertService) setBreached(ctx context.Context, t core.Threshold, breached bool, at *time.Time) (bool, error) {
	applied, err := s.thresholds.UpdateBreachState(ctx, ledger.BreachUpdate{
		ThresholdID: t.ID,
		From:        !breached,
		To:          breached,
		At:          at,
	})
	if err != nil {
		return false, fmt.Errorf("update breach state of threshold %d: %w", t.ID, err)
	}
	if applied {
		s.events.LogBreachTransition(ctx, t.UserID, t.ID, breached)
	}
	return applied, nil
}

func (s *AlertService) notify(ctx context.Context, alert core.Alert) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyBreach(ctx, alert); err != nil {
		s.events.LogError(ctx, "Failed to notify breach", err, log.ComponentAlerts, log.OpPublish,
			log.NewFields().WithUser(alert.UserID))
	}
}

func (s *AlertService) logAlert(ctx context.Context, a core.Alert) {
	s.events.LogAlert(ctx, a.UserID, a.ThresholdID, a.CategoryID, string(a.Kind),
		a.Limit.Cents, a.CurrentSpending.Cents, a.UsagePercentage)
}

// spendingFor returns the all-time spending the threshold is compared against.
func (s *AlertService) spendingFor(ctx context.Context, t core.Threshold) (core.Money, error) {
	if t.CategoryID != nil {
		m, err := s.reader.TotalForUserAndCategory(ctx, t.UserID, *t.CategoryID)
		if err != nil {
			return core.Money{}, fmt.Errorf("spending for category %d: %w", *t.CategoryID, err)
		}
		return m, nil
	}
	m, err := s.reader.TotalForUser(ctx, t.UserID)
	if err != nil {
		return core.Money{}, fmt.Errorf("spending for user %d: %w", t.UserID, err)
	}
	return m, nil
}

func (s *AlertService) run(ctx context.Context, userID int64, mutate bool) ([]core.Alert, error) {
	active, err := s.thresholds.ActiveForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("active thresholds: %w", err)
	}
	alerts := make([]core.Alert, 0, len(active))
	for _, t := range active {
		spending, err := s.spendingFor(ctx, t)
		if err != nil {
			return nil, err
		}
		alert, ok, err := s.evaluate(ctx, t, spending, mutate)
		if err != nil {
			return nil, err
		}
		if ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

// EvaluateAlerts checks every active threshold of the user and updates breach
// flags. It runs after every expense write.
func (s *AlertService) EvaluateAlerts(ctx context.Context, userID int64) ([]core.Alert, error) {
	return s.run(ctx, userID, true)
}

// CurrentAlerts is the read-only variant of EvaluateAlerts. It never writes.
func (s *AlertService) CurrentAlerts(ctx context.Context, userID int64) ([]core.Alert, error) {
	ok, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
	}
	return s.run(ctx, userID, false)
}
