package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashflow/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAlertService(f *fixture) *AlertService {
	return NewAlertService(f.store, f.store, f.store, nil).WithClock(f.clock.Now)
}

func TestEvaluateThresholdClassification(t *testing.T) {
	cases := []struct {
		name     string
		spending int64
		wantOK   bool
		wantKind core.AlertKind
		wantPct  float64
		wantMsg  string
	}{
		{"below warning", 75000, false, "", 0, ""},
		{"exactly at warning", 80000, true, core.AlertWarning, 80, "Warning: You have reached 80.0% of your overall expense limit"},
		{"exactly at limit", 100000, true, core.AlertBreach, 100, "ALERT: You have exceeded your overall expense limit by 0.0%"},
		{"over limit", 120000, true, core.AlertBreach, 120, "ALERT: You have exceeded your overall expense limit by 20.0%"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			svc := newAlertService(f)
			th := f.threshold(t, nil, 100000, 80)

			alert, ok, err := svc.EvaluateThreshold(context.Background(), th, core.Money{Cents: tc.spending})
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			if !tc.wantOK {
				return
			}
			assert.Equal(t, tc.wantKind, alert.Kind)
			assert.Equal(t, tc.wantPct, alert.UsagePercentage)
			assert.Equal(t, tc.wantMsg, alert.Message)
			assert.Equal(t, int64(100000), alert.Limit.Cents)
			assert.Equal(t, tc.spending, alert.CurrentSpending.Cents)
		})
	}
}

func TestEvaluateThresholdCategoryMessage(t *testing.T) {
	f := newFixture(t)
	svc := newAlertService(f)
	th := f.threshold(t, &f.food.ID, 30000, 50)

	alert, ok, err := svc.EvaluateThreshold(context.Background(), th, core.Money{Cents: 20000})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Warning: You have reached 66.7% of your Food expense limit", alert.Message)
	assert.Equal(t, 66.67, alert.UsagePercentage)
	assert.Equal(t, &f.food.ID, alert.CategoryID)
}

func TestBreachHysteresis(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	notifier := &recordingNotifier{}
	svc := newAlertService(f).WithNotifier(notifier)
	th := f.threshold(t, nil, 100000, 80)
	breachedAt := f.clock.Now()

	f.spend(t, core.NewDate(2025, 6, 1), 100000, nil)
	alerts, err := svc.EvaluateAlerts(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, core.AlertBreach, alerts[0].Kind)

	got, _ := f.store.GetThreshold(ctx, th.ID)
	require.True(t, got.Breached)
	require.NotNil(t, got.LastAlertSent)
	assert.True(t, got.LastAlertSent.Equal(breachedAt))

	// Still breached later: no re-stamp, no second notification.
	f.clock.Advance(time.Hour)
	f.spend(t, core.NewDate(2025, 6, 2), 5000, nil)
	_, err = svc.EvaluateAlerts(ctx, f.user.ID)
	require.NoError(t, err)
	got, _ = f.store.GetThreshold(ctx, th.ID)
	assert.True(t, got.LastAlertSent.Equal(breachedAt))
	assert.Equal(t, 1, notifier.count())

	// Warning-level usage keeps the flag.
	_, ok, err := svc.EvaluateThreshold(ctx, got, core.Money{Cents: 85000})
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = f.store.GetThreshold(ctx, th.ID)
	assert.True(t, got.Breached)

	// Below the alert percentage resets it.
	_, ok, err = svc.EvaluateThreshold(ctx, got, core.Money{Cents: 10000})
	require.NoError(t, err)
	assert.False(t, ok)
	got, _ = f.store.GetThreshold(ctx, th.ID)
	assert.False(t, got.Breached)
	assert.True(t, got.LastAlertSent.Equal(breachedAt), "reset keeps the last alert timestamp")

	// A fresh breach stamps the new time and notifies again.
	f.clock.Advance(time.Hour)
	_, _, err = svc.EvaluateThreshold(ctx, got, core.Money{Cents: 150000})
	require.NoError(t, err)
	got, _ = f.store.GetThreshold(ctx, th.ID)
	assert.True(t, got.LastAlertSent.Equal(f.clock.Now()))
	assert.Equal(t, 2, notifier.count())
}

func TestStaleBreachEvaluationDoesNotRestamp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAlertService(f)
	th := f.threshold(t, nil, 1000, 80)
	first := f.clock.Now()

	// Two evaluations that both read the threshold before either wrote.
	_, _, err := svc.EvaluateThreshold(ctx, th, core.Money{Cents: 2000})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, _, err = svc.EvaluateThreshold(ctx, th, core.Money{Cents: 2000})
	require.NoError(t, err)

	got, _ := f.store.GetThreshold(ctx, th.ID)
	assert.True(t, got.LastAlertSent.Equal(first))
}

func TestEvaluateThresholdSkipsInvalidConfiguration(t *testing.T) {
	f := newFixture(t)
	counting := &countingStore{ThresholdStore: f.store}
	svc := NewAlertService(f.store, counting, f.store, nil).WithClock(f.clock.Now)

	for _, th := range []core.Threshold{
		{ID: 1, UserID: f.user.ID, Limit: core.Money{Cents: 0}, AlertPercentage: 80, Breached: true},
		{ID: 2, UserID: f.user.ID, Limit: core.Money{Cents: 100}, AlertPercentage: 150},
	} {
		_, ok, err := svc.EvaluateThreshold(context.Background(), th, core.Money{Cents: 500})
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Zero(t, counting.writes.Load())
}

func TestEvaluateAlertsScopesSpendingByCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAlertService(f)
	overall := f.threshold(t, nil, 100000, 80)
	food := f.threshold(t, &f.food.ID, 10000, 80)

	f.spend(t, core.NewDate(2025, 5, 3), 9000, &f.food.ID)
	f.spend(t, core.NewDate(2025, 5, 4), 50000, nil)

	alerts, err := svc.EvaluateAlerts(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, food.ID, alerts[0].ThresholdID)
	assert.Equal(t, int64(9000), alerts[0].CurrentSpending.Cents)
	assert.Equal(t, core.AlertWarning, alerts[0].Kind)

	f.spend(t, core.NewDate(2025, 5, 5), 30000, nil)
	alerts, err = svc.EvaluateAlerts(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, overall.ID, alerts[0].ThresholdID, "store order")
	assert.Equal(t, int64(89000), alerts[0].CurrentSpending.Cents)
}

func TestEvaluateAlertsIgnoresInactiveThresholds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAlertService(f)
	th := f.threshold(t, nil, 100, 80)
	inactive := false
	_, err := NewThresholdService(f.store, f.store, f.store, f.store, nil).
		UpdateThreshold(ctx, th.ID, ThresholdRequest{Active: &inactive})
	require.NoError(t, err)

	f.spend(t, core.NewDate(2025, 6, 1), 500, nil)
	alerts, err := svc.EvaluateAlerts(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestCurrentAlertsIsReadOnlyAndIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	counting := &countingStore{ThresholdStore: f.store}
	svc := NewAlertService(f.store, counting, f.store, nil).WithClock(f.clock.Now)
	th := f.threshold(t, nil, 1000, 80)
	f.spend(t, core.NewDate(2025, 6, 1), 1200, nil)

	first, err := svc.CurrentAlerts(ctx, f.user.ID)
	require.NoError(t, err)
	second, err := svc.CurrentAlerts(ctx, f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Equal(t, core.AlertBreach, first[0].Kind)
	assert.Zero(t, counting.writes.Load())

	got, _ := f.store.GetThreshold(ctx, th.ID)
	assert.False(t, got.Breached)
}

func TestCurrentAlertsUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := newAlertService(f).CurrentAlerts(context.Background(), 999)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestEvaluateAlertsPropagatesLedgerFailure(t *testing.T) {
	f := newFixture(t)
	f.threshold(t, nil, 1000, 80)
	svc := NewAlertService(failingReader{}, f.store, f.store, nil)

	_, err := svc.EvaluateAlerts(context.Background(), f.user.ID)
	assert.ErrorIs(t, err, errLedgerDown)
}

func TestNotifierFailureDoesNotFailEvaluation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	notifier := &recordingNotifier{err: errors.New("broker down")}
	svc := newAlertService(f).WithNotifier(notifier)
	th := f.threshold(t, nil, 1000, 80)

	_, ok, err := svc.EvaluateThreshold(ctx, th, core.Money{Cents: 1000})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, notifier.count())
	got, _ := f.store.GetThreshold(ctx, th.ID)
	assert.True(t, got.Breached)
}
