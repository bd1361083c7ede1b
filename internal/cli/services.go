package cli

import (
	"cashflow/internal/backend"
	"cashflow/internal/cache"
	"cashflow/internal/config"
	"cashflow/internal/log"
	"cashflow/internal/services"
)

// App holds the services built on top of an opened backend.
type App struct {
	Alerts     *services.AlertService
	Stats      *services.StatsService
	Thresholds *services.ThresholdService
	Expenses   *services.ExpenseService
	Accounts   *services.AccountService
	// StatsCache is nil unless STATS_CACHE_TTL is positive.
	StatsCache *cache.StatsCache
}

// NewApp wires the services. With a broker, breaches are announced on the
// alert queue and expense writes on a shared store hand evaluation to the
// worker; otherwise evaluation runs inline.
func NewApp(res *backend.BackendResult, cfg *config.Config, logger *log.Logger) *App {
	store := res.Backend

	alerts := services.NewAlertService(store, store, store, logger)
	if res.AMQP != nil {
		alerts.WithNotifier(res.AMQP)
	}

	stats := services.NewStatsService(store, logger)
	expenses := services.NewExpenseService(store, alerts, expensePublisher(res, cfg), logger)

	app := &App{
		Alerts:     alerts,
		Stats:      stats,
		Thresholds: services.NewThresholdService(store, store, store, store, logger),
		Expenses:   expenses,
		Accounts:   services.NewAccountService(store, store, logger),
	}
	if cfg.StatsCacheEnabled() {
		app.StatsCache = cache.NewStatsCache(stats, cfg.StatsCacheSize, cfg.StatsCacheTTL)
		expenses.OnWrite(app.StatsCache.InvalidateUser)
	}
	return app
}

// expensePublisher returns nil for the memory backend: a worker process has
// its own in-memory store and would never see the expense or the threshold.
func expensePublisher(res *backend.BackendResult, cfg *config.Config) services.ExpensePublisher {
	if res.AMQP == nil || backend.BackendType(cfg.DataBackend) == backend.MemoryBackend {
		return nil
	}
	return res.AMQP
}
