package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"cashflow/internal/cache"
	"cashflow/internal/cli"
	apphttp "cashflow/internal/http"
	"cashflow/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg, cfgErr := cli.LoadConfig()
	if cfgErr != nil {
		logger := cli.SetupLogger(os.Stdout, "info", "text")
		logger.Error("Configuration validation failed", log.FieldError, cfgErr.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	res := cli.InitBackend(context.Background(), logger, cfg)
	app := cli.NewApp(res, cfg, logger)

	caches := cache.NewManager(logger)
	if app.StatsCache != nil {
		caches.Register(app.StatsCache)
		caches.StartCleanup(cfg.StatsCacheTTL)
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrendMonthsDefault: cfg.TrendMonthsDefault,
		TrendMonthsMax:     cfg.TrendMonthsMax,
	}, apphttp.Services{
		Thresholds: app.Thresholds,
		Alerts:     app.Alerts,
		Stats:      app.Stats,
		StatsCache: app.StatsCache,
		Expenses:   app.Expenses,
		Accounts:   app.Accounts,
		Ready:      res.Ping,
	}, logger)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		caches.Stop()
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err.Error())
			}
		}
	})

	logger.Info("Starting cashflow server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp", res.AMQP != nil,
		"stats_cache", app.StatsCache != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
