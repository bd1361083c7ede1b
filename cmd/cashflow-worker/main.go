package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"cashflow/internal/cli"
	"cashflow/internal/log"
	"cashflow/internal/worker"
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
	logger.Info("Starting cashflow-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)
	if res.AMQP == nil {
		logger.Error("Broker unreachable", "exchange", cfg.AMQPExchange)
		if res.Cleanup != nil {
			_ = res.Cleanup()
		}
		os.Exit(1)
	}
	app := cli.NewApp(res, cfg, logger)
	alertWorker := worker.NewAlertWorker(app.Alerts, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err.Error())
			}
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return res.AMQP.ConsumeExpenseRecorded(gctx, alertWorker.HandleExpenseRecorded)
	})
	if cfg.AMQPAlertQueue != "" {
		g.Go(func() error {
			return res.AMQP.ConsumeThresholdBreached(gctx, alertWorker.HandleThresholdBreached)
		})
	}

	logger.Info("Consuming messages",
		"queue", cfg.AMQPQueue,
		"alert_queue", cfg.AMQPAlertQueue)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
