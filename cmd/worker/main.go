package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/quotedesk/quotedesk/internal/app"
	"github.com/quotedesk/quotedesk/internal/masterdata/accounts"
	"github.com/quotedesk/quotedesk/internal/masterdata/contacts"
	"github.com/quotedesk/quotedesk/internal/masterdata/products"
	"github.com/quotedesk/quotedesk/internal/observability"
	"github.com/quotedesk/quotedesk/internal/platform/db"
	"github.com/quotedesk/quotedesk/internal/sales/export"
	"github.com/quotedesk/quotedesk/internal/sales/quotations"
	"github.com/quotedesk/quotedesk/jobs"
	"github.com/quotedesk/quotedesk/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()

	accountsService := accounts.NewService(accounts.NewRepository(pool))
	contactsService := contacts.NewService(contacts.NewRepository(pool))
	productsService := products.NewService(products.NewRepository(pool))

	gotenberg := report.NewClient(cfg.GotenbergURL)
	quoteRenderer, err := export.NewQuoteRenderer(gotenberg, accountsService, contactsService, productsService, cfg.QuoteCurrency)
	if err != nil {
		logger.Error("init quote renderer", slog.Any("error", err))
		os.Exit(1)
	}

	quotationsRepo := quotations.NewRepository(pool)
	quotationsService := quotations.NewService(quotationsRepo, accountsService, metrics)

	emailJob := &jobs.QuoteEmailJob{
		Quotes:   quotationsService,
		Renderer: quoteRenderer,
		Mailer: &jobs.SMTPMailer{
			Addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
			From: cfg.SMTPFrom,
		},
		From:   cfg.SMTPFrom,
		Logger: logger,
	}
	expiryJob := jobs.NewExpiryScanJob(quotationsRepo, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeQuoteEmail, Handler: emailJob.Handle},
			{Type: jobs.TaskTypeExpiryScan, Handler: expiryJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: jobs.NewExpiryScanTask(), Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
