package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okean-yachts/okean-cpq/internal/app"
	"github.com/okean-yachts/okean-cpq/internal/catalog/memorial"
	"github.com/okean-yachts/okean-cpq/internal/catalog/models"
	"github.com/okean-yachts/okean-cpq/internal/catalog/options"
	jobmetrics "github.com/okean-yachts/okean-cpq/internal/jobs"
	"github.com/okean-yachts/okean-cpq/internal/pricing/limits"
	reportsvc "github.com/okean-yachts/okean-cpq/internal/report"
	"github.com/okean-yachts/okean-cpq/internal/sales/atos"
	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
	"github.com/okean-yachts/okean-cpq/internal/sales/customizations"
	"github.com/okean-yachts/okean-cpq/internal/sales/quotations"
	"github.com/okean-yachts/okean-cpq/jobs"
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	quotationsRepo := quotations.NewRepository(dbpool)
	modelsRepo := models.NewRepository(dbpool)
	optionsRepo := options.NewRepository(dbpool)
	memorialRepo := memorial.NewRepository(dbpool)
	contractsRepo := contracts.NewRepository(dbpool)
	custRepo := customizations.NewRepository(dbpool)
	snapshotSource := customizations.NewSnapshotSource(custRepo)
	atosService := atos.NewService(atos.NewRepository(dbpool), contractsRepo, optionsRepo, memorialRepo)

	renderer := reportsvc.NewPDFRenderer(cfg.GotenbergURL, http.DefaultClient)
	reportService, err := reportsvc.NewService(renderer, quotationsRepo, modelsRepo, snapshotSource, atosService, contractsRepo)
	if err != nil {
		logger.Error("parse report templates", slog.Any("error", err))
		os.Exit(1)
	}

	limitsCache := limits.NewCache(limits.NewRepository(dbpool), logger, limits.DefaultTTL)

	documentJob := jobs.NewDocumentJob(reportService, cfg.PDFOutputDir, logger, metrics)
	notifyJob := jobs.NewWorkflowNotifyJob(dbpool, jobClient, logger, metrics)
	expiringJob := jobs.NewExpiringQuotationsJob(dbpool, jobClient, logger, metrics)
	limitsJob := jobs.NewLimitsWarmJob(limitsCache, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeQuotationPDF, Handler: documentJob.HandleQuotation},
			{Type: jobs.TaskTypeATOPDF, Handler: documentJob.HandleATO},
			{Type: jobs.TaskTypeWorkflowNotify, Handler: notifyJob.Handle},
			{Type: jobs.TaskTypeExpiringQuotations, Handler: expiringJob.Handle},
			{Type: jobs.TaskTypeLimitsWarm, Handler: limitsJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: jobs.NewLimitsWarmTask()},
			{Spec: "0 8 * * *", Task: jobs.NewExpiringQuotationsTask()},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
