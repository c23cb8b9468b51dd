package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/okean-yachts/okean-cpq/cmd/okean/cli"
	"github.com/okean-yachts/okean-cpq/internal/app"
	"github.com/okean-yachts/okean-cpq/internal/auth"
	"github.com/okean-yachts/okean-cpq/internal/catalog/hulls"
	"github.com/okean-yachts/okean-cpq/internal/catalog/memorial"
	"github.com/okean-yachts/okean-cpq/internal/catalog/models"
	"github.com/okean-yachts/okean-cpq/internal/catalog/options"
	"github.com/okean-yachts/okean-cpq/internal/observability"
	"github.com/okean-yachts/okean-cpq/internal/pricing/limits"
	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
	"github.com/okean-yachts/okean-cpq/internal/rbac"
	reportsvc "github.com/okean-yachts/okean-cpq/internal/report"
	"github.com/okean-yachts/okean-cpq/internal/roles"
	"github.com/okean-yachts/okean-cpq/internal/sales/approvals"
	"github.com/okean-yachts/okean-cpq/internal/sales/atos"
	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
	"github.com/okean-yachts/okean-cpq/internal/sales/customizations"
	"github.com/okean-yachts/okean-cpq/internal/sales/quotations"
	"github.com/okean-yachts/okean-cpq/internal/shared"
	"github.com/okean-yachts/okean-cpq/internal/users"
	"github.com/okean-yachts/okean-cpq/jobs"
	"github.com/okean-yachts/okean-cpq/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		runJobsCommand(os.Args[2:])
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "okean_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, rbacService, sessionManager)

	auditLogger := shared.NewAuditLogger(dbpool)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, rbacService, rbacMiddleware)
	rolesHandler := roles.NewHandler(logger, rbacService, rbacMiddleware)
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService, rbacMiddleware)

	modelsRepo := models.NewRepository(dbpool)
	modelsHandler := models.NewHandler(logger, models.NewService(modelsRepo), rbacMiddleware)
	optionsRepo := options.NewRepository(dbpool)
	optionsHandler := options.NewHandler(logger, options.NewService(optionsRepo), rbacMiddleware)
	memorialRepo := memorial.NewRepository(dbpool)
	memorialHandler := memorial.NewHandler(logger, memorial.NewService(memorialRepo), rbacMiddleware)
	hullsRepo := hulls.NewRepository(dbpool)
	hullsService := hulls.NewService(hullsRepo)
	hullsHandler := hulls.NewHandler(logger, hullsService, rbacMiddleware)

	limitsRepo := limits.NewRepository(dbpool)
	limitsCache := limits.NewCache(limitsRepo, logger, limits.DefaultTTL)
	limitsService := limits.NewService(limitsRepo, limitsCache, auditLogger)
	limitsHandler := limits.NewHandler(logger, limitsService)
	engine := policy.NewEngine(limitsCache)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	quotationsRepo := quotations.NewRepository(dbpool)
	approvalsRepo := approvals.NewRepository(dbpool)
	approvalsService := approvals.NewService(approvalsRepo, quotationsRepo, engine, auditLogger)
	quotationsService := quotations.NewService(quotationsRepo, modelsRepo, optionsRepo, memorialRepo, engine, approvalsRepo, jobClient)
	quotationsHandler := quotations.NewHandler(logger, quotationsService, rbacService, rbacMiddleware)
	approvalsHandler := approvals.NewHandler(logger, approvalsService, rbacService, rbacMiddleware)

	custRepo := customizations.NewRepository(dbpool)
	snapshotSource := customizations.NewSnapshotSource(custRepo)

	contractsRepo := contracts.NewRepository(dbpool)
	contractsService := contracts.NewService(contractsRepo, quotationsRepo, hullsService, snapshotSource)
	contractsHandler := contracts.NewHandler(logger, contractsService, rbacMiddleware)

	custService := customizations.NewService(custRepo, quotationsRepo, approvalsService, limitsCache, limitsCache, jobClient)
	custHandler := customizations.NewHandler(logger, custService, rbacMiddleware)

	atosRepo := atos.NewRepository(dbpool)
	atosService := atos.NewService(atosRepo, contractsRepo, optionsRepo, memorialRepo)
	atosHandler := atos.NewHandler(logger, atosService, rbacMiddleware)

	renderer := reportsvc.NewPDFRenderer(cfg.GotenbergURL, http.DefaultClient)
	reportService, err := reportsvc.NewService(renderer, quotationsRepo, modelsRepo, snapshotSource, atosService, contractsRepo)
	if err != nil {
		logger.Error("parse report templates", slog.Any("error", err))
		os.Exit(1)
	}
	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, reportService, rbacMiddleware, logger)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,

		AuthHandler:          authHandler,
		UsersHandler:         usersHandler,
		RolesHandler:         rolesHandler,
		PermissionsHandler:   permissionsHandler,
		ModelsHandler:        modelsHandler,
		OptionsHandler:       optionsHandler,
		MemorialHandler:      memorialHandler,
		HullsHandler:         hullsHandler,
		LimitsHandler:        limitsHandler,
		QuotationsHandler:    quotationsHandler,
		ApprovalsHandler:     approvalsHandler,
		ContractsHandler:     contractsHandler,
		ATOsHandler:          atosHandler,
		CustomizationHandler: custHandler,
		ReportHandler:        reportHandler,
		JobHandler:           jobHandler,

		RBACMiddleware: rbacMiddleware,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// runJobsCommand handles `okean jobs trigger <name>` and `okean jobs stats`
// without booting the full HTTP runtime.
func runJobsCommand(args []string) {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}
	jobsCLI, err := cli.NewJobsCLI(redisAddr)
	if err != nil {
		slog.Default().Error("jobs cli", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		_ = jobsCLI.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch {
	case len(args) >= 2 && args[0] == "trigger":
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			slog.Default().Error("trigger job", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Default().Info("job enqueued", slog.String("id", info.ID), slog.String("type", info.Type))
	case len(args) >= 1 && args[0] == "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			slog.Default().Error("inspect queue", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Default().Info("queue stats",
			slog.String("queue", stats.Queue),
			slog.Int("pending", stats.Pending),
			slog.Int("active", stats.Active),
			slog.Int("scheduled", stats.Scheduled),
			slog.Int("retry", stats.Retry))
	default:
		slog.Default().Error("usage: okean jobs trigger <name> | okean jobs stats")
		os.Exit(1)
	}
}
