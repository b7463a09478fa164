package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/sitetrack/sitetrack/internal/app"
	"github.com/sitetrack/sitetrack/internal/auth"
	"github.com/sitetrack/sitetrack/internal/authz"
	"github.com/sitetrack/sitetrack/internal/catalog"
	"github.com/sitetrack/sitetrack/internal/ledger"
	"github.com/sitetrack/sitetrack/internal/notify"
	"github.com/sitetrack/sitetrack/internal/observability"
	"github.com/sitetrack/sitetrack/internal/payments"
	"github.com/sitetrack/sitetrack/internal/platform/cache"
	"github.com/sitetrack/sitetrack/internal/platform/db"
	"github.com/sitetrack/sitetrack/internal/platform/storage"
	"github.com/sitetrack/sitetrack/internal/projects"
	"github.com/sitetrack/sitetrack/internal/shared"
	"github.com/sitetrack/sitetrack/internal/warehouse"
)

// paymentsProjectPort adapts the projects service to the narrower port
// the payments service consumes.
type paymentsProjectPort struct {
	projects *projects.Service
}

func (p paymentsProjectPort) GetProjectInfo(ctx context.Context, projectID int64) (payments.ProjectInfo, error) {
	project, err := p.projects.Get(ctx, projectID)
	if err != nil {
		return payments.ProjectInfo{}, err
	}
	return payments.ProjectInfo{ID: project.ID, Name: project.Name}, nil
}

func main() {
	_ = godotenv.Load()

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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "sitetrack_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	locker := shared.NewRedisLocker(redisClient, 10*time.Second)
	metrics := observability.NewMetrics()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()
	notifier := notify.NewAsynqDispatcher(asynqClient, logger)

	authRepo := auth.NewRepository(pool)
	otpStore := auth.NewOTPStore(redisClient)
	googleIdentity := auth.NewOAuthGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	var google auth.GoogleIdentity
	if googleIdentity != nil {
		google = googleIdentity
	}
	authService := auth.NewService(authRepo, otpStore, google, notifier, logger)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	authzMW := authz.Middleware{Subjects: authService, Logger: logger}

	warehouseRepo := warehouse.NewRepository(pool)
	warehouseMirror := warehouse.NewMirror(redisClient)
	warehouseService := warehouse.NewService(warehouseRepo, warehouseMirror, logger)
	warehouseHandler := warehouse.NewHandler(logger, warehouseService, authzMW)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService, authzMW)

	photoStorage, err := storage.NewLocal(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		logger.Error("init upload storage", slog.Any("error", err))
		os.Exit(1)
	}
	projectsRepo := projects.NewRepository(pool)
	projectsService := projects.NewService(projectsRepo, photoStorage, notifier, auditLogger, logger)
	projectsHandler := projects.NewHandler(logger, projectsService, authzMW)

	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(paymentsRepo, paymentsProjectPort{projects: projectsService}, notifier, auditLogger, logger)
	paymentsHandler := payments.NewHandler(logger, paymentsService, authzMW)

	ledgerRepo := ledger.NewRepository(pool)
	snapshotCache := ledger.NewSnapshotCache(redisClient, cfg.SnapshotCacheTTL, logger)
	ledgerService := ledger.NewService(ledgerRepo, warehouseService, catalogService, projectsService, snapshotCache, locker, notifier, auditLogger, logger).
		WithMetrics(metrics)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, authzMW)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Metrics:          metrics,
		AuthHandler:      authHandler,
		ProjectsHandler:  projectsHandler,
		LedgerHandler:    ledgerHandler,
		CatalogHandler:   catalogHandler,
		WarehouseHandler: warehouseHandler,
		PaymentsHandler:  paymentsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
