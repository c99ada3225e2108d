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

	"github.com/sipertani/sipertani/internal/admin"
	"github.com/sipertani/sipertani/internal/app"
	"github.com/sipertani/sipertani/internal/auth"
	"github.com/sipertani/sipertani/internal/backend"
	"github.com/sipertani/sipertani/internal/buyer"
	"github.com/sipertani/sipertani/internal/manager"
	"github.com/sipertani/sipertani/internal/observability"
	"github.com/sipertani/sipertani/internal/pages"
	"github.com/sipertani/sipertani/internal/platform/cache"
	"github.com/sipertani/sipertani/internal/rbac"
	"github.com/sipertani/sipertani/internal/resource"
	"github.com/sipertani/sipertani/internal/shared"
	"github.com/sipertani/sipertani/internal/view"
	"github.com/sipertani/sipertani/jobs"
	"github.com/sipertani/sipertani/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "sipertani_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	submitGuard := shared.NewSubmitGuard(redisClient, 30*time.Minute)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	backendClient := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout,
		backend.WithMetrics(backend.NewMetrics(metrics.Registerer())))

	authService := auth.NewService(backendClient)
	rbacMiddleware := rbac.Middleware{Logger: logger, Profile: authService.Profile}

	queueOpts := cfg.Redis().QueueOpts()
	jobClient := jobs.NewClient(queueOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(queueOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	kit := &pages.Kit{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrfManager,
		Backend:   backendClient,
		Policy:    resource.ParsePolicy(cfg.OwnershipPolicy),
		Recorder:  jobClient,
		Fallback:  cfg.FallbackSamples,
	}

	reportClient := report.NewClient(cfg.GotenbergURL, 30*time.Second)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    auth.NewHandler(logger, authService, kit),
		AdminHandler:   admin.NewHandler(kit, rbacMiddleware),
		ManagerHandler: manager.NewHandler(kit, rbacMiddleware),
		BuyerHandler:   buyer.NewHandler(kit, rbacMiddleware, submitGuard, reportClient),
		ReportHandler:  report.NewHandler(reportClient, logger),
		JobHandler:     jobs.NewHandler(inspector, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("backend", cfg.BackendURL),
			slog.String("ownership_policy", string(kit.Policy)),
		)
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
