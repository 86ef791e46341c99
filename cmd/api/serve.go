package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/vardast/ops-dashboard/internal/api/http"
	"github.com/vardast/ops-dashboard/internal/api/http/handlers"
	"github.com/vardast/ops-dashboard/internal/ai"
	"github.com/vardast/ops-dashboard/internal/auth"
	"github.com/vardast/ops-dashboard/internal/config"
	"github.com/vardast/ops-dashboard/internal/events"
	"github.com/vardast/ops-dashboard/internal/locale"
	"github.com/vardast/ops-dashboard/internal/observability"
	"github.com/vardast/ops-dashboard/internal/persistence"
	"github.com/vardast/ops-dashboard/internal/repository"
	"github.com/vardast/ops-dashboard/internal/service"
	"github.com/vardast/ops-dashboard/internal/store"
	"github.com/vardast/ops-dashboard/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := events.NewInMemoryDispatcher()

	var (
		gateway   *repository.Gateway
		sessions  repository.SessionRepository
		pgHealth  *persistence.Postgres
		rdbHealth *persistence.Redis
		feed      worker.FeedRunner
	)

	switch cfg.Gateway.Driver {
	case config.GatewayDriverMemory:
		gateway = repository.NewMemoryGateway(dispatcher)
		sessions = repository.NewMemorySessionRepository()
		logger.Info("using in-memory record gateway")
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("failed to connect postgres: %w", err)
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		rdb := persistence.NewRedis(cfg.Redis, logger)
		defer rdb.Close()
		sessions = repository.NewRedisSessionRepository(rdb.Client)
		rdbHealth = rdb

		if pool := pg.PoolHandle(); pool != nil {
			pgHealth = pg
			gateway = repository.NewPostgresGateway(pool)
			feed = repository.NewChangeFeed(pool, dispatcher, logger)
		} else {
			logger.Warn("record gateway not configured; dashboard starts empty")
		}
	}

	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notifications)

	st := store.New(gateway, logger)
	defer st.Close()
	feedDone := worker.StartRecordSync(ctx, st, dispatcher, feed, logger, time.Second)

	generator, err := ai.NewGeminiGenerator(ctx, cfg.AI.GeminiAPIKey, cfg.AI.Model)
	if err != nil {
		return fmt.Errorf("failed to init gemini: %w", err)
	}
	if !generator.Configured() {
		logger.Warn("GEMINI_API_KEY not provided; AI assistance disabled")
	}

	authService, err := service.NewAuthService(cfg.Auth, sessions, logger)
	if err != nil {
		return fmt.Errorf("failed to init auth: %w", err)
	}
	forms := service.NewFormService(service.FormDependencies{
		Gateway:   gateway,
		Store:     st,
		AI:        generator,
		Dates:     locale.NewDateFormatter(cfg.Dashboard.Locale, nil),
		AITimeout: cfg.AI.Timeout(),
		Logger:    logger,
	})
	dashboards := service.NewDashboardService(st, generator, cfg.Dashboard, logger)
	records := service.NewRecordService(st, logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pgHealth, rdbHealth),
		Metrics:           handlers.NewMetricsHandler(metrics),
		Auth:              handlers.NewAuthHandler(authService, forms),
		Dashboard:         handlers.NewDashboardHandler(dashboards),
		Records:           handlers.NewRecordsHandler(records),
		Modal:             handlers.NewModalHandler(forms),
		SessionMiddleware: auth.NewSessionMiddleware(authService),
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("fiber listen: %w", err)
		}
	case sig := <-waitForShutdown():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	<-feedDone
	notifications.Wait()
	return nil
}

func waitForShutdown() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
