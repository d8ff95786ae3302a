package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/uts-support/ticket-service/internal/api/http"
	"github.com/uts-support/ticket-service/internal/api/http/handlers"
	"github.com/uts-support/ticket-service/internal/config"
	"github.com/uts-support/ticket-service/internal/events"
	"github.com/uts-support/ticket-service/internal/lifecycle"
	"github.com/uts-support/ticket-service/internal/observability"
	"github.com/uts-support/ticket-service/internal/persistence"
	"github.com/uts-support/ticket-service/internal/repository"
	"github.com/uts-support/ticket-service/internal/service"
	"github.com/uts-support/ticket-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	diagnosticsRepo := repository.NewDiagnosticsRepository(pool)
	directoryRepo := repository.NewDirectoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()
	viewCache := persistence.NewTicketViewCache(redis, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:      ticketRepo,
		CommentRepo:     commentRepo,
		HistoryRepo:     historyRepo,
		DiagnosticsRepo: diagnosticsRepo,
		DirectoryRepo:   directoryRepo,
		Cache:           viewCache,
		Dispatcher:      dispatcher,
		Targets: lifecycle.Targets{
			TTA: cfg.SLA.TTAHours,
			TTT: cfg.SLA.TTTHours,
			TTR: cfg.SLA.TTRHours,
			TTL: cfg.SLA.TTLHours,
		},
		Logger: logger,
	})
	diagnosticsService := service.NewDiagnosticsService(diagnosticsRepo, logger)
	directoryService := service.NewDirectoryService(directoryRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets:     handlers.NewTicketsHandler(ticketService),
		Diagnostics: handlers.NewDiagnosticsHandler(diagnosticsService, logger),
		Directory:   handlers.NewDirectoryHandler(directoryService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
