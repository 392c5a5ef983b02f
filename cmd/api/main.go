package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/krakatau-dev/helpdesk/internal/api/http"
	"github.com/krakatau-dev/helpdesk/internal/api/http/handlers"
	"github.com/krakatau-dev/helpdesk/internal/auth"
	"github.com/krakatau-dev/helpdesk/internal/cache"
	"github.com/krakatau-dev/helpdesk/internal/config"
	"github.com/krakatau-dev/helpdesk/internal/events"
	"github.com/krakatau-dev/helpdesk/internal/observability"
	"github.com/krakatau-dev/helpdesk/internal/persistence"
	"github.com/krakatau-dev/helpdesk/internal/repository"
	"github.com/krakatau-dev/helpdesk/internal/service"
	"github.com/krakatau-dev/helpdesk/internal/worker"
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

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	technicianRepo := repository.NewTechnicianRepository(pool)

	assignmentService := service.NewAssignmentService(technicianRepo, logger)
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		TicketRepo:      ticketRepo,
		HistoryRepo:     historyRepo,
		CategoryRepo:    categoryRepo,
		ApplicationRepo: applicationRepo,
		TechnicianRepo:  technicianRepo,
		Assigner:        assignmentService,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	escalationService := service.NewEscalationService(ticketRepo, historyRepo, dispatcher, logger)
	technicianService := service.NewTechnicianService(technicianRepo, ticketRepo)
	catalogService := service.NewCatalogService(applicationRepo, categoryRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	statsCache := cache.NewStatsCache(redis.Client, logger)
	statsCache.RegisterInvalidation(dispatcher)
	statsService := service.NewStatsService(ticketRepo, categoryRepo, statsCache, logger)

	worker.StartNotificationWorker(notificationService, logger)
	if cfg.Escalation.Enabled {
		escalationWorker := worker.NewEscalationWorker(escalationService, metrics, logger, cfg.Escalation.SweepInterval())
		go escalationWorker.Run(ctx)
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)
	actorMiddleware := auth.NewActorMiddleware(tokenManager, technicianRepo)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Catalog:         handlers.NewCatalogHandler(catalogService),
		Tickets:         handlers.NewTicketsHandler(lifecycleService),
		Technicians:     handlers.NewTechniciansHandler(technicianService, assignmentService),
		Escalations:     handlers.NewEscalationsHandler(escalationService, metrics),
		Dashboard:       handlers.NewDashboardHandler(statsService, metrics),
		ActorMiddleware: actorMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
