package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/incident-portal/internal/api/http"
	"github.com/spec-kit/incident-portal/internal/api/http/handlers"
	"github.com/spec-kit/incident-portal/internal/auth"
	"github.com/spec-kit/incident-portal/internal/cache"
	"github.com/spec-kit/incident-portal/internal/config"
	"github.com/spec-kit/incident-portal/internal/crm"
	"github.com/spec-kit/incident-portal/internal/events"
	"github.com/spec-kit/incident-portal/internal/observability"
	"github.com/spec-kit/incident-portal/internal/persistence"
	"github.com/spec-kit/incident-portal/internal/repository"
	"github.com/spec-kit/incident-portal/internal/service"
	"github.com/spec-kit/incident-portal/internal/validation"
	"github.com/spec-kit/incident-portal/internal/worker"
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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	backend, err := newBackend(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init crm backend", zap.Error(err))
	}

	var (
		revoked    auth.RevocationStore
		staffCache cache.StaffCache
	)
	if redis.Reachable {
		revoked = auth.NewRedisRevocationStore(redis.Client)
		staffCache = cache.NewRedisStaffCache(redis.Client, cfg.Cache.StaffTTL())
	} else {
		revoked = auth.NewMemoryRevocationStore()
		staffCache = cache.NewMemoryStaffCache(cfg.Cache.StaffTTL())
	}

	var transitions repository.TransitionRepository
	if pg.Enabled() {
		transitions = repository.NewTransitionRepository(pg.PoolHandle())
	} else {
		logger.Warn("transition audit kept in memory; it is lost on restart")
		transitions = repository.NewMemoryTransitionRepository()
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	validator := validation.New(validation.Policy{
		AllowedEmailDomain: cfg.Policy.AllowedEmailDomain,
		MinPasswordLength:  cfg.Policy.MinPasswordLength,
	})

	staffService := service.NewStaffService(service.StaffDependencies{
		Backend:    backend,
		Cache:      staffCache,
		Validator:  validator,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	incidentService := service.NewIncidentService(service.IncidentDependencies{
		Backend:     backend,
		Staff:       staffService,
		Transitions: transitions,
		Validator:   validator,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	authService := service.NewAuthService(backend, tokens, revoked, logger)
	chatService := service.NewChatService(backend, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(dispatcher, notificationService, service.NewTransitionRecorder(transitions))

	refresher, err := worker.NewStaffDirectoryRefresher(staffService, cfg.Cache.StaffRefreshSchedule, cfg.CRM.Timeout(), logger)
	if err != nil {
		logger.Fatal("failed to schedule staff refresh", zap.Error(err))
	}
	refresher.Start()

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:             logger,
		Metrics:            metrics,
		Timeout:            cfg.App.RequestTimeout(),
		CORSOrigins:        cfg.HTTP.CORSOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(handlers.HealthConfig{
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			CRMMode:     string(cfg.CRM.Mode),
			Postgres:    pg,
			Redis:       redis,
			Metrics:     metrics,
		}),
		Auth:           handlers.NewAuthHandler(authService, validator),
		Incidents:      handlers.NewIncidentsHandler(incidentService, validator),
		Chat:           handlers.NewChatHandler(chatService, validator),
		Staff:          handlers.NewStaffHandler(staffService, validator),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, revoked, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	refresher.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func newBackend(cfg *config.Config, logger *zap.Logger) (crm.Backend, error) {
	if cfg.CRM.Mode == config.CRMModeHTTP {
		logger.Info("using crm http backend")
		return crm.NewHTTPClient(cfg.CRM, logger), nil
	}
	seed, err := crm.LoadSeed(cfg.CRM.SeedFile)
	if err != nil {
		return nil, err
	}
	logger.Warn("using in-memory crm backend with seed data", zap.String("seed_file", cfg.CRM.SeedFile))
	return crm.NewMemory(seed, cfg.Auth.BcryptCost)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
