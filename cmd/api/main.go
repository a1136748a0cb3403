package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	httptransport "github.com/wardwatch/grievance-service/internal/api/http"
	"github.com/wardwatch/grievance-service/internal/api/http/handlers"
	"github.com/wardwatch/grievance-service/internal/auth"
	"github.com/wardwatch/grievance-service/internal/config"
	"github.com/wardwatch/grievance-service/internal/events"
	"github.com/wardwatch/grievance-service/internal/observability"
	"github.com/wardwatch/grievance-service/internal/persistence"
	"github.com/wardwatch/grievance-service/internal/repository"
	"github.com/wardwatch/grievance-service/internal/service"
	"github.com/wardwatch/grievance-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	objectStore, err := persistence.NewObjectStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init object store", zap.Error(err))
	}
	var images service.ImageStore
	if objectStore != nil {
		images = objectStore
	} else {
		logger.Warn("object storage not configured; image uploads disabled")
	}

	var google auth.GoogleVerifier
	if cfg.Google.ClientID != "" {
		google, err = auth.NewGoogleVerifier(cfg.Google.ClientID)
		if err != nil {
			logger.Fatal("failed to init google verifier", zap.Error(err))
		}
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	userCache := repository.NewCachedUserLookup(userRepo, redis.Handle(), cfg.Redis.UserCacheTTL(), logger)
	complaintRepo := repository.NewComplaintRepository(pool)
	historyRepo := repository.NewComplaintHistoryRepository(pool)
	discussionRepo := repository.NewDiscussionRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:  userRepo,
		UserCache: userCache,
		Google:    google,
		Logger:    logger,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		HistoryRepo:   historyRepo,
		Images:        images,
		Dispatcher:    dispatcher,
		Logger:        logger,
		MaxImageBytes: cfg.Upload.MaxImageBytes,
	})
	statsService := service.NewStatsService(complaintRepo, repository.NewRedisStatsCache(redis.Handle()), cfg.Jobs.StatsCacheTTL(), logger)
	activityStream := repository.NewRedisActivityStream(redis.Handle(), cfg.Activity.StreamKey, cfg.Activity.MaxLen)
	activityService := service.NewActivityService(dispatcher, activityStream, logger)
	discussionService := service.NewDiscussionService(discussionRepo)

	worker.StartActivityWorker(dispatcher, activityService, statsService)
	scheduler := worker.NewScheduler(cfg.Jobs.StatsRefreshSpec, statsService, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userCache)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.BodyLimitBytes,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.App.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaintService, statsService),
		Discussions:    handlers.NewDiscussionsHandler(discussionService),
		Admin:          handlers.NewAdminHandler(activityService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
