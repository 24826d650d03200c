// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carterperez-dev/flashforge/internal/auth"
	"github.com/carterperez-dev/flashforge/internal/billing"
	"github.com/carterperez-dev/flashforge/internal/config"
	"github.com/carterperez-dev/flashforge/internal/core"
	"github.com/carterperez-dev/flashforge/internal/flashcard"
	"github.com/carterperez-dev/flashforge/internal/health"
	"github.com/carterperez-dev/flashforge/internal/inference"
	"github.com/carterperez-dev/flashforge/internal/middleware"
	"github.com/carterperez-dev/flashforge/internal/payment"
	"github.com/carterperez-dev/flashforge/internal/quota"
	"github.com/carterperez-dev/flashforge/internal/server"
	"github.com/carterperez-dev/flashforge/internal/study"
	"github.com/carterperez-dev/flashforge/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		applied, migErr := db.Migrate(ctx)
		if migErr != nil {
			return migErr
		}
		logger.Info("database migrated", "applied", applied)
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	tokens, err := auth.NewTokenManager(cfg.Session)
	if err != nil {
		return err
	}

	generator, generatorCloser, err := inference.NewGenerator(ctx, cfg.Inference)
	if err != nil {
		return err
	}
	logger.Info("inference backend ready",
		"provider", cfg.Inference.Provider,
		"model", cfg.Inference.Model,
	)

	tracker := quota.NewTracker(cfg.Quota.FreePrompts)
	paystack := payment.NewClient(cfg.Paystack)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, tracker)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(redis.Client)
	authSvc := auth.NewService(authRepo, tokens, userSvc)
	authHandler := auth.NewHandler(authSvc, cfg.Session)

	flashcardSvc := flashcard.NewService(flashcard.NewRepository(db.DB))
	flashcardHandler := flashcard.NewHandler(flashcardSvc)

	studySvc := study.NewService(
		userRepo,
		inference.NewClient(generator),
		study.NewUsageRecorder(db.DB, tracker),
		tracker,
	)
	studyHandler := study.NewHandler(studySvc)

	billingSvc := billing.NewService(userRepo, paystack, billing.NewStore(db.DB))
	billingHandler := billing.NewHandler(billingSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Name: "global",
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(authSvc, cfg.Session.CookieName)
	optionalAuth := middleware.OptionalAuth(authSvc, cfg.Session.CookieName)
	generateLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Name: "generate",
			Limit: middleware.PerWindow(
				cfg.RateLimit.GenerateRequests,
				cfg.RateLimit.GenerateBurst,
				cfg.RateLimit.Window,
			),
			KeyFunc:  middleware.KeyByUser,
			FailOpen: true,
		},
	).Handler

	userHandler.RegisterRoutes(router, optionalAuth, authenticator)
	authHandler.RegisterRoutes(router, authenticator)
	studyHandler.RegisterRoutes(router, authenticator, generateLimiter)
	flashcardHandler.RegisterRoutes(router, authenticator)
	billingHandler.RegisterRoutes(router, authenticator)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := generatorCloser.Close(); err != nil {
		logger.Error("inference client close error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
