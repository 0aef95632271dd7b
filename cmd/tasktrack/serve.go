package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/tasktrack/tasktrack/internal/app"
	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/observability"
	"github.com/tasktrack/tasktrack/internal/platform/cache"
	"github.com/tasktrack/tasktrack/internal/platform/db"
	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/stats"
	"github.com/tasktrack/tasktrack/internal/todos"
	"github.com/tasktrack/tasktrack/internal/users"
	"github.com/tasktrack/tasktrack/jobs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return serve(cmd.Context(), cfg, app.NewLogger(cfg))
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns, ConnectTimeout: 10 * time.Second})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer dbpool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, dbpool); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, stats cache disabled", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	codec, err := auth.NewTokenCodec([]byte(cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("init token codec: %w", err)
	}

	usersRepo := users.NewRepository(dbpool)
	authMiddleware := auth.Middleware{
		Resolver: auth.NewResolver(codec, usersRepo, logger),
		Logger:   logger,
		Metrics:  metrics,
	}
	rbacMiddleware := rbac.Middleware{Logger: logger, Metrics: metrics}

	authService := auth.NewService(usersRepo, codec, nil)
	authHandler := auth.NewHandler(logger, authService)

	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	statsRepo := stats.NewRepository(dbpool)
	statsCache := stats.NewCache(redisClient, cfg.StatsCacheTTL)
	statsService := stats.NewService(statsRepo, statsCache, logger)
	statsHandler := stats.NewHandler(logger, statsService)

	todosRepo := todos.NewRepository(dbpool)
	todosService := todos.NewService(todosRepo, statsService, logger)
	todosHandler := todos.NewHandler(logger, todosService, rbacMiddleware, cfg.AuthzConcealForeign)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	if _, err := jobClient.EnqueueStatsWarmup(ctx, "startup"); err != nil {
		logger.Warn("enqueue stats warmup", slog.Any("error", err))
	}

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthMiddleware: authMiddleware,
		RBACMiddleware: rbacMiddleware,
		AuthHandler:    authHandler,
		TodosHandler:   todosHandler,
		UsersHandler:   usersHandler,
		StatsHandler:   statsHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
