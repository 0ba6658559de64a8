// Package main provides the entry point for the catalog service HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/libraria/catalog-service/internal/cache"
	"github.com/libraria/catalog-service/internal/config"
	"github.com/libraria/catalog-service/internal/database"
	"github.com/libraria/catalog-service/internal/events"
	"github.com/libraria/catalog-service/internal/observability"
	"github.com/libraria/catalog-service/internal/repository"
	httpserver "github.com/libraria/catalog-service/internal/server/http"
	"github.com/libraria/catalog-service/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("catalog-service server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	// Run migrations if configured.
	if cfg.Database.MigrationAutoRun {
		migrator, err := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			if closeErr := migrator.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close migrator")
			}
		}()

		if err := migrator.Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Metrics.
	metrics := observability.NewMetrics("catalog")

	// Entity cache: Redis when enabled, no-op otherwise.
	var entityCache cache.EntityCache
	if cfg.Cache.Enabled {
		redisCache := cache.NewRedis(cfg.Cache, logger)
		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() {
			if closeErr := redisCache.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close redis client")
			}
		}()
		entityCache = redisCache
		logger.Info().Str("address", cfg.Cache.Address).Msg("redis cache connected")
	} else {
		entityCache = cache.NewNoop()
		logger.Info().Msg("entity cache disabled")
	}

	// Book event publisher: Kafka when enabled.
	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer func() {
			if closeErr := kafkaPublisher.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close kafka writer")
			}
		}()
		publisher = kafkaPublisher
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka publisher ready")
	} else {
		publisher = events.NewNoopPublisher()
		logger.Info().Msg("event publishing disabled")
	}

	// Repositories.
	authorRepo := repository.NewPgAuthorRepository(db)
	genreRepo := repository.NewPgGenreRepository(db)
	bookRepo := repository.NewPgBookRepository(db)

	// Services.
	pageDefaults := repository.PageDefaults{
		Page: cfg.Pagination.DefaultPage,
		Size: cfg.Pagination.DefaultSize,
		Sort: cfg.Pagination.DefaultSort,
	}
	authorService := service.NewAuthorService(authorRepo, entityCache, metrics, logger, pageDefaults)
	genreService := service.NewGenreService(genreRepo, entityCache, metrics, logger, pageDefaults)
	bookService := service.NewBookService(
		db, bookRepo, authorRepo, genreRepo, entityCache, publisher, metrics, logger,
		service.BookServiceConfig{
			PageDefaults:    pageDefaults,
			UploadBatchSize: cfg.Upload.BatchSize,
		},
	)

	// HTTP server.
	server := httpserver.NewServer(
		httpserver.Config{
			Address:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsPath:    cfg.Metrics.Path,
		},
		authorService, genreService, bookService,
		db, metrics, logger,
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
