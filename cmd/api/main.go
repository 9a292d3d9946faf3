package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solidarios/api/internal/auth"
	"github.com/solidarios/api/internal/category"
	"github.com/solidarios/api/internal/config"
	"github.com/solidarios/api/internal/db"
	"github.com/solidarios/api/internal/distribution"
	internalhttp "github.com/solidarios/api/internal/http"
	"github.com/solidarios/api/internal/inventory"
	"github.com/solidarios/api/internal/item"
	"github.com/solidarios/api/internal/monitor"
	"github.com/solidarios/api/internal/repo"
	"github.com/solidarios/api/internal/service"
	"github.com/solidarios/api/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setupLogger(cfg)

	if cfg.DBMigrate {
		if err := migrateUp(cfg.DBDSN); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	queries := repo.New(pool)
	itemRepo := item.NewRepository(pool)
	inventoryService := inventory.NewService(inventory.NewRepository(pool))
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)

	var notifier monitor.Notifier
	if slack := monitor.NewSlackNotifier(cfg.Monitoring.SlackWebhookURL); slack != nil {
		notifier = slack
	}
	jobs := monitor.NewService(inventoryService, queries, cfg.Monitoring, log.Logger, notifier)
	if err := jobs.Start(ctx); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}

	handler, err := internalhttp.NewRouter(internalhttp.Deps{
		Config:        cfg,
		JWT:           jwtManager,
		Auth:          service.NewAuthService(queries, redisClient, jwtManager, cfg.JWTRefreshTTL),
		Users:         service.NewUserService(queries),
		Categories:    category.NewService(category.NewRepository(pool), redisClient),
		Items:         item.NewService(itemRepo, queries, store),
		Inventory:     inventoryService,
		Distributions: distribution.NewService(distribution.NewRepository(pool), queries, itemRepo),
		ReadyChecks: map[string]func(context.Context) error{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	jobs.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

func migrateUp(dsn string) error {
	m, err := db.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

// newStore usa MinIO/S3 quando configurado; sem credenciais os uploads respondem 503.
func newStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	if cfg.Provider != "minio" && cfg.Provider != "s3" {
		log.Warn().Str("provider", cfg.Provider).Msg("storage desabilitado")
		return storage.NoopStore{}, nil
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		log.Warn().Msg("credenciais de storage ausentes; uploads desabilitados")
		return storage.NoopStore{}, nil
	}

	s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
		Endpoint:   cfg.Endpoint,
		Region:     cfg.Region,
		Bucket:     cfg.Bucket,
		AccessKey:  cfg.AccessKey,
		SecretKey:  cfg.SecretKey,
		PublicHost: cfg.PublicHost,
	})
	if err != nil {
		return nil, err
	}
	if err := s3Store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3Store, nil
}
