package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filevault-backend/internal/api"
	"filevault-backend/internal/auth"
	"filevault-backend/internal/config"
	"filevault-backend/internal/jobs"
	"filevault-backend/internal/logging"
	"filevault-backend/internal/redisx"
	"filevault-backend/internal/repository"
	"filevault-backend/internal/service"
	"filevault-backend/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Carregar o .env ANTES da configuração. Em containers as variáveis
	// de ambiente bastam, então a falta do arquivo não é fatal.
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("could not load .env file, using environment only", "error", err)
	}

	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger.Slog())

	initCtx, cancelInit := context.WithTimeout(context.Background(), cfg.RedisConnectTimeout+10*time.Second)
	defer cancelInit()

	// 2. Repositório de metadados: PostgreSQL se configurado, senão em memória
	var store repository.Store
	if cfg.DatabaseURL != "" {
		pgStore, pool, err := repository.NewPostgresStore(initCtx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pgStore.Close()

		if err := repository.RunMigrations(initCtx, pool, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info(initCtx, "connected to PostgreSQL")
		store = pgStore
	} else {
		logger.Warn(initCtx, "DATABASE_URL not set, metadata is kept in memory")
		store = repository.NewInMemoryStore()
	}

	// 3. Redis: a fila de jobs sempre usa; as sessões só com SESSION_BACKEND=redis
	redisClient, err := redisx.Connect(initCtx, redisx.Config{
		URL:            cfg.RedisURL,
		RetryAttempts:  cfg.RedisRetryAttempts,
		RetryInterval:  cfg.RedisRetryInterval,
		ConnectTimeout: cfg.RedisConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	logger.Info(initCtx, "connected to Redis")

	// 4. Sessões e credenciais
	var sessions auth.SessionStore
	switch cfg.SessionBackend {
	case config.BackendMemory:
		sessions = auth.NewMemorySessionStore(cfg.SessionTTL)
	default:
		sessions, err = auth.NewRedisSessionStore(redisClient, cfg.SessionPrefix, cfg.SessionTTL)
		if err != nil {
			return fmt.Errorf("failed to create session store: %w", err)
		}
	}

	verifier, err := auth.NewVerifier(store, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to create credential verifier: %w", err)
	}

	// 5. Armazenamento do conteúdo
	var blobs storage.BlobStore
	switch cfg.BlobBackend {
	case config.BackendS3:
		client, err := storage.NewS3Client(initCtx, storage.S3Config{
			Bucket:         cfg.AWSBucketName,
			Region:         cfg.AWSRegion,
			Prefix:         cfg.AWSKeyPrefix,
			AccessKeyID:    cfg.AWSAccessKeyID,
			SecretKey:      cfg.AWSSecretKey,
			Endpoint:       cfg.AWSEndpoint,
			ForcePathStyle: cfg.AWSForcePathStyle,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		blobs, err = storage.NewS3Store(client, cfg.AWSBucketName, cfg.AWSKeyPrefix)
		if err != nil {
			return fmt.Errorf("failed to create S3 store: %w", err)
		}
	default:
		local, err := storage.NewLocalStore(cfg.BlobRoot)
		if err != nil {
			return fmt.Errorf("failed to create local blob store: %w", err)
		}
		logger.Info(initCtx, "storing blobs on disk", "root", local.Root())
		blobs = local
	}

	// 6. Fila de jobs
	queue, err := jobs.NewRedisQueue(redisClient, cfg.ThumbnailQueue)
	if err != nil {
		return fmt.Errorf("failed to create job queue: %w", err)
	}

	// 7. Camadas de serviço e API
	userService := service.NewUserService(store, verifier, sessions, logger)
	fileService := service.NewFileService(store, blobs, queue, logger)

	handler := api.NewHandler(userService, fileService, logger)
	handler.AddHealthCheck("redis", redisx.Healthcheck(redisClient))
	handler.AddHealthCheck("db", store.Ping)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler.Routes(cfg.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Servir até SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutdown signal received, stopping server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info(shutdownCtx, "server stopped")
	return nil
}
