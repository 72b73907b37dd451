package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/climeai/internal/application/agent"
	"github.com/aescanero/climeai/internal/application/workers"
	"github.com/aescanero/climeai/internal/config"
	mongodb "github.com/aescanero/climeai/pkg/adapters/database/mongo"
	"github.com/aescanero/climeai/pkg/adapters/events/memory"
	"github.com/aescanero/climeai/pkg/adapters/events/redis"
	"github.com/aescanero/climeai/pkg/adapters/llm"
	"github.com/aescanero/climeai/pkg/adapters/metrics/prometheus"
	memorystorage "github.com/aescanero/climeai/pkg/adapters/storage/memory"
	mongostorage "github.com/aescanero/climeai/pkg/adapters/storage/mongo"
	redisstorage "github.com/aescanero/climeai/pkg/adapters/storage/redis"
	"github.com/aescanero/climeai/pkg/api/grpc"
	"github.com/aescanero/climeai/pkg/api/http"
	"github.com/aescanero/climeai/pkg/api/websocket"
	"github.com/aescanero/climeai/pkg/domain"
	"github.com/aescanero/climeai/pkg/ports"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// runServe starts the agent service and blocks until SIGINT or SIGTERM
func runServe(envFile string) error {
	cfg, logger, err := bootstrap(envFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting ClimeAI",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("event_backend", cfg.EventBackend))

	ctx := context.Background()

	// Metrics
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsCollector := prometheus.NewCollector(registry)

	// MongoDB client; connects lazily, nothing is dialled here
	mongoProvider := mongodb.NewProvider(mongodb.ResolveURI(cfg.Mongo.ConnectionString), logger)

	// Redis client, only when a backend needs it
	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeouts.StartupTimeout)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// Conversation store
	var store ports.ConversationStore
	var database http.Pinger
	switch cfg.StorageBackend {
	case config.BackendMongo:
		client, err := mongoProvider.Client(ctx)
		if err != nil {
			return fmt.Errorf("failed to create MongoDB client: %w", err)
		}
		store = mongostorage.NewConversationStore(client, cfg.Mongo.Database, logger)
		database = mongoProvider
	case config.BackendRedis:
		store = redisstorage.NewConversationStore(redisClient, cfg.Redis.SessionTTL, logger)
	default:
		store = memorystorage.NewConversationStore()
	}

	// Event bus
	var eventBus ports.EventBus
	if cfg.EventBackend == config.BackendRedis {
		streams, err := redis.NewStreamsEventBus(
			redisClient,
			"climeai-workers",
			fmt.Sprintf("climeai-%d", os.Getpid()),
			logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create event bus: %w", err)
		}
		// every websocket client needs every chat event; requests are shared work
		eventBus = streams.WithBroadcast(domain.TopicChatEvents)
	} else {
		eventBus = memory.NewEventBus()
	}

	// Model client selection
	selector := llm.NewSelector(
		llm.WithLogger(logger),
		llm.WithMetrics(metricsCollector),
	)

	// Initialize application components
	service := agent.NewService(
		selector,
		store,
		eventBus,
		metricsCollector,
		agent.DefaultToolbox(),
		agent.Config{
			SystemPrompt:      cfg.Agent.SystemPrompt,
			MaxToolIterations: cfg.Agent.MaxToolIterations,
			MaxMessageLength:  cfg.Agent.MaxMessageLength,
		},
		logger,
	)

	active := service.ActiveProvider()
	logger.Info("model provider selected",
		zap.String("provider", active.Provider),
		zap.String("model", active.Model))

	workerPool := workers.NewPool(
		workers.Options{
			Size:                cfg.Workers.PoolSize,
			QueueSize:           cfg.Workers.QueueSize,
			ChatTimeout:         cfg.Timeouts.ChatTimeout,
			HealthCheckInterval: cfg.Workers.HealthCheckInterval,
		},
		eventBus,
		service,
		metricsCollector,
		logger,
	)

	// Start worker pool
	if err := workerPool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Port:        cfg.HTTPPort,
		Service:     service,
		Jobs:        workerPool,
		Database:    database,
		Gatherer:    registry,
		APIToken:    cfg.APIToken,
		ChatTimeout: cfg.Timeouts.ChatTimeout,
		Logger:      logger,
	})

	// Add WebSocket handler to HTTP server
	wsHandler := websocket.NewHandler(eventBus, logger)
	httpServer.SetupWebSocket(wsHandler, cfg.APIToken)

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Port:   cfg.GRPCPort,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	logger.Info("ClimeAI started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("worker_pool_size", cfg.Workers.PoolSize))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	grpcServer.SetServing(false)

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		logger.Error("worker pool shutdown error", zap.Error(err))
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	if err := mongoProvider.Close(shutdownCtx); err != nil {
		logger.Error("MongoDB disconnect error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	logger.Info("ClimeAI shut down complete")
	return nil
}
