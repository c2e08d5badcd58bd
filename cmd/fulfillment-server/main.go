// cmd/fulfillment-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"gym-fulfillment/internal/api"
	"gym-fulfillment/internal/common/config"
	"gym-fulfillment/internal/common/database"
	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/common/observability"
	"gym-fulfillment/internal/fulfillment/dispatch"
	"gym-fulfillment/internal/fulfillment/pricing"
	"gym-fulfillment/internal/fulfillment/quotes"
	"gym-fulfillment/internal/notify"
	"gym-fulfillment/internal/store"
	"gym-fulfillment/pkg/seed"
)

const shutdownTimeout = 15 * time.Second

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console", "")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting fulfillment server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("storeDriver", cfg.Store.Driver),
	)

	obs := observability.New(cfg.App.Name, nil, log)
	defer obs.Shutdown()
	if err := obs.EnableTracing(cfg.Tracing, cfg.App); err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	}

	ctx := context.Background()

	// --- Document store with retry; degrade to a disconnected store ---
	var backend store.Backend
	closeStore := func() error { return nil }
	err = retryWithBackoff(func() error {
		var err error
		backend, closeStore, err = store.Open(ctx, cfg)
		return err
	}, connectRetries(cfg), time.Second, zapLog, "Document store connection")
	if err != nil {
		zapLog.Error("document store unavailable, serving without a database", zap.Error(err))
		backend = store.NewDisconnected(err)
	} else {
		zapLog.Info("Document store connected", zap.String("backend", backend.Name()))
	}
	defer func() {
		if err := closeStore(); err != nil {
			zapLog.Warn("store close failed", zap.Error(err))
		}
	}()

	if cfg.Store.SeedPath != "" && cfg.Store.Driver == config.StoreDriverMemory {
		if err := seedStore(ctx, backend, cfg, log); err != nil {
			zapLog.Fatal("seeding failed", zap.Error(err))
		}
	}

	// --- Redis cache (optional) ---
	var redisClient *database.RedisClient
	if cfg.Cache.Enabled {
		redisClient = database.NewRedis(cfg.Database.Redis)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx); err != nil {
			zapLog.Warn("redis not reachable, cache reads will fall through", zap.Error(err))
		}
	}
	var documents store.Backend
	if redisClient != nil {
		documents = store.Decorate(backend, cfg, redisClient.Client, log)
	} else {
		documents = store.Decorate(backend, cfg, nil, log)
	}

	// --- Lead notifications ---
	notifier, closeNotify, err := notify.FromConfig(ctx, cfg, log)
	if err != nil {
		zapLog.Warn("lead notifications disabled", zap.Error(err))
		notifier = notify.NewMulti(0, log)
	}
	defer closeNotify()

	// --- Dispatcher ---
	router := dispatch.NewRouter(
		dispatch.SettingsFromConfig(cfg),
		pricing.NewAccessor(documents, cfg.Store.GymsCollection, log),
		quotes.NewRepository(documents, cfg.Store.QuoteCollection, notifier, log),
		obs,
		log,
	)
	zapLog.Info("Intent router ready", zap.Strings("intents", router.Intents()))

	server := api.NewServer(cfg, router, documents, log)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		zapLog.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.Listen(addr); err != nil {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		zapLog.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLog.Info("Server exited gracefully")
}

func connectRetries(cfg *config.Config) int {
	if cfg.Store.ConnectRetries > 0 {
		return cfg.Store.ConnectRetries
	}
	return 1
}

func seedStore(ctx context.Context, w store.Writer, cfg *config.Config, log logger.Logger) error {
	file, err := seed.LoadFile(cfg.Store.SeedPath)
	if err != nil {
		return err
	}
	for _, problem := range seed.Validate(file, cfg.Store.GymsCollection) {
		log.Warn("seed document problem", map[string]interface{}{"problem": problem})
	}
	n, err := seed.Apply(ctx, w, file)
	if err != nil {
		return err
	}
	log.Info("Seeded document store", map[string]interface{}{
		"documents": n,
		"path":      cfg.Store.SeedPath,
	})
	return nil
}
