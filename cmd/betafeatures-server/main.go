// Package main is the entry point for the betafeatures-server application.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
	"github.com/tinajohnson/mediawiki-extensions-BetaFeatures/api"
	"github.com/tinajohnson/mediawiki-extensions-BetaFeatures/cache"
	"github.com/tinajohnson/mediawiki-extensions-BetaFeatures/storage"
)

// Config holds the server process configuration, loaded from environment
// variables with the BETAFEATURES prefix.
type Config struct {
	ListenAddress string `envconfig:"LISTEN_ADDRESS" default:":8080"`

	// Storage selects the durable count backend: memory, sqlite or postgres.
	Storage     string `envconfig:"STORAGE" default:"memory"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"betafeatures.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// Cache selects the count cache backend: memory or redis.
	Cache         string `envconfig:"CACHE" default:"memory"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RecountInterval time.Duration `envconfig:"RECOUNT_INTERVAL" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

func main() {
	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	var cfg Config
	logger := betafeatures.NewDefaultLogger()
	if err := envconfig.Process("BETAFEATURES", &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("Betafeatures server starting up...")

	countStore, err := newCountStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize count store", "error", err)
		os.Exit(1)
	}
	defer countStore.Close()

	countCache, err := newCache(cfg)
	if err != nil {
		logger.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer countCache.Close()

	users := storage.NewMemoryUserStore()
	queue := betafeatures.NewMemoryJobQueue()
	counter := betafeatures.NewCounter(countCache, countStore, queue, logger)

	engine := betafeatures.New(
		betafeatures.WithCounter(counter),
		betafeatures.WithUserStore(users),
		betafeatures.WithLogger(logger),
	)

	// Sample feature declarations for testing/demonstration. Real hosts
	// register their own providers.
	engine.RegisterProvider(func(_ context.Context, _ *betafeatures.User, decls *betafeatures.Declarations) error {
		decls.Declare(betafeatures.FeatureDeclaration{
			Key:            "visual-editor",
			LabelMessage:   "visualeditor-preference-label",
			DescMessage:    "visualeditor-preference-desc",
			InfoLink:       "https://mediawiki.org/wiki/VisualEditor",
			DiscussionLink: "https://mediawiki.org/wiki/Talk:VisualEditor",
		})
		decls.Declare(betafeatures.FeatureDeclaration{
			Key:            "media-viewer",
			LabelMessage:   "multimediaviewer-pref",
			DescMessage:    "multimediaviewer-pref-desc",
			InfoLink:       "https://mediawiki.org/wiki/Multimedia/Media_Viewer",
			DiscussionLink: "https://mediawiki.org/wiki/Talk:Multimedia/Media_Viewer",
		})
		return nil
	})

	worker := betafeatures.NewRecountWorker(logger, queue, users, countStore, countCache, cfg.RecountInterval)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := worker.Run(workerCtx); err != nil {
			logger.Error("Recount worker error", "error", err)
		}
	}()

	apiServer, err := api.NewServer(api.Config{
		ListenAddress: cfg.ListenAddress,
		Engine:        engine,
		Counter:       counter,
		Users:         users,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("Failed to create API server", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	stopWorker()

	logger.Info("Server exited gracefully")
}

func newCountStore(cfg Config) (betafeatures.CountStore, error) {
	switch cfg.Storage {
	case "postgres":
		return storage.NewPostgresCountStore(cfg.PostgresDSN)
	case "sqlite":
		return storage.NewSQLiteCountStore(cfg.SQLitePath)
	default:
		return storage.NewMemoryCountStore(), nil
	}
}

func newCache(cfg Config) (betafeatures.Cache, error) {
	switch cfg.Cache {
	case "redis":
		return cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return cache.NewMemoryCache(), nil
	}
}
