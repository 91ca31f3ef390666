package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/edumentor-backend/internal/app"
	"github.com/yungbote/edumentor-backend/internal/config"
	"github.com/yungbote/edumentor-backend/internal/embedding"
	"github.com/yungbote/edumentor-backend/internal/platform/logger"
	"github.com/yungbote/edumentor-backend/internal/platform/openai"
	"github.com/yungbote/edumentor-backend/internal/store"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Config load failed", "error", err)
	}

	// Store
	log.Info("Setting up store from main...", "backend", storeBackend())
	kv, err := newStore(log)
	if err != nil {
		log.Fatal("Store init failed", "error", err)
	}
	defer kv.Close()

	// Embedder
	embedder, err := newEmbedder(log)
	if err != nil {
		log.Fatal("Embedder init failed", "error", err)
	}

	// App container: repos, services, ingest worker
	log.Info("Setting up app from main...")
	a := app.New(kv, embedder, cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	log.Info("edumentor backend running", "workers", cfg.Ingest.Workers)
	<-ctx.Done()
	log.Info("Shutting down...")
	if err := <-done; err != nil {
		log.Error("App exited with error", "error", err)
	}
}

func storeBackend() string {
	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = "memory"
	}
	return backend
}

func newStore(log *logger.Logger) (store.KV, error) {
	switch storeBackend() {
	case "memory":
		return store.NewMemory(), nil
	case "redis":
		return store.NewRedis(log)
	case "sql":
		return store.NewGorm(log)
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", storeBackend())
	}
}

func newEmbedder(log *logger.Logger) (embedding.Embedder, error) {
	provider := os.Getenv("EMBEDDER")
	if provider == "" {
		if os.Getenv("OPENAI_API_KEY") != "" {
			provider = "openai"
		} else {
			provider = "local"
		}
	}
	switch provider {
	case "openai":
		client, err := openai.NewClient(log)
		if err != nil {
			return nil, err
		}
		return embedding.NewOpenAI(client, log), nil
	case "local":
		return embedding.NewLocal(256), nil
	default:
		return nil, fmt.Errorf("unknown EMBEDDER %q", provider)
	}
}
