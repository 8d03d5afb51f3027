package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/merev/ds-scoring-engine/internal/cache"
	"github.com/merev/ds-scoring-engine/internal/checkout"
	"github.com/merev/ds-scoring-engine/internal/config"
	"github.com/merev/ds-scoring-engine/internal/database"
	"github.com/merev/ds-scoring-engine/internal/game"
	apphttp "github.com/merev/ds-scoring-engine/internal/http"
	"github.com/merev/ds-scoring-engine/internal/logging"
	"github.com/merev/ds-scoring-engine/internal/scoring"
	"github.com/merev/ds-scoring-engine/internal/storage/sqlite"
)

func main() {
	cfg := config.Load()

	logger, err := logging.Setup(cfg.LogLevel, "scoring-api")
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var stateCache game.StateCache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisStateCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.StateTTL)
		if err != nil {
			logger.Error("failed to connect to state cache", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		stateCache = rc
	} else {
		logger.Warn("REDIS_ADDR not set, in-progress matches will not survive a restart")
	}

	proc := scoring.NewProcessor(checkout.Default(), cfg.Policy())
	svc := game.NewService(store, stateCache, proc, cfg.StartingScore, logger)
	router := apphttp.NewRouter(game.NewHandler(svc))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("scoring-api running", "port", cfg.Port, "storage", cfg.StorageDriver, "bust_policy", proc.Policy())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down scoring-api...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// openStore connects the configured persistence backend and applies its schema.
func openStore(cfg config.Config) (game.Store, func(), error) {
	if cfg.StorageDriver == config.DriverSQLite {
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { closeQuietly(store) }, nil
	}

	db, err := database.NewPool(cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return game.NewRepository(db), db.Close, nil
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("close failed", "error", err)
	}
}
