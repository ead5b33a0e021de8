package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"spinwheel/internal/config"
	"spinwheel/internal/handlers"
	"spinwheel/internal/services"
	"spinwheel/internal/store"
)

func main() {
	cfg := config.Load()

	defer logger.Init("spinwheel", cfg.LogVerbose, false, io.Discard).Close()

	wheel, err := config.LoadWheel(cfg.WheelConfigPath)
	if err != nil {
		logger.Fatalf("Failed to load wheel config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The backend is fixed for the process lifetime. If the configured
	// database is unreachable we serve from memory instead of refusing
	// traffic; we never switch after startup.
	st := openStore(ctx, cfg)
	defer st.Close()

	if err := st.Initialize(ctx, wheel.SeedSlots()); err != nil {
		logger.Fatalf("Failed to seed prize slots: %v", err)
	}

	spinService := services.NewSpinService(st, wheel.WinProbability)
	httpHandler := handlers.NewHTTPHandler(spinService, cfg.AdminPassword)

	r := gin.Default()
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Infof("Server starting on %s (backend=%s, win_probability=%.2f)",
		addr, cfg.StorageBackend, wheel.WinProbability)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Failed to run server: %v", err)
	}
}

// openStore opens the configured backend, falling back to the in-memory
// store when it cannot be reached. Data in the fallback is lost on
// restart.
func openStore(ctx context.Context, cfg *config.Config) store.Store {
	switch cfg.StorageBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			logger.Warning("STORAGE_BACKEND=postgres but DATABASE_URL is empty. Using in-memory storage.")
			return store.NewMemoryStore()
		}
		st, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warningf("Postgres connection failed: %v. Falling back to in-memory storage.", err)
			return store.NewMemoryStore()
		}
		logger.Info("Postgres connected")
		return st
	case "sqlite":
		st, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Warningf("SQLite open failed: %v. Falling back to in-memory storage.", err)
			return store.NewMemoryStore()
		}
		logger.Infof("SQLite database open at %s", cfg.SQLitePath)
		return st
	case "memory":
		logger.Warning("Using in-memory storage. Data will be lost when the server restarts.")
		return store.NewMemoryStore()
	default:
		logger.Warningf("Unknown STORAGE_BACKEND %q. Using in-memory storage.", cfg.StorageBackend)
		return store.NewMemoryStore()
	}
}
