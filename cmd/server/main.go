package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OpenNSW/tariff/internal/archive"
	"github.com/OpenNSW/tariff/internal/config"
	"github.com/OpenNSW/tariff/internal/database"
	"github.com/OpenNSW/tariff/internal/lock"
	"github.com/OpenNSW/tariff/internal/middleware"
	"github.com/OpenNSW/tariff/internal/tariff"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// Rates and amounts are emitted as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	slog.Info("configuration loaded successfully",
		"db_driver", cfg.Database.Driver,
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"lock_backend", cfg.Lock.Backend,
		"archive_type", cfg.Archive.Type,
		"provider_timeout", cfg.Providers.Timeout(),
	)

	slog.Info("CORS configuration",
		"allowed_origins", cfg.CORS.AllowedOrigins,
		"allowed_methods", cfg.CORS.AllowedMethods,
		"allowed_headers", cfg.CORS.AllowedHeaders,
		"allow_credentials", cfg.CORS.AllowCredentials,
		"max_age", cfg.CORS.MaxAge,
	)

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	locker, closeLocker, err := lock.NewFromConfig(startupCtx, cfg.Lock)
	if err != nil {
		log.Fatalf("failed to initialize key locker: %v", err)
	}
	defer func() {
		if err := closeLocker(); err != nil {
			slog.Error("failed to close key locker", "error", err)
		}
	}()

	driver, err := archive.NewStorageFromConfig(startupCtx, cfg.Archive)
	if err != nil {
		log.Fatalf("failed to initialize payload archive: %v", err)
	}

	tm := tariff.NewManager(cfg, db, tariff.Options{
		Locker:  locker,
		Archive: archive.NewService(driver),
	})

	res, err := tm.Bootstrap(startupCtx)
	if err != nil {
		// A missing sentinel is reported per request as not found
		slog.Warn("country bootstrap incomplete", "error", err)
	} else {
		slog.Info("country bootstrap finished", "loaded", res.Loaded, "skipped", res.Skipped, "seeded", res.Seeded)
	}

	// Set up HTTP routes
	mux := http.NewServeMux()
	tm.RegisterRoutes(mux)

	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)

	// Wrap handler with CORS middleware
	handler := middleware.CORS(&cfg.CORS)(mux)

	server := &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	slog.Info("server stopped")
}
