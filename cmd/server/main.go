package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/config"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/core"
	_ "github.com/WawaAlencar/sistema-cashback-cliente/internal/core/sources" // Register export formats
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/logging"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"cashback_rate", cfg.Cashback.Rate.String(),
		"session_idle_timeout", cfg.Session.IdleTimeout,
	)
	slog.Debug("configuration", "config", cfg.String())

	service, err := core.NewService(cfg.Upload.MaxFileSize)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}
	for _, def := range core.All() {
		slog.Debug("source registered", "key", def.Key, "label", def.Label)
	}
	sales, registry := service.Sources()
	slog.Info("export formats in use",
		"sales", sales.Label,
		"sales_markers", sales.Markers,
		"registry", registry.Label,
		"registry_markers", registry.Markers,
	)

	schemes, err := config.LoadSchemes(cfg.Cashback)
	if err != nil {
		slog.Error("failed to load cashback schemes", "error", err)
		os.Exit(1)
	}
	for _, sc := range schemes.All() {
		slog.Info("cashback scheme",
			"name", sc.Name,
			"rate", sc.Options.Rate.String(),
			"unit_price", sc.Options.UnitPrice.String(),
			"default", sc.Name == schemes.Default,
		)
	}

	server := web.NewServer(cfg, service, schemes)

	// Background jobs stop with the first signal.
	jobCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-jobCtx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(jobCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
