package main

import (
	"context"
	"os"
	"time"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	applog "expensetracker/internal/log"
)

func main() {
	bootLogger := cli.SetupLogger(nil)

	if err := cli.LoadEnvFile(); err != nil {
		bootLogger.Warn("Ignoring unreadable .env file", applog.FieldError, err)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		bootLogger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()
	res, err := backend.NewFactory(logger.Logger.With(applog.FieldComponent, applog.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	// Schema failures are reported by the service; under the surface policy
	// the app keeps running so the page can show the problem.
	if err := res.Service.EnsureSchema(ctx); err != nil {
		logger.Warn("Schema not ready", applog.FieldError, err)
	}
	if items, err := res.Service.List(ctx); err == nil {
		logger.Info("Loaded expenses", applog.FieldCount, len(items))
	}

	srv := apphttp.NewServer(cfg.ListenAddr, res.Service, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	onReady := func() {
		logger.Info("Starting expense tracker",
			applog.FieldOperation, applog.OpStartup,
			"addr", cfg.ListenAddr,
			"url", cfg.URL(),
			"backend", cfg.DataBackend,
			"storage_errors", cfg.StorageErrors)
		if cfg.OpenBrowser {
			if err := cli.OpenBrowser(cfg.URL()); err != nil {
				logger.Warn("Could not open browser", applog.FieldError, err)
			}
		}
	}

	if err := cli.Serve(ctx, logger, srv, cfg.ShutdownTimeout, onReady); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
