package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stacksevents/internal/platform/config"
	"stacksevents/internal/platform/httpserver"
	"stacksevents/internal/platform/logger"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Format, cfg.Log.Level)
	slog.SetDefault(log)
	if cfg.IsDevMarkerKey() {
		log.Warn("using the built-in session marker key; set WALLET_MARKER_KEY outside development")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer app.close()

	app.start(ctx)

	srv := httpserver.New(cfg.Server.Addr, app.router, cfg.Ledger.ConfirmTimeout)
	go func() {
		log.Info("starting stacksevents",
			"addr", cfg.Server.Addr,
			"network", cfg.Wallet.Network,
			"ledger", cfg.Ledger.Backend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	// Give in-flight compensations a moment after the listener closed.
	time.Sleep(100 * time.Millisecond)
}
