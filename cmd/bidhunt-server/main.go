// Package main provides the HTTP API server for bidhunt.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/10thony/CobecDev-sub005/internal/config"
	"github.com/10thony/CobecDev-sub005/internal/db"
	"github.com/10thony/CobecDev-sub005/internal/engine"
	"github.com/10thony/CobecDev-sub005/internal/hunt"
	"github.com/10thony/CobecDev-sub005/internal/llm"
	"github.com/10thony/CobecDev-sub005/internal/metrics"
	"github.com/10thony/CobecDev-sub005/internal/server"
	"github.com/10thony/CobecDev-sub005/internal/verify"
)

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg := config.Load()
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	slog.SetDefault(logger)
	defer func() { _ = closeLog() }()

	slog.Info("starting bidhunt-server", "addr", cfg.ServerAddr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		cancel()
		os.Exit(1)
	}

	if err := dbClient.InitSchema(ctx); err != nil {
		slog.Error("failed to initialize schema", "error", err)
		cancel()
		os.Exit(1)
	}

	if *wipeDB || os.Getenv("BIDHUNT_WIPE_DB") == "true" {
		if err := dbClient.WipeData(ctx); err != nil {
			slog.Error("failed to wipe database", "error", err)
			cancel()
			os.Exit(1)
		}
		slog.Warn("database wiped")
	}
	cancel()

	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	model, err := llm.NewModel(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to create LLM model", "error", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector()
	ctrl := engine.NewController(dbClient, logger, collector)
	ctrl.Register(hunt.NewProcessor(model, dbClient, logger))
	ctrl.Register(verify.NewProcessor(dbClient, verify.NewChecker(cfg.VerifyTimeout, cfg.VerifyUserAgent), logger))

	// Pick up jobs a previous process left running.
	recoverCtx, recoverCancel := context.WithTimeout(context.Background(), 30*time.Second)
	recovered, err := ctrl.Recover(recoverCtx)
	recoverCancel()
	if err != nil {
		slog.Error("failed to recover jobs", "error", err)
		os.Exit(1)
	}
	if recovered > 0 {
		slog.Info("recovered interrupted jobs", "count", recovered)
	}

	apiServer := server.New(ctrl, dbClient, collector, cfg.ServerAddr, logger)

	go func() {
		if err := apiServer.Start(); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Runners keep the durable state consistent; wait for them to settle.
	ctrl.Wait()

	slog.Info("server stopped")
}
