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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/fairshare/fairshare/internal/bill"
	"github.com/fairshare/fairshare/internal/config"
	"github.com/fairshare/fairshare/internal/parser"
	"github.com/fairshare/fairshare/internal/server"
	"github.com/fairshare/fairshare/internal/service"
	"github.com/fairshare/fairshare/pkg/logging"
)

func main() {
	// A .env file is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("FAIRSHARE_CONFIG"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logging.SetupWithLevel(logging.ParseLevel(cfg.Log.Level))
	gin.SetMode(gin.ReleaseMode)

	ids := bill.UUIDGenerator{}
	parserClient := parser.NewClient(
		cfg.OpenRouter.Endpoint,
		cfg.OpenRouter.Model,
		cfg.OpenRouter.APIKey,
		cfg.OpenRouter.Timeout,
		ids,
	)
	if cfg.OpenRouter.APIKey == "" {
		slog.Warn("No OpenRouter API key configured, receipt parsing will fail")
	}

	svc := service.New(parserClient, ids)
	router := server.New(svc).Router(cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
