package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/presence-service/config"
	"github.com/cwrk-planet/presence-service/internal/service"
	"github.com/cwrk-planet/presence-service/internal/store"
	httpx "github.com/cwrk-planet/presence-service/internal/transport/http"
	"github.com/cwrk-planet/presence-service/internal/transport/ws"
	"github.com/cwrk-planet/presence-service/internal/webhook"
	"github.com/cwrk-planet/presence-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting presence-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)
	if cfg.Zoom.WebhookSecret == "" {
		slog.Warn("webhook secret not configured; authenticated events will be rejected with 500")
	}

	// --- store & services ---
	st := store.New()
	presenceSvc := service.NewPresenceService(st)
	presenceSvc.SetStaleThreshold(cfg.StaleThreshold())

	verifier := webhook.NewVerifier(cfg.Zoom.WebhookSecret)

	sweeper := service.NewSweeper(st)
	sweeper.SetInterval(cfg.SweepInterval())
	sweeper.SetTTLs(cfg.DefaultTTL(), cfg.WebhookTTL())

	// --- WS hub & server ---
	hub := ws.NewHub()
	wsServer := ws.NewServer(hub, presenceSvc)
	presenceSvc.SetNotifier(wsServer)

	// --- HTTP ---
	handler := httpx.NewHandler(presenceSvc)
	webhookHandler := httpx.NewWebhookHandler(presenceSvc, verifier)
	router := httpx.NewRouter(handler, webhookHandler, wsServer)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- background sweep, owned by the same lifecycle as the store ---
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	stopSweeper()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
