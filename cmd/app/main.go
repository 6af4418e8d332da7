// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forma-web/internal/config"
	"forma-web/internal/infra/auth"
	pg "forma-web/internal/infra/db/postgres"
	"forma-web/internal/infra/generation"
	"forma-web/internal/infra/logging"
	"forma-web/internal/infra/metrics"
	red "forma-web/internal/infra/redis"
	"forma-web/internal/infra/web"
	"forma-web/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	accessRepo := red.NewAccessStateRepo(redisClient)

	// ---- Access token for the generation backend ----
	tokens := auth.NewAccessTokenSource(accessRepo)
	if err := tokens.Load(ctx); err != nil {
		log.Fatalf("access state: %v", err)
	}
	if cfg.Generation.AccessToken != "" {
		// Bootstrap grant from config; deployments normally grant at runtime.
		if err := tokens.Grant(ctx, cfg.Generation.AccessToken); err != nil {
			log.Fatalf("access grant: %v", err)
		}
	}

	// ---- Repositories & use cases ----
	waitlistRepo := pg.NewWaitlistRepo(pool)
	waitlistUC := usecase.NewWaitlistUseCase(waitlistRepo, logger)

	fetcher := generation.NewClient(cfg.Generation.BaseURL, tokens, cfg.Generation.RequestTimeout(), logger)
	registry := usecase.NewTrackerRegistry(fetcher, usecase.TrackerOptions{
		PollInterval:  cfg.Generation.PollInterval(),
		RetryAttempts: cfg.Generation.RetryAttempts,
		RetryDelay:    cfg.Generation.RetryDelay(),
	}, logger)

	sessions := auth.NewSessionManager(cfg.Demo.SessionSecret, cfg.Demo.SessionTTL())

	// ---- HTTP server ----
	srv := web.NewServer(ctx, waitlistUC, registry, sessions, rateLimiter, web.ServerOptions{
		AccessCode: cfg.Demo.AccessCode,
		RateLimit:  cfg.Waitlist.RateLimit,
		RateWindow: cfg.Waitlist.RateWindow(),
	}, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("web server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("web server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	registry.StopAll()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
