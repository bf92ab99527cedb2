package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/app/fanout"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/app/registry"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/app/server"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/app/watcher"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/config"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/services"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/platform/logger"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/platform/telemetry"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/plugins/postgres"
	redisPlugin "github.com/Tech-Naruto/Chat-App-Backend/internal/plugins/redis"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	cfg := config.Load()

	// Logger
	log := logger.NewLogger(*cfg)
	log.Info("starting application")

	otelShutdown, err := telemetry.InitTelemetry(ctx, *cfg)
	if err != nil {
		log.Error("failed to initialize telemetry", "err", err)
	}
	defer func() {
		log.Info("flushing telemetry...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	// Infra
	var pdb *sql.DB
	if pdb, err = postgres.New(ctx, *cfg.Postgres); err != nil {
		log.Error("postgres connection failed", "DSN", cfg.Postgres.DSN)
		return
	}
	log.Info("postgres connected")
	var rdb *redis.Client
	if rdb, err = redisPlugin.NewRedisClient(ctx, *cfg.Redis); err != nil {
		log.Error("redis connection failed", "url", cfg.Redis.URL)
		return
	}
	log.Info("redis connected")

	// Adapters
	userRepo := postgres.NewUserRepository(pdb)
	roomRepo := postgres.NewRoomRepository(pdb)
	friendRepo := postgres.NewFriendRepository(pdb)
	txManager := postgres.NewTxManager(pdb)
	leaseStore := redisPlugin.NewRedisLeaseStore(rdb, cfg.Presence.LeaseTTL)
	bus := redisPlugin.NewRedisEventBus(rdb, log)

	// Core services
	hub := registry.NewRegistry()
	tokenSvc := services.NewTokenService(log, cfg.SecretToken, userRepo)
	offlineSvc := services.NewOfflineService(log, leaseStore, bus, userRepo, roomRepo, txManager)
	sessionSvc := services.NewSessionService(log, hub, leaseStore, bus, userRepo, offlineSvc)

	// Cross-process plumbing: every instance consumes every event and
	// filters against its local registry.
	fan := fanout.NewFanout(log, hub, friendRepo)
	if err := fan.Run(ctx, bus); err != nil {
		log.Error("event fan-out failed to start", "err", err)
		return
	}
	expiry := watcher.NewExpiryWatcher(log, bus, hub, offlineSvc)
	if err := expiry.Run(ctx); err != nil {
		log.Error("expiry watcher failed to start", "err", err)
		return
	}

	// Server
	srv := server.NewServer(log, cfg.Service.Name, cfg.Service.Addr, tokenSvc, sessionSvc, hub)
	if err := srv.Start(); err != nil {
		log.Error("server stopped", "err", err)
	}
}
