package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/broadcast"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/config"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/database"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/database/postgres"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/engine"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/handler"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/hotstate"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/prize"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/scheduler"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/server"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/ticket"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/worker"
	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/ws"
)

const (
	shutdownTimeout = 10 * time.Second

	prizeReaperInterval   = 30 * time.Second
	hotStateSweepInterval = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)
	handler.InitValidator()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Durable store
	dbPool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxIdleTime, cfg.DBMaxLifetime)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.InitSchema(ctx, dbPool); err != nil {
		slog.Error("Failed to initialize schema", "error", err)
		os.Exit(1)
	}

	// Hot store
	rdb, err := hotstate.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() { _ = rdb.Close() }()
	hotStore := hotstate.NewStore(rdb)

	// Cross-instance broadcast
	hub := broadcast.NewHub(broadcast.NewRedisPubSub(rdb))
	if err := hub.Start(ctx); err != nil {
		slog.Error("Failed to start broadcast hub", "error", err)
		os.Exit(1)
	}

	// Repositories
	gameRepo := postgres.NewGameRepository(dbPool)
	prizeRepo := postgres.NewPrizeQueueRepository(dbPool)

	// Prize pipeline
	payoutClient := prize.NewHTTPPayoutClient(cfg.PayoutAPIURL, cfg.PayoutTimeout)
	prizeSvc := prize.NewService(prizeRepo, payoutClient)
	prizeWorker := worker.NewPrizeWorker(prizeSvc)
	prizeSvc.BindScheduler(prizeWorker)

	// Game engine
	gen := ticket.NewGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))
	engineSvc := engine.NewService(gameRepo, hotStore, hub, prizeSvc, gen)

	// Background jobs
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	pool.Start()
	sched := scheduler.New(pool)
	sched.Schedule(prizeReaperInterval, prize.NewReaperJob(prizeSvc))
	sched.Schedule(hotStateSweepInterval, hotstate.NewSweepJob(hotStore))

	// HTTP surface
	wsHandler := ws.NewHandler(engineSvc, hub, cfg.AllowedOrigins)
	gameHandler := handler.NewGameHandler(engineSvc, hotStore)
	prizeHandler := handler.NewPrizeHandler(prizeSvc)

	srv := server.NewServer(server.Config{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		AllowedOrigins: cfg.AllowedOrigins,
	}, dbPool, gameHandler, prizeHandler, wsHandler)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	sched.Stop()
	pool.Stop()
	if err := prizeWorker.Shutdown(shutdownCtx); err != nil {
		slog.Error("Prize worker shutdown failed", "error", err)
	}
	hub.Stop()

	slog.Info("Shutdown complete")
}
