package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"storefront-tracker/internal/core/cache"
	"storefront-tracker/internal/core/config"
	"storefront-tracker/internal/core/logger"
	"storefront-tracker/internal/core/proxy"
	"storefront-tracker/internal/core/server"
	orderadapter "storefront-tracker/internal/features/orders/adapters"
	orderhandler "storefront-tracker/internal/features/orders/handler"
	orderservice "storefront-tracker/internal/features/orders/service"
	trackingadapter "storefront-tracker/internal/features/tracking/adapters"
	"storefront-tracker/internal/features/tracking/engine"
	trackinghandler "storefront-tracker/internal/features/tracking/handler"
	"storefront-tracker/internal/features/tracking/ports"
	trackingservice "storefront-tracker/internal/features/tracking/service"

	"go.uber.org/zap"
)

// @title Storefront Tracker API
// @version 1.0
// @description Derives order tracking stages and customer action eligibility from storefront orders and carrier feeds.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	engineCfg, err := engine.FromAppConfig(cfg.Tracking)
	if err != nil {
		l.Fatal("Invalid tracking configuration", zap.Error(err))
	}
	eng := engine.New(engineCfg)

	// Initialize Order Adapter and run Health Check
	backend := orderadapter.NewBackendAdapter(cfg.Backend)
	healthCtx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout())
	if err := backend.HealthCheck(healthCtx); err != nil {
		cancel()
		l.Fatal("Backend Health Check Failed", zap.Error(err))
	}
	cancel()
	l.Info("Backend connection verified")

	checks := []server.HealthCheck{{Name: "backend", Check: backend.HealthCheck}}

	// Initialize Tracking Feed sources
	var (
		feedCache cache.Cache
		fallback  ports.FeedProvider
	)

	if cfg.Cache.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.Cache.RedisURL, "storefront-tracker:")
		if err != nil {
			l.Fatal("Failed to initialize Redis cache", zap.Error(err))
		}
		defer redisCache.Close()

		feedCache = redisCache
		checks = append(checks, server.HealthCheck{Name: "cache", Check: redisCache.Ping})
		l.Info("Tracking feed cache enabled", zap.Duration("ttl", cfg.Cache.TrackingTTL()))
	}

	if cfg.Carrier.Enabled() {
		fallback = trackingadapter.NewCarrierPageAdapter(cfg.Carrier, proxy.NewSettings(cfg.Proxy))
		l.Info("Carrier page fallback enabled", zap.String("page_url", cfg.Carrier.PageURL))
	}

	feeds := trackingadapter.NewFeedPipeline(
		trackingadapter.NewBackendFeedAdapter(cfg.Backend),
		fallback,
		feedCache,
		cfg.Cache.TrackingTTL(),
	)

	// Initialize Services & Handlers
	orderSvc := orderservice.NewOrderService(backend, eng)
	orderHdl := orderhandler.NewOrderHandler(orderSvc)

	trackingSvc := trackingservice.NewTrackingService(backend, feeds, eng)
	trackingHdl := trackinghandler.NewTrackingHandler(trackingSvc)

	srv := server.New(cfg, checks...)

	// Register Routes
	srv.App.Get("/orders/:id", orderHdl.GetOrder)
	srv.App.Get("/orders/:id/first-product", orderHdl.GetFirstProduct)
	srv.App.Get("/orders/:id/tracking-view", trackingHdl.GetTrackingView)
	srv.App.Get("/orders/:id/eligibility", trackingHdl.GetEligibility)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
	l.Info("Server stopped")
}
