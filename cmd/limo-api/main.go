// README: Entry point; loads config, wires stores and services, starts HTTP server, notification workers and telemetry tickers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"limo/internal/config"
	httptransport "limo/internal/http"
	"limo/internal/infra"
	"limo/internal/maps"
	"limo/internal/modules/booking"
	"limo/internal/modules/gateway"
	"limo/internal/modules/location"
	"limo/internal/modules/notify"
	"limo/internal/modules/pricing"
	"limo/internal/modules/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := infra.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := booking.NewMemoryStore()
	if cfg.Seed.Demo {
		if err := booking.Seed(ctx, store, time.Now()); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	dispatchOpts := []booking.Option{booking.WithLogger(logger)}
	var auditQueue *booking.AuditQueue
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		auditQueue = booking.NewAuditQueue(booking.NewPGAuditLog(dbPool), cfg.Dispatch.AuditQueueSize, cfg.Dispatch.AuditTimeout, logger)
		dispatchOpts = append(dispatchOpts, booking.WithAudit(auditQueue))
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Fatal(err)
		}
		defer redisClient.Close()
	}

	var (
		verifier  infra.TokenVerifier
		msgClient *messaging.Client
	)
	if cfg.Firebase.ProjectID != "" {
		app, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("firebase init: %v", err)
		}
		if verifier, err = infra.NewFirebaseVerifier(ctx, app); err != nil {
			log.Fatalf("firebase auth: %v", err)
		}
		if cfg.Notify.Transport == "fcm" {
			if msgClient, err = infra.NewMessagingClient(ctx, app); err != nil {
				log.Fatalf("firebase messaging: %v", err)
			}
		}
	} else {
		logger.Warn("LIMO_FIREBASE_PROJECT_ID not set, authentication disabled")
	}

	sender, err := newSender(cfg.Notify, logger, redisClient, msgClient)
	if err != nil {
		log.Fatal(err)
	}
	dispatcher := notify.NewDispatcher(sender, cfg.Notify, logger)
	dispatchSvc := booking.NewService(store, dispatcher, cfg.Dispatch, dispatchOpts...)

	var routes pricing.RouteEstimator
	if cfg.Maps.APIKey != "" {
		rs, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		routes = rs
	}
	pricingSvc := pricing.NewService(pricing.NewStore(cfg.Pricing), routes)

	var (
		geo   *location.RedisStore
		sinks []telemetry.PositionSink
	)
	if redisClient != nil {
		geo = location.NewRedisStore(redisClient)
		sinks = append(sinks, geo)
	}
	locationSvc := location.NewService(store, geo, logger)
	if err := locationSvc.Sync(ctx); err != nil {
		logger.Warn("initial geo sync failed", "err", err)
	}

	sim := telemetry.NewSimulator(
		store,
		telemetry.NewRandomWalk(cfg.Telemetry.PositionJitter, cfg.Telemetry.Seed),
		telemetry.NewRandomFlights(cfg.Telemetry.MaxDelayMins, cfg.Telemetry.Seed),
		cfg.Telemetry,
		logger,
		sinks...,
	)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Dispatch:    dispatchSvc,
		Gateway:     gateway.NewService(store, dispatcher, locationSvc),
		Pricing:     pricingSvc,
		Verifier:    verifier,
		Log:         logger,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Currency:    cfg.Dispatch.Currency,
	})
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatcher.Run(gctx)
		return nil
	})
	if auditQueue != nil {
		g.Go(func() error {
			auditQueue.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		sim.RunPositionTicker(gctx)
		return nil
	})
	g.Go(func() error {
		sim.RunFlightTicker(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("http listening", "addr", cfg.HTTP.Addr, "notify", cfg.Notify.Transport)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	logger.Info("shutdown complete", "undelivered", dispatcher.Pending())
}

func newSender(cfg config.NotifyConfig, log *slog.Logger, rdb *redis.Client, msgClient *messaging.Client) (notify.Sender, error) {
	switch cfg.Transport {
	case "", "log":
		return notify.NewLogSender(log), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("notify transport redis requires LIMO_REDIS_ADDR")
		}
		return notify.NewRedisQueueSender(rdb, cfg.RedisQueueKey), nil
	case "fcm":
		if msgClient == nil {
			return nil, errors.New("notify transport fcm requires LIMO_FIREBASE_PROJECT_ID")
		}
		return notify.NewFCMSender(msgClient, cfg.Brand), nil
	}
	return nil, fmt.Errorf("unknown notify transport %q", cfg.Transport)
}
