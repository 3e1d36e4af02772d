// README: Entry point; loads config, wires services, starts HTTP server and background sweeps.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"khabar/internal/config"
	"khabar/internal/events"
	"khabar/internal/geo"
	httptransport "khabar/internal/http"
	"khabar/internal/infra"
	"khabar/internal/modules/dispatch"
	"khabar/internal/modules/order"
	"khabar/internal/modules/rider"
	"khabar/internal/modules/zone"
)

const (
	dispatchSweepTick = 15 * time.Second
	zoneRefreshTick   = 5 * time.Minute
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("KHABAR_FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.WithError(err).Fatal("firebase init")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	bus := events.NewRedisPublisher(redisClient)

	zoneStore := zone.NewStore(dbPool)
	zoneIndex, err := zone.NewRefreshingIndex(ctx, zoneStore)
	if err != nil {
		log.WithError(err).Fatal("load zone index")
	}

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore, bus)

	riderStore := rider.NewStore(dbPool, redisClient)
	riderSvc := rider.NewService(riderStore, bus)

	coordinator := dispatch.NewCoordinator(orderStore, riderStore, zoneIndex, bus, cfg.Dispatch)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Order:      orderSvc,
		Rider:      riderSvc,
		Dispatcher: coordinator,
		Zones:      zoneIndex,
		GeoParams: geo.Params{
			PrepMinutes:   cfg.Geo.PrepMinutes,
			AvgSpeedKmh:   cfg.Geo.AvgSpeedKmh,
			BufferMinutes: cfg.Geo.BufferMinutes,
			MinFee:        cfg.Geo.MinFee,
			MaxFee:        cfg.Geo.MaxFee,
		},
		Verifier: verifier,
	})

	go coordinator.RunSweep(ctx, dispatchSweepTick)
	go zoneIndex.Run(ctx, zoneRefreshTick)

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", cfg.HTTP.Addr).Info("starting server")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server")
	}
}
