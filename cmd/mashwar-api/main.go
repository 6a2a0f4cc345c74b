// README: Entry point; loads config, wires services, starts the HTTP server
// and the background matching worker.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mashwar/internal/config"
	httptransport "mashwar/internal/http"
	"mashwar/internal/infra"
	"mashwar/internal/maps"
	"mashwar/internal/modules/matching"
	"mashwar/internal/modules/notify"
	"mashwar/internal/modules/posting"
	"mashwar/internal/modules/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := infra.NewLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("postgres init", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	var routes posting.RouteProvider
	if cfg.Maps.APIKey != "" {
		rs, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		routes = rs
	}

	store := posting.NewStore(dbPool)
	index := posting.NewGeoIndex(redisClient)
	sink := notify.NewRedisSink(redisClient)
	postingSvc := posting.NewService(store, index, routes, sink, logger)

	matcher := matching.NewService(store, sink, matching.Config{
		RadiusKm:       cfg.Matching.RadiusKm,
		SearchRadiusKm: cfg.Matching.SearchRadiusKm,
		TimeWindow:     cfg.Matching.TimeWindow,
		QueueSize:      cfg.Matching.QueueSize,
		Pricing:        pricing.NewCalculator(cfg.Pricing.RoundTo, cfg.Pricing.MinFare),
	}, logger)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Postings: postingSvc,
		Matcher:  matcher,
		NearbyKm: cfg.Matching.SearchRadiusKm,
		Log:      logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go matcher.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("http server", zap.Error(err))
	}
}
