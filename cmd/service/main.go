package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/motorwaylabs/travel-weather-service/internal/cache"
	"github.com/motorwaylabs/travel-weather-service/internal/client"
	"github.com/motorwaylabs/travel-weather-service/internal/config"
	"github.com/motorwaylabs/travel-weather-service/internal/geo"
	httphandler "github.com/motorwaylabs/travel-weather-service/internal/http"
	"github.com/motorwaylabs/travel-weather-service/internal/lifecycle"
	"github.com/motorwaylabs/travel-weather-service/internal/observability"
	"github.com/motorwaylabs/travel-weather-service/internal/refresh"
	"github.com/motorwaylabs/travel-weather-service/internal/resolver"
	"github.com/motorwaylabs/travel-weather-service/internal/scheduler"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	aviationClient, err := client.NewCheckWXClient(cfg.CheckWXAPIKey, cfg.CheckWXURL, cfg.CheckWXTimeout)
	if err != nil {
		logger.Fatal("checkwx client", zap.Error(err))
	}
	weatherClient, err := client.NewWeatherAPIClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	if err != nil {
		logger.Fatal("weatherapi client", zap.Error(err))
	}

	var store cache.Cache
	var memcacheCloser *cache.MemcachedCache
	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		memcacheCloser = mc
		store = mc
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		store = cache.NewInMemoryCache()
		logger.Info("cache backend: in_memory")
	}

	index := geo.NewIndex(geo.PakistanAirports(), geo.TollPlazas())

	refresher := refresh.New(aviationClient, weatherClient, store, index.Airports(), index.Waypoints(), refresh.Config{
		MetarTTL:    cfg.MetarTTL,
		WaypointTTL: cfg.WaypointTTL,
		BatchSize:   cfg.WaypointBatchSize,
		BatchPause:  cfg.WaypointBatchPause,
	}, logger)

	res := resolver.New(store, index, logger)

	sched := scheduler.New(refresher, cfg.MetarRefreshInterval, cfg.WaypointRefreshInterval, cfg.RefreshJobTimeout, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}
	defer sched.Stop()
	logger.Info("refresh triggers scheduled",
		zap.Duration("metar_interval", cfg.MetarRefreshInterval),
		zap.Duration("waypoint_interval", cfg.WaypointRefreshInterval))

	var cachePing func() error
	if memcacheCloser != nil {
		cachePing = memcacheCloser.Ping
	}
	handler := httphandler.NewHandler(res, refresher, index, store, logger, cfg.MaxBatchPoints, cachePing)

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/", handler.GetRoot).Methods("GET")
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	router.HandleFunc("/metar", handler.GetMetarSummary).Methods("GET")
	router.HandleFunc("/airports", handler.GetAirports).Methods("GET")
	router.HandleFunc("/waypoints", handler.GetWaypoints).Methods("GET")
	router.HandleFunc("/nearest-airport", handler.GetNearestAirport).Methods("GET")
	router.HandleFunc("/refresh/metar", handler.PostRefreshMetar).Methods("POST")
	router.HandleFunc("/refresh/weather", handler.PostRefreshWeather).Methods("POST")
	router.HandleFunc("/refresh/all", handler.PostRefreshAll).Methods("POST")

	queryRouter := router.Path("/travel-weather").Subrouter()
	queryRouter.Use(httphandler.RateLimitMiddleware(limiter))
	queryRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	queryRouter.Methods("POST").HandlerFunc(handler.PostTravelWeather)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if memcacheCloser != nil {
		if err := memcacheCloser.Close(); err != nil {
			logger.Error("memcached close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
