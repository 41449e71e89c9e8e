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

	"github.com/joho/godotenv"

	"github.com/mohammed-shakir/airspace-overlay/internal/cache/local"
	"github.com/mohammed-shakir/airspace-overlay/internal/cache/redisstore"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/config"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/executor"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/health"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/httpclient"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/observability"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/server"
	"github.com/mohammed-shakir/airspace-overlay/internal/invalidation/kafkaconsumer"
	"github.com/mohammed-shakir/airspace-overlay/internal/logger"
	h3mapper "github.com/mohammed-shakir/airspace-overlay/internal/mapper/h3"
	"github.com/mohammed-shakir/airspace-overlay/internal/metrics"
	"github.com/mohammed-shakir/airspace-overlay/internal/wmsgrid"
	"github.com/mohammed-shakir/airspace-overlay/internal/zones"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// a missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Service:   "airspace-overlay",
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)
	if err != nil {
		appLog.Error("load config", "err", err)
		return 1
	}

	appLog.Info("starting airspace overlay",
		"addr", cfg.Addr,
		"version", Version,
		"backend", cfg.BackendURL,
		"wms", cfg.WMS.BaseURL,
		"redis", cfg.RedisAddr != "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := metrics.Init(metrics.Config{
		Enabled: cfg.MetricsEnabled,
		Addr:    cfg.MetricsAddr,
		Path:    "/metrics",
		Build: metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})
	observability.Init(p.Registerer(), cfg.MetricsEnabled)
	if cfg.MetricsEnabled && cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, p.Handler(), appLog)
	}

	exec, err := executor.New(appLog, httpclient.NewOutbound(cfg.BackendTimeout), executor.Config{
		BackendURL:   cfg.BackendURL,
		BackendToken: cfg.BackendToken,
		WMSBaseURL:   cfg.WMS.BaseURL,
		WMSToken:     cfg.WMS.Token,
		WMSLayers:    cfg.WMS.Layers,
	})
	if err != nil {
		appLog.Error("failed to initialize executor", "err", err)
		return 1
	}

	lru, err := local.New(cfg.ZoneCache.Size)
	if err != nil {
		appLog.Error("failed to initialize zone lru", "err", err)
		return 1
	}
	tiers := []zones.Tier{{Name: "lru", Cache: lru}}

	ready := health.Checks{}
	if cfg.RedisAddr != "" {
		rc, err := redisstore.New(ctx, cfg.RedisAddr,
			redisstore.WithPassword(cfg.RedisPassword),
			redisstore.WithDB(cfg.RedisDB),
			redisstore.WithPoolSize(cfg.RedisPoolSize))
		if err != nil {
			appLog.Error("failed to connect redis", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()
		tiers = append(tiers, zones.Tier{Name: "redis", Cache: rc})
		ready.Cache = rc
	}

	svc := zones.New(appLog, exec, h3mapper.New(), zones.Options{
		TTL:       cfg.ZoneCache.TTL,
		OpTimeout: cfg.ZoneCache.OpTimeout,
		H3Res:     cfg.ZoneCache.H3Res,
	}, tiers...)

	if cfg.Invalidation.Enabled {
		cons := kafkaconsumer.New(
			kafkaconsumer.NewConfig(cfg.Invalidation.Brokers, cfg.Invalidation.Topic, cfg.Invalidation.GroupID),
			appLog, svc)
		ready.Consumer = cons
		go func() {
			if err := cons.Start(ctx); err != nil {
				appLog.Error("invalidation consumer stopped", "err", err)
			}
		}()
	}

	deps := server.Deps{
		Zones: svc,
		Tiles: exec,
		WMS: wmsgrid.Options{
			BaseURL: cfg.WMS.BaseURL,
			Token:   cfg.WMS.Token,
			Layers:  cfg.WMS.Layers,
			Alpha:   cfg.WMS.Alpha,
		},
		Ready: ready,
	}
	if cfg.MetricsEnabled {
		deps.Metrics = p.Handler()
	}

	if err := server.Run(ctx, cfg, appLog, deps); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

func serveMetrics(ctx context.Context, addr string, h http.Handler, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server exited", "err", err)
	}
}
