// Package server wires the HTTP endpoints onto a chi router.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/config"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/health"
	middleware "github.com/mohammed-shakir/airspace-overlay/internal/core/middleware"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/router"
	"github.com/mohammed-shakir/airspace-overlay/internal/wmsgrid"
)

// TileProxyPrefix is where per-tile GetMap proxies are mounted.
const TileProxyPrefix = "/v1/wms/tiles"

type Deps struct {
	Zones   router.ZoneService
	Tiles   router.TileForwarder
	WMS     wmsgrid.Options
	Ready   health.Checks
	Metrics http.Handler
}

func NewHandler(logger *slog.Logger, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	metricsHandler := d.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	wms := d.WMS
	if d.Tiles != nil {
		wms.ProxyPrefix = TileProxyPrefix
	}

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(d.Ready))
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/coord/convert", router.HandleConvert(logger))
		r.Get("/coord/distance", router.HandleDistance(logger))
		r.Get("/wms/tiles", router.HandleTiles(logger, wms))
		if d.Tiles != nil {
			r.Get("/wms/tiles/{id}", router.HandleTile(logger, d.Tiles))
		}
		r.Post("/zones/render", router.HandleRender(logger))
		if d.Zones != nil {
			r.Get("/zones", router.HandleZones(logger, d.Zones))
			r.Get("/zones/status", router.HandleStatus(logger, d.Zones))
		}
		r.Post("/zones/status", router.HandleStatus(logger, d.Zones))
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, d Deps) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(logger, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
