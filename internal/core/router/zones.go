package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mohammed-shakir/airspace-overlay/internal/area"
	"github.com/mohammed-shakir/airspace-overlay/internal/coord"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/executor"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
	"github.com/mohammed-shakir/airspace-overlay/internal/graphics"
	"github.com/mohammed-shakir/airspace-overlay/internal/zones"
)

type ZoneService interface {
	Render(ctx context.Context, r model.Region) ([]model.RenderShape, error)
	StatusAt(ctx context.Context, p model.GeoPoint) (zones.Status, error)
}

type shapesResponse struct {
	Shapes []model.RenderShape `json:"shapes"`
}

func writeShapes(w http.ResponseWriter, r *http.Request, logger *slog.Logger, shapes []model.RenderShape) {
	if strings.EqualFold(r.URL.Query().Get("format"), "geojson") {
		w.Header().Set("Content-Type", "application/geo+json")
		b, err := graphics.ToFeatureCollection(shapes).MarshalJSON()
		if err != nil {
			http.Error(w, "encode geojson", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(b)
		return
	}
	writeJSON(w, logger, shapesResponse{Shapes: shapes})
}

// upstreamError maps service failures to 502 and everything else to 500.
func upstreamError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.ErrorContext(r.Context(), "zone lookup failed", "err", err)
	if errors.Is(err, executor.ErrUpstream) || errors.Is(err, zones.ErrBadPayload) {
		http.Error(w, "upstream error", http.StatusBadGateway)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// HandleZones renders the zones of a GCJ-02 viewport.
func HandleZones(logger *slog.Logger, svc ZoneService) http.HandlerFunc {
	return instrument("/v1/zones", func(w http.ResponseWriter, r *http.Request) {
		region, ok, err := ParseRegion(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		if !ok {
			badRequest(w, fmt.Errorf("%w: ne_lat, ne_lng, sw_lat, sw_lng", ErrMissingParam))
			return
		}
		shapes, err := svc.Render(r.Context(), region)
		if err != nil {
			upstreamError(w, r, logger, err)
			return
		}
		writeShapes(w, r, logger, shapes)
	})
}

// HandleRender renders a posted area payload without contacting the backend.
func HandleRender(logger *slog.Logger) http.HandlerFunc {
	return instrument("/v1/zones/render", func(w http.ResponseWriter, r *http.Request) {
		areas, err := readAreas(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		writeShapes(w, r, logger, graphics.BuildAreaGraphics(areas))
	})
}

// HandleStatus classifies a GCJ-02 point, either against the zones around it
// (GET) or against a posted area payload (POST).
func HandleStatus(logger *slog.Logger, svc ZoneService) http.HandlerFunc {
	return instrument("/v1/zones/status", func(w http.ResponseWriter, r *http.Request) {
		p, err := ParsePoint(r, "lng", "lat")
		if err != nil {
			badRequest(w, err)
			return
		}
		if r.Method == http.MethodPost {
			areas, err := readAreas(r)
			if err != nil {
				badRequest(w, err)
				return
			}
			writeJSON(w, logger, zones.StatusAt(areas, coord.Gcj02PointToWgs84(p)))
			return
		}
		st, err := svc.StatusAt(r.Context(), p)
		if err != nil {
			upstreamError(w, r, logger, err)
			return
		}
		writeJSON(w, logger, st)
	})
}

func readAreas(r *http.Request) ([]area.Area, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	areas, err := area.ParseList(body)
	if err != nil {
		return nil, fmt.Errorf("invalid area payload: %w", err)
	}
	return areas, nil
}
