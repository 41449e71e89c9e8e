// Package router parses and validates HTTP query input and wraps the
// service use-cases as instrumented handlers.
package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/observability"
)

// maxBodyBytes bounds POSTed area payloads.
const maxBodyBytes = 8 << 20

var ErrMissingParam = errors.New("missing required parameter")

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument records http metrics for route around h.
func instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response", "err", err)
	}
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// ParseFloatParam reads a required finite float query parameter.
func ParseFloatParam(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingParam, name)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: parse float: %w", name, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: must be finite", name)
	}
	return f, nil
}

// ParsePoint reads lng/lat and validates their ranges.
func ParsePoint(r *http.Request, lngName, latName string) (model.GeoPoint, error) {
	lng, err := ParseFloatParam(r, lngName)
	if err != nil {
		return model.GeoPoint{}, err
	}
	lat, err := ParseFloatParam(r, latName)
	if err != nil {
		return model.GeoPoint{}, err
	}
	if lng < -180 || lng > 180 {
		return model.GeoPoint{}, fmt.Errorf("%s must be in [-180,180]", lngName)
	}
	if lat < -90 || lat > 90 {
		return model.GeoPoint{}, fmt.Errorf("%s must be in [-90,90]", latName)
	}
	return model.GeoPoint{Longitude: lng, Latitude: lat}, nil
}

// ParseRegion reads ne_lat, ne_lng, sw_lat, sw_lng. present is false when
// none of them is set.
func ParseRegion(r *http.Request) (region model.Region, present bool, err error) {
	q := r.URL.Query()
	if !q.Has("ne_lat") && !q.Has("ne_lng") && !q.Has("sw_lat") && !q.Has("sw_lng") {
		return model.Region{}, false, nil
	}
	ne, err := ParsePoint(r, "ne_lng", "ne_lat")
	if err != nil {
		return model.Region{}, true, fmt.Errorf("invalid region: %w", err)
	}
	sw, err := ParsePoint(r, "sw_lng", "sw_lat")
	if err != nil {
		return model.Region{}, true, fmt.Errorf("invalid region: %w", err)
	}
	return model.Region{Northeast: ne, Southwest: sw}, true, nil
}

// ParseZoom reads an integer zoom. Range checks are left to the grid builder.
func ParseZoom(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("zoom"))
	if raw == "" {
		return 0, fmt.Errorf("%w: zoom", ErrMissingParam)
	}
	z, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("zoom: %w", err)
	}
	return z, nil
}
