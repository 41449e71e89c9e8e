package router

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mohammed-shakir/airspace-overlay/internal/coord"
)

// HandleConvert converts a point between WGS-84 and GCJ-02.
func HandleConvert(logger *slog.Logger) http.HandlerFunc {
	return instrument("/v1/coord/convert", func(w http.ResponseWriter, r *http.Request) {
		p, err := ParsePoint(r, "lng", "lat")
		if err != nil {
			badRequest(w, err)
			return
		}
		switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("from"))) {
		case "", "wgs84":
			writeJSON(w, logger, coord.Wgs84PointToGcj02(p))
		case "gcj02":
			writeJSON(w, logger, coord.Gcj02PointToWgs84(p))
		default:
			badRequest(w, errors.New("from must be wgs84 or gcj02"))
		}
	})
}

// HandleDistance returns the great-circle distance between two points.
func HandleDistance(logger *slog.Logger) http.HandlerFunc {
	return instrument("/v1/coord/distance", func(w http.ResponseWriter, r *http.Request) {
		a, err := ParsePoint(r, "lon1", "lat1")
		if err != nil {
			badRequest(w, err)
			return
		}
		b, err := ParsePoint(r, "lon2", "lat2")
		if err != nil {
			badRequest(w, err)
			return
		}
		writeJSON(w, logger, map[string]float64{
			"meters": coord.HaversineMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude),
		})
	})
}
