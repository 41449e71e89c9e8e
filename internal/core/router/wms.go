package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/observability"
	"github.com/mohammed-shakir/airspace-overlay/internal/wmsgrid"
)

// TileForwarder streams the GetMap image for an already shifted bbox.
type TileForwarder interface {
	ForwardGetMap(w http.ResponseWriter, r *http.Request, bbox [4]float64)
}

// HandleTiles lays out the WMS overlay for a GCJ-02 center and optional region.
func HandleTiles(logger *slog.Logger, opts wmsgrid.Options) http.HandlerFunc {
	return instrument("/v1/wms/tiles", func(w http.ResponseWriter, r *http.Request) {
		center, err := ParsePoint(r, "lng", "lat")
		if err != nil {
			badRequest(w, err)
			return
		}
		zoom, err := ParseZoom(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		region, ok, err := ParseRegion(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		var rp *model.Region
		if ok {
			rp = &region
		}
		tiles := wmsgrid.BuildWmsOverlay(center, zoom, rp, opts)
		observability.ObserveTiles(len(tiles))
		writeJSON(w, logger, map[string][]model.WmsTile{"tiles": tiles})
	})
}

// HandleTile proxies the image of one tile id.
func HandleTile(logger *slog.Logger, fwd TileForwarder) http.HandlerFunc {
	return instrument("/v1/wms/tiles/{id}", func(w http.ResponseWriter, r *http.Request) {
		t, err := wmsgrid.ParseTileID(chi.URLParam(r, "id"))
		if err != nil {
			badRequest(w, err)
			return
		}
		logger.DebugContext(r.Context(), "proxy wms tile", "tile", t.ID())
		fwd.ForwardGetMap(w, r, wmsgrid.RequestBBox(t))
	})
}
