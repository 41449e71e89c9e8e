// Package wmsgrid lays a bounded grid of WMS GetMap tiles over a GCJ-02
// viewport. Each request bbox is shifted by the local WGS-84/GCJ-02 offset so
// the returned imagery lines up with GCJ-02 map content.
package wmsgrid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/airspace-overlay/internal/coord"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/ogc"
)

const (
	MinZoom = 5
	MaxZoom = 18
	// MaxSpan caps the grid at (MaxSpan+1)^2 tiles.
	MaxSpan      = 6
	DefaultAlpha = 0.65
)

type Options struct {
	BaseURL string
	Token   string
	Layers  []string
	Alpha   float64
	// ProxyPrefix, when set, replaces the direct GetMap URL with
	// "{ProxyPrefix}/{id}" so the token never reaches the client.
	ProxyPrefix string
}

func (o Options) src(t model.TileCoordinate, bbox [4]float64) string {
	if o.ProxyPrefix != "" {
		return strings.TrimRight(o.ProxyPrefix, "/") + "/" + t.ID()
	}
	return ogc.BuildGetMapURL(o.BaseURL, ogc.GetMapRequest{
		Token:  o.Token,
		Layers: o.Layers,
		BBox:   bbox,
	})
}

func (o Options) alpha() float64 {
	if o.Alpha <= 0 || o.Alpha > 1 || math.IsNaN(o.Alpha) {
		return DefaultAlpha
	}
	return o.Alpha
}

// BuildWmsOverlay returns the tiles covering region (or a 3x3 grid around
// center when region is nil). center and region are GCJ-02. Zoom levels
// outside [MinZoom, MaxZoom] yield an empty slice.
func BuildWmsOverlay(center model.GeoPoint, zoom int, region *model.Region, opts Options) []model.WmsTile {
	if zoom < MinZoom || zoom > MaxZoom {
		return []model.WmsTile{}
	}
	xMin, xMax, yMin, yMax := tileRange(center, zoom, region)
	out := make([]model.WmsTile, 0, (xMax-xMin+1)*(yMax-yMin+1))
	for x := xMin; x <= xMax; x++ {
		for y := yMin; y <= yMax; y++ {
			out = append(out, buildTile(model.TileCoordinate{X: x, Y: y, Zoom: zoom}, opts))
		}
	}
	return out
}

func tileRange(center model.GeoPoint, zoom int, region *model.Region) (xMin, xMax, yMin, yMax int) {
	if region == nil || !finiteRegion(*region) {
		c := coord.Gcj02PointToWgs84(center)
		t := coord.LonLatToTile(c.Longitude, c.Latitude, zoom)
		last := (1 << zoom) - 1
		return max(t.X-1, 0), min(t.X+1, last), max(t.Y-1, 0), min(t.Y+1, last)
	}
	ne := coord.Gcj02PointToWgs84(region.Northeast)
	sw := coord.Gcj02PointToWgs84(region.Southwest)
	a := coord.LonLatToTile(ne.Longitude, ne.Latitude, zoom)
	b := coord.LonLatToTile(sw.Longitude, sw.Latitude, zoom)
	xMin, xMax = capSpan(min(a.X, b.X), max(a.X, b.X))
	yMin, yMax = capSpan(min(a.Y, b.Y), max(a.Y, b.Y))
	return xMin, xMax, yMin, yMax
}

// capSpan shrinks [lo, hi] symmetrically around its midpoint to at most MaxSpan.
func capSpan(lo, hi int) (int, int) {
	if hi-lo <= MaxSpan {
		return lo, hi
	}
	mid := (lo + hi) / 2
	lo = mid - MaxSpan/2
	return lo, lo + MaxSpan
}

func finiteRegion(r model.Region) bool {
	for _, v := range []float64{r.Northeast.Longitude, r.Northeast.Latitude, r.Southwest.Longitude, r.Southwest.Latitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func buildTile(t model.TileCoordinate, opts Options) model.WmsTile {
	req := RequestBBox(t)
	sw := coord.MercatorToLonLat(req[0], req[1])
	ne := coord.MercatorToLonLat(req[2], req[3])
	return model.WmsTile{
		ID:  t.ID(),
		Src: opts.src(t, req),
		Bounds: model.Bounds{
			Southwest: coord.Wgs84PointToGcj02(sw),
			Northeast: coord.Wgs84PointToGcj02(ne),
		},
		Alpha: opts.alpha(),
	}
}

// RequestBBox is the tile's EPSG:3857 bbox shifted by minus the GCJ-02 offset
// measured at the tile center.
func RequestBBox(t model.TileCoordinate) [4]float64 {
	bbox := coord.TileXYToBBOX3857(t.X, t.Y, t.Zoom)
	dx, dy := centerOffset(bbox)
	return [4]float64{bbox[0] - dx, bbox[1] - dy, bbox[2] - dx, bbox[3] - dy}
}

// centerOffset returns the WGS-84 to GCJ-02 displacement at the bbox center in
// Mercator meters.
func centerOffset(bbox [4]float64) (dx, dy float64) {
	cx := (bbox[0] + bbox[2]) / 2
	cy := (bbox[1] + bbox[3]) / 2
	w := coord.MercatorToLonLat(cx, cy)
	if coord.OutOfChina(w.Longitude, w.Latitude) {
		return 0, 0
	}
	g := coord.Wgs84ToGcj02(w.Longitude, w.Latitude)
	m := coord.LonLatToMercator(g.Longitude, g.Latitude)
	return m.X - cx, m.Y - cy
}

var ErrBadTileID = errors.New("tile id must be zoom-x-y")

// ParseTileID parses a "{zoom}-{x}-{y}" id and validates it against the
// supported zoom range.
func ParseTileID(id string) (model.TileCoordinate, error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 {
		return model.TileCoordinate{}, ErrBadTileID
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return model.TileCoordinate{}, fmt.Errorf("%w: %v", ErrBadTileID, err)
		}
		n[i] = v
	}
	t := model.TileCoordinate{Zoom: n[0], X: n[1], Y: n[2]}
	if t.Zoom < MinZoom || t.Zoom > MaxZoom {
		return model.TileCoordinate{}, fmt.Errorf("zoom %d outside [%d,%d]", t.Zoom, MinZoom, MaxZoom)
	}
	last := (1 << t.Zoom) - 1
	if t.X < 0 || t.Y < 0 || t.X > last || t.Y > last {
		return model.TileCoordinate{}, fmt.Errorf("tile %s outside grid", id)
	}
	return t, nil
}
