package wmsgrid

import (
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/mohammed-shakir/airspace-overlay/internal/coord"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

// Beijing in GCJ-02
var beijing = model.GeoPoint{Longitude: 116.40324361176529, Latitude: 39.91040342105161}

func testOpts() Options {
	return Options{BaseURL: "http://wms.local/wms", Token: "tok", Layers: []string{"uav:a"}}
}

func TestBuildWmsOverlay_ZoomOutOfRange(t *testing.T) {
	region := &model.Region{
		Northeast: model.GeoPoint{Longitude: 117, Latitude: 40.5},
		Southwest: model.GeoPoint{Longitude: 116, Latitude: 39.5},
	}
	for _, z := range []int{4, 19, -1, 30} {
		got := BuildWmsOverlay(beijing, z, region, testOpts())
		if got == nil || len(got) != 0 {
			t.Fatalf("zoom %d: expected empty non-nil slice, got %v", z, got)
		}
	}
}

func TestBuildWmsOverlay_DefaultGrid(t *testing.T) {
	tiles := BuildWmsOverlay(beijing, 10, nil, testOpts())
	if len(tiles) != 9 {
		t.Fatalf("want 3x3 grid, got %d tiles", len(tiles))
	}
	if tiles[0].ID != "10-842-387" || tiles[4].ID != "10-843-388" || tiles[8].ID != "10-844-389" {
		t.Fatalf("unexpected ids: %s %s %s", tiles[0].ID, tiles[4].ID, tiles[8].ID)
	}
	for _, tl := range tiles {
		if tl.Alpha != 0.65 {
			t.Fatalf("alpha=%v want 0.65", tl.Alpha)
		}
	}
}

func TestBuildWmsOverlay_DefaultGridClampedAtEdge(t *testing.T) {
	corner := model.GeoPoint{Longitude: -179.99, Latitude: 84}
	tiles := BuildWmsOverlay(corner, 5, nil, testOpts())
	if len(tiles) != 4 {
		t.Fatalf("grid at world corner should be 2x2, got %d", len(tiles))
	}
	if tiles[0].ID != "5-0-0" {
		t.Fatalf("first tile=%s want 5-0-0", tiles[0].ID)
	}
}

func TestBuildWmsOverlay_SpanCap(t *testing.T) {
	// ~21 tiles wide and tall at zoom 10
	region := &model.Region{
		Northeast: model.GeoPoint{Longitude: 117, Latitude: 36},
		Southwest: model.GeoPoint{Longitude: 110, Latitude: 30},
	}
	tiles := BuildWmsOverlay(beijing, 10, region, testOpts())
	if len(tiles) > 49 {
		t.Fatalf("span cap violated: %d tiles", len(tiles))
	}
	if len(tiles) != 49 {
		t.Fatalf("want full 7x7 window, got %d", len(tiles))
	}
	if tiles[0].ID != "10-831-409" || tiles[48].ID != "10-837-415" {
		t.Fatalf("window not centered: first=%s last=%s", tiles[0].ID, tiles[48].ID)
	}
}

func TestBuildWmsOverlay_SwappedCornersAndNaN(t *testing.T) {
	region := &model.Region{
		Northeast: model.GeoPoint{Longitude: 116.2, Latitude: 39.8},
		Southwest: model.GeoPoint{Longitude: 116.6, Latitude: 40.0},
	}
	a := BuildWmsOverlay(beijing, 10, region, testOpts())
	b := BuildWmsOverlay(beijing, 10, &model.Region{Northeast: region.Southwest, Southwest: region.Northeast}, testOpts())
	if len(a) == 0 || len(a) != len(b) || a[0].ID != b[0].ID {
		t.Fatalf("corner order must not matter: %d vs %d", len(a), len(b))
	}
	bad := &model.Region{Northeast: model.GeoPoint{Longitude: math.NaN(), Latitude: 40}}
	if n := len(BuildWmsOverlay(beijing, 10, bad, testOpts())); n != 9 {
		t.Fatalf("non-finite region should fall back to 3x3, got %d", n)
	}
}

func TestBuildWmsOverlay_URL(t *testing.T) {
	tiles := BuildWmsOverlay(beijing, 10, nil, testOpts())
	src := tiles[4].Src
	if !strings.HasPrefix(src, "http://wms.local/wms?token=tok&service=WMS&request=GetMap&layers=uav:a&") {
		t.Fatalf("unexpected src: %s", src)
	}
	u, err := url.Parse(src)
	if err != nil {
		t.Fatalf("parse src: %v", err)
	}
	parts := strings.Split(u.Query().Get("bbox"), ",")
	if len(parts) != 4 {
		t.Fatalf("bbox=%q", u.Query().Get("bbox"))
	}
}

func TestRequestBBox_ShiftInsideChina(t *testing.T) {
	tile := model.TileCoordinate{X: 843, Y: 388, Zoom: 10}
	orig := coord.TileXYToBBOX3857(tile.X, tile.Y, tile.Zoom)
	req := RequestBBox(tile)
	dx := orig[0] - req[0]
	dy := orig[1] - req[1]
	// roughly 650 m east and 160 m north around Beijing
	if math.Abs(dx-650.37) > 1 || math.Abs(dy-158.57) > 1 {
		t.Fatalf("offset dx=%v dy=%v", dx, dy)
	}
	if math.Abs((orig[2]-req[2])-dx) > 1e-6 || math.Abs((orig[3]-req[3])-dy) > 1e-6 {
		t.Fatalf("shift must be uniform across the bbox")
	}
}

func TestRequestBBox_NoShiftOutsideChina(t *testing.T) {
	london := coord.LonLatToTile(-0.1276, 51.5072, 12)
	if RequestBBox(london) != coord.TileXYToBBOX3857(london.X, london.Y, london.Zoom) {
		t.Fatalf("tiles outside China must not be shifted")
	}
}

func TestBuildWmsOverlay_BoundsAlignWithTile(t *testing.T) {
	tiles := BuildWmsOverlay(beijing, 10, nil, testOpts())
	center := tiles[4]
	bb := coord.TileXYToBBOX3857(843, 388, 10)
	sw := coord.MercatorToLonLat(bb[0], bb[1])
	ne := coord.MercatorToLonLat(bb[2], bb[3])
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-3 }
	if !near(center.Bounds.Southwest.Longitude, sw.Longitude) || !near(center.Bounds.Southwest.Latitude, sw.Latitude) ||
		!near(center.Bounds.Northeast.Longitude, ne.Longitude) || !near(center.Bounds.Northeast.Latitude, ne.Latitude) {
		t.Fatalf("displayed bounds drifted from tile: %+v vs sw=%+v ne=%+v", center.Bounds, sw, ne)
	}
	if center.Bounds.Southwest.Latitude >= center.Bounds.Northeast.Latitude ||
		center.Bounds.Southwest.Longitude >= center.Bounds.Northeast.Longitude {
		t.Fatalf("bounds not ordered: %+v", center.Bounds)
	}
}

func TestOptionsAlpha(t *testing.T) {
	o := testOpts()
	o.Alpha = 0.4
	if got := BuildWmsOverlay(beijing, 10, nil, o)[0].Alpha; got != 0.4 {
		t.Fatalf("alpha=%v want 0.4", got)
	}
	o.Alpha = 3
	if got := BuildWmsOverlay(beijing, 10, nil, o)[0].Alpha; got != DefaultAlpha {
		t.Fatalf("invalid alpha must fall back, got %v", got)
	}
}

func TestParseTileID(t *testing.T) {
	tc, err := ParseTileID("10-843-388")
	if err != nil || tc != (model.TileCoordinate{X: 843, Y: 388, Zoom: 10}) {
		t.Fatalf("got %+v err=%v", tc, err)
	}
	for _, bad := range []string{"", "10-843", "a-b-c", "4-1-1", "19-1-1", "5-32-0", "5--1-0"} {
		if _, err := ParseTileID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestProxyPrefixHidesToken(t *testing.T) {
	o := testOpts()
	o.ProxyPrefix = "/v1/wms/tiles/"
	tiles := BuildWmsOverlay(beijing, 10, nil, o)
	if tiles[0].Src != "/v1/wms/tiles/10-842-387" {
		t.Fatalf("src=%q", tiles[0].Src)
	}
	for _, tl := range tiles {
		if strings.Contains(tl.Src, "token") {
			t.Fatalf("token leaked in %q", tl.Src)
		}
	}
}
