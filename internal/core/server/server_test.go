package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/health"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
	"github.com/mohammed-shakir/airspace-overlay/internal/wmsgrid"
	"github.com/mohammed-shakir/airspace-overlay/internal/zones"
)

type stubZones struct{}

func (stubZones) Render(context.Context, model.Region) ([]model.RenderShape, error) {
	return []model.RenderShape{}, nil
}

func (stubZones) StatusAt(context.Context, model.GeoPoint) (zones.Status, error) {
	return zones.Status{}, nil
}

type stubTiles struct{}

func (stubTiles) ForwardGetMap(w http.ResponseWriter, _ *http.Request, _ [4]float64) {
	_, _ = w.Write([]byte("img"))
}

type downCache struct{}

func (downCache) Ping(context.Context) error { return context.DeadlineExceeded }

func newTestServer(t *testing.T, d Deps) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), d))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string, http.Header) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b), resp.Header
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, Deps{
		Zones: stubZones{},
		Tiles: stubTiles{},
		WMS:   wmsgrid.Options{BaseURL: "http://wms.local/wms", Token: "secret"},
	})

	cases := []struct {
		path string
		code int
	}{
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/v1/coord/convert?lng=116.4&lat=39.9", http.StatusOK},
		{"/v1/coord/distance?lat1=0&lon1=0&lat2=1&lon2=1", http.StatusOK},
		{"/v1/wms/tiles?lng=116.4&lat=39.9&zoom=10", http.StatusOK},
		{"/v1/wms/tiles/10-843-388", http.StatusOK},
		{"/v1/zones?ne_lat=40&ne_lng=117&sw_lat=39&sw_lng=116", http.StatusOK},
		{"/v1/zones/status?lng=116.4&lat=39.9", http.StatusOK},
		{"/v1/unknown", http.StatusNotFound},
	}
	for _, tc := range cases {
		code, body, _ := get(t, srv.URL+tc.path)
		if code != tc.code {
			t.Fatalf("%s: status=%d want %d body=%s", tc.path, code, tc.code, body)
		}
	}
}

func TestTilesUseProxyWhenForwarderPresent(t *testing.T) {
	srv := newTestServer(t, Deps{
		Tiles: stubTiles{},
		WMS:   wmsgrid.Options{BaseURL: "http://wms.local/wms", Token: "secret"},
	})
	_, body, _ := get(t, srv.URL+"/v1/wms/tiles?lng=116.4&lat=39.9&zoom=10")
	if strings.Contains(body, "secret") || !strings.Contains(body, TileProxyPrefix+"/10-") {
		t.Fatalf("tile src must point at the proxy: %s", body)
	}

	direct := newTestServer(t, Deps{WMS: wmsgrid.Options{BaseURL: "http://wms.local/wms", Token: "secret"}})
	_, body, _ = get(t, direct.URL+"/v1/wms/tiles?lng=116.4&lat=39.9&zoom=10")
	if !strings.Contains(body, "http://wms.local/wms?") {
		t.Fatalf("tile src must be a direct GetMap URL: %s", body)
	}
}

func TestReadyzReportsCache(t *testing.T) {
	srv := newTestServer(t, Deps{Ready: health.Checks{Cache: downCache{}}})
	code, _, _ := get(t, srv.URL+"/readyz")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d want 503", code)
	}
}

func TestRequestIDAndCORS(t *testing.T) {
	srv := newTestServer(t, Deps{})
	_, _, h := get(t, srv.URL+"/healthz")
	if h.Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID")
	}
	if h.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}

	resp, err := http.Post(srv.URL+"/v1/zones/render", "application/json", strings.NewReader(`[]`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("render status=%d", resp.StatusCode)
	}
}
