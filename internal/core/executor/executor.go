// Package executor performs upstream calls: zone queries against the backend
// REST API and GetMap image requests against the WMS server.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/observability"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/ogc"
)

// maxAreaPayload bounds backend responses read into memory.
const maxAreaPayload = 16 << 20

var ErrUpstream = errors.New("upstream error")

type Interface interface {
	FetchAreas(ctx context.Context, q model.AreaQuery) ([]byte, error)
	ForwardGetMap(w http.ResponseWriter, r *http.Request, bbox [4]float64)
}

type Config struct {
	BackendURL   string
	BackendToken string
	WMSBaseURL   string
	WMSToken     string
	WMSLayers    []string
}

type Executor struct {
	logger   *slog.Logger
	client   *http.Client
	cfg      Config
	areasURL *url.URL
	startNow func() time.Time // for tests
}

func New(logger *slog.Logger, client *http.Client, cfg Config) (*Executor, error) {
	u, err := url.Parse(cfg.BackendURL + "/areas")
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if _, err := url.Parse(cfg.WMSBaseURL); err != nil {
		return nil, fmt.Errorf("parse wms url: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Executor{
		logger:   logger,
		client:   client,
		cfg:      cfg,
		areasURL: u,
		startNow: time.Now,
	}, nil
}

// FetchAreas queries restricted areas within a WGS-84 circle and returns the
// raw response body.
func (e *Executor) FetchAreas(ctx context.Context, q model.AreaQuery) ([]byte, error) {
	u := *e.areasURL
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(q.Center.Latitude, 'f', 6, 64))
	params.Set("lng", strconv.FormatFloat(q.Center.Longitude, 'f', 6, 64))
	params.Set("radius", strconv.FormatFloat(q.Radius, 'f', 0, 64))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if e.cfg.BackendToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.BackendToken)
	}

	start := e.startNow()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	observability.ObserveUpstreamLatency("backend_areas", time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, string(b))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxAreaPayload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	if len(b) > maxAreaPayload {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrUpstream, maxAreaPayload)
	}
	e.logger.DebugContext(ctx, "areas fetched", "bytes", len(b), "radius", q.Radius)
	return b, nil
}

// ForwardGetMap proxies a GetMap request for bbox (EPSG:3857) and streams the
// image back. The WMS token never reaches the client.
func (e *Executor) ForwardGetMap(w http.ResponseWriter, r *http.Request, bbox [4]float64) {
	target, err := url.Parse(ogc.BuildGetMapURL(e.cfg.WMSBaseURL, ogc.GetMapRequest{
		Token:  e.cfg.WMSToken,
		Layers: e.cfg.WMSLayers,
		BBox:   bbox,
	}))
	if err != nil {
		http.Error(w, "bad wms target", http.StatusInternalServerError)
		return
	}
	start := e.startNow()

	rt := http.RoundTripper(http.DefaultTransport)
	if e.client != nil && e.client.Transport != nil {
		rt = e.client.Transport
	}

	proxy := &httputil.ReverseProxy{
		Transport: rt,
		Rewrite: func(p *httputil.ProxyRequest) {
			p.Out.URL = target
			p.Out.Host = target.Host
			p.Out.Header.Set("Accept", "image/png,image/*")
			p.Out.Header.Del("Cookie")
			p.Out.Header.Del("Authorization")
			p.SetXForwarded()
		},
		ModifyResponse: func(resp *http.Response) error {
			dur := time.Since(start)
			e.logger.Debug("getmap done",
				"status", resp.StatusCode,
				"duration", dur.String())
			observability.ObserveUpstreamLatency("wms_getmap", dur.Seconds())
			resp.Header.Del("Set-Cookie")
			if resp.StatusCode == http.StatusOK && resp.Header.Get("Cache-Control") == "" {
				resp.Header.Set("Cache-Control", "public, max-age=300")
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			e.logger.ErrorContext(r.Context(), "wms proxy error", "err", err)
			http.Error(w, "upstream proxy error", http.StatusBadGateway)
		},
	}

	e.logger.DebugContext(r.Context(), "forward WMS GetMap", "bbox", ogc.FormatBBox(bbox))
	proxy.ServeHTTP(w, r)
}
