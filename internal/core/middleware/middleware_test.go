package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mylog "github.com/mohammed-shakir/airspace-overlay/internal/logger"
)

func TestLogging_PropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	zl := mylog.Build(mylog.Config{Level: "debug", Service: "airspace-overlay"}, &buf)
	l := mylog.NewSlog(&zl)

	var seen string
	h := Logging(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = mylog.RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/zones?ne_lat=40", nil)
	req.Header.Set(RequestIDHeader, "map-client-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "map-client-42" {
		t.Fatalf("handler saw request id %q", seen)
	}
	if got := rr.Header().Get(RequestIDHeader); got != "map-client-42" {
		t.Fatalf("response id=%q", got)
	}

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line is not json: %v\n%s", err, buf.String())
	}
	want := map[string]any{
		"msg": "http request", "request_id": "map-client-42", "component": "http",
		"path": "/v1/zones", "method": "GET", "status": float64(http.StatusTeapot),
	}
	for k, v := range want {
		if line[k] != v {
			t.Fatalf("field %q=%v want %v (line=%s)", k, line[k], v, buf.String())
		}
	}
}

func TestLogging_GeneratesIDWhenMissingOrOversized(t *testing.T) {
	l := mylog.NewSlog(nil)
	var seen string
	h := Logging(l)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = mylog.RequestIDFrom(r.Context())
	}))

	for _, in := range []string{"", strings.Repeat("x", maxRequestIDLen+1)} {
		req := httptest.NewRequest(http.MethodGet, "/v1/wms/tiles", nil)
		req.Header.Set(RequestIDHeader, in)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		got := rr.Header().Get(RequestIDHeader)
		if got == "" || got == in || len(got) != 16 {
			t.Fatalf("input %q: generated id=%q", in, got)
		}
		if seen != got {
			t.Fatalf("context id %q != header id %q", seen, got)
		}
	}
}

func TestRecover_ReturnsRequestID(t *testing.T) {
	var buf bytes.Buffer
	zl := mylog.Build(mylog.Config{Level: "debug"}, &buf)
	l := mylog.NewSlog(&zl)

	h := Logging(l)(Recover(l)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("render exploded")
	})))
	req := httptest.NewRequest(http.MethodPost, "/v1/zones/render", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "request abc") {
		t.Fatalf("body=%q", rr.Body.String())
	}
	out := buf.String()
	if !strings.Contains(out, `"msg":"panic recovered"`) || !strings.Contains(out, `"request_id":"abc"`) {
		t.Fatalf("panic not logged with request id:\n%s", out)
	}
	if !strings.Contains(out, `"status":500`) {
		t.Fatalf("request log missing 500 status:\n%s", out)
	}
}

func TestCORS_PreflightAndExposedHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := CORS()(next)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/v1/zones/status", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), "POST") ||
		!strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader) {
		t.Fatalf("preflight headers=%v", rr.Header())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/zones", nil))
	if rr.Code != http.StatusOK || rr.Header().Get("Access-Control-Expose-Headers") != RequestIDHeader {
		t.Fatalf("status=%d headers=%v", rr.Code, rr.Header())
	}
}
