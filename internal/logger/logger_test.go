package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestBuild_JSONFieldsAndContext(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug", Service: "airspace", Component: "test"}, &buf)
	sl := NewSlog(&zl)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithCacheTier(ctx, "redis")
	ctx = WithZoneKey(ctx, "zones:5:abc")
	sl.InfoContext(ctx, "zones served", "count", 3, "err", errors.New("boom"))

	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("log line is not json: %v\n%s", err, buf.String())
	}
	want := map[string]any{
		"msg": "zones served", "level": "info", "service": "airspace", "component": "test",
		"request_id": "req-1", "cache_tier": "redis", "zone_key": "zones:5:abc", "err": "boom",
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("field %q=%v want %v (line=%s)", k, m[k], v, buf.String())
		}
	}
	if m["count"] != float64(3) {
		t.Fatalf("count=%v", m["count"])
	}
	if _, ok := m["timestamp"]; !ok {
		t.Fatalf("missing timestamp")
	}
}

func TestSlog_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "warn"}, &buf)
	sl := NewSlog(&zl)
	sl.Info("hidden")
	sl.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %s", out)
	}
	Build(Config{Level: "info"}, &buf)
}

func TestWithRequestID_GeneratesID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	id, _ := ctx.Value(ctxReqIDKey).(string)
	if len(id) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", id)
	}
	if WithCacheTier(ctx, "") != ctx || WithComponent(ctx, "") != ctx {
		t.Fatalf("empty values must not wrap the context")
	}
}
