package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func req(rawQuery string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/x?"+rawQuery, nil)
}

func TestParseFloatParam(t *testing.T) {
	if v, err := ParseFloatParam(req("a=1.5"), "a"); err != nil || v != 1.5 {
		t.Fatalf("v=%v err=%v", v, err)
	}
	if _, err := ParseFloatParam(req(""), "a"); !errors.Is(err, ErrMissingParam) {
		t.Fatalf("err=%v want ErrMissingParam", err)
	}
	for _, bad := range []string{"a=x", "a=NaN", "a=Inf", "a=-Inf"} {
		if _, err := ParseFloatParam(req(bad), "a"); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParsePoint_Ranges(t *testing.T) {
	p, err := ParsePoint(req("lng=116.4&lat=39.9"), "lng", "lat")
	if err != nil || p.Longitude != 116.4 || p.Latitude != 39.9 {
		t.Fatalf("p=%+v err=%v", p, err)
	}
	for _, bad := range []string{"lng=181&lat=0", "lng=0&lat=-91", "lng=0"} {
		if _, err := ParsePoint(req(bad), "lng", "lat"); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseRegion(t *testing.T) {
	if _, ok, err := ParseRegion(req("lng=1")); ok || err != nil {
		t.Fatalf("absent region: ok=%v err=%v", ok, err)
	}
	r, ok, err := ParseRegion(req("ne_lat=40&ne_lng=117&sw_lat=39&sw_lng=116"))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if r.Northeast.Longitude != 117 || r.Southwest.Latitude != 39 {
		t.Fatalf("region=%+v", r)
	}
	if _, ok, err := ParseRegion(req("ne_lat=40&ne_lng=117")); !ok || err == nil {
		t.Fatalf("partial region must fail: ok=%v err=%v", ok, err)
	}
}

func TestParseZoom(t *testing.T) {
	if z, err := ParseZoom(req("zoom=12")); err != nil || z != 12 {
		t.Fatalf("z=%d err=%v", z, err)
	}
	if _, err := ParseZoom(req("zoom=1.5")); err == nil {
		t.Fatalf("expected error for fractional zoom")
	}
	if _, err := ParseZoom(req("")); !errors.Is(err, ErrMissingParam) {
		t.Fatalf("err=%v want ErrMissingParam", err)
	}
}
