package ogc

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	GetMapFormat = "image/png8"
	GetMapSRS    = "EPSG:3857"
	WMSVersion   = "1.1.0"
	TileWidth    = 256
	TileHeight   = 256
)

// DefaultLayers holds one no-fly layer per mainland province-level division,
// keyed by administrative code.
var DefaultLayers = []string{
	"uav:zone_110000", "uav:zone_120000", "uav:zone_130000", "uav:zone_140000", "uav:zone_150000",
	"uav:zone_210000", "uav:zone_220000", "uav:zone_230000", "uav:zone_310000", "uav:zone_320000",
	"uav:zone_330000", "uav:zone_340000", "uav:zone_350000", "uav:zone_360000", "uav:zone_370000",
	"uav:zone_410000", "uav:zone_420000", "uav:zone_430000", "uav:zone_440000", "uav:zone_450000",
	"uav:zone_460000", "uav:zone_500000", "uav:zone_510000", "uav:zone_520000", "uav:zone_530000",
	"uav:zone_610000", "uav:zone_620000", "uav:zone_630000", "uav:zone_640000", "uav:zone_650000",
}

type GetMapRequest struct {
	Token  string
	Layers []string
	Styles string
	// BBox is minX,minY,maxX,maxY in EPSG:3857 meters.
	BBox [4]float64
}

type param struct{ key, value string }

// getMapParams keeps the exact order the upstream server was verified against.
func getMapParams(req GetMapRequest) []param {
	layers := req.Layers
	if len(layers) == 0 {
		layers = DefaultLayers
	}
	return []param{
		{"token", req.Token},
		{"service", "WMS"},
		{"request", "GetMap"},
		{"layers", strings.Join(layers, ",")},
		{"styles", req.Styles},
		{"format", GetMapFormat},
		{"transparent", "true"},
		{"version", WMSVersion},
		{"srs", GetMapSRS},
		{"width", strconv.Itoa(TileWidth)},
		{"height", strconv.Itoa(TileHeight)},
		{"bbox", FormatBBox(req.BBox)},
	}
}

// BuildGetMapURL appends the GetMap query to base, preserving parameter order.
// Commas, colons and slashes are left unescaped.
func BuildGetMapURL(base string, req GetMapRequest) string {
	var b strings.Builder
	b.WriteString(base)
	switch {
	case !strings.Contains(base, "?"):
		b.WriteByte('?')
	case !strings.HasSuffix(base, "?") && !strings.HasSuffix(base, "&"):
		b.WriteByte('&')
	}
	for i, p := range getMapParams(req) {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(escapeValue(p.value))
	}
	return b.String()
}

var unescaper = strings.NewReplacer("%2C", ",", "%3A", ":", "%2F", "/")

func escapeValue(s string) string {
	return unescaper.Replace(url.QueryEscape(s))
}

func FormatBBox(b [4]float64) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
