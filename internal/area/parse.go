package area

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

// pointFields is tried in order; several names coexist across backend versions.
var pointFields = []string{"polygon_points", "points", "polygon", "geometry.coordinates"}

// pathFields hold corridor center lines.
var pathFields = []string{"path_points", "path", "line_points", "geometry.coordinates"}

// envelopes that may wrap the area list
var listPaths = []string{"data.areas", "data.list", "data", "areas", "list"}

var ErrNoAreaList = errors.New("no area list found in payload")

// ExtractList returns the raw JSON array of areas, accepting a bare array or
// one of the known envelopes.
func ExtractList(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid json")
	}
	root := gjson.ParseBytes(data)
	if root.IsArray() {
		return []byte(root.Raw), nil
	}
	for _, p := range listPaths {
		if r := root.Get(p); r.IsArray() {
			return []byte(r.Raw), nil
		}
	}
	return nil, ErrNoAreaList
}

// ParseList parses a payload into areas. Elements that are not objects are skipped.
func ParseList(data []byte) ([]Area, error) {
	raw, err := ExtractList(data)
	if err != nil {
		return nil, fmt.Errorf("extract area list: %w", err)
	}
	items := gjson.ParseBytes(raw).Array()
	out := make([]Area, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		out = append(out, Parse(it))
	}
	return out, nil
}

// Parse normalizes one descriptor. Missing or malformed geometry yields KindNone.
func Parse(r gjson.Result) Area {
	a := Area{
		ID:     r.Get("id").String(),
		Name:   r.Get("name").String(),
		Level:  int(r.Get("level").Int()),
		Height: r.Get("height").Float(),
		Color:  strings.TrimSpace(r.Get("color").String()),
		Shape:  parseShape(r),
	}
	if subs := r.Get("sub_areas"); subs.IsArray() {
		for _, s := range subs.Array() {
			if s.IsObject() {
				a.SubAreas = append(a.SubAreas, Parse(s))
			}
		}
	}
	return a
}

func parseShape(r gjson.Result) Shape {
	shapeField := strings.TrimSpace(r.Get("shape").String())
	circle, hasCircle := circleShape(r)

	if shapeField == "0" {
		if !hasCircle {
			return Shape{Kind: KindNone}
		}
		return circle
	}
	if shapeField == "2" || strings.EqualFold(r.Get("geometry.type").String(), "LineString") {
		if path, ok := pathShape(r); ok {
			return path
		}
		return Shape{Kind: KindNone}
	}
	if polys, kind := firstPointSource(r); kind != KindNone {
		return Shape{Kind: kind, Polygons: polys}
	}
	if hasCircle {
		return circle
	}
	if path, ok := pathShape(r); ok {
		return path
	}
	return Shape{Kind: KindNone}
}

// circleShape needs finite lat/lng and a positive radius; null or empty
// fields do not make a circle.
func circleShape(r gjson.Result) (Shape, bool) {
	lat, ok1 := number(firstExisting(r, "lat", "latitude"))
	lng, ok2 := number(firstExisting(r, "lng", "longitude"))
	radius, ok3 := number(r.Get("radius"))
	if !ok1 || !ok2 || !ok3 || radius <= 0 {
		return Shape{}, false
	}
	return Shape{
		Kind:   KindCircle,
		Center: model.GeoPoint{Longitude: lng, Latitude: lat},
		Radius: radius,
	}, true
}

// pathShape reads a corridor: a flat point list of at least two points and a
// positive width in meters.
func pathShape(r gjson.Result) (Shape, bool) {
	width, ok := number(firstExisting(r, "width", "path_width"))
	if !ok || width <= 0 {
		return Shape{}, false
	}
	for _, f := range pathFields {
		v := r.Get(f)
		if v.Type == gjson.String {
			v = gjson.Parse(v.String())
		}
		if !v.IsArray() || depth(v) != 1 {
			continue
		}
		if pts := toRing(v); len(pts) >= 2 {
			return Shape{Kind: KindPath, Path: pts, Width: width}, true
		}
	}
	return Shape{}, false
}

func firstExisting(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// number accepts JSON numbers and numeric strings with a finite value.
func number(v gjson.Result) (float64, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		p, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// firstPointSource returns the first field in pointFields holding usable
// coordinates, normalized to polygon members.
func firstPointSource(r gjson.Result) ([][][]model.GeoPoint, Kind) {
	for _, f := range pointFields {
		v := r.Get(f)
		// some backends send the coordinate array as a JSON string
		if v.Type == gjson.String {
			v = gjson.Parse(v.String())
		}
		if !v.IsArray() {
			continue
		}
		polys, kind := toPolygons(v)
		if kind != KindNone {
			return polys, kind
		}
	}
	return nil, KindNone
}

// toPolygons detects 1/2/3 levels of nesting: ring, polygon with holes,
// multipolygon.
func toPolygons(v gjson.Result) ([][][]model.GeoPoint, Kind) {
	switch depth(v) {
	case 1:
		ring := toRing(v)
		if len(ring) == 0 {
			return nil, KindNone
		}
		return [][][]model.GeoPoint{{ring}}, KindPolygon
	case 2:
		poly := toRings(v)
		if len(poly) == 0 {
			return nil, KindNone
		}
		return [][][]model.GeoPoint{poly}, KindPolygon
	case 3:
		var out [][][]model.GeoPoint
		for _, p := range v.Array() {
			if rings := toRings(p); len(rings) > 0 {
				out = append(out, rings)
			}
		}
		if len(out) == 0 {
			return nil, KindNone
		}
		return out, KindMultiPolygon
	default:
		return nil, KindNone
	}
}

// depth counts array levels above the first point; 0 when nothing usable is found.
func depth(v gjson.Result) int {
	d := 0
	cur := v
	for d < 4 {
		if isPoint(cur) {
			return d
		}
		if !cur.IsArray() {
			return 0
		}
		items := cur.Array()
		if len(items) == 0 {
			return 0
		}
		cur = items[0]
		d++
	}
	return 0
}

func isPoint(v gjson.Result) bool {
	if v.IsObject() {
		return true
	}
	if !v.IsArray() {
		return false
	}
	items := v.Array()
	return len(items) >= 2 && items[0].Type == gjson.Number
}

func toRings(v gjson.Result) [][]model.GeoPoint {
	var out [][]model.GeoPoint
	for _, r := range v.Array() {
		if ring := toRing(r); len(ring) > 0 {
			out = append(out, ring)
		}
	}
	return out
}

func toRing(v gjson.Result) []model.GeoPoint {
	items := v.Array()
	ring := make([]model.GeoPoint, 0, len(items))
	for _, it := range items {
		if p, ok := toPoint(it); ok {
			ring = append(ring, p)
		}
	}
	return ring
}

// toPoint accepts [lng, lat] pairs or objects with longitude/latitude or lng/lat.
func toPoint(v gjson.Result) (model.GeoPoint, bool) {
	var lngV, latV gjson.Result
	switch {
	case v.IsArray():
		items := v.Array()
		if len(items) < 2 || items[0].Type != gjson.Number || items[1].Type != gjson.Number {
			return model.GeoPoint{}, false
		}
		lngV, latV = items[0], items[1]
	case v.IsObject():
		lngV = firstExisting(v, "longitude", "lng")
		latV = firstExisting(v, "latitude", "lat")
	default:
		return model.GeoPoint{}, false
	}
	lng, ok1 := number(lngV)
	lat, ok2 := number(latV)
	if !ok1 || !ok2 {
		return model.GeoPoint{}, false
	}
	return model.GeoPoint{Longitude: lng, Latitude: lat}, true
}
