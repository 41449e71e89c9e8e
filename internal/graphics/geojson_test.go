package graphics

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

func TestToFeatureCollection(t *testing.T) {
	shapes := []model.RenderShape{
		{Kind: model.ShapePolygon, Level: 2, Polygon: &model.Polygon{
			Points:      []model.GeoPoint{{Longitude: 0, Latitude: 0}, {Longitude: 0, Latitude: 1}, {Longitude: 1, Latitude: 1}},
			StrokeColor: "#FF0000F2", FillColor: "#FF00004D", StrokeWidth: 2,
		}},
		{Kind: model.ShapeCircle, Level: 6, Circle: &model.Circle{Longitude: 120, Latitude: 30, Radius: 500}},
		{Kind: model.ShapeCircle},
		{Kind: model.ShapePath, Level: 3, Path: &model.Path{
			Points: []model.GeoPoint{{Longitude: 116.3, Latitude: 39.9}, {Longitude: 116.4, Latitude: 39.95}},
			Width:  300,
		}},
		{Kind: model.ShapePath},
	}
	fc := ToFeatureCollection(shapes)
	if len(fc.Features) != 3 {
		t.Fatalf("want 3 features, got %d", len(fc.Features))
	}
	poly, ok := fc.Features[0].Geometry.(orb.Polygon)
	if !ok || len(poly) != 1 || len(poly[0]) != 4 || !poly[0].Closed() {
		t.Fatalf("polygon ring must be closed: %#v", fc.Features[0].Geometry)
	}
	pt, ok := fc.Features[1].Geometry.(orb.Point)
	if !ok || pt != (orb.Point{120, 30}) {
		t.Fatalf("circle must export as point: %#v", fc.Features[1].Geometry)
	}
	if fc.Features[1].Properties["radius"] != 500.0 {
		t.Fatalf("radius property missing: %v", fc.Features[1].Properties)
	}

	ls, ok := fc.Features[2].Geometry.(orb.LineString)
	if !ok || len(ls) != 2 || ls[1] != (orb.Point{116.4, 39.95}) {
		t.Fatalf("path must export as linestring: %#v", fc.Features[2].Geometry)
	}
	if fc.Features[2].Properties["width"] != 300.0 {
		t.Fatalf("width property missing: %v", fc.Features[2].Properties)
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != "FeatureCollection" || decoded.Features[0].Geometry.Type != "Polygon" || decoded.Features[1].Geometry.Type != "Point" || decoded.Features[2].Geometry.Type != "LineString" {
		t.Fatalf("unexpected geojson: %s", raw)
	}
}
