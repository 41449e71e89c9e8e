package area

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"
)

func TestParse_ExplicitCircle(t *testing.T) {
	a := Parse(gjson.Parse(`{"id":"a1","level":2,"shape":0,"lat":39.9,"lng":116.4,"radius":500}`))
	if a.Shape.Kind != KindCircle {
		t.Fatalf("kind=%v want circle", a.Shape.Kind)
	}
	if a.Shape.Center.Longitude != 116.4 || a.Shape.Center.Latitude != 39.9 || a.Shape.Radius != 500 {
		t.Fatalf("unexpected circle: %+v", a.Shape)
	}
	if a.ID != "a1" || a.Level != 2 {
		t.Fatalf("attributes lost: %+v", a)
	}
}

func TestParse_ImplicitCircleWithoutPolygonData(t *testing.T) {
	a := Parse(gjson.Parse(`{"level":4,"latitude":30,"longitude":120,"radius":1000}`))
	if a.Shape.Kind != KindCircle {
		t.Fatalf("kind=%v want circle", a.Shape.Kind)
	}
}

func TestParse_PolygonWinsOverCircleFieldsWhenShapeNotZero(t *testing.T) {
	a := Parse(gjson.Parse(`{"level":2,"shape":1,"lat":1,"lng":1,"radius":5,"points":[[0,0],[0,1],[1,1],[1,0]]}`))
	if a.Shape.Kind != KindPolygon {
		t.Fatalf("kind=%v want polygon", a.Shape.Kind)
	}
}

func TestParse_FieldPriority(t *testing.T) {
	a := Parse(gjson.Parse(`{
		"polygon_points": [],
		"points": [[1,1],[1,2],[2,2]],
		"polygon": [[9,9],[9,10],[10,10]],
		"geometry": {"coordinates": [[[5,5],[5,6],[6,6]]]}
	}`))
	ring := a.Shape.OuterRing()
	if len(ring) != 3 || ring[0].Longitude != 1 {
		t.Fatalf("expected points field to win over later fields, got %+v", ring)
	}

	b := Parse(gjson.Parse(`{"geometry": {"type":"Polygon","coordinates": [[[5,5],[5,6],[6,6]]]}}`))
	if b.Shape.Kind != KindPolygon || b.Shape.OuterRing()[0].Longitude != 5 {
		t.Fatalf("geometry.coordinates fallback failed: %+v", b.Shape)
	}
}

func TestParse_DepthDetection(t *testing.T) {
	ring := Parse(gjson.Parse(`{"points":[{"longitude":1,"latitude":2},{"longitude":3,"latitude":4},{"lng":5,"lat":6}]}`))
	if ring.Shape.Kind != KindPolygon || len(ring.Shape.Polygons) != 1 || len(ring.Shape.Polygons[0]) != 1 {
		t.Fatalf("ring: %+v", ring.Shape)
	}
	if p := ring.Shape.OuterRing()[2]; p.Longitude != 5 || p.Latitude != 6 {
		t.Fatalf("lng/lat object form not parsed: %+v", p)
	}

	holes := Parse(gjson.Parse(`{"polygon":[[[0,0],[0,10],[10,10],[10,0]],[[4,4],[4,6],[6,6],[6,4]]]}`))
	if holes.Shape.Kind != KindPolygon || len(holes.Shape.Polygons[0]) != 2 {
		t.Fatalf("polygon with hole: %+v", holes.Shape)
	}

	multi := Parse(gjson.Parse(`{"geometry":{"coordinates":[[[[0,0],[0,1],[1,1]]],[[[5,5],[5,6],[6,6]]]]}}`))
	if multi.Shape.Kind != KindMultiPolygon || len(multi.Shape.Polygons) != 2 {
		t.Fatalf("multipolygon: %+v", multi.Shape)
	}
}

func TestParse_StringEncodedPoints(t *testing.T) {
	a := Parse(gjson.Parse(`{"polygon_points":"[[1,1],[1,2],[2,2]]"}`))
	if a.Shape.Kind != KindPolygon || len(a.Shape.OuterRing()) != 3 {
		t.Fatalf("string encoded points not parsed: %+v", a.Shape)
	}
}

func TestParse_MissingGeometry(t *testing.T) {
	for _, js := range []string{
		`{"level":2}`,
		`{"level":2,"shape":0}`,
		`{"points":[1,2]}`,
		`{"points":[["a","b"]]}`,
	} {
		if a := Parse(gjson.Parse(js)); a.Shape.Kind != KindNone {
			t.Fatalf("%s: kind=%v want none", js, a.Shape.Kind)
		}
	}
}

func TestParse_SubAreas(t *testing.T) {
	a := Parse(gjson.Parse(`{"level":2,"height":0,"shape":0,"lat":1,"lng":1,"radius":100,
		"sub_areas":[{"level":2,"shape":0,"lat":1,"lng":1,"radius":100,"height":"120"},{"level":6,"points":[[0,0],[0,1],[1,1]]}, 5]}`))
	if len(a.SubAreas) != 2 {
		t.Fatalf("sub areas=%d want 2", len(a.SubAreas))
	}
	if a.SubAreas[0].Height != 120 {
		t.Fatalf("numeric string height not parsed: %v", a.SubAreas[0].Height)
	}
}

func TestParseList_Envelopes(t *testing.T) {
	for _, js := range []string{
		`[{"level":2}]`,
		`{"data":[{"level":2}]}`,
		`{"code":0,"data":{"areas":[{"level":2}]}}`,
		`{"areas":[{"level":2}]}`,
	} {
		got, err := ParseList([]byte(js))
		if err != nil {
			t.Fatalf("%s: %v", js, err)
		}
		if len(got) != 1 || got[0].Level != 2 {
			t.Fatalf("%s: got %+v", js, got)
		}
	}
}

func TestParseList_Errors(t *testing.T) {
	if _, err := ParseList([]byte(`{not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
	_, err := ParseList([]byte(`{"data":{"count":0}}`))
	if !errors.Is(err, ErrNoAreaList) {
		t.Fatalf("expected ErrNoAreaList, got %v", err)
	}
}

func TestShapeEqual(t *testing.T) {
	a := Parse(gjson.Parse(`{"points":[[1,1],[1,2],[2,2]]}`)).Shape
	b := Parse(gjson.Parse(`{"polygon":[[[1,1],[1,2],[2,2]]]}`)).Shape
	c := Parse(gjson.Parse(`{"points":[[1,1],[1,2],[2,3]]}`)).Shape
	if !a.Equal(b) {
		t.Fatalf("ring and single-ring polygon with same points must be equal")
	}
	if a.Equal(c) {
		t.Fatalf("different points must not be equal")
	}
}

func TestParse_NullOrEmptyCircleFields(t *testing.T) {
	for _, js := range []string{
		`{"level":2,"lat":null,"lng":null,"radius":null}`,
		`{"level":2,"lat":"","lng":"","radius":""}`,
		`{"level":2,"shape":0,"lat":null,"lng":116.4,"radius":500}`,
		`{"level":2,"lat":39.9,"lng":116.4,"radius":0}`,
		`{"level":2,"lat":39.9,"lng":116.4,"radius":-5}`,
		`{"level":2,"lat":"abc","lng":116.4,"radius":500}`,
	} {
		if a := Parse(gjson.Parse(js)); a.Shape.Kind != KindNone {
			t.Fatalf("%s: kind=%v shape=%+v want none", js, a.Shape.Kind, a.Shape)
		}
	}

	a := Parse(gjson.Parse(`{"level":2,"lat":"39.9","lng":" 116.4 ","radius":"500"}`))
	if a.Shape.Kind != KindCircle || a.Shape.Radius != 500 || a.Shape.Center.Longitude != 116.4 {
		t.Fatalf("numeric string circle: %+v", a.Shape)
	}
}

func TestParse_NullPointCoordinatesSkipped(t *testing.T) {
	a := Parse(gjson.Parse(`{"points":[{"lng":null,"lat":null},{"lng":1,"lat":1},{"lng":1,"lat":2},{"lng":2,"lat":2}]}`))
	if ring := a.Shape.OuterRing(); len(ring) != 3 || ring[0].Longitude != 1 {
		t.Fatalf("null vertex must be dropped: %+v", ring)
	}
}

func TestParse_PathCorridor(t *testing.T) {
	a := Parse(gjson.Parse(`{"level":3,"shape":2,"width":200,"path_points":[[116.30,39.90],[116.35,39.92],{"lng":116.40,"lat":39.95}]}`))
	if a.Shape.Kind != KindPath || len(a.Shape.Path) != 3 || a.Shape.Width != 200 {
		t.Fatalf("path: %+v", a.Shape)
	}
	if a.Shape.OuterRing() != nil {
		t.Fatalf("path has no outer ring")
	}

	implicit := Parse(gjson.Parse(`{"level":3,"path_width":"150","path":"[[1,1],[2,2]]"}`))
	if implicit.Shape.Kind != KindPath || implicit.Shape.Width != 150 {
		t.Fatalf("implicit path: %+v", implicit.Shape)
	}

	line := Parse(gjson.Parse(`{"width":50,"geometry":{"type":"LineString","coordinates":[[1,1],[2,2],[3,1]]}}`))
	if line.Shape.Kind != KindPath || len(line.Shape.Path) != 3 {
		t.Fatalf("geojson linestring: %+v", line.Shape)
	}

	polyWins := Parse(gjson.Parse(`{"width":50,"points":[[0,0],[0,1],[1,1]],"path":[[1,1],[2,2]]}`))
	if polyWins.Shape.Kind != KindPolygon {
		t.Fatalf("polygon must win over path fields: %v", polyWins.Shape.Kind)
	}

	for _, js := range []string{
		`{"shape":2,"path_points":[[1,1],[2,2]]}`,
		`{"shape":2,"width":null,"path_points":[[1,1],[2,2]]}`,
		`{"shape":2,"width":100,"path_points":[[1,1]]}`,
		`{"shape":2,"width":100,"points":[[0,0],[0,1],[1,1]]}`,
		`{"width":0,"path":[[1,1],[2,2]]}`,
	} {
		if a := Parse(gjson.Parse(js)); a.Shape.Kind != KindNone {
			t.Fatalf("%s: kind=%v want none", js, a.Shape.Kind)
		}
	}

	same := Parse(gjson.Parse(`{"width":200,"path":[[116.30,39.90],[116.35,39.92],[116.40,39.95]]}`))
	if !a.Shape.Equal(same.Shape) {
		t.Fatalf("equal paths must compare equal")
	}
}
