package graphics

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

// ToFeatureCollection exports render shapes as GeoJSON. Polygons become
// closed Polygon features; circles become Point features carrying a radius
// property in meters; corridors become LineString features with a width
// property in meters. Coordinates stay GCJ-02.
func ToFeatureCollection(shapes []model.RenderShape) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range shapes {
		switch {
		case s.Kind == model.ShapePolygon && s.Polygon != nil:
			ring := make(orb.Ring, 0, len(s.Polygon.Points)+1)
			for _, p := range s.Polygon.Points {
				ring = append(ring, orb.Point{p.Longitude, p.Latitude})
			}
			if len(ring) > 0 && !ring.Closed() {
				ring = append(ring, ring[0])
			}
			f := geojson.NewFeature(orb.Polygon{ring})
			f.Properties["kind"] = string(s.Kind)
			f.Properties["level"] = s.Level
			f.Properties["strokeColor"] = s.Polygon.StrokeColor
			f.Properties["fillColor"] = s.Polygon.FillColor
			f.Properties["strokeWidth"] = s.Polygon.StrokeWidth
			fc.Append(f)
		case s.Kind == model.ShapeCircle && s.Circle != nil:
			f := geojson.NewFeature(orb.Point{s.Circle.Longitude, s.Circle.Latitude})
			f.Properties["kind"] = string(s.Kind)
			f.Properties["level"] = s.Level
			f.Properties["radius"] = s.Circle.Radius
			f.Properties["strokeColor"] = s.Circle.Color
			f.Properties["fillColor"] = s.Circle.FillColor
			f.Properties["strokeWidth"] = s.Circle.StrokeWidth
			fc.Append(f)
		case s.Kind == model.ShapePath && s.Path != nil:
			ls := make(orb.LineString, 0, len(s.Path.Points))
			for _, p := range s.Path.Points {
				ls = append(ls, orb.Point{p.Longitude, p.Latitude})
			}
			f := geojson.NewFeature(ls)
			f.Properties["kind"] = string(s.Kind)
			f.Properties["level"] = s.Level
			f.Properties["width"] = s.Path.Width
			f.Properties["strokeColor"] = s.Path.Color
			f.Properties["fillColor"] = s.Path.FillColor
			f.Properties["strokeWidth"] = s.Path.StrokeWidth
			fc.Append(f)
		}
	}
	return fc
}
