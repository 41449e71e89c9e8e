// Package graphics turns normalized WGS-84 areas into GCJ-02 render shapes
// styled by severity level.
package graphics

import (
	"github.com/mohammed-shakir/airspace-overlay/internal/area"
	"github.com/mohammed-shakir/airspace-overlay/internal/coord"
	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
)

const DefaultStrokeWidth = 2

// BuildAreaGraphics renders each area, or only its sub-areas when it has
// any. Areas without usable geometry are skipped. Multi-geometries render the
// outer ring of their first member only; corridors render as a polyline with
// their width in meters.
func BuildAreaGraphics(areas []area.Area) []model.RenderShape {
	out := make([]model.RenderShape, 0, len(areas))
	for _, a := range areas {
		if a.HasSubAreas() {
			for _, s := range a.SubAreas {
				if shape, ok := renderArea(s, SubAreaAlphaScale); ok {
					out = append(out, shape)
				}
			}
			continue
		}
		if shape, ok := renderArea(a, 1); ok {
			out = append(out, shape)
		}
	}
	return out
}

func renderArea(a area.Area, alphaScale float64) (model.RenderShape, bool) {
	st := StyleFor(a.Level, a.Color, alphaScale)
	switch a.Shape.Kind {
	case area.KindCircle:
		c := coord.Wgs84PointToGcj02(a.Shape.Center)
		return model.RenderShape{
			Kind:  model.ShapeCircle,
			Level: a.Level,
			Circle: &model.Circle{
				Longitude:   c.Longitude,
				Latitude:    c.Latitude,
				Radius:      a.Shape.Radius,
				Color:       st.Stroke,
				FillColor:   st.Fill,
				StrokeWidth: DefaultStrokeWidth,
			},
		}, true
	case area.KindPolygon, area.KindMultiPolygon:
		ring := a.Shape.OuterRing()
		if len(ring) == 0 {
			return model.RenderShape{}, false
		}
		pts := make([]model.GeoPoint, len(ring))
		for i, p := range ring {
			pts[i] = coord.Wgs84PointToGcj02(p)
		}
		return model.RenderShape{
			Kind:  model.ShapePolygon,
			Level: a.Level,
			Polygon: &model.Polygon{
				Points:      pts,
				StrokeColor: st.Stroke,
				FillColor:   st.Fill,
				StrokeWidth: DefaultStrokeWidth,
			},
		}, true
	case area.KindPath:
		pts := make([]model.GeoPoint, len(a.Shape.Path))
		for i, p := range a.Shape.Path {
			pts[i] = coord.Wgs84PointToGcj02(p)
		}
		return model.RenderShape{
			Kind:  model.ShapePath,
			Level: a.Level,
			Path: &model.Path{
				Points:      pts,
				Width:       a.Shape.Width,
				Color:       st.Stroke,
				FillColor:   st.Fill,
				StrokeWidth: DefaultStrokeWidth,
			},
		}, true
	default:
		return model.RenderShape{}, false
	}
}
